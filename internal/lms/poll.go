package lms

import (
	"context"
	"fmt"
	"time"
)

// PublishError reports a failed or stalled bulk-update job by name. The
// pipeline never retries these automatically; the operator restarts the
// batch once the cause is fixed.
type PublishError struct {
	Job    string
	State  string
	Reason string
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish %s: %s (%s)", e.Job, e.Reason, e.State)
}

// Backoff returns the delay before the given 1-based polling attempt.
type Backoff func(attempt int) time.Duration

// FixedBackoff polls at a constant interval.
func FixedBackoff(d time.Duration) Backoff {
	return func(int) time.Duration { return d }
}

// AwaitProgress polls p until the job completes, the attempt budget runs
// out, or ctx is cancelled. The budget is a hard cutoff: a job that never
// reports a terminal state becomes a PublishError instead of an infinite
// wait.
func AwaitProgress(ctx context.Context, c Client, job string, p Progress, backoff Backoff, maxAttempts int) error {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	for attempt := 1; ; attempt++ {
		if p.State == "failed" {
			return &PublishError{Job: job, State: p.State, Reason: "bulk update failed, restart manually"}
		}
		if p.Done() && p.Completion >= 100 {
			return nil
		}
		if p.State == "completed" {
			return nil
		}
		if attempt > maxAttempts {
			return &PublishError{Job: job, State: p.State, Reason: fmt.Sprintf("no completion after %d polls", maxAttempts)}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff(attempt)):
		}

		next, err := c.Progress(ctx, p)
		if err != nil {
			return &PublishError{Job: job, State: p.State, Reason: err.Error()}
		}
		p = next
	}
}
