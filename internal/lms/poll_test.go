package lms_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dsc-courses/gradesync/internal/lms"
)

// progressScript satisfies lms.Client for polling tests; only Progress is
// exercised.
type progressScript struct {
	states []lms.Progress
	calls  int
}

func (s *progressScript) FindOrCreateGroup(context.Context, string) (string, error) {
	return "", errors.New("not implemented")
}
func (s *progressScript) FindOrCreateAssignment(context.Context, lms.AssignmentOpts) (lms.Assignment, error) {
	return lms.Assignment{}, errors.New("not implemented")
}
func (s *progressScript) BulkSubmitGrades(context.Context, lms.Assignment, map[string]lms.GradeUpdate) (lms.Progress, error) {
	return lms.Progress{}, errors.New("not implemented")
}
func (s *progressScript) PriorSubmissions(context.Context, lms.Assignment) (map[string]float64, error) {
	return nil, errors.New("not implemented")
}
func (s *progressScript) Progress(_ context.Context, _ lms.Progress) (lms.Progress, error) {
	if s.calls >= len(s.states) {
		return s.states[len(s.states)-1], nil
	}
	p := s.states[s.calls]
	s.calls++
	return p, nil
}

func TestAwaitProgressCompletes(t *testing.T) {
	c := &progressScript{states: []lms.Progress{
		{State: "running", Completion: 40},
		{State: "completed", Completion: 100},
	}}
	start := lms.Progress{State: "queued"}
	err := lms.AwaitProgress(context.Background(), c, "Homework 1", start, lms.FixedBackoff(time.Millisecond), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.calls != 2 {
		t.Fatalf("polled %d times, want 2", c.calls)
	}
}

func TestAwaitProgressFailureIsTyped(t *testing.T) {
	c := &progressScript{states: []lms.Progress{{State: "failed"}}}
	err := lms.AwaitProgress(context.Background(), c, "Homework 1", lms.Progress{State: "running"}, lms.FixedBackoff(time.Millisecond), 10)
	var pub *lms.PublishError
	if !errors.As(err, &pub) {
		t.Fatalf("expected PublishError, got %v", err)
	}
	if pub.Job != "Homework 1" {
		t.Fatalf("failure must be reported by name, got %+v", pub)
	}
}

func TestAwaitProgressAttemptBudget(t *testing.T) {
	c := &progressScript{states: []lms.Progress{{State: "running", Completion: 10}}}
	err := lms.AwaitProgress(context.Background(), c, "Homework 1", lms.Progress{State: "running"}, lms.FixedBackoff(time.Millisecond), 3)
	var pub *lms.PublishError
	if !errors.As(err, &pub) {
		t.Fatalf("expected PublishError after budget, got %v", err)
	}
}

func TestAwaitProgressContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := &progressScript{states: []lms.Progress{{State: "running"}}}
	err := lms.AwaitProgress(ctx, c, "Homework 1", lms.Progress{State: "running"}, lms.FixedBackoff(time.Hour), 5)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}
