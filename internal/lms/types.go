// Package lms defines the remote gradebook publisher consumed by the
// pipeline. Implement Client against your LMS, or use lmshttp for a
// Canvas-compatible REST API.
package lms

import (
	"context"
	"time"
)

// Assignment is a handle to a remote gradebook column.
type Assignment struct {
	ID             string
	Name           string
	GroupID        string
	PointsPossible float64
}

// AssignmentOpts describes the assignment to find or create.
type AssignmentOpts struct {
	Name    string
	GroupID string
	Points  float64
	DueAt   *time.Time

	// OmitFromFinalGrade marks bookkeeping assignments (the slip-day
	// ledger) that must not affect course totals.
	OmitFromFinalGrade bool
	Description        string
	Notify             bool
}

// GradeUpdate is one student's posted grade, keyed externally by LMS user id.
type GradeUpdate struct {
	Score   float64
	Comment string
}

// Progress is a handle to an asynchronous bulk-update job.
type Progress struct {
	ID         string
	URL        string
	State      string // queued | running | completed | failed
	Completion float64
}

// Done reports whether the job reached a terminal state.
func (p Progress) Done() bool {
	return p.State == "completed" || p.State == "failed"
}

// Client is the remote publisher. All calls are synchronous; BulkSubmitGrades
// starts an async job whose handle is polled via Progress.
type Client interface {
	FindOrCreateGroup(ctx context.Context, name string) (string, error)
	FindOrCreateAssignment(ctx context.Context, opts AssignmentOpts) (Assignment, error)
	BulkSubmitGrades(ctx context.Context, a Assignment, updates map[string]GradeUpdate) (Progress, error)
	Progress(ctx context.Context, p Progress) (Progress, error)

	// PriorSubmissions returns the last posted score per LMS user id.
	// The slip-day carry-forward total is read from here once per batch.
	PriorSubmissions(ctx context.Context, a Assignment) (map[string]float64, error)
}
