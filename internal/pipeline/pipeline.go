// Package pipeline runs one assignment batch end to end: compute scores,
// merge the roster, write the processed audit file, publish grades, and
// update the slip-day ledger.
//
// Batches must run strictly sequentially. The slip-day carry-forward is a
// read-modify-write against remote state with no locking; running two
// batches for the same assignment group concurrently loses updates and is
// the caller's responsibility to avoid.
package pipeline

import (
	"context"
	"fmt"

	"github.com/dsc-courses/gradesync/internal/config"
	"github.com/dsc-courses/gradesync/internal/gradebook"
	"github.com/dsc-courses/gradesync/internal/lms"
	"github.com/dsc-courses/gradesync/internal/roster"
	"github.com/dsc-courses/gradesync/internal/source"
)

// slipLedgerName is the bookkeeping assignment holding each student's
// running slip-day total.
const slipLedgerName = "Slip Day Usage"

// Store is the subset of the local state store the pipeline needs.
type Store interface {
	FindAssignment(name, group string) (lms.Assignment, bool, error)
	CacheAssignment(group string, a lms.Assignment) error
	BeginRun(assignment string) (string, error)
	MarkRunOK(id string) error
	MarkRunFailed(id, lastErr string) error
	RecordSlipDays(email string, total float64) error
}

type Pipeline struct {
	Store Store
	LMS   lms.Client

	ProcessedDir string
	Backoff      lms.Backoff
	MaxAttempts  int
}

// Result is everything one batch produced. Mismatches are data for manual
// review, not faults: the rest of the cohort is graded and published.
type Result struct {
	Merged        []gradebook.MergedRow
	Mismatches    []gradebook.MergedRow
	Reports       []gradebook.JoinReport
	ProcessedPath string
	RunID         string
}

// Run processes one batch start to finish. A returned error aborts this
// batch only; nothing published by earlier batches is touched.
func (p *Pipeline) Run(ctx context.Context, job *config.Job, src source.Source, in source.Inputs, dir *roster.Directory) (*Result, error) {
	computed, err := src.Compute(in)
	if err != nil {
		return nil, err
	}

	merged, unmatched := gradebook.MergeWithRoster(computed.Records, dir.Entries)
	result := &Result{
		Merged:     merged,
		Mismatches: unmatched,
		Reports:    computed.Reports,
	}

	path, err := p.writeProcessed(job, merged)
	if err != nil {
		return result, err
	}
	result.ProcessedPath = path

	if err := p.publish(ctx, job, merged, result); err != nil {
		return result, err
	}

	if job.Policy.Lateness == gradebook.PolicySlipDay {
		if err := p.updateSlipLedger(ctx, job, merged); err != nil {
			return result, err
		}
	}
	return result, nil
}

// ensureAssignment resolves the remote handle, preferring the local cache
// over a round trip. created reports whether the assignment was new.
func (p *Pipeline) ensureAssignment(ctx context.Context, group string, opts lms.AssignmentOpts) (lms.Assignment, bool, error) {
	if a, ok, err := p.Store.FindAssignment(opts.Name, group); err != nil {
		return lms.Assignment{}, false, err
	} else if ok {
		return a, false, nil
	}

	groupID, err := p.LMS.FindOrCreateGroup(ctx, group)
	if err != nil {
		return lms.Assignment{}, false, fmt.Errorf("assignment group %q: %w", group, err)
	}
	opts.GroupID = groupID
	a, err := p.LMS.FindOrCreateAssignment(ctx, opts)
	if err != nil {
		return lms.Assignment{}, false, err
	}
	if err := p.Store.CacheAssignment(group, a); err != nil {
		return lms.Assignment{}, false, err
	}
	return a, true, nil
}

func (p *Pipeline) publish(ctx context.Context, job *config.Job, merged []gradebook.MergedRow, result *Result) error {
	due, err := job.DueTime()
	if err != nil {
		return err
	}
	a, _, err := p.ensureAssignment(ctx, job.Group, lms.AssignmentOpts{
		Name:   job.Assignment,
		Points: job.Points,
		DueAt:  due,
	})
	if err != nil {
		return err
	}

	runID, err := p.Store.BeginRun(job.Assignment)
	if err != nil {
		return err
	}
	result.RunID = runID

	updates := make(map[string]lms.GradeUpdate)
	for _, row := range merged {
		if row.Entry.Staff || row.Entry.LMSID == "" {
			continue
		}
		updates[row.Entry.LMSID] = lms.GradeUpdate{Score: row.Score}
	}
	if len(updates) == 0 {
		return p.Store.MarkRunOK(runID)
	}

	if err := p.submitAndAwait(ctx, job.Assignment, a, updates); err != nil {
		_ = p.Store.MarkRunFailed(runID, err.Error())
		return err
	}
	return p.Store.MarkRunOK(runID)
}

func (p *Pipeline) submitAndAwait(ctx context.Context, jobName string, a lms.Assignment, updates map[string]lms.GradeUpdate) error {
	prog, err := p.LMS.BulkSubmitGrades(ctx, a, updates)
	if err != nil {
		return &lms.PublishError{Job: jobName, State: "submit", Reason: err.Error()}
	}
	return lms.AwaitProgress(ctx, p.LMS, jobName, prog, p.Backoff, p.MaxAttempts)
}

// updateSlipLedger folds this batch's slip-day flags into the running
// totals. The prior totals are read once, the new totals written once:
// one read-modify-write per batch. Students with no new usage are skipped
// so the ledger is not rewritten redundantly.
func (p *Pipeline) updateSlipLedger(ctx context.Context, job *config.Job, merged []gradebook.MergedRow) error {
	ledger, created, err := p.ensureAssignment(ctx, job.Group, lms.AssignmentOpts{
		Name:               slipLedgerName,
		Points:             job.Policy.TotalSlipDays,
		OmitFromFinalGrade: true,
		Notify:             true,
		Description:        "Running total of slip days consumed this term.",
	})
	if err != nil {
		return err
	}

	prior := map[string]float64{}
	if created {
		// Fresh ledger: start everyone at zero so students see their
		// allowance before first use.
		initial := make(map[string]lms.GradeUpdate)
		for _, row := range merged {
			if row.Entry.Staff || row.Entry.LMSID == "" {
				continue
			}
			initial[row.Entry.LMSID] = lms.GradeUpdate{Score: 0}
		}
		if len(initial) > 0 {
			if err := p.submitAndAwait(ctx, slipLedgerName, ledger, initial); err != nil {
				return err
			}
		}
	} else {
		prior, err = p.LMS.PriorSubmissions(ctx, ledger)
		if err != nil {
			return &lms.PublishError{Job: slipLedgerName, State: "read", Reason: err.Error()}
		}
	}

	updates := make(map[string]lms.GradeUpdate)
	for _, row := range merged {
		if row.Entry.Staff || row.Entry.LMSID == "" || row.Record == nil {
			continue
		}
		if row.Record.SlipDays <= 0 {
			continue
		}
		total := prior[row.Entry.LMSID] + float64(row.Record.SlipDays)
		updates[row.Entry.LMSID] = lms.GradeUpdate{
			Score:   total,
			Comment: "Slip Day Used in " + job.Assignment,
		}
		if err := p.Store.RecordSlipDays(row.Entry.Email, total); err != nil {
			return err
		}
	}
	if len(updates) == 0 {
		return nil
	}
	return p.submitAndAwait(ctx, slipLedgerName, ledger, updates)
}
