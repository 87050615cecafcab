// Package source adapts each third-party export format to the scoring core.
// One Source per format, selected by the job file; the shared pipeline in
// internal/pipeline composes whichever source is configured. Each source
// resolves typed identities through the alias table before any join, so all
// downstream keys are canonical.
package source

import (
	"fmt"

	"github.com/dsc-courses/gradesync/internal/config"
	"github.com/dsc-courses/gradesync/internal/gradebook"
	"github.com/dsc-courses/gradesync/internal/sheet"
)

// Inputs carries the loaded sheets of one batch.
type Inputs struct {
	Scores   *sheet.Table
	Lateness *sheet.Table
	Other    map[string]*sheet.Table
	Aliases  gradebook.AliasMap
}

// Result is the computed batch: one record per submission, plus any join
// reports produced while attaching auxiliary sections.
type Result struct {
	Records []gradebook.ScoreRecord
	Reports []gradebook.JoinReport
}

// Source turns a batch's sheets into score records under one format's
// scoring policy.
type Source interface {
	Name() string
	Compute(in Inputs) (*Result, error)
}

// New builds the source for a validated job.
func New(job *config.Job) (Source, error) {
	switch job.Source {
	case config.SourcePoll:
		return &pollSource{minPoll: job.MinPoll}, nil
	case config.SourceReading:
		return &readingSource{rubric: job.Rubric}, nil
	case config.SourceAutograder:
		return &autograderSource{policy: job.Policy}, nil
	default:
		return nil, &gradebook.ConfigurationError{Reason: fmt.Sprintf("unknown source type %q", job.Source)}
	}
}

// identityColumn validates that the export carries its identity column.
func identityColumn(t *sheet.Table, label string) error {
	if t == nil {
		return &gradebook.DataIntegrityError{Reason: "scores sheet not loaded"}
	}
	if !t.HasColumn(label) {
		return &gradebook.DataIntegrityError{Reason: fmt.Sprintf("required identity column %q is absent", label)}
	}
	return nil
}
