package source

import (
	"strings"

	"github.com/dsc-courses/gradesync/internal/gradebook"
	"github.com/dsc-courses/gradesync/internal/sheet"
)

// readingSource scores reading-activity completion exports. The rubric
// selects the graded section columns; the weighted aggregate is bucketed
// into the 0..5 reading score.
type readingSource struct {
	rubric gradebook.Rubric
}

const readingIdentityColumn = "Primary email"

func (s *readingSource) Name() string { return "reading" }

func (s *readingSource) Compute(in Inputs) (*Result, error) {
	if err := identityColumn(in.Scores, readingIdentityColumn); err != nil {
		return nil, err
	}

	cols, err := s.rubric.MatchColumns(in.Scores.Columns)
	if err != nil {
		return nil, err
	}

	rows := make([]gradebook.RawRow, 0, len(in.Scores.Rows))
	for _, row := range in.Scores.Rows {
		raw := gradebook.RawRow{
			Identity: in.Aliases.Resolve(strings.TrimSpace(row[readingIdentityColumn])),
			Values:   make(map[string]gradebook.Cell, len(cols)),
		}
		for _, c := range cols {
			raw.Values[c.Label] = sheet.Numeric(row, c.Label)
		}
		rows = append(rows, raw)
	}

	records, err := gradebook.ComputeScores(rows, cols)
	if err != nil {
		return nil, err
	}
	for i := range records {
		records[i].Bucket = gradebook.Bucketize(records[i].Percentage)
		records[i].Score = float64(records[i].Bucket)
	}
	return &Result{Records: records}, nil
}
