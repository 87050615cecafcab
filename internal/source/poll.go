package source

import (
	"strings"

	"github.com/dsc-courses/gradesync/internal/gradebook"
)

// pollSource scores live-lecture poll exports. Every non-metadata column is
// one poll question; a student earns the single participation point by
// answering at least minPoll of the questions asked that lecture.
type pollSource struct {
	minPoll float64
}

const pollIdentityColumn = "User Email"

// pollMetadata columns ship in every export and are not questions.
var pollMetadata = map[string]bool{
	"User Email":            true,
	"User ID":               true,
	"User Name":             true,
	"User company":          true,
	"Total Correct Answers": true,
}

func (s *pollSource) Name() string { return "poll" }

func (s *pollSource) Compute(in Inputs) (*Result, error) {
	if err := identityColumn(in.Scores, pollIdentityColumn); err != nil {
		return nil, err
	}

	var questions []string
	for _, col := range in.Scores.Columns {
		if !pollMetadata[col] {
			questions = append(questions, col)
		}
	}
	if len(questions) == 0 {
		return nil, &gradebook.DataIntegrityError{Reason: "poll export has no question columns"}
	}

	records := make([]gradebook.ScoreRecord, 0, len(in.Scores.Rows))
	for _, row := range in.Scores.Rows {
		answered := 0
		for _, q := range questions {
			if strings.TrimSpace(row[q]) != "" {
				answered++
			}
		}
		score := 0.0
		if float64(answered)/float64(len(questions)) >= s.minPoll {
			score = 1
		}
		records = append(records, gradebook.ScoreRecord{
			Identity:   in.Aliases.Resolve(strings.TrimSpace(row[pollIdentityColumn])),
			Score:      score,
			LateFactor: 1,
		})
	}
	return &Result{Records: records}, nil
}
