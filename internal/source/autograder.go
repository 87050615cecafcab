package source

import (
	"sort"
	"strings"
	"unicode"

	"github.com/dsc-courses/gradesync/internal/config"
	"github.com/dsc-courses/gradesync/internal/gradebook"
	"github.com/dsc-courses/gradesync/internal/sheet"
)

// autograderSource scores autograder exports: the assignment score comes
// straight off the sheet, then the configured lateness policy and any
// extra-credit sections are applied.
type autograderSource struct {
	policy config.Policy
}

const (
	autograderIdentityColumn = "Email"
	autograderScoreColumn    = "Total Score"
	submissionIDColumn       = "Assignment Submission ID"

	slipNoLatenessColumn = "No Lateness"
	slipUsedColumn       = "Slip Day Used"
)

func (s *autograderSource) Name() string { return "autograder" }

func (s *autograderSource) Compute(in Inputs) (*Result, error) {
	if err := identityColumn(in.Scores, autograderIdentityColumn); err != nil {
		return nil, err
	}

	records := make([]gradebook.ScoreRecord, 0, len(in.Scores.Rows))
	for _, row := range in.Scores.Rows {
		cell := sheet.Numeric(row, autograderScoreColumn)
		score := 0.0 // unscored submissions earn zero
		if !cell.Missing {
			score = cell.Value
		}
		records = append(records, gradebook.ScoreRecord{
			Identity:   in.Aliases.Resolve(strings.TrimSpace(row[autograderIdentityColumn])),
			Score:      score,
			LateFactor: 1,
		})
	}

	if s.policy.Lateness != gradebook.PolicyNone {
		lateRows, err := s.latenessRows(in)
		if err != nil {
			return nil, err
		}
		indicators, err := s.indicators(in)
		if err != nil {
			return nil, err
		}
		records, err = gradebook.ApplyLateness(records, s.policy.Lateness, indicators, lateRows)
		if err != nil {
			return nil, err
		}
	}

	result := &Result{Records: records}
	sections := make([]string, 0, len(in.Other))
	for name := range in.Other {
		sections = append(sections, name)
	}
	sort.Strings(sections)
	for _, name := range sections {
		values, err := sectionValues(in.Other[name], in.Aliases)
		if err != nil {
			return nil, err
		}
		var report gradebook.JoinReport
		result.Records, report = gradebook.AddExtraCredit(result.Records, name, values)
		if !report.Empty() {
			result.Reports = append(result.Reports, report)
		}
	}
	return result, nil
}

// latenessRows converts the lateness export, keeping only rows with a
// numeric submission id; the export pads in header-like and summary rows.
func (s *autograderSource) latenessRows(in Inputs) ([]gradebook.RawRow, error) {
	if in.Lateness == nil {
		return nil, &gradebook.ConfigurationError{Reason: "lateness policy selected but no lateness sheet loaded"}
	}
	if err := identityColumn(in.Lateness, autograderIdentityColumn); err != nil {
		return nil, err
	}

	var rows []gradebook.RawRow
	for _, row := range in.Lateness.Rows {
		if in.Lateness.HasColumn(submissionIDColumn) && !isNumeric(row[submissionIDColumn]) {
			continue
		}
		raw := gradebook.RawRow{
			Identity: in.Aliases.Resolve(strings.TrimSpace(row[autograderIdentityColumn])),
			Values:   make(map[string]gradebook.Cell, len(in.Lateness.Columns)),
		}
		for _, col := range in.Lateness.Columns {
			raw.Values[col] = sheet.Numeric(row, col)
		}
		rows = append(rows, raw)
	}
	return rows, nil
}

// indicators maps the policy onto the lateness sheet's actual columns.
// Penalty tiers match columns by substring, in tier order; slip day uses
// the two fixed flag columns.
func (s *autograderSource) indicators(in Inputs) ([]gradebook.Indicator, error) {
	switch s.policy.Lateness {
	case gradebook.PolicyPenalty:
		var indicators []gradebook.Indicator
		for _, tier := range s.policy.Tiers {
			for _, col := range in.Lateness.Columns {
				if strings.Contains(strings.ToLower(col), strings.ToLower(tier.Match)) {
					indicators = append(indicators, gradebook.Indicator{Column: col, Factor: tier.Factor})
					break
				}
			}
		}
		if len(indicators) == 0 {
			return nil, &gradebook.DataIntegrityError{Reason: "no lateness column matches any penalty tier"}
		}
		return indicators, nil
	case gradebook.PolicySlipDay:
		for _, col := range []string{slipNoLatenessColumn, slipUsedColumn} {
			if !in.Lateness.HasColumn(col) {
				return nil, &gradebook.DataIntegrityError{Reason: "lateness sheet missing column " + col}
			}
		}
		return []gradebook.Indicator{
			{Column: slipNoLatenessColumn, Factor: 0},
			{Column: slipUsedColumn, Factor: 1},
		}, nil
	}
	return nil, nil
}

// sectionValues reduces an auxiliary sheet to identity→score.
func sectionValues(tbl *sheet.Table, aliases gradebook.AliasMap) (map[string]float64, error) {
	if err := identityColumn(tbl, autograderIdentityColumn); err != nil {
		return nil, err
	}
	values := make(map[string]float64, len(tbl.Rows))
	for _, row := range tbl.Rows {
		id := aliases.Resolve(strings.TrimSpace(row[autograderIdentityColumn]))
		if id == "" {
			continue
		}
		cell := sheet.Numeric(row, autograderScoreColumn)
		if cell.Missing {
			values[id] = 0
		} else {
			values[id] = cell.Value
		}
	}
	return values, nil
}

func isNumeric(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
