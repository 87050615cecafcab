package gradebook

import "math"

// ComputeScores reduces raw submission rows to one ScoreRecord per row
// against the matched rubric columns.
//
// Per row, each column contributes round-half-to-even(value × weight / 100),
// and the contributions are summed. Rounding happens per column before
// summation; grades posted in earlier terms were computed that way and the
// two orders disagree on real sheets, so the order is load-bearing. Missing
// cells count as zero.
//
// The percentage denominator comes from TotalPossible(cols). A batch where
// nothing matched has no denominator and is rejected rather than defaulted.
func ComputeScores(rows []RawRow, cols []MatchedColumn) ([]ScoreRecord, error) {
	total := TotalPossible(cols)
	if total == 0 {
		return nil, &DataIntegrityError{Reason: "no rubric columns matched; total possible score is zero"}
	}

	records := make([]ScoreRecord, 0, len(rows))
	for _, row := range rows {
		raw := 0
		for _, c := range cols {
			cell := row.Values[c.Label]
			if cell.Missing {
				continue // missing counts as zero
			}
			raw += int(math.RoundToEven(cell.Value * float64(c.Weight) / 100))
		}
		pct := float64(raw) / float64(total) * 100
		records = append(records, ScoreRecord{
			Identity:   row.Identity,
			Raw:        raw,
			Percentage: pct,
			Score:      float64(raw),
			LateFactor: 1,
		})
	}
	return records, nil
}
