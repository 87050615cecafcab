package gradebook

import (
	"fmt"
	"sort"
)

// LatePolicy selects how lateness affects a batch. The two active policies
// are mutually exclusive per assignment.
type LatePolicy string

const (
	// PolicyNone leaves scores untouched.
	PolicyNone LatePolicy = "none"
	// PolicyPenalty multiplies each score by a factor in [0,1] chosen from
	// the lateness sheet's indicator columns.
	PolicyPenalty LatePolicy = "penalty"
	// PolicySlipDay flags whether a slip day was consumed. Late work keeps
	// full credit; the flag accumulates into a remote running total.
	PolicySlipDay LatePolicy = "slip_day"
)

// Indicator is one candidate lateness category: the lateness-sheet column
// holding its indicator value, and the factor awarded when the category is
// chosen. Under PolicySlipDay the factor is the slip-day increment (0 or 1).
type Indicator struct {
	Column string
	Factor float64
}

// argmax picks the indicator whose column holds the maximum value in row.
// Ties go to the first declared indicator, so tier declaration order is the
// tie-break. A row where every candidate is missing selects nothing.
func argmax(row RawRow, indicators []Indicator) (Indicator, bool) {
	best := -1
	bestVal := 0.0
	for i, ind := range indicators {
		cell, ok := row.Values[ind.Column]
		if !ok || cell.Missing {
			continue
		}
		if best == -1 || cell.Value > bestVal {
			best = i
			bestVal = cell.Value
		}
	}
	if best == -1 {
		return Indicator{}, false
	}
	return indicators[best], true
}

// ApplyLateness applies the selected policy to records and returns a new
// record set; the inputs are not mutated. lateRows carries the lateness
// export keyed by canonical identity.
//
// Penalty: records get the argmax factor of their lateness row, defaulting
// to 1.0 when the identity has no row or no indicator is set (fail open),
// and Score is scaled by the factor.
//
// Slip day: records get the argmax increment as SlipDays; Score is not
// scaled.
func ApplyLateness(records []ScoreRecord, policy LatePolicy, indicators []Indicator, lateRows []RawRow) ([]ScoreRecord, error) {
	if policy == PolicyNone {
		out := make([]ScoreRecord, len(records))
		copy(out, records)
		return out, nil
	}
	if policy != PolicyPenalty && policy != PolicySlipDay {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("unknown lateness policy %q", policy)}
	}
	if len(indicators) == 0 {
		return nil, &ConfigurationError{Reason: "lateness policy selected but no indicator columns supplied"}
	}
	if policy == PolicyPenalty {
		for _, ind := range indicators {
			if ind.Factor < 0 || ind.Factor > 1 {
				return nil, &ConfigurationError{
					Reason: fmt.Sprintf("penalty factor for %q is %v, want [0,1]", ind.Column, ind.Factor),
				}
			}
		}
	}

	byIdentity := make(map[string]RawRow, len(lateRows))
	for _, row := range lateRows {
		byIdentity[row.Identity] = row
	}

	out := make([]ScoreRecord, len(records))
	for i, rec := range records {
		switch policy {
		case PolicyPenalty:
			factor := 1.0 // benefit of the doubt
			if row, ok := byIdentity[rec.Identity]; ok {
				if ind, ok := argmax(row, indicators); ok {
					factor = ind.Factor
				}
			}
			rec.LateFactor = factor
			rec.Score *= factor
		case PolicySlipDay:
			if row, ok := byIdentity[rec.Identity]; ok {
				if ind, ok := argmax(row, indicators); ok {
					rec.SlipDays = int(ind.Factor)
				}
			}
		}
		out[i] = rec
	}
	return out, nil
}

// AddExtraCredit joins an auxiliary section's scores onto records by
// canonical identity and adds them to Score. Extra credit is applied after
// the lateness adjustment, so it is immune to penalties.
//
// The join is checked, not trusted: identities present on only one side are
// collected into the report instead of being dropped. Records with no
// section value gain zero.
func AddExtraCredit(records []ScoreRecord, section string, values map[string]float64) ([]ScoreRecord, JoinReport) {
	report := JoinReport{Section: section}

	known := make(map[string]bool, len(records))
	out := make([]ScoreRecord, len(records))
	for i, rec := range records {
		known[rec.Identity] = true
		v, ok := values[rec.Identity]
		if !ok {
			report.MissingFromSection = append(report.MissingFromSection, rec.Identity)
		} else {
			rec.Score += v
			if rec.Extra == nil {
				rec.Extra = map[string]float64{}
			} else {
				extra := make(map[string]float64, len(rec.Extra)+1)
				for k, ev := range rec.Extra {
					extra[k] = ev
				}
				rec.Extra = extra
			}
			rec.Extra[section] = v
		}
		out[i] = rec
	}
	for id := range values {
		if !known[id] {
			report.UnknownInSection = append(report.UnknownInSection, id)
		}
	}
	sort.Strings(report.UnknownInSection)
	return out, report
}
