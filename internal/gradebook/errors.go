package gradebook

import (
	"fmt"
	"strings"
)

// ConfigurationError reports an invalid batch configuration, such as both
// lateness policies being selected at once. It is surfaced before any row
// is processed.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration: " + e.Reason
}

// DataIntegrityError aborts the current batch: the inputs cannot produce
// trustworthy scores. Rows carries the offending identities or labels when
// known, so the operator can correct the source sheet.
type DataIntegrityError struct {
	Reason string
	Rows   []string
}

func (e *DataIntegrityError) Error() string {
	if len(e.Rows) == 0 {
		return "data integrity: " + e.Reason
	}
	return fmt.Sprintf("data integrity: %s (%s)", e.Reason, strings.Join(e.Rows, ", "))
}

// JoinReport flags identities that appear on only one side of an
// extra-credit join. Mismatches here are a data-integrity signal, not a
// fault: affected students keep their primary score and the report is
// returned for manual review.
type JoinReport struct {
	Section string
	// MissingFromSection lists score-sheet identities absent from the
	// section sheet; they received zero from that section.
	MissingFromSection []string
	// UnknownInSection lists section-sheet identities absent from the
	// score sheet; their values were not applied anywhere.
	UnknownInSection []string
}

// Empty reports whether the join was clean.
func (r JoinReport) Empty() bool {
	return len(r.MissingFromSection) == 0 && len(r.UnknownInSection) == 0
}
