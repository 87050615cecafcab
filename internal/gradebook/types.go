// Package gradebook implements the score-computation core: rubric column
// selection, weighted aggregation, threshold bucketing, lateness adjustment
// and the roster merge. The package is pure computation; file and LMS I/O
// live in internal/sheet, internal/roster and internal/lms.
package gradebook

// Cell is one numeric spreadsheet value. Missing is distinct from zero: a
// student who skipped an activity has a missing cell, a student who scored
// zero has Value 0.
type Cell struct {
	Value   float64
	Missing bool
}

// RawRow is one submission record: the identity as typed into the source
// tool, plus the numeric cells keyed by column label.
type RawRow struct {
	Identity string
	Values   map[string]Cell
}

// ScoreRecord is the per-student outcome of one assignment batch. It is
// created by the aggregation step and mutated only by the lateness /
// extra-credit adjustment.
type ScoreRecord struct {
	Identity   string
	Raw        int     // weighted aggregate, in rubric points
	Percentage float64 // Raw / total-possible * 100
	Score      float64 // final assignment score after policy adjustments

	Bucket     int     // set by bucketing sources
	LateFactor float64 // penalty policy; 1 when no penalty applies
	SlipDays   int     // slip-day policy; days newly incurred this batch

	Extra map[string]float64 // extra-credit additions by section name
}

// RosterEntry is one student (or staff member) on the canonical roster.
// An empty LMSID marks an identity that could not be matched to the remote
// gradebook; such rows are reported, never published.
type RosterEntry struct {
	Email string
	Name  string
	Staff bool
	LMSID string
}

// MergedRow is one row of the final per-student table: the roster entry
// outer-joined with the computed record. Record is nil for students who
// never submitted; their Score is zero. Entry is zero-valued (blank fields)
// for submissions whose identity is not on the roster.
type MergedRow struct {
	Entry  RosterEntry
	Score  float64
	Record *ScoreRecord
}
