package gradebook_test

import (
	"testing"

	"github.com/dsc-courses/gradesync/internal/gradebook"
)

func TestMergeWithRoster(t *testing.T) {
	roster := []gradebook.RosterEntry{
		{Email: "ann@example.edu", Name: "Ann", LMSID: "1001"},
		{Email: "bob@example.edu", Name: "Bob", LMSID: "1002"},
		{Email: "cat@example.edu", Name: "Cat"}, // no LMS id resolved
	}
	records := []gradebook.ScoreRecord{
		{Identity: "ann@example.edu", Score: 4},
		{Identity: "ghost@example.edu", Score: 5}, // not on the roster
	}

	merged, unmatched := gradebook.MergeWithRoster(records, roster)
	if len(merged) != 4 {
		t.Fatalf("merged rows = %d, want 4", len(merged))
	}

	byEmail := map[string]gradebook.MergedRow{}
	for _, row := range merged {
		byEmail[row.Entry.Email] = row
	}

	if row := byEmail["ann@example.edu"]; row.Score != 4 || row.Record == nil {
		t.Fatalf("ann: %+v", row)
	}
	// Roster identity with no score: present, score zero, not an error.
	if row := byEmail["bob@example.edu"]; row.Score != 0 || row.Record != nil {
		t.Fatalf("bob: %+v, want zero score", row)
	}
	// Score identity not on the roster: present with blank roster fields.
	ghost := byEmail["ghost@example.edu"]
	if ghost.Record == nil || ghost.Entry.Name != "" || ghost.Entry.LMSID != "" {
		t.Fatalf("ghost: %+v, want blank roster fields", ghost)
	}

	// cat (no LMS id) and ghost must surface for review, never be dropped.
	if len(unmatched) != 2 {
		t.Fatalf("unmatched = %+v, want cat and ghost", unmatched)
	}
	seen := map[string]bool{}
	for _, row := range unmatched {
		seen[row.Entry.Email] = true
	}
	if !seen["cat@example.edu"] || !seen["ghost@example.edu"] {
		t.Fatalf("unmatched = %+v", unmatched)
	}
}

func TestMergeWithRosterSortedOutput(t *testing.T) {
	roster := []gradebook.RosterEntry{
		{Email: "z@example.edu", LMSID: "2"},
		{Email: "a@example.edu", LMSID: "1"},
	}
	merged, _ := gradebook.MergeWithRoster(nil, roster)
	if merged[0].Entry.Email != "a@example.edu" || merged[1].Entry.Email != "z@example.edu" {
		t.Fatalf("merged not sorted by email: %+v", merged)
	}
}
