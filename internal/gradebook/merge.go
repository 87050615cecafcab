package gradebook

import "sort"

// MergeWithRoster outer-joins computed records onto the full roster by
// canonical identity.
//
// Every roster entry appears in merged; entries with no record get Score 0
// (a student who never submitted earns zero, not an error). Every record
// whose identity is not on the roster also appears, with a blank roster
// entry. Rows without a remote LMS id are additionally returned as
// unmatched: they must be excluded from publishing and reviewed manually,
// never silently dropped or silently posted. Staff rows are never
// unmatched; they are simply not published.
//
// merged is sorted by email so downstream artifacts are reproducible.
func MergeWithRoster(records []ScoreRecord, roster []RosterEntry) (merged, unmatched []MergedRow) {
	byIdentity := make(map[string]*ScoreRecord, len(records))
	for i := range records {
		byIdentity[records[i].Identity] = &records[i]
	}

	seen := make(map[string]bool, len(roster))
	for _, entry := range roster {
		seen[entry.Email] = true
		row := MergedRow{Entry: entry}
		if rec, ok := byIdentity[entry.Email]; ok {
			row.Record = rec
			row.Score = rec.Score
		}
		merged = append(merged, row)
	}
	for i := range records {
		rec := &records[i]
		if seen[rec.Identity] {
			continue
		}
		merged = append(merged, MergedRow{
			Entry:  RosterEntry{Email: rec.Identity},
			Score:  rec.Score,
			Record: rec,
		})
	}

	sort.Slice(merged, func(i, j int) bool { return merged[i].Entry.Email < merged[j].Entry.Email })

	for _, row := range merged {
		if row.Entry.LMSID == "" && !row.Entry.Staff {
			unmatched = append(unmatched, row)
		}
	}
	return merged, unmatched
}
