package gradebook

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

// Activity is one graded sub-activity declared by the rubric. Weight is the
// nominal point weight; the weight actually used for scoring is parsed from
// the sheet header, since cohorts occasionally ship a revised weight before
// the rubric file catches up.
type Activity struct {
	Name   string `yaml:"activity"`
	Weight int    `yaml:"weight"`
}

// Rubric maps a section identifier (e.g. "1.2") to its ordered graded
// activities. Sheet headers encode entries as "<section> - <activity> (<weight>)".
type Rubric map[string][]Activity

// MatchedColumn is a sheet column claimed by the rubric, with the weight
// parsed out of its label.
type MatchedColumn struct {
	Label  string
	Weight int
}

// Pattern builds the combined matcher for the whole rubric: one alternation
// with a sub-pattern and captured weight group per (section, activity) pair.
// Sections are ordered for a stable pattern.
func (r Rubric) Pattern() (*regexp.Regexp, error) {
	sections := make([]string, 0, len(r))
	for sec := range r {
		sections = append(sections, sec)
	}
	sort.Strings(sections)

	pat := ""
	for _, sec := range sections {
		for _, act := range r[sec] {
			if act.Weight <= 0 {
				return nil, &ConfigurationError{
					Reason: fmt.Sprintf("rubric %s - %s: weight must be a positive integer", sec, act.Name),
				}
			}
			if pat != "" {
				pat += "|"
			}
			pat += `(?:^` + regexp.QuoteMeta(sec+" - "+act.Name) + ` \(([0-9]+)\)$)`
		}
	}
	if pat == "" {
		return nil, &ConfigurationError{Reason: "empty rubric"}
	}
	return regexp.Compile(pat)
}

// MatchColumns tests every sheet column label against the rubric pattern and
// returns the graded columns in label-sorted order. Labels that match no
// rubric entry are ignored: source sheets routinely carry non-graded
// metadata columns. Rubric entries with no matching label are skipped; not
// every section offers every activity every term.
func (r Rubric) MatchColumns(labels []string) ([]MatchedColumn, error) {
	pat, err := r.Pattern()
	if err != nil {
		return nil, err
	}

	var cols []MatchedColumn
	for _, label := range labels {
		m := pat.FindStringSubmatch(label)
		if m == nil {
			continue
		}
		// One capture group per sub-pattern; the matching alternative
		// leaves the only non-empty group.
		for _, g := range m[1:] {
			if g == "" {
				continue
			}
			w, err := strconv.Atoi(g)
			if err != nil {
				return nil, fmt.Errorf("parse weight in %q: %w", label, err)
			}
			cols = append(cols, MatchedColumn{Label: label, Weight: w})
			break
		}
	}

	// Sorted by label so the matched set is independent of header order.
	sort.Slice(cols, func(i, j int) bool { return cols[i].Label < cols[j].Label })
	return cols, nil
}

// TotalPossible is the batch denominator: the sum of weights of the columns
// that actually matched, never the nominal full-rubric sum. A section
// missing an activity this term must not inflate the denominator.
func TotalPossible(cols []MatchedColumn) int {
	total := 0
	for _, c := range cols {
		total += c.Weight
	}
	return total
}
