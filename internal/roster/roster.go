// Package roster loads the canonical student roster, the staff list and the
// email-alias table from CSV files exported by the registrar tooling.
package roster

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dsc-courses/gradesync/internal/gradebook"
)

// Directory bundles the per-term personnel records every batch needs.
type Directory struct {
	Entries []gradebook.RosterEntry
	Aliases gradebook.AliasMap
}

// Load reads the roster and alias files. staffPath and aliasPath may be
// empty; a term without recorded aliases is normal in week one.
func Load(rosterPath, staffPath, aliasPath string) (*Directory, error) {
	entries, err := LoadRoster(rosterPath)
	if err != nil {
		return nil, err
	}

	if staffPath != "" {
		staff, err := LoadStaff(staffPath)
		if err != nil {
			return nil, err
		}
		for i := range entries {
			if staff[entries[i].Email] {
				entries[i].Staff = true
			}
		}
	}

	aliases := gradebook.AliasMap{}
	if aliasPath != "" {
		aliases, err = LoadAliases(aliasPath)
		if err != nil {
			return nil, err
		}
	}
	return &Directory{Entries: entries, Aliases: aliases}, nil
}

// LoadRoster reads a roster CSV with header email,name,id. The id column is
// the remote LMS user id and may be blank for students the LMS has not
// matched yet; those rows surface later as email mismatches.
func LoadRoster(path string) ([]gradebook.RosterEntry, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	var entries []gradebook.RosterEntry
	for _, row := range rows {
		email := strings.TrimSpace(row["email"])
		if email == "" {
			continue
		}
		entries = append(entries, gradebook.RosterEntry{
			Email: email,
			Name:  strings.TrimSpace(row["name"]),
			LMSID: strings.TrimSpace(row["id"]),
		})
	}
	if len(entries) == 0 {
		return nil, &gradebook.DataIntegrityError{Reason: fmt.Sprintf("roster %s has no entries", path)}
	}
	return entries, nil
}

// LoadStaff reads the staff list: one email per line, or a CSV with an
// email column.
func LoadStaff(path string) (map[string]bool, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	staff := map[string]bool{}
	for _, row := range rows {
		if email := strings.TrimSpace(row["email"]); email != "" {
			staff[email] = true
		}
	}
	return staff, nil
}

// LoadAliases reads the typed→canonical email table (header typed,email).
func LoadAliases(path string) (gradebook.AliasMap, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	aliases := gradebook.AliasMap{}
	for _, row := range rows {
		typed := strings.TrimSpace(row["typed"])
		canonical := strings.TrimSpace(row["email"])
		if typed != "" && canonical != "" {
			aliases[typed] = canonical
		}
	}
	return aliases, nil
}

func readCSV(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("read %s: empty file", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}

	var rows []map[string]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		row := make(map[string]string, len(header))
		for i, label := range header {
			if i < len(rec) {
				row[label] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
