package roster_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dsc-courses/gradesync/internal/roster"
)

func write(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	rosterPath := write(t, dir, "roster.csv",
		"email,name,id\nann@example.edu,Ann,1001\nbob@example.edu,Bob,\nta@example.edu,TA,1900\n")
	staffPath := write(t, dir, "staff.csv", "email\nta@example.edu\n")
	aliasPath := write(t, dir, "aliases.csv", "typed,email\nann@gmail.com,ann@example.edu\n")

	d, err := roster.Load(rosterPath, staffPath, aliasPath)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(d.Entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(d.Entries))
	}
	byEmail := map[string]int{}
	for i, e := range d.Entries {
		byEmail[e.Email] = i
	}
	if e := d.Entries[byEmail["ann@example.edu"]]; e.Name != "Ann" || e.LMSID != "1001" || e.Staff {
		t.Fatalf("ann = %+v", e)
	}
	if e := d.Entries[byEmail["bob@example.edu"]]; e.LMSID != "" {
		t.Fatalf("bob should have no LMS id: %+v", e)
	}
	if e := d.Entries[byEmail["ta@example.edu"]]; !e.Staff {
		t.Fatalf("staff flag not applied: %+v", e)
	}
	if got := d.Aliases.Resolve("ann@gmail.com"); got != "ann@example.edu" {
		t.Fatalf("alias resolve = %q", got)
	}
}

func TestLoadRosterEmpty(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "roster.csv", "email,name,id\n")
	if _, err := roster.LoadRoster(path); err == nil {
		t.Fatalf("expected error for empty roster")
	}
}

func TestLoadWithoutOptionalFiles(t *testing.T) {
	dir := t.TempDir()
	rosterPath := write(t, dir, "roster.csv", "email,name,id\nann@example.edu,Ann,1001\n")
	d, err := roster.Load(rosterPath, "", "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := d.Aliases.Resolve("x@example.edu"); got != "x@example.edu" {
		t.Fatalf("empty alias map should pass identities through, got %q", got)
	}
}
