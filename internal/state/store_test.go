package state_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dsc-courses/gradesync/internal/lms"
	"github.com/dsc-courses/gradesync/internal/state"
)

func openStore(t *testing.T) *state.Store {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "state.db") + "?_pragma=busy_timeout(5000)"
	db, err := state.Open(context.Background(), state.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &state.Store{DB: db}
}

func TestAssignmentCache(t *testing.T) {
	s := openStore(t)

	if _, ok, err := s.FindAssignment("Homework 1", "Homework"); err != nil || ok {
		t.Fatalf("empty cache: ok=%v err=%v", ok, err)
	}

	a := lms.Assignment{ID: "400", Name: "Homework 1", GroupID: "3", PointsPossible: 100}
	if err := s.CacheAssignment("Homework", a); err != nil {
		t.Fatalf("cache: %v", err)
	}
	got, ok, err := s.FindAssignment("Homework 1", "Homework")
	if err != nil || !ok {
		t.Fatalf("find: ok=%v err=%v", ok, err)
	}
	if got != a {
		t.Fatalf("cached = %+v, want %+v", got, a)
	}

	// Upsert replaces the handle.
	a.ID = "401"
	if err := s.CacheAssignment("Homework", a); err != nil {
		t.Fatalf("recache: %v", err)
	}
	got, _, _ = s.FindAssignment("Homework 1", "Homework")
	if got.ID != "401" {
		t.Fatalf("upsert kept old id: %+v", got)
	}
}

func TestPublishRuns(t *testing.T) {
	s := openStore(t)

	id, err := s.BeginRun("Homework 1")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := s.MarkRunFailed(id, "bulk update failed"); err != nil {
		t.Fatalf("fail: %v", err)
	}
	if err := s.MarkRunOK(id); err != nil {
		t.Fatalf("ok: %v", err)
	}

	var status string
	var retries int
	if err := s.DB.QueryRow(`SELECT status, retries FROM publish_runs WHERE id=$1`, id).
		Scan(&status, &retries); err != nil {
		t.Fatalf("query: %v", err)
	}
	if status != "ok" || retries != 1 {
		t.Fatalf("status=%q retries=%d", status, retries)
	}
}

func TestSlipDayTotals(t *testing.T) {
	s := openStore(t)

	if _, ok, err := s.SlipDayTotal("ann@example.edu"); err != nil || ok {
		t.Fatalf("fresh total: ok=%v err=%v", ok, err)
	}
	if err := s.RecordSlipDays("ann@example.edu", 2); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := s.RecordSlipDays("ann@example.edu", 3); err != nil {
		t.Fatalf("update: %v", err)
	}
	total, ok, err := s.SlipDayTotal("ann@example.edu")
	if err != nil || !ok || total != 3 {
		t.Fatalf("total=%v ok=%v err=%v", total, ok, err)
	}
}
