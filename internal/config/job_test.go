package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dsc-courses/gradesync/internal/config"
	"github.com/dsc-courses/gradesync/internal/gradebook"
)

func writeJob(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "job.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadJobDefaults(t *testing.T) {
	path := writeJob(t, `
assignment: Reading 3
source: reading
files:
  scores: data/reading3.csv
rubric:
  "1.2":
    - activity: Participation
      weight: 5
  "1.3":
    - activity: Participation
      weight: 5
    - activity: Challenge
      weight: 10
`)
	job, err := config.LoadJob(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if job.Group != "Readings" || job.Points != 5 || job.Dir != "readings" {
		t.Fatalf("defaults not applied: %+v", job)
	}
	if job.Policy.Lateness != gradebook.PolicyNone {
		t.Fatalf("policy = %q, want none", job.Policy.Lateness)
	}
	if len(job.Rubric["1.3"]) != 2 || job.Rubric["1.3"][1].Weight != 10 {
		t.Fatalf("rubric = %+v", job.Rubric)
	}
}

func TestLoadJobAutograder(t *testing.T) {
	path := writeJob(t, `
assignment: Homework 1
source: autograder
due: 2026-01-20 23:59
files:
  scores: data/hw1.csv
  lateness: data/hw1_lateness.csv
  other:
    Extra Credit: data/hw1_ec.csv
policy:
  lateness: penalty
  tiers:
    - {match: "no lateness", factor: 1.0}
    - {match: "up to 24", factor: 0.8}
    - {match: "up to 48", factor: 0.5}
    - {match: "over 48", factor: 0.0}
`)
	job, err := config.LoadJob(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if job.Points != 100 || job.Group != "Homework" {
		t.Fatalf("defaults: %+v", job)
	}
	due, err := job.DueTime()
	if err != nil || due == nil || due.Minute() != 59 {
		t.Fatalf("due = %v err = %v", due, err)
	}
	if len(job.Policy.Tiers) != 4 || job.Policy.Tiers[1].Factor != 0.8 {
		t.Fatalf("tiers = %+v", job.Policy.Tiers)
	}
}

func TestLoadJobMutuallyExclusivePolicies(t *testing.T) {
	path := writeJob(t, `
assignment: Homework 1
source: autograder
files:
  scores: data/hw1.csv
  lateness: data/hw1_lateness.csv
policy:
  lateness: penalty
  total_slip_days: 6
  tiers:
    - {match: "no lateness", factor: 1.0}
`)
	_, err := config.LoadJob(path)
	var cfg *gradebook.ConfigurationError
	if !errors.As(err, &cfg) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestLoadJobValidation(t *testing.T) {
	cases := []struct{ name, body string }{
		{"unknown source", "assignment: A\nsource: quiz\nfiles: {scores: x.csv}\n"},
		{"missing scores", "assignment: A\nsource: reading\n"},
		{"missing assignment", "source: reading\nfiles: {scores: x.csv}\n"},
		{"slip day without total", "assignment: A\nsource: autograder\nfiles: {scores: x.csv, lateness: l.csv}\npolicy: {lateness: slip_day}\n"},
		{"penalty without lateness file", "assignment: A\nsource: autograder\nfiles: {scores: x.csv}\npolicy: {lateness: penalty, tiers: [{match: a, factor: 1}]}\n"},
		{"bad due", "assignment: A\nsource: reading\nfiles: {scores: x.csv}\ndue: tomorrow\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := config.LoadJob(writeJob(t, c.body)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
