package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dsc-courses/gradesync/internal/gradebook"
)

// SourceType names a supported grade export format.
type SourceType string

const (
	SourcePoll       SourceType = "poll"
	SourceReading    SourceType = "reading"
	SourceAutograder SourceType = "autograder"
)

// Tier is one penalty category: the substring identifying its lateness
// column and the multiplicative factor it awards. Declaration order is the
// argmax tie-break order.
type Tier struct {
	Match  string  `yaml:"match"`
	Factor float64 `yaml:"factor"`
}

// Policy is the lateness configuration of a job. The penalty and slip-day
// settings are mutually exclusive.
type Policy struct {
	Lateness      gradebook.LatePolicy `yaml:"lateness"`
	Tiers         []Tier               `yaml:"tiers"`
	TotalSlipDays float64              `yaml:"total_slip_days"`
}

// Files names the input sheets of a job.
type Files struct {
	Scores   string            `yaml:"scores"`
	Lateness string            `yaml:"lateness"`
	Other    map[string]string `yaml:"other"`
}

// Job is one assignment batch, loaded from a YAML file checked into the
// course repository.
type Job struct {
	Assignment string     `yaml:"assignment"`
	Group      string     `yaml:"group"`
	Points     float64    `yaml:"points"`
	Due        string     `yaml:"due"` // "2006-01-02 15:04", local time
	Source     SourceType `yaml:"source"`
	Dir        string     `yaml:"dir"`

	Files  Files            `yaml:"files"`
	Rubric gradebook.Rubric `yaml:"rubric"`
	Policy Policy           `yaml:"policy"`

	// MinPoll is the answered fraction required for poll credit.
	MinPoll float64 `yaml:"min_poll"`
	// SkipRows drops junk data rows from the scores sheet (0-based).
	SkipRows []int `yaml:"skip_rows"`
}

// sourceDefaults mirror the standing course policies per export format.
var sourceDefaults = map[SourceType]struct {
	group  string
	points float64
	dir    string
}{
	SourcePoll:       {"Lecture Participation", 1, "slido"},
	SourceReading:    {"Readings", 5, "readings"},
	SourceAutograder: {"Homework", 100, "homework"},
}

// LoadJob reads and validates a job file, filling per-source defaults.
func LoadJob(path string) (*Job, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &gradebook.ConfigurationError{Reason: fmt.Sprintf("job file: %v", err)}
	}
	var job Job
	if err := yaml.Unmarshal(raw, &job); err != nil {
		return nil, &gradebook.ConfigurationError{Reason: fmt.Sprintf("parse %s: %v", path, err)}
	}
	if err := job.normalize(); err != nil {
		return nil, err
	}
	return &job, nil
}

func (j *Job) normalize() error {
	defaults, ok := sourceDefaults[j.Source]
	if !ok {
		return &gradebook.ConfigurationError{Reason: fmt.Sprintf("unknown source type %q", j.Source)}
	}
	if j.Assignment == "" {
		return &gradebook.ConfigurationError{Reason: "assignment name required"}
	}
	if j.Files.Scores == "" {
		return &gradebook.ConfigurationError{Reason: "files.scores required"}
	}
	if j.Group == "" {
		j.Group = defaults.group
	}
	if j.Points == 0 {
		j.Points = defaults.points
	}
	if j.Dir == "" {
		j.Dir = defaults.dir
	}
	if j.MinPoll == 0 {
		j.MinPoll = 0.75
	}
	if j.Policy.Lateness == "" {
		j.Policy.Lateness = gradebook.PolicyNone
	}

	switch j.Policy.Lateness {
	case gradebook.PolicyNone:
		if len(j.Policy.Tiers) > 0 || j.Policy.TotalSlipDays > 0 {
			return &gradebook.ConfigurationError{Reason: "lateness settings given but policy is none"}
		}
	case gradebook.PolicyPenalty:
		if j.Policy.TotalSlipDays > 0 {
			return &gradebook.ConfigurationError{Reason: "penalty and slip-day policies are mutually exclusive"}
		}
		if len(j.Policy.Tiers) == 0 {
			return &gradebook.ConfigurationError{Reason: "penalty policy requires tiers"}
		}
		if j.Files.Lateness == "" {
			return &gradebook.ConfigurationError{Reason: "lateness policy requires files.lateness"}
		}
	case gradebook.PolicySlipDay:
		if len(j.Policy.Tiers) > 0 {
			return &gradebook.ConfigurationError{Reason: "penalty and slip-day policies are mutually exclusive"}
		}
		if j.Policy.TotalSlipDays <= 0 {
			return &gradebook.ConfigurationError{Reason: "slip-day policy requires total_slip_days"}
		}
		if j.Files.Lateness == "" {
			return &gradebook.ConfigurationError{Reason: "lateness policy requires files.lateness"}
		}
	default:
		return &gradebook.ConfigurationError{Reason: fmt.Sprintf("unknown lateness policy %q", j.Policy.Lateness)}
	}

	if _, err := j.DueTime(); err != nil {
		return err
	}
	return nil
}

// DueTime parses the due timestamp, nil when the job has no deadline.
func (j *Job) DueTime() (*time.Time, error) {
	if j.Due == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", j.Due, time.Local)
	if err != nil {
		return nil, &gradebook.ConfigurationError{Reason: fmt.Sprintf("due time %q: want YYYY-MM-DD HH:MM", j.Due)}
	}
	return &t, nil
}
