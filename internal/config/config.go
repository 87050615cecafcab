// Package config holds the environment configuration and the per-assignment
// job files.
package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	LMSBaseURL string
	CourseID   string

	// Auth: a static token, or an OAuth2 client (secret or private key).
	LMSToken         string
	LMSTokenURL      string
	LMSClientID      string
	LMSClientSecret  string
	LMSPrivateKeyPEM string // path to a PEM file

	DBDriver string
	DBDSN    string

	RosterPath string
	StaffPath  string
	AliasPath  string

	ProcessedDir string

	PollInterval time.Duration
	PollAttempts int
}

func FromEnv() Config {
	return Config{
		LMSBaseURL:       os.Getenv("LMS_BASE_URL"),
		CourseID:         os.Getenv("LMS_COURSE_ID"),
		LMSToken:         os.Getenv("LMS_TOKEN"),
		LMSTokenURL:      os.Getenv("LMS_TOKEN_URL"),
		LMSClientID:      os.Getenv("LMS_CLIENT_ID"),
		LMSClientSecret:  os.Getenv("LMS_CLIENT_SECRET"),
		LMSPrivateKeyPEM: os.Getenv("LMS_PRIVATE_KEY_FILE"),
		DBDriver:         envOr("DB_DRIVER", "sqlite"),
		DBDSN:            os.Getenv("DB_DSN"),
		RosterPath:       envOr("ROSTER_FILE", "roster.csv"),
		StaffPath:        os.Getenv("STAFF_FILE"),
		AliasPath:        os.Getenv("ALIAS_FILE"),
		ProcessedDir:     envOr("PROCESSED_DIR", "processed"),
		PollInterval:     envDuration("PUBLISH_POLL_INTERVAL", 5*time.Second),
		PollAttempts:     envInt("PUBLISH_POLL_ATTEMPTS", 60),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
