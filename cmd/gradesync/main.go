// Command gradesync runs one grading batch: it loads the job file and the
// grade export, computes scores, writes the processed audit CSV and
// publishes the grades to the course LMS.
//
//	gradesync -job jobs/hw1.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"github.com/dsc-courses/gradesync/internal/config"
	"github.com/dsc-courses/gradesync/internal/lms"
	"github.com/dsc-courses/gradesync/internal/lms/lmshttp"
	"github.com/dsc-courses/gradesync/internal/pipeline"
	"github.com/dsc-courses/gradesync/internal/roster"
	"github.com/dsc-courses/gradesync/internal/sheet"
	"github.com/dsc-courses/gradesync/internal/source"
	"github.com/dsc-courses/gradesync/internal/state"
)

func main() {
	var (
		jobPath = flag.String("job", "", "job YAML file (required)")
		envFile = flag.String("env", ".env", "environment file")
	)
	flag.Parse()

	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.Kitchen,
	})))

	if *jobPath == "" {
		flag.Usage()
		os.Exit(2)
	}
	if err := godotenv.Load(*envFile); err != nil && !os.IsNotExist(err) {
		slog.Error("env file", "path", *envFile, "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config.FromEnv(), *jobPath); err != nil {
		slog.Error("batch failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, jobPath string) error {
	job, err := config.LoadJob(jobPath)
	if err != nil {
		return err
	}
	slog.Info("job loaded", "assignment", job.Assignment, "source", job.Source, "group", job.Group)

	db, err := state.Open(ctx, state.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("state db: %w", err)
	}
	defer db.Close()
	store := &state.Store{DB: db}

	dir, err := roster.Load(cfg.RosterPath, cfg.StaffPath, cfg.AliasPath)
	if err != nil {
		return err
	}
	slog.Info("roster loaded", "entries", len(dir.Entries), "aliases", len(dir.Aliases))

	inputs, err := loadInputs(job, dir)
	if err != nil {
		return err
	}
	src, err := source.New(job)
	if err != nil {
		return err
	}

	client, err := newLMSClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("lms client: %w", err)
	}

	p := &pipeline.Pipeline{
		Store:        store,
		LMS:          client,
		ProcessedDir: cfg.ProcessedDir,
		Backoff:      lms.FixedBackoff(cfg.PollInterval),
		MaxAttempts:  cfg.PollAttempts,
	}

	result, err := p.Run(ctx, job, src, inputs, dir)
	if result != nil {
		report(result)
	}
	if err != nil {
		return err
	}
	slog.Info("batch published", "assignment", job.Assignment, "students", len(result.Merged), "run", result.RunID)
	return nil
}

func loadInputs(job *config.Job, dir *roster.Directory) (source.Inputs, error) {
	in := source.Inputs{Aliases: dir.Aliases}

	scores, err := sheet.Load(job.Files.Scores, sheet.WithSkippedRows(job.SkipRows...))
	if err != nil {
		return in, err
	}
	in.Scores = scores

	if job.Files.Lateness != "" {
		if in.Lateness, err = sheet.Load(job.Files.Lateness); err != nil {
			return in, err
		}
	}
	for name, path := range job.Files.Other {
		tbl, err := sheet.Load(path)
		if err != nil {
			return in, err
		}
		if in.Other == nil {
			in.Other = map[string]*sheet.Table{}
		}
		in.Other[name] = tbl
	}
	return in, nil
}

func newLMSClient(ctx context.Context, cfg config.Config) (lms.Client, error) {
	hc := lmshttp.Config{
		BaseURL:      cfg.LMSBaseURL,
		CourseID:     cfg.CourseID,
		Token:        cfg.LMSToken,
		TokenURL:     cfg.LMSTokenURL,
		ClientID:     cfg.LMSClientID,
		ClientSecret: cfg.LMSClientSecret,
	}
	if cfg.LMSPrivateKeyPEM != "" {
		pem, err := os.ReadFile(cfg.LMSPrivateKeyPEM)
		if err != nil {
			return nil, err
		}
		hc.PrivateKeyPEM = pem
	}
	return lmshttp.New(ctx, hc)
}

// report prints what needs a human: identities the LMS could not match and
// one-sided joins from auxiliary sections. Neither stops the batch.
func report(result *pipeline.Result) {
	for _, row := range result.Mismatches {
		slog.Warn("email mismatch, not published",
			"email", row.Entry.Email, "name", row.Entry.Name, "score", row.Score)
	}
	for _, r := range result.Reports {
		for _, id := range r.MissingFromSection {
			slog.Warn("missing from section", "section", r.Section, "email", id)
		}
		for _, id := range r.UnknownInSection {
			slog.Warn("unknown identity in section", "section", r.Section, "email", id)
		}
	}
	if result.ProcessedPath != "" {
		slog.Info("processed scores written", "path", result.ProcessedPath)
	}
}
