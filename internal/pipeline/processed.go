package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dsc-courses/gradesync/internal/config"
	"github.com/dsc-courses/gradesync/internal/gradebook"
)

// writeProcessed records the exact scores handed to the LMS as a CSV under
// processed/<dir>/<slug>.csv. Rows are already email-sorted, so reruns over
// unchanged inputs produce byte-identical files and diff clean in the
// course repository.
func (p *Pipeline) writeProcessed(job *config.Job, merged []gradebook.MergedRow) (string, error) {
	dir := filepath.Join(p.ProcessedDir, job.Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("processed dir: %w", err)
	}
	path := filepath.Join(dir, slug(job.Assignment)+".csv")

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("processed file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"email", "name", "id", "staff", job.Assignment}); err != nil {
		return "", err
	}
	for _, row := range merged {
		rec := []string{
			row.Entry.Email,
			row.Entry.Name,
			row.Entry.LMSID,
			strconv.FormatBool(row.Entry.Staff),
			strconv.FormatFloat(row.Score, 'f', -1, 64),
		}
		if err := w.Write(rec); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return path, nil
}

// slug flattens an assignment name into a filename, e.g.
// "Homework 1 (Regression)" -> "homework1_regression".
func slug(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, " (", "_")
	s = strings.ReplaceAll(s, ")", "")
	s = strings.ReplaceAll(s, "/", "")
	s = strings.ReplaceAll(s, " ", "")
	return s
}
