// Package lmshttp is the REST implementation of lms.Client for
// Canvas-compatible gradebook APIs.
package lmshttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dsc-courses/gradesync/internal/lms"
)

type Config struct {
	BaseURL  string // e.g. https://canvas.example.edu
	CourseID string

	Token         string
	TokenURL      string
	ClientID      string
	ClientSecret  string
	PrivateKeyPEM []byte
	Scopes        []string

	Timeout time.Duration
}

type Client struct {
	http    *http.Client
	baseURL string
	course  string
}

func New(ctx context.Context, cfg Config) (*Client, error) {
	h, err := httpClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Timeout > 0 {
		h.Timeout = cfg.Timeout
	}
	return &Client{
		http:    h,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		course:  cfg.CourseID,
	}, nil
}

func (c *Client) courseURL(parts ...string) string {
	return c.baseURL + "/api/v1/courses/" + c.course + "/" + strings.Join(parts, "/")
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		return fmt.Errorf("GET %s: %s", rawURL, res.Status)
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func (c *Client) postJSON(ctx context.Context, rawURL string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		return fmt.Errorf("POST %s: %s", rawURL, res.Status)
	}
	return json.NewDecoder(res.Body).Decode(out)
}

type wireGroup struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// FindOrCreateGroup resolves the assignment group by name, creating it when
// absent.
func (c *Client) FindOrCreateGroup(ctx context.Context, name string) (string, error) {
	var groups []wireGroup
	if err := c.getJSON(ctx, c.courseURL("assignment_groups")+"?per_page=100", &groups); err != nil {
		return "", err
	}
	for _, g := range groups {
		if g.Name == name {
			return strconv.FormatInt(g.ID, 10), nil
		}
	}
	var created wireGroup
	if err := c.postJSON(ctx, c.courseURL("assignment_groups"), map[string]string{"name": name}, &created); err != nil {
		return "", fmt.Errorf("create assignment group %q: %w", name, err)
	}
	return strconv.FormatInt(created.ID, 10), nil
}

type wireAssignment struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	GroupID        int64   `json:"assignment_group_id"`
	PointsPossible float64 `json:"points_possible"`
}

func (w wireAssignment) toAssignment() lms.Assignment {
	return lms.Assignment{
		ID:             strconv.FormatInt(w.ID, 10),
		Name:           w.Name,
		GroupID:        strconv.FormatInt(w.GroupID, 10),
		PointsPossible: w.PointsPossible,
	}
}

// FindOrCreateAssignment looks the assignment up by name within its group
// and creates it when absent. Created assignments are published immediately
// so grades can be posted to them.
func (c *Client) FindOrCreateAssignment(ctx context.Context, opts lms.AssignmentOpts) (lms.Assignment, error) {
	listURL := c.courseURL("assignments") + "?per_page=100&assignment_group_id=" + url.QueryEscape(opts.GroupID)
	var existing []wireAssignment
	if err := c.getJSON(ctx, listURL, &existing); err != nil {
		return lms.Assignment{}, err
	}
	for _, a := range existing {
		if a.Name == opts.Name {
			return a.toAssignment(), nil
		}
	}

	groupID, err := strconv.ParseInt(opts.GroupID, 10, 64)
	if err != nil {
		return lms.Assignment{}, fmt.Errorf("assignment group id %q: %w", opts.GroupID, err)
	}
	fields := map[string]any{
		"name":                  opts.Name,
		"grading_type":          "points",
		"points_possible":       opts.Points,
		"published":             true,
		"notify_of_update":      opts.Notify,
		"assignment_group_id":   groupID,
		"omit_from_final_grade": opts.OmitFromFinalGrade,
	}
	if opts.DueAt != nil {
		fields["due_at"] = opts.DueAt.Format(time.RFC3339)
	}
	if opts.Description != "" {
		fields["description"] = opts.Description
	}
	var created wireAssignment
	if err := c.postJSON(ctx, c.courseURL("assignments"), map[string]any{"assignment": fields}, &created); err != nil {
		return lms.Assignment{}, fmt.Errorf("create assignment %q: %w", opts.Name, err)
	}
	return created.toAssignment(), nil
}

type wireProgress struct {
	ID            int64   `json:"id"`
	URL           string  `json:"url"`
	WorkflowState string  `json:"workflow_state"`
	Completion    float64 `json:"completion"`
}

func (w wireProgress) toProgress() lms.Progress {
	return lms.Progress{
		ID:         strconv.FormatInt(w.ID, 10),
		URL:        w.URL,
		State:      w.WorkflowState,
		Completion: w.Completion,
	}
}

// BulkSubmitGrades starts an asynchronous grade update for the assignment
// and returns the job handle.
func (c *Client) BulkSubmitGrades(ctx context.Context, a lms.Assignment, updates map[string]lms.GradeUpdate) (lms.Progress, error) {
	gradeData := make(map[string]map[string]any, len(updates))
	for userID, u := range updates {
		entry := map[string]any{"posted_grade": u.Score}
		if u.Comment != "" {
			entry["text_comment"] = u.Comment
		}
		gradeData[userID] = entry
	}
	var prog wireProgress
	err := c.postJSON(ctx,
		c.courseURL("assignments", a.ID, "submissions", "update_grades"),
		map[string]any{"grade_data": gradeData},
		&prog)
	if err != nil {
		return lms.Progress{}, err
	}
	return prog.toProgress(), nil
}

// Progress refreshes the state of a bulk-update job.
func (c *Client) Progress(ctx context.Context, p lms.Progress) (lms.Progress, error) {
	progressURL := p.URL
	if progressURL == "" {
		progressURL = c.baseURL + "/api/v1/progress/" + p.ID
	}
	var prog wireProgress
	if err := c.getJSON(ctx, progressURL, &prog); err != nil {
		return lms.Progress{}, err
	}
	return prog.toProgress(), nil
}

// PriorSubmissions reads the last posted score per LMS user id. Ungraded
// submissions are skipped.
func (c *Client) PriorSubmissions(ctx context.Context, a lms.Assignment) (map[string]float64, error) {
	var subs []struct {
		UserID int64    `json:"user_id"`
		Score  *float64 `json:"score"`
	}
	if err := c.getJSON(ctx, c.courseURL("assignments", a.ID, "submissions")+"?per_page=100", &subs); err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(subs))
	for _, s := range subs {
		if s.Score == nil {
			continue
		}
		out[strconv.FormatInt(s.UserID, 10)] = *s.Score
	}
	return out, nil
}
