package state

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/dsc-courses/gradesync/internal/lms"
)

type Store struct{ DB *sql.DB }

// FindAssignment returns the cached remote handle for an assignment, if one
// was recorded by an earlier run.
func (s *Store) FindAssignment(name, group string) (lms.Assignment, bool, error) {
	var a lms.Assignment
	err := s.DB.QueryRow(`
		SELECT lms_id, name, group_id, points FROM assignment_cache
		WHERE name=$1 AND group_name=$2`, name, group).
		Scan(&a.ID, &a.Name, &a.GroupID, &a.PointsPossible)
	if errors.Is(err, sql.ErrNoRows) {
		return lms.Assignment{}, false, nil
	}
	if err != nil {
		return lms.Assignment{}, false, err
	}
	return a, true, nil
}

// CacheAssignment records the remote handle so later runs skip the lookup.
func (s *Store) CacheAssignment(group string, a lms.Assignment) error {
	_, err := s.DB.Exec(`
		INSERT INTO assignment_cache (name, group_name, lms_id, group_id, points, updated_at)
		VALUES ($1,$2,$3,$4,$5,CURRENT_TIMESTAMP)
		ON CONFLICT (name, group_name)
		DO UPDATE SET
			lms_id=EXCLUDED.lms_id,
			group_id=EXCLUDED.group_id,
			points=EXCLUDED.points,
			updated_at=CURRENT_TIMESTAMP`,
		a.Name, group, a.ID, a.GroupID, a.PointsPossible)
	return err
}

// BeginRun opens a publish-run row in pending state and returns its id.
func (s *Store) BeginRun(assignment string) (string, error) {
	id := uuid.NewString()
	_, err := s.DB.Exec(`
		INSERT INTO publish_runs (id, assignment, status)
		VALUES ($1,$2,'pending')`, id, assignment)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) MarkRunOK(id string) error {
	_, err := s.DB.Exec(`
		UPDATE publish_runs
		   SET status='ok', last_error=NULL, updated_at=CURRENT_TIMESTAMP
		 WHERE id=$1`, id)
	return err
}

func (s *Store) MarkRunFailed(id, lastErr string) error {
	_, err := s.DB.Exec(`
		UPDATE publish_runs
		   SET status='failed',
		       retries=publish_runs.retries+1,
		       last_error=$2,
		       updated_at=CURRENT_TIMESTAMP
		 WHERE id=$1`, id, lastErr)
	return err
}

// RecordSlipDays mirrors the running total just posted to the LMS; the
// remote ledger stays authoritative, this copy is for local audit queries.
func (s *Store) RecordSlipDays(email string, total float64) error {
	_, err := s.DB.Exec(`
		INSERT INTO slip_day_totals (email, total, updated_at)
		VALUES ($1,$2,CURRENT_TIMESTAMP)
		ON CONFLICT (email)
		DO UPDATE SET total=EXCLUDED.total, updated_at=CURRENT_TIMESTAMP`,
		email, total)
	return err
}

// SlipDayTotal returns the last recorded total for email, with ok=false
// when none was recorded.
func (s *Store) SlipDayTotal(email string) (float64, bool, error) {
	var total float64
	err := s.DB.QueryRow(`SELECT total FROM slip_day_totals WHERE email=$1`, email).Scan(&total)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return total, true, nil
}
