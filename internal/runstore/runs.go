package runstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ShayCichocki/loom/pkg/models"
)

// CreateRun records the start of a test run.
func (db *DB) CreateRun(r *models.TestRun) error {
	outcomes, err := json.Marshal(r.Outcomes)
	if err != nil {
		return fmt.Errorf("marshal outcomes: %w", err)
	}

	var finishedAt *string
	if r.FinishedAt != nil {
		s := formatTime(*r.FinishedAt)
		finishedAt = &s
	}

	_, err = db.Exec(`
		INSERT INTO runs (id, feature_id, started_at, finished_at, passed, failed, skipped, outcomes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.FeatureID, formatTime(r.StartedAt), finishedAt, r.Passed, r.Failed, r.Skipped, string(outcomes))
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

// FinishRun stores the outcomes of a completed run and its totals.
func (db *DB) FinishRun(id string, finishedAt time.Time, outcomes []models.TestOutcome) error {
	var passed, failed, skipped int
	for _, o := range outcomes {
		switch o.Status {
		case models.OutcomePassed:
			passed++
		case models.OutcomeFailed:
			failed++
		case models.OutcomeSkipped:
			skipped++
		}
	}

	data, err := json.Marshal(outcomes)
	if err != nil {
		return fmt.Errorf("marshal outcomes: %w", err)
	}

	_, err = db.Exec(`
		UPDATE runs SET finished_at = ?, passed = ?, failed = ?, skipped = ?, outcomes = ?
		WHERE id = ?
	`, formatTime(finishedAt), passed, failed, skipped, string(data), id)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID. Returns nil if no run exists.
func (db *DB) GetRun(id string) (*models.TestRun, error) {
	row := db.QueryRow(`
		SELECT id, feature_id, started_at, finished_at, passed, failed, skipped, outcomes
		FROM runs WHERE id = ?
	`, id)

	r, err := scanRun(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return r, nil
}

// ListRuns lists the runs for a feature, most recent first.
func (db *DB) ListRuns(featureID string) ([]models.TestRun, error) {
	rows, err := db.Query(`
		SELECT id, feature_id, started_at, finished_at, passed, failed, skipped, outcomes
		FROM runs WHERE feature_id = ? ORDER BY started_at DESC
	`, featureID)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []models.TestRun
	for rows.Next() {
		r, err := scanRun(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *r)
	}
	return runs, nil
}

// PurgeOldRuns deletes runs older than the specified duration.
// Returns the number of runs deleted.
func (db *DB) PurgeOldRuns(olderThan time.Duration) (int64, error) {
	cutoff := formatTime(time.Now().Add(-olderThan))

	result, err := db.Exec(`DELETE FROM runs WHERE started_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge old runs: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return count, nil
}

// scanRun scans one run row using the given scan function.
func scanRun(scan func(dest ...any) error) (*models.TestRun, error) {
	var r models.TestRun
	var startedAt string
	var finishedAt, outcomes sql.NullString

	if err := scan(&r.ID, &r.FeatureID, &startedAt, &finishedAt, &r.Passed, &r.Failed, &r.Skipped, &outcomes); err != nil {
		return nil, err
	}

	r.StartedAt, _ = parseTime(startedAt)
	r.FinishedAt = parseNullableTime(finishedAt)
	if outcomes.Valid && outcomes.String != "" {
		json.Unmarshal([]byte(outcomes.String), &r.Outcomes)
	}
	return &r, nil
}
