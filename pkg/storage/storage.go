// Package storage persists user feature-tracking rows in SQLite. The store
// is an external collaborator of the pipeline: the evaluator only ever moves
// rows active -> notified, and at-most-one notification per tracking is
// guaranteed by that status transition, not by locking.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/featwatch/featwatch/pkg/trigger"
	_ "modernc.org/sqlite"
)

// ErrNotActive is returned when a status transition targets a row that is
// not (or no longer) active.
var ErrNotActive = errors.New("tracking is not active")

type DB struct {
	sql *sql.DB
}

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	// Ensure schema exists for convenience.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS feature_tracking (
  id            INTEGER PRIMARY KEY,
  user_ref      TEXT NOT NULL,
  contact       TEXT NOT NULL,
  feature_id    TEXT NOT NULL,
  feature_title TEXT NOT NULL,
  triggers      TEXT NOT NULL,
  status        TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active','notified','completed')),
  notified_at   DATETIME,
  created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_tracking_feature ON feature_tracking(feature_id, status);
CREATE INDEX IF NOT EXISTS idx_tracking_user ON feature_tracking(user_ref);
    `); err != nil {
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// CreateTracking inserts a new active tracking row and returns its id.
func (d *DB) CreateTracking(ctx context.Context, t trigger.Tracking) (int64, error) {
	if t.UserRef == "" || t.FeatureID == "" {
		return 0, errors.New("invalid tracking: user and feature are required")
	}
	if len(t.Triggers) == 0 {
		return 0, errors.New("invalid tracking: at least one trigger is required")
	}
	for _, tr := range t.Triggers {
		if err := tr.Validate(); err != nil {
			return 0, fmt.Errorf("invalid trigger: %w", err)
		}
	}
	triggersJSON, err := json.Marshal(t.Triggers)
	if err != nil {
		return 0, err
	}

	res, err := d.sql.ExecContext(ctx,
		`INSERT INTO feature_tracking(user_ref, contact, feature_id, feature_title, triggers, status) VALUES(?,?,?,?,?,'active')`,
		t.UserRef, t.Contact, t.FeatureID, t.FeatureTitle, string(triggersJSON))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListActiveByFeature returns the active trackings for one feature id. The
// notify stage only ever queries active rows, which is what makes
// re-evaluating the same change report idempotent.
func (d *DB) ListActiveByFeature(ctx context.Context, featureID string) ([]trigger.Tracking, error) {
	return d.list(ctx,
		`SELECT id, user_ref, contact, feature_id, feature_title, triggers, status, notified_at, created_at, updated_at
		 FROM feature_tracking WHERE feature_id = ? AND status = 'active' ORDER BY id`, featureID)
}

// ListTrackings returns rows filtered by status; an empty status returns
// everything.
func (d *DB) ListTrackings(ctx context.Context, status string) ([]trigger.Tracking, error) {
	q := `SELECT id, user_ref, contact, feature_id, feature_title, triggers, status, notified_at, created_at, updated_at
	      FROM feature_tracking`
	args := []interface{}{}
	if status != "" {
		q += ` WHERE status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY id`
	return d.list(ctx, q, args...)
}

func (d *DB) list(ctx context.Context, query string, args ...interface{}) ([]trigger.Tracking, error) {
	rows, err := d.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []trigger.Tracking
	for rows.Next() {
		var (
			t            trigger.Tracking
			triggersJSON string
			status       string
			notifiedAt   sql.NullString
			createdAt    string
			updatedAt    string
		)
		if err := rows.Scan(&t.ID, &t.UserRef, &t.Contact, &t.FeatureID, &t.FeatureTitle,
			&triggersJSON, &status, &notifiedAt, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(triggersJSON), &t.Triggers); err != nil {
			return nil, fmt.Errorf("corrupt triggers for tracking %d: %w", t.ID, err)
		}
		t.Status = trigger.TrackingStatus(status)
		if notifiedAt.Valid {
			t.NotifiedAt = parseStoredTime(notifiedAt.String)
		}
		t.CreatedAt = parseStoredTime(createdAt)
		t.UpdatedAt = parseStoredTime(updatedAt)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkNotified transitions a tracking active -> notified. The WHERE clause
// on status makes the transition happen at most once even if a run is
// repeated against the same change report.
func (d *DB) MarkNotified(ctx context.Context, id int64) error {
	res, err := d.sql.ExecContext(ctx,
		`UPDATE feature_tracking SET status = 'notified', notified_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = 'active'`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotActive
	}
	return nil
}

// CompleteTracking is the explicit user action closing a subscription.
func (d *DB) CompleteTracking(ctx context.Context, id int64) error {
	res, err := d.sql.ExecContext(ctx,
		`UPDATE feature_tracking SET status = 'completed', updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no tracking with id %d", id)
	}
	return nil
}

// DeleteTracking removes a subscription entirely.
func (d *DB) DeleteTracking(ctx context.Context, id int64) error {
	res, err := d.sql.ExecContext(ctx, `DELETE FROM feature_tracking WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no tracking with id %d", id)
	}
	return nil
}

// parseStoredTime handles both SQLite CURRENT_TIMESTAMP format and RFC3339.
func parseStoredTime(s string) time.Time {
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}
