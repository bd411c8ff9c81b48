// Package snapshot persists the candidate list between command invocations in a local SQLite file.
// The in-memory store stays authoritative while a command runs; the file is loaded once
// at start-up and rewritten as a whole after every mutating command.
package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"github.com/spigell/recruit-tracker/internal/candidate"
)

const (
	table         = "candidates"
	schemaVersion = 1
)

var columns = []string{
	"id", "ord", "name", "role", "applied_date", "status", "phone", "email", "location",
	"skills", "experience", "ghosting_risk", "engagement_score", "response_rate",
	"last_contact", "scheduled_interview", "hire_date", "retention_risk", "onboarding_progress",
}

type DB struct {
	pool *sql.DB
}

// Open connects to the database file at path and brings its schema up to date.
func Open(ctx context.Context, path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)

	pool, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open snapshot %s: %w", path, err)
	}

	// sqlite wants a single writer
	pool.SetMaxOpenConns(1)
	pool.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.PingContext(pingCtx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping snapshot %s: %w", path, err)
	}

	db := &DB{pool: pool}
	if err := db.migrate(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("migrate snapshot %s: %w", path, err)
	}

	return db, nil
}

func (d *DB) Close() error {
	if d == nil || d.pool == nil {
		return nil
	}
	return d.pool.Close()
}

func (d *DB) migrate(ctx context.Context) error {
	tx, err := d.pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRowContext(ctx, `PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}
	if v >= schemaVersion {
		return tx.Commit()
	}

	if _, err := tx.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS candidates (
  id INTEGER PRIMARY KEY,
  ord INTEGER NOT NULL,
  name TEXT NOT NULL,
  role TEXT NOT NULL,
  applied_date TEXT NOT NULL,
  status TEXT NOT NULL,
  phone TEXT NOT NULL DEFAULT '',
  email TEXT NOT NULL DEFAULT '',
  location TEXT NOT NULL DEFAULT '',
  skills TEXT NOT NULL DEFAULT '',
  experience TEXT NOT NULL DEFAULT '',
  ghosting_risk TEXT NOT NULL,
  engagement_score INTEGER NOT NULL,
  response_rate INTEGER NOT NULL,
  last_contact TEXT NOT NULL,
  scheduled_interview TEXT NOT NULL DEFAULT '',
  hire_date TEXT NOT NULL DEFAULT '',
  retention_risk TEXT NOT NULL DEFAULT '',
  onboarding_progress INTEGER
);
`); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_candidates_ord ON candidates(ord);`); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d;`, schemaVersion)); err != nil {
		return err
	}

	return tx.Commit()
}

// Save replaces the stored list with records, keeping their order.
func (d *DB) Save(ctx context.Context, records []candidate.Record) error {
	tx, err := d.pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := sq.Delete(table).RunWith(tx).ExecContext(ctx); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}

	for i, rec := range records {
		var progress any
		if rec.OnboardingProgress != nil {
			progress = *rec.OnboardingProgress
		}

		_, err := sq.Insert(table).
			Columns(columns...).
			Values(
				rec.ID, i, rec.Name, rec.Position, rec.AppliedDate, string(rec.Status), rec.Phone, rec.Email, rec.Location,
				rec.Skills, rec.Experience, string(rec.GhostingRisk), rec.EngagementScore, rec.ResponseRate,
				rec.LastContact, rec.ScheduledInterview, rec.HireDate, rec.RetentionRisk, progress,
			).
			RunWith(tx).
			ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("store candidate %d: %w", rec.ID, err)
		}
	}

	return tx.Commit()
}

// Load returns the stored list in saved order. A fresh database yields an empty list.
func (d *DB) Load(ctx context.Context) ([]candidate.Record, error) {
	rows, err := sq.Select(columns...).
		From(table).
		OrderBy("ord").
		RunWith(d.pool).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	defer rows.Close()

	out := make([]candidate.Record, 0)
	for rows.Next() {
		var (
			rec      candidate.Record
			ord      int
			status   string
			risk     string
			progress sql.NullInt64
		)
		if err := rows.Scan(
			&rec.ID, &ord, &rec.Name, &rec.Position, &rec.AppliedDate, &status, &rec.Phone, &rec.Email, &rec.Location,
			&rec.Skills, &rec.Experience, &risk, &rec.EngagementScore, &rec.ResponseRate,
			&rec.LastContact, &rec.ScheduledInterview, &rec.HireDate, &rec.RetentionRisk, &progress,
		); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}

		rec.Status = candidate.Status(status)
		rec.GhostingRisk = candidate.Risk(risk)
		if progress.Valid {
			p := int(progress.Int64)
			rec.OnboardingProgress = &p
		}
		out = append(out, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
