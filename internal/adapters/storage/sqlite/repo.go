package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hylla/nametag/internal/app"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// defaultRunLimit caps ListRuns when the caller passes no limit.
const defaultRunLimit = 20

// Repository stores participation caches and generation runs.
type Repository struct {
	db *sql.DB
}

// Open opens the requested operation.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// OpenInMemory opens in memory.
func OpenInMemory() (*Repository, error) {
	db, err := sql.Open(driverName, "file::memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	db.SetMaxOpenConns(1)
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the requested operation.
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate handles migrate.
func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS participation_sources (
			fingerprint TEXT PRIMARY KEY,
			people INTEGER NOT NULL,
			imported_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS participation_counts (
			fingerprint TEXT NOT NULL,
			person_id TEXT NOT NULL,
			competitions INTEGER NOT NULL,
			PRIMARY KEY(fingerprint, person_id),
			FOREIGN KEY(fingerprint) REFERENCES participation_sources(fingerprint) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			competition_id TEXT NOT NULL,
			output_path TEXT NOT NULL DEFAULT '',
			competitors INTEGER NOT NULL,
			pages INTEGER NOT NULL,
			warnings INTEGER NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// LoadParticipation returns cached counts for fingerprint.
func (r *Repository) LoadParticipation(ctx context.Context, fingerprint string) (map[string]int, bool, error) {
	var people int
	err := r.db.QueryRowContext(ctx, `SELECT people FROM participation_sources WHERE fingerprint = ?`, fingerprint).Scan(&people)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT person_id, competitions FROM participation_counts WHERE fingerprint = ?`, fingerprint)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	counts := make(map[string]int, people)
	for rows.Next() {
		var (
			personID     string
			competitions int
		)
		if err := rows.Scan(&personID, &competitions); err != nil {
			return nil, false, err
		}
		counts[personID] = competitions
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return counts, true, nil
}

// SaveParticipation replaces every cached export with counts for fingerprint.
func (r *Repository) SaveParticipation(ctx context.Context, fingerprint string, counts map[string]int) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM participation_counts`); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM participation_sources`); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO participation_sources(fingerprint, people, imported_at)
		VALUES (?, ?, ?)
	`, fingerprint, len(counts), ts(time.Now())); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO participation_counts(fingerprint, person_id, competitions)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for personID, competitions := range counts {
		if _, err = stmt.ExecContext(ctx, fingerprint, personID, competitions); err != nil {
			return err
		}
	}

	err = tx.Commit()
	return err
}

// RecordRun stores one completed generation.
func (r *Repository) RecordRun(ctx context.Context, run app.RunRecord) error {
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("run id is required")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO runs(id, competition_id, output_path, competitors, pages, warnings, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.CompetitionID, run.OutputPath, run.Competitors, run.Pages, run.Warnings, ts(run.CreatedAt))
	return err
}

// ListRuns returns the most recent runs, newest first.
func (r *Repository) ListRuns(ctx context.Context, limit int) ([]app.RunRecord, error) {
	if limit <= 0 {
		limit = defaultRunLimit
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, competition_id, output_path, competitors, pages, warnings, created_at
		FROM runs
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]app.RunRecord, 0)
	for rows.Next() {
		var (
			run        app.RunRecord
			createdRaw string
		)
		if err := rows.Scan(&run.ID, &run.CompetitionID, &run.OutputPath, &run.Competitors, &run.Pages, &run.Warnings, &createdRaw); err != nil {
			return nil, err
		}
		run.CreatedAt = parseTS(createdRaw)
		out = append(out, run)
	}
	return out, rows.Err()
}

// ts handles ts.
func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTS parses input into a normalized form.
func parseTS(v string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}
