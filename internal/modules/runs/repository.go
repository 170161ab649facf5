// Package runs persists engine run summaries so orchestration layers can
// show history without re-running the model.
package runs

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Repository handles run-history database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new run-history repository and ensures its schema
// exists
func NewRepository(db *sql.DB, log zerolog.Logger) (*Repository, error) {
	r := &Repository{
		db:  db,
		log: log.With().Str("repo", "runs").Logger(),
	}
	if err := r.initSchema(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Repository) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			kind        TEXT NOT NULL,
			created_at  INTEGER NOT NULL,
			iterations  INTEGER NOT NULL DEFAULT 0,
			seed        INTEGER NOT NULL DEFAULT 0,
			summary     TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);
	`
	if _, err := r.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize runs schema: %w", err)
	}
	return nil
}

// Insert stores a run record, assigning it a fresh id and timestamp.
// Returns the stored record.
func (r *Repository) Insert(kind string, iterations int, seed uint64, summaryJSON string) (*Record, error) {
	rec := &Record{
		ID:         uuid.NewString(),
		Kind:       kind,
		CreatedAt:  time.Now().UTC(),
		Iterations: iterations,
		Seed:       seed,
		Summary:    summaryJSON,
	}

	_, err := r.db.Exec(
		"INSERT INTO runs (id, kind, created_at, iterations, seed, summary) VALUES (?, ?, ?, ?, ?, ?)",
		rec.ID, rec.Kind, rec.CreatedAt.Unix(), rec.Iterations, int64(rec.Seed), rec.Summary,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert run record: %w", err)
	}

	r.log.Debug().Str("id", rec.ID).Str("kind", rec.Kind).Msg("Stored run record")
	return rec, nil
}

// List returns the most recent run records, newest first
func (r *Repository) List(limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(
		"SELECT id, kind, created_at, iterations, seed, summary FROM runs ORDER BY created_at DESC, id LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query run records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var createdAtUnix, seed int64
		if err := rows.Scan(&rec.ID, &rec.Kind, &createdAtUnix, &rec.Iterations, &seed, &rec.Summary); err != nil {
			return nil, fmt.Errorf("failed to scan run record: %w", err)
		}
		rec.CreatedAt = time.Unix(createdAtUnix, 0).UTC()
		rec.Seed = uint64(seed)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run records: %w", err)
	}

	return records, nil
}

// Prune deletes all but the newest keep records
func (r *Repository) Prune(keep int) error {
	if keep <= 0 {
		return nil
	}

	result, err := r.db.Exec(
		`DELETE FROM runs WHERE id NOT IN (
			SELECT id FROM runs ORDER BY created_at DESC, id LIMIT ?
		)`,
		keep,
	)
	if err != nil {
		return fmt.Errorf("failed to prune run records: %w", err)
	}

	if deleted, err := result.RowsAffected(); err == nil && deleted > 0 {
		r.log.Debug().Int64("deleted", deleted).Msg("Pruned run history")
	}
	return nil
}
