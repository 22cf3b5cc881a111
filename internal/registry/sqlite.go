package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/the-geek-freaks/meshscope/internal/lib/logger/sl"
	"github.com/the-geek-freaks/meshscope/internal/model"
)

// SQLite persists the problem registry between runs.
type SQLite struct {
	log *slog.Logger
	db  *sql.DB
}

// NewSQLite opens (or creates) the registry database at dbPath.
func NewSQLite(log *slog.Logger, dbPath string) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create registry directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	reg := &SQLite{
		log: log,
		db:  db,
	}

	if err := reg.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return reg, nil
}

func (r *SQLite) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS problems (
			id TEXT PRIMARY KEY,
			category TEXT NOT NULL,
			severity TEXT NOT NULL,
			payload_json TEXT NOT NULL,
			detected_at TEXT NOT NULL,
			resolved_at TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_problems_resolved_at ON problems(resolved_at);
		CREATE INDEX IF NOT EXISTS idx_problems_severity ON problems(severity);
	`
	_, err := r.db.Exec(query)
	return err
}

func (r *SQLite) Upsert(ctx context.Context, p model.NetworkProblem) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal problem: %w", err)
	}

	var resolvedAt any
	if p.ResolvedAt != nil {
		resolvedAt = p.ResolvedAt.UTC().Format(time.RFC3339)
	}

	query := `
		INSERT INTO problems (id, category, severity, payload_json, detected_at, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			category = excluded.category,
			severity = excluded.severity,
			payload_json = excluded.payload_json,
			detected_at = excluded.detected_at,
			resolved_at = excluded.resolved_at
	`

	_, err = r.db.ExecContext(ctx, query,
		p.ID,
		string(p.Category),
		string(p.Severity),
		string(payload),
		p.DetectedAt.UTC().Format(time.RFC3339),
		resolvedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert problem %s: %w", p.ID, err)
	}

	r.log.Debug("problem stored", slog.String("id", p.ID), slog.String("severity", string(p.Severity)))
	return nil
}

func (r *SQLite) Get(ctx context.Context, id string) (*model.NetworkProblem, error) {
	var payload string
	err := r.db.QueryRowContext(ctx, "SELECT payload_json FROM problems WHERE id = ?", id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query problem %s: %w", id, err)
	}

	var p model.NetworkProblem
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal problem %s: %w", id, err)
	}
	return &p, nil
}

func (r *SQLite) Active(ctx context.Context) ([]model.NetworkProblem, error) {
	query := `
		SELECT payload_json
		FROM problems
		WHERE resolved_at IS NULL
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active problems: %w", err)
	}
	defer rows.Close()

	var problems []model.NetworkProblem
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			r.log.Error("failed to scan row", sl.Err(err))
			continue
		}

		var p model.NetworkProblem
		if err := json.Unmarshal([]byte(payload), &p); err != nil {
			r.log.Error("failed to unmarshal problem", sl.Err(err))
			continue
		}
		problems = append(problems, p)
	}

	return problems, rows.Err()
}

func (r *SQLite) Resolve(ctx context.Context, id string, at time.Time) error {
	p, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if p == nil || !p.Active() {
		return nil
	}

	t := at
	p.ResolvedAt = &t
	return r.Upsert(ctx, *p)
}

func (r *SQLite) ResolveMissing(ctx context.Context, keep []string, at time.Time) error {
	active, err := r.Active(ctx)
	if err != nil {
		return err
	}

	keepSet := make(map[string]bool, len(keep))
	for _, id := range keep {
		keepSet[id] = true
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE problems
		SET resolved_at = ?,
			payload_json = json_set(payload_json, '$.resolved_at', ?)
		WHERE id = ? AND resolved_at IS NULL
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	ts := at.UTC().Format(time.RFC3339)
	var resolved []string
	for _, p := range active {
		if keepSet[p.ID] {
			continue
		}
		if _, err := stmt.ExecContext(ctx, ts, ts, p.ID); err != nil {
			return fmt.Errorf("failed to resolve problem %s: %w", p.ID, err)
		}
		resolved = append(resolved, p.ID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	if len(resolved) > 0 {
		r.log.Info("resolved stale problems", slog.Int("count", len(resolved)), slog.String("ids", strings.Join(resolved, ",")))
	}
	return nil
}

func (r *SQLite) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM problems"); err != nil {
		return fmt.Errorf("failed to clear registry: %w", err)
	}
	return nil
}

func (r *SQLite) Close() error {
	return r.db.Close()
}

// Count returns the number of active problems, for health checks.
func (r *SQLite) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM problems WHERE resolved_at IS NULL").Scan(&count)
	return count, err
}
