// Package history keeps a SQLite log of cleanup runs and the items each
// run removed.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/fenilsonani/duster/internal/scanner"
)

// FileName is the database file created inside the history directory
const FileName = "history.db"

// DB is an open history database
type DB struct {
	db     *sql.DB
	dbPath string
}

// Item is one removed entry of a run
type Item struct {
	Path     string
	Category scanner.Category
	Size     int64
}

// Run is one recorded cleanup pass
type Run struct {
	ID           int64
	StartedAt    time.Time
	DryRun       bool
	DeletedCount int
	FreedBytes   int64
	ErrorCount   int
	Items        []Item
}

// RunFromResult builds a Run from a cleanup result. Items are taken from
// files whose path appears in result.Deleted.
func RunFromResult(startedAt time.Time, result *scanner.CleanupResult, files []scanner.CleanableFile) Run {
	byPath := make(map[string]scanner.CleanableFile, len(files))
	for _, f := range files {
		byPath[f.Path] = f
	}

	run := Run{
		StartedAt:    startedAt,
		DryRun:       result.DryRun,
		DeletedCount: result.DeletedCount,
		FreedBytes:   result.FreedBytes,
		ErrorCount:   len(result.Errors),
	}
	for _, path := range result.Deleted {
		f, ok := byPath[path]
		if !ok {
			continue
		}
		run.Items = append(run.Items, Item{Path: f.Path, Category: f.Category, Size: f.Size})
	}
	return run
}

// Open opens or creates the history database inside dir
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	dbPath := filepath.Join(dir, FileName)
	db, err := sql.Open("sqlite", dbPath+"?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	h := &DB{db: db, dbPath: dbPath}
	if err := h.createTables(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return h, nil
}

// Path returns the database file path
func (h *DB) Path() string {
	return h.dbPath
}

// Close closes the database connection
func (h *DB) Close() error {
	return h.db.Close()
}

func (h *DB) createTables(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at INTEGER NOT NULL,
		dry_run INTEGER NOT NULL DEFAULT 0,
		deleted_count INTEGER NOT NULL DEFAULT 0,
		freed_bytes INTEGER NOT NULL DEFAULT 0,
		error_count INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	CREATE TABLE IF NOT EXISTS items (
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		path TEXT NOT NULL,
		category TEXT NOT NULL,
		size INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_items_run ON items(run_id);
	`

	_, err := h.db.ExecContext(ctx, schema)
	return err
}

// Record stores run and its items in one transaction and returns the new run ID
func (h *DB) Record(ctx context.Context, run Run) (int64, error) {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (started_at, dry_run, deleted_count, freed_bytes, error_count) VALUES (?, ?, ?, ?, ?)`,
		run.StartedAt.UnixMilli(), run.DryRun, run.DeletedCount, run.FreedBytes, run.ErrorCount)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	if len(run.Items) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO items (run_id, path, category, size) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return 0, fmt.Errorf("failed to prepare item insert: %w", err)
		}
		defer stmt.Close()

		for _, item := range run.Items {
			if _, err := stmt.ExecContext(ctx, id, item.Path, item.Category.Key(), item.Size); err != nil {
				return 0, fmt.Errorf("failed to insert item %s: %w", item.Path, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return id, nil
}

// Recent returns up to limit runs, newest first, without their items
func (h *DB) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := h.db.QueryContext(ctx,
		`SELECT id, started_at, dry_run, deleted_count, freed_bytes, error_count
		 FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r       Run
			started int64
		)
		if err := rows.Scan(&r.ID, &started, &r.DryRun, &r.DeletedCount, &r.FreedBytes, &r.ErrorCount); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt = time.UnixMilli(started)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Items returns the items recorded for a run, largest first
func (h *DB) Items(ctx context.Context, runID int64) ([]Item, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT path, category, size FROM items WHERE run_id = ? ORDER BY size DESC, path`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var (
			item Item
			key  string
		)
		if err := rows.Scan(&item.Path, &key, &item.Size); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		category, err := scanner.ParseCategory(key)
		if err != nil {
			return nil, err
		}
		item.Category = category
		items = append(items, item)
	}
	return items, rows.Err()
}

// Totals sums freed bytes and deleted items over every recorded run
func (h *DB) Totals(ctx context.Context) (runs int, deleted int, freed int64, err error) {
	row := h.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(deleted_count), 0), COALESCE(SUM(freed_bytes), 0) FROM runs`)
	if scanErr := row.Scan(&runs, &deleted, &freed); scanErr != nil && !errors.Is(scanErr, sql.ErrNoRows) {
		return 0, 0, 0, fmt.Errorf("failed to sum runs: %w", scanErr)
	}
	return runs, deleted, freed, nil
}
