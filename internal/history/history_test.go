package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/fenilsonani/duster/internal/scanner"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpenCreatesDatabase(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	if db.Path() != filepath.Join(dir, FileName) {
		t.Errorf("Path() = %q", db.Path())
	}

	// Reopening an existing database must not fail on the schema
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}
	again, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	_ = again.Close()
}

func TestRecordAndRecent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	runs := []Run{
		{StartedAt: base, DeletedCount: 1, FreedBytes: 100},
		{StartedAt: base.Add(time.Hour), DeletedCount: 2, FreedBytes: 300, ErrorCount: 1},
		{StartedAt: base.Add(2 * time.Hour), DeletedCount: 0, FreedBytes: 0, DryRun: true},
	}
	for _, r := range runs {
		if _, err := db.Record(ctx, r); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	got, err := db.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Recent(2) returned %d runs", len(got))
	}
	if !got[0].StartedAt.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("newest run started at %v", got[0].StartedAt)
	}
	if !got[0].DryRun {
		t.Error("DryRun should round-trip")
	}
	if got[1].FreedBytes != 300 || got[1].ErrorCount != 1 || got[1].DeletedCount != 2 {
		t.Errorf("second run = %+v", got[1])
	}
}

func TestRecordItems(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	id, err := db.Record(ctx, Run{
		StartedAt:    time.Now(),
		DeletedCount: 2,
		FreedBytes:   3072,
		Items: []Item{
			{Path: "/tmp/a.tmp", Category: scanner.Temp, Size: 1024},
			{Path: "/home/u/.cache/pip", Category: scanner.Cache, Size: 2048},
		},
	})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	items, err := db.Items(ctx, id)
	if err != nil {
		t.Fatalf("Items() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Items() returned %d items", len(items))
	}
	if items[0].Path != "/home/u/.cache/pip" || items[0].Category != scanner.Cache {
		t.Errorf("largest item = %+v", items[0])
	}
	if items[1].Category != scanner.Temp {
		t.Errorf("second item category = %v", items[1].Category)
	}

	runs, deleted, freed, err := db.Totals(ctx)
	if err != nil {
		t.Fatalf("Totals() error = %v", err)
	}
	if runs != 1 || deleted != 2 || freed != 3072 {
		t.Errorf("Totals() = %d, %d, %d", runs, deleted, freed)
	}
}

func TestEmptyHistory(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	got, err := db.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Recent() on empty db = %v", got)
	}

	runs, deleted, freed, err := db.Totals(ctx)
	if err != nil || runs != 0 || deleted != 0 || freed != 0 {
		t.Errorf("Totals() = %d, %d, %d, %v", runs, deleted, freed, err)
	}
}

func TestRunFromResult(t *testing.T) {
	started := time.Now()
	files := []scanner.CleanableFile{
		{Path: "/tmp/a", Size: 10, Category: scanner.Temp},
		{Path: "/tmp/b", Size: 20, Category: scanner.Temp},
		{Path: "/home/u/.cache/c", Size: 30, Category: scanner.Cache},
	}
	result := &scanner.CleanupResult{
		DeletedCount: 2,
		FreedBytes:   40,
		Deleted:      []string{"/tmp/a", "/home/u/.cache/c"},
		Errors:       []string{"/tmp/b: busy"},
	}

	run := RunFromResult(started, result, files)

	if run.DeletedCount != 2 || run.FreedBytes != 40 || run.ErrorCount != 1 {
		t.Errorf("run = %+v", run)
	}
	if len(run.Items) != 2 {
		t.Fatalf("Items = %v, want 2", run.Items)
	}
	if run.Items[1].Category != scanner.Cache || run.Items[1].Size != 30 {
		t.Errorf("second item = %+v", run.Items[1])
	}
}
