package scancache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fenilsonani/duster/internal/config"
	"github.com/fenilsonani/duster/internal/logging"
	"github.com/fenilsonani/duster/internal/scanner"
)

func sampleResult() *scanner.ScanResult {
	return &scanner.ScanResult{
		Files: []scanner.CleanableFile{
			{
				Path:         "/home/u/.cache/thumbnails",
				Size:         4096,
				Category:     scanner.Cache,
				LastAccessed: time.Unix(1700000000, 0).UTC(),
				Reason:       "Cache directory: thumbnails",
				IsDirectory:  true,
			},
		},
		Errors: []string{"Temp Scanner: permission denied"},
	}
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func newTestStore(t *testing.T) (*Store, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Unix(1800000000, 0)}
	path := filepath.Join(t.TempDir(), "duster", "last_scan.json")
	return New(path, WithClock(clock.now), WithLogger(logging.Discard())), clock
}

// =============================================================================
// Save / Load Tests
// =============================================================================

func TestSaveAndLoad(t *testing.T) {
	store, _ := newTestStore(t)
	want := sampleResult()

	if err := store.Save(want, "key-a"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, ok := store.LoadIfRecent("key-a", DefaultMaxAge)
	if !ok {
		t.Fatal("LoadIfRecent() missed a fresh cache")
	}
	if len(got.Files) != 1 {
		t.Fatalf("loaded %d files, want 1", len(got.Files))
	}
	g, w := got.Files[0], want.Files[0]
	if g.Path != w.Path || g.Size != w.Size || g.Category != w.Category ||
		g.Reason != w.Reason || g.IsDirectory != w.IsDirectory || !g.LastAccessed.Equal(w.LastAccessed) {
		t.Errorf("loaded file = %+v, want %+v", g, w)
	}
	if len(got.Errors) != 1 || got.Errors[0] != want.Errors[0] {
		t.Errorf("loaded errors = %v", got.Errors)
	}
}

func TestLoadMisses(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(t *testing.T, s *Store, c *fakeClock)
		key     string
	}{
		{
			name:    "absent file",
			prepare: func(t *testing.T, s *Store, c *fakeClock) {},
			key:     "key",
		},
		{
			name: "key mismatch",
			prepare: func(t *testing.T, s *Store, c *fakeClock) {
				if err := s.Save(sampleResult(), "other"); err != nil {
					t.Fatal(err)
				}
			},
			key: "key",
		},
		{
			name: "expired",
			prepare: func(t *testing.T, s *Store, c *fakeClock) {
				if err := s.Save(sampleResult(), "key"); err != nil {
					t.Fatal(err)
				}
				c.t = c.t.Add(DefaultMaxAge + time.Second)
			},
			key: "key",
		},
		{
			name: "corrupt file",
			prepare: func(t *testing.T, s *Store, c *fakeClock) {
				if err := os.MkdirAll(filepath.Dir(s.Path()), 0755); err != nil {
					t.Fatal(err)
				}
				if err := os.WriteFile(s.Path(), []byte("{not json"), 0644); err != nil {
					t.Fatal(err)
				}
			},
			key: "key",
		},
		{
			name: "unknown category",
			prepare: func(t *testing.T, s *Store, c *fakeClock) {
				if err := os.MkdirAll(filepath.Dir(s.Path()), 0755); err != nil {
					t.Fatal(err)
				}
				body := `{"timestamp_secs":1800000000,"options_key":"key","result":{"files":[{"path":"/x","category":"logs"}]}}`
				if err := os.WriteFile(s.Path(), []byte(body), 0644); err != nil {
					t.Fatal(err)
				}
			},
			key: "key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, clock := newTestStore(t)
			tt.prepare(t, store, clock)

			if got, ok := store.LoadIfRecent(tt.key, DefaultMaxAge); ok || got != nil {
				t.Errorf("LoadIfRecent() = %v, %v; want miss", got, ok)
			}
		})
	}
}

func TestLoadAtMaxAgeBoundary(t *testing.T) {
	store, clock := newTestStore(t)
	if err := store.Save(sampleResult(), "key"); err != nil {
		t.Fatal(err)
	}

	clock.t = clock.t.Add(DefaultMaxAge)
	if _, ok := store.LoadIfRecent("key", DefaultMaxAge); !ok {
		t.Error("cache exactly maxAge old should still be used")
	}
}

func TestSaveReplacesAtomically(t *testing.T) {
	store, _ := newTestStore(t)

	if err := store.Save(sampleResult(), "first"); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(&scanner.ScanResult{}, "second"); err != nil {
		t.Fatal(err)
	}

	if _, ok := store.LoadIfRecent("first", DefaultMaxAge); ok {
		t.Error("old key should no longer match")
	}
	if _, ok := store.LoadIfRecent("second", DefaultMaxAge); !ok {
		t.Error("new key should match")
	}

	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("cache dir holds %d entries, want only the cache file", len(entries))
	}
}

func TestClear(t *testing.T) {
	store, _ := newTestStore(t)

	if err := store.Clear(); err != nil {
		t.Errorf("Clear() on missing file error = %v", err)
	}

	if err := store.Save(sampleResult(), "key"); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, ok := store.LoadIfRecent("key", DefaultMaxAge); ok {
		t.Error("cleared cache should miss")
	}
}

// =============================================================================
// Fingerprint Tests
// =============================================================================

func TestFingerprint(t *testing.T) {
	cfg := config.GetDefault()
	base := Fingerprint(config.ScanOptions{Cache: true}, cfg)

	if base != Fingerprint(config.ScanOptions{Cache: true}, cfg) {
		t.Error("Fingerprint() is not deterministic")
	}

	reordered := cfg.Clone()
	reordered.ExcludedPaths = []string{"b", "a"}
	sorted := cfg.Clone()
	sorted.ExcludedPaths = []string{"a", "b"}
	if Fingerprint(config.ScanOptions{}, reordered) != Fingerprint(config.ScanOptions{}, sorted) {
		t.Error("exclusion order should not change the fingerprint")
	}

	if Fingerprint(config.ScanOptions{}, cfg) != Fingerprint(config.ScanOptions{All: true}, cfg) {
		t.Error("no categories and --all should share a fingerprint")
	}
	if Fingerprint(config.ScanOptions{All: true, Cache: true}, cfg) != Fingerprint(config.ScanOptions{All: true}, cfg) {
		t.Error("category flags next to --all should not change the fingerprint")
	}

	joined := cfg.Clone()
	joined.ExcludedPaths = []string{"bar,foo"}
	split := cfg.Clone()
	split.ExcludedPaths = []string{"bar", "foo"}
	if Fingerprint(config.ScanOptions{}, joined) == Fingerprint(config.ScanOptions{}, split) {
		t.Error("an exclusion containing a comma must not collide with two exclusions")
	}

	spaced := cfg.Clone()
	spaced.CachePaths = []string{"/a b"}
	pair := cfg.Clone()
	pair.CachePaths = []string{"/a", "b"}
	if Fingerprint(config.ScanOptions{}, spaced) == Fingerprint(config.ScanOptions{}, pair) {
		t.Error("cache paths must be encoded unambiguously")
	}

	changed := cfg.Clone()
	changed.MinAgeDays = 7
	variants := []string{
		Fingerprint(config.ScanOptions{Trash: true}, cfg),
		Fingerprint(config.ScanOptions{Cache: true, Trash: true}, cfg),
		Fingerprint(config.ScanOptions{Cache: true}, changed),
		Fingerprint(config.ScanOptions{Cache: true}, sorted),
	}
	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d should differ from base fingerprint", i)
		}
	}
}
