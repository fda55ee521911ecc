// Package scancache persists the most recent scan so a follow-up clean can
// reuse it instead of walking the disk again.
package scancache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"

	"github.com/fenilsonani/duster/internal/config"
	"github.com/fenilsonani/duster/internal/platform"
	"github.com/fenilsonani/duster/internal/scanner"
)

// DefaultMaxAge is how long a saved scan stays reusable
const DefaultMaxAge = 300 * time.Second

const fileName = "last_scan.json"

// envelope is the on-disk format
type envelope struct {
	TimestampSecs uint64              `json:"timestamp_secs"`
	OptionsKey    string              `json:"options_key"`
	Result        *scanner.ScanResult `json:"result"`
}

// Store reads and writes the single cached scan. It has one writer per
// process and no cross-process locking.
type Store struct {
	path   string
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Store
type Option func(*Store)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithLogger sets the logger for cache hits and misses
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New returns a store backed by the file at path
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:   path,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultPath returns <xdg cache>/duster/last_scan.json
func DefaultPath() (string, error) {
	return xdg.CacheFile(filepath.Join(platform.AppName, fileName))
}

// Path returns the backing file
func (s *Store) Path() string {
	return s.path
}

// Fingerprint identifies a scan request. Two requests share cached results
// only when their target, categories, thresholds and exclusions agree.
// cfg is the effective configuration after opts were applied.
func Fingerprint(opts config.ScanOptions, cfg *config.Config) string {
	excludes := slices.Clone(cfg.ExcludedPaths)
	slices.Sort(excludes)
	cachePaths := slices.Clone(cfg.CachePaths)
	slices.Sort(cachePaths)

	// Every category runs under --all, whatever else was flagged
	all := opts.All || opts.NoCategoriesSelected()
	if all {
		opts.Cache, opts.Trash, opts.Temp, opts.Downloads = false, false, false, false
		opts.Build, opts.Large, opts.Duplicates, opts.Old = false, false, false, false
	}

	return fmt.Sprintf(
		"path=%q all=%t cache=%t trash=%t temp=%t downloads=%t build=%t large=%t duplicates=%t old=%t "+
			"min_age=%d min_size=%d project_age=%d download_age=%d exclude=%s cache_paths=%s",
		cfg.BasePath,
		all,
		opts.Cache, opts.Trash, opts.Temp, opts.Downloads,
		opts.Build, opts.Large, opts.Duplicates, opts.Old,
		cfg.MinAgeDays, cfg.MinLargeSizeMB, cfg.ProjectRecentDays, cfg.DownloadAgeDays,
		quoteList(excludes),
		quoteList(cachePaths),
	)
}

// quoteList renders items so no element can be mistaken for two
func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = strconv.Quote(item)
	}
	return "[" + strings.Join(quoted, " ") + "]"
}

// Save writes result under key, replacing any previous scan
func (s *Store) Save(result *scanner.ScanResult, key string) error {
	env := envelope{
		TimestampSecs: uint64(s.now().Unix()),
		OptionsKey:    key,
		Result:        result,
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode scan cache: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, fileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write scan cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write scan cache: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace scan cache: %w", err)
	}

	s.logger.Debug("scan cache saved", "path", s.path, "items", result.TotalCount())
	return nil
}

// LoadIfRecent returns the cached scan when it was saved under key no more
// than maxAge ago. A missing, unreadable, expired or mismatched cache is a
// miss, never an error.
func (s *Store) LoadIfRecent(key string, maxAge time.Duration) (*scanner.ScanResult, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("scan cache unreadable", "path", s.path, "error", err)
		}
		return nil, false
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil || env.Result == nil {
		s.logger.Debug("scan cache corrupt", "path", s.path, "error", err)
		return nil, false
	}

	nowSecs := uint64(s.now().Unix())
	var age uint64
	if nowSecs > env.TimestampSecs {
		age = nowSecs - env.TimestampSecs
	}
	if time.Duration(age)*time.Second > maxAge {
		s.logger.Debug("scan cache expired", "age_secs", age)
		return nil, false
	}

	if env.OptionsKey != key {
		s.logger.Debug("scan cache key mismatch")
		return nil, false
	}

	s.logger.Debug("scan cache hit", "age_secs", age, "items", env.Result.TotalCount())
	return env.Result, true
}

// Clear removes the cached scan. A missing file is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove scan cache: %w", err)
	}
	return nil
}
