package scanner

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Category is the kind of reclaimable space an item belongs to
type Category int

const (
	Cache Category = iota
	Trash
	Temp
	Downloads
	BuildArtifact
	LargeFile
	Duplicate
	OldFile
)

// ErrUnknownCategory is returned by ParseCategory for keys it does not know
var ErrUnknownCategory = errors.New("unknown category")

var categoryInfo = [...]struct {
	key         string
	displayName string
	description string
}{
	Cache:         {"cache", "System Cache", "Cached data from applications and system"},
	Trash:         {"trash", "Trash", "Files in the trash bin"},
	Temp:          {"temp", "Temp Files", "Temporary files from /tmp and similar"},
	Downloads:     {"downloads", "Old Downloads", "Old files in Downloads folder"},
	BuildArtifact: {"build", "Build Artifacts", "Build outputs and dependencies (node_modules, target, etc.)"},
	LargeFile:     {"large", "Large Files", "Large files that may not be needed"},
	Duplicate:     {"duplicates", "Duplicates", "Duplicate files wasting space"},
	OldFile:       {"old", "Old Files", "Files not accessed for a long time"},
}

// AllCategories returns every category in display order
func AllCategories() []Category {
	return []Category{Cache, Trash, Temp, Downloads, BuildArtifact, LargeFile, Duplicate, OldFile}
}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	return c >= Cache && c <= OldFile
}

// Key is the stable lower-case identifier used by flags, config and the scan cache
func (c Category) Key() string {
	if !c.Valid() {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryInfo[c].key
}

func (c Category) DisplayName() string {
	if !c.Valid() {
		return "Unknown"
	}
	return categoryInfo[c].displayName
}

func (c Category) Description() string {
	if !c.Valid() {
		return ""
	}
	return categoryInfo[c].description
}

func (c Category) String() string {
	return c.Key()
}

// MarshalText encodes the category as its key, for JSON and YAML alike
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCategory, int(c))
	}
	return []byte(c.Key()), nil
}

// UnmarshalText decodes a category key
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCategory maps a key such as "build" to its Category, ignoring case
func ParseCategory(key string) (Category, error) {
	normalized := strings.ToLower(strings.TrimSpace(key))
	for _, c := range AllCategories() {
		if categoryInfo[c].key == normalized {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownCategory, key)
}

// CleanableFile is one item a scan proposes for deletion
type CleanableFile struct {
	Path         string    `json:"path" yaml:"path"`
	Size         int64     `json:"size" yaml:"size"`
	Category     Category  `json:"category" yaml:"category"`
	LastAccessed time.Time `json:"last_accessed" yaml:"last_accessed"`
	Reason       string    `json:"reason" yaml:"reason"`
	IsDirectory  bool      `json:"is_directory" yaml:"is_directory"`
}

// ScanResult is the merged outcome of one scan request
type ScanResult struct {
	Files  []CleanableFile `json:"files" yaml:"files"`
	Errors []string        `json:"errors" yaml:"errors"`
}

// CategorySummary aggregates the items of one category
type CategorySummary struct {
	Category Category
	Count    int
	Size     int64
	Files    []CleanableFile
}

// TotalSize sums the size of every item
func (r *ScanResult) TotalSize() int64 {
	var total int64
	for _, f := range r.Files {
		total += f.Size
	}
	return total
}

// TotalCount returns the number of items
func (r *ScanResult) TotalCount() int {
	return len(r.Files)
}

// ByCategory groups items by category, in AllCategories order, skipping
// categories with no items. Item order within a group is preserved.
func (r *ScanResult) ByCategory() []CategorySummary {
	grouped := make(map[Category]*CategorySummary)
	for _, f := range r.Files {
		s, ok := grouped[f.Category]
		if !ok {
			s = &CategorySummary{Category: f.Category}
			grouped[f.Category] = s
		}
		s.Files = append(s.Files, f)
		s.Count++
		s.Size += f.Size
	}

	summaries := make([]CategorySummary, 0, len(grouped))
	for _, c := range AllCategories() {
		if s, ok := grouped[c]; ok {
			summaries = append(summaries, *s)
		}
	}
	return summaries
}

// Filter returns a result holding only items of the given categories.
// Errors are carried over unchanged.
func (r *ScanResult) Filter(categories ...Category) *ScanResult {
	want := make(map[Category]bool, len(categories))
	for _, c := range categories {
		want[c] = true
	}

	out := &ScanResult{Errors: append([]string(nil), r.Errors...)}
	for _, f := range r.Files {
		if want[f.Category] {
			out.Files = append(out.Files, f)
		}
	}
	return out
}

// Paths returns the path of every item in order
func (r *ScanResult) Paths() []string {
	paths := make([]string, len(r.Files))
	for i, f := range r.Files {
		paths[i] = f.Path
	}
	return paths
}

// CleanupResult reports what a cleanup pass did
type CleanupResult struct {
	DeletedCount int      `json:"deleted_count" yaml:"deleted_count"`
	FreedBytes   int64    `json:"freed_bytes" yaml:"freed_bytes"`
	Errors       []string `json:"errors" yaml:"errors"`
	Deleted      []string `json:"deleted" yaml:"deleted"`
	DryRun       bool     `json:"dry_run" yaml:"dry_run"`
}
