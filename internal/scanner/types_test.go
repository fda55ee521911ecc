package scanner

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// Category Tests
// =============================================================================

func TestCategoryKeys(t *testing.T) {
	tests := []struct {
		category Category
		key      string
		display  string
	}{
		{Cache, "cache", "System Cache"},
		{Trash, "trash", "Trash"},
		{Temp, "temp", "Temp Files"},
		{Downloads, "downloads", "Old Downloads"},
		{BuildArtifact, "build", "Build Artifacts"},
		{LargeFile, "large", "Large Files"},
		{Duplicate, "duplicates", "Duplicates"},
		{OldFile, "old", "Old Files"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := tt.category.Key(); got != tt.key {
				t.Errorf("Key() = %q, want %q", got, tt.key)
			}
			if got := tt.category.DisplayName(); got != tt.display {
				t.Errorf("DisplayName() = %q, want %q", got, tt.display)
			}
			if tt.category.Description() == "" {
				t.Error("Description() is empty")
			}

			parsed, err := ParseCategory(strings.ToUpper(tt.key))
			if err != nil {
				t.Fatalf("ParseCategory(%q) error = %v", tt.key, err)
			}
			if parsed != tt.category {
				t.Errorf("ParseCategory(%q) = %v, want %v", tt.key, parsed, tt.category)
			}
		})
	}
}

func TestParseCategoryUnknown(t *testing.T) {
	_, err := ParseCategory("logs")
	if !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("ParseCategory(logs) error = %v, want ErrUnknownCategory", err)
	}
}

func TestAllCategoriesOrder(t *testing.T) {
	all := AllCategories()
	if len(all) != 8 {
		t.Fatalf("AllCategories() returned %d categories, want 8", len(all))
	}
	for i, c := range all {
		if int(c) != i {
			t.Errorf("AllCategories()[%d] = %v, want declaration order", i, c)
		}
	}
}

func TestCategoryEncodesAsKey(t *testing.T) {
	file := CleanableFile{Path: "/tmp/x", Size: 10, Category: BuildArtifact}

	data, err := json.Marshal(file)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), `"category":"build"`) {
		t.Errorf("json = %s, want category key \"build\"", data)
	}

	var decoded CleanableFile
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if decoded.Category != BuildArtifact {
		t.Errorf("decoded category = %v, want build", decoded.Category)
	}

	out, err := yaml.Marshal(file)
	if err != nil {
		t.Fatalf("yaml.Marshal() error = %v", err)
	}
	if !strings.Contains(string(out), "category: build") {
		t.Errorf("yaml = %s, want category: build", out)
	}
}

func TestCategoryRejectsUnknownJSON(t *testing.T) {
	var file CleanableFile
	err := json.Unmarshal([]byte(`{"path":"/x","category":"nope"}`), &file)
	if err == nil {
		t.Error("expected error for unknown category")
	}
}

// =============================================================================
// ScanResult Tests
// =============================================================================

func sampleResult() *ScanResult {
	return &ScanResult{
		Files: []CleanableFile{
			{Path: "/a", Size: 100, Category: Trash},
			{Path: "/b", Size: 200, Category: Cache},
			{Path: "/c", Size: 300, Category: Trash},
			{Path: "/d", Size: 50, Category: OldFile},
		},
		Errors: []string{"Temp Scanner: boom"},
	}
}

func TestScanResultTotals(t *testing.T) {
	r := sampleResult()

	if got := r.TotalSize(); got != 650 {
		t.Errorf("TotalSize() = %d, want 650", got)
	}
	if got := r.TotalCount(); got != 4 {
		t.Errorf("TotalCount() = %d, want 4", got)
	}

	empty := &ScanResult{}
	if empty.TotalSize() != 0 || empty.TotalCount() != 0 {
		t.Error("empty result should have zero totals")
	}
}

func TestScanResultByCategory(t *testing.T) {
	summaries := sampleResult().ByCategory()

	want := []struct {
		category Category
		count    int
		size     int64
	}{
		{Cache, 1, 200},
		{Trash, 2, 400},
		{OldFile, 1, 50},
	}

	if len(summaries) != len(want) {
		t.Fatalf("ByCategory() returned %d groups, want %d", len(summaries), len(want))
	}
	for i, w := range want {
		s := summaries[i]
		if s.Category != w.category || s.Count != w.count || s.Size != w.size {
			t.Errorf("group %d = {%v %d %d}, want {%v %d %d}",
				i, s.Category, s.Count, s.Size, w.category, w.count, w.size)
		}
	}

	if summaries[1].Files[0].Path != "/a" || summaries[1].Files[1].Path != "/c" {
		t.Error("ByCategory() should keep item order within a group")
	}
}

func TestScanResultFilter(t *testing.T) {
	r := sampleResult()
	filtered := r.Filter(Trash, OldFile)

	if filtered.TotalCount() != 3 {
		t.Errorf("Filter() count = %d, want 3", filtered.TotalCount())
	}
	for _, f := range filtered.Files {
		if f.Category == Cache {
			t.Errorf("Filter() kept %s of category cache", f.Path)
		}
	}
	if len(filtered.Errors) != 1 {
		t.Errorf("Filter() should carry errors over, got %v", filtered.Errors)
	}
	if r.TotalCount() != 4 {
		t.Error("Filter() must not modify the receiver")
	}
}
