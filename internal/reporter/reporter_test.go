package reporter

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fenilsonani/duster/internal/scanner"
)

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleResult() *scanner.ScanResult {
	files := []scanner.CleanableFile{
		{Path: "/home/u/.cache/pip", Size: 3 << 20, Category: scanner.Cache, Reason: "Cache directory", IsDirectory: true},
		{Path: "/home/u/.cache/go-build", Size: 1 << 20, Category: scanner.Cache, Reason: "Cache directory", IsDirectory: true},
		{Path: "/home/u/.local/share/Trash/files/a.iso", Size: 10 << 20, Category: scanner.Trash, Reason: "In trash"},
	}
	for i := range 7 {
		files = append(files, scanner.CleanableFile{
			Path:     filepath.Join("/tmp", "f"+string(rune('a'+i))),
			Size:     int64(i+1) * 1024,
			Category: scanner.Temp,
			Reason:   "Temporary file",
		})
	}
	return &scanner.ScanResult{Files: files, Errors: []string{"Downloads: permission denied"}}
}

func newTestReporter(buf *bytes.Buffer, format OutputFormat) *Reporter {
	return New(buf, format, WithHomeDir("/home/u"), WithClock(func() time.Time { return fixedTime }))
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", FormatSummary, false},
		{"json", FormatJSON, false},
		{" YAML ", FormatYAML, false},
		{"table", FormatTable, false},
		{"summary", FormatSummary, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestReportSummary(t *testing.T) {
	var buf bytes.Buffer
	if err := newTestReporter(&buf, FormatSummary).Report(sampleResult()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{"Scan Results", "Category", "Trash", "System Cache", "Temp Files", "Total", "10", "Downloads: permission denied"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}

	// largest category first
	if strings.Index(out, "Trash") > strings.Index(out, "System Cache") {
		t.Error("categories should be sorted by size, largest first")
	}
}

func TestReportTable(t *testing.T) {
	var buf bytes.Buffer
	if err := newTestReporter(&buf, FormatTable).Report(sampleResult()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if !strings.Contains(out, "~/.cache/pip") {
		t.Error("paths under home should be shortened")
	}
	if !strings.Contains(out, "Total: 10 items") {
		t.Errorf("missing total line:\n%s", out)
	}
	if strings.Contains(out, "\x00") {
		t.Error("table must not contain NUL bytes")
	}
}

func TestReportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := newTestReporter(&buf, FormatJSON).Report(sampleResult()); err != nil {
		t.Fatal(err)
	}

	var doc Document
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if doc.Timestamp != fixedTime.Format(time.RFC3339) {
		t.Errorf("timestamp = %q", doc.Timestamp)
	}
	if doc.Summary.TotalFiles != 10 {
		t.Errorf("total_files = %d, want 10", doc.Summary.TotalFiles)
	}
	if len(doc.ByCategory) != 3 || doc.ByCategory[0].Category != scanner.Cache {
		t.Errorf("by_category = %+v", doc.ByCategory)
	}
	if len(doc.Files) != 10 || doc.Files[0].Path != "~/.cache/pip" {
		t.Errorf("files = %+v", doc.Files)
	}
	if len(doc.Errors) != 1 {
		t.Errorf("errors = %v", doc.Errors)
	}

	if !strings.Contains(buf.String(), `"category": "cache"`) {
		t.Error("categories should be encoded by key")
	}
}

func TestReportEmptyJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := newTestReporter(&buf, FormatJSON).Report(&scanner.ScanResult{}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, `"by_category": []`) || !strings.Contains(out, `"errors": []`) {
		t.Errorf("empty result should encode empty arrays, got:\n%s", out)
	}
}

func TestReportYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := newTestReporter(&buf, FormatYAML).Report(sampleResult()); err != nil {
		t.Fatal(err)
	}

	var doc Document
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if doc.Summary.TotalFiles != 10 || len(doc.ByCategory) != 3 {
		t.Errorf("decoded %+v", doc.Summary)
	}
}

func TestReportUnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, "xml")
	if err := r.Report(sampleResult()); err == nil {
		t.Error("Report should reject an unknown format")
	}
	if err := r.Analyze(sampleResult(), 3); err == nil {
		t.Error("Analyze should reject an unknown format")
	}
	if err := r.ReportCleanup(&scanner.CleanupResult{}); err == nil {
		t.Error("ReportCleanup should reject an unknown format")
	}
}

// =============================================================================
// Analysis
// =============================================================================

func TestAnalyzeText(t *testing.T) {
	var buf bytes.Buffer
	if err := newTestReporter(&buf, FormatSummary).Analyze(sampleResult(), 5); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		"Detailed Analysis",
		"Temporary files from /tmp and similar",
		"...and 2 more items",
		"Temporary file",
		"~/.local/share/Trash/files/a.iso",
		"Total:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("analysis missing %q:\n%s", want, out)
		}
	}

	// top entries are the largest temp files
	if !strings.Contains(out, "/tmp/fg") || strings.Contains(out, "/tmp/fa ") {
		t.Errorf("top entries should be the largest items:\n%s", out)
	}
}

func TestAnalyzeJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := newTestReporter(&buf, FormatJSON).Analyze(sampleResult(), 2); err != nil {
		t.Fatal(err)
	}

	var doc Document
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	if len(doc.Files) != 0 {
		t.Error("analysis should not list every file")
	}

	for _, cat := range doc.ByCategory {
		if cat.Category != scanner.Temp {
			continue
		}
		if len(cat.Top) != 2 || cat.More != 5 {
			t.Errorf("temp top = %d, more = %d, want 2 and 5", len(cat.Top), cat.More)
		}
		if cat.Top[0].Size < cat.Top[1].Size {
			t.Error("top entries should be sorted by size")
		}
		if cat.Description == "" {
			t.Error("analysis should carry the category description")
		}
		return
	}
	t.Error("temp category missing")
}

func TestAnalyzeDefaultTopN(t *testing.T) {
	var buf bytes.Buffer
	if err := newTestReporter(&buf, FormatJSON).Analyze(sampleResult(), 0); err != nil {
		t.Fatal(err)
	}

	var doc Document
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	for _, cat := range doc.ByCategory {
		if cat.Category == scanner.Temp && len(cat.Top) != DefaultTopN {
			t.Errorf("top = %d, want %d", len(cat.Top), DefaultTopN)
		}
	}
}

// =============================================================================
// Cleanup Reports
// =============================================================================

func TestReportCleanup(t *testing.T) {
	tests := []struct {
		name   string
		result scanner.CleanupResult
		want   []string
	}{
		{
			name:   "real run",
			result: scanner.CleanupResult{DeletedCount: 3, FreedBytes: 2048, Errors: []string{"x: denied"}},
			want:   []string{"Cleanup Complete", "Deleted: 3 items", "2.0 KiB", "Failed:  1 items"},
		},
		{
			name:   "dry run",
			result: scanner.CleanupResult{DeletedCount: 5, FreedBytes: 1 << 20, DryRun: true},
			want:   []string{"Dry Run Complete", "Would delete: 5 items", "1.0 MiB"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := newTestReporter(&buf, FormatSummary).ReportCleanup(&tt.result); err != nil {
				t.Fatal(err)
			}
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output missing %q:\n%s", want, buf.String())
				}
			}
		})
	}
}

func TestReportCleanupJSON(t *testing.T) {
	var buf bytes.Buffer
	result := &scanner.CleanupResult{DeletedCount: 1, FreedBytes: 1024, Deleted: []string{"/tmp/a"}}
	if err := newTestReporter(&buf, FormatJSON).ReportCleanup(result); err != nil {
		t.Fatal(err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["freed_formatted"] != "1.0 KiB" || decoded["deleted_count"] != float64(1) {
		t.Errorf("decoded = %v", decoded)
	}
	if errs, ok := decoded["errors"].([]any); !ok || len(errs) != 0 {
		t.Errorf("errors = %v, want an empty list", decoded["errors"])
	}
	if result.Errors != nil {
		t.Error("ReportCleanup must not modify its input")
	}
}

func TestSaveToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	if err := SaveToFile(sampleResult(), path, FormatJSON); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("saved report is not valid JSON: %v", err)
	}

	if err := SaveToFile(sampleResult(), filepath.Join(t.TempDir(), "missing", "r.json"), FormatJSON); err == nil {
		t.Error("expected an error for a missing directory")
	}
}
