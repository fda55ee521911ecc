// Package reporter renders scan and cleanup results as text, JSON or YAML.
package reporter

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fenilsonani/duster/internal/scanner"
	"github.com/fenilsonani/duster/internal/ui/layout"
	"github.com/fenilsonani/duster/pkg/utils"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatTable   OutputFormat = "table"
	FormatJSON    OutputFormat = "json"
	FormatYAML    OutputFormat = "yaml"
	FormatSummary OutputFormat = "summary"
)

// DefaultTopN is how many items per category Analyze lists
const DefaultTopN = 5

const pathWidth = 60

// ParseFormat validates a --format value
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatYAML, FormatSummary:
		return f, nil
	case "":
		return FormatSummary, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", s)
	}
}

// Reporter handles report generation
type Reporter struct {
	writer  io.Writer
	format  OutputFormat
	homeDir string
	now     func() time.Time
}

// Option configures a Reporter
type Option func(*Reporter)

// WithHomeDir prints paths under home as "~/..."
func WithHomeDir(home string) Option {
	return func(r *Reporter) {
		r.homeDir = home
	}
}

// WithClock sets the time source for report timestamps
func WithClock(now func() time.Time) Option {
	return func(r *Reporter) {
		r.now = now
	}
}

// New creates a new Reporter
func New(writer io.Writer, format OutputFormat, opts ...Option) *Reporter {
	r := &Reporter{
		writer: writer,
		format: format,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Summary holds the totals of a scan
type Summary struct {
	TotalFiles         int    `json:"total_files" yaml:"total_files"`
	TotalSize          int64  `json:"total_size" yaml:"total_size"`
	TotalSizeFormatted string `json:"total_size_formatted" yaml:"total_size_formatted"`
}

// CategoryReport is one row of the per-category breakdown
type CategoryReport struct {
	Category      scanner.Category `json:"category" yaml:"category"`
	DisplayName   string           `json:"display_name" yaml:"display_name"`
	Description   string           `json:"description,omitempty" yaml:"description,omitempty"`
	Count         int              `json:"count" yaml:"count"`
	Size          int64            `json:"size" yaml:"size"`
	SizeFormatted string           `json:"size_formatted" yaml:"size_formatted"`
	Top           []FileReport     `json:"top,omitempty" yaml:"top,omitempty"`
	More          int              `json:"more,omitempty" yaml:"more,omitempty"`
}

// FileReport is one scanned item
type FileReport struct {
	Path          string           `json:"path" yaml:"path"`
	Size          int64            `json:"size" yaml:"size"`
	SizeFormatted string           `json:"size_formatted" yaml:"size_formatted"`
	Category      scanner.Category `json:"category" yaml:"category"`
	Reason        string           `json:"reason" yaml:"reason"`
	IsDirectory   bool             `json:"is_directory" yaml:"is_directory"`
	LastAccessed  time.Time        `json:"last_accessed" yaml:"last_accessed"`
}

// Document is the structured form of a scan report
type Document struct {
	Timestamp  string           `json:"timestamp" yaml:"timestamp"`
	Summary    Summary          `json:"summary" yaml:"summary"`
	ByCategory []CategoryReport `json:"by_category" yaml:"by_category"`
	Files      []FileReport     `json:"files,omitempty" yaml:"files,omitempty"`
	Errors     []string         `json:"errors" yaml:"errors"`
}

// Report generates a report from scan results
func (r *Reporter) Report(result *scanner.ScanResult) error {
	switch r.format {
	case FormatTable:
		return r.reportTable(result)
	case FormatJSON, FormatYAML:
		return r.encode(r.document(result, 0, true))
	case FormatSummary, "":
		return r.reportSummary(result)
	default:
		return fmt.Errorf("unsupported format: %s", r.format)
	}
}

// Analyze prints every category with its description and its topN largest
// items. Structured formats carry the same data under by_category.
func (r *Reporter) Analyze(result *scanner.ScanResult, topN int) error {
	if topN <= 0 {
		topN = DefaultTopN
	}

	switch r.format {
	case FormatJSON, FormatYAML:
		return r.encode(r.document(result, topN, false))
	case FormatTable, FormatSummary, "":
	default:
		return fmt.Errorf("unsupported format: %s", r.format)
	}

	w := r.writer
	fmt.Fprintln(w, header("Detailed Analysis"))

	for _, cat := range r.categories(result, topN) {
		fmt.Fprintf(w, "\n%s (%s items, %s):\n", cat.DisplayName, utils.FormatCount(cat.Count), cat.SizeFormatted)
		if cat.Description != "" {
			fmt.Fprintf(w, "  %s\n", cat.Description)
		}
		for _, f := range cat.Top {
			fmt.Fprintf(w, "  %s  %s\n", layout.TruncatePath(f.Path, pathWidth), f.SizeFormatted)
			if f.Reason != "" {
				fmt.Fprintf(w, "    %s\n", f.Reason)
			}
		}
		if cat.More > 0 {
			fmt.Fprintf(w, "  ...and %s more items\n", utils.FormatCount(cat.More))
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("─", 50))
	fmt.Fprintf(w, "Total: %s across %s items\n", utils.FormatBytes(result.TotalSize()), utils.FormatCount(result.TotalCount()))
	r.writeErrors(result.Errors)
	return nil
}

// reportSummary prints the category table sorted by size, largest first
func (r *Reporter) reportSummary(result *scanner.ScanResult) error {
	w := r.writer
	fmt.Fprintln(w, header("Scan Results"))

	fmt.Fprintf(w, "%-20s %10s %12s\n", "Category", "Files", "Size")
	fmt.Fprintln(w, strings.Repeat("─", 44))
	for _, cat := range r.categories(result, 0) {
		fmt.Fprintf(w, "%-20s %10s %12s\n", cat.DisplayName, utils.FormatCount(cat.Count), cat.SizeFormatted)
	}
	fmt.Fprintln(w, strings.Repeat("─", 44))
	fmt.Fprintf(w, "%-20s %10s %12s\n", "Total", utils.FormatCount(result.TotalCount()), utils.FormatBytes(result.TotalSize()))

	r.writeErrors(result.Errors)
	return nil
}

// reportTable prints one row per item
func (r *Reporter) reportTable(result *scanner.ScanResult) error {
	w := r.writer
	fmt.Fprintf(w, "%-60s | %-12s | %-16s | %s\n", "Path", "Size", "Category", "Last Accessed")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for _, file := range result.Files {
		accessed := "-"
		if !file.LastAccessed.IsZero() {
			accessed = file.LastAccessed.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%-60s | %-12s | %-16s | %s\n",
			layout.TruncatePath(r.displayPath(file.Path), pathWidth),
			utils.FormatBytes(file.Size),
			file.Category.DisplayName(),
			accessed)
	}

	fmt.Fprintln(w, strings.Repeat("-", 110))
	fmt.Fprintf(w, "Total: %s items, %s\n", utils.FormatCount(result.TotalCount()), utils.FormatBytes(result.TotalSize()))
	r.writeErrors(result.Errors)
	return nil
}

// ReportCleanup prints what a cleanup pass did
func (r *Reporter) ReportCleanup(result *scanner.CleanupResult) error {
	switch r.format {
	case FormatJSON, FormatYAML:
		doc := struct {
			scanner.CleanupResult `yaml:",inline"`
			FreedFormatted        string `json:"freed_formatted" yaml:"freed_formatted"`
		}{*result, utils.FormatBytes(result.FreedBytes)}
		if doc.Errors == nil {
			doc.Errors = []string{}
		}
		return r.encode(doc)
	case FormatTable, FormatSummary, "":
	default:
		return fmt.Errorf("unsupported format: %s", r.format)
	}

	w := r.writer
	if result.DryRun {
		fmt.Fprintln(w, header("Dry Run Complete"))
		fmt.Fprintf(w, "Would delete: %s items\n", utils.FormatCount(result.DeletedCount))
		fmt.Fprintf(w, "Would free:   %s\n", utils.FormatBytes(result.FreedBytes))
	} else {
		fmt.Fprintln(w, header("Cleanup Complete"))
		fmt.Fprintf(w, "Deleted: %s items\n", utils.FormatCount(result.DeletedCount))
		fmt.Fprintf(w, "Freed:   %s\n", utils.FormatBytes(result.FreedBytes))
	}
	if len(result.Errors) > 0 {
		fmt.Fprintf(w, "Failed:  %s items\n", utils.FormatCount(len(result.Errors)))
	}
	return nil
}

// SaveToFile saves the report to a file
func SaveToFile(result *scanner.ScanResult, path string, format OutputFormat, opts ...Option) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}

	if err := New(file, format, opts...).Report(result); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func (r *Reporter) encode(v any) error {
	if r.format == FormatYAML {
		encoder := yaml.NewEncoder(r.writer)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return err
		}
		return encoder.Close()
	}

	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func (r *Reporter) document(result *scanner.ScanResult, topN int, withFiles bool) Document {
	doc := Document{
		Timestamp: r.now().Format(time.RFC3339),
		Summary: Summary{
			TotalFiles:         result.TotalCount(),
			TotalSize:          result.TotalSize(),
			TotalSizeFormatted: utils.FormatBytes(result.TotalSize()),
		},
		ByCategory: []CategoryReport{},
		Errors:     append([]string{}, result.Errors...),
	}

	for _, s := range result.ByCategory() {
		doc.ByCategory = append(doc.ByCategory, r.categoryReport(s, topN))
	}
	if withFiles {
		doc.Files = make([]FileReport, 0, len(result.Files))
		for _, f := range result.Files {
			doc.Files = append(doc.Files, r.fileReport(f))
		}
	}
	return doc
}

// categories returns the breakdown sorted by size, largest first
func (r *Reporter) categories(result *scanner.ScanResult, topN int) []CategoryReport {
	var out []CategoryReport
	for _, s := range result.ByCategory() {
		out = append(out, r.categoryReport(s, topN))
	}
	slices.SortStableFunc(out, func(a, b CategoryReport) int {
		return cmp.Compare(b.Size, a.Size)
	})
	return out
}

func (r *Reporter) categoryReport(s scanner.CategorySummary, topN int) CategoryReport {
	cat := CategoryReport{
		Category:      s.Category,
		DisplayName:   s.Category.DisplayName(),
		Count:         s.Count,
		Size:          s.Size,
		SizeFormatted: utils.FormatBytes(s.Size),
	}
	if topN <= 0 {
		return cat
	}

	cat.Description = s.Category.Description()
	files := slices.Clone(s.Files)
	slices.SortStableFunc(files, func(a, b scanner.CleanableFile) int {
		return cmp.Compare(b.Size, a.Size)
	})
	for _, f := range files[:min(topN, len(files))] {
		cat.Top = append(cat.Top, r.fileReport(f))
	}
	cat.More = max(len(files)-topN, 0)
	return cat
}

func (r *Reporter) fileReport(f scanner.CleanableFile) FileReport {
	return FileReport{
		Path:          r.displayPath(f.Path),
		Size:          f.Size,
		SizeFormatted: utils.FormatBytes(f.Size),
		Category:      f.Category,
		Reason:        f.Reason,
		IsDirectory:   f.IsDirectory,
		LastAccessed:  f.LastAccessed,
	}
}

func (r *Reporter) displayPath(path string) string {
	return layout.ShortenHome(path, r.homeDir)
}

func (r *Reporter) writeErrors(errs []string) {
	if len(errs) == 0 {
		return
	}
	fmt.Fprintf(r.writer, "\nWarning: %d scanner(s) encountered errors:\n", len(errs))
	for _, e := range errs {
		fmt.Fprintf(r.writer, "  %s\n", e)
	}
}

func header(title string) string {
	return fmt.Sprintf("\n%s\n%s", title, strings.Repeat("═", len(title)))
}
