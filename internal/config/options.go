package config

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/fenilsonani/duster/pkg/utils"
)

// ScanOptions is one scan request as the operator phrased it: which
// categories, an optional root, threshold overrides and extra excludes.
type ScanOptions struct {
	Path string
	All  bool

	Cache      bool
	Trash      bool
	Temp       bool
	Downloads  bool
	Build      bool
	Large      bool
	Duplicates bool
	Old        bool

	MinAgeDays      *int
	MinSize         string // e.g. "100MB"; empty keeps the configured value
	ProjectAgeDays  *int
	DownloadAgeDays *int

	Exclude []string
}

// NoCategoriesSelected reports whether no category flag was set.
func (o ScanOptions) NoCategoriesSelected() bool {
	return !o.Cache && !o.Trash && !o.Temp && !o.Downloads &&
		!o.Build && !o.Large && !o.Duplicates && !o.Old
}

// SelectedKeys returns the category keys the request names, in a fixed
// order. It returns nil when every category should run.
func (o ScanOptions) SelectedKeys() []string {
	if o.All || o.NoCategoriesSelected() {
		return nil
	}

	flags := []struct {
		on  bool
		key string
	}{
		{o.Cache, "cache"},
		{o.Trash, "trash"},
		{o.Temp, "temp"},
		{o.Downloads, "downloads"},
		{o.Build, "build"},
		{o.Large, "large"},
		{o.Duplicates, "duplicates"},
		{o.Old, "old"},
	}

	var keys []string
	for _, f := range flags {
		if f.on {
			keys = append(keys, f.key)
		}
	}
	return keys
}

// SetCategory turns on the flag for a category key.
func (o *ScanOptions) SetCategory(key string) error {
	switch key {
	case "cache":
		o.Cache = true
	case "trash":
		o.Trash = true
	case "temp":
		o.Temp = true
	case "downloads":
		o.Downloads = true
	case "build":
		o.Build = true
	case "large":
		o.Large = true
	case "duplicates":
		o.Duplicates = true
	case "old":
		o.Old = true
	default:
		return fmt.Errorf("unknown category %q", key)
	}
	return nil
}

// ApplyOptions returns a copy of c with the request's overrides merged in.
// Extra excludes are appended without duplicates.
func (c *Config) ApplyOptions(opts ScanOptions) (*Config, error) {
	out := c.Clone()

	if opts.MinAgeDays != nil {
		out.MinAgeDays = *opts.MinAgeDays
	}
	if opts.MinSize != "" {
		mb, err := utils.ParseSizeMB(opts.MinSize)
		if err != nil {
			return nil, fmt.Errorf("failed to parse min size: %w", err)
		}
		out.MinLargeSizeMB = mb
	}
	if opts.ProjectAgeDays != nil {
		out.ProjectRecentDays = *opts.ProjectAgeDays
	}
	if opts.DownloadAgeDays != nil {
		out.DownloadAgeDays = *opts.DownloadAgeDays
	}
	if opts.Path != "" {
		abs, err := filepath.Abs(opts.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve scan path: %w", err)
		}
		out.BasePath = abs
	}

	for _, ex := range opts.Exclude {
		if !slices.Contains(out.ExcludedPaths, ex) {
			out.ExcludedPaths = append(out.ExcludedPaths, ex)
		}
	}

	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scan options: %w", err)
	}

	return out, nil
}
