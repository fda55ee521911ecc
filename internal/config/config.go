package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	MinAgeDays        int      `yaml:"min_age_days"`
	MinLargeSizeMB    uint64   `yaml:"min_large_size_mb"`
	ProjectRecentDays int      `yaml:"project_recent_days"`
	DownloadAgeDays   int      `yaml:"download_age_days"`
	ExcludedPaths     []string `yaml:"excluded_paths"`
	CachePaths        []string `yaml:"cache_paths"`
	BasePath          string   `yaml:"base_path,omitempty"`
	DuplicateWorkers  int      `yaml:"duplicate_workers"`
	Logging           Logging  `yaml:"logging"`
	Watch             Watch    `yaml:"watch"`
}

// Logging controls the structured logger
type Logging struct {
	Format  string `yaml:"format"` // "text" or "json"
	Verbose bool   `yaml:"verbose"`
}

// Watch configures the background scan scheduler
type Watch struct {
	Schedule   string   `yaml:"schedule"` // Cron expression or descriptor
	Categories []string `yaml:"categories"`
}

// Load loads configuration from a file
func Load(configPath string) (*Config, error) {
	// If config doesn't exist, return default config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return GetDefault(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Unset keys keep their defaults
	config := GetDefault()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Save saves configuration to a file
func Save(config *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.MinAgeDays < 0 {
		return fmt.Errorf("min_age_days must be >= 0")
	}
	if c.ProjectRecentDays < 0 {
		return fmt.Errorf("project_recent_days must be >= 0")
	}
	if c.DownloadAgeDays < 0 {
		return fmt.Errorf("download_age_days must be >= 0")
	}
	if c.MinLargeSizeMB == 0 {
		return fmt.Errorf("min_large_size_mb must be > 0")
	}
	if c.DuplicateWorkers < 0 {
		return fmt.Errorf("duplicate_workers must be >= 0")
	}

	for _, pattern := range c.ExcludedPaths {
		if strings.TrimSpace(pattern) == "" {
			return fmt.Errorf("excluded path pattern must not be empty")
		}
	}

	for _, path := range c.CachePaths {
		if !filepath.IsAbs(path) && !strings.HasPrefix(path, "~") {
			return fmt.Errorf("cache path must be absolute: %s", path)
		}
	}

	if c.BasePath != "" && !filepath.IsAbs(c.BasePath) && !strings.HasPrefix(c.BasePath, "~") {
		return fmt.Errorf("base path must be absolute: %s", c.BasePath)
	}

	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q (want text or json)", c.Logging.Format)
	}

	return nil
}

// IsExcluded reports whether path matches any excluded_paths pattern.
// A pattern with a single '*' matches on prefix and suffix; anything else
// is a plain substring match.
func (c *Config) IsExcluded(path string) bool {
	for _, pattern := range c.ExcludedPaths {
		if matchExclude(pattern, path) {
			return true
		}
	}
	return false
}

func matchExclude(pattern, path string) bool {
	if strings.Contains(pattern, "*") {
		parts := strings.Split(pattern, "*")
		if len(parts) == 2 {
			return strings.HasPrefix(path, parts[0]) && strings.HasSuffix(path, parts[1])
		}
	}
	return strings.Contains(path, pattern)
}

// ResolveBasePath returns the scan root, defaulting to homeDir.
func (c *Config) ResolveBasePath(homeDir string) string {
	if c.BasePath == "" {
		return homeDir
	}
	return ExpandHome(c.BasePath, homeDir)
}

// ResolveCachePaths returns CachePaths with "~" expanded.
func (c *Config) ResolveCachePaths(homeDir string) []string {
	paths := make([]string, 0, len(c.CachePaths))
	for _, p := range c.CachePaths {
		paths = append(paths, ExpandHome(p, homeDir))
	}
	return paths
}

// ExpandHome replaces a leading "~" with homeDir.
func ExpandHome(path, homeDir string) string {
	if path == "~" {
		return homeDir
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir, path[2:])
	}
	return path
}

// Clone returns a deep copy so per-request overrides never leak back.
func (c *Config) Clone() *Config {
	clone := *c
	clone.ExcludedPaths = append([]string(nil), c.ExcludedPaths...)
	clone.CachePaths = append([]string(nil), c.CachePaths...)
	clone.Watch.Categories = append([]string(nil), c.Watch.Categories...)
	return &clone
}

// GetConfigPath returns the default config path
func GetConfigPath() (string, error) {
	return xdg.ConfigFile(filepath.Join("duster", "config.yaml"))
}

// EnsureConfigExists creates a default config file if it doesn't exist
func EnsureConfigExists() (string, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := Save(GetDefault(), configPath); err != nil {
			return "", err
		}
	}

	return configPath, nil
}
