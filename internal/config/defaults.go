package config

// Default thresholds
const (
	DefaultMinAgeDays        = 30
	DefaultMinLargeSizeMB    = 100
	DefaultProjectRecentDays = 14
	DefaultDownloadAgeDays   = 30
	DefaultWatchSchedule     = "@every 30m"
)

// GetDefault returns the default configuration
func GetDefault() *Config {
	return &Config{
		MinAgeDays:        DefaultMinAgeDays,
		MinLargeSizeMB:    DefaultMinLargeSizeMB,
		ProjectRecentDays: DefaultProjectRecentDays,
		DownloadAgeDays:   DefaultDownloadAgeDays,
		ExcludedPaths:     []string{},
		CachePaths:        []string{},
		DuplicateWorkers:  0, // runtime.NumCPU()
		Logging: Logging{
			Format: "text",
		},
		Watch: Watch{
			Schedule:   DefaultWatchSchedule,
			Categories: []string{"cache", "trash", "temp", "build"},
		},
	}
}
