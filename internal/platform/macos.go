package platform

import "path/filepath"

// getMacOSInfo returns the roots used on macOS
func getMacOSInfo(homeDir string) *Info {
	return &Info{
		CacheRoots: []string{
			filepath.Join(homeDir, "Library/Caches"),
			filepath.Join(homeDir, ".cache"),
		},
		TrashDir: filepath.Join(homeDir, ".Trash"),
		TempRoots: []string{
			"/tmp",
			"/var/tmp",
			filepath.Join(homeDir, "Library/Caches/TemporaryItems"),
		},
	}
}
