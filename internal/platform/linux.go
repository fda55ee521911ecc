package platform

import "path/filepath"

// getLinuxInfo returns the XDG-style roots used on Linux
func getLinuxInfo(homeDir string) *Info {
	return &Info{
		CacheRoots: []string{
			filepath.Join(homeDir, ".cache"),
		},
		TrashDir: filepath.Join(homeDir, ".local/share/Trash/files"),
		TempRoots: []string{
			"/tmp",
			"/var/tmp",
		},
	}
}
