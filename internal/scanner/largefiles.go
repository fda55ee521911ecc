package scanner

import (
	"context"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
)

const maxLargeFiles = 100

var largeFileSkipDirs = []string{
	"node_modules", "target", ".git", ".svn", ".hg",
	"Library", "Applications", ".Trash", "Volumes", "System",
}

// databaseProjectMarkers identify project directories whose local databases are left alone
var databaseProjectMarkers = []string{"package.json", "Cargo.toml", ".git"}

// LargeFilesScanner reports the biggest files under the base path that are
// at least min_large_size_mb.
type LargeFilesScanner struct{}

func (LargeFilesScanner) Name() string { return "Large Files Scanner" }

func (LargeFilesScanner) Scan(ctx context.Context, env *Env) ([]CleanableFile, error) {
	minSize := int64(env.Config.MinLargeSizeMB) * MiB
	var files []CleanableFile

	opts := walkOptions{
		pruneDir: func(_ string, d fs.DirEntry) bool {
			return slices.Contains(largeFileSkipDirs, d.Name())
		},
	}

	err := walkTree(ctx, env.BasePath(), opts, func(path string, d fs.DirEntry, _ int) error {
		if !d.Type().IsRegular() || isHidden(d.Name()) || env.excluded(path) {
			return nil
		}

		info, err := d.Info()
		if err != nil || info.Size() < minSize {
			return nil
		}

		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
		if isProjectDatabase(path, ext) {
			return nil
		}

		files = append(files, CleanableFile{
			Path:         path,
			Size:         info.Size(),
			Category:     LargeFile,
			LastAccessed: accessTimeOrNow(info),
			Reason:       fileTypeLabel(ext, info.Size()) + ": " + d.Name(),
			IsDirectory:  false,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortBySizeDesc(files)
	if len(files) > maxLargeFiles {
		files = files[:maxLargeFiles]
	}
	return files, nil
}

func isProjectDatabase(path, ext string) bool {
	switch ext {
	case "db", "sqlite", "sqlite3":
	default:
		return false
	}
	dir := filepath.Dir(path)
	for _, marker := range databaseProjectMarkers {
		if exists(filepath.Join(dir, marker)) {
			return true
		}
	}
	return false
}

// fileTypeLabel names a file by its lower-cased extension
func fileTypeLabel(ext string, size int64) string {
	switch ext {
	case "dmg":
		return "Disk image"
	case "iso":
		return "ISO image"
	case "zip", "tar", "gz", "bz2", "xz", "7z", "rar":
		return "Archive"
	case "pkg":
		return "Installer package"
	case "app":
		return "Application bundle"
	case "mov", "mp4", "avi", "mkv", "wmv":
		return "Video file"
	case "wav", "aiff", "flac":
		return "Audio file"
	case "psd", "ai", "sketch":
		return "Design file"
	case "vmdk", "vdi", "vhd":
		return "Virtual disk"
	case "log":
		return "Log file"
	case "csv", "json", "xml":
		if size > 100*MiB {
			return "Data file"
		}
	}
	return "Large file"
}
