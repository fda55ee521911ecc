package scanner

import (
	"context"
	"io/fs"
	"path/filepath"
)

const (
	tempMaxDepth   = 3
	tempRecentDays = 1
	tempMinSize    = KiB
)

// TempScanner reports stale entries under the temp roots. Files under 1 KiB,
// read-only entries and anything written in the last day are left alone.
// Only top-level directories are reported, with their recursive size.
type TempScanner struct{}

func (TempScanner) Name() string { return "Temp Scanner" }

func (TempScanner) Scan(ctx context.Context, env *Env) ([]CleanableFile, error) {
	var files []CleanableFile
	seen := make(map[string]bool)

	for _, root := range env.Platform.TempRoots {
		root = filepath.Clean(root)
		if seen[root] {
			continue
		}
		seen[root] = true

		err := walkTree(ctx, root, walkOptions{maxDepth: tempMaxDepth}, func(path string, d fs.DirEntry, depth int) error {
			if isSymlink(d) || env.excluded(path) {
				return nil
			}
			if WasModifiedWithinDays(path, tempRecentDays) {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				return nil
			}
			if info.Mode().Perm()&0o222 == 0 {
				return nil
			}

			if !d.IsDir() {
				if info.Size() < tempMinSize {
					return nil
				}
				files = append(files, tempItem(path, info.Size(), false))
				return nil
			}

			if depth > 1 {
				return nil
			}
			files = append(files, tempItem(path, DirSize(path), true))
			return filepath.SkipDir
		})
		if err != nil {
			return nil, err
		}
	}

	sortBySizeDesc(files)
	return files, nil
}

func tempItem(path string, size int64, isDir bool) CleanableFile {
	return CleanableFile{
		Path:         path,
		Size:         size,
		Category:     Temp,
		LastAccessed: LastAccessedOrNow(path),
		Reason:       "Temp file: " + filepath.Base(path),
		IsDirectory:  isDir,
	}
}

