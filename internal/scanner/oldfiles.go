package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"sort"
	"strings"
)

const (
	oldFilesMaxDepth = 5
	oldFilesMinSize  = 10 * KiB
	maxOldFiles      = 200
)

var oldFileSkipDirs = []string{
	"node_modules", "target", "Library", "Applications", ".Trash",
	"Volumes", "System", "bin", "lib", "include", "share",
}

var systemExtensions = []string{"plist", "dylib", "so", "dll", "sys", "kext", "bundle"}

// OldFilesScanner reports personal files that have not been read for
// min_age_days, oldest first.
type OldFilesScanner struct{}

func (OldFilesScanner) Name() string { return "Old Files Scanner" }

func (OldFilesScanner) Scan(ctx context.Context, env *Env) ([]CleanableFile, error) {
	var files []CleanableFile

	opts := walkOptions{
		maxDepth: oldFilesMaxDepth,
		pruneDir: func(_ string, d fs.DirEntry) bool {
			return isHidden(d.Name()) || slices.Contains(oldFileSkipDirs, d.Name())
		},
	}

	for _, root := range env.Platform.UserDataDirs {
		err := walkTree(ctx, root, opts, func(path string, d fs.DirEntry, _ int) error {
			if !d.Type().IsRegular() || isHidden(d.Name()) || env.excluded(path) {
				return nil
			}

			ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
			if slices.Contains(systemExtensions, ext) {
				return nil
			}
			if WasAccessedWithinDays(path, env.Config.MinAgeDays) {
				return nil
			}

			info, err := d.Info()
			if err != nil || info.Size() < oldFilesMinSize {
				return nil
			}

			lastAccessed := accessTimeOrNow(info)
			files = append(files, CleanableFile{
				Path:         path,
				Size:         info.Size(),
				Category:     OldFile,
				LastAccessed: lastAccessed,
				Reason:       fmt.Sprintf("Not accessed in %d days: %s", daysSince(lastAccessed), d.Name()),
			})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].LastAccessed.Equal(files[j].LastAccessed) {
			return files[i].LastAccessed.Before(files[j].LastAccessed)
		}
		return files[i].Size > files[j].Size
	})
	if len(files) > maxOldFiles {
		files = files[:maxOldFiles]
	}
	return files, nil
}
