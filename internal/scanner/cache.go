package scanner

import (
	"context"
	"os"
	"path/filepath"
)

// CacheScanner reports each child of the platform cache roots and of the
// configured cache_paths that holds at least 1 MiB.
type CacheScanner struct{}

func (CacheScanner) Name() string { return "Cache Scanner" }

func (CacheScanner) Scan(ctx context.Context, env *Env) ([]CleanableFile, error) {
	roots := append([]string{}, env.Platform.CacheRoots...)
	roots = append(roots, env.Config.ResolveCachePaths(env.Platform.HomeDir)...)

	var files []CleanableFile
	seen := make(map[string]bool)

	for _, root := range roots {
		root = filepath.Clean(root)
		if seen[root] {
			continue
		}
		seen[root] = true

		entries, err := os.ReadDir(root)
		if err != nil {
			continue
		}

		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			path := filepath.Join(root, entry.Name())
			if isSymlink(entry) || env.excluded(path) || path == env.Platform.AppCacheDir {
				continue
			}

			size := entrySize(path, entry)
			if size < MiB {
				continue
			}

			files = append(files, CleanableFile{
				Path:         path,
				Size:         size,
				Category:     Cache,
				LastAccessed: LastAccessedOrNow(path),
				Reason:       "Cache directory: " + entry.Name(),
				IsDirectory:  entry.IsDir(),
			})
		}
	}

	sortBySizeDesc(files)
	return files, nil
}
