package scanner

import (
	"context"
	"os"
	"path/filepath"
)

// TrashScanner reports every item in the platform trash directory
type TrashScanner struct{}

func (TrashScanner) Name() string { return "Trash Scanner" }

func (TrashScanner) Scan(ctx context.Context, env *Env) ([]CleanableFile, error) {
	if env.Platform.TrashDir == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(env.Platform.TrashDir)
	if err != nil {
		return nil, nil
	}

	var files []CleanableFile
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := filepath.Join(env.Platform.TrashDir, entry.Name())
		if env.excluded(path) {
			continue
		}

		files = append(files, CleanableFile{
			Path:         path,
			Size:         entrySize(path, entry),
			Category:     Trash,
			LastAccessed: LastAccessedOrNow(path),
			Reason:       "Trashed item: " + entry.Name(),
			IsDirectory:  entry.IsDir(),
		})
	}

	sortBySizeDesc(files)
	return files, nil
}
