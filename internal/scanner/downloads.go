package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DownloadsScanner reports top-level entries of the downloads folder that
// have not been opened for download_age_days.
type DownloadsScanner struct{}

func (DownloadsScanner) Name() string { return "Downloads Scanner" }

func (DownloadsScanner) Scan(ctx context.Context, env *Env) ([]CleanableFile, error) {
	dir := env.Platform.DownloadsDir
	if dir == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil
	}

	var files []CleanableFile
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := entry.Name()
		path := filepath.Join(dir, name)
		if isHidden(name) || isSymlink(entry) || env.excluded(path) {
			continue
		}
		if WasAccessedWithinDays(path, env.Config.DownloadAgeDays) {
			continue
		}

		lastAccessed := LastAccessedOrNow(path)
		files = append(files, CleanableFile{
			Path:         path,
			Size:         entrySize(path, entry),
			Category:     Downloads,
			LastAccessed: lastAccessed,
			Reason:       fmt.Sprintf("Download not accessed in %d days: %s", daysSince(lastAccessed), name),
			IsDirectory:  entry.IsDir(),
		})
	}

	sortBySizeDesc(files)
	return files, nil
}
