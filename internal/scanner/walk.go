package scanner

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// visitFunc is called for every entry below the walk root. depth is 1 for
// direct children of the root. Returning filepath.SkipDir on a directory
// prunes it.
type visitFunc func(path string, d fs.DirEntry, depth int) error

type walkOptions struct {
	// maxDepth limits how deep entries are visited; 0 means unlimited
	maxDepth int
	// pruneDir, when it returns true for a directory below the root, skips
	// the directory and everything in it without visiting it
	pruneDir func(path string, d fs.DirEntry) bool
}

// walkTree walks root without following symlinks. Unreadable entries are
// skipped silently and a missing root yields nothing. The walk stops early
// only when ctx is cancelled.
func walkTree(ctx context.Context, root string, opts walkOptions, visit visitFunc) error {
	root = filepath.Clean(root)
	info, err := os.Lstat(root)
	if err != nil {
		return nil
	}

	// A symlinked root such as macOS /tmp is walked through a trailing
	// separator so reported paths keep the name the caller used.
	walkRoot := root
	if info.Mode()&fs.ModeSymlink != 0 {
		walkRoot = root + string(filepath.Separator)
	}

	return filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil || path == walkRoot {
			return nil
		}

		depth := entryDepth(root, path)
		if d.IsDir() && opts.pruneDir != nil && opts.pruneDir(path, d) {
			return filepath.SkipDir
		}

		if err := visit(path, d, depth); err != nil {
			return err
		}

		if d.IsDir() && opts.maxDepth > 0 && depth >= opts.maxDepth {
			return filepath.SkipDir
		}
		return nil
	})
}

func entryDepth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

func isSymlink(d fs.DirEntry) bool {
	return d.Type()&fs.ModeSymlink != 0
}

// entrySize returns the recursive size of a directory entry or the file size otherwise
func entrySize(path string, d fs.DirEntry) int64 {
	if d.IsDir() {
		return DirSize(path)
	}
	info, err := d.Info()
	if err != nil {
		return 0
	}
	return info.Size()
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// sortBySizeDesc orders items largest first, breaking ties by path
func sortBySizeDesc(files []CleanableFile) {
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].Size != files[j].Size {
			return files[i].Size > files[j].Size
		}
		return files[i].Path < files[j].Path
	})
}
