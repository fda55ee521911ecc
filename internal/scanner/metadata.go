package scanner

import (
	"io/fs"
	"os"
	"sync/atomic"
	"time"

	"github.com/charlievieth/fastwalk"
)

const (
	KiB int64 = 1024
	MiB       = 1024 * KiB
)

const day = 24 * time.Hour

// DirSize returns the apparent size of path: the file size for a regular
// file, or the sum of regular files beneath a directory. Symlinks are not
// followed and unreadable entries count as zero.
func DirSize(path string) int64 {
	info, err := os.Lstat(path)
	if err != nil {
		return 0
	}
	if info.Mode().IsRegular() {
		return info.Size()
	}
	if !info.IsDir() {
		return 0
	}

	var total atomic.Int64
	conf := fastwalk.Config{Follow: false}
	_ = fastwalk.Walk(&conf, path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || !d.Type().IsRegular() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return nil
		}
		total.Add(fi.Size())
		return nil
	})
	return total.Load()
}

// LastModified returns the modification time of path
func LastModified(path string) (time.Time, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// LastAccessed returns the access time of path. ok is false when the
// platform or filesystem does not expose one.
func LastAccessed(path string) (time.Time, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, false
	}
	return accessTime(info)
}

// LastAccessedOrNow falls back to the current time when no access time is available
func LastAccessedOrNow(path string) time.Time {
	if t, ok := LastAccessed(path); ok {
		return t
	}
	return time.Now()
}

func accessTimeOrNow(info fs.FileInfo) time.Time {
	if t, ok := accessTime(info); ok {
		return t
	}
	return time.Now()
}

// WasAccessedWithinDays reports whether path was read within the last
// days days. Unreadable metadata counts as recent use.
func WasAccessedWithinDays(path string, days int) bool {
	t, ok := LastAccessed(path)
	if !ok {
		return true
	}
	return t.After(time.Now().Add(-time.Duration(days) * day))
}

// WasModifiedWithinDays reports whether path was written within the last
// days days. Unreadable metadata counts as recent use.
func WasModifiedWithinDays(path string, days int) bool {
	t, ok := LastModified(path)
	if !ok {
		return true
	}
	return t.After(time.Now().Add(-time.Duration(days) * day))
}

// daysSince returns whole days elapsed since t
func daysSince(t time.Time) int {
	d := time.Since(t)
	if d < 0 {
		return 0
	}
	return int(d / day)
}
