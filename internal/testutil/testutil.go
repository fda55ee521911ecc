// Package testutil provides test helpers and fixtures for duster tests.
// All file operations use t.TempDir() for safe, isolated testing.
package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/fenilsonani/duster/internal/config"
	"github.com/fenilsonani/duster/internal/platform"
)

// Day is one day, for file age arguments
const Day = 24 * time.Hour

// MiB is one mebibyte
const MiB = 1024 * 1024

// TestFixture holds paths to a fake home directory and temp root
type TestFixture struct {
	T       testing.TB
	RootDir string // Root temp directory (auto-cleaned)

	HomeDir      string
	TmpDir       string
	CacheDir     string
	TrashDir     string
	DownloadsDir string
	DocumentsDir string
}

// NewFixture creates a new test fixture with a home layout under a temp dir
func NewFixture(t testing.TB) *TestFixture {
	t.Helper()

	root := t.TempDir()
	home := filepath.Join(root, "home")

	f := &TestFixture{
		T:            t,
		RootDir:      root,
		HomeDir:      home,
		TmpDir:       filepath.Join(root, "tmp"),
		CacheDir:     filepath.Join(home, ".cache"),
		TrashDir:     filepath.Join(home, ".local", "share", "Trash", "files"),
		DownloadsDir: filepath.Join(home, "Downloads"),
		DocumentsDir: filepath.Join(home, "Documents"),
	}

	dirs := []string{
		f.HomeDir,
		f.TmpDir,
		f.CacheDir,
		f.TrashDir,
		f.DownloadsDir,
		f.DocumentsDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create directory %s: %v", dir, err)
		}
	}

	return f
}

// PlatformInfo returns Linux-style platform roots inside the fixture
func (f *TestFixture) PlatformInfo() *platform.Info {
	info := platform.NewInfo(platform.Linux, f.HomeDir)
	info.TempRoots = []string{f.TmpDir}
	return info
}

// Config returns the default configuration
func (f *TestFixture) Config() *config.Config {
	return config.GetDefault()
}

// =============================================================================
// File Creation Helpers
// =============================================================================

// CreateFile creates a file with specified content and returns its path.
// relPath is relative to RootDir.
func (f *TestFixture) CreateFile(relPath string, content []byte) string {
	f.T.Helper()

	fullPath := f.Path(relPath)
	dir := filepath.Dir(fullPath)

	if err := os.MkdirAll(dir, 0755); err != nil {
		f.T.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		f.T.Fatalf("failed to create file %s: %v", fullPath, err)
	}

	return fullPath
}

// CreateFileWithAge creates a file and sets both its access and
// modification time to age in the past
func (f *TestFixture) CreateFileWithAge(relPath string, content []byte, age time.Duration) string {
	f.T.Helper()

	fullPath := f.CreateFile(relPath, content)
	f.SetAge(fullPath, age)
	return fullPath
}

// CreateSizedFile creates a zero-filled file of size bytes aged by age
func (f *TestFixture) CreateSizedFile(relPath string, size int, age time.Duration) string {
	f.T.Helper()
	return f.CreateFileWithAge(relPath, make([]byte, size), age)
}

// CreatePatternFile creates a file of size bytes filled with b, so files
// with different b differ in content but not in size
func (f *TestFixture) CreatePatternFile(relPath string, size int, b byte, age time.Duration) string {
	f.T.Helper()
	content := make([]byte, size)
	for i := range content {
		content[i] = b
	}
	return f.CreateFileWithAge(relPath, content, age)
}

// CreateReadOnlyFile creates a file with no write permission
func (f *TestFixture) CreateReadOnlyFile(relPath string, content []byte, age time.Duration) string {
	f.T.Helper()

	fullPath := f.CreateFile(relPath, content)
	if err := os.Chmod(fullPath, 0444); err != nil {
		f.T.Fatalf("failed to chmod %s: %v", fullPath, err)
	}
	f.SetAge(fullPath, age)
	return fullPath
}

// SetAge sets the access and modification time of path to age in the past
func (f *TestFixture) SetAge(path string, age time.Duration) {
	f.T.Helper()
	f.SetTimes(path, time.Now().Add(-age), time.Now().Add(-age))
}

// SetTimes sets the access and modification time of path
func (f *TestFixture) SetTimes(path string, atime, mtime time.Time) {
	f.T.Helper()

	if err := os.Chtimes(path, atime, mtime); err != nil {
		f.T.Fatalf("failed to set file time for %s: %v", path, err)
	}
}

// =============================================================================
// Directory Helpers
// =============================================================================

// CreateDir creates a directory and returns its path
func (f *TestFixture) CreateDir(relPath string) string {
	f.T.Helper()

	fullPath := f.Path(relPath)
	if err := os.MkdirAll(fullPath, 0755); err != nil {
		f.T.Fatalf("failed to create directory %s: %v", fullPath, err)
	}
	return fullPath
}

// CreateSymlink creates linkPath pointing at target
func (f *TestFixture) CreateSymlink(target, linkPath string) string {
	f.T.Helper()

	fullLink := f.Path(linkPath)
	if err := os.MkdirAll(filepath.Dir(fullLink), 0755); err != nil {
		f.T.Fatalf("failed to create directory for symlink: %v", err)
	}
	if err := os.Symlink(target, fullLink); err != nil {
		f.T.Fatalf("failed to create symlink %s -> %s: %v", fullLink, target, err)
	}
	return fullLink
}

// =============================================================================
// Project Helpers
// =============================================================================

// CreateProject creates a project directory with a marker file and an
// artifact directory holding size bytes. Marker and artifact are aged by
// age; an empty marker is skipped.
func (f *TestFixture) CreateProject(relDir, marker, artifact string, size int, age time.Duration) string {
	f.T.Helper()

	if marker != "" {
		f.CreateFileWithAge(filepath.Join(relDir, marker), []byte("{}"), age)
	}
	f.CreateSizedFile(filepath.Join(relDir, artifact, "payload.bin"), size, age)
	return f.Path(filepath.Join(relDir, artifact))
}

// =============================================================================
// Path Helpers
// =============================================================================

// Path returns the absolute path for relPath inside the fixture.
// Absolute paths are returned unchanged.
func (f *TestFixture) Path(relPath string) string {
	if filepath.IsAbs(relPath) {
		return relPath
	}
	return filepath.Join(f.RootDir, relPath)
}

// HomePath returns the absolute path for relPath inside the fake home
func (f *TestFixture) HomePath(relPath string) string {
	return filepath.Join(f.HomeDir, relPath)
}

// =============================================================================
// Assertions
// =============================================================================

// FileExists reports whether path exists without following symlinks
func (f *TestFixture) FileExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// AssertFileExists fails the test if path does not exist
func (f *TestFixture) AssertFileExists(path string) {
	f.T.Helper()
	if !f.FileExists(path) {
		f.T.Errorf("expected file to exist: %s", path)
	}
}

// AssertFileNotExists fails the test if path exists
func (f *TestFixture) AssertFileNotExists(path string) {
	f.T.Helper()
	if f.FileExists(path) {
		f.T.Errorf("expected file to not exist: %s", path)
	}
}

// =============================================================================
// Environment Helpers
// =============================================================================

// IsRoot reports whether the tests run as root
func IsRoot() bool {
	return os.Geteuid() == 0
}

// SkipIfRoot skips tests that depend on permission checks
func SkipIfRoot(t *testing.T) {
	t.Helper()
	if IsRoot() {
		t.Skip("skipping test when running as root")
	}
}

// SkipIfWindows skips tests that depend on POSIX file semantics
func SkipIfWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on windows")
	}
}

// DangerousPathPatterns returns paths that must never be deleted
func DangerousPathPatterns() []string {
	return []string{
		"/",
		"/etc",
		"/etc/passwd",
		"/usr/bin",
		"/bin/sh",
		"/var/log",
		"/tmp/../etc/passwd",
		"relative/path",
	}
}

// ContainsString reports whether s contains substr
func ContainsString(s, substr string) bool {
	return strings.Contains(s, substr)
}
