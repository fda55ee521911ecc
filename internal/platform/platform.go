package platform

import (
	"errors"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/adrg/xdg"
)

// Platform represents the operating system platform
type Platform string

const (
	MacOS   Platform = "darwin"
	Linux   Platform = "linux"
	Unknown Platform = "unknown"
)

// AppName names the per-user cache and config directories.
const AppName = "duster"

// Info holds every OS-specific root a scan needs. It is resolved once per
// invocation and handed to scanners, which never consult the environment.
type Info struct {
	OS       Platform
	HomeDir  string
	Username string

	// CacheRoots are the user-level cache directories whose children are
	// reported individually.
	CacheRoots []string
	// TrashDir is the directory whose immediate children are trashed items.
	TrashDir string
	// TempRoots are scanned for stale temp files.
	TempRoots []string
	// DownloadsDir is the user's downloads folder.
	DownloadsDir string
	// UserDataDirs are walked for files that have not been opened in a while.
	UserDataDirs []string
	// AppCacheDir is where duster keeps its own state.
	AppCacheDir string
	// AppDataDir holds long-lived state such as the cleanup history.
	AppDataDir string
}

// Detect returns the current platform
func Detect() Platform {
	switch runtime.GOOS {
	case "darwin":
		return MacOS
	case "linux":
		return Linux
	default:
		return Unknown
	}
}

// GetInfo resolves the platform roots for the current user.
func GetInfo() (*Info, error) {
	homeDir, username, err := resolveUser()
	if err != nil {
		return nil, err
	}

	info := NewInfo(Detect(), homeDir)
	info.Username = username

	if dl := xdg.UserDirs.Download; dl != "" {
		info.DownloadsDir = dl
	}
	if xdg.CacheHome != "" {
		info.AppCacheDir = filepath.Join(xdg.CacheHome, AppName)
	}
	if xdg.DataHome != "" {
		info.AppDataDir = filepath.Join(xdg.DataHome, AppName)
	}
	// A TMPDIR of /, home or above home is ignored
	if tmp := os.Getenv("TMPDIR"); tmp != "" {
		info.AddTempRoot(tmp)
	}

	return info, nil
}

// NewInfo builds the roots for a given OS and home directory without
// touching the environment. Tests use it to point scanners at a fixture.
func NewInfo(p Platform, homeDir string) *Info {
	var info *Info
	switch p {
	case MacOS:
		info = getMacOSInfo(homeDir)
	default:
		info = getLinuxInfo(homeDir)
	}
	info.OS = p
	info.HomeDir = homeDir
	info.DownloadsDir = filepath.Join(homeDir, "Downloads")
	info.UserDataDirs = []string{
		filepath.Join(homeDir, "Documents"),
		filepath.Join(homeDir, "Desktop"),
		filepath.Join(homeDir, "Pictures"),
		filepath.Join(homeDir, "Movies"),
		filepath.Join(homeDir, "Music"),
	}
	info.AppCacheDir = filepath.Join(homeDir, ".cache", AppName)
	info.AppDataDir = filepath.Join(homeDir, ".local", "share", AppName)
	return info
}

// AddTempRoot appends dir to TempRoots unless it is already listed. It
// refuses relative paths, the filesystem root, home and any ancestor of
// home, and reports whether dir was accepted.
func (i *Info) AddTempRoot(dir string) bool {
	if !filepath.IsAbs(dir) {
		return false
	}
	clean := filepath.Clean(dir)
	if clean == string(filepath.Separator) {
		return false
	}
	if i.HomeDir != "" && isSameOrAncestor(clean, filepath.Clean(i.HomeDir)) {
		return false
	}

	for _, root := range i.TempRoots {
		if filepath.Clean(root) == clean {
			return true
		}
	}
	i.TempRoots = append(i.TempRoots, clean)
	return true
}

func isSameOrAncestor(dir, path string) bool {
	if dir == path {
		return true
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func resolveUser() (string, string, error) {
	home, homeErr := os.UserHomeDir()

	username := ""
	if u, err := user.Current(); err == nil {
		username = u.Username
		if home == "" {
			home = u.HomeDir
		}
	}

	if home == "" {
		if homeErr != nil {
			return "", "", &PlatformError{Message: ErrNoHomeDir.Message, Err: homeErr}
		}
		return "", "", ErrNoHomeDir
	}

	return home, username, nil
}

// Errors
var (
	ErrNoHomeDir = &PlatformError{Message: "cannot determine home directory"}
)

// PlatformError represents a platform-related error
type PlatformError struct {
	Message string
	Err     error
}

func (e *PlatformError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *PlatformError) Unwrap() error {
	return e.Err
}

// Is matches on Message so wrapped copies compare equal to the sentinels.
func (e *PlatformError) Is(target error) bool {
	var t *PlatformError
	if !errors.As(target, &t) {
		return false
	}
	return t.Message == e.Message
}
