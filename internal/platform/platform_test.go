package platform

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"testing"
)

func TestNewInfo(t *testing.T) {
	tests := []struct {
		name     string
		os       Platform
		trash    string
		cacheDir string
	}{
		{"linux", Linux, "/home/u/.local/share/Trash/files", "/home/u/.cache"},
		{"macos", MacOS, "/home/u/.Trash", "/home/u/Library/Caches"},
		{"unknown uses linux roots", Unknown, "/home/u/.local/share/Trash/files", "/home/u/.cache"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := NewInfo(tt.os, "/home/u")

			if info.OS != tt.os || info.HomeDir != "/home/u" {
				t.Errorf("OS = %s, HomeDir = %s", info.OS, info.HomeDir)
			}
			if info.TrashDir != tt.trash {
				t.Errorf("TrashDir = %q, want %q", info.TrashDir, tt.trash)
			}
			if !slices.Contains(info.CacheRoots, tt.cacheDir) {
				t.Errorf("CacheRoots = %v, want %s", info.CacheRoots, tt.cacheDir)
			}
			if info.DownloadsDir != filepath.Join("/home/u", "Downloads") {
				t.Errorf("DownloadsDir = %q", info.DownloadsDir)
			}
			if filepath.Base(info.AppCacheDir) != AppName || filepath.Base(info.AppDataDir) != AppName {
				t.Errorf("app dirs = %q, %q", info.AppCacheDir, info.AppDataDir)
			}
			if !slices.Contains(info.TempRoots, "/tmp") {
				t.Errorf("TempRoots = %v", info.TempRoots)
			}
		})
	}
}

func TestAddTempRoot(t *testing.T) {
	info := NewInfo(Linux, "/home/u")
	n := len(info.TempRoots)

	if !info.AddTempRoot("/tmp/") || len(info.TempRoots) != n {
		t.Errorf("duplicate root added: %v", info.TempRoots)
	}

	if !info.AddTempRoot("/scratch/tmp") || len(info.TempRoots) != n+1 || info.TempRoots[n] != "/scratch/tmp" {
		t.Errorf("TempRoots = %v", info.TempRoots)
	}
}

func TestAddTempRootRefusesBroadRoots(t *testing.T) {
	tests := []string{"/", "/home", "/home/u", "/home/u/", "relative/tmp", "/home/u/.."}

	for _, dir := range tests {
		t.Run(dir, func(t *testing.T) {
			info := NewInfo(Linux, "/home/u")
			before := slices.Clone(info.TempRoots)

			if info.AddTempRoot(dir) {
				t.Errorf("AddTempRoot(%q) accepted", dir)
			}
			if !slices.Equal(info.TempRoots, before) {
				t.Errorf("TempRoots = %v, want %v", info.TempRoots, before)
			}
		})
	}

	info := NewInfo(Linux, "/home/u")
	if !info.AddTempRoot("/home/u/tmp") || !info.AddTempRoot("/home/user2") {
		t.Error("directories below or beside home are usable temp roots")
	}
}

func TestGetInfoIgnoresRootTMPDIR(t *testing.T) {
	t.Setenv("TMPDIR", "/")
	info, err := GetInfo()
	if err != nil {
		t.Skipf("no home directory in this environment: %v", err)
	}
	if slices.Contains(info.TempRoots, "/") {
		t.Errorf("TempRoots = %v, / must never be a temp root", info.TempRoots)
	}
}

func TestPlatformErrorIs(t *testing.T) {
	wrapped := &PlatformError{Message: ErrNoHomeDir.Message, Err: errors.New("no $HOME")}
	if !errors.Is(wrapped, ErrNoHomeDir) {
		t.Error("a copy of the sentinel should match it")
	}
	if !errors.Is(fmt.Errorf("startup: %w", wrapped), ErrNoHomeDir) {
		t.Error("matching should survive wrapping")
	}
	if errors.Is(&PlatformError{Message: "other"}, ErrNoHomeDir) {
		t.Error("different messages must not match")
	}
	if wrapped.Error() != "cannot determine home directory: no $HOME" {
		t.Errorf("Error() = %q", wrapped.Error())
	}
}

func TestGetInfo(t *testing.T) {
	info, err := GetInfo()
	if err != nil {
		t.Skipf("no home directory in this environment: %v", err)
	}
	if info.HomeDir == "" || info.AppDataDir == "" {
		t.Errorf("GetInfo() = %+v", info)
	}
}
