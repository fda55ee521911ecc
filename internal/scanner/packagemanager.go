package scanner

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// knownLocation is a well-known tool cache, relative to the home directory
type knownLocation struct {
	rel         string
	description string
}

// Application and package manager caches with fixed locations. Entries for
// other platforms simply do not exist on disk and are skipped.
var knownCaches = []knownLocation{
	// Package managers
	{"Library/Caches/Homebrew", "Homebrew downloads cache"},
	{".npm/_cacache", "npm cache"},
	{".yarn/cache", "Yarn cache"},
	{".pnpm-store", "pnpm cache"},
	{".cargo/registry/cache", "Cargo registry cache"},
	{".gradle/caches", "Gradle cache"},
	{".m2/repository", "Maven cache"},
	{".nuget/packages", "NuGet cache"},
	{".cache/pip", "pip cache"},
	{".cache/go-build", "Go build cache"},

	// IDEs
	{"Library/Caches/com.apple.dt.Xcode", "Xcode cache"},
	{"Library/Caches/JetBrains", "JetBrains IDEs cache"},
	{"Library/Caches/com.microsoft.VSCode", "VS Code cache"},
	{".vscode-server", "VS Code Server"},

	// Browsers
	{"Library/Caches/com.google.Chrome", "Chrome browser cache"},
	{"Library/Caches/com.brave.Browser", "Brave browser cache"},
	{"Library/Caches/org.mozilla.firefox", "Firefox browser cache"},
	{"Library/Caches/com.apple.Safari", "Safari browser cache"},

	// Apps
	{"Library/Caches/com.spotify.client", "Spotify cache"},
	{"Library/Caches/com.docker.docker", "Docker cache"},
	{"Library/Caches/Slack", "Slack cache"},
}

// Toolchain caches shared by every project on the machine
var globalCaches = []knownLocation{
	{".cargo/registry/cache", "Cargo registry cache"},
	{".cargo/git/checkouts", "Cargo git checkouts"},
	{".rustup/tmp", "Rustup temp files"},
	{".npm/_cacache", "npm cache"},
	{".yarn/cache", "Yarn cache"},
	{".pnpm-store", "pnpm store"},
	{".gradle/caches", "Gradle caches"},
	{".m2/repository", "Maven repository"},
	{".cache/pip", "pip cache"},
	{".cache/go-build", "Go build cache"},
}

const knownLocationMinSize = 10 * MiB

// KnownCacheScanner reports well-known application caches of at least 10 MiB
type KnownCacheScanner struct{}

func (KnownCacheScanner) Name() string { return "Known Cache Scanner" }

func (KnownCacheScanner) Scan(ctx context.Context, env *Env) ([]CleanableFile, error) {
	return scanKnownLocations(ctx, env, knownCaches, Cache, LastAccessedOrNow)
}

// GlobalCacheScanner reports toolchain caches of at least 10 MiB as build artifacts
type GlobalCacheScanner struct{}

func (GlobalCacheScanner) Name() string { return "Global Cache Scanner" }

func (GlobalCacheScanner) Scan(ctx context.Context, env *Env) ([]CleanableFile, error) {
	return scanKnownLocations(ctx, env, globalCaches, BuildArtifact, lastModifiedOrNow)
}

func scanKnownLocations(ctx context.Context, env *Env, locations []knownLocation, category Category, stamp func(string) time.Time) ([]CleanableFile, error) {
	var files []CleanableFile

	for _, loc := range locations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := filepath.Join(env.Platform.HomeDir, filepath.FromSlash(loc.rel))
		info, err := os.Lstat(path)
		if err != nil || info.Mode()&os.ModeSymlink != 0 {
			continue
		}
		if env.excluded(path) {
			continue
		}

		size := DirSize(path)
		if size < knownLocationMinSize {
			continue
		}

		files = append(files, CleanableFile{
			Path:         path,
			Size:         size,
			Category:     category,
			LastAccessed: stamp(path),
			Reason:       loc.description,
			IsDirectory:  info.IsDir(),
		})
	}

	sortBySizeDesc(files)
	return files, nil
}

func lastModifiedOrNow(path string) time.Time {
	if t, ok := LastModified(path); ok {
		return t
	}
	return time.Now()
}
