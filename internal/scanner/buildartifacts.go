package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// artifactPattern is a directory name that holds regenerable output when
// its parent contains marker. An empty marker matches any parent.
type artifactPattern struct {
	dirName     string
	marker      string
	description string
}

var artifactPatterns = []artifactPattern{
	{"node_modules", "package.json", "Node.js dependencies"},
	{"target", "Cargo.toml", "Rust build artifacts"},
	{"__pycache__", "", "Python bytecode cache"},
	{".pytest_cache", "", "pytest cache"},
	{".gradle", "build.gradle", "Gradle cache"},
	{"build", "build.gradle", "Gradle build output"},
	{".next", "next.config.js", "Next.js build cache"},
	{".nuxt", "nuxt.config.js", "Nuxt.js build cache"},
	{"dist", "package.json", "Build distribution"},
	{"vendor", "composer.json", "PHP Composer dependencies"},
	{"Pods", "Podfile", "CocoaPods dependencies"},
	{".tox", "tox.ini", "tox virtual environments"},
	{"venv", "", "Python virtual environment"},
	{".venv", "", "Python virtual environment"},
}

// Hidden directories that are still walked because they are artifacts themselves
var scannedHiddenDirs = []string{".next", ".nuxt", ".gradle", ".tox", ".venv", ".pytest_cache"}

// Files whose recent modification marks a project as in use
var projectFiles = []string{
	"package.json",
	"package-lock.json",
	"yarn.lock",
	"pnpm-lock.yaml",
	"Cargo.toml",
	"Cargo.lock",
	"requirements.txt",
	"pyproject.toml",
	"build.gradle",
	"pom.xml",
	"go.mod",
	"composer.json",
	"Gemfile",
	"Podfile",
	".git/HEAD",
	".git/index",
}

var sourceExtensions = []string{"rs", "js", "ts", "tsx", "jsx", "py", "go", "java", "rb", "php"}

// BuildArtifactsScanner finds dependency and build output directories of
// projects that have not been touched for project_recent_days.
type BuildArtifactsScanner struct{}

func (BuildArtifactsScanner) Name() string { return "Build Artifacts Scanner" }

func (BuildArtifactsScanner) Scan(ctx context.Context, env *Env) ([]CleanableFile, error) {
	var files []CleanableFile
	recentDays := env.Config.ProjectRecentDays

	opts := walkOptions{
		pruneDir: func(_ string, d fs.DirEntry) bool {
			name := d.Name()
			return isHidden(name) && !slices.Contains(scannedHiddenDirs, name)
		},
	}

	err := walkTree(ctx, env.BasePath(), opts, func(path string, d fs.DirEntry, _ int) error {
		if !d.IsDir() {
			return nil
		}

		if pattern, ok := matchArtifact(path, d.Name()); ok {
			if item, ok := artifactItem(env, path, pattern, recentDays); ok {
				files = append(files, item)
				return filepath.SkipDir
			}
		}

		// Nothing inside node_modules is a project of its own
		if d.Name() == "node_modules" {
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortBySizeDesc(files)
	return files, nil
}

// matchArtifact returns the first pattern for name whose marker sits in the parent
func matchArtifact(path, name string) (artifactPattern, bool) {
	parent := filepath.Dir(path)
	for _, p := range artifactPatterns {
		if p.dirName != name {
			continue
		}
		if p.marker != "" && !exists(filepath.Join(parent, p.marker)) {
			continue
		}
		return p, true
	}
	return artifactPattern{}, false
}

func artifactItem(env *Env, path string, pattern artifactPattern, recentDays int) (CleanableFile, bool) {
	parent := filepath.Dir(path)
	if env.excluded(path) || isProjectRecentlyUsed(parent, recentDays) {
		return CleanableFile{}, false
	}

	size := DirSize(path)
	if size < MiB {
		return CleanableFile{}, false
	}

	return CleanableFile{
		Path:         path,
		Size:         size,
		Category:     BuildArtifact,
		LastAccessed: lastModifiedOrNow(path),
		Reason:       fmt.Sprintf("%s in project '%s'", pattern.description, filepath.Base(parent)),
		IsDirectory:  true,
	}, true
}

// isProjectRecentlyUsed checks the well-known project files and any source
// file directly in root for a modification within days.
func isProjectRecentlyUsed(root string, days int) bool {
	for _, name := range projectFiles {
		path := filepath.Join(root, filepath.FromSlash(name))
		if exists(path) && WasModifiedWithinDays(path, days) {
			return true
		}
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		ext := strings.TrimPrefix(filepath.Ext(entry.Name()), ".")
		if ext == "" || !slices.Contains(sourceExtensions, ext) {
			continue
		}
		if WasModifiedWithinDays(filepath.Join(root, entry.Name()), days) {
			return true
		}
	}
	return false
}
