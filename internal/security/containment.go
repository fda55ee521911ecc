// Package security decides which paths the cleaner may touch.
package security

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// ErrRefused is wrapped by every containment refusal
var ErrRefused = errors.New("refusing to delete")

// DefaultTempRoots are the system temp trees deletions may reach outside home
var DefaultTempRoots = []string{"/tmp", "/var/tmp", "/var/folders"}

// Direct children of home that may be removed as a whole
var homeChildAllowList = []string{".Trash", ".cache"}

// Containment is the allow-list every deletion passes through. A path is
// allowed when it sits below the home directory (but is not a direct child
// other than .Trash or .cache), or when it sits below a temp root.
type Containment struct {
	home      string
	tempRoots []string
}

// NewContainment returns the policy for home with the default temp roots
func NewContainment(home string) *Containment {
	return &Containment{
		home:      filepath.Clean(home),
		tempRoots: DefaultTempRoots,
	}
}

// WithTempRoots returns a copy of c using roots instead of the defaults
func (c *Containment) WithTempRoots(roots ...string) *Containment {
	clean := make([]string, 0, len(roots))
	for _, r := range roots {
		clean = append(clean, filepath.Clean(r))
	}
	return &Containment{home: c.home, tempRoots: clean}
}

// Check returns nil when path may be deleted, or an error wrapping ErrRefused
func (c *Containment) Check(path string) error {
	if path == "" || !filepath.IsAbs(path) {
		return refuse("path must be absolute")
	}

	// Anything that cleans to something else may hide a traversal
	if filepath.Clean(path) != path {
		return refuse("path contains suspicious elements")
	}

	if strings.ContainsAny(path, "\x00\n\r") {
		return refuse("path contains dangerous characters")
	}

	if c.home != "" && c.home != string(filepath.Separator) {
		if path == c.home {
			return refuse("path is the home directory")
		}
		if rel, ok := below(c.home, path); ok {
			if !strings.Contains(rel, string(filepath.Separator)) && !slices.Contains(homeChildAllowList, rel) {
				return refuse("top-level home directory")
			}
			return nil
		}
	}

	for _, root := range c.tempRoots {
		if path == root {
			return refuse("path is a temp root")
		}
		if _, ok := below(root, path); ok {
			return nil
		}
	}

	return refuse("outside home and temp directories")
}

// IsAllowed reports whether Check accepts path
func (c *Containment) IsAllowed(path string) bool {
	return c.Check(path) == nil
}

// below reports whether path is strictly inside root, comparing whole
// components, and returns the relative remainder
func below(root, path string) (string, bool) {
	prefix := root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	if !strings.HasPrefix(path, prefix) {
		return "", false
	}
	rel := strings.TrimPrefix(path, prefix)
	return rel, rel != ""
}

func refuse(reason string) error {
	return fmt.Errorf("%w: %s", ErrRefused, reason)
}
