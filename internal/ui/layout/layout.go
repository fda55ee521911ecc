// Package layout holds sizing helpers shared by the interactive views.
package layout

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fenilsonani/duster/internal/ui/styles"
)

const (
	// MinTerminalWidth is the minimum recommended terminal width
	MinTerminalWidth = 80
	// MinTerminalHeight is the minimum recommended terminal height
	MinTerminalHeight = 24
)

// ShortenHome replaces a leading home directory with "~"
func ShortenHome(path, home string) string {
	if home == "" {
		return path
	}
	if path == home {
		return "~"
	}
	prefix := strings.TrimSuffix(home, string(filepath.Separator)) + string(filepath.Separator)
	if strings.HasPrefix(path, prefix) {
		return "~" + string(filepath.Separator) + path[len(prefix):]
	}
	return path
}

// TruncatePath shortens path to maxWidth, keeping the file name and eliding
// the middle of the directory
func TruncatePath(path string, maxWidth int) string {
	if len(path) <= maxWidth {
		return path
	}
	if maxWidth < 10 {
		return "..."
	}

	dir, file := filepath.Split(path)
	if len(file) > maxWidth-4 {
		return "..." + file[len(file)-(maxWidth-4):]
	}

	room := maxWidth - len(file) - 3
	dir = filepath.Clean(dir)
	if len(dir) <= room {
		return filepath.Join(dir, file)
	}
	if room < 10 {
		return ".../" + file
	}

	sep := string(filepath.Separator)
	parts := strings.Split(dir, sep)
	if len(parts) <= 2 {
		return "..." + dir[len(dir)-room:] + sep + file
	}

	first := parts[0]
	if first == "" {
		first = sep + parts[1]
	}
	last := parts[len(parts)-1]

	if len(first)+len(last)+5 <= room {
		return first + sep + "..." + sep + last + sep + file
	}
	return "..." + sep + last + sep + file
}

// TruncateMiddle elides the middle of s to fit maxLen
func TruncateMiddle(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 10 {
		if maxLen < 3 {
			return "..."
		}
		return s[:maxLen-3] + "..."
	}
	side := (maxLen - 3) / 2
	return s[:side] + "..." + s[len(s)-side:]
}

// PageSize returns how many list rows fit once headers and footers are
// reserved
func PageSize(terminalHeight int) int {
	const reserved = 10
	return max(terminalHeight-reserved, 5)
}

// Window returns the [start, end) slice of n rows to show so that cursor
// stays visible within size rows
func Window(cursor, n, size int) (int, int) {
	if size <= 0 || n <= size {
		return 0, n
	}
	start := cursor - size/2
	start = max(start, 0)
	start = min(start, n-size)
	return start, start + size
}

// IsTerminalTooSmall checks if the terminal is below minimum recommended size
func IsTerminalTooSmall(width, height int) bool {
	return width < MinTerminalWidth || height < MinTerminalHeight
}

// SizeWarningBanner returns a warning when the terminal is too small, or ""
func SizeWarningBanner(width, height int) string {
	if width == 0 && height == 0 {
		return ""
	}
	if !IsTerminalTooSmall(width, height) {
		return ""
	}

	warning := styles.WarningStyle.Render("Terminal too small, 80x24 or larger recommended") +
		styles.DimStyle.Render(fmt.Sprintf(" (current: %dx%d)", width, height))
	return warning + "\n\n"
}
