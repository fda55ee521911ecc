package utils

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	B  = 1
	KB = 1024 * B
	MB = 1024 * KB
	GB = 1024 * MB
	TB = 1024 * GB
)

var numberPrinter = message.NewPrinter(language.English)

// FormatBytes converts bytes to human-readable format
func FormatBytes(bytes int64) string {
	if bytes < 0 {
		return "0 B"
	}
	return humanize.IBytes(uint64(bytes))
}

// FormatCount renders a count with thousands separators ("12,345").
func FormatCount(n int) string {
	return numberPrinter.Sprintf("%d", n)
}

// ParseSizeMB converts a human size into whole megabytes.
// Accepts GB, MB, KB, G, M, K suffixes; a bare number is taken as MB.
func ParseSizeMB(size string) (uint64, error) {
	s := strings.ToUpper(strings.TrimSpace(size))
	if s == "" {
		return 0, fmt.Errorf("invalid size format: %q", size)
	}

	type unit struct {
		suffix string
		toMB   float64
	}
	// Longer suffixes first so "MB" is not read as "B" after "M".
	units := []unit{
		{"GB", 1024}, {"MB", 1}, {"KB", 1.0 / 1024},
		{"G", 1024}, {"M", 1}, {"K", 1.0 / 1024},
	}

	num, factor := s, 1.0
	for _, u := range units {
		if strings.HasSuffix(s, u.suffix) {
			num = strings.TrimSpace(strings.TrimSuffix(s, u.suffix))
			factor = u.toMB
			break
		}
	}

	value, err := strconv.ParseFloat(num, 64)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("invalid size format: %q", size)
	}

	return uint64(value * factor), nil
}
