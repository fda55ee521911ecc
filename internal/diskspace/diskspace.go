// Package diskspace reports capacity and free space of the filesystem
// holding a path.
package diskspace

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v4/disk"
)

// Space describes one mounted filesystem
type Space struct {
	Path        string  `json:"path" yaml:"path"`
	Mountpoint  string  `json:"mountpoint" yaml:"mountpoint"`
	Device      string  `json:"device,omitempty" yaml:"device,omitempty"`
	Fstype      string  `json:"fstype" yaml:"fstype"`
	Total       uint64  `json:"total" yaml:"total"`
	Free        uint64  `json:"free" yaml:"free"`
	Used        uint64  `json:"used" yaml:"used"`
	UsedPercent float64 `json:"used_percent" yaml:"used_percent"`
}

// Usage returns space for the mount containing path. The mount is the
// partition with the longest mountpoint that is a prefix of path; when no
// partition matches, path itself is queried.
func Usage(ctx context.Context, path string) (Space, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Space{}, fmt.Errorf("failed to resolve path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	space := Space{Path: abs, Mountpoint: abs}

	partitions, err := disk.PartitionsWithContext(ctx, false)
	if err == nil {
		if p, ok := longestMount(partitions, abs); ok {
			space.Mountpoint = p.Mountpoint
			space.Device = p.Device
			space.Fstype = p.Fstype
		}
	}

	usage, err := disk.UsageWithContext(ctx, space.Mountpoint)
	if err != nil {
		return Space{}, fmt.Errorf("failed to read disk usage for %s: %w", space.Mountpoint, err)
	}

	space.Total = usage.Total
	space.Free = usage.Free
	space.Used = usage.Used
	space.UsedPercent = usage.UsedPercent
	if space.Fstype == "" {
		space.Fstype = usage.Fstype
	}
	return space, nil
}

// longestMount picks the partition whose mountpoint is the longest
// component-wise prefix of path
func longestMount(partitions []disk.PartitionStat, path string) (disk.PartitionStat, bool) {
	var (
		best  disk.PartitionStat
		found bool
	)
	for _, p := range partitions {
		if !containsPath(p.Mountpoint, path) {
			continue
		}
		if !found || len(p.Mountpoint) > len(best.Mountpoint) {
			best = p
			found = true
		}
	}
	return best, found
}

func containsPath(mount, path string) bool {
	if mount == "" {
		return false
	}
	if mount == path || mount == string(filepath.Separator) {
		return true
	}
	return strings.HasPrefix(path, strings.TrimSuffix(mount, string(filepath.Separator))+string(filepath.Separator))
}

// FreedShare returns how much of the filesystem's capacity freed represents,
// as a percentage
func (s Space) FreedShare(freed int64) float64 {
	if s.Total == 0 || freed <= 0 {
		return 0
	}
	return float64(freed) / float64(s.Total) * 100
}
