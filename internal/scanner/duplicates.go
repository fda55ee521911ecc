package scanner

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"slices"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fenilsonani/duster/pkg/utils"
)

const duplicateMinSize = MiB

var duplicateSkipDirs = []string{
	"node_modules", "target", ".git", ".svn", ".hg",
	"Library", ".Trash", ".cache", "Caches",
}

// candidate is a file that shares its size with at least one other file
type candidate struct {
	path         string
	size         int64
	lastAccessed time.Time
}

// DuplicateScanner groups files of identical content under the base path.
// The least recently accessed copy of each group is kept; the others are
// reported.
type DuplicateScanner struct {
	// Workers bounds concurrent hashing; 0 means runtime.NumCPU()
	Workers int
}

func (DuplicateScanner) Name() string { return "Duplicates Scanner" }

func (s DuplicateScanner) Scan(ctx context.Context, env *Env) ([]CleanableFile, error) {
	workers := s.Workers
	if workers <= 0 {
		workers = env.Config.DuplicateWorkers
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	buckets, err := collectBySize(ctx, env)
	if err != nil {
		return nil, err
	}

	// Cheap prefilter on the leading chunk, then the full content hash
	buckets, err = splitBuckets(ctx, buckets, workers, func(path string) (any, error) {
		return utils.QuickHash(path)
	})
	if err != nil {
		return nil, err
	}
	groups, err := splitBuckets(ctx, buckets, workers, func(path string) (any, error) {
		return utils.HashFile(path)
	})
	if err != nil {
		return nil, err
	}

	var files []CleanableFile
	for _, group := range groups {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].lastAccessed.Before(group[j].lastAccessed)
		})

		original := filepath.Base(group[0].path)
		for _, dup := range group[1:] {
			files = append(files, CleanableFile{
				Path:         dup.path,
				Size:         dup.size,
				Category:     Duplicate,
				LastAccessed: dup.lastAccessed,
				Reason:       "Duplicate of: " + original,
			})
		}
	}

	sortBySizeDesc(files)
	return files, nil
}

// collectBySize walks the base path and returns the size buckets holding
// two or more files, in ascending size order with files in walk order.
func collectBySize(ctx context.Context, env *Env) ([][]candidate, error) {
	bySize := make(map[int64][]candidate)

	opts := walkOptions{
		pruneDir: func(_ string, d fs.DirEntry) bool {
			return slices.Contains(duplicateSkipDirs, d.Name())
		},
	}

	err := walkTree(ctx, env.BasePath(), opts, func(path string, d fs.DirEntry, _ int) error {
		if !d.Type().IsRegular() || isHidden(d.Name()) || env.excluded(path) {
			return nil
		}

		info, err := d.Info()
		if err != nil || info.Size() < duplicateMinSize {
			return nil
		}

		bySize[info.Size()] = append(bySize[info.Size()], candidate{
			path:         path,
			size:         info.Size(),
			lastAccessed: accessTimeOrNow(info),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sizes := make([]int64, 0, len(bySize))
	for size, files := range bySize {
		if len(files) > 1 {
			sizes = append(sizes, size)
		}
	}
	slices.Sort(sizes)

	buckets := make([][]candidate, 0, len(sizes))
	for _, size := range sizes {
		buckets = append(buckets, bySize[size])
	}
	return buckets, nil
}

// splitBuckets hashes every candidate on a bounded pool and splits each
// bucket by hash value. Files that fail to hash are dropped, as are
// resulting groups of one. Order within a group follows the input order.
func splitBuckets(ctx context.Context, buckets [][]candidate, workers int, hash func(string) (any, error)) ([][]candidate, error) {
	type hashed struct {
		sum any
		ok  bool
	}

	results := make([][]hashed, len(buckets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for bi, bucket := range buckets {
		results[bi] = make([]hashed, len(bucket))
		for ci, c := range bucket {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				sum, err := hash(c.path)
				if err != nil {
					return nil
				}
				results[bi][ci] = hashed{sum: sum, ok: true}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out [][]candidate
	for bi, bucket := range buckets {
		var order []any
		groups := make(map[any][]candidate)
		for ci, c := range bucket {
			h := results[bi][ci]
			if !h.ok {
				continue
			}
			if _, seen := groups[h.sum]; !seen {
				order = append(order, h.sum)
			}
			groups[h.sum] = append(groups[h.sum], c)
		}
		for _, sum := range order {
			if len(groups[sum]) > 1 {
				out = append(out, groups[sum])
			}
		}
	}
	return out, nil
}
