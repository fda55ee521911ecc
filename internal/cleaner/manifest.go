package cleaner

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/fenilsonani/duster/internal/scanner"
)

// DeletionManifest keeps track of deleted items, in deletion order
type DeletionManifest struct {
	Files     []DeletedFileInfo
	Timestamp time.Time
	TotalSize int64
}

// DeletedFileInfo represents information about a deleted file
type DeletedFileInfo struct {
	Path      string
	Size      int64
	Category  scanner.Category
	DeletedAt time.Time
}

// NewDeletionManifest creates a new DeletionManifest
func NewDeletionManifest() *DeletionManifest {
	return &DeletionManifest{
		Files:     []DeletedFileInfo{},
		Timestamp: time.Now(),
	}
}

// Add adds a file to the manifest
func (m *DeletionManifest) Add(path string, size int64, category scanner.Category) {
	m.Files = append(m.Files, DeletedFileInfo{
		Path:      path,
		Size:      size,
		Category:  category,
		DeletedAt: time.Now(),
	})
	m.TotalSize += size
}

// Save writes the manifest as plain text, one item per line
func (m *DeletionManifest) Save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	fmt.Fprintf(w, "Deletion Manifest\n")
	fmt.Fprintf(w, "Created: %s\n", m.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(w, "Total Size: %d bytes (%s)\n", m.TotalSize, humanize.IBytes(uint64(max(m.TotalSize, 0))))
	fmt.Fprintf(w, "Total Files: %d\n\n", len(m.Files))

	for _, f := range m.Files {
		fmt.Fprintf(w, "%s | %d bytes | %s | %s\n",
			f.Path, f.Size, f.Category.Key(), f.DeletedAt.Format(time.RFC3339))
	}

	if err := w.Flush(); err != nil {
		return err
	}
	return file.Close()
}
