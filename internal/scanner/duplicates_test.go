package scanner

import (
	"context"
	"testing"

	"github.com/fenilsonani/duster/internal/testutil"
)

func TestDuplicateScanner(t *testing.T) {
	f := testutil.NewFixture(t)
	env := newTestEnv(f)
	size := 2 * testutil.MiB

	f.CreatePatternFile("home/Documents/a.bin", size, 0xAA, 10*testutil.Day)
	f.CreatePatternFile("home/Documents/b.bin", size, 0xAA, 5*testutil.Day)
	f.CreatePatternFile("home/Desktop/c.bin", size, 0xAA, 20*testutil.Day)

	// Same size, different content
	f.CreatePatternFile("home/Documents/d.bin", size, 0xBB, 30*testutil.Day)

	// Same leading chunk, different tail
	tail := make([]byte, size)
	for i := range tail {
		tail[i] = 0xAA
	}
	tail[len(tail)-1] = 0x00
	f.CreateFileWithAge("home/Documents/tail.bin", tail, 30*testutil.Day)

	// Below the size floor, hidden, or in skipped dirs
	f.CreatePatternFile("home/Documents/small1.bin", 512*1024, 0xCC, testutil.Day)
	f.CreatePatternFile("home/Documents/small2.bin", 512*1024, 0xCC, testutil.Day)
	f.CreatePatternFile("home/Documents/.a-copy.bin", size, 0xAA, testutil.Day)
	f.CreatePatternFile("home/code/node_modules/a.bin", size, 0xAA, testutil.Day)

	files, err := DuplicateScanner{Workers: 2}.Scan(context.Background(), env)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if len(files) != 2 {
		t.Fatalf("got %d duplicates, want 2: %v", len(files), files)
	}

	// Equal sizes sort by path
	want := []string{"home/Documents/a.bin", "home/Documents/b.bin"}
	for i, rel := range want {
		if files[i].Path != f.Path(rel) {
			t.Errorf("files[%d] = %s, want %s", i, files[i].Path, rel)
		}
		if files[i].Reason != "Duplicate of: c.bin" {
			t.Errorf("files[%d] reason = %q, want Duplicate of: c.bin", i, files[i].Reason)
		}
		if files[i].Category != Duplicate || files[i].Size != int64(size) {
			t.Errorf("files[%d] = %+v", i, files[i])
		}
	}
}

func TestDuplicateScannerGroups(t *testing.T) {
	f := testutil.NewFixture(t)
	env := newTestEnv(f)

	// Two groups of three; each reports N-1 items
	for _, name := range []string{"x1", "x2", "x3"} {
		f.CreatePatternFile("home/Documents/"+name+".bin", 3*testutil.MiB, 0x01, 10*testutil.Day)
	}
	for _, name := range []string{"y1", "y2", "y3"} {
		f.CreatePatternFile("home/Documents/"+name+".bin", testutil.MiB, 0x02, 10*testutil.Day)
	}

	files, err := DuplicateScanner{}.Scan(context.Background(), env)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(files) != 4 {
		t.Fatalf("got %d duplicates, want 4", len(files))
	}
	if files[0].Size != 3*testutil.MiB || files[3].Size != testutil.MiB {
		t.Error("duplicates should be sorted by size descending")
	}

	seen := make(map[string]bool)
	for _, file := range files {
		if seen[file.Path] {
			t.Errorf("path %s reported twice", file.Path)
		}
		seen[file.Path] = true
	}
}

func TestDuplicateScannerNoCandidates(t *testing.T) {
	f := testutil.NewFixture(t)
	env := newTestEnv(f)
	f.CreatePatternFile("home/Documents/only.bin", 2*testutil.MiB, 0x01, 0)

	files, err := DuplicateScanner{}.Scan(context.Background(), env)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(files) != 0 {
		t.Errorf("got %d duplicates, want none", len(files))
	}
}

func BenchmarkDuplicateScanner(b *testing.B) {
	f := testutil.NewFixture(b)
	env := newTestEnv(f)
	for _, name := range []string{"a", "b", "c", "d"} {
		f.CreatePatternFile("home/Documents/"+name+".bin", 4*testutil.MiB, 0x42, testutil.Day)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := (DuplicateScanner{}).Scan(context.Background(), env); err != nil {
			b.Fatal(err)
		}
	}
}
