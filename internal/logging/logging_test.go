package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLevels(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, Options{}).Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug should be off by default, got %q", buf.String())
	}

	New(&buf, Options{Verbose: true}).Debug("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("verbose logger dropped a debug record: %q", buf.String())
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, Options{JSON: true}).Info("scan done", "items", 3)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if rec["msg"] != "scan done" || rec["items"] != float64(3) {
		t.Errorf("record = %v", rec)
	}
}

func TestHomeRedaction(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{JSON: true, HomeDir: "/home/alex"}).
		With("root", "/home/alex")

	logger.Info("removed /home/alex/.cache/pip",
		"path", "/home/alex/Downloads/a.zip",
		"other", "/home/alexander/x",
		slog.Group("g", "dir", "/home/alex/src"),
	)

	out := buf.String()
	if strings.Contains(out, "/home/alex/") || strings.Contains(out, `"root":"/home/alex"`) {
		t.Errorf("home directory leaked: %s", out)
	}
	for _, want := range []string{"~/.cache/pip", "~/Downloads/a.zip", `"root":"~"`, "~/src", "/home/alexander/x"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	if logger.Enabled(t.Context(), slog.LevelError) {
		t.Error("Discard should drop every level")
	}
}
