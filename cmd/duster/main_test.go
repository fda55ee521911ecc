package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/fenilsonani/duster/internal/config"
	"github.com/fenilsonani/duster/internal/platform"
	"github.com/fenilsonani/duster/internal/security"
)

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"  yes  \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"yep\n", false},
		{"y", true},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			got := confirm(strings.NewReader(tt.input), &out, "Proceed?")
			if got != tt.want {
				t.Errorf("confirm(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if !strings.Contains(out.String(), "Proceed? (y/N)") {
				t.Errorf("prompt = %q", out.String())
			}
		})
	}
}

func newFlagCommand(t *testing.T, f *scanFlags, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	f.register(cmd)
	f.registerOutput(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags(%v) error = %v", args, err)
	}
	return cmd
}

func TestScanFlagsOptions(t *testing.T) {
	t.Run("thresholds only when set", func(t *testing.T) {
		var f scanFlags
		cmd := newFlagCommand(t, &f, "--cache", "--min-age", "7", "--exclude", "a", "--exclude", "b")
		opts := f.options(cmd)

		if !opts.Cache || opts.Trash {
			t.Errorf("categories = %+v", opts)
		}
		if opts.MinAgeDays == nil || *opts.MinAgeDays != 7 {
			t.Errorf("MinAgeDays = %v, want 7", opts.MinAgeDays)
		}
		if opts.ProjectAgeDays != nil || opts.DownloadAgeDays != nil {
			t.Error("unset thresholds should stay nil")
		}
		if len(opts.Exclude) != 2 {
			t.Errorf("Exclude = %v", opts.Exclude)
		}
	})

	t.Run("no flags selects everything", func(t *testing.T) {
		var f scanFlags
		opts := f.options(newFlagCommand(t, &f))
		if opts.SelectedKeys() != nil {
			t.Errorf("SelectedKeys() = %v, want nil", opts.SelectedKeys())
		}
	})
}

func TestOutputFormat(t *testing.T) {
	var f scanFlags
	newFlagCommand(t, &f, "--format", "table", "--json")
	got, err := f.outputFormat()
	if err != nil || got != "json" {
		t.Errorf("outputFormat() = %q, %v; --json should win", got, err)
	}

	var bad scanFlags
	newFlagCommand(t, &bad, "--format", "xml")
	if _, err := bad.outputFormat(); err == nil {
		t.Error("expected an error for an unknown format")
	}
}

func TestWatchOptions(t *testing.T) {
	cfg := config.GetDefault()

	t.Run("falls back to configured categories", func(t *testing.T) {
		watchOpts = scanFlags{}
		cmd := newFlagCommand(t, &watchOpts)
		opts, err := watchOptions(cmd, cfg)
		if err != nil {
			t.Fatal(err)
		}
		got := strings.Join(opts.SelectedKeys(), ",")
		if got != "cache,trash,temp,build" {
			t.Errorf("SelectedKeys() = %s", got)
		}
	})

	t.Run("flags win", func(t *testing.T) {
		watchOpts = scanFlags{}
		cmd := newFlagCommand(t, &watchOpts, "--large")
		opts, err := watchOptions(cmd, cfg)
		if err != nil {
			t.Fatal(err)
		}
		if got := opts.SelectedKeys(); len(got) != 1 || got[0] != "large" {
			t.Errorf("SelectedKeys() = %v", got)
		}
	})

	t.Run("bad configured category", func(t *testing.T) {
		watchOpts = scanFlags{}
		bad := cfg.Clone()
		bad.Watch.Categories = []string{"logs"}
		if _, err := watchOptions(newFlagCommand(t, &watchOpts), bad); err == nil {
			t.Error("expected an error for an unknown category")
		}
	})
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"scan", "analyze", "clean", "space", "history", "watch", "config"} {
		if cmd, _, err := rootCmd.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestNewContainmentIgnoresTMPDIR(t *testing.T) {
	tests := []struct {
		tmpdir string
		path   string
	}{
		{"/etc", "/etc/passwd"},
		{"/", "/etc/passwd"},
		{"/", "/usr"},
		{"/srv/scratch", "/srv/scratch/build.log"},
	}

	for _, tt := range tests {
		t.Run(tt.tmpdir+" "+tt.path, func(t *testing.T) {
			t.Setenv("TMPDIR", tt.tmpdir)
			info, err := platform.GetInfo()
			if err != nil {
				t.Skipf("no home directory in this environment: %v", err)
			}

			err = newContainment(info).Check(tt.path)
			if !errors.Is(err, security.ErrRefused) {
				t.Errorf("Check(%q) with TMPDIR=%s = %v, want a refusal", tt.path, tt.tmpdir, err)
			}
		})
	}

	t.Run("fixed temp roots stay allowed", func(t *testing.T) {
		info, err := platform.GetInfo()
		if err != nil {
			t.Skipf("no home directory in this environment: %v", err)
		}
		if err := newContainment(info).Check("/tmp/build-cache"); err != nil {
			t.Errorf("Check(/tmp/build-cache) = %v", err)
		}
	})
}
