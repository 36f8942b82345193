package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/Iron-Ham/foldlog/internal/dump"
	"github.com/Iron-Ham/foldlog/internal/session"
)

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// executeCommand runs a fresh command tree with args and returns captured
// output.
func executeCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	return executeCommandContext(t, context.Background(), args...)
}

func executeCommandContext(t *testing.T, ctx context.Context, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	root := NewRootCmd(viper.New())
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err = root.ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}

// isolateConfig points the config directory at an empty temp dir so the
// user's own config never leaks into a test.
func isolateConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return filepath.Join(dir, "foldlog", "config.yaml")
}

// demoSession writes a demo session file into a new dump directory.
func demoSession(t *testing.T) (dir, path string) {
	t.Helper()
	dir = t.TempDir()
	out, errOut, err := executeCommand(t, "demo", "--quiet", "--dump-dir", dir)
	if err != nil {
		t.Fatalf("demo failed: %v\nstdout: %s\nstderr: %s", err, out, errOut)
	}
	if !strings.Contains(out, "Wrote 3 dumps") {
		t.Fatalf("demo output = %q, want 3 dumps (error, manual, app close)", out)
	}
	files, err := dump.ListDumps(dir)
	if err != nil || len(files) != 1 {
		t.Fatalf("ListDumps() = %v, %v; want one session file", files, err)
	}
	return dir, files[0]
}

func writeSessionFile(t *testing.T, dir string, start time.Time) string {
	t.Helper()
	path := filepath.Join(dir, dump.SessionFileName(start, 4242))
	data := []byte(`{"timestamp": 1, "reason": "MANUAL", "module_width": 0, "loggers": {}}`)
	if err := dump.AppendToSession(path, data); err != nil {
		t.Fatalf("AppendToSession() error = %v", err)
	}
	return path
}

// -----------------------------------------------------------------------------
// Root
// -----------------------------------------------------------------------------

func TestRootCommand(t *testing.T) {
	root := NewRootCmd(viper.New())
	if root.Use != "foldlog" {
		t.Errorf("root.Use = %q, want %q", root.Use, "foldlog")
	}

	// Compare by Name(), not Use which includes args
	expected := []string{"dumps", "show", "view", "clean", "watch", "demo", "config"}
	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, name := range expected {
		if !names[name] {
			t.Errorf("expected subcommand %q not found", name)
		}
	}
}

func TestRootCommand_ExplicitConfigMissing(t *testing.T) {
	isolateConfig(t)
	_, _, err := executeCommand(t, "dumps", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.Contains(err.Error(), "failed to read config") {
		t.Errorf("err = %v, want a config read error", err)
	}
}

func TestRootCommand_InvalidConfig(t *testing.T) {
	isolateConfig(t)
	cfgFile := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgFile, []byte("viewer:\n  theme: neon\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, _, err := executeCommand(t, "dumps", "--config", cfgFile, "--dump-dir", t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "viewer.theme") {
		t.Errorf("err = %v, want a viewer.theme validation error", err)
	}
}

// -----------------------------------------------------------------------------
// demo, show
// -----------------------------------------------------------------------------

func TestShow_Tree(t *testing.T) {
	isolateConfig(t)
	dir, _ := demoSession(t)

	out, _, err := executeCommand(t, "show", "--dump-dir", dir, "--no-color")
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}
	for _, want := range []string{
		"== dump 3/3 · APP_CLOSE",
		"connection reset by peer after 18 frames",
		"underrun: 24 samples late",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}
	// VERBOSE detail is folded away at the default WARNING fold level
	if strings.Contains(out, "ack seq 10\n") {
		t.Errorf("show output should fold verbose entries:\n%s", out)
	}
}

func TestShow_SelectAndFilter(t *testing.T) {
	isolateConfig(t)
	dir, path := demoSession(t)

	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{
			name: "first dump by index",
			args: []string{"--dump", "0"},
			want: []string{"== dump 1/3 · ERROR"},
		},
		{
			name: "negative index counts from newest",
			args: []string{"--dump", "-2"},
			want: []string{"== dump 2/3 · MANUAL"},
		},
		{
			name: "all dumps",
			args: []string{"--all"},
			want: []string{"dump 1/3", "dump 2/3", "dump 3/3"},
		},
		{
			name:    "flat with module filter",
			args:    []string{"--flat", "--module", "audio"},
			want:    []string{"underrun: 48 samples late", "buffer refilled at frame 5"},
			notWant: []string{"net.tcp", "render"},
		},
		{
			name:    "grep and level",
			args:    []string{"--flat", "--grep", "RESET", "--level", "error"},
			want:    []string{"connection reset by peer"},
			notWant: []string{"reconnecting"},
		},
		{
			name: "frame details",
			args: []string{"--flat", "--module", "render", "--details", "--level", "frame_only"},
			want: []string{"frame 24: frame 24", "    draw calls", "present took"},
		},
		{
			name:    "no frames",
			args:    []string{"--flat", "--no-frames", "--module", "render"},
			want:    []string{"present took"},
			notWant: []string{"frame 3: frame 3"},
		},
		{
			name: "explicit file",
			args: []string{path, "--fold-level", "verbose"},
			want: []string{"ack seq 10", "window shrunk to 8"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"show", "--dump-dir", dir, "--no-color"}, tt.args...)
			out, _, err := executeCommand(t, args...)
			if err != nil {
				t.Fatalf("show %v failed: %v", tt.args, err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
			for _, bad := range tt.notWant {
				if strings.Contains(out, bad) {
					t.Errorf("output should not contain %q:\n%s", bad, out)
				}
			}
		})
	}
}

func TestShow_ExportJSON(t *testing.T) {
	isolateConfig(t)
	dir, _ := demoSession(t)

	out, _, err := executeCommand(t, "show", "--dump-dir", dir, "--format", "json", "--module", "net.*")
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}

	var rows []map[string]any
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(rows) == 0 {
		t.Fatal("expected exported entries")
	}
	for _, r := range rows {
		if r["module"] != "net.tcp" {
			t.Errorf("module = %v, want net.tcp", r["module"])
		}
	}
}

func TestShow_Errors(t *testing.T) {
	isolateConfig(t)
	dir, _ := demoSession(t)
	empty := t.TempDir()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"dump out of range", []string{"--dump-dir", dir, "--dump", "3"}, "out of range"},
		{"bad format", []string{"--dump-dir", dir, "--format", "xml"}, "unsupported format"},
		{"bad fold level", []string{"--dump-dir", dir, "--fold-level", "LOUD"}, "invalid --fold-level"},
		{"bad level", []string{"--dump-dir", dir, "--level", "LOUD"}, "invalid --level"},
		{"no session files", []string{"--dump-dir", empty}, "no session files"},
		{"missing file", []string{filepath.Join(empty, "dump_x.json")}, "no dumps in"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := executeCommand(t, append([]string{"show"}, tt.args...)...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestDemo_InvalidFrames(t *testing.T) {
	isolateConfig(t)
	_, _, err := executeCommand(t, "demo", "--frames", "0", "--dump-dir", t.TempDir())
	if err == nil {
		t.Error("demo --frames 0 should fail")
	}
}

// -----------------------------------------------------------------------------
// dumps, clean, watch
// -----------------------------------------------------------------------------

func TestDumps(t *testing.T) {
	isolateConfig(t)

	t.Run("empty", func(t *testing.T) {
		out, _, err := executeCommand(t, "dumps", "--dump-dir", filepath.Join(t.TempDir(), "missing"))
		if err != nil {
			t.Fatalf("dumps failed: %v", err)
		}
		if !strings.Contains(out, "No session files found.") {
			t.Errorf("output = %q", out)
		}
	})

	dir, path := demoSession(t)

	t.Run("table", func(t *testing.T) {
		out, _, err := executeCommand(t, "dumps", "--dump-dir", dir)
		if err != nil {
			t.Fatalf("dumps failed: %v", err)
		}
		// The demo ran in this process, which is still alive
		for _, want := range []string{filepath.Base(path), "live"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("json", func(t *testing.T) {
		out, _, err := executeCommand(t, "dumps", "--dump-dir", dir, "--json")
		if err != nil {
			t.Fatalf("dumps failed: %v", err)
		}
		var infos []session.Info
		if err := json.Unmarshal([]byte(out), &infos); err != nil {
			t.Fatalf("output is not JSON: %v\n%s", err, out)
		}
		if len(infos) != 1 || infos[0].Dumps != 3 || infos[0].PID != os.Getpid() {
			t.Errorf("infos = %+v", infos)
		}
	})
}

func TestClean(t *testing.T) {
	isolateConfig(t)
	dir := t.TempDir()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local)
	var files []string
	for i := range 3 {
		files = append(files, writeSessionFile(t, dir, base.Add(time.Duration(i)*time.Minute)))
	}

	out, _, err := executeCommand(t, "clean", "--dump-dir", dir, "--keep", "1", "--dry-run")
	if err != nil {
		t.Fatalf("clean --dry-run failed: %v", err)
	}
	if !strings.Contains(out, "Would remove 2 session file(s)") || !strings.Contains(out, filepath.Base(files[0])) {
		t.Errorf("dry run output = %q", out)
	}
	if remaining, _ := dump.ListDumps(dir); len(remaining) != 3 {
		t.Fatalf("dry run removed files: %v", remaining)
	}

	out, _, err = executeCommand(t, "clean", "--dump-dir", dir, "--keep", "1")
	if err != nil {
		t.Fatalf("clean failed: %v", err)
	}
	if !strings.Contains(out, "Removed 2 session file(s)") {
		t.Errorf("output = %q", out)
	}
	remaining, _ := dump.ListDumps(dir)
	if len(remaining) != 1 || remaining[0] != files[2] {
		t.Errorf("remaining = %v, want only the newest", remaining)
	}

	out, _, err = executeCommand(t, "clean", "--dump-dir", dir)
	if err != nil {
		t.Fatalf("clean failed: %v", err)
	}
	if !strings.Contains(out, "Nothing to clean up") {
		t.Errorf("output = %q", out)
	}

	if _, _, err := executeCommand(t, "clean", "--dump-dir", dir, "--keep", "-2"); err == nil {
		t.Error("negative --keep should fail")
	}
}

func TestWatch_StopsWithContext(t *testing.T) {
	isolateConfig(t)
	dir := filepath.Join(t.TempDir(), "dumps")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, _, err := executeCommandContext(t, ctx, "watch", "--dump-dir", dir)
	if err != nil {
		t.Fatalf("watch failed: %v", err)
	}
	if !strings.Contains(out, "Watching "+dir) {
		t.Errorf("output = %q", out)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("watch should create the dump directory: %v", err)
	}
}

func TestView_InvalidFlags(t *testing.T) {
	isolateConfig(t)
	dir := t.TempDir()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad theme", []string{"--theme", "neon"}, "unknown theme"},
		{"bad fold level", []string{"--fold-level", "LOUD"}, "invalid --fold-level"},
		{"no session files", nil, "no session files"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"view", "--dump-dir", dir}, tt.args...)
			_, _, err := executeCommand(t, args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}
