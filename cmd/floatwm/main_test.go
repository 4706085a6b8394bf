package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/floatwm/internal/config"
	"github.com/1broseidon/floatwm/internal/interactive"
	"github.com/1broseidon/floatwm/internal/ipc"
	"github.com/1broseidon/floatwm/internal/platform"
	"github.com/1broseidon/floatwm/internal/runtimepath"
	"github.com/1broseidon/floatwm/internal/wm"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestRunConfigValidate(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	bad := filepath.Join(dir, "bad.yaml")
	writeFile(t, good, "layout: grid\n")
	writeFile(t, bad, "layout: spiral\n")

	if rc := runConfig([]string{"validate", "--path", good}); rc != 0 {
		t.Fatalf("validate good rc=%d, want 0", rc)
	}
	if rc := runConfig([]string{"validate", "--path", bad}); rc != 1 {
		t.Fatalf("validate bad rc=%d, want 1", rc)
	}
	if rc := runConfig([]string{"validate", "--path", filepath.Join(dir, "missing.yaml")}); rc != 0 {
		t.Fatalf("validate missing rc=%d, want 0", rc)
	}
	if rc := runConfig([]string{"bogus"}); rc != 2 {
		t.Fatalf("unknown subcommand rc=%d, want 2", rc)
	}
}

func TestRunConfigPathUsesHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	res, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	want := filepath.Join(home, ".config", "floatwm", "config.yaml")
	if res.Path != want {
		t.Fatalf("path=%q, want %q", res.Path, want)
	}
	if res.Exists {
		t.Fatalf("expected no config file in fresh home")
	}
}

func TestRunConfigInit(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if rc := runConfig([]string{"init"}); rc != 0 {
		t.Fatalf("init rc=%d, want 0", rc)
	}
	res, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if !res.Exists || res.Config.TerminalCommand != "weston-terminal" {
		t.Fatalf("unexpected config after init: exists=%v %+v", res.Exists, res.Config)
	}

	if rc := runConfig([]string{"init"}); rc != 1 {
		t.Fatalf("second init rc=%d, want 1", rc)
	}
	if rc := runConfig([]string{"init", "--force"}); rc != 0 {
		t.Fatalf("init --force rc=%d, want 0", rc)
	}

	other := filepath.Join(t.TempDir(), "floatwm.yaml")
	if rc := runConfig([]string{"init", "--path", other}); rc != 0 {
		t.Fatalf("init --path rc=%d, want 0", rc)
	}
	if _, err := os.Stat(other); err != nil {
		t.Fatalf("expected %s to exist: %v", other, err)
	}
}

func TestClientCommandsFailWithoutDaemon(t *testing.T) {
	t.Setenv(runtimepath.EnvSocket, filepath.Join(t.TempDir(), "none.sock"))

	if rc := runStatus(nil); rc != 1 {
		t.Fatalf("status rc=%d, want 1", rc)
	}
	if rc := runSimple("stop-session", "", nil, (*ipc.Client).StopSession); rc != 1 {
		t.Fatalf("stop-session rc=%d, want 1", rc)
	}
	if rc := runWindows([]string{"extra"}); rc != 2 {
		t.Fatalf("windows with args rc=%d, want 2", rc)
	}
	if rc := runStatus([]string{"--help"}); rc != 0 {
		t.Fatalf("status --help rc=%d, want 0", rc)
	}
}

func TestStatusData(t *testing.T) {
	st := wm.Status{
		Windows: 2,
		Focused: 0x400001,
		Layout:  config.LayoutColumns,
		Session: interactive.Session{
			Active: true,
			Window: 0x400001,
			Grab:   platform.Point{X: 5, Y: 6},
			Edges:  platform.EdgesOf(platform.EdgeBottom, platform.EdgeRight),
		},
	}

	got := statusData(st)
	want := ipc.StatusData{
		Layout:      "columns",
		WindowCount: 2,
		Focused:     0x400001,
		Session:     ipc.SessionInfo{Active: true, Window: 0x400001, Edges: "bottom|right", GrabX: 5, GrabY: 6},
	}
	if got != want {
		t.Fatalf("statusData = %+v, want %+v", got, want)
	}

	st.Session = interactive.Session{Active: true, Window: 3}
	if got := statusData(st); got.Session.Edges != "" {
		t.Fatalf("move session must have no edges, got %q", got.Session.Edges)
	}
}

func TestPrintWindows(t *testing.T) {
	var buf bytes.Buffer
	printWindows(&buf, []ipc.WindowInfo{
		windowInfo(platform.Window{
			ID:        0x10,
			Title:     "xterm",
			Geometry:  platform.Geometry{Origin: platform.Point{X: 1, Y: 2}, Size: platform.Size{W: 300, H: 200}},
			Activated: true,
		}),
	})
	out := buf.String()
	for _, want := range []string{"ID", "0x10", "300x200+1+2", "active", "xterm"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	printWindows(&buf, nil)
	if !strings.Contains(buf.String(), "no managed windows") {
		t.Fatalf("unexpected empty output %q", buf.String())
	}
}

func TestPrintStatus(t *testing.T) {
	var buf bytes.Buffer
	printStatus(&buf, &ipc.StatusData{
		DaemonRunning: true,
		Layout:        "grid",
		UptimeSeconds: 90,
		Session:       ipc.SessionInfo{Active: true, Window: 0x20, Edges: "left", GrabX: 1, GrabY: 2},
	})
	out := buf.String()
	for _, want := range []string{"layout:   grid", "1m30s", "resizing 0x20 edges=left"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}
