package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    log.Level
		wantErr bool
	}{
		{"", log.InfoLevel, false},
		{"DEBUG", log.DebugLevel, false},
		{"warning", log.WarnLevel, false},
		{" error ", log.ErrorLevel, false},
		{"trace", log.InfoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseLevel(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLogger_LevelFiltersAndEnvOverride(t *testing.T) {
	t.Setenv(EnvLevel, "")

	var buf bytes.Buffer
	l, err := New(&buf, "warn")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Info("hidden")
	l.Warn("shown", "window", 7)
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info record should be filtered, got %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "window=7") {
		t.Fatalf("expected warn record with attrs, got %q", out)
	}

	t.Setenv(EnvLevel, "debug")
	if err := l.SetLevel("error"); err != nil {
		t.Fatalf("SetLevel: %v", err)
	}
	if l.Level() != log.DebugLevel {
		t.Fatalf("expected env override to debug, got %v", l.Level())
	}
}
