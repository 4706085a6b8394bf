package x11

import "testing"

func TestMonitorAt(t *testing.T) {
	monitors := []Monitor{
		{ID: 0, Name: "left", X: 0, Y: 0, Width: 1920, Height: 1080},
		{ID: 1, Name: "right", X: 1920, Y: 0, Width: 1280, Height: 1024},
	}

	tests := []struct {
		name string
		x, y int
		want string
	}{
		{"origin", 0, 0, "left"},
		{"right edge exclusive", 1920, 10, "right"},
		{"below right monitor falls back", 2000, 1050, "left"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MonitorAt(monitors, tt.x, tt.y)
			if err != nil {
				t.Fatalf("MonitorAt: %v", err)
			}
			if got.Name != tt.want {
				t.Fatalf("MonitorAt(%d,%d) = %q, want %q", tt.x, tt.y, got.Name, tt.want)
			}
		})
	}

	if _, err := MonitorAt(nil, 0, 0); err == nil {
		t.Fatalf("expected error without monitors")
	}
}
