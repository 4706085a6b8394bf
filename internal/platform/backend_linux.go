//go:build linux

package platform

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"

	"github.com/1broseidon/floatwm/internal/x11"
)

// LinuxBackend wraps an existing X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// Conn returns the X11 connection for event wiring.
func (b *LinuxBackend) Conn() *x11.Connection {
	if b == nil {
		return nil
	}
	return b.conn
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// Outputs returns all active outputs.
func (b *LinuxBackend) Outputs() ([]Output, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	outputs := make([]Output, 0, len(monitors))
	for _, m := range monitors {
		outputs = append(outputs, outputFromMonitor(m))
	}
	return outputs, nil
}

// OutputAt returns the output containing p.
func (b *LinuxBackend) OutputAt(p Point) (Output, error) {
	conn, err := b.connection()
	if err != nil {
		return Output{}, err
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		return Output{}, err
	}
	m, err := x11.MonitorAt(monitors, p.X, p.Y)
	if err != nil {
		return Output{}, err
	}
	return outputFromMonitor(m), nil
}

// TopLevelWindows lists mapped application windows, bottom to top.
func (b *LinuxBackend) TopLevelWindows() ([]WindowID, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	wins, err := conn.TopLevelWindows()
	if err != nil {
		return nil, err
	}
	ids := make([]WindowID, 0, len(wins))
	for _, w := range wins {
		ids = append(ids, WindowID(w))
	}
	return ids, nil
}

// WindowTitle returns the window's title, or "" when it has none.
func (b *LinuxBackend) WindowTitle(id WindowID) string {
	if b == nil || b.conn == nil {
		return ""
	}
	return b.conn.WindowTitle(xproto.Window(id))
}

// Geometry returns the current geometry of a window.
func (b *LinuxBackend) Geometry(id WindowID) (Geometry, error) {
	conn, err := b.connection()
	if err != nil {
		return Geometry{}, err
	}

	r, err := conn.GetGeometry(xproto.Window(id))
	if err != nil {
		return Geometry{}, err
	}
	return Geometry{
		Origin: Point{X: r.X, Y: r.Y},
		Size:   Size{W: uint32(r.Width), H: uint32(r.Height)},
	}, nil
}

// Configure moves and resizes a window.
func (b *LinuxBackend) Configure(id WindowID, g Geometry) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.MoveResizeWindow(xproto.Window(id), g.Origin.X, g.Origin.Y, int(g.Size.W), int(g.Size.H))
}

// Raise puts a window on top of the stacking order.
func (b *LinuxBackend) Raise(id WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.RaiseWindow(xproto.Window(id))
}

// Lower puts a window at the bottom of the stacking order.
func (b *LinuxBackend) Lower(id WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.LowerWindow(xproto.Window(id))
}

// Focus gives keyboard focus to a window. Zero focuses the background.
func (b *LinuxBackend) Focus(id WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.FocusWindow(xproto.Window(id))
}

// Close requests graceful window close via WM_DELETE_WINDOW.
func (b *LinuxBackend) Close(id WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.CloseWindow(xproto.Window(id))
}

// WarpPointer moves the pointer to p.
func (b *LinuxBackend) WarpPointer(p Point) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.WarpPointer(p.X, p.Y)
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

func outputFromMonitor(m x11.Monitor) Output {
	w, h := m.Width, m.Height
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return Output{
		ID:   m.ID,
		Name: m.Name,
		Bounds: Geometry{
			Origin: Point{X: m.X, Y: m.Y},
			Size:   Size{W: uint32(w), H: uint32(h)},
		},
	}
}
