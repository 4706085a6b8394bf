package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xprop"
)

// Rect is a window rectangle in root coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// GetGeometry returns the window's rectangle. Managed windows are direct
// children of the root, so the reported origin is already in root space.
func (c *Connection) GetGeometry(windowID xproto.Window) (Rect, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return Rect{}, fmt.Errorf("failed to get geometry of 0x%x: %w", uint32(windowID), err)
	}
	return Rect{
		X:      int(geom.X),
		Y:      int(geom.Y),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}, nil
}

// MoveResizeWindow moves and resizes a window to the specified geometry.
// Width and height are raised to 1, the smallest size X11 accepts.
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	mask := uint16(xproto.ConfigWindowX | xproto.ConfigWindowY |
		xproto.ConfigWindowWidth | xproto.ConfigWindowHeight)
	values := []uint32{uint32(int32(x)), uint32(int32(y)), uint32(width), uint32(height)}
	return xproto.ConfigureWindowChecked(c.XUtil.Conn(), windowID, mask, values).Check()
}

// ConfigureRequest applies a client's configure request as asked. Windows
// the manager does not arrange keep full control of their own geometry.
func (c *Connection) ConfigureRequest(ev xproto.ConfigureRequestEvent) error {
	var mask uint16
	var values []uint32
	add := func(bit uint16, v uint32) {
		if ev.ValueMask&bit != 0 {
			mask |= bit
			values = append(values, v)
		}
	}
	// Values must follow the bit order of the mask.
	add(xproto.ConfigWindowX, uint32(int32(ev.X)))
	add(xproto.ConfigWindowY, uint32(int32(ev.Y)))
	add(xproto.ConfigWindowWidth, uint32(ev.Width))
	add(xproto.ConfigWindowHeight, uint32(ev.Height))
	add(xproto.ConfigWindowBorderWidth, uint32(ev.BorderWidth))
	add(xproto.ConfigWindowSibling, uint32(ev.Sibling))
	add(xproto.ConfigWindowStackMode, uint32(ev.StackMode))
	if mask == 0 {
		return nil
	}
	return xproto.ConfigureWindowChecked(c.XUtil.Conn(), ev.Window, mask, values).Check()
}

// RaiseWindow puts the window on top of the stacking order.
func (c *Connection) RaiseWindow(windowID xproto.Window) error {
	return c.restack(windowID, xproto.StackModeAbove)
}

// LowerWindow puts the window at the bottom of the stacking order.
func (c *Connection) LowerWindow(windowID xproto.Window) error {
	return c.restack(windowID, xproto.StackModeBelow)
}

func (c *Connection) restack(windowID xproto.Window, mode uint32) error {
	return xproto.ConfigureWindowChecked(
		c.XUtil.Conn(), windowID, xproto.ConfigWindowStackMode, []uint32{mode},
	).Check()
}

// FocusWindow gives keyboard focus to the window and publishes it as
// _NET_ACTIVE_WINDOW. Focusing the root clears the active window.
func (c *Connection) FocusWindow(windowID xproto.Window) error {
	target := windowID
	if target == 0 {
		target = c.Root
	}
	err := xproto.SetInputFocusChecked(
		c.XUtil.Conn(), xproto.InputFocusPointerRoot, target, xproto.TimeCurrentTime,
	).Check()
	if err != nil {
		return fmt.Errorf("failed to focus 0x%x: %w", uint32(windowID), err)
	}
	return ewmh.ActiveWindowSet(c.XUtil, windowID)
}

// MapWindow makes the window visible.
func (c *Connection) MapWindow(windowID xproto.Window) error {
	return xproto.MapWindowChecked(c.XUtil.Conn(), windowID).Check()
}

// SelectClientEvents subscribes to structure changes on a managed window.
func (c *Connection) SelectClientEvents(windowID xproto.Window) error {
	mask := uint32(xproto.EventMaskStructureNotify | xproto.EventMaskPropertyChange)
	return xproto.ChangeWindowAttributesChecked(
		c.XUtil.Conn(), windowID, xproto.CwEventMask, []uint32{mask},
	).Check()
}

// CloseWindow requests a graceful close via WM_DELETE_WINDOW and kills the
// client when it does not support the protocol.
func (c *Connection) CloseWindow(windowID xproto.Window) error {
	supportsDelete := false
	if protocols, err := icccm.WmProtocolsGet(c.XUtil, windowID); err == nil {
		for _, p := range protocols {
			if p == "WM_DELETE_WINDOW" {
				supportsDelete = true
				break
			}
		}
	}
	if !supportsDelete {
		return xproto.KillClientChecked(c.XUtil.Conn(), uint32(windowID)).Check()
	}

	deleteAtom, err := xprop.Atm(c.XUtil, "WM_DELETE_WINDOW")
	if err != nil {
		return err
	}
	protocolsAtom, err := xprop.Atm(c.XUtil, "WM_PROTOCOLS")
	if err != nil {
		return err
	}

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   protocolsAtom,
		Data: xproto.ClientMessageDataUnionData32New([]uint32{
			uint32(deleteAtom), uint32(xproto.TimeCurrentTime), 0, 0, 0,
		}),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		windowID,
		xproto.EventMaskNoEvent,
		string(ev.Bytes()),
	).Check()
}

// WindowTitle returns _NET_WM_NAME, falling back to WM_NAME.
func (c *Connection) WindowTitle(windowID xproto.Window) string {
	if title, err := ewmh.WmNameGet(c.XUtil, windowID); err == nil && title != "" {
		return title
	}
	if title, err := icccm.WmNameGet(c.XUtil, windowID); err == nil {
		return title
	}
	return ""
}

// IsOverrideRedirect reports whether the window bypasses the window manager
// (menus, tooltips and similar popups).
func (c *Connection) IsOverrideRedirect(windowID xproto.Window) bool {
	attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), windowID).Reply()
	if err != nil {
		return true
	}
	return attrs.OverrideRedirect
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL", "_NET_WM_WINDOW_TYPE_DIALOG", "_NET_WM_WINDOW_TYPE_UTILITY":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}

	// If no specific type is set, assume it's normal
	return len(types) == 0
}

// TopLevelWindows lists viewable, non-override-redirect children of the root
// in bottom-to-top stacking order.
func (c *Connection) TopLevelWindows() ([]xproto.Window, error) {
	tree, err := xproto.QueryTree(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to query window tree: %w", err)
	}

	windows := make([]xproto.Window, 0, len(tree.Children))
	for _, child := range tree.Children {
		attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), child).Reply()
		if err != nil {
			continue
		}
		if attrs.OverrideRedirect || attrs.MapState != xproto.MapStateViewable {
			continue
		}
		windows = append(windows, child)
	}
	return windows, nil
}

// QueryPointer returns the pointer position in root coordinates and the
// top-level window under it (0 for the root).
func (c *Connection) QueryPointer() (x, y int, child xproto.Window, err error) {
	reply, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to query pointer: %w", err)
	}
	return int(reply.RootX), int(reply.RootY), reply.Child, nil
}

// WarpPointer moves the pointer to (x, y) in root coordinates. Nothing is
// sent when the pointer is already there, so the warp does not produce a
// motion event of its own.
func (c *Connection) WarpPointer(x, y int) error {
	if px, py, _, err := c.QueryPointer(); err == nil && px == x && py == y {
		return nil
	}
	return xproto.WarpPointerChecked(
		c.XUtil.Conn(), 0, c.Root, 0, 0, 0, 0, int16(x), int16(y),
	).Check()
}
