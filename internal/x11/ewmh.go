package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// supportedHints is what the manager advertises in _NET_SUPPORTED.
var supportedHints = []string{
	"_NET_SUPPORTED",
	"_NET_SUPPORTING_WM_CHECK",
	"_NET_WM_NAME",
	"_NET_CLIENT_LIST",
	"_NET_CLIENT_LIST_STACKING",
	"_NET_ACTIVE_WINDOW",
	"_NET_WM_MOVERESIZE",
	"_NET_CLOSE_WINDOW",
}

// AnnounceWM publishes the EWMH supporting-WM check window and the list of
// supported hints on the root window.
func (c *Connection) AnnounceWM(name string) error {
	check, err := xwindow.Generate(c.XUtil)
	if err != nil {
		return fmt.Errorf("failed to allocate check window: %w", err)
	}
	if err := check.CreateChecked(c.Root, -1, -1, 1, 1, xproto.CwOverrideRedirect, 1); err != nil {
		return fmt.Errorf("failed to create check window: %w", err)
	}

	if err := ewmh.SupportingWmCheckSet(c.XUtil, c.Root, check.Id); err != nil {
		return err
	}
	if err := ewmh.SupportingWmCheckSet(c.XUtil, check.Id, check.Id); err != nil {
		return err
	}
	if err := ewmh.WmNameSet(c.XUtil, check.Id, name); err != nil {
		return err
	}
	return ewmh.SupportedSet(c.XUtil, supportedHints)
}

// SetClientList publishes the managed windows, bottom to top.
func (c *Connection) SetClientList(windows []xproto.Window) error {
	if err := ewmh.ClientListSet(c.XUtil, windows); err != nil {
		return err
	}
	return ewmh.ClientListStackingSet(c.XUtil, windows)
}
