package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xcursor"
)

// Cursor shapes used while dragging.
const (
	CursorMove        = xcursor.Fleur
	CursorTop         = xcursor.TopSide
	CursorBottom      = xcursor.BottomSide
	CursorLeft        = xcursor.LeftSide
	CursorRight       = xcursor.RightSide
	CursorTopLeft     = xcursor.TopLeftCorner
	CursorTopRight    = xcursor.TopRightCorner
	CursorBottomLeft  = xcursor.BottomLeftCorner
	CursorBottomRight = xcursor.BottomRightCorner
)

// Cursor returns the font cursor for shape, creating it on first use. Zero
// means no cursor change.
func (c *Connection) Cursor(shape uint16) xproto.Cursor {
	if cur, ok := c.cursors[shape]; ok {
		return cur
	}
	cur, err := xcursor.CreateCursor(c.XUtil, shape)
	if err != nil {
		return 0
	}
	c.cursors[shape] = cur
	return cur
}
