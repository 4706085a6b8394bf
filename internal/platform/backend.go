package platform

import "strings"

// WindowID is a platform-neutral window identifier. Zero means "no window"
// and is also what backends report for the background (root) window.
type WindowID uint32

// Point is a position in display coordinates.
type Point struct {
	X int
	Y int
}

// Size is a window size. Width and height are never negative.
type Size struct {
	W uint32
	H uint32
}

// Geometry is the position and size of a window.
type Geometry struct {
	Origin Point
	Size   Size
}

// Contains reports whether p lies inside g.
func (g Geometry) Contains(p Point) bool {
	return p.X >= g.Origin.X && p.X < g.Origin.X+int(g.Size.W) &&
		p.Y >= g.Origin.Y && p.Y < g.Origin.Y+int(g.Size.H)
}

// Edge is a single side of a window rectangle.
type Edge uint8

const (
	EdgeTop Edge = 1 << iota
	EdgeBottom
	EdgeLeft
	EdgeRight
)

// Edges is a set of resize edges. The empty set means a plain move.
type Edges uint8

// EdgesOf builds a set from individual edges.
func EdgesOf(edges ...Edge) Edges {
	var e Edges
	for _, edge := range edges {
		e |= Edges(edge)
	}
	return e
}

// Has reports whether edge is in the set.
func (e Edges) Has(edge Edge) bool {
	return e&Edges(edge) != 0
}

// Union returns the set of edges present in either e or o.
func (e Edges) Union(o Edges) Edges {
	return e | o
}

// IsEmpty reports whether no edge is set.
func (e Edges) IsEmpty() bool {
	return e == 0
}

// Horizontal returns the edge that drives horizontal resizing. Left takes
// precedence over Right; ok is false if neither is set.
func (e Edges) Horizontal() (edge Edge, ok bool) {
	switch {
	case e.Has(EdgeLeft):
		return EdgeLeft, true
	case e.Has(EdgeRight):
		return EdgeRight, true
	}
	return 0, false
}

// Vertical returns the edge that drives vertical resizing. Top takes
// precedence over Bottom; ok is false if neither is set.
func (e Edges) Vertical() (edge Edge, ok bool) {
	switch {
	case e.Has(EdgeTop):
		return EdgeTop, true
	case e.Has(EdgeBottom):
		return EdgeBottom, true
	}
	return 0, false
}

func (e Edges) String() string {
	if e.IsEmpty() {
		return "none"
	}
	var parts []string
	for _, item := range []struct {
		edge Edge
		name string
	}{
		{EdgeTop, "top"},
		{EdgeBottom, "bottom"},
		{EdgeLeft, "left"},
		{EdgeRight, "right"},
	} {
		if e.Has(item.edge) {
			parts = append(parts, item.name)
		}
	}
	return strings.Join(parts, "|")
}

// Modifiers is a keyboard modifier bitmask.
type Modifiers uint16

const (
	ModShift Modifiers = 1 << iota
	ModCaps
	ModCtrl
	ModAlt
	ModMod2
	ModMod3
	ModLogo
	ModMod5
)

// Contains reports whether every modifier in m is held.
func (mods Modifiers) Contains(m Modifiers) bool {
	return mods&m == m
}

// Linux input button codes, as delivered by evdev.
const (
	ButtonLeft   uint32 = 0x110
	ButtonRight  uint32 = 0x111
	ButtonMiddle uint32 = 0x112
)

// ButtonState distinguishes press from release.
type ButtonState int

const (
	ButtonReleased ButtonState = iota
	ButtonPressed
)

// KeyState distinguishes key press from release.
type KeyState int

const (
	KeyReleased KeyState = iota
	KeyPressed
)

// Output describes a display surface and its resolution.
type Output struct {
	ID     int
	Name   string
	Bounds Geometry
}

// Window contains metadata and geometry for a managed top-level window.
type Window struct {
	ID        WindowID
	Title     string
	Geometry  Geometry
	Activated bool
	Resizing  bool
}

// Backend abstracts the display-server operations the window manager needs.
type Backend interface {
	Outputs() ([]Output, error)
	OutputAt(p Point) (Output, error)
	TopLevelWindows() ([]WindowID, error)
	WindowTitle(id WindowID) string
	Geometry(id WindowID) (Geometry, error)
	Configure(id WindowID, g Geometry) error
	Raise(id WindowID) error
	Lower(id WindowID) error
	Focus(id WindowID) error
	Close(id WindowID) error
	WarpPointer(p Point) error
}
