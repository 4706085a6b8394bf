// Package interactive implements pointer-driven window move and resize.
//
// A Controller tracks at most one session at a time. A session starts when a
// window asks to be moved or resized, or when the user presses a bound
// pointer button over a window while holding the configured modifier. It
// ends only on a button release.
package interactive

import (
	"log/slog"
	"sync"

	"github.com/1broseidon/floatwm/internal/logging"
	"github.com/1broseidon/floatwm/internal/platform"
)

// Windows is the window registry the controller reads and mutates.
type Windows interface {
	// Geometry returns the current geometry of a window, or false if the
	// window no longer exists.
	Geometry(id platform.WindowID) (platform.Geometry, bool)
	// SetGeometry applies g. edges is empty for a plain move.
	SetGeometry(id platform.WindowID, edges platform.Edges, g platform.Geometry)
	BringToFront(id platform.WindowID)
	Focus(id platform.WindowID)
	SetResizing(id platform.WindowID, resizing bool)
	// IsBackground reports whether id is the desktop background rather than
	// a managed window.
	IsBackground(id platform.WindowID) bool
}

// Pointer repositions the on-screen cursor.
type Pointer interface {
	SetPosition(p platform.Point)
}

// Options configures a Controller. Zero fields take their defaults.
type Options struct {
	MinSize      platform.Size
	Modifier     platform.Modifiers
	MoveButton   uint32
	ResizeButton uint32
	Logger       *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.MinSize.W == 0 {
		o.MinSize.W = DefaultMinSize.W
	}
	if o.MinSize.H == 0 {
		o.MinSize.H = DefaultMinSize.H
	}
	if o.Modifier == 0 {
		o.Modifier = platform.ModCtrl
	}
	if o.MoveButton == 0 {
		o.MoveButton = platform.ButtonLeft
	}
	if o.ResizeButton == 0 {
		o.ResizeButton = platform.ButtonRight
	}
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
	return o
}

// Session is a snapshot of the controller state.
type Session struct {
	Active bool
	Window platform.WindowID
	// Grab is the last pointer position seen, used to compute motion deltas.
	Grab platform.Point
	// Edges is empty for a move and fixed for the lifetime of a resize.
	Edges platform.Edges
}

// Controller owns the interactive session. It is safe for concurrent use.
type Controller struct {
	mu      sync.Mutex
	session Session

	windows Windows
	pointer Pointer
	opts    Options
	logger  *slog.Logger
}

// New creates an idle controller.
func New(windows Windows, pointer Pointer, opts Options) *Controller {
	opts = opts.withDefaults()
	return &Controller{
		windows: windows,
		pointer: pointer,
		opts:    opts,
		logger:  opts.Logger,
	}
}

// Session returns a copy of the current session state.
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Active reports whether a move or resize is in progress.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Active
}

// UpdateOptions replaces the bindings and size floor used by later events.
// A session in progress is not affected beyond the new floor.
func (c *Controller) UpdateOptions(opts Options) {
	if opts.Logger == nil {
		opts.Logger = c.logger
	}
	opts = opts.withDefaults()
	c.mu.Lock()
	c.opts = opts
	c.logger = opts.Logger
	c.mu.Unlock()
}

// StartSession begins a session on win anchored at origin and raises the
// window. It returns false without changing anything if a session is
// already active.
func (c *Controller) StartSession(win platform.WindowID, origin platform.Point) bool {
	return c.begin(win, origin, nil)
}

// StartMove begins a move of win. It does nothing if a session is active.
func (c *Controller) StartMove(win platform.WindowID, origin platform.Point) {
	c.StartSession(win, origin)
}

// StartResize begins a resize of win along edges. With no edges the
// quadrant of the window containing origin decides them; a point on the
// exact center yields no edges and the resize has no constraint. Nothing
// happens if the window's geometry cannot be read or a session is active.
func (c *Controller) StartResize(win platform.WindowID, edges platform.Edges, origin platform.Point) {
	geom, ok := c.windows.Geometry(win)
	if !ok {
		c.logger.Debug("resize aborted: window has no geometry", "window", win)
		return
	}

	resolve := func() platform.Edges {
		if !edges.IsEmpty() {
			return edges
		}
		inferred := InferEdges(geom, origin)
		if inferred.IsEmpty() {
			c.logger.Debug("resize origin on window center, no edge inferred",
				"window", win, "x", origin.X, "y", origin.Y)
		}
		return inferred
	}

	if !c.begin(win, origin, resolve) {
		return
	}
	c.windows.SetResizing(win, true)
}

func (c *Controller) begin(win platform.WindowID, origin platform.Point, edges func() platform.Edges) bool {
	c.mu.Lock()
	if c.session.Active {
		busy := c.session.Window
		c.mu.Unlock()
		c.logger.Debug("interactive session busy", "window", win, "active_window", busy)
		return false
	}
	c.session = Session{Active: true, Window: win, Grab: origin}
	if edges != nil {
		c.session.Edges = edges()
	}
	started := c.session
	c.mu.Unlock()

	c.logger.Debug("interactive session started",
		"window", started.Window, "edges", started.Edges.String(),
		"x", origin.X, "y", origin.Y)
	c.windows.BringToFront(win)
	return true
}

// StopSession ends the active session. It is a no-op when idle.
func (c *Controller) StopSession() {
	c.mu.Lock()
	if !c.session.Active {
		c.mu.Unlock()
		return
	}
	win := c.session.Window
	c.session.Active = false
	c.session.Window = 0
	c.session.Edges = 0
	c.mu.Unlock()

	c.windows.SetResizing(win, false)
	c.logger.Debug("interactive session stopped", "window", win)
}

// OnPointerMotion moves the cursor to p and, if a session is active, moves
// or resizes its window by the distance travelled since the last event. It
// reports whether the event was consumed.
func (c *Controller) OnPointerMotion(p platform.Point) bool {
	c.pointer.SetPosition(p)

	c.mu.Lock()
	defer c.mu.Unlock()

	active := c.session.Active
	if active {
		c.applyMotionLocked(p)
	}
	c.session.Grab = p
	return active
}

func (c *Controller) applyMotionLocked(p platform.Point) {
	s := c.session
	dx := p.X - s.Grab.X
	dy := p.Y - s.Grab.Y

	geom, ok := c.windows.Geometry(s.Window)
	if !ok {
		c.logger.Debug("motion ignored: window has no geometry", "window", s.Window)
		return
	}

	if s.Edges.IsEmpty() {
		c.windows.SetGeometry(s.Window, 0, MoveGeometry(geom, dx, dy))
		return
	}
	c.windows.SetGeometry(s.Window, s.Edges, ResizeGeometry(geom, s.Edges, dx, dy, c.opts.MinSize))
}

// OnPointerButton starts a move or resize when a bound button is pressed
// over a window with the modifier held, and ends the session on any
// release. It reports whether a session is active afterwards.
func (c *Controller) OnPointerButton(win platform.WindowID, mods platform.Modifiers, button uint32, state platform.ButtonState, p platform.Point) bool {
	c.mu.Lock()
	opts := c.opts
	c.mu.Unlock()

	if state == platform.ButtonPressed {
		if !c.windows.IsBackground(win) && mods.Contains(opts.Modifier) {
			c.windows.Focus(win)
			switch button {
			case opts.MoveButton:
				c.StartMove(win, p)
			case opts.ResizeButton:
				c.StartResize(win, 0, p)
			}
		}
	} else {
		c.StopSession()
	}

	return c.Active()
}
