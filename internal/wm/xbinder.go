package wm

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/mousebind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"

	"github.com/1broseidon/floatwm/internal/hotkeys"
	"github.com/1broseidon/floatwm/internal/platform"
	"github.com/1broseidon/floatwm/internal/x11"
)

// _NET_WM_MOVERESIZE directions.
const (
	moveResizeSizeTopLeft     = 0
	moveResizeSizeTop         = 1
	moveResizeSizeTopRight    = 2
	moveResizeSizeRight       = 3
	moveResizeSizeBottomRight = 4
	moveResizeSizeBottom      = 5
	moveResizeSizeBottomLeft  = 6
	moveResizeSizeLeft        = 7
	moveResizeMove            = 8
	moveResizeSizeKeyboard    = 9
	moveResizeMoveKeyboard    = 10
	moveResizeCancel          = 11
)

// moveResizeEdges maps a _NET_WM_MOVERESIZE direction to resize edges. ok is
// false for directions that do not start a pointer-driven session.
func moveResizeEdges(direction uint32) (edges platform.Edges, move bool, ok bool) {
	switch direction {
	case moveResizeSizeTopLeft:
		return platform.EdgesOf(platform.EdgeTop, platform.EdgeLeft), false, true
	case moveResizeSizeTop:
		return platform.EdgesOf(platform.EdgeTop), false, true
	case moveResizeSizeTopRight:
		return platform.EdgesOf(platform.EdgeTop, platform.EdgeRight), false, true
	case moveResizeSizeRight:
		return platform.EdgesOf(platform.EdgeRight), false, true
	case moveResizeSizeBottomRight:
		return platform.EdgesOf(platform.EdgeBottom, platform.EdgeRight), false, true
	case moveResizeSizeBottom:
		return platform.EdgesOf(platform.EdgeBottom), false, true
	case moveResizeSizeBottomLeft:
		return platform.EdgesOf(platform.EdgeBottom, platform.EdgeLeft), false, true
	case moveResizeSizeLeft:
		return platform.EdgesOf(platform.EdgeLeft), false, true
	case moveResizeMove:
		return 0, true, true
	}
	return 0, false, false
}

// cursorShape picks the drag cursor for a session's edges.
func cursorShape(edges platform.Edges) uint16 {
	h, hok := edges.Horizontal()
	v, vok := edges.Vertical()
	switch {
	case vok && v == platform.EdgeTop && hok && h == platform.EdgeLeft:
		return x11.CursorTopLeft
	case vok && v == platform.EdgeTop && hok && h == platform.EdgeRight:
		return x11.CursorTopRight
	case vok && v == platform.EdgeBottom && hok && h == platform.EdgeLeft:
		return x11.CursorBottomLeft
	case vok && v == platform.EdgeBottom && hok && h == platform.EdgeRight:
		return x11.CursorBottomRight
	case vok && v == platform.EdgeTop:
		return x11.CursorTop
	case vok && v == platform.EdgeBottom:
		return x11.CursorBottom
	case hok && h == platform.EdgeLeft:
		return x11.CursorLeft
	case hok && h == platform.EdgeRight:
		return x11.CursorRight
	}
	return x11.CursorMove
}

// XBinder translates X11 events into Manager calls.
type XBinder struct {
	conn   *x11.Connection
	mgr    *Manager
	keys   *hotkeys.Handler
	logger *slog.Logger

	// bindMu serializes Rebind calls coming from reloads.
	bindMu sync.Mutex

	mu sync.Mutex
	// requested is set while the pointer is grabbed for a session the client
	// asked for with _NET_WM_MOVERESIZE.
	requested     bool
	requestButton xproto.Button
}

// NewXBinder wires mgr to the X11 connection behind backend.
func NewXBinder(backend *platform.LinuxBackend, mgr *Manager, logger *slog.Logger) (*XBinder, error) {
	conn := backend.Conn()
	if conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	keys, err := hotkeys.NewHandler(backend)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &XBinder{
		conn:   conn,
		mgr:    mgr,
		keys:   keys,
		logger: logger,
	}, nil
}

// Start takes over window management, adopts windows that are already
// mapped and installs every binding from opts.
func (b *XBinder) Start(opts Options) error {
	if err := b.conn.BecomeWM(); err != nil {
		return err
	}
	if err := b.conn.AnnounceWM("floatwm"); err != nil {
		b.logger.Warn("failed to publish EWMH support", "error", err)
	}

	b.mgr.OnStackChange(b.publishClientList)
	b.connectRootHandlers()

	if err := b.conn.WatchScreenChanges(); err != nil {
		b.logger.Debug("randr screen change notifications unavailable", "error", err)
	}

	if err := b.Rebind(opts); err != nil {
		return err
	}

	existing, err := b.conn.TopLevelWindows()
	if err != nil {
		return fmt.Errorf("failed to list existing windows: %w", err)
	}
	for _, win := range existing {
		if b.conn.IsNormalWindow(win) {
			b.manage(win)
		}
	}
	return nil
}

// Rebind replaces the key and button bindings.
func (b *XBinder) Rebind(opts Options) error {
	b.bindMu.Lock()
	defer b.bindMu.Unlock()

	xu := b.conn.XUtil
	b.keys.UnregisterAll()
	mousebind.Detach(xu, b.conn.Root)

	for _, key := range []string{opts.Keys.Close, opts.Keys.Lower, opts.Keys.Quit, opts.Keys.Spawn} {
		key := key
		seq := hotkeys.Sequence(opts.Modifier, key)
		err := b.keys.RegisterFunc(seq, func(mods platform.Modifiers) {
			focused := b.mgr.Status().Focused
			b.mgr.KeyboardKey(focused, mods, key, platform.KeyPressed)
		})
		if err != nil {
			return fmt.Errorf("failed to bind %s: %w", seq, err)
		}
	}

	ctrl := opts.Controller
	for _, button := range []uint32{ctrl.MoveButton, ctrl.ResizeButton} {
		if err := b.bindDrag(ctrl.Modifier, button); err != nil {
			return err
		}
	}
	return nil
}

func (b *XBinder) bindDrag(mods platform.Modifiers, button uint32) error {
	seq, err := hotkeys.ButtonSequence(mods, button)
	if err != nil {
		return err
	}
	xu := b.conn.XUtil

	begin := func(xu *xgbutil.XUtil, rx, ry, ex, ey int) (bool, xproto.Cursor) {
		_, _, child, err := b.conn.QueryPointer()
		if err != nil {
			b.logger.Debug("query pointer failed", "error", err)
			return false, 0
		}
		p := platform.Point{X: rx, Y: ry}
		if !b.mgr.BeginDrag(platform.WindowID(child), mods, button, p) {
			return false, 0
		}
		return true, b.conn.Cursor(cursorShape(b.mgr.Controller().Session().Edges))
	}
	step := func(xu *xgbutil.XUtil, rx, ry, ex, ey int) {
		b.mgr.PointerMotion(platform.Point{X: rx, Y: ry})
	}
	end := func(xu *xgbutil.XUtil, rx, ry, ex, ey int) {
		b.mgr.PointerButton(0, mods, button, platform.ButtonReleased, platform.Point{X: rx, Y: ry})
	}

	mousebind.Drag(xu, xu.Dummy(), b.conn.Root, seq, true, begin, step, end)
	return nil
}

func (b *XBinder) connectRootHandlers() {
	xu := b.conn.XUtil
	root := b.conn.Root

	xevent.MapRequestFun(func(xu *xgbutil.XUtil, ev xevent.MapRequestEvent) {
		win := ev.Window
		if !b.conn.IsOverrideRedirect(win) && b.conn.IsNormalWindow(win) {
			b.manage(win)
			return
		}
		if err := b.conn.MapWindow(win); err != nil {
			b.logger.Debug("map failed", "window", uint32(win), "error", err)
		}
	}).Connect(xu, root)

	xevent.ConfigureRequestFun(func(xu *xgbutil.XUtil, ev xevent.ConfigureRequestEvent) {
		if err := b.conn.ConfigureRequest(*ev.ConfigureRequestEvent); err != nil {
			b.logger.Debug("configure request failed", "window", uint32(ev.Window), "error", err)
		}
	}).Connect(xu, root)

	xevent.UnmapNotifyFun(func(xu *xgbutil.XUtil, ev xevent.UnmapNotifyEvent) {
		b.forget(ev.Window)
	}).Connect(xu, root)

	xevent.DestroyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.DestroyNotifyEvent) {
		b.forget(ev.Window)
	}).Connect(xu, root)

	xevent.ConfigureNotifyFun(func(xu *xgbutil.XUtil, ev xevent.ConfigureNotifyEvent) {
		if ev.Window == root {
			b.mgr.OutputResolution()
		}
	}).Connect(xu, root)

	xevent.ClientMessageFun(b.onClientMessage).Connect(xu, root)

	// Only delivered while the pointer is grabbed for a client request.
	xevent.MotionNotifyFun(func(xu *xgbutil.XUtil, ev xevent.MotionNotifyEvent) {
		if b.isRequested() {
			b.mgr.PointerMotion(platform.Point{X: int(ev.RootX), Y: int(ev.RootY)})
		}
	}).Connect(xu, root)

	xevent.ButtonReleaseFun(func(xu *xgbutil.XUtil, ev xevent.ButtonReleaseEvent) {
		if !b.endsRequest(ev.Detail) {
			return
		}
		b.releaseRequest()
		button, _ := hotkeys.EvdevButton(ev.Detail)
		p := platform.Point{X: int(ev.RootX), Y: int(ev.RootY)}
		b.mgr.PointerButton(0, hotkeys.ModifiersFromState(ev.State), button, platform.ButtonReleased, p)
	}).Connect(xu, root)

	xevent.HookFun(func(xu *xgbutil.XUtil, event interface{}) bool {
		if _, ok := event.(randr.ScreenChangeNotifyEvent); ok {
			b.mgr.OutputResolution()
		}
		return true
	}).Connect(xu)
}

func (b *XBinder) onClientMessage(xu *xgbutil.XUtil, ev xevent.ClientMessageEvent) {
	name, err := xprop.AtomName(xu, ev.Type)
	if err != nil {
		return
	}
	data := ev.Data.Data32
	win := platform.WindowID(ev.Window)

	switch name {
	case "_NET_ACTIVE_WINDOW":
		if b.mgr.Managed(win) {
			b.mgr.Raise(win)
			b.mgr.Focus(win)
		}
	case "_NET_CLOSE_WINDOW":
		if b.mgr.Managed(win) {
			if err := b.conn.CloseWindow(ev.Window); err != nil {
				b.logger.Debug("close failed", "window", uint32(win), "error", err)
			}
		}
	case "_NET_WM_MOVERESIZE":
		if len(data) < 4 {
			return
		}
		b.onMoveResize(win, data)
	}
}

func (b *XBinder) onMoveResize(win platform.WindowID, data []uint32) {
	direction := data[2]
	if direction == moveResizeCancel {
		b.StopSession()
		return
	}
	if direction == moveResizeSizeKeyboard || direction == moveResizeMoveKeyboard {
		b.logger.Debug("keyboard move/resize not supported", "window", win)
		return
	}
	edges, move, ok := moveResizeEdges(direction)
	if !ok {
		return
	}

	origin := platform.Point{X: int(int32(data[0])), Y: int(int32(data[1]))}
	if move {
		b.mgr.ViewRequestMove(win, origin)
	} else {
		b.mgr.ViewRequestResize(win, edges, origin)
	}

	session := b.mgr.Controller().Session()
	if !session.Active || session.Window != win {
		return
	}

	cursor := b.conn.Cursor(cursorShape(session.Edges))
	grabbed, err := mousebind.GrabPointer(b.conn.XUtil, b.conn.Root, 0, cursor)
	if err != nil || !grabbed {
		b.logger.Debug("pointer grab for client move/resize failed", "window", win, "error", err)
		b.mgr.StopSession()
		return
	}

	b.mu.Lock()
	b.requested = true
	b.requestButton = xproto.Button(data[3])
	b.mu.Unlock()
}

// StopSession ends any session and releases a client-requested pointer grab.
func (b *XBinder) StopSession() {
	if b.isRequested() {
		b.releaseRequest()
	}
	b.mgr.StopSession()
}

func (b *XBinder) isRequested() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requested
}

// endsRequest reports whether releasing button ends the client-requested
// session. A request naming button 0 ends on any release.
func (b *XBinder) endsRequest(button xproto.Button) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requested && (b.requestButton == 0 || b.requestButton == button)
}

func (b *XBinder) releaseRequest() {
	b.mu.Lock()
	b.requested = false
	b.requestButton = 0
	b.mu.Unlock()
	mousebind.UngrabPointer(b.conn.XUtil)
}

func (b *XBinder) manage(win xproto.Window) {
	if err := b.conn.SelectClientEvents(win); err != nil {
		b.logger.Debug("select client events failed", "window", uint32(win), "error", err)
	}
	if err := b.conn.MapWindow(win); err != nil {
		b.logger.Debug("map failed", "window", uint32(win), "error", err)
		return
	}
	b.mgr.ViewCreated(platform.WindowID(win))
}

func (b *XBinder) forget(win xproto.Window) {
	if b.mgr.Managed(platform.WindowID(win)) {
		b.mgr.ViewDestroyed(platform.WindowID(win))
	}
}

func (b *XBinder) publishClientList(ids []platform.WindowID) {
	wins := make([]xproto.Window, len(ids))
	for i, id := range ids {
		wins[i] = xproto.Window(id)
	}
	if err := b.conn.SetClientList(wins); err != nil {
		b.logger.Debug("failed to publish client list", "error", err)
	}
}
