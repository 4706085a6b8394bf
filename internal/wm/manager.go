// Package wm keeps the set of managed windows and routes window, keyboard
// and pointer events to the interactive move/resize controller.
package wm

import (
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/floatwm/internal/config"
	"github.com/1broseidon/floatwm/internal/interactive"
	"github.com/1broseidon/floatwm/internal/logging"
	"github.com/1broseidon/floatwm/internal/platform"
	"github.com/1broseidon/floatwm/internal/tiling"
)

// Options configures a Manager.
type Options struct {
	Layout          config.LayoutMode
	GapSize         int
	ArrangeOnMap    bool
	TerminalCommand string
	// Modifier gates the keyboard actions.
	Modifier   platform.Modifiers
	Keys       config.Keys
	Controller interactive.Options
}

// OptionsFromConfig derives manager options from a validated config.
func OptionsFromConfig(cfg *config.Config) Options {
	mods := cfg.ModifierMask()
	return Options{
		Layout:          cfg.Layout,
		GapSize:         cfg.GapSize,
		ArrangeOnMap:    cfg.ArrangeOnMap,
		TerminalCommand: cfg.TerminalCommand,
		Modifier:        mods,
		Keys:            cfg.Keys,
		Controller: interactive.Options{
			MinSize:      cfg.MinSize(),
			Modifier:     mods,
			MoveButton:   cfg.MoveButtonCode(),
			ResizeButton: cfg.ResizeButtonCode(),
		},
	}
}

type view struct {
	activated bool
	resizing  bool
}

// Status is a point-in-time summary of the manager.
type Status struct {
	Started time.Time
	Windows int
	Focused platform.WindowID
	Layout  config.LayoutMode
	Session interactive.Session
}

// Manager owns the registry of managed windows.
//
// Lock order: the controller's lock is taken before the manager's. The
// manager never calls into the controller while holding its own lock.
type Manager struct {
	mu      sync.Mutex
	stack   []platform.WindowID // bottom to top
	views   map[platform.WindowID]*view
	focused platform.WindowID
	opts    Options

	backend platform.Backend
	ctrl    *interactive.Controller
	spawner Spawner
	logger  *slog.Logger
	started time.Time

	onQuit  func()
	onStack func([]platform.WindowID)
}

// NewManager creates a manager with no windows.
func NewManager(backend platform.Backend, opts Options, spawner Spawner, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.Discard()
	}
	if spawner == nil {
		spawner = ExecSpawner{}
	}
	m := &Manager{
		views:   make(map[platform.WindowID]*view),
		opts:    opts,
		backend: backend,
		spawner: spawner,
		logger:  logger,
		started: time.Now(),
	}
	ctrlOpts := opts.Controller
	ctrlOpts.Logger = logger.With("component", "interactive")
	m.ctrl = interactive.New(windowOps{m}, pointerOps{m}, ctrlOpts)
	return m
}

// Controller returns the interactive session controller.
func (m *Manager) Controller() *interactive.Controller {
	return m.ctrl
}

// OnQuit sets the function called by the quit key.
func (m *Manager) OnQuit(f func()) {
	m.mu.Lock()
	m.onQuit = f
	m.mu.Unlock()
}

// OnStackChange sets the function called with the bottom-to-top window list
// whenever it changes.
func (m *Manager) OnStackChange(f func([]platform.WindowID)) {
	m.mu.Lock()
	m.onStack = f
	m.mu.Unlock()
}

// UpdateOptions applies reloaded configuration.
func (m *Manager) UpdateOptions(opts Options) {
	m.mu.Lock()
	m.opts = opts
	m.mu.Unlock()

	ctrlOpts := opts.Controller
	ctrlOpts.Logger = m.logger.With("component", "interactive")
	m.ctrl.UpdateOptions(ctrlOpts)
}

// Managed reports whether id is a managed window.
func (m *Manager) Managed(id platform.WindowID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.views[id]
	return ok
}

// IDs returns the managed windows, bottom to top.
func (m *Manager) IDs() []platform.WindowID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]platform.WindowID(nil), m.stack...)
}

// ViewCreated starts managing id: it is raised, focused and the outputs are
// re-arranged. It returns false for the background.
func (m *Manager) ViewCreated(id platform.WindowID) bool {
	if id == 0 {
		return false
	}

	m.mu.Lock()
	if _, ok := m.views[id]; ok {
		m.mu.Unlock()
		return true
	}
	m.views[id] = &view{}
	m.stack = append(m.stack, id)
	auto := m.autoArrangeLocked()
	m.mu.Unlock()

	m.logger.Debug("view created", "window", id)
	if err := m.backend.Raise(id); err != nil {
		m.logger.Debug("raise failed", "window", id, "error", err)
	}
	m.focus(id)
	m.publishStack()
	if auto {
		m.arrange()
	}
	return true
}

// ViewDestroyed forgets id, ends a session on it and focuses the topmost
// remaining window.
func (m *Manager) ViewDestroyed(id platform.WindowID) {
	m.mu.Lock()
	if _, ok := m.views[id]; !ok {
		m.mu.Unlock()
		return
	}
	delete(m.views, id)
	m.stack = removeID(m.stack, id)
	if m.focused == id {
		m.focused = 0
	}
	auto := m.autoArrangeLocked()
	m.mu.Unlock()

	m.logger.Debug("view destroyed", "window", id)
	if s := m.ctrl.Session(); s.Active && s.Window == id {
		m.ctrl.StopSession()
	}

	top, _ := m.TopmostView(0)
	m.focus(top)
	m.publishStack()
	if auto {
		m.arrange()
	}
}

// ViewFocus records whether id is the activated window.
func (m *Manager) ViewFocus(id platform.WindowID, focused bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.views[id]; ok {
		v.activated = focused
	}
}

// ViewRequestMove starts a move requested by the client itself.
func (m *Manager) ViewRequestMove(id platform.WindowID, origin platform.Point) {
	if !m.Managed(id) {
		return
	}
	m.ctrl.StartMove(id, origin)
}

// ViewRequestResize starts a resize requested by the client itself.
func (m *Manager) ViewRequestResize(id platform.WindowID, edges platform.Edges, origin platform.Point) {
	if !m.Managed(id) {
		return
	}
	m.ctrl.StartResize(id, edges, origin)
}

// OutputResolution re-arranges after an output changed size.
func (m *Manager) OutputResolution() {
	m.mu.Lock()
	auto := m.autoArrangeLocked()
	m.mu.Unlock()
	if auto {
		m.arrange()
	}
}

// PointerButton forwards a button event to the controller and reports
// whether it was consumed.
func (m *Manager) PointerButton(id platform.WindowID, mods platform.Modifiers, button uint32, state platform.ButtonState, p platform.Point) bool {
	return m.ctrl.OnPointerButton(id, mods, button, state, p)
}

// BeginDrag starts a modifier drag over id. It refuses while a session is
// already active, so a session the window requested keeps its own release.
func (m *Manager) BeginDrag(id platform.WindowID, mods platform.Modifiers, button uint32, p platform.Point) bool {
	if m.ctrl.Active() {
		return false
	}
	return m.ctrl.OnPointerButton(id, mods, button, platform.ButtonPressed, p)
}

// PointerMotion forwards pointer motion to the controller and reports
// whether it was consumed.
func (m *Manager) PointerMotion(p platform.Point) bool {
	return m.ctrl.OnPointerMotion(p)
}

// StopSession ends any interactive session. It recovers from a session whose
// button release was never delivered.
func (m *Manager) StopSession() {
	m.ctrl.StopSession()
}

// ActiveSession returns the window held by the interactive session, if any.
func (m *Manager) ActiveSession() (platform.WindowID, bool) {
	s := m.ctrl.Session()
	return s.Window, s.Active
}

// KeyboardKey runs the action bound to key when the modifier is held. It
// reports whether the key was consumed.
func (m *Manager) KeyboardKey(id platform.WindowID, mods platform.Modifiers, key string, state platform.KeyState) bool {
	m.mu.Lock()
	opts := m.opts
	quit := m.onQuit
	_, managed := m.views[id]
	m.mu.Unlock()

	if state != platform.KeyPressed || !mods.Contains(opts.Modifier) {
		return false
	}

	switch key {
	case opts.Keys.Close:
		if managed {
			if err := m.backend.Close(id); err != nil {
				m.logger.Warn("close failed", "window", id, "error", err)
			}
		}
		return true
	case opts.Keys.Lower:
		if managed {
			m.Lower(id)
			top, _ := m.TopmostView(0)
			m.focus(top)
		}
		return true
	case opts.Keys.Quit:
		m.logger.Info("quit requested")
		if quit != nil {
			quit()
		}
		return true
	case opts.Keys.Spawn:
		if err := m.spawner.Spawn(opts.TerminalCommand); err != nil {
			m.logger.Warn("spawn failed", "command", opts.TerminalCommand, "error", err)
		}
		return true
	}
	return false
}

// TopmostView returns the window offset positions from the top of the
// stack, wrapping around. It returns false when nothing is managed.
func (m *Manager) TopmostView(offset int) (platform.WindowID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.stack)
	if n == 0 {
		return 0, false
	}
	idx := ((n-1+offset)%n + n) % n
	return m.stack[idx], true
}

// Focus gives id keyboard focus and marks it activated.
func (m *Manager) Focus(id platform.WindowID) {
	m.focus(id)
}

// Raise moves id to the top of the stack.
func (m *Manager) Raise(id platform.WindowID) {
	m.mu.Lock()
	if _, ok := m.views[id]; !ok {
		m.mu.Unlock()
		return
	}
	m.stack = append(removeID(m.stack, id), id)
	m.mu.Unlock()

	if err := m.backend.Raise(id); err != nil {
		m.logger.Debug("raise failed", "window", id, "error", err)
	}
	m.publishStack()
}

// Lower moves id to the bottom of the stack.
func (m *Manager) Lower(id platform.WindowID) {
	m.mu.Lock()
	if _, ok := m.views[id]; !ok {
		m.mu.Unlock()
		return
	}
	m.stack = append([]platform.WindowID{id}, removeID(m.stack, id)...)
	m.mu.Unlock()

	if err := m.backend.Lower(id); err != nil {
		m.logger.Debug("lower failed", "window", id, "error", err)
	}
	m.publishStack()
}

// Windows returns a snapshot of managed windows, bottom to top. Windows
// whose geometry cannot be read are skipped.
func (m *Manager) Windows() []platform.Window {
	m.mu.Lock()
	ids := append([]platform.WindowID(nil), m.stack...)
	flags := make(map[platform.WindowID]view, len(ids))
	for _, id := range ids {
		flags[id] = *m.views[id]
	}
	m.mu.Unlock()

	out := make([]platform.Window, 0, len(ids))
	for _, id := range ids {
		g, err := m.backend.Geometry(id)
		if err != nil {
			continue
		}
		out = append(out, platform.Window{
			ID:        id,
			Title:     m.backend.WindowTitle(id),
			Geometry:  g,
			Activated: flags[id].activated,
			Resizing:  flags[id].resizing,
		})
	}
	return out
}

// Status returns a summary for status reporting.
func (m *Manager) Status() Status {
	session := m.ctrl.Session()

	m.mu.Lock()
	defer m.mu.Unlock()
	return Status{
		Started: m.started,
		Windows: len(m.stack),
		Focused: m.focused,
		Layout:  m.opts.Layout,
		Session: session,
	}
}

// Arrange lays out every output with the configured layout.
func (m *Manager) Arrange() {
	m.arrange()
}

func (m *Manager) arrange() {
	m.mu.Lock()
	ids := append([]platform.WindowID(nil), m.stack...)
	layout := m.opts.Layout
	gap := m.opts.GapSize
	m.mu.Unlock()

	if layout == config.LayoutNone || len(ids) == 0 {
		return
	}

	outputs, err := m.backend.Outputs()
	if err != nil || len(outputs) == 0 {
		m.logger.Warn("arrange skipped: no outputs", "error", err)
		return
	}

	// Windows stay on the output holding their center.
	perOutput := make([][]platform.WindowID, len(outputs))
	for _, id := range ids {
		idx := 0
		if g, err := m.backend.Geometry(id); err == nil {
			center := platform.Point{
				X: g.Origin.X + int(g.Size.W)/2,
				Y: g.Origin.Y + int(g.Size.H)/2,
			}
			for i, out := range outputs {
				if out.Bounds.Contains(center) {
					idx = i
					break
				}
			}
		}
		perOutput[idx] = append(perOutput[idx], id)
	}

	for i, out := range outputs {
		wins := perOutput[i]
		geoms, err := tiling.Arrange(layout, out.Bounds, len(wins), gap)
		if err != nil {
			m.logger.Warn("arrange failed", "output", out.Name, "error", err)
			continue
		}
		for j, g := range geoms {
			if err := m.backend.Configure(wins[j], g); err != nil {
				m.logger.Debug("configure failed", "window", wins[j], "error", err)
			}
		}
	}
}

func (m *Manager) autoArrangeLocked() bool {
	return m.opts.ArrangeOnMap && m.opts.Layout != config.LayoutNone
}

func (m *Manager) focus(id platform.WindowID) {
	m.mu.Lock()
	prev := m.focused
	if id != 0 {
		if _, ok := m.views[id]; !ok {
			m.mu.Unlock()
			return
		}
	}
	m.focused = id
	m.mu.Unlock()

	if err := m.backend.Focus(id); err != nil {
		m.logger.Debug("focus failed", "window", id, "error", err)
	}
	if prev != 0 && prev != id {
		m.ViewFocus(prev, false)
	}
	if id != 0 {
		m.ViewFocus(id, true)
	}
}

func (m *Manager) publishStack() {
	m.mu.Lock()
	f := m.onStack
	ids := append([]platform.WindowID(nil), m.stack...)
	m.mu.Unlock()
	if f != nil {
		f(ids)
	}
}

func removeID(ids []platform.WindowID, id platform.WindowID) []platform.WindowID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// windowOps adapts the manager to the controller's window registry.
type windowOps struct{ m *Manager }

func (w windowOps) Geometry(id platform.WindowID) (platform.Geometry, bool) {
	if !w.m.Managed(id) {
		return platform.Geometry{}, false
	}
	g, err := w.m.backend.Geometry(id)
	if err != nil {
		return platform.Geometry{}, false
	}
	return g, true
}

func (w windowOps) SetGeometry(id platform.WindowID, edges platform.Edges, g platform.Geometry) {
	if err := w.m.backend.Configure(id, g); err != nil {
		w.m.logger.Debug("configure failed", "window", id, "edges", edges.String(), "error", err)
	}
}

func (w windowOps) BringToFront(id platform.WindowID) {
	w.m.Raise(id)
}

func (w windowOps) Focus(id platform.WindowID) {
	w.m.focus(id)
}

func (w windowOps) SetResizing(id platform.WindowID, resizing bool) {
	w.m.mu.Lock()
	defer w.m.mu.Unlock()
	if v, ok := w.m.views[id]; ok {
		v.resizing = resizing
	}
}

func (w windowOps) IsBackground(id platform.WindowID) bool {
	return id == 0 || !w.m.Managed(id)
}

// pointerOps moves the on-screen cursor through the backend.
type pointerOps struct{ m *Manager }

func (p pointerOps) SetPosition(pt platform.Point) {
	if err := p.m.backend.WarpPointer(pt); err != nil {
		p.m.logger.Debug("warp pointer failed", "x", pt.X, "y", pt.Y, "error", err)
	}
}
