package interactive

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/1broseidon/floatwm/internal/platform"
)

type setCall struct {
	ID    platform.WindowID
	Edges platform.Edges
	Geom  platform.Geometry
}

type fakeWindows struct {
	mu       sync.Mutex
	geoms    map[platform.WindowID]platform.Geometry
	resizing map[platform.WindowID]bool
	raised   []platform.WindowID
	focused  []platform.WindowID
	sets     []setCall
}

func newFakeWindows() *fakeWindows {
	return &fakeWindows{
		geoms:    make(map[platform.WindowID]platform.Geometry),
		resizing: make(map[platform.WindowID]bool),
	}
}

func (f *fakeWindows) add(id platform.WindowID, x, y int, w, h uint32) {
	f.geoms[id] = geom(x, y, w, h)
}

func (f *fakeWindows) Geometry(id platform.WindowID) (platform.Geometry, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.geoms[id]
	return g, ok
}

func (f *fakeWindows) SetGeometry(id platform.WindowID, edges platform.Edges, g platform.Geometry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.geoms[id] = g
	f.sets = append(f.sets, setCall{ID: id, Edges: edges, Geom: g})
}

func (f *fakeWindows) BringToFront(id platform.WindowID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.raised = append(f.raised, id)
}

func (f *fakeWindows) Focus(id platform.WindowID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.focused = append(f.focused, id)
}

func (f *fakeWindows) SetResizing(id platform.WindowID, resizing bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resizing[id] = resizing
}

func (f *fakeWindows) IsBackground(id platform.WindowID) bool {
	return id == 0
}

type fakePointer struct {
	positions []platform.Point
}

func (p *fakePointer) SetPosition(pt platform.Point) {
	p.positions = append(p.positions, pt)
}

func geom(x, y int, w, h uint32) platform.Geometry {
	return platform.Geometry{Origin: platform.Point{X: x, Y: y}, Size: platform.Size{W: w, H: h}}
}

func pt(x, y int) platform.Point {
	return platform.Point{X: x, Y: y}
}

func newTestController() (*Controller, *fakeWindows, *fakePointer) {
	windows := newFakeWindows()
	pointer := &fakePointer{}
	return New(windows, pointer, Options{}), windows, pointer
}

func TestStartSession_RejectsSecondStart(t *testing.T) {
	c, windows, _ := newTestController()
	windows.add(1, 0, 0, 200, 100)
	windows.add(2, 300, 0, 200, 100)

	if !c.StartSession(1, pt(10, 10)) {
		t.Fatalf("expected first start to succeed")
	}
	before := c.Session()

	if c.StartSession(2, pt(50, 50)) {
		t.Fatalf("expected second start to be rejected")
	}
	c.StartMove(2, pt(60, 60))
	c.StartResize(2, platform.EdgesOf(platform.EdgeRight), pt(70, 70))

	if diff := cmp.Diff(before, c.Session()); diff != "" {
		t.Fatalf("session changed by rejected starts (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]platform.WindowID{1}, windows.raised); diff != "" {
		t.Fatalf("unexpected raises (-want +got):\n%s", diff)
	}
	if windows.resizing[2] {
		t.Fatalf("rejected resize must not mark window as resizing")
	}
}

func TestStopSession_IdempotentWhenIdle(t *testing.T) {
	c, windows, _ := newTestController()
	for i := 0; i < 3; i++ {
		c.StopSession()
	}
	if diff := cmp.Diff(Session{}, c.Session()); diff != "" {
		t.Fatalf("idle stop changed state (-want +got):\n%s", diff)
	}
	if len(windows.resizing) != 0 {
		t.Fatalf("idle stop touched window state: %v", windows.resizing)
	}
}

func TestStopSession_ClearsResizingAndEdges(t *testing.T) {
	c, windows, _ := newTestController()
	windows.add(1, 0, 0, 100, 100)

	c.StartResize(1, platform.EdgesOf(platform.EdgeBottom), pt(50, 90))
	if !windows.resizing[1] {
		t.Fatalf("expected resizing flag to be set")
	}

	c.StopSession()
	got := c.Session()
	if got.Active || got.Window != 0 || !got.Edges.IsEmpty() {
		t.Fatalf("expected idle session, got %+v", got)
	}
	if windows.resizing[1] {
		t.Fatalf("expected resizing flag to be cleared")
	}
}

func TestMove_AccumulatesDeltas(t *testing.T) {
	c, windows, _ := newTestController()
	windows.add(1, 100, 50, 300, 200)

	c.StartMove(1, pt(0, 0))
	path := []platform.Point{pt(5, 3), pt(2, 10), pt(-20, 10), pt(-7, -4)}
	for _, p := range path {
		if !c.OnPointerMotion(p) {
			t.Fatalf("motion during move should be consumed")
		}
	}

	got, _ := windows.Geometry(1)
	want := geom(100-7, 50-4, 300, 200)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("geometry after move (-want +got):\n%s", diff)
	}
	for _, call := range windows.sets {
		if !call.Edges.IsEmpty() {
			t.Fatalf("move must apply geometry with empty edges, got %v", call.Edges)
		}
		if call.Geom.Size != (platform.Size{W: 300, H: 200}) {
			t.Fatalf("move changed size: %+v", call.Geom.Size)
		}
	}
}

func TestResize_RightEdgeNeverBelowFloor(t *testing.T) {
	tests := []struct {
		name string
		dx   int
		want uint32
	}{
		{"grow", 40, 140},
		{"shrink to floor", -20, 80},
		{"shrink past floor is discarded", -50, 100},
		{"far past floor is discarded", -1000, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, windows, _ := newTestController()
			windows.add(1, 10, 10, 100, 100)

			c.StartResize(1, platform.EdgesOf(platform.EdgeRight), pt(110, 50))
			c.OnPointerMotion(pt(110+tt.dx, 50))

			got, _ := windows.Geometry(1)
			if got.Size.W != tt.want {
				t.Fatalf("width = %d, want %d", got.Size.W, tt.want)
			}
			if got.Origin.X != 10 {
				t.Fatalf("right-edge resize moved origin to %d", got.Origin.X)
			}
			if last := windows.sets[len(windows.sets)-1]; last.Edges != platform.EdgesOf(platform.EdgeRight) {
				t.Fatalf("resize tagged with %v, want right", last.Edges)
			}
		})
	}
}

func TestResize_LeftAndTopKeepOppositeEdgeAnchored(t *testing.T) {
	c, windows, _ := newTestController()
	windows.add(1, 100, 100, 200, 100)

	c.StartResize(1, platform.EdgesOf(platform.EdgeTop, platform.EdgeLeft), pt(100, 100))
	c.OnPointerMotion(pt(130, 90))

	got, _ := windows.Geometry(1)
	if diff := cmp.Diff(geom(130, 90, 170, 110), got); diff != "" {
		t.Fatalf("after first drag (-want +got):\n%s", diff)
	}

	c.OnPointerMotion(pt(1000, 1000))
	got, _ = windows.Geometry(1)
	if diff := cmp.Diff(geom(130, 90, 170, 110), got); diff != "" {
		t.Fatalf("drag below minimum should leave geometry alone (-want +got):\n%s", diff)
	}

	// The pointer baseline followed the discarded motion, so a small
	// step back now grows the window from where it stands.
	c.OnPointerMotion(pt(990, 995))
	got, _ = windows.Geometry(1)
	if diff := cmp.Diff(geom(120, 85, 180, 115), got); diff != "" {
		t.Fatalf("after step back (-want +got):\n%s", diff)
	}
}

func TestResize_LeftEdgeBelowMinimumIsDiscarded(t *testing.T) {
	c, windows, _ := newTestController()
	windows.add(1, 10, 10, 100, 100)

	c.StartResize(1, platform.EdgesOf(platform.EdgeLeft), pt(10, 50))
	c.OnPointerMotion(pt(60, 50))

	got, _ := windows.Geometry(1)
	if diff := cmp.Diff(geom(10, 10, 100, 100), got); diff != "" {
		t.Fatalf("geometry (-want +got):\n%s", diff)
	}
}

func TestResize_UndersizedWindowDiscardsSmallGrowth(t *testing.T) {
	c, windows, _ := newTestController()
	windows.add(1, 0, 0, 50, 100)

	c.StartResize(1, platform.EdgesOf(platform.EdgeRight), pt(50, 50))
	c.OnPointerMotion(pt(60, 50))

	got, _ := windows.Geometry(1)
	if got.Size.W != 50 {
		t.Fatalf("width = %d, want 50", got.Size.W)
	}
}

func TestStartResize_InfersQuadrant(t *testing.T) {
	tests := []struct {
		name   string
		origin platform.Point
		want   platform.Edges
	}{
		{"upper left", pt(10, 10), platform.EdgesOf(platform.EdgeTop, platform.EdgeLeft)},
		{"upper right", pt(90, 10), platform.EdgesOf(platform.EdgeTop, platform.EdgeRight)},
		{"lower left", pt(10, 90), platform.EdgesOf(platform.EdgeBottom, platform.EdgeLeft)},
		{"lower right", pt(90, 90), platform.EdgesOf(platform.EdgeBottom, platform.EdgeRight)},
		{"left center line", pt(10, 50), platform.EdgesOf(platform.EdgeLeft)},
		{"exact center", pt(50, 50), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, windows, _ := newTestController()
			windows.add(1, 0, 0, 100, 100)

			c.StartResize(1, 0, tt.origin)
			s := c.Session()
			if !s.Active {
				t.Fatalf("expected session to start")
			}
			if s.Edges != tt.want {
				t.Fatalf("edges = %v, want %v", s.Edges, tt.want)
			}
			if !windows.resizing[1] {
				t.Fatalf("expected resizing flag")
			}
		})
	}
}

func TestStartResize_RequestedEdgesWin(t *testing.T) {
	c, windows, _ := newTestController()
	windows.add(1, 0, 0, 100, 100)

	c.StartResize(1, platform.EdgesOf(platform.EdgeBottom), pt(10, 10))
	if got := c.Session().Edges; got != platform.EdgesOf(platform.EdgeBottom) {
		t.Fatalf("edges = %v, want bottom", got)
	}
}

func TestStartResize_MissingGeometryAborts(t *testing.T) {
	c, windows, _ := newTestController()

	c.StartResize(42, 0, pt(10, 10))
	if c.Active() {
		t.Fatalf("resize of a vanished window must not start a session")
	}
	if len(windows.raised) != 0 || windows.resizing[42] {
		t.Fatalf("vanished window was touched: raised=%v resizing=%v", windows.raised, windows.resizing)
	}
}

func TestOnPointerMotion_ConsumedOnlyWhileActive(t *testing.T) {
	c, windows, pointer := newTestController()
	windows.add(1, 0, 0, 100, 100)

	if c.OnPointerMotion(pt(5, 5)) {
		t.Fatalf("idle motion must not be consumed")
	}
	if got := c.Session().Grab; got != pt(5, 5) {
		t.Fatalf("idle motion should still track the pointer, grab = %+v", got)
	}

	c.StartMove(1, pt(5, 5))
	if !c.OnPointerMotion(pt(5, 5)) {
		t.Fatalf("zero-delta motion during a session must be consumed")
	}

	delete(windows.geoms, 1)
	if !c.OnPointerMotion(pt(9, 9)) {
		t.Fatalf("motion for a vanished window is still consumed while the session is active")
	}

	want := []platform.Point{pt(5, 5), pt(5, 5), pt(9, 9)}
	if diff := cmp.Diff(want, pointer.positions); diff != "" {
		t.Fatalf("cursor positions (-want +got):\n%s", diff)
	}
}

func TestOnPointerButton_ModifierBindings(t *testing.T) {
	tests := []struct {
		name      string
		win       platform.WindowID
		mods      platform.Modifiers
		button    uint32
		wantStart bool
		wantEdges platform.Edges
	}{
		{"ctrl left moves", 1, platform.ModCtrl, platform.ButtonLeft, true, 0},
		{"ctrl right resizes", 1, platform.ModCtrl | platform.ModShift, platform.ButtonRight, true, platform.EdgesOf(platform.EdgeTop, platform.EdgeLeft)},
		{"no modifier", 1, 0, platform.ButtonLeft, false, 0},
		{"background", 0, platform.ModCtrl, platform.ButtonLeft, false, 0},
		{"unbound button", 1, platform.ModCtrl, platform.ButtonMiddle, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, windows, _ := newTestController()
			windows.add(1, 0, 0, 100, 100)

			got := c.OnPointerButton(tt.win, tt.mods, tt.button, platform.ButtonPressed, pt(10, 10))
			if got != tt.wantStart {
				t.Fatalf("consumed = %v, want %v", got, tt.wantStart)
			}
			if s := c.Session(); s.Edges != tt.wantEdges {
				t.Fatalf("edges = %v, want %v", s.Edges, tt.wantEdges)
			}
		})
	}
}

func TestOnPointerButton_FocusesOnModifierPress(t *testing.T) {
	c, windows, _ := newTestController()
	windows.add(1, 0, 0, 100, 100)

	c.OnPointerButton(1, platform.ModCtrl, platform.ButtonMiddle, platform.ButtonPressed, pt(1, 1))
	if diff := cmp.Diff([]platform.WindowID{1}, windows.focused); diff != "" {
		t.Fatalf("focus calls (-want +got):\n%s", diff)
	}
	if c.Active() {
		t.Fatalf("unbound button must not start a session")
	}
}

func TestEndToEnd_MoveThenRelease(t *testing.T) {
	c, windows, _ := newTestController()
	windows.add(1, 0, 0, 200, 100)

	c.StartMove(1, pt(50, 50))
	if s := c.Session(); !s.Active || s.Grab != pt(50, 50) {
		t.Fatalf("unexpected session after start: %+v", s)
	}

	if !c.OnPointerMotion(pt(60, 70)) {
		t.Fatalf("motion should be consumed")
	}
	got, _ := windows.Geometry(1)
	if diff := cmp.Diff(geom(10, 20, 200, 100), got); diff != "" {
		t.Fatalf("geometry (-want +got):\n%s", diff)
	}
	if s := c.Session(); s.Grab != pt(60, 70) {
		t.Fatalf("grab = %+v, want (60,70)", s.Grab)
	}

	if c.OnPointerButton(1, 0, platform.ButtonLeft, platform.ButtonReleased, pt(60, 70)) {
		t.Fatalf("release should end the session")
	}
	if c.OnPointerMotion(pt(61, 71)) {
		t.Fatalf("motion after release must not be consumed")
	}
}

func TestUpdateOptions_ChangesBindings(t *testing.T) {
	c, windows, _ := newTestController()
	windows.add(1, 0, 0, 100, 100)

	c.UpdateOptions(Options{Modifier: platform.ModLogo, MoveButton: platform.ButtonMiddle})

	if c.OnPointerButton(1, platform.ModCtrl, platform.ButtonLeft, platform.ButtonPressed, pt(1, 1)) {
		t.Fatalf("old binding should no longer start a session")
	}
	if !c.OnPointerButton(1, platform.ModLogo, platform.ButtonMiddle, platform.ButtonPressed, pt(1, 1)) {
		t.Fatalf("new binding should start a session")
	}
}

func TestController_ConcurrentEventsKeepSessionConsistent(t *testing.T) {
	c, windows, _ := newTestController()
	windows.add(1, 0, 0, 400, 400)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				switch (i + j) % 4 {
				case 0:
					c.StartResize(1, 0, pt(j, j))
				case 1:
					c.OnPointerMotion(pt(j, i))
				case 2:
					c.StopSession()
				default:
					c.StartMove(1, pt(i, j))
				}
				s := c.Session()
				if !s.Active && (s.Window != 0 || !s.Edges.IsEmpty()) {
					t.Errorf("torn idle session: %+v", s)
					return
				}
			}
		}(i)
	}
	wg.Wait()
}
