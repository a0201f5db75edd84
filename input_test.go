package viewkit

import (
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestViewer() (*Viewer, *fakeClock) {
	clock := newFakeClock()
	v := NewViewer(nil)
	v.now = clock.now
	return v, clock
}

// testGrabber grabs the mouse inside a fixed screen rectangle and counts
// the events it receives.
type testGrabber struct {
	region   Rect
	grabbing bool

	presses  int
	moves    int
	releases int
	doubles  int
	wheels   int
}

func (g *testGrabber) CheckIfGrabsMouse(x, y int, cam *Camera) {
	g.grabbing = g.region.Contains(float64(x), float64(y))
}
func (g *testGrabber) GrabsMouse() bool                           { return g.grabbing }
func (g *testGrabber) MousePress(e MouseEvent, cam *Camera)       { g.presses++ }
func (g *testGrabber) MouseMove(e MouseEvent, cam *Camera)        { g.moves++ }
func (g *testGrabber) MouseRelease(e MouseEvent, cam *Camera)     { g.releases++ }
func (g *testGrabber) MouseDoubleClick(e MouseEvent, cam *Camera) { g.doubles++ }
func (g *testGrabber) Wheel(e WheelEvent, cam *Camera)            { g.wheels++ }

// --- Drag dispatch ---

func TestDragRotatesCamera(t *testing.T) {
	v, _ := newTestViewer()
	before := v.Camera().Orientation()

	v.InjectMousePress(300, 200, MouseButtonLeft, 0)
	v.InjectMouseMove(340, 200, 0)
	v.InjectMouseRelease(340, 200, MouseButtonLeft, 0)
	if err := v.Update(); err != nil {
		t.Fatal(err)
	}

	if v.Camera().Orientation() == before {
		t.Error("left drag did not rotate the camera")
	}
	if !v.NeedsRedraw() {
		t.Error("release should leave the display dirty")
	}
}

func TestCtrlDragDrivesManipulatedFrame(t *testing.T) {
	v, _ := newTestViewer()
	frame := NewManipulatedFrame()
	v.SetManipulatedFrame(frame)
	camBefore := v.Camera().Orientation()

	v.InjectMousePress(300, 200, MouseButtonLeft, ModCtrl)
	v.InjectMouseMove(340, 200, ModCtrl)
	v.InjectMouseRelease(340, 200, MouseButtonLeft, ModCtrl)
	if err := v.Update(); err != nil {
		t.Fatal(err)
	}

	if frame.Orientation() == QuatIdentity {
		t.Error("ctrl drag did not rotate the manipulated frame")
	}
	if v.Camera().Orientation() != camBefore {
		t.Error("ctrl drag moved the camera")
	}
}

func TestFrameBindingInertWithoutFrame(t *testing.T) {
	v, _ := newTestViewer()
	camBefore := v.Camera().Orientation()

	v.InjectMousePress(300, 200, MouseButtonLeft, ModCtrl)
	v.InjectMouseMove(340, 200, ModCtrl)
	v.InjectMouseRelease(340, 200, MouseButtonLeft, ModCtrl)
	if err := v.Update(); err != nil {
		t.Fatal(err)
	}

	if v.Camera().Orientation() != camBefore {
		t.Error("frame-channel drag without a frame should do nothing")
	}
}

func TestChordedDragUsesCombinedButtons(t *testing.T) {
	v, _ := newTestViewer()

	// Left then middle: the second press arms the Left+Middle binding
	// (screen rotate).
	v.InjectMousePress(300, 200, MouseButtonLeft, 0)
	v.InjectMousePress(310, 210, MouseButtonMiddle, 0)
	if err := v.Update(); err != nil {
		t.Fatal(err)
	}

	if v.draggedFrame == nil {
		t.Fatal("no drag in progress")
	}
	if got, want := v.draggedFrame.Action(), ActionScreenRotate; got != want {
		t.Errorf("action = %v, want %v", got, want)
	}
}

func TestWheelZoomsCamera(t *testing.T) {
	v, _ := newTestViewer()
	before := v.Camera().Position()

	v.InjectWheel(300, 200, 1, 0)
	if err := v.Update(); err != nil {
		t.Fatal(err)
	}

	if v.Camera().Position() == before {
		t.Error("wheel did not move the camera")
	}
	if !v.NeedsRedraw() {
		t.Error("wheel should leave the display dirty")
	}
}

func TestUnboundComboIsIgnored(t *testing.T) {
	v, _ := newTestViewer()
	before := v.Camera().Orientation()

	v.InjectMousePress(300, 200, MouseButtonLeft, ModMeta)
	v.InjectMouseMove(340, 200, ModMeta)
	v.InjectMouseRelease(340, 200, MouseButtonLeft, ModMeta)
	if err := v.Update(); err != nil {
		t.Fatal(err)
	}

	if v.Camera().Orientation() != before {
		t.Error("unbound combo moved the camera")
	}
}

// --- Double clicks ---

func TestDoubleClickShowsEntireScene(t *testing.T) {
	v, clock := newTestViewer()
	v.Camera().SetPosition(Vec3{3, 0, 0})
	before := v.Camera().Position()

	v.InjectMousePress(300, 200, MouseButtonMiddle, 0)
	v.InjectMouseRelease(300, 200, MouseButtonMiddle, 0)
	if err := v.Update(); err != nil {
		t.Fatal(err)
	}
	clock.advance(100 * time.Millisecond)
	v.InjectMousePress(300, 200, MouseButtonMiddle, 0)
	if err := v.Update(); err != nil {
		t.Fatal(err)
	}

	if v.Camera().Position() == before {
		t.Error("middle double click did not fit the scene")
	}
}

func TestSlowSecondPressIsNotADoubleClick(t *testing.T) {
	v, clock := newTestViewer()
	v.Camera().SetPosition(Vec3{3, 0, 0})
	before := v.Camera().Position()

	v.InjectMousePress(300, 200, MouseButtonMiddle, 0)
	v.InjectMouseRelease(300, 200, MouseButtonMiddle, 0)
	if err := v.Update(); err != nil {
		t.Fatal(err)
	}
	clock.advance(400 * time.Millisecond)
	v.InjectMousePress(300, 200, MouseButtonMiddle, 0)
	if err := v.Update(); err != nil {
		t.Fatal(err)
	}

	if v.Camera().Position() != before {
		t.Error("slow second press should start a zoom drag, not fit the scene")
	}
}

func TestChainedDoubleClickResetsRevolvePoint(t *testing.T) {
	v, clock := newTestViewer()
	v.Camera().SetSceneCenter(Vec3{1, 2, 3})
	v.Camera().SetRevolveAroundPoint(Vec3{9, 9, 9})

	// Hold left, double click right: revolve point back to scene center.
	v.InjectMousePress(300, 200, MouseButtonLeft, 0)
	v.InjectMousePress(302, 200, MouseButtonRight, 0)
	v.InjectMouseRelease(302, 200, MouseButtonRight, 0)
	if err := v.Update(); err != nil {
		t.Fatal(err)
	}
	clock.advance(100 * time.Millisecond)
	v.InjectMousePress(302, 200, MouseButtonRight, 0)
	if err := v.Update(); err != nil {
		t.Fatal(err)
	}

	assertVec(t, "revolve point", v.Camera().RevolveAroundPoint(), Vec3{1, 2, 3})
}

// --- Grabber precedence ---

func TestGrabberTakesPriorityOverBindings(t *testing.T) {
	v, _ := newTestViewer()
	g := &testGrabber{region: Rect{X: 0, Y: 0, Width: 100, Height: 100}}
	v.Grabbers().Add(g)
	camBefore := v.Camera().Orientation()

	v.InjectMouseMove(50, 50, 0) // hover activates the grabber
	v.InjectMousePress(50, 50, MouseButtonLeft, 0)
	v.InjectMouseRelease(50, 50, MouseButtonLeft, 0)
	if err := v.Update(); err != nil {
		t.Fatal(err)
	}

	if g.presses != 1 || g.releases != 1 {
		t.Errorf("grabber saw %d presses, %d releases, want 1, 1", g.presses, g.releases)
	}
	if v.Camera().Orientation() != camBefore {
		t.Error("grabbed press leaked to the camera bindings")
	}
}

func TestDisabledGrabberIsSkipped(t *testing.T) {
	v, _ := newTestViewer()
	g := &testGrabber{region: Rect{X: 0, Y: 0, Width: 100, Height: 100}}
	v.Grabbers().Add(g)
	v.Grabbers().SetEnabled(g, false)

	v.InjectMouseMove(50, 50, 0)
	v.InjectMousePress(50, 50, MouseButtonLeft, 0)
	if err := v.Update(); err != nil {
		t.Fatal(err)
	}

	if g.presses != 0 {
		t.Error("disabled grabber received events")
	}
	if v.draggedFrame == nil {
		t.Error("bindings should handle the press when the grabber is disabled")
	}
}

func TestGrabberReleasedWhenCursorLeaves(t *testing.T) {
	v, _ := newTestViewer()
	g := &testGrabber{region: Rect{X: 0, Y: 0, Width: 100, Height: 100}}
	v.Grabbers().Add(g)

	v.InjectMouseMove(50, 50, 0)
	v.InjectMouseMove(200, 200, 0)
	if err := v.Update(); err != nil {
		t.Fatal(err)
	}

	if v.activeGrabber != nil {
		t.Error("grabber should release when the cursor leaves its region")
	}
}

func TestGrabberFrameDragIgnoresModifiers(t *testing.T) {
	v, _ := newTestViewer()
	frame := NewManipulatedFrame()
	g := &testGrabber{region: Rect{X: 0, Y: 0, Width: 100, Height: 100}}
	v.Grabbers().AddFrame(g, frame)

	// Plain left drag on the grabbed frame: the frame-channel rotate
	// binding applies even though it is bound with Ctrl.
	v.InjectMouseMove(50, 50, 0)
	v.InjectMousePress(50, 50, MouseButtonLeft, 0)
	v.InjectMouseMove(90, 50, 0)
	v.InjectMouseRelease(90, 50, MouseButtonLeft, 0)
	if err := v.Update(); err != nil {
		t.Fatal(err)
	}

	if frame.Orientation() == QuatIdentity {
		t.Error("drag on a grabbed frame did not rotate it")
	}
}

func TestGrabberFrameDragWithUnboundModifier(t *testing.T) {
	v, _ := newTestViewer()
	frame := NewManipulatedFrame()
	g := &testGrabber{region: Rect{X: 0, Y: 0, Width: 100, Height: 100}}
	v.Grabbers().AddFrame(g, frame)

	// Shift+left is a click binding elsewhere; on a grabbed frame the
	// button alone picks the frame rotate.
	v.InjectMouseMove(50, 50, ModShift)
	v.InjectMousePress(50, 50, MouseButtonLeft, ModShift)
	v.InjectMouseMove(90, 50, ModShift)
	v.InjectMouseRelease(90, 50, MouseButtonLeft, ModShift)
	if err := v.Update(); err != nil {
		t.Fatal(err)
	}

	if frame.Orientation() == QuatIdentity {
		t.Error("shift drag on a grabbed frame did not rotate it")
	}
}

func TestGrabberFrameInFlyModeStillRotates(t *testing.T) {
	v, _ := newTestViewer()
	v.Camera().SetMode(CameraModeFly)
	v.setDefaultMouseBindings()
	frame := NewManipulatedFrame()
	g := &testGrabber{region: Rect{X: 0, Y: 0, Width: 100, Height: 100}}
	v.Grabbers().AddFrame(g, frame)
	posBefore := frame.Position()

	// In fly mode a plain left press is camera move-forward, but that
	// binding must not leak onto the grabbed frame.
	v.InjectMouseMove(50, 50, 0)
	v.InjectMousePress(50, 50, MouseButtonLeft, 0)
	v.InjectMouseMove(90, 50, 0)
	v.InjectMouseRelease(90, 50, MouseButtonLeft, 0)
	if err := v.Update(); err != nil {
		t.Fatal(err)
	}

	if frame.Position() != posBefore {
		t.Error("fly-mode press translated the grabbed frame")
	}
	if frame.Orientation() == QuatIdentity {
		t.Error("fly-mode drag on a grabbed frame did not rotate it")
	}
}

func TestGrabberFrameWheelIgnoresModifiers(t *testing.T) {
	v, _ := newTestViewer()
	frame := NewManipulatedFrame()
	g := &testGrabber{region: Rect{X: 0, Y: 0, Width: 100, Height: 100}}
	v.Grabbers().AddFrame(g, frame)
	posBefore := frame.Position()

	v.InjectMouseMove(50, 50, ModShift)
	v.InjectWheel(50, 50, 1, ModShift)
	if err := v.Update(); err != nil {
		t.Fatal(err)
	}

	if frame.Position() == posBefore {
		t.Error("wheel on a grabbed frame did not zoom it")
	}
}
