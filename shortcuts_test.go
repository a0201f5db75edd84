package viewkit

import (
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// --- Path keys ---

func TestPathKeyRecordsKeyFrame(t *testing.T) {
	v, _ := newTestViewer()
	v.handlePathKey(1, ModAlt)

	p := v.Camera().Path(1)
	if p == nil || p.NumberOfKeyFrames() != 1 {
		t.Fatal("first Alt press should create a one-keyframe path")
	}
	if got, want := v.Message(), "Position 1 saved"; got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
}

func TestPathKeyRecordsSecondKeyFrame(t *testing.T) {
	v, clock := newTestViewer()
	v.handlePathKey(3, ModAlt)
	clock.advance(time.Second)
	v.handlePathKey(3, ModAlt)

	if got := v.Camera().Path(3).NumberOfKeyFrames(); got != 2 {
		t.Fatalf("keyframes = %d, want 2", got)
	}
	if got, want := v.Message(), "Path 3, position 2 saved"; got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
}

func TestPathKeyDoubleRecordDeletesPosition(t *testing.T) {
	v, clock := newTestViewer()
	v.handlePathKey(2, ModAlt)
	clock.advance(100 * time.Millisecond)
	v.handlePathKey(2, ModAlt)

	if v.Camera().Path(2) != nil {
		t.Error("double Alt press should delete the path")
	}
	if got, want := v.Message(), "Position 2 deleted"; got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
}

func TestPathKeyDoubleRecordDeletesPath(t *testing.T) {
	v, clock := newTestViewer()
	v.handlePathKey(2, ModAlt)
	clock.advance(time.Second)
	v.handlePathKey(2, ModAlt)
	clock.advance(time.Second)
	v.handlePathKey(2, ModAlt)
	clock.advance(100 * time.Millisecond)
	v.handlePathKey(2, ModAlt)

	if v.Camera().Path(2) != nil {
		t.Error("double Alt press should delete the path")
	}
	if got, want := v.Message(), "Path 2 deleted"; got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
}

func TestPathKeyPlayTogglesPlayback(t *testing.T) {
	v, clock := newTestViewer()
	v.handlePathKey(1, ModAlt)
	clock.advance(time.Second)
	v.Camera().SetPosition(Vec3{0, 0, 3})
	v.handlePathKey(1, ModAlt)
	clock.advance(time.Second)

	v.handlePathKey(1, 0)
	if !v.Camera().Path(1).InterpolationIsStarted() {
		t.Fatal("play press should start the path")
	}
	clock.advance(time.Second)
	v.handlePathKey(1, 0)
	if v.Camera().Path(1).InterpolationIsStarted() {
		t.Error("second play press after the window should stop the path")
	}
}

func TestPathKeyDoublePlayResets(t *testing.T) {
	v, clock := newTestViewer()
	v.handlePathKey(1, ModAlt)
	clock.advance(time.Second)
	v.Camera().SetPosition(Vec3{0, 0, 3})
	v.handlePathKey(1, ModAlt)
	clock.advance(time.Second)

	v.handlePathKey(1, 0)
	v.Camera().Path(1).Update(0.5)
	clock.advance(100 * time.Millisecond)
	v.handlePathKey(1, 0)

	p := v.Camera().Path(1)
	if p.InterpolationIsStarted() {
		t.Error("double play press should stop the path")
	}
	assertNear(t, "rewound time", p.InterpolationTime(), 0)
}

func TestPathKeyMissingPathIsNoOp(t *testing.T) {
	v, _ := newTestViewer()
	v.handlePathKey(5, 0)
	if v.Camera().Path(5) != nil {
		t.Error("playing a missing path should not create it")
	}
}

func TestPlayingPathStopsOtherPath(t *testing.T) {
	v, clock := newTestViewer()
	for _, index := range []int{1, 2} {
		v.handlePathKey(index, ModAlt)
		clock.advance(time.Second)
		v.Camera().SetPosition(Vec3{float64(index), 0, 3})
		v.handlePathKey(index, ModAlt)
		clock.advance(time.Second)
	}

	v.handlePathKey(1, 0)
	clock.advance(time.Second)
	v.handlePathKey(2, 0)

	if v.Camera().Path(1).InterpolationIsStarted() {
		t.Error("starting path 2 should stop path 1")
	}
	if !v.Camera().Path(2).InterpolationIsStarted() {
		t.Error("path 2 should be playing")
	}
}

// --- Keyboard actions ---

func TestKeyboardTogglesDisplayFlags(t *testing.T) {
	v, _ := newTestViewer()

	v.handleKeyboardAction(KeyActionDrawAxis)
	if !v.AxisIsDrawn() {
		t.Error("axis flag did not toggle on")
	}
	v.handleKeyboardAction(KeyActionDrawAxis)
	if v.AxisIsDrawn() {
		t.Error("axis flag did not toggle off")
	}

	v.handleKeyboardAction(KeyActionDrawGrid)
	if !v.GridIsDrawn() {
		t.Error("grid flag did not toggle on")
	}
	v.handleKeyboardAction(KeyActionDisplayFPS)
	if !v.FPSIsDisplayed() {
		t.Error("fps flag did not toggle on")
	}
}

func TestCameraModeToggleRebindsDrags(t *testing.T) {
	v, _ := newTestViewer()

	v.handleKeyboardAction(KeyActionCameraMode)
	if v.Camera().Mode() != CameraModeFly {
		t.Fatal("camera mode did not switch to fly")
	}
	if b, _ := v.MouseBindingFor(Combo(0, ButtonLeft)); b.Action != ActionMoveForward {
		t.Errorf("fly left drag = %v, want move forward", b.Action)
	}
	if got, want := v.Message(), "Camera in fly mode"; got != want {
		t.Errorf("message = %q, want %q", got, want)
	}

	v.handleKeyboardAction(KeyActionCameraMode)
	if b, _ := v.MouseBindingFor(Combo(0, ButtonLeft)); b.Action != ActionRotate {
		t.Errorf("revolve left drag = %v, want rotate", b.Action)
	}
}

func TestEditCameraScalesClippingCoefficient(t *testing.T) {
	v, _ := newTestViewer()
	v.Camera().SetZClippingCoefficient(3)

	v.SetCameraIsEdited(true)
	assertNear(t, "edited coefficient", v.Camera().ZClippingCoefficient(), editedZClippingCoefficient)

	v.SetCameraIsEdited(false)
	assertNear(t, "restored coefficient", v.Camera().ZClippingCoefficient(), 3)
}

func TestFlySpeedShortcuts(t *testing.T) {
	v, _ := newTestViewer()
	base := v.Camera().FlySpeed()
	v.handleKeyboardAction(KeyActionIncreaseFlySpeed)
	assertNear(t, "increased", v.Camera().FlySpeed(), base*1.5)
	v.handleKeyboardAction(KeyActionDecreaseFlySpeed)
	assertNear(t, "restored", v.Camera().FlySpeed(), base)
}

func TestShortcutOnPathKeyFiresOnce(t *testing.T) {
	v, _ := newTestViewer()
	// F1 is a path key by default; rebinding it as a shortcut must not
	// dispatch the same press twice.
	v.SetShortcut(KeyActionDrawAxis, ebiten.KeyF1, 0)

	v.pollKeysWith(0, func(k ebiten.Key) bool { return k == ebiten.KeyF1 })

	if !v.AxisIsDrawn() {
		t.Error("axis flag = false, want one toggle from a single press")
	}
}

func TestInjectedKeyRunsShortcut(t *testing.T) {
	v, _ := newTestViewer()
	v.InjectKey(ebiten.KeyA, 0)
	if err := v.Update(); err != nil {
		t.Fatal(err)
	}
	if !v.AxisIsDrawn() {
		t.Error("injected A did not toggle the axis")
	}
}

func TestInjectedPathKey(t *testing.T) {
	v, _ := newTestViewer()
	v.InjectKey(ebiten.KeyF4, ModAlt)
	if err := v.Update(); err != nil {
		t.Fatal(err)
	}
	if p := v.Camera().Path(4); p == nil || p.NumberOfKeyFrames() != 1 {
		t.Error("injected Alt+F4 did not record a keyframe on path 4")
	}
}

func TestMoveCameraShortcut(t *testing.T) {
	v, _ := newTestViewer()
	before := v.Camera().Position()
	v.handleKeyboardAction(KeyActionMoveCameraLeft)
	after := v.Camera().Position()
	if after.X >= before.X {
		t.Errorf("camera x = %v, want smaller than %v", after.X, before.X)
	}
}
