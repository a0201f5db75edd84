package viewkit

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// --- Constants ---

const (
	// doubleClickInterval is the longest gap between two presses of the
	// same button for the second one to count as a double click.
	doubleClickInterval = 250 * time.Millisecond
	// doubleClickSlop is how far the cursor may travel between the two
	// presses of a double click, in pixels.
	doubleClickSlop = 5
)

// MouseEvent describes a press, move, release, or double click. Button is
// the button the event is about; Buttons is the full set held after the
// event, which is what drag bindings are keyed on.
type MouseEvent struct {
	X, Y      int
	Button    MouseButton
	Buttons   MouseButtonMask
	Modifiers KeyModifiers
}

// WheelEvent describes a scroll of Delta notches, positive away from the
// user, at the cursor position.
type WheelEvent struct {
	X, Y      int
	Delta     float64
	Modifiers KeyModifiers
}

// --- Injection queue ---

// syntheticEvent is one injected input event, consumed by the next Update.
type syntheticEvent struct {
	kind  syntheticKind
	mouse MouseEvent
	wheel WheelEvent
	key   ebiten.Key
	mods  KeyModifiers
}

type syntheticKind uint8

const (
	synthPress syntheticKind = iota
	synthMove
	synthRelease
	synthWheel
	synthKey
)

// InjectMousePress queues a synthetic button press. Injected events run
// through the same dispatch as real input, including double-click
// synthesis, on the next Update.
func (v *Viewer) InjectMousePress(x, y int, button MouseButton, mods KeyModifiers) {
	v.injectQueue = append(v.injectQueue, syntheticEvent{
		kind:  synthPress,
		mouse: MouseEvent{X: x, Y: y, Button: button, Modifiers: mods},
	})
}

// InjectMouseMove queues a synthetic cursor move.
func (v *Viewer) InjectMouseMove(x, y int, mods KeyModifiers) {
	v.injectQueue = append(v.injectQueue, syntheticEvent{
		kind:  synthMove,
		mouse: MouseEvent{X: x, Y: y, Modifiers: mods},
	})
}

// InjectMouseRelease queues a synthetic button release.
func (v *Viewer) InjectMouseRelease(x, y int, button MouseButton, mods KeyModifiers) {
	v.injectQueue = append(v.injectQueue, syntheticEvent{
		kind:  synthRelease,
		mouse: MouseEvent{X: x, Y: y, Button: button, Modifiers: mods},
	})
}

// InjectWheel queues a synthetic wheel scroll.
func (v *Viewer) InjectWheel(x, y int, delta float64, mods KeyModifiers) {
	v.injectQueue = append(v.injectQueue, syntheticEvent{
		kind:  synthWheel,
		wheel: WheelEvent{X: x, Y: y, Delta: delta, Modifiers: mods},
	})
}

// InjectKey queues a synthetic key press.
func (v *Viewer) InjectKey(key ebiten.Key, mods KeyModifiers) {
	v.injectQueue = append(v.injectQueue, syntheticEvent{kind: synthKey, key: key, mods: mods})
}

// processInjectedInput drains the inject queue through the dispatcher.
// Returns true if any event was consumed (real input is skipped that frame).
func (v *Viewer) processInjectedInput() bool {
	if len(v.injectQueue) == 0 {
		return false
	}
	queue := v.injectQueue
	v.injectQueue = nil
	for _, evt := range queue {
		switch evt.kind {
		case synthPress:
			v.dispatchMousePress(evt.mouse)
		case synthMove:
			v.dispatchMouseMove(evt.mouse)
		case synthRelease:
			v.dispatchMouseRelease(evt.mouse)
		case synthWheel:
			v.dispatchWheel(evt.wheel)
		case synthKey:
			v.handleKey(evt.key, evt.mods)
		}
	}
	return true
}

// --- Polling ---

var pollButtons = [...]struct {
	eb ebiten.MouseButton
	vk MouseButton
}{
	{ebiten.MouseButtonLeft, MouseButtonLeft},
	{ebiten.MouseButtonMiddle, MouseButtonMiddle},
	{ebiten.MouseButtonRight, MouseButtonRight},
}

// pollInput reads the ebiten input state once per Update and feeds it to
// the dispatcher as events.
func (v *Viewer) pollInput() {
	x, y := ebiten.CursorPosition()
	mods := pollModifiers()

	for _, pb := range pollButtons {
		if inpututil.IsMouseButtonJustPressed(pb.eb) {
			v.dispatchMousePress(MouseEvent{X: x, Y: y, Button: pb.vk, Modifiers: mods})
		}
	}

	if x != v.lastCursorX || y != v.lastCursorY {
		v.dispatchMouseMove(MouseEvent{X: x, Y: y, Modifiers: mods})
	}

	for _, pb := range pollButtons {
		if inpututil.IsMouseButtonJustReleased(pb.eb) {
			v.dispatchMouseRelease(MouseEvent{X: x, Y: y, Button: pb.vk, Modifiers: mods})
		}
	}

	if _, yoff := ebiten.Wheel(); yoff != 0 {
		v.dispatchWheel(WheelEvent{X: x, Y: y, Delta: yoff, Modifiers: mods})
	}

	v.pollKeys(mods)
}

// pollModifiers reads the modifier key state.
func pollModifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAltLeft) || ebiten.IsKeyPressed(ebiten.KeyAltRight) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMetaLeft) || ebiten.IsKeyPressed(ebiten.KeyMetaRight) {
		mods |= ModMeta
	}
	return mods
}

// --- Dispatch ---

// dispatchMousePress synthesizes double clicks and routes a press. The
// second press of the same button within doubleClickInterval (and within
// doubleClickSlop pixels) becomes a double click instead of a press.
func (v *Viewer) dispatchMousePress(e MouseEvent) {
	before := v.pressedButtons &^ e.Button.Mask()
	v.pressedButtons |= e.Button.Mask()
	e.Buttons = v.pressedButtons

	now := v.now()
	isDouble := e.Button == v.lastPressButton &&
		now.Sub(v.lastPressTime) < doubleClickInterval &&
		abs(e.X-v.lastPressX) <= doubleClickSlop &&
		abs(e.Y-v.lastPressY) <= doubleClickSlop
	v.lastPressButton = e.Button
	v.lastPressTime = now
	v.lastPressX, v.lastPressY = e.X, e.Y

	if isDouble {
		// Suppress the follow-up double click of this press.
		v.lastPressTime = time.Time{}
		v.handleMouseDoubleClick(e, before)
		return
	}
	v.handleMousePress(e, before)
}

func (v *Viewer) dispatchMouseMove(e MouseEvent) {
	e.Buttons = v.pressedButtons
	v.lastCursorX, v.lastCursorY = e.X, e.Y
	v.handleMouseMove(e)
}

func (v *Viewer) dispatchMouseRelease(e MouseEvent) {
	v.pressedButtons &^= e.Button.Mask()
	e.Buttons = v.pressedButtons
	v.handleMouseRelease(e)
}

func (v *Viewer) dispatchWheel(e WheelEvent) {
	v.handleWheel(e)
}

// handleMousePress routes a press: active grabber first, then the click
// table, then the drag table. A grabber registered as a manipulated frame
// resolves its drag from the frame-channel bindings by button alone,
// modifiers ignored, so every frame gesture drives the grabbed frame no
// matter which modifier is down.
func (v *Viewer) handleMousePress(e MouseEvent, buttonsBefore MouseButtonMask) {
	if v.activeGrabber != nil {
		if v.activeGrabberFrame != nil {
			if b, ok := v.bindings.frameDragBinding(e.Buttons); ok {
				v.activeGrabberFrame.StartAction(b.Action, b.WithConstraint)
				v.activeGrabberFrame.MousePress(e, v.camera)
				v.draggedFrame = v.activeGrabberFrame
			}
		} else {
			v.activeGrabber.MousePress(e, v.camera)
		}
		v.needsRedraw = true
		return
	}

	key := ClickBindingKey{Combo: Combo(e.Modifiers, e.Button.Mask()), ButtonBefore: buttonsBefore}
	if action, ok := v.bindings.click[key]; ok {
		v.performClickAction(action, e)
		return
	}

	combo := Combo(e.Modifiers, e.Buttons)
	b, ok := v.bindings.drag[combo]
	if !ok {
		return
	}
	frame := v.targetFrame(b.Target)
	if frame == nil {
		return
	}
	frame.StartAction(b.Action, b.WithConstraint)
	frame.MousePress(e, v.camera)
	v.draggedFrame = frame
	if b.Action == ActionScreenRotate || b.Action == ActionZoomOnRegion {
		// These draw a guide while dragging.
		v.needsRedraw = true
	}
}

// handleMouseMove applies a running drag, forwards to the active grabber,
// or, on a plain hover, re-polls the grabber pool.
func (v *Viewer) handleMouseMove(e MouseEvent) {
	if v.activeGrabber != nil && v.draggedFrame == nil {
		v.activeGrabber.CheckIfGrabsMouse(e.X, e.Y, v.camera)
		if !v.activeGrabber.GrabsMouse() {
			v.setMouseGrabber(nil)
			v.needsRedraw = true
		} else {
			v.activeGrabber.MouseMove(e, v.camera)
			v.needsRedraw = true
		}
		return
	}

	if v.draggedFrame != nil {
		if v.draggedFrame.Action() != ActionNone {
			v.needsRedraw = true
		}
		v.draggedFrame.MouseMove(e, v.camera)
		return
	}

	// Hover: the pool decides who grabs the cursor.
	if g, frame := v.grabbers.check(e.X, e.Y, v.camera); g != v.activeGrabber {
		v.activeGrabber = g
		v.activeGrabberFrame = frame
		v.needsRedraw = true
	}
}

// handleMouseRelease ends a drag or forwards to the grabber. A release
// always leaves the display dirty.
func (v *Viewer) handleMouseRelease(e MouseEvent) {
	switch {
	case v.draggedFrame != nil:
		v.draggedFrame.MouseRelease(e, v.camera)
		v.draggedFrame = nil
	case v.activeGrabber != nil:
		v.activeGrabber.MouseRelease(e, v.camera)
		v.activeGrabber.CheckIfGrabsMouse(e.X, e.Y, v.camera)
		if !v.activeGrabber.GrabsMouse() {
			v.setMouseGrabber(nil)
		}
	}
	v.needsRedraw = true
}

// handleMouseDoubleClick routes a double click: grabber first, then the
// click table with the double-click flag and the buttons held before.
func (v *Viewer) handleMouseDoubleClick(e MouseEvent, buttonsBefore MouseButtonMask) {
	if v.activeGrabber != nil {
		v.activeGrabber.MouseDoubleClick(e, v.camera)
		v.needsRedraw = true
		return
	}
	key := ClickBindingKey{
		Combo:        Combo(e.Modifiers, e.Button.Mask()),
		DoubleClick:  true,
		ButtonBefore: buttonsBefore,
	}
	if action, ok := v.bindings.click[key]; ok {
		v.performClickAction(action, e)
	}
}

// handleWheel routes a scroll: grabber first (a grabbed frame resolves the
// frame-channel wheel binding, ignoring modifiers), then the wheel table.
func (v *Viewer) handleWheel(e WheelEvent) {
	if v.activeGrabber != nil {
		if v.activeGrabberFrame != nil {
			if wb, ok := v.bindings.frameWheelBinding(); ok {
				v.activeGrabberFrame.StartAction(wb.Action, wb.WithConstraint)
				v.activeGrabberFrame.Wheel(e, v.camera)
			}
		} else {
			v.activeGrabber.Wheel(e, v.camera)
		}
		v.needsRedraw = true
		return
	}

	wb, ok := v.bindings.wheel[e.Modifiers]
	if !ok {
		return
	}
	frame := v.targetFrame(wb.Target)
	if frame == nil {
		return
	}
	frame.StartAction(wb.Action, wb.WithConstraint)
	frame.Wheel(e, v.camera)
	v.needsRedraw = true
}

// targetFrame resolves a binding target to the frame it manipulates. The
// frame channel is silently inert while no manipulated frame is set.
func (v *Viewer) targetFrame(t DragTarget) *ManipulatedFrame {
	if t == TargetFrame {
		return v.frame
	}
	return v.camera.Frame()
}

// setMouseGrabber changes the active grabber, resolving its frame
// capability from the pool once.
func (v *Viewer) setMouseGrabber(g Grabber) {
	v.activeGrabber = g
	if g == nil {
		v.activeGrabberFrame = nil
		return
	}
	v.activeGrabberFrame = v.grabbers.frameOf(g)
}

// performClickAction executes a one-shot click action.
func (v *Viewer) performClickAction(action ClickAction, e MouseEvent) {
	switch action {
	case ClickZoomOnPixel:
		target, found := v.PointUnderPixel(e.X, e.Y)
		if !found {
			// Aim at the scene-center plane along the pixel ray.
			dir := v.camera.ViewDirection()
			dist := v.camera.SceneCenter().Sub(v.camera.Position()).Dot(dir)
			target = v.camera.UnprojectedCoordinatesOfOnPlane(float64(e.X), float64(e.Y), dist)
		}
		v.camera.InterpolateToZoomOnPixel(target)

	case ClickZoomToFit:
		v.camera.InterpolateToFitScene()

	case ClickSelect:
		v.Select(e.X, e.Y)

	case ClickRevolvePointFromPixel:
		if target, found := v.PointUnderPixel(e.X, e.Y); found {
			v.camera.SetRevolveAroundPoint(target)
			v.showRevolveHint()
		}

	case ClickRevolvePointToCenter:
		v.camera.SetRevolveAroundPoint(v.camera.SceneCenter())
		v.showRevolveHint()

	case ClickCenterFrame:
		if v.frame != nil {
			v.frame.ProjectOnLine(v.camera.Position(), v.camera.ViewDirection())
		}

	case ClickCenterScene:
		v.camera.CenterScene()

	case ClickShowEntireScene:
		v.camera.ShowEntireScene()

	case ClickAlignFrame:
		if v.frame != nil {
			v.frame.AlignWithFrame(&v.camera.Frame().Frame, false)
		}

	case ClickAlignCamera:
		v.camera.Frame().AlignWithFrame(nil, false)
	}
	v.needsRedraw = true
}

// PointUnderPixel returns the world point visible at the pixel, when a
// depth provider is attached and reports geometry there. Without a
// provider, or on a background pixel, found is false.
func (v *Viewer) PointUnderPixel(x, y int) (point Vec3, found bool) {
	if v.depthImager == nil {
		return Vec3{}, false
	}
	depth, ok := v.depthImager.DepthAt(x, y)
	if !ok || depth >= 1 {
		return Vec3{}, false
	}
	return v.camera.UnprojectedCoordinatesOf(float64(x), float64(y), depth), true
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
