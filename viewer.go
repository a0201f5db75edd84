package viewkit

import (
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// SceneDrawer renders the 3D scene. It is the only interface a host must
// implement; the optional capabilities below are detected once when the
// viewer is created.
type SceneDrawer interface {
	Draw(screen *ebiten.Image)
}

// FastDrawer hosts render a cheaper version of the scene while the camera
// or a frame is being dragged.
type FastDrawer interface {
	FastDraw(screen *ebiten.Image)
}

// NamesDrawer hosts take part in selection: DrawWithNames reports every
// pickable object crossing the viewer's SelectRegion via RecordHit.
type NamesDrawer interface {
	DrawWithNames(v *Viewer)
}

// Animator hosts advance their simulation once per animation period while
// the animation is started.
type Animator interface {
	Animate()
}

// DepthImager hosts expose per-pixel depth in [0, 1], enabling
// point-under-pixel queries (revolve point from pixel, zoom on pixel).
type DepthImager interface {
	DepthAt(x, y int) (depth float64, ok bool)
}

// DepthImageProvider hosts expose their depth buffer as an image, enabling
// the z-buffer display mode.
type DepthImageProvider interface {
	DepthImage() *ebiten.Image
}

const (
	defaultMessageDuration = 2 * time.Second
	defaultAnimationPeriod = 40 * time.Millisecond
	// editedZClippingCoefficient replaces the camera's clipping coefficient
	// while the camera-edit display is active, so the frustum stays visible.
	editedZClippingCoefficient = 5.0
)

// Viewer is an embeddable 3D viewer: it owns the camera, the input
// bindings, the selection protocol, the overlays, and the persisted state.
// The host's ebiten.Game calls Update and Draw each frame.
type Viewer struct {
	scene       SceneDrawer
	depthImager DepthImager

	camera *Camera
	frame  *ManipulatedFrame

	bindings bindingTable
	grabbers GrabberPool

	// Dispatch state.
	activeGrabber      Grabber
	activeGrabberFrame *ManipulatedFrame
	draggedFrame       *ManipulatedFrame
	pressedButtons     MouseButtonMask
	lastPressButton    MouseButton
	lastPressTime      time.Time
	lastPressX         int
	lastPressY         int
	lastCursorX        int
	lastCursorY        int
	injectQueue        []syntheticEvent

	// Keyboard state.
	shortcuts       map[KeyboardAction]KeyCombo
	pathKeys        map[ebiten.Key]int
	playPathMods    KeyModifiers
	addKeyFrameMods KeyModifiers
	lastPathIndex   int
	lastPathMods    KeyModifiers
	lastPathTime    time.Time

	// Selection state.
	selecting          bool
	selectHits         []selectionHit
	selectRegion       Rect
	selectRegionWidth  int
	selectRegionHeight int
	selectBufferSize   int
	selectedName       int
	postSelection      func(x, y int)

	// Display flags.
	axisIsDrawn        bool
	gridIsDrawn        bool
	fpsIsDisplayed     bool
	textIsEnabled      bool
	cameraIsEdited     bool
	zBufferIsDisplayed bool
	helpIsDisplayed    bool
	stereo             bool
	zBufferWarned      bool

	foregroundColor Color
	backgroundColor Color

	// Full screen is applied after the frame that requested it has been
	// drawn, so the toggle never tears a frame in half.
	fullScreen      bool
	fullScreenDirty bool
	posX, posY      int
	prevPosX        int
	prevPosY        int

	animationStarted bool
	animationPeriod  time.Duration
	animationAccum   time.Duration

	message      string
	messageUntil time.Time

	revolveHintUntil time.Time

	fps           float64
	fpsFrameCount int
	fpsLastTime   time.Time

	previousZClippingCoefficient float64

	capture BufferCapture

	screenshotQueue []string
	// ScreenshotDir is where queued screenshots are written. Default
	// "screenshots".
	ScreenshotDir string

	needsRedraw   bool
	exitRequested bool
	stateFileName string

	// now is the viewer clock; replaced in tests.
	now func() time.Time

	lastUpdate time.Time
}

// NewViewer creates a viewer rendering the given scene with default
// bindings, shortcuts, and colors. Optional host capabilities (FastDrawer,
// NamesDrawer, Animator, DepthImager, DepthImageProvider) are picked up
// from the scene value.
func NewViewer(scene SceneDrawer) *Viewer {
	v := &Viewer{
		scene:              scene,
		camera:             NewCamera(),
		bindings:           newBindingTable(),
		shortcuts:          make(map[KeyboardAction]KeyCombo),
		pathKeys:           make(map[ebiten.Key]int),
		addKeyFrameMods:    ModAlt,
		selectRegionWidth:  3,
		selectRegionHeight: 3,
		selectBufferSize:   4 * 1000,
		selectedName:       -1,
		textIsEnabled:      true,
		foregroundColor:    ColorWhite,
		backgroundColor:    ColorDarkGray,
		animationPeriod:    defaultAnimationPeriod,
		ScreenshotDir:      "screenshots",
		stateFileName:      ".viewkit.xml",
		needsRedraw:        true,
		now:                time.Now,
	}
	v.depthImager, _ = scene.(DepthImager)
	v.setDefaultMouseBindings()
	v.setDefaultShortcuts()
	v.camera.setPathChangedCallback(v.markDirty)
	return v
}

// Camera returns the viewer's camera.
func (v *Viewer) Camera() *Camera { return v.camera }

// ManipulatedFrame returns the frame driven by the frame-channel bindings,
// or nil.
func (v *Viewer) ManipulatedFrame() *ManipulatedFrame { return v.frame }

// SetManipulatedFrame attaches the frame the frame-channel bindings drive.
// Pass nil to detach; frame bindings are then inert.
func (v *Viewer) SetManipulatedFrame(f *ManipulatedFrame) { v.frame = f }

// Grabbers returns the viewer's grabber pool.
func (v *Viewer) Grabbers() *GrabberPool { return &v.grabbers }

// Capture returns the viewer's buffer capture.
func (v *Viewer) Capture() *BufferCapture { return &v.capture }

// --- Display flags ---

func (v *Viewer) AxisIsDrawn() bool        { return v.axisIsDrawn }
func (v *Viewer) GridIsDrawn() bool        { return v.gridIsDrawn }
func (v *Viewer) FPSIsDisplayed() bool     { return v.fpsIsDisplayed }
func (v *Viewer) TextIsEnabled() bool      { return v.textIsEnabled }
func (v *Viewer) CameraIsEdited() bool     { return v.cameraIsEdited }
func (v *Viewer) ZBufferIsDisplayed() bool { return v.zBufferIsDisplayed }
func (v *Viewer) HelpIsDisplayed() bool    { return v.helpIsDisplayed }
func (v *Viewer) Stereo() bool             { return v.stereo }

func (v *Viewer) SetAxisIsDrawn(b bool) {
	v.axisIsDrawn = b
	v.needsRedraw = true
}

func (v *Viewer) SetGridIsDrawn(b bool) {
	v.gridIsDrawn = b
	v.needsRedraw = true
}

func (v *Viewer) SetFPSIsDisplayed(b bool) {
	v.fpsIsDisplayed = b
	v.needsRedraw = true
}

func (v *Viewer) SetTextIsEnabled(b bool) {
	v.textIsEnabled = b
	v.needsRedraw = true
}

func (v *Viewer) SetZBufferIsDisplayed(b bool) {
	v.zBufferIsDisplayed = b
	v.needsRedraw = true
}

func (v *Viewer) SetStereo(b bool) {
	v.stereo = b
	v.needsRedraw = true
}

// SetCameraIsEdited toggles the camera-edit display. Entering it enlarges
// the camera's clipping coefficient so the frustum and paths stay visible;
// leaving it restores the previous value.
func (v *Viewer) SetCameraIsEdited(b bool) {
	if b == v.cameraIsEdited {
		return
	}
	v.cameraIsEdited = b
	if b {
		v.previousZClippingCoefficient = v.camera.ZClippingCoefficient()
		v.camera.SetZClippingCoefficient(editedZClippingCoefficient)
	} else {
		v.camera.SetZClippingCoefficient(v.previousZClippingCoefficient)
	}
	v.needsRedraw = true
}

// ForegroundColor returns the color overlays draw text and lines with.
func (v *Viewer) ForegroundColor() Color { return v.foregroundColor }

// SetForegroundColor sets the overlay color.
func (v *Viewer) SetForegroundColor(c Color) {
	v.foregroundColor = c
	v.needsRedraw = true
}

// BackgroundColor returns the color the screen is cleared to.
func (v *Viewer) BackgroundColor() Color { return v.backgroundColor }

// SetBackgroundColor sets the clear color.
func (v *Viewer) SetBackgroundColor(c Color) {
	v.backgroundColor = c
	v.needsRedraw = true
}

// --- Full screen ---

// FullScreen returns the requested full-screen state. The window catches up
// at the end of the next drawn frame.
func (v *Viewer) FullScreen() bool { return v.fullScreen }

// SetFullScreen requests a full-screen change. The change is applied after
// the next Draw so the frame in flight completes at its current size.
func (v *Viewer) SetFullScreen(b bool) {
	if b == v.fullScreen {
		return
	}
	if b {
		// Record where to put the window back when full screen ends.
		v.prevPosX, v.prevPosY = ebiten.WindowPosition()
	}
	v.fullScreen = b
	v.fullScreenDirty = true
	v.needsRedraw = true
}

// applyFullScreen performs the deferred window change. Leaving full screen
// restores the position recorded when it was entered.
func (v *Viewer) applyFullScreen() {
	if !v.fullScreenDirty {
		return
	}
	v.fullScreenDirty = false
	if v.fullScreen {
		ebiten.SetFullscreen(true)
	} else {
		ebiten.SetFullscreen(false)
		ebiten.SetWindowPosition(v.prevPosX, v.prevPosY)
	}
}

// --- Animation ---

// AnimationIsStarted reports whether the animation loop is running.
func (v *Viewer) AnimationIsStarted() bool { return v.animationStarted }

// AnimationPeriod returns the interval between Animate calls.
func (v *Viewer) AnimationPeriod() time.Duration { return v.animationPeriod }

// SetAnimationPeriod sets the interval between Animate calls.
func (v *Viewer) SetAnimationPeriod(d time.Duration) {
	if d <= 0 {
		warnf("animation period must be positive (got %v), ignored", d)
		return
	}
	v.animationPeriod = d
}

// StartAnimation starts calling the host's Animate every animation period.
// Hosts that do not implement Animator still get periodic redraws.
func (v *Viewer) StartAnimation() {
	v.animationStarted = true
	v.animationAccum = 0
}

// StopAnimation stops the animation loop.
func (v *Viewer) StopAnimation() { v.animationStarted = false }

// --- Messages and redraw ---

// DisplayMessage shows a transient message in the lower-left corner for
// two seconds.
func (v *Viewer) DisplayMessage(msg string) {
	v.DisplayMessageFor(msg, defaultMessageDuration)
}

// DisplayMessageFor shows a transient message for the given duration.
func (v *Viewer) DisplayMessageFor(msg string, d time.Duration) {
	v.message = msg
	v.messageUntil = v.now().Add(d)
	v.needsRedraw = true
}

// Message returns the current transient message, which may have expired.
func (v *Viewer) Message() string { return v.message }

// NeedsRedraw reports whether viewer state changed since the last Draw.
// Hosts running on ebiten's ScreenClearedEveryFrame(false) or an external
// redraw policy can use it to skip frames.
func (v *Viewer) NeedsRedraw() bool { return v.needsRedraw }

// SetNeedsRedraw marks the display dirty.
func (v *Viewer) SetNeedsRedraw() { v.needsRedraw = true }

func (v *Viewer) markDirty() { v.needsRedraw = true }

// showRevolveHint arms the revolve-point crosshair for its display window.
func (v *Viewer) showRevolveHint() {
	v.revolveHintUntil = v.now().Add(revolveHintDuration)
	v.needsRedraw = true
}

// HelpString returns the mouse and keyboard help text.
func (v *Viewer) HelpString() string {
	return "Mouse\n" + v.MouseString() + "\nKeyboard\n" + v.KeyboardString()
}

// --- Frame loop ---

// Update advances the viewer: injected then polled input, camera
// animations, frame spin, and the host animation loop. Returns
// ebiten.Termination after the exit shortcut has saved the state.
func (v *Viewer) Update() error {
	now := v.now()
	var dt float64
	if !v.lastUpdate.IsZero() {
		dt = now.Sub(v.lastUpdate).Seconds()
	}
	if dt > 0.25 {
		dt = 0.25
	}
	v.lastUpdate = now

	if !v.processInjectedInput() {
		v.pollInput()
	}

	if !v.fullScreen {
		// Track the window so the saved geometry reflects where the user
		// last put it.
		v.posX, v.posY = ebiten.WindowPosition()
	}

	if v.camera.Update(dt) {
		v.needsRedraw = true
	}
	if v.frame != nil && v.frame.spinUpdate() {
		v.needsRedraw = true
	}

	if v.animationStarted {
		v.animationAccum += time.Duration(dt * float64(time.Second))
		for v.animationAccum >= v.animationPeriod {
			v.animationAccum -= v.animationPeriod
			if a, ok := v.scene.(Animator); ok {
				a.Animate()
			}
			v.needsRedraw = true
		}
	}

	if v.exitRequested {
		if err := v.SaveStateToFile(); err != nil {
			warnf("%v", err)
		}
		return ebiten.Termination
	}
	return nil
}

// Draw clears the screen, renders the host scene (the fast version during
// drags when the host has one), stacks the overlays, and finally applies a
// pending full-screen change.
func (v *Viewer) Draw(screen *ebiten.Image) {
	b := screen.Bounds()
	v.camera.SetScreenWidthAndHeight(b.Dx(), b.Dy())

	screen.Fill(toNRGBA(v.backgroundColor))

	if fd, ok := v.scene.(FastDrawer); ok && v.draggedFrame != nil {
		fd.FastDraw(screen)
	} else if v.scene != nil {
		v.scene.Draw(screen)
	}

	v.postDraw(screen)
	v.updateFPS()
	v.flushScreenshots(screen)
	v.needsRedraw = false

	v.applyFullScreen()
}

func toNRGBA(c Color) color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp(c.R, 0, 1)*255 + 0.5),
		G: uint8(clamp(c.G, 0, 1)*255 + 0.5),
		B: uint8(clamp(c.B, 0, 1)*255 + 0.5),
		A: uint8(clamp(c.A, 0, 1)*255 + 0.5),
	}
}
