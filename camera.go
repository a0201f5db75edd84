package viewkit

import (
	"math"
	"sort"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// CameraMode selects how the default bindings drive the camera.
type CameraMode uint8

const (
	// CameraModeRevolve orbits the camera around the revolve point.
	CameraModeRevolve CameraMode = iota
	// CameraModeFly moves the camera at flySpeed along the view direction.
	CameraModeFly
)

func (m CameraMode) String() string {
	if m == CameraModeFly {
		return "fly"
	}
	return "revolve"
}

// goalAnim holds the tween driving a camera interpolation to a fixed pose,
// started by zoom-on-pixel, zoom-to-fit, and the fit-scene shortcut.
type goalAnim struct {
	tween      *gween.Tween
	fromPos    Vec3
	toPos      Vec3
	fromOrient Quat
	toOrient   Quat
	toRevolve  Vec3
	setRevolve bool
	done       bool
}

// Camera defines the observer of the scene: a manipulated frame carrying the
// position and orientation, the perspective parameters, and the scene sphere
// the clipping planes and fit operations derive from.
type Camera struct {
	frame *ManipulatedFrame

	screenWidth  int
	screenHeight int

	fieldOfView float64 // vertical, radians

	sceneCenter Vec3
	sceneRadius float64

	revolveAroundPoint Vec3

	// zNearCoefficient bounds the near plane away from zero.
	zNearCoefficient float64
	// zClippingCoefficient scales the scene radius into clipping distances.
	zClippingCoefficient float64

	mode     CameraMode
	flySpeed float64

	anim *goalAnim

	paths map[int]*KeyFrameInterpolator

	// onPathChanged is wired by the viewer when a path goes from empty to
	// non-empty, and torn down on delete. It marks the viewer dirty while a
	// path plays.
	onPathChanged func()
}

// NewCamera creates a camera at (0, 0, 1) looking at the origin, with a unit
// scene sphere centered at the origin.
func NewCamera() *Camera {
	f := NewManipulatedFrame()
	f.isCameraFrame = true
	c := &Camera{
		frame:                f,
		screenWidth:          600,
		screenHeight:         400,
		fieldOfView:          math.Pi / 4,
		sceneRadius:          1,
		zNearCoefficient:     0.005,
		zClippingCoefficient: 5.0,
		paths:                make(map[int]*KeyFrameInterpolator),
	}
	c.SetSceneRadius(1)
	f.SetPosition(Vec3{0, 0, 1})
	return c
}

// Frame returns the manipulated frame that carries the camera pose. Drag
// bindings targeting the camera are dispatched to it.
func (c *Camera) Frame() *ManipulatedFrame { return c.frame }

// Position returns the camera position in world coordinates.
func (c *Camera) Position() Vec3 { return c.frame.Position() }

// SetPosition moves the camera to p.
func (c *Camera) SetPosition(p Vec3) { c.frame.SetPosition(p) }

// Orientation returns the camera orientation in world coordinates.
func (c *Camera) Orientation() Quat { return c.frame.Orientation() }

// SetOrientation sets the camera orientation.
func (c *Camera) SetOrientation(q Quat) { c.frame.SetOrientation(q) }

// ViewDirection returns the normalized direction the camera looks along.
func (c *Camera) ViewDirection() Vec3 {
	return c.frame.InverseTransformOf(Vec3{0, 0, -1})
}

// UpVector returns the up direction of the camera in world coordinates.
func (c *Camera) UpVector() Vec3 {
	return c.frame.InverseTransformOf(Vec3{0, 1, 0})
}

// RightVector returns the right direction of the camera in world coordinates.
func (c *Camera) RightVector() Vec3 {
	return c.frame.InverseTransformOf(Vec3{1, 0, 0})
}

// LookAt rotates the camera so target is on the view axis. The up vector is
// preserved as much as possible.
func (c *Camera) LookAt(target Vec3) {
	dir := target.Sub(c.Position())
	if dir.Norm() < 1e-12 {
		return
	}
	dir = dir.Normalized()
	cur := c.ViewDirection()
	axis := cur.Cross(dir)
	angle := math.Acos(clamp(cur.Dot(dir), -1, 1))
	c.frame.Rotate(QuatFromAxisAngle(axis, angle), false)
}

// ScreenWidth returns the viewport width in pixels.
func (c *Camera) ScreenWidth() int { return c.screenWidth }

// ScreenHeight returns the viewport height in pixels.
func (c *Camera) ScreenHeight() int { return c.screenHeight }

// SetScreenWidthAndHeight sets the viewport dimensions used by projections
// and by the pixel-to-world conversions of the drag actions.
func (c *Camera) SetScreenWidthAndHeight(w, h int) {
	c.screenWidth = w
	c.screenHeight = h
}

// AspectRatio returns width over height.
func (c *Camera) AspectRatio() float64 {
	if c.screenHeight == 0 {
		return 1
	}
	return float64(c.screenWidth) / float64(c.screenHeight)
}

// FieldOfView returns the vertical field of view in radians.
func (c *Camera) FieldOfView() float64 { return c.fieldOfView }

// SetFieldOfView sets the vertical field of view in radians.
func (c *Camera) SetFieldOfView(fov float64) { c.fieldOfView = fov }

// SceneCenter returns the center of the scene sphere.
func (c *Camera) SceneCenter() Vec3 { return c.sceneCenter }

// SetSceneCenter sets the center of the scene sphere. The revolve point
// follows it.
func (c *Camera) SetSceneCenter(center Vec3) {
	c.sceneCenter = center
	c.revolveAroundPoint = center
}

// SceneRadius returns the radius of the scene sphere.
func (c *Camera) SceneRadius() float64 { return c.sceneRadius }

// SetSceneRadius sets the radius of the scene sphere and rescales the fly
// speed to one percent of it.
func (c *Camera) SetSceneRadius(r float64) {
	if r <= 0 {
		warnf("scene radius must be positive (got %g), ignored", r)
		return
	}
	c.sceneRadius = r
	c.flySpeed = 0.01 * r
}

// RevolveAroundPoint returns the point the rotate drag action orbits.
func (c *Camera) RevolveAroundPoint() Vec3 { return c.revolveAroundPoint }

// SetRevolveAroundPoint changes the orbit point of the rotate drag action.
func (c *Camera) SetRevolveAroundPoint(p Vec3) { c.revolveAroundPoint = p }

// Mode returns the current camera mode.
func (c *Camera) Mode() CameraMode { return c.mode }

// SetMode switches between revolve and fly mode and rebinds the default
// drag actions accordingly when the owning viewer toggles it.
func (c *Camera) SetMode(m CameraMode) { c.mode = m }

// FlySpeed returns the fly-mode speed in world units per move event.
func (c *Camera) FlySpeed() float64 { return c.flySpeed }

// SetFlySpeed sets the fly-mode speed.
func (c *Camera) SetFlySpeed(s float64) { c.flySpeed = s }

// ZClippingCoefficient returns the coefficient that scales the scene radius
// into the far clipping distance.
func (c *Camera) ZClippingCoefficient() float64 { return c.zClippingCoefficient }

// SetZClippingCoefficient sets the clipping coefficient. The camera-edit
// display mode enlarges it temporarily to keep the frustum drawing visible.
func (c *Camera) SetZClippingCoefficient(coef float64) { c.zClippingCoefficient = coef }

// ZNear returns the near clipping distance for the current pose.
func (c *Camera) ZNear() float64 {
	z := c.DistanceToSceneCenter() - c.zClippingCoefficient*c.sceneRadius
	if min := c.zNearCoefficient * c.zClippingCoefficient * c.sceneRadius; z < min {
		z = min
	}
	return z
}

// ZFar returns the far clipping distance for the current pose.
func (c *Camera) ZFar() float64 {
	return c.DistanceToSceneCenter() + c.zClippingCoefficient*c.sceneRadius
}

// DistanceToSceneCenter returns the distance from the camera to the scene
// center along the view axis.
func (c *Camera) DistanceToSceneCenter() float64 {
	return math.Abs(c.frame.CoordinatesOf(c.sceneCenter).Z)
}

// ProjectedCoordinatesOf projects the world point p onto the screen. Returns
// pixel coordinates (origin top-left) and a depth in [0, 1] between the near
// and far planes. Points behind the camera project with negative depth.
func (c *Camera) ProjectedCoordinatesOf(p Vec3) (x, y, depth float64) {
	q := c.frame.CoordinatesOf(p)
	dist := -q.Z
	if math.Abs(dist) < 1e-12 {
		dist = 1e-12
	}
	halfH := math.Tan(c.fieldOfView/2) * dist
	halfW := halfH * c.AspectRatio()
	x = (q.X/halfW + 1) / 2 * float64(c.screenWidth)
	y = (1 - q.Y/halfH) / 2 * float64(c.screenHeight)
	zn, zf := c.ZNear(), c.ZFar()
	if zf-zn < 1e-12 {
		depth = 0
	} else {
		depth = (dist - zn) / (zf - zn)
	}
	return x, y, depth
}

// UnprojectedCoordinatesOf maps the screen pixel (x, y) at the given depth
// (in [0, 1] between the clipping planes) back to a world point. It is the
// inverse of ProjectedCoordinatesOf.
func (c *Camera) UnprojectedCoordinatesOf(x, y, depth float64) Vec3 {
	zn, zf := c.ZNear(), c.ZFar()
	dist := zn + depth*(zf-zn)
	halfH := math.Tan(c.fieldOfView/2) * dist
	halfW := halfH * c.AspectRatio()
	qx := (2*x/float64(c.screenWidth) - 1) * halfW
	qy := (1 - 2*y/float64(c.screenHeight)) * halfH
	local := Vec3{qx, qy, -dist}
	return c.frame.position.Add(c.frame.InverseTransformOf(local))
}

// PixelRay returns the origin and the normalized direction of the ray cast
// from the camera through the screen pixel (x, y).
func (c *Camera) PixelRay(x, y float64) (origin, direction Vec3) {
	origin = c.Position()
	target := c.UnprojectedCoordinatesOf(x, y, 0.5)
	return origin, target.Sub(origin).Normalized()
}

// --- Fit operations ---

// FitSphere moves the camera along its view axis so the sphere (center,
// radius) is entirely visible.
func (c *Camera) FitSphere(center Vec3, radius float64) {
	yView := radius / math.Sin(c.fieldOfView/2)
	xView := radius / math.Sin(c.horizontalFieldOfView()/2)
	d := math.Max(xView, yView)
	c.frame.SetPosition(center.Sub(c.ViewDirection().Scale(d)))
}

func (c *Camera) horizontalFieldOfView() float64 {
	return 2 * math.Atan(math.Tan(c.fieldOfView/2)*c.AspectRatio())
}

// ShowEntireScene moves the camera so the whole scene sphere is visible.
func (c *Camera) ShowEntireScene() {
	c.FitSphere(c.sceneCenter, c.sceneRadius)
}

// CenterScene translates the camera in its screen plane so the scene center
// lands on the view axis.
func (c *Camera) CenterScene() {
	q := c.frame.CoordinatesOf(c.sceneCenter)
	// Cancel the lateral offset, keep the distance.
	offset := c.frame.InverseTransformOf(Vec3{q.X, q.Y, 0})
	c.frame.Translate(offset, false)
}

// FitScreenRegion moves the camera along its view axis so the world region
// seen through the screen rectangle fills the viewport.
func (c *Camera) FitScreenRegion(r Rect) {
	if r.Width < 1 || r.Height < 1 {
		return
	}
	// The region is anchored on the plane through the scene center
	// orthogonal to the view direction.
	dir := c.ViewDirection()
	dist := c.sceneCenter.Sub(c.Position()).Dot(dir)
	center := c.UnprojectedCoordinatesOfOnPlane(r.X+r.Width/2, r.Y+r.Height/2, dist)
	corner := c.UnprojectedCoordinatesOfOnPlane(r.X, r.Y, dist)

	halfDiagY := math.Abs(corner.Sub(center).Dot(c.UpVector()))
	halfDiagX := math.Abs(corner.Sub(center).Dot(c.RightVector()))
	dY := halfDiagY / math.Tan(c.fieldOfView/2)
	dX := halfDiagX / math.Tan(c.horizontalFieldOfView()/2)
	d := math.Max(dX, dY)
	if d < 1e-6 {
		return
	}
	c.frame.SetPosition(center.Sub(dir.Scale(d)))
}

// UnprojectedCoordinatesOfOnPlane intersects the pixel ray with the plane
// orthogonal to the view direction at the given distance from the camera.
func (c *Camera) UnprojectedCoordinatesOfOnPlane(x, y, dist float64) Vec3 {
	halfH := math.Tan(c.fieldOfView/2) * dist
	halfW := halfH * c.AspectRatio()
	qx := (2*x/float64(c.screenWidth) - 1) * halfW
	qy := (1 - 2*y/float64(c.screenHeight)) * halfH
	return c.frame.position.Add(c.frame.InverseTransformOf(Vec3{qx, qy, -dist}))
}

// --- Goal interpolation ---

// interpolationDuration is the length of the zoom/fit camera animations.
const interpolationDuration = 0.4 // seconds

// InterpolateTo animates the camera to the given pose over duration seconds.
// Any running interpolation is replaced.
func (c *Camera) InterpolateTo(position Vec3, orientation Quat, duration float32) {
	c.anim = &goalAnim{
		tween:      gween.New(0, 1, duration, ease.OutQuad),
		fromPos:    c.Position(),
		toPos:      position,
		fromOrient: c.Orientation(),
		toOrient:   orientation,
	}
}

// InterpolateToFitScene animates the camera to the pose ShowEntireScene
// would jump to.
func (c *Camera) InterpolateToFitScene() {
	pos := c.Position()
	c.ShowEntireScene()
	target := c.Position()
	c.frame.SetPosition(pos)
	c.InterpolateTo(target, c.Orientation(), interpolationDuration)
}

// InterpolateToZoomOnPixel animates the camera toward the world point under
// the pixel, moving half the distance and making it the new revolve point.
func (c *Camera) InterpolateToZoomOnPixel(target Vec3) {
	to := c.Position().Add(target.Sub(c.Position()).Scale(0.5))
	c.InterpolateTo(to, c.Orientation(), interpolationDuration)
	c.anim.toRevolve = target
	c.anim.setRevolve = true
}

// InterpolationIsRunning reports whether a goal interpolation is in flight.
func (c *Camera) InterpolationIsRunning() bool {
	return c.anim != nil && !c.anim.done
}

// --- Keyframe paths ---

// Path returns the keyframe interpolator bound to the given index, or nil.
func (c *Camera) Path(index int) *KeyFrameInterpolator {
	return c.paths[index]
}

// PathIndexes returns the indexes that currently hold a path, sorted.
func (c *Camera) PathIndexes() []int {
	out := make([]int, 0, len(c.paths))
	for i := range c.paths {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// AddKeyFrameToPath appends the current camera pose to the path at index,
// creating the path when absent. The first keyframe of a new path wires the
// change callback so playback keeps the display fresh.
func (c *Camera) AddKeyFrameToPath(index int) {
	kfi, ok := c.paths[index]
	if !ok {
		kfi = NewKeyFrameInterpolator(c.frame)
		kfi.SetChangedCallback(c.onPathChanged)
		c.paths[index] = kfi
	}
	kfi.AddKeyFrame(c.Position(), c.Orientation())
}

// PlayPath toggles playback of the path at index. Starting a path stops any
// other playing path first. A missing or empty path is a no-op.
func (c *Camera) PlayPath(index int) {
	kfi, ok := c.paths[index]
	if !ok || kfi.NumberOfKeyFrames() == 0 {
		return
	}
	if kfi.InterpolationIsStarted() {
		kfi.StopInterpolation()
		return
	}
	for i, other := range c.paths {
		if i != index && other.InterpolationIsStarted() {
			other.StopInterpolation()
		}
	}
	kfi.StartInterpolation()
}

// ResetPath rewinds the path at index to its first keyframe, stopping a
// running playback.
func (c *Camera) ResetPath(index int) {
	if kfi, ok := c.paths[index]; ok {
		kfi.ResetInterpolation()
	}
}

// DeletePath removes the path at index, stopping it and detaching its
// change callback.
func (c *Camera) DeletePath(index int) {
	if kfi, ok := c.paths[index]; ok {
		kfi.StopInterpolation()
		kfi.SetChangedCallback(nil)
		delete(c.paths, index)
	}
}

// setPathChangedCallback wires the callback new paths attach to. Existing
// paths are rewired as well.
func (c *Camera) setPathChangedCallback(fn func()) {
	c.onPathChanged = fn
	for _, kfi := range c.paths {
		kfi.SetChangedCallback(fn)
	}
}

// Update advances camera animations by dt seconds: the goal interpolation,
// playing keyframe paths, and a released spin. Returns true when the camera
// moved.
func (c *Camera) Update(dt float64) bool {
	moved := false

	if c.anim != nil && !c.anim.done {
		t, finished := c.anim.tween.Update(float32(dt))
		s := float64(t)
		c.frame.SetPosition(c.anim.fromPos.Add(c.anim.toPos.Sub(c.anim.fromPos).Scale(s)))
		c.frame.SetOrientation(Slerp(c.anim.fromOrient, c.anim.toOrient, s))
		if finished {
			c.anim.done = true
			if c.anim.setRevolve {
				c.revolveAroundPoint = c.anim.toRevolve
			}
		}
		moved = true
	}

	for _, kfi := range c.paths {
		if kfi.Update(dt) {
			moved = true
		}
	}

	if c.frame.spinUpdate() {
		moved = true
	}

	return moved
}
