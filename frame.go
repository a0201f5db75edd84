package viewkit

import (
	"math"
	"time"
)

// Constraint filters the translations and rotations applied to a Frame.
// Implementations can restrict motion to an axis or a plane. A nil
// constraint leaves motion unfiltered.
type Constraint interface {
	// ConstrainTranslation returns the translation actually applied to the
	// frame when t is requested.
	ConstrainTranslation(t Vec3, f *Frame) Vec3
	// ConstrainRotation returns the rotation actually applied to the frame
	// when q is requested.
	ConstrainRotation(q Quat, f *Frame) Quat
}

// Frame represents a 3D coordinate system: a position and an orientation
// in world coordinates.
type Frame struct {
	position    Vec3
	orientation Quat
	constraint  Constraint
}

// NewFrame creates a world-aligned frame at the origin.
func NewFrame() *Frame {
	return &Frame{orientation: QuatIdentity}
}

// Position returns the frame origin in world coordinates.
func (f *Frame) Position() Vec3 { return f.position }

// SetPosition places the frame origin at p, bypassing any constraint.
func (f *Frame) SetPosition(p Vec3) { f.position = p }

// Orientation returns the frame orientation in world coordinates.
func (f *Frame) Orientation() Quat { return f.orientation }

// SetOrientation sets the frame orientation, bypassing any constraint.
func (f *Frame) SetOrientation(q Quat) { f.orientation = q.Normalized() }

// Constraint returns the constraint applied to the frame motion, or nil.
func (f *Frame) Constraint() Constraint { return f.constraint }

// SetConstraint attaches a motion constraint. Pass nil to remove it.
func (f *Frame) SetConstraint(c Constraint) { f.constraint = c }

// InverseTransformOf returns the world-coordinate vector corresponding to
// the frame-local vector v (directions only, no translation).
func (f *Frame) InverseTransformOf(v Vec3) Vec3 {
	return f.orientation.Rotate(v)
}

// TransformOf returns the frame-local vector corresponding to the world
// vector v (directions only, no translation).
func (f *Frame) TransformOf(v Vec3) Vec3 {
	return f.orientation.Inverse().Rotate(v)
}

// CoordinatesOf converts the world point p into frame-local coordinates.
func (f *Frame) CoordinatesOf(p Vec3) Vec3 {
	return f.orientation.Inverse().Rotate(p.Sub(f.position))
}

// Translate moves the frame by t (world coordinates), filtered by the
// constraint when respectConstraint is true.
func (f *Frame) Translate(t Vec3, respectConstraint bool) {
	if respectConstraint && f.constraint != nil {
		t = f.constraint.ConstrainTranslation(t, f)
	}
	f.position = f.position.Add(t)
}

// Rotate composes the world rotation q with the frame orientation, filtered
// by the constraint when respectConstraint is true.
func (f *Frame) Rotate(q Quat, respectConstraint bool) {
	if respectConstraint && f.constraint != nil {
		q = f.constraint.ConstrainRotation(q, f)
	}
	f.orientation = q.Mul(f.orientation).Normalized()
}

// RotateAroundPoint rotates the frame by the world rotation q around the
// world point p: both position and orientation change.
func (f *Frame) RotateAroundPoint(q Quat, p Vec3, respectConstraint bool) {
	if respectConstraint && f.constraint != nil {
		q = f.constraint.ConstrainRotation(q, f)
	}
	f.position = p.Add(q.Rotate(f.position.Sub(p)))
	f.orientation = q.Mul(f.orientation).Normalized()
}

// AlignWithFrame rotates the frame so its axes coincide with the closest
// axes of other. A nil other aligns with the world coordinate system. When
// move is true the positions are matched as well.
func (f *Frame) AlignWithFrame(other *Frame, move bool) {
	target := QuatIdentity
	targetPos := Vec3{}
	if other != nil {
		target = other.orientation
		targetPos = other.position
	}

	// Snap each of the frame's axes to the nearest target axis by composing
	// the rotation that carries the current Z then X onto the closest
	// target axis.
	f.orientation = snapOrientation(f.orientation, target)
	if move && other != nil {
		f.position = targetPos
	}
}

// snapOrientation returns the orientation from target's axis set that is
// closest to q: the target orientation composed with the 90-degree-step
// rotation minimizing the residual angle.
func snapOrientation(q, target Quat) Quat {
	best := target
	bestDot := math.Abs(quatDot(q, target))
	// All 24 axis-aligned orientations of the target basis.
	for _, axis := range []Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}} {
		for step := 1; step < 4; step++ {
			r := target.Mul(QuatFromAxisAngle(axis, float64(step)*math.Pi/2))
			for _, tilt := range []Quat{
				QuatIdentity,
				QuatFromAxisAngle(Vec3{1, 0, 0}, math.Pi/2),
				QuatFromAxisAngle(Vec3{1, 0, 0}, -math.Pi/2),
				QuatFromAxisAngle(Vec3{1, 0, 0}, math.Pi),
			} {
				cand := r.Mul(tilt).Normalized()
				if d := math.Abs(quatDot(q, cand)); d > bestDot {
					bestDot = d
					best = cand
				}
			}
		}
	}
	return best
}

func quatDot(a, b Quat) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z + a.W*b.W
}

// ProjectOnLine moves the frame position to its orthogonal projection on
// the line defined by origin and direction.
func (f *Frame) ProjectOnLine(origin, direction Vec3) {
	d := direction.Normalized()
	rel := f.position.Sub(origin)
	f.position = origin.Add(d.Scale(rel.Dot(d)))
}

// --- Manipulated frame ---

const (
	// spinDelay is the longest pause between the last drag motion and the
	// release for the frame to keep spinning.
	spinDelay = 50 * time.Millisecond
	// spinMinAngle filters out spin from sub-pixel jitter.
	spinMinAngle = 1e-5
)

// ManipulatedFrame is a Frame that reacts to the drag-action protocol: a
// press starts an action, moves apply it incrementally, a release ends it
// and may leave the frame spinning. It is the free target of mouse bindings.
// Flagged as a camera frame, it is also the camera's own frame.
type ManipulatedFrame struct {
	Frame

	// RotationSensitivity scales rotation drag amplitude. Default 1.
	RotationSensitivity float64
	// TranslationSensitivity scales translation drag amplitude. Default 1.
	TranslationSensitivity float64
	// ZoomSensitivity scales zoom drag amplitude. Default 1.
	ZoomSensitivity float64
	// WheelSensitivity scales wheel zoom amplitude. Default 1.
	WheelSensitivity float64

	action         DragAction
	withConstraint bool

	// isCameraFrame tags the frame as driving the camera. Resolved once at
	// construction so dispatch never inspects types per event.
	isCameraFrame bool

	pressX, pressY int
	prevX, prevY   int

	spinning     bool
	spinQuat     Quat
	spinCenter   Vec3 // revolve point of the spin for camera frames
	lastQuat     Quat
	lastMoveTime time.Time
}

// NewManipulatedFrame creates a free manipulated frame at the world origin.
func NewManipulatedFrame() *ManipulatedFrame {
	return &ManipulatedFrame{
		Frame:                  Frame{orientation: QuatIdentity},
		RotationSensitivity:    1,
		TranslationSensitivity: 1,
		ZoomSensitivity:        1,
		WheelSensitivity:       1,
	}
}

// StartAction arms the frame with a drag action. The action is applied by
// the following MouseMove calls and ended by MouseRelease.
func (mf *ManipulatedFrame) StartAction(action DragAction, withConstraint bool) {
	mf.action = action
	mf.withConstraint = withConstraint
}

// Action returns the drag action currently applied, or ActionNone.
func (mf *ManipulatedFrame) Action() DragAction { return mf.action }

// IsManipulated reports whether a drag action is in progress on the frame.
func (mf *ManipulatedFrame) IsManipulated() bool { return mf.action != ActionNone }

// IsSpinning reports whether the frame keeps rotating after a release.
func (mf *ManipulatedFrame) IsSpinning() bool { return mf.spinning }

// StopSpinning interrupts a running spin.
func (mf *ManipulatedFrame) StopSpinning() { mf.spinning = false }

// PressPosition returns the screen position of the press that started the
// current action. Used by the zoom-region overlay.
func (mf *ManipulatedFrame) PressPosition() (int, int) { return mf.pressX, mf.pressY }

// PrevPosition returns the latest drag position. Used by the screen-rotate
// and zoom-region overlays.
func (mf *ManipulatedFrame) PrevPosition() (int, int) { return mf.prevX, mf.prevY }

// MousePress records the drag anchor. Any running spin stops.
func (mf *ManipulatedFrame) MousePress(e MouseEvent, cam *Camera) {
	mf.spinning = false
	mf.lastQuat = QuatIdentity
	mf.pressX, mf.pressY = e.X, e.Y
	mf.prevX, mf.prevY = e.X, e.Y
}

// MouseMove applies the armed drag action for the displacement since the
// previous event. cam supplies the viewing geometry every action is
// expressed in.
func (mf *ManipulatedFrame) MouseMove(e MouseEvent, cam *Camera) {
	if mf.action == ActionNone || cam == nil {
		mf.prevX, mf.prevY = e.X, e.Y
		return
	}

	dx := float64(e.X - mf.prevX)
	dy := float64(e.Y - mf.prevY)
	w, h := cam.ScreenWidth(), cam.ScreenHeight()

	switch mf.action {
	case ActionRotate:
		var q Quat
		if mf.isCameraFrame {
			cx, cy, _ := cam.ProjectedCoordinatesOf(cam.RevolveAroundPoint())
			q = trackballQuat(float64(mf.prevX), float64(mf.prevY), float64(e.X), float64(e.Y), cx, cy, w, h)
			q = quatScaleAngle(q, mf.RotationSensitivity)
			world := mf.quatToWorld(q).Inverse()
			mf.RotateAroundPoint(world, cam.RevolveAroundPoint(), mf.withConstraint)
			mf.lastQuat = world
			mf.spinCenter = cam.RevolveAroundPoint()
		} else {
			cx, cy, _ := cam.ProjectedCoordinatesOf(mf.position)
			q = trackballQuat(float64(mf.prevX), float64(mf.prevY), float64(e.X), float64(e.Y), cx, cy, w, h)
			q = quatScaleAngle(q, mf.RotationSensitivity)
			world := cam.Frame().quatToWorld(q)
			mf.Rotate(world, mf.withConstraint)
			mf.lastQuat = world
			mf.spinCenter = mf.position
		}
		mf.lastMoveTime = time.Now()

	case ActionZoom:
		coef := mf.zoomCoefficient(cam)
		trans := cam.ViewDirection().Scale(mf.ZoomSensitivity * coef * dy / float64(h))
		if mf.isCameraFrame {
			mf.Translate(trans, mf.withConstraint)
		} else {
			// The frame moves toward the camera when dragging up.
			mf.Translate(trans.Scale(-1), mf.withConstraint)
		}

	case ActionTranslate, ActionScreenTranslate:
		if mf.action == ActionScreenTranslate {
			// Snap to the dominant screen axis.
			if math.Abs(dx) > math.Abs(dy) {
				dy = 0
			} else {
				dx = 0
			}
		}
		k := mf.translationCoefficient(cam) * mf.TranslationSensitivity
		trans := cam.RightVector().Scale(dx * k).Add(cam.UpVector().Scale(-dy * k))
		if mf.isCameraFrame {
			// Dragging right moves the scene right: the camera goes left.
			trans = trans.Scale(-1)
		}
		mf.Translate(trans, mf.withConstraint)

	case ActionScreenRotate:
		var center Vec3
		if mf.isCameraFrame {
			center = cam.RevolveAroundPoint()
		} else {
			center = mf.position
		}
		cx, cy, _ := cam.ProjectedCoordinatesOf(center)
		prev := math.Atan2(float64(mf.prevY)-cy, float64(mf.prevX)-cx)
		cur := math.Atan2(float64(e.Y)-cy, float64(e.X)-cx)
		angle := cur - prev
		axis := cam.ViewDirection()
		q := QuatFromAxisAngle(axis, angle)
		if mf.isCameraFrame {
			mf.RotateAroundPoint(q, center, mf.withConstraint)
		} else {
			mf.Rotate(q, mf.withConstraint)
		}

	case ActionMoveForward, ActionMoveBackward:
		// Fly: constant speed along the view direction, cursor offsets steer.
		dir := cam.ViewDirection()
		if mf.action == ActionMoveBackward {
			dir = dir.Scale(-1)
		}
		mf.Translate(dir.Scale(cam.FlySpeed()), mf.withConstraint)
		mf.lookAround(dx, dy, cam)

	case ActionLookAround:
		mf.lookAround(dx, dy, cam)

	case ActionRoll:
		cx := float64(w) / 2
		cy := float64(h) / 2
		prev := math.Atan2(float64(mf.prevY)-cy, float64(mf.prevX)-cx)
		cur := math.Atan2(float64(e.Y)-cy, float64(e.X)-cx)
		mf.Rotate(QuatFromAxisAngle(cam.ViewDirection(), cur-prev), mf.withConstraint)

	case ActionZoomOnRegion:
		// Rubber band only: the region is applied by the camera on release.
	}

	mf.prevX, mf.prevY = e.X, e.Y
}

// MouseRelease ends the drag action. A rotation released while the cursor
// is still moving leaves the frame spinning; a zoom-on-region release
// applies the rubber-banded region to the camera.
func (mf *ManipulatedFrame) MouseRelease(e MouseEvent, cam *Camera) {
	switch mf.action {
	case ActionRotate:
		if time.Since(mf.lastMoveTime) < spinDelay && quatAngle(mf.lastQuat) > spinMinAngle {
			mf.spinning = true
			mf.spinQuat = mf.lastQuat
		}
	case ActionZoomOnRegion:
		if cam != nil && mf.isCameraFrame {
			x0, y0 := mf.pressX, mf.pressY
			x1, y1 := e.X, e.Y
			if x1 < x0 {
				x0, x1 = x1, x0
			}
			if y1 < y0 {
				y0, y1 = y1, y0
			}
			cam.FitScreenRegion(Rect{X: float64(x0), Y: float64(y0), Width: float64(x1 - x0), Height: float64(y1 - y0)})
		}
	}
	mf.action = ActionNone
}

// Wheel applies the armed wheel action for a scroll of delta notches.
func (mf *ManipulatedFrame) Wheel(e WheelEvent, cam *Camera) {
	if cam == nil {
		mf.action = ActionNone
		return
	}
	switch mf.action {
	case ActionZoom:
		coef := mf.zoomCoefficient(cam)
		trans := cam.ViewDirection().Scale(mf.WheelSensitivity * coef * e.Delta * 0.1)
		if !mf.isCameraFrame {
			trans = trans.Scale(-1)
		}
		mf.Translate(trans, mf.withConstraint)
	case ActionMoveForward:
		mf.Translate(cam.ViewDirection().Scale(cam.FlySpeed()*e.Delta), mf.withConstraint)
	case ActionMoveBackward:
		mf.Translate(cam.ViewDirection().Scale(-cam.FlySpeed()*e.Delta), mf.withConstraint)
	}
	// Wheel actions are one-shot: no move/release follows.
	mf.action = ActionNone
}

// spinUpdate applies one spin step. Called once per frame by the viewer
// while IsSpinning. Returns true when the frame moved.
func (mf *ManipulatedFrame) spinUpdate() bool {
	if !mf.spinning {
		return false
	}
	if mf.isCameraFrame {
		mf.RotateAroundPoint(mf.spinQuat, mf.spinCenter, false)
	} else {
		mf.Rotate(mf.spinQuat, false)
	}
	return true
}

// lookAround applies fly-mode steering: yaw around the world up axis and
// pitch around the camera right axis.
func (mf *ManipulatedFrame) lookAround(dx, dy float64, cam *Camera) {
	w, h := cam.ScreenWidth(), cam.ScreenHeight()
	if w <= 0 || h <= 0 {
		return
	}
	yaw := QuatFromAxisAngle(Vec3{0, 1, 0}, -mf.RotationSensitivity*math.Pi*dx/float64(w))
	pitch := QuatFromAxisAngle(cam.RightVector(), -mf.RotationSensitivity*math.Pi*dy/float64(h))
	mf.Rotate(yaw.Mul(pitch), mf.withConstraint)
}

// zoomCoefficient returns the distance that scales zoom speed: the distance
// to the revolve point (camera frame) or to the camera (free frame), never
// below a fifth of the scene radius so zoom does not stall at contact.
func (mf *ManipulatedFrame) zoomCoefficient(cam *Camera) float64 {
	var d float64
	if mf.isCameraFrame {
		d = mf.position.Sub(cam.RevolveAroundPoint()).Norm()
	} else {
		d = mf.position.Sub(cam.Position()).Norm()
	}
	if min := 0.2 * cam.SceneRadius(); d < min {
		d = min
	}
	return d
}

// translationCoefficient converts one screen pixel into world units at the
// frame's depth.
func (mf *ManipulatedFrame) translationCoefficient(cam *Camera) float64 {
	h := cam.ScreenHeight()
	if h <= 0 {
		return 0
	}
	var d float64
	if mf.isCameraFrame {
		d = mf.position.Sub(cam.RevolveAroundPoint()).Norm()
	} else {
		d = mf.position.Sub(cam.Position()).Norm()
	}
	if d < 1e-6 {
		d = cam.SceneRadius()
	}
	return 2 * d * math.Tan(cam.FieldOfView()/2) / float64(h)
}

// quatToWorld converts a rotation expressed in this frame's coordinate
// system to world coordinates.
func (f *Frame) quatToWorld(q Quat) Quat {
	axis := Vec3{q.X, q.Y, q.Z}
	worldAxis := f.orientation.Rotate(axis)
	return Quat{worldAxis.X, worldAxis.Y, worldAxis.Z, q.W}.Normalized()
}

// quatScaleAngle scales the rotation angle of q by s, keeping the axis.
func quatScaleAngle(q Quat, s float64) Quat {
	if s == 1 {
		return q
	}
	angle := quatAngle(q)
	if angle < 1e-12 {
		return q
	}
	axis := Vec3{q.X, q.Y, q.Z}
	return QuatFromAxisAngle(axis, angle*s)
}

// quatAngle returns the rotation angle of q in radians.
func quatAngle(q Quat) float64 {
	return 2 * math.Acos(clamp(q.W, -1, 1))
}
