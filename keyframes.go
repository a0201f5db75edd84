package viewkit

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// keyFrame is one recorded pose on a camera path.
type keyFrame struct {
	time        float64 // seconds from the start of the path
	position    Vec3
	orientation Quat
}

// KeyFrameInterpolator stores a sequence of timed camera poses and plays
// them back, writing the interpolated pose to its target frame each Update.
// Successive keyframes are one second apart by default.
//
// There is no global interpolator manager: the camera owns its paths and
// calls Update on them.
type KeyFrameInterpolator struct {
	target *ManipulatedFrame

	keyFrames []keyFrame

	// InterpolationSpeed scales playback: 2 plays the path twice as fast.
	InterpolationSpeed float64
	// LoopInterpolation restarts the path when it reaches the end.
	LoopInterpolation bool

	interpolationTime float64
	started           bool
	tween             *gween.Tween

	changed func()
}

// NewKeyFrameInterpolator creates an empty interpolator writing to target.
func NewKeyFrameInterpolator(target *ManipulatedFrame) *KeyFrameInterpolator {
	return &KeyFrameInterpolator{
		target:             target,
		InterpolationSpeed: 1,
	}
}

// SetChangedCallback registers fn to be called every time playback moves
// the target frame. Pass nil to detach.
func (k *KeyFrameInterpolator) SetChangedCallback(fn func()) { k.changed = fn }

// NumberOfKeyFrames returns how many poses the path holds.
func (k *KeyFrameInterpolator) NumberOfKeyFrames() int { return len(k.keyFrames) }

// Duration returns the time span of the path in seconds.
func (k *KeyFrameInterpolator) Duration() float64 {
	if len(k.keyFrames) < 2 {
		return 0
	}
	return k.keyFrames[len(k.keyFrames)-1].time - k.keyFrames[0].time
}

// AddKeyFrame appends a pose one second after the last one.
func (k *KeyFrameInterpolator) AddKeyFrame(position Vec3, orientation Quat) {
	t := 0.0
	if n := len(k.keyFrames); n > 0 {
		t = k.keyFrames[n-1].time + 1
	}
	k.AddKeyFrameAtTime(position, orientation, t)
}

// AddKeyFrameAtTime appends a pose at an explicit time. Times must be
// non-decreasing; an earlier time is clamped to the current end.
func (k *KeyFrameInterpolator) AddKeyFrameAtTime(position Vec3, orientation Quat, time float64) {
	if n := len(k.keyFrames); n > 0 && time < k.keyFrames[n-1].time {
		time = k.keyFrames[n-1].time
	}
	k.keyFrames = append(k.keyFrames, keyFrame{time: time, position: position, orientation: orientation.Normalized()})
}

// DeletePath removes all keyframes and stops playback.
func (k *KeyFrameInterpolator) DeletePath() {
	k.StopInterpolation()
	k.keyFrames = nil
	k.interpolationTime = 0
}

// InterpolationIsStarted reports whether the path is playing.
func (k *KeyFrameInterpolator) InterpolationIsStarted() bool { return k.started }

// InterpolationTime returns the current playback time in seconds.
func (k *KeyFrameInterpolator) InterpolationTime() float64 { return k.interpolationTime }

// StartInterpolation plays the path from the current time, restarting from
// the beginning when the previous playback ran to the end. Paths with fewer
// than two keyframes jump to the single pose and finish immediately.
func (k *KeyFrameInterpolator) StartInterpolation() {
	if len(k.keyFrames) == 0 {
		return
	}
	if len(k.keyFrames) == 1 {
		k.applyPose(k.keyFrames[0].time)
		k.notify()
		return
	}
	end := k.keyFrames[len(k.keyFrames)-1].time
	if k.interpolationTime >= end {
		k.interpolationTime = k.keyFrames[0].time
	}
	remaining := end - k.interpolationTime
	if k.InterpolationSpeed > 0 {
		remaining /= k.InterpolationSpeed
	}
	k.tween = gween.New(float32(k.interpolationTime), float32(end), float32(remaining), ease.Linear)
	k.started = true
}

// StopInterpolation pauses playback, keeping the current time.
func (k *KeyFrameInterpolator) StopInterpolation() {
	k.started = false
	k.tween = nil
}

// ResetInterpolation stops playback and rewinds to the first keyframe,
// snapping the target frame to it.
func (k *KeyFrameInterpolator) ResetInterpolation() {
	k.StopInterpolation()
	if len(k.keyFrames) == 0 {
		return
	}
	k.interpolationTime = k.keyFrames[0].time
	k.applyPose(k.interpolationTime)
	k.notify()
}

// Update advances playback by dt seconds and writes the interpolated pose
// to the target frame. Returns true when the frame moved.
func (k *KeyFrameInterpolator) Update(dt float64) bool {
	if !k.started || k.tween == nil {
		return false
	}
	t, finished := k.tween.Update(float32(dt))
	k.interpolationTime = float64(t)
	k.applyPose(k.interpolationTime)
	k.notify()
	if finished {
		if k.LoopInterpolation {
			k.interpolationTime = k.keyFrames[0].time
			k.StartInterpolation()
		} else {
			k.started = false
			k.tween = nil
		}
	}
	return true
}

// applyPose writes the pose at time t to the target frame, interpolating
// between the surrounding keyframes.
func (k *KeyFrameInterpolator) applyPose(t float64) {
	if k.target == nil || len(k.keyFrames) == 0 {
		return
	}
	first := k.keyFrames[0]
	last := k.keyFrames[len(k.keyFrames)-1]
	switch {
	case t <= first.time:
		k.target.SetPosition(first.position)
		k.target.SetOrientation(first.orientation)
		return
	case t >= last.time:
		k.target.SetPosition(last.position)
		k.target.SetOrientation(last.orientation)
		return
	}
	for i := 1; i < len(k.keyFrames); i++ {
		a, b := k.keyFrames[i-1], k.keyFrames[i]
		if t > b.time {
			continue
		}
		span := b.time - a.time
		var s float64
		if span > 1e-12 {
			s = (t - a.time) / span
		}
		k.target.SetPosition(a.position.Add(b.position.Sub(a.position).Scale(s)))
		k.target.SetOrientation(Slerp(a.orientation, b.orientation, s))
		return
	}
}

func (k *KeyFrameInterpolator) notify() {
	if k.changed != nil {
		k.changed()
	}
}
