package viewkit

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertVec(t *testing.T, name string, got, want Vec3) {
	t.Helper()
	if got.Sub(want).Norm() > 1e-6 {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

// --- Vec3 ---

func TestVec3CrossOrthogonal(t *testing.T) {
	got := Vec3{1, 0, 0}.Cross(Vec3{0, 1, 0})
	assertVec(t, "x cross y", got, Vec3{0, 0, 1})
}

func TestVec3NormalizedZero(t *testing.T) {
	got := Vec3{}.Normalized()
	assertVec(t, "normalized zero", got, Vec3{})
}

func TestVec3NormalizedLength(t *testing.T) {
	got := Vec3{3, 4, 0}.Normalized()
	assertNear(t, "norm", got.Norm(), 1)
	assertVec(t, "direction", got, Vec3{0.6, 0.8, 0})
}

// --- Quat ---

func TestQuatRotate90AroundZ(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{0, 0, 1}, math.Pi/2)
	got := q.Rotate(Vec3{1, 0, 0})
	assertVec(t, "rotate x by 90 around z", got, Vec3{0, 1, 0})
}

func TestQuatInverseRoundTrip(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{1, 2, 3}, 0.7)
	v := Vec3{4, -5, 6}
	got := q.Inverse().Rotate(q.Rotate(v))
	assertVec(t, "inverse round trip", got, v)
}

func TestQuatMulComposes(t *testing.T) {
	a := QuatFromAxisAngle(Vec3{0, 0, 1}, math.Pi/2)
	b := QuatFromAxisAngle(Vec3{1, 0, 0}, math.Pi/2)
	v := Vec3{0, 1, 0}
	got := a.Mul(b).Rotate(v)
	want := a.Rotate(b.Rotate(v))
	assertVec(t, "composition", got, want)
}

func TestQuatFromZeroAxis(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{}, 1.0)
	if q != QuatIdentity {
		t.Errorf("zero axis = %v, want identity", q)
	}
}

// --- Slerp ---

func TestSlerpEndpoints(t *testing.T) {
	a := QuatIdentity
	b := QuatFromAxisAngle(Vec3{0, 1, 0}, math.Pi/2)
	if got := Slerp(a, b, 0); math.Abs(quatDot(got, a)) < 1-1e-9 {
		t.Errorf("Slerp(0) = %v, want %v", got, a)
	}
	if got := Slerp(a, b, 1); math.Abs(quatDot(got, b)) < 1-1e-9 {
		t.Errorf("Slerp(1) = %v, want %v", got, b)
	}
}

func TestSlerpHalfway(t *testing.T) {
	a := QuatIdentity
	b := QuatFromAxisAngle(Vec3{0, 1, 0}, math.Pi/2)
	mid := Slerp(a, b, 0.5)
	assertNear(t, "halfway angle", quatAngle(mid), math.Pi/4)
}

func TestSlerpNearlyParallel(t *testing.T) {
	a := QuatIdentity
	b := QuatFromAxisAngle(Vec3{0, 1, 0}, 1e-8)
	got := Slerp(a, b, 0.5)
	n := math.Sqrt(got.X*got.X + got.Y*got.Y + got.Z*got.Z + got.W*got.W)
	assertNear(t, "unit length", n, 1)
}

// --- Trackball ---

func TestTrackballNoMotion(t *testing.T) {
	q := trackballQuat(100, 100, 100, 100, 200, 150, 400, 300)
	assertNear(t, "angle", quatAngle(q), 0)
}

func TestTrackballDegenerateScreen(t *testing.T) {
	q := trackballQuat(0, 0, 10, 10, 0, 0, 0, 0)
	if q != QuatIdentity {
		t.Errorf("zero-size screen = %v, want identity", q)
	}
}

func TestTrackballHorizontalDragAxis(t *testing.T) {
	// Dragging horizontally through the center rotates around the
	// screen's vertical axis.
	q := trackballQuat(180, 150, 220, 150, 200, 150, 400, 300)
	if quatAngle(q) <= 0 {
		t.Fatal("expected a non-zero rotation")
	}
	axis := Vec3{q.X, q.Y, q.Z}.Normalized()
	assertNear(t, "axis x", math.Abs(axis.X), 0)
	assertNear(t, "axis z", math.Abs(axis.Z), 0)
	if math.Abs(axis.Y) < 1-1e-9 {
		t.Errorf("axis = %v, want vertical", axis)
	}
}

// --- Benchmarks ---

func BenchmarkQuatRotate(b *testing.B) {
	q := QuatFromAxisAngle(Vec3{1, 2, 3}, 0.7)
	v := Vec3{4, -5, 6}
	for i := 0; i < b.N; i++ {
		v = q.Rotate(v)
	}
	_ = v
}
