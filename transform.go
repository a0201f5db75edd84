package viewkit

import "math"

// Vec3 is a 3D vector used for positions, directions, and axes throughout
// the API.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale returns v scaled by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Cross returns the cross product of v and o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

// Norm returns the Euclidean length of v.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalized returns v scaled to unit length. The zero vector is returned
// unchanged.
func (v Vec3) Normalized() Vec3 {
	n := v.Norm()
	if n < 1e-12 {
		return v
	}
	return v.Scale(1.0 / n)
}

// Quat is a rotation quaternion (X, Y, Z, W with W the scalar part).
type Quat struct {
	X, Y, Z, W float64
}

// QuatIdentity is the identity rotation.
var QuatIdentity = Quat{0, 0, 0, 1}

// QuatFromAxisAngle builds the quaternion rotating by angle radians around
// axis. The axis does not need to be normalized.
func QuatFromAxisAngle(axis Vec3, angle float64) Quat {
	n := axis.Norm()
	if n < 1e-12 {
		return QuatIdentity
	}
	s := math.Sin(angle/2) / n
	return Quat{axis.X * s, axis.Y * s, axis.Z * s, math.Cos(angle / 2)}
}

// Mul returns the composed rotation q then p applied to a vector, i.e.
// p.Mul(q).Rotate(v) == p.Rotate(q.Rotate(v)).
func (p Quat) Mul(q Quat) Quat {
	return Quat{
		p.W*q.X + p.X*q.W + p.Y*q.Z - p.Z*q.Y,
		p.W*q.Y + p.Y*q.W + p.Z*q.X - p.X*q.Z,
		p.W*q.Z + p.Z*q.W + p.X*q.Y - p.Y*q.X,
		p.W*q.W - p.X*q.X - p.Y*q.Y - p.Z*q.Z,
	}
}

// Inverse returns the inverse rotation. Assumes q is normalized.
func (q Quat) Inverse() Quat {
	return Quat{-q.X, -q.Y, -q.Z, q.W}
}

// Normalized returns q scaled to unit length.
func (q Quat) Normalized() Quat {
	n := math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if n < 1e-12 {
		return QuatIdentity
	}
	return Quat{q.X / n, q.Y / n, q.Z / n, q.W / n}
}

// Rotate applies the rotation to v.
func (q Quat) Rotate(v Vec3) Vec3 {
	// v' = v + 2*u x (u x v + w*v), u = (X, Y, Z)
	u := Vec3{q.X, q.Y, q.Z}
	t := u.Cross(v).Add(v.Scale(q.W))
	return v.Add(u.Cross(t).Scale(2))
}

// Slerp spherically interpolates between a and b with parameter t in [0, 1].
// The shorter arc is always taken.
func Slerp(a, b Quat, t float64) Quat {
	cos := a.X*b.X + a.Y*b.Y + a.Z*b.Z + a.W*b.W
	if cos < 0 {
		b = Quat{-b.X, -b.Y, -b.Z, -b.W}
		cos = -cos
	}
	var ka, kb float64
	if cos > 0.9995 {
		// Nearly identical orientations: linear blend avoids division by
		// a vanishing sine.
		ka = 1 - t
		kb = t
	} else {
		angle := math.Acos(cos)
		sin := math.Sin(angle)
		ka = math.Sin((1-t)*angle) / sin
		kb = math.Sin(t*angle) / sin
	}
	return Quat{
		ka*a.X + kb*b.X,
		ka*a.Y + kb*b.Y,
		ka*a.Z + kb*b.Z,
		ka*a.W + kb*b.W,
	}.Normalized()
}

// trackballQuat computes the incremental rotation of a virtual trackball of
// the given screen dimensions, from the previous cursor position to the
// current one, relative to the trackball center (cx, cy). The result is
// expressed in the observer's (camera) coordinate system.
func trackballQuat(prevX, prevY, x, y, cx, cy float64, width, height int) Quat {
	if width <= 0 || height <= 0 {
		return QuatIdentity
	}
	p1 := projectOnBall((prevX-cx)/float64(width), (prevY-cy)/float64(height))
	p2 := projectOnBall((x-cx)/float64(width), (y-cy)/float64(height))
	axis := p2.Cross(p1)
	d := p1.Sub(p2).Norm()
	angle := 2.0 * math.Asin(clamp(d/2.0, -1, 1))
	return QuatFromAxisAngle(axis, angle)
}

// projectOnBall maps normalized screen coordinates onto the deformed unit
// ball: a sphere near the center, blending to a hyperbolic sheet toward the
// edges so the rotation stays continuous when the cursor leaves the ball.
func projectOnBall(x, y float64) Vec3 {
	const size = 1.0
	d := x*x + y*y
	var z float64
	if d < size*size/2 {
		z = math.Sqrt(size*size - d)
	} else {
		z = size * size / 2 / math.Sqrt(d)
	}
	return Vec3{x, -y, z}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
