package physics

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3 is a 3D vector in world space.
type Vec3 = r3.Vec

// Quat is a rotation quaternion. Callers are expected to keep it unit length.
type Quat = quat.Number

var (
	Zero = Vec3{}
	Up   = Vec3{Y: 1}
	// Forward follows the left-handed +Z convention of the source engine.
	Forward = Vec3{Z: 1}

	Identity = Quat{Real: 1}
)

// Magnitude returns |v|.
func Magnitude(v Vec3) float64 { return r3.Norm(v) }

// Mean averages a set of vectors. An empty set yields the zero vector.
func Mean(vs []Vec3) Vec3 {
	if len(vs) == 0 {
		return Zero
	}
	var sum Vec3
	for _, v := range vs {
		sum = r3.Add(sum, v)
	}
	return r3.Scale(1/float64(len(vs)), sum)
}

// AxisAngle builds a rotation of angleDeg degrees around axis.
func AxisAngle(angleDeg float64, axis Vec3) Quat {
	if angleDeg == 0 || r3.Norm(axis) == 0 {
		return Identity
	}
	return quat.Number(r3.NewRotation(angleDeg*math.Pi/180, axis))
}

// AngleBetween returns the angle in degrees of the rotation that takes from
// onto to, in [0, 180]. It is the scalar part of the angle-axis form of
// to * inverse(from).
func AngleBetween(from, to Quat) float64 {
	from = normalize(from)
	to = normalize(to)
	delta := quat.Mul(to, quat.Conj(from))
	w := math.Abs(delta.Real)
	if w > 1 {
		w = 1
	}
	return 2 * math.Acos(w) * 180 / math.Pi
}

// Rotate applies q to v.
func Rotate(q Quat, v Vec3) Vec3 {
	return r3.Rotation(normalize(q)).Rotate(v)
}

func normalize(q Quat) Quat {
	n := quat.Abs(q)
	if n == 0 {
		return Identity
	}
	if n == 1 {
		return q
	}
	return quat.Scale(1/n, q)
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
