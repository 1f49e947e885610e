// Package spatialmath defines spatial mathematical operations.
// Poses are stored as unit dual quaternions; orientations are interchangeable parameterizations
// that all reduce to a unit quaternion.
package spatialmath

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// Orientation is an interface used to express the different parameterizations of the orientation
// of a rigid object or a frame of reference in 3D Euclidean space.
type Orientation interface {
	AxisAngles() *R4AA
	Quaternion() quat.Number
	EulerAngles() *EulerAngles
}

// NewZeroOrientation returns an orientatation which signifies no rotation.
func NewZeroOrientation() Orientation {
	return &quaternion{Real: 1}
}

// quaternion is the Orientation backing every Pose.
type quaternion quat.Number

// Quaternion returns orientation in quaternion representation.
func (q *quaternion) Quaternion() quat.Number {
	return quat.Number(*q)
}

// AxisAngles returns the orientation in axis angle representation.
func (q *quaternion) AxisAngles() *R4AA {
	aa := QuatToR4AA(q.Quaternion())
	return &aa
}

// EulerAngles returns orientation in Euler angle representation.
func (q *quaternion) EulerAngles() *EulerAngles {
	return QuatToEulerAngles(q.Quaternion())
}

// OrientationAlmostEqual will return a bool describing whether 2 poses have approximately the same orientation.
func OrientationAlmostEqual(o1, o2 Orientation) bool {
	return OrientationAlmostEqualEps(o1, o2, 1e-5)
}

// OrientationAlmostEqualEps will return a bool describing whether 2 poses have approximately the same orientation,
// as measured by the angle of the rotation between them.
func OrientationAlmostEqualEps(o1, o2 Orientation, epsilon float64) bool {
	return OrientationDistance(o1, o2) <= epsilon
}

// OrientationBetween returns the orientation representing the difference between the two given Orientations.
func OrientationBetween(o1, o2 Orientation) Orientation {
	q := quaternion(quat.Mul(o2.Quaternion(), quat.Conj(o1.Quaternion())))
	return &q
}

// OrientationDistance returns the angle in radians, in [0, pi], of the shortest rotation taking o1 to o2.
func OrientationDistance(o1, o2 Orientation) float64 {
	return math.Abs(QuatToR4AA(OrientationBetween(o1, o2).Quaternion()).Theta)
}

// QuaternionAlmostEqual is an equality test for all the float components of a quaternion. Quaternions have double coverage, q == -q,
// and this test does not account for it; use OrientationAlmostEqual for that.
func QuaternionAlmostEqual(a, b quat.Number, tol float64) bool {
	return math.Abs(a.Real-b.Real) < tol &&
		math.Abs(a.Imag-b.Imag) < tol &&
		math.Abs(a.Jmag-b.Jmag) < tol &&
		math.Abs(a.Kmag-b.Kmag) < tol
}

// Norm returns the norm of the quaternion, i.e. the sqrt of the squares of the imaginary parts.
func Norm(q quat.Number) float64 {
	return math.Sqrt(q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
}

// Flip will multiply a quaternion by -1, returning a quaternion representing the same orientation but in the opposing octant.
func Flip(q quat.Number) quat.Number {
	return quat.Number{Real: -q.Real, Imag: -q.Imag, Jmag: -q.Jmag, Kmag: -q.Kmag}
}

// normalizeQuat scales q to unit length. A zero quaternion becomes the identity.
func normalizeQuat(q quat.Number) quat.Number {
	l := quat.Abs(q)
	if l == 0 {
		return quat.Number{Real: 1}
	}
	return quat.Scale(1/l, q)
}

// slerp is spherical linear interpolation between two unit quaternions along the shorter arc.
func slerp(q1, q2 quat.Number, by float64) quat.Number {
	dot := q1.Real*q2.Real + q1.Imag*q2.Imag + q1.Jmag*q2.Jmag + q1.Kmag*q2.Kmag
	if dot < 0 {
		q2 = Flip(q2)
		dot = -dot
	}
	if dot > 0.9995 {
		// nearly parallel, fall back to normalized lerp
		return normalizeQuat(quat.Add(q1, quat.Scale(by, quat.Sub(q2, q1))))
	}
	theta0 := math.Acos(dot)
	theta := theta0 * by
	q3 := normalizeQuat(quat.Sub(q2, quat.Scale(dot, q1)))
	return quat.Add(quat.Scale(math.Cos(theta), q1), quat.Scale(math.Sin(theta), q3))
}

// QuatToR4AA converts a quat to an R4 axis angle in the same way the C++ Eigen library does.
// https://eigen.tuxfamily.org/dox/AngleAxis_8h_source.html
func QuatToR4AA(q quat.Number) R4AA {
	denom := Norm(q)

	angle := 2 * math.Atan2(denom, math.Abs(q.Real))
	if q.Real < 0 {
		angle *= -1
	}

	if denom < 1e-12 {
		return R4AA{Theta: angle, RZ: 1}
	}
	return R4AA{angle, q.Imag / denom, q.Jmag / denom, q.Kmag / denom}
}
