package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

const defaultPrecision = 1e-8

// Pose represents a 6dof pose, position and orientation, with respect to the origin.
// The Point() method returns the position in (x,y,z) and Orientation() returns the rotation.
type Pose interface {
	Point() r3.Vector
	Orientation() Orientation
}

// NewZeroPose returns a pose at (0,0,0) with same orientation as whatever frame it is placed in.
func NewZeroPose() Pose {
	return newDualQuaternion()
}

// NewPose takes in a position and orientation and returns a Pose.
func NewPose(p r3.Vector, o Orientation) Pose {
	return newDualQuaternionFromPose(p, o)
}

// NewPoseFromPoint takes in a cartesian (x,y,z) and stores it as a vector.
// It will have the same orientation as the frame it is in.
func NewPoseFromPoint(point r3.Vector) Pose {
	return newDualQuaternionFromPose(point, nil)
}

// NewPoseFromOrientation takes in an orientation and returns a pose rotated about the origin.
func NewPoseFromOrientation(o Orientation) Pose {
	return newDualQuaternionFromPose(r3.Vector{}, o)
}

func asDualQuaternion(p Pose) *dualQuaternion {
	if dq, ok := p.(*dualQuaternion); ok {
		return dq
	}
	return newDualQuaternionFromPose(p.Point(), p.Orientation())
}

// Compose treats Poses as functions A(x) and B(x), and produces a new function C(x) = A(B(x)).
// It converts the poses to dual quaternions and multiplies them together, normalizes the transform and returns it.
// Note that this is NOT commutative. Changing the order of inputs will change the result.
func Compose(a, b Pose) Pose {
	result := &dualQuaternion{asDualQuaternion(a).Transformation(asDualQuaternion(b).Number)}
	// Normalization
	if vecLen := quat.Abs(result.Real); vecLen != 1 && vecLen > 0 {
		result.Real = quat.Scale(1/vecLen, result.Real)
		result.Dual = quat.Scale(1/vecLen, result.Dual)
	}
	return result
}

// PoseInverse will return the inverse of a pose. So if a given pose p is the pose of A relative to B, PoseInverse(p)
// will give the pose of B relative to A.
func PoseInverse(p Pose) Pose {
	return asDualQuaternion(p).Invert()
}

// PoseBetween returns the difference between two dualQuaternions, that is, the dq which if multiplied by one will give the other.
// Example: if PoseBetween(a, b) = c, then Compose(a, c) = b.
func PoseBetween(a, b Pose) Pose {
	return Compose(PoseInverse(a), b)
}

// PoseDelta returns the difference between two Poses: the translation between their points and the rotation
// between their orientations, each expressed in the parent frame.
func PoseDelta(a, b Pose) Pose {
	return NewPose(b.Point().Sub(a.Point()), OrientationBetween(a.Orientation(), b.Orientation()))
}

// Interpolate will return a new Pose that has been interpolated the set amount between two poses.
// The translation is interpolated linearly and the orientation along the shortest great arc.
// Note that position and orientation are interpolated separately, so the two may not move together linearly.
func Interpolate(p1, p2 Pose, by float64) Pose {
	pt := p1.Point().Add(p2.Point().Sub(p1.Point()).Mul(by))
	q := quaternion(slerp(normalizeQuat(p1.Orientation().Quaternion()), normalizeQuat(p2.Orientation().Quaternion()), by))
	return NewPose(pt, &q)
}

// PoseAlmostEqual will return a bool describing whether 2 poses are approximately the same.
func PoseAlmostEqual(a, b Pose) bool {
	return PoseAlmostEqualEps(a, b, defaultPrecision)
}

// PoseAlmostEqualEps will return a bool describing whether 2 poses are approximately the same,
// using epsilon both as a distance and as an angle in radians.
func PoseAlmostEqualEps(a, b Pose, epsilon float64) bool {
	return R3VectorAlmostEqual(a.Point(), b.Point(), epsilon) && OrientationAlmostEqualEps(a.Orientation(), b.Orientation(), epsilon)
}

// R3VectorAlmostEqual compares two r3.Vector objects and returns if the all elementwise differences are less than epsilon.
func R3VectorAlmostEqual(a, b r3.Vector, epsilon float64) bool {
	d := a.Sub(b)
	return d.X*d.X <= epsilon*epsilon && d.Y*d.Y <= epsilon*epsilon && d.Z*d.Z <= epsilon*epsilon
}

// PoseString prints a pose in a human readable form.
func PoseString(p Pose) string {
	pt := p.Point()
	aa := p.Orientation().AxisAngles()
	return fmt.Sprintf("{X:%.4f Y:%.4f Z:%.4f TH:%.4f RX:%.4f RY:%.4f RZ:%.4f}", pt.X, pt.Y, pt.Z, aa.Theta, aa.RX, aa.RY, aa.RZ)
}
