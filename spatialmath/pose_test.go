package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestBasicPoseConstruction(t *testing.T) {
	p := NewZeroPose()
	test.That(t, p.Point(), test.ShouldResemble, r3.Vector{})
	test.That(t, OrientationAlmostEqual(p.Orientation(), NewZeroOrientation()), test.ShouldBeTrue)

	p = NewPoseFromPoint(r3.Vector{X: 1, Y: 2, Z: 3})
	test.That(t, R3VectorAlmostEqual(p.Point(), r3.Vector{X: 1, Y: 2, Z: 3}, 1e-9), test.ShouldBeTrue)

	p = NewPose(r3.Vector{X: 1, Y: 2, Z: 3}, aa45x)
	test.That(t, R3VectorAlmostEqual(p.Point(), r3.Vector{X: 1, Y: 2, Z: 3}, 1e-9), test.ShouldBeTrue)
	test.That(t, OrientationAlmostEqual(p.Orientation(), aa45x), test.ShouldBeTrue)
}

func TestCompose(t *testing.T) {
	rot90z := NewPoseFromOrientation(&R4AA{Theta: math.Pi / 2, RZ: 1})
	shiftX := NewPoseFromPoint(r3.Vector{X: 1})

	// rotating first then translating in the rotated frame moves along +Y
	p := Compose(rot90z, shiftX)
	test.That(t, R3VectorAlmostEqual(p.Point(), r3.Vector{Y: 1}, 1e-9), test.ShouldBeTrue)

	// the other way around translation happens in the parent frame
	p = Compose(shiftX, rot90z)
	test.That(t, R3VectorAlmostEqual(p.Point(), r3.Vector{X: 1}, 1e-9), test.ShouldBeTrue)
	test.That(t, OrientationAlmostEqual(p.Orientation(), rot90z.Orientation()), test.ShouldBeTrue)
}

func TestPoseInverseAndBetween(t *testing.T) {
	a := NewPose(r3.Vector{X: 1, Y: -2, Z: 3}, &EulerAngles{Roll: 0.2, Pitch: 0.4, Yaw: -0.9})
	b := NewPose(r3.Vector{X: -4, Y: 0.5, Z: 2}, &R4AA{Theta: 1.1, RX: 1, RY: 1})

	test.That(t, PoseAlmostEqual(Compose(a, PoseInverse(a)), NewZeroPose()), test.ShouldBeTrue)
	test.That(t, PoseAlmostEqual(Compose(PoseInverse(a), a), NewZeroPose()), test.ShouldBeTrue)

	c := PoseBetween(a, b)
	test.That(t, PoseAlmostEqual(Compose(a, c), b), test.ShouldBeTrue)

	delta := PoseDelta(a, b)
	test.That(t, R3VectorAlmostEqual(delta.Point(), b.Point().Sub(a.Point()), 1e-9), test.ShouldBeTrue)
}

func TestInterpolate(t *testing.T) {
	p1 := NewPoseFromPoint(r3.Vector{X: 0, Y: 0, Z: 0})
	p2 := NewPose(r3.Vector{X: 10, Y: 0, Z: -4}, &R4AA{Theta: math.Pi / 2, RY: 1})

	half := Interpolate(p1, p2, 0.5)
	test.That(t, R3VectorAlmostEqual(half.Point(), r3.Vector{X: 5, Y: 0, Z: -2}, 1e-9), test.ShouldBeTrue)
	test.That(t, OrientationDistance(p1.Orientation(), half.Orientation()), test.ShouldAlmostEqual, math.Pi/4)

	test.That(t, PoseAlmostEqual(Interpolate(p1, p2, 0), p1), test.ShouldBeTrue)
	test.That(t, PoseAlmostEqual(Interpolate(p1, p2, 1), p2), test.ShouldBeTrue)
}

func TestPoseAlmostEqualEps(t *testing.T) {
	a := NewPoseFromPoint(r3.Vector{X: 1, Y: 1, Z: 1})
	b := NewPoseFromPoint(r3.Vector{X: 1, Y: 1, Z: 1.0005})
	test.That(t, PoseAlmostEqual(a, b), test.ShouldBeFalse)
	test.That(t, PoseAlmostEqualEps(a, b, 1e-3), test.ShouldBeTrue)

	c := NewPose(r3.Vector{X: 1, Y: 1, Z: 1}, &R4AA{Theta: 0.01, RZ: 1})
	test.That(t, PoseAlmostEqualEps(a, c, 1e-3), test.ShouldBeFalse)
	test.That(t, PoseAlmostEqualEps(a, c, 0.02), test.ShouldBeTrue)
}
