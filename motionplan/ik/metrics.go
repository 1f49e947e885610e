package ik

import (
	"go.viam.com/simpleplanner/referenceframe"
	spatial "go.viam.com/simpleplanner/spatialmath"
)

const orientationDistanceScaling = 10.

// Segment contains all the information a metric needs to measure a movement.
// It contains the starting inputs, the ending inputs, corresponding poses, and the frame it refers to.
// Pose fields may be empty when only joint-space metrics are computed.
type Segment struct {
	StartPosition      spatial.Pose
	EndPosition        spatial.Pose
	StartConfiguration []referenceframe.Input
	EndConfiguration   []referenceframe.Input
	Frame              referenceframe.Frame
}

// State contains the information a metric needs to score a single configuration.
type State struct {
	Position      spatial.Pose
	Configuration []referenceframe.Input
	Frame         referenceframe.Frame
}

// StateMetric are functions which, given a State, produces some score. Lower is better.
// This is used for gradient descent to converge upon a goal pose, for example.
type StateMetric func(*State) float64

// SegmentMetric are functions which produce some score given an Segment. Lower is better.
type SegmentMetric func(*Segment) float64

// TranslationDistance is the euclidean distance between the two positions of a segment.
func TranslationDistance(segment *Segment) float64 {
	return segment.StartPosition.Point().Distance(segment.EndPosition.Point())
}

// RotationDistance is the angle in radians of the shortest rotation between the two positions of a segment.
func RotationDistance(segment *Segment) float64 {
	return spatial.OrientationDistance(segment.StartPosition.Orientation(), segment.EndPosition.Orientation())
}

// JointMaxDelta is the largest absolute change of any single input over the segment.
func JointMaxDelta(segment *Segment) float64 {
	return referenceframe.InputsLInfDistance(segment.StartConfiguration, segment.EndConfiguration)
}

// L2InputMetric is a metric which will return a L2 norm of the StartConfiguration and EndConfiguration in an arc input.
func L2InputMetric(segment *Segment) float64 {
	return referenceframe.InputsL2Distance(segment.StartConfiguration, segment.EndConfiguration)
}

// NewSquaredNormMetric is the default distance function between two poses to be used for gradient descent.
func NewSquaredNormMetric(goal spatial.Pose) StateMetric {
	weightedSqNormDist := func(query *State) float64 {
		delta := spatial.PoseDelta(goal, query.Position)
		// Increase weight for orientation since it's a small number
		return delta.Point().Norm2() + spatial.QuatToR3AA(delta.Orientation().Quaternion()).Mul(orientationDistanceScaling).Norm2()
	}
	return weightedSqNormDist
}
