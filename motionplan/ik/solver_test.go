package ik

import (
	"context"
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/simpleplanner/logging"
	"go.viam.com/simpleplanner/referenceframe"
	spatial "go.viam.com/simpleplanner/spatialmath"
	"go.viam.com/simpleplanner/utils"
)

func loadIIWA(t *testing.T) referenceframe.Model {
	t.Helper()
	m, err := referenceframe.ParseModelJSONFile(utils.ResolveFile("models/iiwa7.json"), "")
	test.That(t, err, test.ShouldBeNil)
	return m
}

func TestSolveIIWA(t *testing.T) {
	logger := logging.NewTestLogger(t)
	m := loadIIWA(t)
	solver := CreateDampedLeastSquaresSolver(logger, 0, -1, 0)

	for _, target := range [][]float64{
		{1, 1, 1, 1, 1, 1, 1},
		{0.5, -0.3, 0.2, -1.2, 0.1, 0.8, -0.4},
		{-1, 0.7, 0, 1.5, 0, -0.5, 0},
	} {
		goal, err := m.Transform(referenceframe.FloatsToInputs(target))
		test.That(t, err, test.ShouldBeNil)

		solution, err := solver.Solve(context.Background(), m, goal, make([]referenceframe.Input, 7))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, len(solution), test.ShouldEqual, 7)

		reached, err := m.Transform(solution)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, reached.Point().Distance(goal.Point()), test.ShouldBeLessThan, 1e-6)
		test.That(t, spatial.OrientationDistance(reached.Orientation(), goal.Orientation()), test.ShouldBeLessThan, 1e-6)
	}
}

func TestSolveDeterministic(t *testing.T) {
	m := loadIIWA(t)
	goal, err := m.Transform(referenceframe.FloatsToInputs([]float64{1, 1, 1, 1, 1, 1, 1}))
	test.That(t, err, test.ShouldBeNil)
	seed := make([]referenceframe.Input, 7)

	a, err := CreateDampedLeastSquaresSolver(logging.NewTestLogger(t), 0, -1, 0).Solve(context.Background(), m, goal, seed)
	test.That(t, err, test.ShouldBeNil)
	b, err := CreateDampedLeastSquaresSolver(logging.NewTestLogger(t), 0, -1, 0).Solve(context.Background(), m, goal, seed)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cmp.Diff(a, b), test.ShouldBeEmpty)
}

func TestSolveFromGoalSeed(t *testing.T) {
	m := loadIIWA(t)
	target := referenceframe.FloatsToInputs([]float64{0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9})
	goal, err := m.Transform(target)
	test.That(t, err, test.ShouldBeNil)

	solution, err := CreateDampedLeastSquaresSolver(logging.NewTestLogger(t), 0, 0, 0).Solve(context.Background(), m, goal, target)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, solution, test.ShouldResemble, target)
}

func TestSolveUnreachable(t *testing.T) {
	m := loadIIWA(t)
	solver := CreateDampedLeastSquaresSolver(logging.NewTestLogger(t), 50, 2, 0)

	goal := spatial.NewPoseFromPoint(r3.Vector{X: 5, Y: 5, Z: 5})
	_, err := solver.Solve(context.Background(), m, goal, make([]referenceframe.Input, 7))
	test.That(t, errors.Is(err, ErrNoSolution), test.ShouldBeTrue)

	_, err = solver.Solve(context.Background(), m, goal, make([]referenceframe.Input, 6))
	test.That(t, err, test.ShouldBeError, referenceframe.NewIncorrectDoFError(6, 7))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = solver.Solve(ctx, m, goal, make([]referenceframe.Input, 7))
	test.That(t, err, test.ShouldBeError, context.Canceled)
}

func TestSolveRespectsLimits(t *testing.T) {
	joint, err := referenceframe.NewRotationalFrame("joint", spatial.R4AA{RZ: 1}, referenceframe.Limit{Min: -math.Pi / 4, Max: math.Pi / 4})
	test.That(t, err, test.ShouldBeNil)
	arm, err := referenceframe.NewStaticFrame("arm", spatial.NewPoseFromPoint(r3.Vector{X: 1}))
	test.That(t, err, test.ShouldBeNil)
	m, err := referenceframe.NewSerialModel("planar", []referenceframe.Frame{joint, arm})
	test.That(t, err, test.ShouldBeNil)

	solver := CreateDampedLeastSquaresSolver(logging.NewTestLogger(t), 100, 3, 0)
	reachable, err := m.Transform([]referenceframe.Input{{Value: 0.5}})
	test.That(t, err, test.ShouldBeNil)
	solution, err := solver.Solve(context.Background(), m, reachable, []referenceframe.Input{{Value: 0}})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, solution[0].Value, test.ShouldAlmostEqual, 0.5, 1e-6)

	// the same geometry rotated past the joint limit cannot be reached
	outside := spatial.NewPose(r3.Vector{X: 0, Y: 1}, &spatial.R4AA{Theta: math.Pi / 2, RZ: 1})
	_, err = solver.Solve(context.Background(), m, outside, []referenceframe.Input{{Value: 0}})
	test.That(t, errors.Is(err, ErrNoSolution), test.ShouldBeTrue)
}
