package simple

import (
	"context"
	"math"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/simpleplanner/logging"
	"go.viam.com/simpleplanner/motionplan/command"
	"go.viam.com/simpleplanner/referenceframe"
)

func testPlanner(t *testing.T) *Planner {
	t.Helper()
	logger := logging.NewTestLogger(t)
	fine, err := NewLVSPlanProfile(LVSConfig{MaxTranslation: 1, MaxRotation: 1, MaxJointDelta: 0.1, MinSteps: 1}, logger)
	test.That(t, err, test.ShouldBeNil)
	coarse, err := NewFixedSizePlanProfile(FixedSizeConfig{FreespaceSteps: 2, LinearSteps: 2}, logger)
	test.That(t, err, test.ShouldBeNil)
	return NewPlanner(logger, coarse, map[string]PlanProfile{"fine": fine})
}

func namedInstruction(joints []string, values []float64, typ command.PlanInstructionType, profile string) *command.PlanInstruction {
	return command.NewPlanInstruction(
		command.NewJointWaypoint(joints, referenceframe.FloatsToInputs(values)), typ, profile, manipInfo)
}

func TestPlannerSolve(t *testing.T) {
	env := loadTestEnvironment(t)
	joints, err := env.JointNames("manipulator")
	test.That(t, err, test.ShouldBeNil)
	planner := testPlanner(t)

	q1 := []float64{0.5, 0, 0, 0, 0, 0, 0}
	q2 := []float64{0.5, 0.3, 0, 0, 0, 0, 0}
	program := command.Program{
		namedInstruction(joints, make([]float64, 7), command.PlanInstructionTypeStart, "fine"),
		namedInstruction(joints, q1, command.PlanInstructionTypeFreespace, "fine"),
		namedInstruction(joints, q2, command.PlanInstructionTypeFreespace, ""),
	}
	composite, err := planner.Solve(context.Background(), &PlannerRequest{Env: env}, program)
	test.That(t, err, test.ShouldBeNil)
	// start state, five fine steps, two coarse steps
	test.That(t, len(composite), test.ShouldEqual, 8)

	test.That(t, composite[0].Type(), test.ShouldEqual, command.PlanInstructionTypeStart)
	test.That(t, referenceframe.InputsToFloats(composite[0].Waypoint().Position()), test.ShouldResemble, make([]float64, 7))
	for _, mi := range composite[1:6] {
		test.That(t, mi.Profile(), test.ShouldEqual, "fine")
	}
	test.That(t, referenceframe.InputsToFloats(composite[5].Waypoint().Position()), test.ShouldResemble, q1)
	for _, mi := range composite[6:] {
		test.That(t, mi.Profile(), test.ShouldEqual, "")
	}
	test.That(t, composite[6].Waypoint().Position()[1].Value, test.ShouldAlmostEqual, 0.15)
	test.That(t, referenceframe.InputsToFloats(composite.Last().Waypoint().Position()), test.ShouldResemble, q2)
}

func TestPlannerStartsFromCurrentState(t *testing.T) {
	env := loadTestEnvironment(t)
	joints, err := env.JointNames("manipulator")
	test.That(t, err, test.ShouldBeNil)
	planner := testPlanner(t)
	program := command.Program{namedInstruction(joints, make([]float64, 7), command.PlanInstructionTypeFreespace, "")}

	composite, err := planner.Solve(context.Background(), &PlannerRequest{Env: env}, program)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(composite), test.ShouldEqual, 3)
	test.That(t, referenceframe.InputsToFloats(composite[0].Waypoint().Position()), test.ShouldResemble,
		[]float64{0, 0.25, 0, -0.5, 0, 0, 0})
	test.That(t, composite[1].Waypoint().Position()[3].Value, test.ShouldAlmostEqual, -0.25)

	// a request state replaces the environment's
	composite, err = planner.Solve(context.Background(),
		&PlannerRequest{Env: env, EnvState: map[string]float64{"joint_a1": 0.4}}, program)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, referenceframe.InputsToFloats(composite[0].Waypoint().Position()), test.ShouldResemble,
		[]float64{0.4, 0, 0, 0, 0, 0, 0})
}

func TestPlannerErrors(t *testing.T) {
	env := loadTestEnvironment(t)
	joints, err := env.JointNames("manipulator")
	test.That(t, err, test.ShouldBeNil)
	planner := testPlanner(t)
	req := &PlannerRequest{Env: env}
	start := namedInstruction(joints, make([]float64, 7), command.PlanInstructionTypeStart, "")

	_, err = planner.Solve(context.Background(), req, nil)
	test.That(t, errors.Is(err, ErrInvalidConfiguration), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "empty program")

	_, err = planner.Solve(context.Background(), req, command.Program{start, start})
	test.That(t, errors.Is(err, ErrInvalidConfiguration), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "only the first instruction")

	// a broken current state cannot seed a program without a start
	_, err = planner.Solve(context.Background(), &PlannerRequest{Env: env, EnvState: map[string]float64{joints[4]: math.NaN()}},
		command.Program{namedInstruction(joints, make([]float64, 7), command.PlanInstructionTypeFreespace, "")})
	test.That(t, errors.Is(err, ErrNonFiniteJointValue), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, joints[4])

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	composite, err := planner.Solve(ctx, req, command.Program{
		start, namedInstruction(joints, make([]float64, 7), command.PlanInstructionTypeFreespace, ""),
	})
	test.That(t, errors.Is(err, context.Canceled), test.ShouldBeTrue)
	test.That(t, composite, test.ShouldBeNil)

	noDefault := NewPlanner(logging.NewTestLogger(t), nil, nil)
	_, err = noDefault.Solve(context.Background(), req, command.Program{
		start, namedInstruction(joints, make([]float64, 7), command.PlanInstructionTypeFreespace, "missing"),
	})
	test.That(t, errors.Is(err, ErrInvalidConfiguration), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "missing")

	// a failing segment fails the whole program
	_, err = planner.Solve(context.Background(), req, command.Program{
		start, namedInstruction(joints, make([]float64, 5), command.PlanInstructionTypeFreespace, "fine"),
	})
	test.That(t, errors.Is(err, ErrDimensionMismatch), test.ShouldBeTrue)
}
