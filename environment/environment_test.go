package environment

import (
	"context"
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/simpleplanner/logging"
	"go.viam.com/simpleplanner/referenceframe"
	spatial "go.viam.com/simpleplanner/spatialmath"
	"go.viam.com/simpleplanner/utils"
)

const iiwaHeight = 1.306

func loadTestEnvironment(t *testing.T) *Environment {
	t.Helper()
	cfg, err := ReadConfig(utils.ResolveFile("environment/testdata/iiwa_env.json"))
	test.That(t, err, test.ShouldBeNil)
	env, err := NewEnvironmentFromConfig(cfg, utils.ResolveFile(""), nil, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	return env
}

func TestEnvironmentFromConfig(t *testing.T) {
	env := loadTestEnvironment(t)
	test.That(t, env.ManipulatorNames(), test.ShouldResemble, []string{"manipulator", "tool_arm"})

	names, err := env.JointNames("manipulator")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(names), test.ShouldEqual, 7)
	test.That(t, names[0], test.ShouldEqual, "joint_a1")

	state, err := env.CurrentState()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, state, test.ShouldResemble, map[string]float64{"joint_a2": 0.25, "joint_a4": -0.5})
	// the returned state is a copy
	state["joint_a1"] = 3
	state, err = env.CurrentState()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(state), test.ShouldEqual, 2)

	inputs, err := env.CurrentInputs("manipulator")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, referenceframe.InputsToFloats(inputs), test.ShouldResemble, []float64{0, 0.25, 0, -0.5, 0, 0, 0})

	_, err = env.Manipulator("nope")
	test.That(t, err, test.ShouldBeError, utils.NewManipulatorNotFoundError("nope"))
}

func TestFwdKinWithTCP(t *testing.T) {
	env := loadTestEnvironment(t)
	zero := make([]referenceframe.Input, 7)

	pose, err := env.CalcFwdKin("manipulator", zero, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatial.R3VectorAlmostEqual(pose.Point(), r3.Vector{Z: iiwaHeight}, 1e-9), test.ShouldBeTrue)

	// configured offset
	pose, err = env.CalcFwdKin("tool_arm", zero, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatial.R3VectorAlmostEqual(pose.Point(), r3.Vector{Z: iiwaHeight + 0.1}, 1e-9), test.ShouldBeTrue)

	// explicit offset wins over the configured one
	pose, err = env.CalcFwdKin("tool_arm", zero, spatial.NewPoseFromPoint(r3.Vector{X: 0.2}))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatial.R3VectorAlmostEqual(pose.Point(), r3.Vector{X: 0.2, Z: iiwaHeight}, 1e-9), test.ShouldBeTrue)

	// out of bounds is reported with a pose
	oob := make([]referenceframe.Input, 7)
	oob[1] = referenceframe.Input{Value: math.Pi}
	pose, err = env.CalcFwdKin("manipulator", oob, nil)
	test.That(t, pose, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, referenceframe.OOBErrString)

	_, err = env.CalcFwdKin("manipulator", zero[:3], nil)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestInvKinWithTCP(t *testing.T) {
	env := loadTestEnvironment(t)
	target := referenceframe.FloatsToInputs([]float64{1, 1, 1, 1, 1, 1, 1})
	tcp := spatial.NewPoseFromPoint(r3.Vector{Y: 0.05, Z: 0.1})

	goal, err := env.CalcFwdKin("tool_arm", target, tcp)
	test.That(t, err, test.ShouldBeNil)

	solution, err := env.CalcInvKin(context.Background(), "tool_arm", goal, make([]referenceframe.Input, 7), tcp)
	test.That(t, err, test.ShouldBeNil)
	reached, err := env.CalcFwdKin("tool_arm", solution, tcp)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatial.PoseAlmostEqualEps(reached, goal, 1e-6), test.ShouldBeTrue)
}

func TestClose(t *testing.T) {
	env := loadTestEnvironment(t)
	test.That(t, env.Close(context.Background()), test.ShouldBeNil)
	test.That(t, env.Close(context.Background()), test.ShouldBeNil)

	_, err := env.Manipulator("manipulator")
	test.That(t, errors.Is(err, ErrEnvironmentClosed), test.ShouldBeTrue)
	_, err = env.CurrentState()
	test.That(t, errors.Is(err, ErrEnvironmentClosed), test.ShouldBeTrue)
	_, err = env.CalcFwdKin("manipulator", make([]referenceframe.Input, 7), nil)
	test.That(t, errors.Is(err, ErrEnvironmentClosed), test.ShouldBeTrue)
}

func TestNewEnvironmentErrors(t *testing.T) {
	logger := logging.NewTestLogger(t)
	model, err := referenceframe.ParseModelJSONFile(utils.ResolveFile("models/iiwa7.json"), "")
	test.That(t, err, test.ShouldBeNil)
	m, err := NewManipulator("arm", model, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatial.PoseAlmostEqual(m.TCPOffset(), spatial.NewZeroPose()), test.ShouldBeTrue)

	_, err = NewEnvironment(logger, nil, nil, nil)
	test.That(t, err, test.ShouldNotBeNil)

	_, err = NewEnvironment(logger, []*Manipulator{m, m}, nil, nil)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "duplicate")

	_, err = NewEnvironment(logger, []*Manipulator{m}, map[string]float64{"elbow": 1, "joint_a1": 0}, nil)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "elbow")

	_, err = NewManipulator("", model, nil)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewManipulator("arm", nil, nil)
	test.That(t, err, test.ShouldNotBeNil)

	env, err := NewEnvironment(logger, []*Manipulator{m}, nil, nil)
	test.That(t, err, test.ShouldBeNil)
	state, err := env.CurrentState()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, state, test.ShouldBeEmpty)
}
