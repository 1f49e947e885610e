// Package simple implements the simple motion planner: plan profiles that expand a pair of plan instructions into
// resolved joint states, and a planner that walks a whole program segment by segment.
package simple

import (
	"context"

	"go.viam.com/simpleplanner/motionplan/command"
	"go.viam.com/simpleplanner/referenceframe"
	spatial "go.viam.com/simpleplanner/spatialmath"
)

// Environment is the kinematic view a planner needs of the world. *environment.Environment implements it.
type Environment interface {
	JointNames(manipulator string) ([]string, error)
	CurrentState() (map[string]float64, error)
	CalcFwdKin(manipulator string, inputs []referenceframe.Input, tcp spatial.Pose) (spatial.Pose, error)
	CalcInvKin(
		ctx context.Context,
		manipulator string,
		goal spatial.Pose,
		seed []referenceframe.Input,
		tcp spatial.Pose,
	) ([]referenceframe.Input, error)
}

// PlannerRequest bundles the environment to plan in with the joint state to plan from. A nil EnvState means the
// environment's current state.
type PlannerRequest struct {
	Env      Environment
	EnvState map[string]float64
}

// state returns the joint state planning starts from.
func (req *PlannerRequest) state() (map[string]float64, error) {
	if req.EnvState != nil {
		return req.EnvState, nil
	}
	return req.Env.CurrentState()
}

// currentInputs returns the request state of the given joints, in order. Joints without a value are zero.
func (req *PlannerRequest) currentInputs(joints []string) ([]referenceframe.Input, error) {
	state, err := req.state()
	if err != nil {
		return nil, err
	}
	inputs := make([]referenceframe.Input, 0, len(joints))
	for _, name := range joints {
		inputs = append(inputs, referenceframe.Input{Value: state[name]})
	}
	return inputs, nil
}

// PlanProfile turns one segment of a program, from start to end, into move instructions. The returned composite
// never includes the start state and always ends on the end state. A non-empty manipOverride replaces the matching
// fields of the end instruction's manipulator info.
type PlanProfile interface {
	Generate(
		ctx context.Context,
		start, end *command.PlanInstruction,
		req *PlannerRequest,
		manipOverride command.ManipulatorInfo,
	) (command.Composite, error)
}
