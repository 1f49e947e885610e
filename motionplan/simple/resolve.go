package simple

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/simpleplanner/logging"
	"go.viam.com/simpleplanner/motionplan/command"
	"go.viam.com/simpleplanner/motionplan/ik"
	"go.viam.com/simpleplanner/referenceframe"
	spatial "go.viam.com/simpleplanner/spatialmath"
)

const (
	// ResolutionTolerance is the largest translation, and rotation in radians, by which the forward kinematics of a
	// resolved Cartesian waypoint may miss the waypoint's pose.
	ResolutionTolerance = 1e-6

	// MaxSteps is the most states a single segment may be expanded into.
	MaxSteps = 1_000_000

	// ceilGuard keeps distances that are exact multiples of a limit from gaining a step to rounding noise.
	ceilGuard = 1e-9
)

// segment is a pair of plan instructions resolved to joint states of a single manipulator.
type segment struct {
	manipulator string
	tcp         spatial.Pose
	joints      []string
	start       []referenceframe.Input
	end         []referenceframe.Input

	// cartesian is set when either endpoint was given as a pose.
	cartesian bool
	endPose   spatial.Pose
}

// resolveSegment resolves both endpoints for the manipulator named by the end instruction, after override.
func resolveSegment(
	ctx context.Context,
	start, end *command.PlanInstruction,
	req *PlannerRequest,
	manipOverride command.ManipulatorInfo,
) (*segment, error) {
	if start == nil || end == nil {
		return nil, errors.New("segment needs both a start and an end instruction")
	}
	if req == nil || req.Env == nil {
		return nil, newKinematicsResolutionError("", errors.New("planner request has no environment"))
	}
	info := end.ManipInfo().Combine(manipOverride)
	if info.Manipulator == "" {
		return nil, newKinematicsResolutionError("", errors.New("no manipulator named"))
	}
	joints, err := req.Env.JointNames(info.Manipulator)
	if err != nil {
		return nil, newKinematicsResolutionError(info.Manipulator, err)
	}

	seg := &segment{manipulator: info.Manipulator, tcp: info.TCPOffset, joints: joints}
	seed, err := req.currentInputs(joints)
	if err != nil {
		return nil, newKinematicsResolutionError(info.Manipulator, err)
	}
	if seg.start, err = seg.resolveWaypoint(ctx, req, start.Waypoint(), seed); err != nil {
		return nil, errors.Wrap(err, "start")
	}
	if seg.end, err = seg.resolveWaypoint(ctx, req, end.Waypoint(), seg.start); err != nil {
		return nil, errors.Wrap(err, "end")
	}
	if cwp, ok := end.Waypoint().(*command.CartesianWaypoint); ok {
		seg.endPose = cwp.Pose()
	}
	return seg, nil
}

// resolveWaypoint returns the joint state of wp in the manipulator's joint order. Cartesian waypoints are solved
// starting from seed.
func (s *segment) resolveWaypoint(
	ctx context.Context,
	req *PlannerRequest,
	wp command.Waypoint,
	seed []referenceframe.Input,
) ([]referenceframe.Input, error) {
	switch w := wp.(type) {
	case *command.JointWaypoint:
		return orderInputs(s.joints, w.Names(), w.Position())
	case *command.StateWaypoint:
		return orderInputs(s.joints, w.Names(), w.Position())
	case *command.CartesianWaypoint:
		s.cartesian = true
		return s.solve(ctx, req, w.Pose(), seed)
	default:
		return nil, errors.Errorf("unsupported waypoint %T", wp)
	}
}

// solve runs inverse kinematics for goal and checks the answer against forward kinematics.
func (s *segment) solve(
	ctx context.Context,
	req *PlannerRequest,
	goal spatial.Pose,
	seed []referenceframe.Input,
) ([]referenceframe.Input, error) {
	solution, err := req.Env.CalcInvKin(ctx, s.manipulator, goal, seed, s.tcp)
	if err != nil {
		return nil, newKinematicsResolutionError(s.manipulator, err)
	}
	if len(solution) != len(s.joints) {
		return nil, newDimensionMismatchError("solver returned %d values for %d joints", len(solution), len(s.joints))
	}
	if err := checkFinite(s.joints, solution); err != nil {
		return nil, newKinematicsResolutionError(s.manipulator, err)
	}
	reached, err := req.Env.CalcFwdKin(s.manipulator, solution, s.tcp)
	if reached == nil {
		return nil, newKinematicsResolutionError(s.manipulator, err)
	}
	residual := &ik.Segment{StartPosition: goal, EndPosition: reached}
	// negated so a NaN residual fails too
	if !(ik.TranslationDistance(residual) <= ResolutionTolerance && ik.RotationDistance(residual) <= ResolutionTolerance) {
		return nil, newKinematicsResolutionError(s.manipulator, errors.Errorf(
			"solution reaches %s instead of %s", spatial.PoseString(reached), spatial.PoseString(goal)))
	}
	return solution, nil
}

// orderInputs maps a joint state onto the manipulator's joint order. Unnamed states must already be in that order.
func orderInputs(joints, names []string, position []referenceframe.Input) ([]referenceframe.Input, error) {
	if len(position) != len(joints) {
		return nil, newDimensionMismatchError("got %d joint values for %d joints", len(position), len(joints))
	}
	if len(names) == 0 {
		return position, checkFinite(joints, position)
	}
	if len(names) != len(position) {
		return nil, newDimensionMismatchError("got %d joint names for %d values", len(names), len(position))
	}
	if len(lo.Uniq(names)) != len(names) {
		return nil, newDimensionMismatchError("duplicate joint names in %v", names)
	}
	if missing, extra := lo.Difference(joints, names); len(missing) > 0 || len(extra) > 0 {
		return nil, newDimensionMismatchError("joints %v missing and %v unknown", missing, extra)
	}
	ordered := make([]referenceframe.Input, len(joints))
	for i, joint := range joints {
		ordered[i] = position[lo.IndexOf(names, joint)]
	}
	return ordered, checkFinite(joints, ordered)
}

// checkFinite fails on the first joint whose value is NaN or infinite.
func checkFinite(joints []string, position []referenceframe.Input) error {
	for i, in := range position {
		if math.IsNaN(in.Value) || math.IsInf(in.Value, 0) {
			return newNonFiniteJointValueError(joints[i], in.Value)
		}
	}
	return nil
}

// poses returns the tool point poses of both resolved endpoints. Joint limit violations do not prevent measuring.
func (s *segment) poses(req *PlannerRequest, logger logging.Logger) (spatial.Pose, spatial.Pose, error) {
	startPose, err := req.Env.CalcFwdKin(s.manipulator, s.start, s.tcp)
	if startPose == nil {
		return nil, nil, newKinematicsResolutionError(s.manipulator, err)
	} else if err != nil {
		logger.Debugw("start state outside joint limits", "manipulator", s.manipulator, "error", err)
	}
	endPose, err := req.Env.CalcFwdKin(s.manipulator, s.end, s.tcp)
	if endPose == nil {
		return nil, nil, newKinematicsResolutionError(s.manipulator, err)
	} else if err != nil {
		logger.Debugw("end state outside joint limits", "manipulator", s.manipulator, "error", err)
	}
	return startPose, endPose, nil
}

// interpolateJoints returns n states evenly spaced in joint space after the start, the last being the end itself.
func (s *segment) interpolateJoints(n int) [][]referenceframe.Input {
	states := make([][]referenceframe.Input, 0, n)
	for i := 1; i < n; i++ {
		states = append(states, referenceframe.InterpolateInputs(s.start, s.end, float64(i)/float64(n)))
	}
	return append(states, referenceframe.CopyInputs(s.end))
}

// interpolatePoses returns n states whose tool point moves along the straight line between the endpoint poses.
// Each intermediate state is solved from the one before it; the last is the end itself.
func (s *segment) interpolatePoses(
	ctx context.Context,
	req *PlannerRequest,
	startPose, endPose spatial.Pose,
	n int,
) ([][]referenceframe.Input, error) {
	states := make([][]referenceframe.Input, 0, n)
	seed := s.start
	for i := 1; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		q, err := s.solve(ctx, req, spatial.Interpolate(startPose, endPose, float64(i)/float64(n)), seed)
		if err != nil {
			return nil, errors.Wrapf(err, "step %d of %d", i, n)
		}
		states = append(states, q)
		seed = q
	}
	return append(states, referenceframe.CopyInputs(s.end)), nil
}

// composite wraps states as move instructions tagged with the end instruction's type, profile and manipulator info.
func (s *segment) composite(states [][]referenceframe.Input, end *command.PlanInstruction) command.Composite {
	return lo.Map(states, func(q []referenceframe.Input, _ int) *command.MoveInstruction {
		return command.NewMoveInstruction(command.NewStateWaypoint(s.joints, q), end.Type(), end.Profile(), end.ManipInfo())
	})
}

// stepsFor is the number of steps needed to keep each step of dist within limit. It fails rather than return a
// count above MaxSteps.
func stepsFor(dist, limit float64) (int, error) {
	if math.IsNaN(dist) || math.IsInf(dist, 0) {
		return 0, newInvalidConfigurationError("distance %v is not finite", dist)
	}
	steps := math.Ceil(dist/limit - ceilGuard)
	if !(steps <= MaxSteps) {
		return 0, newInvalidConfigurationError("a distance of %v at %v per step needs more than %d steps", dist, limit, MaxSteps)
	}
	return int(steps), nil
}
