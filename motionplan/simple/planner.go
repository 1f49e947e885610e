package simple

import (
	"context"

	"github.com/pkg/errors"

	"go.viam.com/simpleplanner/logging"
	"go.viam.com/simpleplanner/motionplan/command"
)

// Planner plans a whole program by handing each segment to the profile named by the segment's end instruction.
type Planner struct {
	logger         logging.Logger
	defaultProfile PlanProfile
	profiles       map[string]PlanProfile
}

// NewPlanner returns a planner. defaultProfile is used for instructions naming no profile, or one not in profiles.
func NewPlanner(logger logging.Logger, defaultProfile PlanProfile, profiles map[string]PlanProfile) *Planner {
	return &Planner{logger: logger, defaultProfile: defaultProfile, profiles: profiles}
}

func (p *Planner) profile(name string) (PlanProfile, error) {
	if profile, ok := p.profiles[name]; ok {
		return profile, nil
	}
	if p.defaultProfile == nil {
		return nil, newInvalidConfigurationError("no profile named %q and no default profile", name)
	}
	return p.defaultProfile, nil
}

// Solve plans program. The output opens with the start state and then holds every segment in order. When the program
// does not open with a start instruction, planning starts from the request's current state.
func (p *Planner) Solve(ctx context.Context, req *PlannerRequest, program command.Program) (command.Composite, error) {
	if len(program) == 0 {
		return nil, newInvalidConfigurationError("cannot plan an empty program")
	}
	if req == nil || req.Env == nil {
		return nil, newKinematicsResolutionError("", errors.New("planner request has no environment"))
	}

	start, rest := program[0], program[1:]
	if start.Type() != command.PlanInstructionTypeStart {
		info := start.ManipInfo()
		joints, err := req.Env.JointNames(info.Manipulator)
		if err != nil {
			return nil, newKinematicsResolutionError(info.Manipulator, err)
		}
		current, err := req.currentInputs(joints)
		if err != nil {
			return nil, newKinematicsResolutionError(info.Manipulator, err)
		}
		start = command.NewPlanInstruction(
			command.NewStateWaypoint(joints, current), command.PlanInstructionTypeStart, start.Profile(), info)
		rest = program
	}

	// A start to itself resolves the start waypoint without producing any intermediate state.
	first, err := resolveSegment(ctx, start, start, req, command.ManipulatorInfo{})
	if err != nil {
		return nil, err
	}
	out := command.Composite{
		command.NewMoveInstruction(
			command.NewStateWaypoint(first.joints, first.end), command.PlanInstructionTypeStart, start.Profile(), start.ManipInfo()),
	}

	for idx, end := range rest {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if end.Type() == command.PlanInstructionTypeStart {
			return nil, newInvalidConfigurationError("instruction %d: only the first instruction may be a start", idx+1)
		}
		profile, err := p.profile(end.Profile())
		if err != nil {
			return nil, errors.Wrapf(err, "instruction %d", idx+1)
		}
		last := out.Last()
		from := command.NewPlanInstruction(last.Waypoint(), command.PlanInstructionTypeStart, last.Profile(), last.ManipInfo())
		steps, err := profile.Generate(ctx, from, end, req, command.ManipulatorInfo{})
		if err != nil {
			return nil, errors.Wrapf(err, "instruction %d", idx+1)
		}
		p.logger.CDebugw(ctx, "planned segment", "instruction", idx+1, "profile", end.Profile(), "steps", len(steps))
		out = append(out, steps...)
	}
	return out, nil
}
