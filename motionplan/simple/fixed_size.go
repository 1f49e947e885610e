package simple

import (
	"context"

	goutils "go.viam.com/utils"

	"go.viam.com/simpleplanner/logging"
	"go.viam.com/simpleplanner/motionplan/command"
)

// FixedSizeConfig sets the number of steps of each kind of segment.
type FixedSizeConfig struct {
	FreespaceSteps int `json:"freespace_steps"`
	LinearSteps    int `json:"linear_steps"`
}

// Validate ensures all parts of the config are valid.
func (cfg *FixedSizeConfig) Validate(path string) error {
	if cfg.FreespaceSteps < 1 || cfg.FreespaceSteps > MaxSteps {
		return goutils.NewConfigValidationError(path,
			newInvalidConfigurationError("freespace_steps must be between 1 and %d, got %d", MaxSteps, cfg.FreespaceSteps))
	}
	if cfg.LinearSteps < 1 || cfg.LinearSteps > MaxSteps {
		return goutils.NewConfigValidationError(path,
			newInvalidConfigurationError("linear_steps must be between 1 and %d, got %d", MaxSteps, cfg.LinearSteps))
	}
	return nil
}

// FixedSizePlanProfile plans every segment of a kind with the same number of steps, whatever its length.
type FixedSizePlanProfile struct {
	cfg    FixedSizeConfig
	logger logging.Logger
}

// NewFixedSizePlanProfile returns a profile with the given step counts.
func NewFixedSizePlanProfile(cfg FixedSizeConfig, logger logging.Logger) (*FixedSizePlanProfile, error) {
	if err := cfg.Validate("fixed_size"); err != nil {
		return nil, err
	}
	return &FixedSizePlanProfile{cfg: cfg, logger: logger}, nil
}

// Generate expands the segment from start to end.
func (p *FixedSizePlanProfile) Generate(
	ctx context.Context,
	start, end *command.PlanInstruction,
	req *PlannerRequest,
	manipOverride command.ManipulatorInfo,
) (command.Composite, error) {
	if err := p.cfg.Validate("fixed_size"); err != nil {
		return nil, err
	}
	seg, err := resolveSegment(ctx, start, end, req, manipOverride)
	if err != nil {
		return nil, err
	}
	if end.Type() != command.PlanInstructionTypeLinear {
		return seg.composite(seg.interpolateJoints(p.cfg.FreespaceSteps), end), nil
	}

	startPose, endPose, err := seg.poses(req, p.logger)
	if err != nil {
		return nil, err
	}
	if seg.endPose != nil {
		endPose = seg.endPose
	}
	states, err := seg.interpolatePoses(ctx, req, startPose, endPose, p.cfg.LinearSteps)
	if err != nil {
		return nil, err
	}
	return seg.composite(states, end), nil
}
