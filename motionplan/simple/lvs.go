package simple

import (
	"context"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.viam.com/simpleplanner/logging"
	"go.viam.com/simpleplanner/motionplan/command"
	"go.viam.com/simpleplanner/motionplan/ik"
	spatial "go.viam.com/simpleplanner/spatialmath"
)

// LVSConfig holds the limits of an LVSPlanProfile. Every consecutive pair of output states stays within
// MaxTranslation, MaxRotation (radians) and MaxJointDelta, and a segment never has fewer than MinSteps states.
type LVSConfig struct {
	MaxTranslation float64 `json:"max_translation"`
	MaxRotation    float64 `json:"max_rotation"`
	MaxJointDelta  float64 `json:"max_joint_delta"`
	MinSteps       int     `json:"min_steps"`
}

// Validate ensures all parts of the config are valid.
func (cfg *LVSConfig) Validate(path string) error {
	if !(cfg.MaxTranslation > 0) {
		return goutils.NewConfigValidationError(path,
			newInvalidConfigurationError("max_translation must be positive, got %v", cfg.MaxTranslation))
	}
	if !(cfg.MaxRotation > 0) {
		return goutils.NewConfigValidationError(path,
			newInvalidConfigurationError("max_rotation must be positive, got %v", cfg.MaxRotation))
	}
	if !(cfg.MaxJointDelta > 0) {
		return goutils.NewConfigValidationError(path,
			newInvalidConfigurationError("max_joint_delta must be positive, got %v", cfg.MaxJointDelta))
	}
	if cfg.MinSteps < 1 || cfg.MinSteps > MaxSteps {
		return goutils.NewConfigValidationError(path,
			newInvalidConfigurationError("min_steps must be between 1 and %d, got %d", MaxSteps, cfg.MinSteps))
	}
	return nil
}

// stepCriterion bounds the distance covered by each step as measured by metric.
type stepCriterion struct {
	name   string
	metric ik.SegmentMetric
	limit  float64
}

// LVSPlanProfile plans a segment with as many evenly spaced steps as its limits require. Freespace segments are
// interpolated in joint space, linear segments along the straight tool point path.
type LVSPlanProfile struct {
	cfg    LVSConfig
	logger logging.Logger
}

// NewLVSPlanProfile returns a profile with the given limits.
func NewLVSPlanProfile(cfg LVSConfig, logger logging.Logger) (*LVSPlanProfile, error) {
	if err := cfg.Validate("lvs"); err != nil {
		return nil, err
	}
	return &LVSPlanProfile{cfg: cfg, logger: logger}, nil
}

// Config returns the profile's limits.
func (p *LVSPlanProfile) Config() LVSConfig {
	return p.cfg
}

// Generate expands the segment from start to end. Translation and rotation limits only apply when an endpoint was
// Cartesian or the segment is linear; otherwise only the joint limit and the minimum step count decide the number of
// steps.
func (p *LVSPlanProfile) Generate(
	ctx context.Context,
	start, end *command.PlanInstruction,
	req *PlannerRequest,
	manipOverride command.ManipulatorInfo,
) (command.Composite, error) {
	if err := p.cfg.Validate("lvs"); err != nil {
		return nil, err
	}
	seg, err := resolveSegment(ctx, start, end, req, manipOverride)
	if err != nil {
		return nil, err
	}

	linear := end.Type() == command.PlanInstructionTypeLinear
	measure := &ik.Segment{StartConfiguration: seg.start, EndConfiguration: seg.end}
	criteria := []stepCriterion{{"joint", ik.JointMaxDelta, p.cfg.MaxJointDelta}}

	var startPose, endPose spatial.Pose
	if seg.cartesian || linear {
		if startPose, endPose, err = seg.poses(req, p.logger); err != nil {
			return nil, err
		}
		if seg.endPose != nil {
			endPose = seg.endPose
		}
		measure.StartPosition, measure.EndPosition = startPose, endPose
		criteria = append(criteria,
			stepCriterion{"translation", ik.TranslationDistance, p.cfg.MaxTranslation},
			stepCriterion{"rotation", ik.RotationDistance, p.cfg.MaxRotation},
		)
	}

	steps := p.cfg.MinSteps
	logFields := []interface{}{"manipulator", seg.manipulator}
	for _, c := range criteria {
		n, err := stepsFor(c.metric(measure), c.limit)
		if err != nil {
			return nil, errors.Wrapf(err, "%s criterion", c.name)
		}
		steps = max(steps, n)
		logFields = append(logFields, c.name+"_steps", n)
	}
	p.logger.CDebugw(ctx, "lvs step count", append(logFields, "steps", steps)...)

	if linear {
		states, err := seg.interpolatePoses(ctx, req, startPose, endPose, steps)
		if err != nil {
			return nil, err
		}
		return seg.composite(states, end), nil
	}
	return seg.composite(seg.interpolateJoints(steps), end), nil
}
