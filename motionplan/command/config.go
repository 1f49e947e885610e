package command

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.viam.com/simpleplanner/referenceframe"
	spatial "go.viam.com/simpleplanner/spatialmath"
)

// WaypointConfig is the serialized form of a Waypoint.
type WaypointConfig struct {
	Type     string              `json:"type"`
	Names    []string            `json:"names,omitempty"`
	Position []float64           `json:"position,omitempty"`
	Pose     *spatial.PoseConfig `json:"pose,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (cfg *WaypointConfig) Validate(path string) error {
	switch cfg.Type {
	case JointWaypointType.String(), StateWaypointType.String():
		if len(cfg.Position) == 0 {
			return goutils.NewConfigValidationFieldRequiredError(path, "position")
		}
		if len(cfg.Names) != 0 && len(cfg.Names) != len(cfg.Position) {
			return goutils.NewConfigValidationError(path,
				errors.Errorf("%d names given for %d positions", len(cfg.Names), len(cfg.Position)))
		}
	case CartesianWaypointType.String():
		if cfg.Pose == nil {
			return goutils.NewConfigValidationFieldRequiredError(path, "pose")
		}
		if _, err := cfg.Pose.ParseConfig(); err != nil {
			return goutils.NewConfigValidationError(path, err)
		}
	case "":
		return goutils.NewConfigValidationFieldRequiredError(path, "type")
	default:
		return goutils.NewConfigValidationError(path, errors.Errorf("unknown waypoint type %q", cfg.Type))
	}
	return nil
}

// ParseConfig converts the config into a Waypoint.
func (cfg *WaypointConfig) ParseConfig() (Waypoint, error) {
	if err := cfg.Validate("waypoint"); err != nil {
		return nil, err
	}
	switch cfg.Type {
	case JointWaypointType.String():
		return NewJointWaypoint(cfg.Names, referenceframe.FloatsToInputs(cfg.Position)), nil
	case StateWaypointType.String():
		return NewStateWaypoint(cfg.Names, referenceframe.FloatsToInputs(cfg.Position)), nil
	default:
		pose, err := cfg.Pose.ParseConfig()
		if err != nil {
			return nil, err
		}
		return NewCartesianWaypoint(pose), nil
	}
}

// NewWaypointConfig serializes a Waypoint.
func NewWaypointConfig(wp Waypoint) (*WaypointConfig, error) {
	switch w := wp.(type) {
	case *JointWaypoint:
		return &WaypointConfig{Type: w.WaypointType().String(), Names: w.Names(), Position: referenceframe.InputsToFloats(w.Position())}, nil
	case *StateWaypoint:
		return &WaypointConfig{Type: w.WaypointType().String(), Names: w.Names(), Position: referenceframe.InputsToFloats(w.Position())}, nil
	case *CartesianWaypoint:
		pc, err := spatial.NewPoseConfig(w.Pose())
		if err != nil {
			return nil, err
		}
		return &WaypointConfig{Type: w.WaypointType().String(), Pose: pc}, nil
	default:
		return nil, errors.Errorf("unsupported waypoint %T", wp)
	}
}

// ManipulatorInfoConfig is the serialized form of ManipulatorInfo.
type ManipulatorInfoConfig struct {
	Manipulator string              `json:"manipulator,omitempty"`
	TCPOffset   *spatial.PoseConfig `json:"tcp_offset,omitempty"`
}

// ParseConfig converts the config into a ManipulatorInfo. A nil config is the empty info.
func (cfg *ManipulatorInfoConfig) ParseConfig() (ManipulatorInfo, error) {
	if cfg == nil {
		return ManipulatorInfo{}, nil
	}
	info := ManipulatorInfo{Manipulator: cfg.Manipulator}
	if cfg.TCPOffset != nil {
		tcp, err := cfg.TCPOffset.ParseConfig()
		if err != nil {
			return ManipulatorInfo{}, errors.Wrap(err, "tcp_offset")
		}
		info.TCPOffset = tcp
	}
	return info, nil
}

// PlanInstructionConfig is the serialized form of a PlanInstruction.
type PlanInstructionConfig struct {
	Type      string                 `json:"type"`
	Profile   string                 `json:"profile,omitempty"`
	Waypoint  WaypointConfig         `json:"waypoint"`
	ManipInfo *ManipulatorInfoConfig `json:"manip_info,omitempty"`
}

// ProgramConfig is the serialized form of a Program. Its manipulator info applies to every instruction, with any
// info set on an instruction taking precedence.
type ProgramConfig struct {
	ManipInfo    *ManipulatorInfoConfig  `json:"manip_info,omitempty"`
	Instructions []PlanInstructionConfig `json:"instructions"`
}

// Validate ensures all parts of the config are valid.
func (cfg *ProgramConfig) Validate(path string) error {
	if len(cfg.Instructions) == 0 {
		return goutils.NewConfigValidationFieldRequiredError(path, "instructions")
	}
	for idx, instr := range cfg.Instructions {
		instrPath := fmt.Sprintf("%s.instructions.%d", path, idx)
		if _, err := ParsePlanInstructionType(instr.Type); err != nil {
			return goutils.NewConfigValidationError(instrPath, err)
		}
		if err := instr.Waypoint.Validate(instrPath + ".waypoint"); err != nil {
			return err
		}
	}
	return nil
}

// ParseConfig converts the config into a Program.
func (cfg *ProgramConfig) ParseConfig() (Program, error) {
	if err := cfg.Validate("program"); err != nil {
		return nil, err
	}
	defaultInfo, err := cfg.ManipInfo.ParseConfig()
	if err != nil {
		return nil, err
	}
	program := make(Program, 0, len(cfg.Instructions))
	for idx, instr := range cfg.Instructions {
		typ, err := ParsePlanInstructionType(instr.Type)
		if err != nil {
			return nil, err
		}
		wp, err := instr.Waypoint.ParseConfig()
		if err != nil {
			return nil, errors.Wrapf(err, "instruction %d", idx)
		}
		info, err := instr.ManipInfo.ParseConfig()
		if err != nil {
			return nil, errors.Wrapf(err, "instruction %d", idx)
		}
		program = append(program, NewPlanInstruction(wp, typ, instr.Profile, defaultInfo.Combine(info)))
	}
	return program, nil
}

// moveInstructionJSON is the serialized form of a MoveInstruction.
type moveInstructionJSON struct {
	Type        string    `json:"type"`
	Profile     string    `json:"profile"`
	Manipulator string    `json:"manipulator"`
	Names       []string  `json:"names"`
	Position    []float64 `json:"position"`
}

// MarshalJSON encodes the composite as a list of steps.
func (c Composite) MarshalJSON() ([]byte, error) {
	steps := make([]moveInstructionJSON, 0, len(c))
	for _, mi := range c {
		steps = append(steps, moveInstructionJSON{
			Type:        mi.Type().String(),
			Profile:     mi.Profile(),
			Manipulator: mi.ManipInfo().Manipulator,
			Names:       mi.Waypoint().Names(),
			Position:    referenceframe.InputsToFloats(mi.Waypoint().Position()),
		})
	}
	return json.Marshal(steps)
}
