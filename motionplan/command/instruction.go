package command

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// PlanInstructionType is the kind of motion a plan instruction asks for.
type PlanInstructionType int

// The set of plan instruction types.
const (
	PlanInstructionTypeStart PlanInstructionType = iota
	PlanInstructionTypeFreespace
	PlanInstructionTypeLinear
)

func (t PlanInstructionType) String() string {
	switch t {
	case PlanInstructionTypeStart:
		return "start"
	case PlanInstructionTypeFreespace:
		return "freespace"
	case PlanInstructionTypeLinear:
		return "linear"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// ParsePlanInstructionType parses the case-insensitive name of a plan instruction type.
func ParsePlanInstructionType(s string) (PlanInstructionType, error) {
	switch strings.ToLower(s) {
	case "start":
		return PlanInstructionTypeStart, nil
	case "freespace", "":
		return PlanInstructionTypeFreespace, nil
	case "linear":
		return PlanInstructionTypeLinear, nil
	default:
		return PlanInstructionTypeFreespace, errors.Errorf("unknown plan instruction type %q", s)
	}
}

// An Instruction is either a *PlanInstruction or a *MoveInstruction.
type Instruction interface {
	Description() string
	isInstruction()
}

// PlanInstruction asks a planner to reach a waypoint with a given type of motion, using the named profile.
type PlanInstruction struct {
	waypoint  Waypoint
	typ       PlanInstructionType
	profile   string
	manipInfo ManipulatorInfo
}

// NewPlanInstruction returns a plan instruction.
func NewPlanInstruction(wp Waypoint, typ PlanInstructionType, profile string, manipInfo ManipulatorInfo) *PlanInstruction {
	return &PlanInstruction{waypoint: wp, typ: typ, profile: profile, manipInfo: manipInfo}
}

// Waypoint returns the target waypoint.
func (pi *PlanInstruction) Waypoint() Waypoint { return pi.waypoint }

// Type returns the kind of motion.
func (pi *PlanInstruction) Type() PlanInstructionType { return pi.typ }

// Profile returns the name of the profile to plan with.
func (pi *PlanInstruction) Profile() string { return pi.profile }

// ManipInfo returns the manipulator info.
func (pi *PlanInstruction) ManipInfo() ManipulatorInfo { return pi.manipInfo }

// Description summarizes the instruction.
func (pi *PlanInstruction) Description() string {
	return fmt.Sprintf("plan %s to %s waypoint with profile %q", pi.typ, pi.waypoint.WaypointType(), pi.profile)
}

func (pi *PlanInstruction) isInstruction() {}

// MoveInstruction is a planned step: a resolved joint state reached with a given type of motion.
type MoveInstruction struct {
	waypoint  *StateWaypoint
	typ       PlanInstructionType
	profile   string
	manipInfo ManipulatorInfo
}

// NewMoveInstruction returns a move instruction.
func NewMoveInstruction(wp *StateWaypoint, typ PlanInstructionType, profile string, manipInfo ManipulatorInfo) *MoveInstruction {
	return &MoveInstruction{waypoint: wp, typ: typ, profile: profile, manipInfo: manipInfo}
}

// Waypoint returns the resolved state.
func (mi *MoveInstruction) Waypoint() *StateWaypoint { return mi.waypoint }

// Type returns the kind of motion.
func (mi *MoveInstruction) Type() PlanInstructionType { return mi.typ }

// Profile returns the name of the profile that produced this step.
func (mi *MoveInstruction) Profile() string { return mi.profile }

// ManipInfo returns the manipulator info.
func (mi *MoveInstruction) ManipInfo() ManipulatorInfo { return mi.manipInfo }

// Description summarizes the instruction.
func (mi *MoveInstruction) Description() string {
	return fmt.Sprintf("move %s to state with profile %q", mi.typ, mi.profile)
}

func (mi *MoveInstruction) isInstruction() {}

// IsMoveInstruction reports whether instr is a *MoveInstruction.
func IsMoveInstruction(instr Instruction) bool {
	_, ok := instr.(*MoveInstruction)
	return ok
}

// IsPlanInstruction reports whether instr is a *PlanInstruction.
func IsPlanInstruction(instr Instruction) bool {
	_, ok := instr.(*PlanInstruction)
	return ok
}

// Program is an ordered list of plan instructions.
type Program []*PlanInstruction
