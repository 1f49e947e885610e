// Package command contains the instruction language planners consume and produce: waypoints, plan and move
// instructions, manipulator info and composites.
package command

import (
	"fmt"

	"go.viam.com/simpleplanner/referenceframe"
	spatial "go.viam.com/simpleplanner/spatialmath"
)

// WaypointType enumerates the kinds of Waypoint.
type WaypointType int

// The set of waypoint kinds.
const (
	JointWaypointType WaypointType = iota
	CartesianWaypointType
	StateWaypointType
)

func (t WaypointType) String() string {
	switch t {
	case JointWaypointType:
		return "joint"
	case CartesianWaypointType:
		return "cartesian"
	case StateWaypointType:
		return "state"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// A Waypoint is a target for a manipulator: a joint configuration, a Cartesian pose, or a resolved joint state.
// The set of implementations is closed; consumers type switch over *JointWaypoint, *CartesianWaypoint and
// *StateWaypoint.
type Waypoint interface {
	WaypointType() WaypointType
	isWaypoint()
}

// joints backs the two joint-space waypoint kinds.
type joints struct {
	names    []string
	position []referenceframe.Input
}

func newJoints(names []string, position []referenceframe.Input) joints {
	var namesCopy []string
	if names != nil {
		namesCopy = make([]string, len(names))
		copy(namesCopy, names)
	}
	return joints{names: namesCopy, position: referenceframe.CopyInputs(position)}
}

// Names returns a copy of the joint names. It is empty when the waypoint is positional only.
func (j joints) Names() []string {
	out := make([]string, len(j.names))
	copy(out, j.names)
	return out
}

// Position returns a copy of the joint values.
func (j joints) Position() []referenceframe.Input {
	return referenceframe.CopyInputs(j.position)
}

// Len returns the number of joint values.
func (j joints) Len() int {
	return len(j.position)
}

// JointWaypoint is a joint configuration. Names may be omitted, in which case the values are taken to be in the
// manipulator's joint order.
type JointWaypoint struct {
	joints
}

// NewJointWaypoint copies names and position into a new waypoint.
func NewJointWaypoint(names []string, position []referenceframe.Input) *JointWaypoint {
	return &JointWaypoint{newJoints(names, position)}
}

// WaypointType returns JointWaypointType.
func (wp *JointWaypoint) WaypointType() WaypointType { return JointWaypointType }

func (wp *JointWaypoint) isWaypoint() {}

// StateWaypoint is a fully resolved joint state, as produced by planners.
type StateWaypoint struct {
	joints
}

// NewStateWaypoint copies names and position into a new waypoint.
func NewStateWaypoint(names []string, position []referenceframe.Input) *StateWaypoint {
	return &StateWaypoint{newJoints(names, position)}
}

// WaypointType returns StateWaypointType.
func (wp *StateWaypoint) WaypointType() WaypointType { return StateWaypointType }

func (wp *StateWaypoint) isWaypoint() {}

// CartesianWaypoint is a tool point pose in the manipulator's base frame.
type CartesianWaypoint struct {
	pose spatial.Pose
}

// NewCartesianWaypoint returns a waypoint at pose.
func NewCartesianWaypoint(pose spatial.Pose) *CartesianWaypoint {
	return &CartesianWaypoint{pose: pose}
}

// Pose returns the target pose.
func (wp *CartesianWaypoint) Pose() spatial.Pose {
	return wp.pose
}

// IsApprox reports whether pose is within epsilon of the waypoint in both translation and rotation.
func (wp *CartesianWaypoint) IsApprox(pose spatial.Pose, epsilon float64) bool {
	return spatial.PoseAlmostEqualEps(wp.pose, pose, epsilon)
}

// WaypointType returns CartesianWaypointType.
func (wp *CartesianWaypoint) WaypointType() WaypointType { return CartesianWaypointType }

func (wp *CartesianWaypoint) isWaypoint() {}

// IsStateWaypoint reports whether wp is a resolved joint state.
func IsStateWaypoint(wp Waypoint) bool {
	_, ok := wp.(*StateWaypoint)
	return ok
}
