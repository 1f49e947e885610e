package command

import (
	spatial "go.viam.com/simpleplanner/spatialmath"
)

// ManipulatorInfo names the manipulator an instruction applies to and the tool center point offset to use.
// A nil TCPOffset defers to the manipulator's configured offset.
type ManipulatorInfo struct {
	Manipulator string
	TCPOffset   spatial.Pose
}

// IsEmpty reports whether no field is set.
func (mi ManipulatorInfo) IsEmpty() bool {
	return mi.Manipulator == "" && mi.TCPOffset == nil
}

// Combine returns a copy of mi where every set field of override replaces the corresponding field.
func (mi ManipulatorInfo) Combine(override ManipulatorInfo) ManipulatorInfo {
	combined := mi
	if override.Manipulator != "" {
		combined.Manipulator = override.Manipulator
	}
	if override.TCPOffset != nil {
		combined.TCPOffset = override.TCPOffset
	}
	return combined
}
