package simple

import (
	"github.com/pkg/errors"
)

var (
	// ErrInvalidConfiguration is returned when profile parameters are out of range.
	ErrInvalidConfiguration = errors.New("invalid plan profile configuration")

	// ErrKinematicsResolution is returned when a waypoint cannot be turned into a joint state for its manipulator.
	ErrKinematicsResolution = errors.New("unable to resolve waypoint kinematics")

	// ErrDimensionMismatch is returned when joint states disagree in length or joint names with the manipulator.
	ErrDimensionMismatch = errors.New("joint dimension mismatch")

	// ErrNonFiniteJointValue is returned when a joint state holds NaN or an infinity.
	ErrNonFiniteJointValue = errors.New("joint value is not finite")
)

func newInvalidConfigurationError(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidConfiguration, format, args...)
}

func newKinematicsResolutionError(manipulator string, err error) error {
	return errors.Wrapf(ErrKinematicsResolution, "manipulator %q: %v", manipulator, err)
}

func newDimensionMismatchError(format string, args ...interface{}) error {
	return errors.Wrapf(ErrDimensionMismatch, format, args...)
}

func newNonFiniteJointValueError(joint string, value float64) error {
	return errors.Wrapf(ErrNonFiniteJointValue, "joint %q is %v", joint, value)
}
