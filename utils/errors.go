package utils

import (
	"github.com/pkg/errors"
)

// NewManipulatorNotFoundError is used when a named manipulator is not part of an environment.
func NewManipulatorNotFoundError(name string) error {
	return errors.Errorf("manipulator %q not found", name)
}
