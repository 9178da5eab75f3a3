package utils

import (
	"github.com/pkg/errors"
)

// ErrInvalidArgument is wrapped by every error caused by a malformed argument: a bad DH table or
// convention, a joint or velocity vector of the wrong size, an out of range link index or a
// geometric primitive that is not pure.
var ErrInvalidArgument = errors.New("invalid argument")

// NewInvalidArgumentError wraps ErrInvalidArgument with a formatted message.
func NewInvalidArgumentError(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidArgument, format, args...)
}

// NewIncorrectDoFError is used when the number of values passed to a kinematic function does not
// match the configuration dimension of the chain.
func NewIncorrectDoFError(actual, expected int) error {
	return NewInvalidArgumentError("number of inputs does not match degrees of freedom, expected %d but got %d", expected, actual)
}

// NewLinkOutOfRangeError is used when a link index falls outside [0, links].
func NewLinkOutOfRangeError(link, links int) error {
	return NewInvalidArgumentError("link index %d out of range [0, %d]", link, links)
}

// NewImpurePrimitiveError is used when a dual quaternion does not have the shape of the named
// geometric primitive.
func NewImpurePrimitiveError(argument, primitive string) error {
	return NewInvalidArgumentError("%s is not a %s", argument, primitive)
}

// NewMatrixShapeError is used when a Jacobian has an unexpected number of rows.
func NewMatrixShapeError(argument string, expectedRows, actualRows int) error {
	return NewInvalidArgumentError("%s must have %d rows but has %d", argument, expectedRows, actualRows)
}
