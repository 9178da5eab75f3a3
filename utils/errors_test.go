package utils

import (
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestInvalidArgumentErrors(t *testing.T) {
	for _, tc := range []struct {
		name   string
		err    error
		errStr string
	}{
		{"dof", NewIncorrectDoFError(3, 7), "expected 7 but got 3"},
		{"link", NewLinkOutOfRangeError(9, 7), "link index 9 out of range [0, 7]"},
		{"primitive", NewImpurePrimitiveError("workspace line", "line"), "workspace line is not a line"},
		{"shape", NewMatrixShapeError("pose jacobian", 8, 6), "pose jacobian must have 8 rows but has 6"},
		{"plain", NewInvalidArgumentError("convention %q", "dh"), `convention "dh"`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			test.That(t, tc.err.Error(), test.ShouldContainSubstring, tc.errStr)
			test.That(t, tc.err.Error(), test.ShouldContainSubstring, ErrInvalidArgument.Error())
			test.That(t, errors.Is(tc.err, ErrInvalidArgument), test.ShouldBeTrue)
		})
	}
}
