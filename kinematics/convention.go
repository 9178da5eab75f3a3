package kinematics

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/num/dualquat"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/dqkin/spatialmath"
	"go.viam.com/dqkin/utils"
)

// Convention selects which Denavit-Hartenberg parameterization a table uses.
type Convention int

const (
	// Standard is the classic (distal) DH convention.
	Standard Convention = iota
	// Modified is Craig's (proximal) DH convention.
	Modified
)

// ParseConvention parses "standard" or "modified", ignoring case.
func ParseConvention(s string) (Convention, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "standard":
		return Standard, nil
	case "modified":
		return Modified, nil
	}
	return Standard, utils.NewInvalidArgumentError("unknown DH convention %q, supported conventions are standard and modified", s)
}

func (c Convention) String() string {
	switch c {
	case Standard:
		return "standard"
	case Modified:
		return "modified"
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (c Convention) MarshalText() ([]byte, error) {
	if _, err := c.rules(); err != nil {
		return nil, err
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Convention) UnmarshalText(text []byte) error {
	parsed, err := ParseConvention(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c Convention) rules() (dhRules, error) {
	switch c {
	case Standard:
		return standardDH{}, nil
	case Modified:
		return modifiedDH{}, nil
	}
	return nil, utils.NewInvalidArgumentError("unknown DH convention %d", int(c))
}

// dhRules holds everything that differs between the two conventions.
type dhRules interface {
	// linkTransform is the unit dual quaternion of one link for the total joint angle theta.
	linkTransform(theta float64, link linkParams) dualquat.Number
	// screwAxis is the joint motion axis expressed in the frame preceding the link.
	screwAxis(link linkParams) dualquat.Number
	// screw is the joint motion axis expressed in the base frame, ½·x·w·x̄, where x is the pose of the
	// frame preceding the link.
	screw(x dualquat.Number, link linkParams) dualquat.Number
}

type linkParams struct {
	theta, d, a, alpha float64
	dummy              bool
}

// halfAngleProducts returns cos h cos s, cos h sin s, sin h sin s, sin h cos s for h = theta/2, s = alpha/2.
func halfAngleProducts(theta, alpha float64) (float64, float64, float64, float64) {
	sh, ch := math.Sincos(theta / 2)
	ss, cs := math.Sincos(alpha / 2)
	return ch * cs, ch * ss, sh * ss, sh * cs
}

type standardDH struct{}

func (standardDH) linkTransform(theta float64, link linkParams) dualquat.Number {
	q0, q1, q2, q3 := halfAngleProducts(theta+link.theta, link.alpha)
	d2, a2 := link.d/2, link.a/2
	return dualquat.Number{
		Real: quat.Number{Real: q0, Imag: q1, Jmag: q2, Kmag: q3},
		Dual: quat.Number{
			Real: -d2*q3 - a2*q1,
			Imag: -d2*q2 + a2*q0,
			Jmag: d2*q1 + a2*q3,
			Kmag: d2*q0 - a2*q2,
		},
	}
}

func (standardDH) screwAxis(linkParams) dualquat.Number {
	return dualquat.Number{Real: quat.Number{Kmag: 1}}
}

// Closed form of ½·x·k·x̄.
func (standardDH) screw(x dualquat.Number, _ linkParams) dualquat.Number {
	q := spatialmath.Vec8(x)
	return dualquat.Number{
		Real: quat.Number{
			Imag: q[1]*q[3] + q[0]*q[2],
			Jmag: q[2]*q[3] - q[0]*q[1],
			Kmag: (q[3]*q[3] - q[2]*q[2] - q[1]*q[1] + q[0]*q[0]) / 2,
		},
		Dual: quat.Number{
			Imag: q[1]*q[7] + q[5]*q[3] + q[0]*q[6] + q[4]*q[2],
			Jmag: q[2]*q[7] + q[6]*q[3] - q[0]*q[5] - q[4]*q[1],
			Kmag: q[3]*q[7] - q[2]*q[6] - q[1]*q[5] + q[0]*q[4],
		},
	}
}

type modifiedDH struct{}

func (modifiedDH) linkTransform(theta float64, link linkParams) dualquat.Number {
	h1, h2, h3, h4 := halfAngleProducts(theta+link.theta, link.alpha)
	d2, a2 := link.d/2, link.a/2
	return dualquat.Number{
		Real: quat.Number{Real: h1, Imag: h2, Jmag: -h3, Kmag: h4},
		Dual: quat.Number{
			Real: -d2*h4 - a2*h2,
			Imag: -d2*h3 + a2*h1,
			Jmag: -(d2*h2 + a2*h4),
			Kmag: d2*h1 - a2*h3,
		},
	}
}

func (modifiedDH) screwAxis(link linkParams) dualquat.Number {
	sa, ca := math.Sincos(link.alpha)
	return dualquat.Number{
		Real: quat.Number{Jmag: -sa, Kmag: ca},
		Dual: quat.Number{Jmag: -link.a * ca, Kmag: -link.a * sa},
	}
}

func (r modifiedDH) screw(x dualquat.Number, link linkParams) dualquat.Number {
	return halfConjugation(x, r.screwAxis(link))
}

// halfConjugation returns ½·x·w·x̄.
func halfConjugation(x, w dualquat.Number) dualquat.Number {
	return dualquat.Scale(0.5, dualquat.Mul(dualquat.Mul(x, w), spatialmath.Conj(x)))
}
