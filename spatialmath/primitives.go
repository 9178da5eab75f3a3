package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/dualquat"
	"gonum.org/v1/gonum/num/quat"
)

// PurityTolerance is the largest magnitude a coefficient may have and still count as zero when
// checking the shape of a geometric primitive.
const PurityTolerance = 1e-12

// NewPoint returns the point p as the pure quaternion 0 + xi + yj + zk with zero dual part.
func NewPoint(p r3.Vector) dualquat.Number {
	return dualquat.Number{Real: pureQuat(p)}
}

// NewLine returns the Plücker line l + ε(p × l) through point with the normalized direction.
func NewLine(direction, point r3.Vector) dualquat.Number {
	l := direction.Normalize()
	return dualquat.Number{Real: pureQuat(l), Dual: pureQuat(point.Cross(l))}
}

// NewPlane returns the plane n + εd through point with the normalized normal, where d = p·n.
func NewPlane(normal, point r3.Vector) dualquat.Number {
	n := normal.Normalize()
	return dualquat.Number{Real: pureQuat(n), Dual: quat.Number{Real: point.Dot(n)}}
}

// IsPoint reports whether x has zero real part and zero dual part.
func IsPoint(x dualquat.Number) bool {
	return isZero(x.Real.Real) && isZero(x.Dual.Real, x.Dual.Imag, x.Dual.Jmag, x.Dual.Kmag)
}

// IsLine reports whether x has zero real parts in both its primary and dual parts.
func IsLine(x dualquat.Number) bool {
	return isZero(x.Real.Real, x.Dual.Real)
}

// IsPlane reports whether x has a pure primary part and a real dual part.
func IsPlane(x dualquat.Number) bool {
	return isZero(x.Real.Real, x.Dual.Imag, x.Dual.Jmag, x.Dual.Kmag)
}

// IsPure reports whether q has zero real part.
func IsPure(q quat.Number) bool {
	return isZero(q.Real)
}

func pureQuat(v r3.Vector) quat.Number {
	return quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
}

func isZero(values ...float64) bool {
	for _, v := range values {
		if !(math.Abs(v) <= PurityTolerance) {
			return false
		}
	}
	return true
}
