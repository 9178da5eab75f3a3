// Package spatialmath defines the dual quaternion operations used by the kinematics packages on top of
// gonum's num/dualquat and num/quat types.
package spatialmath

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/dualquat"
	"gonum.org/v1/gonum/num/quat"
)

// Identity returns the identity dual quaternion 1 + ε0.
func Identity() dualquat.Number {
	return dualquat.Number{Real: quat.Number{Real: 1}}
}

// NewPose returns the unit dual quaternion r + ε½tr that rotates by r and then translates by t.
func NewPose(translation r3.Vector, rotation quat.Number) dualquat.Number {
	t := quat.Number{Imag: translation.X, Jmag: translation.Y, Kmag: translation.Z}
	return dualquat.Number{
		Real: rotation,
		Dual: quat.Scale(0.5, quat.Mul(t, rotation)),
	}
}

// Conj returns the quaternion conjugate of both parts, P̄ + εD̄. For a unit dual quaternion this is the
// inverse. Note that gonum's dualquat.Conj negates the dual part as well.
func Conj(x dualquat.Number) dualquat.Number {
	return dualquat.ConjQuat(x)
}

// P returns the primary part of x as a dual quaternion with zero dual part.
func P(x dualquat.Number) dualquat.Number {
	return dualquat.Number{Real: x.Real}
}

// D returns the dual part of x moved into the primary slot of a dual quaternion.
func D(x dualquat.Number) dualquat.Number {
	return dualquat.Number{Real: x.Dual}
}

// Re returns the real (scalar) parts of x.
func Re(x dualquat.Number) dualquat.Number {
	return dualquat.Number{
		Real: quat.Number{Real: x.Real.Real},
		Dual: quat.Number{Real: x.Dual.Real},
	}
}

// Im returns the imaginary parts of x.
func Im(x dualquat.Number) dualquat.Number {
	return dualquat.Number{
		Real: quat.Number{Imag: x.Real.Imag, Jmag: x.Real.Jmag, Kmag: x.Real.Kmag},
		Dual: quat.Number{Imag: x.Dual.Imag, Jmag: x.Dual.Jmag, Kmag: x.Dual.Kmag},
	}
}

// Rotation returns the rotation quaternion of a unit dual quaternion.
func Rotation(x dualquat.Number) quat.Number {
	return x.Real
}

// Translation returns the pure quaternion 2·D·P̄ holding the translation of a unit dual quaternion.
func Translation(x dualquat.Number) quat.Number {
	return quat.Scale(2, quat.Mul(x.Dual, quat.Conj(x.Real)))
}

// TranslationVector returns the translation of a unit dual quaternion as an r3 vector.
func TranslationVector(x dualquat.Number) r3.Vector {
	t := Translation(x)
	return r3.Vector{X: t.Imag, Y: t.Jmag, Z: t.Kmag}
}

// Dot returns the dual quaternion inner product -½(ab + ba). For pure arguments the result is a real
// dual number.
func Dot(a, b dualquat.Number) dualquat.Number {
	return dualquat.Scale(-0.5, dualquat.Add(dualquat.Mul(a, b), dualquat.Mul(b, a)))
}

// Cross returns the dual quaternion cross product ½(ab - ba).
func Cross(a, b dualquat.Number) dualquat.Number {
	return dualquat.Scale(0.5, dualquat.Sub(dualquat.Mul(a, b), dualquat.Mul(b, a)))
}

// QuatDot returns -½(ab + ba) for quaternions; the 3d dot product for pure ones.
func QuatDot(a, b quat.Number) quat.Number {
	return quat.Scale(-0.5, quat.Add(quat.Mul(a, b), quat.Mul(b, a)))
}

// QuatCross returns ½(ab - ba) for quaternions; the 3d cross product for pure ones.
func QuatCross(a, b quat.Number) quat.Number {
	return quat.Scale(0.5, quat.Sub(quat.Mul(a, b), quat.Mul(b, a)))
}

// Vec4 returns the coefficients of q ordered as [w x y z].
func Vec4(q quat.Number) []float64 {
	return []float64{q.Real, q.Imag, q.Jmag, q.Kmag}
}

// Vec8 returns the coefficients of x ordered as the primary then the dual part, each [w x y z].
func Vec8(x dualquat.Number) []float64 {
	return []float64{
		x.Real.Real, x.Real.Imag, x.Real.Jmag, x.Real.Kmag,
		x.Dual.Real, x.Dual.Imag, x.Dual.Jmag, x.Dual.Kmag,
	}
}

// QuatFromVec4 is the inverse of Vec4. Only the first four values are read.
func QuatFromVec4(v []float64) quat.Number {
	return quat.Number{Real: v[0], Imag: v[1], Jmag: v[2], Kmag: v[3]}
}

// FromVec8 is the inverse of Vec8. Only the first eight values are read.
func FromVec8(v []float64) dualquat.Number {
	return dualquat.Number{Real: QuatFromVec4(v[:4]), Dual: QuatFromVec4(v[4:8])}
}

// QuatNorm2 returns the squared norm of q.
func QuatNorm2(q quat.Number) float64 {
	return q.Real*q.Real + q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag
}

// AlmostEqual reports whether every coefficient of a and b differs by less than epsilon.
func AlmostEqual(a, b dualquat.Number, epsilon float64) bool {
	va, vb := Vec8(a), Vec8(b)
	for i := range va {
		if d := va[i] - vb[i]; d >= epsilon || d <= -epsilon {
			return false
		}
	}
	return true
}
