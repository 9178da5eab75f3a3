package spatialmath

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"
)

// See here for a thorough explanation: https://en.wikipedia.org/wiki/Axis%E2%80%93angle_representation
// An orientation is expressed by an axis, a line from the origin to a point on the unit sphere
// represented by (rx, ry, rz), and a rotation around that axis, theta.

// R4AA represents an R4 axis angle.
type R4AA struct {
	Theta float64 `json:"th" yaml:"th"`
	RX    float64 `json:"x" yaml:"x"`
	RY    float64 `json:"y" yaml:"y"`
	RZ    float64 `json:"z" yaml:"z"`
}

// NewR4AA creates the zero rotation about the z axis.
func NewR4AA() *R4AA {
	return &R4AA{Theta: 0, RX: 0, RY: 0, RZ: 1}
}

// ToQuat converts an R4 axis angle to a unit quaternion.
// See: https://www.euclideanspace.com/maths/geometry/rotations/conversions/angleToQuaternion/index.htm
func (r4 R4AA) ToQuat() (quat.Number, error) {
	if r4.Theta == 0 {
		return quat.Number{Real: 1}, nil
	}
	if err := r4.Normalize(); err != nil {
		return quat.Number{}, err
	}
	sinA := math.Sin(r4.Theta / 2)
	return quat.Number{
		Real: math.Cos(r4.Theta / 2),
		Imag: r4.RX * sinA,
		Jmag: r4.RY * sinA,
		Kmag: r4.RZ * sinA,
	}, nil
}

// Normalize scales the x, y, and z components of a R4 axis angle to be on the unit sphere.
func (r4 *R4AA) Normalize() error {
	norm := math.Sqrt(r4.RX*r4.RX + r4.RY*r4.RY + r4.RZ*r4.RZ)
	if norm == 0.0 {
		return errors.New("cannot normalize axis angle with a zero length axis")
	}
	r4.RX /= norm
	r4.RY /= norm
	r4.RZ /= norm
	return nil
}

// QuatToR4AA converts a unit quaternion to an R4 axis angle with theta in [0, 2π]. The identity maps to a
// zero rotation about the z axis.
func QuatToR4AA(q quat.Number) R4AA {
	w := math.Max(-1, math.Min(1, q.Real))
	sinHalf := math.Sqrt(1 - w*w)
	if sinHalf < 1e-12 {
		return *NewR4AA()
	}
	return R4AA{Theta: 2 * math.Acos(w), RX: q.Imag / sinHalf, RY: q.Jmag / sinHalf, RZ: q.Kmag / sinHalf}
}
