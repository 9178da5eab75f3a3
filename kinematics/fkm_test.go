package kinematics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/dualquat"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/dqkin/logging"
	"go.viam.com/dqkin/spatialmath"
	"go.viam.com/dqkin/utils"
)

func TestSingleLinkRotation(t *testing.T) {
	m, err := NewSerialManipulator(mat.NewDense(4, 1, nil), Standard, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	for _, q := range []float64{0, 0.3, -1.2, math.Pi, 7.5} {
		x, err := m.FKM([]float64{q})
		test.That(t, err, test.ShouldBeNil)
		expected := dualquat.Number{Real: quat.Number{Real: math.Cos(q / 2), Kmag: math.Sin(q / 2)}}
		test.That(t, spatialmath.AlmostEqual(x, expected, 1e-12), test.ShouldBeTrue)
	}
}

func TestFKMComposesBaseAndEffector(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for _, convention := range []Convention{Standard, Modified} {
		m := testModel(t, convention)
		base := testPose()
		effector := spatialmath.NewPose(spatialmath.TranslationVector(base).Mul(-0.5), quat.Number{Real: 1})
		m.SetBase(base)
		m.SetEffector(effector)

		q := randomConfiguration(r, m.DoF())
		for link := 0; link <= m.NLinks(); link++ {
			raw, err := m.RawFKMTo(q, link)
			test.That(t, err, test.ShouldBeNil)
			x, err := m.FKMTo(q, link)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, x, test.ShouldResemble, dualquat.Mul(dualquat.Mul(base, raw), effector))
		}

		raw, err := m.RawFKM(q)
		test.That(t, err, test.ShouldBeNil)
		rawTo, err := m.RawFKMTo(q, m.NLinks())
		test.That(t, err, test.ShouldBeNil)
		test.That(t, raw, test.ShouldResemble, rawTo)

		x, err := m.FKM(q)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, x, test.ShouldResemble, dualquat.Mul(dualquat.Mul(base, raw), effector))

		zero, err := m.RawFKMTo(q, 0)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, zero, test.ShouldResemble, spatialmath.Identity())
	}
}

func TestFKMArgumentErrors(t *testing.T) {
	m := testModelWithDummies(t, Standard)

	// The configuration covers actuated links only.
	_, err := m.FKM(make([]float64, m.NLinks()))
	test.That(t, errors.Is(err, utils.ErrInvalidArgument), test.ShouldBeTrue)
	_, err = m.RawFKM(make([]float64, m.DoF()-1))
	test.That(t, errors.Is(err, utils.ErrInvalidArgument), test.ShouldBeTrue)

	// A prefix still takes the full configuration.
	_, err = m.RawFKMTo(make([]float64, 2), 2)
	test.That(t, errors.Is(err, utils.ErrInvalidArgument), test.ShouldBeTrue)

	_, err = m.FKMTo(make([]float64, m.DoF()), -1)
	test.That(t, errors.Is(err, utils.ErrInvalidArgument), test.ShouldBeTrue)
	_, err = m.FKMTo(make([]float64, m.DoF()), m.NLinks()+1)
	test.That(t, errors.Is(err, utils.ErrInvalidArgument), test.ShouldBeTrue)
}

func TestDummyLinksUseZeroJointValue(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for _, convention := range []Convention{Standard, Modified} {
		withDummies := testModelWithDummies(t, convention)
		actuated := testModel(t, convention)

		q := randomConfiguration(r, withDummies.DoF())
		full := []float64{q[0], q[1], 0, q[2], q[3], 0}

		x, err := withDummies.FKM(q)
		test.That(t, err, test.ShouldBeNil)
		expected, err := actuated.FKM(full)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, spatialmath.AlmostEqual(x, expected, 1e-12), test.ShouldBeTrue)

		x, err = withDummies.RawFKMTo(q, 3)
		test.That(t, err, test.ShouldBeNil)
		expected, err = actuated.RawFKMTo(full, 3)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, spatialmath.AlmostEqual(x, expected, 1e-12), test.ShouldBeTrue)
	}
}

// Homogeneous transform of one standard DH link: Rz(theta) Tz(d) Tx(a) Rx(alpha).
func standardDHMatrix(theta, d, a, alpha float64) mgl64.Mat4 {
	return mgl64.HomogRotate3DZ(theta).
		Mul4(mgl64.Translate3D(0, 0, d)).
		Mul4(mgl64.Translate3D(a, 0, 0)).
		Mul4(mgl64.HomogRotate3DX(alpha))
}

func TestStandardFKMMatchesHomogeneousMatrices(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	m := testModel(t, Standard)
	for trial := 0; trial < 10; trial++ {
		q := randomConfiguration(r, m.DoF())
		x, err := m.FKM(q)
		test.That(t, err, test.ShouldBeNil)

		h := mgl64.Ident4()
		for i := range q {
			h = h.Mul4(standardDHMatrix(q[i]+m.Theta()[i], m.D()[i], m.A()[i], m.Alpha()[i]))
		}

		translation := spatialmath.TranslationVector(x)
		test.That(t, translation.X, test.ShouldAlmostEqual, h.At(0, 3), 1e-12)
		test.That(t, translation.Y, test.ShouldAlmostEqual, h.At(1, 3), 1e-12)
		test.That(t, translation.Z, test.ShouldAlmostEqual, h.At(2, 3), 1e-12)

		// Quaternions double cover rotations.
		oracle := mgl64.Mat4ToQuat(h)
		rot := spatialmath.Rotation(x)
		dot := oracle.W*rot.Real + oracle.V.X()*rot.Imag + oracle.V.Y()*rot.Jmag + oracle.V.Z()*rot.Kmag
		test.That(t, math.Abs(dot), test.ShouldAlmostEqual, 1, 1e-9)
	}
}

func TestRobotModelFKM(t *testing.T) {
	m, err := RobotModel("kuka_lw4", logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	// Straight up: the links stack along z.
	x, err := m.FKM(make([]float64, 7))
	test.That(t, err, test.ShouldBeNil)
	translation := spatialmath.TranslationVector(x)
	test.That(t, translation.X, test.ShouldAlmostEqual, 0, 1e-12)
	test.That(t, translation.Y, test.ShouldAlmostEqual, 0, 1e-12)
	test.That(t, translation.Z, test.ShouldAlmostEqual, 0.31+0.4+0.39, 1e-12)
}
