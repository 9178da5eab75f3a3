package kinematics

import (
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/dualquat"

	"go.viam.com/dqkin/logging"
	"go.viam.com/dqkin/spatialmath"
	"go.viam.com/dqkin/utils"
)

// A 6 link arm with every parameter nonzero so that no term of the link transforms vanishes.
func testTable(dummyRow bool) *mat.Dense {
	rows := 4
	if dummyRow {
		rows = 5
	}
	table := mat.NewDense(rows, 6, nil)
	table.SetRow(ThetaRow, []float64{0.1, -0.3, 0.2, 0, 0.5, -0.7})
	table.SetRow(DRow, []float64{0.3, 0.05, -0.2, 0.4, 0.1, 0.15})
	table.SetRow(ARow, []float64{0.1, 0.35, 0.05, -0.1, 0.2, 0.02})
	table.SetRow(AlphaRow, []float64{math.Pi / 2, -0.4, math.Pi / 3, -math.Pi / 2, 0.9, 0.2})
	return table
}

func testModel(t *testing.T, convention Convention) *SerialManipulator {
	t.Helper()
	m, err := NewSerialManipulator(testTable(false), convention, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	return m
}

// One dummy link in the middle of the chain and one at the end.
func testModelWithDummies(t *testing.T, convention Convention) *SerialManipulator {
	t.Helper()
	table := testTable(true)
	table.SetRow(DummyRow, []float64{0, 0, 1, 0, 0, 1})
	m, err := NewSerialManipulator(table, convention, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	return m
}

func randomConfiguration(r *rand.Rand, n int) []float64 {
	q := make([]float64, n)
	for i := range q {
		q[i] = (r.Float64()*2 - 1) * math.Pi
	}
	return q
}

func testPose() dualquat.Number {
	rot, _ := spatialmath.R4AA{Theta: 0.6, RX: 1, RY: 2, RZ: -1}.ToQuat()
	return spatialmath.NewPose(r3.Vector{X: 0.3, Y: -0.1, Z: 0.8}, rot)
}

func TestNewSerialManipulatorValidation(t *testing.T) {
	logger := logging.NewTestLogger(t)

	_, err := NewSerialManipulator(mat.NewDense(3, 2, nil), Standard, logger)
	test.That(t, errors.Is(err, utils.ErrInvalidArgument), test.ShouldBeTrue)

	_, err = NewSerialManipulator(mat.NewDense(6, 2, nil), Standard, logger)
	test.That(t, errors.Is(err, utils.ErrInvalidArgument), test.ShouldBeTrue)

	_, err = NewSerialManipulator(testTable(false), Convention(7), logger)
	test.That(t, errors.Is(err, utils.ErrInvalidArgument), test.ShouldBeTrue)

	_, err = NewSerialManipulator(nil, Standard, logger)
	test.That(t, errors.Is(err, utils.ErrInvalidArgument), test.ShouldBeTrue)

	_, err = NewSerialManipulator(&mat.Dense{}, Standard, logger)
	test.That(t, errors.Is(err, utils.ErrInvalidArgument), test.ShouldBeTrue)

	table := testTable(true)
	table.Set(DummyRow, 2, 0.5)
	_, err = NewSerialManipulator(table, Standard, logger)
	test.That(t, errors.Is(err, utils.ErrInvalidArgument), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "dummy flag of link 3")

	table = testTable(false)
	table.Set(ARow, 1, math.NaN())
	_, err = NewSerialManipulator(table, Modified, logger)
	test.That(t, errors.Is(err, utils.ErrInvalidArgument), test.ShouldBeTrue)
}

func TestConvention(t *testing.T) {
	c, err := ParseConvention("Standard")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c, test.ShouldEqual, Standard)

	c, err = ParseConvention(" modified ")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c, test.ShouldEqual, Modified)
	test.That(t, c.String(), test.ShouldEqual, "modified")

	_, err = ParseConvention("craig")
	test.That(t, errors.Is(err, utils.ErrInvalidArgument), test.ShouldBeTrue)

	text, err := Standard.MarshalText()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(text), test.ShouldEqual, "standard")
	test.That(t, c.UnmarshalText([]byte("standard")), test.ShouldBeNil)
	test.That(t, c, test.ShouldEqual, Standard)
	_, err = Convention(-1).MarshalText()
	test.That(t, err, test.ShouldNotBeNil)
}

func TestAccessors(t *testing.T) {
	m := testModelWithDummies(t, Modified)
	table := testTable(false)

	test.That(t, m.Theta(), test.ShouldResemble, mat.Row(nil, ThetaRow, table))
	test.That(t, m.D(), test.ShouldResemble, mat.Row(nil, DRow, table))
	test.That(t, m.A(), test.ShouldResemble, mat.Row(nil, ARow, table))
	test.That(t, m.Alpha(), test.ShouldResemble, mat.Row(nil, AlphaRow, table))
	test.That(t, m.Dummy(), test.ShouldResemble, []bool{false, false, true, false, false, true})
	test.That(t, m.NDummy(), test.ShouldEqual, 2)
	test.That(t, m.NLinks(), test.ShouldEqual, 6)
	test.That(t, m.DoF(), test.ShouldEqual, 4)
	test.That(t, m.Convention(), test.ShouldEqual, Modified)
	test.That(t, m.Base(), test.ShouldResemble, spatialmath.Identity())
	test.That(t, m.Effector(), test.ShouldResemble, spatialmath.Identity())

	dh := m.DHTable()
	test.That(t, mat.Row(nil, DummyRow, dh), test.ShouldResemble, []float64{0, 0, 1, 0, 0, 1})
	test.That(t, mat.Row(nil, DRow, dh), test.ShouldResemble, mat.Row(nil, DRow, table))

	pose := testPose()
	test.That(t, m.SetBase(pose), test.ShouldResemble, pose)
	test.That(t, m.Base(), test.ShouldResemble, pose)
	test.That(t, m.Effector(), test.ShouldResemble, spatialmath.Identity())
	test.That(t, m.SetEffector(pose), test.ShouldResemble, pose)
	test.That(t, m.Effector(), test.ShouldResemble, pose)
}

func TestSetDummy(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	m, err := NewSerialManipulator(testTable(false), Standard, logger)
	test.That(t, err, test.ShouldBeNil)

	m.SetDummy([]bool{true, false, false, false, false, false})
	test.That(t, m.NDummy(), test.ShouldEqual, 0)
	test.That(t, logs.FilterMessageSnippet("no dummy row").Len(), test.ShouldEqual, 1)

	m, err = NewSerialManipulator(testTable(true), Standard, logger)
	test.That(t, err, test.ShouldBeNil)
	m.SetDummy([]bool{true})
	test.That(t, m.NDummy(), test.ShouldEqual, 0)
	test.That(t, logs.FilterMessageSnippet("wrong number of dummy flags").Len(), test.ShouldEqual, 1)

	m.SetDummy([]bool{true, false, false, false, false, true})
	test.That(t, m.Dummy(), test.ShouldResemble, []bool{true, false, false, false, false, true})
	test.That(t, m.DoF(), test.ShouldEqual, 4)
}

func TestDH2DQ(t *testing.T) {
	m := testModel(t, Standard)
	_, err := m.DH2DQ(0, 0)
	test.That(t, errors.Is(err, utils.ErrInvalidArgument), test.ShouldBeTrue)
	_, err = m.DH2DQ(0, 7)
	test.That(t, errors.Is(err, utils.ErrInvalidArgument), test.ShouldBeTrue)

	for _, convention := range []Convention{Standard, Modified} {
		m := testModel(t, convention)
		for link := 1; link <= m.NLinks(); link++ {
			x, err := m.DH2DQ(0.4, link)
			test.That(t, err, test.ShouldBeNil)
			// Unit dual quaternion: |P| = 1 and P·D = 0.
			unit := dualquat.Mul(x, spatialmath.Conj(x))
			test.That(t, spatialmath.AlmostEqual(unit, spatialmath.Identity(), 1e-12), test.ShouldBeTrue)
		}
	}
}

func TestConcurrentAccess(t *testing.T) {
	m := testModelWithDummies(t, Standard)
	q := []float64{0.1, 0.2, 0.3, 0.4}
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			m.SetBase(testPose())
			m.SetDummy([]bool{false, false, true, false, false, true})
		}()
		go func() {
			defer wg.Done()
			if _, err := m.PoseJacobian(q); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
}
