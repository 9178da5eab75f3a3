package kinematics

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/dualquat"

	"go.viam.com/dqkin/spatialmath"
)

// A Jacobian with no columns is returned as an empty *mat.Dense since gonum cannot represent 8x0.

func (c *chain) rawPoseJacobian(q []float64, toLink int) *mat.Dense {
	cols := c.dof(toLink)
	if cols == 0 {
		return &mat.Dense{}
	}
	xEff := c.fold(q, toLink, nil)
	jac := mat.NewDense(8, cols, nil)
	c.fold(q, toLink, func(link int, x dualquat.Number, joint int) {
		if joint < 0 {
			return
		}
		z := c.rules.screw(x, c.links[link])
		jac.SetCol(joint, spatialmath.Vec8(dualquat.Mul(z, xEff)))
	})
	return jac
}

// rawPoseJacobianDerivative expects q and qdot to be validated.
func (c *chain) rawPoseJacobianDerivative(q, qdot []float64, toLink int) *mat.Dense {
	cols := c.dof(toLink)
	if cols == 0 {
		return &mat.Dense{}
	}
	xEff := c.fold(q, toLink, nil)
	xEffDot := c.poseVelocity(q, qdot, toLink)
	hEff := spatialmath.Hminus8(xEff)

	jacDot := mat.NewDense(8, cols, nil)
	c.fold(q, toLink, func(link int, x dualquat.Number, joint int) {
		if joint < 0 {
			return
		}
		w := c.rules.screwAxis(c.links[link])
		z := c.rules.screw(x, c.links[link])

		// ż = ½(H−8(w·x̄) + H+8(x·w)·C8)·ẋ
		zDot := mat.NewVecDense(8, nil)
		if xDot := c.poseVelocity(q, qdot, link); xDot != nil {
			var op, conjOp mat.Dense
			conjOp.Mul(spatialmath.Hplus8(dualquat.Mul(x, w)), spatialmath.C8())
			op.Add(spatialmath.Hminus8(dualquat.Mul(w, spatialmath.Conj(x))), &conjOp)
			op.Scale(0.5, &op)
			zDot.MulVec(&op, xDot)
		}

		var fromScrew, fromEffector mat.VecDense
		fromScrew.MulVec(hEff, zDot)
		fromEffector.MulVec(spatialmath.Hplus8(z), xEffDot)
		fromScrew.AddVec(&fromScrew, &fromEffector)
		jacDot.SetCol(joint, fromScrew.RawVector().Data)
	})
	return jacDot
}

// poseVelocity returns vec8 of the time derivative of the raw pose of the first toLink links, or nil
// when none of them is actuated.
func (c *chain) poseVelocity(q, qdot []float64, toLink int) *mat.VecDense {
	cols := c.dof(toLink)
	if cols == 0 {
		return nil
	}
	var v mat.VecDense
	v.MulVec(c.rawPoseJacobian(q, toLink), mat.NewVecDense(cols, qdot[:cols]))
	return &v
}

// toTaskSpace applies the base and, for the whole chain, the effector to a raw Jacobian.
func (c *chain) toTaskSpace(raw *mat.Dense, toLink int) *mat.Dense {
	if raw.IsEmpty() {
		return raw
	}
	var jac mat.Dense
	jac.Mul(spatialmath.Hplus8(c.base), raw)
	if toLink == len(c.links) {
		jac.Mul(spatialmath.Hminus8(c.effector), &jac)
	}
	return &jac
}

// RawPoseJacobian returns the 8 x dof(toLink) Jacobian of RawFKMTo(q, toLink), one column per actuated
// link among the first toLink.
func (m *SerialManipulator) RawPoseJacobian(q []float64, toLink int) (*mat.Dense, error) {
	c := m.snapshot()
	if err := c.checkConfiguration(q); err != nil {
		return nil, err
	}
	if err := c.checkLink(toLink); err != nil {
		return nil, err
	}
	return c.rawPoseJacobian(q, toLink), nil
}

// PoseJacobian returns the Jacobian of FKM(q).
func (m *SerialManipulator) PoseJacobian(q []float64) (*mat.Dense, error) {
	return m.PoseJacobianTo(q, m.NLinks())
}

// PoseJacobianTo returns the Jacobian of base·RawFKMTo(q, toLink). Only when toLink is NLinks() does the
// effector contribute, making it the Jacobian of FKMTo(q, toLink).
func (m *SerialManipulator) PoseJacobianTo(q []float64, toLink int) (*mat.Dense, error) {
	c := m.snapshot()
	if err := c.checkConfiguration(q); err != nil {
		return nil, err
	}
	if err := c.checkLink(toLink); err != nil {
		return nil, err
	}
	return c.toTaskSpace(c.rawPoseJacobian(q, toLink), toLink), nil
}

// RawPoseJacobianDerivative returns the time derivative of RawPoseJacobian(q, toLink) for the joint
// velocities qdot.
func (m *SerialManipulator) RawPoseJacobianDerivative(q, qdot []float64, toLink int) (*mat.Dense, error) {
	c := m.snapshot()
	if err := c.checkDerivativeArgs(q, qdot, toLink); err != nil {
		return nil, err
	}
	return c.rawPoseJacobianDerivative(q, qdot, toLink), nil
}

// PoseJacobianDerivative returns the time derivative of PoseJacobianTo(q, toLink) for the joint
// velocities qdot.
func (m *SerialManipulator) PoseJacobianDerivative(q, qdot []float64, toLink int) (*mat.Dense, error) {
	c := m.snapshot()
	if err := c.checkDerivativeArgs(q, qdot, toLink); err != nil {
		return nil, err
	}
	return c.toTaskSpace(c.rawPoseJacobianDerivative(q, qdot, toLink), toLink), nil
}

func (c *chain) checkDerivativeArgs(q, qdot []float64, toLink int) error {
	if err := c.checkConfiguration(q); err != nil {
		return err
	}
	if err := c.checkConfiguration(qdot); err != nil {
		return err
	}
	return c.checkLink(toLink)
}
