package kinematics

import (
	"gonum.org/v1/gonum/num/dualquat"

	"go.viam.com/dqkin/spatialmath"
)

// linkVisitor is called by fold for each link, before the link is applied. x is the raw pose of the
// links already visited and joint is the configuration index of the link, or -1 for a dummy link.
type linkVisitor func(link int, x dualquat.Number, joint int)

// fold composes the first toLink link transforms in order, starting from the identity. Dummy links use
// a joint value of 0 and consume no configuration entry. q must already be validated.
func (c *chain) fold(q []float64, toLink int, visit linkVisitor) dualquat.Number {
	x := spatialmath.Identity()
	joint := 0
	for i, link := range c.links[:toLink] {
		theta := 0.
		index := -1
		if !link.dummy {
			theta = q[joint]
			index = joint
			joint++
		}
		if visit != nil {
			visit(i, x, index)
		}
		x = dualquat.Mul(x, c.rules.linkTransform(theta, link))
	}
	return x
}

func (c *chain) rawFKM(q []float64, toLink int) (dualquat.Number, error) {
	if err := c.checkConfiguration(q); err != nil {
		return dualquat.Number{}, err
	}
	if err := c.checkLink(toLink); err != nil {
		return dualquat.Number{}, err
	}
	return c.fold(q, toLink, nil), nil
}

func (c *chain) fkm(q []float64, toLink int) (dualquat.Number, error) {
	x, err := c.rawFKM(q, toLink)
	if err != nil {
		return dualquat.Number{}, err
	}
	return dualquat.Mul(dualquat.Mul(c.base, x), c.effector), nil
}

// RawFKM returns the pose of the last link for the configuration q, ignoring base and effector.
func (m *SerialManipulator) RawFKM(q []float64) (dualquat.Number, error) {
	c := m.snapshot()
	return c.rawFKM(q, len(c.links))
}

// RawFKMTo returns the pose of link ith, ignoring base and effector. ith is in [0, NLinks()] and 0 gives
// the identity. q always has the dimension of the whole chain.
func (m *SerialManipulator) RawFKMTo(q []float64, ith int) (dualquat.Number, error) {
	return m.snapshot().rawFKM(q, ith)
}

// FKM returns base · RawFKM(q) · effector.
func (m *SerialManipulator) FKM(q []float64) (dualquat.Number, error) {
	c := m.snapshot()
	return c.fkm(q, len(c.links))
}

// FKMTo returns base · RawFKMTo(q, ith) · effector.
func (m *SerialManipulator) FKMTo(q []float64, ith int) (dualquat.Number, error) {
	return m.snapshot().fkm(q, ith)
}
