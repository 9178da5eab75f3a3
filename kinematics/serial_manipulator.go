// Package kinematics implements forward kinematics and the pose Jacobian of serial manipulators described
// by Denavit-Hartenberg tables, with every pose represented as a unit dual quaternion.
package kinematics

import (
	"sync"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/dualquat"

	"go.viam.com/dqkin/logging"
	"go.viam.com/dqkin/spatialmath"
	"go.viam.com/dqkin/utils"
)

// Rows of a DH table.
const (
	ThetaRow = iota
	DRow
	ARow
	AlphaRow
	DummyRow
)

// SerialManipulator is a serial kinematic chain built from a DH table of 4 or 5 rows (theta, d, a,
// alpha and optionally a dummy flag) by N columns, one per link. Dummy links are fixed: they always use
// a joint value of 0 and take no entry of the configuration vector.
//
// All methods are safe for concurrent use. Each kinematic call works on a snapshot of the base,
// effector and dummy flags taken when the call starts.
type SerialManipulator struct {
	links       []linkParams
	hasDummyRow bool
	convention  Convention
	rules       dhRules
	logger      logging.Logger

	mu       sync.RWMutex
	base     dualquat.Number
	effector dualquat.Number
}

// NewSerialManipulator builds a chain from a DH table. The base and effector start as the identity.
func NewSerialManipulator(table mat.Matrix, convention Convention, logger logging.Logger) (*SerialManipulator, error) {
	rules, err := convention.rules()
	if err != nil {
		return nil, err
	}
	if table == nil {
		return nil, utils.NewInvalidArgumentError("DH table is nil")
	}
	if dense, ok := table.(*mat.Dense); ok && dense.IsEmpty() {
		return nil, utils.NewInvalidArgumentError("DH table is empty")
	}
	rows, cols := table.Dims()
	if rows != 4 && rows != 5 {
		return nil, utils.NewInvalidArgumentError("DH table must have 4 or 5 rows but has %d", rows)
	}
	if cols == 0 {
		return nil, utils.NewInvalidArgumentError("DH table has no links")
	}

	links := make([]linkParams, cols)
	for i := range links {
		column := mat.Col(nil, i, table)
		if !utils.IsFinite(column...) {
			return nil, utils.NewInvalidArgumentError("DH parameters of link %d are not finite", i+1)
		}
		links[i] = linkParams{theta: column[ThetaRow], d: column[DRow], a: column[ARow], alpha: column[AlphaRow]}
		if rows == 5 {
			switch column[DummyRow] {
			case 0:
			case 1:
				links[i].dummy = true
			default:
				return nil, utils.NewInvalidArgumentError("dummy flag of link %d must be 0 or 1 but is %v", i+1, column[DummyRow])
			}
		}
	}

	if logger == nil {
		logger = logging.NewLogger("kinematics")
	}

	return &SerialManipulator{
		links:       links,
		hasDummyRow: rows == 5,
		convention:  convention,
		rules:       rules,
		logger:      logger,
		base:        spatialmath.Identity(),
		effector:    spatialmath.Identity(),
	}, nil
}

// Theta returns the joint angle offsets.
func (m *SerialManipulator) Theta() []float64 {
	return lo.Map(m.snapshot().links, func(l linkParams, _ int) float64 { return l.theta })
}

// D returns the link offsets along the joint axes.
func (m *SerialManipulator) D() []float64 {
	return lo.Map(m.snapshot().links, func(l linkParams, _ int) float64 { return l.d })
}

// A returns the link lengths.
func (m *SerialManipulator) A() []float64 {
	return lo.Map(m.snapshot().links, func(l linkParams, _ int) float64 { return l.a })
}

// Alpha returns the link twists.
func (m *SerialManipulator) Alpha() []float64 {
	return lo.Map(m.snapshot().links, func(l linkParams, _ int) float64 { return l.alpha })
}

// Dummy returns which links are dummy links.
func (m *SerialManipulator) Dummy() []bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return lo.Map(m.links, func(l linkParams, _ int) bool { return l.dummy })
}

// NDummy returns the number of dummy links.
func (m *SerialManipulator) NDummy() int {
	return lo.Count(m.Dummy(), true)
}

// NLinks returns the number of links in the chain.
func (m *SerialManipulator) NLinks() int {
	return len(m.links)
}

// DoF returns the dimension of the configuration space, the number of links minus the dummy links.
func (m *SerialManipulator) DoF() int {
	return m.NLinks() - m.NDummy()
}

// Convention returns the DH convention of the table.
func (m *SerialManipulator) Convention() Convention {
	return m.convention
}

// Base returns the pose of the chain's base frame.
func (m *SerialManipulator) Base() dualquat.Number {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.base
}

// Effector returns the pose of the end effector relative to the last link.
func (m *SerialManipulator) Effector() dualquat.Number {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.effector
}

// SetBase replaces the base pose and returns it.
func (m *SerialManipulator) SetBase(base dualquat.Number) dualquat.Number {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.base = base
	return m.base
}

// SetEffector replaces the effector pose and returns it.
func (m *SerialManipulator) SetEffector(effector dualquat.Number) dualquat.Number {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.effector = effector
	return m.effector
}

// SetDummy marks links as dummy links. It only applies to chains built from a 5 row table and needs one
// flag per link; otherwise nothing changes and a warning is logged.
func (m *SerialManipulator) SetDummy(flags []bool) {
	if !m.hasDummyRow {
		m.logger.Warn("the DH table has no dummy row, dummy flags are ignored")
		return
	}
	if len(flags) != len(m.links) {
		m.logger.Warnw("wrong number of dummy flags, dummy flags are ignored", "expected", len(m.links), "got", len(flags))
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, flag := range flags {
		m.links[i].dummy = flag
	}
	m.logger.Debugw("dummy flags updated", "dummy", flags)
}

// DHTable returns a copy of the table with 5 rows, the last holding the dummy flags as 0 or 1.
func (m *SerialManipulator) DHTable() *mat.Dense {
	c := m.snapshot()
	table := mat.NewDense(5, len(c.links), nil)
	for i, l := range c.links {
		table.SetCol(i, []float64{l.theta, l.d, l.a, l.alpha, lo.Ternary(l.dummy, 1., 0.)})
	}
	return table
}

// DH2DQ returns the transform of one link, numbered from 1, for the joint value theta.
func (m *SerialManipulator) DH2DQ(theta float64, link int) (dualquat.Number, error) {
	if link < 1 || link > len(m.links) {
		return dualquat.Number{}, utils.NewInvalidArgumentError("link %d out of range [1, %d]", link, len(m.links))
	}
	return m.rules.linkTransform(theta, m.snapshot().links[link-1]), nil
}

// chain is an immutable view of a SerialManipulator used by one kinematic call.
type chain struct {
	links    []linkParams
	rules    dhRules
	base     dualquat.Number
	effector dualquat.Number
}

func (m *SerialManipulator) snapshot() *chain {
	m.mu.RLock()
	defer m.mu.RUnlock()
	links := make([]linkParams, len(m.links))
	copy(links, m.links)
	return &chain{links: links, rules: m.rules, base: m.base, effector: m.effector}
}

// dof returns the number of actuated links among the first k.
func (c *chain) dof(k int) int {
	return k - lo.CountBy(c.links[:k], func(l linkParams) bool { return l.dummy })
}

func (c *chain) checkConfiguration(q []float64) error {
	if expected := c.dof(len(c.links)); len(q) != expected {
		return utils.NewIncorrectDoFError(len(q), expected)
	}
	return nil
}

func (c *chain) checkLink(link int) error {
	if link < 0 || link > len(c.links) {
		return utils.NewLinkOutOfRangeError(link, len(c.links))
	}
	return nil
}
