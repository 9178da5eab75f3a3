// Package taskspace maps a pose Jacobian onto the task space of geometric primitives attached to the end
// effector (rotation, translation, lines and planes) and builds the distance Jacobians between those
// primitives and primitives in the workspace.
package taskspace

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/dualquat"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/dqkin/spatialmath"
	"go.viam.com/dqkin/utils"
)

// jacobianView validates the row count of a Jacobian and returns it as a *mat.Dense. ok is false for
// an empty Jacobian, a chain prefix with no actuated joint.
func jacobianView(name string, jac mat.Matrix, rows int) (*mat.Dense, bool, error) {
	if jac == nil {
		return nil, false, utils.NewInvalidArgumentError("%s is nil", name)
	}
	if empty, isEmpty := jac.(interface{ IsEmpty() bool }); isEmpty && empty.IsEmpty() {
		return nil, false, nil
	}
	if r, _ := jac.Dims(); r != rows {
		return nil, false, utils.NewMatrixShapeError(name, rows, r)
	}
	return mat.DenseCopyOf(jac), true, nil
}

// emptyOr returns the empty Jacobian, or err when it is set.
func emptyOr(err error) (*mat.Dense, error) {
	if err != nil {
		return nil, err
	}
	return &mat.Dense{}, nil
}

func primaryRows(jac *mat.Dense) mat.Matrix {
	_, cols := jac.Dims()
	return jac.Slice(0, 4, 0, cols)
}

func dualRows(jac *mat.Dense) mat.Matrix {
	_, cols := jac.Dims()
	return jac.Slice(4, 8, 0, cols)
}

// rowVector returns vec4(q) as a 1 x 4 matrix.
func rowVector(q quat.Number) *mat.Dense {
	return mat.NewDense(1, 4, spatialmath.Vec4(q))
}

func stack(top, bottom mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Stack(top, bottom)
	return &out
}

// RotationJacobian returns the 4 x n Jacobian of the rotation of the pose, the primary rows of the pose
// Jacobian.
func RotationJacobian(poseJacobian mat.Matrix) (*mat.Dense, error) {
	jac, ok, err := jacobianView("pose jacobian", poseJacobian, 8)
	if err != nil || !ok {
		return emptyOr(err)
	}
	return mat.DenseCopyOf(primaryRows(jac)), nil
}

// TranslationJacobian returns the 4 x n Jacobian of the translation 2·D·P̄ of pose:
// 2·H−4(P̄)·J_D + 2·H+4(D)·C4·J_P.
func TranslationJacobian(poseJacobian mat.Matrix, pose dualquat.Number) (*mat.Dense, error) {
	jac, ok, err := jacobianView("pose jacobian", poseJacobian, 8)
	if err != nil || !ok {
		return emptyOr(err)
	}
	return translationJacobian(jac, pose), nil
}

func translationJacobian(jac *mat.Dense, pose dualquat.Number) *mat.Dense {
	var fromDual, fromPrimary, conjPrimary mat.Dense
	fromDual.Mul(spatialmath.Hminus4(quat.Conj(pose.Real)), dualRows(jac))
	conjPrimary.Mul(spatialmath.C4(), primaryRows(jac))
	fromPrimary.Mul(spatialmath.Hplus4(pose.Dual), &conjPrimary)
	fromDual.Add(&fromDual, &fromPrimary)
	fromDual.Scale(2, &fromDual)
	return &fromDual
}

// rotatedJacobian returns the Jacobian of r·v·r̄ where r is the rotation of pose and v a constant
// quaternion: H−4(v·r̄)·J_r + H+4(r·v)·C4·J_r.
func rotatedJacobian(jacRot mat.Matrix, r, v quat.Number) *mat.Dense {
	var right, left, conjRot mat.Dense
	right.Mul(spatialmath.Hminus4(quat.Mul(v, quat.Conj(r))), jacRot)
	conjRot.Mul(spatialmath.C4(), jacRot)
	left.Mul(spatialmath.Hplus4(quat.Mul(r, v)), &conjRot)
	right.Add(&right, &left)
	return &right
}

// LineJacobian returns the 8 x n Jacobian of the Plücker line l + ε(t × l) whose direction is
// lineDirection expressed in the frame of pose, and which passes through the origin of that frame.
// The first four rows are the direction, the last four the moment.
func LineJacobian(poseJacobian mat.Matrix, pose dualquat.Number, lineDirection quat.Number) (*mat.Dense, error) {
	if !spatialmath.IsPure(lineDirection) {
		return nil, utils.NewInvalidArgumentError("line direction must be a pure quaternion")
	}
	jac, ok, err := jacobianView("pose jacobian", poseJacobian, 8)
	if err != nil || !ok {
		return emptyOr(err)
	}

	r := spatialmath.Rotation(pose)
	t := spatialmath.Translation(pose)
	l := quat.Mul(quat.Mul(r, lineDirection), quat.Conj(r))
	jacT := translationJacobian(jac, pose)
	jacL := rotatedJacobian(primaryRows(jac), r, lineDirection)

	// d(t × l) = -l × dt + t × dl
	var jacM, fromRot mat.Dense
	jacM.Mul(spatialmath.CrossMatrix4(l).T(), jacT)
	fromRot.Mul(spatialmath.CrossMatrix4(t), jacL)
	jacM.Add(&jacM, &fromRot)

	return stack(jacL, &jacM), nil
}

// PlaneJacobian returns the 8 x n Jacobian of the plane n + εd whose normal is planeNormal expressed in
// the frame of pose, and which passes through the origin of that frame. The first four rows are the
// normal, the fifth the distance d = t·n and the last three are zero.
func PlaneJacobian(poseJacobian mat.Matrix, pose dualquat.Number, planeNormal quat.Number) (*mat.Dense, error) {
	if !spatialmath.IsPure(planeNormal) {
		return nil, utils.NewInvalidArgumentError("plane normal must be a pure quaternion")
	}
	jac, ok, err := jacobianView("pose jacobian", poseJacobian, 8)
	if err != nil || !ok {
		return emptyOr(err)
	}

	r := spatialmath.Rotation(pose)
	t := spatialmath.Translation(pose)
	n := quat.Mul(quat.Mul(r, planeNormal), quat.Conj(r))
	jacT := translationJacobian(jac, pose)
	jacN := rotatedJacobian(primaryRows(jac), r, planeNormal)

	// d(t·n) = n·dt + t·dn
	var jacD, fromNormal mat.Dense
	jacD.Mul(rowVector(n), jacT)
	fromNormal.Mul(rowVector(t), jacN)
	jacD.Add(&jacD, &fromNormal)

	_, cols := jac.Dims()
	padded := mat.NewDense(4, cols, nil)
	padded.SetRow(0, jacD.RawRowView(0))
	return stack(jacN, padded), nil
}
