package taskspace

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/dualquat"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/dqkin/spatialmath"
	"go.viam.com/dqkin/utils"
)

// Each distance comes as a pair. The Jacobian maps joint velocities to the rate of change of the
// distance caused by the robot. The residual is the rate of change caused by the motion of the workspace
// primitive while the robot holds still. Squared distances are used everywhere except for planes, where
// the distance is signed.

type primitiveArg struct {
	name  string
	value dualquat.Number
}

func checkPoints(args ...primitiveArg) error {
	for _, arg := range args {
		if !spatialmath.IsPoint(arg.value) {
			return utils.NewImpurePrimitiveError(arg.name, "point")
		}
	}
	return nil
}

func checkLines(args ...primitiveArg) error {
	for _, arg := range args {
		if !spatialmath.IsLine(arg.value) {
			return utils.NewImpurePrimitiveError(arg.name, "line")
		}
	}
	return nil
}

func checkPlanes(args ...primitiveArg) error {
	for _, arg := range args {
		if !spatialmath.IsPlane(arg.value) {
			return utils.NewImpurePrimitiveError(arg.name, "plane")
		}
	}
	return nil
}

// vecTimes returns vᵀ·m as a 1 x n matrix.
func vecTimes(v quat.Number, m mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Mul(rowVector(v), m)
	return &out
}

// dot is the inner product of pure quaternions, the real part of -½(ab + ba).
func dot(a, b quat.Number) float64 {
	return spatialmath.QuatDot(a, b).Real
}

// cross is the cross product of pure quaternions.
func cross(a, b quat.Number) quat.Number {
	return spatialmath.QuatCross(a, b)
}

// DistanceJacobian returns the 1 x n Jacobian of the squared distance between the origin of pose and the
// base frame origin: 2·vec4(t)ᵀ·J_t, where t is the translation of pose.
func DistanceJacobian(poseJacobian mat.Matrix, pose dualquat.Number) (*mat.Dense, error) {
	jac, ok, err := jacobianView("pose jacobian", poseJacobian, 8)
	if err != nil || !ok {
		return emptyOr(err)
	}
	dist := vecTimes(spatialmath.Translation(pose), translationJacobian(jac, pose))
	dist.Scale(2, dist)
	return dist, nil
}

// PointToPointDistanceJacobian returns the 1 x n Jacobian of the squared distance between the robot
// point t and the workspace point p: 2·vec4(t - p)ᵀ·J_t.
func PointToPointDistanceJacobian(translationJacobian mat.Matrix, robotPoint, workspacePoint dualquat.Number) (*mat.Dense, error) {
	if err := checkPoints(
		primitiveArg{"robot point", robotPoint},
		primitiveArg{"workspace point", workspacePoint},
	); err != nil {
		return nil, err
	}
	jacT, ok, err := jacobianView("translation jacobian", translationJacobian, 4)
	if err != nil || !ok {
		return emptyOr(err)
	}
	jac := vecTimes(quat.Sub(robotPoint.Real, workspacePoint.Real), jacT)
	jac.Scale(2, jac)
	return jac, nil
}

// PointToPointResidual returns the rate of change of the squared distance caused by the workspace point
// moving with velocity ṗ: 2·(t - p)·(-ṗ).
func PointToPointResidual(robotPoint, workspacePoint, workspacePointDerivative dualquat.Number) (float64, error) {
	if err := checkPoints(
		primitiveArg{"robot point", robotPoint},
		primitiveArg{"workspace point", workspacePoint},
		primitiveArg{"workspace point derivative", workspacePointDerivative},
	); err != nil {
		return 0, err
	}
	return 2 * dot(quat.Sub(robotPoint.Real, workspacePoint.Real), quat.Scale(-1, workspacePointDerivative.Real)), nil
}

// PointToLineDistanceJacobian returns the 1 x n Jacobian of the squared distance ‖t × l - m‖² between the
// robot point t and the workspace line l + εm: 2·vec4(t × l - m)ᵀ·crossmatrix4(l)ᵀ·J_t.
func PointToLineDistanceJacobian(translationJacobian mat.Matrix, robotPoint, workspaceLine dualquat.Number) (*mat.Dense, error) {
	if err := checkPoints(primitiveArg{"robot point", robotPoint}); err != nil {
		return nil, err
	}
	if err := checkLines(primitiveArg{"workspace line", workspaceLine}); err != nil {
		return nil, err
	}
	jacT, ok, err := jacobianView("translation jacobian", translationJacobian, 4)
	if err != nil || !ok {
		return emptyOr(err)
	}
	l, m := workspaceLine.Real, workspaceLine.Dual
	var jacCross mat.Dense
	jacCross.Mul(spatialmath.CrossMatrix4(l).T(), jacT)
	jac := vecTimes(quat.Sub(cross(robotPoint.Real, l), m), &jacCross)
	jac.Scale(2, jac)
	return jac, nil
}

// PointToLineResidual returns 2·(t × l̇ - ṁ)·(t × l - m).
func PointToLineResidual(robotPoint, workspaceLine, workspaceLineDerivative dualquat.Number) (float64, error) {
	if err := checkPoints(primitiveArg{"robot point", robotPoint}); err != nil {
		return 0, err
	}
	if err := checkLines(
		primitiveArg{"workspace line", workspaceLine},
		primitiveArg{"workspace line derivative", workspaceLineDerivative},
	); err != nil {
		return 0, err
	}
	t := robotPoint.Real
	moment := quat.Sub(cross(t, workspaceLine.Real), workspaceLine.Dual)
	momentDot := quat.Sub(cross(t, workspaceLineDerivative.Real), workspaceLineDerivative.Dual)
	return 2 * dot(momentDot, moment), nil
}

// PointToPlaneDistanceJacobian returns the 1 x n Jacobian of the signed distance t·n - d between the
// robot point t and the workspace plane n + εd: vec4(n)ᵀ·J_t.
func PointToPlaneDistanceJacobian(translationJacobian mat.Matrix, robotPoint, workspacePlane dualquat.Number) (*mat.Dense, error) {
	if err := checkPoints(primitiveArg{"robot point", robotPoint}); err != nil {
		return nil, err
	}
	if err := checkPlanes(primitiveArg{"workspace plane", workspacePlane}); err != nil {
		return nil, err
	}
	jacT, ok, err := jacobianView("translation jacobian", translationJacobian, 4)
	if err != nil || !ok {
		return emptyOr(err)
	}
	return vecTimes(workspacePlane.Real, jacT), nil
}

// PointToPlaneResidual returns t·ṅ - ḋ.
func PointToPlaneResidual(robotPoint, workspacePlaneDerivative dualquat.Number) (float64, error) {
	if err := checkPoints(primitiveArg{"robot point", robotPoint}); err != nil {
		return 0, err
	}
	if err := checkPlanes(primitiveArg{"workspace plane derivative", workspacePlaneDerivative}); err != nil {
		return 0, err
	}
	return dot(robotPoint.Real, workspacePlaneDerivative.Real) - workspacePlaneDerivative.Dual.Real, nil
}

// LineToPointDistanceJacobian returns the 1 x n Jacobian of the squared distance ‖p × l - m‖² between the
// robot line l + εm and the workspace point p: 2·vec4(p × l - m)ᵀ·(crossmatrix4(p)·J_l - J_m).
func LineToPointDistanceJacobian(lineJacobian mat.Matrix, robotLine, workspacePoint dualquat.Number) (*mat.Dense, error) {
	if err := checkLines(primitiveArg{"robot line", robotLine}); err != nil {
		return nil, err
	}
	if err := checkPoints(primitiveArg{"workspace point", workspacePoint}); err != nil {
		return nil, err
	}
	jacLine, ok, err := jacobianView("line jacobian", lineJacobian, 8)
	if err != nil || !ok {
		return emptyOr(err)
	}
	p := workspacePoint.Real
	var jacMoment mat.Dense
	jacMoment.Mul(spatialmath.CrossMatrix4(p), primaryRows(jacLine))
	jacMoment.Sub(&jacMoment, dualRows(jacLine))
	jac := vecTimes(quat.Sub(cross(p, robotLine.Real), robotLine.Dual), &jacMoment)
	jac.Scale(2, jac)
	return jac, nil
}

// LineToPointResidual returns 2·(ṗ × l)·(p × l - m).
func LineToPointResidual(robotLine, workspacePoint, workspacePointDerivative dualquat.Number) (float64, error) {
	if err := checkLines(primitiveArg{"robot line", robotLine}); err != nil {
		return 0, err
	}
	if err := checkPoints(
		primitiveArg{"workspace point", workspacePoint},
		primitiveArg{"workspace point derivative", workspacePointDerivative},
	); err != nil {
		return 0, err
	}
	l := robotLine.Real
	moment := quat.Sub(cross(workspacePoint.Real, l), robotLine.Dual)
	return 2 * dot(cross(workspacePointDerivative.Real, l), moment), nil
}

// lineToLineWeights returns the quotient rule weights of ‖D(l·l_w)‖² / ‖P(l × l_w)‖², the squared
// distance between two lines that are not parallel.
func lineToLineWeights(dotLines, crossLines dualquat.Number) (float64, float64) {
	crossNorm2 := spatialmath.QuatNorm2(crossLines.Real)
	a := 1 / crossNorm2
	b := -spatialmath.QuatNorm2(dotLines.Dual) / (crossNorm2 * crossNorm2)
	return a, b
}

// LineToLineDistanceJacobian returns the 1 x n Jacobian of the squared distance between the robot line l
// and the workspace line l_w, ‖D(l·l_w)‖² / ‖P(l × l_w)‖². The lines must not be parallel.
func LineToLineDistanceJacobian(lineJacobian mat.Matrix, robotLine, workspaceLine dualquat.Number) (*mat.Dense, error) {
	if err := checkLines(
		primitiveArg{"robot line", robotLine},
		primitiveArg{"workspace line", workspaceLine},
	); err != nil {
		return nil, err
	}
	jacLine, ok, err := jacobianView("line jacobian", lineJacobian, 8)
	if err != nil || !ok {
		return emptyOr(err)
	}

	hPlus, hMinus := spatialmath.Hplus8(workspaceLine), spatialmath.Hminus8(workspaceLine)

	// vec8(l·l_w) = -½(H−8(l_w) + H+8(l_w))·vec8(l)
	var dotOp, jacDot mat.Dense
	dotOp.Add(hMinus, hPlus)
	dotOp.Scale(-0.5, &dotOp)
	jacDot.Mul(&dotOp, jacLine)

	// vec8(l × l_w) = ½(H−8(l_w) - H+8(l_w))·vec8(l)
	var crossOp, jacCross mat.Dense
	crossOp.Sub(hMinus, hPlus)
	crossOp.Scale(0.5, &crossOp)
	jacCross.Mul(&crossOp, jacLine)

	dotLines := spatialmath.Dot(robotLine, workspaceLine)
	crossLines := spatialmath.Cross(robotLine, workspaceLine)

	jacDotNorm := vecTimes(dotLines.Dual, dualRows(&jacDot))
	jacDotNorm.Scale(2, jacDotNorm)
	jacCrossNorm := vecTimes(crossLines.Real, primaryRows(&jacCross))
	jacCrossNorm.Scale(2, jacCrossNorm)

	a, b := lineToLineWeights(dotLines, crossLines)
	jacDotNorm.Scale(a, jacDotNorm)
	jacCrossNorm.Scale(b, jacCrossNorm)
	jacDotNorm.Add(jacDotNorm, jacCrossNorm)
	return jacDotNorm, nil
}

// LineToLineResidual returns the rate of change of the squared distance between the robot line and the
// workspace line moving with derivative l̇_w. The lines must not be parallel.
func LineToLineResidual(robotLine, workspaceLine, workspaceLineDerivative dualquat.Number) (float64, error) {
	if err := checkLines(
		primitiveArg{"robot line", robotLine},
		primitiveArg{"workspace line", workspaceLine},
		primitiveArg{"workspace line derivative", workspaceLineDerivative},
	); err != nil {
		return 0, err
	}
	dotLines := spatialmath.Dot(robotLine, workspaceLine)
	crossLines := spatialmath.Cross(robotLine, workspaceLine)
	dotRate := spatialmath.Dot(robotLine, workspaceLineDerivative)
	crossRate := spatialmath.Cross(robotLine, workspaceLineDerivative)

	dotTerm := 2 * floats.Dot(spatialmath.Vec4(dotLines.Dual), spatialmath.Vec4(dotRate.Dual))
	crossTerm := 2 * floats.Dot(spatialmath.Vec4(crossLines.Real), spatialmath.Vec4(crossRate.Real))

	a, b := lineToLineWeights(dotLines, crossLines)
	return a*dotTerm + b*crossTerm, nil
}

// PlaneToPointDistanceJacobian returns the 1 x n Jacobian of the signed distance p·n - d between the
// robot plane n + εd and the workspace point p: vec4(p)ᵀ·J_n - J_d.
func PlaneToPointDistanceJacobian(planeJacobian mat.Matrix, robotPlane, workspacePoint dualquat.Number) (*mat.Dense, error) {
	if err := checkPlanes(primitiveArg{"robot plane", robotPlane}); err != nil {
		return nil, err
	}
	if err := checkPoints(primitiveArg{"workspace point", workspacePoint}); err != nil {
		return nil, err
	}
	jacPlane, ok, err := jacobianView("plane jacobian", planeJacobian, 8)
	if err != nil || !ok {
		return emptyOr(err)
	}
	_, cols := jacPlane.Dims()
	jac := vecTimes(workspacePoint.Real, primaryRows(jacPlane))
	jac.Sub(jac, jacPlane.Slice(4, 5, 0, cols))
	return jac, nil
}

// PlaneToPointResidual returns ṗ·n.
func PlaneToPointResidual(robotPlane, workspacePointDerivative dualquat.Number) (float64, error) {
	if err := checkPlanes(primitiveArg{"robot plane", robotPlane}); err != nil {
		return 0, err
	}
	if err := checkPoints(primitiveArg{"workspace point derivative", workspacePointDerivative}); err != nil {
		return 0, err
	}
	return dot(workspacePointDerivative.Real, robotPlane.Real), nil
}
