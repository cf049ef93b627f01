package analysis

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/wdf-nudtaa/flow5-sub004/geometry3D"
	"github.com/wdf-nudtaa/flow5-sub004/utils"
)

// BuildUnitRHS makes the six right hand sides of the unit translations along
// x, y, z and of the unit rotations about the reference point.
func (pa *PanelAnalysis) BuildUnitRHS(ctx context.Context, ref r3.Vec) (err error) {
	stop := pa.watch(ctx)
	defer stop()
	pa.unitSolved = false
	pa.unitRef = ref

	var (
		N    = pa.NPanels()
		unit = [3]r3.Vec{geometry3D.X, geometry3D.Y, geometry3D.Z}
	)
	err = utils.ParallelFor(pa.pm, pa.MultiThread, func(np, iMin, iMax int) error {
		for i := iMin; i < iMax; i++ {
			if pa.Cancelled() {
				return utils.ErrCancelled
			}
			var (
				pi       = pa.panel(i)
				C        = pa.colloc.Point(pi)
				velocity = pa.colloc.NormalVelocity(pi)
				rhs      [6]float64
			)
			if velocity {
				lever := r3.Sub(C, ref)
				for d := 0; d < 3; d++ {
					rhs[d] = -r3.Dot(unit[d], pi.Normal)
					rhs[d+3] = -r3.Dot(r3.Cross(lever, unit[d]), pi.Normal)
				}
			}
			for k := 0; k < N; k++ {
				pk := pa.panel(k)
				if pk.IsMid() {
					// no source on thin surfaces
					continue
				}
				var (
					lever = r3.Sub(pk.CoG(), ref)
					infl  float64
				)
				if velocity {
					infl = r3.Dot(pa.sourceVelocity(C, i == k, pk), pi.Normal)
				} else {
					infl = pa.sourcePotential(C, pk)
				}
				for d := 0; d < 3; d++ {
					rhs[d] -= infl * sourceStrength(pk.Normal, unit[d])
					rhs[d+3] -= infl * sourceStrength(pk.Normal, r3.Cross(lever, unit[d]))
				}
			}
			pa.URHS[i], pa.VRHS[i], pa.WRHS[i] = rhs[0], rhs[1], rhs[2]
			pa.PRHS[i], pa.QRHS[i], pa.RRHS[i] = rhs[3], rhs[4], rhs[5]
		}
		return nil
	})
	return
}

// BuildFieldRHS makes the right hand side of an arbitrary velocity field
// given on each panel, optionally with overridden panel normals. The result
// is also kept in CRHS.
func (pa *PanelAnalysis) BuildFieldRHS(ctx context.Context, vField, normals []r3.Vec) (rhs []float64, err error) {
	N := pa.NPanels()
	if len(vField) != N || (normals != nil && len(normals) != N) {
		err = fmt.Errorf("field size %d and normals size %d do not match %d panels", len(vField), len(normals), N)
		return
	}
	stop := pa.watch(ctx)
	defer stop()

	normal := func(k int) r3.Vec {
		if normals != nil {
			return normals[k]
		}
		return pa.panel(k).Normal
	}
	err = utils.ParallelFor(pa.pm, pa.MultiThread, func(np, iMin, iMax int) error {
		for i := iMin; i < iMax; i++ {
			if pa.Cancelled() {
				return utils.ErrCancelled
			}
			var (
				pi       = pa.panel(i)
				C        = pa.colloc.Point(pi)
				n        = normal(i)
				velocity = pa.colloc.NormalVelocity(pi)
				r        float64
			)
			if velocity {
				r = -r3.Dot(vField[i], n)
			}
			for k := 0; k < N; k++ {
				pk := pa.panel(k)
				if pk.IsMid() {
					continue
				}
				sigma := sourceStrength(normal(k), vField[k])
				if velocity {
					r -= r3.Dot(pa.sourceVelocity(C, i == k, pk), n) * sigma
				} else {
					r -= pa.sourcePotential(C, pk) * sigma
				}
			}
			pa.CRHS[i] = r
		}
		return nil
	})
	rhs = pa.CRHS
	return
}

// SourceStrengths sets Sigma for the velocity field on each panel, zero on
// thin surfaces
func (pa *PanelAnalysis) SourceStrengths(vField []r3.Vec) {
	for i := range pa.Mesh.Panels {
		p := pa.panel(i)
		if p.IsMid() {
			pa.Sigma[i] = 0
			continue
		}
		pa.Sigma[i] = sourceStrength(p.Normal, vField[i])
	}
}

// UniformField is the velocity vInf repeated on every panel
func (pa *PanelAnalysis) UniformField(vInf r3.Vec) (vField []r3.Vec) {
	vField = make([]r3.Vec, pa.NPanels())
	for i := range vField {
		vField[i] = vInf
	}
	return
}

// windCoefs are the weights of the unit x, y, z solutions for a freestream
// of unit speed, the sideslip sign follows the stability axes convention
func windCoefs(alpha, beta float64) (cu, cv, cw float64) {
	var (
		ca, sa = math.Cos(geometry3D.Radians(alpha)), math.Sin(geometry3D.Radians(alpha))
		cb, sb = math.Cos(-geometry3D.Radians(beta)), math.Sin(-geometry3D.Radians(beta))
	)
	return ca * cb, sb, sa * cb
}

// CombineUnitStrengths sets Mu from the solved unit strengths for the
// freestream direction (alpha, beta), degrees, at unit speed
func (pa *PanelAnalysis) CombineUnitStrengths(alpha, beta float64) (err error) {
	if !pa.unitSolved {
		return fmt.Errorf("unit strengths are not solved")
	}
	cu, cv, cw := windCoefs(alpha, beta)
	floats.ScaleTo(pa.Mu, cu, pa.URHS)
	floats.AddScaled(pa.Mu, cv, pa.VRHS)
	floats.AddScaled(pa.Mu, cw, pa.WRHS)
	return
}

// ScaleToSpeed scales the unit speed strengths
func (pa *PanelAnalysis) ScaleToSpeed(ratio float64) {
	floats.Scale(ratio, pa.Mu)
	floats.Scale(ratio, pa.Sigma)
}
