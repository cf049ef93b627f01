package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/wdf-nudtaa/flow5-sub004/geometry3D"
	"github.com/wdf-nudtaa/flow5-sub004/utils"
)

// Solver solves a.x = b for all the columns of b
type Solver interface {
	Solve(a mat.Matrix, b *mat.Dense) (x *mat.Dense, err error)
}

// LUSolver factorizes the influence matrix with partial pivoting
type LUSolver struct{}

func (LUSolver) Solve(a mat.Matrix, b *mat.Dense) (x *mat.Dense, err error) {
	var (
		lu   mat.LU
		r, c = b.Dims()
		cond mat.Condition
	)
	lu.Factorize(a)
	x = mat.NewDense(r, c, nil)
	if err = lu.SolveTo(x, false, b); err != nil {
		if errors.As(err, &cond) && !math.IsInf(float64(cond), 1) {
			log.WithField("condition", float64(cond)).Warn("ill conditioned influence matrix")
			err = nil
			return
		}
		err = fmt.Errorf("influence matrix solve: %w", err)
		x = nil
	}
	return
}

// SolveUnitCases solves the six unit right hand sides at once, the unit
// doublet strengths replace them.
func (pa *PanelAnalysis) SolveUnitCases(ctx context.Context, solver Solver) (err error) {
	if pa.Failed() {
		return fmt.Errorf("influence matrix has numerical errors")
	}
	if ctx != nil && ctx.Err() != nil {
		pa.Cancel()
	}
	if pa.Cancelled() {
		return utils.ErrCancelled
	}
	var (
		N   = pa.NPanels()
		rhs = [6][]float64{pa.URHS, pa.VRHS, pa.WRHS, pa.PRHS, pa.QRHS, pa.RRHS}
		B   = mat.NewDense(N, len(rhs), nil)
		x   *mat.Dense
	)
	for j, col := range rhs {
		B.SetCol(j, col)
	}
	if x, err = solver.Solve(pa.Matrix(), B); err != nil {
		return
	}
	for j, col := range rhs {
		mat.Col(col, j, x)
	}
	pa.unitSolved = true
	if !pa.IsVLM() {
		pa.LocalVelocities(geometry3D.X)
	}
	if pa.Cancelled() {
		return utils.ErrCancelled
	}
	return
}

// OperatingPoint holds the results of one angle of attack at unit speed
type OperatingPoint struct {
	Alpha           float64
	CL, CY, CDi, Cm float64
	Force, Moment   r3.Vec
	Span            SpanDistribution
}

// Run builds and solves the analysis, then computes the results at each
// angle of attack, degrees, with moments about cog.
func (pa *PanelAnalysis) Run(ctx context.Context, solver Solver, alphas []float64, cog r3.Vec) (ops []OperatingPoint, err error) {
	steps := []struct {
		name string
		fn   func() error
	}{
		{"wake", pa.BuildWake},
		{"influence matrix", func() error { return pa.BuildMatrix(ctx) }},
		{"wake contribution", func() error { return pa.AddWakeContribution(ctx) }},
		{"unit right hand sides", func() error { return pa.BuildUnitRHS(ctx, cog) }},
		{"solve", func() error { return pa.SolveUnitCases(ctx, solver) }},
	}
	for _, s := range steps {
		if err = s.fn(); err != nil {
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
		pa.logger.Debugf("%s done, %s", s.name, utils.GetMemUsage())
	}
	qDyn := 0.5 * pa.Density
	for _, alpha := range alphas {
		var (
			op      = OperatingPoint{Alpha: alpha}
			windDir = geometry3D.WindDirection(alpha, 0)
			vField  = pa.UniformField(windDir)
			drag    r3.Vec
		)
		pa.SourceStrengths(vField)
		if err = pa.CombineUnitStrengths(alpha, 0); err != nil {
			return
		}
		op.Force, op.Moment = pa.Forces(pa.Mu, pa.Sigma, alpha, 0, cog, vField)
		if drag, op.Span, err = pa.TrefftzDrag(1., alpha, 0); err != nil {
			return
		}
		if pa.VortonWake && !pa.IsVLM() {
			pa.ClearVortons()
			for r := 0; r < 3 && err == nil; r++ {
				err = pa.MakeVortons(pa.VortonStep)
			}
			if err == nil {
				drag, err = pa.VortonDrag(alpha, 0, 1., &op.Span)
			}
			if err != nil {
				return
			}
		}
		if pa.Cancelled() {
			return ops, utils.ErrCancelled
		}
		op.CL = r3.Dot(op.Force, geometry3D.WindNormal(alpha, 0)) / qDyn / pa.RefArea
		op.CY = r3.Dot(op.Force, geometry3D.WindSide(alpha, 0)) / qDyn / pa.RefArea
		op.CDi = r3.Dot(drag, windDir) / pa.RefArea
		op.Cm = op.Moment.Y / qDyn / pa.RefArea / pa.RefChord
		pa.logger.WithFields(log.Fields{"alpha": alpha, "CL": op.CL, "CDi": op.CDi, "Cm": op.Cm}).Info("operating point")
		ops = append(ops, op)
	}
	return
}
