package analysis

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/wdf-nudtaa/flow5-sub004/geometry3D"
	"github.com/wdf-nudtaa/flow5-sub004/panels"
)

var rectWing = panels.WingSpec{Span: 4, Chord: 1, NChord: 4, NSpan: 8}

// solvedAt returns the analysis of mesh solved at alpha, unit speed
func solvedAt(t *testing.T, cfg Config, m *panels.Mesh, alpha float64) *PanelAnalysis {
	pa := newAnalysis(t, cfg, m)
	solveUnit(t, pa, r3.Vec{})
	pa.SourceStrengths(pa.UniformField(geometry3D.WindDirection(alpha, 0)))
	require.NoError(t, pa.CombineUnitStrengths(alpha, 0))
	return pa
}

func liftCoef(pa *PanelAnalysis, alpha float64) (cl float64) {
	var (
		windDir  = geometry3D.WindDirection(alpha, 0)
		force, _ = pa.Forces(pa.Mu, pa.Sigma, alpha, 0, r3.Vec{}, pa.UniformField(windDir))
	)
	return r3.Dot(force, geometry3D.WindNormal(alpha, 0)) / (0.5 * pa.Density) / pa.RefArea
}

func TestForces_VLM1(t *testing.T) {
	var (
		cfg = testConfig(VLM1, Neumann)
		S   = 4.
		AR  = 4.
	)
	cfg.RefArea = S
	pa := solvedAt(t, cfg, wingMesh(t, rectWing), 5)
	{ // Kutta-Joukowski lift in the freestream
		F, sd := pa.InducedForce(1, 5, 0)
		cl := r3.Dot(F, geometry3D.WindNormal(5, 0)) / S
		assert.InDelta(t, 0.3404, cl, 0.005)
		require.Len(t, sd.Strip, 8)
		var area float64
		for m := range sd.Strip {
			area += sd.StripArea[m]
			assert.Greater(t, sd.Gamma[m], 0.)
			assert.Greater(t, sd.Cl[m], 0.)
		}
		assert.InDelta(t, S, area, 1.e-12)
		// symmetric loading
		for m := 0; m < 4; m++ {
			assert.InDelta(t, sd.Gamma[m], sd.Gamma[7-m], 1.e-9)
		}
		// lift is largest at the root
		assert.Greater(t, sd.Cl[3], sd.Cl[0])
	}
	{ // Trefftz and near field lift of the thin wing agree within 2%
		clFar := liftCoef(pa, 5)
		assert.InDelta(t, 0.3397, clFar, 0.005)
		F, _ := pa.InducedForce(1, 5, 0)
		cl := r3.Dot(F, geometry3D.WindNormal(5, 0)) / S
		assert.InDelta(t, 0., (clFar-cl)/cl, 0.01)
	}
	{ // Induced drag in the Trefftz plane
		drag, sd, err := pa.TrefftzDrag(1, 5, 0)
		require.NoError(t, err)
		var (
			cdi = r3.Dot(drag, geometry3D.WindDirection(5, 0)) / S
			cl  = liftCoef(pa, 5)
		)
		assert.Greater(t, cdi, 0.)
		assert.InDelta(t, 0.00821, cdi, 0.0003)
		ratio := cdi / (cl * cl / math.Pi / AR)
		assert.True(t, ratio > 0.7 && ratio < 1.3, "span efficiency ratio %v", ratio)
		for m := range sd.Strip {
			// downwash behind a lifting wing
			assert.Less(t, sd.Ai[m], 0.)
		}
	}
	{ // Pressure difference of the bound vortices carries the induced lift
		var (
			vInf = geometry3D.WindDirection(5, 0)
			cp   = make([]float64, pa.NPanels())
		)
		for i := range cp {
			cp[i] = pa.VortexCp(i, pa.Mu, vInf)
		}
		F, _ := pa.InducedForce(1, 5, 0)
		assert.InDelta(t, F.Z, pa.BodyForce(cp).Z, 1.e-12)
		lift, _ := pa.NearFieldForce(cp, 5)
		assert.Greater(t, lift, 0.)
	}
}

func TestForces_ZeroIncidence(t *testing.T) {
	{ // Flat plate
		var (
			cfg = testConfig(VLM1, Neumann)
			pa  = solvedAt(t, cfg, wingMesh(t, rectWing), 0)
		)
		for i := range pa.Mu {
			assert.Equal(t, 0., pa.Mu[i])
		}
		force, moment := pa.Forces(pa.Mu, pa.Sigma, 0, 0, r3.Vec{X: 0.25}, pa.UniformField(geometry3D.X))
		assert.InDelta(t, 0., r3.Norm(force), 1.e-12)
		assert.InDelta(t, 0., r3.Norm(moment), 1.e-12)
	}
	{ // Symmetric section
		var (
			cfg = testConfig(PanelMethod, Dirichlet)
			m   = wingMesh(t, panels.WingSpec{Span: 4, Chord: 1, NChord: 4, NSpan: 4, Thickness: 0.12})
			pa  = solvedAt(t, cfg, m, 0)
		)
		force, moment := pa.Forces(pa.Mu, pa.Sigma, 0, 0, r3.Vec{X: 0.25}, pa.UniformField(geometry3D.X))
		assert.InDelta(t, 0., force.Z, 1.e-6)
		assert.InDelta(t, 0., moment.Y, 1.e-6)
		for i := range pa.Mu {
			assert.False(t, math.IsNaN(pa.Mu[i]))
		}
		assert.InDelta(t, 0., liftCoef(pa, 0), 1.e-6)
	}
}

func TestForces_PanelMethod(t *testing.T) {
	var (
		cfg = testConfig(PanelMethod, Dirichlet)
		m   = wingMesh(t, rectWing)
	)
	cfg.RefArea = 4
	pa := solvedAt(t, cfg, m, 5)
	cl := liftCoef(pa, 5)
	assert.True(t, cl > 0.2 && cl < 0.5, "thin surface lift coefficient %v", cl)

	{ // Results do not depend on the panel numbering
		perm := make([]int, m.NPanels())
		for i := range perm {
			perm[i] = len(perm) - 1 - i
		}
		mp, err := m.Permute(perm)
		require.NoError(t, err)
		pp := solvedAt(t, cfg, mp, 5)
		assert.InDelta(t, cl, liftCoef(pp, 5), 1.e-9)
		for i := range perm {
			assert.InDelta(t, pa.Mu[i], pp.Mu[perm[i]], 1.e-9)
		}
		_, sd, err := pa.TrefftzDrag(1, 5, 0)
		require.NoError(t, err)
		_, sdp, err := pp.TrefftzDrag(1, 5, 0)
		require.NoError(t, err)
		var cdi, cdip float64
		for m := range sd.Strip {
			cdi += sd.ICd[m] * sd.StripArea[m]
			cdip += sdp.ICd[m] * sdp.StripArea[m]
		}
		assert.Greater(t, cdi, 0.)
		assert.InDelta(t, cdi, cdip, 1.e-9)
	}
	{ // Local velocities combine linearly
		vl := pa.CombineLocalVelocities(5, 0)
		for _, i := range []int{0, 5, 17} {
			_, v := pa.DoubletDerivative(i, pa.Mu, geometry3D.WindDirection(5, 0))
			assert.InDelta(t, v.X, vl[i].X, 1.e-9)
			assert.InDelta(t, v.Y, vl[i].Y, 1.e-9)
		}
		vInf := pa.UniformField(geometry3D.WindDirection(5, 0))
		cp := pa.OnBodyCp(vInf, vl)
		lift, _ := pa.NearFieldForce(cp, 5)
		assert.Greater(t, lift, 0.)
	}
	{ // The on-body pressure lift approaches the far field lift as the mesh is refined
		gap := func(ws panels.WingSpec) float64 {
			var (
				p       = solvedAt(t, cfg, wingMesh(t, ws), 5)
				vInf    = p.UniformField(geometry3D.WindDirection(5, 0))
				cp      = p.OnBodyCp(vInf, p.CombineLocalVelocities(5, 0))
				lift, _ = p.NearFieldForce(cp, 5)
			)
			return liftCoef(p, 5) - lift/p.RefArea
		}
		var (
			coarse = gap(rectWing)
			fine   = gap(panels.WingSpec{Span: 4, Chord: 1, NChord: 8, NSpan: 16})
		)
		assert.Greater(t, coarse, 0.)
		assert.Less(t, math.Abs(fine), 0.75*coarse)
	}
}

func TestForces_VLM2(t *testing.T) {
	var (
		m    = wingMesh(t, rectWing)
		cfg1 = testConfig(VLM1, Neumann)
		cfg2 = testConfig(VLM2, Neumann)
	)
	cfg1.RefArea, cfg2.RefArea = 4, 4
	var (
		cl1 = liftCoef(solvedAt(t, cfg1, m, 5), 5)
		cl2 = liftCoef(solvedAt(t, cfg2, m, 5), 5)
	)
	assert.InDelta(t, 0., (cl2-cl1)/cl1, 0.1)
}

func TestStripArea(t *testing.T) {
	{ // Thick strips count the bottom side only
		var (
			m  = wingMesh(t, panels.WingSpec{Span: 2, Chord: 1, NChord: 3, NSpan: 2, Thickness: 0.1})
			pa = newAnalysis(t, testConfig(PanelMethod, Dirichlet), m)
			sd = pa.NewSpanDistribution()
		)
		assert.Equal(t, []int{0, 6}, sd.Strip)
		var want float64
		for i := 0; i < 3; i++ {
			want += pa.panel(i).Area
		}
		assert.InDelta(t, want, sd.StripArea[0], 1.e-15)
	}
}

func TestVelocityVector(t *testing.T) {
	var (
		cfg = testConfig(PanelMethod, Dirichlet)
		m   = wingMesh(t, panels.WingSpec{Span: 4, Chord: 1, NChord: 4, NSpan: 4, Thickness: 0.1})
	)
	cfg.ProcLimit = 3
	cfg.MultiThread = true
	pa := solvedAt(t, cfg, m, 5)
	for _, C := range []r3.Vec{{X: 0.5, Y: 0.1, Z: 0.3}, {X: 3, Z: -0.2}, {X: -1, Y: 2.5}} {
		var (
			v1 = pa.VelocityVector(C, pa.Mu, pa.Sigma, pa.CoreRadius, false, false)
			vn = pa.VelocityVector(C, pa.Mu, pa.Sigma, pa.CoreRadius, false, true)
		)
		assert.Equal(t, v1, vn)
	}
	{ // Far upstream the perturbation vanishes
		C := r3.Vec{X: -1000}
		assert.Less(t, r3.Norm(pa.VelocityVector(C, pa.Mu, pa.Sigma, pa.CoreRadius, false, true)), 1.e-6)
		assert.Less(t, math.Abs(pa.Potential(C, pa.Mu, pa.Sigma)), 1.e-4)
	}
	{ // Cancelled analyses return a null velocity
		pa.Cancel()
		assert.Equal(t, r3.Vec{}, pa.VelocityVector(r3.Vec{X: 0.5}, pa.Mu, pa.Sigma, pa.CoreRadius, false, true))
		pa.ResetCancel()
	}
}

func TestRun(t *testing.T) {
	var (
		ctx = context.Background()
		cfg = testConfig(VLM1, Neumann)
	)
	cfg.RefArea = 4
	pa := newAnalysis(t, cfg, wingMesh(t, rectWing))
	ops, err := pa.Run(ctx, LUSolver{}, []float64{0, 5}, r3.Vec{X: 0.25})
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.InDelta(t, 0., ops[0].CL, 1.e-12)
	assert.InDelta(t, 0.3397, ops[1].CL, 0.005)
	assert.InDelta(t, 0.00821, ops[1].CDi, 0.0003)
	assert.InDelta(t, 0., ops[0].Cm, 1.e-12)
	// no side force on a symmetric wing without sideslip
	assert.InDelta(t, 0., ops[1].CY, 1.e-9)
	assert.Len(t, ops[1].Span.Strip, 8)

	{ // Panel analysis with a vorton wake
		cfg := testConfig(PanelMethod, Dirichlet)
		cfg.RefArea, cfg.VortonWake = 4, true
		pv := newAnalysis(t, cfg, wingMesh(t, rectWing))
		ops, err := pv.Run(ctx, LUSolver{}, []float64{4}, r3.Vec{X: 0.25})
		require.NoError(t, err)
		assert.Equal(t, 3, pv.NVortonRows())
		assert.Greater(t, ops[0].CL, 0.)
		assert.False(t, math.IsNaN(ops[0].CDi))
	}
	{ // Cancelled before the start
		pc := newAnalysis(t, cfg, wingMesh(t, rectWing))
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := pc.Run(cctx, LUSolver{}, []float64{5}, r3.Vec{})
		assert.Error(t, err)
	}
}
