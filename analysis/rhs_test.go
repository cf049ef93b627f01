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

// thin wing ahead of a thick one
func mixedMesh(t *testing.T) *panels.Mesh {
	var (
		thin  = wingMesh(t, panels.WingSpec{Span: 2, Chord: 1, NChord: 2, NSpan: 2})
		thick = wingMesh(t, panels.WingSpec{Span: 2, Chord: 1, NChord: 3, NSpan: 2, Thickness: 0.12, X0: 3, Z0: 0.5})
	)
	return panels.Merge(thin, thick)
}

func TestSourceStrengths(t *testing.T) {
	var (
		m  = mixedMesh(t)
		pa = newAnalysis(t, testConfig(PanelMethod, Dirichlet), m)
	)
	pa.SourceStrengths(pa.UniformField(geometry3D.X))
	var nonZero int
	for i := range pa.Mesh.Panels {
		p := pa.panel(i)
		if p.IsMid() {
			assert.Equal(t, 0., pa.Sigma[i])
			continue
		}
		assert.InDelta(t, -p.Normal.X/4./math.Pi, pa.Sigma[i], 1.e-15)
		if pa.Sigma[i] != 0 {
			nonZero++
		}
	}
	assert.Equal(t, 12, nonZero)
}

func TestBuildFieldRHS(t *testing.T) {
	var (
		ctx = context.Background()
		m   = mixedMesh(t)
		pa  = newAnalysis(t, testConfig(PanelMethod, Dirichlet), m)
		N   = pa.NPanels()
	)
	require.NoError(t, pa.BuildUnitRHS(ctx, r3.Vec{X: 0.25}))
	{ // A uniform field along x reproduces the unit x right hand side
		rhs, err := pa.BuildFieldRHS(ctx, pa.UniformField(geometry3D.X), nil)
		require.NoError(t, err)
		require.Len(t, rhs, N)
		for i := 0; i < N; i++ {
			assert.InDelta(t, pa.URHS[i], rhs[i], 1.e-12)
		}
		assert.Equal(t, rhs, pa.CRHS)
	}
	{ // Each source takes the strength of the field on its own panel, a pitch
		// rotation field reproduces the unit q right hand side
		var (
			ref    = r3.Vec{X: 0.25}
			vField = make([]r3.Vec, N)
		)
		for k := range vField {
			vField[k] = r3.Cross(r3.Sub(pa.panel(k).CoG(), ref), geometry3D.Y)
		}
		rhs, err := pa.BuildFieldRHS(ctx, vField, nil)
		require.NoError(t, err)
		for i := 0; i < N; i++ {
			assert.InDelta(t, pa.QRHS[i], rhs[i], 1.e-12)
		}
	}
	{ // Overridden normals equal to the panel normals change nothing
		normals := make([]r3.Vec, N)
		for i := range normals {
			normals[i] = pa.panel(i).Normal
		}
		rhs, err := pa.BuildFieldRHS(ctx, pa.UniformField(geometry3D.Z), normals)
		require.NoError(t, err)
		for i := 0; i < N; i++ {
			assert.InDelta(t, pa.WRHS[i], rhs[i], 1.e-12)
		}
	}
	{ // Size mismatch
		_, err := pa.BuildFieldRHS(ctx, make([]r3.Vec, N-1), nil)
		assert.Error(t, err)
		_, err = pa.BuildFieldRHS(ctx, pa.UniformField(geometry3D.X), make([]r3.Vec, 2))
		assert.Error(t, err)
	}
	{ // Unit strengths are not available before the solve
		assert.Error(t, pa.CombineUnitStrengths(5, 0))
	}
}

func TestWindCoefs(t *testing.T) {
	{ // Head wind
		cu, cv, cw := windCoefs(0, 0)
		assert.Equal(t, 1., cu)
		assert.Equal(t, 0., cv)
		assert.Equal(t, 0., cw)
	}
	{ // Angle of attack
		cu, cv, cw := windCoefs(30, 0)
		assert.InDelta(t, math.Sqrt(3)/2., cu, 1.e-15)
		assert.InDelta(t, 0., cv, 1.e-15)
		assert.InDelta(t, 0.5, cw, 1.e-15)
	}
	{ // Coefficients match the wind direction
		for _, ab := range [][2]float64{{5, 0}, {-3, 2}, {10, -4}} {
			var (
				cu, cv, cw = windCoefs(ab[0], ab[1])
				w          = geometry3D.WindDirection(ab[0], ab[1])
			)
			assert.InDeltaf(t, w.X, cu, 1.e-14, "alpha %v beta %v", ab[0], ab[1])
			assert.InDeltaf(t, w.Y, cv, 1.e-14, "alpha %v beta %v", ab[0], ab[1])
			assert.InDeltaf(t, w.Z, cw, 1.e-14, "alpha %v beta %v", ab[0], ab[1])
		}
	}
}

func TestCombineUnitStrengths(t *testing.T) {
	m := wingMesh(t, panels.WingSpec{Span: 4, Chord: 1, NChord: 3, NSpan: 4, Thickness: 0.1})
	pa := newAnalysis(t, testConfig(PanelMethod, Dirichlet), m)
	solveUnit(t, pa, r3.Vec{})
	require.NoError(t, pa.CombineUnitStrengths(4, 0))
	var (
		ca, sa = math.Cos(geometry3D.Radians(4)), math.Sin(geometry3D.Radians(4))
		mu     = append([]float64{}, pa.Mu...)
	)
	for i := range mu {
		assert.InDelta(t, ca*pa.URHS[i]+sa*pa.WRHS[i], mu[i], 1.e-14)
	}
	pa.SourceStrengths(pa.UniformField(geometry3D.WindDirection(4, 0)))
	pa.ScaleToSpeed(2)
	for i := range mu {
		assert.InDelta(t, 2*mu[i], pa.Mu[i], 1.e-14)
	}
}
