package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/wdf-nudtaa/flow5-sub004/panels"
)

func TestVortonVelocity(t *testing.T) {
	var (
		vtn = Vorton{Omega: r3.Vec{Z: 1}}
	)
	{ // Point vortex, no core
		V := vtn.Velocity(r3.Vec{X: 1}, 0)
		assert.InDelta(t, 0., V.X, 1.e-15)
		assert.InDelta(t, 1./4./math.Pi, V.Y, 1.e-15)
		assert.InDelta(t, 0., V.Z, 1.e-15)
		V = vtn.Velocity(r3.Vec{Y: 2}, 0)
		assert.InDelta(t, -1./16./math.Pi, V.X, 1.e-15)
	}
	{ // Smoothed kernel
		V := vtn.Velocity(r3.Vec{X: 1}, 1)
		assert.InDelta(t, 1./4./math.Pi/math.Pow(2, 1.5), V.Y, 1.e-15)
		assert.Equal(t, r3.Vec{}, vtn.Velocity(r3.Vec{}, 0))
	}
	{ // Negating vortex
		vtx := Vortex{A: r3.Vec{Y: -1e3}, B: r3.Vec{Y: 1e3}, Circulation: 2}
		V := vtx.Velocity(r3.Vec{X: 1}, 0)
		// infinite line vortex, circulation 2 in the unit circulation normalization
		assert.InDelta(t, 2./2./math.Pi, math.Abs(V.Z), 1.e-6)
	}
}

func vortonAnalysis(t *testing.T, method Method, ns int) *PanelAnalysis {
	var (
		m   = wingMesh(t, panels.WingSpec{Span: 4, Chord: 1, NChord: 2, NSpan: ns})
		cfg = testConfig(method, Dirichlet)
	)
	if method != PanelMethod {
		cfg.BC = Neumann
	}
	cfg.VortonWake = true
	pa := newAnalysis(t, cfg, m)
	require.NoError(t, pa.BuildWake())
	for i := range pa.Mu {
		pa.Mu[i] = 0.01 * float64(i%5+1)
	}
	return pa
}

func TestMakeVortons(t *testing.T) {
	{ // Panel analysis, two vortons per wake column
		pa := vortonAnalysis(t, PanelMethod, 4)
		require.Equal(t, 12, pa.Mesh.NWakePanels())
		require.NoError(t, pa.MakeVortons(0.25))
		require.Equal(t, 1, pa.NVortonRows())
		row := pa.Vortons[0]
		require.Len(t, row, 8)
		require.Len(t, pa.VortexNeg, 4)
		for m, vtx := range pa.VortexNeg {
			assert.Equal(t, [2]int{2 * m, 2*m + 1}, vtx.NodeIndex)
			gamma := 4. * math.Pi * pa.Mu[2*m]
			assert.InDelta(t, -gamma, vtx.Circulation, 1.e-15)
			assert.InDelta(t, 0.25*gamma, row[2*m].Omega.X, 1.e-15)
			assert.InDelta(t, -0.25*gamma, row[2*m+1].Omega.X, 1.e-15)
			// the buffer wake ends 0.25 behind the trailing edge
			assert.InDelta(t, 1.375, row[2*m].Position.X, 1.e-12)
			assert.InDelta(t, vtx.A.Y, row[2*m].Position.Y, 1.e-12)
			assert.InDelta(t, vtx.B.Y, row[2*m+1].Position.Y, 1.e-12)
		}

		// the next rows are one step further, the negating vortices are kept
		neg := pa.VortexNeg
		require.NoError(t, pa.MakeVortons(0.25))
		assert.Equal(t, neg, pa.VortexNeg)
		for k := range row {
			assert.InDelta(t, 0.25, pa.Vortons[1][k].Position.X-row[k].Position.X, 1.e-12)
		}
		pa.ClearVortons()
		assert.Equal(t, 0, pa.NVortonRows())
		assert.Nil(t, pa.VortexNeg)
	}
	{ // VLM2, one vorton per trailing leg and one at each tip
		pa := vortonAnalysis(t, VLM2, 4)
		require.NoError(t, pa.MakeVortons(0.2))
		row := pa.Vortons[0]
		require.Len(t, row, 5)
		var sum float64
		for _, vtn := range row {
			sum += vtn.Omega.X
			assert.Equal(t, 0., vtn.Omega.Y)
			assert.Equal(t, 0., vtn.Omega.Z)
		}
		assert.InDelta(t, 0., sum, 1.e-15)
		assert.InDelta(t, -0.2*pa.Mu[0], row[0].Omega.X, 1.e-15)
		assert.InDelta(t, 0.2*pa.Mu[6], row[4].Omega.X, 1.e-15)
		assert.Empty(t, pa.VortexNeg)
	}
	{ // Errors
		pa := vortonAnalysis(t, PanelMethod, 2)
		assert.Error(t, pa.MakeVortons(0))
		pv := newAnalysis(t, testConfig(VLM1, Neumann), wingMesh(t, panels.WingSpec{Span: 4, Chord: 1, NChord: 2, NSpan: 2}))
		assert.Error(t, pv.MakeVortons(0.25))
		pn := newAnalysis(t, testConfig(PanelMethod, Dirichlet), wingMesh(t, panels.WingSpec{Span: 4, Chord: 1, NChord: 2, NSpan: 2}))
		assert.Error(t, pn.MakeVortons(0.25))
	}
}

func TestVortonDrag(t *testing.T) {
	pa := vortonAnalysis(t, PanelMethod, 4)
	sd := pa.NewSpanDistribution()
	require.Len(t, sd.Strip, 4)
	for m := range sd.Gamma {
		sd.Gamma[m], _ = pa.stripVortex(sd.Strip[m], pa.Mu)
	}
	require.NoError(t, pa.MakeVortons(0.25))
	_, err := pa.VortonDrag(3, 0, 1, &sd)
	assert.Error(t, err)

	require.NoError(t, pa.MakeVortons(0.25))
	require.NoError(t, pa.MakeVortons(0.25))
	drag, err := pa.VortonDrag(3, 0, 1, &sd)
	require.NoError(t, err)
	var sum r3.Vec
	for m := range sd.Strip {
		assert.False(t, math.IsNaN(sd.ICd[m]))
		assert.False(t, math.IsNaN(sd.Ai[m]))
		sum = r3.Add(sum, r3.Scale(2., sd.F[m]))
	}
	// strip forces are in N at the reference density
	assert.InDelta(t, drag.X, sum.X/pa.Density, 1.e-12)
	assert.InDelta(t, drag.Z, sum.Z/pa.Density, 1.e-12)

	short := SpanDistribution{Gamma: make([]float64, 2)}
	_, err = pa.VortonDrag(3, 0, 1, &short)
	assert.Error(t, err)
}
