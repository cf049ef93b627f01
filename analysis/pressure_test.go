package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/wdf-nudtaa/flow5-sub004/geometry3D"
	"github.com/wdf-nudtaa/flow5-sub004/panels"
)

func TestStencil(t *testing.T) {
	var (
		x  = [3]float64{-1, 0, 2}
		mu [3]float64
	)
	for k := range x {
		mu[k] = x[k] * x[k]
	}
	// exact on parabolas
	assert.InDelta(t, -2., stencil(x, mu, 0), 1.e-14)
	assert.InDelta(t, 0., stencil(x, mu, 1), 1.e-14)
	assert.InDelta(t, 4., stencil(x, mu, 2), 1.e-14)
	// coincident abscissae
	assert.Equal(t, 0., stencil([3]float64{0, 0, 1}, mu, 1))
}

func TestDoubletDerivative(t *testing.T) {
	var (
		m  = wingMesh(t, panels.WingSpec{Span: 4, Chord: 1, NChord: 3, NSpan: 4})
		pa = newAnalysis(t, testConfig(PanelMethod, Dirichlet), m)
		mu = make([]float64, pa.NPanels())
	)
	{ // Uniform density, no perturbation
		for i := range mu {
			mu[i] = 0.3
		}
		for i := range mu {
			cp, v := pa.DoubletDerivative(i, mu, geometry3D.X)
			assert.InDelta(t, 0., r3.Norm(v), 1.e-12)
			assert.InDelta(t, 0., cp, 1.e-12)
		}
	}
	{ // Spanwise linear density
		for i := range mu {
			mu[i] = pa.panel(i).CollPt.Y
		}
		for i := range mu {
			_, v := pa.DoubletDerivative(i, mu, geometry3D.X)
			assert.InDelta(t, -4.*math.Pi, v.Y, 1.e-9)
		}
	}
	{ // Thin surfaces carry the pressure jump
		var (
			vInf = geometry3D.X
			vl   = r3.Vec{X: 0.2}
			cp   = pa.panelCp(0, 0, vInf, vl)
		)
		assert.InDelta(t, (1-1.1*1.1)-(1-0.9*0.9), cp, 1.e-12)
	}
}
