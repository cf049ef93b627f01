package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/wdf-nudtaa/flow5-sub004/geometry3D"
	"github.com/wdf-nudtaa/flow5-sub004/panels"
)

func TestImageInfluence(t *testing.T) {
	var (
		m    = wingMesh(t, panels.WingSpec{Span: 1.5, Chord: 1, NChord: 1, NSpan: 1, Z0: 1})
		free = newAnalysis(t, testConfig(PanelMethod, Dirichlet), m)
		p    = free.panel(0)
		pts  = []r3.Vec{{X: 0.3, Y: 0.2, Z: 0.5}, {X: 1.7, Y: -0.4, Z: 0.1}, {X: -0.5, Y: 1, Z: 1.5}}
	)
	// the image of the panel through the plane z = 0, with its nodes swapped
	// so that its normal is the mirror of the panel's normal
	mirror := func(v r3.Vec) r3.Vec { return geometry3D.Mirror(v, 0) }
	image := panels.NewPanel4(mirror(p.LB()), mirror(p.LA()), mirror(p.TB()), mirror(p.TA()))

	for _, surface := range []struct {
		name string
		coef float64
	}{{"ground", 1}, {"free surface", -1}} {
		cfg := testConfig(PanelMethod, Dirichlet)
		cfg.GroundEffect = surface.coef > 0
		cfg.FreeSurface = surface.coef < 0
		pg := newAnalysis(t, cfg, m)
		assert.Equal(t, surface.coef, pg.imageCoef())
		for _, C := range pts {
			var (
				dV   = r3.Sub(pg.doubletVelocity(C, pg.panel(0), 0, false, true), free.doubletVelocity(C, p, 0, false, true))
				VI   = r3.Scale(surface.coef, image.DoubletVelocity(C, 0, false))
				dPhi = pg.doubletPotential(C, false, pg.panel(0), 0, false, true) - free.doubletPotential(C, false, p, 0, false, true)
			)
			assert.InDeltaf(t, VI.X, dV.X, 1.e-9, "%s at %v", surface.name, C)
			assert.InDeltaf(t, VI.Y, dV.Y, 1.e-9, "%s at %v", surface.name, C)
			assert.InDeltaf(t, VI.Z, dV.Z, 1.e-9, "%s at %v", surface.name, C)
			assert.InDeltaf(t, surface.coef*image.DoubletPotential(C, false, 0, false), dPhi, 1.e-9,
				"%s at %v", surface.name, C)
		}
	}
}

func TestMirror(t *testing.T) {
	var (
		C = r3.Vec{X: 1, Y: 2, Z: 3}
	)
	assert.Equal(t, r3.Vec{X: 1, Y: 2, Z: -3}, geometry3D.Mirror(C, 0))
	assert.Equal(t, r3.Vec{X: 1, Y: 2, Z: -5}, geometry3D.Mirror(C, 1))
	assert.Equal(t, C, geometry3D.Mirror(geometry3D.Mirror(C, 0.7), 0.7))
}

func TestSourceStrength(t *testing.T) {
	var (
		n = r3.Vec{Z: 1}
	)
	assert.Equal(t, 0., sourceStrength(n, geometry3D.X))
	assert.InDelta(t, -1./4./3.141592653589793, sourceStrength(n, geometry3D.Z), 1.e-15)
}
