package analysis

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/wdf-nudtaa/flow5-sub004/geometry3D"
	"github.com/wdf-nudtaa/flow5-sub004/panels"
)

// Unit singularity influences, with the image through the ground plane or
// the free surface when one is modelled. The image of a point is
// (x, y, -z-2h); image velocities add with their z component reversed.

func (pa *PanelAnalysis) mirror(C r3.Vec) r3.Vec { return geometry3D.Mirror(C, pa.GroundHeight) }

func (pa *PanelAnalysis) withImage(V, VG r3.Vec) r3.Vec {
	coef := pa.imageCoef()
	return r3.Vec{X: V.X + coef*VG.X, Y: V.Y + coef*VG.Y, Z: V.Z - coef*VG.Z}
}

// isVortex is true for the lifting surfaces of a VLM analysis
func (pa *PanelAnalysis) isVortex(p *panels.Panel4) bool {
	return pa.IsVLM() && p.IsMid() && !p.IsWake
}

func (pa *PanelAnalysis) doubletPotential(C r3.Vec, self bool, p *panels.Panel4, core float64, useRFF, bound bool) (phi float64) {
	raw := func(C r3.Vec, self bool) float64 {
		if pa.isVortex(p) {
			return pa.vortexPotential(p, C, bound)
		}
		return p.DoubletPotential(C, self, core, useRFF)
	}
	phi = raw(C, self)
	if pa.HasImage() {
		phi += pa.imageCoef() * raw(pa.mirror(C), false)
	}
	return
}

func (pa *PanelAnalysis) doubletVelocity(C r3.Vec, p *panels.Panel4, core float64, useRFF, bound bool) (V r3.Vec) {
	raw := func(C r3.Vec) r3.Vec {
		if pa.isVortex(p) {
			return pa.vortexVelocity(p, C, bound, core)
		}
		return p.DoubletVelocity(C, core, useRFF)
	}
	V = raw(C)
	if pa.HasImage() {
		V = pa.withImage(V, raw(pa.mirror(C)))
	}
	return
}

// source kernels use a zero core, wakes carry no sources
func (pa *PanelAnalysis) sourcePotential(C r3.Vec, p *panels.Panel4) (phi float64) {
	phi = p.SourcePotential(C, 0)
	if pa.HasImage() {
		phi += pa.imageCoef() * p.SourcePotential(pa.mirror(C), 0)
	}
	return
}

func (pa *PanelAnalysis) sourceVelocity(C r3.Vec, self bool, p *panels.Panel4) (V r3.Vec) {
	V = p.SourceVelocity(C, self, 0)
	if pa.HasImage() {
		V = pa.withImage(V, p.SourceVelocity(pa.mirror(C), false, 0))
	}
	return
}

// sourceStrength makes the inner perturbation potential zero for the
// velocity V on a panel of normal n
func sourceStrength(n, V r3.Vec) float64 {
	return -r3.Dot(n, V) / 4. / math.Pi
}

// extendedTrailingPoints are the downstream corners of the last ring of a
// VLM2 strip, one third of the ring's chord behind the trailing edge
func extendedTrailingPoints(p *panels.Panel4) (AA1, BB1 r3.Vec) {
	AA1, BB1 = p.TA(), p.TB()
	AA1.X += (p.TA().X - p.VA.X) / 3.
	BB1.X += (p.TB().X - p.VB.X) / 3.
	return
}

func (pa *PanelAnalysis) vlm2Trailing(p *panels.Panel4) bool {
	return p.IsTrailing || p.PD < 0
}

// vortexVelocity is the velocity of a unit circulation horseshoe (VLM1) or
// vortex ring (VLM2). Without the bound vortex, only the trailing legs are
// kept, for far field evaluations.
func (pa *PanelAnalysis) vortexVelocity(p *panels.Panel4, C r3.Vec, bound bool, core float64) (V r3.Vec) {
	far := pa.TrefftzDistance
	if pa.IsVLM1() {
		return panels.HorseshoeVelocity(p.VA, p.VB, C, bound, far, core)
	}
	if !pa.vlm2Trailing(p) {
		if bound {
			pd := pa.panel(p.PD)
			V = panels.RingVelocity(p.VA, p.VB, pd.VA, pd.VB, C, core)
		}
		return
	}
	AA1, BB1 := extendedTrailingPoints(p)
	if bound {
		V = panels.RingVelocity(p.VA, p.VB, AA1, BB1, C, core)
	}
	if !pa.VortonWake {
		V = r3.Add(V, panels.HorseshoeVelocity(AA1, BB1, C, bound, far, core))
	}
	return
}

func (pa *PanelAnalysis) vortexPotential(p *panels.Panel4, C r3.Vec, bound bool) (phi float64) {
	far := pa.TrefftzDistance
	if pa.IsVLM1() {
		farA, farB := panels.FarPoints(p.VA, p.VB, far)
		return panels.RingPotential(p.VA, p.VB, farA, farB, C, 0)
	}
	if !pa.vlm2Trailing(p) {
		if bound {
			pd := pa.panel(p.PD)
			phi = panels.RingPotential(p.VA, p.VB, pd.VA, pd.VB, C, 0)
		}
		return
	}
	AA1, BB1 := extendedTrailingPoints(p)
	if bound {
		phi = panels.RingPotential(p.VA, p.VB, AA1, BB1, C, 0)
	}
	if !pa.VortonWake {
		farA, farB := panels.FarPoints(AA1, BB1, far)
		phi += panels.RingPotential(AA1, BB1, farA, farB, C, 0)
	}
	return
}
