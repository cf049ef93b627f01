package analysis

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/wdf-nudtaa/flow5-sub004/geometry3D"
	"github.com/wdf-nudtaa/flow5-sub004/panels"
	"github.com/wdf-nudtaa/flow5-sub004/utils"
)

// VelocityVector is the perturbation velocity induced at C by the
// singularities mu and sigma. With wakeOnly, only the wake part of the
// induced field is kept. Partial sums of the row blocks are added in block
// order so the result does not depend on multiThread.
func (pa *PanelAnalysis) VelocityVector(C r3.Vec, mu, sigma []float64, core float64,
	wakeOnly, multiThread bool) (V r3.Vec) {
	if pa.Cancelled() {
		return
	}
	VBlock := make([]r3.Vec, pa.pm.ParallelDegree)
	_ = utils.ParallelFor(pa.pm, multiThread, func(np, iMin, iMax int) error {
		for i := iMin; i < iMax; i++ {
			if pa.Cancelled() {
				return nil
			}
			VBlock[np] = r3.Add(VBlock[np], pa.panelVelocity(C, i, mu, sigma, core, wakeOnly))
		}
		return nil
	})
	if pa.Cancelled() {
		return r3.Vec{}
	}
	for _, vb := range VBlock {
		V = r3.Add(V, vb)
	}
	if pa.VortonWake {
		V = r3.Add(V, pa.VortonVelocity(C))
	}
	return
}

func (pa *PanelAnalysis) panelVelocity(C r3.Vec, i int, mu, sigma []float64, core float64, wakeOnly bool) (V r3.Vec) {
	p := pa.panel(i)
	if pa.IsVLM() {
		return r3.Scale(mu[i], pa.doubletVelocity(C, p, core, true, !wakeOnly))
	}
	if !wakeOnly {
		if !p.IsMid() {
			V = r3.Scale(sigma[i], pa.sourceVelocity(C, false, p))
		}
		V = r3.Add(V, r3.Scale(mu[i], pa.doubletVelocity(C, p, core, true, true)))
	}
	if p.IsTrailing {
		sign := 1.
		if p.IsBottom() {
			sign = -1.
		}
		pa.walkWake(p.IWake, func(pw *panels.Panel4) {
			// no far field approximation for wake panels
			V = r3.Add(V, r3.Scale(mu[i]*sign, pa.doubletVelocity(C, pw, core, false, true)))
		})
	}
	return
}

// walkWake calls fn on each panel of the wake column starting at iw
func (pa *PanelAnalysis) walkWake(iw panels.PanelID, fn func(pw *panels.Panel4)) {
	for n := 0; iw >= 0 && n < pa.Mesh.NWakePanels(); n++ {
		pw := &pa.Mesh.WakePanels[iw]
		fn(pw)
		iw = pw.PD
	}
}

// Potential is the perturbation potential at C
func (pa *PanelAnalysis) Potential(C r3.Vec, mu, sigma []float64) (phi float64) {
	for i := range pa.Mesh.Panels {
		p := pa.panel(i)
		if !p.IsMid() {
			phi += pa.sourcePotential(C, p) * sigma[i]
		}
		phi += pa.doubletPotential(C, false, p, 0, true, true) * mu[i]
		if p.IsTrailing && !p.IsMid() {
			sign := 1.
			if p.IsBottom() {
				sign = -1.
			}
			pa.walkWake(p.IWake, func(pw *panels.Panel4) {
				phi += pa.doubletPotential(C, false, pw, 0, false, true) * mu[i] * sign
			})
		}
	}
	return
}

// FarFieldVelocity models the wake of each trailing panel as two semi
// infinite line vortices, whatever the analysis method.
func (pa *PanelAnalysis) FarFieldVelocity(C r3.Vec, mu []float64, core float64) (V r3.Vec) {
	far := pa.TrefftzDistance
	for i := range pa.Mesh.Panels {
		if pa.Cancelled() {
			return r3.Vec{}
		}
		p := pa.panel(i)
		if !p.IsTrailing {
			continue
		}
		farA, farB := panels.FarPoints(p.TA(), p.TB(), far)
		V = r3.Add(V, r3.Scale(mu[i], geometry3D.SegmentVelocity(p.TA(), farA, C, core)))
		// circulations of the two legs are opposite
		V = r3.Add(V, r3.Scale(-mu[i], geometry3D.SegmentVelocity(p.TB(), farB, C, core)))
	}
	V = r3.Scale(4.*math.Pi, V)
	return
}
