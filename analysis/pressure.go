package analysis

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/wdf-nudtaa/flow5-sub004/geometry3D"
	"github.com/wdf-nudtaa/flow5-sub004/panels"
)

// stencil returns the derivative at x[k] of the parabola through the three
// points (x, mu)
func stencil(x, mu [3]float64, k int) (d float64) {
	var (
		x0, x1, x2 = x[0], x[1], x[2]
		eps        = geometry3D.LENGTHPRECISION
	)
	if math.Abs(x0-x1) <= eps || math.Abs(x1-x2) <= eps || math.Abs(x2-x0) <= eps {
		return 0
	}
	switch k {
	case 0:
		return mu[0]*(2.*x0-x1-x2)/(x0-x1)/(x0-x2) +
			mu[1]*(x0-x2)/(x1-x0)/(x1-x2) +
			mu[2]*(x0-x1)/(x2-x0)/(x2-x1)
	case 1:
		return mu[0]*(x1-x2)/(x0-x1)/(x0-x2) +
			mu[1]*(2.*x1-x0-x2)/(x1-x0)/(x1-x2) +
			mu[2]*(x1-x0)/(x2-x0)/(x2-x1)
	default:
		return mu[0]*(x2-x1)/(x0-x1)/(x0-x2) +
			mu[1]*(x2-x0)/(x1-x0)/(x1-x2) +
			mu[2]*(2.*x2-x0-x1)/(x2-x0)/(x2-x1)
	}
}

// derivative of mu along one panel direction, prev and next are the
// neighbour links on either side and size the half width of each panel
func (pa *PanelAnalysis) derivative(i int, mu []float64,
	prev, next func(p *panels.Panel4) panels.PanelID,
	size func(p *panels.Panel4) float64) (d float64) {
	var (
		p    = pa.panel(i)
		iP   = prev(p)
		iN   = next(p)
		half = func(j int) float64 { return size(pa.panel(j)) }
	)
	switch {
	case iP >= 0 && iN >= 0:
		x := [3]float64{-half(i) - half(iP), 0, half(i) + half(iN)}
		d = stencil(x, [3]float64{mu[iP], mu[i], mu[iN]}, 1)
	case iP >= 0:
		if iPP := prev(pa.panel(iP)); iPP >= 0 {
			x1 := -half(i) - half(iP)
			x := [3]float64{x1 - half(iP) - half(iPP), x1, 0}
			d = stencil(x, [3]float64{mu[iPP], mu[iP], mu[i]}, 2)
		} else {
			d = -(mu[iP] - mu[i]) / (half(i) + half(iP))
		}
	case iN >= 0:
		if iNN := next(pa.panel(iN)); iNN >= 0 {
			x1 := half(i) + half(iN)
			x := [3]float64{0, x1, x1 + half(iN) + half(iNN)}
			d = stencil(x, [3]float64{mu[i], mu[iN], mu[iNN]}, 0)
		} else {
			d = (mu[iN] - mu[i]) / (half(i) + half(iN))
		}
	}
	return
}

var (
	upstream   = func(p *panels.Panel4) panels.PanelID { return p.PU }
	downstream = func(p *panels.Panel4) panels.PanelID { return p.PD }
	left       = func(p *panels.Panel4) panels.PanelID { return p.PL }
	right      = func(p *panels.Panel4) panels.PanelID { return p.PR }
	smp        = func(p *panels.Panel4) float64 { return p.SMP }
	smq        = func(p *panels.Panel4) float64 { return p.SMQ }
)

// DoubletDerivative returns the tangential perturbation velocity in the panel
// frame from the gradient of the doublet density, and the resulting Cp with
// the freestream vInf.
func (pa *PanelAnalysis) DoubletDerivative(i int, mu []float64, vInf r3.Vec) (cp float64, vLocal r3.Vec) {
	var (
		p    = pa.panel(i)
		delQ = pa.derivative(i, mu, left, right, smq)
		delP = pa.derivative(i, mu, upstream, downstream, smp)
	)
	if p.IsTop() {
		// top strips run upstream
		delP = -delP
	}
	var (
		S2  = r3.Sub(geometry3D.Mid(p.Node[1], p.Node[2]), p.CollPt)
		Sl2 = p.GlobalToLocal(S2)
	)
	vLocal.X = -4. * math.Pi * (p.SMP*delP - Sl2.Y*delQ) / Sl2.X
	vLocal.Y = -4. * math.Pi * delQ
	cp = tangentialCp(r3.Add(p.GlobalToLocal(vInf), vLocal), r3.Norm(vInf))
	return
}

func tangentialCp(vTot r3.Vec, qInf float64) float64 {
	return 1. - (vTot.X*vTot.X+vTot.Y*vTot.Y)/qInf/qInf
}

// LocalVelocities computes the tangential velocities of the three unit
// translation solutions. VLM surfaces are skipped.
func (pa *PanelAnalysis) LocalVelocities(windDir r3.Vec) {
	for i := range pa.Mesh.Panels {
		if pa.Cancelled() {
			return
		}
		if pa.IsVLM() && pa.panel(i).IsMid() {
			continue
		}
		_, pa.UVLocal[i] = pa.DoubletDerivative(i, pa.URHS, windDir)
		_, pa.VVLocal[i] = pa.DoubletDerivative(i, pa.VRHS, windDir)
		_, pa.WVLocal[i] = pa.DoubletDerivative(i, pa.WRHS, windDir)
	}
}

// CombineLocalVelocities weighs the unit local velocities for a freestream
// of unit speed in the direction (alpha, beta)
func (pa *PanelAnalysis) CombineLocalVelocities(alpha, beta float64) (vLocal []r3.Vec) {
	cu, cv, cw := windCoefs(alpha, beta)
	vLocal = make([]r3.Vec, pa.NPanels())
	for i := range vLocal {
		vLocal[i] = r3.Add(r3.Add(r3.Scale(cu, pa.UVLocal[i]), r3.Scale(cv, pa.VVLocal[i])),
			r3.Scale(cw, pa.WVLocal[i]))
	}
	return
}

// panelCp adds the source contribution to the local velocity. On thin
// surfaces the doublet gradient is the velocity jump between both sides and
// the result is the pressure difference.
func (pa *PanelAnalysis) panelCp(i int, sigma float64, vInf, vLocal r3.Vec) float64 {
	var (
		p    = pa.panel(i)
		qInf = r3.Norm(vInf)
		vl   = r3.Vec{X: vLocal.X, Y: vLocal.Y, Z: 4. * math.Pi * sigma}
		vTot = p.GlobalToLocal(vInf)
	)
	if p.IsMid() {
		half := r3.Scale(0.5, vl)
		return tangentialCp(r3.Add(vTot, half), qInf) - tangentialCp(r3.Sub(vTot, half), qInf)
	}
	return tangentialCp(r3.Add(vTot, vl), qInf)
}

// OnBodyCp returns the pressure coefficients of the panels
func (pa *PanelAnalysis) OnBodyCp(vInf, vLocal []r3.Vec) (cp []float64) {
	cp = make([]float64, pa.NPanels())
	for i := range cp {
		cp[i] = pa.panelCp(i, pa.Sigma[i], vInf[i], vLocal[i])
	}
	return
}

// VortexCp is the pressure difference across a VLM panel from the
// Kutta-Joukowski force of its bound vortex
func (pa *PanelAnalysis) VortexCp(i int, gamma []float64, vInf r3.Vec) float64 {
	var (
		p     = pa.panel(i)
		force = r3.Scale(gamma[i], r3.Cross(vInf, p.TrailingVortex()))
	)
	if !pa.IsVLM1() && !p.IsLeading && p.PU >= 0 {
		force = r3.Sub(force, r3.Scale(gamma[p.PU], r3.Cross(vInf, p.TrailingVortex())))
	}
	return -2. * r3.Dot(force, p.Normal) / p.Area / r3.Norm2(vInf)
}
