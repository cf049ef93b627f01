package analysis

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/wdf-nudtaa/flow5-sub004/geometry3D"
)

// SpanDistribution holds the results of each chordwise strip. Strips are
// listed in panel order by their bottom or mid trailing panel.
type SpanDistribution struct {
	Strip     []int
	StripArea []float64
	Gamma     []float64
	Cl, ICd   []float64
	Ai        []float64 // induced angle, degrees
	F, Vd     []r3.Vec
}

// NewSpanDistribution lists the strips of the mesh
func (pa *PanelAnalysis) NewSpanDistribution() (sd SpanDistribution) {
	for i := range pa.Mesh.Panels {
		p := pa.panel(i)
		if !p.IsTrailing || p.IsTop() {
			continue
		}
		sd.Strip = append(sd.Strip, i)
		sd.StripArea = append(sd.StripArea, pa.stripArea(i))
	}
	n := len(sd.Strip)
	sd.Gamma = make([]float64, n)
	sd.Cl = make([]float64, n)
	sd.ICd = make([]float64, n)
	sd.Ai = make([]float64, n)
	sd.F = make([]r3.Vec, n)
	sd.Vd = make([]r3.Vec, n)
	return
}

// stripArea sums the panels upstream of the trailing panel i on the same
// side of the surface
func (pa *PanelAnalysis) stripArea(i int) (area float64) {
	pos := pa.panel(i).Pos
	for n := 0; i >= 0 && n < pa.NPanels(); n++ {
		p := pa.panel(i)
		if p.Pos != pos {
			break
		}
		area += p.Area
		if p.IsLeading {
			break
		}
		i = p.PU
	}
	return
}

// stripVortex returns the circulation and the vortex vector of the strip
// shed by the bottom or mid trailing panel i
func (pa *PanelAnalysis) stripVortex(i int, mu []float64) (gamma float64, vortex r3.Vec) {
	p := pa.panel(i)
	if p.IsMid() {
		return -4. * math.Pi * mu[i], p.TrailingVortex()
	}
	iTop := pa.Mesh.NextTopTrailingPanel(i)
	return -4. * math.Pi * (mu[iTop] - mu[i]), r3.Scale(-1, p.TrailingVortex())
}

// walkStrip calls fn on the panels of a VLM strip from the trailing panel to
// the leading panel. VLM2 strips only carry the total circulation on their
// trailing panel.
func (pa *PanelAnalysis) walkStrip(i int, fn func(pp int)) {
	for n := 0; i >= 0 && n < pa.NPanels(); n++ {
		p := pa.panel(i)
		if pa.IsVLM1() || p.IsTrailing {
			fn(i)
		}
		if p.IsLeading {
			break
		}
		i = p.PU
	}
}

// BodyForce is the sum of the panel pressure forces, per unit dynamic pressure
func (pa *PanelAnalysis) BodyForce(cp []float64) (F r3.Vec) {
	for i := range pa.Mesh.Panels {
		p := pa.panel(i)
		F = r3.Add(F, r3.Scale(-cp[i]*p.Area, p.Normal))
	}
	return
}

// NearFieldForce projects the body force on the wind axes
func (pa *PanelAnalysis) NearFieldForce(cp []float64, alpha float64) (lift, drag float64) {
	var (
		F      = pa.BodyForce(cp)
		ca, sa = math.Cos(geometry3D.Radians(alpha)), math.Sin(geometry3D.Radians(alpha))
	)
	lift = F.Z*ca - F.X*sa
	drag = F.X*ca + F.Z*sa
	return
}

// Forces returns the force from the far field circulation of each strip and
// the moment about cog from the on-body pressures, in N and N.m for the
// freestream vInf of each panel.
func (pa *PanelAnalysis) Forces(mu, sigma []float64, alpha, beta float64, cog r3.Vec,
	vInf []r3.Vec) (force, moment r3.Vec) {
	var (
		far     = pa.TrefftzDistance
		winddir = geometry3D.WindDirection(alpha, beta)
	)
	for i := range pa.Mesh.Panels {
		p := pa.panel(i)
		if !p.IsTrailing || p.IsTop() {
			continue
		}
		if !pa.IsVLM() {
			C := geometry3D.Mid(p.TA(), p.TB())
			C.X = far / 2.
			// the point sees both the upstream and downstream legs
			Wg := r3.Add(r3.Scale(0.5, pa.FarFieldVelocity(C, mu, pa.CoreRadius)), vInf[i])
			gamma, vortex := pa.stripVortex(i, mu)
			force = r3.Add(force, r3.Scale(gamma, r3.Cross(Wg, vortex)))
			continue
		}
		C := p.CtrlPt
		C.X = far / 2.
		Wg := r3.Add(r3.Scale(0.5, pa.VelocityVector(C, mu, sigma, pa.CoreRadius, true, pa.MultiThread)), vInf[i])
		pa.walkStrip(i, func(pp int) {
			dF := r3.Cross(Wg, pa.panel(pp).TrailingVortex())
			force = r3.Add(force, r3.Scale(mu[pp], dF))
		})
	}

	for i := range pa.Mesh.Panels {
		var (
			p     = pa.panel(i)
			qInf  = r3.Norm(vInf[i])
			F     r3.Vec
			lever r3.Vec
		)
		if !pa.IsVLM() {
			_, vLocal := pa.DoubletDerivative(i, mu, vInf[i])
			cp := pa.panelCp(i, sigma[i], vInf[i], vLocal)
			F = r3.Scale(-cp*p.Area*0.5*qInf*qInf, p.Normal)
			lever = r3.Sub(p.CoG(), cog)
		} else {
			F = r3.Scale(2.*mu[i]/qInf, r3.Cross(winddir, p.TrailingVortex()))
			if pa.IsVLM2() && !p.IsLeading && p.PU >= 0 {
				F = r3.Sub(F, r3.Scale(2.*mu[p.PU]/qInf, r3.Cross(winddir, p.TrailingVortex())))
			}
			F = r3.Scale(0.5*qInf*qInf, F)
			lever = r3.Sub(p.VortexPosition(), cog)
		}
		moment = r3.Add(moment, r3.Cross(lever, F))
	}
	force = r3.Scale(pa.Density, force)
	moment = r3.Scale(pa.Density, moment)
	return
}

// InducedForce is the Kutta-Joukowski force of the strip circulations in the
// freestream alone, per unit dynamic pressure
func (pa *PanelAnalysis) InducedForce(qInf, alpha, beta float64) (force r3.Vec, sd SpanDistribution) {
	var (
		vInf = r3.Scale(qInf, geometry3D.WindDirection(alpha, beta))
		qDyn = 0.5 * pa.Density * qInf * qInf
	)
	sd = pa.NewSpanDistribution()
	for m, i := range sd.Strip {
		var (
			p          = pa.panel(i)
			stripforce r3.Vec
		)
		if !pa.IsVLM() {
			gamma, vortex := pa.stripVortex(i, pa.Mu)
			sd.Gamma[m] = gamma
			stripforce = r3.Scale(gamma*pa.Density/qDyn, r3.Cross(vInf, vortex))
		} else {
			pa.walkStrip(i, func(pp int) {
				sd.Gamma[m] += pa.Mu[pp]
				stripforce = r3.Add(stripforce, r3.Scale(pa.Mu[pp], r3.Cross(vInf, pa.panel(pp).TrailingVortex())))
			})
			stripforce = r3.Scale(2./qInf/qInf, stripforce)
		}
		sd.Cl[m] = r3.Dot(stripforce, p.SurfaceNormal()) / sd.StripArea[m]
		sd.F[m] = r3.Scale(qDyn, stripforce)
		force = r3.Add(force, stripforce)
	}
	return
}
