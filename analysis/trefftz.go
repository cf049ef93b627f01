package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/wdf-nudtaa/flow5-sub004/geometry3D"
)

// TrefftzDrag computes the induced drag of each strip from the downwash of
// the wake, per unit dynamic pressure. For panel analyses the downwash is
// taken half way down the wake column, for VLM analyses half way to the
// Trefftz plane.
func (pa *PanelAnalysis) TrefftzDrag(qInf, alpha, beta float64) (force r3.Vec, sd SpanDistribution, err error) {
	if !pa.IsVLM() && pa.Mesh.NWakePanels() == 0 {
		err = fmt.Errorf("Trefftz drag requires the wake panels")
		return
	}
	var (
		winddir = geometry3D.WindDirection(alpha, beta)
		qDyn    = 0.5 * pa.Density * qInf * qInf
	)
	// the point sees both the upstream and downstream parts of the
	// trailing vortices, hence twice the downwash
	downwash := func(C r3.Vec) r3.Vec {
		return r3.Scale(0.5, pa.VelocityVector(C, pa.Mu, pa.Sigma, pa.CoreRadius, true, pa.MultiThread))
	}
	sd = pa.NewSpanDistribution()
	for m, i := range sd.Strip {
		if pa.Cancelled() {
			return
		}
		var (
			p          = pa.panel(i)
			normal     = p.SurfaceNormal()
			stripforce r3.Vec
			Wg         r3.Vec
		)
		if !pa.IsVLM() {
			Wg = downwash(pa.Mesh.MidWakePoint(p.IWake))
			gamma, vortex := pa.stripVortex(i, pa.Mu)
			sd.Gamma[m] = gamma
			stripforce = r3.Scale(gamma*pa.Density/qDyn, r3.Cross(Wg, vortex))
		} else {
			C := p.CtrlPt
			C.X = pa.TrefftzDistance / 2.
			Wg = downwash(C)
			pa.walkStrip(i, func(pp int) {
				sd.Gamma[m] += pa.Mu[pp]
				stripforce = r3.Add(stripforce, r3.Scale(pa.Mu[pp], r3.Cross(Wg, pa.panel(pp).TrailingVortex())))
			})
			stripforce = r3.Scale(2./qInf/qInf, stripforce)
		}
		sd.Vd[m] = Wg
		sd.Ai[m] = geometry3D.Degrees(math.Atan2(r3.Dot(Wg, normal), qInf))
		sd.ICd[m] = r3.Dot(stripforce, winddir) / sd.StripArea[m]
		sd.F[m] = r3.Add(sd.F[m], r3.Scale(qDyn, stripforce))
		force = r3.Add(force, stripforce)
	}
	return
}
