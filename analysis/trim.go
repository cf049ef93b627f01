package analysis

import (
	"math"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/wdf-nudtaa/flow5-sub004/geometry3D"
)

const (
	trimEps          = 1.e-7
	trimMaxIter      = 50
	trimMaxShrink    = 20
	trimShrinkFactor = 0.9
)

type trimState uint8

const (
	bracketSearch trimState = iota
	bisect
	converged
	failed
)

func (s trimState) String() string {
	return [...]string{"bracket search", "bisect", "converged", "failed"}[s]
}

// ZeroMomentAngle finds the angle of attack, degrees, with zero pitching
// moment about cog by regula falsi, starting from the bracket [-30, 30]
// degrees shrunk until the moments change sign.
func (pa *PanelAnalysis) ZeroMomentAngle(cog r3.Vec) (alpha float64, ok bool) {
	var (
		a0, a1   = -math.Pi / 6., math.Pi / 6.
		cm       = func(a float64) float64 { return pa.cmEval(cog, geometry3D.Degrees(a)) }
		cm0, cm1 = cm(a0), cm(a1)
		a, c     float64
		iter     int
		state    = bracketSearch
	)
	for state != converged && state != failed {
		if pa.Cancelled() {
			state = failed
			break
		}
		switch state {
		case bracketSearch:
			switch {
			case cm0 == 0:
				a, state = a0, converged
				continue
			case cm1 == 0:
				a, state = a1, converged
				continue
			}
			if cm0*cm1 < 0 {
				if cm0 > cm1 {
					a0, a1, cm0, cm1 = a1, a0, cm1, cm0
				}
				state, iter = bisect, 0
				continue
			}
			if iter >= trimMaxShrink {
				state = failed
				continue
			}
			a0 *= trimShrinkFactor
			a1 *= trimShrinkFactor
			cm0, cm1 = cm(a0), cm(a1)
			iter++
		case bisect:
			if iter >= trimMaxIter {
				state = failed
				continue
			}
			a = a0 - (a1-a0)*cm0/(cm1-cm0)
			c = cm(a)
			if c > 0 {
				a1, cm1 = a, c
			} else {
				a0, cm0 = a, c
			}
			iter++
			if math.Abs(c) <= trimEps {
				state = converged
			}
		}
	}
	pa.logger.WithFields(log.Fields{"state": state.String(), "iterations": iter}).Debug("zero moment angle")
	if state != converged {
		return 0, false
	}
	return geometry3D.Degrees(a), true
}

// Cm is the pitching moment about cog per unit dynamic pressure of the unit
// solutions at the angle of attack alpha, degrees
func (pa *PanelAnalysis) Cm(cog r3.Vec, alpha float64) (cm float64) {
	var (
		ca, sa = math.Cos(geometry3D.Radians(alpha)), math.Sin(geometry3D.Radians(alpha))
		vInf   = r3.Vec{X: ca, Z: sa}
	)
	for i := range pa.Mesh.Panels {
		var (
			p       = pa.panel(i)
			forcePt r3.Vec
			F       r3.Vec
		)
		if !pa.IsVLM() {
			vLocal := r3.Add(r3.Scale(ca, pa.UVLocal[i]), r3.Scale(sa, pa.WVLocal[i]))
			cp := pa.panelCp(i, 0, vInf, vLocal)
			forcePt = p.CollPt
			F = r3.Scale(-cp*p.Area, p.Normal)
		} else {
			gamma := pa.URHS[i]*ca + pa.WRHS[i]*sa
			forcePt = p.VortexPosition()
			F = r3.Scale(2.*gamma, r3.Cross(vInf, p.TrailingVortex()))
			if !pa.IsVLM1() && !p.IsLeading && p.PU >= 0 {
				gammaU := pa.URHS[p.PU]*ca + pa.WRHS[p.PU]*sa
				F = r3.Sub(F, r3.Scale(2.*gammaU, r3.Cross(vInf, p.TrailingVortex())))
			}
		}
		lever := r3.Sub(forcePt, cog)
		cm += -lever.X*F.Z + lever.Z*F.X
	}
	return
}

// TrimmedConditions finds the zero moment angle about cog and the speed at
// which the lift balances the weight of mass. Mu and Sigma are left at the
// unit speed solution of the trimmed angle.
func (pa *PanelAnalysis) TrimmedConditions(mass float64, cog r3.Vec) (alpha, speed float64, ok bool) {
	logger := pa.logger.WithField("mass", mass)
	if alpha, ok = pa.ZeroMomentAngle(cog); !ok {
		logger.Warn("no zero moment angle found")
		return
	}
	windDir := geometry3D.WindDirection(alpha, 0)
	pa.SourceStrengths(pa.UniformField(windDir))
	if err := pa.CombineUnitStrengths(alpha, 0); err != nil {
		logger.Warn(err)
		return alpha, 0, false
	}
	force, _ := pa.Forces(pa.Mu, pa.Sigma, alpha, 0, cog, pa.UniformField(windDir))
	lift := r3.Dot(force, geometry3D.WindNormal(alpha, 0))
	if lift <= PRECISION {
		pa.warning.Store(true)
		logger.Warnf("found a negative lift for alpha=%.3f, skipping the angle", alpha)
		return alpha, 0, false
	}
	speed = math.Sqrt(Gravity * mass / force.Z)
	return alpha, speed, true
}
