package analysis

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/wdf-nudtaa/flow5-sub004/geometry3D"
	"github.com/wdf-nudtaa/flow5-sub004/utils"
)

const (
	stabDeltaSpeed = 1.e-3 // m/s
	stabDeltaRate  = 1.e-2 // rad/s
)

// StabilityDerivatives are the derivatives of the forces, N, and moments,
// N.m, in stability axes about the center of the unit rotations. u, v, w are
// the aircraft velocities along the axes and p, q, r its rotation rates.
type StabilityDerivatives struct {
	Alpha, U0 float64

	Xu, Zu, Mu float64
	Xw, Zw, Mw float64
	Xq, Zq, Mq float64
	Yv, Lv, Nv float64
	Yp, Lp, Np float64
	Yr, Lr, Nr float64

	// reference state
	Force0, Moment0 r3.Vec

	// non-dimensional, E&R conventions
	CXu, CZu, Cmu float64
	CXa, CZa, Cma float64
	CXq, CZq, Cmq float64
	CYb, Clb, Cnb float64
	CYp, Clp, Cnp float64
	CYr, Clr, Cnr float64
	XNP           float64 // neutral point
}

// stabilityAxes returns the forward, right and downward axes for the angle of
// attack alpha, degrees
func stabilityAxes(alpha float64) (is, js, ks r3.Vec) {
	ca, sa := math.Cos(geometry3D.Radians(alpha)), math.Sin(geometry3D.Radians(alpha))
	return r3.Vec{X: -ca, Z: -sa}, r3.Vec{Y: 1}, r3.Vec{X: sa, Z: -ca}
}

// fieldForces combines the unit solutions for the freestream v0 and the
// rotation omega of the aircraft, then computes the forces of the perturbed
// field. Mu and Sigma are untouched.
func (pa *PanelAnalysis) fieldForces(alpha float64, v0, omega r3.Vec) (force, moment r3.Vec) {
	var (
		N      = pa.NPanels()
		mu     = make([]float64, N)
		sigma  = make([]float64, N)
		vField = make([]r3.Vec, N)
		unit   = [6][]float64{pa.URHS, pa.VRHS, pa.WRHS, pa.PRHS, pa.QRHS, pa.RRHS}
		coefs  = [6]float64{v0.X, v0.Y, v0.Z, omega.X, omega.Y, omega.Z}
	)
	for j, c := range coefs {
		if c != 0 {
			floats.AddScaled(mu, c, unit[j])
		}
	}
	for k := range vField {
		p := pa.panel(k)
		// the wind seen by a point of a body rotating at omega
		vField[k] = r3.Add(v0, r3.Cross(r3.Sub(p.CoG(), pa.unitRef), omega))
		if !p.IsMid() {
			sigma[k] = sourceStrength(p.Normal, vField[k])
		}
	}
	return pa.Forces(mu, sigma, alpha, 0, pa.unitRef, vField)
}

// StabilityDerivatives computes the derivatives at the steady state of angle
// of attack alpha, degrees, and speed u0 by centered differences of the
// combined unit solutions. mass sets the weight coefficient of the speed
// derivatives.
func (pa *PanelAnalysis) StabilityDerivatives(alpha, u0, mass float64) (sd StabilityDerivatives, err error) {
	switch {
	case !pa.unitSolved:
		return sd, fmt.Errorf("unit strengths are not solved")
	case u0 <= 0:
		return sd, fmt.Errorf("reference speed must be positive, got %g", u0)
	}
	var (
		is, js, ks = stabilityAxes(alpha)
		axes       = [3]r3.Vec{is, js, ks}
		v0         = r3.Scale(-u0, is)
	)
	// translation and rotation derivatives along each axis
	var dF, dM, dFr, dMr [3]r3.Vec
	sd.Alpha, sd.U0 = alpha, u0
	sd.Force0, sd.Moment0 = pa.fieldForces(alpha, v0, r3.Vec{})
	for d, s := range axes {
		if pa.Cancelled() {
			return sd, utils.ErrCancelled
		}
		// moving along s is a wind blowing along -s
		Fm, Mm := pa.fieldForces(alpha, r3.Sub(v0, r3.Scale(stabDeltaSpeed, s)), r3.Vec{})
		Fp, Mp := pa.fieldForces(alpha, r3.Add(v0, r3.Scale(stabDeltaSpeed, s)), r3.Vec{})
		dF[d] = r3.Scale(0.5/stabDeltaSpeed, r3.Sub(Fm, Fp))
		dM[d] = r3.Scale(0.5/stabDeltaSpeed, r3.Sub(Mm, Mp))

		Fp, Mp = pa.fieldForces(alpha, v0, r3.Scale(stabDeltaRate, s))
		Fm, Mm = pa.fieldForces(alpha, v0, r3.Scale(-stabDeltaRate, s))
		dFr[d] = r3.Scale(0.5/stabDeltaRate, r3.Sub(Fp, Fm))
		dMr[d] = r3.Scale(0.5/stabDeltaRate, r3.Sub(Mp, Mm))
	}
	sd.Xu, sd.Zu, sd.Mu = r3.Dot(dF[0], is), r3.Dot(dF[0], ks), r3.Dot(dM[0], js)
	sd.Yv, sd.Lv, sd.Nv = r3.Dot(dF[1], js), r3.Dot(dM[1], is), r3.Dot(dM[1], ks)
	sd.Xw, sd.Zw, sd.Mw = r3.Dot(dF[2], is), r3.Dot(dF[2], ks), r3.Dot(dM[2], js)

	sd.Yp, sd.Lp, sd.Np = r3.Dot(dFr[0], js), r3.Dot(dMr[0], is), r3.Dot(dMr[0], ks)
	sd.Xq, sd.Zq, sd.Mq = r3.Dot(dFr[1], is), r3.Dot(dFr[1], ks), r3.Dot(dMr[1], js)
	sd.Yr, sd.Lr, sd.Nr = r3.Dot(dFr[2], js), r3.Dot(dMr[2], is), r3.Dot(dMr[2], ks)

	sd.nonDimensional(pa.Density, pa.RefArea, pa.RefChord, pa.RefSpan, mass, pa.unitRef.X)
	pa.logger.WithFields(log.Fields{
		"alpha": alpha, "CZa": sd.CZa, "Cma": sd.Cma, "Cmq": sd.Cmq, "XNP": sd.XNP,
	}).Debug("stability derivatives")
	return
}

// nonDimensional scales the derivatives for steady level flight
func (sd *StabilityDerivatives) nonDimensional(rho, S, mac, b, mass, cogX float64) {
	var (
		u0  = sd.U0
		q   = 0.5 * rho * u0 * u0
		cw0 = mass * Gravity / q / S
		ref = 0.5 * rho * u0 * S
	)
	sd.CXu = sd.Xu / ref
	sd.CZu = (sd.Zu + rho*u0*S*cw0) / ref
	sd.Cmu = sd.Mu / (ref * mac)
	sd.CXa = sd.Xw / ref
	sd.CZa = sd.Zw / ref
	sd.Cma = sd.Mw / (ref * mac)
	sd.CXq = sd.Xq / (0.5 * ref * mac)
	sd.CZq = sd.Zq / (0.5 * ref * mac)
	sd.Cmq = sd.Mq / (0.5 * ref * mac * mac)
	if sd.CZa != 0 {
		sd.XNP = cogX + sd.Cma/sd.CZa*mac
	}

	sd.CYb = sd.Yv * u0 / (q * S)
	sd.CYp = sd.Yp * 2. * u0 / (q * S * b)
	sd.CYr = sd.Yr * 2. * u0 / (q * S * b)
	sd.Clb = sd.Lv * u0 / (q * S * b)
	sd.Clp = sd.Lp * (2. * u0 / b) / (q * S * b)
	sd.Clr = sd.Lr * (2. * u0 / b) / (q * S * b)
	sd.Cnb = sd.Nv * u0 / (q * S * b)
	sd.Cnp = sd.Np * (2. * u0 / b) / (q * S * b)
	sd.Cnr = sd.Nr * (2. * u0 / b) / (q * S * b)
}
