package panels

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/wdf-nudtaa/flow5-sub004/geometry3D"
)

// Points closer to the panel plane than this are treated as in-plane
const INPLANEPRECISION = 1.e-10

// Kernels return the influence of a uniform unit density distributed on the
// panel, following the Hess & Smith / VSAERO quadrilateral formulation.
// Potentials and velocities are scaled by 4.PI, the strengths solved for are
// scaled accordingly.

type sideTerms struct {
	a, b, s, h     r3.Vec
	A, B, S        float64
	SM, SL, Al, PN float64
	PA, PB         float64
	degenerate     bool
}

func (p *Panel4) side(i int, C r3.Vec, PN float64) (t sideTerms) {
	var (
		n0 = p.Node[i]
		n1 = p.Node[(i+1)%4]
	)
	t.a = r3.Sub(C, n0)
	t.b = r3.Sub(C, n1)
	t.s = r3.Sub(n1, n0)
	t.A = r3.Norm(t.a)
	t.B = r3.Norm(t.b)
	t.S = r3.Norm(t.s)
	t.SM = r3.Dot(t.s, p.M)
	t.SL = r3.Dot(t.s, p.L)
	AM := r3.Dot(t.a, p.M)
	AL := r3.Dot(t.a, p.L)
	t.Al = AM*t.SL - AL*t.SM
	t.PN = PN
	t.PA = PN*PN*t.SL + t.Al*AM
	t.PB = t.PA - t.Al*t.SM
	t.h = r3.Cross(t.a, t.s)
	t.degenerate = geometry3D.IsSame(n0, n1, geometry3D.LENGTHPRECISION)
	return
}

// onSide is true when the point lies within coreRadius of the side segment
func (t *sideTerms) onSide(coreRadius float64) bool {
	return r3.Norm(t.h) < coreRadius && r3.Dot(t.a, t.s) >= 0. && r3.Dot(t.b, t.s) <= 0.
}

// solidAngle is the side's contribution to the solid angle under which the
// panel is seen from the field point.
func (p *Panel4) solidAngle(t *sideTerms) (CJK float64) {
	var (
		RNUM = t.SM * t.PN * (t.B*t.PA - t.A*t.PB)
		DNOM = t.PA*t.PB + t.PN*t.PN*t.A*t.B*t.SM*t.SM
	)
	if math.Abs(t.PN) >= INPLANEPRECISION {
		return math.Atan2(RNUM, DNOM)
	}
	// side >0 if the point is on the strip's right side
	sign := 1.
	if r3.Dot(p.Normal, t.h) < 0. {
		sign = -1.
	}
	if t.PN <= 0. {
		sign = -sign
	}
	switch {
	case DNOM < 0.:
		CJK = math.Pi * sign
	case DNOM == 0.:
		CJK = math.Pi / 2. * sign
	}
	return
}

func (t *sideTerms) logTerm() (GL float64) {
	if math.Abs(t.A+t.B-t.S) > 0. {
		GL = 1. / t.S * math.Log(math.Abs((t.A+t.B+t.S)/(t.A+t.B-t.S)))
	}
	return
}

func (p *Panel4) farField(C r3.Vec) (PJK r3.Vec, PN, pjk float64) {
	PJK = r3.Sub(C, p.CollPt)
	PN = r3.Dot(PJK, p.Normal)
	pjk = r3.Norm(PJK)
	return
}

// SourcePotential returns the potential at C of a unit source density
func (p *Panel4) SourcePotential(C r3.Vec, coreRadius float64) (phi float64) {
	_, PN, pjk := p.farField(C)
	if pjk > RFF*p.MaxSize {
		return -p.Area / pjk
	}
	for i := 0; i < 4; i++ {
		t := p.side(i, C, PN)
		if t.degenerate {
			continue
		}
		if r3.Norm2(t.h)/(t.S*t.S) <= coreRadius*coreRadius &&
			r3.Dot(t.a, t.s) >= 0. && r3.Dot(t.b, t.s) <= 0. {
			continue
		}
		phi += t.Al*t.logTerm() - PN*p.solidAngle(&t)
	}
	return -phi
}

// SourceVelocity returns the velocity at C induced by a unit source density.
// The self-influence is the exterior limit of the normal velocity.
func (p *Panel4) SourceVelocity(C r3.Vec, self bool, coreRadius float64) (V r3.Vec) {
	if self {
		return r3.Scale(2.*math.Pi, p.Normal)
	}
	PJK, PN, pjk := p.farField(C)
	if pjk > RFF*p.MaxSize {
		return r3.Scale(p.Area/(pjk*pjk*pjk), PJK)
	}
	for i := 0; i < 4; i++ {
		t := p.side(i, C, PN)
		if t.degenerate {
			continue
		}
		if (r3.Norm2(t.h)/(t.S*t.S) <= coreRadius*coreRadius &&
			r3.Dot(t.a, t.s) >= 0. && r3.Dot(t.b, t.s) <= 0.) ||
			t.A < coreRadius || t.B < coreRadius {
			continue
		}
		var (
			GL  = t.logTerm()
			CJK = p.solidAngle(&t)
		)
		V = r3.Add(V, r3.Scale(CJK, p.Normal))
		V = r3.Add(V, r3.Scale(t.SM*GL, p.L))
		V = r3.Sub(V, r3.Scale(t.SL*GL, p.M))
	}
	return
}

// DoubletPotential returns the potential at C of a unit doublet density.
// The self-influence is the exterior limit 2.PI.
func (p *Panel4) DoubletPotential(C r3.Vec, self bool, coreRadius float64, useRFF bool) (phi float64) {
	if self {
		return 2. * math.Pi
	}
	_, PN, pjk := p.farField(C)
	if useRFF && pjk > RFF*p.MaxSize {
		return -PN * p.Area / (pjk * pjk * pjk)
	}
	for i := 0; i < 4; i++ {
		t := p.side(i, C, PN)
		if t.degenerate || t.A < coreRadius || t.B < coreRadius || t.onSide(coreRadius) {
			continue
		}
		phi += p.solidAngle(&t)
	}
	return -phi
}

// DoubletVelocity returns the velocity at C of a unit doublet density, using
// its equivalence with a vortex ring along the panel's contour.
func (p *Panel4) DoubletVelocity(C r3.Vec, coreRadius float64, useRFF bool) (V r3.Vec) {
	PJK, PN, pjk := p.farField(C)
	if useRFF && pjk > RFF*p.MaxSize {
		T1 := r3.Sub(r3.Scale(3.*PN, PJK), r3.Scale(pjk*pjk, p.Normal))
		return r3.Scale(p.Area/math.Pow(pjk, 5), T1)
	}
	for i := 0; i < 4; i++ {
		seg := geometry3D.SegmentVelocity(p.Node[i], p.Node[(i+1)%4], C, coreRadius)
		V = r3.Add(V, seg)
	}
	return r3.Scale(4.*math.Pi, V)
}

// DoubletVelocityN4023 is the closed form of DoubletVelocity without core
// smoothing, points within coreRadius of a side get no contribution from it.
func (p *Panel4) DoubletVelocityN4023(C r3.Vec, coreRadius float64, useRFF bool) (V r3.Vec) {
	PJK, PN, pjk := p.farField(C)
	if useRFF && pjk > RFF*p.MaxSize {
		T1 := r3.Sub(r3.Scale(3.*PN, PJK), r3.Scale(pjk*pjk, p.Normal))
		return r3.Scale(p.Area/math.Pow(pjk, 5), T1)
	}
	for i := 0; i < 4; i++ {
		t := p.side(i, C, PN)
		if t.degenerate || t.A < coreRadius || t.B < coreRadius || t.onSide(coreRadius) {
			continue
		}
		h := r3.Cross(t.a, t.b)
		GL := (t.A + t.B) / t.A / t.B / (t.A*t.B + r3.Dot(t.a, t.b))
		V = r3.Add(V, r3.Scale(GL, h))
	}
	return
}
