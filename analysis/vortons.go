package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/wdf-nudtaa/flow5-sub004/geometry3D"
)

// Vorton is a point vortex, Omega is the vortex direction times
// circulation times length
type Vorton struct {
	Position r3.Vec
	Omega    r3.Vec
}

// Velocity uses the Rosenhead-Moore smoothed kernel
func (v Vorton) Velocity(C r3.Vec, core float64) (V r3.Vec) {
	var (
		r  = r3.Sub(C, v.Position)
		r2 = r3.Norm2(r) + core*core
	)
	if r2 < geometry3D.LENGTHPRECISION*geometry3D.LENGTHPRECISION {
		return
	}
	V = r3.Scale(1./(4.*math.Pi*r2*math.Sqrt(r2)), r3.Cross(v.Omega, r))
	return
}

// Vortex is a straight vortex segment. NodeIndex are the vortons of a row
// at its two ends.
type Vortex struct {
	A, B        r3.Vec
	Circulation float64
	NodeIndex   [2]int
}

func (v Vortex) Velocity(C r3.Vec, core float64) r3.Vec {
	return r3.Scale(v.Circulation, geometry3D.SegmentVelocity(v.A, v.B, C, core))
}

// MakeVortons appends one row of vortons behind the wake columns, the row r
// being r*dl further downstream. The first row also makes the negating
// vortices that close the last wake panel of each column.
func (pa *PanelAnalysis) MakeVortons(dl float64) (err error) {
	if dl <= 0 {
		return fmt.Errorf("vorton step must be positive, got %g", dl)
	}
	var (
		row    []Vorton
		neg    []Vortex
		offset = dl/2. + float64(len(pa.Vortons))*dl
	)
	switch {
	case pa.IsVLM1():
		return fmt.Errorf("%s has no vorton wake", pa.Method)
	case pa.IsVLM2():
		row = pa.vlmVortonRow(dl, offset)
	default:
		if pa.Mesh.NWakePanels() == 0 {
			return fmt.Errorf("vortons require the buffer wake panels")
		}
		row, neg = pa.panelVortonRow(dl, offset)
	}
	if len(pa.Vortons) == 0 {
		pa.VortexNeg = neg
	}
	pa.Vortons = append(pa.Vortons, row)
	return
}

// panelVortonRow places two vortons per wake column. A doublet panel of
// density mu is equivalent to a vortex ring of circulation 4.PI.mu
func (pa *PanelAnalysis) panelVortonRow(dl, offset float64) (row []Vorton, neg []Vortex) {
	m := pa.Mesh
	for i := range m.Panels {
		p := &m.Panels[i]
		if !p.IsTrailing || p.IsTop() || p.IWake < 0 {
			continue
		}
		gamma := 4. * math.Pi * pa.Mu[i]
		if p.IsBottom() {
			gamma = 4. * math.Pi * (pa.Mu[m.NextTopTrailingPanel(i)] - pa.Mu[i])
		}
		var (
			pw       = &m.WakePanels[m.TrailingWakePanel(p.IWake)]
			lA, lB   = pw.LeftEdge()
			rA, rB   = pw.RightEdge()
			uL, uR   = r3.Unit(r3.Sub(lB, lA)), r3.Unit(r3.Sub(rB, rA))
			nVtn     = len(row)
			vtnLeft  = Vorton{Position: r3.Add(lB, r3.Scale(offset, uL)), Omega: r3.Scale(gamma*dl, uL)}
			vtnRight = Vorton{Position: r3.Add(rB, r3.Scale(offset, uR)), Omega: r3.Scale(-gamma*dl, uR)}
		)
		row = append(row, vtnLeft, vtnRight)
		neg = append(neg, Vortex{
			A:           pw.TA(),
			B:           pw.TB(),
			Circulation: -gamma,
			NodeIndex:   [2]int{nVtn, nVtn + 1},
		})
	}
	return
}

// vlmVortonRow places one vorton on each trailing leg of the rings, with the
// circulation difference of the strips on either side
func (pa *PanelAnalysis) vlmVortonRow(dl, offset float64) (row []Vorton) {
	var (
		m     = pa.Mesh
		gLeft float64
	)
	for i := range m.Panels {
		p := &m.Panels[i]
		if !pa.vlm2Trailing(p) {
			continue
		}
		if p.PL < 0 {
			gLeft = 0
		}
		var (
			gRight   = -pa.Mu[i]
			AA1, BB1 = extendedTrailingPoints(p)
		)
		row = append(row, Vorton{
			Position: r3.Add(AA1, r3.Scale(offset, geometry3D.X)),
			Omega:    r3.Scale((gRight-gLeft)*dl, geometry3D.X),
		})
		gLeft = gRight
		if p.PR < 0 {
			// wing tip
			row = append(row, Vorton{
				Position: r3.Add(BB1, r3.Scale(offset, geometry3D.X)),
				Omega:    r3.Scale(-gLeft*dl, geometry3D.X),
			})
			gLeft = 0
		}
	}
	return
}

func (pa *PanelAnalysis) NVortonRows() int { return len(pa.Vortons) }

// ClearVortons removes the vorton rows and the negating vortices
func (pa *PanelAnalysis) ClearVortons() {
	pa.Vortons, pa.VortexNeg = nil, nil
}

// VortonVelocity is the velocity induced at C by all the vortons and the
// negating vortices, with their images
func (pa *PanelAnalysis) VortonVelocity(C r3.Vec) (V r3.Vec) {
	var (
		core = pa.vortonCoreLength()
		CG   = pa.mirror(C)
	)
	for _, row := range pa.Vortons {
		for _, vtn := range row {
			V = r3.Add(V, vtn.Velocity(C, core))
			if pa.HasImage() {
				V = pa.withImage(V, vtn.Velocity(CG, core))
			}
		}
	}
	for _, vtx := range pa.VortexNeg {
		V = r3.Add(V, vtx.Velocity(C, pa.CoreRadius))
		if pa.HasImage() {
			V = pa.withImage(V, vtx.Velocity(CG, pa.CoreRadius))
		}
	}
	return
}

// VortonDrag estimates the induced drag from the downwash half way down the
// vorton rows, using the strip circulations of span.
func (pa *PanelAnalysis) VortonDrag(alpha, beta, qInf float64, span *SpanDistribution) (drag r3.Vec, err error) {
	switch {
	case pa.IsVLM():
		return drag, fmt.Errorf("vorton drag is only defined for panel analyses")
	case pa.NVortonRows() < 2:
		return drag, fmt.Errorf("vorton drag requires at least 2 vorton rows, got %d", pa.NVortonRows())
	case len(span.Gamma) != len(pa.VortexNeg):
		return drag, fmt.Errorf("%d strips for %d vortex columns", len(span.Gamma), len(pa.VortexNeg))
	}
	var (
		qDyn    = 0.5 * pa.Density * qInf * qInf
		winddir = geometry3D.WindDirection(alpha, beta)
		row     = pa.Vortons[pa.NVortonRows()/2]
	)
	for m, vtx := range pa.VortexNeg {
		var (
			P0, P1     = row[vtx.NodeIndex[0]].Position, row[vtx.NodeIndex[1]].Position
			vortex     = r3.Sub(P1, P0)
			vortexN    = r3.Cross(winddir, r3.Unit(vortex))
			Wg         = r3.Scale(0.5, pa.VortonVelocity(geometry3D.Mid(P0, P1)))
			stripforce = r3.Scale(span.Gamma[m]*2./qInf/qInf, r3.Cross(Wg, vortex))
		)
		drag = r3.Add(drag, stripforce)
		span.ICd[m] = r3.Dot(stripforce, winddir) / span.StripArea[m]
		span.F[m] = r3.Add(span.F[m], r3.Scale(qDyn, stripforce))
		span.Vd[m] = Wg
		span.Ai[m] = geometry3D.Degrees(math.Atan2(r3.Dot(Wg, vortexN), qInf))
	}
	return
}
