package panels

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/wdf-nudtaa/flow5-sub004/geometry3D"
)

// WingSpec describes a straight rectangular wing with a symmetric NACA 4
// digit section. Thickness is the relative thickness, zero for a thin
// surface made of mid panels.
type WingSpec struct {
	Span, Chord   float64
	NChord, NSpan int
	Thickness     float64
	Z0            float64 // height of the chord plane
	X0            float64 // leading edge position
	Incidence     float64 // degrees, positive nose up, about the leading edge
}

func (ws WingSpec) Validate() error {
	switch {
	case ws.Span <= 0 || ws.Chord <= 0:
		return &GeometryError{"planform", fmt.Sprintf("span %g and chord %g must be positive", ws.Span, ws.Chord)}
	case ws.NChord < 1 || ws.NSpan < 1:
		return &GeometryError{"planform", fmt.Sprintf("panel counts %d x %d must be positive", ws.NChord, ws.NSpan)}
	case ws.Thickness < 0 || ws.Thickness > 0.4:
		return &GeometryError{"planform", fmt.Sprintf("relative thickness %g out of range", ws.Thickness)}
	case math.Abs(ws.Incidence) >= 45:
		return &GeometryError{"planform", fmt.Sprintf("incidence %g out of range", ws.Incidence)}
	}
	return nil
}

// halfThickness is the NACA 00xx thickness distribution, closed trailing edge
func (ws WingSpec) halfThickness(x float64) float64 {
	xc := x / ws.Chord
	if xc < 0 {
		xc = 0
	}
	return 5. * ws.Thickness * ws.Chord *
		(0.2969*math.Sqrt(xc) - 0.1260*xc - 0.3516*xc*xc + 0.2843*xc*xc*xc - 0.1036*xc*xc*xc*xc)
}

// NewRectangularWing builds the panels of the wing. In each spanwise strip,
// panel indices increase from the trailing edge towards the leading edge, and
// for thick wings continue around the leading edge to the top trailing edge.
func NewRectangularWing(ws WingSpec) (m *Mesh, err error) {
	if err = ws.Validate(); err != nil {
		return
	}
	var (
		thick    = ws.Thickness > 0
		nc, ns   = ws.NChord, ws.NSpan
		perStrip = nc
		x        = make([]float64, nc+1)
		y        = make([]float64, ns+1)
		ci, si   = math.Cos(geometry3D.Radians(ws.Incidence)), math.Sin(geometry3D.Radians(ws.Incidence))
	)
	if thick {
		perStrip = 2 * nc
	}
	for i := 0; i <= nc; i++ {
		// cosine spacing
		x[i] = ws.X0 + ws.Chord/2.*(1.-math.Cos(math.Pi*float64(i)/float64(nc)))
	}
	for j := 0; j <= ns; j++ {
		y[j] = -ws.Span/2. + ws.Span*float64(j)/float64(ns)
	}
	pt := func(i, j int, pos Position) r3.Vec {
		var (
			dx = x[i] - ws.X0
			dz float64
		)
		switch pos {
		case Top:
			dz = ws.halfThickness(dx)
		case Bottom:
			dz = -ws.halfThickness(dx)
		}
		return r3.Vec{X: ws.X0 + dx*ci + dz*si, Y: y[j], Z: ws.Z0 - dx*si + dz*ci}
	}
	panels := make([]Panel4, 0, perStrip*ns)
	for j := 0; j < ns; j++ {
		base := j * perStrip
		for k := 0; k < perStrip; k++ {
			var (
				p    *Panel4
				iSeg int
				pos  = Mid
			)
			switch {
			case !thick:
				iSeg = nc - 1 - k
			case k < nc:
				iSeg, pos = nc-1-k, Bottom
			default:
				iSeg, pos = k-nc, Top
			}
			if pos == Bottom {
				// mirrored so that the normal points outwards
				p = NewPanel4(pt(iSeg, j+1, pos), pt(iSeg, j, pos), pt(iSeg+1, j+1, pos), pt(iSeg+1, j, pos))
			} else {
				p = NewPanel4(pt(iSeg, j, pos), pt(iSeg, j+1, pos), pt(iSeg+1, j, pos), pt(iSeg+1, j+1, pos))
			}
			p.Pos = pos
			p.IsLeftWing = (y[j]+y[j+1])/2. < 0
			p.SurfaceIndex = 0
			if k+1 < perStrip {
				p.PU = base + k + 1
			}
			if k > 0 {
				p.PD = base + k - 1
			}
			var left, right PanelID = NoPanel, NoPanel
			if j > 0 {
				left = base - perStrip + k
			}
			if j < ns-1 {
				right = base + perStrip + k
			}
			if pos == Bottom {
				p.PL, p.PR = right, left
			} else {
				p.PL, p.PR = left, right
			}
			switch pos {
			case Mid:
				p.IsTrailing = k == 0
				p.IsLeading = k == nc-1
			case Bottom:
				p.IsTrailing = k == 0
				p.IsLeading = k == nc-1
			case Top:
				p.IsTrailing = k == perStrip-1
				p.IsLeading = k == nc
			}
			panels = append(panels, *p)
		}
	}
	m = NewMesh(panels)
	return
}

// Merge concatenates the body panels of several meshes, the neighbour links
// of each are offset by the panels that precede it. Wake panels are dropped.
func Merge(meshes ...*Mesh) (m *Mesh) {
	var (
		panels []Panel4
		offset int
	)
	shift := func(i PanelID) PanelID {
		if i < 0 {
			return NoPanel
		}
		return i + offset
	}
	for n, mm := range meshes {
		for _, p := range mm.Panels {
			p.PU, p.PD, p.PL, p.PR = shift(p.PU), shift(p.PD), shift(p.PL), shift(p.PR)
			p.IWake, p.WakeColumn = NoPanel, -1
			p.SurfaceIndex = n
			panels = append(panels, p)
		}
		offset += mm.NPanels()
	}
	return NewMesh(panels)
}
