package analysis

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/wdf-nudtaa/flow5-sub004/geometry3D"
	"github.com/wdf-nudtaa/flow5-sub004/panels"
)

// MakeWakePanels sheds one column of n flat wake panels from each bottom or
// mid trailing panel. Panel lengths grow by factor downstream. With
// alignToTE, each column ends at x = totalLength, otherwise each column is
// totalLength long. Columns are stored contiguously, column c row r at c*n+r.
// The mesh is left unchanged on error.
func (pa *PanelAnalysis) MakeWakePanels(n int, factor, totalLength float64, windDir r3.Vec,
	alignToTE bool) (nColumns int, err error) {
	var (
		m = pa.Mesh
	)
	switch {
	case n < 1:
		err = &panels.GeometryError{Op: "wake", Msg: fmt.Sprintf("%d wake panels per column", n)}
	case factor <= 0:
		err = &panels.GeometryError{Op: "wake", Msg: fmt.Sprintf("wake progression factor %g", factor)}
	case r3.Norm(windDir) < geometry3D.LENGTHPRECISION:
		err = &panels.GeometryError{Op: "wake", Msg: "degenerate wind direction"}
	}
	if err != nil {
		return
	}
	windDir = r3.Unit(windDir)

	var (
		series, ratio = 0., 1.
		wake          []panels.Panel4
		iWake         = make([]panels.PanelID, m.NPanels())
		column        = make([]int, m.NPanels())
	)
	for i := 0; i < n; i++ {
		series += ratio
		ratio *= factor
	}
	for i := range iWake {
		iWake[i], column[i] = panels.NoPanel, -1
	}
	for i := range m.Panels {
		p := &m.Panels[i]
		if !p.IsTrailing || p.IsTop() {
			continue
		}
		var (
			Tl, Tr   = p.LeftTrailingNode(), p.RightTrailingNode()
			l0l, l0r = totalLength / series, totalLength / series
		)
		if alignToTE {
			l0l, l0r = (totalLength-Tl.X)/series, (totalLength-Tr.X)/series
		}
		if l0l <= 0 || l0r <= 0 {
			err = &panels.GeometryError{Op: "wake",
				Msg: fmt.Sprintf("panel %d: trailing edge is downstream of the wake end", i)}
			return 0, err
		}
		iWake[i], column[i] = len(wake), nColumns
		for r := 0; r < n; r++ {
			var (
				Tl1 = r3.Add(Tl, r3.Scale(l0l, windDir))
				Tr1 = r3.Add(Tr, r3.Scale(l0r, windDir))
				pw  = panels.Panel4{}
				mw  = len(wake)
			)
			l0l *= factor
			l0r *= factor
			// wake panels keep the orientation of mid panels, normal upwards
			if p.IsBottom() {
				pw.SetFrame(Tl, Tr, Tl1, Tr1)
			} else {
				pw.SetFrame(Tr, Tl, Tr1, Tl1)
			}
			pw.Index, pw.Pos, pw.IsWake = mw, panels.Mid, true
			pw.IsLeftWing = p.IsLeftWing
			pw.SurfaceIndex = p.SurfaceIndex
			pw.IWake, pw.WakeColumn = panels.NoPanel, nColumns
			pw.PU, pw.PD, pw.PL, pw.PR = panels.NoPanel, panels.NoPanel, panels.NoPanel, panels.NoPanel
			if r > 0 {
				pw.PU = mw - 1
			}
			if r < n-1 {
				pw.PD = mw + 1
			}
			wake = append(wake, pw)
			Tl, Tr = Tl1, Tr1
		}
		nColumns++
	}
	// top trailing panels share the column of the bottom panel of their strip
	for i := range m.Panels {
		if !m.Panels[i].IsBottom() || !m.Panels[i].IsTrailing {
			continue
		}
		if it := m.NextTopTrailingPanel(i); it >= 0 && m.Panels[it].IsTrailing {
			iWake[it], column[it] = iWake[i], column[i]
		}
	}
	linkWakeColumns(wake, n, nColumns)

	for i := range m.Panels {
		m.Panels[i].IWake, m.Panels[i].WakeColumn = iWake[i], column[i]
	}
	m.WakePanels = wake
	m.NStations = nColumns
	pa.logger.WithFields(log.Fields{"columns": nColumns, "rows": n}).Debug("wake panels")
	return
}

// linkWakeColumns connects the panels of the same row in adjacent columns
// that share their lateral edge
func linkWakeColumns(wake []panels.Panel4, n, nColumns int) {
	for c := 0; c < nColumns; c++ {
		for c1 := 0; c1 < nColumns; c1++ {
			if c1 == c {
				continue
			}
			first, next := &wake[c*n], &wake[c1*n]
			if !geometry3D.IsSame(first.LB(), next.LA(), geometry3D.LENGTHPRECISION) {
				continue
			}
			for r := 0; r < n; r++ {
				wake[c*n+r].PR = c1*n + r
				wake[c1*n+r].PL = c*n + r
			}
		}
	}
}

// BuildWake makes the flat wake of the configuration, or the short buffer
// wake that precedes the vortons.
func (pa *PanelAnalysis) BuildWake() (err error) {
	if pa.IsVLM() {
		return
	}
	if pa.VortonWake {
		_, err = pa.MakeWakePanels(3, 1., pa.BufferWakeLength, geometry3D.X, false)
		return
	}
	xEnd := pa.Mesh.LastTrailingPoint().X + pa.WakeLength
	_, err = pa.MakeWakePanels(pa.NWakePanels, pa.WakeStretch, xEnd, geometry3D.X, pa.AlignWakeToTE)
	return
}

// WakeColumnLength is the length of the column starting at iw
func (pa *PanelAnalysis) WakeColumnLength(iw panels.PanelID) (l float64) {
	m := pa.Mesh
	for n := 0; n <= m.NWakePanels() && iw >= 0; n++ {
		pw := &m.WakePanels[iw]
		l += r3.Norm(r3.Sub(geometry3D.Mid(pw.TA(), pw.TB()), geometry3D.Mid(pw.LA(), pw.LB())))
		iw = pw.PD
	}
	return
}
