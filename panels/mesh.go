package panels

import (
	"fmt"
	"math"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/wdf-nudtaa/flow5-sub004/geometry3D"
)

// GeometryError is a recoverable failure of a topology operation, the mesh
// is left unchanged.
type GeometryError struct {
	Op, Msg string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

// Mesh is the arena of body panels and of the wake panels shed from them.
// Neighbour and wake links are indices into Panels and WakePanels.
type Mesh struct {
	Panels     []Panel4
	WakePanels []Panel4
	NStations  int // number of wake columns
}

func NewMesh(panels []Panel4) (m *Mesh) {
	m = &Mesh{Panels: panels}
	for i := range m.Panels {
		m.Panels[i].Index = i
	}
	return
}

func (m *Mesh) NPanels() int     { return len(m.Panels) }
func (m *Mesh) NWakePanels() int { return len(m.WakePanels) }

func (m *Mesh) Clone() (c *Mesh) {
	c = &Mesh{
		Panels:     make([]Panel4, len(m.Panels)),
		WakePanels: make([]Panel4, len(m.WakePanels)),
		NStations:  m.NStations,
	}
	copy(c.Panels, m.Panels)
	copy(c.WakePanels, m.WakePanels)
	return
}

// Permute returns a copy of the body mesh with panel i moved to perm[i].
// Wake panels are dropped and must be rebuilt.
func (m *Mesh) Permute(perm []int) (c *Mesh, err error) {
	var (
		N    = m.NPanels()
		seen = make([]bool, N)
	)
	if len(perm) != N {
		err = &GeometryError{"permute", fmt.Sprintf("permutation length %d, mesh has %d panels", len(perm), N)}
		return
	}
	for _, j := range perm {
		if j < 0 || j >= N || seen[j] {
			err = &GeometryError{"permute", "not a permutation"}
			return
		}
		seen[j] = true
	}
	remap := func(i PanelID) PanelID {
		if i < 0 {
			return NoPanel
		}
		return perm[i]
	}
	c = &Mesh{Panels: make([]Panel4, N)}
	for i := range m.Panels {
		p := m.Panels[i]
		p.Index = perm[i]
		p.PU, p.PD, p.PL, p.PR = remap(p.PU), remap(p.PD), remap(p.PL), remap(p.PR)
		p.IWake, p.WakeColumn = NoPanel, -1
		c.Panels[perm[i]] = p
	}
	return
}

// NextTopTrailingPanel walks upstream from a bottom trailing panel, around
// the leading edge, to the top trailing panel of the same strip.
func (m *Mesh) NextTopTrailingPanel(i PanelID) PanelID {
	if !m.Panels[i].IsBottom() {
		return NoPanel
	}
	for n := 0; n <= m.NPanels(); n++ {
		if m.Panels[i].PU < 0 {
			return i
		}
		i = m.Panels[i].PU
	}
	return NoPanel
}

// TrailingWakePanel returns the last panel of the wake column starting at iw
func (m *Mesh) TrailingWakePanel(iw PanelID) PanelID {
	for n := 0; n <= m.NWakePanels(); n++ {
		if m.WakePanels[iw].PD < 0 {
			break
		}
		iw = m.WakePanels[iw].PD
	}
	return iw
}

// MidWakePoint is the middle of the wake column starting at iw
func (m *Mesh) MidWakePoint(iw PanelID) r3.Vec {
	var (
		first   = &m.WakePanels[iw]
		leading = geometry3D.Mid(first.LA(), first.LB())
	)
	return geometry3D.Mid(leading, m.TrailingWakePoint(iw))
}

// TrailingWakePoint is the middle of the downstream edge of the column
func (m *Mesh) TrailingWakePoint(iw PanelID) r3.Vec {
	last := &m.WakePanels[m.TrailingWakePanel(iw)]
	return geometry3D.Mid(last.TA(), last.TB())
}

// LastTrailingPoint is the most downstream trailing-edge node
func (m *Mesh) LastTrailingPoint() (pt r3.Vec) {
	pt.X = -math.MaxFloat64
	for i := range m.Panels {
		p := &m.Panels[i]
		if !p.IsTrailing {
			continue
		}
		for _, n := range []r3.Vec{p.TA(), p.TB()} {
			if n.X > pt.X {
				pt = n
			}
		}
	}
	if pt.X == -math.MaxFloat64 {
		pt = r3.Vec{}
	}
	return
}

// Adjacency is the sparse panel connectivity, a(i,j) = 1 when j is one of
// the neighbours of i.
func (m *Mesh) Adjacency() *sparse.CSR {
	N := m.NPanels()
	dok := sparse.NewDOK(N, N)
	for i := range m.Panels {
		p := &m.Panels[i]
		for _, j := range [4]PanelID{p.PU, p.PD, p.PL, p.PR} {
			if j >= 0 && j < N && j != i {
				dok.Set(i, j, 1)
			}
		}
	}
	return dok.ToCSR()
}

type Side uint8

const (
	SideU Side = iota
	SideD
	SideL
	SideR
)

type Edge struct {
	Panel PanelID
	Side  Side
	A, B  r3.Vec
}

// edge returns the nodes of the panel's side facing the neighbour slot.
// Top panels are connected in the reverse chordwise direction.
func (p *Panel4) edge(s Side) (A, B r3.Vec) {
	if p.IsTop() {
		switch s {
		case SideU:
			s = SideD
		case SideD:
			s = SideU
		}
	}
	switch s {
	case SideU:
		return p.LB(), p.LA()
	case SideD:
		return p.TA(), p.TB()
	case SideL:
		return p.LA(), p.TA()
	default:
		return p.TB(), p.LB()
	}
}

// FreeEdges returns the panel edges with no neighbour. Connections that are
// not reciprocal are reported as an error.
func (m *Mesh) FreeEdges() (edges []Edge, err error) {
	var (
		adj = m.Adjacency()
		bad []string
	)
	adj.DoNonZero(func(i, j int, v float64) {
		if adj.At(j, i) == 0 {
			bad = append(bad, fmt.Sprintf("%d->%d", i, j))
		}
	})
	if len(bad) != 0 {
		err = &GeometryError{"free edges", fmt.Sprintf("non reciprocal connections %v", bad)}
		return
	}
	for i := range m.Panels {
		p := &m.Panels[i]
		for s, j := range [4]PanelID{p.PU, p.PD, p.PL, p.PR} {
			if j < 0 {
				A, B := p.edge(Side(s))
				edges = append(edges, Edge{Panel: i, Side: Side(s), A: A, B: B})
			}
		}
	}
	if len(edges) == 0 {
		err = &GeometryError{"free edges", "no free edges found"}
	}
	return
}

// NormalizeTrailingEdges rotates the node ring of each trailing panel so that
// its most downstream side is TA-TB, then rebuilds the panel frames. The mesh
// is unchanged if any trailing edge is degenerate.
func (m *Mesh) NormalizeTrailingEdges() (nChanged int, err error) {
	var (
		updated = make(map[int]Panel4)
	)
	for i := range m.Panels {
		p := m.Panels[i]
		if !p.IsTrailing {
			continue
		}
		var (
			kMax = 0
			xMax = -math.MaxFloat64
		)
		for k := 0; k < 4; k++ {
			x := (p.Node[k].X + p.Node[(k+1)%4].X) / 2.
			if x > xMax+geometry3D.LENGTHPRECISION {
				xMax, kMax = x, k
			}
		}
		n1, n2 := p.Node[kMax], p.Node[(kMax+1)%4]
		if geometry3D.IsSame(n1, n2, geometry3D.LENGTHPRECISION) {
			err = &GeometryError{"normalize trailing edges",
				fmt.Sprintf("panel %d: trailing nodes coincide", i)}
			return 0, err
		}
		if kMax == 1 {
			continue
		}
		var node [4]r3.Vec
		for j := 0; j < 4; j++ {
			node[j] = p.Node[(j+kMax+3)%4]
		}
		p.SetFrame(node[0], node[3], node[1], node[2])
		p.rotateNeighbours(kMax - 1)
		updated[i] = p
	}
	for i, p := range updated {
		m.Panels[i] = p
	}
	nChanged = len(updated)
	return
}

// edge index (side Node[e]-Node[e+1]) facing each neighbour slot U, D, L, R
var slotEdge = [2][4]int{{3, 1, 0, 2}, {1, 3, 0, 2}}

// rotateNeighbours moves the neighbour links along with a node ring rotation
// by r positions.
func (p *Panel4) rotateNeighbours(r int) {
	var (
		se  = slotEdge[0]
		old = [4]PanelID{p.PU, p.PD, p.PL, p.PR}
		nbr [4]PanelID
	)
	if p.IsTop() {
		se = slotEdge[1]
	}
	edgeSlot := [4]int{}
	for slot, e := range se {
		edgeSlot[e] = slot
	}
	for slot, e := range se {
		nbr[slot] = old[edgeSlot[(e+r+4)%4]]
	}
	p.PU, p.PD, p.PL, p.PR = nbr[0], nbr[1], nbr[2], nbr[3]
}
