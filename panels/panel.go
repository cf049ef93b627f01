package panels

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/wdf-nudtaa/flow5-sub004/geometry3D"
)

// PanelID indexes a panel in its arena, NoPanel marks a missing neighbour
type PanelID = int

const NoPanel PanelID = -1

type Position uint8

const (
	Bottom Position = iota
	Mid
	Top
)

func (p Position) String() string {
	return [...]string{"BOTTOM", "MID", "TOP"}[p]
}

const (
	VortexFracPos = 0.25
	CtrlFracPos   = 0.75
	// Far field factor: beyond RFF*MaxSize the kernels use the point
	// singularity approximation
	RFF = 10.
	// Nodes closer than this are merged for the collocation point
	NodeMergeTol = 0.001
)

// Panel4 is a quadrilateral panel. Node order is LA, TA, TB, LB.
type Panel4 struct {
	Index    PanelID
	Node     [4]r3.Vec
	Normal   r3.Vec
	Area     float64
	VA, VB   r3.Vec // bound vortex end points, 1/4 chord
	CtrlPt   r3.Vec // 3/4 chord
	CollPt   r3.Vec
	L, M     r3.Vec // local frame is (L, M, Normal)
	SMP, SMQ float64
	MaxSize  float64

	Pos          Position
	IsTrailing   bool
	IsLeading    bool
	IsLeftWing   bool
	IsWake       bool
	InSymPlane   bool
	PU, PD       PanelID
	PL, PR       PanelID
	IWake        PanelID // first wake panel of the column shed by this panel
	WakeColumn   int
	SurfaceIndex int
}

func NewPanel4(LA, LB, TA, TB r3.Vec) (p *Panel4) {
	p = &Panel4{
		PU: NoPanel, PD: NoPanel, PL: NoPanel, PR: NoPanel,
		IWake: NoPanel, WakeColumn: -1, Pos: Mid,
	}
	p.SetFrame(LA, LB, TA, TB)
	return
}

// SetFrame stores the nodes and computes the panel's geometric properties
func (p *Panel4) SetFrame(LA, LB, TA, TB r3.Vec) {
	var (
		LATB = r3.Sub(TB, LA)
		TALB = r3.Sub(LB, TA)
		lerp = func(a, b r3.Vec, f float64) r3.Vec {
			return r3.Add(r3.Scale(1.-f, a), r3.Scale(f, b))
		}
	)
	p.InSymPlane = isNull(LA.Y) && isNull(LB.Y) && isNull(TA.Y) && isNull(TB.Y)
	p.Node = [4]r3.Vec{LA, TA, TB, LB}

	p.Normal = r3.Cross(LATB, TALB)
	p.Area = r3.Norm(p.Normal) / 2.
	p.Normal = r3.Unit(p.Normal)

	p.VA = lerp(LA, TA, VortexFracPos)
	p.VB = lerp(LB, TB, VortexFracPos)
	p.CtrlPt = geometry3D.Mid(lerp(LA, TA, CtrlFracPos), lerp(LB, TB, CtrlFracPos))

	nv := 1.
	p.CollPt = LA
	if !geometry3D.IsSame(LB, LA, NodeMergeTol) {
		p.CollPt = r3.Add(p.CollPt, LB)
		nv++
	}
	if !geometry3D.IsSame(TB, LB, NodeMergeTol) {
		p.CollPt = r3.Add(p.CollPt, TB)
		nv++
	}
	if !geometry3D.IsSame(TA, TB, NodeMergeTol) {
		p.CollPt = r3.Add(p.CollPt, TA)
		nv++
	}
	p.CollPt = r3.Scale(1./nv, p.CollPt)

	smq := r3.Sub(geometry3D.Mid(LB, TB), p.CollPt)
	smp := r3.Sub(geometry3D.Mid(TB, TA), p.CollPt)
	p.M = r3.Unit(smq)
	p.L = r3.Cross(p.M, p.Normal)
	p.SMQ = r3.Norm(smq)
	p.SMP = r3.Norm(smp)
	p.MaxSize = max(p.SMP, p.SMQ)
}

func isNull(x float64) bool { return x < 1.e-5 && x > -1.e-5 }

func (p *Panel4) LA() r3.Vec { return p.Node[0] }
func (p *Panel4) TA() r3.Vec { return p.Node[1] }
func (p *Panel4) TB() r3.Vec { return p.Node[2] }
func (p *Panel4) LB() r3.Vec { return p.Node[3] }

func (p *Panel4) IsMid() bool    { return p.Pos == Mid }
func (p *Panel4) IsTop() bool    { return p.Pos == Top }
func (p *Panel4) IsBottom() bool { return p.Pos == Bottom }

// CoG is the collocation point
func (p *Panel4) CoG() r3.Vec { return p.CollPt }

// CollocationPoint is the control point for VLM analyses, the collocation point otherwise
func (p *Panel4) CollocationPoint(isVLM bool) r3.Vec {
	if isVLM {
		return p.CtrlPt
	}
	return p.CollPt
}

// TrailingVortex is the bound vortex vector
func (p *Panel4) TrailingVortex() r3.Vec { return r3.Sub(p.VB, p.VA) }

func (p *Panel4) VortexPosition() r3.Vec { return geometry3D.Mid(p.VA, p.VB) }

// LeftTrailingNode and RightTrailingNode assume the orientation of a bottom
// panel, mid panels swap them.
func (p *Panel4) LeftTrailingNode() r3.Vec  { return p.Node[2] }
func (p *Panel4) RightTrailingNode() r3.Vec { return p.Node[1] }

// LeftEdge and RightEdge of a wake panel, oriented downstream
func (p *Panel4) LeftEdge() (A, B r3.Vec)  { return p.Node[0], p.Node[1] }
func (p *Panel4) RightEdge() (A, B r3.Vec) { return p.Node[3], p.Node[2] }

// SurfaceNormal is the normal of the mean surface, upward for both sides
func (p *Panel4) SurfaceNormal() r3.Vec {
	if p.IsBottom() {
		return r3.Scale(-1, p.Normal)
	}
	return p.Normal
}

func (p *Panel4) GlobalToLocal(V r3.Vec) r3.Vec {
	return r3.Vec{X: r3.Dot(V, p.L), Y: r3.Dot(V, p.M), Z: r3.Dot(V, p.Normal)}
}

func (p *Panel4) String() string {
	return fmt.Sprintf("Panel %d [%s] area=%.5g trailing=%v leading=%v U/D/L/R=%d/%d/%d/%d wake=%d",
		p.Index, p.Pos, p.Area, p.IsTrailing, p.IsLeading, p.PU, p.PD, p.PL, p.PR, p.IWake)
}
