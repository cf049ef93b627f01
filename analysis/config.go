package analysis

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/wdf-nudtaa/flow5-sub004/geometry3D"
	"github.com/wdf-nudtaa/flow5-sub004/panels"
)

type Method uint8

const (
	VLM1 Method = iota // horseshoe vortices
	VLM2               // ring vortices
	PanelMethod        // source and doublet quads
)

func (m Method) String() string {
	switch m {
	case VLM1:
		return "VLM1"
	case VLM2:
		return "VLM2"
	case PanelMethod:
		return "PANEL4"
	}
	return fmt.Sprintf("Method(%d)", uint8(m))
}

type BC uint8

const (
	Neumann BC = iota
	Dirichlet
)

func (bc BC) String() string {
	if bc == Dirichlet {
		return "DIRICHLET"
	}
	return "NEUMANN"
}

const (
	// lift below which a trim is rejected
	PRECISION = 1.e-6
	// in-plane coincidence tolerance for wake columns
	INPLANEPRECISION = 1.e-10
	Gravity          = 9.81
)

// Config holds the immutable parameters of one analysis
type Config struct {
	Method Method
	BC     BC

	Density, Viscosity float64

	GroundEffect bool
	FreeSurface  bool
	GroundHeight float64

	TrefftzDistance float64
	// flat wake
	WakeStretch   float64
	WakeLength    float64
	NWakePanels   int
	AlignWakeToTE bool
	// vorton wake
	VortonWake       bool
	VortonStep       float64
	VortonCore       float64 // fraction of RefChord
	BufferWakeLength float64

	CoreRadius float64

	RefArea, RefChord float64
	RefSpan           float64 // lateral derivatives, zero for the span of the mesh

	MultiThread     bool
	DoublePrecision bool
	ProcLimit       int
}

func DefaultConfig() Config {
	return Config{
		Method:           PanelMethod,
		BC:               Dirichlet,
		Density:          1.225,
		Viscosity:        1.5e-5,
		TrefftzDistance:  100.,
		WakeStretch:      1.1,
		WakeLength:       10.,
		NWakePanels:      5,
		AlignWakeToTE:    true,
		VortonStep:       0.25,
		VortonCore:       0.05,
		BufferWakeLength: 0.25,
		CoreRadius:       geometry3D.CoreRadius,
		RefArea:          1.,
		RefChord:         1.,
		MultiThread:      true,
		DoublePrecision:  true,
	}
}

func (c Config) IsVLM() bool  { return c.Method == VLM1 || c.Method == VLM2 }
func (c Config) IsVLM1() bool { return c.Method == VLM1 }
func (c Config) IsVLM2() bool { return c.Method == VLM2 }

// HasImage is true when the ground or the free surface is modelled
func (c Config) HasImage() bool { return c.GroundEffect || c.FreeSurface }

// imageCoef is +1 for a ground plane, -1 for a free surface
func (c Config) imageCoef() float64 {
	if c.GroundEffect {
		return 1.
	}
	return -1.
}

func (c Config) Validate() error {
	switch {
	case c.Method > PanelMethod:
		return fmt.Errorf("unknown analysis method %d", c.Method)
	case c.Density <= 0:
		return fmt.Errorf("density must be positive, got %g", c.Density)
	case c.TrefftzDistance <= 0:
		return fmt.Errorf("Trefftz distance must be positive, got %g", c.TrefftzDistance)
	case c.GroundEffect && c.FreeSurface:
		return fmt.Errorf("ground effect and free surface are exclusive")
	case c.RefArea <= 0 || c.RefChord <= 0:
		return fmt.Errorf("reference area %g and chord %g must be positive", c.RefArea, c.RefChord)
	case c.RefSpan < 0:
		return fmt.Errorf("reference span must not be negative, got %g", c.RefSpan)
	case c.VortonWake && c.IsVLM1():
		return fmt.Errorf("vorton wake requires VLM2 or the panel method")
	case c.VortonWake && c.VortonStep <= 0:
		return fmt.Errorf("vorton step must be positive, got %g", c.VortonStep)
	case c.ProcLimit < 0:
		return fmt.Errorf("processor limit must not be negative, got %d", c.ProcLimit)
	}
	if !c.IsVLM() && !c.VortonWake {
		if c.NWakePanels < 1 || c.WakeStretch <= 0 || c.WakeLength <= 0 {
			return fmt.Errorf("invalid wake definition: %d panels, stretch %g, length %g",
				c.NWakePanels, c.WakeStretch, c.WakeLength)
		}
	}
	return nil
}

// collocation decides once, from the boundary condition and the method, where
// each row's condition is enforced and whether it is a normal velocity or a
// potential condition.
type collocation interface {
	Point(p *panels.Panel4) r3.Vec
	NormalVelocity(p *panels.Panel4) bool
}

// thick surfaces, zero normal velocity at the collocation point
type neumannBC struct{}

func (neumannBC) Point(p *panels.Panel4) r3.Vec      { return p.CollPt }
func (neumannBC) NormalVelocity(*panels.Panel4) bool { return true }

// thin surfaces, the control point at 3/4 chord
type vlmBC struct{}

func (vlmBC) Point(p *panels.Panel4) r3.Vec      { return p.CollocationPoint(p.IsMid()) }
func (vlmBC) NormalVelocity(*panels.Panel4) bool { return true }

// zero inner perturbation potential on thick surfaces, mid panels keep the
// velocity condition
type dirichletBC struct{}

func (dirichletBC) Point(p *panels.Panel4) r3.Vec        { return p.CollPt }
func (dirichletBC) NormalVelocity(p *panels.Panel4) bool { return p.IsMid() }

func newCollocation(c Config) collocation {
	switch {
	case c.IsVLM():
		return vlmBC{}
	case c.BC == Dirichlet:
		return dirichletBC{}
	}
	return neumannBC{}
}
