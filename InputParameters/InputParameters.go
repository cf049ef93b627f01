package InputParameters

import (
	"fmt"
	"strings"

	"github.com/ghodss/yaml"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/wdf-nudtaa/flow5-sub004/analysis"
	"github.com/wdf-nudtaa/flow5-sub004/panels"
)

// WingParameters describes one rectangular lifting surface
type WingParameters struct {
	Name      string  `json:"Name"`
	Span      float64 `json:"Span"`
	Chord     float64 `json:"Chord"`
	NChord    int     `json:"NChord"`
	NSpan     int     `json:"NSpan"`
	Thickness float64 `json:"Thickness"`
	X0        float64 `json:"X0"`
	Z0        float64 `json:"Z0"`
	Incidence float64 `json:"Incidence"`
}

// Parameters obtained from the YAML input file. ghodss/yaml converts the
// document to JSON first, hence the json tags.
type AnalysisParameters struct {
	Title           string           `json:"Title"`
	Method          string           `json:"Method"` // VLM1, VLM2 or PANEL4
	BC              string           `json:"BC"`     // NEUMANN or DIRICHLET
	Density         float64          `json:"Density"`
	Viscosity       float64          `json:"Viscosity"`
	GroundEffect    bool             `json:"GroundEffect"`
	FreeSurface     bool             `json:"FreeSurface"`
	GroundHeight    float64          `json:"GroundHeight"`
	TrefftzDistance float64          `json:"TrefftzDistance"`
	NWakePanels     int              `json:"NWakePanels"`
	WakeStretch     float64          `json:"WakeStretch"`
	WakeLength      float64          `json:"WakeLength"`
	AlignWakeToTE   bool             `json:"AlignWakeToTE"`
	VortonWake      bool             `json:"VortonWake"`
	VortonStep      float64          `json:"VortonStep"`
	VortonCore      float64          `json:"VortonCore"`
	BufferWake      float64          `json:"BufferWakeLength"`
	CoreRadius      float64          `json:"CoreRadius"`
	RefArea         float64          `json:"RefArea"`
	RefChord        float64          `json:"RefChord"`
	RefSpan         float64          `json:"RefSpan"` // 0 for the span of the mesh
	Threads         int              `json:"Threads"` // 0 for all cores, 1 runs single threaded
	SinglePrecision bool             `json:"SinglePrecision"`
	Alphas          []float64        `json:"Alphas"`
	CoG             [3]float64       `json:"CoG"`
	Mass            float64          `json:"Mass"`
	Wings           []WingParameters `json:"Wings"`
}

// NewAnalysisParameters returns the defaults that a parameter file overrides
func NewAnalysisParameters() (ap *AnalysisParameters) {
	cfg := analysis.DefaultConfig()
	ap = &AnalysisParameters{
		Title:           "Untitled",
		Method:          cfg.Method.String(),
		BC:              cfg.BC.String(),
		Density:         cfg.Density,
		Viscosity:       cfg.Viscosity,
		TrefftzDistance: cfg.TrefftzDistance,
		NWakePanels:     cfg.NWakePanels,
		WakeStretch:     cfg.WakeStretch,
		WakeLength:      cfg.WakeLength,
		AlignWakeToTE:   cfg.AlignWakeToTE,
		VortonStep:      cfg.VortonStep,
		VortonCore:      cfg.VortonCore,
		BufferWake:      cfg.BufferWakeLength,
		CoreRadius:      cfg.CoreRadius,
		Alphas:          []float64{0},
	}
	return
}

func (ap *AnalysisParameters) Parse(data []byte) (err error) {
	if err = yaml.Unmarshal(data, ap); err != nil {
		return fmt.Errorf("parsing analysis parameters: %w", err)
	}
	return ap.Validate()
}

func (ap *AnalysisParameters) Validate() error {
	if len(ap.Wings) == 0 {
		return fmt.Errorf("at least one wing is required")
	}
	for i, w := range ap.Wings {
		if err := w.spec().Validate(); err != nil {
			return fmt.Errorf("wing %d %q: %w", i, w.Name, err)
		}
	}
	if ap.Threads < 0 {
		return fmt.Errorf("thread count must not be negative, got %d", ap.Threads)
	}
	_, err := ap.Config()
	return err
}

func (w WingParameters) spec() panels.WingSpec {
	return panels.WingSpec{
		Span: w.Span, Chord: w.Chord, NChord: w.NChord, NSpan: w.NSpan,
		Thickness: w.Thickness, X0: w.X0, Z0: w.Z0, Incidence: w.Incidence,
	}
}

func parseMethod(s string) (m analysis.Method, err error) {
	switch strings.ToUpper(s) {
	case "VLM1":
		m = analysis.VLM1
	case "VLM2":
		m = analysis.VLM2
	case "PANEL4", "PANEL":
		m = analysis.PanelMethod
	default:
		err = fmt.Errorf("unknown analysis method %q", s)
	}
	return
}

func parseBC(s string) (bc analysis.BC, err error) {
	switch strings.ToUpper(s) {
	case "NEUMANN":
		bc = analysis.Neumann
	case "DIRICHLET":
		bc = analysis.Dirichlet
	default:
		err = fmt.Errorf("unknown boundary condition %q", s)
	}
	return
}

// Config converts the parameters into an analysis configuration. The
// reference area and chord default to the first wing's.
func (ap *AnalysisParameters) Config() (cfg analysis.Config, err error) {
	cfg = analysis.DefaultConfig()
	if cfg.Method, err = parseMethod(ap.Method); err != nil {
		return
	}
	if cfg.BC, err = parseBC(ap.BC); err != nil {
		return
	}
	cfg.Density, cfg.Viscosity = ap.Density, ap.Viscosity
	cfg.GroundEffect, cfg.FreeSurface, cfg.GroundHeight = ap.GroundEffect, ap.FreeSurface, ap.GroundHeight
	cfg.TrefftzDistance = ap.TrefftzDistance
	cfg.NWakePanels, cfg.WakeStretch, cfg.WakeLength = ap.NWakePanels, ap.WakeStretch, ap.WakeLength
	cfg.AlignWakeToTE = ap.AlignWakeToTE
	cfg.VortonWake, cfg.VortonStep, cfg.VortonCore = ap.VortonWake, ap.VortonStep, ap.VortonCore
	cfg.BufferWakeLength = ap.BufferWake
	cfg.CoreRadius = ap.CoreRadius
	cfg.RefArea, cfg.RefChord, cfg.RefSpan = ap.RefArea, ap.RefChord, ap.RefSpan
	if len(ap.Wings) > 0 {
		if cfg.RefArea == 0 {
			cfg.RefArea = ap.Wings[0].Span * ap.Wings[0].Chord
		}
		if cfg.RefChord == 0 {
			cfg.RefChord = ap.Wings[0].Chord
		}
	}
	cfg.MultiThread = ap.Threads != 1
	cfg.ProcLimit = ap.Threads
	cfg.DoublePrecision = !ap.SinglePrecision
	err = cfg.Validate()
	return
}

// Mesh builds the wings and merges them in input order
func (ap *AnalysisParameters) Mesh() (m *panels.Mesh, err error) {
	meshes := make([]*panels.Mesh, len(ap.Wings))
	for i, w := range ap.Wings {
		if meshes[i], err = panels.NewRectangularWing(w.spec()); err != nil {
			return nil, fmt.Errorf("wing %d %q: %w", i, w.Name, err)
		}
	}
	m = panels.Merge(meshes...)
	return
}

func (ap *AnalysisParameters) CenterOfGravity() r3.Vec {
	return r3.Vec{X: ap.CoG[0], Y: ap.CoG[1], Z: ap.CoG[2]}
}

func (ap *AnalysisParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ap.Title)
	fmt.Printf("[%s]\t\t\t= Method\n", ap.Method)
	fmt.Printf("[%s]\t\t= Boundary Condition\n", ap.BC)
	fmt.Printf("%8.5f\t\t= Density\n", ap.Density)
	switch {
	case ap.GroundEffect:
		fmt.Printf("%8.5f\t\t= Ground Height\n", ap.GroundHeight)
	case ap.FreeSurface:
		fmt.Printf("%8.5f\t\t= Free Surface Height\n", ap.GroundHeight)
	}
	if ap.VortonWake {
		fmt.Printf("%8.5f\t\t= Vorton Step\n", ap.VortonStep)
	} else {
		fmt.Printf("[%d]\t\t\t\t= Wake Panels\n", ap.NWakePanels)
	}
	fmt.Printf("%v\t\t= Alphas\n", ap.Alphas)
	for i, w := range ap.Wings {
		fmt.Printf("Wings[%d] = %q span=%g chord=%g panels=%dx%d t/c=%g\n",
			i, w.Name, w.Span, w.Chord, w.NChord, w.NSpan, w.Thickness)
	}
}
