package analysis

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/wdf-nudtaa/flow5-sub004/panels"
	"github.com/wdf-nudtaa/flow5-sub004/utils"
)

// NumericalError reports a non finite influence coefficient, Col is the
// influencing panel and Row the panel where the condition is enforced.
type NumericalError struct {
	Row, Col int
}

func (e *NumericalError) Error() string {
	return fmt.Sprintf("numerical error when calculating the influence of panel %d on panel %d", e.Col, e.Row)
}

// PanelAnalysis owns the mesh, the influence matrix and the singularity
// strengths of one analysis. Buffers are sized at construction, the block
// loops only write to their own rows.
type PanelAnalysis struct {
	Config
	Mesh *panels.Mesh

	colloc collocation
	pm     *utils.PartitionMap
	aijd   *mat.Dense
	aijf   []float32

	// Unit right hand sides, overwritten by the unit strengths once solved
	URHS, VRHS, WRHS []float64
	PRHS, QRHS, RRHS []float64
	CRHS             []float64
	unitSolved       bool
	unitRef          r3.Vec // center of the unit rotations

	Mu, Sigma []float64

	// tangential velocities of the unit solutions, panel frames
	UVLocal, VVLocal, WVLocal []r3.Vec

	Vortons   [][]Vorton
	VortexNeg []Vortex

	cancel   utils.CancelFlag
	failed   atomic.Bool
	warning  atomic.Bool
	rowsDone atomic.Int64
	onRow    func(i int) // test hook, called after each matrix row

	// Cm(alpha) used by the trim search, replaceable for tests
	cmEval func(cog r3.Vec, alpha float64) float64

	logger *log.Entry
}

// New copies the mesh and allocates the analysis buffers
func New(cfg Config, mesh *panels.Mesh) (pa *PanelAnalysis, err error) {
	if err = cfg.Validate(); err != nil {
		return
	}
	if mesh == nil || mesh.NPanels() == 0 {
		err = fmt.Errorf("empty mesh")
		return
	}
	if cfg.IsVLM() {
		for i := range mesh.Panels {
			if !mesh.Panels[i].IsMid() {
				err = fmt.Errorf("%s analysis requires thin surfaces, panel %d is %s",
					cfg.Method, i, mesh.Panels[i].Pos)
				return
			}
		}
	}
	var (
		N  = mesh.NPanels()
		NP = 1
	)
	if cfg.MultiThread {
		NP = utils.SetParallelDegree(cfg.ProcLimit, N)
	}
	pa = &PanelAnalysis{
		Config:  cfg,
		Mesh:    mesh.Clone(),
		colloc:  newCollocation(cfg),
		pm:      utils.NewPartitionMap(NP, N),
		URHS:    make([]float64, N),
		VRHS:    make([]float64, N),
		WRHS:    make([]float64, N),
		PRHS:    make([]float64, N),
		QRHS:    make([]float64, N),
		RRHS:    make([]float64, N),
		CRHS:    make([]float64, N),
		Mu:      make([]float64, N),
		Sigma:   make([]float64, N),
		UVLocal: make([]r3.Vec, N),
		VVLocal: make([]r3.Vec, N),
		WVLocal: make([]r3.Vec, N),
		logger:  log.WithFields(log.Fields{
			"method": cfg.Method.String(),
			"panels": N,
		}),
	}
	if cfg.DoublePrecision {
		pa.aijd = mat.NewDense(N, N, nil)
	} else {
		pa.aijf = make([]float32, N*N)
	}
	if pa.RefSpan == 0 {
		pa.RefSpan = meshSpan(pa.Mesh)
	}
	pa.cmEval = pa.Cm
	pa.logger.Debugf("%d row blocks, %s", NP, utils.GetMemUsage())
	return
}

func (pa *PanelAnalysis) NPanels() int { return pa.Mesh.NPanels() }

func (pa *PanelAnalysis) panel(i int) *panels.Panel4 { return &pa.Mesh.Panels[i] }

// Cancel requests the block loops to stop, results are then invalid
func (pa *PanelAnalysis) Cancel()         { pa.cancel.Cancel() }
func (pa *PanelAnalysis) Cancelled() bool { return pa.cancel.IsCancelled() }

// ResetCancel clears a previous cancellation before a new run
func (pa *PanelAnalysis) ResetCancel() { pa.cancel.Reset() }

// Failed is set once a matrix coefficient was not finite
func (pa *PanelAnalysis) Failed() bool { return pa.failed.Load() }

// Warning is set when a trim did not find a positive lift
func (pa *PanelAnalysis) Warning() bool { return pa.warning.Load() }

// RowsBuilt is the number of influence matrix rows written by the last build
func (pa *PanelAnalysis) RowsBuilt() int { return int(pa.rowsDone.Load()) }

func (pa *PanelAnalysis) watch(ctx context.Context) (stop func()) {
	if ctx != nil && ctx.Err() != nil {
		pa.cancel.Cancel()
	}
	return pa.cancel.Watch(ctx)
}

// Matrix returns the influence matrix in double precision
func (pa *PanelAnalysis) Matrix() mat.Matrix {
	if pa.aijd != nil {
		return pa.aijd
	}
	var (
		N    = pa.NPanels()
		data = make([]float64, N*N)
	)
	for i, f := range pa.aijf {
		data[i] = float64(f)
	}
	return mat.NewDense(N, N, data)
}

func (pa *PanelAnalysis) at(i, j int) float64 {
	if pa.aijd != nil {
		return pa.aijd.At(i, j)
	}
	return float64(pa.aijf[i*pa.NPanels()+j])
}

func (pa *PanelAnalysis) set(i, j int, v float64) {
	if pa.aijd != nil {
		pa.aijd.Set(i, j, v)
		return
	}
	pa.aijf[i*pa.NPanels()+j] = float32(v)
}

// vortonCoreLength is the vorton core size in metres
func (pa *PanelAnalysis) vortonCoreLength() float64 {
	return pa.VortonCore * pa.RefChord
}

// meshSpan is the lateral extent of the mesh
func meshSpan(m *panels.Mesh) float64 {
	yMin, yMax := math.Inf(1), math.Inf(-1)
	for i := range m.Panels {
		for _, node := range m.Panels[i].Node {
			yMin, yMax = min(yMin, node.Y), max(yMax, node.Y)
		}
	}
	return yMax - yMin
}
