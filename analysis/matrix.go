package analysis

import (
	"context"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/wdf-nudtaa/flow5-sub004/utils"
)

// BuildMatrix fills the influence matrix, one row per boundary condition.
// Rows are split in contiguous blocks, each block writing only its own rows.
// A non finite coefficient stops its block and sets the Failed flag.
func (pa *PanelAnalysis) BuildMatrix(ctx context.Context) (err error) {
	stop := pa.watch(ctx)
	defer stop()
	pa.failed.Store(false)
	pa.rowsDone.Store(0)

	N := pa.NPanels()
	err = utils.ParallelFor(pa.pm, pa.MultiThread, func(np, iMin, iMax int) error {
		for i := iMin; i < iMax; i++ {
			if pa.Cancelled() {
				return utils.ErrCancelled
			}
			var (
				pi       = pa.panel(i)
				C        = pa.colloc.Point(pi)
				velocity = pa.colloc.NormalVelocity(pi)
			)
			for k := 0; k < N; k++ {
				var (
					pk = pa.panel(k)
					a  float64
				)
				if velocity {
					a = r3.Dot(pa.doubletVelocity(C, pk, 0, true, true), pi.Normal)
				} else {
					a = pa.doubletPotential(C, i == k, pk, 0, true, true)
				}
				if !utils.IsFinite(a) {
					pa.failed.Store(true)
					pa.logger.WithFields(log.Fields{"row": i, "col": k}).
						Error("numerical error in the influence matrix")
					return &NumericalError{Row: i, Col: k}
				}
				pa.set(i, k, a)
			}
			pa.rowsDone.Add(1)
			if pa.onRow != nil {
				pa.onRow(i)
			}
		}
		return nil
	})
	return
}

// AddWakeContribution adds the influence of the wake columns to the matrix
// coefficients of the trailing panels that shed them, with a negative sign
// for bottom panels.
func (pa *PanelAnalysis) AddWakeContribution(ctx context.Context) (err error) {
	if pa.Mesh.NWakePanels() == 0 || pa.IsVLM() {
		return
	}
	stop := pa.watch(ctx)
	defer stop()

	var (
		N   = pa.NPanels()
		nSt = pa.Mesh.NStations
	)
	err = utils.ParallelFor(pa.pm, pa.MultiThread, func(np, iMin, iMax int) error {
		column := make([]float64, nSt)
		for i := iMin; i < iMax; i++ {
			if pa.Cancelled() {
				return utils.ErrCancelled
			}
			var (
				pi       = pa.panel(i)
				C        = pi.CollPt
				velocity = pa.colloc.NormalVelocity(pi)
			)
			for kw := range column {
				column[kw] = 0
			}
			for iw := range pa.Mesh.WakePanels {
				var (
					pw = &pa.Mesh.WakePanels[iw]
					kw = pw.WakeColumn
				)
				// no far field approximation for wake panels
				if velocity {
					column[kw] += r3.Dot(pa.doubletVelocity(C, pw, 0, false, true), pi.Normal)
				} else {
					column[kw] += pa.doubletPotential(C, false, pw, 0, false, true)
				}
			}
			for k := 0; k < N; k++ {
				pk := pa.panel(k)
				if !pk.IsTrailing || pk.WakeColumn < 0 {
					continue
				}
				sign := 1.
				if pk.IsBottom() {
					sign = -1.
				}
				pa.set(i, k, pa.at(i, k)+sign*column[pk.WakeColumn])
			}
		}
		return nil
	})
	return
}
