package pipeline

import (
	"runtime"

	"sobel-bench/internal/models"
	"sobel-bench/internal/processing/gradient"
)

// worker computes the gradient magnitude for every interior pixel of its
// band. It reads only from the shared source and writes only into the band.
type worker struct {
	index      int
	source     models.Source
	band       models.Band
	op         gradient.Operator
	lockThread bool
	onStart    func(index int, rows models.RowRange)
}

func (w worker) run() (err error) {
	if w.lockThread {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
	}

	defer func() {
		if cause := recover(); cause != nil {
			err = &WorkerFailure{Index: w.index, Rows: w.band.Rows(), Cause: cause}
		}
	}()

	if w.onStart != nil {
		w.onStart(w.index, w.band.Rows())
	}
	convolveBand(w.source, w.band, w.op)
	return nil
}

func convolveBand(src models.Source, band models.Band, op gradient.Operator) {
	rows := band.Rows()
	width := src.Width()

	var win gradient.Window
	for r := rows.Start; r < rows.End; r++ {
		for c := 1; c < width-1; c++ {
			for k := -1; k <= 1; k++ {
				for l := -1; l <= 1; l++ {
					win[k+1][l+1] = src.Intensity(r+k, c+l)
				}
			}
			band.SetPixel(r, c, op.Apply(&win).Magnitude)
		}
	}
}
