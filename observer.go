package colorcode

import (
	"image"
	"log"

	"github.com/bodgit/colorcode/bitmatrix"
	"github.com/bodgit/colorcode/grid"
)

// Observer receives diagnostics while decoding. Implementations must not
// influence the decode; the grid passed to Matrix and Image may be nil.
type Observer interface {
	Logf(format string, v ...interface{})
	Matrix(name string, m *bitmatrix.BitMatrix, g *grid.Grid)
	Image(name string, img image.Image, g *grid.Grid)
}

// NopObserver discards everything.
type NopObserver struct{}

func (NopObserver) Logf(string, ...interface{}) {}

func (NopObserver) Matrix(string, *bitmatrix.BitMatrix, *grid.Grid) {}

func (NopObserver) Image(string, image.Image, *grid.Grid) {}

// LogObserver writes log lines to a logger and notes snapshots without
// storing them.
type LogObserver struct {
	Logger *log.Logger
}

func (o LogObserver) Logf(format string, v ...interface{}) {
	o.Logger.Printf(format, v...)
}

func (o LogObserver) Matrix(name string, m *bitmatrix.BitMatrix, _ *grid.Grid) {
	o.Logger.Printf("Matrix %s: %dx%d", name, m.Width(), m.Height())
}

func (o LogObserver) Image(name string, img image.Image, _ *grid.Grid) {
	b := img.Bounds()
	o.Logger.Printf("Image %s: %dx%d", name, b.Dx(), b.Dy())
}
