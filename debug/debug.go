/*
Package debug implements an observer that keeps snapshots of every stage of a
decode on disk.

Each snapshot is written as <name>.png with the sampling points of the grid,
if any, marked in magenta. Snapshots are palettized to at most 16 colors,
which is plenty for an eight color symbol and keeps the files small.
*/
package debug

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log"
	"os"
	"path/filepath"

	"github.com/bodgit/colorcode/bitmatrix"
	"github.com/bodgit/colorcode/grid"
	"github.com/ericpauley/go-quantize/quantize"
)

const maxColors = 16

var marker = color.RGBA{0xff, 0x00, 0xff, 0xff}

// Dir writes snapshots into a directory and log lines to a logger.
type Dir struct {
	path   string
	logger *log.Logger
}

// New returns a Dir writing into path, creating it if needed.
func New(path string, logger *log.Logger) (*Dir, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, err
	}
	return &Dir{
		path:   path,
		logger: logger,
	}, nil
}

func (d *Dir) Logf(format string, v ...interface{}) {
	d.logger.Printf(format, v...)
}

func (d *Dir) Matrix(name string, m *bitmatrix.BitMatrix, g *grid.Grid) {
	d.snapshot(name, bitmatrix.Image(m), g)
}

func (d *Dir) Image(name string, img image.Image, g *grid.Grid) {
	d.snapshot(name, img, g)
}

func overlay(img image.Image, g *grid.Grid) *image.RGBA {
	b := img.Bounds()
	m := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(m, m.Bounds(), img, b.Min, draw.Src)

	if g == nil {
		return m
	}
	for y := 0; y < g.DimensionY; y++ {
		for x := 0; x < g.DimensionX; x++ {
			px, py := g.Pixel(x, y)
			m.SetRGBA(px, py, marker)
		}
	}
	return m
}

func (d *Dir) snapshot(name string, img image.Image, g *grid.Grid) {
	m := overlay(img, g)
	b := m.Bounds()

	q := quantize.MedianCutQuantizer{}
	pm := image.NewPaletted(b, q.Quantize(make(color.Palette, 0, maxColors), m))
	draw.Draw(pm, b, m, b.Min, draw.Src)

	file := filepath.Join(d.path, name+".png")
	f, err := os.Create(file)
	if err != nil {
		d.logger.Printf("Snapshot %s: %v", name, err)
		return
	}
	defer f.Close()

	if err := png.Encode(f, pm); err != nil {
		d.logger.Printf("Snapshot %s: %v", name, err)
	}
}
