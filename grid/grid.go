/*
Package grid holds the sampling-point grid produced by a detector: one pixel
coordinate per symbol module, stored row-major.

The flat form used by detectors appends two trailing values to the (x, y)
pairs, the row count followed by the column count.
*/
package grid

import (
	"errors"
	"fmt"
	"math"
)

var (
	errBadDimension = errors.New("grid: dimensions must be positive")
	errBadLength    = errors.New("grid: point count does not match dimensions")
)

// Grid is a row-major list of module sampling points.
type Grid struct {
	// Points holds x, y pairs, DimensionX pairs per row.
	Points     []float64
	DimensionX int
	DimensionY int
}

// New returns a Grid after checking points has one pair per module.
func New(points []float64, dimensionX, dimensionY int) (*Grid, error) {
	if dimensionX < 1 || dimensionY < 1 {
		return nil, errBadDimension
	}
	if len(points) != 2*dimensionX*dimensionY {
		return nil, fmt.Errorf("%w: %d values for %dx%d", errBadLength, len(points), dimensionX, dimensionY)
	}
	return &Grid{
		Points:     points,
		DimensionX: dimensionX,
		DimensionY: dimensionY,
	}, nil
}

// FromFlat decodes the trailing-encoded form (..., dimensionY, dimensionX).
func FromFlat(flat []float64) (*Grid, error) {
	if len(flat) < 2 {
		return nil, errBadLength
	}
	n := len(flat)
	return New(flat[:n-2], int(flat[n-1]), int(flat[n-2]))
}

// Flat returns the trailing-encoded form of g.
func (g *Grid) Flat() []float64 {
	out := make([]float64, 0, len(g.Points)+2)
	out = append(out, g.Points...)
	return append(out, float64(g.DimensionY), float64(g.DimensionX))
}

func (g *Grid) Len() int {
	return g.DimensionX * g.DimensionY
}

// At returns the sampling point of the module at column x, row y.
func (g *Grid) At(x, y int) (float64, float64) {
	i := 2 * (y*g.DimensionX + x)
	return g.Points[i], g.Points[i+1]
}

// Pixel returns the pixel containing the sampling point of the module at
// column x, row y.
func (g *Grid) Pixel(x, y int) (int, int) {
	px, py := g.At(x, y)
	return int(math.Trunc(px)), int(math.Trunc(py))
}
