/*
Package palette implements adaptive color calibration for colored matrix
codes.

A palette holds one averaged HSB centroid per color index. It is built by
sampling the live image at modules whose color index is known in advance,
the last row of the symbol past the finder pattern, where the printer cycles
through the colors in order. Classification then maps any pixel to the
nearest centroid.
*/
package palette

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/bodgit/colorcode/grid"
	"gonum.org/v1/gonum/floats"
)

const (
	// MaxColors is the number of slots in a palette, one per 3-bit index.
	MaxColors = 8

	// FinderColumns is the number of leading columns occupied by the
	// finder pattern. They never take part in calibration.
	FinderColumns = 9
)

var (
	// ErrCalibrationIncomplete is returned when a color index received no
	// calibration sample.
	ErrCalibrationIncomplete = errors.New("palette: calibration incomplete")
	// ErrNoPalette is returned when classifying against an empty palette.
	ErrNoPalette = errors.New("palette: no palette")
	// ErrOutOfBounds is returned when a sampling point lies outside the image.
	ErrOutOfBounds = errors.New("palette: sample outside image")

	errColorCount = errors.New("palette: color count must be between 1 and 8")
)

// Palette is an immutable set of HSB centroids.
type Palette struct {
	centroids [MaxColors]HSB
	n         int
}

func (p Palette) Len() int {
	return p.n
}

func (p Palette) Centroid(i int) HSB {
	return p.centroids[i]
}

func (p Palette) String() string {
	return fmt.Sprintf("%v", p.centroids[:p.n])
}

// Calibrate builds a palette from the last module row of g. Columns are
// visited from the right edge backward, stopping before column
// finderColumns, and labelled cyclically with colorCount indices. Every
// index must receive at least one sample.
func Calibrate(img image.Image, g *grid.Grid, colorCount, finderColumns int) (Palette, error) {
	if colorCount < 1 || colorCount > MaxColors {
		return Palette{}, errColorCount
	}

	var (
		sums  [MaxColors][]float64
		count [MaxColors]int
	)
	for i := range sums {
		sums[i] = make([]float64, 3)
	}

	row := g.DimensionY - 1
	c := 0
	for x := g.DimensionX - 1; x >= 0; x-- {
		if x < finderColumns {
			break
		}
		px, py := g.Pixel(x, row)
		r, gr, b, err := Pixel(img, px, py)
		if err != nil {
			return Palette{}, fmt.Errorf("calibration module %d: %w", x, err)
		}
		hsb := ToHSB(r, gr, b)

		i := c % colorCount
		floats.Add(sums[i], hsb[:])
		count[i]++
		c++
	}

	var p Palette
	for i := 0; i < colorCount; i++ {
		if count[i] == 0 {
			return Palette{}, fmt.Errorf("%w: index %d has no samples", ErrCalibrationIncomplete, i)
		}
		floats.Scale(1/float64(count[i]), sums[i])
		copy(p.centroids[i][:], sums[i])
	}
	p.n = colorCount

	return p, nil
}

// Nearest returns the color index whose centroid is closest to (r, g, b) in
// HSB space. Ties go to the lowest index.
func (p Palette) Nearest(r, g, b uint8) (int, error) {
	if p.n == 0 {
		return -1, ErrNoPalette
	}

	hsb := ToHSB(r, g, b)

	best, distance := -1, math.MaxFloat64
	for i := 0; i < p.n; i++ {
		if d := floats.Distance(hsb[:], p.centroids[i][:], 2); d < distance {
			best, distance = i, d
		}
	}
	return best, nil
}
