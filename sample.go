package colorcode

import (
	"fmt"
	"image"

	"github.com/bodgit/colorcode/bitmatrix"
	"github.com/bodgit/colorcode/grid"
	"github.com/bodgit/colorcode/palette"
)

const (
	// binaryRadius gives a (2*2)² pixel neighbourhood per module.
	binaryRadius = 2
	// blackFraction is the share of set pixels above which a module
	// counts as black in that channel.
	blackFraction = 0.6
)

// percent returns 0 when most of the square pixels are black, 1 otherwise.
func percent(value, square int) int {
	if float64(value)/float64(square) > blackFraction {
		return 0
	}
	return 1
}

// SampleColour classifies the pixel under every sampling point of g against
// p, returning the color indices row-major.
func SampleColour(img image.Image, g *grid.Grid, p palette.Palette) ([]int, error) {
	result := make([]int, g.Len())
	for y := 0; y < g.DimensionY; y++ {
		for x := 0; x < g.DimensionX; x++ {
			px, py := g.Pixel(x, y)
			r, gr, b, err := palette.Pixel(img, px, py)
			if err != nil {
				return nil, fmt.Errorf("module %d,%d: %w", x, y, err)
			}
			if result[y*g.DimensionX+x], err = p.Nearest(r, gr, b); err != nil {
				return nil, err
			}
		}
	}
	return result, nil
}

// SampleBinary derives the color index of every module of g from the density
// of set pixels around its sampling point in each channel matrix.
func SampleBinary(r, g, b *bitmatrix.BitMatrix, gr *grid.Grid) ([]int, error) {
	if r == nil || g == nil || b == nil {
		return nil, ErrCompositionUnavailable
	}

	square := 4 * binaryRadius * binaryRadius
	result := make([]int, gr.Len())
	for y := 0; y < gr.DimensionY; y++ {
		for x := 0; x < gr.DimensionX; x++ {
			px, py := gr.Pixel(x, y)

			sumR := bitmatrix.Sum(r, px, py, binaryRadius)
			sumG := bitmatrix.Sum(g, px, py, binaryRadius)
			sumB := bitmatrix.Sum(b, px, py, binaryRadius)

			result[y*gr.DimensionX+x] = 4*percent(sumR, square) + 2*percent(sumG, square) + percent(sumB, square)
		}
	}
	return result, nil
}
