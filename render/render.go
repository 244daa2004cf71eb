/*
Package render generates synthetic colored matrix codes.

A generated symbol carries the three QR finder patterns in black with white
separators, a calibration row along the bottom edge that cycles through the
colors from the right, and pseudo-random data everywhere else. Together with
its reference text it forms a benchmark pair for the decoder.
*/
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math/rand"
	"strconv"
	"strings"

	"github.com/bodgit/colorcode/palette"
)

const finderSize = 7

var (
	errDimension = errors.New("render: dimension too small")
	errScale     = errors.New("render: scale must be positive")
	errLength    = errors.New("render: index count does not match dimension")
)

// Colors maps a 3-bit index to its printed color. A set bit means the
// channel is fully on, R being the most significant bit.
var Colors = [palette.MaxColors]color.NRGBA{
	{0x00, 0x00, 0x00, 0xff},
	{0x00, 0x00, 0xff, 0xff},
	{0x00, 0xff, 0x00, 0xff},
	{0x00, 0xff, 0xff, 0xff},
	{0xff, 0x00, 0x00, 0xff},
	{0xff, 0x00, 0xff, 0xff},
	{0xff, 0xff, 0x00, 0xff},
	{0xff, 0xff, 0xff, 0xff},
}

const (
	black = 0
	white = palette.MaxColors - 1
)

func finder(indices []int, dim, ox, oy int) {
	for y := -1; y <= finderSize; y++ {
		for x := -1; x <= finderSize; x++ {
			px, py := ox+x, oy+y
			if px < 0 || py < 0 || px >= dim || py >= dim {
				continue
			}
			v := white
			switch {
			case x < 0 || y < 0 || x == finderSize || y == finderSize:
			case x == 0 || y == 0 || x == finderSize-1 || y == finderSize-1:
				v = black
			case x >= 2 && x <= 4 && y >= 2 && y <= 4:
				v = black
			}
			indices[py*dim+px] = v
		}
	}
}

// Symbol returns the row-major color indices of a dim by dim symbol. The
// separators around the finder patterns are white, so every symbol uses all
// eight colors. The same seed always gives the same symbol.
func Symbol(dim int, seed int64) ([]int, error) {
	const colors = palette.MaxColors
	if dim-palette.FinderColumns < colors {
		return nil, errDimension
	}

	rnd := rand.New(rand.NewSource(seed))
	indices := make([]int, dim*dim)
	for i := range indices {
		indices[i] = rnd.Intn(colors)
	}

	for x := dim - 1; x >= palette.FinderColumns; x-- {
		indices[(dim-1)*dim+x] = (dim - 1 - x) % colors
	}

	finder(indices, dim, 0, 0)
	finder(indices, dim, dim-finderSize, 0)
	finder(indices, dim, 0, dim-finderSize)

	return indices, nil
}

// Image paints indices as a dim by dim symbol, each module scale pixels
// square, surrounded by a white quiet zone quiet modules wide.
func Image(indices []int, dim, scale, quiet int) (*image.NRGBA, error) {
	if len(indices) != dim*dim {
		return nil, errLength
	}
	if scale < 1 {
		return nil, errScale
	}

	side := (dim + 2*quiet) * scale
	img := image.NewNRGBA(image.Rect(0, 0, side, side))
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			img.SetNRGBA(x, y, Colors[white])
		}
	}

	for my := 0; my < dim; my++ {
		for mx := 0; mx < dim; mx++ {
			c := Colors[indices[my*dim+mx]]
			ox, oy := (mx+quiet)*scale, (my+quiet)*scale
			for y := oy; y < oy+scale; y++ {
				for x := ox; x < ox+scale; x++ {
					img.SetNRGBA(x, y, c)
				}
			}
		}
	}

	return img, nil
}

// Format returns the reference text form of indices.
func Format(indices []int) string {
	s := make([]string, len(indices))
	for i, v := range indices {
		s[i] = strconv.Itoa(v)
	}
	return fmt.Sprintf("[%s]", strings.Join(s, ","))
}
