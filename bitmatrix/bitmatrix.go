/*
Package bitmatrix binarizes one color channel of a captured symbol into a
zxing bit matrix and provides the area queries the decoder samples with.

A set cell is "black", that is the channel value at that pixel was dark.
*/
package bitmatrix

import (
	"errors"
	"image"
	"image/color"

	"github.com/ericlevine/zxinggo/bitutil"
)

var errBadSize = errors.New("bitmatrix: width and height must be positive")

// Channel selects one of the three color planes of an image.
type Channel int

// The three channels, in composition order (R is the most significant bit).
const (
	Red Channel = iota
	Green
	Blue
)

func (c Channel) String() string {
	switch c {
	case Red:
		return "R"
	case Green:
		return "G"
	case Blue:
		return "B"
	default:
		return "?"
	}
}

// BitMatrix is the zxing matrix shared with the QR detector.
type BitMatrix = bitutil.BitMatrix

// New returns an empty matrix of the given size.
func New(width, height int) (*BitMatrix, error) {
	if width < 1 || height < 1 {
		return nil, errBadSize
	}
	return bitutil.NewBitMatrixWithSize(width, height), nil
}

func inside(m *BitMatrix, x, y int) bool {
	return x >= 0 && y >= 0 && x < m.Width() && y < m.Height()
}

// Get is m.Get(x, y) except that cells outside the matrix are never set.
func Get(m *BitMatrix, x, y int) bool {
	return inside(m, x, y) && m.Get(x, y)
}

// SameSize reports whether a and b have identical dimensions.
func SameSize(a, b *BitMatrix) bool {
	return a.Width() == b.Width() && a.Height() == b.Height()
}

// Sum counts the set cells in the (2*radius)² square
// [x-radius, x+radius) × [y-radius, y+radius). Cells outside the matrix
// count as unset.
func Sum(m *BitMatrix, x, y, radius int) int {
	n := 0
	for dy := y - radius; dy < y+radius; dy++ {
		for dx := x - radius; dx < x+radius; dx++ {
			if Get(m, dx, dy) {
				n++
			}
		}
	}
	return n
}

// FromImage binarizes one channel of img. A cell is set where the channel
// value is below threshold. The matrix origin is the image's Bounds().Min.
func FromImage(img image.Image, ch Channel, threshold uint8) (*BitMatrix, error) {
	b := img.Bounds()
	m, err := New(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			var v uint8
			switch ch {
			case Red:
				v = c.R
			case Green:
				v = c.G
			default:
				v = c.B
			}
			if v < threshold {
				m.Set(x-b.Min.X, y-b.Min.Y)
			}
		}
	}
	return m, nil
}

// Image renders m as black set cells on a white background.
func Image(m *BitMatrix) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, m.Width(), m.Height()))
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			if !m.Get(x, y) {
				g.Pix[y*g.Stride+x] = 0xff
			}
		}
	}
	return g
}
