/*
Package detector locates a colored matrix code in one binarized channel and
produces the sampling-point grid for it.

QR runs the zxing QR code detector over the channel, which finds the three
finder patterns and, on larger symbols, the alignment pattern. The module
centers are then mapped back into the capture through the same perspective
transform the detector sampled with, so rotated and skewed captures yield a
grid that lines up with the symbol.
*/
package detector

import (
	"errors"
	"fmt"

	"github.com/bodgit/colorcode/bitmatrix"
	"github.com/bodgit/colorcode/grid"
	qrdetector "github.com/ericlevine/zxinggo/qrcode/detector"
	"github.com/ericlevine/zxinggo/transform"
)

// ErrNotFound is returned when no symbol structure can be located.
var ErrNotFound = errors.New("detector: symbol not found")

// Detection is the result of locating a symbol.
type Detection struct {
	// Bits holds one cell per module, sampled from the source matrix.
	Bits *bitmatrix.BitMatrix
	// Grid maps each module to a pixel in the source matrix.
	Grid *grid.Grid
}

// Detector locates a symbol in a binarized channel.
type Detector interface {
	Detect(*bitmatrix.BitMatrix) (*Detection, error)
}

// Chain tries each Detector in turn and returns the first detection.
type Chain []Detector

// Default is QR falling back to AxisAligned.
func Default() Chain {
	return Chain{QR{}, AxisAligned{}}
}

// Detect implements Detector.
func (c Chain) Detect(m *bitmatrix.BitMatrix) (*Detection, error) {
	err := ErrNotFound
	for _, d := range c {
		detection, e := d.Detect(m)
		if e == nil {
			return detection, nil
		}
		err = e
	}
	return nil, err
}

// QR detects symbols using their QR finder and alignment patterns.
type QR struct {
	TryHarder bool
}

type point struct {
	x, y float64
}

// moduleTransform maps module coordinates to capture coordinates. The finder
// centers sit 3.5 modules in from each corner and the alignment pattern, if
// found, 3 modules further in from the bottom right one.
func moduleTransform(topLeft, topRight, bottomLeft point, alignment *point, dim int) *transform.PerspectiveTransform {
	far := float64(dim) - 3.5

	bottomRight := point{topRight.x - topLeft.x + bottomLeft.x, topRight.y - topLeft.y + bottomLeft.y}
	source := far
	if alignment != nil {
		bottomRight = *alignment
		source = far - 3
	}

	return transform.QuadrilateralToQuadrilateral(
		3.5, 3.5, far, 3.5, source, source, 3.5, far,
		topLeft.x, topLeft.y, topRight.x, topRight.y, bottomRight.x, bottomRight.y, bottomLeft.x, bottomLeft.y,
	)
}

// Detect implements Detector.
func (q QR) Detect(m *bitmatrix.BitMatrix) (*Detection, error) {
	if m == nil {
		return nil, ErrNotFound
	}

	result, err := qrdetector.NewDetector(m).Detect(q.TryHarder)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	// Points are bottom left, top left, top right then the optional
	// alignment pattern
	p := result.Points
	if len(p) < 3 || result.Bits == nil {
		return nil, ErrNotFound
	}
	var alignment *point
	if len(p) > 3 {
		alignment = &point{p[3].X, p[3].Y}
	}

	dim := result.Bits.Width()
	xform := moduleTransform(point{p[1].X, p[1].Y}, point{p[2].X, p[2].Y}, point{p[0].X, p[0].Y}, alignment, dim)

	points := make([]float64, 0, 2*dim*dim)
	for y := 0; y < dim; y++ {
		for x := 0; x < dim; x++ {
			points = append(points, float64(x)+0.5, float64(y)+0.5)
		}
	}
	xform.TransformPoints(points)

	g, err := grid.New(points, dim, dim)
	if err != nil {
		return nil, err
	}

	return &Detection{
		Bits: result.Bits,
		Grid: g,
	}, nil
}
