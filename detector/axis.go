package detector

import (
	"math"

	"github.com/bodgit/colorcode/bitmatrix"
	"github.com/bodgit/colorcode/grid"
)

const finderModules = 7

// AxisAligned detects upright, unskewed symbols surrounded by a quiet zone,
// such as rendered test images and flatbed scans. It measures the module size
// from the top edge of the top-left finder pattern and snaps the symbol
// dimension to the nearest QR code size. It is the fallback when QR finds
// nothing.
type AxisAligned struct{}

func bounds(m *bitmatrix.BitMatrix) (minX, minY, maxX, maxY int, ok bool) {
	minX, minY = m.Width(), m.Height()
	maxX, maxY = -1, -1
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			if !m.Get(x, y) {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	return minX, minY, maxX, maxY, maxX >= 0
}

// snap rounds a measured module count to a 4v+17 QR code dimension.
func snap(modules float64) (int, error) {
	dim := int(math.Round(modules))
	switch dim & 3 {
	case 0:
		dim++
	case 2:
		dim--
	case 3:
		return 0, ErrNotFound
	}
	if dim < 21 {
		return 0, ErrNotFound
	}
	return dim, nil
}

// Detect implements Detector.
func (AxisAligned) Detect(m *bitmatrix.BitMatrix) (*Detection, error) {
	if m == nil {
		return nil, ErrNotFound
	}

	minX, minY, maxX, maxY, ok := bounds(m)
	if !ok {
		return nil, ErrNotFound
	}

	run := 0
	for x := minX; x <= maxX && m.Get(x, minY); x++ {
		run++
	}
	if run < finderModules {
		return nil, ErrNotFound
	}
	moduleSize := float64(run) / finderModules

	width := float64(maxX - minX + 1)
	height := float64(maxY - minY + 1)

	dimX, err := snap(width / moduleSize)
	if err != nil {
		return nil, err
	}
	dimY, err := snap(height / moduleSize)
	if err != nil {
		return nil, err
	}

	stepX, stepY := width/float64(dimX), height/float64(dimY)

	bits, err := bitmatrix.New(dimX, dimY)
	if err != nil {
		return nil, err
	}
	points := make([]float64, 0, 2*dimX*dimY)
	for y := 0; y < dimY; y++ {
		py := float64(minY) + (float64(y)+0.5)*stepY
		for x := 0; x < dimX; x++ {
			px := float64(minX) + (float64(x)+0.5)*stepX
			points = append(points, px, py)
			if m.Get(int(px), int(py)) {
				bits.Set(x, y)
			}
		}
	}

	g, err := grid.New(points, dimX, dimY)
	if err != nil {
		return nil, err
	}

	return &Detection{
		Bits: bits,
		Grid: g,
	}, nil
}
