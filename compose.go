package colorcode

import (
	"github.com/bodgit/colorcode/bitmatrix"
)

func bit(set bool) int {
	if set {
		return 0
	}
	return 1
}

// Compose merges three channel matrices cell by cell into color indices. An
// unset (white) cell contributes a 1 bit, R being the most significant.
func Compose(r, g, b *bitmatrix.BitMatrix) ([]int, error) {
	if r == nil || g == nil || b == nil || !bitmatrix.SameSize(r, g) || !bitmatrix.SameSize(g, b) {
		return nil, ErrCompositionUnavailable
	}

	w, h := r.Width(), r.Height()
	result := make([]int, 0, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			result = append(result, 4*bit(r.Get(x, y))+2*bit(g.Get(x, y))+bit(b.Get(x, y)))
		}
	}
	return result, nil
}
