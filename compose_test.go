package colorcode

import (
	"testing"

	"github.com/bodgit/colorcode/bitmatrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encode thresholds a color index grid into its three channel matrices, a
// set cell meaning the channel bit is 0.
func encode(t *testing.T, indices []int, w, h int) [3]*bitmatrix.BitMatrix {
	var m [3]*bitmatrix.BitMatrix
	for i := range m {
		var err error
		m[i], err = bitmatrix.New(w, h)
		require.NoError(t, err)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := indices[y*w+x]
			for i := range m {
				if v>>uint(2-i)&1 == 0 {
					m[i].Set(x, y)
				}
			}
		}
	}
	return m
}

func TestComposeRoundTrip(t *testing.T) {
	indices := []int{
		0, 1, 2, 3, 4,
		5, 6, 7, 0, 1,
		2, 3, 4, 5, 6,
	}
	m := encode(t, indices, 5, 3)

	decoded, err := Compose(m[0], m[1], m[2])
	require.NoError(t, err)
	assert.Equal(t, indices, decoded)
}

func TestComposePolarity(t *testing.T) {
	r, err := bitmatrix.New(1, 1)
	require.NoError(t, err)
	g, err := bitmatrix.New(1, 1)
	require.NoError(t, err)
	b, err := bitmatrix.New(1, 1)
	require.NoError(t, err)

	// Nothing set is white
	decoded, err := Compose(r, g, b)
	require.NoError(t, err)
	assert.Equal(t, []int{7}, decoded)

	r.Set(0, 0)
	decoded, err = Compose(r, g, b)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, decoded)
}

func TestComposeUnavailable(t *testing.T) {
	decoded, err := Compose(nil, nil, nil)
	assert.Equal(t, ErrCompositionUnavailable, err)
	assert.Nil(t, decoded)

	a, err := bitmatrix.New(4, 4)
	require.NoError(t, err)
	b, err := bitmatrix.New(4, 5)
	require.NoError(t, err)
	c, err := bitmatrix.New(5, 4)
	require.NoError(t, err)

	tables := [][3]*bitmatrix.BitMatrix{
		{a, a, nil},
		{a, b, a},
		{a, a, b},
		{c, a, a},
	}
	for _, table := range tables {
		decoded, err := Compose(table[0], table[1], table[2])
		assert.Equal(t, ErrCompositionUnavailable, err)
		assert.Nil(t, decoded)
	}
}
