/*
Package reference implements the reference template a decoded colored matrix
code is scored against.

A reference file is the text form of the expected color indices in module
order, row-major, for example:

	[0,1,2,0,1,2,...]

The file may be gzip or zstd compressed, selected by its extension.
*/
package reference

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

const maxColors = 8

var (
	// ErrReferenceInvalid is returned for malformed or degenerate reference
	// content.
	ErrReferenceInvalid = errors.New("reference: invalid reference")
	// ErrFormat is returned when no symbol dimension fits the module count.
	ErrFormat = errors.New("reference: no dimension for module count")
)

// DimensionFunc returns the module dimension of a square symbol with count
// modules.
type DimensionFunc func(count int) (int, error)

// SquareDimension accepts any perfect square.
func SquareDimension(count int) (int, error) {
	if count < 1 {
		return 0, ErrFormat
	}
	dim := int(math.Sqrt(float64(count)))
	for dim*dim > count {
		dim--
	}
	for (dim+1)*(dim+1) <= count {
		dim++
	}
	if dim*dim != count {
		return 0, fmt.Errorf("%w: %d is not square", ErrFormat, count)
	}
	return dim, nil
}

// QRDimension accepts only the 40 QR code sizes, 4v+17 modules a side.
func QRDimension(count int) (int, error) {
	dim, err := SquareDimension(count)
	if err != nil {
		return 0, err
	}
	if dim%4 != 1 || dim < 21 || dim > 177 {
		return 0, fmt.Errorf("%w: %dx%d is not a QR code size", ErrFormat, dim, dim)
	}
	return dim, nil
}

// Template is an immutable reference pattern.
type Template struct {
	source    string
	indices   []int
	histogram []int
	colors    int
	dimension int
}

func (t *Template) Source() string {
	return t.source
}

func (t *Template) Indices() []int {
	return append([]int(nil), t.indices...)
}

// Histogram returns a copy of the per-index counts.
func (t *Template) Histogram() []int {
	return append([]int(nil), t.histogram...)
}

// ColorCount returns the highest color index plus one.
func (t *Template) ColorCount() int {
	return t.colors
}

func (t *Template) Dimension() int {
	return t.dimension
}

func (t *Template) Len() int {
	return len(t.indices)
}

// Histogram counts the occurrences of each index. The result has length
// max(indices)+1. All indices must be non-negative.
func Histogram(indices []int) []int {
	max := -1
	for _, i := range indices {
		if i > max {
			max = i
		}
	}
	histogram := make([]int, max+1)
	for _, i := range indices {
		histogram[i]++
	}
	return histogram
}

// New builds a template from indices, checking them for sanity.
func New(source string, indices []int, lookup DimensionFunc) (*Template, error) {
	if lookup == nil {
		lookup = SquareDimension
	}
	if len(indices) == 0 {
		return nil, fmt.Errorf("%w: no color indices", ErrReferenceInvalid)
	}

	for n, i := range indices {
		if i < 0 || i >= maxColors {
			return nil, fmt.Errorf("%w: color index %d at position %d", ErrReferenceInvalid, i, n)
		}
	}

	histogram := Histogram(indices)
	distinct := 0
	for _, n := range histogram {
		if n > 0 {
			distinct++
		}
	}
	if distinct < 2 {
		return nil, fmt.Errorf("%w: only contains one color index", ErrReferenceInvalid)
	}

	dim, err := lookup(len(indices))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReferenceInvalid, err)
	}

	return &Template{
		source:    source,
		indices:   append([]int(nil), indices...),
		histogram: histogram,
		colors:    len(histogram),
		dimension: dim,
	}, nil
}

// Parse reads the bracketed, comma-separated text form from r.
func Parse(r io.Reader, source string, lookup DimensionFunc) (*Template, error) {
	b, err := ioutil.ReadAll(bufio.NewReader(r))
	if err != nil {
		return nil, err
	}

	s := strings.TrimSpace(string(b))
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, fmt.Errorf("%w: not a bracketed list", ErrReferenceInvalid)
	}

	fields := strings.Split(s[1:len(s)-1], ",")
	indices := make([]int, len(fields))
	for i, f := range fields {
		if indices[i], err = strconv.Atoi(strings.TrimSpace(f)); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrReferenceInvalid, err)
		}
	}

	return New(source, indices, lookup)
}

// Load reads a reference file, decompressing .gz and .zst files.
func Load(file string, lookup DimensionFunc) (*Template, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	switch strings.ToLower(filepath.Ext(file)) {
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		r = zr
	case ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		r = zr
	}

	return Parse(r, file, lookup)
}
