package colorcode

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"log"
	"strings"
	"testing"

	"github.com/bodgit/colorcode/bitmatrix"
	"github.com/bodgit/colorcode/detector"
	"github.com/bodgit/colorcode/grid"
	"github.com/bodgit/colorcode/palette"
	"github.com/bodgit/colorcode/reference"
	"github.com/bodgit/colorcode/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testDim   = 21
	testScale = 6
	testQuiet = 4
)

type fakeDetector map[*bitmatrix.BitMatrix]*detector.Detection

func (f fakeDetector) Detect(m *bitmatrix.BitMatrix) (*detector.Detection, error) {
	d, ok := f[m]
	if !ok {
		return nil, detector.ErrNotFound
	}
	return d, nil
}

type recordingObserver struct {
	NopObserver
	lines     []string
	snapshots []string
}

func (o *recordingObserver) Logf(format string, v ...interface{}) {
	o.lines = append(o.lines, fmt.Sprintf(format, v...))
}

func (o *recordingObserver) Matrix(name string, _ *bitmatrix.BitMatrix, _ *grid.Grid) {
	o.snapshots = append(o.snapshots, name)
}

func (o *recordingObserver) Image(name string, _ image.Image, _ *grid.Grid) {
	o.snapshots = append(o.snapshots, name)
}

func testSymbol(t *testing.T, seed int64) ([]int, image.Image, [3]*bitmatrix.BitMatrix) {
	indices, err := render.Symbol(testDim, seed)
	require.NoError(t, err)
	img, err := render.Image(indices, testDim, testScale, testQuiet)
	require.NoError(t, err)
	r, g, b := channels(t, img)
	return indices, img, [3]*bitmatrix.BitMatrix{r, g, b}
}

func testSession(t *testing.T, indices []int) *Session {
	ref, err := reference.New("test", indices, reference.QRDimension)
	require.NoError(t, err)
	s, err := NewSession(ref)
	require.NoError(t, err)
	return s
}

func TestNewSession(t *testing.T) {
	_, err := NewSession(nil)
	assert.Equal(t, ErrNoReference, err)
}

func TestDecode(t *testing.T) {
	indices, img, m := testSymbol(t, 11)
	observer := new(recordingObserver)

	d := NewDecoder(testSession(t, indices), detector.AxisAligned{}, observer)
	summary, err := d.Decode(img, m[0], m[1], m[2])
	require.NoError(t, err)
	require.Len(t, summary.Attempts, 7)
	assert.True(t, summary.Passed())

	want := []struct {
		layer    string
		strategy Strategy
	}{
		{"R", Binary}, {"R", Colour},
		{"G", Binary}, {"G", Colour},
		{"B", Binary}, {"B", Colour},
		{"RGB", Composed},
	}
	for i, a := range summary.Attempts {
		assert.Equal(t, i+1, a.Step)
		assert.Equal(t, want[i].layer, a.Layer)
		assert.Equal(t, want[i].strategy, a.Strategy)
		assert.True(t, a.Passed(), a.String())
		assert.Equal(t, testDim*testDim, a.Report.Length)
	}

	assert.Equal(t, []string{"pr", "mr", "br", "pg", "mg", "bg", "pb", "mb", "bb"}, observer.snapshots)
	assert.Contains(t, observer.lines, "Step 7: try using RGB-layer to decode the image[Composed]: success!")
}

func TestDecodeMismatch(t *testing.T) {
	_, img, m := testSymbol(t, 11)
	other, err := render.Symbol(testDim, 12)
	require.NoError(t, err)

	d := NewDecoder(testSession(t, other), detector.AxisAligned{}, nil)
	summary, err := d.Decode(img, m[0], m[1], m[2])
	require.NoError(t, err)
	require.Len(t, summary.Attempts, 7)
	assert.False(t, summary.Passed())

	for _, a := range summary.Attempts {
		assert.NoError(t, a.Err)
		assert.False(t, a.Report.Passed)
	}
}

func TestDecodeDetectionFailed(t *testing.T) {
	indices, img, m := testSymbol(t, 11)

	r, err := detector.AxisAligned{}.Detect(m[0])
	require.NoError(t, err)

	// Only the R layer can be detected
	observer := new(recordingObserver)
	d := NewDecoder(testSession(t, indices), fakeDetector{m[0]: r}, observer)
	summary, err := d.Decode(img, m[0], m[1], m[2])
	assert.Nil(t, summary)
	assert.True(t, errors.Is(err, ErrDetectionFailed))
	assert.True(t, errors.Is(err, detector.ErrNotFound))
	assert.Contains(t, observer.lines, "Step 3: can not detect mapping points in G layer!")
}

func testDetections(t *testing.T, m [3]*bitmatrix.BitMatrix) fakeDetector {
	f := fakeDetector{}
	for i := range m {
		d, err := detector.AxisAligned{}.Detect(m[i])
		require.NoError(t, err)
		f[m[i]] = d
	}
	return f
}

func TestDecodeCalibrationMismatch(t *testing.T) {
	indices, img, m := testSymbol(t, 11)

	// Paint the calibration row white so the image no longer matches the
	// labels; the colour attempts then fail validation but still decode
	painted := image.NewNRGBA(img.Bounds())
	copy(painted.Pix, img.(*image.NRGBA).Pix)
	for x := 9; x < testDim; x++ {
		for dy := 0; dy < testScale; dy++ {
			for dx := 0; dx < testScale; dx++ {
				painted.SetNRGBA((x+testQuiet)*testScale+dx, (testDim-1+testQuiet)*testScale+dy, render.Colors[7])
			}
		}
	}

	d := NewDecoder(testSession(t, indices), testDetections(t, m), nil)
	summary, err := d.Decode(painted, m[0], m[1], m[2])
	require.NoError(t, err)
	assert.True(t, summary.Attempts[0].Passed())
	assert.NoError(t, summary.Attempts[1].Err)
	assert.False(t, summary.Attempts[1].Passed())
}

func TestDecodeCalibrationIncomplete(t *testing.T) {
	indices, img, m := testSymbol(t, 11)
	detections := testDetections(t, m)

	// A 10x10 grid leaves a single calibration sample past the finder
	// columns, too few for eight colors
	small, err := grid.New(detections[m[0]].Grid.Points[:2*10*10], 10, 10)
	require.NoError(t, err)
	tiny := &detector.Detection{Bits: detections[m[0]].Bits, Grid: small}

	d := NewDecoder(testSession(t, indices), fakeDetector{m[0]: tiny, m[1]: tiny, m[2]: tiny}, nil)
	summary, err := d.Decode(img, m[0], m[1], m[2])
	require.NoError(t, err)
	require.Len(t, summary.Attempts, 7)
	for _, i := range []int{1, 3, 5} {
		assert.True(t, errors.Is(summary.Attempts[i].Err, palette.ErrCalibrationIncomplete))
	}
	assert.Equal(t, reference.ReasonDimension, summary.Attempts[0].Report.Reason)
}

func TestDecodeCompositionUnavailable(t *testing.T) {
	indices, img, m := testSymbol(t, 11)
	detections := testDetections(t, m)

	// The B layer's module matrix is one column short
	short, err := bitmatrix.New(testDim-1, testDim)
	require.NoError(t, err)
	detections[m[2]] = &detector.Detection{Bits: short, Grid: detections[m[2]].Grid}

	d := NewDecoder(testSession(t, indices), detections, nil)
	summary, err := d.Decode(img, m[0], m[1], m[2])
	require.NoError(t, err)
	require.Len(t, summary.Attempts, 7)

	for _, a := range summary.Attempts[:6] {
		assert.NoError(t, a.Err)
		assert.True(t, a.Passed(), a.String())
	}

	composed := summary.Attempts[6]
	assert.Equal(t, Composed, composed.Strategy)
	assert.True(t, errors.Is(composed.Err, ErrCompositionUnavailable))
	assert.False(t, composed.Passed())
	assert.True(t, summary.Passed())
}

func TestDecodeObserverIndependent(t *testing.T) {
	indices, img, m := testSymbol(t, 11)
	other, err := render.Symbol(testDim, 12)
	require.NoError(t, err)

	for _, ref := range [][]int{indices, other} {
		session := testSession(t, ref)

		quiet, err := NewDecoder(session, detector.AxisAligned{}, nil).Decode(img, m[0], m[1], m[2])
		require.NoError(t, err)

		observer := new(recordingObserver)
		loud, err := NewDecoder(session, detector.AxisAligned{}, observer).Decode(img, m[0], m[1], m[2])
		require.NoError(t, err)

		assert.NotEmpty(t, observer.lines)
		assert.Equal(t, quiet, loud)
	}
}

func TestLogObserver(t *testing.T) {
	var buf bytes.Buffer
	o := LogObserver{Logger: log.New(&buf, "", 0)}

	m, err := bitmatrix.New(3, 2)
	require.NoError(t, err)
	o.Logf("hello %d", 1)
	o.Matrix("mr", m, nil)
	o.Image("pr", bitmatrix.Image(m), nil)

	assert.Equal(t, []string{"hello 1", "Matrix mr: 3x2", "Image pr: 3x2"}, strings.Split(strings.TrimSpace(buf.String()), "\n"))
}
