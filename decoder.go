package colorcode

import (
	"fmt"
	"image"
	"strings"

	"github.com/bodgit/colorcode/bitmatrix"
	"github.com/bodgit/colorcode/grid"
	"github.com/bodgit/colorcode/reference"
)

// Strategy is the way an attempt derives module colors.
type Strategy int

// Supported strategies.
const (
	// Binary samples the density of the three channel matrices.
	Binary Strategy = iota
	// Colour classifies image pixels against a calibrated palette.
	Colour
	// Composed merges the detector's per-channel module matrices.
	Composed
)

func (s Strategy) String() string {
	switch s {
	case Binary:
		return "Binary"
	case Colour:
		return "Colour"
	case Composed:
		return "Composed"
	default:
		return "Unknown"
	}
}

// Attempt is the outcome of one decode-and-validate step.
type Attempt struct {
	Step     int
	Layer    string
	Strategy Strategy
	Report   reference.Report
	// Err is set when no grid could be decoded, for example when
	// calibration is incomplete. The Report is then empty.
	Err error
}

// Passed reports whether the decoded grid matched the reference.
func (a Attempt) Passed() bool {
	return a.Err == nil && a.Report.Passed
}

func (a Attempt) String() string {
	if a.Err != nil {
		return fmt.Sprintf("Step %d [%s/%s]: error: %v", a.Step, a.Layer, a.Strategy, a.Err)
	}
	return fmt.Sprintf("Step %d [%s/%s]: %s", a.Step, a.Layer, a.Strategy, a.Report)
}

// Summary collects the attempts of one decode.
type Summary struct {
	Attempts []Attempt
}

// Passed reports whether any attempt matched the reference.
func (s *Summary) Passed() bool {
	for _, a := range s.Attempts {
		if a.Passed() {
			return true
		}
	}
	return false
}

// Decoder runs every decode strategy over a captured symbol.
type Decoder struct {
	session  *Session
	detector Detector
	observer Observer
}

// NewDecoder returns a Decoder. A nil observer discards diagnostics.
func NewDecoder(session *Session, detector Detector, observer Observer) *Decoder {
	if observer == nil {
		observer = NopObserver{}
	}
	return &Decoder{
		session:  session,
		detector: detector,
		observer: observer,
	}
}

func (d *Decoder) attempt(a Attempt, g *grid.Grid, decode func() ([]int, error)) Attempt {
	d.observer.Logf("Step %d: try using %s-layer to decode the image[%s]: start!", a.Step, a.Layer, a.Strategy)

	decoded, err := decode()
	if err != nil {
		a.Err = err
		d.observer.Logf("Step %d: %v", a.Step, err)
		d.observer.Logf("Step %d: try using %s-layer to decode the image[%s]: fail!", a.Step, a.Layer, a.Strategy)
		return a
	}

	a.Report = d.session.Validate(decoded, g)
	if a.Report.Histogram != nil {
		d.observer.Logf("Decoded histogram: %v, expected: %v", a.Report.Histogram, d.session.Reference().Histogram())
	}
	d.observer.Logf("Decoded dimension: %dx%d: %s", g.DimensionX, g.DimensionY, a.Report)
	if a.Report.Reason == reference.ReasonDiff {
		for _, line := range d.session.Reference().DiffMap(decoded) {
			d.observer.Logf("%s", line)
		}
	}

	result := "fail"
	if a.Report.Passed {
		result = "success"
	}
	d.observer.Logf("Step %d: try using %s-layer to decode the image[%s]: %s!", a.Step, a.Layer, a.Strategy, result)

	return a
}

// Decode detects the symbol in each of the r, g and b channel matrices and
// runs seven attempts: binary and colour sampling on each channel's grid,
// then composition of the detected module matrices. If any channel cannot be
// detected the decode stops with ErrDetectionFailed.
func (d *Decoder) Decode(img image.Image, r, g, b *bitmatrix.BitMatrix) (*Summary, error) {
	channels := []struct {
		ch bitmatrix.Channel
		m  *bitmatrix.BitMatrix
	}{
		{bitmatrix.Red, r},
		{bitmatrix.Green, g},
		{bitmatrix.Blue, b},
	}

	var (
		summary Summary
		modules [3]*bitmatrix.BitMatrix
		last    *grid.Grid
	)

	step := 1
	for i, c := range channels {
		layer := c.ch.String()
		suffix := strings.ToLower(layer)

		detection, err := d.detector.Detect(c.m)
		if err != nil {
			d.observer.Logf("Step %d: can not detect mapping points in %s layer!", step, layer)
			return nil, fmt.Errorf("%w: %s layer: %w", ErrDetectionFailed, layer, err)
		}
		d.observer.Image("p"+suffix, img, detection.Grid)
		d.observer.Matrix("m"+suffix, detection.Bits, nil)
		d.observer.Matrix("b"+suffix, c.m, detection.Grid)

		modules[i] = detection.Bits
		last = detection.Grid

		// Every channel's binary attempt samples all three matrices
		summary.Attempts = append(summary.Attempts, d.attempt(Attempt{Step: step, Layer: layer, Strategy: Binary}, last, func() ([]int, error) {
			return SampleBinary(r, g, b, detection.Grid)
		}))
		step++

		summary.Attempts = append(summary.Attempts, d.attempt(Attempt{Step: step, Layer: layer, Strategy: Colour}, last, func() ([]int, error) {
			p, err := d.session.Calibrate(img, detection.Grid)
			if err != nil {
				return nil, err
			}
			d.observer.Logf("Color palette: %v", p)
			return SampleColour(img, detection.Grid, p)
		}))
		step++
	}

	summary.Attempts = append(summary.Attempts, d.attempt(Attempt{Step: step, Layer: "RGB", Strategy: Composed}, last, func() ([]int, error) {
		return Compose(modules[0], modules[1], modules[2])
	}))

	return &summary, nil
}
