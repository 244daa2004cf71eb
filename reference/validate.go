package reference

import (
	"fmt"
	"strings"
)

// Reason explains the outcome of a validation.
type Reason int

// Validation outcomes. Only ReasonNone is a pass.
const (
	ReasonNone Reason = iota
	ReasonNoReference
	ReasonNoResult
	ReasonNotSquare
	ReasonDimension
	ReasonHistogram
	ReasonLength
	ReasonDiff
)

var reasonNames = [...]string{
	ReasonNone:        "match",
	ReasonNoReference: "no reference loaded",
	ReasonNoResult:    "no decoded result",
	ReasonNotSquare:   "decoded dimension is not square",
	ReasonDimension:   "decoded dimension is different",
	ReasonHistogram:   "histogram is different",
	ReasonLength:      "length is different",
	ReasonDiff:        "modules differ",
}

func (r Reason) String() string {
	if r < 0 || int(r) >= len(reasonNames) {
		return "unknown"
	}
	return reasonNames[r]
}

// Report is the result of scoring a decoded grid. A failed report is a
// normal outcome, not an error.
type Report struct {
	Passed bool
	Reason Reason
	// Diff is the number of modules that differ from the reference. It is
	// only computed once histogram and length checks pass.
	Diff int
	// Length is the number of modules compared.
	Length    int
	Histogram []int
}

func (r Report) String() string {
	switch r.Reason {
	case ReasonNone:
		return fmt.Sprintf("pass (%d modules)", r.Length)
	case ReasonDiff:
		return fmt.Sprintf("fail: %d/%d %s", r.Diff, r.Length, r.Reason)
	default:
		return "fail: " + r.Reason.String()
	}
}

// inRange reports whether every decoded index has a slot in a histogram of
// length n. Anything outside cannot match.
func inRange(decoded []int, n int) bool {
	for _, i := range decoded {
		if i < 0 || i >= n {
			return false
		}
	}
	return true
}

func equal(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Validate scores decoded, a row-major grid of dimensionX by dimensionY
// modules, against t. A nil template always fails.
func (t *Template) Validate(decoded []int, dimensionX, dimensionY int) Report {
	switch {
	case t == nil:
		return Report{Reason: ReasonNoReference}
	case decoded == nil:
		return Report{Reason: ReasonNoResult}
	case dimensionX != dimensionY:
		return Report{Reason: ReasonNotSquare}
	case dimensionX != t.dimension:
		return Report{Reason: ReasonDimension}
	}

	if !inRange(decoded, len(t.histogram)) {
		return Report{Reason: ReasonHistogram}
	}
	histogram := Histogram(decoded)
	if !equal(histogram, t.histogram) {
		return Report{Reason: ReasonHistogram, Histogram: histogram}
	}

	if len(decoded) != len(t.indices) {
		return Report{Reason: ReasonLength, Histogram: histogram}
	}

	diff := 0
	for i, v := range t.indices {
		if decoded[i] != v {
			diff++
		}
	}

	report := Report{
		Passed:    diff == 0,
		Diff:      diff,
		Length:    len(t.indices),
		Histogram: histogram,
	}
	if diff != 0 {
		report.Reason = ReasonDiff
	}
	return report
}

// DiffMap renders decoded against t one symbol row per line. Each module is
// written as "ref:got" when it matches and "refxgot" when it does not.
func (t *Template) DiffMap(decoded []int) []string {
	if t == nil || len(decoded) != len(t.indices) {
		return nil
	}

	lines := make([]string, 0, t.dimension)
	var line strings.Builder
	for i, v := range t.indices {
		sep := ':'
		if decoded[i] != v {
			sep = 'x'
		}
		fmt.Fprintf(&line, " %d%c%d", v, sep, decoded[i])
		if (i+1)%t.dimension == 0 {
			lines = append(lines, line.String())
			line.Reset()
		}
	}
	return lines
}
