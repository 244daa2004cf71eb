/*
Package colorcode is a library for benchmarking the decoding of colored
matrix codes.

A colored matrix code is a QR-like symbol where each module is printed in one
of up to eight colors, one bit per R, G and B channel. Decoding recovers the
color index of every module from a captured image and its three binarized
channels, and scores the result against a known reference pattern.
*/
package colorcode

import (
	"errors"

	"github.com/bodgit/colorcode/bitmatrix"
	"github.com/bodgit/colorcode/detector"
)

var (
	// ErrDetectionFailed is returned when a channel's symbol structure
	// cannot be located. It aborts the whole decode.
	ErrDetectionFailed = errors.New("colorcode: detection failed")
	// ErrCompositionUnavailable is returned when the channel matrices are
	// missing or differ in size.
	ErrCompositionUnavailable = errors.New("colorcode: composition unavailable")
	// ErrNoReference is returned when a session is created without a
	// reference template.
	ErrNoReference = errors.New("colorcode: no reference")
)

// Detector locates a symbol in one binarized channel.
type Detector interface {
	Detect(*bitmatrix.BitMatrix) (*detector.Detection, error)
}
