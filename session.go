package colorcode

import (
	"image"

	"github.com/bodgit/colorcode/grid"
	"github.com/bodgit/colorcode/palette"
	"github.com/bodgit/colorcode/reference"
)

// Session binds a reference template for the lifetime of a benchmark. It is
// immutable and safe to share between decoders running concurrently; a new
// reference means a new session.
type Session struct {
	ref *reference.Template
}

// NewSession returns a session scoring against ref.
func NewSession(ref *reference.Template) (*Session, error) {
	if ref == nil {
		return nil, ErrNoReference
	}
	return &Session{
		ref: ref,
	}, nil
}

// Reference returns the session's template.
func (s *Session) Reference() *reference.Template {
	return s.ref
}

// Calibrate builds a palette for img from the calibration modules of g.
func (s *Session) Calibrate(img image.Image, g *grid.Grid) (palette.Palette, error) {
	return palette.Calibrate(img, g, s.ref.ColorCount(), palette.FinderColumns)
}

// Validate scores decoded against the reference using the dimensions of g.
func (s *Session) Validate(decoded []int, g *grid.Grid) reference.Report {
	return s.ref.Validate(decoded, g.DimensionX, g.DimensionY)
}
