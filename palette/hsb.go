package palette

import (
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// HSB is a hue, saturation, brightness triple, each component in [0, 1].
type HSB [3]float64

// ToHSB converts 8-bit RGB to HSB. Hue is the HSV angle scaled to [0, 1).
func ToHSB(r, g, b uint8) HSB {
	h, s, v := colorful.Color{
		R: float64(r) / 255.0,
		G: float64(g) / 255.0,
		B: float64(b) / 255.0,
	}.Hsv()
	h /= 360.0
	if h >= 1 {
		h = 0
	}
	return HSB{h, s, v}
}

// Pixel returns the RGB components of the pixel at (x, y), measured from the
// top-left corner of img's bounds. Alpha is ignored.
func Pixel(img image.Image, x, y int) (uint8, uint8, uint8, error) {
	b := img.Bounds()
	p := image.Pt(b.Min.X+x, b.Min.Y+y)
	if !p.In(b) {
		return 0, 0, 0, ErrOutOfBounds
	}
	c := color.NRGBAModel.Convert(img.At(p.X, p.Y)).(color.NRGBA)
	return c.R, c.G, c.B, nil
}
