// Package rimage holds the image plumbing shared by the plotting, segmentation and diagnostics
// packages: colors, tensor conversion, resizing, file IO and text drawing.
package rimage

import (
	"fmt"
	"image/color"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"

	"go.viam.com/navviz/utils"
)

// Some named colors.
var (
	Red     = color.NRGBA{R: 255, A: 255}
	Green   = color.NRGBA{G: 255, A: 255}
	Blue    = color.NRGBA{B: 255, A: 255}
	Cyan    = color.NRGBA{G: 255, B: 255, A: 255}
	Yellow  = color.NRGBA{R: 255, G: 255, A: 255}
	Magenta = color.NRGBA{R: 255, B: 255, A: 255}
	White   = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	Black   = color.NRGBA{A: 255}
)

// A ColorSource supplies uniformly distributed values in [0, 1). *rand.Rand satisfies it, so
// callers that need reproducible colors can pass a seeded generator.
type ColorSource interface {
	Float64() float64
}

type globalSource struct{}

func (globalSource) Float64() float64 {
	return rand.Float64() //nolint:gosec
}

// GlobalColorSource draws from the process-wide math/rand generator.
var GlobalColorSource ColorSource = globalSource{}

// RandomColor draws one opaque color from src, one value per channel. A nil src uses
// GlobalColorSource.
func RandomColor(src ColorSource) color.NRGBA {
	if src == nil {
		src = GlobalColorSource
	}
	return color.NRGBA{
		R: utils.UnitToUint8(src.Float64()),
		G: utils.UnitToUint8(src.Float64()),
		B: utils.UnitToUint8(src.Float64()),
		A: 255,
	}
}

// WithAlpha returns c with its alpha replaced by alpha in [0, 1].
func WithAlpha(c color.Color, alpha float64) color.NRGBA {
	nc := color.NRGBAModel.Convert(c).(color.NRGBA)
	nc.A = utils.UnitToUint8(alpha)
	return nc
}

// ScaleColor multiplies the red, green and blue intensities of c by factor, keeping its alpha.
func ScaleColor(c color.Color, factor float64) color.NRGBA {
	nc := color.NRGBAModel.Convert(c).(color.NRGBA)
	opaque := nc
	opaque.A = 255
	cc, ok := colorful.MakeColor(opaque)
	if !ok {
		return nc
	}
	scaled := colorful.Color{R: cc.R * factor, G: cc.G * factor, B: cc.B * factor}.Clamped()
	r, g, b := scaled.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: nc.A}
}

// Palette returns n opaque colors with evenly spaced hues.
func Palette(n int) []color.Color {
	if n <= 0 {
		return nil
	}
	colors := make([]color.Color, 0, n)
	for i := 0; i < n; i++ {
		r, g, b := colorful.Hsv(360*float64(i)/float64(n), 0.7, 0.9).RGB255()
		colors = append(colors, color.NRGBA{R: r, G: g, B: b, A: 255})
	}
	return colors
}

// NewColorFromHex parses "#rrggbb" into an opaque color.
func NewColorFromHex(hex string) (color.NRGBA, error) {
	cc, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, errors.Wrapf(err, "couldn't parse hex color %q", hex)
	}
	r, g, b := cc.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// Hex formats c as "#rrggbb", dropping alpha.
func Hex(c color.Color) string {
	nc := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%.2x%.2x%.2x", nc.R, nc.G, nc.B)
}
