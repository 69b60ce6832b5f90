package rimage

import (
	"image/color"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
)

var titleFont *truetype.Font

func init() {
	var err error
	titleFont, err = truetype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
}

// Font returns the font used for titles.
func Font() *truetype.Font {
	return titleFont
}

// DrawTitle writes text horizontally centered on cx with its top edge at y.
func DrawTitle(dc *gg.Context, text string, cx, y float64, c color.Color, size float64) {
	dc.SetFontFace(truetype.NewFace(Font(), &truetype.Options{Size: size}))
	dc.SetColor(c)
	dc.DrawStringAnchored(text, cx, y, 0.5, 1)
}

// TitleHeight is the vertical space reserved above a panel for a title of the given font size.
func TitleHeight(size float64) int {
	return int(size*1.6 + 0.5)
}
