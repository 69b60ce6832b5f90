package segmentation

import (
	"image"
	"image/color"

	"gorgonia.org/tensor"

	"go.viam.com/navviz/rimage"
)

// MaskImageSize is the width and height of the image produced by MaskToImage.
const MaskImageSize = 256

// OverlayAlpha is the opacity used for mask overlays in diagnostic panels.
const OverlayAlpha = 0.35

// PaintMasks composites masks onto a white canvas the size of their grids. Masks are painted
// from largest to smallest area, one random color per mask, so wherever masks overlap the pixel
// takes the color of the smallest covering mask.
func PaintMasks(masks []Mask, src rimage.ColorSource) (*image.NRGBA, error) {
	height, width, err := checkGrids(masks)
	if err != nil {
		return nil, err
	}
	canvas := rimage.NewFilledNRGBA(width, height, rimage.White)
	paint(canvas, SortByArea(masks), src, func(c color.NRGBA) color.NRGBA { return c })
	return canvas, nil
}

// MaskToImage renders masks with PaintMasks, resizes the result to MaskImageSize square and
// returns it as a (1, 3, MaskImageSize, MaskImageSize) float32 tensor with values in [0, 1].
// Resizing samples the nearest pixel, so no colors other than the mask colors and white appear.
// A nil src draws colors from the global random source.
func MaskToImage(masks []Mask, src rimage.ColorSource) (*tensor.Dense, error) {
	canvas, err := PaintMasks(masks, src)
	if err != nil {
		return nil, err
	}
	resized := rimage.ResizeNearest(canvas, MaskImageSize, MaskImageSize)
	return rimage.ImageToFloatTensor(resized), nil
}

// OverlayImage paints masks onto a fully transparent canvas, largest first, each with a random
// color at the given opacity. It returns nil when there are no masks.
func OverlayImage(masks []Mask, src rimage.ColorSource, alpha float64) (*image.NRGBA, error) {
	if len(masks) == 0 {
		return nil, nil
	}
	height, width, err := checkGrids(masks)
	if err != nil {
		return nil, err
	}
	canvas := rimage.NewFilledNRGBA(width, height, color.NRGBA{R: 255, G: 255, B: 255})
	paint(canvas, SortByArea(masks), src, func(c color.NRGBA) color.NRGBA {
		return rimage.WithAlpha(c, alpha)
	})
	return canvas, nil
}

func paint(canvas *image.NRGBA, sorted []Mask, src rimage.ColorSource, style func(color.NRGBA) color.NRGBA) {
	for _, m := range sorted {
		c := style(rimage.RandomColor(src))
		for y, row := range m.Segmentation {
			for x, covered := range row {
				if covered {
					canvas.SetNRGBA(x, y, c)
				}
			}
		}
	}
}
