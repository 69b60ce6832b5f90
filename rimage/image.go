package rimage

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"

	"go.viam.com/navviz/utils"
)

// ReadImageFromFile decodes the image at path. The format is taken from the file contents.
func ReadImageFromFile(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't read image %q", path)
	}
	return img, nil
}

// WriteImageToFile encodes img to path, choosing the format from the file extension.
func WriteImageToFile(path string, img image.Image) error {
	if err := utils.EnsureDir(utils.ParentDir(path)); err != nil {
		return err
	}
	if err := imaging.Save(img, path); err != nil {
		return errors.Wrapf(err, "couldn't write image %q", path)
	}
	return nil
}

// Fit scales img down with bilinear interpolation to fit within width x height, keeping its
// aspect ratio. Images that already fit are returned unchanged.
func Fit(img image.Image, width, height int) image.Image {
	if width <= 0 || height <= 0 {
		return img
	}
	return resize.Thumbnail(uint(width), uint(height), img, resize.Bilinear)
}

// ResizeNearest scales img to exactly width x height by sampling the nearest source pixel, so
// the output only contains colors present in img.
func ResizeNearest(img image.Image, width, height int) *image.NRGBA {
	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Bounds() == image.Rect(0, 0, width, height) {
		return nrgba
	}
	return imaging.Resize(img, width, height, imaging.NearestNeighbor)
}

// NewFilledNRGBA returns a width x height image filled with c.
func NewFilledNRGBA(width, height int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

// CompositeOver flattens img onto an opaque background of color bg.
func CompositeOver(img image.Image, bg color.Color) *image.NRGBA {
	b := img.Bounds()
	out := NewFilledNRGBA(b.Dx(), b.Dy(), bg)
	return imaging.Overlay(out, img, image.Point{}, 1.0)
}

// ToNRGBA returns img as an *image.NRGBA anchored at the origin, copying only when needed.
func ToNRGBA(img image.Image) *image.NRGBA {
	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Bounds().Min == (image.Point{}) {
		return nrgba
	}
	return imaging.Clone(img)
}
