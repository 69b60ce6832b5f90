package cli

import (
	"context"
	"image"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"

	"go.viam.com/navviz/rimage"
	"go.viam.com/navviz/vision/segmentation"
)

const (
	histogramBins  = 10
	histogramWidth = 40
)

// newGenerator builds the named generator, passing k only to generators that take it.
func newGenerator(ctx context.Context, name string, k int) (segmentation.Generator, error) {
	reg, err := segmentation.GeneratorLookup(name)
	if err != nil {
		return nil, err
	}
	attrs := segmentation.Attributes{}
	if lo.Contains(reg.Parameters, "k") {
		attrs["k"] = k
	}
	return segmentation.NewGenerator(ctx, name, attrs)
}

// generateMasks runs gen over an image file, going through the same tensor path as training
// observations.
func generateMasks(ctx context.Context, gen segmentation.Generator, path string) (image.Image, []segmentation.Mask, error) {
	img, err := rimage.ReadImageFromFile(path)
	if err != nil {
		return nil, nil, err
	}
	masks, err := segmentation.GenerateMasks(ctx, gen, rimage.ImageToFloatTensor(img))
	if err != nil {
		return nil, nil, errors.Wrapf(err, "couldn't generate masks for %q", path)
	}
	return img, masks, nil
}

// MasksAction generates masks for an image and writes the rendered mask image.
func MasksAction(c *cli.Context) error {
	logger, done := newLogger(c)
	defer done()

	gen, err := newGenerator(c.Context, c.String(masksFlagGenerator), c.Int(masksFlagK))
	if err != nil {
		return err
	}
	_, masks, err := generateMasks(c.Context, gen, c.Path(masksFlagImage))
	if err != nil {
		return err
	}
	logger.Debugw("generated masks", "generator", c.String(masksFlagGenerator), "count", len(masks))

	tens, err := segmentation.MaskToImage(masks, nil)
	if err != nil {
		return err
	}
	out, err := rimage.CHWTensorToImage(tens)
	if err != nil {
		return err
	}
	output := c.Path(masksFlagOutput)
	if err := rimage.WriteImageToFile(output, out); err != nil {
		return err
	}
	printf(c.App.Writer, "Wrote %d masks to %s", len(masks), output)

	if c.Bool(masksFlagStats) {
		return printAreaStats(c, masks)
	}
	return nil
}

func printAreaStats(c *cli.Context, masks []segmentation.Mask) error {
	areas := lo.Map(masks, func(m segmentation.Mask, _ int) float64 {
		return float64(m.Area)
	})
	mean, err := stats.Mean(areas)
	if err != nil {
		return errors.Wrap(err, "couldn't compute mean mask area")
	}
	median, err := stats.Median(areas)
	if err != nil {
		return errors.Wrap(err, "couldn't compute median mask area")
	}
	printf(c.App.Writer, "Mask area mean: %.1f median: %.1f", mean, median)
	hist := histogram.Hist(min(histogramBins, len(areas)), areas)
	return histogram.Fprint(c.App.Writer, hist, histogram.Linear(histogramWidth))
}
