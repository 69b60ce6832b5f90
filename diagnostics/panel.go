// Package diagnostics renders observation/goal segmentation panels and logs them to an
// experiment Sink.
package diagnostics

import (
	"context"
	"fmt"
	"image"
	"path/filepath"

	"github.com/fogleman/gg"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"go.viam.com/navviz/logging"
	"go.viam.com/navviz/rimage"
	"go.viam.com/navviz/utils"
	"go.viam.com/navviz/vision/segmentation"
)

// ExamplesKey is the sink key panels are logged under.
const ExamplesKey = "examples"

// PanelTitles are the titles of the four panels, left to right.
var PanelTitles = [4]string{"Observation", "Goal", "Obs Map", "Goal Map"}

// PanelInput is one observation/goal pair with the masks generated for each.
type PanelInput struct {
	Obs       *tensor.Dense
	Goal      *tensor.Dense
	ObsMasks  []segmentation.Mask
	GoalMasks []segmentation.Mask
}

// PanelConfig configures a PanelLogger.
type PanelConfig struct {
	// OutputDir receives maps_<i>.png figures.
	OutputDir string `json:"output_dir"`
	// VizFreq renders every VizFreq-th pair of a batch.
	VizFreq int `json:"viz_freq"`
	// PanelSize is the side of the square each panel is fit into, in pixels.
	PanelSize int `json:"panel_size"`
	// TitleSize is the title font size in points.
	TitleSize float64 `json:"title_size"`
}

// DefaultPanelConfig returns the configuration used by the training pipeline.
func DefaultPanelConfig() PanelConfig {
	return PanelConfig{
		OutputDir: "examples",
		VizFreq:   10,
		PanelSize: 256,
		TitleSize: 14,
	}
}

// Validate checks the configuration.
func (conf PanelConfig) Validate() error {
	if conf.VizFreq <= 0 {
		return errors.Errorf("viz_freq must be positive, got %d", conf.VizFreq)
	}
	if conf.PanelSize <= 0 {
		return errors.Errorf("panel_size must be positive, got %d", conf.PanelSize)
	}
	if conf.TitleSize <= 0 {
		return errors.Errorf("title_size must be positive, got %v", conf.TitleSize)
	}
	if conf.OutputDir == "" {
		return errors.New("output_dir is required")
	}
	return nil
}

// PanelLogger renders four-panel segmentation figures and logs them to a Sink.
type PanelLogger struct {
	conf   PanelConfig
	sink   Sink
	src    rimage.ColorSource
	logger logging.Logger
}

// NewPanelLogger returns a PanelLogger for a validated configuration. A nil src colors masks
// from the global random source, and a nil logger logs through the global logger.
func NewPanelLogger(conf PanelConfig, sink Sink, src rimage.ColorSource, logger logging.Logger) (*PanelLogger, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	if sink == nil {
		return nil, errors.New("a sink is required")
	}
	if logger == nil {
		logger = logging.Global().Sublogger("panels")
	}
	return &PanelLogger{conf: conf, sink: sink, src: src, logger: logger}, nil
}

// FigurePath is where the figure for batch index i is written.
func (pl *PanelLogger) FigurePath(i int) string {
	return filepath.Join(pl.conf.OutputDir, fmt.Sprintf("maps_%d.png", i))
}

// LogSAMMaps renders every VizFreq-th pair of batch, starting with the first. Each figure is
// written to FigurePath and appended to this call's image list, and the list so far is logged
// under ExamplesKey without advancing the sink step.
func (pl *PanelLogger) LogSAMMaps(ctx context.Context, batch []PanelInput) error {
	if err := utils.EnsureDir(pl.conf.OutputDir); err != nil {
		return err
	}
	var images []Image
	for i, in := range batch {
		if i%pl.conf.VizFreq != 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		fig, err := pl.RenderFigure(in)
		if err != nil {
			return errors.Wrapf(err, "couldn't render panels for pair %d", i)
		}
		path := pl.FigurePath(i)
		if err := rimage.WriteImageToFile(path, fig); err != nil {
			return err
		}
		img, err := pl.sink.ImageFromFile(path)
		if err != nil {
			return err
		}
		images = append(images, img)
		if err := pl.sink.LogImages(ctx, ExamplesKey, images, false); err != nil {
			return errors.Wrapf(err, "couldn't log %s", filepath.Base(path))
		}
		pl.logger.Infof("Finished generating masks for %s.", filepath.Base(path))
	}
	return nil
}

// RenderFigure lays out the observation, the goal and their mask overlays side by side under
// their titles, on a white background.
func (pl *PanelLogger) RenderFigure(in PanelInput) (image.Image, error) {
	obs, err := rimage.CHWTensorToImage(in.Obs)
	if err != nil {
		return nil, errors.Wrap(err, "observation")
	}
	goal, err := rimage.CHWTensorToImage(in.Goal)
	if err != nil {
		return nil, errors.Wrap(err, "goal")
	}
	obsMap, err := pl.overlayPanel(in.ObsMasks, obs.Bounds())
	if err != nil {
		return nil, errors.Wrap(err, "observation masks")
	}
	goalMap, err := pl.overlayPanel(in.GoalMasks, goal.Bounds())
	if err != nil {
		return nil, errors.Wrap(err, "goal masks")
	}
	panels := []image.Image{obs, goal, obsMap, goalMap}

	size := pl.conf.PanelSize
	margin := size / 16
	titleHeight := rimage.TitleHeight(pl.conf.TitleSize)
	width := len(panels)*size + (len(panels)+1)*margin
	height := titleHeight + size + 2*margin

	dc := gg.NewContext(width, height)
	dc.SetColor(rimage.White)
	dc.Clear()
	for i, panel := range panels {
		fitted := rimage.Fit(panel, size, size)
		left := margin + i*(size+margin)
		top := margin + titleHeight
		// center inside the square slot
		x := left + (size-fitted.Bounds().Dx())/2
		y := top + (size-fitted.Bounds().Dy())/2
		dc.DrawImage(fitted, x, y)
		rimage.DrawTitle(dc, PanelTitles[i], float64(left)+float64(size)/2, float64(margin), rimage.Black, pl.conf.TitleSize)
	}
	return dc.Image(), nil
}

// overlayPanel renders masks as translucent regions over white. No masks leaves the panel blank.
func (pl *PanelLogger) overlayPanel(masks []segmentation.Mask, bounds image.Rectangle) (image.Image, error) {
	overlay, err := segmentation.OverlayImage(masks, pl.src, segmentation.OverlayAlpha)
	if err != nil {
		return nil, err
	}
	if overlay == nil {
		return rimage.NewFilledNRGBA(bounds.Dx(), bounds.Dy(), rimage.White), nil
	}
	return rimage.CompositeOver(overlay, rimage.White), nil
}
