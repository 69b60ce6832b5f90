package cli

import (
	"image/color"
	"os"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
	"github.com/yosuke-furukawa/json5/encoding/json5"
	"gonum.org/v1/plot/vg"

	"go.viam.com/navviz/rimage"
	"go.viam.com/navviz/trajplot"
)

// plotInput is the document read by the plot command. Unset styling keeps the renderer defaults.
type plotInput struct {
	Title           string        `json:"title"`
	Trajectories    [][][]float64 `json:"trajectories"`
	Points          [][]float64   `json:"points"`
	TrajColors      []string      `json:"traj_colors"`
	PointColors     []string      `json:"point_colors"`
	TrajLabels      []string      `json:"traj_labels"`
	PointLabels     []string      `json:"point_labels"`
	TrajAlphas      []float64     `json:"traj_alphas"`
	PointAlphas     []float64     `json:"point_alphas"`
	QuiverFreq      *int          `json:"quiver_freq"`
	DefaultColoring *bool         `json:"default_coloring"`
	NoLegend        bool          `json:"no_legend"`
}

func readPlotInput(path string) (*plotInput, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't read plot input %q", path)
	}
	var in plotInput
	if err := json5.Unmarshal(data, &in); err != nil {
		return nil, errors.Wrapf(err, "couldn't parse plot input %q", path)
	}
	return &in, nil
}

func parseColors(hexes []string) ([]color.Color, error) {
	if hexes == nil {
		return nil, nil
	}
	colors := make([]color.Color, 0, len(hexes))
	for _, hex := range hexes {
		c, err := rimage.NewColorFromHex(hex)
		if err != nil {
			return nil, err
		}
		colors = append(colors, c)
	}
	return colors, nil
}

// points converts [x, y] pairs.
func (in *plotInput) points() ([]trajplot.Point, error) {
	for i, p := range in.Points {
		if len(p) != 2 {
			return nil, errors.Errorf("point %d must be [x, y], got %v", i, p)
		}
	}
	return lo.Map(in.Points, func(p []float64, _ int) trajplot.Point {
		return trajplot.Point{X: p[0], Y: p[1]}
	}), nil
}

func (in *plotInput) trajectories() []trajplot.Trajectory {
	return lo.Map(in.Trajectories, func(rows [][]float64, _ int) trajplot.Trajectory {
		return rows
	})
}

// options layers the document's styling over the renderer defaults.
func (in *plotInput) options() (trajplot.Options, error) {
	opts := trajplot.DefaultOptions()

	trajColors, err := parseColors(in.TrajColors)
	if err != nil {
		return opts, errors.Wrap(err, "traj_colors")
	}
	if trajColors != nil {
		opts.TrajColors = trajColors
	}
	pointColors, err := parseColors(in.PointColors)
	if err != nil {
		return opts, errors.Wrap(err, "point_colors")
	}
	if pointColors != nil {
		opts.PointColors = pointColors
	}

	if in.TrajLabels != nil {
		opts.TrajLabels = in.TrajLabels
	}
	if in.PointLabels != nil {
		opts.PointLabels = in.PointLabels
	}
	if in.NoLegend {
		opts.TrajLabels = nil
		opts.PointLabels = nil
	}
	opts.TrajAlphas = in.TrajAlphas
	opts.PointAlphas = in.PointAlphas
	if in.QuiverFreq != nil {
		opts.QuiverFreq = *in.QuiverFreq
	}
	if in.DefaultColoring != nil {
		opts.DefaultColoring = *in.DefaultColoring
	}
	return opts, nil
}

// PlotAction renders the trajectories and points of a JSON5 document to an image.
func PlotAction(c *cli.Context) error {
	logger, done := newLogger(c)
	defer done()

	in, err := readPlotInput(c.Path(plotFlagInput))
	if err != nil {
		return err
	}
	points, err := in.points()
	if err != nil {
		return err
	}
	opts, err := in.options()
	if err != nil {
		return err
	}
	if freq := c.Int(plotFlagQuiverFreq); freq >= 0 {
		opts.QuiverFreq = freq
	}
	title := in.Title
	if c.IsSet(plotFlagTitle) {
		title = c.String(plotFlagTitle)
	}

	ax := trajplot.NewPlotAxes(title)
	if err := trajplot.PlotTrajsAndPoints(ax, in.trajectories(), points, opts); err != nil {
		return err
	}

	output := c.Path(plotFlagOutput)
	width := vg.Length(c.Float64(plotFlagWidth)) * vg.Inch
	height := vg.Length(c.Float64(plotFlagHeight)) * vg.Inch
	if err := ax.Save(width, height, output); err != nil {
		return err
	}
	logger.Debugw("plot saved", "trajectories", len(in.Trajectories), "points", len(points))
	printf(c.App.Writer, "Wrote %s", output)
	return nil
}
