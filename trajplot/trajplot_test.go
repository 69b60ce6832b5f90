package trajplot

import (
	"image/color"
	"math"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/navviz/rimage"
)

type plotCall struct {
	xs, ys []float64
	style  Style
}

type quiverCall struct {
	xs, ys, us, vs []float64
	color          color.Color
}

type recordingAxes struct {
	plots       []plotCall
	quivers     []quiverCall
	legendLoc   LegendLocation
	legendCols  int
	legend      bool
	aspectEqual bool
}

func (ax *recordingAxes) Plot(xs, ys []float64, style Style) error {
	ax.plots = append(ax.plots, plotCall{xs, ys, style})
	return nil
}

func (ax *recordingAxes) Quiver(xs, ys, us, vs []float64, c color.Color) error {
	ax.quivers = append(ax.quivers, quiverCall{xs, ys, us, vs, c})
	return nil
}

func (ax *recordingAxes) Legend(loc LegendLocation, columns int) {
	ax.legend = true
	ax.legendLoc = loc
	ax.legendCols = columns
}

func (ax *recordingAxes) SetAspectEqual() {
	ax.aspectEqual = true
}

func (ax *recordingAxes) untouched() bool {
	return len(ax.plots) == 0 && len(ax.quivers) == 0 && !ax.legend && !ax.aspectEqual
}

// trajOnlyOptions drops the default point labels, which expect a robot and a goal point.
func trajOnlyOptions() Options {
	opts := DefaultOptions()
	opts.PointLabels = nil
	return opts
}

func TestPlotOneTrajectoryNoLabels(t *testing.T) {
	ax := &recordingAxes{}
	opts := DefaultOptions()
	opts.TrajLabels = nil
	opts.PointLabels = nil

	err := PlotTrajsAndPoints(ax, []Trajectory{{{0, 0}, {1, 1}, {2, 0}}}, []Point{{2, 2}}, opts)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ax.aspectEqual, test.ShouldBeTrue)
	test.That(t, ax.legend, test.ShouldBeFalse)
	test.That(t, ax.quivers, test.ShouldBeEmpty)
	test.That(t, ax.plots, test.ShouldHaveLength, 2)

	traj := ax.plots[0]
	test.That(t, traj.xs, test.ShouldResemble, []float64{0, 1, 2})
	test.That(t, traj.ys, test.ShouldResemble, []float64{0, 1, 0})
	test.That(t, traj.style, test.ShouldResemble, Style{Color: rimage.Cyan, Alpha: 1, Line: true, MarkerSize: TrajMarkerSize})

	pt := ax.plots[1]
	test.That(t, pt.xs, test.ShouldResemble, []float64{2})
	test.That(t, pt.ys, test.ShouldResemble, []float64{2})
	test.That(t, pt.style, test.ShouldResemble, Style{Color: rimage.Red, Alpha: 1, MarkerSize: PointMarkerSize})
}

func TestPlotDefaultsWithLabels(t *testing.T) {
	ax := &recordingAxes{}
	pred := Trajectory{{0, 0}, {1, 0}}
	truth := Trajectory{{0, 0}, {0, 1}}
	err := PlotTrajsAndPoints(ax, []Trajectory{pred, truth}, []Point{{0, 0}, {3, 3}}, DefaultOptions())
	test.That(t, err, test.ShouldBeNil)

	test.That(t, ax.legend, test.ShouldBeTrue)
	test.That(t, ax.legendLoc, test.ShouldEqual, LegendBelow)
	test.That(t, ax.legendCols, test.ShouldEqual, 2)
	test.That(t, ax.aspectEqual, test.ShouldBeTrue)

	var labels []string
	for _, p := range ax.plots {
		labels = append(labels, p.style.Label)
	}
	test.That(t, labels, test.ShouldResemble, []string{"prediction", "ground truth", "robot", "goal"})
	test.That(t, ax.plots[1].style.Color, test.ShouldResemble, rimage.Magenta)
	test.That(t, ax.plots[3].style.Color, test.ShouldResemble, rimage.Green)
}

func TestPlotLengthMismatch(t *testing.T) {
	twoTrajs := []Trajectory{{{0, 0}}, {{1, 1}}}
	for name, tc := range map[string]struct {
		trajs  []Trajectory
		points []Point
		opts   Options
	}{
		"traj colors": {
			trajs: twoTrajs,
			opts:  Options{TrajColors: []color.Color{rimage.Cyan}},
		},
		"point colors": {
			points: []Point{{0, 0}, {1, 1}},
			opts:   Options{PointColors: []color.Color{rimage.Red}},
		},
		"traj labels": {
			trajs: twoTrajs,
			opts:  Options{TrajColors: []color.Color{rimage.Cyan, rimage.Blue}, TrajLabels: []string{"a"}},
		},
		"point labels": {
			points: []Point{{0, 0}},
			opts:   Options{PointColors: []color.Color{rimage.Red}, PointLabels: []string{"a", "b"}},
		},
		"traj alphas": {
			trajs: twoTrajs,
			opts:  Options{DefaultColoring: true, TrajAlphas: []float64{1}},
		},
		"point alphas": {
			points: []Point{{0, 0}},
			opts:   Options{PointColors: []color.Color{rimage.Red}, PointAlphas: []float64{}},
		},
	} {
		t.Run(name, func(t *testing.T) {
			ax := &recordingAxes{}
			err := PlotTrajsAndPoints(ax, tc.trajs, tc.points, tc.opts)
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, errors.Is(err, ErrLengthMismatch), test.ShouldBeTrue)
			test.That(t, ax.untouched(), test.ShouldBeTrue)
		})
	}
}

func TestPlotInvalidInput(t *testing.T) {
	ax := &recordingAxes{}
	err := PlotTrajsAndPoints(ax, []Trajectory{{{0, 0}, {1}}}, nil, trajOnlyOptions())
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "row 1")
	test.That(t, ax.untouched(), test.ShouldBeTrue)

	opts := trajOnlyOptions()
	opts.QuiverFreq = -1
	err = PlotTrajsAndPoints(ax, nil, nil, opts)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, ax.untouched(), test.ShouldBeTrue)

	for _, alpha := range []float64{0, -0.5, 1.5} {
		opts = trajOnlyOptions()
		opts.TrajAlphas = []float64{alpha}
		err = PlotTrajsAndPoints(ax, []Trajectory{{{0, 0}, {1, 1}}}, nil, opts)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "alpha")
		test.That(t, ax.untouched(), test.ShouldBeTrue)
	}
}

func TestPlotDefaultColoringExtraTrajectories(t *testing.T) {
	ax := &recordingAxes{}
	trajs := []Trajectory{{{0, 0}}, {{1, 1}}, {{2, 2}}, {{3, 3}}}
	err := PlotTrajsAndPoints(ax, trajs, nil, trajOnlyOptions())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ax.plots, test.ShouldHaveLength, 4)

	test.That(t, ax.plots[0].style.Color, test.ShouldResemble, rimage.Cyan)
	test.That(t, ax.plots[1].style.Color, test.ShouldResemble, rimage.Magenta)
	extra := rimage.Palette(2)
	test.That(t, ax.plots[2].style.Color, test.ShouldResemble, extra[0])
	test.That(t, ax.plots[3].style.Color, test.ShouldResemble, extra[1])
	test.That(t, ax.plots[2].style.Label, test.ShouldEqual, "")
	test.That(t, ax.plots[3].style.Label, test.ShouldEqual, "")
}

func TestPlotAlphas(t *testing.T) {
	ax := &recordingAxes{}
	opts := trajOnlyOptions()
	opts.TrajAlphas = []float64{0.25}
	opts.PointAlphas = []float64{0.5}
	err := PlotTrajsAndPoints(ax, []Trajectory{{{0, 0}}}, []Point{{1, 1}}, opts)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ax.plots[0].style.Alpha, test.ShouldEqual, 0.25)
	test.That(t, ax.plots[1].style.Alpha, test.ShouldEqual, 0.5)
}

func TestPlotHeadings(t *testing.T) {
	traj := Trajectory{
		{0, 0, 2, 0},
		{1, 0, 0, 3},
		{2, 0, 0, 0},
		{3, 0, -1, 0},
		{4, 0, 1, 1},
	}

	t.Run("every row", func(t *testing.T) {
		ax := &recordingAxes{}
		err := PlotTrajsAndPoints(ax, []Trajectory{traj}, nil, trajOnlyOptions())
		test.That(t, err, test.ShouldBeNil)
		test.That(t, ax.quivers, test.ShouldHaveLength, 1)

		q := ax.quivers[0]
		// the zero heading row is skipped
		test.That(t, q.xs, test.ShouldResemble, []float64{0, 1, 3, 4})
		test.That(t, q.us[0], test.ShouldAlmostEqual, 1)
		test.That(t, q.vs[1], test.ShouldAlmostEqual, 1)
		test.That(t, q.us[2], test.ShouldAlmostEqual, -1)
		test.That(t, q.us[3], test.ShouldAlmostEqual, math.Sqrt2/2)
		test.That(t, q.vs[3], test.ShouldAlmostEqual, math.Sqrt2/2)
		test.That(t, q.color, test.ShouldResemble, rimage.ScaleColor(rimage.Cyan, 0.5))
	})

	t.Run("stride", func(t *testing.T) {
		ax := &recordingAxes{}
		opts := trajOnlyOptions()
		opts.QuiverFreq = 3
		err := PlotTrajsAndPoints(ax, []Trajectory{traj}, nil, opts)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, ax.quivers[0].xs, test.ShouldResemble, []float64{0, 3})
	})

	t.Run("disabled", func(t *testing.T) {
		ax := &recordingAxes{}
		opts := trajOnlyOptions()
		opts.QuiverFreq = 0
		err := PlotTrajsAndPoints(ax, []Trajectory{traj}, nil, opts)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, ax.quivers, test.ShouldBeEmpty)
	})

	t.Run("no heading columns", func(t *testing.T) {
		ax := &recordingAxes{}
		err := PlotTrajsAndPoints(ax, []Trajectory{{{0, 0}, {1, 1}}}, nil, trajOnlyOptions())
		test.That(t, err, test.ShouldBeNil)
		test.That(t, ax.quivers, test.ShouldBeEmpty)
	})
}

func TestBearings(t *testing.T) {
	bearings := Bearings(Trajectory{{0, 0, 0}, {0, 0, math.Pi / 2}, {0, 0}, {0, 0, math.NaN(), 1}})
	test.That(t, bearings[0].OK, test.ShouldBeTrue)
	test.That(t, bearings[0].U, test.ShouldAlmostEqual, 1)
	test.That(t, bearings[1].V, test.ShouldAlmostEqual, 1)
	test.That(t, bearings[1].U, test.ShouldAlmostEqual, 0)
	test.That(t, bearings[2].OK, test.ShouldBeFalse)
	test.That(t, bearings[3].OK, test.ShouldBeFalse)

	test.That(t, HasHeading(Trajectory{{0, 0, 1}, {0, 0}}), test.ShouldBeFalse)
	test.That(t, HasHeading(Trajectory{}), test.ShouldBeFalse)
	test.That(t, HasHeading(Trajectory{{0, 0, 1}}), test.ShouldBeTrue)
}
