package trajplot

import (
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"go.viam.com/navviz/rimage"
	"go.viam.com/navviz/utils"
)

// ArrowLength is the on-page length of heading arrows.
const ArrowLength = 14

type legendEntry struct {
	label  string
	thumbs []plot.Thumbnailer
}

// PlotAxes is an Axes backed by a gonum plot.
type PlotAxes struct {
	plot *plot.Plot

	entries     []legendEntry
	showLegend  bool
	legendLoc   LegendLocation
	legendCols  int
	aspectEqual bool
}

var _ Axes = (*PlotAxes)(nil)

// NewPlotAxes returns an empty PlotAxes with the given title.
func NewPlotAxes(title string) *PlotAxes {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.Add(plotter.NewGrid())
	return &PlotAxes{plot: p}
}

// Plot implements Axes.
func (pa *PlotAxes) Plot(xs, ys []float64, style Style) error {
	if len(xs) != len(ys) {
		return errors.Wrapf(ErrLengthMismatch, "%d x values, %d y values", len(xs), len(ys))
	}
	if len(xs) == 0 {
		return nil
	}
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X, pts[i].Y = xs[i], ys[i]
	}

	alpha := style.Alpha
	if alpha == 0 {
		alpha = 1
	}
	c := rimage.WithAlpha(style.Color, alpha)
	var thumbs []plot.Thumbnailer
	if style.Line {
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.LineStyle.Color = c
		line.LineStyle.Width = vg.Points(1.5)
		pa.plot.Add(line)
		thumbs = append(thumbs, line)
	}
	if style.MarkerSize > 0 {
		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return err
		}
		scatter.GlyphStyle = draw.GlyphStyle{
			Color:  c,
			Radius: vg.Points(style.MarkerSize / 2),
			Shape:  draw.CircleGlyph{},
		}
		pa.plot.Add(scatter)
		thumbs = append(thumbs, scatter)
	}
	if style.Label != "" && len(thumbs) > 0 {
		pa.entries = append(pa.entries, legendEntry{label: style.Label, thumbs: thumbs})
	}
	return nil
}

// Quiver implements Axes.
func (pa *PlotAxes) Quiver(xs, ys, us, vs []float64, c color.Color) error {
	if len(xs) != len(ys) || len(xs) != len(us) || len(xs) != len(vs) {
		return errors.Wrapf(ErrLengthMismatch, "quiver needs equal lengths, got %d, %d, %d, %d",
			len(xs), len(ys), len(us), len(vs))
	}
	for _, vals := range [][]float64{xs, ys, us, vs} {
		if err := plotter.CheckFloats(vals...); err != nil {
			return err
		}
	}
	arrows := &headingArrows{
		anchors: make(plotter.XYs, len(xs)),
		dirs:    make(plotter.XYs, len(xs)),
		Length:  vg.Points(ArrowLength),
	}
	for i := range xs {
		arrows.anchors[i] = plotter.XY{X: xs[i], Y: ys[i]}
		arrows.dirs[i] = plotter.XY{X: us[i], Y: vs[i]}
	}
	arrows.LineStyle = draw.LineStyle{Color: c, Width: vg.Points(1)}
	pa.plot.Add(arrows)
	return nil
}

// Legend implements Axes.
func (pa *PlotAxes) Legend(loc LegendLocation, columns int) {
	pa.showLegend = true
	pa.legendLoc = loc
	pa.legendCols = max(columns, 1)
}

// SetAspectEqual implements Axes.
func (pa *PlotAxes) SetAspectEqual() {
	pa.aspectEqual = true
}

// AspectEqual reports whether SetAspectEqual was called.
func (pa *PlotAxes) AspectEqual() bool {
	return pa.aspectEqual
}

// LegendLabels returns the labels shown in the legend, or nil when no legend is shown.
func (pa *PlotAxes) LegendLabels() []string {
	if !pa.showLegend {
		return nil
	}
	labels := make([]string, 0, len(pa.entries))
	for _, e := range pa.entries {
		labels = append(labels, e.label)
	}
	return labels
}

// Draw renders the axes onto c.
func (pa *PlotAxes) Draw(c draw.Canvas) {
	plotArea := c
	var inside *plot.Legend
	if pa.showLegend && len(pa.entries) > 0 {
		if pa.legendLoc == LegendBelow {
			plotArea = pa.drawLegendBelow(c)
		} else {
			leg := plot.NewLegend()
			leg.Top = true
			for _, e := range pa.entries {
				leg.Add(e.label, e.thumbs...)
			}
			inside = &leg
		}
	}

	xMin, xMax, yMin, yMax := pa.plot.X.Min, pa.plot.X.Max, pa.plot.Y.Min, pa.plot.Y.Max
	if pa.aspectEqual {
		pa.equalizeRanges(plotArea)
	}
	pa.plot.Draw(plotArea)
	if inside != nil {
		inside.Draw(pa.plot.DataCanvas(plotArea))
	}
	pa.plot.X.Min, pa.plot.X.Max, pa.plot.Y.Min, pa.plot.Y.Max = xMin, xMax, yMin, yMax
}

// drawLegendBelow draws the legend columns along the bottom of c and returns the area left
// above them for the plot.
func (pa *PlotAxes) drawLegendBelow(c draw.Canvas) draw.Canvas {
	const pad = 8
	columns := pa.legendColumns()
	var height vg.Length
	for i := range columns {
		height = vg.Length(math.Max(float64(height), float64(columns[i].Rectangle(c).Size().Y)))
	}
	height += vg.Points(pad)

	below := draw.Crop(c, vg.Points(pad), 0, 0, height-(c.Max.Y-c.Min.Y))
	colWidth := (below.Max.X - below.Min.X) / vg.Length(len(columns))
	for i := range columns {
		left := colWidth * vg.Length(i)
		right := -(below.Max.X - below.Min.X - colWidth*vg.Length(i+1))
		columns[i].Draw(draw.Crop(below, left, right, 0, 0))
	}
	return draw.Crop(c, 0, 0, height, 0)
}

// legendColumns splits the legend entries column-major over legendCols legends.
func (pa *PlotAxes) legendColumns() []plot.Legend {
	cols := min(pa.legendCols, len(pa.entries))
	rows := (len(pa.entries) + cols - 1) / cols
	legends := make([]plot.Legend, 0, cols)
	for start := 0; start < len(pa.entries); start += rows {
		leg := plot.NewLegend()
		leg.Top = true
		leg.Left = true
		for _, e := range pa.entries[start:min(start+rows, len(pa.entries))] {
			leg.Add(e.label, e.thumbs...)
		}
		legends = append(legends, leg)
	}
	return legends
}

// equalizeRanges widens the shorter data range so one data unit spans the same page length on
// both axes of the data area of c.
func (pa *PlotAxes) equalizeRanges(c draw.Canvas) {
	x, y := &pa.plot.X, &pa.plot.Y
	if math.IsInf(x.Min, 0) || math.IsInf(y.Min, 0) {
		return
	}
	if x.Max-x.Min == 0 && y.Max-y.Min == 0 {
		x.Min, x.Max = x.Min-0.5, x.Max+0.5
		y.Min, y.Max = y.Min-0.5, y.Max+0.5
	}
	da := pa.plot.DataCanvas(c)
	width, height := float64(da.Max.X-da.Min.X), float64(da.Max.Y-da.Min.Y)
	if width <= 0 || height <= 0 {
		return
	}
	perPage := floats.Max([]float64{(x.Max - x.Min) / width, (y.Max - y.Min) / height})
	xc, yc := (x.Min+x.Max)/2, (y.Min+y.Max)/2
	x.Min, x.Max = xc-perPage*width/2, xc+perPage*width/2
	y.Min, y.Max = yc-perPage*height/2, yc+perPage*height/2
}

// DataRange returns the current data limits.
func (pa *PlotAxes) DataRange() (xmin, xmax, ymin, ymax float64) {
	return pa.plot.X.Min, pa.plot.X.Max, pa.plot.Y.Min, pa.plot.Y.Max
}

// WriteTo renders the axes at the given size and writes them to w in the given image format
// ("png", "svg", "pdf", ...).
func (pa *PlotAxes) WriteTo(w io.Writer, width, height vg.Length, format string) (int64, error) {
	c, err := draw.NewFormattedCanvas(width, height, format)
	if err != nil {
		return 0, err
	}
	pa.Draw(draw.New(c))
	return c.WriteTo(w)
}

// Save renders the axes to path, taking the format from the file extension.
func (pa *PlotAxes) Save(width, height vg.Length, path string) (err error) {
	if err := utils.EnsureDir(utils.ParentDir(path)); err != nil {
		return err
	}
	//nolint:gosec
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "couldn't create %q", path)
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	_, err = pa.WriteTo(f, width, height, format)
	return err
}

// headingArrows draws fixed length arrows pointing along a direction at each anchor.
type headingArrows struct {
	anchors plotter.XYs
	dirs    plotter.XYs

	LineStyle draw.LineStyle
	Length    vg.Length
}

// Plot implements plot.Plotter.
func (h *headingArrows) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	head := h.Length / 3
	for i, a := range h.anchors {
		x0, y0 := trX(a.X), trY(a.Y)
		dx := float64(trX(a.X+h.dirs[i].X) - x0)
		dy := float64(trY(a.Y+h.dirs[i].Y) - y0)
		norm := math.Hypot(dx, dy)
		if norm == 0 {
			continue
		}
		ux, uy := dx/norm, dy/norm
		tip := vg.Point{X: x0 + vg.Length(ux)*h.Length, Y: y0 + vg.Length(uy)*h.Length}
		c.StrokeLine2(h.LineStyle, x0, y0, tip.X, tip.Y)

		base := vg.Point{X: tip.X - vg.Length(ux)*head, Y: tip.Y - vg.Length(uy)*head}
		side := vg.Point{X: vg.Length(-uy) * head / 2, Y: vg.Length(ux) * head / 2}
		c.FillPolygon(h.LineStyle.Color, []vg.Point{
			tip,
			{X: base.X + side.X, Y: base.Y + side.Y},
			{X: base.X - side.X, Y: base.Y - side.Y},
		})
	}
}

// DataRange implements plot.DataRanger.
func (h *headingArrows) DataRange() (xmin, xmax, ymin, ymax float64) {
	return plotter.XYRange(h.anchors)
}
