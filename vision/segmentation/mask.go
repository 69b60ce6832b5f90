// Package segmentation holds segmentation mask records, the generators that produce them and
// the conversions that turn a set of masks into images and tensors.
package segmentation

import (
	"image"
	"sort"

	"github.com/pkg/errors"
)

// ErrNoMasks is returned by conversions that need at least one mask to size their canvas.
var ErrNoMasks = errors.New("no masks to convert")

// Mask is one segmented region. Segmentation is indexed [row][col] and is true where the region
// covers a pixel. Masks produced by the same generator call may overlap.
type Mask struct {
	Segmentation   [][]bool        `json:"segmentation"`
	Area           int             `json:"area"`
	BBox           image.Rectangle `json:"bbox"`
	PredictedIOU   float64         `json:"predicted_iou"`
	StabilityScore float64         `json:"stability_score"`
}

// NewMask builds a mask from its grid, computing area and bounding box.
func NewMask(segmentation [][]bool) Mask {
	m := Mask{Segmentation: segmentation}
	first := true
	for y, row := range segmentation {
		for x, covered := range row {
			if !covered {
				continue
			}
			m.Area++
			pt := image.Rectangle{image.Pt(x, y), image.Pt(x+1, y+1)}
			if first {
				m.BBox = pt
				first = false
			} else {
				m.BBox = m.BBox.Union(pt)
			}
		}
	}
	return m
}

// Height is the number of rows in the mask grid.
func (m Mask) Height() int {
	return len(m.Segmentation)
}

// Width is the number of columns in the mask grid.
func (m Mask) Width() int {
	if len(m.Segmentation) == 0 {
		return 0
	}
	return len(m.Segmentation[0])
}

// Covers reports whether the mask covers the pixel at (x, y).
func (m Mask) Covers(x, y int) bool {
	if y < 0 || y >= len(m.Segmentation) || x < 0 || x >= len(m.Segmentation[y]) {
		return false
	}
	return m.Segmentation[y][x]
}

// SortByArea returns a copy of masks ordered from largest to smallest area. Masks with equal
// area keep their input order.
func SortByArea(masks []Mask) []Mask {
	sorted := make([]Mask, len(masks))
	copy(sorted, masks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Area > sorted[j].Area
	})
	return sorted
}

// checkGrids returns the grid size shared by every mask, erroring on ragged or mismatched grids.
func checkGrids(masks []Mask) (int, int, error) {
	if len(masks) == 0 {
		return 0, 0, ErrNoMasks
	}
	height, width := masks[0].Height(), masks[0].Width()
	if height == 0 || width == 0 {
		return 0, 0, errors.New("first mask has an empty segmentation grid")
	}
	for i, m := range masks {
		if m.Height() != height {
			return 0, 0, errors.Errorf("mask %d has %d rows, expected %d", i, m.Height(), height)
		}
		for y, row := range m.Segmentation {
			if len(row) != width {
				return 0, 0, errors.Errorf("mask %d row %d has %d columns, expected %d", i, y, len(row), width)
			}
		}
	}
	return height, width, nil
}
