// Package capture computes the crop region around a grid of result tiles and
// takes the cropped screenshot.
package capture

import (
	apperrors "viralreporter/pkg/errors"
)

// Box is an element's bounding box in page coordinates
type Box struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Right returns the box's right edge
func (b Box) Right() float64 { return b.X + b.Width }

// Bottom returns the box's bottom edge
func (b Box) Bottom() float64 { return b.Y + b.Height }

// Region is the rectangle to clip the screenshot to
type Region struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// FirstRow returns the boxes whose top edge is within tolerance pixels of the
// first box's top edge. Boxes are assumed to be in document order, so the
// first box belongs to the top row.
func FirstRow(boxes []Box, tolerance float64) []Box {
	if len(boxes) == 0 {
		return nil
	}
	top := boxes[0].Y
	row := make([]Box, 0, len(boxes))
	for _, b := range boxes {
		d := b.Y - top
		if d < 0 {
			d = -d
		}
		if d < tolerance {
			row = append(row, b)
		}
	}
	return row
}

// ComputeRegion derives the crop rectangle covering the tile grid. The region
// spans from the page top down to the bottom of the last tile, and
// horizontally across the first row plus margin on both sides.
func ComputeRegion(platform string, boxes []Box, tolerance, margin float64) (Region, error) {
	if len(boxes) == 0 {
		return Region{}, apperrors.New(apperrors.ErrorTypeNoResults, platform, "no result tiles to capture")
	}

	first := boxes[0]
	row := FirstRow(boxes, tolerance)

	rightmost := first.Right()
	for _, b := range row {
		if r := b.Right(); r > rightmost {
			rightmost = r
		}
	}

	bottom := boxes[0].Bottom()
	for _, b := range boxes {
		if e := b.Bottom(); e > bottom {
			bottom = e
		}
	}

	x := first.X - margin
	if x < 0 {
		x = 0
	}

	return Region{
		X:      x,
		Y:      0,
		Width:  rightmost - first.X + 2*margin,
		Height: bottom,
	}, nil
}

// ComputeColumnRegion derives the crop rectangle for a single-column results
// pane. The container supplies the horizontal extent; the region runs from
// the page top down to the bottom of the lowest tile plus margin. The
// container's own height is deliberately ignored since it extends well past
// the collected tiles.
func ComputeColumnRegion(platform string, container Box, boxes []Box, margin float64) (Region, error) {
	if len(boxes) == 0 {
		return Region{}, apperrors.New(apperrors.ErrorTypeNoResults, platform, "no result tiles to capture")
	}

	bottom := boxes[0].Bottom()
	for _, b := range boxes {
		if e := b.Bottom(); e > bottom {
			bottom = e
		}
	}

	return Region{
		X:      container.X,
		Y:      0,
		Width:  container.Width,
		Height: bottom + margin,
	}, nil
}
