// Package labelmap provides the core types and operations for turning
// superpixel segmentation maps into per-pixel class-label images.
//
// A segmentation map assigns every pixel a superpixel id in [0, K); a class
// code list assigns every superpixel one of a small set of semantic class
// codes (sand, water, sky, ...). Reconstruct substitutes codes for ids to
// produce the label image consumed by rendering and statistics.
package labelmap

import (
	"fmt"
)

// Grid is a 2-D integer grid stored as a flat buffer in row-major order.
// Cell (x, y) lives at Cells[y*Width+x]. It is used both for segmentation
// maps (cells hold superpixel ids) and label images (cells hold class codes).
type Grid struct {
	// Width and Height are the grid dimensions in cells.
	Width  int
	Height int

	// Cells holds the grid values in row-major order, len = Width*Height.
	Cells []int
}

// NewGrid allocates a zero-filled grid with the given dimensions.
func NewGrid(width, height int) *Grid {
	return &Grid{
		Width:  width,
		Height: height,
		Cells:  make([]int, width*height),
	}
}

// GridFromRows builds a grid from row-major nested slices. All rows must
// have the same length and the input must be non-empty.
func GridFromRows(rows [][]int) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, &ShapeError{Reason: "empty input"}
	}

	width := len(rows[0])
	g := NewGrid(width, len(rows))
	for y, row := range rows {
		if len(row) != width {
			return nil, &ShapeError{
				Width:  width,
				Height: len(rows),
				Reason: fmt.Sprintf("row %d has %d cells, want %d", y, len(row), width),
			}
		}
		copy(g.Cells[y*width:(y+1)*width], row)
	}

	return g, nil
}

// At returns the value of cell (x, y). The caller is responsible for
// keeping coordinates in bounds.
func (g *Grid) At(x, y int) int {
	return g.Cells[y*g.Width+x]
}

// Set assigns the value of cell (x, y).
func (g *Grid) Set(x, y, v int) {
	g.Cells[y*g.Width+x] = v
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	c := NewGrid(g.Width, g.Height)
	copy(c.Cells, g.Cells)
	return c
}

// Equal reports whether two grids have the same shape and cell values.
func (g *Grid) Equal(o *Grid) bool {
	if o == nil || g.Width != o.Width || g.Height != o.Height {
		return false
	}
	for i, v := range g.Cells {
		if o.Cells[i] != v {
			return false
		}
	}
	return true
}

// check validates the grid's internal consistency: positive dimensions and
// a cell buffer matching them.
func (g *Grid) check() error {
	if g == nil {
		return &ShapeError{Reason: "nil grid"}
	}
	if g.Width <= 0 || g.Height <= 0 {
		return &ShapeError{Width: g.Width, Height: g.Height, Reason: "empty grid"}
	}
	if len(g.Cells) != g.Width*g.Height {
		return &ShapeError{
			Width:  g.Width,
			Height: g.Height,
			Reason: fmt.Sprintf("cell buffer has %d entries, want %d", len(g.Cells), g.Width*g.Height),
		}
	}
	return nil
}
