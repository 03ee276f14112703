// Package raster turns decoded images into rows of half-block terminal cells.
//
// The pipeline is Fit -> Resample -> Rasterize. Each terminal cell stacks two
// vertical pixels: the top one drawn in the foreground color of an upper half
// block, the bottom one in the background color.
package raster

import (
	"github.com/lixenwraith/blockview/terminal"
)

// HalfBlock is the glyph every cell is drawn with (U+2580 UPPER HALF BLOCK)
const HalfBlock = '▀'

// Bounds is the terminal cell budget available to one render
type Bounds struct {
	MaxWidthCells  int
	MaxHeightCells int
}

// Clamp returns b with both dimensions raised to at least 1
func (b Bounds) Clamp() Bounds {
	if b.MaxWidthCells < 1 {
		b.MaxWidthCells = 1
	}
	if b.MaxHeightCells < 1 {
		b.MaxHeightCells = 1
	}
	return b
}

// Fitted is the pixel size an image is resampled to before rasterization
type Fitted struct {
	Width  int
	Height int
	Scaled bool
}

// Cell is one terminal column of a row
type Cell struct {
	X  int
	Fg terminal.RGB
	Bg terminal.RGB
}

// Row is one terminal line, cells ordered by X
type Row struct {
	Y     int
	Cells []Cell
}
