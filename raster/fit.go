package raster

import (
	"math"
)

// Fit computes the target pixel size for a srcW x srcH image inside b.
// Two pixel rows share one terminal row, so the vertical pixel budget is twice the
// cell height. Both axes use one scale factor and the result never exceeds the source.
// Rounding may shift the aspect ratio by up to one pixel per axis.
func Fit(srcW, srcH int, b Bounds) Fitted {
	srcW = max(srcW, 1)
	srcH = max(srcH, 1)
	b = b.Clamp()

	pixelH := b.MaxHeightCells * 2
	scale := min(1.0,
		float64(b.MaxWidthCells)/float64(srcW),
		float64(pixelH)/float64(srcH))

	if scale >= 1.0 {
		return Fitted{Width: srcW, Height: srcH}
	}

	return Fitted{
		Width:  max(1, int(math.Round(float64(srcW)*scale))),
		Height: max(1, int(math.Round(float64(srcH)*scale))),
		Scaled: true,
	}
}

// RowCount returns the number of terminal rows needed for h pixel rows
func RowCount(h int) int {
	if h <= 0 {
		return 0
	}
	return (h + 1) / 2
}
