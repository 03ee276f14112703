package raster

import (
	"image"
	"image/color"

	"github.com/lixenwraith/blockview/terminal"
)

// Rasterize pairs pixel rows 2y and 2y+1 into terminal row y.
// The top pixel becomes the cell foreground, the bottom pixel its background. On the
// last row of an odd-height image there is no bottom pixel and the top color is reused,
// which keeps the cell visually solid. Alpha is discarded.
func Rasterize(img image.Image) []Row {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil
	}

	at := pixelFunc(img)
	termH := RowCount(h)
	rows := make([]Row, termH)

	for y := 0; y < termH; y++ {
		topY := b.Min.Y + 2*y
		bottomY := topY + 1
		hasBottom := bottomY < b.Max.Y

		cells := make([]Cell, w)
		for x := 0; x < w; x++ {
			px := b.Min.X + x
			fg := at(px, topY)
			bg := fg
			if hasBottom {
				bg = at(px, bottomY)
			}
			cells[x] = Cell{X: x, Fg: fg, Bg: bg}
		}
		rows[y] = Row{Y: y, Cells: cells}
	}

	return rows
}

// pixelFunc returns a fast accessor for the common concrete buffer types
func pixelFunc(img image.Image) func(x, y int) terminal.RGB {
	switch m := img.(type) {
	case *image.RGBA:
		return func(x, y int) terminal.RGB {
			c := m.RGBAAt(x, y)
			if c.A == 0xff || c.A == 0 {
				return terminal.RGB{R: c.R, G: c.G, B: c.B}
			}
			return colorToRGB(c)
		}
	case *image.NRGBA:
		return func(x, y int) terminal.RGB {
			c := m.NRGBAAt(x, y)
			return terminal.RGB{R: c.R, G: c.G, B: c.B}
		}
	default:
		return func(x, y int) terminal.RGB {
			return colorToRGB(img.At(x, y))
		}
	}
}

// colorToRGB un-premultiplies c and drops alpha
func colorToRGB(c color.Color) terminal.RGB {
	r, g, b, a := c.RGBA()
	if a == 0 {
		return terminal.RGB{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
	}
	return terminal.RGB{
		R: uint8((r * 0xff) / a),
		G: uint8((g * 0xff) / a),
		B: uint8((b * 0xff) / a),
	}
}
