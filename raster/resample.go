package raster

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/draw"

	"github.com/lixenwraith/blockview/terminal"
)

// Filter selects the interpolator used when an image is scaled down
type Filter string

const (
	FilterNearest    Filter = "nearest"
	FilterBilinear   Filter = "bilinear"
	FilterCatmullRom Filter = "catmullrom"
)

// ParseFilter validates a filter name; empty selects bilinear
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterBilinear, nil
	case FilterNearest, FilterBilinear, FilterCatmullRom:
		return f, nil
	}
	return "", fmt.Errorf("unknown filter %q", s)
}

func (f Filter) interpolator() draw.Interpolator {
	switch f {
	case FilterNearest:
		return draw.NearestNeighbor
	case FilterCatmullRom:
		return draw.CatmullRom
	default:
		return draw.ApproxBiLinear
	}
}

// Resample renders img into a new opaque RGBA buffer of the fitted size.
// Transparent and translucent pixels are composited over bg, so the result carries
// no meaningful alpha.
func Resample(img image.Image, fit Fitted, bg terminal.RGB, filter Filter) *image.RGBA {
	w, h := max(fit.Width, 1), max(fit.Height, 1)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))

	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.RGBA{R: bg.R, G: bg.G, B: bg.B, A: 0xff}), image.Point{}, draw.Src)

	src := img.Bounds()
	if !fit.Scaled && src.Dx() == w && src.Dy() == h {
		draw.Draw(dst, dst.Bounds(), img, src.Min, draw.Over)
		return dst
	}

	filter.interpolator().Scale(dst, dst.Bounds(), img, src, draw.Over, nil)
	return dst
}
