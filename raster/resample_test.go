package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/lixenwraith/blockview/terminal"
)

func TestResample_IdentityWhenUnscaled(t *testing.T) {
	src := gradient(5, 4)
	dst := Resample(src, Fitted{Width: 5, Height: 4}, terminal.RGBBlack, FilterBilinear)

	if dst.Bounds() != src.Bounds() {
		t.Fatalf("bounds = %v, want %v", dst.Bounds(), src.Bounds())
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 5; x++ {
			if got, want := dst.RGBAAt(x, y), src.RGBAAt(x, y); got != want {
				t.Errorf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestResample_TransparentCompositesToBackground(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 0})
	src.SetNRGBA(1, 0, color.NRGBA{R: 255, G: 0, B: 0, A: 0xff})

	bg := terminal.RGB{R: 0x1e, G: 0x1e, B: 0x2e}
	dst := Resample(src, Fitted{Width: 2, Height: 1}, bg, FilterNearest)

	if got := dst.RGBAAt(0, 0); got != (color.RGBA{R: 0x1e, G: 0x1e, B: 0x2e, A: 0xff}) {
		t.Errorf("transparent pixel = %v, want background", got)
	}
	if got := dst.RGBAAt(1, 0); got != (color.RGBA{R: 255, A: 0xff}) {
		t.Errorf("opaque pixel = %v, want red", got)
	}
}

func TestResample_HalfAlphaBlends(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 0x80})

	dst := Resample(src, Fitted{Width: 1, Height: 1}, terminal.RGBBlack, FilterNearest)
	got := dst.RGBAAt(0, 0)
	if got.A != 0xff {
		t.Errorf("alpha = %d, want opaque", got.A)
	}
	if got.R < 0x7e || got.R > 0x82 {
		t.Errorf("red = %#x, want about half intensity", got.R)
	}
}

func TestResample_ScaledSize(t *testing.T) {
	src := gradient(80, 60)
	for _, f := range []Filter{FilterNearest, FilterBilinear, FilterCatmullRom} {
		t.Run(string(f), func(t *testing.T) {
			dst := Resample(src, Fitted{Width: 8, Height: 6, Scaled: true}, terminal.RGBBlack, f)
			if dst.Bounds().Dx() != 8 || dst.Bounds().Dy() != 6 {
				t.Errorf("size = %v, want 8x6", dst.Bounds())
			}
			for y := 0; y < 6; y++ {
				for x := 0; x < 8; x++ {
					if a := dst.RGBAAt(x, y).A; a != 0xff {
						t.Fatalf("pixel (%d,%d) alpha = %d, want opaque", x, y, a)
					}
				}
			}
		})
	}
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in      string
		want    Filter
		wantErr bool
	}{
		{"", FilterBilinear, false},
		{"Nearest", FilterNearest, false},
		{"catmullrom", FilterCatmullRom, false},
		{"lanczos", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFilter(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFilter(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFilter(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
