package raster

import (
	"math/rand"
	"testing"
)

func TestFit_Scenarios(t *testing.T) {
	tests := []struct {
		name       string
		srcW, srcH int
		bounds     Bounds
		want       Fitted
		wantRows   int
	}{
		{
			name:     "downscale limited by height",
			srcW:     800,
			srcH:     600,
			bounds:   Bounds{MaxWidthCells: 60, MaxHeightCells: 20},
			want:     Fitted{Width: 53, Height: 40, Scaled: true},
			wantRows: 20,
		},
		{
			name:     "fits unscaled",
			srcW:     10,
			srcH:     10,
			bounds:   Bounds{MaxWidthCells: 60, MaxHeightCells: 20},
			want:     Fitted{Width: 10, Height: 10},
			wantRows: 5,
		},
		{
			name:     "downscale limited by width",
			srcW:     400,
			srcH:     10,
			bounds:   Bounds{MaxWidthCells: 100, MaxHeightCells: 50},
			want:     Fitted{Width: 100, Height: 3, Scaled: true},
			wantRows: 2,
		},
		{
			name:     "exact fit is not scaled",
			srcW:     60,
			srcH:     40,
			bounds:   Bounds{MaxWidthCells: 60, MaxHeightCells: 20},
			want:     Fitted{Width: 60, Height: 40},
			wantRows: 20,
		},
		{
			name:     "extreme aspect clamps to one pixel",
			srcW:     10000,
			srcH:     1,
			bounds:   Bounds{MaxWidthCells: 10, MaxHeightCells: 10},
			want:     Fitted{Width: 10, Height: 1, Scaled: true},
			wantRows: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fit(tt.srcW, tt.srcH, tt.bounds)
			if got != tt.want {
				t.Errorf("Fit(%d, %d, %+v) = %+v, want %+v", tt.srcW, tt.srcH, tt.bounds, got, tt.want)
			}
			if rows := RowCount(got.Height); rows != tt.wantRows {
				t.Errorf("RowCount(%d) = %d, want %d", got.Height, rows, tt.wantRows)
			}
		})
	}
}

func TestFit_DegenerateInputClamped(t *testing.T) {
	got := Fit(0, 0, Bounds{})
	if got.Width != 1 || got.Height != 1 || got.Scaled {
		t.Errorf("Fit(0, 0, {}) = %+v, want 1x1 unscaled", got)
	}

	got = Fit(50, 50, Bounds{MaxWidthCells: -3, MaxHeightCells: 0})
	if got.Width != 1 || got.Height != 1 || !got.Scaled {
		t.Errorf("Fit with zero bounds = %+v, want 1x1 scaled", got)
	}
}

func TestFit_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 5000; i++ {
		srcW := 1 + rng.Intn(4000)
		srcH := 1 + rng.Intn(4000)
		b := Bounds{MaxWidthCells: 1 + rng.Intn(300), MaxHeightCells: 1 + rng.Intn(120)}

		got := Fit(srcW, srcH, b)

		if got.Width < 1 || got.Height < 1 {
			t.Fatalf("Fit(%d, %d, %+v) = %+v: dimensions below 1", srcW, srcH, b, got)
		}
		if got.Width > srcW || got.Height > srcH {
			t.Fatalf("Fit(%d, %d, %+v) = %+v: upscaled", srcW, srcH, b, got)
		}
		if got.Scaled {
			if got.Width > b.MaxWidthCells {
				t.Fatalf("Fit(%d, %d, %+v) = %+v: width over budget", srcW, srcH, b, got)
			}
			if got.Height > b.MaxHeightCells*2 {
				t.Fatalf("Fit(%d, %d, %+v) = %+v: height over budget", srcW, srcH, b, got)
			}
		} else if got.Width != srcW || got.Height != srcH {
			t.Fatalf("Fit(%d, %d, %+v) = %+v: unscaled result differs from source", srcW, srcH, b, got)
		}
	}
}

func TestRowCount(t *testing.T) {
	for h := 1; h <= 101; h++ {
		want := (h + 1) / 2
		if h%2 == 0 {
			want = h / 2
		}
		if got := RowCount(h); got != want {
			t.Errorf("RowCount(%d) = %d, want %d", h, got, want)
		}
	}
	if got := RowCount(0); got != 0 {
		t.Errorf("RowCount(0) = %d, want 0", got)
	}
}
