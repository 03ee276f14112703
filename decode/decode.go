// Package decode turns raw bytes into images and loads those bytes from disk.
//
// Supported formats: PNG, JPEG, GIF (standard library) and BMP, TIFF, WebP
// (golang.org/x/image). Any Decoder implementation may be substituted.
package decode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultMaxPixels rejects images above 100 megapixels before allocating them
const DefaultMaxPixels = 100_000_000

var (
	ErrEmpty         = errors.New("empty image data")
	ErrUnknownFormat = errors.New("unsupported image format")
	ErrTooLarge      = errors.New("image exceeds pixel limit")
)

// DecodeError reports a failed decode and the format, if one was recognized
type DecodeError struct {
	Format string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Format == "" {
		return "decode: " + e.Err.Error()
	}
	return "decode " + e.Format + ": " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decoder converts raw image bytes into a pixel buffer
type Decoder interface {
	Decode(ctx context.Context, data []byte) (image.Image, error)
}

// Std decodes through the image package format registry
type Std struct {
	MaxPixels int // 0 selects DefaultMaxPixels
}

// Decode implements Decoder.
// The header is parsed first so oversized images fail without a full allocation.
func (d Std) Decode(ctx context.Context, data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, &DecodeError{Err: ErrEmpty}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, &DecodeError{Err: ErrUnknownFormat}
		}
		return nil, &DecodeError{Format: format, Err: err}
	}

	limit := d.MaxPixels
	if limit <= 0 {
		limit = DefaultMaxPixels
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, &DecodeError{Format: format, Err: fmt.Errorf("invalid dimensions %dx%d", cfg.Width, cfg.Height)}
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(limit) {
		return nil, &DecodeError{Format: format, Err: fmt.Errorf("%w: %dx%d > %d", ErrTooLarge, cfg.Width, cfg.Height, limit)}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Format: format, Err: err}
	}
	return img, nil
}

// imageExtensions mirrors the formats registered above
var imageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
	".bmp":  {},
	".webp": {},
	".tif":  {},
	".tiff": {},
}

// IsImageFile reports whether path has an extension of a supported format
func IsImageFile(path string) bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}
