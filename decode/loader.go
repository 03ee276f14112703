package decode

import (
	"context"
	"fmt"
	"io"
	"os"
)

// DefaultMaxBytes caps a single source file at 256 MiB
const DefaultMaxBytes = 256 << 20

// Loader resolves a source identifier into raw bytes
type Loader interface {
	Load(ctx context.Context, id string) ([]byte, error)
}

// LoaderFunc adapts a function to Loader
type LoaderFunc func(ctx context.Context, id string) ([]byte, error)

func (f LoaderFunc) Load(ctx context.Context, id string) ([]byte, error) { return f(ctx, id) }

// FileLoader treats source identifiers as file paths
type FileLoader struct {
	MaxBytes int64 // 0 selects DefaultMaxBytes
}

// Load implements Loader
func (l FileLoader) Load(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s: is a directory", path)
	}

	limit := l.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	if info.Size() > limit {
		return nil, fmt.Errorf("%s: file size %d exceeds limit %d", path, info.Size(), limit)
	}

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%s: exceeds limit %d", path, limit)
	}
	return data, nil
}
