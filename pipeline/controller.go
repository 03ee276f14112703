// Package pipeline runs the decode, fit, resample and rasterize steps for the most
// recently requested image and publishes the result as a single State.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"go.uber.org/zap"

	"github.com/lixenwraith/blockview/decode"
	"github.com/lixenwraith/blockview/raster"
	"github.com/lixenwraith/blockview/terminal"
)

var (
	// ErrIdle is returned by Wait when no request has been made
	ErrIdle = errors.New("pipeline: no request made")
	// ErrClosed is returned by Wait once the controller is closed with nothing settled
	ErrClosed = errors.New("pipeline: controller closed")
)

// Option configures a Controller
type Option func(*Controller)

// WithLogger sets the logger; the default discards everything
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithBackground sets the color transparent pixels are composited over
func WithBackground(bg terminal.RGB) Option {
	return func(c *Controller) { c.background = bg }
}

// WithFilter sets the downscaling interpolator
func WithFilter(f raster.Filter) Option {
	return func(c *Controller) { c.filter = f }
}

type listener struct {
	id int
	fn func(State)
}

// Controller owns the render state.
//
// Every Request bumps an epoch and synchronously publishes Loading. The decode runs
// in its own goroutine; its result is published only if no newer Request arrived
// in the meantime. The epoch comparison and the publish share one lock, so a stale
// run can never overwrite a newer state regardless of completion order.
type Controller struct {
	loader     decode.Loader
	decoder    decode.Decoder
	logger     *zap.Logger
	background terminal.RGB
	filter     raster.Filter

	mu        sync.Mutex
	epoch     uint64
	state     State
	cancel    context.CancelFunc
	changed   chan struct{}
	listeners []listener
	nextID    int
	closed    bool

	wg sync.WaitGroup
}

// New creates an idle controller
func New(loader decode.Loader, decoder decode.Decoder, opts ...Option) *Controller {
	c := &Controller{
		loader:     loader,
		decoder:    decoder,
		logger:     zap.NewNop(),
		background: terminal.RGBBlack,
		filter:     raster.FilterBilinear,
		changed:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current snapshot
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers fn to receive every published state in publish order.
// fn runs under the controller lock: it must not block or call back into the
// controller. The returned function removes the subscription.
func (c *Controller) Subscribe(fn func(State)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners = append(c.listeners, listener{id: id, fn: fn})
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, l := range c.listeners {
			if l.id == id {
				c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
				return
			}
		}
	}
}

// Request starts rendering source within b, superseding any in-flight request.
// Loading is published before Request returns. b is copied; later changes to the
// real viewport only affect subsequent requests.
func (c *Controller) Request(source string, b raster.Bounds) {
	b = b.Clamp()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.epoch++
	e := c.epoch
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.publishLocked(State{Kind: KindLoading, Source: source})
	c.wg.Add(1)
	c.mu.Unlock()

	c.logger.Debug("Render requested",
		zap.Uint64("epoch", e),
		zap.String("source", source),
		zap.Int("max_width", b.MaxWidthCells),
		zap.Int("max_height", b.MaxHeightCells))

	go c.run(ctx, e, source, b)
}

// Wait blocks until the latest request settles into Ready or Failed
func (c *Controller) Wait(ctx context.Context) (State, error) {
	for {
		c.mu.Lock()
		s, ch, closed := c.state, c.changed, c.closed
		c.mu.Unlock()

		if s.Settled() {
			return s, nil
		}
		if closed {
			return s, ErrClosed
		}
		if s.Kind == KindIdle {
			return s, ErrIdle
		}

		select {
		case <-ch:
		case <-ctx.Done():
			return s, ctx.Err()
		}
	}
}

// Close cancels in-flight work and waits for it to exit.
// Requests after Close are ignored and nothing further is published; pending
// Wait calls return ErrClosed unless the state had already settled.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.epoch++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	close(c.changed)
	c.changed = make(chan struct{})
	c.mu.Unlock()

	c.wg.Wait()
}

func (c *Controller) run(ctx context.Context, e uint64, source string, b raster.Bounds) {
	defer c.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Render panicked", zap.Uint64("epoch", e), zap.String("source", source), zap.Any("panic", r))
			c.publish(e, State{Kind: KindFailed, Source: source, Message: fmt.Sprintf("render failed: %v", r)})
		}
	}()

	img, err := c.load(ctx, source)
	if err != nil {
		if c.publish(e, State{Kind: KindFailed, Source: source, Message: err.Error()}) {
			c.logger.Warn("Render failed", zap.Uint64("epoch", e), zap.String("source", source), zap.Error(err))
		}
		return
	}

	if !c.current(e) {
		c.logger.Debug("Dropping stale decode", zap.Uint64("epoch", e), zap.String("source", source))
		return
	}

	rows, info := c.render(img, b)

	if c.publish(e, State{Kind: KindReady, Source: source, Info: info, Rows: rows}) {
		c.logger.Debug("Render ready", zap.Uint64("epoch", e), zap.String("source", source), zap.String("info", info))
	}
}

// load is the single suspension point of a run
func (c *Controller) load(ctx context.Context, source string) (image.Image, error) {
	data, err := c.loader.Load(ctx, source)
	if err != nil {
		return nil, err
	}
	return c.decoder.Decode(ctx, data)
}

// render fits, resamples and rasterizes synchronously
func (c *Controller) render(img image.Image, b raster.Bounds) ([]raster.Row, string) {
	bounds := img.Bounds()
	srcW := max(bounds.Dx(), 1)
	srcH := max(bounds.Dy(), 1)

	fit := raster.Fit(srcW, srcH, b)
	scaled := raster.Resample(img, fit, c.background, c.filter)
	return raster.Rasterize(scaled), Describe(srcW, srcH, fit)
}

// Describe formats the info line for a fitted image
func Describe(srcW, srcH int, fit raster.Fitted) string {
	rows := raster.RowCount(fit.Height)
	if fit.Scaled {
		return fmt.Sprintf("%dx%dpx → %dx%d cells", srcW, srcH, fit.Width, rows)
	}
	return fmt.Sprintf("%dx%d cells", fit.Width, rows)
}

func (c *Controller) current(e uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch == e
}

// publish replaces the state if e is still the current epoch
func (c *Controller) publish(e uint64, s State) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != e {
		c.logger.Debug("Dropping stale result",
			zap.Uint64("epoch", e),
			zap.Uint64("current", c.epoch),
			zap.String("kind", s.Kind.String()))
		return false
	}
	c.publishLocked(s)
	return true
}

func (c *Controller) publishLocked(s State) {
	c.state = s
	for _, l := range c.listeners {
		c.notify(l, s)
	}
	close(c.changed)
	c.changed = make(chan struct{})
}

// notify isolates a listener panic so the lock held by the caller is always released
func (c *Controller) notify(l listener, s State) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Listener panicked",
				zap.Int("listener", l.id),
				zap.String("kind", s.Kind.String()),
				zap.Any("panic", r))
		}
	}()
	l.fn(s)
}
