// Package notify plays a short tone when a render settles.
package notify

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"go.uber.org/zap"

	"github.com/lixenwraith/blockview/pipeline"
)

const (
	sampleRate = beep.SampleRate(44100)

	readyFreq     = 880.0
	readyDuration = 60 * time.Millisecond
	failFreq      = 220.0
	failDuration  = 180 * time.Millisecond
)

// Chime turns settled pipeline states into tones.
// A disabled chime, or one whose audio device failed to open, is silent.
type Chime struct {
	mu          sync.Mutex
	enabled     bool
	initialized bool
	logger      *zap.Logger

	// Swapped in tests to avoid opening an audio device
	initFn func(beep.SampleRate, int) error
	playFn func(...beep.Streamer)
}

// New creates a chime; audio is opened lazily on first use
func New(enabled bool, logger *zap.Logger) *Chime {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chime{
		enabled: enabled,
		logger:  logger,
		initFn:  speaker.Init,
		playFn:  speaker.Play,
	}
}

// Initialize opens the audio device; failure disables the chime
func (c *Chime) Initialize() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initLocked()
}

func (c *Chime) initLocked() error {
	if !c.enabled || c.initialized {
		return nil
	}
	if err := c.initFn(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		c.enabled = false
		c.logger.Warn("Audio initialization failed, chime disabled", zap.Error(err))
		return err
	}
	c.initialized = true
	return nil
}

// Observe is a pipeline listener. Playback is dispatched off the caller's goroutine.
func (c *Chime) Observe(s pipeline.State) {
	if !s.Settled() {
		return
	}

	c.mu.Lock()
	if c.initLocked() != nil || !c.enabled {
		c.mu.Unlock()
		return
	}
	play := c.playFn
	c.mu.Unlock()

	stream := tone(s.Kind)
	if stream == nil {
		return
	}
	go play(stream)
}

// tone builds the streamer for a settled kind
func tone(kind pipeline.Kind) beep.Streamer {
	freq, dur := readyFreq, readyDuration
	if kind == pipeline.KindFailed {
		freq, dur = failFreq, failDuration
	}

	sine, err := generators.SineTone(sampleRate, freq)
	if err != nil {
		return nil
	}
	return &effects.Volume{
		Streamer: beep.Take(sampleRate.N(dur), sine),
		Base:     2,
		Volume:   -2,
	}
}
