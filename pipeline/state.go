package pipeline

import (
	"github.com/lixenwraith/blockview/raster"
)

// Kind identifies the active variant of a State
type Kind uint8

const (
	KindIdle Kind = iota
	KindLoading
	KindReady
	KindFailed
)

// String returns human-readable kind name
func (k Kind) String() string {
	switch k {
	case KindIdle:
		return "idle"
	case KindLoading:
		return "loading"
	case KindReady:
		return "ready"
	case KindFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is the published render state.
// Info and Rows are set only for KindReady, Message only for KindFailed.
// Rows are shared between listeners and must be treated as read-only.
type State struct {
	Kind    Kind
	Source  string
	Info    string
	Rows    []raster.Row
	Message string
}

// Settled reports whether the state is a resting state of a finished request
func (s State) Settled() bool {
	return s.Kind == KindReady || s.Kind == KindFailed
}
