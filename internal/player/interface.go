// internal/player/interface.go
package player

import (
	"context"
	"time"
)

// Status is a snapshot of the loaded instance.
// Token is the value passed in LoadOptions for the instance that produced it,
// so receivers can drop snapshots from superseded instances.
type Status struct {
	Token         uint64
	IsLoaded      bool
	IsPlaying     bool
	Position      time.Duration
	Duration      time.Duration
	DidJustFinish bool // set on exactly one tick when end of media is reached
}

// LoadOptions configure a Load call.
type LoadOptions struct {
	Autoplay      bool
	StartPosition time.Duration
	Token         uint64
}

// Engine owns at most one decoder/output instance at a time.
//
// Transport methods are no-ops when nothing is loaded. Load releases any
// previous instance before creating the new one.
type Engine interface {
	Load(ctx context.Context, uri string, opts LoadOptions) error
	Play()
	Pause()
	Stop()
	Seek(position time.Duration)
	Unload()
	Status() Status
	OnStatusUpdate(fn func(Status))
}

// Verify Player implements Engine at compile time.
var _ Engine = (*Player)(nil)
