package app

import (
	"context"
	"time"

	"github.com/spynners/spynners/internal/playback"
)

// Controller is the playback surface the view drives.
type Controller interface {
	TogglePlayPause()
	PlayNext(ctx context.Context)
	PlayPrevious(ctx context.Context)
	SeekTo(position time.Duration)
	ClosePlayer()
	Snapshot() playback.Session
}

// Compile-time assertion that the coordinator satisfies Controller.
var _ Controller = (*playback.Coordinator)(nil)
