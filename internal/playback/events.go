package playback

import (
	"github.com/spynners/spynners/internal/errmsg"
	"github.com/spynners/spynners/internal/track"
)

// TrackChange is emitted when a different track becomes current.
//
// Emitted by PlayTrack, PlayNext, PlayPrevious and auto-advance, including
// when the new track has no audio source or fails to load. Transport
// changes (pause, seek) do not emit TrackChange.
type TrackChange struct {
	SessionID string
	Previous  *track.Item
	Current   *track.Item
	Index     int
}

// ErrorEvent is emitted when a coordinator operation fails.
type ErrorEvent struct {
	Op      errmsg.Op
	TrackID string
	Err     error
}

// Message formats the event for display.
func (e ErrorEvent) Message() string {
	return errmsg.Format(e.Op, e.Err)
}
