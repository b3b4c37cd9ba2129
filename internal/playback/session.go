package playback

import (
	"time"

	"github.com/spynners/spynners/internal/track"
)

// Session is a read-only snapshot of the playback session.
type Session struct {
	ID           string
	Phase        Phase
	Current      *track.Item
	IsPlaying    bool
	IsLoading    bool
	Position     time.Duration
	Duration     time.Duration
	HasQueue     bool
	Queue        []track.Item
	CurrentIndex int
}

// Preview returns the restricted preview window of the current track.
func (s Session) Preview() (track.PreviewWindow, bool) {
	if s.Current == nil || !s.Current.PreviewRestricted {
		return track.PreviewWindow{}, false
	}
	return s.Current.Window()
}
