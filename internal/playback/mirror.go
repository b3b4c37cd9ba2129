package playback

import (
	"time"

	"github.com/spynners/spynners/internal/track"
)

// Metadata describes the current track for the system now-playing surface.
type Metadata struct {
	TrackID    string
	Title      string
	Artist     string
	ArtworkURI string
	Source     string
	Duration   time.Duration
}

// MetadataFor builds mirror metadata for item.
func MetadataFor(item track.Item, duration time.Duration) Metadata {
	return Metadata{
		TrackID:    item.ID,
		Title:      item.Title,
		Artist:     item.DisplayArtist(),
		ArtworkURI: item.ArtworkURI,
		Source:     item.AudioSourceURI,
		Duration:   duration,
	}
}

// Mirror publishes session state to the operating system's now-playing
// surface. Implementations log and swallow their own failures.
type Mirror interface {
	SetNowPlayingMetadata(md Metadata)
	SetTransportState(playing bool, position time.Duration)
	ClearNowPlaying()
}

// NopMirror discards every update.
type NopMirror struct{}

func (NopMirror) SetNowPlayingMetadata(Metadata)        {}
func (NopMirror) SetTransportState(bool, time.Duration) {}
func (NopMirror) ClearNowPlaying()                      {}
