// Package track defines the playable item contract shared by the catalog,
// the queue and the playback coordinator.
package track

import "time"

// Item represents one streamable audio asset.
// Items are built by catalog loaders and never mutated during playback.
type Item struct {
	ID                string
	Title             string
	Artist            string
	AudioSourceURI    string // empty means not playable
	ArtworkURI        string
	PreviewRestricted bool     // VIP gating
	PreviewStart      *float64 // seconds
	PreviewEnd        *float64 // seconds
	Genre             string
	BPM               int
}

// PreviewWindow is a validated preview range.
type PreviewWindow struct {
	Start time.Duration
	End   time.Duration
}

// Length returns the playable length of the window.
func (w PreviewWindow) Length() time.Duration {
	return w.End - w.Start
}

// Window returns the preview window if both bounds are present, positive and
// ordered. Anything else means no restriction.
func (i Item) Window() (PreviewWindow, bool) {
	if i.PreviewStart == nil || i.PreviewEnd == nil {
		return PreviewWindow{}, false
	}
	start, end := *i.PreviewStart, *i.PreviewEnd
	if start <= 0 || end <= 0 || end <= start {
		return PreviewWindow{}, false
	}
	return PreviewWindow{
		Start: seconds(start),
		End:   seconds(end),
	}, true
}

// IsPlayable reports whether the item has an audio source.
func (i Item) IsPlayable() bool {
	return i.AudioSourceURI != ""
}

// StartPosition is where playback begins: the window start when the window is
// valid, zero otherwise.
func (i Item) StartPosition() time.Duration {
	if w, ok := i.Window(); ok {
		return w.Start
	}
	return 0
}

// PreviewCutoff returns the position at which a restricted preview must stop.
func (i Item) PreviewCutoff() (time.Duration, bool) {
	if !i.PreviewRestricted {
		return 0, false
	}
	w, ok := i.Window()
	if !ok {
		return 0, false
	}
	return w.End, true
}

// DisplayArtist returns the artist or a placeholder.
func (i Item) DisplayArtist() string {
	if i.Artist == "" {
		return "Unknown artist"
	}
	return i.Artist
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Seconds returns a pointer to s, for building preview bounds.
func Seconds(s float64) *float64 {
	return &s
}
