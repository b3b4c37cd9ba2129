package track

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// ErrEmptyCatalog is returned when a catalog document holds no tracks.
var ErrEmptyCatalog = errors.New("catalog contains no tracks")

// catalogTrack mirrors the backend track document.
type catalogTrack struct {
	ID           string      `json:"_id"`
	AltID        string      `json:"id"`
	Title        string      `json:"title"`
	Artist       string      `json:"artist"`
	ProducerName string      `json:"producer_name"`
	AudioURL     string      `json:"audio_url"`
	ArtworkURL   string      `json:"artwork_url"`
	IsVIP        bool        `json:"is_vip"`
	PreviewStart looseNumber `json:"vip_preview_start"`
	PreviewEnd   looseNumber `json:"vip_preview_end"`
	Genre        string      `json:"genre"`
	BPM          looseNumber `json:"bpm"`
}

type catalogEnvelope struct {
	Success bool           `json:"success"`
	Tracks  []catalogTrack `json:"tracks"`
}

// DecodeCatalog reads tracks from either a bare JSON array or the backend
// {"success":..,"tracks":[..]} envelope.
func DecodeCatalog(r io.Reader) ([]Item, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrEmptyCatalog
	}

	var raw []catalogTrack
	if data[0] == '[' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode catalog: %w", err)
		}
	} else {
		var env catalogEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("decode catalog: %w", err)
		}
		raw = env.Tracks
	}
	if len(raw) == 0 {
		return nil, ErrEmptyCatalog
	}

	return lo.Map(raw, func(t catalogTrack, _ int) Item {
		return t.item()
	}), nil
}

// Playable filters items down to those with an audio source.
func Playable(items []Item) []Item {
	return lo.Filter(items, func(it Item, _ int) bool {
		return it.IsPlayable()
	})
}

// IndexOf returns the position of the item with the given ID, or -1.
func IndexOf(items []Item, id string) int {
	_, idx, ok := lo.FindIndexOf(items, func(it Item) bool {
		return it.ID == id
	})
	if !ok {
		return -1
	}
	return idx
}

func (t catalogTrack) item() Item {
	id := t.ID
	if id == "" {
		id = t.AltID
	}
	artist := t.Artist
	if artist == "" {
		artist = t.ProducerName
	}
	bpm := 0
	if t.BPM.set {
		bpm = int(t.BPM.value)
	}
	return Item{
		ID:                id,
		Title:             t.Title,
		Artist:            artist,
		AudioSourceURI:    strings.TrimSpace(t.AudioURL),
		ArtworkURI:        strings.TrimSpace(t.ArtworkURL),
		PreviewRestricted: t.IsVIP,
		PreviewStart:      t.PreviewStart.ptr(),
		PreviewEnd:        t.PreviewEnd.ptr(),
		Genre:             t.Genre,
		BPM:               bpm,
	}
}

// looseNumber accepts a JSON number, a numeric string or null.
// Anything unparsable counts as absent rather than failing the whole catalog.
type looseNumber struct {
	value float64
	set   bool
}

func (n *looseNumber) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*n = looseNumber{}
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		*n = looseNumber{}
		return nil //nolint:nilerr // malformed bounds mean no restriction
	}
	*n = looseNumber{value: v, set: true}
	return nil
}

func (n looseNumber) ptr() *float64 {
	if !n.set {
		return nil
	}
	v := n.value
	return &v
}
