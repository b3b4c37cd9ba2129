// Package playlist holds the ordered play queue owned by the coordinator.
package playlist

import "github.com/spynners/spynners/internal/track"

// Playlist holds an ordered collection of items.
type Playlist struct {
	items []track.Item
}

// NewPlaylist creates a new empty playlist.
func NewPlaylist() *Playlist {
	return &Playlist{
		items: make([]track.Item, 0),
	}
}

// Set replaces the contents with a copy of items.
func (p *Playlist) Set(items []track.Item) {
	p.items = append(p.items[:0:0], items...)
}

// Clear removes all items from the playlist.
func (p *Playlist) Clear() {
	p.items = p.items[:0]
}

// Items returns a copy of all items.
func (p *Playlist) Items() []track.Item {
	result := make([]track.Item, len(p.items))
	copy(result, p.items)
	return result
}

// Item returns the item at the given index, or nil if out of bounds.
func (p *Playlist) Item(index int) *track.Item {
	if index < 0 || index >= len(p.items) {
		return nil
	}
	it := p.items[index]
	return &it
}

// Len returns the number of items.
func (p *Playlist) Len() int {
	return len(p.items)
}
