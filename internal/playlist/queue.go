package playlist

import "github.com/spynners/spynners/internal/track"

// Queue wraps a Playlist with a current position.
//
// Invariant: 0 <= CurrentIndex() < Len() whenever Len() > 0, and
// CurrentIndex() == -1 when the queue is empty.
// Only Replace and Clear change the contents; Next, Previous and JumpTo only
// move the index.
type Queue struct {
	playlist     *Playlist
	currentIndex int
}

// NewQueue creates a new empty queue.
func NewQueue() *Queue {
	return &Queue{
		playlist:     NewPlaylist(),
		currentIndex: -1,
	}
}

// Replace sets the queue contents and positions the index on item.
// With an empty list the queue becomes the singleton [item].
// If item is not found in list the index is 0.
func (q *Queue) Replace(item track.Item, list []track.Item) *track.Item {
	if len(list) == 0 {
		q.playlist.Set([]track.Item{item})
		q.currentIndex = 0
		return q.Current()
	}
	q.playlist.Set(list)
	q.currentIndex = max(track.IndexOf(list, item.ID), 0)
	return q.Current()
}

// Current returns the item at the current index, or nil if none.
func (q *Queue) Current() *track.Item {
	return q.playlist.Item(q.currentIndex)
}

// CurrentIndex returns the current index (-1 if empty).
func (q *Queue) CurrentIndex() int {
	return q.currentIndex
}

// Next moves to the following item, wrapping to the start.
// Returns nil without moving when the queue has one item or fewer.
func (q *Queue) Next() *track.Item {
	n := q.playlist.Len()
	if n <= 1 {
		return nil
	}
	q.currentIndex = (q.currentIndex + 1) % n
	return q.Current()
}

// Previous moves to the preceding item, wrapping to the end.
// Returns nil without moving when the queue has one item or fewer.
func (q *Queue) Previous() *track.Item {
	n := q.playlist.Len()
	if n <= 1 {
		return nil
	}
	if q.currentIndex > 0 {
		q.currentIndex--
	} else {
		q.currentIndex = n - 1
	}
	return q.Current()
}

// JumpTo sets the current index to the specified position.
// Returns the item at that position, or nil if invalid.
func (q *Queue) JumpTo(index int) *track.Item {
	if index < 0 || index >= q.playlist.Len() {
		return nil
	}
	q.currentIndex = index
	return q.Current()
}

// Clear removes all items and resets the index.
func (q *Queue) Clear() {
	q.playlist.Clear()
	q.currentIndex = -1
}

// Items returns a copy of the queued items.
func (q *Queue) Items() []track.Item {
	return q.playlist.Items()
}

// Len returns the number of queued items.
func (q *Queue) Len() int {
	return q.playlist.Len()
}

// HasQueue reports whether there is anything to advance to.
func (q *Queue) HasQueue() bool {
	return q.playlist.Len() > 1
}
