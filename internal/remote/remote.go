// Package remote relays transport commands from system-level controls
// (lock screen, media keys, MPRIS) to whoever owns playback.
//
// The bus is pure delivery: it knows nothing about playback and never
// inspects the commands it forwards.
package remote

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Event names a remote transport gesture.
type Event string

const (
	EventPlay     Event = "play"
	EventPause    Event = "pause"
	EventStop     Event = "stop"
	EventNext     Event = "next"
	EventPrevious Event = "previous"
	EventSeek     Event = "seek"
)

// Events lists every event the bus understands.
var Events = []Event{EventPlay, EventPause, EventStop, EventNext, EventPrevious, EventSeek}

// Command is a remote gesture. Position is only meaningful for EventSeek.
type Command struct {
	Event    Event
	Position time.Duration
}

// Seek builds a seek command.
func Seek(pos time.Duration) Command {
	return Command{Event: EventSeek, Position: pos}
}

// Handler receives commands for one event.
type Handler func(Command)

// HandlerID identifies a registration so it can be removed with Off.
type HandlerID uint64

type registration struct {
	id HandlerID
	fn Handler
}

// Bus is a named-event publish/subscribe channel. Safe for concurrent use.
type Bus struct {
	mu       sync.Mutex
	handlers map[Event][]registration
	nextID   HandlerID
	logger   *slog.Logger
}

// NewBus creates an empty bus. A nil logger uses slog.Default().
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		handlers: make(map[Event][]registration),
		logger:   logger.With("component", "remote"),
	}
}

// On registers fn for event. Handlers run in registration order.
func (b *Bus) On(event Event, fn Handler) HandlerID {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.handlers[event] = append(b.handlers[event], registration{id: id, fn: fn})
	return id
}

// Off removes the registration id from event. Unknown ids are ignored.
func (b *Bus) Off(event Event, id HandlerID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	regs := b.handlers[event]
	for i, r := range regs {
		if r.id == id {
			b.handlers[event] = append(regs[:i:i], regs[i+1:]...)
			break
		}
	}
	if len(b.handlers[event]) == 0 {
		delete(b.handlers, event)
	}
}

// Emit delivers cmd synchronously to every handler of cmd.Event.
// A panicking handler is logged and does not stop delivery to the rest.
func (b *Bus) Emit(cmd Command) {
	if cmd.Event != EventSeek {
		cmd.Position = 0
	}

	b.mu.Lock()
	regs := append([]registration(nil), b.handlers[cmd.Event]...)
	b.mu.Unlock()

	for _, r := range regs {
		b.invoke(r, cmd)
	}
}

// Clear removes every handler for every event.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = make(map[Event][]registration)
}

// Len returns the number of handlers registered for event.
func (b *Bus) Len(event Event) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers[event])
}

func (b *Bus) invoke(r registration, cmd Command) {
	defer func() {
		if rec := recover(); rec != nil {
			b.logger.Error("remote handler panicked",
				"event", string(cmd.Event),
				"handler", r.id,
				"panic", fmt.Sprint(rec))
		}
	}()
	r.fn(cmd)
}
