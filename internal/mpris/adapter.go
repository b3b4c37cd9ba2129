// Package mpris mirrors the playback session onto the desktop's media
// controls (MPRIS over D-Bus) and relays their gestures to the remote bus.
package mpris

import (
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/spynners/spynners/internal/playback"
	"github.com/spynners/spynners/internal/remote"
)

// DefaultIdentity is the player name shown by desktop media controls.
const DefaultIdentity = "Spynners"

var _ playback.Mirror = (*Adapter)(nil)

// service is the platform surface the adapter publishes to.
type service interface {
	trackChanged() error
	playbackChanged() error
	seeked(position time.Duration) error
	stop() error
}

// Adapter implements playback.Mirror. Property reads are answered from the
// last state pushed by the coordinator; gestures only go to the bus.
type Adapter struct {
	identity string
	bus      *remote.Bus
	logger   *slog.Logger
	now      func() time.Time

	mu    sync.Mutex
	state nowPlaying

	svc service
}

// New starts the media-controls service. When the session bus is not
// reachable the adapter is returned disabled and every call is a no-op.
func New(identity string, bus *remote.Bus, logger *slog.Logger) *Adapter {
	if identity == "" {
		identity = DefaultIdentity
	}
	if logger == nil {
		logger = slog.Default()
	}
	a := &Adapter{
		identity: identity,
		bus:      bus,
		logger:   logger.With("component", "mpris"),
		now:      time.Now,
	}
	svc, err := startService(a)
	if err != nil {
		a.logger.Info("media controls unavailable", "error", err)
		return a
	}
	a.svc = svc
	return a
}

// Enabled reports whether the desktop service is running.
func (a *Adapter) Enabled() bool {
	return a.svc != nil
}

// SetNowPlayingMetadata publishes a new current track.
func (a *Adapter) SetNowPlayingMetadata(md playback.Metadata) {
	a.mu.Lock()
	a.state.meta = md
	a.state.loaded = true
	a.state.position = 0
	a.state.at = a.now()
	a.mu.Unlock()

	a.publish("metadata", func(s service) error { return s.trackChanged() })
}

// SetTransportState publishes the playing flag and position.
func (a *Adapter) SetTransportState(playing bool, position time.Duration) {
	a.mu.Lock()
	now := a.now()
	drift := position - a.state.positionAt(now)
	moved := drift > time.Second || drift < -time.Second
	a.state.playing = playing
	a.state.position = position
	a.state.at = now
	a.mu.Unlock()

	a.publish("transport", func(s service) error { return s.playbackChanged() })
	if moved {
		a.publish("seeked", func(s service) error { return s.seeked(position) })
	}
}

// ClearNowPlaying removes the current track.
func (a *Adapter) ClearNowPlaying() {
	a.mu.Lock()
	a.state = nowPlaying{}
	a.mu.Unlock()

	a.publish("clear", func(s service) error { return s.trackChanged() })
}

// Close stops the desktop service.
func (a *Adapter) Close() error {
	if a.svc == nil {
		return nil
	}
	return a.svc.stop()
}

// publish runs fn against the service, logging failures and panics.
func (a *Adapter) publish(op string, fn func(service) error) {
	if a.svc == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			a.logger.Debug("media controls update panicked", "op", op, "panic", r)
		}
	}()
	if err := fn(a.svc); err != nil {
		a.logger.Debug("media controls update failed", "op", op, "error", err)
	}
}

func (a *Adapter) snapshot() nowPlaying {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Gestures from the desktop. They never touch playback directly.

func (a *Adapter) play()     { a.emit(remote.Command{Event: remote.EventPlay}) }
func (a *Adapter) pause()    { a.emit(remote.Command{Event: remote.EventPause}) }
func (a *Adapter) stop()     { a.emit(remote.Command{Event: remote.EventStop}) }
func (a *Adapter) next()     { a.emit(remote.Command{Event: remote.EventNext}) }
func (a *Adapter) previous() { a.emit(remote.Command{Event: remote.EventPrevious}) }

func (a *Adapter) playPause() {
	if a.snapshot().playing {
		a.pause()
		return
	}
	a.play()
}

// seekBy converts a relative seek into an absolute one.
func (a *Adapter) seekBy(offset time.Duration) {
	st := a.snapshot()
	if !st.loaded {
		return
	}
	a.emit(remote.Seek(max(st.positionAt(a.now())+offset, 0)))
}

// setPosition seeks when trackID still names the current track.
func (a *Adapter) setPosition(trackID string, position time.Duration) {
	st := a.snapshot()
	if !st.loaded || trackID != trackObjectPath(st.meta.TrackID) || position < 0 {
		return
	}
	if st.meta.Duration > 0 && position > st.meta.Duration {
		return
	}
	a.emit(remote.Seek(position))
}

func (a *Adapter) emit(cmd remote.Command) {
	if a.bus == nil {
		return
	}
	a.logger.Debug("gesture", "event", cmd.Event, "position", cmd.Position)
	a.bus.Emit(cmd)
}

// nowPlaying is the cached state answered to property reads.
type nowPlaying struct {
	meta     playback.Metadata
	loaded   bool
	playing  bool
	position time.Duration
	at       time.Time
}

// positionAt extrapolates the position while playing.
func (s nowPlaying) positionAt(now time.Time) time.Duration {
	if !s.playing || s.at.IsZero() {
		return s.position
	}
	pos := s.position + now.Sub(s.at)
	if s.meta.Duration > 0 && pos > s.meta.Duration {
		pos = s.meta.Duration
	}
	return pos
}

func trackObjectPath(id string) string {
	if id == "" {
		return "/org/mpris/MediaPlayer2/TrackList/NoTrack"
	}
	h := fnv.New64a()
	h.Write([]byte(id))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
