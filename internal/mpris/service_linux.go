//go:build linux

package mpris

import (
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/events"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"
)

// dbusService serves org.mpris.MediaPlayer2 on the session bus.
type dbusService struct {
	server *server.Server
	events *events.EventHandler
}

func startService(a *Adapter) (service, error) {
	if _, err := dbus.SessionBus(); err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}

	srv := server.NewServer(a.identity, &rootAdapter{identity: a.identity}, &playerAdapter{a: a})
	s := &dbusService{
		server: srv,
		events: events.NewEventHandler(srv),
	}

	go func() {
		if err := srv.Listen(); err != nil {
			a.logger.Warn("mpris server stopped", "error", err)
		}
	}()
	return s, nil
}

func (s *dbusService) trackChanged() error {
	return s.events.Player.OnTitle()
}

func (s *dbusService) playbackChanged() error {
	return s.events.Player.OnPlayPause()
}

func (s *dbusService) seeked(position time.Duration) error {
	return s.events.Player.OnSeek(types.Microseconds(position.Microseconds()))
}

func (s *dbusService) stop() error {
	return s.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct {
	identity string
}

func (r *rootAdapter) Raise() error {
	return nil // Not supported
}

func (r *rootAdapter) Quit() error {
	return nil // Not supported - app manages its own lifecycle
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil
}

func (r *rootAdapter) Identity() (string, error) {
	return r.identity, nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"file", "http", "https"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/mp3", "audio/flac", "audio/wav"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter on top of the
// adapter's cached state. Commands are relayed to the remote bus.
type playerAdapter struct {
	a *Adapter
}

func (p *playerAdapter) Next() error {
	p.a.next()
	return nil
}

func (p *playerAdapter) Previous() error {
	p.a.previous()
	return nil
}

func (p *playerAdapter) Pause() error {
	p.a.pause()
	return nil
}

func (p *playerAdapter) PlayPause() error {
	p.a.playPause()
	return nil
}

func (p *playerAdapter) Stop() error {
	p.a.stop()
	return nil
}

func (p *playerAdapter) Play() error {
	p.a.play()
	return nil
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	p.a.seekBy(time.Duration(offset) * time.Microsecond)
	return nil
}

func (p *playerAdapter) SetPosition(trackID string, position types.Microseconds) error {
	p.a.setPosition(trackID, time.Duration(position)*time.Microsecond)
	return nil
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil // Not supported
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	st := p.a.snapshot()
	switch {
	case !st.loaded:
		return types.PlaybackStatusStopped, nil
	case st.playing:
		return types.PlaybackStatusPlaying, nil
	default:
		return types.PlaybackStatusPaused, nil
	}
}

func (p *playerAdapter) Rate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetRate(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	st := p.a.snapshot()
	if !st.loaded {
		return types.Metadata{
			TrackId: dbus.ObjectPath(trackObjectPath("")),
		}, nil
	}

	md := st.meta
	meta := types.Metadata{
		TrackId: dbus.ObjectPath(trackObjectPath(md.TrackID)),
		Length:  types.Microseconds(md.Duration.Microseconds()),
		Title:   md.Title,
	}
	if md.Artist != "" {
		meta.Artist = []string{md.Artist}
	}
	if art := artURL(md); art != "" {
		meta.ArtUrl = art
	}
	return meta, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetVolume(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Position() (int64, error) {
	st := p.a.snapshot()
	if !st.loaded {
		return 0, nil
	}
	return st.positionAt(p.a.now()).Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	return p.a.snapshot().loaded, nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return p.a.snapshot().loaded, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return p.a.snapshot().loaded, nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return p.a.snapshot().loaded, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	st := p.a.snapshot()
	return st.loaded && st.meta.Duration > 0, nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}
