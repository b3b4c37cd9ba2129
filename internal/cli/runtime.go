package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/spynners/spynners/internal/app"
	"github.com/spynners/spynners/internal/config"
	"github.com/spynners/spynners/internal/errmsg"
	"github.com/spynners/spynners/internal/logging"
	"github.com/spynners/spynners/internal/mpris"
	"github.com/spynners/spynners/internal/notify"
	"github.com/spynners/spynners/internal/playback"
	"github.com/spynners/spynners/internal/player"
	"github.com/spynners/spynners/internal/remote"
	"github.com/spynners/spynners/internal/state"
	"github.com/spynners/spynners/internal/stderr"
)

const httpTimeout = 30 * time.Second

var newNotifier = notify.New

// runtime wires the engine, the coordinator and the desktop surfaces for
// one interactive session.
type runtime struct {
	cfg    *config.Config
	logger *slog.Logger
	client *http.Client

	coord    *playback.Coordinator
	bus      *remote.Bus
	mirror   *mpris.Adapter
	notifier *notify.TrackNotifier
	state    state.Interface

	unbind  func()
	workers sync.WaitGroup
}

// setup loads configuration and logging. The returned cleanup closes the
// log file.
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, errors.New(errmsg.Format(errmsg.OpConfigLoad, err))
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}

	logger, closer, err := logging.Setup(cfg.Log)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, func() { closer.Close() }, nil
}

// trackNotifier announces track changes under the same name the media
// controls show. Nil when no notifier can be created.
func trackNotifier(cfg *config.Config, logger *slog.Logger) *notify.TrackNotifier {
	n, err := newNotifier(cfg.Mirror.Identity)
	if err != nil {
		logger.Info("notifications unavailable", "error", err)
		return nil
	}
	return notify.NewTrackNotifier(n, notify.Options{Timeout: cfg.Notifications.Timeout}, logger)
}

func newRuntime(cfg *config.Config, logger *slog.Logger) *runtime {
	r := &runtime{
		cfg:    cfg,
		logger: logger,
		client: &http.Client{Timeout: httpTimeout},
		bus:    remote.NewBus(logger),
	}

	if cfg.StateEnabled() {
		mgr, err := state.Open(cfg.State.Path, logger)
		if err != nil {
			logger.Warn("session persistence disabled", "error", err)
		} else {
			r.state = mgr
		}
	}

	var mirror playback.Mirror = playback.NopMirror{}
	if cfg.MirrorEnabled() {
		r.mirror = mpris.New(cfg.Mirror.Identity, r.bus, logger)
		mirror = r.mirror
	}

	if cfg.NotificationsEnabled() {
		r.notifier = trackNotifier(cfg, logger)
	}

	engine := player.New(player.Options{
		StatusInterval: cfg.Playback.StatusInterval,
		SampleRate:     cfg.Playback.SampleRate,
		HTTPClient:     r.client,
		Logger:         logger,
	})

	r.coord = playback.New(engine, mirror, playback.Options{
		PreviewGrace:    cfg.Playback.PreviewGrace,
		AdvanceDebounce: cfg.Playback.AdvanceDebounce,
		LoadTimeout:     cfg.Playback.LoadTimeout,
		Logger:          logger,
	})
	r.unbind = r.coord.BindRemote(r.bus)
	return r
}

// run shows the now-playing view and calls start once it is up. It returns
// when the user quits.
func (r *runtime) run(ctx context.Context, start func(ctx context.Context, c *playback.Coordinator)) error {
	defer r.close()

	var opts app.Options
	capture, err := stderr.Start(r.logger)
	if err != nil {
		r.logger.Debug("stderr capture unavailable", "error", err)
	} else {
		opts.Stderr = capture.Lines()
		defer func() {
			if err := capture.Stop(); err != nil {
				r.logger.Warn("restore stderr", "error", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if r.state != nil {
		sub := r.coord.Subscribe()
		r.workers.Go(func() { persistSessions(sub, r.state) })
	}
	if r.notifier != nil {
		sub := r.coord.Subscribe()
		r.workers.Go(func() { notifyTracks(sub, r.notifier) })
	}

	view := app.New(r.coord, r.coord.Subscribe(), opts)
	program := tea.NewProgram(view, tea.WithAltScreen(), tea.WithContext(ctx))

	go start(ctx, r.coord)

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run view: %w", err)
	}
	return nil
}

func (r *runtime) close() {
	r.unbind()
	r.coord.Close()
	r.workers.Wait()
	if r.notifier != nil {
		r.notifier.Dismiss()
	}
	if r.mirror != nil {
		if err := r.mirror.Close(); err != nil {
			r.logger.Debug("close media controls", "error", err)
		}
	}
	if r.state != nil {
		if err := r.state.Close(); err != nil {
			r.logger.Warn("close state", "error", err)
		}
	}
}

// persistSessions saves every session that has a current track. Idle
// snapshots are skipped so the last session survives quitting.
func persistSessions(sub *playback.Subscription, store state.Interface) {
	for {
		select {
		case s := <-sub.SessionChanged:
			if st, ok := state.FromSession(s, time.Now()); ok {
				store.SaveSession(st)
			}
		case <-sub.TrackChanged:
		case <-sub.Error:
		case <-sub.Done:
			return
		}
	}
}

func notifyTracks(sub *playback.Subscription, n *notify.TrackNotifier) {
	for {
		select {
		case e := <-sub.TrackChanged:
			n.TrackChanged(e)
		case <-sub.SessionChanged:
		case <-sub.Error:
		case <-sub.Done:
			return
		}
	}
}
