package playback

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spynners/spynners/internal/errmsg"
	"github.com/spynners/spynners/internal/player"
	"github.com/spynners/spynners/internal/playlist"
	"github.com/spynners/spynners/internal/track"
)

const (
	defaultPreviewGrace    = time.Second
	defaultAdvanceDebounce = 500 * time.Millisecond
	defaultLoadTimeout     = 15 * time.Second
)

// Options configure a Coordinator. Zero durations take the defaults;
// a negative LoadTimeout disables the timeout.
type Options struct {
	PreviewGrace    time.Duration
	AdvanceDebounce time.Duration
	LoadTimeout     time.Duration
	Logger          *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.PreviewGrace <= 0 {
		o.PreviewGrace = defaultPreviewGrace
	}
	if o.AdvanceDebounce <= 0 {
		o.AdvanceDebounce = defaultAdvanceDebounce
	}
	if o.LoadTimeout == 0 {
		o.LoadTimeout = defaultLoadTimeout
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// pendingAction is an engine side effect decided by a status update that
// could not take the command lock yet.
type pendingAction int

const (
	actionNone pendingAction = iota
	actionCutoff
	actionRewind
)

// Coordinator owns the playback session: the queue, the single engine
// instance and the transport state. All methods are safe for concurrent use.
//
// Transport commands are serialized by cmdMu. Track changes additionally
// pass the reentrancy guard: while a track change is in flight (loading)
// other track changes are dropped. The guard is independent of the phase,
// which status updates and transport commands may rewrite meanwhile. Status updates from the engine never wait on
// cmdMu; they carry the token of the load that produced them and are
// ignored once a newer load or a close has superseded it.
type Coordinator struct {
	cmdMu sync.Mutex

	mu        sync.Mutex
	phase     Phase
	token     uint64
	sessionID string
	queue     *playlist.Queue
	current   *track.Item
	playing   bool
	position  time.Duration
	duration  time.Duration
	cutoff    time.Duration
	hasCutoff bool
	loadedAt  time.Time
	pending   pendingAction
	advance   *time.Timer
	loading   bool
	closed    bool

	engine player.Engine
	mirror Mirror
	opts   Options
	logger *slog.Logger

	subsMu sync.Mutex
	subs   []*Subscription
}

// New creates a Coordinator driving engine and registers for its status
// updates. A nil mirror disables now-playing updates.
func New(engine player.Engine, mirror Mirror, opts Options) *Coordinator {
	opts = opts.withDefaults()
	if mirror == nil {
		mirror = NopMirror{}
	}
	c := &Coordinator{
		queue:  playlist.NewQueue(),
		engine: engine,
		mirror: mirror,
		opts:   opts,
		logger: opts.Logger.With("component", "playback"),
	}
	engine.OnStatusUpdate(c.handleStatus)
	return c
}

// PlayTrack makes item current and starts it, replacing the queue with
// queue (or with item alone when queue is empty). Dropped while another
// track change is loading.
func (c *Coordinator) PlayTrack(ctx context.Context, item track.Item, queue []track.Item) {
	if !c.beginLoad("play track") {
		return
	}
	defer c.endLoad()

	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()

	c.mu.Lock()
	c.queue.Replace(item, queue)
	if c.sessionID == "" {
		c.sessionID = uuid.NewString()
	}
	c.mu.Unlock()

	c.load(ctx, item, loadParams{autoplay: true, start: item.StartPosition()})
}

// Restore rebuilds a saved session: the queue is replaced and item is loaded
// paused at position.
func (c *Coordinator) Restore(ctx context.Context, item track.Item, queue []track.Item, position time.Duration) {
	if !c.beginLoad("restore") {
		return
	}
	defer c.endLoad()

	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()

	c.mu.Lock()
	c.queue.Replace(item, queue)
	if c.sessionID == "" {
		c.sessionID = uuid.NewString()
	}
	c.mu.Unlock()

	start := item.StartPosition()
	if position > start {
		start = position
	}
	c.load(ctx, item, loadParams{autoplay: false, start: start})
}

// PlayNext moves to the next queue entry, wrapping at the end.
// No-op when the queue holds fewer than two items.
func (c *Coordinator) PlayNext(ctx context.Context) {
	c.step(ctx, "play next", (*playlist.Queue).Next, 0)
}

// PlayPrevious moves to the previous queue entry, wrapping at the start.
// No-op when the queue holds fewer than two items.
func (c *Coordinator) PlayPrevious(ctx context.Context) {
	c.step(ctx, "play previous", (*playlist.Queue).Previous, 0)
}

// step moves the queue index with move and loads the new current item.
// A non-zero expect aborts the step unless the session token still matches.
func (c *Coordinator) step(ctx context.Context, op string, move func(*playlist.Queue) *track.Item, expect uint64) {
	c.mu.Lock()
	hasQueue := c.queue.HasQueue()
	c.mu.Unlock()
	if !hasQueue {
		return
	}

	if !c.beginLoad(op) {
		return
	}
	defer c.endLoad()

	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()

	c.mu.Lock()
	if expect != 0 && c.token != expect {
		c.mu.Unlock()
		c.logger.Debug("session changed, skipping", "op", op)
		return
	}
	item := move(c.queue)
	c.mu.Unlock()
	if item == nil {
		return
	}

	c.load(ctx, *item, loadParams{autoplay: true, start: item.StartPosition()})
}

// beginLoad takes the reentrancy guard.
func (c *Coordinator) beginLoad(op string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	if c.loading {
		c.logger.Debug("load in flight, dropping command", "op", op)
		return false
	}
	c.loading = true
	return true
}

// endLoad releases the reentrancy guard and publishes the settled session.
// It runs deferred, so a panic in the engine is logged and the phase settles
// instead of staying Loading.
func (c *Coordinator) endLoad() {
	if r := recover(); r != nil {
		c.logger.Error("track change panicked", "panic", r)
	}
	c.mu.Lock()
	c.loading = false
	if c.phase == PhaseLoading {
		c.phase = c.settledPhaseLocked()
	}
	c.mu.Unlock()
	c.publishSession()
}

func (c *Coordinator) settledPhaseLocked() Phase {
	switch {
	case c.current == nil:
		return PhaseIdle
	case c.loadedAt.IsZero():
		return PhaseStopped
	case c.playing:
		return PhasePlaying
	default:
		return PhasePaused
	}
}

type loadParams struct {
	autoplay bool
	start    time.Duration
}

// load releases the engine instance and loads item under a new token.
// The caller holds cmdMu and the reentrancy guard.
func (c *Coordinator) load(ctx context.Context, item track.Item, p loadParams) {
	c.mu.Lock()
	c.token++
	token := c.token
	c.stopAdvanceLocked()
	previous := c.current
	c.current = &item
	announced := item
	c.phase = PhaseLoading
	c.playing = false
	c.position = 0
	c.duration = 0
	c.cutoff, c.hasCutoff = item.PreviewCutoff()
	c.loadedAt = time.Time{}
	c.pending = actionNone
	change := TrackChange{
		SessionID: c.sessionID,
		Previous:  previous,
		Current:   &announced,
		Index:     c.queue.CurrentIndex(),
	}
	c.mu.Unlock()

	c.publishTrack(change)
	c.publishSession()

	c.engine.Unload()

	if !item.IsPlayable() {
		c.mu.Lock()
		c.phase = PhaseStopped
		c.mu.Unlock()
		c.logger.Info("track has no audio source", "track", item.ID)
		c.mirrorDo("clear", func(m Mirror) { m.ClearNowPlaying() })
		c.publishSession()
		return
	}

	loadCtx := ctx
	if c.opts.LoadTimeout > 0 {
		var cancel context.CancelFunc
		loadCtx, cancel = context.WithTimeout(ctx, c.opts.LoadTimeout)
		defer cancel()
	}

	err := c.engine.Load(loadCtx, item.AudioSourceURI, player.LoadOptions{
		Autoplay:      p.autoplay,
		StartPosition: p.start,
		Token:         token,
	})
	if err != nil {
		c.mu.Lock()
		superseded := c.token != token
		if !superseded {
			c.phase = PhaseStopped
		}
		c.mu.Unlock()
		if superseded {
			return
		}
		c.logger.Warn("load failed", "track", item.ID, "token", token, "error", err)
		c.mirrorDo("clear", func(m Mirror) { m.ClearNowPlaying() })
		c.publishError(ErrorEvent{Op: errmsg.OpPlaybackLoad, TrackID: item.ID, Err: err})
		c.publishSession()
		return
	}

	st := c.engine.Status()

	c.mu.Lock()
	if c.token != token {
		c.mu.Unlock()
		return
	}
	c.loadedAt = time.Now()
	c.playing = p.autoplay
	c.phase = PhasePaused
	if p.autoplay {
		c.phase = PhasePlaying
	}
	c.position = p.start
	if st.Token == token {
		c.position = st.Position
		c.duration = st.Duration
	}
	md := MetadataFor(item, c.duration)
	playing, position := c.playing, c.position
	c.mu.Unlock()

	c.logger.Info("track loaded",
		"session", change.SessionID,
		"track", item.ID,
		"token", token,
		"start", p.start,
		"preview_cutoff", cutoffLabel(item))

	c.mirrorDo("metadata", func(m Mirror) {
		m.SetNowPlayingMetadata(md)
		m.SetTransportState(playing, position)
	})
	c.publishSession()
}

func cutoffLabel(item track.Item) string {
	end, ok := item.PreviewCutoff()
	if !ok {
		return "none"
	}
	return end.String()
}

// Snapshot returns the current session state.
func (c *Coordinator) Snapshot() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Coordinator) snapshotLocked() Session {
	var current *track.Item
	if c.current != nil {
		item := *c.current
		current = &item
	}
	return Session{
		ID:           c.sessionID,
		Phase:        c.phase,
		Current:      current,
		IsPlaying:    c.playing,
		IsLoading:    c.loading,
		Position:     c.position,
		Duration:     c.duration,
		HasQueue:     c.queue.HasQueue(),
		Queue:        c.queue.Items(),
		CurrentIndex: c.queue.CurrentIndex(),
	}
}

// Subscribe creates a new event subscription.
func (c *Coordinator) Subscribe() *Subscription {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	sub := newSubscription()
	c.subs = append(c.subs, sub)
	return sub
}

// Close ends the session, detaches from the engine and closes every
// subscription. Idempotent.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.ClosePlayer()

	c.mu.Lock()
	c.closed = true
	c.token++
	c.stopAdvanceLocked()
	c.mu.Unlock()

	c.engine.OnStatusUpdate(nil)

	c.subsMu.Lock()
	for _, sub := range c.subs {
		sub.close()
	}
	c.subs = nil
	c.subsMu.Unlock()
}

func (c *Coordinator) stopAdvanceLocked() {
	if c.advance != nil {
		c.advance.Stop()
		c.advance = nil
	}
}

// mirrorDo runs fn against the mirror, swallowing panics.
func (c *Coordinator) mirrorDo(op string, fn func(Mirror)) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn("now-playing mirror failed", "op", op, "panic", r)
		}
	}()
	fn(c.mirror)
}

func (c *Coordinator) publishSession() {
	s := c.Snapshot()
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	for _, sub := range c.subs {
		sub.sendSession(s)
	}
}

func (c *Coordinator) publishTrack(e TrackChange) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	for _, sub := range c.subs {
		sub.sendTrack(e)
	}
}

func (c *Coordinator) publishError(e ErrorEvent) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	for _, sub := range c.subs {
		sub.sendError(e)
	}
}
