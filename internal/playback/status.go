package playback

import (
	"context"
	"time"

	"github.com/spynners/spynners/internal/player"
	"github.com/spynners/spynners/internal/playlist"
)

// handleStatus applies an engine status update. It runs on the engine's
// goroutine and never blocks on cmdMu: engine side effects are attempted
// with TryLock and retried on the next update when a command is running.
func (c *Coordinator) handleStatus(st player.Status) {
	c.mu.Lock()
	if c.closed || st.Token != c.token || c.phase == PhaseIdle || c.phase == PhaseStopped {
		c.mu.Unlock()
		return
	}

	c.position = st.Position
	if st.Duration > 0 {
		c.duration = st.Duration
	}
	if c.phase != PhaseLoading {
		c.playing = st.IsPlaying
		if c.pending == actionNone {
			c.phase = PhasePaused
			if st.IsPlaying {
				c.phase = PhasePlaying
			}
		}
	}

	switch {
	case st.DidJustFinish:
		c.playing = false
		c.phase = PhasePaused
		if c.queue.HasQueue() {
			c.scheduleAdvanceLocked(c.token)
		} else {
			c.position = 0
			c.pending = actionRewind
		}
	case c.pending == actionRewind:
		c.position = 0
		c.playing = false
		c.phase = PhasePaused
	case c.cutoffReachedLocked(st.Position):
		c.playing = false
		c.phase = PhasePaused
		c.pending = actionCutoff
	}

	action := c.pending
	position := c.position
	c.mu.Unlock()

	if action != actionNone {
		c.applyPending(st.Token, action, position)
	}
	c.publishSession()
}

// cutoffReachedLocked reports whether a playing restricted preview has
// reached its window end. Updates within the grace period after load are
// ignored while the engine settles at the start position.
func (c *Coordinator) cutoffReachedLocked(position time.Duration) bool {
	if !c.hasCutoff || !c.playing || c.loadedAt.IsZero() {
		return false
	}
	if time.Since(c.loadedAt) < c.opts.PreviewGrace {
		return false
	}
	return position >= c.cutoff
}

// applyPending runs a deferred engine side effect if no command holds cmdMu.
func (c *Coordinator) applyPending(token uint64, action pendingAction, position time.Duration) {
	if !c.cmdMu.TryLock() {
		return
	}
	defer c.cmdMu.Unlock()

	c.mu.Lock()
	if c.token != token || c.pending != action {
		c.mu.Unlock()
		return
	}
	c.pending = actionNone
	c.mu.Unlock()

	switch action {
	case actionCutoff:
		c.engine.Pause()
		c.logger.Debug("preview cutoff reached", "token", token, "position", position)
	case actionRewind:
		c.engine.Pause()
		c.engine.Seek(0)
		position = 0
		c.logger.Debug("track finished, rewound", "token", token)
	}
	c.mirrorDo("transport", func(m Mirror) { m.SetTransportState(false, position) })
}

func (c *Coordinator) scheduleAdvanceLocked(token uint64) {
	if c.advance != nil {
		return
	}
	c.advance = time.AfterFunc(c.opts.AdvanceDebounce, func() {
		c.autoAdvance(token)
	})
}

// autoAdvance moves to the next queue entry after a natural end of track,
// unless the session changed during the debounce.
func (c *Coordinator) autoAdvance(token uint64) {
	c.mu.Lock()
	if c.closed || c.token != token {
		c.mu.Unlock()
		return
	}
	c.advance = nil
	c.mu.Unlock()

	c.logger.Debug("auto advance", "token", token)
	c.step(context.Background(), "auto advance", (*playlist.Queue).Next, token)
}
