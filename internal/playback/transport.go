package playback

import (
	"time"

	"github.com/spynners/spynners/internal/player"
)

// TogglePlayPause pauses a playing track and resumes a paused one. The
// decision follows the engine's reported state, not the cached flag.
// No-op when nothing is loaded.
func (c *Coordinator) TogglePlayPause() {
	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()

	st, ok := c.engineStatus()
	if !ok {
		return
	}
	if st.IsPlaying {
		c.pause(st)
	} else {
		c.resume(st)
	}
}

// Play resumes the loaded track. No-op if the engine is already playing.
func (c *Coordinator) Play() {
	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()

	st, ok := c.engineStatus()
	if !ok {
		return
	}
	if st.IsPlaying {
		c.syncPlaying(true)
		return
	}
	c.resume(st)
}

// Pause pauses the loaded track. No-op if the engine is not playing.
func (c *Coordinator) Pause() {
	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()

	st, ok := c.engineStatus()
	if !ok {
		return
	}
	if !st.IsPlaying {
		c.syncPlaying(false)
		return
	}
	c.pause(st)
}

// SeekTo moves the current track to position, clamped to [0, duration].
// No-op while the duration is unknown.
func (c *Coordinator) SeekTo(position time.Duration) {
	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()

	c.mu.Lock()
	duration := c.duration
	loaded := c.phase.IsLoaded()
	c.mu.Unlock()
	if !loaded || duration <= 0 {
		return
	}

	position = min(max(position, 0), duration)
	c.engine.Seek(position)

	c.mu.Lock()
	c.position = position
	playing := c.playing
	c.mu.Unlock()

	c.logger.Debug("seek", "position", position)
	c.mirrorDo("transport", func(m Mirror) { m.SetTransportState(playing, position) })
	c.publishSession()
}

// ClosePlayer stops and releases the engine, clears the queue and the
// now-playing surface, and returns to Idle. Idempotent.
func (c *Coordinator) ClosePlayer() {
	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()

	c.mu.Lock()
	if c.phase == PhaseIdle && c.current == nil {
		c.mu.Unlock()
		return
	}
	c.token++
	c.stopAdvanceLocked()
	sessionID := c.sessionID
	c.sessionID = ""
	c.phase = PhaseIdle
	c.current = nil
	c.playing = false
	c.position = 0
	c.duration = 0
	c.cutoff, c.hasCutoff = 0, false
	c.loadedAt = time.Time{}
	c.pending = actionNone
	c.queue.Clear()
	c.mu.Unlock()

	c.engine.Stop()
	c.engine.Unload()

	c.logger.Info("session closed", "session", sessionID)
	c.mirrorDo("clear", func(m Mirror) { m.ClearNowPlaying() })
	c.publishSession()
}

// engineStatus returns the engine status when it belongs to the current
// loaded instance. The caller holds cmdMu.
func (c *Coordinator) engineStatus() (player.Status, bool) {
	c.mu.Lock()
	token := c.token
	loaded := c.phase.IsLoaded()
	c.mu.Unlock()
	if !loaded {
		return player.Status{}, false
	}

	st := c.engine.Status()
	if !st.IsLoaded || st.Token != token {
		return player.Status{}, false
	}
	return st, true
}

func (c *Coordinator) pause(st player.Status) {
	c.engine.Pause()

	c.mu.Lock()
	c.playing = false
	c.phase = PhasePaused
	c.position = st.Position
	c.pending = actionNone
	c.mu.Unlock()

	c.mirrorDo("transport", func(m Mirror) { m.SetTransportState(false, st.Position) })
	c.publishSession()
}

// resume starts the engine. A restricted preview stopped at its cutoff
// restarts from the window start with a fresh grace period.
func (c *Coordinator) resume(st player.Status) {
	position := st.Position

	c.mu.Lock()
	var restart bool
	var start time.Duration
	if c.hasCutoff && position >= c.cutoff && c.current != nil {
		restart = true
		start = c.current.StartPosition()
	}
	c.mu.Unlock()

	if restart {
		c.engine.Seek(start)
		position = start
	}
	c.engine.Play()

	c.mu.Lock()
	c.playing = true
	c.phase = PhasePlaying
	c.position = position
	c.pending = actionNone
	if restart {
		c.loadedAt = time.Now()
	}
	c.mu.Unlock()

	c.mirrorDo("transport", func(m Mirror) { m.SetTransportState(true, position) })
	c.publishSession()
}

// syncPlaying corrects the cached flag when it drifted from the engine.
func (c *Coordinator) syncPlaying(playing bool) {
	c.mu.Lock()
	changed := c.playing != playing
	c.playing = playing
	if playing {
		c.phase = PhasePlaying
	} else {
		c.phase = PhasePaused
	}
	c.mu.Unlock()
	if changed {
		c.publishSession()
	}
}
