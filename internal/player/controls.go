package player

import "time"

// Play starts or resumes the loaded instance. After end of media the
// instance is re-queued, from the start if the position is at the end.
func (p *Player) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()

	inst := p.inst
	if inst == nil {
		return
	}

	if inst.finished.Load() {
		p.out.Lock()
		if inst.streamer.Position() >= inst.streamer.Len() {
			_ = inst.streamer.Seek(0)
		}
		inst.ctrl.Paused = false
		p.out.Unlock()

		inst.finished.Store(false)
		inst.reported = false
		inst.state = Playing
		p.out.Play(p.sequence(inst))
		return
	}

	if inst.state == Playing {
		return
	}
	p.out.Lock()
	inst.ctrl.Paused = false
	p.out.Unlock()
	inst.state = Playing
}

// Pause pauses the loaded instance.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	inst := p.inst
	if inst == nil || !inst.state.CanPause() {
		return
	}
	p.out.Lock()
	inst.ctrl.Paused = true
	p.out.Unlock()
	inst.state = Paused
}

// Stop pauses and rewinds without releasing the instance.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	inst := p.inst
	if inst == nil || inst.state == Stopped {
		return
	}
	p.out.Lock()
	inst.ctrl.Paused = true
	_ = inst.streamer.Seek(0)
	p.out.Unlock()
	inst.state = Stopped
}

// Seek moves to position, clamped to [0, duration].
// No-op when nothing is loaded or the duration is unknown.
func (p *Player) Seek(position time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	inst := p.inst
	if inst == nil {
		return
	}

	p.out.Lock()
	defer p.out.Unlock()

	length := inst.streamer.Len()
	if length <= 0 {
		return
	}
	n := min(max(inst.format.SampleRate.N(position), 0), length)
	if err := inst.streamer.Seek(n); err != nil {
		p.logger.Warn("seek failed", "token", inst.token, "position", position, "error", err)
	}
}
