package player

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"
)

const (
	defaultStatusInterval = 500 * time.Millisecond
	defaultSampleRate     = 44100
)

// Options configure a Player.
type Options struct {
	StatusInterval time.Duration
	SampleRate     int
	HTTPClient     *http.Client
	Logger         *slog.Logger
}

// Player is the beep-backed Engine.
type Player struct {
	loadMu sync.Mutex // serializes Load and Unload

	mu       sync.Mutex
	inst     *instance
	onStatus func(Status)

	out      output
	client   *http.Client
	interval time.Duration
	logger   *slog.Logger
}

// instance is one decoded source bound to the output.
type instance struct {
	token    uint64
	uri      string
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	state    State

	// finished is set from the speaker goroutine when the sequence drains.
	finished atomic.Bool
	reported bool

	stop chan struct{}
	done chan struct{}
}

// New creates a Player using the system speaker.
func New(opts Options) *Player {
	rate := opts.SampleRate
	if rate <= 0 {
		rate = defaultSampleRate
	}
	return newPlayer(newSpeakerOutput(rate), opts)
}

func newPlayer(out output, opts Options) *Player {
	interval := opts.StatusInterval
	if interval <= 0 {
		interval = defaultStatusInterval
	}
	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Player{
		out:      out,
		client:   client,
		interval: interval,
		logger:   logger.With("component", "player"),
	}
}

// Load releases the current instance, then opens, decodes and starts uri.
// Errors are returned as *LoadError.
func (p *Player) Load(ctx context.Context, uri string, opts LoadOptions) error {
	p.loadMu.Lock()
	defer p.loadMu.Unlock()

	p.unload()

	inst, err := p.open(ctx, uri, opts)
	if err != nil {
		return &LoadError{URI: uri, Err: err}
	}

	p.mu.Lock()
	p.inst = inst
	p.out.Play(p.sequence(inst))
	p.mu.Unlock()

	go p.watch(inst)

	p.logger.Debug("instance loaded",
		"token", opts.Token,
		"uri", redact(uri),
		"duration", inst.format.SampleRate.D(inst.streamer.Len()),
		"autoplay", opts.Autoplay)
	return nil
}

func (p *Player) open(ctx context.Context, uri string, opts LoadOptions) (*instance, error) {
	src, err := openSource(ctx, p.client, uri)
	if err != nil {
		return nil, err
	}
	streamer, format, err := decode(src)
	if err != nil {
		src.Close()
		return nil, err
	}

	rate, err := p.out.Configure(format.SampleRate)
	if err != nil {
		streamer.Close()
		return nil, err
	}

	if opts.StartPosition > 0 {
		n := min(format.SampleRate.N(opts.StartPosition), streamer.Len())
		if err := streamer.Seek(n); err != nil {
			streamer.Close()
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		streamer.Close()
		return nil, err
	}

	var playable beep.Streamer = streamer
	if format.SampleRate != rate {
		playable = beep.Resample(4, format.SampleRate, rate, streamer)
	}

	state := Paused
	if opts.Autoplay {
		state = Playing
	}
	return &instance{
		token:    opts.Token,
		uri:      uri,
		streamer: streamer,
		format:   format,
		ctrl:     &beep.Ctrl{Streamer: playable, Paused: !opts.Autoplay},
		state:    state,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// sequence wraps the instance so the end of media is flagged.
func (p *Player) sequence(inst *instance) beep.Streamer {
	return beep.Seq(inst.ctrl, beep.Callback(func() {
		inst.finished.Store(true)
	}))
}

// Unload releases the instance and its resources. Idempotent.
func (p *Player) Unload() {
	p.loadMu.Lock()
	defer p.loadMu.Unlock()
	p.unload()
}

func (p *Player) unload() {
	p.mu.Lock()
	inst := p.inst
	p.inst = nil
	p.mu.Unlock()

	if inst == nil {
		return
	}

	close(inst.stop)
	<-inst.done

	p.out.Clear()
	if err := inst.streamer.Close(); err != nil {
		p.logger.Debug("close streamer", "error", err)
	}
	p.logger.Debug("instance released", "token", inst.token)
}

// OnStatusUpdate registers the periodic status callback.
// The callback runs on the instance's ticker goroutine.
func (p *Player) OnStatusUpdate(fn func(Status)) {
	p.mu.Lock()
	p.onStatus = fn
	p.mu.Unlock()
}

// Status returns a snapshot of the loaded instance.
func (p *Player) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.inst == nil {
		return Status{}
	}
	return p.snapshotLocked(p.inst)
}

func (p *Player) snapshotLocked(inst *instance) Status {
	p.out.Lock()
	pos := inst.streamer.Position()
	length := inst.streamer.Len()
	p.out.Unlock()

	return Status{
		Token:     inst.token,
		IsLoaded:  true,
		IsPlaying: inst.state == Playing && !inst.finished.Load(),
		Position:  inst.format.SampleRate.D(pos),
		Duration:  inst.format.SampleRate.D(length),
	}
}

// watch delivers status snapshots until the instance is released.
func (p *Player) watch(inst *instance) {
	defer close(inst.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-inst.stop:
			return
		case <-ticker.C:
		}

		p.mu.Lock()
		if p.inst != inst {
			p.mu.Unlock()
			return
		}
		st := p.snapshotLocked(inst)
		if inst.finished.Load() && !inst.reported {
			inst.reported = true
			inst.state = Paused
			st.DidJustFinish = true
		}
		fn := p.onStatus
		p.mu.Unlock()

		if fn != nil {
			fn(st)
		}
	}
}
