// internal/player/mock.go
package player

import (
	"context"
	"sync"
	"time"
)

// LoadCall records one Mock.Load invocation.
type LoadCall struct {
	URI  string
	Opts LoadOptions
}

// Mock is a test double for Engine. Status updates are delivered only when
// the test calls Emit, Tick or Finish.
type Mock struct {
	mu sync.Mutex

	loaded   bool
	token    uint64
	uri      string
	playing  bool
	position time.Duration
	duration time.Duration

	loadErr  error
	loadHook func(ctx context.Context) error

	loads    []LoadCall
	calls    []string
	seeks    []time.Duration
	live     int
	maxLive  int
	onStatus func(Status)
}

// NewMock creates a mock engine whose loads report a three minute duration.
func NewMock() *Mock {
	return &Mock{duration: 3 * time.Minute}
}

func (m *Mock) Load(ctx context.Context, uri string, opts LoadOptions) error {
	m.mu.Lock()
	m.releaseLocked()
	m.calls = append(m.calls, "load")
	m.loads = append(m.loads, LoadCall{URI: uri, Opts: opts})
	hook, loadErr := m.loadHook, m.loadErr
	m.mu.Unlock()

	if hook != nil {
		if err := hook(ctx); err != nil {
			return &LoadError{URI: uri, Err: err}
		}
	}
	if loadErr != nil {
		return &LoadError{URI: uri, Err: loadErr}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loaded = true
	m.token = opts.Token
	m.uri = uri
	m.playing = opts.Autoplay
	m.position = min(opts.StartPosition, m.duration)
	m.live++
	m.maxLive = max(m.maxLive, m.live)
	return nil
}

func (m *Mock) releaseLocked() {
	if !m.loaded {
		return
	}
	m.loaded = false
	m.playing = false
	m.position = 0
	m.live--
}

func (m *Mock) Play() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "play")
	if m.loaded {
		m.playing = true
	}
}

func (m *Mock) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "pause")
	m.playing = false
}

func (m *Mock) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "stop")
	m.playing = false
	m.position = 0
}

func (m *Mock) Seek(position time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "seek")
	m.seeks = append(m.seeks, position)
	if m.loaded && m.duration > 0 {
		m.position = min(max(position, 0), m.duration)
	}
}

func (m *Mock) Unload() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "unload")
	m.releaseLocked()
}

func (m *Mock) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.loaded {
		return Status{}
	}
	return m.statusLocked()
}

func (m *Mock) statusLocked() Status {
	return Status{
		Token:     m.token,
		IsLoaded:  m.loaded,
		IsPlaying: m.playing,
		Position:  m.position,
		Duration:  m.duration,
	}
}

func (m *Mock) OnStatusUpdate(fn func(Status)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onStatus = fn
}

// Test helpers

// SetLoadError makes subsequent loads fail with err.
func (m *Mock) SetLoadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

// SetLoadHook runs fn inside Load before it completes, e.g. to block.
func (m *Mock) SetLoadHook(fn func(ctx context.Context) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadHook = fn
}

// SetDuration sets the duration reported for loaded instances.
func (m *Mock) SetDuration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duration = d
}

// SetPlaying overrides the engine's transport flag, simulating drift.
func (m *Mock) SetPlaying(playing bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playing = playing
}

// Emit delivers st to the registered callback synchronously.
func (m *Mock) Emit(st Status) {
	m.mu.Lock()
	fn := m.onStatus
	m.mu.Unlock()
	if fn != nil {
		fn(st)
	}
}

// Tick moves the position and delivers a status for the current instance.
func (m *Mock) Tick(position time.Duration) {
	m.mu.Lock()
	m.position = position
	st := m.statusLocked()
	m.mu.Unlock()
	m.Emit(st)
}

// Finish delivers the end-of-media status for the current instance.
func (m *Mock) Finish() {
	m.mu.Lock()
	m.playing = false
	m.position = m.duration
	st := m.statusLocked()
	st.DidJustFinish = true
	m.mu.Unlock()
	m.Emit(st)
}

func (m *Mock) Loads() []LoadCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]LoadCall(nil), m.loads...)
}

func (m *Mock) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *Mock) SeekCalls() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.seeks...)
}

// Token returns the token of the loaded instance.
func (m *Mock) Token() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// MaxLive returns the largest number of simultaneously loaded instances.
func (m *Mock) MaxLive() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxLive
}

// Verify Mock implements Engine at compile time.
var _ Engine = (*Mock)(nil)
