package playback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spynners/spynners/internal/errmsg"
	"github.com/spynners/spynners/internal/player"
	"github.com/spynners/spynners/internal/track"
)

type transportCall struct {
	Playing  bool
	Position time.Duration
}

// recordingMirror records mirror calls; with panics set every call panics.
type recordingMirror struct {
	mu        sync.Mutex
	metadata  []Metadata
	transport []transportCall
	clears    int
	panics    bool
}

func (r *recordingMirror) SetNowPlayingMetadata(md Metadata) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.panics {
		panic("mirror unavailable")
	}
	r.metadata = append(r.metadata, md)
}

func (r *recordingMirror) SetTransportState(playing bool, position time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.panics {
		panic("mirror unavailable")
	}
	r.transport = append(r.transport, transportCall{playing, position})
}

func (r *recordingMirror) ClearNowPlaying() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.panics {
		panic("mirror unavailable")
	}
	r.clears++
}

func (r *recordingMirror) lastTransport() transportCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.transport) == 0 {
		return transportCall{}
	}
	return r.transport[len(r.transport)-1]
}

func (r *recordingMirror) clearCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clears
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCoordinator(t *testing.T) (*Coordinator, *player.Mock, *recordingMirror) {
	t.Helper()
	m := player.NewMock()
	mirror := &recordingMirror{}
	c := New(m, mirror, Options{Logger: quietLogger()})
	t.Cleanup(c.Close)
	return c, m, mirror
}

func testItems(n int) []track.Item {
	items := make([]track.Item, n)
	for i := range items {
		items[i] = track.Item{
			ID:             fmt.Sprintf("t%d", i),
			Title:          fmt.Sprintf("Beat %d", i),
			Artist:         "Producer",
			AudioSourceURI: fmt.Sprintf("https://cdn.test/t%d.mp3", i),
		}
	}
	return items
}

func lastCall(m *player.Mock) string {
	calls := m.Calls()
	if len(calls) == 0 {
		return ""
	}
	return calls[len(calls)-1]
}

func TestPlayTrack_LoadsAndMirrors(t *testing.T) {
	c, m, mirror := newTestCoordinator(t)
	items := testItems(1)

	c.PlayTrack(context.Background(), items[0], nil)

	loads := m.Loads()
	require.Len(t, loads, 1)
	assert.Equal(t, items[0].AudioSourceURI, loads[0].URI)
	assert.True(t, loads[0].Opts.Autoplay)
	assert.Equal(t, time.Duration(0), loads[0].Opts.StartPosition)
	assert.Equal(t, m.Token(), loads[0].Opts.Token)

	s := c.Snapshot()
	assert.Equal(t, PhasePlaying, s.Phase)
	require.NotNil(t, s.Current)
	assert.Equal(t, "t0", s.Current.ID)
	assert.True(t, s.IsPlaying)
	assert.False(t, s.IsLoading)
	assert.False(t, s.HasQueue)
	assert.Equal(t, 3*time.Minute, s.Duration)
	assert.NotEmpty(t, s.ID, "session id assigned")

	require.Len(t, mirror.metadata, 1)
	assert.Equal(t, Metadata{
		TrackID:  "t0",
		Title:    "Beat 0",
		Artist:   "Producer",
		Source:   items[0].AudioSourceURI,
		Duration: 3 * time.Minute,
	}, mirror.metadata[0])
	assert.Equal(t, transportCall{Playing: true}, mirror.lastTransport())
}

func TestPlayTrack_SingleInstance(t *testing.T) {
	c, m, _ := newTestCoordinator(t)
	items := testItems(3)

	for _, item := range items {
		c.PlayTrack(context.Background(), item, items)
	}

	assert.Equal(t, 1, m.MaxLive())
	calls := m.Calls()
	for i, call := range calls {
		if call == "load" {
			require.Positive(t, i)
			assert.Equal(t, "unload", calls[i-1], "load at %d not preceded by unload", i)
		}
	}
	assert.Len(t, m.Loads(), 3)
}

func TestPlayTrack_QueueIndex(t *testing.T) {
	items := testItems(3)
	stranger := track.Item{ID: "x", AudioSourceURI: "https://cdn.test/x.mp3"}

	tests := []struct {
		name      string
		item      track.Item
		queue     []track.Item
		wantLen   int
		wantIndex int
	}{
		{"item in queue", items[2], items, 3, 2},
		{"item not in queue", stranger, items, 3, 0},
		{"no queue", items[1], nil, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, _ := newTestCoordinator(t)

			c.PlayTrack(context.Background(), tt.item, tt.queue)

			s := c.Snapshot()
			assert.Len(t, s.Queue, tt.wantLen)
			assert.Equal(t, tt.wantIndex, s.CurrentIndex)
			assert.Equal(t, tt.item.ID, s.Current.ID)
			assert.Equal(t, tt.wantLen > 1, s.HasQueue)
		})
	}
}

func TestPlayNext_Wraparound(t *testing.T) {
	c, m, _ := newTestCoordinator(t)
	items := testItems(3)
	c.PlayTrack(context.Background(), items[2], items)

	c.PlayNext(context.Background())

	s := c.Snapshot()
	assert.Equal(t, 0, s.CurrentIndex)
	assert.Equal(t, "t0", s.Current.ID)
	assert.Equal(t, items, s.Queue)

	c.PlayPrevious(context.Background())

	s = c.Snapshot()
	assert.Equal(t, 2, s.CurrentIndex)
	assert.Equal(t, "t2", s.Current.ID)
	assert.Equal(t, items, s.Queue)

	loads := m.Loads()
	require.Len(t, loads, 3)
	assert.Equal(t, items[0].AudioSourceURI, loads[1].URI)
	assert.Equal(t, items[2].AudioSourceURI, loads[2].URI)
	assert.Equal(t, 1, m.MaxLive())
}

func TestPlayNext_IndexStaysInRange(t *testing.T) {
	c, _, _ := newTestCoordinator(t)
	items := testItems(4)
	c.PlayTrack(context.Background(), items[1], items)

	for i := range 10 {
		if i%3 == 0 {
			c.PlayPrevious(context.Background())
		} else {
			c.PlayNext(context.Background())
		}
		s := c.Snapshot()
		assert.GreaterOrEqual(t, s.CurrentIndex, 0)
		assert.Less(t, s.CurrentIndex, len(s.Queue))
		assert.Equal(t, items, s.Queue)
		assert.Equal(t, s.Queue[s.CurrentIndex].ID, s.Current.ID)
	}
}

func TestPlayNext_NoopWithoutQueue(t *testing.T) {
	c, m, _ := newTestCoordinator(t)
	items := testItems(1)

	c.PlayNext(context.Background())
	assert.Empty(t, m.Calls(), "idle coordinator")

	c.PlayTrack(context.Background(), items[0], nil)
	c.PlayNext(context.Background())
	c.PlayPrevious(context.Background())

	assert.Len(t, m.Loads(), 1)
	assert.Equal(t, 0, c.Snapshot().CurrentIndex)
}

func TestPlayTrack_NoAudioSource(t *testing.T) {
	c, m, mirror := newTestCoordinator(t)
	item := track.Item{ID: "silent", Title: "Unreleased"}

	c.PlayTrack(context.Background(), item, nil)

	assert.Empty(t, m.Loads(), "no load attempted")
	s := c.Snapshot()
	require.NotNil(t, s.Current)
	assert.Equal(t, "silent", s.Current.ID)
	assert.False(t, s.IsPlaying)
	assert.False(t, s.IsLoading)
	assert.Equal(t, PhaseStopped, s.Phase)
	assert.Empty(t, mirror.metadata)

	// Transport commands have nothing to act on.
	c.TogglePlayPause()
	assert.False(t, c.Snapshot().IsPlaying)
}

func TestPlayTrack_LoadErrorRecovers(t *testing.T) {
	c, m, _ := newTestCoordinator(t)
	sub := c.Subscribe()
	items := testItems(2)
	m.SetLoadError(errors.New("404 not found"))

	c.PlayTrack(context.Background(), items[0], items)

	s := c.Snapshot()
	assert.Equal(t, PhaseStopped, s.Phase)
	assert.Equal(t, "t0", s.Current.ID)
	assert.False(t, s.IsPlaying)
	assert.False(t, s.IsLoading)

	select {
	case ev := <-sub.Error:
		assert.Equal(t, errmsg.OpPlaybackLoad, ev.Op)
		assert.Equal(t, "t0", ev.TrackID)
		var loadErr *player.LoadError
		assert.ErrorAs(t, ev.Err, &loadErr)
	default:
		t.Fatal("no error event published")
	}

	// The guard was released.
	m.SetLoadError(nil)
	c.PlayTrack(context.Background(), items[1], items)
	assert.Equal(t, PhasePlaying, c.Snapshot().Phase)
}

func TestPlayTrack_LoadTimeout(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		c, m, _ := newTestCoordinator(t)
		sub := c.Subscribe()
		m.SetLoadHook(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})

		start := time.Now()
		c.PlayTrack(context.Background(), testItems(1)[0], nil)

		assert.Equal(t, defaultLoadTimeout, time.Since(start))
		s := c.Snapshot()
		assert.Equal(t, PhaseStopped, s.Phase)
		assert.False(t, s.IsLoading)
		assert.False(t, s.IsPlaying)

		ev := <-sub.Error
		assert.ErrorIs(t, ev.Err, context.DeadlineExceeded)
	})
}

func TestPlayTrack_OverlappingCallsDropped(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		c, m, _ := newTestCoordinator(t)
		items := testItems(3)
		release := make(chan struct{})
		m.SetLoadHook(func(ctx context.Context) error {
			select {
			case <-release:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})

		done := make(chan struct{})
		go func() {
			defer close(done)
			c.PlayTrack(context.Background(), items[0], items)
		}()
		synctest.Wait()

		assert.True(t, c.Snapshot().IsLoading)
		c.PlayTrack(context.Background(), items[1], items)
		c.PlayNext(context.Background())
		c.PlayPrevious(context.Background())

		close(release)
		<-done

		assert.Len(t, m.Loads(), 1)
		s := c.Snapshot()
		assert.Equal(t, "t0", s.Current.ID)
		assert.Equal(t, PhasePlaying, s.Phase)

		m.SetLoadHook(nil)
		c.PlayTrack(context.Background(), items[1], items)
		assert.Len(t, m.Loads(), 2)
		assert.Equal(t, "t1", c.Snapshot().Current.ID)
	})
}

// gatedMirror blocks SetTransportState while armed until gate is closed.
type gatedMirror struct {
	recordingMirror
	armed atomic.Bool
	gate  chan struct{}
}

func (g *gatedMirror) SetTransportState(playing bool, position time.Duration) {
	if g.armed.Load() {
		<-g.gate
	}
	g.recordingMirror.SetTransportState(playing, position)
}

func TestPlayTrack_GuardSurvivesStatusWhileWaiting(t *testing.T) {
	m := player.NewMock()
	mirror := &gatedMirror{gate: make(chan struct{})}
	c := New(m, mirror, Options{Logger: quietLogger()})
	t.Cleanup(c.Close)
	items := testItems(3)
	m.SetDuration(2 * time.Minute)
	c.PlayTrack(context.Background(), items[0], items)

	// A seek holds the command lock inside the mirror call.
	mirror.armed.Store(true)
	seekDone := make(chan struct{})
	go func() {
		defer close(seekDone)
		c.SeekTo(time.Minute)
	}()
	require.Eventually(t, func() bool {
		return len(m.SeekCalls()) == 1
	}, time.Second, time.Millisecond)

	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		c.PlayTrack(context.Background(), items[1], items)
	}()
	require.Eventually(t, func() bool {
		return c.Snapshot().IsLoading
	}, time.Second, time.Millisecond)

	// The old instance finishes while the track change waits for the lock.
	m.Finish()
	s := c.Snapshot()
	assert.Equal(t, PhasePaused, s.Phase)
	assert.True(t, s.IsLoading)

	secondDone := make(chan struct{})
	go func() {
		defer close(secondDone)
		c.PlayTrack(context.Background(), items[2], items)
	}()
	select {
	case <-secondDone:
	case <-time.After(time.Second):
		t.Fatal("overlapping PlayTrack was queued instead of dropped")
	}

	mirror.armed.Store(false)
	close(mirror.gate)
	<-seekDone
	<-firstDone

	assert.Len(t, m.Loads(), 2)
	s = c.Snapshot()
	assert.Equal(t, "t1", s.Current.ID)
	assert.False(t, s.IsLoading)
	assert.Equal(t, PhasePlaying, s.Phase)
}

func TestPlayTrack_EnginePanicReleasesGuard(t *testing.T) {
	c, m, _ := newTestCoordinator(t)
	items := testItems(2)
	m.SetLoadHook(func(context.Context) error { panic("decoder exploded") })

	assert.NotPanics(t, func() {
		c.PlayTrack(context.Background(), items[0], items)
	})
	assert.NotEqual(t, PhaseLoading, c.Snapshot().Phase)

	m.SetLoadHook(nil)
	c.PlayTrack(context.Background(), items[1], items)
	assert.Equal(t, PhasePlaying, c.Snapshot().Phase)
}

func TestRestore_LoadsPausedAtPosition(t *testing.T) {
	c, m, mirror := newTestCoordinator(t)
	items := testItems(3)

	c.Restore(context.Background(), items[1], items, 42*time.Second)

	loads := m.Loads()
	require.Len(t, loads, 1)
	assert.False(t, loads[0].Opts.Autoplay)
	assert.Equal(t, 42*time.Second, loads[0].Opts.StartPosition)

	s := c.Snapshot()
	assert.Equal(t, PhasePaused, s.Phase)
	assert.False(t, s.IsPlaying)
	assert.Equal(t, 42*time.Second, s.Position)
	assert.Equal(t, 1, s.CurrentIndex)
	assert.Equal(t, transportCall{Playing: false, Position: 42 * time.Second}, mirror.lastTransport())

	c.TogglePlayPause()
	assert.True(t, c.Snapshot().IsPlaying)
}

func TestClosePlayer_Idempotent(t *testing.T) {
	c, m, mirror := newTestCoordinator(t)
	items := testItems(2)
	c.PlayTrack(context.Background(), items[0], items)
	m.Tick(30 * time.Second)

	c.ClosePlayer()
	first := c.Snapshot()
	c.ClosePlayer()
	second := c.Snapshot()

	assert.Equal(t, first, second)
	assert.Equal(t, PhaseIdle, second.Phase)
	assert.Nil(t, second.Current)
	assert.False(t, second.IsPlaying)
	assert.Zero(t, second.Position)
	assert.Zero(t, second.Duration)
	assert.Empty(t, second.Queue)
	assert.Equal(t, -1, second.CurrentIndex)
	assert.Empty(t, second.ID)

	assert.False(t, m.Status().IsLoaded)
	assert.Equal(t, 1, mirror.clearCount())
}

func TestClosePlayer_WhenIdle(t *testing.T) {
	c, m, mirror := newTestCoordinator(t)

	c.ClosePlayer()

	assert.Empty(t, m.Calls())
	assert.Zero(t, mirror.clearCount())
	assert.Equal(t, PhaseIdle, c.Snapshot().Phase)
}

func TestMirrorFailuresSwallowed(t *testing.T) {
	c, _, mirror := newTestCoordinator(t)
	mirror.panics = true
	items := testItems(2)

	assert.NotPanics(t, func() {
		c.PlayTrack(context.Background(), items[0], items)
		c.TogglePlayPause()
		c.SeekTo(time.Minute)
		c.PlayNext(context.Background())
		c.ClosePlayer()
	})
	assert.Equal(t, PhaseIdle, c.Snapshot().Phase)
}

func TestSubscribe_TrackChanges(t *testing.T) {
	c, _, _ := newTestCoordinator(t)
	sub := c.Subscribe()
	items := testItems(2)

	c.PlayTrack(context.Background(), items[0], items)
	c.PlayNext(context.Background())

	first := <-sub.TrackChanged
	assert.Nil(t, first.Previous)
	assert.Equal(t, "t0", first.Current.ID)
	assert.Equal(t, 0, first.Index)
	assert.NotEmpty(t, first.SessionID)

	second := <-sub.TrackChanged
	assert.Equal(t, "t0", second.Previous.ID)
	assert.Equal(t, "t1", second.Current.ID)
	assert.Equal(t, 1, second.Index)
	assert.Equal(t, first.SessionID, second.SessionID)

	assert.NotEmpty(t, sub.SessionChanged)
}

func TestClose_EndsSubscriptionsAndRejectsCommands(t *testing.T) {
	m := player.NewMock()
	c := New(m, nil, Options{Logger: quietLogger()})
	sub := c.Subscribe()
	items := testItems(1)
	c.PlayTrack(context.Background(), items[0], nil)

	c.Close()
	c.Close()

	select {
	case <-sub.Done:
	default:
		t.Fatal("Done not closed")
	}
	assert.False(t, m.Status().IsLoaded)

	c.PlayTrack(context.Background(), items[0], nil)
	assert.Len(t, m.Loads(), 1)
}
