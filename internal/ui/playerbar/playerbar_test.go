package playerbar

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spynners/spynners/internal/playback"
	"github.com/spynners/spynners/internal/track"
)

func session() playback.Session {
	items := []track.Item{
		{ID: "t0", Title: "Night Drive", Artist: "Producer", AudioSourceURI: "https://cdn.test/t0.mp3", Genre: "Trap", BPM: 140},
		{ID: "t1", Title: "VIP Beat", AudioSourceURI: "https://cdn.test/t1.mp3", PreviewRestricted: true,
			PreviewStart: track.Seconds(30), PreviewEnd: track.Seconds(60)},
	}
	return playback.Session{
		Phase:        playback.PhasePlaying,
		Current:      &items[0],
		IsPlaying:    true,
		Position:     83 * time.Second,
		Duration:     238 * time.Second,
		HasQueue:     true,
		Queue:        items,
		CurrentIndex: 0,
	}
}

func TestNewState(t *testing.T) {
	st := NewState(session())

	assert.Equal(t, "Night Drive", st.Title)
	assert.Equal(t, "Producer", st.Artist)
	assert.Equal(t, 140, st.BPM)
	assert.True(t, st.Playing)
	assert.Equal(t, 0, st.Index)
	assert.Equal(t, 2, st.Total)
	assert.False(t, st.IsPreview)
	assert.False(t, st.NoAudio)
}

func TestNewState_Idle(t *testing.T) {
	st := NewState(playback.Session{})
	assert.False(t, st.Active())
	assert.Empty(t, Render(st, 80))
}

func TestNewState_Preview(t *testing.T) {
	s := session()
	s.Current = &s.Queue[1]
	s.CurrentIndex = 1

	st := NewState(s)
	assert.True(t, st.IsPreview)
	assert.Equal(t, 30*time.Second, st.Preview.Start)
	assert.Equal(t, time.Minute, st.Preview.End)
	assert.Equal(t, "Unknown artist", st.Artist)
}

func TestNewState_NoQueue(t *testing.T) {
	s := session()
	s.HasQueue = false
	s.Queue = nil

	st := NewState(s)
	assert.Equal(t, -1, st.Index)
}

func TestRender_Compact(t *testing.T) {
	out := Render(NewState(session()), 100)

	assert.Contains(t, out, "Night Drive")
	assert.Contains(t, out, "Producer")
	assert.Contains(t, out, "140 BPM")
	assert.Contains(t, out, "1/2")
	assert.Contains(t, out, "1:23 / 3:58")
	assert.Contains(t, out, playSymbol)
	assert.Len(t, strings.Split(out, "\n"), Height)
}

func TestRender_PreviewLabel(t *testing.T) {
	s := session()
	s.Current = &s.Queue[1]
	s.CurrentIndex = 1
	s.IsPlaying = false
	s.Phase = playback.PhasePaused

	out := Render(NewState(s), 100)
	assert.Contains(t, out, "preview 0:30-1:00")
	assert.Contains(t, out, pauseSymbol)
}

func TestRender_NoAudio(t *testing.T) {
	s := session()
	s.Current = &track.Item{ID: "x", Title: "Silent"}
	s.Phase = playback.PhaseStopped
	s.IsPlaying = false

	out := Render(NewState(s), 80)
	assert.Contains(t, out, "No audio available")
	assert.Contains(t, out, stopSymbol)
}

func TestRender_Loading(t *testing.T) {
	s := session()
	s.Phase = playback.PhaseLoading

	out := Render(NewState(s), 80)
	assert.Contains(t, out, "Loading…")
}

func TestLayout(t *testing.T) {
	win := track.PreviewWindow{Start: 30 * time.Second, End: 60 * time.Second}

	tests := []struct {
		name     string
		position time.Duration
		duration time.Duration
		window   bool
		want     barLayout
	}{
		{"unknown duration", time.Minute, 0, true, barLayout{}},
		{"start", 0, 2 * time.Minute, false, barLayout{}},
		{"half", time.Minute, 2 * time.Minute, false, barLayout{filled: 20}},
		{"past end clamps", 3 * time.Minute, 2 * time.Minute, false, barLayout{filled: 40}},
		{"window", 45 * time.Second, 2 * time.Minute, true, barLayout{filled: 15, winStart: 10, winEnd: 20, hasWindow: true}},
		{"window past duration", 0, 20 * time.Second, true, barLayout{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := layout(tt.position, tt.duration, 40, win, tt.window)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClock(t *testing.T) {
	assert.Equal(t, "0:00", Clock(0))
	assert.Equal(t, "0:00", Clock(-time.Second))
	assert.Equal(t, "1:05", Clock(65*time.Second))
	assert.Equal(t, "12:00", Clock(12*time.Minute))
}
