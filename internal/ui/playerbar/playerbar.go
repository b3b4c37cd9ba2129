// Package playerbar renders the now-playing panel.
package playerbar

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/spynners/spynners/internal/playback"
	"github.com/spynners/spynners/internal/track"
	"github.com/spynners/spynners/internal/ui/render"
	"github.com/spynners/spynners/internal/ui/styles"
)

const (
	playSymbol    = "▶"
	pauseSymbol   = "⏸"
	loadingSymbol = "…"
	stopSymbol    = "■"

	minBarWidth = 5
)

// Height is the rendered height: two content rows and the border.
const Height = 4

// State holds everything needed to render the player bar.
type State struct {
	Title     string
	Artist    string
	Genre     string
	BPM       int
	Phase     playback.Phase
	Playing   bool
	Position  time.Duration
	Duration  time.Duration
	Index     int // 0-based, -1 without a queue
	Total     int
	Preview   track.PreviewWindow
	IsPreview bool
	NoAudio   bool
}

// NewState builds a State from a session snapshot. The zero State means
// nothing is current.
func NewState(s playback.Session) State {
	if s.Current == nil {
		return State{}
	}
	st := State{
		Title:    s.Current.Title,
		Artist:   s.Current.DisplayArtist(),
		Genre:    s.Current.Genre,
		BPM:      s.Current.BPM,
		Phase:    s.Phase,
		Playing:  s.IsPlaying,
		Position: s.Position,
		Duration: s.Duration,
		Index:    -1,
		NoAudio:  !s.Current.IsPlayable(),
	}
	if s.HasQueue {
		st.Index = s.CurrentIndex
		st.Total = len(s.Queue)
	}
	st.Preview, st.IsPreview = s.Preview()
	return st
}

// Active reports whether there is a track to show.
func (s State) Active() bool {
	return s.Title != "" || s.Phase != playback.PhaseIdle
}

// Render returns the player bar for the given width, or "" when idle.
func Render(s State, width int) string {
	if !s.Active() {
		return ""
	}
	st := styles.T().S()
	innerWidth := max(width-6, 10) // border and padding

	// Line 1: ▶ Title · Artist · Genre · 140 BPM      3/12
	var info []string
	info = append(info, s.Artist)
	if s.Genre != "" {
		info = append(info, s.Genre)
	}
	if s.BPM > 0 {
		info = append(info, strconv.Itoa(s.BPM)+" BPM")
	}

	var counter string
	if s.Index >= 0 && s.Total > 0 {
		counter = fmt.Sprintf("%d/%d", s.Index+1, s.Total)
	}

	title := s.Title
	if title == "" {
		title = "Unknown track"
	}
	leftWidth := innerWidth - lipgloss.Width(counter) - 1
	head := s.symbol() + " " + title + " · " + strings.Join(info, " · ")
	line1 := render.Row(
		st.Title.Render(render.Truncate(head, leftWidth)),
		st.Muted.Render(counter),
		innerWidth,
	)

	return st.Panel.Padding(0, 2).Width(width - 2).Render(line1 + "\n" + s.progressLine(innerWidth))
}

// progressLine renders the bar with the preview window highlighted and the
// elapsed time on the right.
func (s State) progressLine(width int) string {
	st := styles.T().S()

	if s.NoAudio {
		return st.Warning.Render("No audio available")
	}
	if s.Phase == playback.PhaseLoading {
		return st.Muted.Render("Loading…")
	}

	right := fmt.Sprintf("%s / %s", Clock(s.Position), Clock(s.Duration))
	if s.IsPreview {
		right = st.Preview.Render(fmt.Sprintf("preview %s-%s", Clock(s.Preview.Start), Clock(s.Preview.End))) + "  " + right
	}

	barWidth := max(width-lipgloss.Width(right)-2, minBarWidth)
	return progressBar(s, barWidth) + "  " + right
}

func progressBar(s State, width int) string {
	st := styles.T().S()
	l := layout(s.Position, s.Duration, width, s.Preview, s.IsPreview)

	var b strings.Builder
	for i := range width {
		var cell string
		switch {
		case i < l.filled:
			cell = st.Playing.Render("━")
		case l.hasWindow && i >= l.winStart && i < l.winEnd:
			cell = st.Preview.Render("─")
		default:
			cell = st.Subtle.Render("─")
		}
		b.WriteString(cell)
	}
	return b.String()
}

type barLayout struct {
	filled    int
	winStart  int
	winEnd    int
	hasWindow bool
}

// layout maps position and preview window onto width cells.
func layout(position, duration time.Duration, width int, win track.PreviewWindow, hasWindow bool) barLayout {
	if duration <= 0 || width <= 0 {
		return barLayout{}
	}
	cell := func(d time.Duration) int {
		c := int(float64(width) * float64(d) / float64(duration))
		return min(max(c, 0), width)
	}
	l := barLayout{filled: cell(position)}
	if hasWindow && win.Start < duration {
		l.hasWindow = true
		l.winStart = cell(win.Start)
		l.winEnd = max(cell(win.End), l.winStart+1)
		l.winEnd = min(l.winEnd, width)
	}
	return l
}

func (s State) symbol() string {
	switch {
	case s.Phase == playback.PhaseLoading:
		return loadingSymbol
	case s.Phase == playback.PhaseStopped:
		return stopSymbol
	case s.Playing:
		return playSymbol
	default:
		return pauseSymbol
	}
}

// Clock formats d as m:ss.
func Clock(d time.Duration) string {
	d = max(d, 0)
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", m, s)
}
