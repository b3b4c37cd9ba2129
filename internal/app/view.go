package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/spynners/spynners/internal/playback"
	"github.com/spynners/spynners/internal/track"
	"github.com/spynners/spynners/internal/ui/playerbar"
	"github.com/spynners/spynners/internal/ui/render"
	"github.com/spynners/spynners/internal/ui/styles"
)

const (
	defaultWidth  = 80
	defaultHeight = 20
	headerHeight  = 2 // title + blank line
)

// View renders the application UI.
func (m Model) View() string {
	st := styles.T().S()
	width, height := m.size()

	var b strings.Builder
	b.WriteString(render.Row(st.Playing.Render("Spynners"), st.Subtle.Render(m.session.Phase.String()), width))
	b.WriteString("\n\n")

	if bar := playerbar.Render(playerbar.NewState(m.session), width); bar != "" {
		b.WriteString(bar)
	} else {
		b.WriteString(st.Muted.Render("Nothing playing."))
	}
	b.WriteString("\n")

	helpView := m.help.View(m.keys)
	footer := lipgloss.Height(helpView) + 1 // help + error line
	rows := height - headerHeight - playerbar.Height - footer - 1
	if q := renderQueue(m.session, width, rows); q != "" {
		b.WriteString(q)
		b.WriteString("\n")
	}

	if m.ErrorMsg != "" {
		b.WriteString(st.Error.Render(render.Truncate(m.ErrorMsg, width)))
	}
	b.WriteString("\n")
	b.WriteString(helpView)
	return b.String()
}

func (m Model) size() (int, int) {
	width, height := m.Width, m.Height
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}
	return width, height
}

// renderQueue lists up to rows queue entries around the current index.
func renderQueue(s playback.Session, width, rows int) string {
	if !s.HasQueue || rows <= 0 {
		return ""
	}
	st := styles.T().S()
	start, end := queueWindow(len(s.Queue), s.CurrentIndex, rows)

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		line := queueLine(s.Queue[i], i, width)
		switch {
		case i == s.CurrentIndex:
			line = st.Playing.Render(line)
		case !s.Queue[i].IsPlayable():
			line = st.Subtle.Render(line)
		default:
			line = st.Base.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func queueLine(item track.Item, index, width int) string {
	var tags []string
	if item.PreviewRestricted {
		tags = append(tags, "VIP")
	}
	if !item.IsPlayable() {
		tags = append(tags, "no audio")
	}
	right := strings.Join(tags, " · ")

	left := fmt.Sprintf("%3d  %s · %s", index+1, item.Title, item.DisplayArtist())
	left = render.Truncate(left, max(width-lipgloss.Width(right)-1, 1))
	return render.Row(left, right, width)
}

// queueWindow returns [start, end) covering at most rows entries and
// keeping current visible.
func queueWindow(n, current, rows int) (int, int) {
	if n <= rows {
		return 0, n
	}
	start := max(current-rows/2, 0)
	start = min(start, n-rows)
	return start, start + rows
}
