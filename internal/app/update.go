package app

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/spynners/spynners/internal/keymap"
	"github.com/spynners/spynners/internal/playback"
)

// Update handles messages and returns updated model and commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case SessionMsg:
		m.session = playback.Session(msg)
		return m, WatchEvents(m.sub)

	case TrackChangedMsg:
		// A new track starts clean.
		m.ErrorMsg = ""
		return m, WatchEvents(m.sub)

	case ErrorMsg:
		cmd := m.showError(playback.ErrorEvent(msg).Message())
		return m, tea.Batch(cmd, WatchEvents(m.sub))

	case StderrMsg:
		cmd := m.showError(msg.Line)
		return m, tea.Batch(cmd, WatchStderr(m.stderr))

	case clearErrorMsg:
		if msg.Version == m.errorVersion {
			m.ErrorMsg = ""
		}
		return m, nil

	case ClosedMsg:
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.PlayPause):
		return m, run(m.ctrl.TogglePlayPause)

	case key.Matches(msg, m.keys.Next):
		return m, m.playNext()

	case key.Matches(msg, m.keys.Previous):
		return m, m.playPrevious()

	case key.Matches(msg, m.keys.SeekBack):
		target := m.session.Position - keymap.SeekStep
		return m, run(func() { m.ctrl.SeekTo(target) })

	case key.Matches(msg, m.keys.SeekForward):
		target := m.session.Position + keymap.SeekStep
		return m, run(func() { m.ctrl.SeekTo(target) })

	case key.Matches(msg, m.keys.Stop):
		return m, run(m.ctrl.ClosePlayer)
	}
	return m, nil
}

func (m *Model) showError(text string) tea.Cmd {
	m.errorVersion++
	m.ErrorMsg = text
	return clearErrorCmd(m.errorVersion)
}
