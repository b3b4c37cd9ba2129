// Package app is the bubbletea now-playing view. It renders coordinator
// snapshots and maps keys onto coordinator commands.
package app

import (
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/spynners/spynners/internal/keymap"
	"github.com/spynners/spynners/internal/playback"
)

// Model is the root view model.
type Model struct {
	ctrl    Controller
	sub     *playback.Subscription
	keys    keymap.KeyMap
	help    help.Model
	session playback.Session

	stderr <-chan string

	ErrorMsg     string
	errorVersion int
	Width        int
	Height       int
}

// Options configure the view.
type Options struct {
	// Stderr carries lines captured from the audio backend; shown as errors.
	Stderr <-chan string
}

// New creates the view over ctrl, listening on sub for updates.
func New(ctrl Controller, sub *playback.Subscription, opts Options) Model {
	return Model{
		ctrl:    ctrl,
		sub:     sub,
		keys:    keymap.Default(),
		help:    help.New(),
		session: ctrl.Snapshot(),
		stderr:  opts.Stderr,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{WatchEvents(m.sub)}
	if m.stderr != nil {
		cmds = append(cmds, WatchStderr(m.stderr))
	}
	return tea.Batch(cmds...)
}

// Session returns the last snapshot the view received.
func (m Model) Session() playback.Session {
	return m.session
}
