// Package keymap defines the key bindings of the now-playing view.
package keymap

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
)

// SeekStep is how far the seek keys move the position.
const SeekStep = 5 * time.Second

// KeyMap holds the now-playing bindings. It satisfies help.KeyMap.
type KeyMap struct {
	PlayPause   key.Binding
	Next        key.Binding
	Previous    key.Binding
	SeekBack    key.Binding
	SeekForward key.Binding
	Stop        key.Binding
	Help        key.Binding
	Quit        key.Binding
}

// Default returns the standard bindings.
func Default() KeyMap {
	return KeyMap{
		PlayPause: key.NewBinding(
			key.WithKeys(" ", "p"),
			key.WithHelp("space", "play/pause"),
		),
		Next: key.NewBinding(
			key.WithKeys("n", "pgdown"),
			key.WithHelp("n", "next"),
		),
		Previous: key.NewBinding(
			key.WithKeys("b", "pgup"),
			key.WithHelp("b", "previous"),
		),
		SeekBack: key.NewBinding(
			key.WithKeys("left", "shift+left"),
			key.WithHelp("←", "seek -5s"),
		),
		SeekForward: key.NewBinding(
			key.WithKeys("right", "shift+right"),
			key.WithHelp("→", "seek +5s"),
		),
		Stop: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "stop"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PlayPause, k.Next, k.Previous, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PlayPause, k.Stop},
		{k.Next, k.Previous},
		{k.SeekBack, k.SeekForward},
		{k.Help, k.Quit},
	}
}
