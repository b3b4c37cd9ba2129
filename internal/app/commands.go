package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/spynners/spynners/internal/playback"
)

const errorDisplayTime = 5 * time.Second

// WatchEvents waits for the next subscription event and converts it to a tea.Msg.
func WatchEvents(sub *playback.Subscription) tea.Cmd {
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case s := <-sub.SessionChanged:
			return SessionMsg(s)
		case e := <-sub.TrackChanged:
			return TrackChangedMsg(e)
		case e := <-sub.Error:
			return ErrorMsg(e)
		case <-sub.Done:
			return ClosedMsg{}
		}
	}
}

// WatchStderr waits for a line captured from the audio backend.
func WatchStderr(lines <-chan string) tea.Cmd {
	return func() tea.Msg {
		line, ok := <-lines
		if !ok {
			return nil
		}
		return StderrMsg{Line: line}
	}
}

func clearErrorCmd(version int) tea.Cmd {
	return tea.Tick(errorDisplayTime, func(time.Time) tea.Msg {
		return clearErrorMsg{Version: version}
	})
}

// run executes a controller call off the update loop; track changes block
// while the next item loads.
func run(fn func()) tea.Cmd {
	return func() tea.Msg {
		fn()
		return nil
	}
}

func (m Model) playNext() tea.Cmd {
	return run(func() { m.ctrl.PlayNext(context.Background()) })
}

func (m Model) playPrevious() tea.Cmd {
	return run(func() { m.ctrl.PlayPrevious(context.Background()) })
}
