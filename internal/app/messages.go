package app

import (
	"github.com/spynners/spynners/internal/playback"
)

// SessionMsg carries a session snapshot from the coordinator.
type SessionMsg playback.Session

// TrackChangedMsg is sent when the current track changes.
type TrackChangedMsg playback.TrackChange

// ErrorMsg is sent when a playback operation fails.
type ErrorMsg playback.ErrorEvent

// ClosedMsg is sent when the coordinator shuts down.
type ClosedMsg struct{}

// StderrMsg carries a line written to stderr by the audio backend.
type StderrMsg struct {
	Line string
}

// clearErrorMsg hides the error line if it is still the one with Version.
type clearErrorMsg struct {
	Version int
}
