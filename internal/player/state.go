// internal/player/state.go
package player

// State is the transport state of the loaded instance.
//
//	┌──────────┐      play       ┌──────────┐
//	│  Stopped │ ───────────────▶│  Playing │
//	└──────────┘                 └──────────┘
//	     ▲                            │ ▲
//	     │ stop                 pause │ │ play
//	     │                            ▼ │
//	     │                       ┌──────────┐
//	     └───────────────────────│  Paused  │
//	                  stop       └──────────┘
//
// Load enters Playing (autoplay) or Paused. End of media moves Playing to
// Paused with the position at the end; Play from there restarts at zero.
// Stop pauses and rewinds without releasing the instance.
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

// String returns the state name for debugging.
func (s State) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// IsActive returns true if playback is active (Playing or Paused).
func (s State) IsActive() bool {
	return s == Playing || s == Paused
}

// CanPause returns true if the state allows pausing.
func (s State) CanPause() bool {
	return s == Playing
}

// CanResume returns true if the state allows resuming.
func (s State) CanResume() bool {
	return s == Paused || s == Stopped
}
