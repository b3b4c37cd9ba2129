package playback

// Phase is the coordinator's position in the playback state machine.
//
//	Idle ──PlayTrack──▶ Loading ──ok──▶ Playing ◀──▶ Paused
//	                       │                │           │
//	                       └─no uri/error─▶ Stopped     │
//	  any ──ClosePlayer──▶ Idle    Playing/Paused ──next/finish──▶ Loading
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhasePlaying
	PhasePaused
	PhaseStopped
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseLoading:
		return "Loading"
	case PhasePlaying:
		return "Playing"
	case PhasePaused:
		return "Paused"
	case PhaseStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// IsLoaded reports whether an engine instance backs the phase.
func (p Phase) IsLoaded() bool {
	return p == PhasePlaying || p == PhasePaused
}
