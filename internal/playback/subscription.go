package playback

const eventBufferSize = 16

// Subscription provides event channels for a subscriber.
type Subscription struct {
	SessionChanged <-chan Session
	TrackChanged   <-chan TrackChange
	Error          <-chan ErrorEvent
	Done           <-chan struct{}

	// Internal write channels
	sessionCh chan Session
	trackCh   chan TrackChange
	errorCh   chan ErrorEvent
	doneCh    chan struct{}
}

// newSubscription creates a new subscription with buffered channels.
func newSubscription() *Subscription {
	s := &Subscription{
		sessionCh: make(chan Session, eventBufferSize),
		trackCh:   make(chan TrackChange, eventBufferSize),
		errorCh:   make(chan ErrorEvent, eventBufferSize),
		doneCh:    make(chan struct{}),
	}
	s.SessionChanged = s.sessionCh
	s.TrackChanged = s.trackCh
	s.Error = s.errorCh
	s.Done = s.doneCh
	return s
}

// close signals subscribers to stop by closing doneCh.
func (s *Subscription) close() {
	close(s.doneCh)
}

// sendSession sends a session snapshot (non-blocking).
func (s *Subscription) sendSession(e Session) {
	select {
	case s.sessionCh <- e:
	default:
		// Drop if buffer full
	}
}

// sendTrack sends a track change event (non-blocking).
func (s *Subscription) sendTrack(e TrackChange) {
	select {
	case s.trackCh <- e:
	default:
	}
}

// sendError sends an error event (non-blocking).
func (s *Subscription) sendError(e ErrorEvent) {
	select {
	case s.errorCh <- e:
	default:
	}
}
