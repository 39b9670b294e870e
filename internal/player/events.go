package player

const eventBufferSize = 16

// StateChange is emitted on every state transition.
type StateChange struct {
	From State
	To   State
}

// ErrorEvent is emitted when a session ends with an error.
type ErrorEvent struct {
	Operation string
	URL       string
	Err       error
}

// Subscription provides event channels for a subscriber.
// Events are dropped when a channel buffer is full.
type Subscription struct {
	StateChanged <-chan StateChange
	Error        <-chan ErrorEvent
	Done         <-chan struct{}

	stateCh chan StateChange
	errorCh chan ErrorEvent
	doneCh  chan struct{}
}

func newSubscription() *Subscription {
	s := &Subscription{
		stateCh: make(chan StateChange, eventBufferSize),
		errorCh: make(chan ErrorEvent, eventBufferSize),
		doneCh:  make(chan struct{}),
	}
	s.StateChanged = s.stateCh
	s.Error = s.errorCh
	s.Done = s.doneCh
	return s
}

func (s *Subscription) close() {
	close(s.doneCh)
}

func (s *Subscription) sendState(e StateChange) {
	select {
	case s.stateCh <- e:
	default:
	}
}

func (s *Subscription) sendError(e ErrorEvent) {
	select {
	case s.errorCh <- e:
	default:
	}
}
