package player

// State represents the playback state machine.
//
//	┌──────────┐      Play       ┌──────────┐
//	│   Idle   │ ───────────────▶│  Playing │
//	└──────────┘                 └──────────┘
//	     ▲                            │
//	     └────────────────────────────┘
//	          Stop or end of stream
//
// Play while Playing passes through Idle: the running session is stopped
// before the new one starts.
type State int

const (
	Idle State = iota
	Playing
)

// String returns the state name for debugging.
func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Playing:
		return "Playing"
	default:
		return "Unknown"
	}
}
