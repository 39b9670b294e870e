package player

import "time"

// Interface defines the player contract for dependency injection and testing.
type Interface interface {
	URL() string
	Play(offset time.Duration) error
	Stop()
	Close()
	State() State
	Position() time.Duration
	Duration() time.Duration
	Title() string
	Err() error
}

// Verify Player implements Interface at compile time.
var _ Interface = (*Player)(nil)
