package server

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"yt-audio/internal/player"
)

// Factory creates a player for a locator.
type Factory func(url string) player.Interface

// SessionManager maps session IDs to independent players.
type SessionManager struct {
	factory Factory
	logger  *slog.Logger

	mu      sync.Mutex
	players map[string]player.Interface
}

// NewSessionManager creates a session manager that builds players with factory.
func NewSessionManager(factory Factory, logger *slog.Logger) *SessionManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionManager{
		factory: factory,
		logger:  logger,
		players: make(map[string]player.Interface),
	}
}

// StartPlayback plays url from startAt in session id. A session is bound to
// one URL; a different URL replaces its player.
func (m *SessionManager) StartPlayback(id, url string, startAt time.Duration) error {
	var replaced player.Interface

	m.mu.Lock()
	p := m.players[id]
	if p != nil && p.URL() != url {
		replaced, p = p, nil
	}
	if p == nil {
		p = m.factory(url)
		m.players[id] = p
		m.logger.Debug("session created", "session", id, "url", url)
	}
	m.mu.Unlock()

	if replaced != nil {
		replaced.Close()
	}
	return p.Play(startAt)
}

// Get returns the player for id, or nil if none exists.
func (m *SessionManager) Get(id string) player.Interface {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.players[id]
}

// Stop stops playback in session id, keeping the session.
// It reports whether the session exists.
func (m *SessionManager) Stop(id string) bool {
	p := m.Get(id)
	if p == nil {
		return false
	}
	p.Stop()
	return true
}

// Remove stops and deletes session id.
func (m *SessionManager) Remove(id string) bool {
	m.mu.Lock()
	p, ok := m.players[id]
	delete(m.players, id)
	m.mu.Unlock()

	if ok {
		p.Close()
	}
	return ok
}

// IDs returns the session IDs in sorted order.
func (m *SessionManager) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.players))
	for id := range m.players {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close closes every player and removes all sessions.
func (m *SessionManager) Close() {
	m.mu.Lock()
	players := m.players
	m.players = make(map[string]player.Interface)
	m.mu.Unlock()

	for _, p := range players {
		p.Close()
	}
}
