package game

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is a registered game. Callers reach the Game only through
// Manager.Update or Manager.View, which serialize access per session.
type Session struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	mu   sync.Mutex
	game *Game
}

// Manager is an in-memory registry of games keyed by uuid.
type Manager struct {
	mu    sync.RWMutex
	games map[string]*Session
}

func NewManager() *Manager {
	return &Manager{games: make(map[string]*Session)}
}

// NewGame registers g under a fresh id. A nil g starts from the initial
// position.
func (m *Manager) NewGame(g *Game) *Session {
	if g == nil {
		g = New()
	}
	now := time.Now()
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		game:      g,
	}

	m.mu.Lock()
	m.games[s.ID] = s
	m.mu.Unlock()
	return s
}

func (m *Manager) get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	return s, nil
}

// View runs fn with the game locked for reading.
func (m *Manager) View(id string, fn func(*Game) error) error {
	s, err := m.get(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.game)
}

// Update runs fn with the game locked and stamps UpdatedAt when fn succeeds.
func (m *Manager) Update(id string, fn func(*Game) error) error {
	s, err := m.get(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(s.game); err != nil {
		return err
	}
	s.UpdatedAt = time.Now()
	return nil
}

// Delete drops the game with the given id.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[id]; !ok {
		return ErrGameNotFound
	}
	delete(m.games, id)
	return nil
}

// Len returns the number of registered games.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}

// Prune removes games not updated within maxAge and returns how many went.
// Sessions busy in Update are waited on without holding the registry lock.
func (m *Manager) Prune(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.games))
	for _, s := range m.games {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	var stale []*Session
	for _, s := range sessions {
		s.mu.Lock()
		if s.UpdatedAt.Before(cutoff) {
			stale = append(stale, s)
		}
		s.mu.Unlock()
	}
	if len(stale) == 0 {
		return 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range stale {
		if m.games[s.ID] == s {
			delete(m.games, s.ID)
			n++
		}
	}
	return n
}
