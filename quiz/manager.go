package quiz

import (
	"sync"

	"github.com/navprep/engine/utils"
)

// Manager is the registry of live sessions. Each session is owned by exactly
// one caller for its lifetime; the registry only hands it out by id and
// forgets it when the caller discards it.
type Manager struct {
	mutex    sync.RWMutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

// Add registers a started session.
func (m *Manager) Add(s *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[s.ID] = s
}

// Get returns the live session with the given id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Remove discards a session from the registry. The session itself is left
// alone; whatever was recorded against progress stays recorded.
func (m *Manager) Remove(id string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, id)
}

// Active returns the live sessions, for the timer sweep.
func (m *Manager) Active() []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

// SweepExpired finishes every timed session whose countdown has reached zero
// and returns the ones it finished. Completed sessions stay registered until
// their owner collects the result and removes them.
func (m *Manager) SweepExpired() []*Session {
	var expired []*Session
	for _, s := range m.Active() {
		if !s.IsComplete() && s.IsTimeUp() {
			s.Finish()
			expired = append(expired, s)
		}
	}
	if len(expired) > 0 {
		utils.LogQuiz("Timer sweep finished %d expired sessions", len(expired))
	}
	return expired
}
