package dialogue

import (
	"sync"
	"time"

	"ticketgenie/internal/models"
)

// Session is one user's in-progress conversation. It lives in memory for
// the lifetime of the login and is never persisted. The mutex serializes
// transitions: one input is evaluated to completion before the next.
type Session struct {
	mu sync.Mutex

	ID            string
	Username      string
	State         State
	SelectedShow  *models.Show
	TicketCount   int
	Transcript    []models.ChatMessage
	LastBookingID int64
	CreatedAt     time.Time
}

// resetFlow clears the booking-in-progress payload and returns the
// session to the initial state. The transcript is kept.
func (s *Session) resetFlow() {
	s.State = StateIdle
	s.SelectedShow = nil
	s.TicketCount = 0
}

func (s *Session) appendTurn(role, content string) {
	s.Transcript = append(s.Transcript, models.ChatMessage{Role: role, Content: content})
}

// Snapshot returns a copy of the transcript safe to hand to a response
// writer while the session keeps mutating.
func (s *Session) Snapshot() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ChatMessage, len(s.Transcript))
	copy(out, s.Transcript)
	return out
}

// Manager owns all live sessions, keyed by session id. Sessions are
// created at login, reset between booking flows and dropped at logout.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

func (m *Manager) Create(id, username string) *Session {
	sess := &Session{
		ID:        id,
		Username:  username,
		State:     StateIdle,
		CreatedAt: time.Now(),
	}
	m.mu.Lock()
	m.sessions[id] = sess
	m.mu.Unlock()
	return sess
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()
	return sess, ok
}

// GetOrCreate re-materializes a session for a valid token after a process
// restart; the dialogue simply starts over from IDLE.
func (m *Manager) GetOrCreate(id, username string) *Session {
	if sess, ok := m.Get(id); ok {
		return sess
	}
	return m.Create(id, username)
}

func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

func (m *Manager) Reset(id string) {
	if sess, ok := m.Get(id); ok {
		sess.mu.Lock()
		sess.resetFlow()
		sess.mu.Unlock()
	}
}
