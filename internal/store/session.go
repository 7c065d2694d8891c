package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Session struct {
	ID    string
	Store *Store

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Sessions indexes live stores by session id.
type Sessions struct {
	mu    sync.Mutex
	items map[string]*Session
	now   func() time.Time
}

func NewSessions() *Sessions {
	return &Sessions{
		items: make(map[string]*Session),
		now:   time.Now,
	}
}

func (m *Sessions) Get(id string) (*Session, bool) {
	m.mu.Lock()
	sess, ok := m.items[id]
	m.mu.Unlock()
	if ok {
		sess.touch(m.now())
	}
	return sess, ok
}

// Create registers a session with a fresh id, or with id when it is a
// valid uuid. When id is already in use the existing session is returned
// and created is false.
func (m *Sessions) Create(id string, initial State) (sess *Session, created bool) {
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.New().String()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.items[id]; ok {
		existing.touch(m.now())
		return existing, false
	}
	sess = &Session{ID: id, Store: New(initial), lastSeen: m.now()}
	m.items[id] = sess
	return sess, true
}

func (m *Sessions) Remove(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.items[id]
	if ok {
		delete(m.items, id)
	}
	return sess, ok
}

// IdleSince returns sessions not seen since cutoff.
func (m *Sessions) IdleSince(cutoff time.Time) []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	var idle []*Session
	for _, sess := range m.items {
		if sess.LastSeen().Before(cutoff) {
			idle = append(idle, sess)
		}
	}
	return idle
}

func (m *Sessions) All() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]*Session, 0, len(m.items))
	for _, sess := range m.items {
		all = append(all, sess)
	}
	return all
}

func (m *Sessions) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
