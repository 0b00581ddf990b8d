package repository

import (
	"sync"

	"github.com/xiaot623/anketa/internal/domain"
)

// MemorySessionStore keeps sessions for the lifetime of the process.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[domain.UserID]*domain.Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[domain.UserID]*domain.Session)}
}

func (s *MemorySessionStore) Get(userID domain.UserID) (*domain.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[userID]
	return sess, ok
}

func (s *MemorySessionStore) Save(session *domain.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.UserID] = session
}

func (s *MemorySessionStore) Delete(userID domain.UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

func (s *MemorySessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// MemoryCaptureRegistry tracks pending media captures per operator.
type MemoryCaptureRegistry struct {
	mu      sync.Mutex
	pending map[domain.UserID]domain.MediaKey
}

func NewMemoryCaptureRegistry() *MemoryCaptureRegistry {
	return &MemoryCaptureRegistry{pending: make(map[domain.UserID]domain.MediaKey)}
}

// Arm replaces any capture already pending for userID.
func (r *MemoryCaptureRegistry) Arm(userID domain.UserID, key domain.MediaKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending[userID] = key
}

func (r *MemoryCaptureRegistry) Take(userID domain.UserID) (domain.MediaKey, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key, ok := r.pending[userID]
	if ok {
		delete(r.pending, userID)
	}
	return key, ok
}
