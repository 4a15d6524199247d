package inmemory

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/priyanshu2307/Newschat/session/session_models"
)

type entry struct {
	createdAt time.Time
	updatedAt time.Time
	messages  []session_models.Message
}

// Store keeps sessions in process memory. Expiry is checked lazily on
// access; expired entries are evicted on the access that finds them.
// The store mutex serializes message appends across concurrent requests.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	expiry   time.Duration
	now      func() time.Time
}

// NewStore creates an in-memory session store with the given expiry window.
func NewStore(expiry time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*entry),
		expiry:   expiry,
		now:      time.Now,
	}
}

// Create allocates a fresh session with an empty history.
func (s *Store) Create() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	now := s.now()
	s.sessions[id] = &entry{createdAt: now, updatedAt: now}
	return id, nil
}

// Exists reports whether the session is present and unexpired, evicting it
// when the check finds it expired.
func (s *Store) Exists(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(id) != nil
}

// History returns the messages in strict append order.
func (s *Store) History(id string) ([]session_models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.lookup(id)
	if e == nil {
		return nil, session_models.ErrNotFound
	}
	out := make([]session_models.Message, len(e.messages))
	copy(out, e.messages)
	return out, nil
}

// Append adds a message and refreshes the last-activity timestamp.
func (s *Store) Append(id string, msg session_models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.lookup(id)
	if e == nil {
		return session_models.ErrNotFound
	}
	e.messages = append(e.messages, msg)
	e.updatedAt = s.now()
	return nil
}

// Delete removes the session; absent ids are a no-op.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// lookup returns the live entry for id, deleting it when expired.
// Callers must hold the write lock.
func (s *Store) lookup(id string) *entry {
	e, ok := s.sessions[id]
	if !ok {
		return nil
	}
	if s.now().Sub(e.updatedAt) > s.expiry {
		delete(s.sessions, id)
		return nil
	}
	return e
}
