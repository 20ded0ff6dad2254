// README: In-memory session store for tests.
package session

import (
	"context"
	"sync"
)

type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

func (m *MemoryStore) GetOrCreate(_ context.Context, phone string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[phone]; ok {
		copied := s
		copied.Cart = cloneCart(s.Cart)
		copied.Normalize()
		return &copied, nil
	}
	return &Session{Phone: phone, State: StateStart, Cart: Cart{}}, nil
}

func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *s
	copied.Cart = cloneCart(s.Cart)
	m.sessions[s.Phone] = copied
	return nil
}

func cloneCart(c Cart) Cart {
	out := make(Cart, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}
