package session

import (
	"context"
	"strings"
	"sync"

	"equipment-console/internal/domain"
	"equipment-console/internal/ports"
)

// Session owns the single bearer credential of the process. It is loaded from
// its store at start-up and changed only by Set and Clear.
type Session struct {
	mu    sync.RWMutex
	token string
	store ports.TokenStore
}

func New(store ports.TokenStore) *Session {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Session{store: store}
}

// Open creates a session primed with whatever credential the store holds.
func Open(ctx context.Context, store ports.TokenStore) (*Session, error) {
	s := New(store)
	token, err := s.store.Load(ctx)
	if err != nil {
		return s, err
	}
	s.mu.Lock()
	s.token = strings.TrimSpace(token)
	s.mu.Unlock()
	return s, nil
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) IsAuthenticated() bool {
	return s.Token() != ""
}

// Set replaces the credential in memory first, then in the store.
func (s *Session) Set(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return s.store.Save(ctx, token)
}

// Clear drops the credential from memory even when the store fails.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return s.store.Delete(ctx)
}

// ClearIf drops the credential only while it is still token. It reports
// whether anything was cleared.
func (s *Session) ClearIf(ctx context.Context, token string) (bool, error) {
	s.mu.Lock()
	if s.token != strings.TrimSpace(token) {
		s.mu.Unlock()
		return false, nil
	}
	s.token = ""
	s.mu.Unlock()
	return true, s.store.Delete(ctx)
}

type MemoryStore struct {
	mu    sync.Mutex
	token string
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Load(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemoryStore) Save(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryStore) Delete(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
