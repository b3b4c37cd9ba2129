package state

import (
	"database/sql"
	"sync"
)

// Mock is a test double for Manager. Saves are applied immediately.
type Mock struct {
	mu      sync.Mutex
	session *SessionState
	saves   int
	closed  bool
}

// NewMock creates a new mock state manager for testing.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) DB() *sql.DB { return nil }

func (m *Mock) SaveSession(state SessionState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = &state
	m.saves++
}

func (m *Mock) GetSession() (*SessionState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session, nil
}

func (m *Mock) ClearSession() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	return nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Test helpers

func (m *Mock) SetSession(state *SessionState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = state
}

func (m *Mock) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *Mock) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
