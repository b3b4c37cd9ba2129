// Package state persists the last playback session in SQLite.
package state

import (
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName      = "spynners"
	dbFileName   = "spynners.db"
	saveDebounce = 500 * time.Millisecond
)

type Manager struct {
	db        *sql.DB
	logger    *slog.Logger
	debounce  time.Duration
	saveMu    sync.Mutex
	saveTimer *time.Timer
	pending   *SessionState
}

// Open opens the database at path, or at the XDG data location when path
// is empty, creating the schema if needed.
func Open(path string, logger *slog.Logger) (*Manager, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Manager{
		db:       db,
		logger:   logger.With("component", "state"),
		debounce: saveDebounce,
	}, nil
}

func (m *Manager) Close() error {
	m.saveMu.Lock()
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	pending := m.pending
	m.pending = nil
	m.saveMu.Unlock()

	// Flush pending state
	if pending != nil {
		if err := saveSession(m.db, *pending); err != nil {
			m.logger.Warn("flush session failed", "error", err)
		}
	}

	return m.db.Close()
}

func (m *Manager) GetSession() (*SessionState, error) {
	return getSession(m.db)
}

// ClearSession drops any pending save and removes the stored session.
func (m *Manager) ClearSession() error {
	m.saveMu.Lock()
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	m.pending = nil
	m.saveMu.Unlock()

	return clearSession(m.db)
}

func (m *Manager) DB() *sql.DB {
	return m.db
}

// SaveSession stores state after a quiet period; only the latest state of
// a burst is written.
func (m *Manager) SaveSession(state SessionState) {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	m.pending = &state

	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}

	m.saveTimer = time.AfterFunc(m.debounce, func() {
		m.saveMu.Lock()
		pending := m.pending
		m.pending = nil
		m.saveMu.Unlock()

		if pending != nil {
			if err := saveSession(m.db, *pending); err != nil {
				m.logger.Warn("save session failed", "error", err)
			}
		}
	})
}

// DefaultPath returns the database location under the XDG data directory.
func DefaultPath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, dbFileName))
}
