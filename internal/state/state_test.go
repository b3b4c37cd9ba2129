package state

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/spynners/spynners/internal/playback"
	"github.com/spynners/spynners/internal/track"
)

// setupTestDB creates an in-memory SQLite database with the schema initialized.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		db.Close()
		t.Fatalf("failed to init schema: %v", err)
	}

	return db
}

func testSession() SessionState {
	return SessionState{
		SessionID:    "3b1c1c4e-5e0f-4b53-9d0c-2f1a3c9e7a10",
		CurrentIndex: 1,
		Position:     42500 * time.Millisecond,
		SavedAt:      time.Unix(1760000000, 0),
		Tracks: []track.Item{
			{
				ID:             "t0",
				Title:          "Night Drive",
				Artist:         "Producer",
				AudioSourceURI: "https://cdn.test/t0.mp3",
				ArtworkURI:     "https://cdn.test/t0.jpg",
				Genre:          "Trap",
				BPM:            140,
			},
			{
				ID:                "t1",
				Title:             "VIP Beat",
				AudioSourceURI:    "https://cdn.test/t1.mp3",
				PreviewRestricted: true,
				PreviewStart:      track.Seconds(30),
				PreviewEnd:        track.Seconds(60.5),
			},
			{
				ID:    "t2",
				Title: "No Audio",
			},
		},
	}
}

func TestGetSession_Empty(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	s, err := getSession(db)
	if err != nil {
		t.Fatalf("getSession failed: %v", err)
	}
	if s != nil {
		t.Errorf("expected nil session on empty db, got %+v", s)
	}
}

func TestSaveAndGetSession(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	want := testSession()
	if err := saveSession(db, want); err != nil {
		t.Fatalf("saveSession failed: %v", err)
	}

	got, err := getSession(db)
	if err != nil {
		t.Fatalf("getSession failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected session, got nil")
	}

	if got.SessionID != want.SessionID {
		t.Errorf("SessionID = %q, want %q", got.SessionID, want.SessionID)
	}
	if got.CurrentIndex != 1 {
		t.Errorf("CurrentIndex = %d, want 1", got.CurrentIndex)
	}
	if got.Position != want.Position {
		t.Errorf("Position = %v, want %v", got.Position, want.Position)
	}
	if !got.SavedAt.Equal(want.SavedAt) {
		t.Errorf("SavedAt = %v, want %v", got.SavedAt, want.SavedAt)
	}
	if len(got.Tracks) != 3 {
		t.Fatalf("expected 3 tracks, got %d", len(got.Tracks))
	}

	first := got.Tracks[0]
	if first.ID != "t0" || first.Artist != "Producer" || first.Genre != "Trap" || first.BPM != 140 {
		t.Errorf("first track = %+v", first)
	}
	if first.ArtworkURI != "https://cdn.test/t0.jpg" {
		t.Errorf("ArtworkURI = %q", first.ArtworkURI)
	}
	if first.PreviewStart != nil || first.PreviewEnd != nil {
		t.Errorf("expected nil preview bounds, got %v %v", first.PreviewStart, first.PreviewEnd)
	}

	vip := got.Tracks[1]
	if !vip.PreviewRestricted {
		t.Error("expected PreviewRestricted")
	}
	if vip.PreviewStart == nil || *vip.PreviewStart != 30 {
		t.Errorf("PreviewStart = %v, want 30", vip.PreviewStart)
	}
	if vip.PreviewEnd == nil || *vip.PreviewEnd != 60.5 {
		t.Errorf("PreviewEnd = %v, want 60.5", vip.PreviewEnd)
	}
	if vip.BPM != 0 {
		t.Errorf("BPM = %d, want 0", vip.BPM)
	}

	if got.Tracks[2].AudioSourceURI != "" {
		t.Errorf("expected empty audio source, got %q", got.Tracks[2].AudioSourceURI)
	}
}

func TestSaveSession_Overwrites(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if err := saveSession(db, testSession()); err != nil {
		t.Fatalf("first save failed: %v", err)
	}

	second := SessionState{
		SessionID:    "second",
		CurrentIndex: 0,
		SavedAt:      time.Unix(1760000100, 0),
		Tracks:       []track.Item{{ID: "x", Title: "Only"}},
	}
	if err := saveSession(db, second); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	got, err := getSession(db)
	if err != nil {
		t.Fatalf("getSession failed: %v", err)
	}
	if got.SessionID != "second" {
		t.Errorf("SessionID = %q, want second", got.SessionID)
	}
	if len(got.Tracks) != 1 || got.Tracks[0].ID != "x" {
		t.Errorf("tracks = %+v", got.Tracks)
	}
}

func TestClearSession(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if err := saveSession(db, testSession()); err != nil {
		t.Fatalf("saveSession failed: %v", err)
	}
	if err := clearSession(db); err != nil {
		t.Fatalf("clearSession failed: %v", err)
	}

	got, err := getSession(db)
	if err != nil {
		t.Fatalf("getSession failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil after clear, got %+v", got)
	}
}

func TestSessionState_Current(t *testing.T) {
	s := testSession()
	if cur := s.Current(); cur == nil || cur.ID != "t1" {
		t.Errorf("Current() = %+v, want t1", cur)
	}

	s.CurrentIndex = -1
	if s.Current() != nil {
		t.Error("expected nil for index -1")
	}
	s.CurrentIndex = 3
	if s.Current() != nil {
		t.Error("expected nil for out of range index")
	}
}

func TestFromSession(t *testing.T) {
	now := time.Unix(1760000000, 0)
	items := testSession().Tracks

	if _, ok := FromSession(playback.Session{}, now); ok {
		t.Error("expected no state for an idle session")
	}

	live := playback.Session{
		ID:           "abc",
		Current:      &items[0],
		Position:     12 * time.Second,
		HasQueue:     true,
		Queue:        items,
		CurrentIndex: 0,
	}
	got, ok := FromSession(live, now)
	if !ok {
		t.Fatal("expected state")
	}
	if got.SessionID != "abc" || got.Position != 12*time.Second || !got.SavedAt.Equal(now) {
		t.Errorf("FromSession = %+v", got)
	}
	if len(got.Tracks) != 3 {
		t.Errorf("expected 3 tracks, got %d", len(got.Tracks))
	}
}

func TestManager_SaveSessionDebounced(t *testing.T) {
	m, err := Open(filepath.Join(t.TempDir(), "state.db"), nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer m.Close()
	m.debounce = 200 * time.Millisecond

	first := testSession()
	first.Position = time.Second
	m.SaveSession(first)
	latest := testSession()
	latest.Position = 5 * time.Second
	m.SaveSession(latest)

	got, err := m.GetSession()
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got != nil {
		t.Fatal("expected nothing stored before the debounce elapsed")
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		got, err = m.GetSession()
		if err != nil {
			t.Fatalf("GetSession failed: %v", err)
		}
		if got != nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if got == nil {
		t.Fatal("session was never saved")
	}
	if got.Position != 5*time.Second {
		t.Errorf("Position = %v, want latest 5s", got.Position)
	}
}

func TestManager_CloseFlushesPending(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	m, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	m.debounce = time.Hour

	m.SaveSession(testSession())
	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := Open(path, nil)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.GetSession()
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got == nil || got.SessionID != testSession().SessionID {
		t.Errorf("expected flushed session, got %+v", got)
	}
}

func TestManager_ClearSessionDropsPending(t *testing.T) {
	m, err := Open(filepath.Join(t.TempDir(), "state.db"), nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	m.debounce = time.Hour

	m.SaveSession(testSession())
	if err := m.ClearSession(); err != nil {
		t.Fatalf("ClearSession failed: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestMock(t *testing.T) {
	m := NewMock()
	m.SaveSession(testSession())
	if m.Saves() != 1 {
		t.Errorf("Saves() = %d, want 1", m.Saves())
	}
	got, _ := m.GetSession()
	if got == nil {
		t.Fatal("expected session")
	}
	_ = m.ClearSession()
	got, _ = m.GetSession()
	if got != nil {
		t.Error("expected nil after clear")
	}
	_ = m.Close()
	if !m.IsClosed() {
		t.Error("expected closed")
	}
}
