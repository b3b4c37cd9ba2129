package state

import (
	"database/sql"
	"errors"
	"time"

	dbutil "github.com/spynners/spynners/internal/db"
	"github.com/spynners/spynners/internal/playback"
	"github.com/spynners/spynners/internal/track"
)

// SessionState is the saved playback session.
type SessionState struct {
	SessionID    string
	CurrentIndex int
	Position     time.Duration
	SavedAt      time.Time
	Tracks       []track.Item
}

// Current returns the saved current item, or nil.
func (s SessionState) Current() *track.Item {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Tracks) {
		return nil
	}
	item := s.Tracks[s.CurrentIndex]
	return &item
}

// FromSession captures a live session. ok is false when nothing is current.
func FromSession(s playback.Session, now time.Time) (SessionState, bool) {
	if s.Current == nil || len(s.Queue) == 0 {
		return SessionState{}, false
	}
	return SessionState{
		SessionID:    s.ID,
		CurrentIndex: s.CurrentIndex,
		Position:     s.Position,
		SavedAt:      now,
		Tracks:       s.Queue,
	}, true
}

func getSession(db *sql.DB) (*SessionState, error) {
	var s SessionState
	var positionMS, savedAt int64
	row := db.QueryRow(`SELECT session_id, current_index, position_ms, saved_at FROM session_state WHERE id = 1`)
	err := row.Scan(&s.SessionID, &s.CurrentIndex, &positionMS, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.Position = time.Duration(positionMS) * time.Millisecond
	s.SavedAt = time.Unix(savedAt, 0)

	rows, err := db.Query(`
		SELECT track_id, title, artist, audio_uri, artwork_uri,
		       preview_restricted, preview_start, preview_end, genre, bpm
		FROM session_tracks
		ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var t track.Item
		var artist, audioURI, artworkURI, genre sql.NullString
		var start, end sql.NullFloat64
		var bpm sql.NullInt64

		err := rows.Scan(&t.ID, &t.Title, &artist, &audioURI, &artworkURI,
			&t.PreviewRestricted, &start, &end, &genre, &bpm)
		if err != nil {
			return nil, err
		}

		t.Artist = dbutil.NullStringValue(artist)
		t.AudioSourceURI = dbutil.NullStringValue(audioURI)
		t.ArtworkURI = dbutil.NullStringValue(artworkURI)
		t.PreviewStart = dbutil.NullFloat64ToPtr(start)
		t.PreviewEnd = dbutil.NullFloat64ToPtr(end)
		t.Genre = dbutil.NullStringValue(genre)
		t.BPM = int(dbutil.NullInt64Value(bpm))
		s.Tracks = append(s.Tracks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &s, nil
}

func saveSession(sqlDB *sql.DB, state SessionState) error {
	return dbutil.WithTx(sqlDB, func(tx *sql.Tx) error {
		// Clear existing queue
		_, err := tx.Exec(`DELETE FROM session_tracks`)
		if err != nil {
			return err
		}

		_, err = tx.Exec(`
			INSERT INTO session_state (id, session_id, current_index, position_ms, saved_at)
			VALUES (1, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				session_id = excluded.session_id,
				current_index = excluded.current_index,
				position_ms = excluded.position_ms,
				saved_at = excluded.saved_at
		`, state.SessionID, state.CurrentIndex, state.Position.Milliseconds(), state.SavedAt.Unix())
		if err != nil {
			return err
		}

		stmt, err := tx.Prepare(`
			INSERT INTO session_tracks (position, track_id, title, artist, audio_uri, artwork_uri,
				preview_restricted, preview_start, preview_end, genre, bpm)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, t := range state.Tracks {
			var bpm any
			if t.BPM > 0 {
				bpm = t.BPM
			}
			_, err = stmt.Exec(i, t.ID, t.Title, t.Artist, t.AudioSourceURI, t.ArtworkURI,
				t.PreviewRestricted, dbutil.Float64PtrArg(t.PreviewStart), dbutil.Float64PtrArg(t.PreviewEnd),
				t.Genre, bpm)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func clearSession(sqlDB *sql.DB) error {
	return dbutil.WithTx(sqlDB, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM session_tracks`); err != nil {
			return err
		}
		_, err := tx.Exec(`DELETE FROM session_state`)
		return err
	})
}
