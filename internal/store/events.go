package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// InsertLiveEvent stores a live event and its ordered setlist in one
// transaction. Existing events are left alone; the crawler checks
// HasLiveEvent before fetching detail.
func (s *Store) InsertLiveEvent(ev *LiveEvent) error {
	brandJSON, err := json.Marshal(ev.BrandNames)
	if err != nil {
		return fmt.Errorf("failed to encode brand names: %w", err)
	}

	return s.Transaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO live_events (id, title, date, brand_names, matched_songs)
			VALUES (?, ?, ?, ?, ?)
		`, ev.ID, ev.Title, ev.Date, string(brandJSON), ev.MatchedSongs)
		if err != nil {
			return fmt.Errorf("failed to insert live event %d: %w", ev.ID, err)
		}

		for i, song := range ev.Songs {
			var requestNo any
			if song.RequestNo != "" {
				requestNo = song.RequestNo
			}
			_, err := tx.Exec(`
				INSERT INTO live_event_songs (event_id, position, title, artist, request_no)
				VALUES (?, ?, ?, ?, ?)
			`, ev.ID, i, song.Title, song.Artist, requestNo)
			if err != nil {
				return fmt.Errorf("failed to insert setlist entry %d: %w", i, err)
			}
		}

		return nil
	})
}

// HasLiveEvent reports whether an event with the given id is stored
func (s *Store) HasLiveEvent(id int64) (bool, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM live_events WHERE id = ?", id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check live event: %w", err)
	}
	return count > 0, nil
}

// GetLiveEvent retrieves a live event and its setlist, or nil if not stored
func (s *Store) GetLiveEvent(id int64) (*LiveEvent, error) {
	ev := &LiveEvent{}
	var brandJSON string
	err := s.db.QueryRow(`
		SELECT id, title, COALESCE(date, ''), COALESCE(brand_names, '[]'), matched_songs
		FROM live_events WHERE id = ?
	`, id).Scan(&ev.ID, &ev.Title, &ev.Date, &brandJSON, &ev.MatchedSongs)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get live event: %w", err)
	}

	if err := json.Unmarshal([]byte(brandJSON), &ev.BrandNames); err != nil {
		return nil, fmt.Errorf("failed to decode brand names: %w", err)
	}

	if err := s.loadSetlist(ev); err != nil {
		return nil, err
	}

	return ev, nil
}

// ListLiveEvents retrieves all live events with their setlists
func (s *Store) ListLiveEvents() ([]*LiveEvent, error) {
	rows, err := s.db.Query(`
		SELECT id, title, COALESCE(date, ''), COALESCE(brand_names, '[]'), matched_songs
		FROM live_events
		ORDER BY date DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query live events: %w", err)
	}
	defer rows.Close()

	var events []*LiveEvent
	for rows.Next() {
		ev := &LiveEvent{}
		var brandJSON string
		if err := rows.Scan(&ev.ID, &ev.Title, &ev.Date, &brandJSON, &ev.MatchedSongs); err != nil {
			return nil, fmt.Errorf("failed to scan live event: %w", err)
		}
		if err := json.Unmarshal([]byte(brandJSON), &ev.BrandNames); err != nil {
			return nil, fmt.Errorf("failed to decode brand names: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, ev := range events {
		if err := s.loadSetlist(ev); err != nil {
			return nil, err
		}
	}

	return events, nil
}

// BindSetlistRequestNo binds a vendor request number to one setlist slot.
// A bound request number is never cleared.
func (s *Store) BindSetlistRequestNo(eventID int64, position int, requestNo string) error {
	_, err := s.db.Exec(`
		UPDATE live_event_songs SET request_no = ?
		WHERE event_id = ? AND position = ?
	`, requestNo, eventID, position)

	if err != nil {
		return fmt.Errorf("failed to bind request no: %w", err)
	}

	return nil
}

// SetLiveEventMatchedSongs persists the per-event count of setlist entries
// that have a bound request number.
func (s *Store) SetLiveEventMatchedSongs(eventID int64, count int) error {
	_, err := s.db.Exec(`
		UPDATE live_events SET matched_songs = ? WHERE id = ?
	`, count, eventID)

	if err != nil {
		return fmt.Errorf("failed to update matched song count: %w", err)
	}

	return nil
}

// CountLiveEvents returns the total number of stored live events
func (s *Store) CountLiveEvents() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM live_events").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count live events: %w", err)
	}
	return count, nil
}

// loadSetlist attaches the ordered setlist rows to an event
func (s *Store) loadSetlist(ev *LiveEvent) error {
	rows, err := s.db.Query(`
		SELECT position, title, COALESCE(artist, ''), COALESCE(request_no, '')
		FROM live_event_songs
		WHERE event_id = ?
		ORDER BY position ASC
	`, ev.ID)
	if err != nil {
		return fmt.Errorf("failed to query setlist: %w", err)
	}
	defer rows.Close()

	ev.Songs = nil
	for rows.Next() {
		var song LiveEventSong
		if err := rows.Scan(&song.Position, &song.Title, &song.Artist, &song.RequestNo); err != nil {
			return fmt.Errorf("failed to scan setlist entry: %w", err)
		}
		ev.Songs = append(ev.Songs, song)
	}

	return rows.Err()
}
