package store

import (
	"database/sql"
	"fmt"
	"strings"
)

// UpsertKaraokeSong inserts a karaoke listing or refreshes an existing one.
// The vendor request number is the natural key; re-accepting the same entry
// on a later crawl updates the row instead of duplicating it.
func (s *Store) UpsertKaraokeSong(k *KaraokeSong) error {
	_, err := s.db.Exec(`
		INSERT INTO karaoke_songs (request_no, track_id, title, release_date)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(request_no) DO UPDATE SET
			track_id = excluded.track_id,
			title = excluded.title,
			release_date = excluded.release_date
	`, k.RequestNo, k.TrackID, k.Title, k.ReleaseDate)

	if err != nil {
		return fmt.Errorf("failed to upsert karaoke song %s: %w", k.RequestNo, err)
	}

	return nil
}

// KaraokeSongsByTrack returns the karaoke listings bound to a track
func (s *Store) KaraokeSongsByTrack(trackID int64) ([]*KaraokeSong, error) {
	rows, err := s.db.Query(`
		SELECT request_no, track_id, title, COALESCE(release_date, '')
		FROM karaoke_songs
		WHERE track_id = ?
		ORDER BY release_date ASC
	`, trackID)
	if err != nil {
		return nil, fmt.Errorf("failed to query karaoke songs: %w", err)
	}
	defer rows.Close()

	return scanKaraokeSongs(rows)
}

// KaraokeSongsByTitlePatterns returns karaoke listings whose title matches
// either LIKE pattern. The setlist matcher passes a raw-normalized and a
// width-folded variant of the same title.
func (s *Store) KaraokeSongsByTitlePatterns(patternA, patternB string) ([]*KaraokeSong, error) {
	rows, err := s.db.Query(`
		SELECT request_no, track_id, title, COALESCE(release_date, '')
		FROM karaoke_songs
		WHERE title LIKE ? OR title LIKE ?
	`, patternA, patternB)
	if err != nil {
		return nil, fmt.Errorf("failed to query karaoke songs by pattern: %w", err)
	}
	defer rows.Close()

	return scanKaraokeSongs(rows)
}

// KaraokeSongsByRequestNos returns the listings for the given request
// numbers, keyed by request number.
func (s *Store) KaraokeSongsByRequestNos(requestNos []string) (map[string]*KaraokeSong, error) {
	result := make(map[string]*KaraokeSong)
	if len(requestNos) == 0 {
		return result, nil
	}

	placeholders := strings.Repeat("?,", len(requestNos))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(requestNos))
	for i, no := range requestNos {
		args[i] = no
	}

	rows, err := s.db.Query(`
		SELECT request_no, track_id, title, COALESCE(release_date, '')
		FROM karaoke_songs
		WHERE request_no IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query karaoke songs by request no: %w", err)
	}
	defer rows.Close()

	songs, err := scanKaraokeSongs(rows)
	if err != nil {
		return nil, err
	}
	for _, k := range songs {
		result[k.RequestNo] = k
	}

	return result, nil
}

// CountKaraokeSongs returns the total number of stored karaoke listings
func (s *Store) CountKaraokeSongs() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM karaoke_songs").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count karaoke songs: %w", err)
	}
	return count, nil
}

func scanKaraokeSongs(rows *sql.Rows) ([]*KaraokeSong, error) {
	var songs []*KaraokeSong
	for rows.Next() {
		k := &KaraokeSong{}
		if err := rows.Scan(&k.RequestNo, &k.TrackID, &k.Title, &k.ReleaseDate); err != nil {
			return nil, fmt.Errorf("failed to scan karaoke song: %w", err)
		}
		songs = append(songs, k)
	}
	return songs, rows.Err()
}
