package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// idChunkSize bounds the number of placeholders per membership query so we
// stay well under SQLite's bound-parameter limit.
const idChunkSize = 500

// UpsertTrack inserts or updates a track by its catalog id.
// The crawl bookkeeping columns are left untouched on update.
func (s *Store) UpsertTrack(t *Track) error {
	_, err := s.db.Exec(`
		INSERT INTO tracks (id, title, title_kana, artist, brand_name)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			title_kana = excluded.title_kana,
			artist = excluded.artist,
			brand_name = excluded.brand_name
	`, t.ID, t.Title, t.TitleKana, t.Artist, t.BrandName)

	if err != nil {
		return fmt.Errorf("failed to upsert track %d: %w", t.ID, err)
	}

	return nil
}

// GetTrack retrieves a track by id, or nil if not stored
func (s *Store) GetTrack(id int64) (*Track, error) {
	t := &Track{}
	var firstRelease sql.NullTime
	err := s.db.QueryRow(`
		SELECT id, title, COALESCE(title_kana, ''), COALESCE(artist, ''),
		       COALESCE(brand_name, ''), first_karaoke_release, last_karaoke_crawl
		FROM tracks WHERE id = ?
	`, id).Scan(
		&t.ID, &t.Title, &t.TitleKana, &t.Artist,
		&t.BrandName, &firstRelease, &t.LastKaraokeCrawl,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get track: %w", err)
	}

	if firstRelease.Valid {
		t.FirstKaraokeRelease = &firstRelease.Time
	}

	return t, nil
}

// FilterStoredTrackIDs returns the subset of the given catalog ids that are
// already present in the store. The ingestor diffs against this set so an id
// is never fetched twice.
func (s *Store) FilterStoredTrackIDs(ids []int64) (map[int64]bool, error) {
	stored := make(map[int64]bool)

	for start := 0; start < len(ids); start += idChunkSize {
		end := start + idChunkSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]

		placeholders := strings.Repeat("?,", len(chunk))
		placeholders = placeholders[:len(placeholders)-1]

		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}

		rows, err := s.db.Query(
			"SELECT id FROM tracks WHERE id IN ("+placeholders+")", args...)
		if err != nil {
			return nil, fmt.Errorf("failed to query stored track ids: %w", err)
		}

		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan track id: %w", err)
			}
			stored[id] = true
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}

	return stored, nil
}

// StalestTracks returns at most limit tracks ordered by ascending last
// karaoke crawl time, so every track is eventually revisited.
func (s *Store) StalestTracks(limit int) ([]*Track, error) {
	rows, err := s.db.Query(`
		SELECT id, title, COALESCE(title_kana, ''), COALESCE(artist, ''),
		       COALESCE(brand_name, ''), first_karaoke_release, last_karaoke_crawl
		FROM tracks
		ORDER BY last_karaoke_crawl ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query stalest tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*Track
	for rows.Next() {
		t := &Track{}
		var firstRelease sql.NullTime
		err := rows.Scan(
			&t.ID, &t.Title, &t.TitleKana, &t.Artist,
			&t.BrandName, &firstRelease, &t.LastKaraokeCrawl,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		if firstRelease.Valid {
			t.FirstKaraokeRelease = &firstRelease.Time
		}
		tracks = append(tracks, t)
	}

	return tracks, rows.Err()
}

// TouchTrackCrawl stamps a track's last karaoke crawl time. The reconciler
// stamps every selected track before querying the vendor so a crash mid-batch
// cannot starve the rest of the queue.
func (s *Store) TouchTrackCrawl(trackID int64, at time.Time) error {
	_, err := s.db.Exec(`
		UPDATE tracks SET last_karaoke_crawl = ? WHERE id = ?
	`, at.UTC(), trackID)

	if err != nil {
		return fmt.Errorf("failed to stamp track crawl: %w", err)
	}

	return nil
}

// SetFirstKaraokeRelease overwrites a track's first karaoke release date.
// Callers must only ever move the date earlier (monotonic-decrease merge).
func (s *Store) SetFirstKaraokeRelease(trackID int64, at time.Time) error {
	_, err := s.db.Exec(`
		UPDATE tracks SET first_karaoke_release = ? WHERE id = ?
	`, at.UTC(), trackID)

	if err != nil {
		return fmt.Errorf("failed to set first karaoke release: %w", err)
	}

	return nil
}

// TracksByBrand returns all tracks carrying the given brand tag
func (s *Store) TracksByBrand(brandName string) ([]*Track, error) {
	rows, err := s.db.Query(`
		SELECT id, title, COALESCE(title_kana, ''), COALESCE(artist, ''),
		       COALESCE(brand_name, ''), first_karaoke_release, last_karaoke_crawl
		FROM tracks
		WHERE brand_name = ?
		ORDER BY title_kana ASC
	`, brandName)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks by brand: %w", err)
	}
	defer rows.Close()

	return scanTracks(rows)
}

// SearchTracks returns tracks whose title (case-insensitive), kana reading
// or artist contains the keyword. An empty brandName means no brand filter.
// Results are ordered by kana reading.
func (s *Store) SearchTracks(keyword, brandName string, includeArtist bool) ([]*Track, error) {
	pattern := "%" + escapeLike(keyword) + "%"

	where := `(title LIKE ? ESCAPE '\' COLLATE NOCASE
		OR title_kana LIKE ? ESCAPE '\'`
	args := []any{pattern, pattern}
	if includeArtist {
		where += ` OR artist LIKE ? ESCAPE '\'`
		args = append(args, pattern)
	}
	where += ")"

	if brandName != "" {
		where += " AND brand_name = ?"
		args = append(args, brandName)
	}

	rows, err := s.db.Query(`
		SELECT id, title, COALESCE(title_kana, ''), COALESCE(artist, ''),
		       COALESCE(brand_name, ''), first_karaoke_release, last_karaoke_crawl
		FROM tracks
		WHERE `+where+`
		ORDER BY title_kana ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search tracks: %w", err)
	}
	defer rows.Close()

	return scanTracks(rows)
}

// CountTracks returns the total number of stored tracks and how many of them
// have a confirmed karaoke release.
func (s *Store) CountTracks() (total, withRelease int, err error) {
	err = s.db.QueryRow(`
		SELECT COUNT(*), COUNT(first_karaoke_release) FROM tracks
	`).Scan(&total, &withRelease)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count tracks: %w", err)
	}
	return total, withRelease, nil
}

func scanTracks(rows *sql.Rows) ([]*Track, error) {
	var tracks []*Track
	for rows.Next() {
		t := &Track{}
		var firstRelease sql.NullTime
		err := rows.Scan(
			&t.ID, &t.Title, &t.TitleKana, &t.Artist,
			&t.BrandName, &firstRelease, &t.LastKaraokeCrawl,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		if firstRelease.Valid {
			t.FirstKaraokeRelease = &firstRelease.Time
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

// escapeLike escapes LIKE metacharacters in user-supplied keywords
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
