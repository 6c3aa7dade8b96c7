package store

// Schema v1 - Initial database schema
const schemaV1 = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
  version INTEGER PRIMARY KEY,
  applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Catalog tracks. The id comes from the catalog API and is never
-- generated locally.
CREATE TABLE IF NOT EXISTS tracks (
  id INTEGER PRIMARY KEY,
  title TEXT NOT NULL,
  title_kana TEXT,
  artist TEXT,
  brand_name TEXT,
  first_karaoke_release DATETIME,
  last_karaoke_crawl DATETIME NOT NULL DEFAULT '1970-01-01 00:00:00',
  first_seen_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_tracks_brand ON tracks(brand_name);
CREATE INDEX IF NOT EXISTS idx_tracks_kana ON tracks(title_kana);

-- Vendor karaoke listings matched to a track (many per track)
CREATE TABLE IF NOT EXISTS karaoke_songs (
  request_no TEXT PRIMARY KEY,
  track_id INTEGER REFERENCES tracks(id) ON DELETE CASCADE,
  title TEXT NOT NULL,
  release_date DATE,
  first_seen_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_karaoke_track_id ON karaoke_songs(track_id);
CREATE INDEX IF NOT EXISTS idx_karaoke_title ON karaoke_songs(title);

-- Live events from the catalog API
CREATE TABLE IF NOT EXISTS live_events (
  id INTEGER PRIMARY KEY,
  title TEXT NOT NULL,
  date TEXT,
  brand_names TEXT, -- JSON array of brand tags inferred from the roster
  matched_songs INTEGER DEFAULT 0,
  first_seen_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Setlist entries, one row per performed song slot.
-- position preserves the authored setlist order.
CREATE TABLE IF NOT EXISTS live_event_songs (
  event_id INTEGER REFERENCES live_events(id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  title TEXT NOT NULL,
  artist TEXT,
  request_no TEXT,
  PRIMARY KEY (event_id, position)
);
`

// Schema v2 - Staleness ordering index for the reconciler
const schemaV2 = `
CREATE INDEX IF NOT EXISTS idx_tracks_last_crawl ON tracks(last_karaoke_crawl);
`
