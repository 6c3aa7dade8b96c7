package store

import (
	"testing"
)

func TestKaraokeSongUpsertByRequestNo(t *testing.T) {
	store := openTestStore(t, "test-karaoke.db")

	if err := store.UpsertTrack(&Track{ID: 1, Title: "t"}); err != nil {
		t.Fatal(err)
	}

	song := &KaraokeSong{
		RequestNo:   "3361-94",
		TrackID:     1,
		Title:       "Shooting Stars(M@STER VERSION)",
		ReleaseDate: "2023-07-13",
	}
	if err := store.UpsertKaraokeSong(song); err != nil {
		t.Fatalf("failed to upsert karaoke song: %v", err)
	}

	// Re-accepting the same vendor entry on a later crawl must not duplicate
	song.ReleaseDate = "2023-07-01"
	if err := store.UpsertKaraokeSong(song); err != nil {
		t.Fatalf("failed to re-upsert karaoke song: %v", err)
	}

	count, err := store.CountKaraokeSongs()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("expected 1 karaoke song after re-upsert, got %d", count)
	}

	songs, err := store.KaraokeSongsByTrack(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(songs) != 1 || songs[0].ReleaseDate != "2023-07-01" {
		t.Errorf("expected refreshed release date, got %v", songs)
	}
}

func TestKaraokeSongsByTitlePatterns(t *testing.T) {
	store := openTestStore(t, "test-karaoke-patterns.db")

	if err := store.UpsertTrack(&Track{ID: 1, Title: "t"}); err != nil {
		t.Fatal(err)
	}

	songs := []*KaraokeSong{
		{RequestNo: "1000-01", TrackID: 1, Title: "READY!! (M@STER VERSION)"},
		{RequestNo: "1000-02", TrackID: 1, Title: "READY！！"},
		{RequestNo: "1000-03", TrackID: 1, Title: "Unrelated Song"},
	}
	for _, song := range songs {
		if err := store.UpsertKaraokeSong(song); err != nil {
			t.Fatal(err)
		}
	}

	// Half-width and full-width pattern variants queried together
	found, err := store.KaraokeSongsByTitlePatterns("READY!!%", "READY！！%")
	if err != nil {
		t.Fatalf("pattern query failed: %v", err)
	}
	if len(found) != 2 {
		t.Errorf("expected 2 pattern hits, got %d", len(found))
	}
}

func TestKaraokeSongsByRequestNos(t *testing.T) {
	store := openTestStore(t, "test-karaoke-requestnos.db")

	if err := store.UpsertTrack(&Track{ID: 1, Title: "t"}); err != nil {
		t.Fatal(err)
	}
	for _, no := range []string{"2000-01", "2000-02"} {
		if err := store.UpsertKaraokeSong(&KaraokeSong{RequestNo: no, TrackID: 1, Title: "x"}); err != nil {
			t.Fatal(err)
		}
	}

	found, err := store.KaraokeSongsByRequestNos([]string{"2000-02", "9999-99"})
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 1 {
		t.Errorf("expected 1 hit, got %d", len(found))
	}
	if _, ok := found["2000-02"]; !ok {
		t.Error("expected 2000-02 to be found")
	}

	// Empty input short-circuits without a malformed query
	found, err = store.KaraokeSongsByRequestNos(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 0 {
		t.Errorf("expected empty result, got %d", len(found))
	}
}
