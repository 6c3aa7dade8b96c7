package store

import (
	"testing"
)

func TestLiveEventInsertPreservesSetlistOrder(t *testing.T) {
	store := openTestStore(t, "test-events.db")

	ev := &LiveEvent{
		ID:         555,
		Title:      "9th Anniversary Live",
		Date:       "2023-10-01",
		BrandNames: []string{"as", "ml"},
		Songs: []LiveEventSong{
			{Position: 0, Title: "Opening Song", Artist: "Alice"},
			{Position: 1, Title: "Middle Song", Artist: "Bob、Carol"},
			{Position: 2, Title: "Encore Song", Artist: "Alice、Bob"},
		},
	}

	if err := store.InsertLiveEvent(ev); err != nil {
		t.Fatalf("failed to insert live event: %v", err)
	}

	stored, err := store.HasLiveEvent(555)
	if err != nil {
		t.Fatal(err)
	}
	if !stored {
		t.Error("expected HasLiveEvent to report true")
	}

	retrieved, err := store.GetLiveEvent(555)
	if err != nil {
		t.Fatalf("failed to get live event: %v", err)
	}
	if retrieved == nil {
		t.Fatal("expected to retrieve live event, got nil")
	}

	if len(retrieved.BrandNames) != 2 {
		t.Errorf("expected 2 brand names, got %v", retrieved.BrandNames)
	}
	if len(retrieved.Songs) != 3 {
		t.Fatalf("expected 3 setlist entries, got %d", len(retrieved.Songs))
	}
	for i, want := range []string{"Opening Song", "Middle Song", "Encore Song"} {
		if retrieved.Songs[i].Title != want {
			t.Errorf("setlist position %d: expected %q, got %q", i, want, retrieved.Songs[i].Title)
		}
	}
}

func TestBindSetlistRequestNo(t *testing.T) {
	store := openTestStore(t, "test-events-bind.db")

	ev := &LiveEvent{
		ID:         1,
		Title:      "Live",
		BrandNames: []string{"sc"},
		Songs: []LiveEventSong{
			{Position: 0, Title: "Song A"},
			{Position: 1, Title: "Song B"},
		},
	}
	if err := store.InsertLiveEvent(ev); err != nil {
		t.Fatal(err)
	}

	if err := store.BindSetlistRequestNo(1, 1, "4444-55"); err != nil {
		t.Fatalf("failed to bind request no: %v", err)
	}
	if err := store.SetLiveEventMatchedSongs(1, 1); err != nil {
		t.Fatalf("failed to set matched count: %v", err)
	}

	retrieved, err := store.GetLiveEvent(1)
	if err != nil {
		t.Fatal(err)
	}
	if retrieved.Songs[0].RequestNo != "" {
		t.Error("expected position 0 to stay unbound")
	}
	if retrieved.Songs[1].RequestNo != "4444-55" {
		t.Errorf("expected position 1 bound to 4444-55, got %q", retrieved.Songs[1].RequestNo)
	}
	if retrieved.MatchedSongs != 1 {
		t.Errorf("expected matched count 1, got %d", retrieved.MatchedSongs)
	}
}

func TestGetLiveEventMissing(t *testing.T) {
	store := openTestStore(t, "test-events-missing.db")

	ev, err := store.GetLiveEvent(12345)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev != nil {
		t.Error("expected nil for unknown event")
	}
}
