package reconcile

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ymkz/karadex/internal/dam"
	"github.com/ymkz/karadex/internal/store"
)

// fakeKaraoke serves canned vendor entries per title
type fakeKaraoke struct {
	entries map[string][]dam.Entry
	queried []string
	err     error
}

func (f *fakeKaraoke) SearchByTitle(ctx context.Context, title string) ([]dam.Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.queried = append(f.queried, title)
	return f.entries[title], nil
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedTrack(t *testing.T, db *store.Store, track *store.Track, crawledAt time.Time) {
	t.Helper()
	if err := db.UpsertTrack(track); err != nil {
		t.Fatal(err)
	}
	if !crawledAt.IsZero() {
		if err := db.TouchTrackCrawl(track.ID, crawledAt); err != nil {
			t.Fatal(err)
		}
	}
}

func TestReconcileSelectsOldestFirst(t *testing.T) {
	db := newTestStore(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	seedTrack(t, db, &store.Track{ID: 1, Title: "Song One", Artist: "Alice"}, base)
	seedTrack(t, db, &store.Track{ID: 2, Title: "Song Two", Artist: "Alice"}, base.Add(time.Hour))
	seedTrack(t, db, &store.Track{ID: 3, Title: "Song Three", Artist: "Alice"}, base.Add(2*time.Hour))

	vendor := &fakeKaraoke{}
	reconciler := New(&Config{Store: db, Karaoke: vendor})

	result, err := reconciler.Run(context.Background(), 2)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.TracksVisited != 2 {
		t.Errorf("expected 2 tracks visited, got %d", result.TracksVisited)
	}

	if len(vendor.queried) != 2 || vendor.queried[0] != "Song One" || vendor.queried[1] != "Song Two" {
		t.Errorf("expected oldest-first queries [Song One, Song Two], got %v", vendor.queried)
	}

	// The third track keeps its stamp and stays at the head for next time
	track, err := db.GetTrack(3)
	if err != nil {
		t.Fatal(err)
	}
	if !track.LastKaraokeCrawl.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("expected track 3 untouched, got stamp %v", track.LastKaraokeCrawl)
	}
}

func TestReconcileStampsBeforeQuerying(t *testing.T) {
	db := newTestStore(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	seedTrack(t, db, &store.Track{ID: 1, Title: "Song One"}, base)
	seedTrack(t, db, &store.Track{ID: 2, Title: "Song Two"}, base.Add(time.Hour))

	// The vendor fails immediately; both selected tracks must still have
	// been stamped so a crash cannot make them jump the queue
	vendor := &fakeKaraoke{err: errors.New("vendor down")}
	reconciler := New(&Config{Store: db, Karaoke: vendor})

	if _, err := reconciler.Run(context.Background(), 2); err == nil {
		t.Fatal("expected run to fail")
	}

	for _, id := range []int64{1, 2} {
		track, err := db.GetTrack(id)
		if err != nil {
			t.Fatal(err)
		}
		if !track.LastKaraokeCrawl.After(base.Add(time.Hour)) {
			t.Errorf("expected track %d stamped before the failing query, got %v", id, track.LastKaraokeCrawl)
		}
	}
}

func TestReconcileStoresAcceptedMatches(t *testing.T) {
	db := newTestStore(t)
	seedTrack(t, db, &store.Track{ID: 1, Title: "Shooting Stars", Artist: "Alice", BrandName: "765"}, time.Time{})

	vendor := &fakeKaraoke{entries: map[string][]dam.Entry{
		"Shooting Stars": {
			{Title: "Shooting Stars(M@STER VERSION)", Artist: "", RequestNo: "1000-01", ReleaseDate: "2021-06-01"},
			{Title: "Shooting Stars", Artist: "Alice", RequestNo: "1000-02", ReleaseDate: "2020-03-15"},
			{Title: "Shooting Stars", Artist: "Somebody Else", RequestNo: "1000-03", ReleaseDate: "2019-01-01"},
		},
	}}
	reconciler := New(&Config{Store: db, Karaoke: vendor})

	result, err := reconciler.Run(context.Background(), 10)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.MatchesAccepted != 2 || result.MatchesRejected != 1 {
		t.Errorf("expected 2 accepted / 1 rejected, got %d / %d",
			result.MatchesAccepted, result.MatchesRejected)
	}

	songs, err := db.KaraokeSongsByTrack(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(songs) != 2 {
		t.Errorf("expected 2 stored matches, got %d", len(songs))
	}

	// The earliest accepted release date wins; the rejected entry's earlier
	// date must not leak in
	track, err := db.GetTrack(1)
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC)
	if track.FirstKaraokeRelease == nil || !track.FirstKaraokeRelease.Equal(want) {
		t.Errorf("expected first release %v, got %v", want, track.FirstKaraokeRelease)
	}
}

func TestReconcileReleaseDateIsMonotonic(t *testing.T) {
	db := newTestStore(t)
	seedTrack(t, db, &store.Track{ID: 1, Title: "Song", Artist: "Alice"}, time.Time{})

	earlier := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := db.SetFirstKaraokeRelease(1, earlier); err != nil {
		t.Fatal(err)
	}

	// A later vendor date must not move the stored date forward
	vendor := &fakeKaraoke{entries: map[string][]dam.Entry{
		"Song": {{Title: "Song", Artist: "Alice", RequestNo: "2000-01", ReleaseDate: "2022-05-05"}},
	}}
	reconciler := New(&Config{Store: db, Karaoke: vendor})
	if _, err := reconciler.Run(context.Background(), 10); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	track, err := db.GetTrack(1)
	if err != nil {
		t.Fatal(err)
	}
	if track.FirstKaraokeRelease == nil || !track.FirstKaraokeRelease.Equal(earlier) {
		t.Errorf("expected stored date to stay %v, got %v", earlier, track.FirstKaraokeRelease)
	}

	// An even earlier date does move it back
	vendor.entries["Song"] = []dam.Entry{
		{Title: "Song", Artist: "Alice", RequestNo: "2000-01", ReleaseDate: "2015-09-09"},
	}
	if _, err := reconciler.Run(context.Background(), 10); err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	track, err = db.GetTrack(1)
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2015, 9, 9, 0, 0, 0, 0, time.UTC)
	if track.FirstKaraokeRelease == nil || !track.FirstKaraokeRelease.Equal(want) {
		t.Errorf("expected stored date moved back to %v, got %v", want, track.FirstKaraokeRelease)
	}
}

func TestReconcileRepeatedRunDoesNotDuplicate(t *testing.T) {
	db := newTestStore(t)
	seedTrack(t, db, &store.Track{ID: 1, Title: "Song", Artist: "Alice"}, time.Time{})

	vendor := &fakeKaraoke{entries: map[string][]dam.Entry{
		"Song": {{Title: "Song", Artist: "Alice", RequestNo: "3000-01", ReleaseDate: "2020-01-01"}},
	}}
	reconciler := New(&Config{Store: db, Karaoke: vendor})

	for i := 0; i < 2; i++ {
		if _, err := reconciler.Run(context.Background(), 10); err != nil {
			t.Fatalf("run %d failed: %v", i+1, err)
		}
	}

	count, err := db.CountKaraokeSongs()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("expected 1 karaoke song after repeated runs, got %d", count)
	}
}
