package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListTrackIDs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/list" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("type") != "music" || r.URL.Query().Get("order") != "asc" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}

		json.NewEncoder(w).Encode([]map[string]any{
			{"song_id": 11, "name": "a"},
			{"song_id": 12, "name": "b"},
			{"song_id": 13, "name": "c"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	defer client.Close()

	ids, err := client.ListTrackIDs(context.Background())
	if err != nil {
		t.Fatalf("failed to list track ids: %v", err)
	}

	// Catalog order must be preserved
	want := []int64{11, 12, 13}
	if len(ids) != len(want) {
		t.Fatalf("expected %d ids, got %d", len(want), len(ids))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("expected id %d at position %d, got %d", want[i], i, ids[i])
		}
	}
}

func TestGetTrack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/music" || r.URL.Query().Get("id") != "42" {
			t.Errorf("unexpected request %s?%s", r.URL.Path, r.URL.RawQuery)
		}

		json.NewEncoder(w).Encode(TrackDetail{
			SongID:    42,
			Name:      "READY!!",
			Kana:      "れでぃ",
			MusicType: "as",
			Member: []Member{
				{Name: "Alice", Production: "765"},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	defer client.Close()

	detail, err := client.GetTrack(context.Background(), 42)
	if err != nil {
		t.Fatalf("failed to get track: %v", err)
	}

	if detail.SongID != 42 || detail.Name != "READY!!" || detail.MusicType != "as" {
		t.Errorf("unexpected detail: %+v", detail)
	}
	if len(detail.Member) != 1 || detail.Member[0].Name != "Alice" {
		t.Errorf("unexpected members: %+v", detail.Member)
	}
}

func TestGetLiveEventOptionalFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// A setlist song may carry a unit roster, a member roster, both,
		// or a null title
		json.NewEncoder(w).Encode(map[string]any{
			"tax_id": 9,
			"name":   "Anniversary Live",
			"date":   "2023-10-01",
			"member": []map[string]any{{"name": "Alice", "production": "765"}},
			"song": []map[string]any{
				{"name": "Opening", "unit": []map[string]any{
					{"name": "Unit A", "member": []map[string]any{{"name": "Bob"}}},
				}},
				{"name": nil},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	defer client.Close()

	detail, err := client.GetLiveEvent(context.Background(), 9)
	if err != nil {
		t.Fatalf("failed to get live event: %v", err)
	}

	if len(detail.Song) != 2 {
		t.Fatalf("expected 2 setlist songs, got %d", len(detail.Song))
	}
	if detail.Song[0].Name == nil || *detail.Song[0].Name != "Opening" {
		t.Errorf("unexpected first song: %+v", detail.Song[0])
	}
	if detail.Song[1].Name != nil {
		t.Error("expected nil title to decode as nil")
	}
	if len(detail.Song[0].Unit) != 1 || detail.Song[0].Unit[0].Member[0].Name != "Bob" {
		t.Errorf("unexpected unit roster: %+v", detail.Song[0].Unit)
	}
}

func TestUpstreamFailurePropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	defer client.Close()

	if _, err := client.ListTrackIDs(context.Background()); err == nil {
		t.Error("expected error on non-200 response")
	}
	if _, err := client.GetTrack(context.Background(), 1); err == nil {
		t.Error("expected error on non-200 response")
	}
}
