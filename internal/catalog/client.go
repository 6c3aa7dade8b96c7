// Package catalog wraps the Fujiwarahajime catalog API, the external source
// of truth for tracks and live events.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ymkz/karadex/internal/util"
)

const (
	// DefaultBaseURL is the catalog API base URL
	DefaultBaseURL = "https://api.fujiwarahaji.me/v3"

	// UserAgent identifies this application to the catalog API
	UserAgent = "karadex/1.0 (https://github.com/ymkz/karadex)"

	// RateLimit spaces out requests to stay polite with the upstream
	RateLimit = 500 * time.Millisecond
)

// Client handles catalog API requests with rate limiting
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *time.Ticker
}

// NewClient creates a new catalog API client
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:     baseURL,
		rateLimiter: time.NewTicker(RateLimit),
	}
}

// Close releases resources used by the client
func (c *Client) Close() {
	if c.rateLimiter != nil {
		c.rateLimiter.Stop()
	}
}

// Member is a performer attached to a track or live event
type Member struct {
	Name       string `json:"name"`
	TaxID      int64  `json:"tax_id"`
	Production string `json:"production"`
	CV         string `json:"cv"`
}

// TrackDetail is the full catalog record for one track
type TrackDetail struct {
	SongID    int64    `json:"song_id"`
	Name      string   `json:"name"`
	Kana      string   `json:"kana"`
	MusicType string   `json:"music_type"`
	Member    []Member `json:"member"`
}

// LiveEventSummary is one entry of the live event list
type LiveEventSummary struct {
	TaxID int64  `json:"tax_id"`
	Name  string `json:"name"`
	Date  string `json:"date"`
}

// Unit is a named performing unit within a setlist song
type Unit struct {
	Name   string   `json:"name"`
	Member []Member `json:"member"`
}

// SetlistSong is one performed song slot within a live event detail
type SetlistSong struct {
	Name   *string  `json:"name"`
	SongID *int64   `json:"song_id"`
	Unit   []Unit   `json:"unit"`
	Member []Member `json:"member"`
}

// LiveEventDetail is the full catalog record for one live event
type LiveEventDetail struct {
	TaxID  int64         `json:"tax_id"`
	Name   string        `json:"name"`
	Date   string        `json:"date"`
	Member []Member      `json:"member"`
	Song   []SetlistSong `json:"song"`
}

// ListTrackIDs returns all track ids in catalog order
func (c *Client) ListTrackIDs(ctx context.Context) ([]int64, error) {
	var list []struct {
		SongID int64 `json:"song_id"`
	}

	urlStr := fmt.Sprintf("%s/list?type=music&order=asc", c.baseURL)
	if err := c.getJSON(ctx, urlStr, &list); err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(list))
	for _, entry := range list {
		ids = append(ids, entry.SongID)
	}

	util.DebugLog("catalog: listed %d track ids", len(ids))
	return ids, nil
}

// GetTrack fetches the full detail record for one track
func (c *Client) GetTrack(ctx context.Context, id int64) (*TrackDetail, error) {
	var detail TrackDetail

	urlStr := fmt.Sprintf("%s/music?id=%d", c.baseURL, id)
	if err := c.getJSON(ctx, urlStr, &detail); err != nil {
		return nil, err
	}

	util.DebugLog("catalog: fetched track %d (%s)", detail.SongID, detail.Name)
	return &detail, nil
}

// ListLiveEvents returns all live events known to the catalog
func (c *Client) ListLiveEvents(ctx context.Context) ([]LiveEventSummary, error) {
	var list []LiveEventSummary

	urlStr := fmt.Sprintf("%s/list?type=live", c.baseURL)
	if err := c.getJSON(ctx, urlStr, &list); err != nil {
		return nil, err
	}

	util.DebugLog("catalog: listed %d live events", len(list))
	return list, nil
}

// GetLiveEvent fetches the full detail record for one live event,
// including the performer roster and the setlist
func (c *Client) GetLiveEvent(ctx context.Context, taxID int64) (*LiveEventDetail, error) {
	var detail LiveEventDetail

	urlStr := fmt.Sprintf("%s/tax?id=%d", c.baseURL, taxID)
	if err := c.getJSON(ctx, urlStr, &detail); err != nil {
		return nil, err
	}

	util.DebugLog("catalog: fetched live event %d (%s)", detail.TaxID, detail.Name)
	return &detail, nil
}

// getJSON executes a rate-limited GET request and decodes the JSON response
func (c *Client) getJSON(ctx context.Context, urlStr string, out any) error {
	c.waitForRateLimit()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status %d from %s: %s",
			util.ErrUpstream, resp.StatusCode, urlStr, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// waitForRateLimit spaces requests out to the configured rate
func (c *Client) waitForRateLimit() {
	<-c.rateLimiter.C
}
