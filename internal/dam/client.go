// Package dam wraps the DAM Denmoku search API, the karaoke vendor source.
package dam

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ymkz/karadex/internal/util"
)

const (
	// DefaultEndpoint is the Denmoku search API base URL
	DefaultEndpoint = "https://csgw.clubdam.com/dkwebsys/search-api"

	// pageSize is the vendor's maximum results per page
	pageSize = 100

	// maxPages caps pagination regardless of what the API reports, to bound
	// tail latency per title
	maxPages = 5
)

// Client handles Denmoku search API requests
type Client struct {
	httpClient *http.Client
	endpoint   string
	authKey    string
}

// NewClient creates a new Denmoku search client
func NewClient(endpoint, authKey string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		endpoint: endpoint,
		authKey:  authKey,
	}
}

// Entry is one karaoke listing returned by the vendor. Only the fields the
// reconciler consumes are decoded; the API returns many more.
type Entry struct {
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	RequestNo   string `json:"requestNo"`
	ReleaseDate string `json:"releaseDate"`
}

// searchRequest is the Denmoku keyword-search request body. The vendor
// expects most numeric-looking values as strings.
type searchRequest struct {
	AuthKey       string `json:"authKey"`
	CompID        string `json:"compId"`
	DispCount     string `json:"dispCount"`
	Keyword       string `json:"keyword"`
	ModelTypeCode string `json:"modelTypeCode"`
	PageNo        int    `json:"pageNo"`
	SerialNo      string `json:"serialNo"`
	Sort          string `json:"sort"`
}

// searchResponse is the Denmoku keyword-search response envelope
type searchResponse struct {
	List []Entry `json:"list"`
	Data struct {
		HasNext bool `json:"hasNext"`
	} `json:"data"`
}

// SearchByTitle returns every karaoke listing matching the given title,
// following the vendor's pagination sequentially up to the page cap.
func (c *Client) SearchByTitle(ctx context.Context, title string) ([]Entry, error) {
	var entries []Entry

	for page := 1; page <= maxPages; page++ {
		resp, err := c.searchPage(ctx, title, page)
		if err != nil {
			return nil, err
		}

		entries = append(entries, resp.List...)

		if !resp.Data.HasNext {
			break
		}
	}

	util.DebugLog("dam: %q matched %d entries", title, len(entries))
	return entries, nil
}

// searchPage requests a single result page
func (c *Client) searchPage(ctx context.Context, keyword string, page int) (*searchResponse, error) {
	reqBody := searchRequest{
		AuthKey:       c.authKey,
		CompID:        "1",
		DispCount:     fmt.Sprintf("%d", pageSize),
		Keyword:       keyword,
		ModelTypeCode: "1",
		PageNo:        page,
		SerialNo:      "AT00001", // LIVE DAM Ai
		Sort:          "2",       // by popularity
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	urlStr := c.endpoint + "/SearchMusicByKeywordApi"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, urlStr, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d from %s: %s",
			util.ErrUpstream, resp.StatusCode, urlStr, string(body))
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}
