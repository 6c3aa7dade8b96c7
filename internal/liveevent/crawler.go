// Package liveevent pulls live events and their setlists from the catalog.
package liveevent

import (
	"context"
	"fmt"
	"strings"

	"github.com/ymkz/karadex/internal/catalog"
	"github.com/ymkz/karadex/internal/report"
	"github.com/ymkz/karadex/internal/store"
	"github.com/ymkz/karadex/internal/util"
)

// CatalogClient is the slice of the catalog API the crawler needs
type CatalogClient interface {
	ListLiveEvents(ctx context.Context) ([]catalog.LiveEventSummary, error)
	GetLiveEvent(ctx context.Context, taxID int64) (*catalog.LiveEventDetail, error)
}

// Crawler stores unseen live events with their ordered setlists
type Crawler struct {
	store   *store.Store
	catalog CatalogClient
	logger  *report.EventLogger
}

// Config holds crawler configuration
type Config struct {
	Store   *store.Store
	Catalog CatalogClient
	Logger  *report.EventLogger
}

// New creates a new Crawler
func New(cfg *Config) *Crawler {
	logger := cfg.Logger
	if logger == nil {
		logger = report.NullLogger()
	}

	return &Crawler{
		store:   cfg.Store,
		catalog: cfg.Catalog,
		logger:  logger,
	}
}

// Result represents live-event crawl results
type Result struct {
	RemoteEvents int
	Stored       int
}

// Run lists all live events and fetches detail for at most maxBatch events
// not yet stored, preserving setlist order.
func (c *Crawler) Run(ctx context.Context, maxBatch int) (*Result, error) {
	summaries, err := c.catalog.ListLiveEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list live events: %w", err)
	}

	result := &Result{RemoteEvents: len(summaries)}

	for _, summary := range summaries {
		if result.Stored >= maxBatch {
			break
		}

		stored, err := c.store.HasLiveEvent(summary.TaxID)
		if err != nil {
			return result, err
		}
		if stored {
			continue
		}

		detail, err := c.catalog.GetLiveEvent(ctx, summary.TaxID)
		if err != nil {
			c.logger.Log(report.Event{
				Level:   report.LevelError,
				Event:   report.EventError,
				EventID: summary.TaxID,
				Error:   err.Error(),
			})
			return result, fmt.Errorf("failed to fetch live event %d: %w", summary.TaxID, err)
		}

		ev := eventFromDetail(summary, detail)
		if err := c.store.InsertLiveEvent(ev); err != nil {
			return result, err
		}

		c.logger.Log(report.Event{
			Level:   report.LevelInfo,
			Event:   report.EventLive,
			EventID: ev.ID,
			Title:   ev.Title,
		})
		util.DebugLog("Events: stored %q with %d setlist entries", ev.Title, len(ev.Songs))
		result.Stored++
	}

	util.SuccessLog("Events: stored %d live events", result.Stored)
	return result, nil
}

// eventFromDetail maps a catalog live event to its stored form
func eventFromDetail(summary catalog.LiveEventSummary, detail *catalog.LiveEventDetail) *store.LiveEvent {
	brands := inferBrands(detail.Member)

	ev := &store.LiveEvent{
		ID:         summary.TaxID,
		Title:      summary.Name,
		Date:       summary.Date,
		BrandNames: brands,
	}

	// Without a single brand tag the event is not karaoke-reconcilable and
	// its setlist is not worth keeping
	if len(brands) == 0 {
		return ev
	}

	for _, song := range detail.Song {
		if song.Name == nil {
			continue
		}

		ev.Songs = append(ev.Songs, store.LiveEventSong{
			Position: len(ev.Songs),
			Title:    *song.Name,
			Artist:   strings.Join(setlistArtists(song), "、"),
		})
	}

	return ev
}

// inferBrands derives the set of brand tags from the event's performer
// roster. The catalog tags 765PRO ALLSTARS performers with production "765",
// which is recorded under its catalog brand tag "as".
func inferBrands(members []catalog.Member) []string {
	seen := make(map[string]bool)
	var brands []string

	for _, member := range members {
		production := member.Production
		if production == "" {
			continue
		}
		if production == "765" {
			production = "as"
		}
		if !seen[production] {
			seen[production] = true
			brands = append(brands, production)
		}
	}

	return brands
}

// setlistArtists flattens a setlist song's unit rosters and direct members
// into one performer list
func setlistArtists(song catalog.SetlistSong) []string {
	var artists []string

	for _, unit := range song.Unit {
		for _, member := range unit.Member {
			artists = append(artists, member.Name)
		}
	}
	for _, member := range song.Member {
		artists = append(artists, member.Name)
	}

	return artists
}
