// Package ingest diffs the remote track catalog against the store and pulls
// in a capped batch of unseen tracks per run.
package ingest

import (
	"context"
	"fmt"

	"github.com/ymkz/karadex/internal/catalog"
	"github.com/ymkz/karadex/internal/report"
	"github.com/ymkz/karadex/internal/store"
	"github.com/ymkz/karadex/internal/util"
)

// CatalogClient is the slice of the catalog API the ingestor needs
type CatalogClient interface {
	ListTrackIDs(ctx context.Context) ([]int64, error)
	GetTrack(ctx context.Context, id int64) (*catalog.TrackDetail, error)
}

// Ingestor pulls unseen catalog tracks into the store
type Ingestor struct {
	store   *store.Store
	catalog CatalogClient
	logger  *report.EventLogger
}

// Config holds ingestor configuration
type Config struct {
	Store   *store.Store
	Catalog CatalogClient
	Logger  *report.EventLogger
}

// New creates a new Ingestor
func New(cfg *Config) *Ingestor {
	logger := cfg.Logger
	if logger == nil {
		logger = report.NullLogger()
	}

	return &Ingestor{
		store:   cfg.Store,
		catalog: cfg.Catalog,
		logger:  logger,
	}
}

// Result represents ingest results
type Result struct {
	RemoteIDs int
	UnseenIDs int
	Ingested  int
}

// Run fetches the full remote id list, drops ids already stored, and ingests
// detail for at most maxBatch of the remaining ids in catalog order.
// A failed detail fetch aborts the batch; the skipped ids are still unseen
// and will be picked up by the next run.
func (i *Ingestor) Run(ctx context.Context, maxBatch int) (*Result, error) {
	remoteIDs, err := i.catalog.ListTrackIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog tracks: %w", err)
	}

	stored, err := i.store.FilterStoredTrackIDs(remoteIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load stored track ids: %w", err)
	}

	var unseen []int64
	for _, id := range remoteIDs {
		if !stored[id] {
			unseen = append(unseen, id)
		}
	}

	result := &Result{
		RemoteIDs: len(remoteIDs),
		UnseenIDs: len(unseen),
	}

	batch := unseen
	if len(batch) > maxBatch {
		batch = batch[:maxBatch]
	}

	util.InfoLog("Ingest: %d remote ids, %d unseen, fetching %d",
		result.RemoteIDs, result.UnseenIDs, len(batch))

	for _, id := range batch {
		detail, err := i.catalog.GetTrack(ctx, id)
		if err != nil {
			i.logger.Log(report.Event{
				Level:   report.LevelError,
				Event:   report.EventError,
				TrackID: id,
				Error:   err.Error(),
			})
			return result, fmt.Errorf("failed to fetch track %d: %w", id, err)
		}

		track := trackFromDetail(detail)
		if err := i.store.UpsertTrack(track); err != nil {
			return result, err
		}

		i.logger.Log(report.Event{
			Level:   report.LevelInfo,
			Event:   report.EventIngest,
			TrackID: track.ID,
			Title:   track.Title,
			Artist:  track.Artist,
		})
		util.DebugLog("Ingest: stored track %d (%s)", track.ID, track.Title)
		result.Ingested++
	}

	util.SuccessLog("Ingest: stored %d tracks", result.Ingested)
	return result, nil
}

// trackFromDetail maps a catalog detail record to a track row
func trackFromDetail(detail *catalog.TrackDetail) *store.Track {
	var artist string
	for idx, member := range detail.Member {
		if idx > 0 {
			artist += ","
		}
		artist += member.Name
	}

	return &store.Track{
		ID:        detail.SongID,
		Title:     detail.Name,
		TitleKana: detail.Kana,
		Artist:    artist,
		BrandName: FoldBrand(detail.MusicType),
	}
}

// FoldBrand collapses raw brand aliases into canonical tags. The catalog
// tags 765PRO ALLSTARS and MILLION LIVE tracks separately ("as" and "ml");
// both are the 765 brand for karaoke purposes.
func FoldBrand(raw string) string {
	if raw == "as" || raw == "ml" {
		return "765"
	}
	return raw
}
