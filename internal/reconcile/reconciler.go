// Package reconcile revisits stored tracks in staleness order and records
// which of them the karaoke vendor carries.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/ymkz/karadex/internal/dam"
	"github.com/ymkz/karadex/internal/report"
	"github.com/ymkz/karadex/internal/store"
	"github.com/ymkz/karadex/internal/util"
)

// KaraokeClient is the slice of the vendor API the reconciler needs
type KaraokeClient interface {
	SearchByTitle(ctx context.Context, title string) ([]dam.Entry, error)
}

// Reconciler cross-references tracks against the karaoke vendor
type Reconciler struct {
	store    *store.Store
	karaoke  KaraokeClient
	logger   *report.EventLogger
	progress bool
}

// Config holds reconciler configuration
type Config struct {
	Store    *store.Store
	Karaoke  KaraokeClient
	Logger   *report.EventLogger
	Progress bool // show a progress bar over the batch
}

// New creates a new Reconciler
func New(cfg *Config) *Reconciler {
	logger := cfg.Logger
	if logger == nil {
		logger = report.NullLogger()
	}

	return &Reconciler{
		store:    cfg.Store,
		karaoke:  cfg.Karaoke,
		logger:   logger,
		progress: cfg.Progress,
	}
}

// Result represents reconciliation results
type Result struct {
	TracksVisited     int
	EntriesClassified int
	MatchesAccepted   int
	MatchesRejected   int
	ReleaseDatesSet   int
}

// Run selects at most maxBatch tracks in ascending last-crawl order, stamps
// all of them to now, then queries the vendor for each and stores accepted
// matches. Stamping first means a crash mid-batch cannot make the same track
// jump the queue ahead of its peers.
func (r *Reconciler) Run(ctx context.Context, maxBatch int) (*Result, error) {
	tracks, err := r.store.StalestTracks(maxBatch)
	if err != nil {
		return nil, fmt.Errorf("failed to select tracks: %w", err)
	}

	now := time.Now().UTC()
	for _, track := range tracks {
		if err := r.store.TouchTrackCrawl(track.ID, now); err != nil {
			return nil, err
		}
	}

	util.InfoLog("Reconcile: visiting %d tracks", len(tracks))

	var bar *progressbar.ProgressBar
	if r.progress && len(tracks) > 0 {
		bar = progressbar.Default(int64(len(tracks)), "reconciling")
	}

	result := &Result{}
	for _, track := range tracks {
		if err := r.reconcileTrack(ctx, track, result); err != nil {
			return result, err
		}
		result.TracksVisited++
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	util.SuccessLog("Reconcile: %d tracks visited, %d matches accepted",
		result.TracksVisited, result.MatchesAccepted)
	return result, nil
}

// reconcileTrack queries the vendor for one track and persists the outcome
func (r *Reconciler) reconcileTrack(ctx context.Context, track *store.Track, result *Result) error {
	util.DebugLog("Reconcile: searching vendor for %q", track.Title)

	entries, err := r.karaoke.SearchByTitle(ctx, track.Title)
	if err != nil {
		r.logger.Log(report.Event{
			Level:   report.LevelError,
			Event:   report.EventError,
			TrackID: track.ID,
			Title:   track.Title,
			Error:   err.Error(),
		})
		return fmt.Errorf("vendor search for track %d failed: %w", track.ID, err)
	}

	var earliest *time.Time
	for _, entry := range entries {
		result.EntriesClassified++

		if !IsMatch(track, &entry) {
			result.MatchesRejected++
			r.logger.Log(report.Event{
				Level:     report.LevelDebug,
				Event:     report.EventSkip,
				TrackID:   track.ID,
				Title:     entry.Title,
				Artist:    entry.Artist,
				RequestNo: entry.RequestNo,
				Reason:    "not classified as the same work",
			})
			continue
		}

		match := &store.KaraokeSong{
			RequestNo:   entry.RequestNo,
			TrackID:     track.ID,
			Title:       entry.Title,
			ReleaseDate: entry.ReleaseDate,
		}
		if err := r.store.UpsertKaraokeSong(match); err != nil {
			return err
		}

		result.MatchesAccepted++
		r.logger.Log(report.Event{
			Level:     report.LevelInfo,
			Event:     report.EventClassify,
			TrackID:   track.ID,
			Title:     entry.Title,
			Artist:    entry.Artist,
			RequestNo: entry.RequestNo,
		})

		if released, err := time.Parse("2006-01-02", entry.ReleaseDate); err == nil {
			if earliest == nil || released.Before(*earliest) {
				earliest = &released
			}
		}
	}

	// Monotonic-decrease merge: the stored date only ever moves earlier
	if earliest != nil {
		if track.FirstKaraokeRelease == nil || earliest.Before(*track.FirstKaraokeRelease) {
			if err := r.store.SetFirstKaraokeRelease(track.ID, *earliest); err != nil {
				return err
			}
			result.ReleaseDatesSet++
			util.DebugLog("Reconcile: first karaoke release for %q is %s",
				track.Title, earliest.Format("2006-01-02"))
		}
	}

	return nil
}
