package report

import (
	"time"

	"github.com/ymkz/karadex/internal/util"
)

// CrawlSummary collects statistics for one crawl invocation
type CrawlSummary struct {
	StartedAt time.Time
	Duration  time.Duration

	// Ingest statistics
	RemoteIDs      int
	UnseenIDs      int
	TracksIngested int

	// Reconcile statistics
	TracksReconciled  int
	EntriesClassified int
	MatchesAccepted   int
	MatchesRejected   int
	ReleaseDatesSet   int

	// Paths
	DatabasePath string
	EventLogPath string
}

// Print writes the summary to the log
func (s *CrawlSummary) Print() {
	util.InfoLog("=== Crawl Summary ===")
	util.InfoLog("Duration: %s", s.Duration.Round(time.Millisecond))
	if s.RemoteIDs > 0 || s.TracksIngested > 0 {
		util.InfoLog("Catalog: %d remote ids, %d unseen, %d ingested",
			s.RemoteIDs, s.UnseenIDs, s.TracksIngested)
	}
	if s.TracksReconciled > 0 {
		util.InfoLog("Reconciled: %d tracks, %d vendor entries classified",
			s.TracksReconciled, s.EntriesClassified)
		util.InfoLog("Matches: %d accepted, %d rejected, %d release dates updated",
			s.MatchesAccepted, s.MatchesRejected, s.ReleaseDatesSet)
	}
	if s.EventLogPath != "" {
		util.InfoLog("Event log: %s", s.EventLogPath)
	}
}
