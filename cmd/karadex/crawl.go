package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ymkz/karadex/internal/catalog"
	"github.com/ymkz/karadex/internal/dam"
	"github.com/ymkz/karadex/internal/ingest"
	"github.com/ymkz/karadex/internal/reconcile"
	"github.com/ymkz/karadex/internal/report"
	"github.com/ymkz/karadex/internal/store"
	"github.com/ymkz/karadex/internal/util"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Ingest new catalog tracks and reconcile against the karaoke vendor",
	Long: `Run one crawl cycle:

1. Ingest: diff the remote catalog id list against the store and fetch a
   capped batch of unseen tracks.
2. Reconcile: re-check the least-recently-checked tracks against the
   karaoke vendor and record accepted matches.

Both batch sizes are deliberately small so repeated scheduled runs spread
the load; the run is idempotent and always resumable.`,
	RunE: runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)

	crawlCmd.Flags().Int("ingest-batch", 10, "max new tracks ingested per run")
	crawlCmd.Flags().Int("reconcile-batch", 10, "max tracks reconciled per run")
	viper.BindPFlag("ingest-batch", crawlCmd.Flags().Lookup("ingest-batch"))
	viper.BindPFlag("reconcile-batch", crawlCmd.Flags().Lookup("reconcile-batch"))
}

func runCrawl(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	applyLogFlags()

	dbPath := viper.GetString("db")
	authKey := viper.GetString("dam-auth-key")
	if authKey == "" {
		return fmt.Errorf("%w: dam-auth-key is required (set KARADEX_DAM_AUTH_KEY)", util.ErrInvalidConfig)
	}

	util.InfoLog("Opening database: %s", dbPath)
	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	logger := newEventLogger()
	defer logger.Close()

	catalogClient := catalog.NewClient(viper.GetString("catalog-endpoint"))
	defer catalogClient.Close()
	damClient := dam.NewClient(viper.GetString("dam-endpoint"), authKey)

	summary := &report.CrawlSummary{
		StartedAt:    time.Now(),
		DatabasePath: dbPath,
		EventLogPath: logger.Path(),
	}

	// Phase 1: ingest unseen catalog tracks
	util.InfoLog("=== Phase 1: Catalog Ingest ===")
	ingestor := ingest.New(&ingest.Config{
		Store:   db,
		Catalog: catalogClient,
		Logger:  logger,
	})

	ingestResult, err := ingestor.Run(ctx, viper.GetInt("ingest-batch"))
	if ingestResult != nil {
		summary.RemoteIDs = ingestResult.RemoteIDs
		summary.UnseenIDs = ingestResult.UnseenIDs
		summary.TracksIngested = ingestResult.Ingested
	}
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	// Phase 2: reconcile stalest tracks against the vendor
	util.InfoLog("=== Phase 2: Karaoke Reconciliation ===")
	reconciler := reconcile.New(&reconcile.Config{
		Store:    db,
		Karaoke:  damClient,
		Logger:   logger,
		Progress: util.StderrIsTerminal() && !viper.GetBool("quiet"),
	})

	reconcileResult, err := reconciler.Run(ctx, viper.GetInt("reconcile-batch"))
	if reconcileResult != nil {
		summary.TracksReconciled = reconcileResult.TracksVisited
		summary.EntriesClassified = reconcileResult.EntriesClassified
		summary.MatchesAccepted = reconcileResult.MatchesAccepted
		summary.MatchesRejected = reconcileResult.MatchesRejected
		summary.ReleaseDatesSet = reconcileResult.ReleaseDatesSet
	}
	if err != nil {
		return fmt.Errorf("reconcile failed: %w", err)
	}

	summary.Duration = time.Since(summary.StartedAt)
	summary.Print()
	return nil
}

// newEventLogger opens the per-run JSONL event log, falling back to a null
// logger so a full disk never blocks the crawl
func newEventLogger() *report.EventLogger {
	logLevel := report.LevelInfo
	if viper.GetBool("quiet") {
		logLevel = report.LevelWarning
	} else if viper.GetBool("verbose") {
		logLevel = report.LevelDebug
	}

	logger, err := report.NewEventLogger("artifacts", logLevel)
	if err != nil {
		util.WarnLog("Failed to create event logger: %v", err)
		return report.NullLogger()
	}

	if logger.Path() != "" {
		util.InfoLog("Event log: %s", logger.Path())
	}
	return logger
}
