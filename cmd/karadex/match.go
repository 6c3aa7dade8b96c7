package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ymkz/karadex/internal/match"
	"github.com/ymkz/karadex/internal/store"
	"github.com/ymkz/karadex/internal/util"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Bind karaoke request numbers to live-event setlist entries",
	Long: `Match every stored live event's setlist against the stored karaoke
listings by fuzzy title pattern.

Entries that already carry a request number are left alone. Events without
inferred brand tags are skipped. Matching quality improves as 'karadex
crawl' fills in more karaoke listings, so re-running this is cheap and safe.`,
	RunE: runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	applyLogFlags()

	dbPath := viper.GetString("db")
	util.InfoLog("Opening database: %s", dbPath)
	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	logger := newEventLogger()
	defer logger.Close()

	matcher := match.New(&match.Config{
		Store:  db,
		Logger: logger,
	})

	result, err := matcher.Run(ctx)
	if err != nil {
		return fmt.Errorf("setlist matching failed: %w", err)
	}

	util.InfoLog("Setlists: %d events visited, %d skipped, %d songs bound",
		result.EventsVisited, result.EventsSkipped, result.SongsBound)
	return nil
}
