package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ymkz/karadex/internal/catalog"
	"github.com/ymkz/karadex/internal/liveevent"
	"github.com/ymkz/karadex/internal/store"
	"github.com/ymkz/karadex/internal/util"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Crawl live events and their setlists from the catalog",
	Long: `Fetch live events not yet stored, up to the configured cap per run.

Each event is stored with the brand tags inferred from its performer roster
and its setlist in authored order. Run 'karadex match' afterwards to bind
karaoke request numbers to the setlist entries.

This is intentionally not part of 'karadex crawl'; schedule it separately
when setlist data is wanted.`,
	RunE: runEvents,
}

func init() {
	rootCmd.AddCommand(eventsCmd)

	eventsCmd.Flags().Int("event-batch", 5, "max new live events fetched per run")
	viper.BindPFlag("event-batch", eventsCmd.Flags().Lookup("event-batch"))
}

func runEvents(cmd *cobra.Command, args []string) error {
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

	catalogClient := catalog.NewClient(viper.GetString("catalog-endpoint"))
	defer catalogClient.Close()

	crawler := liveevent.New(&liveevent.Config{
		Store:   db,
		Catalog: catalogClient,
		Logger:  logger,
	})

	result, err := crawler.Run(ctx, viper.GetInt("event-batch"))
	if err != nil {
		return fmt.Errorf("live event crawl failed: %w", err)
	}

	util.InfoLog("Live events: %d remote, %d newly stored", result.RemoteEvents, result.Stored)
	return nil
}
