package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ymkz/karadex/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store statistics",
	Long: `Print row counts and reconciliation coverage from the local database.

Useful to check crawl progress between scheduled runs.`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	applyLogFlags()

	db, err := store.Open(viper.GetString("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	totalTracks, withRelease, err := db.CountTracks()
	if err != nil {
		return err
	}
	karaokeSongs, err := db.CountKaraokeSongs()
	if err != nil {
		return err
	}
	liveEvents, err := db.CountLiveEvents()
	if err != nil {
		return err
	}

	fmt.Printf("Tracks:          %d\n", totalTracks)
	fmt.Printf("  with release:  %d\n", withRelease)
	fmt.Printf("Karaoke songs:   %d\n", karaokeSongs)
	fmt.Printf("Live events:     %d\n", liveEvents)

	return nil
}
