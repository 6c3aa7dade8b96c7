package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ymkz/karadex/internal/util"
)

var (
	// Version is set at build time
	Version = "dev"

	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "karadex",
		Short: "karadex - track which catalog songs are singable at karaoke",
		Long: `karadex crawls a music catalog and cross-references it against a karaoke
vendor's search API, keeping a local record of which tracks are available
on karaoke machines, under which request number, and since when.

It is designed to run as a scheduled job: each invocation ingests a small
batch of new catalog tracks and re-checks the least-recently-checked ones.`,
		Version: Version,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./configs/karadex.yaml)")
	rootCmd.PersistentFlags().String("db", "karadex.db", "state database file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "quiet output (errors only)")

	// Bind flags to viper
	viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))

	// Defaults for keys usually supplied by config file or environment
	viper.SetDefault("catalog-endpoint", "")
	viper.SetDefault("dam-endpoint", "")
	viper.SetDefault("ingest-batch", 10)
	viper.SetDefault("reconcile-batch", 10)
	viper.SetDefault("event-batch", 5)
	viper.SetDefault("listen", ":8080")
}

func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in common locations
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
		viper.SetConfigName("karadex")
		viper.SetConfigType("yaml")
	}

	// Read in environment variables that match (KARADEX_DAM_AUTH_KEY etc.)
	viper.SetEnvPrefix("KARADEX")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && !viper.GetBool("quiet") {
		util.InfoLog("Using config file: %s", viper.ConfigFileUsed())
	}
}

// applyLogFlags configures the logger from the global flags
func applyLogFlags() {
	util.SetVerbose(viper.GetBool("verbose"))
	util.SetQuiet(viper.GetBool("quiet"))
	if !util.StderrIsTerminal() {
		util.SetColors(false)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
