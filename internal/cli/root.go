// Package cli implements the bloom CLI commands.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/petalrow/bloom/internal/catalog"
	"github.com/petalrow/bloom/internal/config"
)

var (
	cfgPath string
	dbFlag  string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "bloom",
	Short: "Conversational flower catalog assistant",
	Long:  "A flower shopping assistant. Tell it what you want in plain language and it remembers your preferences across the conversation while querying a SQLite catalog.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			exitErr("load config", err)
		}
		setupLogger(cfg.Log.Level)
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Config file path (YAML)")
	RootCmd.PersistentFlags().StringVarP(&dbFlag, "db", "d", "", "Database path (default: $BLOOM_DB_PATH or ~/.bloom/catalog.db)")
}

// loadConfig resolves configuration with the --db flag taking priority
// over the file and environment layers.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if dbFlag != "" {
		cfg.DBPath = dbFlag
	}
	return cfg, nil
}

func setupLogger(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(h))
}

func openStore(cfg *config.Config) (*catalog.Store, error) {
	return catalog.New(cfg.DBPath)
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
