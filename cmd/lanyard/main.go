// Command lanyard is the offline companion to lanyard-server: it scans,
// checks, searches, and tangles a notebook of conference session notes
// straight against the local database.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lanyardhq/lanyard/internal/config"
	"github.com/lanyardhq/lanyard/internal/store"
)

var verbose bool

func main() {
	root := &cobra.Command{
		Use:           "lanyard",
		Short:         "Knowledge base tooling for conference session notes",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newScanCmd(),
		newCheckCmd(),
		newIndexCmd(),
		newSearchCmd(),
		newShowCmd(),
		newTangleCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// env bundles everything a command needs to talk to the notebook.
type env struct {
	cfg    *config.Config
	db     *store.DB
	logger *slog.Logger
}

func openEnv() (*env, error) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	return &env{cfg: cfg, db: db, logger: logger}, nil
}

func (e *env) close() {
	e.db.Close()
}
