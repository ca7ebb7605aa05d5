// Command liquefy calculates SPT liquefaction indexes from the command line.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/liquefy/internal/config"
	"github.com/JonMunkholm/liquefy/internal/core"
	"github.com/JonMunkholm/liquefy/internal/logging"
	"github.com/JonMunkholm/liquefy/internal/storage"
)

var (
	rootCmd = &cobra.Command{
		Use:           "liquefy",
		Short:         "SPT seismic liquefaction index calculator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.store != nil {
				_ = app.store.Close()
			}
		},
	}
	logLevel string
)

// app holds what every subcommand shares once setup has run.
var app struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   storage.Store
	service *core.Service
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if core.IsUserFacing(err) {
			fmt.Fprintln(os.Stderr, core.FormatUserError(err))
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); defaults to LOG_LEVEL")

	rootCmd.AddCommand(calcCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(fieldsCmd)
	rootCmd.AddCommand(measuresCmd)
}

// setup loads .env and the configuration, then opens the configured store.
// Logs go to stderr so reports on stdout stay clean.
func setup(cmd *cobra.Command) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	logger := logging.Setup(cmd.ErrOrStderr(), level, cfg.Logging.Format)

	store, err := storage.Open(cmd.Context(), cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("open result store: %w", err)
	}

	app.cfg = cfg
	app.logger = logger
	app.store = store
	app.service = core.NewService(store, core.Options{
		Import:      cfg.Import,
		Calculation: cfg.Calculation,
	})
	return nil
}
