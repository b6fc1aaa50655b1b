package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pkordes/shuttle-control/internal/config"
)

var (
	// Global flags
	envFile string

	// Populated by the root command before any subcommand runs.
	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "shuttle",
	Short: "Corporate shuttle passenger and trip control",
	Long: `shuttle records passenger check-ins and check-outs on a corporate
shuttle service. Passengers carry a QR card; every scan starts or finishes
their trip. Reports are produced as CSV, PDF and Excel files.

Configuration comes from environment variables, optionally loaded from a
.env file, and an optional YAML file named by SHUTTLE_CONFIG.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		// JSON handler writes machine-readable output suitable for log aggregators.
		var level slog.Level
		if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
			level = slog.LevelInfo
		}
		logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, reportCmd, exportCmd, importCmd, resetCmd)
}
