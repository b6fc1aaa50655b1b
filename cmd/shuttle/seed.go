package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pkordes/shuttle-control/internal/repo"
	"github.com/pkordes/shuttle-control/internal/seed"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write the default users, passengers and conductors into empty storage",
	Long: `seed writes every seed collection whose storage key is absent. Existing
collections, even empty ones, are left alone. --file replaces the built-in
defaults with a YAML file of the same shape.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openMigrated(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		return applySeed(ctx, st)
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "", "YAML seed file (defaults to the built-in data)")
}

// applySeed seeds s from --file or the built-in defaults.
func applySeed(ctx context.Context, s repo.Store) error {
	var (
		data seed.Data
		err  error
	)
	if seedFile != "" {
		b, readErr := os.ReadFile(seedFile)
		if readErr != nil {
			return fmt.Errorf("read seed file: %w", readErr)
		}
		data, err = seed.Parse(b)
	} else {
		data, err = seed.Defaults()
	}
	if err != nil {
		return err
	}

	res, err := seed.Apply(ctx, s, data, time.Now())
	if err != nil {
		return err
	}
	logger.Info("seed applied",
		"users", res.Users,
		"passengers", res.Passengers,
		"conductors", res.Conductors,
	)
	return nil
}
