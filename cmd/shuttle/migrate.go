package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pkordes/shuttle-control/migrations"
)

var migrateStatus bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Long: `migrate applies the embedded SQL migrations to the configured sqlite or
postgres database. The mongo and memory drivers have no schema.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStorage(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		if st.sqlDB == nil {
			logger.Info("store driver has no schema to migrate", "store", cfg.StoreDriver)
			return nil
		}

		if migrateStatus {
			p, err := migrations.NewProvider(st.dialect, st.sqlDB)
			if err != nil {
				return err
			}
			statuses, err := p.Status(ctx)
			if err != nil {
				return fmt.Errorf("migration status: %w", err)
			}
			out := cmd.OutOrStdout()
			for _, s := range statuses {
				applied := "pending"
				if !s.AppliedAt.IsZero() {
					applied = s.AppliedAt.Format("2006-01-02 15:04:05")
				}
				fmt.Fprintf(out, "%05d  %-8s  %s  %s\n", s.Source.Version, s.State, applied, s.Source.Path)
			}
			return nil
		}

		return st.migrate(ctx)
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateStatus, "status", false, "print the state of every migration instead of applying them")
}
