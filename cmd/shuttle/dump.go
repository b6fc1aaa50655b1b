package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pkordes/shuttle-control/internal/repo"
)

var (
	exportOut  string
	importIn   string
	resetForce bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every stored collection as one JSON document keyed by storage key",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openMigrated(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		d, err := repo.Export(ctx, st)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if exportOut != "" && exportOut != "-" {
			f, err := os.Create(exportOut)
			if err != nil {
				return fmt.Errorf("create %s: %w", exportOut, err)
			}
			defer f.Close()
			w = f
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("write dump: %w", err)
		}
		logger.Info("export complete", "keys", len(d))
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Overwrite stored collections from a JSON dump",
	Long: `import reads a document produced by export, or a browser storage export
whose values are JSON strings, and overwrites every key it contains. A dump
with an unknown key is rejected before anything is written.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		var r io.Reader = cmd.InOrStdin()
		if importIn != "" && importIn != "-" {
			f, err := os.Open(importIn)
			if err != nil {
				return fmt.Errorf("open %s: %w", importIn, err)
			}
			defer f.Close()
			r = f
		}
		var d repo.Dump
		if err := json.NewDecoder(r).Decode(&d); err != nil {
			return fmt.Errorf("read dump: %w", err)
		}

		st, err := openMigrated(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := repo.Import(ctx, st, d); err != nil {
			return err
		}
		logger.Info("import complete", "keys", len(d))
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every stored collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetForce {
			return errors.New("reset deletes all data; pass --yes to confirm")
		}
		ctx := cmd.Context()
		st, err := openMigrated(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := repo.Clear(ctx, st); err != nil {
			return err
		}
		logger.Warn("all collections deleted")
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "file to write (default stdout)")
	importCmd.Flags().StringVarP(&importIn, "in", "i", "", "file to read (default stdin)")
	resetCmd.Flags().BoolVar(&resetForce, "yes", false, "confirm deleting all data")
}
