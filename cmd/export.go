package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadscore/internal/leadfile"
)

var exportOutPath string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export scored leads to a CSV file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("store"); err != nil {
			return err
		}

		scored, err := scoredSnapshot(ctx)
		if err != nil {
			return err
		}

		f, err := os.Create(exportOutPath)
		if err != nil {
			return eris.Wrapf(err, "export: create %s", exportOutPath)
		}
		defer f.Close() //nolint:errcheck

		if err := leadfile.WriteCSV(f, scored); err != nil {
			return err
		}

		zap.L().Info("export complete", zap.Int("leads", len(scored)), zap.String("out", exportOutPath))
		fmt.Printf("Exported %d scored leads to %s\n", len(scored), exportOutPath)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOutPath, "out", "leads_export.csv", "output CSV path")
	rootCmd.AddCommand(exportCmd)
}
