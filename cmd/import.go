package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadscore/internal/leadfile"
	"github.com/sells-group/leadscore/internal/model"
)

var (
	importFilePath string
	importFTPURL   string
	importCharset  string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import leads from a CSV or XLSX file",
	Long: `Bulk-imports leads from a local CSV or XLSX file, or from a CSV on an
FTP drop zone. Rows missing both name and company are rejected and logged;
the rest are inserted.

Examples:
  # Local CSV
  import --file leads.csv

  # Spreadsheet export
  import --file leads.xlsx

  # Legacy CRM export in Windows-1252
  import --file crm_dump.csv --charset windows-1252

  # FTP drop zone
  import --from-ftp ftp://crm.internal/outbox/leads.csv`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if importFilePath == "" && importFTPURL == "" {
			return eris.New("import: --file or --from-ftp is required")
		}
		if importFilePath != "" && importFTPURL != "" {
			return eris.New("import: --file and --from-ftp are mutually exclusive")
		}

		if err := cfg.Validate("store"); err != nil {
			return err
		}

		leads, rowErrs, err := loadLeadFile(ctx)
		if err != nil {
			return err
		}
		for _, re := range rowErrs {
			zap.L().Warn("import: row rejected", zap.Int("line", re.Line), zap.Error(re.Err))
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "import: migrate")
		}

		created, err := st.CreateLeads(ctx, leads)
		if err != nil {
			return eris.Wrap(err, "import: insert leads")
		}

		zap.L().Info("import complete",
			zap.Int("created", created),
			zap.Int("rejected_rows", len(rowErrs)),
		)
		fmt.Printf("Imported %d leads (%d rows rejected)\n", created, len(rowErrs))
		return nil
	},
}

// loadLeadFile parses the configured source into leads plus per-row errors.
func loadLeadFile(ctx context.Context) ([]model.Lead, []leadfile.RowError, error) {
	if importFTPURL != "" {
		data, err := leadfile.FetchFTP(ctx, importFTPURL)
		if err != nil {
			return nil, nil, err
		}
		return leadfile.ParseCSV(bytes.NewReader(data), leadfile.CSVOptions{Charset: importCharset})
	}

	if strings.ToLower(filepath.Ext(importFilePath)) == ".xlsx" {
		data, err := os.ReadFile(importFilePath)
		if err != nil {
			return nil, nil, eris.Wrapf(err, "import: read %s", importFilePath)
		}
		return leadfile.ParseXLSX(data)
	}

	f, err := os.Open(importFilePath)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "import: open %s", importFilePath)
	}
	defer f.Close() //nolint:errcheck
	return leadfile.ParseCSV(f, leadfile.CSVOptions{Charset: importCharset})
}

func init() {
	importCmd.Flags().StringVar(&importFilePath, "file", "", "path to CSV or XLSX file")
	importCmd.Flags().StringVar(&importFTPURL, "from-ftp", "", "FTP URL of a CSV to import")
	importCmd.Flags().StringVar(&importCharset, "charset", "", "source charset for CSV decode (e.g. windows-1252)")
	rootCmd.AddCommand(importCmd)
}
