package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leadscore/internal/leadfile"
	"github.com/sells-group/leadscore/internal/model"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "List scored leads, highest score first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		output, _ := cmd.Flags().GetString("output")
		if output != "table" && output != "json" && output != "csv" {
			return eris.Errorf("results: --output must be table, json or csv (got %q)", output)
		}

		if err := cfg.Validate("store"); err != nil {
			return err
		}

		scored, err := scoredSnapshot(ctx)
		if err != nil {
			return err
		}

		if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 && limit < len(scored) {
			scored = scored[:limit]
		}

		switch output {
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(scored); err != nil {
				return eris.Wrap(err, "results: encode")
			}
			return nil
		case "csv":
			return leadfile.WriteCSV(os.Stdout, scored)
		default:
			return writeLeadsTable(os.Stdout, scored)
		}
	},
}

func init() {
	f := resultsCmd.Flags()
	f.Int("limit", 0, "maximum number of results (0=all)")
	f.String("output", "table", "output format: table, json or csv")

	rootCmd.AddCommand(resultsCmd)
}

func writeLeadsTable(w io.Writer, leads []model.Lead) error {
	if len(leads) == 0 {
		_, err := fmt.Fprintln(w, "No scored leads. Run 'leadscore score' first.")
		return err
	}

	header := fmt.Sprintf("%-25s %-25s %-20s %-8s %5s\n", "Name", "Company", "Role", "Intent", "Score")
	if _, err := fmt.Fprint(w, header); err != nil {
		return eris.Wrap(err, "results: write table header")
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("-", 88)); err != nil {
		return eris.Wrap(err, "results: write table separator")
	}

	for i := range leads {
		l := &leads[i]
		line := fmt.Sprintf("%-25s %-25s %-20s %-8s %5d\n",
			truncate(l.Name, 25), truncate(l.Company, 25), truncate(l.Role, 20), *l.Intent, *l.Score)
		if _, err := fmt.Fprint(w, line); err != nil {
			return eris.Wrap(err, "results: write table row")
		}
	}
	return nil
}
