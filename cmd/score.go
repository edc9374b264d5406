package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadscore/internal/model"
	"github.com/sells-group/leadscore/internal/pipeline"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score unscored leads against the active offer",
	Long: `Scores every unscored lead against the configured offer.

Each lead gets a deterministic rule score (0-50) for role seniority, industry
fit, and profile completeness, plus an AI intent classification (0-50). The
final score is capped at 100 and bucketed into High (>=70), Medium (>=40), or
Low intent. Already-scored leads are never re-scored.

Without an Anthropic API key the run is rule-based only: the rule score is
doubled to occupy the full range. Leads whose classification fails outright
are skipped and picked up by the next run.

Examples:
  # Score with defaults
  score

  # Higher concurrency, JSON report
  score --concurrency 8 --output json

  # Keep a CSV copy of the report
  score --csv-out report.csv`,
	RunE: runScore,
}

func init() {
	f := scoreCmd.Flags()
	f.Int("concurrency", 0, "concurrent classifications (0=use config default)")
	f.String("output", "table", "report format: table, json or csv")
	f.String("csv-out", "", "also write the report as CSV to this path")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	output, _ := cmd.Flags().GetString("output")
	if output != "table" && output != "json" && output != "csv" {
		return eris.Errorf("score: --output must be table, json or csv (got %q)", output)
	}

	if err := cfg.Validate("score"); err != nil {
		return err
	}

	concurrency, _ := cmd.Flags().GetInt("concurrency")
	if concurrency == 0 {
		concurrency = cfg.Pipeline.Concurrency
	}

	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	if err := st.Migrate(ctx); err != nil {
		return eris.Wrap(err, "score: migrate")
	}

	classifier := initClassifier()
	if classifier == nil {
		zap.L().Warn("score: no anthropic api key configured, scoring rule-based only")
	}

	report, err := pipeline.New(st, classifier, concurrency).Run(ctx)
	if err != nil {
		return err
	}

	if err := outputReport(os.Stdout, report, output); err != nil {
		return err
	}

	if csvOut, _ := cmd.Flags().GetString("csv-out"); csvOut != "" {
		f, err := os.Create(csvOut)
		if err != nil {
			return eris.Wrapf(err, "score: create %s", csvOut)
		}
		defer f.Close() //nolint:errcheck
		if err := writeReportCSV(f, report); err != nil {
			return err
		}
	}

	return nil
}

func outputReport(w io.Writer, report *model.RunReport, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return eris.Wrap(err, "score: encode report")
		}
		return nil
	case "csv":
		return writeReportCSV(w, report)
	default:
		return writeReportTable(w, report)
	}
}

func writeReportTable(w io.Writer, report *model.RunReport) error {
	header := fmt.Sprintf("%-25s %-25s %-8s %5s  %s\n", "Name", "Company", "Intent", "Score", "Reasoning")
	if _, err := fmt.Fprint(w, header); err != nil {
		return eris.Wrap(err, "score: write table header")
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("-", 110)); err != nil {
		return eris.Wrap(err, "score: write table separator")
	}

	for _, r := range report.Results {
		line := fmt.Sprintf("%-25s %-25s %-8s %5d  %s\n",
			truncate(r.Name, 25), truncate(r.Company, 25), r.Intent, r.Score, truncate(r.Reasoning, 40))
		if _, err := fmt.Fprint(w, line); err != nil {
			return eris.Wrap(err, "score: write table row")
		}
	}

	summary := fmt.Sprintf("\n--- Summary ---\nTotal scored:   %d\n", report.TotalScored)
	if report.Skipped > 0 {
		summary += fmt.Sprintf("Skipped:        %d\n", report.Skipped)
	}
	summary += fmt.Sprintf("Scoring method: %s\n", report.ScoringMethod)
	if _, err := fmt.Fprint(w, summary); err != nil {
		return eris.Wrap(err, "score: write summary")
	}
	return nil
}

func writeReportCSV(w io.Writer, report *model.RunReport) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"name", "role", "company", "intent", "score", "reasoning"}
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "score: write CSV header")
	}

	for _, r := range report.Results {
		row := []string{r.Name, r.Role, r.Company, string(r.Intent), strconv.Itoa(r.Score), r.Reasoning}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "score: write CSV row")
		}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}
