package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadscore/pkg/notion"
	sfpkg "github.com/sells-group/leadscore/pkg/salesforce"
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Push scored leads to a CRM connector",
}

var pushNotionCmd = &cobra.Command{
	Use:   "notion",
	Short: "Push scored leads to a Notion database",
	Long: `Pushes the scored leads into Notion, one page per lead.

With notion.lead_db configured, pages go into that database. Otherwise a
"Scored Leads" database is created under notion.parent_page and its ID is
logged; set notion.lead_db to it to reuse the database on later pushes.
Pushing twice creates duplicate pages.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("notion"); err != nil {
			return err
		}

		scored, err := scoredSnapshot(ctx)
		if err != nil {
			return err
		}
		if len(scored) == 0 {
			fmt.Println("No scored leads to push.")
			return nil
		}

		client := notion.NewClient(cfg.Notion.Token)

		dbID := cfg.Notion.LeadDB
		if dbID == "" {
			dbID, err = notion.EnsureLeadDatabase(ctx, client, cfg.Notion.ParentPage)
			if err != nil {
				return err
			}
			zap.L().Info("notion database created, set notion.lead_db to reuse it",
				zap.String("database", dbID),
			)
		}

		pushed, err := notion.PushLeads(ctx, client, dbID, scored)
		if err != nil {
			return err
		}

		zap.L().Info("notion push complete", zap.Int("pushed", pushed), zap.String("database", dbID))
		fmt.Printf("Pushed %d leads to Notion\n", pushed)
		return nil
	},
}

var pushSalesforceCmd = &cobra.Command{
	Use:   "salesforce",
	Short: "Push scored leads to Salesforce",
	Long: `Pushes the scored leads into Salesforce as Lead records via the
collections API. Records carry Rating (Hot/Warm/Cold from intent) and the
score and reasoning in Description. Pushing twice creates duplicate records.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("salesforce"); err != nil {
			return err
		}

		scored, err := scoredSnapshot(ctx)
		if err != nil {
			return err
		}
		if len(scored) == 0 {
			fmt.Println("No scored leads to push.")
			return nil
		}

		sfClient, err := initSalesforce()
		if err != nil {
			return err
		}

		results, err := sfpkg.PushLeads(ctx, sfClient, scored)
		if err != nil {
			return err
		}

		pushed := 0
		for _, r := range results {
			if r.Success {
				pushed++
				continue
			}
			zap.L().Warn("salesforce push: record rejected", zap.Strings("errors", r.Errors))
		}
		if pushed < len(results) {
			zap.L().Warn("salesforce push finished with rejections",
				zap.Int("pushed", pushed),
				zap.Int("rejected", len(results)-pushed),
			)
		}

		zap.L().Info("salesforce push complete", zap.Int("pushed", pushed))
		fmt.Printf("Pushed %d/%d leads to Salesforce\n", pushed, len(results))
		return nil
	},
}

func init() {
	pushCmd.AddCommand(pushNotionCmd)
	pushCmd.AddCommand(pushSalesforceCmd)
	rootCmd.AddCommand(pushCmd)
}
