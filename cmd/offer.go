package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/leadscore/internal/model"
	"github.com/sells-group/leadscore/internal/store"
)

var (
	offerFilePath   string
	offerName       string
	offerValueProps []string
	offerUseCases   []string
)

var offerCmd = &cobra.Command{
	Use:   "offer",
	Short: "Manage the offer leads are scored against",
}

// offerFile is the YAML shape accepted by offer set --file.
type offerFile struct {
	Name          string   `yaml:"name"`
	ValueProps    []string `yaml:"value_props"`
	IdealUseCases []string `yaml:"ideal_use_cases"`
}

var offerSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Create or replace the active offer",
	Long: `Creates the active offer, or replaces it if one already exists.

Examples:
  # From a YAML file
  offer set --file offer.yaml

  # From flags
  offer set --name "AI Outreach Automation" \
    --value-prop "24/7 outreach" --value-prop "6x more meetings" \
    --use-case "B2B SaaS mid-market"`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		offer, err := offerFromFlags()
		if err != nil {
			return err
		}

		if err := cfg.Validate("store"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "offer set: migrate")
		}

		saved, err := saveOffer(ctx, st, offer)
		if err != nil {
			return err
		}

		zap.L().Info("offer saved", zap.String("id", saved.ID), zap.String("name", saved.Name))
		printOffer(saved)
		return nil
	},
}

var offerShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active offer",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("store"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "offer show: migrate")
		}

		offer, err := st.ActiveOffer(ctx)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				fmt.Println("No offer configured. Run 'leadscore offer set' first.")
				return nil
			}
			return eris.Wrap(err, "offer show")
		}

		printOffer(offer)
		return nil
	},
}

// offerFromFlags builds the offer from --file or the individual flags.
func offerFromFlags() (model.Offer, error) {
	if offerFilePath != "" {
		data, err := os.ReadFile(offerFilePath)
		if err != nil {
			return model.Offer{}, eris.Wrapf(err, "offer set: read %s", offerFilePath)
		}
		var f offerFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return model.Offer{}, eris.Wrap(err, "offer set: parse yaml")
		}
		if strings.TrimSpace(f.Name) == "" {
			return model.Offer{}, eris.New("offer set: offer name is required")
		}
		return model.Offer{Name: f.Name, ValueProps: f.ValueProps, IdealUseCases: f.IdealUseCases}, nil
	}

	if strings.TrimSpace(offerName) == "" {
		return model.Offer{}, eris.New("offer set: --file or --name is required")
	}
	return model.Offer{Name: offerName, ValueProps: offerValueProps, IdealUseCases: offerUseCases}, nil
}

// saveOffer replaces the active offer in place so its ID stays stable, or
// creates the first offer when none exists.
func saveOffer(ctx context.Context, st store.Store, offer model.Offer) (*model.Offer, error) {
	active, err := st.ActiveOffer(ctx)
	switch {
	case err == nil:
		offer.ID = active.ID
		updated, err := st.UpdateOffer(ctx, offer)
		if err != nil {
			return nil, eris.Wrap(err, "offer set: update")
		}
		return updated, nil
	case errors.Is(err, store.ErrNotFound):
		created, err := st.CreateOffer(ctx, offer)
		if err != nil {
			return nil, eris.Wrap(err, "offer set: create")
		}
		return created, nil
	default:
		return nil, eris.Wrap(err, "offer set: load active offer")
	}
}

func printOffer(o *model.Offer) {
	fmt.Printf("Offer: %s\n", o.Name)
	if len(o.ValueProps) > 0 {
		fmt.Printf("Value props:     %s\n", strings.Join(o.ValueProps, ", "))
	}
	if len(o.IdealUseCases) > 0 {
		fmt.Printf("Ideal use cases: %s\n", strings.Join(o.IdealUseCases, ", "))
	}
}

func init() {
	offerSetCmd.Flags().StringVar(&offerFilePath, "file", "", "YAML file with name, value_props, ideal_use_cases")
	offerSetCmd.Flags().StringVar(&offerName, "name", "", "offer name")
	offerSetCmd.Flags().StringArrayVar(&offerValueProps, "value-prop", nil, "value proposition (repeatable)")
	offerSetCmd.Flags().StringArrayVar(&offerUseCases, "use-case", nil, "ideal use case (repeatable)")

	offerCmd.AddCommand(offerSetCmd)
	offerCmd.AddCommand(offerShowCmd)
	rootCmd.AddCommand(offerCmd)
}
