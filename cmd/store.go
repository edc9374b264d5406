package main

import (
	"context"
	"os"

	"github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscore/internal/model"
	"github.com/sells-group/leadscore/internal/pipeline"
	"github.com/sells-group/leadscore/internal/store"
	"github.com/sells-group/leadscore/pkg/anthropic"
	sfpkg "github.com/sells-group/leadscore/pkg/salesforce"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "leads.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initClassifier returns nil when no API key is configured; the pipeline
// then scores rule-based only.
func initClassifier() pipeline.Classifier {
	if cfg.Anthropic.APIKey == "" {
		return nil
	}
	return pipeline.NewIntentClassifier(anthropic.NewClient(cfg.Anthropic.APIKey), cfg.Anthropic)
}

// scoredSnapshot opens the store and returns the canonical scored leads,
// ordered score descending. The results, export, and push commands all read
// this same snapshot.
func scoredSnapshot(ctx context.Context) ([]model.Lead, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	defer st.Close() //nolint:errcheck

	if err := st.Migrate(ctx); err != nil {
		return nil, eris.Wrap(err, "migrate")
	}

	leads, err := st.ListLeads(ctx, store.LeadFilter{})
	if err != nil {
		return nil, eris.Wrap(err, "list leads")
	}
	return pipeline.ScoredResults(leads), nil
}

func initSalesforce() (sfpkg.Client, error) {
	pemData, err := os.ReadFile(cfg.Salesforce.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce JWT private key")
	}

	sf, err := salesforce.Init(salesforce.Creds{
		Domain:         cfg.Salesforce.LoginURL,
		Username:       cfg.Salesforce.Username,
		ConsumerKey:    cfg.Salesforce.ClientID,
		ConsumerRSAPem: string(pemData),
	})
	if err != nil {
		return nil, eris.Wrap(err, "init salesforce")
	}

	return sfpkg.NewClient(sf), nil
}
