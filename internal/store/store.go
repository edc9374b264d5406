package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscore/internal/model"
)

// ErrNotFound is returned when a requested row does not exist. Callers
// check it with errors.Is after unwrapping whatever context was added.
var ErrNotFound = eris.New("not found")

// LeadFilter narrows ListLeads. Scored nil returns every lead; true/false
// restricts to rows with/without a persisted score. Limit 0 means no limit;
// Offset applies only when Limit is set.
type LeadFilter struct {
	Scored *bool
	Limit  int
	Offset int
}

// Store is the persistence interface for offers and leads.
type Store interface {
	// Offers
	CreateOffer(ctx context.Context, offer model.Offer) (*model.Offer, error)
	GetOffer(ctx context.Context, id string) (*model.Offer, error)
	ListOffers(ctx context.Context) ([]model.Offer, error)
	UpdateOffer(ctx context.Context, offer model.Offer) (*model.Offer, error)
	DeleteOffer(ctx context.Context, id string) error
	// ActiveOffer returns the offer scoring runs use: the earliest created.
	ActiveOffer(ctx context.Context) (*model.Offer, error)

	// Leads
	CreateLead(ctx context.Context, lead model.Lead) (*model.Lead, error)
	CreateLeads(ctx context.Context, leads []model.Lead) (int, error)
	GetLead(ctx context.Context, id string) (*model.Lead, error)
	// ListLeads returns rows ordered by (created_at, seq) ascending.
	ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error)
	UpdateLeadScore(ctx context.Context, id string, score int, intent model.Intent, reasoning string) error

	// Lifecycle
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}
