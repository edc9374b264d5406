package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscore/internal/db"
	"github.com/sells-group/leadscore/internal/model"
	"github.com/sells-group/leadscore/internal/resilience"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries prepared on each new connection. These
// are the per-lead hot path of a scoring run.
var preparedStatements = map[string]string{
	"insert_lead":       `INSERT INTO leads (id, name, role, company, industry, location, linkedin_bio, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING seq`,
	"get_lead":          `SELECT id, seq, name, role, company, industry, location, linkedin_bio, intent, score, reasoning, created_at, updated_at FROM leads WHERE id = $1`,
	"update_lead_score": `UPDATE leads SET intent = $1, score = $2, reasoning = $3, updated_at = $4 WHERE id = $5`,
	"active_offer":      `SELECT id, name, value_props, ideal_use_cases, created_at, updated_at FROM offers ORDER BY created_at ASC, id ASC LIMIT 1`,
}

// leadCopyColumns is the column list for bulk lead imports. seq is an
// identity column and must be left to the database.
var leadCopyColumns = []string{
	"id", "name", "role", "company", "industry", "location", "linkedin_bio",
	"created_at", "updated_at",
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}

	// The database may still be coming up when we are (container starts,
	// deploys), so the initial ping retries on any error.
	pingRetry := resilience.DefaultRetryConfig()
	pingRetry.MaxAttempts = 5
	pingRetry.ShouldRetry = func(error) bool { return true }
	pingRetry.OnRetry = resilience.RetryLogger("postgres", "ping")
	if err := resilience.Do(ctx, pingRetry, pool.Ping); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS offers (
	id              TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name            TEXT NOT NULL,
	value_props     JSONB NOT NULL DEFAULT '[]',
	ideal_use_cases JSONB NOT NULL DEFAULT '[]',
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS leads (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	seq          BIGINT GENERATED ALWAYS AS IDENTITY,
	name         TEXT NOT NULL,
	role         TEXT NOT NULL DEFAULT '',
	company      TEXT NOT NULL DEFAULT '',
	industry     TEXT NOT NULL DEFAULT '',
	location     TEXT NOT NULL DEFAULT '',
	linkedin_bio TEXT NOT NULL DEFAULT '',
	intent       TEXT,
	score        INTEGER,
	reasoning    TEXT,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_offers_created_at ON offers(created_at);
CREATE INDEX IF NOT EXISTS idx_leads_company_name ON leads(company, name);
CREATE INDEX IF NOT EXISTS idx_leads_score ON leads(score);
CREATE INDEX IF NOT EXISTS idx_leads_created_seq ON leads(created_at, seq);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateOffer(ctx context.Context, offer model.Offer) (*model.Offer, error) {
	offer.ID = uuid.New().String()
	now := time.Now().UTC()
	offer.CreatedAt = now
	offer.UpdatedAt = now

	valueProps, useCases, err := marshalOfferLists(offer)
	if err != nil {
		return nil, err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO offers (id, name, value_props, ideal_use_cases, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		offer.ID, offer.Name, valueProps, useCases, offer.CreatedAt, offer.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert offer")
	}
	return &offer, nil
}

func (s *PostgresStore) GetOffer(ctx context.Context, id string) (*model.Offer, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, value_props, ideal_use_cases, created_at, updated_at FROM offers WHERE id = $1`,
		id,
	)
	offer, err := scanOffer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "postgres: offer %s", id)
		}
		return nil, eris.Wrapf(err, "postgres: get offer %s", id)
	}
	return offer, nil
}

func (s *PostgresStore) ActiveOffer(ctx context.Context) (*model.Offer, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, value_props, ideal_use_cases, created_at, updated_at FROM offers ORDER BY created_at ASC, id ASC LIMIT 1`,
	)
	offer, err := scanOffer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrap(ErrNotFound, "postgres: active offer")
		}
		return nil, eris.Wrap(err, "postgres: active offer")
	}
	return offer, nil
}

func (s *PostgresStore) ListOffers(ctx context.Context) ([]model.Offer, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, value_props, ideal_use_cases, created_at, updated_at FROM offers ORDER BY created_at ASC, id ASC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list offers")
	}
	defer rows.Close()

	var offers []model.Offer
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan offer")
		}
		offers = append(offers, *offer)
	}
	return offers, eris.Wrap(rows.Err(), "postgres: list offers iterate")
}

func (s *PostgresStore) UpdateOffer(ctx context.Context, offer model.Offer) (*model.Offer, error) {
	offer.UpdatedAt = time.Now().UTC()

	valueProps, useCases, err := marshalOfferLists(offer)
	if err != nil {
		return nil, err
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE offers SET name = $1, value_props = $2, ideal_use_cases = $3, updated_at = $4 WHERE id = $5`,
		offer.Name, valueProps, useCases, offer.UpdatedAt, offer.ID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: update offer %s", offer.ID)
	}
	if tag.RowsAffected() == 0 {
		return nil, eris.Wrapf(ErrNotFound, "postgres: offer %s", offer.ID)
	}
	return &offer, nil
}

func (s *PostgresStore) DeleteOffer(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM offers WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete offer %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "postgres: offer %s", id)
	}
	return nil
}

func (s *PostgresStore) CreateLead(ctx context.Context, lead model.Lead) (*model.Lead, error) {
	lead.ID = uuid.New().String()
	now := time.Now().UTC()
	lead.CreatedAt = now
	lead.UpdatedAt = now

	err := s.pool.QueryRow(ctx,
		`INSERT INTO leads (id, name, role, company, industry, location, linkedin_bio, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING seq`,
		lead.ID, lead.Name, lead.Role, lead.Company, lead.Industry,
		lead.Location, lead.LinkedInBio, lead.CreatedAt, lead.UpdatedAt,
	).Scan(&lead.Seq)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert lead")
	}
	return &lead, nil
}

// CreateLeads bulk-inserts leads via COPY. All rows share one created_at so
// a single import behaves as one batch; seq still orders them.
func (s *PostgresStore) CreateLeads(ctx context.Context, leads []model.Lead) (int, error) {
	if len(leads) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	rows := make([][]any, 0, len(leads))
	for _, l := range leads {
		rows = append(rows, []any{
			uuid.New().String(), l.Name, l.Role, l.Company, l.Industry,
			l.Location, l.LinkedInBio, now, now,
		})
	}

	n, err := db.CopyFrom(ctx, s.pool, "leads", leadCopyColumns, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: bulk insert leads")
	}
	return int(n), nil
}

func (s *PostgresStore) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, seq, name, role, company, industry, location, linkedin_bio, intent, score, reasoning, created_at, updated_at FROM leads WHERE id = $1`,
		id,
	)
	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "postgres: lead %s", id)
		}
		return nil, eris.Wrapf(err, "postgres: get lead %s", id)
	}
	return lead, nil
}

func (s *PostgresStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	query := `SELECT id, seq, name, role, company, industry, location, linkedin_bio, intent, score, reasoning, created_at, updated_at FROM leads WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Scored != nil {
		if *filter.Scored {
			query += ` AND score IS NOT NULL`
		} else {
			query += ` AND score IS NULL`
		}
	}
	query += ` ORDER BY created_at ASC, seq ASC`

	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, argIdx)
		args = append(args, filter.Limit)
		argIdx++
		if filter.Offset > 0 {
			query += fmt.Sprintf(` OFFSET $%d`, argIdx)
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead")
		}
		leads = append(leads, *lead)
	}
	return leads, eris.Wrap(rows.Err(), "postgres: list leads iterate")
}

func (s *PostgresStore) UpdateLeadScore(ctx context.Context, id string, score int, intent model.Intent, reasoning string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE leads SET intent = $1, score = $2, reasoning = $3, updated_at = $4 WHERE id = $5`,
		string(intent), score, reasoning, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update lead score %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "postgres: lead %s", id)
	}
	return nil
}

// scan helpers shared with the SQLite backend live in sqlite.go; these two
// are Postgres-specific because of the JSONB columns.

func scanOffer(row scannable) (*model.Offer, error) {
	var o model.Offer
	var valueProps, useCases []byte

	if err := row.Scan(&o.ID, &o.Name, &valueProps, &useCases, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(valueProps, &o.ValueProps); err != nil {
		return nil, eris.Wrap(err, "unmarshal value_props")
	}
	if err := json.Unmarshal(useCases, &o.IdealUseCases); err != nil {
		return nil, eris.Wrap(err, "unmarshal ideal_use_cases")
	}
	return &o, nil
}

func scanLead(row scannable) (*model.Lead, error) {
	var l model.Lead
	var intent *string

	err := row.Scan(&l.ID, &l.Seq, &l.Name, &l.Role, &l.Company, &l.Industry,
		&l.Location, &l.LinkedInBio, &intent, &l.Score, &l.Reasoning,
		&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if intent != nil {
		v := model.Intent(*intent)
		l.Intent = &v
	}
	return &l, nil
}

func marshalOfferLists(offer model.Offer) ([]byte, []byte, error) {
	valueProps, err := json.Marshal(emptyIfNil(offer.ValueProps))
	if err != nil {
		return nil, nil, eris.Wrap(err, "marshal value_props")
	}
	useCases, err := json.Marshal(emptyIfNil(offer.IdealUseCases))
	if err != nil {
		return nil, nil, eris.Wrap(err, "marshal ideal_use_cases")
	}
	return valueProps, useCases, nil
}

// emptyIfNil keeps the JSON columns as [] instead of null.
func emptyIfNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
