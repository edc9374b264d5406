package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/leadscore/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. Leads have no seq
// column here; the implicit rowid serves as the insertion counter.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS offers (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	value_props     TEXT NOT NULL DEFAULT '[]',
	ideal_use_cases TEXT NOT NULL DEFAULT '[]',
	created_at      DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS leads (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	role         TEXT NOT NULL DEFAULT '',
	company      TEXT NOT NULL DEFAULT '',
	industry     TEXT NOT NULL DEFAULT '',
	location     TEXT NOT NULL DEFAULT '',
	linkedin_bio TEXT NOT NULL DEFAULT '',
	intent       TEXT,
	score        INTEGER,
	reasoning    TEXT,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_offers_created_at ON offers(created_at);
CREATE INDEX IF NOT EXISTS idx_leads_company_name ON leads(company, name);
CREATE INDEX IF NOT EXISTS idx_leads_score ON leads(score);
CREATE INDEX IF NOT EXISTS idx_leads_created_at ON leads(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateOffer(ctx context.Context, offer model.Offer) (*model.Offer, error) {
	offer.ID = uuid.New().String()
	now := time.Now().UTC()
	offer.CreatedAt = now
	offer.UpdatedAt = now

	valueProps, useCases, err := marshalOfferLists(offer)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO offers (id, name, value_props, ideal_use_cases, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		offer.ID, offer.Name, string(valueProps), string(useCases), offer.CreatedAt, offer.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert offer")
	}
	return &offer, nil
}

func (s *SQLiteStore) GetOffer(ctx context.Context, id string) (*model.Offer, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, value_props, ideal_use_cases, created_at, updated_at FROM offers WHERE id = ?`,
		id,
	)
	offer, err := scanOffer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "sqlite: offer %s", id)
		}
		return nil, eris.Wrapf(err, "sqlite: get offer %s", id)
	}
	return offer, nil
}

func (s *SQLiteStore) ActiveOffer(ctx context.Context) (*model.Offer, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, value_props, ideal_use_cases, created_at, updated_at FROM offers ORDER BY created_at ASC, id ASC LIMIT 1`,
	)
	offer, err := scanOffer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, eris.Wrap(ErrNotFound, "sqlite: active offer")
		}
		return nil, eris.Wrap(err, "sqlite: active offer")
	}
	return offer, nil
}

func (s *SQLiteStore) ListOffers(ctx context.Context) ([]model.Offer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, value_props, ideal_use_cases, created_at, updated_at FROM offers ORDER BY created_at ASC, id ASC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list offers")
	}
	defer rows.Close()

	var offers []model.Offer
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan offer")
		}
		offers = append(offers, *offer)
	}
	return offers, eris.Wrap(rows.Err(), "sqlite: list offers iterate")
}

func (s *SQLiteStore) UpdateOffer(ctx context.Context, offer model.Offer) (*model.Offer, error) {
	offer.UpdatedAt = time.Now().UTC()

	valueProps, useCases, err := marshalOfferLists(offer)
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE offers SET name = ?, value_props = ?, ideal_use_cases = ?, updated_at = ? WHERE id = ?`,
		offer.Name, string(valueProps), string(useCases), offer.UpdatedAt, offer.ID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: update offer %s", offer.ID)
	}
	if err := checkRowsAffected(res, "offer", offer.ID); err != nil {
		return nil, err
	}
	return &offer, nil
}

func (s *SQLiteStore) DeleteOffer(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM offers WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete offer %s", id)
	}
	return checkRowsAffected(res, "offer", id)
}

func (s *SQLiteStore) CreateLead(ctx context.Context, lead model.Lead) (*model.Lead, error) {
	lead.ID = uuid.New().String()
	now := time.Now().UTC()
	lead.CreatedAt = now
	lead.UpdatedAt = now

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO leads (id, name, role, company, industry, location, linkedin_bio, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lead.ID, lead.Name, lead.Role, lead.Company, lead.Industry,
		lead.Location, lead.LinkedInBio, lead.CreatedAt, lead.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert lead")
	}
	lead.Seq, err = res.LastInsertId()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert lead rowid")
	}
	return &lead, nil
}

func (s *SQLiteStore) CreateLeads(ctx context.Context, leads []model.Lead) (int, error) {
	if len(leads) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin bulk insert")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO leads (id, name, role, company, industry, location, linkedin_bio, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare bulk insert")
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, l := range leads {
		if _, err := stmt.ExecContext(ctx,
			uuid.New().String(), l.Name, l.Role, l.Company, l.Industry,
			l.Location, l.LinkedInBio, now, now,
		); err != nil {
			return 0, eris.Wrap(err, "sqlite: bulk insert lead")
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit bulk insert")
	}
	return len(leads), nil
}

func (s *SQLiteStore) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, rowid, name, role, company, industry, location, linkedin_bio, intent, score, reasoning, created_at, updated_at FROM leads WHERE id = ?`,
		id,
	)
	lead, err := scanSQLiteLead(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "sqlite: lead %s", id)
		}
		return nil, eris.Wrapf(err, "sqlite: get lead %s", id)
	}
	return lead, nil
}

func (s *SQLiteStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	query := `SELECT id, rowid, name, role, company, industry, location, linkedin_bio, intent, score, reasoning, created_at, updated_at FROM leads WHERE 1=1`
	var args []any

	if filter.Scored != nil {
		if *filter.Scored {
			query += ` AND score IS NOT NULL`
		} else {
			query += ` AND score IS NULL`
		}
	}
	query += ` ORDER BY created_at ASC, rowid ASC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += ` OFFSET ?`
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		lead, err := scanSQLiteLead(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		leads = append(leads, *lead)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: list leads iterate")
}

func (s *SQLiteStore) UpdateLeadScore(ctx context.Context, id string, score int, intent model.Intent, reasoning string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE leads SET intent = ?, score = ?, reasoning = ?, updated_at = ? WHERE id = ?`,
		string(intent), score, reasoning, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update lead score %s", id)
	}
	return checkRowsAffected(res, "lead", id)
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "sqlite: %s %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

// scanSQLiteLead is separate from the pgx path: database/sql needs the
// sql.Null* temporaries for the nullable scoring columns.
func scanSQLiteLead(row scannable) (*model.Lead, error) {
	var l model.Lead
	var intent, reasoning sql.NullString
	var score sql.NullInt64

	err := row.Scan(&l.ID, &l.Seq, &l.Name, &l.Role, &l.Company, &l.Industry,
		&l.Location, &l.LinkedInBio, &intent, &score, &reasoning,
		&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if intent.Valid {
		v := model.Intent(intent.String)
		l.Intent = &v
	}
	if score.Valid {
		v := int(score.Int64)
		l.Score = &v
	}
	if reasoning.Valid {
		l.Reasoning = &reasoning.String
	}
	return &l, nil
}
