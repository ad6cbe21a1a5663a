// Package postgres implements the Store contract on PostgreSQL via pgx.
// SaveRequest uses a version-guarded UPDATE, so two overlapping scheduler
// instances can share one database: the second committer gets ErrConflict
// instead of a duplicate send.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anhofmann/dsar/internal/request"
	"github.com/anhofmann/dsar/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS companies (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	website TEXT NOT NULL DEFAULT '',
	data_protection_officer TEXT NOT NULL DEFAULT '',
	address TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS requests (
	id UUID PRIMARY KEY,
	company_id UUID NOT NULL REFERENCES companies (id),
	kind TEXT NOT NULL,
	status TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	sent_at TIMESTAMPTZ,
	last_contact_at TIMESTAMPTZ,
	reminder_count INT NOT NULL DEFAULT 0,
	escalated BOOLEAN NOT NULL DEFAULT FALSE,
	language TEXT NOT NULL,
	reason TEXT NOT NULL DEFAULT '',
	requester_name TEXT NOT NULL DEFAULT '',
	requester_email TEXT NOT NULL DEFAULT '',
	annotations JSONB NOT NULL DEFAULT '[]',
	version BIGINT NOT NULL DEFAULT 1
);

CREATE INDEX IF NOT EXISTS idx_requests_status ON requests (status);
CREATE INDEX IF NOT EXISTS idx_requests_company ON requests (company_id);
`

// PostgresStore implements store.Store on a pgx connection pool
type PostgresStore struct {
	pool *pgxpool.Pool
}

// Open connects to the database and ensures the schema exists
func Open(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Close releases the connection pool
func (p *PostgresStore) Close() {
	p.pool.Close()
}

// CreateCompany inserts a company record
func (p *PostgresStore) CreateCompany(ctx context.Context, c *request.Company) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO companies (id, name, email, website, data_protection_officer, address, notes, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, c.ID, c.Name, c.Email, c.Website, c.DataProtectionOfficer, c.Address, c.Notes, c.CreatedAt, c.UpdatedAt)
	return err
}

// GetCompany returns the company with the given id
func (p *PostgresStore) GetCompany(ctx context.Context, id string) (*request.Company, error) {
	return p.scanCompany(p.pool.QueryRow(ctx, companySelect+` WHERE id = $1`, id))
}

// GetCompanyByName returns the company with the given name
func (p *PostgresStore) GetCompanyByName(ctx context.Context, name string) (*request.Company, error) {
	return p.scanCompany(p.pool.QueryRow(ctx, companySelect+` WHERE name = $1`, name))
}

const companySelect = `
	SELECT id, name, email, website, data_protection_officer, address, notes, created_at, updated_at
	FROM companies`

func (p *PostgresStore) scanCompany(row pgx.Row) (*request.Company, error) {
	c := &request.Company{}
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Website, &c.DataProtectionOfficer,
		&c.Address, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListCompanies returns all companies ordered by name
func (p *PostgresStore) ListCompanies(ctx context.Context) ([]*request.Company, error) {
	rows, err := p.pool.Query(ctx, companySelect+` ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*request.Company
	for rows.Next() {
		c := &request.Company{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Website, &c.DataProtectionOfficer,
			&c.Address, &c.Notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateCompany replaces the mutable fields of a company record
func (p *PostgresStore) UpdateCompany(ctx context.Context, c *request.Company) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE companies
		SET name=$2, email=$3, website=$4, data_protection_officer=$5, address=$6, notes=$7, updated_at=now()
		WHERE id = $1
	`, c.ID, c.Name, c.Email, c.Website, c.DataProtectionOfficer, c.Address, c.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// CreateRequest inserts a request record
func (p *PostgresStore) CreateRequest(ctx context.Context, r *request.Request) error {
	annotations, err := json.Marshal(annotationsOrEmpty(r.Annotations))
	if err != nil {
		return fmt.Errorf("failed to encode annotations: %w", err)
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO requests (id, company_id, kind, status, created_at, sent_at, last_contact_at,
			reminder_count, escalated, language, reason, requester_name, requester_email, annotations, version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`, r.ID, r.CompanyID, r.Kind, r.Status, r.CreatedAt, r.SentAt, r.LastContactAt,
		r.ReminderCount, r.Escalated, r.Language, r.Reason, r.RequesterName, r.RequesterEmail, annotations, r.Version)
	return err
}

const requestSelect = `
	SELECT id, company_id, kind, status, created_at, sent_at, last_contact_at,
		reminder_count, escalated, language, reason, requester_name, requester_email, annotations, version
	FROM requests`

// GetRequest returns the request with the given id
func (p *PostgresStore) GetRequest(ctx context.Context, id string) (*request.Request, error) {
	r, err := scanRequest(p.pool.QueryRow(ctx, requestSelect+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return r, err
}

// ListRequests returns requests in the given status set, oldest first
func (p *PostgresStore) ListRequests(ctx context.Context, statuses ...request.Status) ([]*request.Request, error) {
	query := requestSelect
	var args []any
	if len(statuses) > 0 {
		set := make([]string, len(statuses))
		for i, s := range statuses {
			set[i] = string(s)
		}
		query += ` WHERE status = ANY($1)`
		args = append(args, set)
	}
	query += ` ORDER BY created_at`

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*request.Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SaveRequest writes the record back iff the caller holds the current
// version. RowsAffected()==0 with an existing row means a concurrent writer
// won the race.
func (p *PostgresStore) SaveRequest(ctx context.Context, r *request.Request) error {
	annotations, err := json.Marshal(annotationsOrEmpty(r.Annotations))
	if err != nil {
		return fmt.Errorf("failed to encode annotations: %w", err)
	}
	tag, err := p.pool.Exec(ctx, `
		UPDATE requests
		SET status=$2, sent_at=$3, last_contact_at=$4, reminder_count=$5, escalated=$6,
			reason=$7, requester_name=$8, requester_email=$9, annotations=$10, version=version+1
		WHERE id = $1 AND version = $11
	`, r.ID, r.Status, r.SentAt, r.LastContactAt, r.ReminderCount, r.Escalated,
		r.Reason, r.RequesterName, r.RequesterEmail, annotations, r.Version)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := p.GetRequest(ctx, r.ID); errors.Is(err, store.ErrNotFound) {
			return store.ErrNotFound
		}
		return store.ErrConflict
	}
	r.Version++
	return nil
}

func scanRequest(row pgx.Row) (*request.Request, error) {
	r := &request.Request{}
	var annotations []byte
	if err := row.Scan(&r.ID, &r.CompanyID, &r.Kind, &r.Status, &r.CreatedAt, &r.SentAt, &r.LastContactAt,
		&r.ReminderCount, &r.Escalated, &r.Language, &r.Reason, &r.RequesterName, &r.RequesterEmail,
		&annotations, &r.Version); err != nil {
		return nil, err
	}
	if len(annotations) > 0 {
		if err := json.Unmarshal(annotations, &r.Annotations); err != nil {
			return nil, fmt.Errorf("failed to decode annotations for request %s: %w", r.ID, err)
		}
	}
	return r, nil
}

func annotationsOrEmpty(a []request.Annotation) []request.Annotation {
	if a == nil {
		return []request.Annotation{}
	}
	return a
}
