// Package store defines the persistence contract for requests and companies
// and provides the in-memory implementation used by tests and embedders.
package store

import (
	"context"
	"errors"

	"github.com/anhofmann/dsar/internal/request"
)

var (
	// ErrNotFound is returned when no record exists for the given id
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a concurrent writer advanced the same
	// record first. Callers must reload and re-decide, never blind-retry the
	// stale write.
	ErrConflict = errors.New("record was modified concurrently")
)

// Store is the persistence contract consumed by the scheduler and the CLI.
// SaveRequest performs a compare-and-swap on the record's version and
// returns ErrConflict when the persisted version no longer matches.
type Store interface {
	CreateCompany(ctx context.Context, c *request.Company) error
	GetCompany(ctx context.Context, id string) (*request.Company, error)
	GetCompanyByName(ctx context.Context, name string) (*request.Company, error)
	ListCompanies(ctx context.Context) ([]*request.Company, error)
	UpdateCompany(ctx context.Context, c *request.Company) error

	CreateRequest(ctx context.Context, r *request.Request) error
	GetRequest(ctx context.Context, id string) (*request.Request, error)
	// ListRequests returns requests whose status is in the given set; with no
	// statuses it returns everything.
	ListRequests(ctx context.Context, statuses ...request.Status) ([]*request.Request, error)
	SaveRequest(ctx context.Context, r *request.Request) error
}
