package store

import (
	"context"
	"sort"
	"sync"

	"github.com/anhofmann/dsar/internal/request"
)

// MemoryStore is an in-process Store with the same compare-and-swap
// semantics as the Postgres implementation. All values are deep-copied on
// the way in and out, so callers can never mutate stored state directly.
type MemoryStore struct {
	mu        sync.Mutex
	companies map[string]*request.Company
	requests  map[string]*request.Request
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		companies: make(map[string]*request.Company),
		requests:  make(map[string]*request.Request),
	}
}

// CreateCompany stores a new company record
func (m *MemoryStore) CreateCompany(_ context.Context, c *request.Company) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.companies[c.ID] = &cp
	return nil
}

// GetCompany returns the company with the given id
func (m *MemoryStore) GetCompany(_ context.Context, id string) (*request.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.companies[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

// GetCompanyByName returns the company with the given name
func (m *MemoryStore) GetCompanyByName(_ context.Context, name string) (*request.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.companies {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

// ListCompanies returns all companies ordered by name
func (m *MemoryStore) ListCompanies(_ context.Context) ([]*request.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*request.Company, 0, len(m.companies))
	for _, c := range m.companies {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// UpdateCompany replaces an existing company record
func (m *MemoryStore) UpdateCompany(_ context.Context, c *request.Company) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.companies[c.ID]; !ok {
		return ErrNotFound
	}
	cp := *c
	m.companies[c.ID] = &cp
	return nil
}

// CreateRequest stores a new request record
func (m *MemoryStore) CreateRequest(_ context.Context, r *request.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[r.ID] = r.Clone()
	return nil
}

// GetRequest returns the request with the given id
func (m *MemoryStore) GetRequest(_ context.Context, id string) (*request.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r.Clone(), nil
}

// ListRequests returns requests in the given status set, oldest first
func (m *MemoryStore) ListRequests(_ context.Context, statuses ...request.Status) ([]*request.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*request.Request
	for _, r := range m.requests {
		if len(statuses) == 0 || statusIn(r.Status, statuses) {
			out = append(out, r.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// SaveRequest writes the record back iff the caller holds the current
// version. The stored version advances on success.
func (m *MemoryStore) SaveRequest(_ context.Context, r *request.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.requests[r.ID]
	if !ok {
		return ErrNotFound
	}
	if current.Version != r.Version {
		return ErrConflict
	}
	saved := r.Clone()
	saved.Version++
	m.requests[r.ID] = saved
	r.Version = saved.Version
	return nil
}

func statusIn(s request.Status, set []request.Status) bool {
	for _, c := range set {
		if s == c {
			return true
		}
	}
	return false
}
