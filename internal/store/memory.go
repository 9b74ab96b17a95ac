package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/allcarbonfree/carbonpath/internal/models"
)

// InMemoryStore implements Store for testing and development.
type InMemoryStore struct {
	mu           sync.RWMutex
	countries    map[string]models.Country
	technologies map[string]models.TechnologyRecord
	paths        map[string]models.PathRecord
}

// NewInMemoryStore creates a new in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		countries:    make(map[string]models.Country),
		technologies: make(map[string]models.TechnologyRecord),
		paths:        make(map[string]models.PathRecord),
	}
}

// PutCountry inserts or replaces a country series.
func (s *InMemoryStore) PutCountry(ctx context.Context, c models.Country) error {
	if c.Code == "" {
		return fmt.Errorf("country code is required")
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = time.Now()
	}
	c.Series = append([]byte(nil), c.Series...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.countries[c.Code] = c
	return nil
}

// GetCountry returns a country by code.
func (s *InMemoryStore) GetCountry(ctx context.Context, code string) (*models.Country, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.countries[code]
	if !ok {
		return nil, fmt.Errorf("country %s: %w", code, ErrNotFound)
	}
	return &c, nil
}

// ListCountries returns every country ordered by code.
func (s *InMemoryStore) ListCountries(ctx context.Context) ([]models.Country, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Country, 0, len(s.countries))
	for _, c := range s.countries {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// PutTechnology inserts or replaces a technology record.
func (s *InMemoryStore) PutTechnology(ctx context.Context, t models.TechnologyRecord) error {
	if t.ID == "" {
		return fmt.Errorf("technology ID is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.technologies[t.ID] = t
	return nil
}

// GetTechnology returns a technology record by id.
func (s *InMemoryStore) GetTechnology(ctx context.Context, id string) (*models.TechnologyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.technologies[id]
	if !ok {
		return nil, fmt.Errorf("technology %s: %w", id, ErrNotFound)
	}
	return &t, nil
}

// ListTechnologies returns every technology record ordered by id.
func (s *InMemoryStore) ListTechnologies(ctx context.Context) ([]models.TechnologyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.TechnologyRecord, 0, len(s.technologies))
	for _, t := range s.technologies {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// DeleteTechnology removes a technology record.
func (s *InMemoryStore) DeleteTechnology(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.technologies[id]; !ok {
		return fmt.Errorf("technology %s: %w", id, ErrNotFound)
	}
	delete(s.technologies, id)
	return nil
}

// SavePath inserts or replaces a path.
func (s *InMemoryStore) SavePath(ctx context.Context, p models.PathRecord) error {
	if p.ID == "" {
		return fmt.Errorf("path ID is required")
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p.CleantechIDs = nonNil(append([]string(nil), p.CleantechIDs...))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.paths[p.ID] = p
	return nil
}

// GetPath returns a path by id.
func (s *InMemoryStore) GetPath(ctx context.Context, id string) (*models.PathRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.paths[id]
	if !ok {
		return nil, fmt.Errorf("path %s: %w", id, ErrNotFound)
	}
	return &p, nil
}

// ListPaths returns matching paths, newest first.
func (s *InMemoryStore) ListPaths(ctx context.Context, filter PathFilter) ([]models.PathRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.PathRecord
	for _, p := range s.paths {
		if filter.Match(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// DeletePath removes a path.
func (s *InMemoryStore) DeletePath(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.paths[id]; !ok {
		return fmt.Errorf("path %s: %w", id, ErrNotFound)
	}
	delete(s.paths, id)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error { return nil }

var (
	_ Store = (*InMemoryStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)
