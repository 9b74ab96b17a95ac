// Package store persists countries, technology records and saved paths.
package store

import (
	"context"
	"errors"

	"github.com/allcarbonfree/carbonpath/internal/models"
)

// ErrNotFound is returned when a country, technology or path does not exist.
var ErrNotFound = errors.New("not found")

// PathFilter narrows ListPaths. Zero fields match everything.
type PathFilter struct {
	Author      string
	CountryCode string

	// ProfileOnly keeps paths flagged for the public profile.
	ProfileOnly bool

	// Limit caps the number of results; 0 means no limit.
	Limit int
}

// Match reports whether p passes the filter (Limit is not considered).
func (f PathFilter) Match(p models.PathRecord) bool {
	if f.Author != "" && p.Author != f.Author {
		return false
	}
	if f.CountryCode != "" && p.CountryCode != f.CountryCode {
		return false
	}
	if f.ProfileOnly && !p.IncludeWithProfile {
		return false
	}
	return true
}

// Store is the persistence interface used by the path service and surfaces.
type Store interface {
	// Countries
	PutCountry(ctx context.Context, c models.Country) error
	GetCountry(ctx context.Context, code string) (*models.Country, error)
	ListCountries(ctx context.Context) ([]models.Country, error)

	// Technologies
	PutTechnology(ctx context.Context, t models.TechnologyRecord) error
	GetTechnology(ctx context.Context, id string) (*models.TechnologyRecord, error)
	ListTechnologies(ctx context.Context) ([]models.TechnologyRecord, error)
	DeleteTechnology(ctx context.Context, id string) error

	// Paths
	SavePath(ctx context.Context, p models.PathRecord) error
	GetPath(ctx context.Context, id string) (*models.PathRecord, error)
	ListPaths(ctx context.Context, filter PathFilter) ([]models.PathRecord, error)
	DeletePath(ctx context.Context, id string) error

	Close() error
}
