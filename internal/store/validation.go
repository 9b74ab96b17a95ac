package store

import (
	"context"
	"fmt"

	"github.com/allcarbonfree/carbonpath/internal/constants"
)

// ValidationError describes a consistency issue between stored records.
type ValidationError struct {
	PathID string `json:"path_id"`
	Field  string `json:"field"`  // "country_code", "cleantech_ids", "years"
	RefID  string `json:"ref_id"` // The problematic reference
	Issue  string `json:"issue"`  // "dangling", "unknown-country", "invalid-range"
}

// String returns a human-readable description of the validation error.
func (e ValidationError) String() string {
	return fmt.Sprintf("%s: %s in %s references %s", e.Issue, e.PathID, e.Field, e.RefID)
}

// Validate checks every saved path against the stored countries and
// technologies. Returns validation errors for:
// - Dangling technology references (ids no longer in the catalog)
// - Country codes with no stored series
// - Year ranges that end before they start
func Validate(ctx context.Context, s Store) ([]ValidationError, error) {
	countries, err := s.ListCountries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list countries: %w", err)
	}
	technologies, err := s.ListTechnologies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list technologies: %w", err)
	}
	paths, err := s.ListPaths(ctx, PathFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list paths: %w", err)
	}

	haveCountry := make(map[string]bool, len(countries))
	for _, c := range countries {
		haveCountry[c.Code] = true
	}
	haveTech := make(map[string]bool, len(technologies))
	for _, t := range technologies {
		haveTech[t.ID] = true
	}

	var issues []ValidationError
	for _, p := range paths {
		if !haveCountry[p.CountryCode] {
			issue := "dangling"
			if !constants.KnownCountry(p.CountryCode) {
				issue = "unknown-country"
			}
			issues = append(issues, ValidationError{
				PathID: p.ID,
				Field:  "country_code",
				RefID:  p.CountryCode,
				Issue:  issue,
			})
		}
		for _, id := range p.CleantechIDs {
			if !haveTech[id] {
				issues = append(issues, ValidationError{
					PathID: p.ID,
					Field:  "cleantech_ids",
					RefID:  id,
					Issue:  "dangling",
				})
			}
		}
		if p.EndingYear < p.StartingYear {
			issues = append(issues, ValidationError{
				PathID: p.ID,
				Field:  "years",
				RefID:  fmt.Sprintf("%d-%d", p.StartingYear, p.EndingYear),
				Issue:  "invalid-range",
			})
		}
	}
	return issues, nil
}
