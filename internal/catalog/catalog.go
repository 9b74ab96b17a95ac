// Package catalog holds the clean-technology catalog and adapts selected
// records into the normalized form the simulation engine consumes.
package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/allcarbonfree/carbonpath/internal/constants"
	"github.com/allcarbonfree/carbonpath/internal/models"
	"gopkg.in/yaml.v3"
)

// ErrUnknownTechnology is returned by Select for ids not in the catalog.
var ErrUnknownTechnology = errors.New("unknown technology")

// ErrTooManyTechnologies is returned by Select when the selection exceeds
// constants.CleantechLimit.
var ErrTooManyTechnologies = errors.New("too many technologies selected")

// Catalog is a registry of technology records keyed by id.
// It is safe for concurrent use.
type Catalog struct {
	mu      sync.RWMutex
	records map[string]models.TechnologyRecord
	order   []string
}

// File is the on-disk YAML layout of a catalog.
type File struct {
	Technologies []models.TechnologyRecord `yaml:"technologies" json:"technologies"`
}

// New creates a catalog from records. A later record with the same id
// replaces an earlier one.
func New(records ...models.TechnologyRecord) (*Catalog, error) {
	c := &Catalog{records: make(map[string]models.TechnologyRecord, len(records))}
	for _, r := range records {
		if err := c.Add(r); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// LoadYAML reads a catalog from r.
func LoadYAML(r io.Reader) (*Catalog, error) {
	var f File
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	return New(f.Technologies...)
}

// LoadFile reads a catalog from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer file.Close()
	return LoadYAML(file)
}

// WriteYAML writes every record in catalog order.
func (c *Catalog) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(File{Technologies: c.All()}); err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}
	return enc.Close()
}

// Add inserts or replaces a record.
func (c *Catalog) Add(r models.TechnologyRecord) error {
	if r.ID == "" {
		return &ConfigurationError{Field: "id", Reason: "missing"}
	}
	if len(r.References) > constants.CleantechReferenceLimit {
		return &ConfigurationError{
			TechnologyID: r.ID,
			Field:        "references",
			Reason:       fmt.Sprintf("%d references exceed the limit of %d", len(r.References), constants.CleantechReferenceLimit),
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.records[r.ID]; !exists {
		c.order = append(c.order, r.ID)
	}
	c.records[r.ID] = r
	return nil
}

// Get returns the record with the given id.
func (c *Catalog) Get(id string) (models.TechnologyRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.records[id]
	return r, ok
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// All returns every record in insertion order.
func (c *Catalog) All() []models.TechnologyRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.TechnologyRecord, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.records[id])
	}
	return out
}

// IDs returns the sorted record ids.
func (c *Catalog) IDs() []string {
	c.mu.RLock()
	ids := append([]string(nil), c.order...)
	c.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// Select returns the records for ids in the requested order.
// Duplicate ids are collapsed to their first occurrence.
func (c *Catalog) Select(ids []string) ([]models.TechnologyRecord, error) {
	if len(ids) > constants.CleantechLimit {
		return nil, fmt.Errorf("%w: %d, limit is %d", ErrTooManyTechnologies, len(ids), constants.CleantechLimit)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]bool, len(ids))
	out := make([]models.TechnologyRecord, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		r, ok := c.records[id]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTechnology, id)
		}
		out = append(out, r)
	}
	return out, nil
}
