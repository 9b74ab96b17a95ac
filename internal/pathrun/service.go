// Package pathrun creates paths: it loads a country's history and the
// selected technologies from the store, runs the simulation and turns the
// result into a saved PathRecord.
package pathrun

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/allcarbonfree/carbonpath/internal/catalog"
	"github.com/allcarbonfree/carbonpath/internal/constants"
	"github.com/allcarbonfree/carbonpath/internal/frame"
	"github.com/allcarbonfree/carbonpath/internal/history"
	"github.com/allcarbonfree/carbonpath/internal/logging"
	"github.com/allcarbonfree/carbonpath/internal/models"
	"github.com/allcarbonfree/carbonpath/internal/sanitize"
	"github.com/allcarbonfree/carbonpath/internal/simulation"
	"github.com/allcarbonfree/carbonpath/internal/store"
	"github.com/google/uuid"
)

// ErrPathLimit is returned when an author already has the maximum number of
// saved paths.
var ErrPathLimit = errors.New("saved path limit reached")

// Request describes one path to create.
type Request struct {
	Name    string `json:"name" yaml:"name"`
	Author  string `json:"author,omitempty" yaml:"author,omitempty"`
	Country string `json:"country" yaml:"country"`

	TechnologyIDs []string `json:"technology_ids" yaml:"technology_ids"`

	StartingYear      int  `json:"starting_year" yaml:"starting_year"`
	EndingYear        int  `json:"ending_year" yaml:"ending_year"`
	IncreaseEnergyUse bool `json:"increase_energy_use" yaml:"increase_energy_use"`

	// TechnologyOutputID selects the technology whose deployment curve is
	// stored with the path.
	TechnologyOutputID string `json:"technology_output_id,omitempty" yaml:"technology_output_id,omitempty"`

	// IncludeFull stores the full trajectory next to the reduced one.
	IncludeFull bool `json:"include_full,omitempty" yaml:"include_full,omitempty"`

	// Save persists the path after it is built.
	Save bool `json:"save,omitempty" yaml:"save,omitempty"`
}

// Params converts the request's run settings.
func (r Request) Params() simulation.Params {
	return simulation.Params{
		StartingYear:       r.StartingYear,
		EndingYear:         r.EndingYear,
		IncreaseEnergyUse:  r.IncreaseEnergyUse,
		TechnologyOutputID: r.TechnologyOutputID,
	}
}

// Response is a created path with its summary.
type Response struct {
	Path    models.PathRecord  `json:"path"`
	Summary simulation.Summary `json:"summary"`
	Saved   bool               `json:"saved"`
}

// Config holds service settings.
type Config struct {
	// Workers bounds concurrent simulations in CreateBatch.
	// Default: 4
	Workers int
}

// DefaultConfig returns sensible defaults for the service.
func DefaultConfig() Config {
	return Config{Workers: 4}
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the operational logger passed to every simulation.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDecisionLogger records technology steps and created paths.
func WithDecisionLogger(dl *logging.DecisionLogger) Option {
	return func(s *Service) { s.decisions = dl }
}

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Service builds paths against a store. It is safe for concurrent use as
// long as the store is.
type Service struct {
	store     store.Store
	workers   int
	logger    *slog.Logger
	decisions *logging.DecisionLogger
	now       func() time.Time
}

// NewService creates a path service. If cfg is nil, defaults are used.
func NewService(s store.Store, cfg *Config, opts ...Option) *Service {
	c := DefaultConfig()
	if cfg != nil {
		c = *cfg
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	svc := &Service{
		store:   s,
		workers: c.Workers,
		logger:  slog.New(slog.DiscardHandler),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// prepared is a request whose inputs are loaded and validated.
type prepared struct {
	req  Request
	id   string
	path *simulation.Path
}

// Create runs one request.
func (s *Service) Create(ctx context.Context, req Request) (*Response, error) {
	p, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result := p.path.Simulate()
	if err := result.Err(); err != nil {
		return nil, err
	}
	resp, err := s.build(p, result, result.Summary())
	if err != nil {
		return nil, err
	}
	if err := s.commit(ctx, []*prepared{p}, []*Response{resp}); err != nil {
		return nil, err
	}
	return resp, nil
}

// CreateBatch runs requests concurrently and returns responses in request
// order. Inputs are all loaded and every record is built before anything is
// saved, and the per-author limit is checked against the whole batch, so a
// failed request or an author over the limit leaves the store untouched.
func (s *Service) CreateBatch(ctx context.Context, reqs []Request) ([]*Response, error) {
	preps := make([]*prepared, len(reqs))
	jobs := make([]simulation.Job, len(reqs))
	for i, req := range reqs {
		p, err := s.prepare(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("request %d (%s): %w", i, req.Name, err)
		}
		preps[i] = p
		jobs[i] = simulation.Job{Name: p.id, Path: p.path}
	}

	results, err := simulation.RunBatch(ctx, jobs, s.workers)
	if err != nil {
		return nil, err
	}

	out := make([]*Response, len(results))
	for i, res := range results {
		resp, err := s.build(preps[i], res.Result, res.Summary)
		if err != nil {
			return nil, fmt.Errorf("request %d (%s): %w", i, preps[i].req.Name, err)
		}
		out[i] = resp
	}
	if err := s.commit(ctx, preps, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) prepare(ctx context.Context, req Request) (*prepared, error) {
	req.Country = strings.ToUpper(strings.TrimSpace(req.Country))
	if req.Country == "" {
		return nil, fmt.Errorf("country is required")
	}
	req.Name = sanitize.Name(req.Name)
	req.Author = sanitize.Identifier(req.Author)
	if req.Name == "" {
		req.Name = req.Country + " path"
	}

	series, err := s.loadSeries(ctx, req.Country)
	if err != nil {
		return nil, err
	}

	records, err := s.selectTechnologies(ctx, req.TechnologyIDs)
	if err != nil {
		return nil, err
	}
	sel, err := catalog.Adapt(records, series.Subsectors())
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	path, err := simulation.NewPath(series, sel, req.Params(),
		simulation.WithLogger(s.logger.With("path_id", id, "country", req.Country)),
		simulation.WithDecisionLogger(s.decisions.With(map[string]any{"path_id": id, "country": req.Country})),
	)
	if err != nil {
		return nil, err
	}
	return &prepared{req: req, id: id, path: path}, nil
}

func (s *Service) loadSeries(ctx context.Context, code string) (*history.Series, error) {
	country, err := s.store.GetCountry(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("loading country %s: %w", code, err)
	}
	f, err := frame.ReadJSON(bytes.NewReader(country.Series))
	if err != nil {
		return nil, fmt.Errorf("decoding series for %s: %w", code, err)
	}
	series, err := history.FromFrame(f)
	if err != nil {
		return nil, fmt.Errorf("series for %s: %w", code, err)
	}
	return series, nil
}

func (s *Service) selectTechnologies(ctx context.Context, ids []string) ([]models.TechnologyRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	all, err := s.store.ListTechnologies(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing technologies: %w", err)
	}
	cat, err := catalog.New(all...)
	if err != nil {
		return nil, err
	}
	return cat.Select(ids)
}

func (s *Service) build(p *prepared, result *simulation.Result, summary simulation.Summary) (*Response, error) {
	rec, err := s.buildRecord(p, result, summary)
	if err != nil {
		return nil, err
	}
	return &Response{Path: rec, Summary: summary}, nil
}

// commit saves the responses whose request asked for it, after checking the
// per-author limit for all of them, then logs every created path.
func (s *Service) commit(ctx context.Context, preps []*prepared, resps []*Response) error {
	var pending []models.PathRecord
	for i, resp := range resps {
		if preps[i].req.Save {
			pending = append(pending, resp.Path)
		}
	}
	if err := s.checkLimit(ctx, pending); err != nil {
		return err
	}

	for i, resp := range resps {
		if !preps[i].req.Save {
			continue
		}
		if err := s.store.SavePath(ctx, resp.Path); err != nil {
			return fmt.Errorf("saving path %s: %w", resp.Path.ID, err)
		}
		resp.Saved = true
	}

	for _, resp := range resps {
		rec := resp.Path
		s.decisions.Log(map[string]any{
			"event":            "path_created",
			"path_id":          rec.ID,
			"country":          rec.CountryCode,
			"technologies":     rec.CleantechIDs,
			"carbon_zero_year": rec.CarbonZeroYear,
			"saved":            resp.Saved,
		})
		s.logger.Info("path created",
			"path_id", rec.ID,
			"country", rec.CountryCode,
			"technologies", len(rec.CleantechIDs),
			"carbon_zero_year", rec.CarbonZeroYear,
			"saved", resp.Saved)
	}
	return nil
}

func (s *Service) buildRecord(p *prepared, result *simulation.Result, summary simulation.Summary) (models.PathRecord, error) {
	ids := p.path.Selection().IDs()
	sort.Strings(ids)

	lite, err := result.Lite()
	if err != nil {
		return models.PathRecord{}, fmt.Errorf("reduced trajectory: %w", err)
	}
	var buf bytes.Buffer
	if err := frame.WriteJSON(&buf, lite, 0); err != nil {
		return models.PathRecord{}, err
	}

	rec := models.PathRecord{
		ID:                       p.id,
		Name:                     p.req.Name,
		Author:                   p.req.Author,
		CountryCode:              p.req.Country,
		StartingYear:             p.req.StartingYear,
		EndingYear:               p.req.EndingYear,
		CleantechIDs:             ids,
		CreatedAt:                s.now().UTC(),
		CountryDF:                json.RawMessage(buf.Bytes()),
		TotalSimEmissions:        summary.TotalEmissionsInt(),
		MaxCarbonFreeElectricity: summary.MaxCarbonFreeInt(),
		EstDegreeRise:            summary.EstDegreeRise,
		CarbonZeroYear:           summary.CarbonZeroYear,
		IncludeWithProfile:       p.req.Author == constants.ProfileAuthor,
	}

	if p.req.IncludeFull {
		var full bytes.Buffer
		if err := frame.WriteJSON(&full, result.Frame(), -1); err != nil {
			return models.PathRecord{}, err
		}
		rec.CountryDFFull = json.RawMessage(full.Bytes())
	}

	if result.TechnologyOutput != nil {
		data, err := json.Marshal(result.TechnologyOutput)
		if err != nil {
			return models.PathRecord{}, fmt.Errorf("encoding technology output: %w", err)
		}
		rec.CleantechAnnualOutput = data
	}
	return rec, nil
}

// checkLimit fails with ErrPathLimit when saving recs would take an author
// past the saved path limit. The profile author and anonymous paths are not
// limited.
func (s *Service) checkLimit(ctx context.Context, recs []models.PathRecord) error {
	adding := map[string]int{}
	var authors []string
	for _, rec := range recs {
		if rec.Author == "" || rec.Author == constants.ProfileAuthor {
			continue
		}
		if adding[rec.Author] == 0 {
			authors = append(authors, rec.Author)
		}
		adding[rec.Author]++
	}

	for _, author := range authors {
		existing, err := s.store.ListPaths(ctx, store.PathFilter{Author: author})
		if err != nil {
			return fmt.Errorf("counting paths for %s: %w", author, err)
		}
		if len(existing)+adding[author] > constants.UserPathLimit {
			return fmt.Errorf("%w: %s has %d, saving %d more", ErrPathLimit, author, len(existing), adding[author])
		}
	}
	return nil
}
