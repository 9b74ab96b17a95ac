package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/allcarbonfree/carbonpath/internal/frame"
	"github.com/allcarbonfree/carbonpath/internal/history"
	"github.com/allcarbonfree/carbonpath/internal/models"
	"github.com/allcarbonfree/carbonpath/internal/pathrun"
	"github.com/allcarbonfree/carbonpath/internal/sanitize"
	"github.com/allcarbonfree/carbonpath/internal/store"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// registerTools registers all carbonpath MCP tools with the server.
func (s *Server) registerTools() error {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "carbonpath_simulate",
		Description: "Simulate a country's emissions and electricity mix under a set of clean technologies and return the summary and reduced trajectory",
	}, s.handleSimulate)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "carbonpath_technologies",
		Description: "List the clean technologies in the catalog",
	}, s.handleTechnologies)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "carbonpath_countries",
		Description: "List countries with imported emissions history",
	}, s.handleCountries)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "carbonpath_paths",
		Description: "List saved paths, optionally filtered by author, country or profile",
	}, s.handlePaths)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "carbonpath_validate",
		Description: "Check saved paths for dangling technology and country references",
	}, s.handleValidate)

	return nil
}

func (s *Server) handleSimulate(ctx context.Context, req *sdk.CallToolRequest, args SimulateInput) (_ *sdk.CallToolResult, _ SimulateOutput, retErr error) {
	start := time.Now()
	defer func() {
		params := map[string]interface{}{
			"country":      args.Country,
			"technologies": len(args.Technologies),
			"save":         args.Save,
		}
		if args.StartingYear != 0 {
			params["starting_year"] = args.StartingYear
		}
		if args.EndingYear != 0 {
			params["ending_year"] = args.EndingYear
		}
		if args.IncreaseEnergyUse != nil {
			params["increase_energy_use"] = *args.IncreaseEnergyUse
		}
		if args.Name != "" {
			params["name"] = args.Name
		}
		if args.Author != "" {
			params["author"] = args.Author
		}
		if args.TechnologyOutputID != "" {
			params["technology_output_id"] = args.TechnologyOutputID
		}
		s.auditTool("carbonpath_simulate", start, retErr, sanitizeToolParams(params))
	}()

	if err := s.limiters.Check("carbonpath_simulate"); err != nil {
		return nil, SimulateOutput{}, err
	}

	resp, err := s.service.Create(ctx, s.request(args))
	if err != nil {
		return nil, SimulateOutput{}, err
	}

	var traj Trajectory
	if err := json.Unmarshal(resp.Path.CountryDF, &traj); err != nil {
		return nil, SimulateOutput{}, fmt.Errorf("decoding trajectory: %w", err)
	}
	var output []int64
	if len(resp.Path.CleantechAnnualOutput) > 0 {
		if err := json.Unmarshal(resp.Path.CleantechAnnualOutput, &output); err != nil {
			return nil, SimulateOutput{}, fmt.Errorf("decoding technology output: %w", err)
		}
	}

	return nil, SimulateOutput{
		PathID:           resp.Path.ID,
		Name:             resp.Path.Name,
		Country:          resp.Path.CountryCode,
		Technologies:     resp.Path.CleantechIDs,
		TotalEmissionsGt: resp.Summary.TotalEmissionsGt,
		MaxCarbonFreeGW:  resp.Summary.MaxCarbonFreeGW,
		EstDegreeRise:    resp.Summary.EstDegreeRise,
		CarbonZeroYear:   resp.Summary.CarbonZeroYear,
		Trajectory:       &traj,
		TechnologyOutput: output,
		Saved:            resp.Saved,
	}, nil
}

// request fills unset tool arguments from the configured defaults.
func (s *Server) request(args SimulateInput) pathrun.Request {
	r := pathrun.Request{
		Name:               args.Name,
		Author:             args.Author,
		Country:            args.Country,
		TechnologyIDs:      args.Technologies,
		StartingYear:       args.StartingYear,
		EndingYear:         args.EndingYear,
		IncreaseEnergyUse:  s.defaults.IncreaseEnergyUse,
		TechnologyOutputID: args.TechnologyOutputID,
		Save:               args.Save,
	}
	if r.Country == "" {
		r.Country = s.defaults.Country
	}
	if r.StartingYear == 0 {
		r.StartingYear = s.defaults.StartingYear
	}
	if r.EndingYear == 0 {
		r.EndingYear = s.defaults.EndingYear
	}
	if args.IncreaseEnergyUse != nil {
		r.IncreaseEnergyUse = *args.IncreaseEnergyUse
	}
	return r
}

func (s *Server) handleTechnologies(ctx context.Context, req *sdk.CallToolRequest, args TechnologiesInput) (_ *sdk.CallToolResult, _ TechnologiesOutput, retErr error) {
	start := time.Now()
	defer func() {
		params := map[string]interface{}{}
		if args.ID != "" {
			params["id"] = args.ID
		}
		s.auditTool("carbonpath_technologies", start, retErr, sanitizeToolParams(params))
	}()

	if err := s.limiters.Check("carbonpath_technologies"); err != nil {
		return nil, TechnologiesOutput{}, err
	}

	var records []models.TechnologyRecord
	if args.ID != "" {
		rec, err := s.store.GetTechnology(ctx, args.ID)
		if err != nil {
			return nil, TechnologiesOutput{}, err
		}
		records = []models.TechnologyRecord{*rec}
	} else {
		var err error
		records, err = s.store.ListTechnologies(ctx)
		if err != nil {
			return nil, TechnologiesOutput{}, fmt.Errorf("failed to list technologies: %w", err)
		}
	}

	out := make([]TechnologySummary, 0, len(records))
	for _, r := range records {
		sum := TechnologySummary{
			ID:            r.ID,
			Name:          sanitize.Name(r.Name),
			Description:   sanitize.Text(r.Description),
			Generation:    r.ElectricGenerationType.String(),
			ReplaceFossil: r.ReplaceFossil,
			Subsectors:    []string(r.AllSubsectors),
		}
		if r.StartYear != nil {
			sum.StartYear = *r.StartYear
		}
		out = append(out, sum)
	}

	return nil, TechnologiesOutput{Technologies: out, Count: len(out)}, nil
}

func (s *Server) handleCountries(ctx context.Context, req *sdk.CallToolRequest, args CountriesInput) (_ *sdk.CallToolResult, _ CountriesOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("carbonpath_countries", start, retErr, sanitizeToolParams(map[string]interface{}{}))
	}()

	if err := s.limiters.Check("carbonpath_countries"); err != nil {
		return nil, CountriesOutput{}, err
	}

	countries, err := s.store.ListCountries(ctx)
	if err != nil {
		return nil, CountriesOutput{}, fmt.Errorf("failed to list countries: %w", err)
	}

	out := make([]CountrySummary, 0, len(countries))
	for _, c := range countries {
		sum := CountrySummary{
			Code:       c.Code,
			Name:       sanitize.Name(c.Name),
			Subsectors: []string{},
			UpdatedAt:  c.UpdatedAt,
		}
		if series, err := decodeSeries(c.Series); err == nil {
			sum.FirstYear = series.FirstYear()
			sum.LatestYear = series.LatestYear()
			if ss := series.Subsectors(); ss != nil {
				sum.Subsectors = ss
			}
		} else {
			s.logger.Warn("unreadable country series", "country", c.Code, "error", err)
		}
		out = append(out, sum)
	}

	return nil, CountriesOutput{Countries: out, Count: len(out)}, nil
}

func decodeSeries(data json.RawMessage) (*history.Series, error) {
	f, err := frame.ReadJSON(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return history.FromFrame(f)
}

func (s *Server) handlePaths(ctx context.Context, req *sdk.CallToolRequest, args PathsInput) (_ *sdk.CallToolResult, _ PathsOutput, retErr error) {
	start := time.Now()
	defer func() {
		params := map[string]interface{}{
			"profile_only": args.ProfileOnly,
			"limit":        args.Limit,
		}
		if args.ID != "" {
			params["id"] = args.ID
		}
		if args.Author != "" {
			params["author"] = args.Author
		}
		if args.Country != "" {
			params["country"] = args.Country
		}
		s.auditTool("carbonpath_paths", start, retErr, sanitizeToolParams(params))
	}()

	if err := s.limiters.Check("carbonpath_paths"); err != nil {
		return nil, PathsOutput{}, err
	}

	var paths []models.PathRecord
	if args.ID != "" {
		p, err := s.store.GetPath(ctx, args.ID)
		if err != nil {
			return nil, PathsOutput{}, err
		}
		paths = []models.PathRecord{*p}
	} else {
		var err error
		paths, err = s.store.ListPaths(ctx, store.PathFilter{
			Author:      args.Author,
			CountryCode: strings.ToUpper(args.Country),
			ProfileOnly: args.ProfileOnly,
			Limit:       args.Limit,
		})
		if err != nil {
			return nil, PathsOutput{}, fmt.Errorf("failed to list paths: %w", err)
		}
	}

	out := make([]PathSummary, 0, len(paths))
	for _, p := range paths {
		out = append(out, PathSummary{
			ID:                p.ID,
			Name:              p.Name,
			Author:            p.Author,
			Country:           p.CountryCode,
			StartingYear:      p.StartingYear,
			EndingYear:        p.EndingYear,
			Technologies:      p.CleantechIDs,
			TotalSimEmissions: p.TotalSimEmissions,
			EstDegreeRise:     p.EstDegreeRise,
			CarbonZeroYear:    p.CarbonZeroYear,
			CreatedAt:         p.CreatedAt,
		})
	}

	return nil, PathsOutput{Paths: out, Count: len(out)}, nil
}

func (s *Server) handleValidate(ctx context.Context, req *sdk.CallToolRequest, args ValidateInput) (_ *sdk.CallToolResult, _ ValidateOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("carbonpath_validate", start, retErr, sanitizeToolParams(map[string]interface{}{}))
	}()

	if err := s.limiters.Check("carbonpath_validate"); err != nil {
		return nil, ValidateOutput{}, err
	}

	issues, err := store.Validate(ctx, s.store)
	if err != nil {
		return nil, ValidateOutput{}, fmt.Errorf("validation failed: %w", err)
	}

	out := make([]ValidationIssue, 0, len(issues))
	for _, e := range issues {
		out = append(out, ValidationIssue{PathID: e.PathID, Field: e.Field, RefID: e.RefID, Issue: e.Issue})
	}
	return nil, ValidateOutput{Valid: len(out) == 0, Errors: out, Count: len(out)}, nil
}
