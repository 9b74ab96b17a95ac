package mcp

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/allcarbonfree/carbonpath/internal/catalog"
	"github.com/allcarbonfree/carbonpath/internal/constants"
	"github.com/allcarbonfree/carbonpath/internal/ratelimit"
	"github.com/allcarbonfree/carbonpath/internal/store"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func TestHandleSimulate_Defaults(t *testing.T) {
	server, _ := setupTestServer(t)
	defer server.Close()

	result, out, err := server.handleSimulate(context.Background(), &sdk.CallToolRequest{}, SimulateInput{})
	if err != nil {
		t.Fatalf("handleSimulate failed: %v", err)
	}
	if result != nil {
		t.Error("Expected nil result (SDK auto-populates)")
	}

	if out.PathID == "" {
		t.Error("expected a path id")
	}
	if out.Country != "WRL" {
		t.Errorf("Country = %q, want WRL", out.Country)
	}
	if out.Name != "WRL path" {
		t.Errorf("Name = %q, want 'WRL path'", out.Name)
	}
	if out.CarbonZeroYear != 2025 {
		t.Errorf("CarbonZeroYear = %d, want 2025", out.CarbonZeroYear)
	}
	if out.TotalEmissionsGt != 4180 {
		t.Errorf("TotalEmissionsGt = %v, want 4180", out.TotalEmissionsGt)
	}
	if out.Saved {
		t.Error("path should not be saved unless requested")
	}
	if out.Trajectory == nil {
		t.Fatal("expected a trajectory")
	}
	if !reflect.DeepEqual(out.Trajectory.Columns, constants.LiteColumns) {
		t.Errorf("Columns = %v, want %v", out.Trajectory.Columns, constants.LiteColumns)
	}
	if len(out.Trajectory.Index) != 15 || len(out.Trajectory.Data) != 15 {
		t.Errorf("trajectory has %d years, want 15", len(out.Trajectory.Index))
	}
}

func TestHandleSimulate_WithTechnologiesAndSave(t *testing.T) {
	server, _ := setupTestServer(t)
	defer server.Close()
	ctx := context.Background()

	_, out, err := server.handleSimulate(ctx, &sdk.CallToolRequest{}, SimulateInput{
		Country:            "wrl",
		Technologies:       []string{"solar-farm", "electric-cars"},
		TechnologyOutputID: "solar-farm",
		Name:               "Sunny",
		Author:             "tester",
		Save:               true,
	})
	if err != nil {
		t.Fatalf("handleSimulate failed: %v", err)
	}
	if want := []string{"electric-cars", "solar-farm"}; !reflect.DeepEqual(out.Technologies, want) {
		t.Errorf("Technologies = %v, want %v", out.Technologies, want)
	}
	if len(out.TechnologyOutput) != 7 {
		t.Errorf("TechnologyOutput = %v, want 7 entries", out.TechnologyOutput)
	}
	if !out.Saved {
		t.Fatal("expected path to be saved")
	}

	_, paths, err := server.handlePaths(ctx, &sdk.CallToolRequest{}, PathsInput{Author: "tester"})
	if err != nil {
		t.Fatalf("handlePaths failed: %v", err)
	}
	if paths.Count != 1 || paths.Paths[0].ID != out.PathID {
		t.Fatalf("paths = %+v, want the saved path", paths)
	}
	if paths.Paths[0].Name != "Sunny" || paths.Paths[0].Country != "WRL" {
		t.Errorf("summary = %+v", paths.Paths[0])
	}
}

func TestHandleSimulate_IncreaseEnergyUseOverride(t *testing.T) {
	server, _ := setupTestServer(t)
	defer server.Close()

	on := true
	req := server.request(SimulateInput{IncreaseEnergyUse: &on, StartingYear: 2015})
	if !req.IncreaseEnergyUse {
		t.Error("explicit increase_energy_use should override the default")
	}
	if req.StartingYear != 2015 || req.EndingYear != 2025 || req.Country != "WRL" {
		t.Errorf("request = %+v", req)
	}

	req = server.request(SimulateInput{})
	if req.IncreaseEnergyUse {
		t.Error("unset increase_energy_use should use the default")
	}
}

func TestHandleSimulate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		args   SimulateInput
		target error
	}{
		{"unknown country", SimulateInput{Country: "ATL"}, store.ErrNotFound},
		{"unknown technology", SimulateInput{Technologies: []string{"fusion"}}, catalog.ErrUnknownTechnology},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, dir := setupTestServer(t)
			defer server.Close()

			_, _, err := server.handleSimulate(context.Background(), &sdk.CallToolRequest{}, tt.args)
			if !errors.Is(err, tt.target) {
				t.Fatalf("err = %v, want %v", err, tt.target)
			}

			server.audit.Close()
			entries := readAuditEntries(t, dir)
			if len(entries) != 1 || entries[0].Status != "error" {
				t.Errorf("audit entries = %+v, want one error entry", entries)
			}
		})
	}
}

func TestHandleSimulate_RateLimited(t *testing.T) {
	server, _ := setupTestServer(t)
	defer server.Close()
	ctx := context.Background()

	var err error
	for i := 0; i < 6; i++ {
		_, _, err = server.handleSimulate(ctx, &sdk.CallToolRequest{}, SimulateInput{})
		if err != nil {
			break
		}
	}
	if !errors.Is(err, ratelimit.ErrRateLimited) {
		t.Errorf("err = %v, want rate limit after the burst", err)
	}
}

func TestHandleTechnologies(t *testing.T) {
	server, _ := setupTestServer(t)
	defer server.Close()
	ctx := context.Background()

	_, out, err := server.handleTechnologies(ctx, &sdk.CallToolRequest{}, TechnologiesInput{})
	if err != nil {
		t.Fatalf("handleTechnologies failed: %v", err)
	}
	if out.Count != 2 || len(out.Technologies) != 2 {
		t.Fatalf("Count = %d, want 2", out.Count)
	}
	if out.Technologies[0].ID != "electric-cars" || out.Technologies[1].ID != "solar-farm" {
		t.Errorf("ids = %s, %s", out.Technologies[0].ID, out.Technologies[1].ID)
	}

	cars := out.Technologies[0]
	if cars.Generation != "fossil" || cars.ReplaceFossil {
		t.Errorf("electric-cars = %+v", cars)
	}
	if !reflect.DeepEqual(cars.Subsectors, []string{"Road"}) {
		t.Errorf("Subsectors = %v, want [Road]", cars.Subsectors)
	}

	solar := out.Technologies[1]
	if strings.Contains(solar.Description, "<system>") || strings.HasPrefix(solar.Description, "#") {
		t.Errorf("Description not sanitized: %q", solar.Description)
	}
	if solar.StartYear != 2000 {
		t.Errorf("StartYear = %d, want 2000", solar.StartYear)
	}
}

func TestHandleTechnologies_ByID(t *testing.T) {
	server, _ := setupTestServer(t)
	defer server.Close()
	ctx := context.Background()

	_, out, err := server.handleTechnologies(ctx, &sdk.CallToolRequest{}, TechnologiesInput{ID: "solar-farm"})
	if err != nil {
		t.Fatalf("handleTechnologies failed: %v", err)
	}
	if out.Count != 1 || out.Technologies[0].Name != "Solar farm" {
		t.Errorf("out = %+v", out)
	}

	_, _, err = server.handleTechnologies(ctx, &sdk.CallToolRequest{}, TechnologiesInput{ID: "missing"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestHandleCountries(t *testing.T) {
	server, _ := setupTestServer(t)
	defer server.Close()

	_, out, err := server.handleCountries(context.Background(), &sdk.CallToolRequest{}, CountriesInput{})
	if err != nil {
		t.Fatalf("handleCountries failed: %v", err)
	}
	if out.Count != 1 {
		t.Fatalf("Count = %d, want 1", out.Count)
	}
	c := out.Countries[0]
	if c.Code != "WRL" || c.Name != "World" {
		t.Errorf("country = %+v", c)
	}
	if c.FirstYear != 2011 || c.LatestYear != 2020 {
		t.Errorf("years = %d..%d, want 2011..2020", c.FirstYear, c.LatestYear)
	}
	if len(c.Subsectors) == 0 {
		t.Error("expected subsectors from the series")
	}
}

func TestHandlePaths_Empty(t *testing.T) {
	server, _ := setupTestServer(t)
	defer server.Close()

	_, out, err := server.handlePaths(context.Background(), &sdk.CallToolRequest{}, PathsInput{})
	if err != nil {
		t.Fatalf("handlePaths failed: %v", err)
	}
	if out.Count != 0 || out.Paths == nil {
		t.Errorf("out = %+v, want an empty non-nil list", out)
	}

	_, _, err = server.handlePaths(context.Background(), &sdk.CallToolRequest{}, PathsInput{ID: "missing"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestHandleValidate(t *testing.T) {
	server, _ := setupTestServer(t)
	defer server.Close()
	ctx := context.Background()

	_, out, err := server.handleValidate(ctx, &sdk.CallToolRequest{}, ValidateInput{})
	if err != nil {
		t.Fatalf("handleValidate failed: %v", err)
	}
	if !out.Valid || out.Count != 0 {
		t.Errorf("out = %+v, want valid", out)
	}

	_, sim, err := server.handleSimulate(ctx, &sdk.CallToolRequest{}, SimulateInput{
		Technologies: []string{"solar-farm"},
		Save:         true,
	})
	if err != nil {
		t.Fatalf("handleSimulate failed: %v", err)
	}
	if err := server.store.DeleteTechnology(ctx, "solar-farm"); err != nil {
		t.Fatalf("DeleteTechnology: %v", err)
	}

	_, out, err = server.handleValidate(ctx, &sdk.CallToolRequest{}, ValidateInput{})
	if err != nil {
		t.Fatalf("handleValidate failed: %v", err)
	}
	if out.Valid || out.Count != 1 {
		t.Fatalf("out = %+v, want one issue", out)
	}
	issue := out.Errors[0]
	if issue.PathID != sim.PathID || issue.Field != "cleantech_ids" || issue.RefID != "solar-farm" {
		t.Errorf("issue = %+v", issue)
	}
}
