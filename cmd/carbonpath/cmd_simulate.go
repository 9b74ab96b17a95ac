package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/allcarbonfree/carbonpath/internal/config"
	"github.com/allcarbonfree/carbonpath/internal/constants"
	"github.com/allcarbonfree/carbonpath/internal/frame"
	"github.com/allcarbonfree/carbonpath/internal/pathrun"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate a path for one country",
		Long: `Run a path simulation and print its summary.

Unset flags fall back to the simulation.* config settings.

Examples:
  carbonpath simulate --country WRL
  carbonpath simulate --country USA --tech solar-farm --tech onshore-wind --save
  carbonpath simulate --country WRL --tech solar-farm --csv trajectory.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			req := requestFromFlags(cmd, e.cfg.Simulation)
			csvPath, _ := cmd.Flags().GetString("csv")
			if csvPath != "" {
				req.IncludeFull = true
			}

			ctx, cancel := signalContext(context.Background())
			defer cancel()

			svc := pathrun.NewService(e.store, &pathrun.Config{Workers: e.cfg.Simulation.Workers},
				pathrun.WithLogger(e.logger),
				pathrun.WithDecisionLogger(e.decisions))
			resp, err := svc.Create(ctx, req)
			if err != nil {
				return err
			}

			if csvPath != "" {
				if err := writeTrajectoryCSV(csvPath, resp.Path.CountryDFFull); err != nil {
					return err
				}
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			printResponse(cmd.OutOrStdout(), resp)
			return nil
		},
	}

	cmd.Flags().String("country", "", "Country code (default: simulation.country)")
	cmd.Flags().StringSlice("tech", nil, "Technology id to deploy (repeatable)")
	cmd.Flags().Int("start", 0, "Starting year (default: simulation.starting_year)")
	cmd.Flags().Int("end", 0, "Ending year (default: simulation.ending_year)")
	cmd.Flags().Bool("increase-energy-use", true, "Apply baseline emissions growth (default: simulation.increase_energy_use)")
	cmd.Flags().String("output-tech", "", "Technology whose deployment curve is stored")
	cmd.Flags().String("name", "", "Path name")
	cmd.Flags().String("author", "", "Path author")
	cmd.Flags().Bool("save", false, "Save the path")
	cmd.Flags().Bool("full", false, "Store the full trajectory with a saved path")
	cmd.Flags().String("csv", "", "Write the full trajectory to a CSV file")
	return cmd
}

// requestFromFlags builds a request from flags, falling back to defaults for
// anything left unset.
func requestFromFlags(cmd *cobra.Command, defaults config.SimulationConfig) pathrun.Request {
	flags := cmd.Flags()
	req := pathrun.Request{
		Country:           defaults.Country,
		StartingYear:      defaults.StartingYear,
		EndingYear:        defaults.EndingYear,
		IncreaseEnergyUse: defaults.IncreaseEnergyUse,
	}
	if v, _ := flags.GetString("country"); v != "" {
		req.Country = v
	}
	if v, _ := flags.GetInt("start"); v != 0 {
		req.StartingYear = v
	}
	if v, _ := flags.GetInt("end"); v != 0 {
		req.EndingYear = v
	}
	if flags.Changed("increase-energy-use") {
		req.IncreaseEnergyUse, _ = flags.GetBool("increase-energy-use")
	}
	req.TechnologyIDs, _ = flags.GetStringSlice("tech")
	req.TechnologyOutputID, _ = flags.GetString("output-tech")
	req.Name, _ = flags.GetString("name")
	req.Author, _ = flags.GetString("author")
	req.Save, _ = flags.GetBool("save")
	req.IncludeFull, _ = flags.GetBool("full")
	return req
}

func writeTrajectoryCSV(path string, data []byte) error {
	f, err := frame.ReadJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decoding trajectory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := frame.WriteCSV(file, f, constants.YearColumn); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func printResponse(w io.Writer, resp *pathrun.Response) {
	p := resp.Path
	fmt.Fprintf(w, "%s (%s, %d-%d)\n", p.Name, p.CountryCode, p.StartingYear, p.EndingYear)
	if len(p.CleantechIDs) > 0 {
		fmt.Fprintf(w, "  technologies:       %s\n", strings.Join(p.CleantechIDs, ", "))
	} else {
		fmt.Fprintf(w, "  technologies:       (none)\n")
	}
	fmt.Fprintf(w, "  total emissions:    %.0f Gt CO2e\n", resp.Summary.TotalEmissionsGt)
	fmt.Fprintf(w, "  est. degree rise:   %.1f C\n", resp.Summary.EstDegreeRise)
	fmt.Fprintf(w, "  carbon zero year:   %d\n", resp.Summary.CarbonZeroYear)
	fmt.Fprintf(w, "  max carbon-free:    %.0f GW\n", resp.Summary.MaxCarbonFreeGW)
	if resp.Saved {
		fmt.Fprintf(w, "  saved as:           %s\n", p.ID)
	}
}

// batchFile is the YAML layout read by the batch command.
type batchFile struct {
	Paths []pathrun.Request `yaml:"paths"`
}

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <file>",
		Short: "Simulate several paths from a YAML file",
		Long: `Run every path listed in a YAML file concurrently.

The file holds a "paths" list; each entry takes the same fields as
simulate (name, author, country, technology_ids, starting_year,
ending_year, increase_energy_use, technology_output_id, include_full,
save). Unset countries and years fall back to the config. If any path
fails to load, nothing is saved.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading batch file: %w", err)
			}

			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			reqs, err := parseBatch(data, e.cfg.Simulation)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext(context.Background())
			defer cancel()

			svc := pathrun.NewService(e.store, &pathrun.Config{Workers: e.cfg.Simulation.Workers},
				pathrun.WithLogger(e.logger),
				pathrun.WithDecisionLogger(e.decisions))
			responses, err := svc.CreateBatch(ctx, reqs)
			if err != nil {
				return err
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
					"paths": responses,
					"count": len(responses),
				})
			}
			for i, resp := range responses {
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				printResponse(cmd.OutOrStdout(), resp)
			}
			return nil
		},
	}
	return cmd
}

// parseBatch decodes a batch file. IncreaseEnergyUse defaults from config
// only when the entry does not set it.
func parseBatch(data []byte, defaults config.SimulationConfig) ([]pathrun.Request, error) {
	var raw struct {
		Paths []map[string]interface{} `yaml:"paths"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing batch file: %w", err)
	}
	var f batchFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing batch file: %w", err)
	}
	if len(f.Paths) == 0 {
		return nil, fmt.Errorf("batch file has no paths")
	}

	for i := range f.Paths {
		r := &f.Paths[i]
		if r.Country == "" {
			r.Country = defaults.Country
		}
		if r.StartingYear == 0 {
			r.StartingYear = defaults.StartingYear
		}
		if r.EndingYear == 0 {
			r.EndingYear = defaults.EndingYear
		}
		if _, set := raw.Paths[i]["increase_energy_use"]; !set {
			r.IncreaseEnergyUse = defaults.IncreaseEnergyUse
		}
	}
	return f.Paths, nil
}
