package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/allcarbonfree/carbonpath/internal/catalog"
	"github.com/allcarbonfree/carbonpath/internal/constants"
	"github.com/allcarbonfree/carbonpath/internal/frame"
	"github.com/allcarbonfree/carbonpath/internal/history"
	"github.com/allcarbonfree/carbonpath/internal/models"
	"github.com/allcarbonfree/carbonpath/internal/sanitize"
	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import country histories and the technology catalog",
		Long: `Load data into the carbonpath database.

Examples:
  carbonpath import history world.csv --country WRL
  carbonpath import assemble --emissions usa_emissions.csv --energy usa_energy.csv --country USA
  carbonpath import catalog technologies.yaml`,
	}

	cmd.AddCommand(
		newImportHistoryCmd(),
		newImportAssembleCmd(),
		newImportCatalogCmd(),
	)
	return cmd
}

func newImportHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <file>",
		Short: "Import a prepared country series (CSV or split JSON)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, name, err := countryFlags(cmd)
			if err != nil {
				return err
			}
			series, err := history.LoadFile(args[0])
			if err != nil {
				return err
			}
			return putSeries(cmd, code, name, series)
		},
	}
	cmd.Flags().String("country", "", "Country code (required)")
	cmd.Flags().String("name", "", "Country display name (default: known name for the code)")
	cmd.MarkFlagRequired("country")
	return cmd
}

func newImportAssembleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assemble",
		Short: "Build a country series from subsector emissions and energy tables",
		Long: `Assemble a country series from two CSV tables indexed by year:

  --emissions  one column per subsector, in kt CO2e
  --energy     generation columns; only those naming "electricity" are kept

Sector totals and carbon-free generation are derived.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			code, name, err := countryFlags(cmd)
			if err != nil {
				return err
			}
			emissionsPath, _ := cmd.Flags().GetString("emissions")
			energyPath, _ := cmd.Flags().GetString("energy")

			emissions, err := readCSVFile(emissionsPath)
			if err != nil {
				return err
			}
			energy, err := readCSVFile(energyPath)
			if err != nil {
				return err
			}
			series, err := history.Assemble(emissions, energy)
			if err != nil {
				return fmt.Errorf("assembling %s: %w", code, err)
			}
			return putSeries(cmd, code, name, series)
		},
	}
	cmd.Flags().String("country", "", "Country code (required)")
	cmd.Flags().String("name", "", "Country display name (default: known name for the code)")
	cmd.Flags().String("emissions", "", "Subsector emissions CSV (required)")
	cmd.Flags().String("energy", "", "Electricity generation CSV (required)")
	cmd.MarkFlagRequired("country")
	cmd.MarkFlagRequired("emissions")
	cmd.MarkFlagRequired("energy")
	return cmd
}

func newImportCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog <file>",
		Short: "Import technology records from a YAML catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.LoadFile(args[0])
			if err != nil {
				return err
			}
			records := cat.All()
			// Reject records the simulation would refuse before anything is stored.
			if _, err := catalog.Adapt(records, constants.Subsectors()); err != nil {
				return fmt.Errorf("invalid catalog: %w", err)
			}

			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			ctx := context.Background()
			for _, r := range records {
				r.Name = sanitize.Name(r.Name)
				r.Description = sanitize.Text(r.Description)
				if err := e.store.PutTechnology(ctx, r); err != nil {
					return fmt.Errorf("storing %s: %w", r.ID, err)
				}
			}
			e.logger.Info("catalog imported", "technologies", len(records))

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				writeJSON(cmd.OutOrStdout(), map[string]interface{}{
					"status":       "imported",
					"technologies": cat.IDs(),
					"count":        len(records),
				})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d technologies\n", len(records))
			}
			return nil
		},
	}
	return cmd
}

func countryFlags(cmd *cobra.Command) (code, name string, err error) {
	code, _ = cmd.Flags().GetString("country")
	name, _ = cmd.Flags().GetString("name")
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", "", fmt.Errorf("--country is required")
	}
	name = sanitize.Name(name)
	if name == "" {
		if !constants.KnownCountry(code) {
			return "", "", fmt.Errorf("unknown country code %q: pass --name to import it anyway", code)
		}
		name = constants.CountryName(code)
	}
	return code, name, nil
}

func readCSVFile(path string) (*frame.Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()
	f, err := frame.ReadCSV(file, constants.YearColumn)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return f, nil
}

func putSeries(cmd *cobra.Command, code, name string, series *history.Series) error {
	data, err := json.Marshal(series.Frame())
	if err != nil {
		return fmt.Errorf("encoding series: %w", err)
	}

	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	country := models.Country{Code: code, Name: name, Series: data, UpdatedAt: time.Now().UTC()}
	if err := e.store.PutCountry(context.Background(), country); err != nil {
		return fmt.Errorf("storing %s: %w", code, err)
	}
	e.logger.Info("history imported", "country", code, "first_year", series.FirstYear(), "latest_year", series.LatestYear())

	jsonOut, _ := cmd.Flags().GetBool("json")
	if jsonOut {
		writeJSON(cmd.OutOrStdout(), map[string]interface{}{
			"status":      "imported",
			"country":     code,
			"name":        name,
			"first_year":  series.FirstYear(),
			"latest_year": series.LatestYear(),
			"subsectors":  series.Subsectors(),
		})
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %s (%s): %d-%d, %d subsectors\n",
			code, name, series.FirstYear(), series.LatestYear(), len(series.Subsectors()))
	}
	return nil
}
