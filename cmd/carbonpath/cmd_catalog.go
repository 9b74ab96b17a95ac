package main

import (
	"bytes"
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/allcarbonfree/carbonpath/internal/catalog"
	"github.com/allcarbonfree/carbonpath/internal/frame"
	"github.com/allcarbonfree/carbonpath/internal/history"
	"github.com/spf13/cobra"
)

func newTechnologiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "technologies",
		Short: "List the technology catalog",
		Long: `List the clean technologies stored in the catalog.

Use --export to print the catalog as YAML in the format read by
'carbonpath import catalog'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			records, err := e.store.ListTechnologies(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list technologies: %w", err)
			}

			if export, _ := cmd.Flags().GetBool("export"); export {
				cat, err := catalog.New(records...)
				if err != nil {
					return err
				}
				return cat.WriteYAML(cmd.OutOrStdout())
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
					"technologies": records,
					"count":        len(records),
				})
			}

			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No technologies. Run 'carbonpath import catalog <file>'.")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tGENERATION\tREPLACES FOSSIL\tSTART")
			for _, r := range records {
				start := "-"
				if r.StartYear != nil {
					start = fmt.Sprint(*r.StartYear)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%v\t%s\n",
					r.ID, r.Name, r.ElectricGenerationType.LongName(), r.ReplaceFossil, start)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().Bool("export", false, "Print the catalog as YAML")
	return cmd
}

func newCountriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "countries",
		Short: "List countries with imported history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			countries, err := e.store.ListCountries(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list countries: %w", err)
			}

			type row struct {
				Code       string   `json:"code"`
				Name       string   `json:"name"`
				FirstYear  int      `json:"first_year"`
				LatestYear int      `json:"latest_year"`
				Subsectors []string `json:"subsectors"`
				UpdatedAt  string   `json:"updated_at"`
			}
			rows := make([]row, 0, len(countries))
			for _, c := range countries {
				r := row{Code: c.Code, Name: c.Name, Subsectors: []string{}, UpdatedAt: formatTime(c.UpdatedAt)}
				f, err := frame.ReadJSON(bytes.NewReader(c.Series))
				if err == nil {
					var s *history.Series
					if s, err = history.FromFrame(f); err == nil {
						r.FirstYear, r.LatestYear = s.FirstYear(), s.LatestYear()
						if ss := s.Subsectors(); ss != nil {
							r.Subsectors = ss
						}
					}
				}
				if err != nil {
					e.logger.Warn("unreadable country series", "country", c.Code, "error", err)
				}
				rows = append(rows, r)
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
					"countries": rows,
					"count":     len(rows),
				})
			}

			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No countries. Run 'carbonpath import history <file> --country <code>'.")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "CODE\tNAME\tYEARS\tSUBSECTORS\tUPDATED")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%d-%d\t%d\t%s\n",
					r.Code, r.Name, r.FirstYear, r.LatestYear, len(r.Subsectors), r.UpdatedAt)
			}
			return tw.Flush()
		},
	}
}
