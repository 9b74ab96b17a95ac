package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/allcarbonfree/carbonpath/internal/models"
	"github.com/allcarbonfree/carbonpath/internal/store"
	"github.com/spf13/cobra"
)

func newPathsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Manage saved paths",
		Long: `List, inspect and delete saved paths.

Examples:
  carbonpath paths list --country USA
  carbonpath paths show <id> --csv trajectory.csv
  carbonpath paths delete <id>`,
	}

	cmd.AddCommand(
		newPathsListCmd(),
		newPathsShowCmd(),
		newPathsDeleteCmd(),
	)
	return cmd
}

func newPathsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved paths, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			author, _ := cmd.Flags().GetString("author")
			country, _ := cmd.Flags().GetString("country")
			profile, _ := cmd.Flags().GetBool("profile")
			limit, _ := cmd.Flags().GetInt("limit")

			paths, err := e.store.ListPaths(context.Background(), store.PathFilter{
				Author:      author,
				CountryCode: strings.ToUpper(country),
				ProfileOnly: profile,
				Limit:       limit,
			})
			if err != nil {
				return fmt.Errorf("failed to list paths: %w", err)
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				// The tables are large; list output carries the summaries only.
				for i := range paths {
					paths[i].CountryDF = nil
					paths[i].CountryDFFull = nil
					paths[i].CleantechAnnualOutput = nil
				}
				if paths == nil {
					paths = []models.PathRecord{}
				}
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
					"paths": paths,
					"count": len(paths),
				})
			}

			if len(paths) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved paths.")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCOUNTRY\tYEARS\tTECH\tGT\tZERO\tCREATED")
			for _, p := range paths {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d-%d\t%d\t%d\t%d\t%s\n",
					p.ID, p.Name, p.CountryCode, p.StartingYear, p.EndingYear,
					len(p.CleantechIDs), p.TotalSimEmissions, p.CarbonZeroYear, formatTime(p.CreatedAt))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().String("author", "", "Filter by author")
	cmd.Flags().String("country", "", "Filter by country code")
	cmd.Flags().Bool("profile", false, "Only paths published with the profile")
	cmd.Flags().Int("limit", 0, "Maximum number of paths (0 = no limit)")
	return cmd
}

func newPathsShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a saved path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			p, err := e.store.GetPath(context.Background(), args[0])
			if err != nil {
				return err
			}

			if csvPath, _ := cmd.Flags().GetString("csv"); csvPath != "" {
				data := p.CountryDF
				if len(p.CountryDFFull) > 0 {
					data = p.CountryDFFull
				}
				if err := writeTrajectoryCSV(csvPath, data); err != nil {
					return err
				}
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), p)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s\n", p.Name)
			fmt.Fprintf(w, "  id:                 %s\n", p.ID)
			if p.Author != "" {
				fmt.Fprintf(w, "  author:             %s\n", p.Author)
			}
			fmt.Fprintf(w, "  country:            %s\n", p.CountryCode)
			fmt.Fprintf(w, "  years:              %d-%d\n", p.StartingYear, p.EndingYear)
			fmt.Fprintf(w, "  technologies:       %s\n", valueOrDefault(strings.Join(p.CleantechIDs, ", "), "(none)"))
			fmt.Fprintf(w, "  total emissions:    %d Gt CO2e\n", p.TotalSimEmissions)
			fmt.Fprintf(w, "  est. degree rise:   %.1f C\n", p.EstDegreeRise)
			fmt.Fprintf(w, "  carbon zero year:   %d\n", p.CarbonZeroYear)
			fmt.Fprintf(w, "  max carbon-free:    %d GW\n", p.MaxCarbonFreeElectricity)
			fmt.Fprintf(w, "  profile:            %v\n", p.IncludeWithProfile)
			fmt.Fprintf(w, "  created:            %s\n", formatTime(p.CreatedAt))
			return nil
		},
	}
	cmd.Flags().String("csv", "", "Write the stored trajectory to a CSV file")
	return cmd
}

func newPathsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.store.DeletePath(context.Background(), args[0]); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("path %s not found", args[0])
				}
				return err
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"status": "deleted", "id": args[0]})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted path %s\n", args[0])
			return nil
		},
	}
}

func valueOrDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
