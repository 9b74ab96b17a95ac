package main

import (
	"context"
	"fmt"

	"github.com/allcarbonfree/carbonpath/internal/store"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check saved paths for dangling references",
		Long: `Check every saved path against the stored countries and technologies.

Reports:
  - technology ids no longer in the catalog
  - country codes with no imported history
  - year ranges that end before they start`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			issues, err := store.Validate(context.Background(), e.store)
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				if issues == nil {
					issues = []store.ValidationError{}
				}
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
					"valid":  len(issues) == 0,
					"errors": issues,
					"count":  len(issues),
				})
			}

			if len(issues) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No issues found.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Found %d issue(s):\n", len(issues))
			for _, issue := range issues {
				fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", issue)
			}
			return nil
		},
	}
}
