package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/allcarbonfree/carbonpath/internal/backup"
	"github.com/allcarbonfree/carbonpath/internal/pathutil"
	"github.com/spf13/cobra"
)

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Snapshot countries, technologies and saved paths to a file",
		Long: `Write the whole database to a snapshot file.

Default location: <dir>/backups/carbonpath-backup-YYYYMMDD-HHMMSS.json.gz
Old snapshots are pruned by backup.max_count and backup.max_age.

Examples:
  carbonpath backup                             # compressed, default location
  carbonpath backup --output ./snap.json.gz     # explicit file
  carbonpath backup --no-compress               # plain JSON
  carbonpath backup list
  carbonpath backup verify <file>`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputPath, _ := cmd.Flags().GetString("output")
			noCompress, _ := cmd.Flags().GetBool("no-compress")

			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			policy, err := backup.PolicyFromConfig(e.cfg.Backup)
			if err != nil {
				return err
			}
			compress := e.cfg.Backup.Compression && !noCompress

			if outputPath == "" {
				outputPath = backup.GeneratePath(backup.DefaultDir(e.dir), time.Now(), compress)
			} else {
				roots, err := pathutil.SnapshotRoots(e.dir)
				if err != nil {
					return err
				}
				if outputPath, err = pathutil.Resolve(outputPath, roots); err != nil {
					return fmt.Errorf("backup path rejected: %w", err)
				}
			}

			snap, err := backup.Create(context.Background(), e.store, outputPath, compress)
			if err != nil {
				return fmt.Errorf("backup failed: %w", err)
			}
			e.logger.Info("snapshot written",
				"path", pathutil.RedactPath(outputPath),
				"countries", len(snap.Countries),
				"technologies", len(snap.Technologies),
				"paths", len(snap.Paths))

			deleted, err := backup.ApplyRetention(filepath.Dir(outputPath), policy)
			if err != nil {
				e.logger.Warn("failed to apply retention", "error", err)
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				var size int64
				if info, err := os.Stat(outputPath); err == nil {
					size = info.Size()
				}
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
					"path":         outputPath,
					"countries":    len(snap.Countries),
					"technologies": len(snap.Technologies),
					"paths":        len(snap.Paths),
					"compressed":   compress,
					"size_bytes":   size,
					"pruned":       len(deleted),
				})
			}

			label := "v2/gzip"
			if !compress {
				label = "v1/json"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backup created: %d countries, %d technologies, %d paths (%s)\n",
				len(snap.Countries), len(snap.Technologies), len(snap.Paths), label)
			fmt.Fprintf(cmd.OutOrStdout(), "  Path: %s\n", outputPath)
			if len(deleted) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "  Pruned %d old backup(s)\n", len(deleted))
			}
			return nil
		},
	}

	cmd.Flags().String("output", "", "Output file (default: auto-generated in <dir>/backups/)")
	cmd.Flags().Bool("no-compress", false, "Write plain JSON instead of the compressed format")

	cmd.AddCommand(
		newBackupListCmd(),
		newBackupVerifyCmd(),
	)
	return cmd
}

func newBackupListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List snapshots in the backup directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			dir, err := dataDir(cmd, cfg)
			if err != nil {
				return err
			}

			backups, err := backup.List(backup.DefaultDir(dir))
			if err != nil {
				return err
			}
			if backups == nil {
				backups = []backup.Info{}
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
					"backups": backups,
					"count":   len(backups),
				})
			}

			if len(backups) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No backups found.")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "FILE\tVERSION\tSIZE\tCREATED")
			for _, b := range backups {
				fmt.Fprintf(w, "%s\tv%d\t%d\t%s\n", filepath.Base(b.Path), b.Version, b.Size, formatTime(b.CreatedAt))
			}
			return w.Flush()
		},
	}
}

func newBackupVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <file>",
		Short: "Check a snapshot's integrity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			jsonOut, _ := cmd.Flags().GetBool("json")

			version, err := backup.DetectFormat(path)
			if err != nil {
				return fmt.Errorf("cannot read %s: %w", pathutil.RedactPath(path), err)
			}

			result := map[string]interface{}{
				"path":    path,
				"version": version,
			}
			switch version {
			case backup.FormatV2:
				header, err := backup.ReadHeader(path)
				if err != nil {
					return err
				}
				if err := backup.VerifyChecksum(path); err != nil {
					return fmt.Errorf("verification failed: %w", err)
				}
				result["countries"] = header.Countries
				result["technologies"] = header.Technologies
				result["paths"] = header.Paths
				result["checksum"] = header.Checksum
			default:
				snap, err := backup.ReadV1(path)
				if err != nil {
					return fmt.Errorf("verification failed: %w", err)
				}
				result["countries"] = len(snap.Countries)
				result["technologies"] = len(snap.Technologies)
				result["paths"] = len(snap.Paths)
			}
			result["valid"] = true

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK: %s (v%d, %d countries, %d technologies, %d paths)\n",
				filepath.Base(path), version, result["countries"], result["technologies"], result["paths"])
			return nil
		},
	}
}

func newRestoreBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore-backup <file>",
		Short: "Restore the database from a snapshot file",
		Long: `Restore countries, technologies and saved paths from a snapshot.
The format is detected from the file.

Modes:
  merge   - keep records that already exist (default)
  replace - overwrite existing records with the snapshot's`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, _ := cmd.Flags().GetString("mode")
			restoreMode := backup.RestoreMode(mode)
			if restoreMode != backup.RestoreMerge && restoreMode != backup.RestoreReplace {
				return fmt.Errorf("invalid mode %q: use merge or replace", mode)
			}

			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			roots, err := pathutil.SnapshotRoots(e.dir)
			if err != nil {
				return err
			}
			inputPath, err := pathutil.Resolve(args[0], roots)
			if err != nil {
				return fmt.Errorf("restore path rejected: %w", err)
			}

			result, err := backup.Restore(context.Background(), e.store, inputPath, restoreMode)
			if err != nil {
				return fmt.Errorf("restore failed: %w", err)
			}
			e.logger.Info("snapshot restored", "path", pathutil.RedactPath(inputPath), "mode", mode)

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Restore complete (mode: %s)\n", mode)
			fmt.Fprintf(out, "  Countries:    %d restored, %d skipped\n", result.CountriesRestored, result.CountriesSkipped)
			fmt.Fprintf(out, "  Technologies: %d restored, %d skipped\n", result.TechnologiesRestored, result.TechnologiesSkipped)
			fmt.Fprintf(out, "  Paths:        %d restored, %d skipped\n", result.PathsRestored, result.PathsSkipped)
			return nil
		},
	}
	cmd.Flags().String("mode", string(backup.RestoreMerge), "Restore mode: merge or replace")
	return cmd
}
