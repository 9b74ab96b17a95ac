package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/allcarbonfree/carbonpath/internal/config"
	"github.com/allcarbonfree/carbonpath/internal/logging"
	"github.com/allcarbonfree/carbonpath/internal/store"
	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "carbonpath",
		Short: "Carbon path - emissions and electricity mix simulation",
		Long: `carbonpath projects a country's emissions and electricity mix forward
under a chosen set of clean technologies.

It imports historical series and a technology catalog, simulates paths
year by year, and keeps saved paths in a local SQLite database.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for agent consumption)")
	rootCmd.PersistentFlags().String("dir", "", "Data directory (default: storage.dir or ~/.carbonpath)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newInitCmd(),
		newImportCmd(),
		newSimulateCmd(),
		newBatchCmd(),
		newPathsCmd(),
		newTechnologiesCmd(),
		newCountriesCmd(),
		newConfigCmd(),
		newValidateCmd(),
		newBackupCmd(),
		newRestoreBackupCmd(),
		newMCPServerCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				writeJSON(cmd.OutOrStdout(), map[string]string{"version": version})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "carbonpath version %s\n", version)
			}
		},
	}
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the data directory, database and default config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			dir, err := dataDir(cmd, cfg)
			if err != nil {
				return err
			}

			s, err := store.NewSQLiteStore(dir)
			if err != nil {
				return fmt.Errorf("failed to initialize store: %w", err)
			}
			defer s.Close()

			cfgPath, err := config.DefaultPath()
			if err != nil {
				return err
			}
			createdConfig := false
			if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
				if err := config.Default().Save(cfgPath); err != nil {
					return fmt.Errorf("failed to write config: %w", err)
				}
				createdConfig = true
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				writeJSON(cmd.OutOrStdout(), map[string]interface{}{
					"status":         "initialized",
					"path":           dir,
					"database":       s.Path(),
					"config":         cfgPath,
					"config_created": createdConfig,
				})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Initialized %s\n", dir)
				fmt.Fprintf(cmd.OutOrStdout(), "  database: %s\n", s.Path())
				if createdConfig {
					fmt.Fprintf(cmd.OutOrStdout(), "  config:   %s (created)\n", cfgPath)
				}
				fmt.Fprintln(cmd.OutOrStdout())
				fmt.Fprintln(cmd.OutOrStdout(), "Next steps:")
				fmt.Fprintln(cmd.OutOrStdout(), "  carbonpath import history <series.csv> --country WRL")
				fmt.Fprintln(cmd.OutOrStdout(), "  carbonpath import catalog <technologies.yaml>")
			}
			return nil
		},
	}
}

// loadConfig reads ~/.carbonpath/config.yaml with environment overrides and
// validates it.
func loadConfig() (*config.CarbonpathConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// dataDir resolves the data directory: --dir, then storage.dir, then
// ~/.carbonpath.
func dataDir(cmd *cobra.Command, cfg *config.CarbonpathConfig) (string, error) {
	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = cfg.Storage.Dir
	}
	dir, err := store.ResolveDir(dir)
	if err != nil {
		return "", err
	}
	return filepath.Clean(dir), nil
}

// env bundles what most commands need: config, an open store and loggers.
type env struct {
	cfg       *config.CarbonpathConfig
	dir       string
	store     *store.SQLiteStore
	logger    *slog.Logger
	decisions *logging.DecisionLogger
}

func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	dir, err := dataDir(cmd, cfg)
	if err != nil {
		return nil, err
	}
	s, err := store.NewSQLiteStore(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return &env{
		cfg:       cfg,
		dir:       dir,
		store:     s,
		logger:    logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr()),
		decisions: logging.NewDecisionLogger(dir, cfg.Logging.Level),
	}, nil
}

func (e *env) Close() error {
	e.decisions.Close()
	return e.store.Close()
}

// signalContext returns a context cancelled on interrupt.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	notifySignals(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
