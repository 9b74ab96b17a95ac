// Package mcp provides an MCP (Model Context Protocol) server for carbonpath.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/allcarbonfree/carbonpath/internal/config"
	"github.com/allcarbonfree/carbonpath/internal/logging"
	"github.com/allcarbonfree/carbonpath/internal/pathrun"
	"github.com/allcarbonfree/carbonpath/internal/ratelimit"
	"github.com/allcarbonfree/carbonpath/internal/store"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP SDK server and provides carbonpath tools.
type Server struct {
	server    *sdk.Server
	store     store.Store
	service   *pathrun.Service
	defaults  config.SimulationConfig
	limiters  ratelimit.ToolLimiters
	audit     *AuditLogger
	decisions *logging.DecisionLogger
	logger    *slog.Logger
}

// Config holds server configuration.
type Config struct {
	Name     string // Server name (e.g., "carbonpath")
	Version  string // Server version
	Dir      string // Data directory holding the database and logs
	LogLevel string // info, debug or trace

	// Defaults fill in run settings a tool call leaves unset.
	Defaults config.SimulationConfig
}

// NewServer opens the store in cfg.Dir and creates a server with
// carbonpath tools.
func NewServer(cfg *Config) (*Server, error) {
	s, err := store.NewSQLiteStore(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	srv, err := newServer(cfg, s)
	if err != nil {
		s.Close()
		return nil, err
	}
	return srv, nil
}

func newServer(cfg *Config, st store.Store) (*Server, error) {
	defaults := cfg.Defaults
	if defaults.Country == "" {
		defaults = config.Default().Simulation
	}

	// stdout carries the protocol, so operational logs go to stderr.
	logger := logging.NewLogger(cfg.LogLevel, os.Stderr)
	decisions := logging.NewDecisionLogger(cfg.Dir, cfg.LogLevel)

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, nil)

	s := &Server{
		server:   mcpServer,
		store:    st,
		defaults: defaults,
		service: pathrun.NewService(st, &pathrun.Config{Workers: defaults.Workers},
			pathrun.WithLogger(logger),
			pathrun.WithDecisionLogger(decisions)),
		limiters:  ratelimit.NewToolLimiters(nil),
		audit:     NewAuditLogger(cfg.Dir),
		decisions: decisions,
		logger:    logger,
	}

	if err := s.registerTools(); err != nil {
		s.audit.Close()
		decisions.Close()
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}
	return s, nil
}

// Run starts the MCP server over stdio transport.
// This blocks until the client disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	notifySignals(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	s.logger.Info("mcp server starting")
	err := s.server.Run(ctx, &sdk.StdioTransport{})
	if closeErr := s.Close(); err == nil {
		err = closeErr
	}
	return err
}

// Close closes the store and log files.
func (s *Server) Close() error {
	s.audit.Close()
	s.decisions.Close()
	return s.store.Close()
}
