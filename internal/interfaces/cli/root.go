// Package cli implements the parencyctl command tree: operational commands
// for running the server, applying migrations, and importing discovery text.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/config"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/infrastructure/monitoring/logging"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// rootOptions holds the global CLI flags.
type rootOptions struct {
	ConfigPath string
	LogLevel   string
}

// cliContext carries the initialized dependencies through the command tree.
type cliContext struct {
	cfg    *config.Config
	logger logging.Logger
}

type cliContextKey struct{}

// NewRootCommand creates the root command with global flags and all
// subcommands attached.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:     "parencyctl",
		Short:   "Discovery request compliance engine control tool",
		Long:    "parencyctl operates the discovery request compliance engine:\nit serves the API, applies database migrations, and imports served\ndiscovery text into a case.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return persistentPreRun(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (PARENCY_* environment variables when empty)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level override (debug, info, warn, error)")

	cmd.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newImportCommand(),
	)

	return cmd
}

func persistentPreRun(cmd *cobra.Command, opts *rootOptions) error {
	var (
		cfg *config.Config
		err error
	)
	if opts.ConfigPath == "" {
		cfg, err = config.LoadFromEnv()
	} else {
		cfg, err = config.Load(opts.ConfigPath)
	}
	if err != nil {
		return err
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logging.SetDefault(logger)

	ctx := context.WithValue(cmd.Context(), cliContextKey{}, &cliContext{cfg: cfg, logger: logger})
	cmd.SetContext(ctx)
	return nil
}

func getCLIContext(cmd *cobra.Command) (*cliContext, error) {
	cc, ok := cmd.Context().Value(cliContextKey{}).(*cliContext)
	if !ok || cc == nil {
		return nil, fmt.Errorf("command context not initialized")
	}
	return cc, nil
}

// Execute runs the CLI and returns the first error encountered.
func Execute() error {
	return NewRootCommand().Execute()
}
