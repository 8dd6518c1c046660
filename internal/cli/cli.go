// Package cli implements the update-checker command-line interface.
//
// The CLI loads a Composer project the same way a host application would
// (environment plan, scoped directory change, manifest and lock loading)
// and reports the strictest constraint on each installed package. It is
// built using cobra and logs via the charmbracelet/log library.
//
// # Commands
//
//   - list: List packages with the strictest constraint their dependents impose
//   - dependents: Show which packages constrain a given package
//   - env: Show the environment changes applied before loading
//   - serve: Serve listings over HTTP
//
// # Configuration
//
// Settings are read from an optional TOML file (--config), then
// UPDATE_CHECKER_* environment variables, then flags.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context so library packages log through the same
// logger.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/creative-commoners/silverstripe-composer-update-checker/pkg/bootstrap"
	"github.com/creative-commoners/silverstripe-composer-update-checker/pkg/buildinfo"
	"github.com/creative-commoners/silverstripe-composer-update-checker/pkg/config"
	"github.com/creative-commoners/silverstripe-composer-update-checker/pkg/environment"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "update-checker"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Env is the environment commands plan from. Nil means the process
	// environment.
	Env environment.Snapshot
	// Setenv applies the environment plan. Nil means os.Setenv.
	Setenv func(key, value string) error

	configPath string
	basePath   string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Report the strictest constraint on each installed Composer package",
		Long: `update-checker reads a Composer project's manifest and installed packages and
reports, for every package, the strictest version constraint any dependent
places on it.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to a TOML config file")
	root.PersistentFlags().StringVarP(&c.basePath, "dir", "d", "", "project directory containing composer.json")

	// Register all subcommands
	root.AddCommand(c.listCommand())
	root.AddCommand(c.dependentsCommand())
	root.AddCommand(c.envCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads configuration, sets the log level and attaches the logger to
// the command context. Flags win over the environment, which wins over the
// config file.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	cfg.ApplyEnv(c.env())
	if cmd.Flags().Changed("dir") {
		cfg.BasePath = c.basePath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	c.cfg = cfg
	c.SetLogLevel(cfg.Level())
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

func (c *CLI) env() environment.Snapshot {
	if c.Env != nil {
		return c.Env
	}
	return environment.FromOS()
}

// =============================================================================
// Loader Factory
// =============================================================================

// newLoader returns a loader for the configured project without loading it.
func (c *CLI) newLoader(ctx context.Context) *bootstrap.Loader {
	return bootstrap.New(bootstrap.Options{
		BasePath:    c.cfg.BasePath,
		Environment: c.cfg.Snapshot(c.env()),
		Defaults:    c.cfg.Defaults(),
		Setenv:      c.Setenv,
		Logger:      loggerFromContext(ctx),
	})
}

// load builds the project view, logging how long it took.
func (c *CLI) load(ctx context.Context) (*bootstrap.Loader, error) {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	l := c.newLoader(ctx)
	if err := l.OnAfterBuild(ctx); err != nil {
		return nil, err
	}
	prog.done("Loaded " + l.Composer().Summary())
	return l, nil
}
