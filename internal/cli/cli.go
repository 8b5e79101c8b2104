// Package cli implements the foldergraph command-line interface.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/foldergraph/pkg/buildinfo"
	"github.com/matzehuels/foldergraph/pkg/config"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "foldergraph"

	// defaultMetricsPath is where the metrics server exposes Prometheus data.
	defaultMetricsPath = "/metrics"
)

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

	configPath string
	cfg        config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// Config returns the settings loaded for the running command.
func (c *CLI) Config() config.Config { return c.cfg }

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Foldergraph clusters graph nodes by folder",
		Long: `Foldergraph groups the nodes of a force-directed note graph by the folder they
live in, draws a soft enclosure around every folder and pushes foreign nodes
back out of it, frame by frame.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			if c.configPath != "" {
				c.Logger.Debug("loaded config", "path", c.configPath)
			}
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (.toml, .yaml)")

	// Register all subcommands
	root.AddCommand(c.indexCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.simulateCommand())
	root.AddCommand(c.hullCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Argument Helpers
// =============================================================================

// vaultArg returns the vault directory from args, falling back to the
// configured one.
func (c *CLI) vaultArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return c.cfg.Watch.Vault
}
