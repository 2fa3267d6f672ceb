package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/PeakOS/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/PeakOS/backend/internal/infrastructure/logging"
)

type options struct {
	port     string
	host     string
	dev      bool
	level    string
	persona  string
	apps     []string
	catalog  string
	light    bool
	noDock   bool
	logFile  string
	editPath string
}

func newRootCmd(opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:   "peak",
		Short: "PeakOS shell backend",
		Long: `peak runs the PeakOS shell: a window manager hosting Terminal, Editor,
Browser and system monitor apps across personas and workspaces.

Run "peak serve" to expose the shell over HTTP and WebSocket, or "peak tui"
to drive it from this terminal.`,
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.persona, "persona", "", "initial persona (overrides PEAK_PERSONA)")
	flags.StringSliceVar(&opts.apps, "apps", nil, "apps to host (overrides PEAK_APPS)")
	flags.StringVar(&opts.catalog, "catalog", "", "YAML or TOML app catalog (overrides PEAK_CATALOG)")
	flags.BoolVar(&opts.light, "light", false, "start in the light theme")
	flags.BoolVar(&opts.noDock, "no-dock", false, "start with the dock hidden")
	flags.StringVar(&opts.editPath, "edit", "", "document opened by the Editor (overrides EDITOR_PATH)")
	flags.BoolVar(&opts.dev, "dev", false, "development mode (colored logs, debug level)")
	flags.StringVar(&opts.level, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(newServeCmd(opts), newTUICmd(opts))
	return root
}

// loadConfig reads the environment and applies the flags that were set.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	applyFlags(cmd, opts, cfg)
	return cfg, nil
}

func applyFlags(cmd *cobra.Command, opts *options, cfg *config.Config) {
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}

	if changed("port") {
		cfg.Server.Port = opts.port
	}
	if changed("host") {
		cfg.Server.Host = opts.host
	}
	if changed("persona") {
		cfg.Shell.Persona = opts.persona
	}
	if changed("apps") {
		cfg.Shell.Apps = opts.apps
	}
	if changed("catalog") {
		cfg.Shell.Catalog = opts.catalog
	}
	if changed("light") {
		cfg.Shell.Light = opts.light
	}
	if changed("no-dock") {
		cfg.Shell.DockVisible = !opts.noDock
	}
	if changed("edit") {
		cfg.Editor.Path = opts.editPath
	}
	if opts.dev {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}
	if changed("log-level") {
		cfg.Logging.Level = opts.level
	}
}

func newLogger(cfg *config.Config, outputs ...string) (*logging.Logger, error) {
	lc := logging.Config{
		Level:       strings.ToLower(cfg.Logging.Level),
		Development: cfg.Logging.Development,
		OutputPaths: outputs,
	}
	log, err := logging.New(lc)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return log, nil
}
