package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/annoforge/annoforge/internal/annoforge"
	"github.com/annoforge/annoforge/internal/commands"
	"github.com/annoforge/annoforge/internal/core/config"
	"github.com/annoforge/annoforge/internal/core/eventbus"
	"github.com/annoforge/annoforge/internal/core/logging"
	"github.com/annoforge/annoforge/internal/plugins"
	"github.com/annoforge/annoforge/internal/plugins/csvexport"
	"github.com/annoforge/annoforge/internal/plugins/findreplace"
	"github.com/annoforge/annoforge/internal/plugins/greyscale"
	"github.com/annoforge/annoforge/internal/plugins/restmodel"
	"github.com/annoforge/annoforge/internal/plugins/scripted"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, build() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

// factories maps plugin package names to their constructors. Discovery
// instantiates only the ones with a manifest in the plugin directory.
func factories(cfg *config.Config) map[string]plugins.Factory {
	return map[string]plugins.Factory{
		"csvexport":   func(map[string]any) (plugins.Plugin, error) { return csvexport.New(), nil },
		"findreplace": func(map[string]any) (plugins.Plugin, error) { return findreplace.New(), nil },
		"greyscale":   func(map[string]any) (plugins.Plugin, error) { return greyscale.New(), nil },
		"scripted":    func(map[string]any) (plugins.Plugin, error) { return scripted.New(), nil },
		"restmodel": func(settings map[string]any) (plugins.Plugin, error) {
			opts := restmodel.Options{
				Endpoint:      cfg.Model.Endpoint,
				CheckpointDir: cfg.Model.CheckpointDir,
			}
			if v, ok := settings["endpoint"].(string); ok && v != "" {
				opts.Endpoint = v
			}
			if v, ok := settings["checkpoint_dir"].(string); ok && v != "" {
				opts.CheckpointDir = v
			}
			return restmodel.New(opts), nil
		},
	}
}

func main() {
	ctx := context.Background()

	var logCloser func()

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "annoforge",
		Usage:     "Annotate image datasets with model-assisted captions",
		UsageText: "annoforge [global options] command [command options]",
		Description: `AnnoForge manages image annotation projects: a project points at a
directory of images, captions live in sidecar .txt files next to each
image, and plugins add model-assisted captioning, batch edits, and
image filters.

Run 'annoforge' with no arguments to open the interactive annotator.
Run 'annoforge new' to create a project.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("ANNOFORGE_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/annoforge.log)",
				Sources:     cli.EnvVars("ANNOFORGE_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("ANNOFORGE_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("ANNOFORGE_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Always log to a file; the terminal belongs to the TUI
			logFile := flags.LogFile
			if logFile == "" {
				logFile = filepath.Join(flags.DataDir, "annoforge.log")
			}

			logger, closer, err := logging.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			pluginDir := cfg.PluginDir
			if pluginDir == "" {
				pluginDir = filepath.Join(flags.DataDir, "plugins")
			}

			table := factories(cfg)

			// Seed manifests for bundled plugins so a fresh install has
			// everything enabled; users disable a plugin by deleting its
			// directory's manifest.
			if err := plugins.EnsureManifests(pluginDir, table); err != nil {
				log.Warn().Err(err).Msg("failed to seed plugin manifests")
			}

			bus := eventbus.New()
			if flags.LogLevel == "debug" {
				eventbus.AttachDebugLogger(bus, log.With().Str("cmp", "eventbus").Logger())
			}

			af := annoforge.New(cfg, bus)
			if err := plugins.Discover(pluginDir, table, af.Registry); err != nil {
				return ctx, fmt.Errorf("discover plugins: %w", err)
			}
			if err := af.Init(); err != nil {
				return ctx, fmt.Errorf("init application: %w", err)
			}
			flags.App = af

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if flags.App != nil {
				flags.App.Close()
			}
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	tuiCmd := commands.NewTuiCmd(flags)

	app = commands.NewNewCmd(flags).Register(app)
	app = commands.NewExportCmd(flags).Register(app)

	// Register TUI flags on root command
	app.Flags = append(app.Flags, tuiCmd.Flags()...)

	// Set TUI as default action when no subcommand is provided
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'annoforge --help' for usage", c.Args().First())
		}
		return tuiCmd.Run(ctx, c)
	}

	exitCode := 0
	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Println()
		fmt.Println(err.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
