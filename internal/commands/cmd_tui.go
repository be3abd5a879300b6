package commands

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/annoforge/annoforge/internal/core/config"
	"github.com/annoforge/annoforge/internal/tui"
)

type TuiCmd struct {
	flags   *Flags
	project string
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags) *TuiCmd {
	return &TuiCmd{flags: flags}
}

// Flags returns the TUI-specific flags for registration on the root command
func (cmd *TuiCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "project",
			Usage:       "project directory or descriptor to open on startup",
			Sources:     cli.EnvVars("ANNOFORGE_PROJECT"),
			Destination: &cmd.project,
		},
	}
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *TuiCmd) run(_ context.Context, _ *cli.Command) error {
	app := cmd.flags.App

	m := tui.New(app)
	p := tea.NewProgram(m, tea.WithAltScreen())

	// Bus events and plugin callbacks reach the model through the
	// program's message loop, never from their own goroutines.
	tui.RegisterBridge(app.Bus(), p.Send)
	app.SetUIMarshaler(func(fn func()) {
		p.Send(tui.RunOnLoop(fn))
	})

	projectPath := cmd.project
	if projectPath == "" {
		projectPath = config.LoadPrefs(cmd.flags.DataDir).LastProjectPath
	}
	if projectPath != "" {
		go func() {
			if err := app.OpenProject(projectPath); err != nil {
				log.Warn().Err(err).Str("path", projectPath).Msg("failed to open project on startup")
			}
		}()
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
