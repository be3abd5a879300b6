package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/annoforge/annoforge/internal/core/config"
	"github.com/annoforge/annoforge/internal/plugins/csvexport"
)

type ExportCmd struct {
	flags *Flags

	// Command-specific flags
	project string
	out     string
}

// NewExportCmd creates a new export command
func NewExportCmd(flags *Flags) *ExportCmd {
	return &ExportCmd{flags: flags}
}

// Register adds the export command to the application
func (cmd *ExportCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "export",
		Usage:     "Export a project's captions to CSV without starting the TUI",
		UsageText: "annoforge export [options]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "project",
				Usage:       "project directory or descriptor (defaults to the last opened project)",
				Sources:     cli.EnvVars("ANNOFORGE_PROJECT"),
				Destination: &cmd.project,
			},
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "output file (defaults to stdout)",
				Destination: &cmd.out,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ExportCmd) run(_ context.Context, _ *cli.Command) error {
	projectPath := cmd.project
	if projectPath == "" {
		projectPath = config.LoadPrefs(cmd.flags.DataDir).LastProjectPath
	}
	if projectPath == "" {
		return fmt.Errorf("no project given and no previously opened project")
	}

	app := cmd.flags.App
	if err := app.OpenProject(projectPath); err != nil {
		return fmt.Errorf("open project: %w", err)
	}

	var w io.Writer = os.Stdout
	if cmd.out != "" {
		f, err := os.Create(cmd.out)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	items := app.Library.All()
	if err := csvexport.ExportTo(w, items); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	if cmd.out != "" {
		fmt.Printf("Exported %d items to %s\n", len(items), cmd.out)
	}
	return nil
}
