package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"
)

type NewCmd struct {
	flags *Flags

	// Command-specific flags
	name       string
	projectDir string
	imageDir   string
}

// NewNewCmd creates a new new command
func NewNewCmd(flags *Flags) *NewCmd {
	return &NewCmd{flags: flags}
}

// Register adds the new command to the application
func (cmd *NewCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "new",
		Usage:     "Create a new annotation project",
		UsageText: "annoforge new [options]",
		Description: `Creates a project directory with a descriptor file pointing at an
image directory, plus an empty annotation database.

When --name or the directories are omitted, an interactive form
prompts for input.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "name",
				Aliases:     []string{"n"},
				Usage:       "project name recorded in the descriptor",
				Destination: &cmd.name,
			},
			&cli.StringFlag{
				Name:        "dir",
				Aliases:     []string{"d"},
				Usage:       "directory to create the project in",
				Destination: &cmd.projectDir,
			},
			&cli.StringFlag{
				Name:        "images",
				Aliases:     []string{"i"},
				Usage:       "directory containing the images to annotate",
				Destination: &cmd.imageDir,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *NewCmd) run(_ context.Context, _ *cli.Command) error {
	if cmd.name == "" || cmd.projectDir == "" || cmd.imageDir == "" {
		if err := cmd.runForm(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return fmt.Errorf("form: %w", err)
		}
	}

	if err := cmd.flags.App.CreateProject(cmd.name, cmd.projectDir, cmd.imageDir); err != nil {
		return fmt.Errorf("create project: %w", err)
	}

	fmt.Printf("Project %q created at %s\n", cmd.name, cmd.projectDir)
	return nil
}

func (cmd *NewCmd) runForm() error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Project name").
				Validate(validateRequired("name")).
				Value(&cmd.name),
			huh.NewInput().
				Title("Project directory").
				Description("Created for the descriptor and annotation database").
				Validate(validateRequired("project directory")).
				Value(&cmd.projectDir),
			huh.NewInput().
				Title("Image directory").
				Description("Existing directory holding the images to annotate").
				Validate(validateRequired("image directory")).
				Value(&cmd.imageDir),
		),
	).Run()
}

func validateRequired(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}
