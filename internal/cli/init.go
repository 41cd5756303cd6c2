package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/piwi3910/TrayForge/internal/model"
	"github.com/piwi3910/TrayForge/internal/project"
)

type initOptions struct {
	name  string
	box   string
	tray  string
	force bool
}

func (c *CLI) initCommand() *cobra.Command {
	var opts initOptions

	cmd := &cobra.Command{
		Use:   "init <project-file>",
		Short: "Create a project with one box and one tray",
		Long: `Create a new project file. The extension picks the format: .yaml or .yml
writes YAML, anything else JSON. Defaults from the config file seed the new
box and tray.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInit(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.name, "name", "Untitled", "project name")
	cmd.Flags().StringVar(&opts.box, "box", "Box 1", "name of the first box")
	cmd.Flags().StringVar(&opts.tray, "tray", "Tray 1", "name of the first tray")
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "overwrite an existing file")

	return cmd
}

func (c *CLI) runInit(ctx context.Context, path string, opts initOptions) error {
	logger := loggerFromContext(ctx)

	if _, err := os.Stat(path); err == nil && !opts.force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	p := model.NewProject()
	p.Name = opts.name
	c.config.ApplyToGlobals(&p.Globals)

	store := project.NewStore(p, &c.config)
	box := store.AddBox(opts.box)
	if _, err := store.AddTray(box.ID, opts.tray); err != nil {
		return err
	}

	if err := project.SaveProject(path, store.Project); err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	logger.Debug("project created", "path", path, "box", box.ID)
	c.rememberProject(path)

	c.printSuccess("Created %s", opts.name)
	c.printFile(path)
	c.printNewline()
	c.printNextStep("Add stacks", "trayforge import stacks "+path+" stacks.csv")
	return nil
}
