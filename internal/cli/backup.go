package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/TrayForge/internal/project"
)

func (c *CLI) backupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "backup <project-file> <backup-file>",
		Short: "Save a project together with the application config",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBackup(cmd.Context(), args[0], args[1])
		},
	}
}

func (c *CLI) runBackup(ctx context.Context, path, out string) error {
	p, err := project.LoadProject(path)
	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}
	if err := project.ExportAllData(out, c.config, &p); err != nil {
		return err
	}
	loggerFromContext(ctx).Debug("backup written", "project", p.Name, "path", out)
	c.printSuccess("Backed up %s", p.Name)
	c.printFile(out)
	return nil
}

func (c *CLI) restoreCommand() *cobra.Command {
	var withConfig bool

	cmd := &cobra.Command{
		Use:   "restore <backup-file> <project-file>",
		Short: "Restore a project from a backup",
		Long: `Write the project stored in a backup to a project file. With --config the
backed-up application config replaces the current one.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRestore(cmd.Context(), args[0], args[1], withConfig)
		},
	}
	cmd.Flags().BoolVar(&withConfig, "config-too", false, "also restore the application config")
	return cmd
}

func (c *CLI) runRestore(ctx context.Context, in, path string, withConfig bool) error {
	data, err := project.ImportAllData(in)
	if err != nil {
		return err
	}
	loggerFromContext(ctx).Debug("backup read", "version", data.Version, "created", data.CreatedAt)

	if withConfig {
		c.config = data.Config
		if err := project.SaveAppConfig(c.configPath, c.config); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		c.printSuccess("Restored config")
		c.printFile(c.configPath)
	}
	if data.Project == nil {
		if !withConfig {
			c.printWarning("Backup holds no project")
		}
		return nil
	}
	if err := project.SaveProject(path, *data.Project); err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	c.rememberProject(path)
	c.printSuccess("Restored %s", data.Project.Name)
	c.printFile(path)
	return nil
}
