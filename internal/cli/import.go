package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/piwi3910/TrayForge/internal/importer"
	"github.com/piwi3910/TrayForge/internal/model"
	"github.com/piwi3910/TrayForge/internal/project"
)

func (c *CLI) importCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import stacks or custom shapes into a project",
	}
	cmd.AddCommand(c.importStacksCommand())
	cmd.AddCommand(c.importShapeCommand())
	return cmd
}

func (c *CLI) importStacksCommand() *cobra.Command {
	var box string

	cmd := &cobra.Command{
		Use:   "stacks <project-file> <csv-or-xlsx>",
		Short: "Add trays of stacks from a CSV or Excel file",
		Long: `Read a stack list and add one tray per tray name found in the file.

Recognised columns: label, shape, count, loading, orientation and tray.
Without a header row the columns are read in that order. Rows with errors are
reported and skipped. Stacks go into a new box named after the file unless
--box selects an existing one.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runImportStacks(cmd.Context(), args[0], args[1], box)
		},
	}
	cmd.Flags().StringVarP(&box, "box", "b", "", "box index, ID or name to add trays to")
	return cmd
}

func (c *CLI) runImportStacks(ctx context.Context, path, file, boxSel string) error {
	logger := loggerFromContext(ctx)

	p, err := project.LoadProject(path)
	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}
	res := importer.ImportFile(file)
	c.reportImport(res.Errors, res.Warnings)
	if res.StackCount() == 0 {
		return fmt.Errorf("no stacks imported from %s", file)
	}

	store := project.NewStore(p, &c.config)
	var boxID string
	if boxSel == "" {
		boxID = store.AddBox(baseName(file)).ID
	} else {
		indices, err := selectBoxes(p, boxSel)
		if err != nil {
			return err
		}
		boxID = p.Boxes[indices[0]].ID
	}

	for i, group := range res.Trays {
		name := group.Name
		if name == "" {
			name = fmt.Sprintf("Imported %d", i+1)
		}
		tray, err := store.AddTray(boxID, name)
		if err != nil {
			return err
		}
		tray.Params.TopLoaded = append(tray.Params.TopLoaded, group.TopLoaded...)
		tray.Params.EdgeLoaded = append(tray.Params.EdgeLoaded, group.EdgeLoaded...)
		logger.Debug("tray imported", "tray", name, "stacks", group.Count())
	}
	if n := project.NormalizeShapeRefs(&store.Project); n > 0 {
		logger.Debug("shape references resolved", "count", n)
	}

	if err := project.SaveProject(path, store.Project); err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	c.rememberProject(path)
	c.printSuccess("Imported %d stacks into %d trays", res.StackCount(), len(res.Trays))
	c.printFile(path)
	return nil
}

func (c *CLI) importShapeCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "shape <project-file> <dxf-or-json>",
		Short: "Add custom shapes from a DXF drawing or a shape file",
		Long: `Add custom shapes to a project. A DXF drawing yields one shape per outer
closed contour; holes inside a contour are ignored. A .json file holds a single
shape exported from another project.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runImportShape(cmd.Context(), args[0], args[1], name)
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "shape name (default: file name)")
	return cmd
}

func (c *CLI) runImportShape(ctx context.Context, path, file, name string) error {
	logger := loggerFromContext(ctx)

	p, err := project.LoadProject(path)
	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}
	if name == "" {
		name = baseName(file)
	}

	var shapes []model.CustomShape
	switch strings.ToLower(filepath.Ext(file)) {
	case ".dxf":
		res := importer.ImportDXF(file, name)
		c.reportImport(res.Errors, res.Warnings)
		shapes = res.Shapes
	case ".json":
		s, err := project.ImportShape(file)
		if err != nil {
			return err
		}
		if s.Name == "" {
			s.Name = name
		}
		shapes = append(shapes, s)
	default:
		return fmt.Errorf("unsupported shape file %q (want .dxf or .json)", file)
	}
	if len(shapes) == 0 {
		return fmt.Errorf("no shapes imported from %s", file)
	}

	store := project.NewStore(p, &c.config)
	for _, s := range shapes {
		added, err := store.AddCustomShape(s)
		if err != nil {
			return err
		}
		logger.Debug("shape added", "name", added.Name, "id", added.ID)
		c.printSuccess("%s %s", added.Name, StyleDim.Render(string(model.CustomRef(added.ID))))
	}

	if err := project.SaveProject(path, store.Project); err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	c.rememberProject(path)
	c.printFile(path)
	return nil
}

func (c *CLI) reportImport(errs, warnings []string) {
	for _, e := range errs {
		c.printError("%s", e)
	}
	for _, w := range warnings {
		c.printWarning("%s", w)
	}
}

func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
