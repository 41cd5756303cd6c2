package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/TrayForge/internal/faults"
	"github.com/piwi3910/TrayForge/internal/generate"
	"github.com/piwi3910/TrayForge/internal/project"
)

func (c *CLI) validateCommand() *cobra.Command {
	var box string

	cmd := &cobra.Command{
		Use:   "validate <project-file>",
		Short: "Check every box without building geometry",
		Long: `Lay out every tray and arrange each box, reporting custom dimensions that
cannot hold their trays and lid settings that cannot be built. Exits non-zero
when any box is invalid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(cmd.Context(), args[0], box)
		},
	}

	cmd.Flags().StringVarP(&box, "box", "b", "", "box index, ID or name (default: all boxes)")

	return cmd
}

func (c *CLI) runValidate(ctx context.Context, path, boxSel string) error {
	p, err := project.LoadProject(path)
	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}
	indices, err := selectBoxes(p, boxSel)
	if err != nil {
		return err
	}
	opts, err := c.pipelineOptions(ctx, true)
	if err != nil {
		return err
	}
	opts.LayoutOnly = true

	invalid := 0
	for _, i := range indices {
		name := p.Boxes[i].Name
		res, err := generate.Generate(ctx, p, i, opts)
		switch {
		case faults.Is(err, faults.ErrCodeValidation):
			invalid++
			c.printError("%s", name)
			for _, d := range faults.Details(err) {
				c.printDetail("%s", d)
			}
		case err != nil:
			return fmt.Errorf("box %q: %w", name, err)
		default:
			c.printSuccess("%s", name)
			for _, w := range res.Warnings {
				c.printWarning("%s", w)
			}
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d boxes invalid", invalid, len(indices))
	}
	return nil
}
