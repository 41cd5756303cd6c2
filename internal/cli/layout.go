package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/piwi3910/TrayForge/internal/export"
	"github.com/piwi3910/TrayForge/internal/generate"
	"github.com/piwi3910/TrayForge/internal/preview"
	"github.com/piwi3910/TrayForge/internal/project"
)

type layoutOptions struct {
	box      string
	output   string
	pngDir   string
	noLabels bool
}

func (c *CLI) layoutCommand() *cobra.Command {
	var opts layoutOptions

	cmd := &cobra.Command{
		Use:   "layout <project-file>",
		Short: "Show tray layouts, box sizes and reference codes",
		Long: `Lay out every tray and arrange each box without building solids.

The summary lists each tray's letter, footprint, spacer and pocket reference
codes. Use --output to save the full layout as JSON and --png to render a
top-down preview per box.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.box, "box", "b", "", "box index, ID or name (default: all boxes)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the layout as JSON to this file")
	cmd.Flags().StringVar(&opts.pngDir, "png", "", "write a PNG preview per box into this directory")
	cmd.Flags().BoolVar(&opts.noLabels, "no-labels", false, "omit reference codes from previews")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, path string, opts layoutOptions) error {
	logger := loggerFromContext(ctx)

	p, err := project.LoadProject(path)
	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}
	indices, err := selectBoxes(p, opts.box)
	if err != nil {
		return err
	}
	pipeline, err := c.pipelineOptions(ctx, true)
	if err != nil {
		return err
	}
	pipeline.LayoutOnly = true

	results := make([]*generate.BoxResult, 0, len(indices))
	for _, i := range indices {
		res, err := generate.Generate(ctx, p, i, pipeline)
		if err != nil {
			return fmt.Errorf("box %q: %w", p.Boxes[i].Name, err)
		}
		results = append(results, res)
		c.printBoxSummary(res)
		c.printNewline()
	}

	if opts.output != "" {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("encode layout: %w", err)
		}
		if err := os.WriteFile(opts.output, data, 0644); err != nil {
			return err
		}
		c.printFile(opts.output)
	}

	if opts.pngDir != "" {
		if err := os.MkdirAll(opts.pngDir, 0755); err != nil {
			return err
		}
		for _, res := range results {
			out := filepath.Join(opts.pngDir, export.FileName(res.Box.Name)+".png")
			if err := preview.SavePNG(out, res, preview.Options{NoLabels: opts.noLabels}); err != nil {
				return fmt.Errorf("preview %q: %w", res.Box.Name, err)
			}
			logger.Debug("preview written", "box", res.Box.Name, "path", out)
			c.printFile(out)
		}
	}
	return nil
}
