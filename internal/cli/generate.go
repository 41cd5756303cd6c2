package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/piwi3910/TrayForge/internal/export"
	"github.com/piwi3910/TrayForge/internal/generate"
	"github.com/piwi3910/TrayForge/internal/project"
)

type generateOptions struct {
	box     string
	outDir  string
	pdf     string
	labels  string
	xlsx    string
	infill  float64
	noCache bool
}

func (c *CLI) generateCommand() *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate <project-file>",
		Short: "Build STL files and printed documentation",
		Long: `Build every tray, box shell and lid and write them as binary STL files.

Meshes are cached between runs (see cache_dir and redis_addr in the config).
Optional documents: a reference sheet PDF with filament estimates, a PDF of
QR-coded tray labels and an XLSX reference table.`,
		Example: `  trayforge generate game.json
  trayforge generate game.yaml -o stl --pdf sheet.pdf --labels labels.pdf
  trayforge generate game.json --box "Base Game" --no-cache`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.box, "box", "b", "", "box index, ID or name (default: all boxes)")
	cmd.Flags().StringVarP(&opts.outDir, "output", "o", "stl", "directory for STL files")
	cmd.Flags().StringVar(&opts.pdf, "pdf", "", "write a reference sheet PDF")
	cmd.Flags().StringVar(&opts.labels, "labels", "", "write a tray label PDF")
	cmd.Flags().StringVar(&opts.xlsx, "xlsx", "", "write a reference table XLSX")
	cmd.Flags().Float64Var(&opts.infill, "infill", 20, "infill percent for filament estimates")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the mesh cache")

	return cmd
}

func (c *CLI) runGenerate(ctx context.Context, path string, opts generateOptions) error {
	logger := loggerFromContext(ctx)

	p, err := project.LoadProject(path)
	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}
	indices, err := selectBoxes(p, opts.box)
	if err != nil {
		return err
	}
	pipeline, err := c.pipelineOptions(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer pipeline.Cache.Close()

	prog := newProgress(logger)
	var results []*generate.BoxResult
	if opts.box == "" {
		results, err = generate.GenerateAll(ctx, p, pipeline)
		if err != nil {
			return err
		}
	} else {
		for _, i := range indices {
			res, err := generate.Generate(ctx, p, i, pipeline)
			if err != nil {
				return fmt.Errorf("box %q: %w", p.Boxes[i].Name, err)
			}
			results = append(results, res)
		}
	}
	prog.done(fmt.Sprintf("Generated %d boxes", len(results)))

	if err := os.MkdirAll(opts.outDir, 0755); err != nil {
		return err
	}
	for _, res := range results {
		c.printBoxSummary(res)
		if est, ok := export.EstimateBox(res, c.config, opts.infill); ok {
			c.printKeyValue("Filament", fmt.Sprintf("%.1f m, %.0f g, %.2f", est.FilamentLength, est.FilamentGrams, est.EstimatedCost))
		}
		files, err := export.WriteBoxSTLs(opts.outDir, res)
		if err != nil {
			return fmt.Errorf("write %q: %w", res.Box.Name, err)
		}
		for _, f := range files {
			c.printFile(f)
		}
		c.printNewline()
	}

	if opts.pdf != "" {
		sheet := export.SheetOptions{Config: c.config, InfillPercent: opts.infill}
		if err := export.ExportReferenceSheet(opts.pdf, results, sheet); err != nil {
			return fmt.Errorf("reference sheet: %w", err)
		}
		c.printFile(opts.pdf)
	}
	if opts.labels != "" {
		if err := export.ExportLabels(opts.labels, results); err != nil {
			return fmt.Errorf("labels: %w", err)
		}
		c.printFile(opts.labels)
	}
	if opts.xlsx != "" {
		if err := export.ExportReferenceXLSX(opts.xlsx, results); err != nil {
			return fmt.Errorf("reference table: %w", err)
		}
		c.printFile(opts.xlsx)
	}

	c.rememberProject(path)
	c.printSuccess("Wrote %d boxes to %s", len(results), opts.outDir)
	return nil
}
