// Package generate runs the full generation pipeline for a box: stack
// layouts, arrangement, spacers, then the tray, box and lid solids.
package generate

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/piwi3910/TrayForge/internal/build"
	"github.com/piwi3910/TrayForge/internal/cache"
	"github.com/piwi3910/TrayForge/internal/engine"
	"github.com/piwi3910/TrayForge/internal/faults"
	"github.com/piwi3910/TrayForge/internal/mesh"
	"github.com/piwi3910/TrayForge/internal/model"
)

// DefaultCacheTTL is how long cached meshes live when Options.CacheTTL is 0.
const DefaultCacheTTL = 7 * 24 * time.Hour

// Options configures a generation run. The zero value builds everything
// without caching or logging.
type Options struct {
	Logger    *log.Logger
	CardSizes map[string]model.CardSize
	Cache     cache.Cache
	CacheTTL  time.Duration

	// LayoutOnly stops after the spacer stage; no solids are built.
	LayoutOnly bool
}

func (o *Options) setDefaults() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Cache == nil {
		o.Cache = cache.NewNullCache()
	}
	if o.CacheTTL == 0 {
		o.CacheTTL = DefaultCacheTTL
	}
}

// TrayResult is the output for one tray of a box. Mesh is in tray-local
// coordinates; Placement locates it in the box.
type TrayResult struct {
	Tray      model.Tray         `json:"tray"`
	Letter    string             `json:"letter"`
	Layout    *engine.TrayLayout `json:"layout"`
	Spacer    model.SpacerInfo   `json:"spacer"`
	Placement model.Placement    `json:"placement"`
	Mesh      *mesh.Mesh         `json:"-"`
}

// BoxResult is everything generated for one box. On failure it holds the
// stages completed before the error and Stage is StageError.
type BoxResult struct {
	Box         model.Box           `json:"box"`
	Stage       Stage               `json:"stage"`
	Arrangement *engine.Arrangement `json:"arrangement,omitempty"`
	Trays       []TrayResult        `json:"trays"`
	BoxMesh     *mesh.Mesh          `json:"-"`
	LidMesh     *mesh.Mesh          `json:"-"`
	RefLabels   []engine.RefLabel   `json:"refLabels"`
	Warnings    []string            `json:"warnings,omitempty"`
	CacheHits   int                 `json:"cacheHits"`
}

// TrayOffset returns the cumulative index of the first tray of boxIndex,
// counting trays of every earlier box. Tray letters follow this index.
func TrayOffset(project model.Project, boxIndex int) int {
	n := 0
	for i := 0; i < boxIndex && i < len(project.Boxes); i++ {
		n += len(project.Boxes[i].Trays)
	}
	return n
}

// Generate runs the pipeline for one box of the project. The project is
// not modified. A panic inside the geometry kernel is returned as a
// GENERATION error.
func Generate(ctx context.Context, project model.Project, boxIndex int, opts Options) (res *BoxResult, err error) {
	opts.setDefaults()
	logger := opts.Logger

	res = &BoxResult{Stage: StageParamsChanged, Trays: []TrayResult{}, RefLabels: []engine.RefLabel{}}
	defer func() {
		if r := recover(); r != nil {
			err = faults.New(faults.ErrCodeGeneration, "%s: %v", res.Stage, r)
		}
		if err != nil {
			logger.Error("generation failed", "box", res.Box.Name, "stage", res.Stage, "err", err)
			res.Stage = StageError
		}
	}()

	res.Stage = StageValidate
	if boxIndex < 0 || boxIndex >= len(project.Boxes) {
		return res, faults.New(faults.ErrCodeNotFound, "box index %d out of range (%d boxes)", boxIndex, len(project.Boxes))
	}
	box := project.Boxes[boxIndex]
	res.Box = box
	if v := engine.ValidateBox(box, project.Globals); len(v) > 0 {
		return res, faults.Validation(v)
	}
	start := time.Now()

	res.Stage = StageLayoutStacks
	offset := TrayOffset(project, boxIndex)
	layouts := make([]*engine.TrayLayout, len(box.Trays))
	for i, tray := range box.Trays {
		params := model.ResolvedParams{Global: project.Globals, Tray: tray.Params}
		l, err := engine.LayoutTray(params, opts.CardSizes)
		if err != nil {
			return res, err
		}
		for _, w := range l.Warnings {
			logger.Warn("shape fallback", "box", box.Name, "tray", tray.Name, "detail", w)
			res.Warnings = append(res.Warnings, fmt.Sprintf("tray %q: %s", tray.Name, w))
		}
		layouts[i] = l
		res.Trays = append(res.Trays, TrayResult{Tray: tray, Letter: engine.TrayLetter(offset + i), Layout: l})
	}

	res.Stage = StageComputeArrangement
	arr, err := engine.Arrange(box, layouts, project.Globals.PrintBedSize)
	if err != nil {
		return res, err
	}
	res.Arrangement = arr
	for _, w := range arr.Warnings {
		logger.Warn("arrangement", "box", box.Name, "detail", w)
		res.Warnings = append(res.Warnings, w)
	}

	res.Stage = StageComputeSpacers
	spacers := engine.ComputeSpacers(box.Trays, layouts, arr.TrayHeight)
	for i := range res.Trays {
		tr := &res.Trays[i]
		tr.Spacer = spacers[i]
		tr.Placement = arr.Placements[i]
		res.RefLabels = append(res.RefLabels, engine.RefLabels(tr.Tray.Name, tr.Letter, tr.Layout)...)
	}
	logger.Debug("layout complete",
		"box", box.Name,
		"trays", len(box.Trays),
		"exterior", fmt.Sprintf("%.1fx%.1fx%.1f", arr.ExteriorWidth, arr.ExteriorDepth, arr.ExteriorHeight))

	if opts.LayoutOnly {
		res.Stage = StageReady
		return res, nil
	}

	res.Stage = StageBuildTraySolids
	for i := range res.Trays {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		tr := &res.Trays[i]
		params := model.ResolvedParams{Global: project.Globals, Tray: tr.Tray.Params}
		key := cache.Key("tray", params, opts.CardSizes, tr.Tray.Name, arr.TrayHeight, tr.Spacer.Spacer)
		m, hit, err := cachedMesh(ctx, opts, key, func() (*mesh.Mesh, error) {
			return build.BuildTray(params, tr.Layout, tr.Tray.Name, arr.TrayHeight, tr.Spacer.Spacer)
		})
		if err != nil {
			return res, err
		}
		if hit {
			res.CacheHits++
		}
		tr.Mesh = m
	}

	res.Stage = StageBuildBoxSolid
	if err := ctx.Err(); err != nil {
		return res, err
	}
	m, hit, err := cachedMesh(ctx, opts, cache.Key("box", box, arr), func() (*mesh.Mesh, error) {
		return build.BuildBox(box, arr)
	})
	if err != nil {
		return res, err
	}
	if hit {
		res.CacheHits++
	}
	res.BoxMesh = m

	res.Stage = StageBuildLidSolid
	if err := ctx.Err(); err != nil {
		return res, err
	}
	m, hit, err = cachedMesh(ctx, opts, cache.Key("lid", box.Name, box.Lid, arr.ExteriorWidth, arr.ExteriorDepth, len(arr.Placements)), func() (*mesh.Mesh, error) {
		return build.BuildLid(box, arr)
	})
	if err != nil {
		return res, err
	}
	if hit {
		res.CacheHits++
	}
	res.LidMesh = m

	for _, issue := range res.CheckFit() {
		logger.Warn("fit check", "box", box.Name, "detail", issue)
		res.Warnings = append(res.Warnings, issue)
	}

	res.Stage = StageReady
	logger.Info("generated box",
		"box", box.Name,
		"trays", len(res.Trays),
		"cache_hits", res.CacheHits,
		"duration", time.Since(start))
	return res, nil
}

// GenerateAll generates every box of the project concurrently. Results are
// index-aligned with project.Boxes. The first failure cancels the remaining
// boxes and is returned; results of boxes that finished are kept.
func GenerateAll(ctx context.Context, project model.Project, opts Options) ([]*BoxResult, error) {
	results := make([]*BoxResult, len(project.Boxes))
	g, gctx := errgroup.WithContext(ctx)
	for i := range project.Boxes {
		g.Go(func() error {
			res, err := Generate(gctx, project, i, opts)
			results[i] = res
			if err != nil {
				return fmt.Errorf("box %q: %w", project.Boxes[i].Name, err)
			}
			return nil
		})
	}
	err := g.Wait()
	return results, err
}
