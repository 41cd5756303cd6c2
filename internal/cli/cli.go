// Package cli implements the trayforge command-line interface.
//
// Commands operate on project files (JSON or YAML, chosen by extension):
//   - init: create a project with one box and tray
//   - validate: check every box without building geometry
//   - layout: print tray layouts and reference codes, optionally as JSON and PNG
//   - generate: build STL files plus the PDF, label and XLSX documents
//   - import: add stacks from CSV/XLSX or custom shapes from DXF/JSON
//   - backup, restore: bundle a project with the application config
//   - serve: run the HTTP API
//
// All commands support --verbose (-v) for debug logging. The logger travels
// through context.Context.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/piwi3910/TrayForge/internal/cache"
	"github.com/piwi3910/TrayForge/internal/generate"
	"github.com/piwi3910/TrayForge/internal/model"
	"github.com/piwi3910/TrayForge/internal/project"
)

const (
	appName = "trayforge"

	// recentLimit is how many recent projects the config remembers.
	recentLimit = 10
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	out    io.Writer

	configPath    string
	cardSizesPath string
	config        model.AppConfig
}

// New creates a CLI that logs to logw and prints results to out.
func New(out, logw io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(logw, level),
		out:    out,
		config: model.DefaultAppConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "TrayForge generates 3D-printable board game inserts",
		Long:         `TrayForge lays out stacks of tokens and cards into trays, packs the trays into boxes and writes printable STL files for trays, box shells and snap-fit lids.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ~/.trayforge/config.toml)")
	root.PersistentFlags().StringVar(&c.cardSizesPath, "card-sizes", "", "card size overrides (default: ~/.trayforge/card_sizes.json)")

	root.AddCommand(c.initCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.backupCommand())
	root.AddCommand(c.restoreCommand())
	root.AddCommand(c.serveCommand())

	return root
}

// loadConfig reads the TOML config; a missing file yields the defaults.
// A level in the config only applies when --verbose did not raise it.
func (c *CLI) loadConfig() error {
	if c.configPath == "" {
		c.configPath = project.DefaultConfigPath()
	}
	cfg, err := project.LoadAppConfig(c.configPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", c.configPath, err)
	}
	c.config = cfg
	if c.Logger.GetLevel() != LogDebug && cfg.LogLevel != "" {
		if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
			c.Logger.SetLevel(level)
		} else {
			c.Logger.Warn("ignoring log level", "value", cfg.LogLevel)
		}
	}
	return nil
}

// rememberProject records path in the recent list and saves the config.
// Failures are logged; they never fail the command.
func (c *CLI) rememberProject(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	project.AddRecentProject(&c.config, abs, recentLimit)
	if err := project.SaveAppConfig(c.configPath, c.config); err != nil {
		c.Logger.Warn("could not save config", "path", c.configPath, "err", err)
	}
}

// pipelineOptions builds generation options from the config: card size
// overrides and the mesh cache.
func (c *CLI) pipelineOptions(ctx context.Context, noCache bool) (generate.Options, error) {
	path := c.cardSizesPath
	if path == "" {
		path = project.DefaultCardSizesPath()
	}
	sizes, err := project.LoadCardSizes(path)
	if err != nil {
		return generate.Options{}, fmt.Errorf("load card sizes: %w", err)
	}
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return generate.Options{}, err
	}
	return generate.Options{Logger: c.Logger, CardSizes: sizes, Cache: ch}, nil
}

// newCache prefers Redis, then the configured directory, then the XDG cache
// directory. An unreachable Redis falls back to the file cache.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if c.config.RedisAddr != "" {
		rc, err := cache.NewRedisCache(ctx, c.config.RedisAddr, appName+":")
		if err == nil {
			c.Logger.Debug("using redis cache", "addr", c.config.RedisAddr)
			return rc, nil
		}
		c.Logger.Warn("redis unavailable, using file cache", "err", err)
	}
	dir := c.config.CacheDir
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/trayforge/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// selectBoxes resolves a --box selector (index, ID or name) to box
// indices. An empty selector selects every box.
func selectBoxes(p model.Project, sel string) ([]int, error) {
	if sel == "" {
		all := make([]int, len(p.Boxes))
		for i := range all {
			all[i] = i
		}
		return all, nil
	}
	if i, err := strconv.Atoi(sel); err == nil {
		if i < 0 || i >= len(p.Boxes) {
			return nil, fmt.Errorf("box index %d out of range (%d boxes)", i, len(p.Boxes))
		}
		return []int{i}, nil
	}
	for i, b := range p.Boxes {
		if b.ID == sel || b.Name == sel {
			return []int{i}, nil
		}
	}
	return nil, fmt.Errorf("box %q not found", sel)
}
