// Package cli implements the tfcalc command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/transfocator/pkg/beamline"
	"github.com/matzehuels/transfocator/pkg/buildinfo"
	"github.com/matzehuels/transfocator/pkg/cache"
	"github.com/matzehuels/transfocator/pkg/materials"
	"github.com/matzehuels/transfocator/pkg/pipeline"
	"github.com/matzehuels/transfocator/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "tfcalc"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *Config

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "tfcalc computes focusing through X-ray transfocators",
		Long: `tfcalc traces an X-ray beam through a chain of compound refractive lenses
held in transfocators and reports the focus position, spot size, transmission
and gain after every lens.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.config/tfcalc/config.toml)")

	// Register all subcommands
	root.AddCommand(c.calcCommand())
	root.AddCommand(c.scanCommand())
	root.AddCommand(c.chainCommand())
	root.AddCommand(c.schematicCommand())
	root.AddCommand(c.constantsCommand())
	root.AddCommand(c.presetsCommand())
	root.AddCommand(c.initCommand())
	root.AddCommand(c.runsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// config returns the loaded configuration, loading defaults when a command
// runs without the root pre-run (as in tests).
func (c *CLI) config() *Config {
	if c.Config == nil {
		cfg, err := loadConfig(c.configPath)
		if err != nil {
			c.Logger.Warn("using default configuration", "err", err)
			cfg, _ = loadConfig("")
		}
		c.Config = cfg
	}
	return c.Config
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	provider, err := c.newProvider(cch)
	if err != nil {
		_ = cch.Close()
		return nil, err
	}
	return pipeline.NewRunner(cch, nil, provider, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.config().Cache
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Backend {
	case backendNone:
		return cache.NewNullCache(), nil
	case backendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		return rc, nil
	}
	dir := cfg.Dir
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

// newProvider picks the optical-constants source. Remote lookups go
// through the cache; tabulated ones are cheap enough to skip it.
func (c *CLI) newProvider(cch cache.Cache) (materials.Provider, error) {
	cfg := c.config().Materials
	switch {
	case cfg.URL != "":
		remote, err := materials.NewRemote(cfg.URL, nil)
		if err != nil {
			return nil, err
		}
		return materials.NewCached(remote, cch, nil, 0), nil
	case cfg.Table != "":
		t, err := materials.LoadTableFile(cfg.Table)
		if err != nil {
			return nil, err
		}
		return t, nil
	default:
		return materials.DefaultTable(), nil
	}
}

func (c *CLI) newStore(ctx context.Context) (store.Store, error) {
	cfg := c.config().Store
	switch cfg.Backend {
	case backendMemory:
		return store.NewMemoryStore(), nil
	case backendMongo:
		ms, err := store.NewMongoStore(ctx, store.MongoOptions{
			URI:      cfg.MongoURI,
			Database: cfg.MongoDatabase,
		})
		if err != nil {
			return nil, err
		}
		return ms, nil
	default:
		fs, err := store.NewFileStore(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return fs, nil
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/tfcalc/).
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

// =============================================================================
// Options Helpers
// =============================================================================

// calcFlags are the flags shared by calc, scan and schematic.
type calcFlags struct {
	convention string
	energy     float64
	symmetry   bool
	noCache    bool
	refresh    bool
}

func (f *calcFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.convention, "convention", "", "beam width convention: fwhm (default) or sigma")
	cmd.Flags().Float64Var(&f.energy, "energy", 0, "photon energy in eV (overrides the beamline file)")
	cmd.Flags().BoolVar(&f.symmetry, "symmetry", false, "search for the symmetry point after the last lens")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even when a cached report exists")
}

// options builds pipeline options for bl, filling unset flags from the
// configuration.
func (c *CLI) options(bl *beamline.Beamline, f *calcFlags) pipeline.Options {
	cfg := c.config()
	conv := f.convention
	if conv == "" {
		conv = cfg.Convention
	}
	return pipeline.Options{
		Beamline:   bl,
		Convention: conv,
		Energy:     f.energy,
		Symmetry:   f.symmetry,
		Refresh:    f.refresh,
		Settings:   cfg.Geometry,
		Logger:     c.Logger,
	}
}
