package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/transfocator/pkg/beamline"
	"github.com/matzehuels/transfocator/pkg/cache"
	"github.com/matzehuels/transfocator/pkg/errors"
	"github.com/matzehuels/transfocator/pkg/geometry"
	"github.com/matzehuels/transfocator/pkg/materials"
	"github.com/matzehuels/transfocator/pkg/observability"
	"github.com/matzehuels/transfocator/pkg/optics"
	"github.com/matzehuels/transfocator/pkg/propagation"
	"github.com/matzehuels/transfocator/pkg/report"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache, provider and logger - it
// doesn't store pipeline results. Multiple goroutines can safely use the
// same Runner with different options, provided the materials provider is
// safe for concurrent use.
type Runner struct {
	Cache    cache.Cache
	Keyer    cache.Keyer
	Provider materials.Provider
	Logger   *log.Logger
}

// NewRunner creates a runner with the given cache, keyer and provider.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// If provider is nil, the built-in material table is used.
func NewRunner(c cache.Cache, keyer cache.Keyer, provider materials.Provider, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if provider == nil {
		provider = materials.DefaultTable()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:    c,
		Keyer:    keyer,
		Provider: provider,
		Logger:   logger,
	}
}

// Execute runs the complete assemble → propagate → report pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	bl := opts.EffectiveBeamline()
	if err := bl.Validate(); err != nil {
		return nil, err
	}

	result := &Result{}
	hash, err := cache.HashJSON(bl)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "hash beamline")
	}
	result.BeamlineHash = hash
	result.Stats.TFCount = len(bl.TFs)

	keyOpts := opts.ReportKeyOpts()
	keyOpts.Provider = materials.FingerprintOf(r.Provider)
	key := r.Keyer.ReportKey(hash, keyOpts)
	if !opts.Refresh {
		if rep, ok := r.cachedReport(ctx, key); ok {
			result.Report = rep
			result.Stats.LensCount = len(rep.History)
			result.CacheInfo.ReportHit = true
			r.Logger.Debug("report from cache", "hash", hash[:12])
			return result, nil
		}
	}

	// Stage 1: Assemble
	start := time.Now()
	chain, err := r.Assemble(ctx, bl, opts.Settings)
	if err != nil {
		return nil, err
	}
	result.Chain = chain
	result.Stats.AssembleTime = time.Since(start)
	result.Stats.LensCount = len(chain.Units)

	r.Logger.Info("assembled chain",
		"transfocators", len(bl.TFs),
		"lenses", len(chain.Units),
		"duration", result.Stats.AssembleTime)

	// Stage 2: Propagate
	start = time.Now()
	run, err := r.Propagate(ctx, chain, bl.Source, opts.ConventionValue())
	if err != nil {
		return nil, err
	}
	result.Stats.PropagateTime = time.Since(start)

	// Stage 3: Report
	start = time.Now()
	rep, err := report.Aggregate(run, report.Options{Symmetry: opts.Symmetry})
	result.Stats.ReportTime = time.Since(start)
	observability.Pipeline().OnReportComplete(ctx, bl.Source.Energy, result.Stats.ReportTime, err)
	if err != nil {
		return nil, err
	}
	result.Report = rep

	r.Logger.Info("computed report",
		"energy", rep.Energy,
		"transmission", rep.T,
		"gain", rep.G,
		"duration", result.Stats.PropagateTime+result.Stats.ReportTime)

	if data, err := json.Marshal(rep); err == nil {
		if r.Cache.Set(ctx, key, data, cache.ReportTTL) == nil {
			observability.Cache().OnCacheSet(ctx, "report", len(data))
		}
	}
	return result, nil
}

func (r *Runner) cachedReport(ctx context.Context, key string) (*report.Report, bool) {
	hooks := observability.Cache()
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		hooks.OnCacheMiss(ctx, "report")
		return nil, false
	}
	var rep report.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		// Unreadable entries are recomputed and overwritten.
		hooks.OnCacheMiss(ctx, "report")
		return nil, false
	}
	hooks.OnCacheHit(ctx, "report")
	return &rep, true
}

// Assemble lays out bl with the given mount settings.
func (r *Runner) Assemble(ctx context.Context, bl *beamline.Beamline, settings geometry.Settings) (*geometry.Chain, error) {
	hooks := observability.Pipeline()
	hooks.OnAssembleStart(ctx, len(bl.TFs))

	start := time.Now()
	chain, err := geometry.NewAssembler(r.Provider, settings, r.Logger).Assemble(ctx, bl)
	n := 0
	if chain != nil {
		n = len(chain.Units)
	}
	hooks.OnAssembleComplete(ctx, n, time.Since(start), err)
	return chain, err
}

// Propagate runs the propagation engine over chain.
func (r *Runner) Propagate(ctx context.Context, chain *geometry.Chain, src beamline.Source, conv optics.Convention) (*propagation.Run, error) {
	hooks := observability.Pipeline()
	hooks.OnPropagateStart(ctx, len(chain.Units))

	start := time.Now()
	run, err := propagation.NewEngine(src.Params(conv), conv).Run(chain.Units)
	hooks.OnPropagateComplete(ctx, len(chain.Units), time.Since(start), err)
	return run, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
