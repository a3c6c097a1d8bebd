// Package sensitivity runs the sensitivity grid directives configured on
// extended scenarios.
package sensitivity

import (
	"context"
	"fmt"

	"github.com/iwvelando/corporate-valuation/internal/cellcache"
	"github.com/iwvelando/corporate-valuation/internal/config"
	"github.com/iwvelando/corporate-valuation/pkg/valuation"
	"go.uber.org/zap"
)

// Runner evaluates sensitivity directives. Grids run by the same Runner
// share one cell cache.
type Runner struct {
	logger  *zap.Logger
	cache   *cellcache.Cache
	workers int
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers sets the default worker count for directives that do not set
// their own.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithCache replaces the Runner's private cache, so several runners can
// share memoized cells.
func WithCache(cache *cellcache.Cache) Option {
	return func(r *Runner) {
		if cache != nil {
			r.cache = cache
		}
	}
}

// NewRunner constructs a Runner.
func NewRunner(logger *zap.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Runner{logger: logger, cache: cellcache.New()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Cache exposes the Runner's cell cache.
func (r *Runner) Cache() *cellcache.Cache {
	return r.cache
}

// Run evaluates every directive on scenario in order. A directive that
// cannot be built fails the run; failing cells inside a grid do not.
func (r *Runner) Run(ctx context.Context, scenario config.ExtendedScenario) ([]valuation.SensitivityGrid, error) {
	grids := make([]valuation.SensitivityGrid, 0, len(scenario.Sensitivity))
	for i := range scenario.Sensitivity {
		directive := scenario.Sensitivity[i]
		req, err := directive.Request()
		if err != nil {
			return nil, fmt.Errorf("scenario %s sensitivity %d: %w", scenario.Name, i, err)
		}

		workers := directive.Workers
		if workers <= 0 {
			workers = r.workers
		}
		opts := []valuation.GridOption{valuation.WithCache(r.cache, cellcache.Key)}
		if workers > 0 {
			opts = append(opts, valuation.WithWorkers(workers))
		}
		gen := valuation.NewGridGenerator(opts...)

		before := r.cache.Stats()
		grid, err := gen.Generate(ctx, scenario.Assumptions, req)
		if err != nil {
			return nil, fmt.Errorf("scenario %s sensitivity %q: %w", scenario.Name, req.Title, err)
		}
		after := r.cache.Stats()

		r.logFailures(scenario.Name, grid)
		r.logger.Info("sensitivity grid generated",
			zap.String("op", "sensitivity.Run"),
			zap.String("scenario", scenario.Name),
			zap.String("title", grid.Title),
			zap.String("metric", string(grid.Metric)),
			zap.Int("rows", len(grid.YLabels)),
			zap.Int("cols", len(grid.XLabels)),
			zap.Int("failedCells", grid.Failures()),
			zap.Int64("cacheHits", after.Hits-before.Hits),
		)
		grids = append(grids, grid)
	}
	return grids, nil
}

func (r *Runner) logFailures(scenario string, grid valuation.SensitivityGrid) {
	if grid.Failures() == 0 {
		return
	}
	for i, row := range grid.Grid {
		for j, cell := range row {
			if cell.OK() {
				continue
			}
			r.logger.Debug("sensitivity cell failed",
				zap.String("op", "sensitivity.Run"),
				zap.String("scenario", scenario),
				zap.String("title", grid.Title),
				zap.String("row", grid.YLabels[i]),
				zap.String("col", grid.XLabels[j]),
				zap.Error(cell.Err),
			)
		}
	}
	r.logger.Warn(fmt.Sprintf("%d of %d cells failed in grid %q", grid.Failures(), len(grid.XLabels)*len(grid.YLabels), grid.Title),
		zap.String("op", "sensitivity.Run"),
		zap.String("scenario", scenario),
	)
}
