// Package analysis defines the report produced for each configured scenario
// and includes the functions that evaluate them.
package analysis

import (
	"context"
	"fmt"

	"github.com/iwvelando/corporate-valuation/internal/config"
	"github.com/iwvelando/corporate-valuation/internal/sensitivity"
	"github.com/iwvelando/corporate-valuation/pkg/summary"
	"github.com/iwvelando/corporate-valuation/pkg/valuation"
	"go.uber.org/zap"
)

// Report holds the outcome of one scenario. Exactly one of DCF, Extended
// and LBO is set, matching Kind.
type Report struct {
	Name       string                      `json:"name"`
	Kind       string                      `json:"kind"`
	DCF        *valuation.ValuationResult  `json:"dcf,omitempty"`
	Extended   *valuation.ExtendedResult   `json:"extended,omitempty"`
	LBO        *valuation.LBOResult        `json:"lbo,omitempty"`
	Projection []valuation.ProjectedRow    `json:"projection,omitempty"`
	Grids      []valuation.SensitivityGrid `json:"grids,omitempty"`
	Summaries  []summary.Grid              `json:"summaries,omitempty"`
}

// Options selects what Run evaluates.
type Options struct {
	// Kinds restricts the scenario kinds; empty means all.
	Kinds []string
	// Sensitivity enables the grid directives on extended scenarios.
	Sensitivity bool
	// Workers bounds grid concurrency when a directive does not set it.
	Workers int
}

func (o Options) includes(kind string) bool {
	if len(o.Kinds) == 0 {
		return true
	}
	for _, k := range o.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Run evaluates every active scenario in conf in configuration order: DCF
// scenarios first, then extended, then LBO.
func Run(ctx context.Context, logger *zap.Logger, conf config.Configuration, opts Options) ([]Report, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var reports []Report

	if opts.includes(config.KindDCF) {
		for _, scenario := range conf.DCF {
			if !scenario.Active {
				logSkip(logger, config.KindDCF, scenario.Name)
				continue
			}
			result, rows, err := valuation.RunDCF(scenario.Assumptions)
			if err != nil {
				return reports, fmt.Errorf("dcf scenario %s: %w", scenario.Name, err)
			}
			logger.Debug("valued dcf scenario",
				zap.String("op", "analysis.Run"),
				zap.String("scenario", scenario.Name),
				zap.Float64("enterpriseValue", result.EnterpriseValue),
			)
			reports = append(reports, Report{
				Name:       scenario.Name,
				Kind:       config.KindDCF,
				DCF:        &result,
				Projection: rows,
			})
		}
	}

	if opts.includes(config.KindExtended) {
		var runner *sensitivity.Runner
		if opts.Sensitivity {
			runner = sensitivity.NewRunner(logger, sensitivity.WithWorkers(opts.Workers))
		}
		for _, scenario := range conf.Extended {
			if !scenario.Active {
				logSkip(logger, config.KindExtended, scenario.Name)
				continue
			}
			result, rows, err := valuation.RunExtended(scenario.Assumptions)
			if err != nil {
				return reports, fmt.Errorf("extended scenario %s: %w", scenario.Name, err)
			}
			logger.Debug("valued extended scenario",
				zap.String("op", "analysis.Run"),
				zap.String("scenario", scenario.Name),
				zap.Float64("wacc", result.DiscountRate),
				zap.Float64("perShare", result.PerShare),
			)
			report := Report{
				Name:       scenario.Name,
				Kind:       config.KindExtended,
				Extended:   &result,
				Projection: rows,
			}
			if runner != nil && len(scenario.Sensitivity) > 0 {
				grids, err := runner.Run(ctx, scenario)
				if err != nil {
					return reports, err
				}
				report.Grids = grids
				for _, g := range grids {
					report.Summaries = append(report.Summaries, summary.Summarize(g))
				}
			}
			reports = append(reports, report)
		}
	}

	if opts.includes(config.KindLBO) {
		for _, scenario := range conf.LBO {
			if !scenario.Active {
				logSkip(logger, config.KindLBO, scenario.Name)
				continue
			}
			result, err := valuation.ComputeReturns(scenario.Assumptions)
			if err != nil {
				return reports, fmt.Errorf("lbo scenario %s: %w", scenario.Name, err)
			}
			logger.Debug("valued lbo scenario",
				zap.String("op", "analysis.Run"),
				zap.String("scenario", scenario.Name),
				zap.Float64("moic", result.MOIC),
				zap.Float64("irr", result.IRR),
			)
			reports = append(reports, Report{
				Name: scenario.Name,
				Kind: config.KindLBO,
				LBO:  &result,
			})
		}
	}

	return reports, nil
}

func logSkip(logger *zap.Logger, kind, name string) {
	logger.Debug(fmt.Sprintf("skipping %s scenario %s because it is inactive", kind, name),
		zap.String("op", "analysis.Run"),
	)
}
