package sensitivity

import (
	"context"
	"errors"
	"testing"

	"github.com/iwvelando/corporate-valuation/internal/cellcache"
	"github.com/iwvelando/corporate-valuation/internal/config"
	"github.com/iwvelando/corporate-valuation/pkg/valuation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func floatPtr(value float64) *float64 {
	return &value
}

func baseScenario() config.ExtendedScenario {
	return config.ExtendedScenario{
		Name:   "Base",
		Active: true,
		Assumptions: valuation.ExtendedAssumptions{
			Assumptions: valuation.Assumptions{
				CurrentRevenue:        100,
				RevenueGrowthRate:     0.05,
				EBITDAMargin:          0.25,
				TaxRate:               0.25,
				CapexPercent:          0.03,
				WorkingCapitalPercent: 0.02,
				TerminalGrowthRate:    0.02,
				DiscountRate:          0.10,
				ProjectionYears:       5,
			},
			RF:                0.04,
			Beta:              1.1,
			ERP:               0.05,
			WD:                0.3,
			KD:                0.06,
			WE:                0.7,
			CAPMMode:          valuation.DiscountRateCAPM,
			TerminalMethod:    valuation.TerminalGordon,
			ExitEVMultiple:    10,
			TG:                0.02,
			GrowthYears:       5,
			NetDebt:           20,
			SharesOutstanding: 10,
		},
		Sensitivity: []config.SensitivityConfig{
			{
				Rows: config.AxisConfig{Driver: "wacc", Values: []float64{0.07, 0.08, 0.09}},
				Cols: config.AxisConfig{Driver: "tg", Start: floatPtr(0.01), Stop: floatPtr(0.03), Steps: 3},
			},
			{
				Metric:  "ev",
				Workers: 2,
				Rows:    config.AxisConfig{Driver: "revenue_growth", Center: floatPtr(0.05), Step: 0.02, Radius: 1},
				Cols:    config.AxisConfig{Driver: "margin", Values: []float64{0.15, 0.2, 0.25}},
			},
		},
	}
}

func TestRunProducesGridPerDirective(t *testing.T) {
	runner := NewRunner(zap.NewNop(), WithWorkers(3))
	scenario := baseScenario()

	grids, err := runner.Run(context.Background(), scenario)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(grids) != 2 {
		t.Fatalf("expected 2 grids, got %d", len(grids))
	}

	first := grids[0]
	if first.Metric != valuation.MetricPerShare {
		t.Errorf("first grid metric = %q", first.Metric)
	}
	if err := first.Validate(); err != nil {
		t.Errorf("first grid invalid: %v", err)
	}
	if first.Failures() != 0 {
		t.Errorf("first grid has %d failures", first.Failures())
	}
	wantX := []string{"1.00%", "2.00%", "3.00%"}
	for i, label := range wantX {
		if first.XLabels[i] != label {
			t.Errorf("XLabels[%d] = %q, expected %q", i, first.XLabels[i], label)
		}
	}

	direct, _, err := valuation.RunExtended(scenario.Assumptions)
	if err != nil {
		t.Fatalf("RunExtended() error = %v", err)
	}
	// The 8% WACC and 2% growth cell reproduces the base valuation.
	if got := first.Grid[1][1].Value; got < direct.PerShare-1e-6 || got > direct.PerShare+1e-6 {
		t.Errorf("centre cell = %v, expected base per share %v", got, direct.PerShare)
	}

	second := grids[1]
	if second.Metric != valuation.MetricEnterpriseValue {
		t.Errorf("second grid metric = %q", second.Metric)
	}
	for i := range second.Grid {
		for j := 1; j < len(second.Grid[i]); j++ {
			if second.Grid[i][j].Value <= second.Grid[i][j-1].Value {
				t.Errorf("EV should rise with margin in row %d", i)
			}
		}
	}
}

func TestRunLogsFailedCells(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	runner := NewRunner(zap.New(core))

	scenario := baseScenario()
	scenario.Sensitivity = []config.SensitivityConfig{{
		Title: "divergent corner",
		Rows:  config.AxisConfig{Driver: "wacc", Values: []float64{0.015, 0.08}},
		Cols:  config.AxisConfig{Driver: "terminal_growth", Values: []float64{0.02, 0.03}},
	}}

	grids, err := runner.Run(context.Background(), scenario)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := grids[0].Failures(); got != 2 {
		t.Fatalf("expected 2 failed cells, got %d", got)
	}
	for j := range grids[0].Grid[0] {
		if !errors.Is(grids[0].Grid[0][j].Err, valuation.ErrDivergentTerminalValue) {
			t.Errorf("cell [0][%d] error = %v", j, grids[0].Grid[0][j].Err)
		}
	}

	if n := logs.FilterMessage("sensitivity cell failed").Len(); n != 2 {
		t.Errorf("expected 2 cell failure logs, got %d", n)
	}
	if n := logs.FilterLevelExact(zapcore.WarnLevel).Len(); n != 1 {
		t.Errorf("expected 1 warning, got %d", n)
	}
	summary := logs.FilterMessage("sensitivity grid generated").All()
	if len(summary) != 1 {
		t.Fatalf("expected 1 summary log, got %d", len(summary))
	}
	if got := summary[0].ContextMap()["failedCells"]; got != int64(2) {
		t.Errorf("failedCells field = %v", got)
	}
}

func TestRunSharesCache(t *testing.T) {
	cache := cellcache.New()
	scenario := baseScenario()
	scenario.Sensitivity = scenario.Sensitivity[:1]

	for i := 0; i < 2; i++ {
		runner := NewRunner(nil, WithCache(cache))
		if _, err := runner.Run(context.Background(), scenario); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	}
	if stats := cache.Stats(); stats.Entries != 9 || stats.Hits != 9 {
		t.Errorf("cache Stats() = %+v, expected 9 entries and 9 hits", stats)
	}
}

func TestRunRejectsBadDirective(t *testing.T) {
	scenario := baseScenario()
	scenario.Sensitivity = []config.SensitivityConfig{{
		Rows: config.AxisConfig{Driver: "wacc", Values: []float64{0.08}},
		Cols: config.AxisConfig{Driver: "beta", Values: []float64{1}},
	}}

	_, err := NewRunner(nil).Run(context.Background(), scenario)
	if !errors.Is(err, valuation.ErrMalformedGrid) {
		t.Fatalf("expected ErrMalformedGrid, got %v", err)
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(nil).Run(ctx, baseScenario())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRunWithoutDirectives(t *testing.T) {
	scenario := baseScenario()
	scenario.Sensitivity = nil

	grids, err := NewRunner(nil).Run(context.Background(), scenario)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(grids) != 0 {
		t.Errorf("expected no grids, got %d", len(grids))
	}
}
