package integration

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/iwvelando/corporate-valuation/internal/analysis"
	"github.com/iwvelando/corporate-valuation/internal/config"
	"github.com/iwvelando/corporate-valuation/pkg/output"
	"github.com/iwvelando/corporate-valuation/pkg/testutil"
	"github.com/iwvelando/corporate-valuation/pkg/valuation"
	"go.uber.org/zap"
)

// TestMainIntegrationBaseline runs the test configuration exactly as the CLI
// does and checks the reference figures.
func TestMainIntegrationBaseline(t *testing.T) {
	logger := zap.NewNop()

	conf, err := config.LoadConfiguration("../test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if err := conf.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	results, err := analysis.Run(context.Background(), logger, *conf, analysis.Options{Sensitivity: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 reports, got %d", len(results))
	}

	dcf := testutil.FindReport(results, "Scenario A")
	if dcf == nil || dcf.DCF == nil {
		t.Fatal("Scenario A report missing")
	}
	wantFCF := []float64{17.745, 18.632, 19.564, 20.542, 21.569}
	for i, want := range wantFCF {
		if math.Abs(dcf.DCF.FreeCashFlows[i]-want) > 0.001 {
			t.Errorf("Scenario A FCF[%d] = %.4f, expected %.3f", i, dcf.DCF.FreeCashFlows[i], want)
		}
	}
	if math.Abs(dcf.DCF.EnterpriseValue-244.42) > 0.05 {
		t.Errorf("Scenario A EV = %.4f, expected 244.42", dcf.DCF.EnterpriseValue)
	}

	lbo := testutil.FindReport(results, "Scenario B")
	if lbo == nil || lbo.LBO == nil {
		t.Fatal("Scenario B report missing")
	}
	checks := []struct {
		name      string
		got, want float64
		tol       float64
	}{
		{"equity investment", lbo.LBO.EquityInvestment, 240, 1e-9},
		{"exit EBITDA", lbo.LBO.ExitEBITDA, 133.82, 0.01},
		{"exit value", lbo.LBO.ExitValue, 1338.23, 0.01},
		{"net exit value", lbo.LBO.NetExitValue, 498.23, 0.01},
		{"MOIC", lbo.LBO.MOIC, 2.076, 0.001},
		{"IRR", lbo.LBO.IRR, 15.7, 0.05},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > c.tol {
			t.Errorf("Scenario B %s = %.4f, expected %.4f", c.name, c.got, c.want)
		}
	}

	base := testutil.FindReport(results, "Base")
	if base == nil || base.Extended == nil {
		t.Fatal("Base report missing")
	}
	if len(base.Grids) != 2 {
		t.Fatalf("Base has %d grids, expected 2", len(base.Grids))
	}
	for _, g := range base.Grids {
		if err := g.Validate(); err != nil {
			t.Errorf("grid %q invalid: %v", g.Title, err)
		}
		if g.Failures() != 0 {
			t.Errorf("grid %q has %d failed cells", g.Title, g.Failures())
		}
	}

	// WACC rises down the rows, so per share falls down every column.
	perShare := base.Grids[0]
	for j := range perShare.XLabels {
		for i := 1; i < len(perShare.YLabels); i++ {
			if perShare.Grid[i][j].Value >= perShare.Grid[i-1][j].Value {
				t.Errorf("per share not decreasing with WACC at column %s", perShare.XLabels[j])
			}
		}
	}
}

// TestScenarioCDivergence checks that r == g is reported, not valued.
func TestScenarioCDivergence(t *testing.T) {
	conf, err := config.LoadConfiguration("../test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	conf.DCF[0].Assumptions.DiscountRate = 0.03
	conf.DCF[0].Assumptions.TerminalGrowthRate = 0.03

	_, err = analysis.Run(context.Background(), zap.NewNop(), *conf, analysis.Options{Kinds: []string{config.KindDCF}})
	if !errors.Is(err, valuation.ErrDivergentTerminalValue) {
		t.Fatalf("expected ErrDivergentTerminalValue, got %v", err)
	}
}

// TestExampleConfiguration runs the shipped example through every output
// format.
func TestExampleConfiguration(t *testing.T) {
	conf, err := config.LoadConfiguration("../../config.yaml.example")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if err := conf.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if warnings := conf.ValidateConfiguration(); len(warnings) != 0 {
		t.Errorf("example configuration produced warnings: %v", warnings)
	}

	results, err := analysis.Run(context.Background(), zap.NewNop(), *conf, analysis.Options{Sensitivity: true, Workers: 4})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := testutil.CountKind(results, config.KindExtended); got != 2 {
		t.Errorf("expected 2 extended reports, got %d", got)
	}

	margin := testutil.FindReport(results, "Margin expansion")
	if margin == nil || margin.Extended == nil {
		t.Fatal("Margin expansion report missing")
	}
	rows := margin.Projection
	if len(rows) != 8 {
		t.Fatalf("expected 8 projected years, got %d", len(rows))
	}
	if math.Abs(rows[0].EBITMargin-0.12) > 1e-12 || math.Abs(rows[7].EBITMargin-0.20) > 1e-12 {
		t.Errorf("EBIT margin path endpoints = %v, %v", rows[0].EBITMargin, rows[7].EBITMargin)
	}
	if rows[5].Growth != 0.025 || rows[4].Growth != 0.12 {
		t.Errorf("growth should drop to tg after growthYears: %v, %v", rows[4].Growth, rows[5].Growth)
	}

	exit := testutil.FindReport(results, "Exit multiple")
	if exit == nil || exit.Extended == nil {
		t.Fatal("Exit multiple report missing")
	}
	last := exit.Projection[len(exit.Projection)-1]
	if math.Abs(exit.Extended.TerminalValue-last.EBITDA*9) > 1e-9 {
		t.Errorf("exit multiple terminal value = %v, expected %v", exit.Extended.TerminalValue, last.EBITDA*9)
	}

	for _, format := range []string{"pretty", "csv", "json"} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := output.Write(&buf, format, results); err != nil {
				t.Fatalf("Write(%s) error = %v", format, err)
			}
			if !strings.Contains(buf.String(), "Sponsor case") {
				t.Errorf("%s output missing the buyout scenario", format)
			}
		})
	}
}
