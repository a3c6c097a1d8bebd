package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/corporate-valuation/pkg/valuation"
)

const testConfigPath = "../../test/test_config.yaml"

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

const minimalConfig = `
dcf:
  - name: Only
    active: true
    assumptions:
      currentRevenue: 100
      revenueGrowthRate: 0.05
      ebitdaMargin: 0.25
      taxRate: 0.25
      capexPercent: 0.03
      workingCapitalPercent: 0.02
      terminalGrowthRate: 0.02
      discountRate: 0.10
      projectionYears: 5
`

func TestLoadConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		configPath string
		wantError  bool
	}{
		{
			name:       "Non-existent config file",
			configPath: "nonexistent.yaml",
			wantError:  true,
		},
		{
			name:       "Test fixture",
			configPath: testConfigPath,
			wantError:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfiguration(tt.configPath)
			if tt.wantError {
				if err == nil {
					t.Errorf("LoadConfiguration() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("LoadConfiguration() error = %v", err)
				return
			}
			if config == nil {
				t.Errorf("LoadConfiguration() returned nil config")
			}
		})
	}
}

func TestLoadConfigurationStructure(t *testing.T) {
	config, err := LoadConfiguration(testConfigPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if config.Logging.Level != "warn" {
		t.Errorf("Expected logging level warn, got %q", config.Logging.Level)
	}
	if len(config.DCF) != 2 || len(config.Extended) != 1 || len(config.LBO) != 1 {
		t.Fatalf("unexpected scenario counts dcf=%d extended=%d lbo=%d",
			len(config.DCF), len(config.Extended), len(config.LBO))
	}

	a := config.DCF[0].Assumptions
	if config.DCF[0].Name != "Scenario A" || !config.DCF[0].Active {
		t.Errorf("unexpected first dcf scenario %q active=%v", config.DCF[0].Name, config.DCF[0].Active)
	}
	if a.CurrentRevenue != 100 || a.DiscountRate != 0.10 || a.ProjectionYears != 5 {
		t.Errorf("dcf assumptions decoded incorrectly: %+v", a)
	}
	if config.DCF[1].Active {
		t.Error("Parked scenario should be inactive")
	}

	x := config.Extended[0].Assumptions
	if x.CurrentRevenue != 100 || x.TaxRate != 0.25 {
		t.Errorf("embedded assumptions not decoded: %+v", x.Assumptions)
	}
	if x.CAPMMode != valuation.DiscountRateCAPM {
		t.Errorf("CAPMMode = %q, expected %q", x.CAPMMode, valuation.DiscountRateCAPM)
	}
	if x.TerminalMethod != valuation.TerminalGordon {
		t.Errorf("TerminalMethod = %q, expected %q", x.TerminalMethod, valuation.TerminalGordon)
	}
	// growthYears is omitted in the fixture and defaults to projectionYears.
	if x.SharesOutstanding != 10 || x.NetDebt != 20 || x.GrowthYears != 5 {
		t.Errorf("extended fields decoded incorrectly: %+v", x)
	}

	b := config.LBO[0].Assumptions
	if b.PurchasePrice != 800 || b.ExitYear != 5 || b.ManagementFees != 0.01 {
		t.Errorf("lbo assumptions decoded incorrectly: %+v", b)
	}

	if err := config.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadConfigurationNormalizesSensitivity(t *testing.T) {
	config, err := LoadConfiguration(testConfigPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	directives := config.Extended[0].Sensitivity
	if len(directives) != 2 {
		t.Fatalf("expected 2 sensitivity directives, got %d", len(directives))
	}

	first := directives[0]
	if first.Rows.Driver != string(valuation.DriverWACC) || first.Cols.Driver != string(valuation.DriverTerminalGrowth) {
		t.Errorf("drivers not canonical: %q / %q", first.Rows.Driver, first.Cols.Driver)
	}
	if first.Metric != string(valuation.MetricPerShare) {
		t.Errorf("default metric = %q", first.Metric)
	}

	second := directives[1]
	if second.Metric != string(valuation.MetricEnterpriseValue) {
		t.Errorf("metric alias not canonical: %q", second.Metric)
	}
	if second.Title == "" {
		t.Error("default title not applied")
	}
	if second.Workers != 2 {
		t.Errorf("workers = %d", second.Workers)
	}

	req, err := second.Request()
	if err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	if len(req.Rows.Values) != 3 || len(req.Cols.Values) != 3 {
		t.Errorf("expected a 3x3 request, got %dx%d", len(req.Rows.Values), len(req.Cols.Values))
	}
}

func TestLoadConfigurationEnvOverride(t *testing.T) {
	path := writeConfig(t, minimalConfig)
	t.Setenv("VALUATION_OUTPUT_FORMAT", "json")

	config, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if config.Output.Format != "json" {
		t.Errorf("Output.Format = %q, expected env override json", config.Output.Format)
	}
}

func TestLoadConfigurationDotEnv(t *testing.T) {
	path := writeConfig(t, minimalConfig)
	envPath := filepath.Join(filepath.Dir(path), ".env")
	if err := os.WriteFile(envPath, []byte("VALUATION_LOGGING_LEVEL=debug\n"), 0o600); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	// Register cleanup of the variable godotenv sets.
	t.Setenv("VALUATION_LOGGING_LEVEL", "")
	if err := os.Unsetenv("VALUATION_LOGGING_LEVEL"); err != nil {
		t.Fatalf("Unsetenv() error = %v", err)
	}

	config, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, expected debug from .env", config.Logging.Level)
	}
}

func TestLoadConfigurationDefaults(t *testing.T) {
	path := writeConfig(t, minimalConfig)

	config, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if config.Output.Format != "pretty" {
		t.Errorf("default output format = %q", config.Output.Format)
	}
	if !config.HasActiveScenarios() {
		t.Error("expected an active scenario")
	}
}

func TestLoadConfigurationRejectsUnknownModes(t *testing.T) {
	path := writeConfig(t, `
extended:
  - name: Bad
    active: true
    assumptions:
      projectionYears: 3
      capmMode: guess
`)
	if _, err := LoadConfiguration(path); err == nil {
		t.Fatal("expected an error for an unknown capmMode")
	}
}

func TestConfigurationValidate(t *testing.T) {
	base, err := LoadConfiguration(testConfigPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(c *Configuration)
		wantErr string
	}{
		{
			name:    "bad output format",
			mutate:  func(c *Configuration) { c.Output.Format = "xml" },
			wantErr: "output format",
		},
		{
			name:    "missing name",
			mutate:  func(c *Configuration) { c.LBO[0].Name = " " },
			wantErr: "requires a name",
		},
		{
			name:    "duplicate name across kinds",
			mutate:  func(c *Configuration) { c.LBO[0].Name = "Scenario A" },
			wantErr: "used by both",
		},
		{
			name:    "invalid dcf assumptions",
			mutate:  func(c *Configuration) { c.DCF[0].Assumptions.ProjectionYears = 0 },
			wantErr: "projectionYears",
		},
		{
			name:    "invalid lbo assumptions",
			mutate:  func(c *Configuration) { c.LBO[0].Assumptions.ExitYear = 0 },
			wantErr: "exitYear",
		},
		{
			name:    "invalid sensitivity directive",
			mutate:  func(c *Configuration) { c.Extended[0].Sensitivity[0].Cols.Driver = "wacc" },
			wantErr: "different drivers",
		},
		{
			name:    "exit multiple axis under gordon",
			mutate:  func(c *Configuration) { c.Extended[0].Sensitivity[1].Cols.Driver = "exit_multiple" },
			wantErr: "needs terminalMethod",
		},
		{
			name: "terminal growth axis under exit multiple",
			mutate: func(c *Configuration) {
				c.Extended[0].Assumptions.TerminalMethod = valuation.TerminalExitMultiple
			},
			wantErr: "covers the horizon",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := cloneConfiguration(t, base)
			tt.mutate(conf)
			err := conf.Validate()
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateConfigurationWarnings(t *testing.T) {
	config, err := LoadConfiguration(testConfigPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if warnings := config.ValidateConfiguration(); len(warnings) != 0 {
		t.Errorf("expected no warnings for the fixture, got %v", warnings)
	}

	config.DCF[0].Assumptions.RevenueGrowthRate = 0.75
	config.DCF[0].Assumptions.DiscountRate = 0.025
	warnings := config.ValidateConfiguration()
	if len(warnings) != 2 {
		t.Fatalf("expected growth and spread warnings, got %v", warnings)
	}
	if !strings.Contains(warnings[0], "revenueGrowthRate") {
		t.Errorf("first warning %q should name revenueGrowthRate", warnings[0])
	}
	if !strings.Contains(warnings[1], "terminal value will dominate") {
		t.Errorf("second warning %q should flag the thin spread", warnings[1])
	}
}

func TestExtendedScenarioNormalizeDefaults(t *testing.T) {
	tests := []struct {
		name            string
		assumptions     valuation.ExtendedAssumptions
		wantGrowthYears int
		wantTG          float64
	}{
		{
			name:            "omitted growth years and tg",
			assumptions:     valuation.ExtendedAssumptions{Assumptions: valuation.Assumptions{ProjectionYears: 7, TerminalGrowthRate: 0.03}},
			wantGrowthYears: 7,
			wantTG:          0.03,
		},
		{
			name:            "explicit values kept",
			assumptions:     valuation.ExtendedAssumptions{Assumptions: valuation.Assumptions{ProjectionYears: 7, TerminalGrowthRate: 0.03}, GrowthYears: 3, TG: 0.02},
			wantGrowthYears: 3,
			wantTG:          0.02,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ExtendedScenario{Name: "x", Assumptions: tt.assumptions}
			if err := s.Normalize(); err != nil {
				t.Fatalf("Normalize() error = %v", err)
			}
			if s.Assumptions.GrowthYears != tt.wantGrowthYears {
				t.Errorf("GrowthYears = %d, expected %d", s.Assumptions.GrowthYears, tt.wantGrowthYears)
			}
			if s.Assumptions.TG != tt.wantTG {
				t.Errorf("TG = %v, expected %v", s.Assumptions.TG, tt.wantTG)
			}
		})
	}
}

func TestRevenueGrowthAxisWithoutGrowthYears(t *testing.T) {
	config, err := LoadConfiguration(testConfigPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	config.Extended[0].Assumptions.GrowthYears = 0
	err = config.Validate()
	if err == nil || !strings.Contains(err.Error(), "growthYears 0") {
		t.Errorf("Validate() error = %v, expected the revenue_growth axis to be rejected", err)
	}
}

func TestValidateConfigurationOverrideWarnings(t *testing.T) {
	config, err := LoadConfiguration(testConfigPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	x := &config.Extended[0].Assumptions
	x.TerminalGrowthRate = 0.03
	x.DiscountRate = 0.10
	warnings := config.ValidateConfiguration()
	if len(warnings) != 2 {
		t.Fatalf("expected terminalGrowthRate and discountRate warnings, got %v", warnings)
	}
	if !strings.Contains(warnings[0], "terminalGrowthRate of 3.00% is ignored, tg of 2.00%") {
		t.Errorf("first warning %q should name terminalGrowthRate", warnings[0])
	}
	if !strings.Contains(warnings[1], "discountRate of 10.00% is ignored, wacc of 8.00%") {
		t.Errorf("second warning %q should name discountRate", warnings[1])
	}

	// Matching values are not reported.
	x.TerminalGrowthRate = x.TG
	x.DiscountRate = 0
	if warnings := config.ValidateConfiguration(); len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
}

func TestExportYAMLRoundTrip(t *testing.T) {
	config, err := LoadConfiguration(testConfigPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	out, err := config.ExportYAML()
	if err != nil {
		t.Fatalf("ExportYAML() error = %v", err)
	}
	reloaded, err := LoadConfiguration(writeConfig(t, string(out)))
	if err != nil {
		t.Fatalf("reloading exported config: %v\n%s", err, out)
	}

	if reloaded.Extended[0].Assumptions != config.Extended[0].Assumptions {
		t.Errorf("extended assumptions changed on export:\n%+v\n%+v",
			reloaded.Extended[0].Assumptions, config.Extended[0].Assumptions)
	}
	if reloaded.LBO[0].Assumptions != config.LBO[0].Assumptions {
		t.Errorf("lbo assumptions changed on export")
	}
	if len(reloaded.Extended[0].Sensitivity) != len(config.Extended[0].Sensitivity) {
		t.Errorf("sensitivity directives lost on export")
	}
}

func cloneConfiguration(t *testing.T, c *Configuration) *Configuration {
	t.Helper()
	out, err := c.ExportYAML()
	if err != nil {
		t.Fatalf("ExportYAML() error = %v", err)
	}
	clone, err := LoadConfiguration(writeConfig(t, string(out)))
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	return clone
}
