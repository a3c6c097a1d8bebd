package config

import (
	"fmt"

	"github.com/iwvelando/corporate-valuation/pkg/valuation"
	"github.com/iwvelando/corporate-valuation/pkg/validation"
)

// Scenario kinds, used in logs and warnings.
const (
	KindDCF      = "dcf"
	KindExtended = "extended"
	KindLBO      = "lbo"
)

// DCFScenario is a named set of simple DCF assumptions.
type DCFScenario struct {
	Name        string                `yaml:"name" mapstructure:"name"`
	Active      bool                  `yaml:"active" mapstructure:"active"`
	Assumptions valuation.Assumptions `yaml:"assumptions" mapstructure:"assumptions"`
}

// ExtendedScenario is a named extended valuation with optional sensitivity
// grids around it.
type ExtendedScenario struct {
	Name        string                        `yaml:"name" mapstructure:"name"`
	Active      bool                          `yaml:"active" mapstructure:"active"`
	Assumptions valuation.ExtendedAssumptions `yaml:"assumptions" mapstructure:"assumptions"`
	Sensitivity []SensitivityConfig           `yaml:"sensitivity,omitempty" mapstructure:"sensitivity"`
}

// LBOScenario is a named buyout.
type LBOScenario struct {
	Name        string                   `yaml:"name" mapstructure:"name"`
	Active      bool                     `yaml:"active" mapstructure:"active"`
	Assumptions valuation.LBOAssumptions `yaml:"assumptions" mapstructure:"assumptions"`
}

// Normalize fills the extended policy defaults (CAPM cost of equity, Gordon
// terminal value) and canonicalizes the sensitivity directives. An omitted
// growthYears ramps over the whole horizon and an omitted tg falls back to
// terminalGrowthRate.
func (s *ExtendedScenario) Normalize() error {
	x := &s.Assumptions
	if x.GrowthYears == 0 {
		x.GrowthYears = x.ProjectionYears
	}
	if x.TG == 0 {
		x.TG = x.TerminalGrowthRate
	}
	if x.CAPMMode == "" {
		x.CAPMMode = valuation.DiscountRateCAPM
	} else {
		mode, err := valuation.ParseDiscountRateSource(string(x.CAPMMode))
		if err != nil {
			return err
		}
		x.CAPMMode = mode
	}
	if x.TerminalMethod == "" {
		x.TerminalMethod = valuation.TerminalGordon
	} else {
		method, err := valuation.ParseTerminalMethod(string(x.TerminalMethod))
		if err != nil {
			return err
		}
		x.TerminalMethod = method
	}
	for i := range s.Sensitivity {
		s.Sensitivity[i].Normalize()
	}
	return nil
}

// Validate checks the assumptions and every sensitivity directive,
// including that each axis can move the result under these assumptions.
func (s *ExtendedScenario) Validate() error {
	if err := s.Assumptions.Validate(); err != nil {
		return err
	}
	for i := range s.Sensitivity {
		req, err := s.Sensitivity[i].Request()
		if err != nil {
			return fmt.Errorf("sensitivity %d: %w", i, err)
		}
		for _, d := range []valuation.Driver{req.Rows.Driver, req.Cols.Driver} {
			if err := d.Check(s.Assumptions); err != nil {
				return fmt.Errorf("sensitivity %d: %w", i, err)
			}
		}
	}
	return nil
}

func operatingRanges(a valuation.Assumptions) []validation.RangeCheck {
	return []validation.RangeCheck{
		{Field: "revenueGrowthRate", Value: a.RevenueGrowthRate, Min: -0.5, Max: 0.5},
		{Field: "ebitdaMargin", Value: a.EBITDAMargin, Min: 0, Max: 1},
		{Field: "taxRate", Value: a.TaxRate, Min: 0, Max: 0.6},
		{Field: "capexPercent", Value: a.CapexPercent, Min: 0, Max: 0.5},
		{Field: "workingCapitalPercent", Value: a.WorkingCapitalPercent, Min: -0.5, Max: 0.5},
	}
}

func (s DCFScenario) validationView() validation.ScenarioConfig {
	a := s.Assumptions
	ranges := append(operatingRanges(a),
		validation.RangeCheck{Field: "discountRate", Value: a.DiscountRate, Min: 0, Max: 0.3})
	return validation.ScenarioConfig{
		Kind:   KindDCF,
		Name:   s.Name,
		Active: s.Active,
		Ranges: ranges,
		Spread: &validation.SpreadCheck{DiscountRate: a.DiscountRate, TerminalGrowth: a.TerminalGrowthRate},
	}
}

func (s ExtendedScenario) validationView() validation.ScenarioConfig {
	x := s.Assumptions
	view := validation.ScenarioConfig{
		Kind:   KindExtended,
		Name:   s.Name,
		Active: s.Active,
		Ranges: operatingRanges(x.Assumptions),
	}
	if x.HasMarginPath() {
		view.Ranges = append(view.Ranges,
			validation.RangeCheck{Field: "ebitMargin0", Value: x.EBITMargin0, Min: 0, Max: 1},
			validation.RangeCheck{Field: "ebitMarginT", Value: x.EBITMarginT, Min: 0, Max: 1})
	}
	if x.TerminalGrowthRate != 0 {
		view.Overrides = append(view.Overrides, validation.OverrideCheck{
			Field: "terminalGrowthRate", Value: x.TerminalGrowthRate,
			Effective: "tg", EffectiveValue: x.TG,
		})
	}
	if _, wacc, err := x.DiscountRates(); err == nil {
		view.Ranges = append(view.Ranges,
			validation.RangeCheck{Field: "wacc", Value: wacc, Min: 0, Max: 0.3})
		if x.DiscountRate != 0 {
			view.Overrides = append(view.Overrides, validation.OverrideCheck{
				Field: "discountRate", Value: x.DiscountRate,
				Effective: "wacc", EffectiveValue: wacc,
			})
		}
		if x.TerminalMethod == valuation.TerminalGordon {
			view.Spread = &validation.SpreadCheck{DiscountRate: wacc, TerminalGrowth: x.TG}
		}
	}
	return view
}

func (s LBOScenario) validationView() validation.ScenarioConfig {
	a := s.Assumptions
	return validation.ScenarioConfig{
		Kind:   KindLBO,
		Name:   s.Name,
		Active: s.Active,
		Ranges: []validation.RangeCheck{
			{Field: "equityContribution", Value: a.EquityContribution, Min: 0.2, Max: 1},
			{Field: "interestRate", Value: a.InterestRate, Min: 0, Max: 0.25},
			{Field: "ebitdaGrowth", Value: a.EBITDAGrowth, Min: -0.5, Max: 0.5},
		},
	}
}
