// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"
	"math"

	"github.com/iwvelando/corporate-valuation/pkg/constants"
)

// MinTerminalSpread is the discount rate minus terminal growth below which
// the terminal value dominates the valuation and a warning is raised.
const MinTerminalSpread = 0.01

const overrideTolerance = 1e-9

// RangeCheck is a soft bound on one scenario input.
type RangeCheck struct {
	Field string
	Value float64
	Min   float64
	Max   float64
}

// SpreadCheck compares a discount rate with a terminal growth rate.
type SpreadCheck struct {
	DiscountRate   float64
	TerminalGrowth float64
}

// OverrideCheck pairs an input with the derived value that replaces it.
type OverrideCheck struct {
	Field          string
	Value          float64
	Effective      string
	EffectiveValue float64
}

// ScenarioConfig is the validator's view of one configured scenario.
type ScenarioConfig struct {
	Kind      string
	Name      string
	Active    bool
	Ranges    []RangeCheck
	Spread    *SpreadCheck
	Overrides []OverrideCheck
}

// ConfigValidator collects soft warnings for a whole configuration.
type ConfigValidator struct {
	Scenarios []ScenarioConfig
}

// ValidateRange warns when a value lies outside its plausible band.
func ValidateRange(label string, check RangeCheck) string {
	if check.Value < check.Min || check.Value > check.Max {
		return fmt.Sprintf("%s %s of %.2f%% is outside the usual range [%.2f%%, %.2f%%]",
			label, check.Field,
			check.Value*constants.PercentageMultiplier,
			check.Min*constants.PercentageMultiplier,
			check.Max*constants.PercentageMultiplier)
	}
	return ""
}

// ValidateTerminalSpread warns when the discount rate barely exceeds the
// terminal growth rate. A non-positive spread is left to the valuator, which
// rejects it.
func ValidateTerminalSpread(label string, check SpreadCheck) string {
	spread := check.DiscountRate - check.TerminalGrowth
	if spread > 0 && spread < MinTerminalSpread {
		return fmt.Sprintf("%s discount rate %.2f%% is within %.2f%% of terminal growth %.2f%% - terminal value will dominate",
			label,
			check.DiscountRate*constants.PercentageMultiplier,
			MinTerminalSpread*constants.PercentageMultiplier,
			check.TerminalGrowth*constants.PercentageMultiplier)
	}
	return ""
}

// ValidateOverride warns when a configured input differs from the value
// actually used in its place.
func ValidateOverride(label string, check OverrideCheck) string {
	if math.Abs(check.Value-check.EffectiveValue) > overrideTolerance {
		return fmt.Sprintf("%s %s of %.2f%% is ignored, %s of %.2f%% is used instead",
			label, check.Field,
			check.Value*constants.PercentageMultiplier,
			check.Effective,
			check.EffectiveValue*constants.PercentageMultiplier)
	}
	return ""
}

// ValidateAll validates every active scenario and returns warnings
func (cv *ConfigValidator) ValidateAll() []string {
	var warnings []string
	for _, scenario := range cv.Scenarios {
		if !scenario.Active {
			continue
		}
		label := fmt.Sprintf("%s scenario '%s'", scenario.Kind, scenario.Name)
		for _, check := range scenario.Ranges {
			if warning := ValidateRange(label, check); warning != "" {
				warnings = append(warnings, warning)
			}
		}
		if scenario.Spread != nil {
			if warning := ValidateTerminalSpread(label, *scenario.Spread); warning != "" {
				warnings = append(warnings, warning)
			}
		}
		for _, check := range scenario.Overrides {
			if warning := ValidateOverride(label, check); warning != "" {
				warnings = append(warnings, warning)
			}
		}
	}
	return warnings
}
