package valuation

import (
	"fmt"
	"strings"
)

// Assumptions holds the inputs of the simple DCF path. The tags match the
// persisted scenario shape so that a stored snapshot decodes unchanged.
type Assumptions struct {
	CurrentRevenue        float64 `json:"currentRevenue" yaml:"currentRevenue" mapstructure:"currentRevenue"`
	RevenueGrowthRate     float64 `json:"revenueGrowthRate" yaml:"revenueGrowthRate" mapstructure:"revenueGrowthRate"`
	EBITDAMargin          float64 `json:"ebitdaMargin" yaml:"ebitdaMargin" mapstructure:"ebitdaMargin"`
	TaxRate               float64 `json:"taxRate" yaml:"taxRate" mapstructure:"taxRate"`
	CapexPercent          float64 `json:"capexPercent" yaml:"capexPercent" mapstructure:"capexPercent"`
	WorkingCapitalPercent float64 `json:"workingCapitalPercent" yaml:"workingCapitalPercent" mapstructure:"workingCapitalPercent"`
	TerminalGrowthRate    float64 `json:"terminalGrowthRate" yaml:"terminalGrowthRate" mapstructure:"terminalGrowthRate"`
	DiscountRate          float64 `json:"discountRate" yaml:"discountRate" mapstructure:"discountRate"`
	ProjectionYears       int     `json:"projectionYears" yaml:"projectionYears" mapstructure:"projectionYears"`
}

// Validate checks the structural invariants of the assumptions. The
// discount rate vs. terminal growth relationship is left to the valuator,
// which reports it as ErrDivergentTerminalValue.
func (a Assumptions) Validate() error {
	if a.ProjectionYears < 1 {
		return fmt.Errorf("%w: projectionYears must be at least 1, got %d", ErrInvalidAssumption, a.ProjectionYears)
	}
	if err := checkFinite(
		namedValue{"currentRevenue", a.CurrentRevenue},
		namedValue{"revenueGrowthRate", a.RevenueGrowthRate},
		namedValue{"ebitdaMargin", a.EBITDAMargin},
		namedValue{"taxRate", a.TaxRate},
		namedValue{"capexPercent", a.CapexPercent},
		namedValue{"workingCapitalPercent", a.WorkingCapitalPercent},
		namedValue{"terminalGrowthRate", a.TerminalGrowthRate},
		namedValue{"discountRate", a.DiscountRate},
	); err != nil {
		return err
	}
	if a.DiscountRate <= -1 {
		return fmt.Errorf("%w: discountRate must be greater than -1, got %v", ErrInvalidAssumption, a.DiscountRate)
	}
	return nil
}

// DiscountRateSource selects how the extended path sources its cost of
// equity.
type DiscountRateSource string

const (
	// DiscountRateCAPM derives the cost of equity as rf + beta*erp.
	DiscountRateCAPM DiscountRateSource = "capm"
	// DiscountRateManual uses KeManual as the cost of equity.
	DiscountRateManual DiscountRateSource = "manual"
)

// TerminalMethod selects how the extended path computes terminal value.
type TerminalMethod string

const (
	// TerminalGordon capitalizes the final-year FCF with the Gordon growth
	// formula.
	TerminalGordon TerminalMethod = "gordon"
	// TerminalExitMultiple applies ExitEVMultiple to final-year EBITDA.
	TerminalExitMultiple TerminalMethod = "exit_multiple"
)

// ParseDiscountRateSource maps a user-facing mode name onto a
// DiscountRateSource.
func ParseDiscountRateSource(value string) (DiscountRateSource, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "capm":
		return DiscountRateCAPM, nil
	case "manual", "manualke", "manual_ke", "ke":
		return DiscountRateManual, nil
	default:
		return "", fmt.Errorf("%w: unknown discount rate source %q", ErrInvalidAssumption, value)
	}
}

// ParseTerminalMethod maps a user-facing method name onto a TerminalMethod.
func ParseTerminalMethod(value string) (TerminalMethod, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "gordon", "perpetuity", "growth":
		return TerminalGordon, nil
	case "exit_multiple", "exitmultiple", "exit-multiple", "multiple":
		return TerminalExitMultiple, nil
	default:
		return "", fmt.Errorf("%w: unknown terminal method %q", ErrInvalidAssumption, value)
	}
}

// ExtendedAssumptions adds the WACC decomposition, the terminal value policy
// and the equity bridge used by sensitivity runs. It contains no reference
// types, so a plain value copy is an independent clone.
type ExtendedAssumptions struct {
	Assumptions `yaml:",inline" mapstructure:",squash"`

	RF       float64 `json:"rf" yaml:"rf" mapstructure:"rf"`
	Beta     float64 `json:"beta" yaml:"beta" mapstructure:"beta"`
	ERP      float64 `json:"erp" yaml:"erp" mapstructure:"erp"`
	WD       float64 `json:"wd" yaml:"wd" mapstructure:"wd"`
	KD       float64 `json:"kd" yaml:"kd" mapstructure:"kd"`
	WE       float64 `json:"we" yaml:"we" mapstructure:"we"`
	KeManual float64 `json:"keManual" yaml:"keManual" mapstructure:"keManual"`

	CAPMMode       DiscountRateSource `json:"capmMode" yaml:"capmMode" mapstructure:"capmMode"`
	TerminalMethod TerminalMethod     `json:"terminalMethod" yaml:"terminalMethod" mapstructure:"terminalMethod"`
	ExitEVMultiple float64            `json:"exitEVMultiple" yaml:"exitEVMultiple" mapstructure:"exitEVMultiple"`
	TG             float64            `json:"tg" yaml:"tg" mapstructure:"tg"`
	GrowthYears    int                `json:"growthYears" yaml:"growthYears" mapstructure:"growthYears"`
	EBITMargin0    float64            `json:"ebitMargin0" yaml:"ebitMargin0" mapstructure:"ebitMargin0"`
	EBITMarginT    float64            `json:"ebitMarginT" yaml:"ebitMarginT" mapstructure:"ebitMarginT"`

	NetDebt           float64 `json:"netDebt" yaml:"netDebt" mapstructure:"netDebt"`
	SharesOutstanding float64 `json:"sharesOutstanding" yaml:"sharesOutstanding" mapstructure:"sharesOutstanding"`
}

// Clone returns an independent copy of x.
func (x ExtendedAssumptions) Clone() ExtendedAssumptions {
	return x
}

// HasMarginPath reports whether the EBIT margin interpolation is in use.
// With both endpoints at zero the constant EBITDAMargin applies instead.
func (x ExtendedAssumptions) HasMarginPath() bool {
	return x.EBITMargin0 != 0 || x.EBITMarginT != 0
}

// Validate checks the extended fields on top of the embedded assumptions.
func (x ExtendedAssumptions) Validate() error {
	if err := x.Assumptions.Validate(); err != nil {
		return err
	}
	if err := checkFinite(
		namedValue{"rf", x.RF},
		namedValue{"beta", x.Beta},
		namedValue{"erp", x.ERP},
		namedValue{"wd", x.WD},
		namedValue{"kd", x.KD},
		namedValue{"we", x.WE},
		namedValue{"keManual", x.KeManual},
		namedValue{"exitEVMultiple", x.ExitEVMultiple},
		namedValue{"tg", x.TG},
		namedValue{"ebitMargin0", x.EBITMargin0},
		namedValue{"ebitMarginT", x.EBITMarginT},
		namedValue{"netDebt", x.NetDebt},
		namedValue{"sharesOutstanding", x.SharesOutstanding},
	); err != nil {
		return err
	}
	switch x.CAPMMode {
	case DiscountRateCAPM, DiscountRateManual:
	default:
		return fmt.Errorf("%w: capmMode must be %q or %q, got %q",
			ErrInvalidAssumption, DiscountRateCAPM, DiscountRateManual, x.CAPMMode)
	}
	switch x.TerminalMethod {
	case TerminalGordon, TerminalExitMultiple:
	default:
		return fmt.Errorf("%w: terminalMethod must be %q or %q, got %q",
			ErrInvalidAssumption, TerminalGordon, TerminalExitMultiple, x.TerminalMethod)
	}
	if x.GrowthYears < 0 {
		return fmt.Errorf("%w: growthYears must not be negative, got %d", ErrInvalidAssumption, x.GrowthYears)
	}
	return nil
}
