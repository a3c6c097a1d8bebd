package valuation

import (
	"fmt"
	"math"
)

// ValuationResult holds the outputs of a DCF valuation. Assumptions echoes
// the caller's input unchanged; DiscountRate is the rate actually applied.
type ValuationResult struct {
	EnterpriseValue      float64     `json:"enterpriseValue"`
	PresentValueFCF      float64     `json:"presentValueFCF"`
	PresentValueTerminal float64     `json:"presentValueTerminal"`
	TerminalValue        float64     `json:"terminalValue"`
	DiscountRate         float64     `json:"discountRate"`
	FreeCashFlows        []float64   `json:"freeCashFlows"`
	Assumptions          Assumptions `json:"assumptions"`
}

// ExtendedResult adds the discount rate build-up and the equity bridge.
type ExtendedResult struct {
	ValuationResult
	CostOfEquity   float64             `json:"costOfEquity"`
	TerminalMethod TerminalMethod      `json:"terminalMethod"`
	EquityValue    float64             `json:"equityValue"`
	PerShare       float64             `json:"perShare"`
	Extended       ExtendedAssumptions `json:"extended"`
}

// GordonTerminalValue capitalizes the year after lastFCF at growth g:
// TV = lastFCF*(1+g) / (r-g). It refuses r <= g.
func GordonTerminalValue(lastFCF, discountRate, growth float64) (float64, error) {
	if discountRate <= growth {
		return 0, fmt.Errorf("%w: discount rate %v must exceed terminal growth %v",
			ErrDivergentTerminalValue, discountRate, growth)
	}
	return lastFCF * (1 + growth) / (discountRate - growth), nil
}

// ValueEnterprise discounts the projected free cash flows and a Gordon
// growth terminal value at the assumptions' discount rate.
func ValueEnterprise(a Assumptions, rows []ProjectedRow) (ValuationResult, error) {
	if err := a.Validate(); err != nil {
		return ValuationResult{}, err
	}
	if len(rows) != a.ProjectionYears {
		return ValuationResult{}, fmt.Errorf("%w: got %d projected rows, projectionYears is %d",
			ErrInvalidAssumption, len(rows), a.ProjectionYears)
	}

	last := rows[len(rows)-1]
	tv, err := GordonTerminalValue(last.FCF, a.DiscountRate, a.TerminalGrowthRate)
	if err != nil {
		return ValuationResult{}, err
	}
	return discount(a, rows, tv)
}

// discount sums the present values of rows and tv at a.DiscountRate.
func discount(a Assumptions, rows []ProjectedRow, tv float64) (ValuationResult, error) {
	r := a.DiscountRate
	fcfs := make([]float64, len(rows))
	pvFCF := 0.0
	for i, row := range rows {
		fcfs[i] = row.FCF
		pvFCF += row.FCF / math.Pow(1+r, float64(i+1))
	}
	pvTerminal := tv / math.Pow(1+r, float64(len(rows)))

	result := ValuationResult{
		EnterpriseValue:      pvFCF + pvTerminal,
		PresentValueFCF:      pvFCF,
		PresentValueTerminal: pvTerminal,
		TerminalValue:        tv,
		DiscountRate:         r,
		FreeCashFlows:        fcfs,
		Assumptions:          a,
	}
	if err := checkFinite(
		namedValue{"terminalValue", result.TerminalValue},
		namedValue{"presentValueFCF", result.PresentValueFCF},
		namedValue{"presentValueTerminal", result.PresentValueTerminal},
		namedValue{"enterpriseValue", result.EnterpriseValue},
	); err != nil {
		return ValuationResult{}, err
	}
	return result, nil
}

// ValueExtended values rows with the discount rate and terminal value
// policies selected on x, then bridges enterprise value to equity and a
// per-share figure.
func ValueExtended(x ExtendedAssumptions, rows []ProjectedRow) (ExtendedResult, error) {
	if err := x.Validate(); err != nil {
		return ExtendedResult{}, err
	}
	if len(rows) != x.ProjectionYears {
		return ExtendedResult{}, fmt.Errorf("%w: got %d projected rows, projectionYears is %d",
			ErrInvalidAssumption, len(rows), x.ProjectionYears)
	}

	ke, wacc, err := x.DiscountRates()
	if err != nil {
		return ExtendedResult{}, err
	}

	// The simple path does the discounting once the rate and growth are set.
	a := x.Assumptions
	a.DiscountRate = wacc
	a.TerminalGrowthRate = x.TG

	last := rows[len(rows)-1]
	var tv float64
	switch x.TerminalMethod {
	case TerminalGordon:
		tv, err = GordonTerminalValue(last.FCF, wacc, x.TG)
		if err != nil {
			return ExtendedResult{}, err
		}
	case TerminalExitMultiple:
		tv = last.EBITDA * x.ExitEVMultiple
	default:
		return ExtendedResult{}, fmt.Errorf("%w: unknown terminalMethod %q", ErrInvalidAssumption, x.TerminalMethod)
	}

	base, err := discount(a, rows, tv)
	if err != nil {
		return ExtendedResult{}, err
	}
	base.Assumptions = x.Assumptions

	if x.SharesOutstanding == 0 {
		return ExtendedResult{}, fmt.Errorf("%w: sharesOutstanding is zero", ErrDivisionByZero)
	}
	equity := base.EnterpriseValue - x.NetDebt
	result := ExtendedResult{
		ValuationResult: base,
		CostOfEquity:    ke,
		TerminalMethod:  x.TerminalMethod,
		EquityValue:     equity,
		PerShare:        equity / x.SharesOutstanding,
		Extended:        x,
	}
	if err := checkFinite(namedValue{"perShare", result.PerShare}); err != nil {
		return ExtendedResult{}, err
	}
	return result, nil
}
