package valuation

import "fmt"

// CostOfEquity applies CAPM: ke = rf + beta*erp.
func CostOfEquity(rf, beta, erp float64) float64 {
	return rf + beta*erp
}

// WeightedCostOfCapital blends the after-tax cost of debt and the cost of
// equity by their capital structure weights.
func WeightedCostOfCapital(wd, kd, we, ke, taxRate float64) float64 {
	return wd*kd*(1-taxRate) + we*ke
}

// ImpliedCostOfEquity solves the WACC formula for the cost of equity that
// yields targetWACC under fixed weights and cost of debt.
func ImpliedCostOfEquity(targetWACC, wd, kd, we, taxRate float64) (float64, error) {
	if we == 0 {
		return 0, fmt.Errorf("%w: equity weight is zero, cannot imply cost of equity for WACC %v", ErrDivisionByZero, targetWACC)
	}
	ke := (targetWACC - wd*kd*(1-taxRate)) / we
	if err := checkFinite(namedValue{"implied cost of equity", ke}); err != nil {
		return 0, err
	}
	return ke, nil
}

// DiscountRates returns the cost of equity selected by CAPMMode and the
// resulting WACC.
func (x ExtendedAssumptions) DiscountRates() (ke, wacc float64, err error) {
	switch x.CAPMMode {
	case DiscountRateCAPM:
		ke = CostOfEquity(x.RF, x.Beta, x.ERP)
	case DiscountRateManual:
		ke = x.KeManual
	default:
		return 0, 0, fmt.Errorf("%w: unknown capmMode %q", ErrInvalidAssumption, x.CAPMMode)
	}
	wacc = WeightedCostOfCapital(x.WD, x.KD, x.WE, ke, x.TaxRate)
	if err := checkFinite(namedValue{"costOfEquity", ke}, namedValue{"wacc", wacc}); err != nil {
		return 0, 0, err
	}
	if wacc <= -1 {
		return 0, 0, fmt.Errorf("%w: wacc must be greater than -1, got %v", ErrInvalidAssumption, wacc)
	}
	return ke, wacc, nil
}
