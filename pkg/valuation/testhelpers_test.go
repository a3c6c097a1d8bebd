package valuation

import "math"

func scenarioA() Assumptions {
	return Assumptions{
		CurrentRevenue:        100,
		RevenueGrowthRate:     0.05,
		EBITDAMargin:          0.25,
		TaxRate:               0.25,
		CapexPercent:          0.03,
		WorkingCapitalPercent: 0.02,
		TerminalGrowthRate:    0.02,
		DiscountRate:          0.10,
		ProjectionYears:       5,
	}
}

func scenarioB() LBOAssumptions {
	return LBOAssumptions{
		PurchasePrice:      800,
		EquityContribution: 0.3,
		DebtAmount:         560,
		InterestRate:       0.08,
		ExitMultiple:       10,
		ExitYear:           5,
		EBITDAGrowth:       0.06,
		TransactionFees:    0.02,
		ManagementFees:     0.01,
	}
}

// extendedBase yields a CAPM WACC of 8% and a Gordon terminal value.
func extendedBase() ExtendedAssumptions {
	a := scenarioA()
	return ExtendedAssumptions{
		Assumptions:       a,
		RF:                0.04,
		Beta:              1.1,
		ERP:               0.05,
		WD:                0.3,
		KD:                0.06,
		WE:                0.7,
		CAPMMode:          DiscountRateCAPM,
		TerminalMethod:    TerminalGordon,
		ExitEVMultiple:    10,
		TG:                0.02,
		GrowthYears:       a.ProjectionYears,
		NetDebt:           20,
		SharesOutstanding: 10,
	}
}

func withinRelative(got, want, tol float64) bool {
	if want == 0 {
		return math.Abs(got) <= tol
	}
	return math.Abs(got-want) <= tol*math.Abs(want)
}
