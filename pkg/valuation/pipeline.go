package valuation

// RunDCF chains growth vector, projection and valuation for the simple
// path. Growth is constant across the whole horizon.
func RunDCF(a Assumptions) (ValuationResult, []ProjectedRow, error) {
	if err := a.Validate(); err != nil {
		return ValuationResult{}, nil, err
	}
	growth, err := BuildGrowthVector(a.RevenueGrowthRate, a.ProjectionYears, a.ProjectionYears, a.TerminalGrowthRate)
	if err != nil {
		return ValuationResult{}, nil, err
	}
	rows, err := Project(a, growth)
	if err != nil {
		return ValuationResult{}, nil, err
	}
	result, err := ValueEnterprise(a, rows)
	if err != nil {
		return ValuationResult{}, nil, err
	}
	return result, rows, nil
}

// RunExtended chains the pipeline for the extended path: revenue grows at
// RevenueGrowthRate for GrowthYears and at TG afterwards, margins follow
// the EBIT margin path when one is set.
func RunExtended(x ExtendedAssumptions) (ExtendedResult, []ProjectedRow, error) {
	if err := x.Validate(); err != nil {
		return ExtendedResult{}, nil, err
	}
	growth, err := BuildGrowthVector(x.RevenueGrowthRate, x.ProjectionYears, x.GrowthYears, x.TG)
	if err != nil {
		return ExtendedResult{}, nil, err
	}
	rows, err := ProjectWithMargins(x.Assumptions, growth, x.marginPath())
	if err != nil {
		return ExtendedResult{}, nil, err
	}
	result, err := ValueExtended(x, rows)
	if err != nil {
		return ExtendedResult{}, nil, err
	}
	return result, rows, nil
}
