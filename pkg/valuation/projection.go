// Package valuation implements the pure valuation core: revenue and free
// cash flow projection, discounted cash flow valuation, leveraged buyout
// returns and two-dimensional sensitivity grids.
//
// Every function operates on plain values, keeps full float64 precision and
// reports undefined results as errors rather than NaN or Inf.
package valuation

import (
	"fmt"

	"github.com/iwvelando/corporate-valuation/pkg/constants"
)

// ebitShareOfEBITDA is the share of EBITDA left after depreciation.
const ebitShareOfEBITDA = 1 - constants.DepreciationShareOfEBITDA

// ProjectedRow is one projected year.
type ProjectedRow struct {
	Year         int     `json:"year"`
	Revenue      float64 `json:"revenue"`
	Growth       float64 `json:"growth"`
	EBITDAMargin float64 `json:"ebitdaMargin"`
	EBITDA       float64 `json:"ebitda"`
	EBITMargin   float64 `json:"ebitMargin"`
	EBIT         float64 `json:"ebit"`
	Taxes        float64 `json:"taxes"`
	NetIncome    float64 `json:"netIncome"`
	Depreciation float64 `json:"depreciation"`
	Capex        float64 `json:"capex"`
	DeltaNWC     float64 `json:"deltaNWC"`
	FCF          float64 `json:"fcf"`
}

// NOPAT is the after-tax operating profit of the year.
func (r ProjectedRow) NOPAT() float64 {
	return r.NetIncome
}

// Reinvestment is capex plus working capital build net of depreciation.
func (r ProjectedRow) Reinvestment() float64 {
	return r.Capex + r.DeltaNWC - r.Depreciation
}

// Project builds one row per growth rate using the constant EBITDA margin.
func Project(a Assumptions, growth []float64) ([]ProjectedRow, error) {
	margins := make([]float64, len(growth))
	for i := range margins {
		margins[i] = a.EBITDAMargin
	}
	return ProjectWithMargins(a, growth, margins)
}

// ProjectWithMargins builds one row per growth rate using a per-year EBITDA
// margin path. growth and margins must both have ProjectionYears entries.
func ProjectWithMargins(a Assumptions, growth, margins []float64) ([]ProjectedRow, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if len(growth) != a.ProjectionYears {
		return nil, fmt.Errorf("%w: growth vector has %d entries, projectionYears is %d",
			ErrInvalidAssumption, len(growth), a.ProjectionYears)
	}
	if len(margins) != len(growth) {
		return nil, fmt.Errorf("%w: margin path has %d entries, growth vector has %d",
			ErrInvalidAssumption, len(margins), len(growth))
	}

	rows := make([]ProjectedRow, 0, len(growth))
	revenue := a.CurrentRevenue
	for i, g := range growth {
		if err := checkFinite(
			namedValue{fmt.Sprintf("growth[%d]", i), g},
			namedValue{fmt.Sprintf("margin[%d]", i), margins[i]},
		); err != nil {
			return nil, err
		}

		revenue = revenue * (1 + g)
		ebitda := revenue * margins[i]
		ebit := ebitda * ebitShareOfEBITDA
		taxes := ebit * a.TaxRate
		netIncome := ebit - taxes
		dep := ebitda * constants.DepreciationShareOfEBITDA
		capex := revenue * a.CapexPercent
		deltaNWC := revenue * a.WorkingCapitalPercent * g

		row := ProjectedRow{
			Year:         i + 1,
			Revenue:      revenue,
			Growth:       g,
			EBITDAMargin: margins[i],
			EBITDA:       ebitda,
			EBITMargin:   margins[i] * ebitShareOfEBITDA,
			EBIT:         ebit,
			Taxes:        taxes,
			NetIncome:    netIncome,
			Depreciation: dep,
			Capex:        capex,
			DeltaNWC:     deltaNWC,
			FCF:          netIncome + dep - capex - deltaNWC,
		}
		if err := checkFinite(
			namedValue{fmt.Sprintf("revenue in year %d", row.Year), row.Revenue},
			namedValue{fmt.Sprintf("fcf in year %d", row.Year), row.FCF},
		); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// marginPath returns the per-year EBITDA margins of the extended path. The
// EBIT margin moves linearly from EBITMargin0 in year 1 to EBITMarginT in the
// final year and is grossed up by the depreciation share.
func (x ExtendedAssumptions) marginPath() []float64 {
	n := x.ProjectionYears
	margins := make([]float64, n)
	if !x.HasMarginPath() {
		for i := range margins {
			margins[i] = x.EBITDAMargin
		}
		return margins
	}
	for i := range margins {
		ebitMargin := x.EBITMarginT
		if n > 1 {
			ebitMargin = x.EBITMargin0 + (x.EBITMarginT-x.EBITMargin0)*float64(i)/float64(n-1)
		}
		margins[i] = ebitMargin / ebitShareOfEBITDA
	}
	return margins
}
