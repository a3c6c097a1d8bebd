package valuation

import (
	"fmt"
	"math"

	"github.com/iwvelando/corporate-valuation/pkg/constants"
)

// LBOAssumptions parameterize the simplified no-paydown buyout model.
type LBOAssumptions struct {
	PurchasePrice      float64 `json:"purchasePrice" yaml:"purchasePrice" mapstructure:"purchasePrice"`
	EquityContribution float64 `json:"equityContribution" yaml:"equityContribution" mapstructure:"equityContribution"`
	DebtAmount         float64 `json:"debtAmount" yaml:"debtAmount" mapstructure:"debtAmount"`
	InterestRate       float64 `json:"interestRate" yaml:"interestRate" mapstructure:"interestRate"`
	ExitMultiple       float64 `json:"exitMultiple" yaml:"exitMultiple" mapstructure:"exitMultiple"`
	ExitYear           int     `json:"exitYear" yaml:"exitYear" mapstructure:"exitYear"`
	EBITDAGrowth       float64 `json:"ebitdaGrowth" yaml:"ebitdaGrowth" mapstructure:"ebitdaGrowth"`
	TransactionFees    float64 `json:"transactionFees" yaml:"transactionFees" mapstructure:"transactionFees"`
	ManagementFees     float64 `json:"managementFees" yaml:"managementFees" mapstructure:"managementFees"`
}

// LBOResult holds the sponsor's returns at exit.
type LBOResult struct {
	EquityInvestment      float64        `json:"equityInvestment"`
	EntryEBITDA           float64        `json:"entryEBITDA"`
	ExitEBITDA            float64        `json:"exitEBITDA"`
	ExitValue             float64        `json:"exitValue"`
	TotalInterest         float64        `json:"totalInterest"`
	RemainingDebt         float64        `json:"remainingDebt"`
	TransactionFeesAmount float64        `json:"transactionFeesAmount"`
	ManagementFeesAmount  float64        `json:"managementFeesAmount"`
	NetExitValue          float64        `json:"netExitValue"`
	MOIC                  float64        `json:"moic"`
	IRR                   float64        `json:"irr"` // percent
	Assumptions           LBOAssumptions `json:"assumptions"`
}

// Validate checks the buyout invariants. A zero equity contribution passes
// here and is reported by ComputeReturns as ErrDivisionByZero.
func (a LBOAssumptions) Validate() error {
	if a.ExitYear < 1 {
		return fmt.Errorf("%w: exitYear must be at least 1, got %d", ErrInvalidAssumption, a.ExitYear)
	}
	if err := checkFinite(
		namedValue{"purchasePrice", a.PurchasePrice},
		namedValue{"equityContribution", a.EquityContribution},
		namedValue{"debtAmount", a.DebtAmount},
		namedValue{"interestRate", a.InterestRate},
		namedValue{"exitMultiple", a.ExitMultiple},
		namedValue{"ebitdaGrowth", a.EBITDAGrowth},
		namedValue{"transactionFees", a.TransactionFees},
		namedValue{"managementFees", a.ManagementFees},
	); err != nil {
		return err
	}
	if a.EquityContribution < 0 || a.EquityContribution > 1 {
		return fmt.Errorf("%w: equityContribution must be within (0, 1], got %v", ErrInvalidAssumption, a.EquityContribution)
	}
	if a.TransactionFees < 0 || a.TransactionFees > 1 {
		return fmt.Errorf("%w: transactionFees must be within [0, 1], got %v", ErrInvalidAssumption, a.TransactionFees)
	}
	if a.ManagementFees < 0 || a.ManagementFees > 1 {
		return fmt.Errorf("%w: managementFees must be within [0, 1], got %v", ErrInvalidAssumption, a.ManagementFees)
	}
	if a.EBITDAGrowth <= -1 {
		return fmt.Errorf("%w: ebitdaGrowth must be greater than -1, got %v", ErrInvalidAssumption, a.EBITDAGrowth)
	}
	return nil
}

// ComputeReturns runs the buyout from entry to exit. Debt principal never
// amortizes and interest accrues simply over the hold period.
func ComputeReturns(a LBOAssumptions) (LBOResult, error) {
	if err := a.Validate(); err != nil {
		return LBOResult{}, err
	}

	years := float64(a.ExitYear)

	// 1. Entry
	equity := a.PurchasePrice * a.EquityContribution
	if equity == 0 {
		return LBOResult{}, fmt.Errorf("%w: equity investment is zero (purchasePrice %v, equityContribution %v)",
			ErrDivisionByZero, a.PurchasePrice, a.EquityContribution)
	}
	entryEBITDA := a.PurchasePrice / constants.LBOEntryMultiple

	// 2. Exit
	exitEBITDA := entryEBITDA * math.Pow(1+a.EBITDAGrowth, years)
	exitValue := exitEBITDA * a.ExitMultiple

	// 3. Claims ahead of equity
	totalInterest := a.DebtAmount * a.InterestRate * years
	remainingDebt := a.DebtAmount
	txFees := a.PurchasePrice * a.TransactionFees
	mgmtFees := a.PurchasePrice * a.ManagementFees * years

	netExit := exitValue - remainingDebt - totalInterest - txFees - mgmtFees

	// 4. Returns. A non-positive MOIC floors IRR at -100% for every hold
	// period, even odd ones where a negative real root exists.
	moic := netExit / equity
	irr := -constants.PercentageMultiplier
	if moic > 0 {
		irr = (math.Pow(moic, 1/years) - 1) * constants.PercentageMultiplier
	}

	result := LBOResult{
		EquityInvestment:      equity,
		EntryEBITDA:           entryEBITDA,
		ExitEBITDA:            exitEBITDA,
		ExitValue:             exitValue,
		TotalInterest:         totalInterest,
		RemainingDebt:         remainingDebt + totalInterest,
		TransactionFeesAmount: txFees,
		ManagementFeesAmount:  mgmtFees,
		NetExitValue:          netExit,
		MOIC:                  moic,
		IRR:                   irr,
		Assumptions:           a,
	}
	if err := checkFinite(
		namedValue{"exitValue", result.ExitValue},
		namedValue{"netExitValue", result.NetExitValue},
		namedValue{"moic", result.MOIC},
		namedValue{"irr", result.IRR},
	); err != nil {
		return LBOResult{}, err
	}
	return result, nil
}
