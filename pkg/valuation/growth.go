package valuation

import "fmt"

// BuildGrowthVector returns exactly totalYears growth rates. Years
// 1..rampYears carry initialRate and every later year drops straight to
// terminalRate. rampYears is clamped into [0, totalYears].
func BuildGrowthVector(initialRate float64, totalYears, rampYears int, terminalRate float64) ([]float64, error) {
	if totalYears < 1 {
		return nil, fmt.Errorf("%w: growth vector needs at least 1 year, got %d", ErrInvalidAssumption, totalYears)
	}
	if err := checkFinite(
		namedValue{"initialRate", initialRate},
		namedValue{"terminalRate", terminalRate},
	); err != nil {
		return nil, err
	}

	if rampYears < 0 {
		rampYears = 0
	}
	if rampYears > totalYears {
		rampYears = totalYears
	}

	growth := make([]float64, totalYears)
	for i := range growth {
		if i < rampYears {
			growth[i] = initialRate
		} else {
			growth[i] = terminalRate
		}
	}
	return growth, nil
}
