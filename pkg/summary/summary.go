// Package summary provides shared data structures for sensitivity grid results.
package summary

import (
	"github.com/iwvelando/corporate-valuation/pkg/mathutil"
	"github.com/iwvelando/corporate-valuation/pkg/valuation"
)

// Grid captures the spread of a single sensitivity grid.
type Grid struct {
	Title  string  `json:"title"`
	Metric string  `json:"metric"`
	Rows   int     `json:"rows"`
	Cols   int     `json:"cols"`
	Failed int     `json:"failed"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	// MinAt and MaxAt are the row and column labels of the extremes.
	MinAt [2]string `json:"minAt"`
	MaxAt [2]string `json:"maxAt"`
	// Valued is false when every cell failed; Min and Max are then zero.
	Valued bool `json:"valued"`
}

// Summarize reduces g to its extremes. Ties keep the first cell in row-major
// order.
func Summarize(g valuation.SensitivityGrid) Grid {
	s := Grid{
		Title:  g.Title,
		Metric: string(g.Metric),
		Rows:   len(g.YLabels),
		Cols:   len(g.XLabels),
		Failed: g.Failures(),
	}

	values := make([]float64, 0, s.Rows*s.Cols)
	for _, row := range g.Grid {
		for _, c := range row {
			if c.OK() {
				values = append(values, c.Value)
			}
		}
	}
	lo, hi, ok := mathutil.Range(values)
	if !ok {
		return s
	}
	s.Valued = true
	s.Min, s.Max = lo, hi

	foundMin, foundMax := false, false
	for i, row := range g.Grid {
		for j, c := range row {
			if !c.OK() {
				continue
			}
			if !foundMin && c.Value == lo {
				s.MinAt = [2]string{g.YLabels[i], g.XLabels[j]}
				foundMin = true
			}
			if !foundMax && c.Value == hi {
				s.MaxAt = [2]string{g.YLabels[i], g.XLabels[j]}
				foundMax = true
			}
		}
	}
	return s
}

// Spread is Max minus Min.
func (s Grid) Spread() float64 {
	return s.Max - s.Min
}
