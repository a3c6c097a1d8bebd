// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/corporate-valuation/internal/analysis"
)

// FindReport finds a report by name in the results slice.
// Returns a pointer to the report if found, nil otherwise.
func FindReport(results []analysis.Report, name string) *analysis.Report {
	for i := range results {
		if results[i].Name == name {
			return &results[i]
		}
	}
	return nil
}

// CountKind returns how many reports carry the given kind.
func CountKind(results []analysis.Report, kind string) int {
	n := 0
	for _, r := range results {
		if r.Kind == kind {
			n++
		}
	}
	return n
}
