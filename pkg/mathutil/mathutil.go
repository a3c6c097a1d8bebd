// Package mathutil provides common mathematical utility functions.
package mathutil

import "math"

// Range returns the minimum and maximum of the finite values. ok is false
// when no value is finite.
func Range(values []float64) (lo, hi float64, ok bool) {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if !ok {
			lo, hi, ok = v, v, true
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi, ok
}

// Steps returns count evenly spaced values from start to stop inclusive.
// A count of 1 yields just start.
func Steps(start, stop float64, count int) []float64 {
	if count <= 0 {
		return nil
	}
	values := make([]float64, count)
	if count == 1 {
		values[0] = start
		return values
	}
	step := (stop - start) / float64(count-1)
	for i := range values {
		values[i] = start + float64(i)*step
	}
	values[count-1] = stop
	return values
}

// Around returns 2*radius+1 values centred on mid and spaced by step.
func Around(mid, step float64, radius int) []float64 {
	if radius < 0 {
		return nil
	}
	values := make([]float64, 2*radius+1)
	for i := range values {
		values[i] = mid + float64(i-radius)*step
	}
	return values
}
