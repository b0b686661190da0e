// Package dist holds the small distribution helpers shared by every stage
// of training and inference. Anything that averages or divides goes
// through DefaultWhenNotFinite so that empty inputs collapse to zero
// instead of leaking NaN into a tree.
package dist

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// DefaultWhenNotFinite returns def when v is NaN or ±Inf.
func DefaultWhenNotFinite(v, def float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Normalize scales m so its values sum to 1. A zero or non-finite total
// yields all-zero values.
func Normalize(m map[string]float64) map[string]float64 {
	// Sum in key order so equal inputs give bit-identical outputs.
	total := 0.0
	for _, k := range SortedKeys(m) {
		total += m[k]
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = DefaultWhenNotFinite(v/total, 0)
	}
	return out
}

// NormalizeSlice returns a copy of v scaled to sum to 1, or zeros when the
// sum is zero or non-finite.
func NormalizeSlice(v []float64) []float64 {
	out := make([]float64, len(v))
	if len(v) == 0 {
		return out
	}
	total := floats.Sum(v)
	if total == 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return out
	}
	copy(out, v)
	floats.Scale(1/total, out)
	return out
}

// Average is the arithmetic mean of v, 0 for an empty slice or a
// non-finite mean.
func Average(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	return DefaultWhenNotFinite(floats.Sum(v)/float64(len(v)), 0)
}

// Counts turns raw occurrence counts into a normalized frequency map.
func Counts(items []string) map[string]float64 {
	m := make(map[string]float64, len(items))
	for _, it := range items {
		m[it]++
	}
	return Normalize(m)
}

// Vector lays m out along names; missing names are zero.
func Vector(names []string, m map[string]float64) []float64 {
	out := make([]float64, len(names))
	for i, n := range names {
		out[i] = m[n]
	}
	return out
}

// AllZero reports whether every entry of v is zero or non-finite.
func AllZero(v []float64) bool {
	for _, x := range v {
		if DefaultWhenNotFinite(x, 0) != 0 {
			return false
		}
	}
	return true
}
