// Package integrate turns perturbed samples into per-reference estimates.
//
// For every reference distribution r the estimate is a vector over the
// samples' name space whose k-th entry is the mean, across samples, of
// sample[k] * r[name_k]. The estimator only looks at the reference's
// values, never its label, and a reference with no mass on the samples'
// support integrates to zero.
package integrate

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/cognicore/sheaf/pkg/sheaf/dist"
	"github.com/cognicore/sheaf/pkg/sheaf/internalerr"
)

// Integrate estimates how much of the samples' mass each reference
// explains. refs must contain identity.
func Integrate(names []string, samples [][]float64, refs map[string]map[string]float64, identity string) (map[string][]float64, error) {
	if _, ok := refs[identity]; !ok {
		return nil, fmt.Errorf("integrate: %q: %w", identity, internalerr.ErrMissingIdentity)
	}

	// Sample mean per coordinate; the product with a fixed reference
	// commutes with the mean.
	mean := make([]float64, len(names))
	for _, sample := range samples {
		if len(sample) != len(names) {
			return nil, fmt.Errorf("integrate: sample has %d entries for %d names: %w",
				len(sample), len(names), internalerr.ErrInvalidInput)
		}
		floats.Add(mean, sample)
	}
	if len(samples) > 0 {
		floats.Scale(1/float64(len(samples)), mean)
	}

	out := make(map[string][]float64, len(refs))
	for name, ref := range refs {
		est := dist.Vector(names, ref)
		floats.Mul(est, mean)
		for i, v := range est {
			est[i] = dist.DefaultWhenNotFinite(v, 0)
		}
		out[name] = est
	}
	return out, nil
}
