package descent

import (
	"math"
	"testing"
)

func TestFitRecoversMixture(t *testing.T) {
	f := NewFitter()

	res := f.Fit([]float64{0.3, 0.7}, [][]float64{{1, 0}, {0, 1}})
	if math.Abs(res.Weights[0]-0.3) > 1e-3 || math.Abs(res.Weights[1]-0.7) > 1e-3 {
		t.Errorf("weights = %v, want ~[0.3 0.7]", res.Weights)
	}
	if res.Divergence > 1e-4 {
		t.Errorf("divergence = %g, want ~0", res.Divergence)
	}
	if res.Iterations == 0 || res.Iterations > DefaultMaxIterations {
		t.Errorf("iterations = %d", res.Iterations)
	}
}

func TestFitScaleInvariant(t *testing.T) {
	f := NewFitter()

	small := f.Fit([]float64{0.003, 0.007}, [][]float64{{0.01, 0}, {0, 0.01}})
	if math.Abs(small.Weights[0]-0.3) > 1e-3 || math.Abs(small.Weights[1]-0.7) > 1e-3 {
		t.Errorf("weights = %v, want ~[0.3 0.7]", small.Weights)
	}
}

func TestFitDropsUselessCandidate(t *testing.T) {
	f := NewFitter()

	// The second candidate only adds mass where the target has none.
	res := f.Fit([]float64{1, 0}, [][]float64{{1, 0}, {0, 1}})
	if res.Weights[1] != 0 {
		t.Errorf("useless candidate should be clamped to 0, got %f", res.Weights[1])
	}
	if math.Abs(res.Weights[0]-1) > 1e-3 {
		t.Errorf("useful candidate weight = %f, want ~1", res.Weights[0])
	}
}

func TestFitAllZero(t *testing.T) {
	res := NewFitter().Fit([]float64{0, 0}, [][]float64{{0, 0}, {0, 0}})
	for i, w := range res.Weights {
		if w != 0 {
			t.Errorf("weight %d = %f, want 0", i, w)
		}
	}
	if res.Divergence != 0 || math.IsNaN(res.Divergence) {
		t.Errorf("divergence = %f, want 0", res.Divergence)
	}
}

func TestFitZeroCandidateAmongOthers(t *testing.T) {
	res := NewFitter().Fit([]float64{0.5, 0.5}, [][]float64{{0, 0}, {0.5, 0.5}, {math.NaN(), 1}})
	if res.Weights[0] != 0 || res.Weights[2] != 0 {
		t.Errorf("degenerate candidates should get zero weight: %v", res.Weights)
	}
	if math.Abs(res.Weights[1]-1) > 1e-3 {
		t.Errorf("weight = %f, want ~1", res.Weights[1])
	}
	if math.IsNaN(res.Divergence) || math.IsInf(res.Divergence, 0) {
		t.Errorf("divergence should be finite, got %f", res.Divergence)
	}
}

func TestFitZeroIterations(t *testing.T) {
	f := Fitter{MaxIterations: 0}

	res := f.Fit([]float64{1}, [][]float64{{1}})
	if len(res.Weights) != 1 {
		t.Fatalf("expected one weight, got %v", res.Weights)
	}
	if res.Iterations != 0 {
		t.Errorf("iterations = %d, want 0", res.Iterations)
	}
}

func TestFitNoCandidates(t *testing.T) {
	res := NewFitter().Fit([]float64{1, 2}, nil)
	if len(res.Weights) != 0 || res.Divergence != 0 {
		t.Errorf("unexpected result %+v", res)
	}
}
