package integrate

import (
	"errors"
	"math"
	"testing"

	"github.com/cognicore/sheaf/pkg/sheaf/internalerr"
	"github.com/cognicore/sheaf/pkg/sheaf/perturb"
)

func TestIntegrateMissingIdentity(t *testing.T) {
	_, err := Integrate([]string{"a"}, [][]float64{{1}}, map[string]map[string]float64{
		"topic": {"a": 1},
	}, "root")
	if !errors.Is(err, internalerr.ErrMissingIdentity) {
		t.Fatalf("expected ErrMissingIdentity, got %v", err)
	}
}

func TestIntegrateMismatchedSample(t *testing.T) {
	_, err := Integrate([]string{"a", "b"}, [][]float64{{1}}, map[string]map[string]float64{
		"root": {"a": 1},
	}, "root")
	if !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestIntegrateUnrelatedReferenceIsZero(t *testing.T) {
	covering := map[string]float64{"ab": 0.5, "bc": 0.5}
	names, samples := perturb.NewSampler(3).Perturb(50, covering)

	est, err := Integrate(names, samples, map[string]map[string]float64{
		"root":      covering,
		"unrelated": {"xy": 1},
	}, "root")
	if err != nil {
		t.Fatalf("Integrate: %v", err)
	}
	for i, v := range est["unrelated"] {
		if v != 0 {
			t.Errorf("unrelated[%d] = %f, want 0", i, v)
		}
	}
}

func TestIntegrateIsLabelBlind(t *testing.T) {
	covering := map[string]float64{"ab": 0.2, "bc": 0.8}
	names, samples := perturb.NewSampler(11).Perturb(100, covering)

	est, err := Integrate(names, samples, map[string]map[string]float64{
		"root": covering,
		"twin": {"ab": 0.2, "bc": 0.8},
	}, "root")
	if err != nil {
		t.Fatalf("Integrate: %v", err)
	}
	for i := range est["root"] {
		if est["root"][i] != est["twin"][i] {
			t.Errorf("coordinate %d: identity %f != twin %f", i, est["root"][i], est["twin"][i])
		}
	}
	// Noise is tiny, so the identity estimate is close to covering squared.
	if math.Abs(est["root"][1]-0.64) > 1e-3 {
		t.Errorf("identity estimate = %f, want ~0.64", est["root"][1])
	}
}

func TestIntegrateNoSamples(t *testing.T) {
	est, err := Integrate([]string{"a"}, nil, map[string]map[string]float64{"root": {"a": 1}}, "root")
	if err != nil {
		t.Fatalf("Integrate: %v", err)
	}
	if est["root"][0] != 0 {
		t.Errorf("no samples should integrate to zero, got %f", est["root"][0])
	}
}
