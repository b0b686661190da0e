package result

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

func TestNewOrdersByName(t *testing.T) {
	r := New(map[string]float64{"Warfare": 0.2, "Cooking": 0.8, "Medicine": math.NaN()}, 0.1)

	names := r.Names()
	if len(names) != 3 || names[0] != "Cooking" || names[1] != "Medicine" || names[2] != "Warfare" {
		t.Errorf("names = %v", names)
	}
	if w, ok := r.Weight("Medicine"); !ok || w != 0 {
		t.Errorf("NaN weight should become 0, got %f %v", w, ok)
	}
	if _, ok := r.Weight("Travel"); ok {
		t.Error("unknown topic should not be present")
	}
	if r.Divergence() != 0.1 {
		t.Errorf("divergence = %f", r.Divergence())
	}
}

func TestImmutable(t *testing.T) {
	src := map[string]float64{"a": 1}
	r := New(src, 0)
	src["a"] = 5

	entries := r.Entries()
	entries[0].Weight = 9

	if w, _ := r.Weight("a"); w != 1 {
		t.Errorf("result changed through caller state: %f", w)
	}
}

func TestNormalizedAndTop(t *testing.T) {
	r := New(map[string]float64{"a": 1, "b": 3}, 0).Normalized()
	if w, _ := r.Weight("b"); w != 0.75 {
		t.Errorf("b = %f, want 0.75", w)
	}
	top, ok := r.Top()
	if !ok || top.Topic != "b" {
		t.Errorf("Top = %+v", top)
	}

	zero := New(map[string]float64{"a": 0, "b": 0}, 0).Normalized()
	for _, e := range zero.Entries() {
		if e.Weight != 0 {
			t.Errorf("%s = %f, want 0", e.Topic, e.Weight)
		}
	}
	if _, ok := New(nil, 0).Top(); ok {
		t.Error("empty result has no top entry")
	}
}

func TestDistances(t *testing.T) {
	a := New(map[string]float64{"x": 0.5, "y": 0.5}, 0)
	b := New(map[string]float64{"x": 1.0, "z": 0.0}, 0)

	if d := a.ManhattanDistance(b); math.Abs(d-1.0) > 1e-12 {
		t.Errorf("Manhattan = %f, want 1", d)
	}
	if d := a.DeltaSim(a); d != 0 {
		t.Errorf("DeltaSim to self = %f", d)
	}
	if d := a.DeltaSim(b); math.Abs(d-math.Sqrt(0.5)) > 1e-12 {
		t.Errorf("DeltaSim = %f", d)
	}
}

func TestReport(t *testing.T) {
	var buf bytes.Buffer
	if err := New(map[string]float64{"Cooking": 0.9, "Warfare": 0.1}, 0).Report(&buf); err != nil {
		t.Fatalf("Report: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[0], "Cooking") {
		t.Errorf("unexpected report:\n%s", buf.String())
	}
}
