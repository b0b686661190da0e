package similarity

import (
	"errors"
	"testing"

	"github.com/cognicore/sheaf/pkg/sheaf/internalerr"
	"github.com/cognicore/sheaf/pkg/sheaf/text"
)

func TestWordSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"cake", "cake", 1},
		{"cake", "bake", 0}, // 0.75 similarity
		{"soldiers", "soldier", 1},
		{"missile", "egg", 0},
		{"", "", 1},
	}
	for _, tt := range tests {
		if got := WordSimilarity(tt.a, tt.b); got != tt.want {
			t.Errorf("WordSimilarity(%q, %q) = %f, want %f", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestReduce(t *testing.T) {
	w1 := []string{"bake", "cake"}
	w2 := []string{"cake", "bake", "oven"}

	if got := Reduce(MaxAverage, w1, w2); got != 2 {
		t.Errorf("MaxAverage = %f, want 2", got)
	}
	if got := Reduce(MaxMax, w1, w2); got != 1 {
		t.Errorf("MaxMax = %f, want 1", got)
	}
	if got := Reduce(Average, w1, w2); got != 2.0/6.0 {
		t.Errorf("Average = %f, want 1/3", got)
	}
	if got := Reduce(MaxMax, w1, []string{"tank"}); got != 0 {
		t.Errorf("MaxMax without hits = %f", got)
	}
	if got := Reduce(Average, nil, w2); got != 0 {
		t.Errorf("empty reduction = %f, want 0", got)
	}
}

func TestBind(t *testing.T) {
	measure := Bind(text.NewDefaultTokenizer(), "Bake a cake", MaxAverage)

	if got := measure("bake a cake"); got != 2 {
		t.Errorf("measure(same) = %f, want 2", got)
	}
	if got := measure("launch a missile"); got != 0 {
		t.Errorf("measure(unrelated) = %f, want 0", got)
	}
}

func TestParseReduction(t *testing.T) {
	for in, want := range map[string]Reduction{"": MaxAverage, "max-max": MaxMax, "Average": Average} {
		got, err := ParseReduction(in)
		if err != nil || got != want {
			t.Errorf("ParseReduction(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseReduction("median"); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
	if MaxMax.String() != "max-max" {
		t.Errorf("String = %s", MaxMax.String())
	}
}
