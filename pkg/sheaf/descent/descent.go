// Package descent fits nonnegative mixture weights so that a weighted sum
// of candidate estimates explains a target estimate.
//
// The objective is the generalized Kullback-Leibler (I-) divergence
//
//	D(t || m) = Σ_k t_k log(t_k / m_k) − t_k + m_k,   m = Σ_i w_i c_i
//
// minimized by projected gradient descent with a backtracking step. The
// "+ m" term keeps the fitted mass close to the target's, which acts as
// a soft simplex constraint: weights are not forced to sum to one here,
// callers normalize afterwards if they need to.
package descent

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/cognicore/sheaf/pkg/sheaf/dist"
)

// Defaults used when Fitter fields are zero.
const (
	DefaultMaxIterations = 800
	DefaultLearningRate  = 0.1
)

const (
	// floor keeps log(t/m) finite where the mixture has no mass.
	floor = 1e-12
	// minStep stops the loop once backtracking has shrunk the step to nothing.
	minStep = 1e-15
	grow    = 1.1
	shrink  = 0.5
)

// Fitter runs a bounded gradient descent.
type Fitter struct {
	// MaxIterations bounds the number of steps. Zero means no steps at
	// all: the initial weights are returned. Negative selects the default.
	MaxIterations int
	LearningRate  float64
}

// NewFitter returns a fitter with the default bounds.
func NewFitter() Fitter {
	return Fitter{MaxIterations: DefaultMaxIterations, LearningRate: DefaultLearningRate}
}

// Result is the best point found.
type Result struct {
	Weights []float64
	// Divergence is measured relative to the target's total mass.
	Divergence float64
	Iterations int
}

// Fit solves for weights, one per candidate, in candidate order.
// Candidates that are all zero, non-finite or shaped differently from the
// target get weight zero. An all-zero target yields all-zero weights and
// zero divergence.
func (f Fitter) Fit(target []float64, candidates [][]float64) Result {
	res := Result{Weights: make([]float64, len(candidates))}

	mass := 0.0
	for _, v := range target {
		mass += dist.DefaultWhenNotFinite(v, 0)
	}
	if mass <= 0 {
		return res
	}

	t := make([]float64, len(target))
	for k, v := range target {
		t[k] = dist.DefaultWhenNotFinite(v, 0) / mass
	}

	var active []int
	var cs [][]float64
	for i, c := range candidates {
		if len(c) != len(t) || dist.AllZero(c) || hasNonFinite(c) {
			continue
		}
		scaled := make([]float64, len(c))
		copy(scaled, c)
		floats.Scale(1/mass, scaled)
		active = append(active, i)
		cs = append(cs, scaled)
	}
	if len(active) == 0 {
		return res
	}

	w := make([]float64, len(cs))
	for i := range w {
		w[i] = 1 / float64(len(w))
	}
	obj := problem{t: t, cs: cs, m: make([]float64, len(t))}
	div := obj.divergence(w)

	best := append([]float64(nil), w...)
	bestDiv := div

	iters := f.MaxIterations
	if iters < 0 {
		iters = DefaultMaxIterations
	}
	step := f.LearningRate
	if step <= 0 {
		step = DefaultLearningRate
	}

	grad := make([]float64, len(w))
	next := make([]float64, len(w))
	n := 0
	for ; n < iters && step > minStep; n++ {
		obj.gradient(w, grad)
		for i := range w {
			next[i] = math.Max(0, w[i]-step*grad[i])
		}
		d := obj.divergence(next)
		if d <= div {
			copy(w, next)
			div = d
			step *= grow
			if d < bestDiv {
				bestDiv = d
				copy(best, w)
			}
			continue
		}
		step *= shrink
	}

	for j, i := range active {
		res.Weights[i] = best[j]
	}
	res.Divergence = dist.DefaultWhenNotFinite(bestDiv, 0)
	res.Iterations = n
	return res
}

func hasNonFinite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return true
		}
	}
	return false
}

type problem struct {
	t  []float64
	cs [][]float64
	m  []float64 // scratch mixture
}

func (p *problem) mix(w []float64) {
	for k := range p.m {
		p.m[k] = 0
	}
	for i, c := range p.cs {
		floats.AddScaled(p.m, w[i], c)
	}
}

func (p *problem) divergence(w []float64) float64 {
	p.mix(w)
	d := 0.0
	for k, tk := range p.t {
		mk := p.m[k]
		if tk > 0 {
			d += tk*math.Log(tk/math.Max(mk, floor)) - tk
		}
		d += mk
	}
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return math.Inf(1)
	}
	return d
}

func (p *problem) gradient(w, grad []float64) {
	p.mix(w)
	for i, c := range p.cs {
		g := 0.0
		for k, ck := range c {
			g += ck * (1 - p.t[k]/math.Max(p.m[k], floor))
		}
		grad[i] = g
	}
}
