package perturb

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/cognicore/sheaf/pkg/sheaf/dist"
)

// Defaults used when a Sampler field is left zero.
const (
	DefaultSamples = 100
	DefaultSigma   = 0.001
)

// Sampler draws Gaussian-noised copies of a distribution.
//
// Negative entries produced by the noise are not clamped before the
// sample is renormalized, so a name with a score near zero can end up
// with a small negative weight.
//
// A Sampler is not safe for concurrent use: it advances Src.
type Sampler struct {
	Mean  float64
	Sigma float64
	Src   rand.Source
}

// NewSampler returns a sampler with the default sigma drawing from a
// source seeded with seed.
func NewSampler(seed uint64) *Sampler {
	return &Sampler{Sigma: DefaultSigma, Src: rand.NewSource(seed)}
}

// Perturb draws count perturbed samples of sims. Names are returned once,
// sorted; each sample lists weights in that order and sums to 1 unless the
// noisy total was zero or non-finite, in which case it is all zeros.
func (s *Sampler) Perturb(count int, sims map[string]float64) ([]string, [][]float64) {
	if count <= 0 {
		count = DefaultSamples
	}
	sigma := s.Sigma
	if sigma <= 0 {
		sigma = DefaultSigma
	}
	norm := distuv.Normal{Mu: s.Mean, Sigma: sigma, Src: s.Src}

	names := dist.SortedKeys(sims)
	base := dist.Vector(names, sims)

	samples := make([][]float64, count)
	noisy := make([]float64, len(base))
	for i := range samples {
		for j, v := range base {
			noisy[j] = v + norm.Rand()
		}
		samples[i] = dist.NormalizeSlice(noisy)
	}
	return names, samples
}
