package config

import (
	"fmt"

	"github.com/cognicore/sheaf/pkg/sheaf/descent"
	"github.com/cognicore/sheaf/pkg/sheaf/kernel"
	"github.com/cognicore/sheaf/pkg/sheaf/perturb"
	"github.com/cognicore/sheaf/pkg/sheaf/similarity"
	"github.com/cognicore/sheaf/pkg/sheaf/text"
)

// BuildTokenizer returns the default tokenizer, or one built from the
// configured stoplist file.
func (c Config) BuildTokenizer() (*text.Tokenizer, error) {
	tok := text.NewDefaultTokenizer()
	if c.Text.Stoplist != "" {
		stoplist, err := LoadStoplist(c.Text.Stoplist)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		tok = text.NewTokenizer(stoplist.Terms)
	}
	return tok.WithStemming(c.Text.Stem), nil
}

// BuildSpec resolves Levels into a descent spec through the kernel registry.
func (c Config) BuildSpec(tok *text.Tokenizer) (kernel.Spec, error) {
	spec := make(kernel.Spec, 0, len(c.Levels))
	for i, l := range c.Levels {
		k, err := kernel.KernelByName(l.Kernel, tok, kernel.KernelOptions{Window: l.Window, Partial: l.Partial})
		if err != nil {
			return nil, fmt.Errorf("levels[%d]: %w", i, err)
		}
		p, err := kernel.PartitionerByName(l.Partition)
		if err != nil {
			return nil, fmt.Errorf("levels[%d]: %w", i, err)
		}
		spec = append(spec, kernel.Level{Kernel: k, Partitioner: p})
	}
	return spec, nil
}

// Fitter returns the weight fitter for the training settings.
func (c Config) Fitter() descent.Fitter {
	return descent.Fitter{
		MaxIterations: c.Training.MaxIterations,
		LearningRate:  c.Training.LearningRate,
	}
}

// Sampler returns a perturbation sampler seeded with seed.
func (c Config) Sampler(seed uint64) *perturb.Sampler {
	s := perturb.NewSampler(seed)
	s.Mean = c.Training.Mean
	s.Sigma = c.Training.Sigma
	return s
}

// Reduction parses the configured inference reduction.
func (c Config) Reduction() (similarity.Reduction, error) {
	return similarity.ParseReduction(c.Inference.Reduction)
}
