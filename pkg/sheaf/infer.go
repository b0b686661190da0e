package sheaf

import (
	"fmt"

	"github.com/cognicore/sheaf/pkg/sheaf/dist"
	"github.com/cognicore/sheaf/pkg/sheaf/internalerr"
	"github.com/cognicore/sheaf/pkg/sheaf/result"
	"github.com/cognicore/sheaf/pkg/sheaf/similarity"
)

// Scored is one starting-layer node's measure.
type Scored struct {
	Topic      string
	Name       string
	Score      float64
	Divergence float64
}

// EvaluateMeasure runs TransferDown from every node of the starting layer
// of every registered tree, measureLayer-startingLayer levels deep.
func (a *Analyzer) EvaluateMeasure(startingLayer, measureLayer int, sim func(string) float64) ([]Scored, error) {
	if startingLayer < 0 || measureLayer < startingLayer {
		return nil, fmt.Errorf("layers %d..%d: %w", startingLayer, measureLayer, internalerr.ErrInvalidInput)
	}
	depth := measureLayer - startingLayer

	var out []Scored
	for _, t := range a.Trees() {
		for _, id := range t.RetrieveLayer(startingLayer) {
			n := t.Node(id)
			out = append(out, Scored{
				Topic:      t.Topic,
				Name:       n.Name,
				Score:      t.TransferDown(id, depth, sim),
				Divergence: n.Divergence,
			})
		}
	}
	return out, nil
}

// ClassifyWith scores every starting-layer node with sim. The result is
// keyed by node name, which is the topic when startingLayer is 0, and
// carries the mean divergence of the scored nodes.
func (a *Analyzer) ClassifyWith(sim func(string) float64, startingLayer, measureLayer int, normalize bool) (result.TopicMixtureResult, error) {
	if len(a.Trees()) == 0 {
		return result.TopicMixtureResult{}, fmt.Errorf("classify: no trees loaded: %w", internalerr.ErrNotFound)
	}
	scored, err := a.EvaluateMeasure(startingLayer, measureLayer, sim)
	if err != nil {
		return result.TopicMixtureResult{}, err
	}

	weights := make(map[string]float64, len(scored))
	divergences := make([]float64, len(scored))
	for i, s := range scored {
		weights[s.Name] = s.Score
		divergences[i] = s.Divergence
	}
	if normalize {
		weights = dist.Normalize(weights)
	}
	return result.New(weights, dist.Average(divergences)), nil
}

// InferMetric classifies text against the registered trees with the
// Levenshtein word measure folded by reduction.
func (a *Analyzer) InferMetric(text string, startingLayer, measureLayer int, normalize bool, reduction similarity.Reduction) (result.TopicMixtureResult, error) {
	sim := similarity.Bind(a.tok, text, reduction)
	return a.ClassifyWith(sim, startingLayer, measureLayer, normalize)
}

// Classify runs InferMetric with the configured inference settings.
func (a *Analyzer) Classify(text string) (result.TopicMixtureResult, error) {
	in := a.cfg.Inference
	reduction, err := a.cfg.Reduction()
	if err != nil {
		return result.TopicMixtureResult{}, err
	}
	return a.InferMetric(text, in.StartingLayer, in.MeasureLayer, in.Normalize, reduction)
}
