package tree

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/cognicore/sheaf/pkg/sheaf/descent"
	"github.com/cognicore/sheaf/pkg/sheaf/dist"
	"github.com/cognicore/sheaf/pkg/sheaf/integrate"
	"github.com/cognicore/sheaf/pkg/sheaf/kernel"
	"github.com/cognicore/sheaf/pkg/sheaf/perturb"
)

// DefaultRepetitions is how many independent fits are averaged per node.
const DefaultRepetitions = 3

// Trainer grows a tree one level per entry of Spec.
//
// A Trainer owns its Sampler and must not be shared between goroutines;
// train independent topics with independent trainers.
type Trainer struct {
	Spec        kernel.Spec
	Samples     int
	Repetitions int
	Fitter      descent.Fitter
	Sampler     *perturb.Sampler
	Logger      *slog.Logger

	// PropagateFitDivergence hands each child the averaged fit divergence
	// of its parent instead of the divergence the parent inherited.
	PropagateFitDivergence bool
}

// Descend trains t from its root.
func (tr *Trainer) Descend(ctx context.Context, t *Tree) error {
	if tr.Sampler == nil {
		tr.Sampler = perturb.NewSampler(0)
	}
	if tr.Logger == nil {
		tr.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return tr.descend(ctx, t, t.Root(), tr.Spec)
}

func (tr *Trainer) descend(ctx context.Context, t *Tree, id NodeID, spec kernel.Spec) error {
	if len(spec) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	node := t.Node(id)
	name := node.Name
	if len(node.Partitions) == 0 {
		gap := Gap{Node: name, Depth: t.Depth(id)}
		if parent := t.Parent(id); parent != nil {
			gap.Cover = parent.Name
		}
		t.Gaps = append(t.Gaps, gap)
		tr.Logger.Warn("decomposition gap", "topic", t.Topic, "node", name, "cover", gap.Cover, "depth", gap.Depth)
		return nil
	}

	level := spec[0]
	order := make([]string, len(node.Partitions))
	texts := make(map[string]string, len(node.Partitions))
	sims := make(map[string]map[string]float64, len(node.Partitions))
	covering := make(map[string]float64)
	for i, text := range node.Partitions {
		pname := fmt.Sprintf("%s_%d", name, i)
		order[i] = pname
		texts[pname] = text
		sims[pname] = level.Kernel.Similarity(text)
		for k, v := range sims[pname] {
			covering[k] += v
		}
	}
	covering = dist.Normalize(covering)

	reps := tr.Repetitions
	if reps <= 0 {
		reps = DefaultRepetitions
	}
	weights := make(map[string]float64, len(order))
	divergence := 0.0
	for r := 0; r < reps; r++ {
		w, d, err := tr.fit(name, covering, order, sims)
		if err != nil {
			return fmt.Errorf("fit %s: %w", name, err)
		}
		for pname, v := range w {
			weights[pname] += v
		}
		divergence += d
	}
	for pname := range weights {
		weights[pname] /= float64(reps)
	}
	divergence /= float64(reps)

	tr.Logger.Debug("fitted node", "topic", t.Topic, "node", name,
		"partitions", len(order), "divergence", divergence, "weights", weights)

	childDivergence := node.Divergence
	if tr.PropagateFitDivergence {
		childDivergence = divergence
	}

	var children []NodeID
	for _, pname := range order {
		w := weights[pname]
		if !(w > 0) {
			continue
		}
		var parts []string
		if level.Partitioner != nil {
			parts = level.Partitioner.Split(texts[pname])
		}
		children = append(children, t.AddChild(id, pname, parts, childDivergence, w))
	}

	rest := spec.Tail()
	for _, child := range children {
		if err := tr.descend(ctx, t, child, rest); err != nil {
			return err
		}
	}
	return nil
}

// fit runs one perturb, integrate, descend pass with the covering
// distribution as the identity reference.
func (tr *Trainer) fit(identity string, covering map[string]float64, order []string, sims map[string]map[string]float64) (map[string]float64, float64, error) {
	names, samples := tr.Sampler.Perturb(tr.Samples, covering)

	refs := make(map[string]map[string]float64, len(sims)+1)
	for pname, s := range sims {
		refs[pname] = s
	}
	refs[identity] = covering

	ests, err := integrate.Integrate(names, samples, refs, identity)
	if err != nil {
		return nil, 0, err
	}

	candidates := make([][]float64, len(order))
	for i, pname := range order {
		candidates[i] = ests[pname]
	}
	res := tr.Fitter.Fit(ests[identity], candidates)

	out := make(map[string]float64, len(order))
	for i, pname := range order {
		out[pname] = res.Weights[i]
	}
	return out, res.Divergence, nil
}
