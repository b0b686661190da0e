package sheaf

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/fnv"
	"sort"

	"github.com/cognicore/sheaf/pkg/sheaf/corpus"
	"github.com/cognicore/sheaf/pkg/sheaf/tree"
)

// Report summarizes a multi-topic training run. A topic appears in
// exactly one of Trained and Failed.
type Report struct {
	Trained []string
	Failed  map[string]error
	Gaps    map[string][]tree.Gap
}

// Err joins the per-topic failures, or returns nil when every topic trained.
func (r Report) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	topics := make([]string, 0, len(r.Failed))
	for topic := range r.Failed {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	errs := make([]error, len(topics))
	for i, topic := range topics {
		errs[i] = fmt.Errorf("%s: %w", topic, r.Failed[topic])
	}
	return errors.Join(errs...)
}

// TopicSeed derives the sampler seed for one topic so that a topic trains
// the same way regardless of which other topics run beside it.
func TopicSeed(seed uint64, topic string) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], seed)
	h.Write(buf[:])
	h.Write([]byte(topic))
	return h.Sum64()
}

// TrainTopic grows a tree whose root holds docs as partitions and
// registers it for inference. The tree is not persisted.
func (a *Analyzer) TrainTopic(ctx context.Context, topic string, docs []string) (*tree.Tree, error) {
	t, err := a.train(ctx, topic, docs)
	if err != nil {
		return nil, err
	}
	a.register(t)
	return t, nil
}

func (a *Analyzer) train(ctx context.Context, topic string, docs []string) (*tree.Tree, error) {
	tc := a.cfg.Training
	log := a.log.With("topic", topic)

	t := tree.NewTree(topic, docs, tc.RootDivergence)
	t.ID = a.newID()
	trainer := &tree.Trainer{
		Spec:                   a.spec,
		Samples:                tc.Samples,
		Repetitions:            tc.Repetitions,
		Fitter:                 a.cfg.Fitter(),
		Sampler:                a.cfg.Sampler(TopicSeed(tc.Seed, topic)),
		Logger:                 log,
		PropagateFitDivergence: tc.PropagateFitDivergence,
	}
	if err := trainer.Descend(ctx, t); err != nil {
		return nil, fmt.Errorf("train %s: %w", topic, err)
	}

	st := t.Stats()
	log.Info("trained topic", "id", t.ID, "nodes", st.Nodes, "leaves", st.Leaves, "depth", st.MaxDepth, "gaps", st.Gaps)
	return t, nil
}

// TrainTopics trains every topic concurrently, bounded by the configured
// worker count, and saves each tree when a store is configured. A failing
// topic never stops the others. Only trees that trained and saved are
// registered for inference; once ctx is done, topics not yet started are
// reported as failed with the context error.
func (a *Analyzer) TrainTopics(ctx context.Context, topics map[string][]string) Report {
	type topicResult struct {
		topic string
		tree  *tree.Tree
		err   error
	}

	names := make([]string, 0, len(topics))
	for name := range topics {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make(chan topicResult, len(names))
	sem := make(chan struct{}, a.cfg.Training.Workers)

	for _, name := range names {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			results <- topicResult{topic: name, err: ctx.Err()}
			continue
		}
		go func(name string, docs []string) {
			defer func() { <-sem }()
			t, err := a.train(ctx, name, docs)
			if err == nil && a.store != nil {
				if err = a.store.SaveTree(ctx, t); err != nil {
					err = fmt.Errorf("save %s: %w", name, err)
				}
			}
			if err == nil {
				a.register(t)
			}
			results <- topicResult{topic: name, tree: t, err: err}
		}(name, topics[name])
	}

	report := Report{
		Failed: make(map[string]error),
		Gaps:   make(map[string][]tree.Gap),
	}
	for range names {
		r := <-results
		if r.err != nil {
			a.log.Error("training failed", "topic", r.topic, "error", r.err)
			report.Failed[r.topic] = r.err
			continue
		}
		report.Trained = append(report.Trained, r.topic)
		if len(r.tree.Gaps) > 0 {
			report.Gaps[r.topic] = r.tree.Gaps
		}
	}
	sort.Strings(report.Trained)
	return report
}

// TrainDirectory trains one topic per sub-directory of root. Topics whose
// documents cannot be read are reported as failed.
func (a *Analyzer) TrainDirectory(ctx context.Context, root string, filter []string) (Report, error) {
	topics, err := corpus.ListTopics(root, filter)
	if err != nil {
		return Report{}, err
	}

	reader := corpus.NewReader(a.tok)
	docs := make(map[string][]string, len(topics))
	unreadable := make(map[string]error)
	for _, topic := range topics {
		d, err := reader.ReadDocuments(topic.Dir)
		if err != nil {
			a.log.Error("reading topic failed", "topic", topic.Name, "error", err)
			unreadable[topic.Name] = err
			continue
		}
		docs[topic.Name] = d
	}

	report := a.TrainTopics(ctx, docs)
	for topic, err := range unreadable {
		report.Failed[topic] = err
	}
	return report, nil
}

// TrainJSONL trains one topic per distinct topic field of a JSONL corpus.
// A non-empty filter keeps only the named topics.
func (a *Analyzer) TrainJSONL(ctx context.Context, path string, filter []string) (Report, error) {
	docs, err := corpus.NewReader(a.tok).LoadJSONL(path, a.log)
	if err != nil {
		return Report{}, err
	}
	if len(filter) > 0 {
		kept := make(map[string][]string, len(filter))
		for _, topic := range filter {
			if d, ok := docs[topic]; ok {
				kept[topic] = d
			}
		}
		docs = kept
	}
	return a.TrainTopics(ctx, docs), nil
}
