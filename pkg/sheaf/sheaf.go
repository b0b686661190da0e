// Package sheaf trains one hierarchical kernel-mixture tree per topic and
// classifies new text as a mixture over the trained topics.
package sheaf

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/sheaf/pkg/sheaf/config"
	"github.com/cognicore/sheaf/pkg/sheaf/internalerr"
	"github.com/cognicore/sheaf/pkg/sheaf/kernel"
	"github.com/cognicore/sheaf/pkg/sheaf/store"
	"github.com/cognicore/sheaf/pkg/sheaf/text"
	"github.com/cognicore/sheaf/pkg/sheaf/tree"
)

// Analyzer is the engine facade. Trained and loaded trees are held in
// memory for inference and are never mutated once registered.
type Analyzer struct {
	store store.Store
	tok   *text.Tokenizer
	cfg   config.Config
	spec  kernel.Spec
	log   *slog.Logger

	mu    sync.RWMutex
	trees map[string]*tree.Tree

	idMu    sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// Options configures an Analyzer. Zero fields fall back to defaults:
// config.Default(), the tokenizer and spec that config builds, a
// discarding logger and no store.
type Options struct {
	Store     store.Store
	Tokenizer *text.Tokenizer
	Config    *config.Config
	Logger    *slog.Logger
	Spec      kernel.Spec
}

// New creates an Analyzer with the given dependencies.
func New(opts Options) (*Analyzer, error) {
	cfg := config.Default()
	if opts.Config != nil {
		cfg = *opts.Config
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tok := opts.Tokenizer
	if tok == nil {
		var err error
		if tok, err = cfg.BuildTokenizer(); err != nil {
			return nil, err
		}
	}
	spec := opts.Spec
	if len(spec) == 0 {
		var err error
		if spec, err = cfg.BuildSpec(tok); err != nil {
			return nil, err
		}
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Analyzer{
		store:   opts.Store,
		tok:     tok,
		cfg:     cfg,
		spec:    spec,
		log:     log,
		trees:   make(map[string]*tree.Tree),
		entropy: ulid.Monotonic(rand.Reader, 0),
	}, nil
}

// Close releases the store, if any.
func (a *Analyzer) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

// Config returns the configuration in use.
func (a *Analyzer) Config() config.Config { return a.cfg }

// Tokenizer returns the tokenizer shared by training and inference.
func (a *Analyzer) Tokenizer() *text.Tokenizer { return a.tok }

// Trees returns the registered trees in topic order.
func (a *Analyzer) Trees() []*tree.Tree {
	a.mu.RLock()
	defer a.mu.RUnlock()

	topics := make([]string, 0, len(a.trees))
	for topic := range a.trees {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	out := make([]*tree.Tree, len(topics))
	for i, topic := range topics {
		out[i] = a.trees[topic]
	}
	return out
}

// Tree returns the registered tree for topic.
func (a *Analyzer) Tree(topic string) (*tree.Tree, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	t, ok := a.trees[topic]
	return t, ok
}

func (a *Analyzer) register(t *tree.Tree) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.trees[t.Topic] = t
}

// LoadSheaves reads stored trees into memory. A non-empty filter keeps
// only the named topics.
func (a *Analyzer) LoadSheaves(ctx context.Context, filter []string) ([]*tree.Tree, error) {
	if a.store == nil {
		return nil, fmt.Errorf("load sheaves: no store configured: %w", internalerr.ErrInvalidConfig)
	}
	topics, err := a.store.ListTopics(ctx)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	keep := make(map[string]struct{}, len(filter))
	for _, f := range filter {
		keep[f] = struct{}{}
	}

	var loaded []*tree.Tree
	for _, topic := range topics {
		if len(keep) > 0 {
			if _, ok := keep[topic]; !ok {
				continue
			}
		}
		t, err := a.store.LoadTree(ctx, topic)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", topic, err)
		}
		a.register(t)
		loaded = append(loaded, t)
	}
	a.log.Info("loaded sheaves", "count", len(loaded))
	return loaded, nil
}

func (a *Analyzer) newID() string {
	a.idMu.Lock()
	defer a.idMu.Unlock()
	return ulid.MustNew(ulid.Now(), a.entropy).String()
}
