package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cognicore/sheaf/pkg/sheaf/store"
	"github.com/cognicore/sheaf/pkg/sheaf/tree"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu    sync.RWMutex
	trees map[string]*tree.Tree
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{trees: make(map[string]*tree.Tree)}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveTree stores a deep copy of t after checking it.
func (s *Store) SaveTree(ctx context.Context, t *tree.Tree) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trees[t.Topic] = t.Clone()
	return nil
}

// LoadTree returns a copy of the stored tree.
func (s *Store) LoadTree(ctx context.Context, topic string) (*tree.Tree, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.trees[topic]
	if !ok {
		return nil, fmt.Errorf("tree %q: %w", topic, store.ErrNotFound)
	}
	return t.Clone(), nil
}

// ListTopics returns stored topics in name order.
func (s *Store) ListTopics(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	topics := make([]string, 0, len(s.trees))
	for topic := range s.trees {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics, nil
}
