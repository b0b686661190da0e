package store

import (
	"context"

	"github.com/cognicore/sheaf/pkg/sheaf/internalerr"
	"github.com/cognicore/sheaf/pkg/sheaf/tree"
)

// ErrNotFound is returned by LoadTree for an unknown topic.
var ErrNotFound = internalerr.ErrNotFound

// Store persists trained trees, one per top-level topic
type Store interface {
	Close() error

	// SaveTree replaces any tree stored for t.Topic.
	SaveTree(ctx context.Context, t *tree.Tree) error
	// LoadTree returns the tree stored for topic, or ErrNotFound.
	LoadTree(ctx context.Context, topic string) (*tree.Tree, error)
	// ListTopics returns stored topics in name order.
	ListTopics(ctx context.Context) ([]string, error)
}
