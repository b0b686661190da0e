// Package filestore keeps each trained tree as a JSON file inside a
// directory named after its topic:
//
//	<root>/<topic>/sheaf.json
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cognicore/sheaf/pkg/sheaf/internalerr"
	"github.com/cognicore/sheaf/pkg/sheaf/store"
	"github.com/cognicore/sheaf/pkg/sheaf/tree"
)

// FileName is the tree file inside each topic directory.
const FileName = "sheaf.json"

type fileStore struct {
	root string
}

// Open returns a store rooted at dir, creating it if needed.
func Open(dir string) (store.Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir %s: %w", dir, err)
	}
	return &fileStore{root: dir}, nil
}

func (s *fileStore) Close() error { return nil }

func (s *fileStore) topicDir(topic string) (string, error) {
	if topic == "" || topic == "." || topic == ".." || strings.ContainsAny(topic, `/\`) {
		return "", fmt.Errorf("topic %q is not a valid directory name: %w", topic, internalerr.ErrInvalidInput)
	}
	return filepath.Join(s.root, topic), nil
}

// SaveTree writes to a temp file and renames it over the previous tree.
func (s *fileStore) SaveTree(ctx context.Context, t *tree.Tree) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := t.Validate(); err != nil {
		return err
	}
	dir, err := s.topicDir(t.Topic)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create topic dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, FileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := tree.Encode(tmp, t); err != nil {
		return fmt.Errorf("encode tree %q: %w", t.Topic, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, FileName)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename tree file: %w", err)
	}
	committed = true
	return nil
}

func (s *fileStore) LoadTree(ctx context.Context, topic string) (*tree.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir, err := s.topicDir(topic)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, FileName)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("tree %q: %w", topic, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	t, err := tree.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return t, nil
}

// ListTopics returns the topic directories that hold a tree file.
func (s *fileStore) ListTopics(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read store dir %s: %w", s.root, err)
	}
	var topics []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.root, e.Name(), FileName)); err == nil {
			topics = append(topics, e.Name())
		}
	}
	sort.Strings(topics)
	return topics, nil
}
