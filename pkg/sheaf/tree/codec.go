package tree

import (
	"encoding/json"
	"fmt"
	"io"
)

// Encode writes t as JSON.
func Encode(w io.Writer, t *Tree) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	return enc.Encode(t)
}

// Decode reads a tree written by Encode and checks its invariants.
func Decode(r io.Reader) (*Tree, error) {
	var t Tree
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("decode tree: %w", err)
	}
	for i := range t.Nodes {
		if t.Nodes[i].Children == nil {
			t.Nodes[i].Children = make(map[string]Edge)
		}
		if len(t.Nodes[i].Partitions) == 0 {
			t.Nodes[i].Partitions = nil
		}
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}
