// Package tree holds the Sheaf: a recursive decomposition of a topic's
// text into weighted sub-spans.
//
// Nodes live in an arena owned by Tree and refer to each other by NodeID.
// A node's Cover is a lookup-only link to its parent; its Children map
// names to owned child ids and the weight the fitter gave them. Trees
// are built top-down by a Trainer and are read-only afterwards.
package tree

import (
	"fmt"
	"math"
	"sort"

	"github.com/cognicore/sheaf/pkg/sheaf/dist"
	"github.com/cognicore/sheaf/pkg/sheaf/internalerr"
)

// NodeID indexes Tree.Nodes.
type NodeID int

// NoNode is the Cover of a root.
const NoNode NodeID = -1

// DefaultDivergence is the residual divergence carried by a fresh root.
const DefaultDivergence = 1.0

// Edge is a weighted link to an owned child.
type Edge struct {
	Child  NodeID  `json:"child"`
	Weight float64 `json:"weight"`
}

// Node is one Sheaf.
type Node struct {
	ID         NodeID          `json:"id"`
	Name       string          `json:"name"`
	Partitions []string        `json:"partitions"`
	Divergence float64         `json:"divergence"`
	Cover      NodeID          `json:"cover"`
	Children   map[string]Edge `json:"children,omitempty"`
}

// Gap records a node that had to split further but had nothing to split.
type Gap struct {
	Node  string `json:"node"`
	Cover string `json:"cover,omitempty"`
	Depth int    `json:"depth"`
}

// Err describes the gap as an error wrapping internalerr.ErrDecompositionGap.
func (g Gap) Err() error {
	if g.Cover == "" {
		return fmt.Errorf("%s at depth %d: %w", g.Node, g.Depth, internalerr.ErrDecompositionGap)
	}
	return fmt.Errorf("%s under %s at depth %d: %w", g.Node, g.Cover, g.Depth, internalerr.ErrDecompositionGap)
}

// Tree is the arena for one top-level topic. Nodes[0] is the root.
type Tree struct {
	ID    string `json:"id,omitempty"`
	Topic string `json:"topic"`
	Nodes []Node `json:"nodes"`
	Gaps  []Gap  `json:"gaps,omitempty"`
}

// NewTree creates a tree holding only its root.
func NewTree(topic string, partitions []string, divergence float64) *Tree {
	t := &Tree{Topic: topic}
	t.add(topic, partitions, divergence, NoNode)
	return t
}

// add appends a node and returns its id. Pointers into Nodes are invalid
// after add.
func (t *Tree) add(name string, partitions []string, divergence float64, cover NodeID) NodeID {
	id := NodeID(len(t.Nodes))
	if len(partitions) == 0 {
		partitions = nil
	}
	t.Nodes = append(t.Nodes, Node{
		ID:         id,
		Name:       name,
		Partitions: partitions,
		Divergence: divergence,
		Cover:      cover,
		Children:   make(map[string]Edge),
	})
	return id
}

// AddChild attaches a new node under parent with the given branch weight.
func (t *Tree) AddChild(parent NodeID, name string, partitions []string, divergence, weight float64) NodeID {
	id := t.add(name, partitions, divergence, parent)
	t.Nodes[parent].Children[name] = Edge{Child: id, Weight: weight}
	return id
}

// Root is always node 0.
func (t *Tree) Root() NodeID { return 0 }

// Node returns the node for id, or nil when id is out of range.
func (t *Tree) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(t.Nodes) {
		return nil
	}
	return &t.Nodes[id]
}

// Parent returns the cover of id, or nil at the root.
func (t *Tree) Parent(id NodeID) *Node {
	n := t.Node(id)
	if n == nil {
		return nil
	}
	return t.Node(n.Cover)
}

// Depth counts the covers above id.
func (t *Tree) Depth(id NodeID) int {
	d := 0
	for n := t.Node(id); n != nil && n.Cover != NoNode; n = t.Node(n.Cover) {
		d++
	}
	return d
}

// ChildNames returns the names of id's children in sorted order.
func (t *Tree) ChildNames(id NodeID) []string {
	n := t.Node(id)
	if n == nil {
		return nil
	}
	names := make([]string, 0, len(n.Children))
	for name := range n.Children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Walk visits nodes depth-first, parents before children, siblings in
// name order.
func (t *Tree) Walk(fn func(n *Node, depth int)) {
	if len(t.Nodes) == 0 {
		return
	}
	var visit func(id NodeID, depth int)
	visit = func(id NodeID, depth int) {
		fn(t.Node(id), depth)
		n := t.Node(id)
		for _, name := range t.ChildNames(id) {
			visit(n.Children[name].Child, depth+1)
		}
	}
	visit(t.Root(), 0)
}

// RetrieveLayer returns the nodes exactly depth levels below the root.
func (t *Tree) RetrieveLayer(depth int) []NodeID {
	var out []NodeID
	t.Walk(func(n *Node, d int) {
		if d == depth {
			out = append(out, n.ID)
		}
	})
	return out
}

// Stats summarizes a tree's shape.
type Stats struct {
	Nodes    int
	Leaves   int
	MaxDepth int
	Gaps     int
}

// Stats computes shape statistics.
func (t *Tree) Stats() Stats {
	s := Stats{Gaps: len(t.Gaps)}
	t.Walk(func(n *Node, d int) {
		s.Nodes++
		if len(n.Children) == 0 {
			s.Leaves++
		}
		if d > s.MaxDepth {
			s.MaxDepth = d
		}
	})
	return s
}

// Validate checks arena invariants: a single root, consistent cover
// links, strictly positive finite weights and every node reachable once.
func (t *Tree) Validate() error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("tree %q has no nodes: %w", t.Topic, internalerr.ErrInvalidInput)
	}
	if t.Nodes[0].Cover != NoNode {
		return fmt.Errorf("tree %q: root has a cover: %w", t.Topic, internalerr.ErrInvalidInput)
	}
	seen := make([]bool, len(t.Nodes))
	seen[0] = true
	for i, n := range t.Nodes {
		if n.ID != NodeID(i) {
			return fmt.Errorf("tree %q: node %d has id %d: %w", t.Topic, i, n.ID, internalerr.ErrInvalidInput)
		}
		for name, e := range n.Children {
			child := t.Node(e.Child)
			if child == nil {
				return fmt.Errorf("tree %q: %s points at missing node %d: %w", t.Topic, n.Name, e.Child, internalerr.ErrInvalidInput)
			}
			if seen[e.Child] {
				return fmt.Errorf("tree %q: node %d reachable twice: %w", t.Topic, e.Child, internalerr.ErrInvalidInput)
			}
			seen[e.Child] = true
			if child.Cover != n.ID || child.Name != name {
				return fmt.Errorf("tree %q: child %s does not link back to %s: %w", t.Topic, name, n.Name, internalerr.ErrInvalidInput)
			}
			if !(e.Weight > 0) || math.IsInf(e.Weight, 0) {
				return fmt.Errorf("tree %q: child %s has weight %v: %w", t.Topic, name, e.Weight, internalerr.ErrInvalidInput)
			}
		}
	}
	for i, ok := range seen {
		if !ok {
			return fmt.Errorf("tree %q: node %d is orphaned: %w", t.Topic, i, internalerr.ErrInvalidInput)
		}
	}
	return nil
}

// Clone returns a deep copy.
func (t *Tree) Clone() *Tree {
	cp := &Tree{ID: t.ID, Topic: t.Topic}
	cp.Nodes = make([]Node, len(t.Nodes))
	for i, n := range t.Nodes {
		if len(n.Partitions) > 0 {
			n.Partitions = append([]string(nil), n.Partitions...)
		} else {
			n.Partitions = nil
		}
		children := make(map[string]Edge, len(n.Children))
		for k, v := range n.Children {
			children[k] = v
		}
		n.Children = children
		cp.Nodes[i] = n
	}
	cp.Gaps = append([]Gap(nil), t.Gaps...)
	return cp
}

// MeasurePartitions averages sim over the node's partitions; a node with
// no partitions measures 0.
func (t *Tree) MeasurePartitions(id NodeID, sim func(string) float64) float64 {
	n := t.Node(id)
	if n == nil {
		return 0
	}
	vals := make([]float64, len(n.Partitions))
	for i, p := range n.Partitions {
		vals[i] = sim(p)
	}
	return dist.Average(vals)
}

// TransferDown pushes a similarity measure from depth levels below id up
// through the stored branch weights. A node whose weighted total falls
// below 1/len(partitions) contributes nothing.
func (t *Tree) TransferDown(id NodeID, depth int, sim func(string) float64) float64 {
	if depth <= 0 {
		return t.MeasurePartitions(id, sim)
	}
	n := t.Node(id)
	if n == nil {
		return 0
	}
	total := 0.0
	for _, name := range t.ChildNames(id) {
		e := n.Children[name]
		total += t.TransferDown(e.Child, depth-1, sim) * e.Weight
	}
	total = dist.DefaultWhenNotFinite(total, 0)
	if total < 1/float64(max(1, len(n.Partitions))) {
		return 0
	}
	return total
}

// TransferMeasure measures id's own partitions and scales the result by
// every branch weight on the way up to the root. It returns the root's
// name with the scaled measure.
func (t *Tree) TransferMeasure(id NodeID, sim func(string) float64) (string, float64) {
	n := t.Node(id)
	if n == nil {
		return "", 0
	}
	measure := t.MeasurePartitions(id, sim)
	for n.Cover != NoNode {
		parent := t.Node(n.Cover)
		measure *= parent.Children[n.Name].Weight
		n = parent
	}
	return n.Name, measure
}
