// Package storetest holds the behavior every store.Store backend shares.
package storetest

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/cognicore/sheaf/pkg/sheaf/store"
	"github.com/cognicore/sheaf/pkg/sheaf/tree"
)

// SampleTree builds a three-level tree with a recorded gap.
func SampleTree(topic string) *tree.Tree {
	t := tree.NewTree(topic, []string{"bake cake frost", "fry egg pan"}, tree.DefaultDivergence)
	t.ID = "01HZX3J6Q4M7N8P9R0S1T2V3W4"
	a := t.AddChild(t.Root(), topic+"_0", []string{"bake", "cake", "frost"}, 0.25, 0.6)
	t.AddChild(t.Root(), topic+"_1", []string{"fry", "egg", "pan"}, 0.25, 0.4)
	t.AddChild(a, topic+"_0_0", nil, 0.125, 1)
	t.Gaps = []tree.Gap{{Node: topic + "_0_0", Cover: topic + "_0", Depth: 2}}
	return t
}

// Run exercises a backend. open must return an empty store.
func Run(t *testing.T, open func(t *testing.T) store.Store) {
	ctx := context.Background()

	t.Run("RoundTrip", func(t *testing.T) {
		st := open(t)
		defer st.Close()

		want := SampleTree("Cooking")
		if err := st.SaveTree(ctx, want); err != nil {
			t.Fatalf("SaveTree: %v", err)
		}
		got, err := st.LoadTree(ctx, "Cooking")
		if err != nil {
			t.Fatalf("LoadTree: %v", err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
		}
	})

	t.Run("Replace", func(t *testing.T) {
		st := open(t)
		defer st.Close()

		if err := st.SaveTree(ctx, SampleTree("Cooking")); err != nil {
			t.Fatalf("SaveTree: %v", err)
		}
		small := tree.NewTree("Cooking", []string{"boil water"}, tree.DefaultDivergence)
		small.ID = "01HZX3J6Q4M7N8P9R0S1T2V3W5"
		if err := st.SaveTree(ctx, small); err != nil {
			t.Fatalf("SaveTree replace: %v", err)
		}
		got, err := st.LoadTree(ctx, "Cooking")
		if err != nil {
			t.Fatalf("LoadTree: %v", err)
		}
		if len(got.Nodes) != 1 || got.ID != small.ID {
			t.Errorf("expected replaced tree, got %+v", got)
		}
	})

	t.Run("ListTopics", func(t *testing.T) {
		st := open(t)
		defer st.Close()

		ids := map[string]string{
			"Warfare": "01HZX3J6Q4M7N8P9R0S1T2V3W6",
			"Cooking": "01HZX3J6Q4M7N8P9R0S1T2V3W7",
		}
		for _, topic := range []string{"Warfare", "Cooking"} {
			tr := SampleTree(topic)
			tr.ID = ids[topic]
			if err := st.SaveTree(ctx, tr); err != nil {
				t.Fatalf("SaveTree %s: %v", topic, err)
			}
		}
		topics, err := st.ListTopics(ctx)
		if err != nil {
			t.Fatalf("ListTopics: %v", err)
		}
		if !reflect.DeepEqual(topics, []string{"Cooking", "Warfare"}) {
			t.Errorf("topics = %v", topics)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		st := open(t)
		defer st.Close()

		if _, err := st.LoadTree(ctx, "Missing"); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("RejectsInvalidTree", func(t *testing.T) {
		st := open(t)
		defer st.Close()

		bad := SampleTree("Broken")
		bad.Nodes[0].Children["Broken_0"] = tree.Edge{Child: 1, Weight: 0}
		if err := st.SaveTree(ctx, bad); err == nil {
			t.Error("expected a zero-weight edge to be rejected")
		}
	})
}
