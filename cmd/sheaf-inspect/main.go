package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/cognicore/sheaf/internal/cli"
	"github.com/cognicore/sheaf/pkg/sheaf/tree"
)

func main() {
	var (
		storePath = flag.String("store", "", "Store path (required)")
		backend   = flag.String("backend", cli.BackendFile, "Store backend: file or sqlite")
		topic     = flag.String("topic", "", "Topic to inspect (default: list topics)")
		layer     = flag.Int("layer", -1, "Print the partitions of this layer with their branch weight")
		dump      = flag.Bool("json", false, "Dump the whole tree as JSON")
	)
	flag.Parse()

	if *storePath == "" {
		log.Fatal("--store required")
	}

	ctx := context.Background()
	st, err := cli.OpenStore(ctx, *backend, *storePath)
	if err != nil {
		log.Fatal("Failed to open store:", err)
	}
	defer st.Close()

	if *topic == "" {
		topics, err := st.ListTopics(ctx)
		if err != nil {
			log.Fatal("Failed to list topics:", err)
		}
		for _, name := range topics {
			t, err := st.LoadTree(ctx, name)
			if err != nil {
				log.Printf("%s: %v", name, err)
				continue
			}
			s := t.Stats()
			fmt.Printf("%-24s nodes=%d leaves=%d depth=%d gaps=%d\n", name, s.Nodes, s.Leaves, s.MaxDepth, s.Gaps)
		}
		return
	}

	t, err := st.LoadTree(ctx, *topic)
	if err != nil {
		log.Fatal("Failed to load tree:", err)
	}

	switch {
	case *dump:
		if err := tree.Encode(os.Stdout, t); err != nil {
			log.Fatal(err)
		}
	case *layer >= 0:
		printLayer(os.Stdout, t, *layer)
	default:
		printTree(os.Stdout, t)
	}
}

// printLayer lists each node of a layer with the weight its cover gave it.
func printLayer(w io.Writer, t *tree.Tree, depth int) {
	for _, id := range t.RetrieveLayer(depth) {
		n := t.Node(id)
		weight := "-"
		if parent := t.Parent(id); parent != nil {
			weight = fmt.Sprintf("%.6f", parent.Children[n.Name].Weight)
		}
		fmt.Fprintf(w, "%s:\n\t%s\n\t%s\n\n", n.Name, strings.Join(n.Partitions, " | "), weight)
	}
}

func printTree(w io.Writer, t *tree.Tree) {
	t.Walk(func(n *tree.Node, depth int) {
		weight := 1.0
		if parent := t.Node(n.Cover); parent != nil {
			weight = parent.Children[n.Name].Weight
		}
		fmt.Fprintf(w, "%s%s (%.4f, %d partitions)\n", strings.Repeat("  ", depth), n.Name, weight, len(n.Partitions))
	})
	for _, g := range t.Gaps {
		fmt.Fprintf(w, "gap: %v\n", g.Err())
	}
}
