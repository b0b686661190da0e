package result

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/cognicore/sheaf/pkg/sheaf/dist"
)

// Entry is one topic's weight.
type Entry struct {
	Topic  string
	Weight float64
}

// TopicMixtureResult is an immutable mixture over topic names, ordered by
// name, plus the divergence of the fit that produced it.
type TopicMixtureResult struct {
	entries    []Entry
	index      map[string]int
	divergence float64
}

// New builds a result from weights. Non-finite weights become 0.
func New(weights map[string]float64, divergence float64) TopicMixtureResult {
	names := dist.SortedKeys(weights)
	r := TopicMixtureResult{
		entries:    make([]Entry, len(names)),
		index:      make(map[string]int, len(names)),
		divergence: dist.DefaultWhenNotFinite(divergence, 0),
	}
	for i, n := range names {
		r.entries[i] = Entry{Topic: n, Weight: dist.DefaultWhenNotFinite(weights[n], 0)}
		r.index[n] = i
	}
	return r
}

// Names lists topics in order.
func (r TopicMixtureResult) Names() []string {
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Topic
	}
	return out
}

// Entries returns a copy of the ordered entries.
func (r TopicMixtureResult) Entries() []Entry {
	return append([]Entry(nil), r.entries...)
}

// Weight returns a topic's weight and whether it is present.
func (r TopicMixtureResult) Weight(topic string) (float64, bool) {
	i, ok := r.index[topic]
	if !ok {
		return 0, false
	}
	return r.entries[i].Weight, true
}

// Divergence is the residual divergence carried by the result.
func (r TopicMixtureResult) Divergence() float64 { return r.divergence }

// Len is the number of topics.
func (r TopicMixtureResult) Len() int { return len(r.entries) }

// Map copies the weights into a map.
func (r TopicMixtureResult) Map() map[string]float64 {
	m := make(map[string]float64, len(r.entries))
	for _, e := range r.entries {
		m[e.Topic] = e.Weight
	}
	return m
}

// Normalized returns a copy whose weights sum to 1 (all zero when the
// total is zero).
func (r TopicMixtureResult) Normalized() TopicMixtureResult {
	return New(dist.Normalize(r.Map()), r.divergence)
}

// Ranked returns entries by descending weight, ties by name.
func (r TopicMixtureResult) Ranked() []Entry {
	out := r.Entries()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Weight > out[j].Weight
	})
	return out
}

// Top returns the highest-weighted entry.
func (r TopicMixtureResult) Top() (Entry, bool) {
	if len(r.entries) == 0 {
		return Entry{}, false
	}
	return r.Ranked()[0], true
}

// ManhattanDistance sums absolute weight differences over the union of
// both results' topics.
func (r TopicMixtureResult) ManhattanDistance(other TopicMixtureResult) float64 {
	a, b := r.Map(), other.Map()
	total := 0.0
	for k, v := range a {
		total += math.Abs(v - b[k])
	}
	for k, v := range b {
		if _, ok := a[k]; !ok {
			total += math.Abs(v)
		}
	}
	return total
}

// DeltaSim is the Euclidean distance between the two normalized
// mixtures; smaller means more alike.
func (r TopicMixtureResult) DeltaSim(other TopicMixtureResult) float64 {
	a, b := r.Normalized().Map(), other.Normalized().Map()
	sq := 0.0
	for k, v := range a {
		d := v - b[k]
		sq += d * d
	}
	for k, v := range b {
		if _, ok := a[k]; !ok {
			sq += v * v
		}
	}
	return math.Sqrt(sq)
}

// Report prints one "topic : weight" line per entry, heaviest first.
func (r TopicMixtureResult) Report(w io.Writer) error {
	for _, e := range r.Ranked() {
		if _, err := fmt.Fprintf(w, "%s : %v\n", e.Topic, e.Weight); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "divergence : %v\n", r.divergence)
	return err
}
