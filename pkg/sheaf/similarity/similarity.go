// Package similarity builds the measures used at inference time: a query
// text is bound once and compared, word by word, against the partitions
// stored in a trained tree.
package similarity

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/cognicore/sheaf/pkg/sheaf/internalerr"
	"github.com/cognicore/sheaf/pkg/sheaf/text"
)

// Threshold is the normalized Levenshtein similarity a word pair needs to
// count as a hit.
const Threshold = 0.8

// Reduction folds the word-pair similarity grid into one score.
type Reduction int

const (
	// MaxAverage sums every pair's hit; the name is historical.
	MaxAverage Reduction = iota
	// MaxMax is 1 when any pair hits.
	MaxMax
	// Average is the hit rate over all pairs.
	Average
)

func (r Reduction) String() string {
	switch r {
	case MaxMax:
		return "max-max"
	case Average:
		return "average"
	default:
		return "max-average"
	}
}

// ParseReduction maps a configured name to a Reduction.
func ParseReduction(s string) (Reduction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "max-average", "max_average":
		return MaxAverage, nil
	case "max-max", "max_max":
		return MaxMax, nil
	case "average":
		return Average, nil
	}
	return MaxAverage, fmt.Errorf("reduction %q: %w", s, internalerr.ErrInvalidConfig)
}

// WordSimilarity is 1 when the normalized Levenshtein similarity of a and
// b reaches Threshold, 0 otherwise.
func WordSimilarity(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	sim := 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
	if sim < Threshold {
		return 0
	}
	return 1
}

// Reduce folds the pairwise similarities of two word lists.
func Reduce(r Reduction, w1, w2 []string) float64 {
	if len(w1) == 0 || len(w2) == 0 {
		return 0
	}
	hits := 0.0
	for _, a := range w1 {
		for _, b := range w2 {
			s := WordSimilarity(a, b)
			if r == MaxMax && s > 0 {
				return 1
			}
			hits += s
		}
	}
	switch r {
	case MaxMax:
		return 0
	case Average:
		return hits / float64(len(w1)*len(w2))
	default:
		return hits
	}
}

// Bind tokenizes query once and returns a measure over partition texts.
func Bind(tok *text.Tokenizer, query string, r Reduction) func(string) float64 {
	words := tok.Tokenize(query)
	return func(partition string) float64 {
		return Reduce(r, words, tok.Tokenize(partition))
	}
}
