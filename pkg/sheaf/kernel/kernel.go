// Package kernel defines the per-level strategies that drive a Sheaf
// descent: a similarity kernel that turns a span of text into a
// distribution over feature names, and a partitioner that splits a span
// into the spans of the next level.
package kernel

import (
	"github.com/cognicore/sheaf/pkg/sheaf/dist"
	"github.com/cognicore/sheaf/pkg/sheaf/text"
)

// Kernel maps a span of text to a normalized feature distribution.
type Kernel interface {
	Similarity(text string) map[string]float64
}

// Partitioner splits a span of text into ordered sub-spans.
type Partitioner interface {
	Split(text string) []string
}

// KernelFunc adapts a plain function to Kernel.
type KernelFunc func(string) map[string]float64

// Similarity implements Kernel.
func (f KernelFunc) Similarity(s string) map[string]float64 { return f(s) }

// PartitionFunc adapts a plain function to Partitioner.
type PartitionFunc func(string) []string

// Split implements Partitioner.
func (f PartitionFunc) Split(s string) []string { return f(s) }

// LetterGram counts letter windows inside each stopped token.
// With Partial set, windows shorter than Window at the token tail are kept.
// With Reversed set, every window is also counted backwards.
type LetterGram struct {
	Tokenizer *text.Tokenizer
	Window    int
	Partial   bool
	Reversed  bool
}

// Similarity implements Kernel.
func (k LetterGram) Similarity(s string) map[string]float64 {
	size := k.Window
	if size <= 0 {
		size = 2
	}
	var grams []string
	for _, tok := range k.Tokenizer.Tokenize(s) {
		for _, w := range windows([]rune(tok), size, k.Partial) {
			grams = append(grams, w)
			if k.Reversed {
				grams = append(grams, reverse(w))
			}
		}
	}
	return dist.Counts(grams)
}

// windows slides a window of size over runes one step at a time.
func windows(runes []rune, size int, partial bool) []string {
	var out []string
	for i := 0; i < len(runes); i++ {
		end := i + size
		if end > len(runes) {
			if !partial {
				break
			}
			end = len(runes)
		}
		out = append(out, string(runes[i:end]))
	}
	return out
}

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

// Unigram is the token frequency distribution.
type Unigram struct {
	Tokenizer *text.Tokenizer
}

// Similarity implements Kernel.
func (k Unigram) Similarity(s string) map[string]float64 {
	return dist.Counts(k.Tokenizer.Tokenize(s))
}

// Bigram counts adjacent token pairs in both orders ("a_b" and "b_a").
type Bigram struct {
	Tokenizer *text.Tokenizer
}

// Similarity implements Kernel.
func (k Bigram) Similarity(s string) map[string]float64 {
	tokens := k.Tokenizer.Tokenize(s)
	var pairs []string
	for i := 0; i+1 < len(tokens); i++ {
		pairs = append(pairs, tokens[i]+"_"+tokens[i+1], tokens[i+1]+"_"+tokens[i])
	}
	return dist.Counts(pairs)
}

// SingleLetter is the raw character distribution of the span.
type SingleLetter struct{}

// Similarity implements Kernel.
func (SingleLetter) Similarity(s string) map[string]float64 {
	chars := make([]string, 0, len(s))
	for _, r := range s {
		chars = append(chars, string(r))
	}
	return dist.Counts(chars)
}
