package kernel

import "strings"

// minPieceLen drops fragments like "e.g" remnants and stray initials.
const minPieceLen = 2

// SentenceSplitter splits on periods.
type SentenceSplitter struct{}

// Split implements Partitioner.
func (SentenceSplitter) Split(s string) []string {
	var out []string
	for _, piece := range strings.Split(s, ".") {
		piece = strings.TrimSpace(piece)
		if len(piece) > minPieceLen {
			out = append(out, piece)
		}
	}
	return out
}

// WordSplitter splits on spaces and keeps each distinct word once, in the
// order it first appears.
type WordSplitter struct{}

// Split implements Partitioner.
func (WordSplitter) Split(s string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, w := range strings.Split(s, " ") {
		w = strings.TrimSpace(w)
		if len(w) <= minPieceLen {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// IdentitySplitter returns the span unchanged as its only piece.
type IdentitySplitter struct{}

// Split implements Partitioner.
func (IdentitySplitter) Split(s string) []string {
	return []string{s}
}
