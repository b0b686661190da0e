package text

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Tokenizer handles text tokenization and normalization.
// It is read-only after construction and safe for concurrent use.
type Tokenizer struct {
	stopwords map[string]struct{}
	stem      bool
}

// NewTokenizer creates a new tokenizer with the given stopword list
func NewTokenizer(stopwords []string) *Tokenizer {
	stops := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		stops[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return &Tokenizer{stopwords: stops}
}

// NewDefaultTokenizer uses DefaultStopwords.
func NewDefaultTokenizer() *Tokenizer {
	return NewTokenizer(DefaultStopwords())
}

// WithStemming returns a copy of t that reduces tokens to their Snowball
// English stem after stopword filtering.
func (t *Tokenizer) WithStemming(stem bool) *Tokenizer {
	cp := &Tokenizer{stopwords: t.stopwords, stem: stem}
	return cp
}

// Lower lowercases text with English casing rules.
func Lower(s string) string {
	// Casers carry state; one per call keeps Tokenizer shareable.
	return cases.Lower(language.English).String(s)
}

// Tokenize splits text into normalized tokens, removing stopwords.
func (t *Tokenizer) Tokenize(text string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		if word := t.processToken(current.String()); word != "" {
			tokens = append(tokens, word)
		}
		current.Reset()
	}

	for _, r := range Lower(text) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '-' {
			current.WriteRune(r)
			continue
		}
		flush()
	}
	flush()

	return tokens
}

// Join tokenizes text and glues the tokens back with single spaces.
func (t *Tokenizer) Join(text string) string {
	return strings.Join(t.Tokenize(text), " ")
}

// IsStopword reports whether word is filtered.
func (t *Tokenizer) IsStopword(word string) bool {
	_, ok := t.stopwords[word]
	return ok
}

func (t *Tokenizer) processToken(token string) string {
	word := strings.Trim(token, "-")
	for strings.Contains(word, "--") {
		word = strings.ReplaceAll(word, "--", "-")
	}
	if len([]rune(word)) <= 1 {
		return ""
	}
	if t.IsStopword(word) {
		return ""
	}
	if t.stem {
		word = english.Stem(word, false)
	}
	return word
}

// DefaultStopwords is the classic English analyzer stop set extended with a
// handful of connectives that dominate encyclopedia prose.
func DefaultStopwords() []string {
	return []string{
		"a", "an", "and", "are", "as", "at", "be", "but", "by", "for", "if",
		"in", "into", "is", "it", "no", "not", "of", "on", "or", "such", "that",
		"the", "their", "then", "there", "these", "they", "this", "to", "was",
		"will", "with",
		"which", "other", "than", "within",
	}
}
