package text

import (
	"strings"
	"testing"
)

func TestTokenizerBasic(t *testing.T) {
	tokenizer := NewTokenizer([]string{"the", "a", "and", "of"})

	tokens := tokenizer.Tokenize("The quick brown fox jumps over the lazy dog")

	for _, tok := range tokens {
		if tok == "the" {
			t.Error("Stopword 'the' should be filtered")
		}
	}

	expected := []string{"quick", "brown", "fox", "jumps", "over", "lazy", "dog"}
	if len(tokens) != len(expected) {
		t.Fatalf("Expected %d tokens, got %d: %v", len(expected), len(tokens), tokens)
	}
	for i := range expected {
		if tokens[i] != expected[i] {
			t.Errorf("token %d = %q, want %q", i, tokens[i], expected[i])
		}
	}
}

func TestTokenizerHyphens(t *testing.T) {
	tokenizer := NewTokenizer(nil)

	tokens := tokenizer.Tokenize("--machine-learning and deep--learning")
	joined := strings.Join(tokens, " ")
	if joined != "machine-learning and deep-learning" {
		t.Errorf("unexpected hyphen handling: %q", joined)
	}
}

func TestTokenizerCaseNormalization(t *testing.T) {
	tokenizer := NewTokenizer(nil)

	for _, tok := range tokenizer.Tokenize("BERT Transformer ÉCOLE") {
		if tok != strings.ToLower(tok) {
			t.Errorf("Token %s should be lowercased", tok)
		}
	}
}

func TestTokenizerDropsSingleRunes(t *testing.T) {
	tokens := NewTokenizer(nil).Tokenize("x marks a spot")
	if len(tokens) != 2 || tokens[0] != "marks" || tokens[1] != "spot" {
		t.Errorf("unexpected tokens %v", tokens)
	}
}

func TestDefaultStopwords(t *testing.T) {
	tokenizer := NewDefaultTokenizer()

	if got := tokenizer.Join("bake a cake with the eggs"); got != "bake cake eggs" {
		t.Errorf("Join = %q", got)
	}
	if !tokenizer.IsStopword("within") {
		t.Error("'within' should be a default stopword")
	}
}

func TestStemming(t *testing.T) {
	tokenizer := NewTokenizer(nil).WithStemming(true)

	tokens := tokenizer.Tokenize("running soldiers")
	if len(tokens) != 2 || tokens[0] != "run" || tokens[1] != "soldier" {
		t.Errorf("unexpected stems %v", tokens)
	}
}
