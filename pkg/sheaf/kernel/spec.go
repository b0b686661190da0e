package kernel

import (
	"fmt"

	"github.com/cognicore/sheaf/pkg/sheaf/internalerr"
	"github.com/cognicore/sheaf/pkg/sheaf/text"
)

// Level is one step of a descent: the kernel that scores a node's
// partitions and the partitioner that produces its children's partitions.
type Level struct {
	Kernel      Kernel
	Partitioner Partitioner
}

// Spec is the ordered list of levels for a training run. Its length is
// the maximum depth of any tree trained with it.
type Spec []Level

// Tail drops the first level.
func (s Spec) Tail() Spec {
	if len(s) == 0 {
		return nil
	}
	return s[1:]
}

// DefaultSpec decomposes paragraphs into sentences, sentences into
// words and words into themselves, scoring every level with letter
// bigrams.
func DefaultSpec(tok *text.Tokenizer) Spec {
	grams := LetterGram{Tokenizer: tok, Window: 2}
	return Spec{
		{Kernel: grams, Partitioner: SentenceSplitter{}},
		{Kernel: grams, Partitioner: WordSplitter{}},
		{Kernel: grams, Partitioner: IdentitySplitter{}},
	}
}

// KernelOptions parameterizes kernels looked up by name.
type KernelOptions struct {
	Window  int
	Partial bool
}

// Kernel names accepted by KernelByName.
const (
	KernelLetterGram         = "letter-gram"
	KernelLetterGramReversed = "letter-gram-reversed"
	KernelUnigram            = "unigram"
	KernelBigram             = "bigram"
	KernelSingleLetter       = "single-letter"
)

// Partitioner names accepted by PartitionerByName.
const (
	PartitionSentence = "sentence"
	PartitionWord     = "word"
	PartitionIdentity = "identity"
)

// KernelByName resolves a configured kernel name.
func KernelByName(name string, tok *text.Tokenizer, opts KernelOptions) (Kernel, error) {
	switch name {
	case KernelLetterGram, "":
		return LetterGram{Tokenizer: tok, Window: opts.Window, Partial: opts.Partial}, nil
	case KernelLetterGramReversed:
		return LetterGram{Tokenizer: tok, Window: opts.Window, Partial: opts.Partial, Reversed: true}, nil
	case KernelUnigram:
		return Unigram{Tokenizer: tok}, nil
	case KernelBigram:
		return Bigram{Tokenizer: tok}, nil
	case KernelSingleLetter:
		return SingleLetter{}, nil
	}
	return nil, fmt.Errorf("kernel %q: %w", name, internalerr.ErrInvalidConfig)
}

// PartitionerByName resolves a configured partitioner name.
func PartitionerByName(name string) (Partitioner, error) {
	switch name {
	case PartitionSentence:
		return SentenceSplitter{}, nil
	case PartitionWord:
		return WordSplitter{}, nil
	case PartitionIdentity, "":
		return IdentitySplitter{}, nil
	}
	return nil, fmt.Errorf("partition %q: %w", name, internalerr.ErrInvalidConfig)
}
