// Package tiktoken loads published rank tables into the byte pair engine by
// recovering the merges that produced them.
package tiktoken

import (
	"fmt"

	"github.com/ardanlabs/bpe/foundation/bpe"
)

// Tiktoken is a tokenizer built from a published encoding.
type Tiktoken struct {
	name string
	tkn  *bpe.Tokenizer
}

// NewTiktoken recovers the merges of the encoding and wraps them in a
// tokenizer. Extra options are applied after the ones taken from the
// encoding.
func NewTiktoken(enc Encoding, options ...bpe.Option) (*Tiktoken, error) {
	vocab, perm, err := RecoverMerges(enc.MergeableRanks)
	if err != nil {
		return nil, fmt.Errorf("recover merges: %w", err)
	}

	opts := []bpe.Option{
		bpe.WithPattern(enc.Pattern),
		bpe.WithMergeTable(vocab),
		bpe.WithBytePermutation(perm),
		bpe.WithSpecialTokens(enc.SpecialTokens),
	}

	tkn, err := bpe.New(append(opts, options...)...)
	if err != nil {
		return nil, fmt.Errorf("new tokenizer: %w", err)
	}

	tt := Tiktoken{
		name: enc.Name,
		tkn:  tkn,
	}

	return &tt, nil
}

// Name returns the name of the encoding.
func (t *Tiktoken) Name() string {
	return t.name
}

// TokenCount returns the number of tokens the text encodes to.
func (t *Tiktoken) TokenCount(text string) (int, error) {
	tokens, err := t.tkn.Encode(text)
	if err != nil {
		return 0, fmt.Errorf("token count: %w", err)
	}

	return len(tokens), nil
}

// Encode converts text into ids.
func (t *Tiktoken) Encode(text string) ([]int, error) {
	return t.tkn.Encode(text)
}

// Decode converts ids back into text.
func (t *Tiktoken) Decode(ids []int) (string, error) {
	return t.tkn.Decode(ids)
}

// Tokenizer returns the underlying tokenizer.
func (t *Tiktoken) Tokenizer() *bpe.Tokenizer {
	return t.tkn
}
