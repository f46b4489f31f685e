// Package bpe implements a byte level byte pair encoding tokenizer. It can
// learn a vocabulary from a corpus, or take a merge table recovered from a
// pretrained vocabulary, and uses it to map text to token ids and back.
//
// A Tokenizer is configured once at construction. Training replaces its
// vocabulary and must not run while other goroutines encode or decode with
// the same value. Once trained, Encode and Decode only read and are safe to
// call concurrently.
package bpe

import (
	"fmt"
	"maps"

	"github.com/ardanlabs/bpe/foundation/logger"
)

// Option represents a function that configures a Tokenizer.
type Option func(cfg *config)

type config struct {
	pattern       *Pattern
	specialTokens map[string]int
	policy        SpecialPolicy
	vocab         *Vocab
	perm          *BytePermutation
	log           logger.Logger
}

// WithPattern splits text with the pattern before byte pair encoding. Without
// a pattern the whole text is a single chunk.
func WithPattern(pattern Pattern) Option {
	return func(cfg *config) {
		cfg.pattern = &pattern
	}
}

// WithSpecialTokens registers reserved literals and their ids.
func WithSpecialTokens(tokens map[string]int) Option {
	return func(cfg *config) {
		cfg.specialTokens = maps.Clone(tokens)
	}
}

// WithSpecialPolicy sets what Encode does with special literals in the text.
func WithSpecialPolicy(policy SpecialPolicy) Option {
	return func(cfg *config) {
		cfg.policy = policy
	}
}

// WithMergeTable installs a vocabulary built elsewhere, such as one
// recovered from a pretrained rank table, in place of training.
func WithMergeTable(vocab *Vocab) Option {
	return func(cfg *config) {
		cfg.vocab = vocab
	}
}

// WithBytePermutation permutes raw bytes before encoding and restores them
// after decoding.
func WithBytePermutation(perm BytePermutation) Option {
	return func(cfg *config) {
		cfg.perm = &perm
	}
}

// WithLogger sets the logger that observes training progress.
func WithLogger(log logger.Logger) Option {
	return func(cfg *config) {
		cfg.log = log
	}
}

// =============================================================================

// Tokenizer encodes text to token ids and decodes them back.
type Tokenizer struct {
	log       logger.Logger
	vocab     *Vocab
	segmenter *Segmenter
	specials  *specials
	policy    SpecialPolicy
	perm      BytePermutation
	inverse   BytePermutation
}

// New constructs a Tokenizer. Without WithMergeTable it starts with the raw
// byte vocabulary and is expected to be trained.
func New(options ...Option) (*Tokenizer, error) {
	cfg := config{
		log: logger.Noop,
	}

	for _, option := range options {
		option(&cfg)
	}

	tkn := Tokenizer{
		log:    cfg.log,
		vocab:  cfg.vocab,
		policy: cfg.policy,
		perm:   IdentityPermutation(),
	}

	if tkn.vocab == nil {
		tkn.vocab = NewVocab()
	}

	if cfg.perm != nil {
		tkn.perm = *cfg.perm
	}
	tkn.inverse = tkn.perm.Inverse()

	if cfg.pattern != nil {
		seg, err := NewSegmenter(*cfg.pattern)
		if err != nil {
			return nil, fmt.Errorf("new segmenter: %w", err)
		}
		tkn.segmenter = seg
	}

	sp, err := newSpecials(cfg.specialTokens, tkn.vocab.Size())
	if err != nil {
		return nil, fmt.Errorf("special tokens: %w", err)
	}
	tkn.specials = sp

	return &tkn, nil
}

// RegisterSpecialTokens adds reserved literals to the tokenizer. Like the
// rest of the configuration it must happen before the tokenizer is shared.
func (tkn *Tokenizer) RegisterSpecialTokens(tokens map[string]int) error {
	all := tkn.specials.tokens()

	for literal, id := range tokens {
		if existing, exists := all[literal]; exists && existing != id {
			return fmt.Errorf("%w: %q already registered as %d", ErrInvalidSpecialToken, literal, existing)
		}
		all[literal] = id
	}

	sp, err := newSpecials(all, tkn.vocab.Size())
	if err != nil {
		return fmt.Errorf("special tokens: %w", err)
	}
	tkn.specials = sp

	return nil
}

// Vocab returns the vocabulary in use.
func (tkn *Tokenizer) Vocab() *Vocab {
	return tkn.vocab
}

// SpecialTokens returns a copy of the registered special tokens.
func (tkn *Tokenizer) SpecialTokens() map[string]int {
	return tkn.specials.tokens()
}

// Permutation returns the byte permutation applied before encoding.
func (tkn *Tokenizer) Permutation() BytePermutation {
	return tkn.perm
}

// Segmenter returns the segmenter in use, or nil when text is not split.
func (tkn *Tokenizer) Segmenter() *Segmenter {
	return tkn.segmenter
}

// Size returns the number of ids the tokenizer can produce, counting the
// special tokens.
func (tkn *Tokenizer) Size() int {
	return tkn.vocab.Size() + tkn.specials.len()
}
