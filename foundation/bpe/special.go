package bpe

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/dlclark/regexp2"
)

// SpecialPolicy decides what encoding does with special token literals that
// appear in the input text.
type SpecialPolicy int

// Set of special token policies.
const (
	// SpecialAllow encodes a literal as its reserved id.
	SpecialAllow SpecialPolicy = iota

	// SpecialIgnore treats a literal as ordinary text.
	SpecialIgnore

	// SpecialDisallow fails the encode with ErrDisallowedSpecialToken.
	SpecialDisallow
)

// =============================================================================

// specials holds the reserved literals and routes them around the byte pair
// path in both directions.
type specials struct {
	byLiteral map[string]int
	byID      map[int]string
	re        *regexp2.Regexp
}

func newSpecials(tokens map[string]int, vocabSize int) (*specials, error) {
	s := specials{
		byLiteral: make(map[string]int, len(tokens)),
		byID:      make(map[int]string, len(tokens)),
	}

	for literal, id := range tokens {
		switch {
		case literal == "":
			return nil, fmt.Errorf("%w: empty literal", ErrInvalidSpecialToken)

		case id < vocabSize:
			return nil, fmt.Errorf("%w: %q id %d inside vocabulary of size %d", ErrInvalidSpecialToken, literal, id, vocabSize)
		}

		if other, exists := s.byID[id]; exists {
			return nil, fmt.Errorf("%w: %q and %q share id %d", ErrInvalidSpecialToken, literal, other, id)
		}

		s.byLiteral[literal] = id
		s.byID[id] = literal
	}

	if len(s.byLiteral) == 0 {
		return &s, nil
	}

	// Longer literals come first so the alternation prefers the longest
	// literal starting at a position.
	literals := slices.SortedFunc(maps.Keys(s.byLiteral), func(a, b string) int {
		if c := cmp.Compare(len(b), len(a)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})

	alts := make([]string, len(literals))
	for i, literal := range literals {
		alts[i] = regexp2.Escape(literal)
	}

	re, err := regexp2.Compile(strings.Join(alts, "|"), regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("compiling special tokens: %w", err)
	}
	s.re = re

	return &s, nil
}

func (s *specials) len() int {
	return len(s.byLiteral)
}

func (s *specials) minID() (int, bool) {
	if len(s.byID) == 0 {
		return 0, false
	}

	return slices.Min(slices.Collect(maps.Keys(s.byID))), true
}

func (s *specials) literal(id int) (string, bool) {
	literal, exists := s.byID[id]
	return literal, exists
}

func (s *specials) tokens() map[string]int {
	return maps.Clone(s.byLiteral)
}

// piece is either a run of ordinary text or a single special token.
type piece struct {
	text    string
	id      int
	special bool
}

// split cuts text at every special literal. Ordinary runs between literals
// are returned as text pieces.
func (s *specials) split(text string) []piece {
	if s.re == nil {
		return []piece{{text: text}}
	}

	var pieces []piece
	var last int

	for _, sp := range findSpans(s.re, text) {
		if sp.start > last {
			pieces = append(pieces, piece{text: text[last:sp.start]})
		}

		literal := text[sp.start:sp.end]
		pieces = append(pieces, piece{text: literal, id: s.byLiteral[literal], special: true})
		last = sp.end
	}

	if last < len(text) {
		pieces = append(pieces, piece{text: text[last:]})
	}

	return pieces
}
