package bpe

import (
	"bytes"
	"fmt"
)

// NumBytes is the number of raw byte tokens. Ids below NumBytes are single
// bytes, every id from NumBytes up was minted by a merge.
const NumBytes = 256

// Merge records that Pair was merged into the token ID.
type Merge struct {
	Pair Pair
	ID   int
}

// Vocab is the merge table and the id to bytes table it implies. Both are
// append-only and indexed by contiguous ids, so the position of a merge is
// also its rank.
type Vocab struct {
	tokens [][]byte
	pairs  []Pair
	ranks  map[Pair]int
}

// NewVocab constructs a vocabulary holding only the raw byte tokens.
func NewVocab() *Vocab {
	v := Vocab{
		tokens: make([][]byte, NumBytes),
		ranks:  make(map[Pair]int),
	}

	for i := range NumBytes {
		v.tokens[i] = []byte{byte(i)}
	}

	return &v
}

// Mint registers pair as the new token id. Ids must be minted in order, so
// id has to be the current size of the vocabulary.
func (v *Vocab) Mint(pair Pair, id int) error {
	if id < len(v.tokens) {
		return fmt.Errorf("%w: id %d already exists", ErrDuplicateMerge, id)
	}

	if existing, exists := v.ranks[pair]; exists {
		return fmt.Errorf("%w: pair %v already minted as %d", ErrDuplicateMerge, pair, existing)
	}

	if id > len(v.tokens) {
		return fmt.Errorf("%w: id %d leaves a gap after %d", ErrDuplicateMerge, id, len(v.tokens)-1)
	}

	for _, part := range pair {
		if part < 0 || part >= len(v.tokens) {
			return fmt.Errorf("%w: pair %v references id %d", ErrUnknownToken, pair, part)
		}
	}

	b := make([]byte, 0, len(v.tokens[pair[0]])+len(v.tokens[pair[1]]))
	b = append(b, v.tokens[pair[0]]...)
	b = append(b, v.tokens[pair[1]]...)

	v.tokens = append(v.tokens, b)
	v.pairs = append(v.pairs, pair)
	v.ranks[pair] = id

	return nil
}

// Rank returns the id the pair was merged into, which doubles as its
// priority. Lower ranks were learned earlier.
func (v *Vocab) Rank(pair Pair) (int, bool) {
	id, exists := v.ranks[pair]
	return id, exists
}

// Bytes returns a copy of the bytes for the specified id.
func (v *Vocab) Bytes(id int) ([]byte, error) {
	b, err := v.bytes(id)
	if err != nil {
		return nil, err
	}

	return bytes.Clone(b), nil
}

func (v *Vocab) bytes(id int) ([]byte, error) {
	if id < 0 || id >= len(v.tokens) {
		return nil, fmt.Errorf("%w: id %d, vocabulary size %d", ErrUnknownToken, id, len(v.tokens))
	}

	return v.tokens[id], nil
}

// Size returns the number of ids in the vocabulary, raw bytes included.
func (v *Vocab) Size() int {
	return len(v.tokens)
}

// MergeFor returns the pair that produced id. Raw bytes have no pair.
func (v *Vocab) MergeFor(id int) (Pair, bool) {
	if id < NumBytes || id >= len(v.tokens) {
		return Pair{}, false
	}

	return v.pairs[id-NumBytes], true
}

// Merges returns every merge in the order it was learned.
func (v *Vocab) Merges() []Merge {
	merges := make([]Merge, len(v.pairs))
	for i, pair := range v.pairs {
		merges[i] = Merge{Pair: pair, ID: NumBytes + i}
	}

	return merges
}

// Ranks exports the vocabulary as a table of token bytes to rank, the same
// shape an external pretrained vocabulary is distributed in. If two ids
// share the same bytes the lower id is kept.
func (v *Vocab) Ranks() map[string]int {
	ranks := make(map[string]int, len(v.tokens))
	for id := len(v.tokens) - 1; id >= 0; id-- {
		ranks[string(v.tokens[id])] = id
	}

	return ranks
}

// Equal reports whether both vocabularies hold the same merges.
func (v *Vocab) Equal(o *Vocab) bool {
	if len(v.pairs) != len(o.pairs) {
		return false
	}

	for i := range v.pairs {
		if v.pairs[i] != o.pairs[i] {
			return false
		}
	}

	return true
}
