package tiktoken

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"

	"github.com/ardanlabs/bpe/foundation/bpe"
)

// RecoverMerges rebuilds the merge history behind a bytes to rank table, as
// published for the cl100k family of encodings. Ranks must be contiguous and
// every single byte must be present. The returned vocabulary lives in the
// permuted byte domain described by the returned permutation. Nothing is
// returned unless the whole table is consistent.
func RecoverMerges(ranks map[string]int) (*bpe.Vocab, bpe.BytePermutation, error) {
	perm, err := bytePermutation(ranks)
	if err != nil {
		return nil, bpe.BytePermutation{}, err
	}

	type entry struct {
		token []byte
		rank  int
	}

	entries := make([]entry, 0, len(ranks))
	for token, rank := range ranks {
		switch len(token) {
		case 0:
			return nil, bpe.BytePermutation{}, fmt.Errorf("%w: empty token with rank %d", bpe.ErrCorruptVocabulary, rank)
		case 1:
			continue
		}
		entries = append(entries, entry{token: []byte(token), rank: rank})
	}

	slices.SortFunc(entries, func(a, b entry) int {
		return cmp.Compare(a.rank, b.rank)
	})

	vocab := bpe.NewVocab()

	for _, e := range entries {
		if e.rank != vocab.Size() {
			return nil, bpe.BytePermutation{}, fmt.Errorf("%w: rank %d out of sequence, expected %d", bpe.ErrCorruptVocabulary, e.rank, vocab.Size())
		}

		parts := bytePairSplit(e.token, ranks, e.rank)
		if len(parts) != 2 {
			return nil, bpe.BytePermutation{}, fmt.Errorf("%w: rank %d reduces to %d parts", bpe.ErrCorruptVocabulary, e.rank, len(parts))
		}

		pair := bpe.Pair{ranks[string(parts[0])], ranks[string(parts[1])]}
		if err := vocab.Mint(pair, e.rank); err != nil {
			return nil, bpe.BytePermutation{}, fmt.Errorf("%w: rank %d: %w", bpe.ErrCorruptVocabulary, e.rank, err)
		}

		b, _ := vocab.Bytes(e.rank)
		if !bytes.Equal(b, perm.Apply(e.token)) {
			return nil, bpe.BytePermutation{}, fmt.Errorf("%w: rank %d does not rebuild its bytes", bpe.ErrCorruptVocabulary, e.rank)
		}
	}

	return vocab, perm, nil
}

// bytePermutation maps every byte to the rank the table gives it.
func bytePermutation(ranks map[string]int) (bpe.BytePermutation, error) {
	var perm bpe.BytePermutation
	var seen [bpe.NumBytes]bool

	for b := range bpe.NumBytes {
		rank, exists := ranks[string([]byte{byte(b)})]
		switch {
		case !exists:
			return bpe.BytePermutation{}, fmt.Errorf("%w: byte %#02x has no rank", bpe.ErrCorruptVocabulary, b)

		case rank < 0 || rank >= bpe.NumBytes:
			return bpe.BytePermutation{}, fmt.Errorf("%w: byte %#02x has rank %d", bpe.ErrCorruptVocabulary, b, rank)

		case seen[rank]:
			return bpe.BytePermutation{}, fmt.Errorf("%w: rank %d used by more than one byte", bpe.ErrCorruptVocabulary, rank)
		}

		seen[rank] = true
		perm[b] = byte(rank)
	}

	return perm, nil
}
