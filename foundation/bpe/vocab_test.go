package bpe_test

import (
	"errors"
	"testing"

	"github.com/ardanlabs/bpe/foundation/bpe"
)

func TestNewVocab(t *testing.T) {
	v := bpe.NewVocab()

	if v.Size() != bpe.NumBytes {
		t.Fatalf("got size %d, exp %d", v.Size(), bpe.NumBytes)
	}

	for id := range bpe.NumBytes {
		b, err := v.Bytes(id)
		if err != nil {
			t.Fatalf("bytes %d: %v", id, err)
		}

		if len(b) != 1 || b[0] != byte(id) {
			t.Fatalf("id %d: got %v", id, b)
		}
	}
}

func TestMint(t *testing.T) {
	v := bpe.NewVocab()

	if err := v.Mint(bpe.Pair{'a', 'a'}, 256); err != nil {
		t.Fatalf("mint: %v", err)
	}

	if err := v.Mint(bpe.Pair{256, 'b'}, 257); err != nil {
		t.Fatalf("mint: %v", err)
	}

	b, err := v.Bytes(257)
	if err != nil {
		t.Fatalf("bytes: %v", err)
	}

	if string(b) != "aab" {
		t.Fatalf("got %q, exp %q", b, "aab")
	}

	rank, exists := v.Rank(bpe.Pair{256, 'b'})
	if !exists || rank != 257 {
		t.Fatalf("got rank %d/%v, exp 257", rank, exists)
	}

	if _, exists := v.Rank(bpe.Pair{'b', 'a'}); exists {
		t.Fatal("unexpected rank for unmerged pair")
	}

	pair, exists := v.MergeFor(257)
	if !exists || pair != (bpe.Pair{256, 'b'}) {
		t.Fatalf("got pair %v/%v", pair, exists)
	}

	if _, exists := v.MergeFor('a'); exists {
		t.Fatal("raw byte should have no merge")
	}
}

func TestMintErrors(t *testing.T) {
	tests := []struct {
		name string
		pair bpe.Pair
		id   int
		err  error
	}{
		{"existing id", bpe.Pair{'x', 'y'}, 256, bpe.ErrDuplicateMerge},
		{"raw byte id", bpe.Pair{'x', 'y'}, 65, bpe.ErrDuplicateMerge},
		{"existing pair", bpe.Pair{'a', 'a'}, 257, bpe.ErrDuplicateMerge},
		{"gap", bpe.Pair{'x', 'y'}, 300, bpe.ErrDuplicateMerge},
		{"unknown member", bpe.Pair{'x', 400}, 257, bpe.ErrUnknownToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := bpe.NewVocab()
			if err := v.Mint(bpe.Pair{'a', 'a'}, 256); err != nil {
				t.Fatalf("mint: %v", err)
			}

			err := v.Mint(tt.pair, tt.id)
			if !errors.Is(err, tt.err) {
				t.Fatalf("got %v, exp %v", err, tt.err)
			}

			if v.Size() != 257 {
				t.Fatalf("failed mint changed size to %d", v.Size())
			}
		})
	}
}

func TestBytesUnknown(t *testing.T) {
	v := bpe.NewVocab()

	for _, id := range []int{-1, 256, 9999} {
		if _, err := v.Bytes(id); !errors.Is(err, bpe.ErrUnknownToken) {
			t.Fatalf("id %d: got %v, exp %v", id, err, bpe.ErrUnknownToken)
		}
	}
}

func TestBytesIsCopy(t *testing.T) {
	v := bpe.NewVocab()

	b, _ := v.Bytes('a')
	b[0] = 'z'

	b, _ = v.Bytes('a')
	if b[0] != 'a' {
		t.Fatal("vocabulary was mutated through returned bytes")
	}
}

func TestRanks(t *testing.T) {
	v := bpe.NewVocab()
	v.Mint(bpe.Pair{'h', 'i'}, 256)

	ranks := v.Ranks()

	if len(ranks) != 257 {
		t.Fatalf("got %d ranks, exp 257", len(ranks))
	}

	if ranks["hi"] != 256 || ranks["h"] != 'h' {
		t.Fatalf("unexpected ranks: hi=%d h=%d", ranks["hi"], ranks["h"])
	}
}
