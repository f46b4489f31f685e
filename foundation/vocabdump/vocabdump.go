// Package vocabdump writes a human readable listing of a tokenizer's
// vocabulary.
package vocabdump

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/ardanlabs/bpe/foundation/bpe"
)

// Write lists every token of the tokenizer in id order. Merged tokens show
// the pair they were built from, raw bytes and special tokens show only
// themselves. Bytes are shown as they appear in text, with any byte
// permutation undone.
func Write(w io.Writer, tkn *bpe.Tokenizer) error {
	bw := bufio.NewWriter(w)
	vocab := tkn.Vocab()

	for id := range vocab.Size() {
		s, err := render(tkn, id)
		if err != nil {
			return err
		}

		pair, merged := vocab.MergeFor(id)
		if !merged {
			if _, err := fmt.Fprintf(bw, "[%s] %d\n", s, id); err != nil {
				return fmt.Errorf("write: %w", err)
			}
			continue
		}

		s0, err := render(tkn, pair[0])
		if err != nil {
			return err
		}

		s1, err := render(tkn, pair[1])
		if err != nil {
			return err
		}

		if _, err := fmt.Fprintf(bw, "[%s][%s] -> [%s] %d\n", s0, s1, s, id); err != nil {
			return fmt.Errorf("write: %w", err)
		}
	}

	specials := tkn.SpecialTokens()
	literals := slices.SortedFunc(maps.Keys(specials), func(a, b string) int {
		return cmp.Compare(specials[a], specials[b])
	})

	for _, literal := range literals {
		if _, err := fmt.Fprintf(bw, "[%s] %d\n", literal, specials[literal]); err != nil {
			return fmt.Errorf("write: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	return nil
}

func render(tkn *bpe.Tokenizer, id int) (string, error) {
	b, err := tkn.TokenBytes(id)
	if err != nil {
		return "", fmt.Errorf("token %d: %w", id, err)
	}

	return bpe.RenderToken(b), nil
}
