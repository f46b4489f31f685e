package bpe

import (
	"context"
	"fmt"
)

// Train learns vocabSize-256 merges from the corpus and installs the new
// vocabulary. On any error the tokenizer keeps its previous vocabulary.
//
// Each round merges the most frequent adjacent pair, ties going to the
// smallest pair, so the same corpus and size always produce the same
// vocabulary. When a segmenter is configured pairs are counted per chunk
// and merges never cross a chunk boundary. Training stops early if no pair
// is left to merge.
func (tkn *Tokenizer) Train(ctx context.Context, corpus []byte, vocabSize int) (*Vocab, error) {
	if vocabSize < NumBytes {
		return nil, fmt.Errorf("%w: %d is below %d", ErrInvalidVocabSize, vocabSize, NumBytes)
	}

	if minID, exists := tkn.specials.minID(); exists && vocabSize > minID {
		return nil, fmt.Errorf("%w: %d overlaps special token id %d", ErrInvalidVocabSize, vocabSize, minID)
	}

	if len(corpus) == 0 {
		return nil, fmt.Errorf("train: %w", ErrEmptyInput)
	}

	// -------------------------------------------------------------------------

	seqs := tkn.trainingSequences(corpus)
	numMerges := vocabSize - NumBytes

	tkn.log(ctx, "train: started", "bytes", len(corpus), "chunks", len(seqs), "vocabSize", vocabSize)

	vocab := NewVocab()

	for i := range numMerges {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("train: %w", err)
		}

		counts := CountPairs(seqs...)
		if len(counts) == 0 {
			tkn.log(ctx, "train: stopped early", "merges", i, "reason", "no pairs left")
			break
		}

		pair, count := mostFrequent(counts)
		id := NumBytes + i

		if err := vocab.Mint(pair, id); err != nil {
			return nil, fmt.Errorf("mint: %w", err)
		}

		for j, seq := range seqs {
			if len(seq) > 1 {
				seqs[j] = merge(seq, pair, id)
			}
		}

		tkn.log(ctx, "train: merge", "id", id, "pair", pair, "count", count, "token", RenderToken(tkn.display(vocab, id)))
	}

	tkn.vocab = vocab

	tkn.log(ctx, "train: complete", "merges", vocab.Size()-NumBytes, "vocabSize", vocab.Size())

	return vocab, nil
}

// trainingSequences turns the corpus into the byte id sequences training
// works on, one per chunk.
func (tkn *Tokenizer) trainingSequences(corpus []byte) [][]int {
	if tkn.segmenter == nil {
		return [][]int{tkn.byteIDs(corpus)}
	}

	chunks := tkn.segmenter.Split(string(corpus))

	seqs := make([][]int, len(chunks))
	for i, chunk := range chunks {
		seqs[i] = tkn.byteIDs([]byte(chunk))
	}

	return seqs
}

// byteIDs maps raw bytes to their starting ids through the permutation.
func (tkn *Tokenizer) byteIDs(b []byte) []int {
	ids := make([]int, len(b))
	for i, v := range b {
		ids[i] = int(tkn.perm[v])
	}

	return ids
}

// display returns the original, un-permuted bytes of a vocabulary id.
func (tkn *Tokenizer) display(vocab *Vocab, id int) []byte {
	b, err := vocab.bytes(id)
	if err != nil {
		return nil
	}

	return tkn.inverse.Apply(b)
}
