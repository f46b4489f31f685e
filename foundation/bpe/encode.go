package bpe

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
)

// Encode converts text to token ids. Special literals are handled according
// to the configured policy, the remaining text is split by the segmenter and
// every chunk is encoded on its own.
func (tkn *Tokenizer) Encode(text string) ([]int, error) {
	return tkn.encode(text, tkn.policy)
}

// EncodeOrdinary converts text to token ids treating special literals as
// ordinary text.
func (tkn *Tokenizer) EncodeOrdinary(text string) ([]int, error) {
	return tkn.encode(text, SpecialIgnore)
}

// EncodeBatch encodes independent texts concurrently. The result at index i
// belongs to texts[i].
func (tkn *Tokenizer) EncodeBatch(ctx context.Context, texts []string) ([][]int, error) {
	out := make([][]int, len(texts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, text := range texts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			ids, err := tkn.Encode(text)
			if err != nil {
				return fmt.Errorf("text[%d]: %w", i, err)
			}

			out[i] = ids
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

func (tkn *Tokenizer) encode(text string, policy SpecialPolicy) ([]int, error) {
	if text == "" {
		return nil, fmt.Errorf("encode: %w", ErrEmptyInput)
	}

	pieces := []piece{{text: text}}
	if tkn.specials.len() > 0 && policy != SpecialIgnore {
		pieces = tkn.specials.split(text)
	}

	var ids []int

	for _, p := range pieces {
		if p.special {
			if policy == SpecialDisallow {
				return nil, fmt.Errorf("%w: %q", ErrDisallowedSpecialToken, p.text)
			}

			ids = append(ids, p.id)
			continue
		}

		for _, chunk := range tkn.chunks(p.text) {
			ids = append(ids, tkn.encodeChunk([]byte(chunk))...)
		}
	}

	return ids, nil
}

func (tkn *Tokenizer) chunks(text string) []string {
	if tkn.segmenter == nil {
		return []string{text}
	}

	return tkn.segmenter.Split(text)
}

// encodeChunk applies the learned merges to one chunk. Each round merges
// every occurrence of the present pair with the lowest rank, which replays
// the order the merges were learned in.
func (tkn *Tokenizer) encodeChunk(b []byte) []int {
	ids := tkn.byteIDs(b)

	for len(ids) > 1 {
		best, bestRank := Pair{}, math.MaxInt

		for i := 0; i < len(ids)-1; i++ {
			pair := Pair{ids[i], ids[i+1]}
			if rank, exists := tkn.vocab.Rank(pair); exists && rank < bestRank {
				best, bestRank = pair, rank
			}
		}

		if bestRank == math.MaxInt {
			break
		}

		ids = merge(ids, best, bestRank)
	}

	return ids
}

// =============================================================================

// Decode converts token ids back to text. Every invalid byte, and every
// sequence that starts well but is cut short, becomes one Unicode
// replacement character.
func (tkn *Tokenizer) Decode(ids []int) (string, error) {
	b, err := tkn.DecodeBytes(ids)
	if err != nil {
		return "", err
	}

	return replaceInvalidUTF8(b), nil
}

// DecodeBytes converts token ids back to the raw bytes they stand for.
func (tkn *Tokenizer) DecodeBytes(ids []int) ([]byte, error) {
	var out []byte

	for _, id := range ids {
		if literal, exists := tkn.specials.literal(id); exists {
			out = append(out, literal...)
			continue
		}

		b, err := tkn.vocab.bytes(id)
		if err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}

		for _, v := range b {
			out = append(out, tkn.inverse[v])
		}
	}

	return out, nil
}

// TokenBytes returns the original bytes an id stands for, with the byte
// permutation undone. It is meant for display.
func (tkn *Tokenizer) TokenBytes(id int) ([]byte, error) {
	if literal, exists := tkn.specials.literal(id); exists {
		return []byte(literal), nil
	}

	if _, err := tkn.vocab.bytes(id); err != nil {
		return nil, err
	}

	return tkn.display(tkn.vocab, id), nil
}

func replaceInvalidUTF8(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))

	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r != utf8.RuneError || size > 1 {
			sb.Write(b[:size])
			b = b[size:]
			continue
		}

		sb.WriteRune(utf8.RuneError)
		b = b[truncatedLen(b):]
	}

	return sb.String()
}

// truncatedLen returns how many leading bytes of b form the start of a well
// formed sequence that never completes. It is at least one.
func truncatedLen(b []byte) int {
	lo, hi := byte(0x80), byte(0xbf)

	var n int
	switch c := b[0]; {
	case c >= 0xc2 && c <= 0xdf:
		n = 2
	case c == 0xe0:
		n, lo = 3, 0xa0
	case c == 0xed:
		n, hi = 3, 0x9f
	case c >= 0xe1 && c <= 0xef:
		n = 3
	case c == 0xf0:
		n, lo = 4, 0x90
	case c == 0xf4:
		n, hi = 4, 0x8f
	case c >= 0xf1 && c <= 0xf3:
		n = 4
	default:
		return 1
	}

	i := 1
	for ; i < n && i < len(b); i++ {
		if b[i] < lo || b[i] > hi {
			break
		}
		lo, hi = 0x80, 0xbf
	}

	return i
}

// CompressionRatio returns how many bytes of text each token covers on
// average.
func CompressionRatio(text string, ids []int) float64 {
	if len(ids) == 0 {
		return 0
	}

	return float64(len(text)) / float64(len(ids))
}
