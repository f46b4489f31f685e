package vocabdump_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/ardanlabs/bpe/foundation/bpe"
	"github.com/ardanlabs/bpe/foundation/vocabdump"
)

func TestWrite(t *testing.T) {
	tkn, err := bpe.New(bpe.WithSpecialTokens(map[string]int{"<|eot|>": 300}))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if _, err := tkn.Train(t.Context(), []byte("aaabdaaabac"), 259); err != nil {
		t.Fatalf("train: %v", err)
	}

	var b strings.Builder
	if err := vocabdump.Write(&b, tkn); err != nil {
		t.Fatalf("write: %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(b.String(), "\n"), "\n")
	if len(lines) != tkn.Size() {
		t.Fatalf("got %d lines, exp %d", len(lines), tkn.Size())
	}

	exp := map[int]string{
		'\n': `[\u000a] 10`,
		'a':  "[a] 97",
		256:  "[a][a] -> [aa] 256",
		257:  "[a][b] -> [ab] 257",
		258:  "[aa][ab] -> [aaab] 258",
		259:  "[<|eot|>] 300",
	}

	for line, want := range exp {
		if lines[line] != want {
			t.Fatalf("line %d: got %q, exp %q", line, lines[line], want)
		}
	}
}

func TestWritePermuted(t *testing.T) {
	var perm bpe.BytePermutation
	for b := range bpe.NumBytes {
		perm[b] = byte(bpe.NumBytes - 1 - b)
	}

	tkn, err := bpe.New(bpe.WithBytePermutation(perm))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if _, err := tkn.Train(t.Context(), []byte("aaabdaaabac"), 257); err != nil {
		t.Fatalf("train: %v", err)
	}

	var b strings.Builder
	if err := vocabdump.Write(&b, tkn); err != nil {
		t.Fatalf("write: %v", err)
	}

	lines := strings.Split(b.String(), "\n")

	if got, want := lines[255-'a'], "[a] 158"; got != want {
		t.Fatalf("got %q, exp %q", got, want)
	}

	if got, want := lines[256], "[a][a] -> [aa] 256"; got != want {
		t.Fatalf("got %q, exp %q", got, want)
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriteError(t *testing.T) {
	tkn, _ := bpe.New()

	if err := vocabdump.Write(failWriter{}, tkn); err == nil {
		t.Fatal("expected a write error")
	}
}
