// This program trains a tokenizer at startup and serves it over the MCP SSE
// protocol so an agent can encode, decode and inspect tokens. Each tool is
// its own endpoint, like /tool_encode.
//
// # Running the program:
//
//	$ go run ./cmd/bpe-mcp -corpus zarf/data/corpus.txt -vocab-size 1024
//
// The corpus and vocabulary size can also come from BPE_CORPUS and
// BPE_VOCAB_SIZE.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/ardanlabs/bpe/foundation/bpe"
	"github.com/ardanlabs/bpe/foundation/corpus"
	"github.com/ardanlabs/bpe/foundation/logger"
)

const endOfText = "<|endoftext|>"

func main() {
	host := flag.String("host", "localhost:8082", "address to listen on")
	corpusPath := flag.String("corpus", os.Getenv("BPE_CORPUS"), "training corpus (txt, pdf, docx or html)")
	vocabSize := flag.Int("vocab-size", envInt("BPE_VOCAB_SIZE", 512), "vocabulary size to train to")
	pattern := flag.String("pattern", bpe.GPT4Pattern.Name, "split pattern: gpt2 or gpt4")
	flag.Parse()

	if err := run(*host, *corpusPath, *vocabSize, *pattern); err != nil {
		log.Fatal(err)
	}
}

func run(host string, corpusPath string, vocabSize int, pattern string) error {
	ctx := context.Background()

	if corpusPath == "" {
		return errors.New("a corpus is required, use -corpus or BPE_CORPUS")
	}

	tkn, err := trainTokenizer(ctx, logger.Stdout, corpusPath, vocabSize, pattern)
	if err != nil {
		return err
	}

	// -------------------------------------------------------------------------

	handler := newTools(tkn, logger.Stdout).handler()

	logger.Stdout(ctx, "mcp: serving", "host", host, "vocab_size", tkn.Size())

	return http.ListenAndServe(host, handler)
}

func trainTokenizer(ctx context.Context, lgr logger.Logger, corpusPath string, vocabSize int, pattern string) (*bpe.Tokenizer, error) {
	text, err := corpus.Load(corpusPath)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}

	pat, err := bpe.PatternByName(pattern)
	if err != nil {
		return nil, err
	}

	tkn, err := bpe.New(bpe.WithPattern(pat), bpe.WithLogger(lgr))
	if err != nil {
		return nil, fmt.Errorf("new tokenizer: %w", err)
	}

	vocab, err := tkn.Train(ctx, []byte(text), vocabSize)
	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}

	if err := tkn.RegisterSpecialTokens(map[string]int{endOfText: vocab.Size()}); err != nil {
		return nil, fmt.Errorf("register special tokens: %w", err)
	}

	return tkn, nil
}

func envInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}
