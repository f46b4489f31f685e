// This program trains two tokenizers on the same corpus, one over the raw
// bytes and one that first splits the text with the GPT-4 pattern. Both run
// at the same time on their own instance. It prints what each learned and
// writes a vocabulary listing for each into the output directory.
//
// When a .tiktoken (or gob) rank file is given, the merges behind it are
// recovered and the recovered tokenizer is checked against a sample.
//
// # Running the program:
//
//	$ go run ./cmd/bpe -corpus zarf/data/corpus.txt -vocab-size 1024
//	$ go run ./cmd/bpe -corpus zarf/data/corpus.txt -ranks zarf/data/cl100k_base.tiktoken
//
// BPE_CORPUS, BPE_VOCAB_SIZE and BPE_RANKS can be used in place of the flags.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ardanlabs/bpe/foundation/bpe"
	"github.com/ardanlabs/bpe/foundation/corpus"
	"github.com/ardanlabs/bpe/foundation/logger"
	"github.com/ardanlabs/bpe/foundation/tiktoken"
	"github.com/ardanlabs/bpe/foundation/vocabdump"
	"golang.org/x/sync/errgroup"
)

const sample = "Hello've world123 how's are you!!!? <|endoftext|> 😄 ok"

var specialTokens = []string{
	"<|endoftext|>",
	"<|fim_prefix|>",
	"<|fim_middle|>",
	"<|fim_suffix|>",
	"<|endofprompt|>",
}

type config struct {
	corpusPath string
	ranksPath  string
	outDir     string
	vocabSize  int
	chunkWords int
	verbose    bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.corpusPath, "corpus", os.Getenv("BPE_CORPUS"), "training corpus (txt, pdf, docx or html)")
	flag.StringVar(&cfg.ranksPath, "ranks", os.Getenv("BPE_RANKS"), "optional .tiktoken or gob rank file to recover")
	flag.StringVar(&cfg.outDir, "out", "zarf/models", "directory for the vocabulary listings")
	flag.IntVar(&cfg.vocabSize, "vocab-size", envInt("BPE_VOCAB_SIZE", 512), "vocabulary size to train to")
	flag.IntVar(&cfg.chunkWords, "chunk-words", 250, "words per chunk when measuring the corpus")
	flag.BoolVar(&cfg.verbose, "v", false, "log every merge")
	flag.Parse()

	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}

func run(cfg config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if cfg.corpusPath == "" {
		return errors.New("a corpus is required, use -corpus or BPE_CORPUS")
	}

	text, err := corpus.Load(cfg.corpusPath)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}

	fmt.Printf("\nCorpus: %s (%d bytes)\n", filepath.Base(cfg.corpusPath), len(text))

	if err := os.MkdirAll(cfg.outDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	// -------------------------------------------------------------------------
	// Train the basic and the regex tokenizer at the same time.

	lgr := logger.Noop
	if cfg.verbose {
		lgr = logger.Stdout
	}

	basic, err := bpe.New(bpe.WithLogger(lgr))
	if err != nil {
		return fmt.Errorf("new basic: %w", err)
	}

	regex, err := bpe.New(bpe.WithPattern(bpe.GPT4Pattern), bpe.WithLogger(lgr))
	if err != nil {
		return fmt.Errorf("new regex: %w", err)
	}

	tokenizers := []struct {
		name string
		tkn  *bpe.Tokenizer
	}{
		{"basic", basic},
		{"regex", regex},
	}

	g, gctx := errgroup.WithContext(ctx)

	for _, tk := range tokenizers {
		g.Go(func() error {
			ctx := logger.WithTraceID(gctx)

			start := time.Now()
			if _, err := tk.tkn.Train(ctx, []byte(text), cfg.vocabSize); err != nil {
				return fmt.Errorf("train %s: %w", tk.name, err)
			}

			fmt.Printf("Trained %s tokenizer in %v\n", tk.name, time.Since(start).Round(time.Millisecond))

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	specials := make(map[string]int, len(specialTokens))
	for i, literal := range specialTokens {
		specials[literal] = regex.Vocab().Size() + i
	}

	if err := regex.RegisterSpecialTokens(specials); err != nil {
		return fmt.Errorf("register special tokens: %w", err)
	}

	// -------------------------------------------------------------------------
	// Report what each learned.

	for _, tk := range tokenizers {
		if err := report(ctx, tk.name, tk.tkn, text, cfg); err != nil {
			return err
		}
	}

	// -------------------------------------------------------------------------
	// Recover the merges behind a published rank table.

	if cfg.ranksPath != "" {
		if err := recoverRanks(ctx, cfg.ranksPath, text); err != nil {
			return err
		}
	}

	return nil
}

func report(ctx context.Context, name string, tkn *bpe.Tokenizer, text string, cfg config) error {
	fmt.Printf("\n%s tokenizer\n", name)
	fmt.Printf("  vocabulary size : %d\n", tkn.Size())

	chunks := corpus.Chunks(text, cfg.chunkWords)

	batch, err := tkn.EncodeBatch(ctx, chunks)
	if err != nil {
		return fmt.Errorf("%s: encode corpus: %w", name, err)
	}

	var tokens, size int
	for i, ids := range batch {
		tokens += len(ids)
		size += len(chunks[i])
	}

	if tokens > 0 {
		fmt.Printf("  corpus tokens   : %d\n", tokens)
		fmt.Printf("  compression     : %.2fX\n", float64(size)/float64(tokens))
	}

	ids, err := tkn.Encode(sample)
	if err != nil {
		return fmt.Errorf("%s: encode sample: %w", name, err)
	}

	decoded, err := tkn.Decode(ids)
	if err != nil {
		return fmt.Errorf("%s: decode sample: %w", name, err)
	}

	fmt.Printf("  sample ids      : %v\n", ids)
	fmt.Printf("  sample ratio    : %.2fX\n", bpe.CompressionRatio(sample, ids))
	fmt.Printf("  round trip      : %v\n", decoded == sample)

	path := filepath.Join(cfg.outDir, name+".vocab")

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%s: create vocab file: %w", name, err)
	}
	defer f.Close()

	if err := vocabdump.Write(f, tkn); err != nil {
		return fmt.Errorf("%s: write vocab file: %w", name, err)
	}

	fmt.Printf("  vocabulary      : %s\n", path)

	return nil
}

func recoverRanks(ctx context.Context, path string, text string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open ranks: %w", err)
	}
	defer f.Close()

	var ranks map[string]int

	switch filepath.Ext(path) {
	case ".gob":
		ranks, err = tiktoken.DecodeGob(f)
	default:
		ranks, err = tiktoken.LoadRanks(f)
	}
	if err != nil {
		return fmt.Errorf("load ranks: %w", err)
	}

	start := time.Now()

	tt, err := tiktoken.NewTiktoken(tiktoken.Cl100kBase(ranks), bpe.WithLogger(logger.Stdout))
	if err != nil {
		return fmt.Errorf("new tiktoken: %w", err)
	}

	tkn := tt.Tokenizer()

	fmt.Printf("\n%s tokenizer\n", tt.Name())
	fmt.Printf("  recovered merges: %d in %v\n", len(tkn.Vocab().Merges()), time.Since(start).Round(time.Millisecond))
	fmt.Printf("  byte shuffle    : %v\n", !tkn.Permutation().IsIdentity())

	ids, err := tt.Encode(sample)
	if err != nil {
		return fmt.Errorf("encode sample: %w", err)
	}

	decoded, err := tt.Decode(ids)
	if err != nil {
		return fmt.Errorf("decode sample: %w", err)
	}

	fmt.Printf("  sample ids      : %v\n", ids)
	fmt.Printf("  round trip      : %v\n", decoded == sample)
	count, err := tt.TokenCount(text)
	if err != nil {
		return fmt.Errorf("count corpus: %w", err)
	}

	fmt.Printf("  corpus tokens   : %d\n", count)

	logger.Stdout(ctx, "recovery complete", "encoding", tt.Name(), "vocab_size", tkn.Size())

	return nil
}

func envInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}
