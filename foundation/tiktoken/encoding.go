package tiktoken

import (
	"bufio"
	"encoding/base64"
	"encoding/gob"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ardanlabs/bpe/foundation/bpe"
)

// Encoding describes a published byte pair encoding.
type Encoding struct {
	Name           string
	Pattern        bpe.Pattern
	MergeableRanks map[string]int
	SpecialTokens  map[string]int
}

// Cl100kBase returns the cl100k_base encoding for the given rank table.
func Cl100kBase(ranks map[string]int) Encoding {
	const (
		endOfText   string = "<|endoftext|>"
		fimPrefix   string = "<|fim_prefix|>"
		fimMiddle   string = "<|fim_middle|>"
		fimSuffix   string = "<|fim_suffix|>"
		endOfPrompt string = "<|endofprompt|>"
	)

	const modelCl100KBase string = "cl100k_base"

	specialTokens := map[string]int{
		endOfText:   100257,
		fimPrefix:   100258,
		fimMiddle:   100259,
		fimSuffix:   100260,
		endOfPrompt: 100276,
	}

	return Encoding{
		Name:           modelCl100KBase,
		Pattern:        bpe.GPT4Pattern,
		MergeableRanks: ranks,
		SpecialTokens:  specialTokens,
	}
}

// =============================================================================

// LoadRanks reads a rank table in the .tiktoken text format, one base64
// token and its rank per line.
func LoadRanks(r io.Reader) (map[string]int, error) {
	ranks := make(map[string]int)

	scanner := bufio.NewScanner(r)
	var line int

	for scanner.Scan() {
		line++

		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: expected token and rank, got %d fields", line, len(fields))
		}

		token, err := base64.StdEncoding.DecodeString(fields[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: decoding token: %w", line, err)
		}

		rank, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: parsing rank: %w", line, err)
		}

		ranks[string(token)] = rank
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning: %w", err)
	}

	return ranks, nil
}

// DecodeGob reads a rank table stored as a gob encoded map.
func DecodeGob(r io.Reader) (map[string]int, error) {
	var ranks map[string]int
	if err := gob.NewDecoder(r).Decode(&ranks); err != nil {
		return nil, fmt.Errorf("decoding: %w", err)
	}

	return ranks, nil
}
