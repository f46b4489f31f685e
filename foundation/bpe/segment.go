package bpe

import (
	"fmt"

	"github.com/dlclark/regexp2"
)

// Pattern is a named regular expression used to split text into chunks
// before byte pair encoding. Merges never cross a chunk boundary.
type Pattern struct {
	Name string
	Expr string
}

// GPT2Pattern splits contractions, letter runs, digit runs of any length,
// symbol runs and whitespace. Trailing whitespace stays with the next chunk
// unless it ends the text.
var GPT2Pattern = Pattern{
	Name: "gpt2",
	Expr: `'(?:[sdmt]|ll|ve|re)| ?\p{L}+| ?\p{N}+| ?[^\s\p{L}\p{N}]+|\s+(?!\S)|\s+`,
}

// GPT4Pattern caps digit runs at three and keeps line breaks grouped with
// the whitespace in front of them. regexp2 has no possessive quantifiers so
// atomic groups take their place.
var GPT4Pattern = Pattern{
	Name: "gpt4",
	Expr: `'(?i:[sdmt]|ll|ve|re)|(?>[^\r\n\p{L}\p{N}]?)\p{L}+|\p{N}{1,3}| ?(?>[^\s\p{L}\p{N}]+)[\r\n]*|\s*[\r\n]|\s+(?!\S)|\s+`,
}

// PatternByName returns one of the named patterns.
func PatternByName(name string) (Pattern, error) {
	switch name {
	case GPT2Pattern.Name:
		return GPT2Pattern, nil

	case GPT4Pattern.Name:
		return GPT4Pattern, nil
	}

	return Pattern{}, fmt.Errorf("unknown pattern %q", name)
}

// =============================================================================

// Segmenter splits text into chunks using a pattern.
type Segmenter struct {
	pattern Pattern
	re      *regexp2.Regexp
}

// NewSegmenter compiles the pattern.
func NewSegmenter(pattern Pattern) (*Segmenter, error) {
	re, err := regexp2.Compile(pattern.Expr, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("compiling pattern %s: %w", pattern.Name, err)
	}

	s := Segmenter{
		pattern: pattern,
		re:      re,
	}

	return &s, nil
}

// Pattern returns the pattern the segmenter was built with.
func (s *Segmenter) Pattern() Pattern {
	return s.pattern
}

// Split returns the chunks of text in order. Text the pattern does not
// match is returned as a chunk of its own, so joining the chunks always
// gives back the original text.
func (s *Segmenter) Split(text string) []string {
	var chunks []string
	var last int

	for _, sp := range findSpans(s.re, text) {
		if sp.start > last {
			chunks = append(chunks, text[last:sp.start])
		}

		chunks = append(chunks, text[sp.start:sp.end])
		last = sp.end
	}

	if last < len(text) {
		chunks = append(chunks, text[last:])
	}

	return chunks
}

// =============================================================================

// span is a match expressed in byte offsets.
type span struct {
	start int
	end   int
}

// findSpans returns every non-empty match of re in text. regexp2 reports
// positions in runes, so they are mapped back to byte offsets. Invalid
// UTF-8 bytes count as one rune each, which keeps the mapping exact.
func findSpans(re *regexp2.Regexp, text string) []span {
	runes := []rune(text)

	offsets := make([]int, 0, len(runes)+1)
	for i := range text {
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(text))

	var spans []span

	m, _ := re.FindRunesMatch(runes)

	for m != nil {
		if m.Length > 0 {
			spans = append(spans, span{
				start: offsets[m.Index],
				end:   offsets[m.Index+m.Length],
			})
		}
		m, _ = re.FindNextMatch(m)
	}

	return spans
}
