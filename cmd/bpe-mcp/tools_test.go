package main

import (
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/ardanlabs/bpe/foundation/logger"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const corpusText = `The quick brown fox jumps over the lazy dog. The dog sleeps while the
fox keeps running through the forest. Foxes are quick, dogs are lazy, and the
forest is quiet again.
`

func newTestTools(t *testing.T) *tools {
	t.Helper()

	path := filepath.Join(t.TempDir(), "corpus.txt")
	if err := os.WriteFile(path, []byte(corpusText), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	tkn, err := trainTokenizer(t.Context(), logger.Noop, path, 300, "gpt4")
	if err != nil {
		t.Fatalf("train: %v", err)
	}

	return newTools(tkn, logger.Noop)
}

func decodeResult[T any](t *testing.T, res *mcp.CallToolResult) T {
	t.Helper()

	var v T
	if err := json.Unmarshal([]byte(res.Content[0].(*mcp.TextContent).Text), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	return v
}

func TestEncodeDecodeHandlers(t *testing.T) {
	tl := newTestTools(t)

	const text = "the quick fox" + endOfText

	res, _, err := tl.encodeHandler(t.Context(), nil, EncodeToolParams{Text: text})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	enc := decodeResult[struct {
		IDs   []int   `json:"ids"`
		Ratio float64 `json:"compression_ratio"`
	}](t, res)

	if enc.IDs[len(enc.IDs)-1] != 300 {
		t.Fatalf("expected the special token last, got %v", enc.IDs)
	}

	if enc.Ratio <= 1 {
		t.Fatalf("got compression ratio %f", enc.Ratio)
	}

	res, _, err = tl.decodeHandler(t.Context(), nil, DecodeToolParams{IDs: enc.IDs})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	dec := decodeResult[struct {
		Text string `json:"text"`
	}](t, res)

	if dec.Text != text {
		t.Fatalf("got %q, exp %q", dec.Text, text)
	}

	if _, _, err := tl.decodeHandler(t.Context(), nil, DecodeToolParams{IDs: []int{9999}}); err == nil {
		t.Fatal("expected an error for an unknown id")
	}
}

func TestTokenCountHandler(t *testing.T) {
	tl := newTestTools(t)

	texts := []string{"the fox", "the lazy dog sleeps"}

	res, _, err := tl.tokenCountHandler(t.Context(), nil, TokenCountToolParams{Texts: texts})
	if err != nil {
		t.Fatalf("count: %v", err)
	}

	got := decodeResult[struct {
		Counts []int `json:"counts"`
		Total  int   `json:"total"`
	}](t, res)

	var exp []int
	var total int
	for _, text := range texts {
		ids, _ := tl.tkn.Encode(text)
		exp = append(exp, len(ids))
		total += len(ids)
	}

	if !slices.Equal(got.Counts, exp) || got.Total != total {
		t.Fatalf("got %v/%d, exp %v/%d", got.Counts, got.Total, exp, total)
	}
}

func TestVocabHandler(t *testing.T) {
	tl := newTestTools(t)

	type vocabInfo struct {
		ID      int    `json:"id"`
		Token   string `json:"token"`
		Special bool   `json:"special"`
		Pair    []int  `json:"pair"`
	}

	res, _, err := tl.vocabHandler(t.Context(), nil, VocabToolParams{ID: 'e'})
	if err != nil {
		t.Fatalf("vocab: %v", err)
	}

	if got := decodeResult[vocabInfo](t, res); got.Token != "e" || got.Pair != nil || got.Special {
		t.Fatalf("unexpected raw token info: %+v", got)
	}

	res, _, err = tl.vocabHandler(t.Context(), nil, VocabToolParams{ID: 256})
	if err != nil {
		t.Fatalf("vocab: %v", err)
	}

	pair, _ := tl.tkn.Vocab().MergeFor(256)
	if got := decodeResult[vocabInfo](t, res); !slices.Equal(got.Pair, pair[:]) {
		t.Fatalf("got pair %v, exp %v", got.Pair, pair)
	}

	res, _, err = tl.vocabHandler(t.Context(), nil, VocabToolParams{ID: 300})
	if err != nil {
		t.Fatalf("vocab: %v", err)
	}

	if got := decodeResult[vocabInfo](t, res); got.Token != endOfText || !got.Special {
		t.Fatalf("unexpected special token info: %+v", got)
	}
}

func TestServeSSE(t *testing.T) {
	tl := newTestTools(t)

	srv := httptest.NewServer(tl.handler())
	defer srv.Close()

	ctx := t.Context()

	client := mcp.NewClient(&mcp.Implementation{Name: "mcp-client", Version: "v1.0.0"}, nil)
	transport := mcp.SSEClientTransport{
		Endpoint: srv.URL + "/tool_encode",
	}

	session, err := client.Connect(ctx, &transport, nil)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer session.Close()

	params := &mcp.CallToolParams{
		Name:      "tool_encode",
		Arguments: map[string]any{"text": "the fox"},
	}

	res, err := session.CallTool(ctx, params)
	if err != nil {
		t.Fatalf("call tool: %v", err)
	}

	if res.IsError {
		t.Fatalf("tool call failed: %v", res.Content)
	}

	got := decodeResult[struct {
		IDs []int `json:"ids"`
	}](t, res)

	exp, _ := tl.tkn.Encode("the fox")
	if !slices.Equal(got.IDs, exp) {
		t.Fatalf("got %v, exp %v", got.IDs, exp)
	}
}
