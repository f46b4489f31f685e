package main

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ardanlabs/bpe/foundation/bpe"
	"github.com/ardanlabs/bpe/foundation/logger"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type tools struct {
	tkn *bpe.Tokenizer
	log logger.Logger
}

func newTools(tkn *bpe.Tokenizer, log logger.Logger) *tools {
	return &tools{
		tkn: tkn,
		log: log,
	}
}

// handler returns the SSE handler serving every tool.
func (t *tools) handler() http.Handler {
	tokenizer := mcp.NewServer(&mcp.Implementation{Name: "tokenizer", Version: "v1.0.0"}, nil)

	encode := t.registerEncodeTool(tokenizer)
	decode := t.registerDecodeTool(tokenizer)
	count := t.registerTokenCountTool(tokenizer)
	vocab := t.registerVocabTool(tokenizer)

	f := func(request *http.Request) *mcp.Server {
		switch request.URL.Path {
		case encode, decode, count, vocab:
			return tokenizer

		default:
			return mcp.NewServer(&mcp.Implementation{Name: "unknown_tool", Version: "v1.0.0"}, nil)
		}
	}

	return mcp.NewSSEHandler(f, &mcp.SSEOptions{})
}

// =============================================================================

func (t *tools) registerEncodeTool(mcpServer *mcp.Server) string {
	const toolName = "tool_encode"
	const toolDescription = "Encodes text into token ids. Special tokens in the text are honored."

	mcp.AddTool(mcpServer, &mcp.Tool{Name: toolName, Description: toolDescription}, t.encodeHandler)

	return "/" + toolName
}

// EncodeToolParams represents the parameters for this tool call.
type EncodeToolParams struct {
	Text string `json:"text" jsonschema:"The text to encode."`
}

func (t *tools) encodeHandler(ctx context.Context, req *mcp.CallToolRequest, params EncodeToolParams) (*mcp.CallToolResult, any, error) {
	ctx = logger.WithTraceID(ctx)
	t.log(ctx, "tool_encode", "bytes", len(params.Text))

	ids, err := t.tkn.Encode(params.Text)
	if err != nil {
		t.log(ctx, "tool_encode", "ERROR", err)
		return nil, nil, err
	}

	info := struct {
		IDs   []int   `json:"ids"`
		Ratio float64 `json:"compression_ratio"`
	}{
		IDs:   ids,
		Ratio: bpe.CompressionRatio(params.Text, ids),
	}

	return textResult(info)
}

// =============================================================================

func (t *tools) registerDecodeTool(mcpServer *mcp.Server) string {
	const toolName = "tool_decode"
	const toolDescription = "Decodes token ids back into text."

	mcp.AddTool(mcpServer, &mcp.Tool{Name: toolName, Description: toolDescription}, t.decodeHandler)

	return "/" + toolName
}

// DecodeToolParams represents the parameters for this tool call.
type DecodeToolParams struct {
	IDs []int `json:"ids" jsonschema:"The token ids to decode."`
}

func (t *tools) decodeHandler(ctx context.Context, req *mcp.CallToolRequest, params DecodeToolParams) (*mcp.CallToolResult, any, error) {
	ctx = logger.WithTraceID(ctx)
	t.log(ctx, "tool_decode", "ids", len(params.IDs))

	text, err := t.tkn.Decode(params.IDs)
	if err != nil {
		t.log(ctx, "tool_decode", "ERROR", err)
		return nil, nil, err
	}

	info := struct {
		Text string `json:"text"`
	}{
		Text: text,
	}

	return textResult(info)
}

// =============================================================================

func (t *tools) registerTokenCountTool(mcpServer *mcp.Server) string {
	const toolName = "tool_token_count"
	const toolDescription = "Counts the tokens the text encodes to."

	mcp.AddTool(mcpServer, &mcp.Tool{Name: toolName, Description: toolDescription}, t.tokenCountHandler)

	return "/" + toolName
}

// TokenCountToolParams represents the parameters for this tool call.
type TokenCountToolParams struct {
	Texts []string `json:"texts" jsonschema:"The texts to count tokens for."`
}

func (t *tools) tokenCountHandler(ctx context.Context, req *mcp.CallToolRequest, params TokenCountToolParams) (*mcp.CallToolResult, any, error) {
	ctx = logger.WithTraceID(ctx)
	t.log(ctx, "tool_token_count", "texts", len(params.Texts))

	batch, err := t.tkn.EncodeBatch(ctx, params.Texts)
	if err != nil {
		t.log(ctx, "tool_token_count", "ERROR", err)
		return nil, nil, err
	}

	info := struct {
		Counts []int `json:"counts"`
		Total  int   `json:"total"`
	}{
		Counts: make([]int, len(batch)),
	}

	for i, ids := range batch {
		info.Counts[i] = len(ids)
		info.Total += len(ids)
	}

	return textResult(info)
}

// =============================================================================

func (t *tools) registerVocabTool(mcpServer *mcp.Server) string {
	const toolName = "tool_vocab"
	const toolDescription = "Describes a token id: its text and, for merged tokens, the pair it was built from."

	mcp.AddTool(mcpServer, &mcp.Tool{Name: toolName, Description: toolDescription}, t.vocabHandler)

	return "/" + toolName
}

// VocabToolParams represents the parameters for this tool call.
type VocabToolParams struct {
	ID int `json:"id" jsonschema:"The token id to describe."`
}

func (t *tools) vocabHandler(ctx context.Context, req *mcp.CallToolRequest, params VocabToolParams) (*mcp.CallToolResult, any, error) {
	ctx = logger.WithTraceID(ctx)
	t.log(ctx, "tool_vocab", "id", params.ID)

	b, err := t.tkn.TokenBytes(params.ID)
	if err != nil {
		t.log(ctx, "tool_vocab", "ERROR", err)
		return nil, nil, err
	}

	info := struct {
		ID      int    `json:"id"`
		Token   string `json:"token"`
		Special bool   `json:"special"`
		Pair    []int  `json:"pair,omitempty"`
	}{
		ID:    params.ID,
		Token: bpe.RenderToken(b),
	}

	if _, exists := t.tkn.SpecialTokens()[string(b)]; exists && params.ID >= t.tkn.Vocab().Size() {
		info.Special = true
	}

	if pair, merged := t.tkn.Vocab().MergeFor(params.ID); merged {
		info.Pair = pair[:]
	}

	return textResult(info)
}

// =============================================================================

func textResult(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, nil, err
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{
			Text: string(data),
		}},
	}, nil, nil
}
