// Package logger provides the logging function type used across the
// tokenizer packages and programs.
package logger

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
)

// Logger represents a function that can log a message with key/value pairs.
type Logger func(ctx context.Context, msg string, args ...any)

// Noop discards everything it is given.
var Noop Logger = func(ctx context.Context, msg string, args ...any) {}

// Stdout writes the message and key/value pairs through the standard logger.
// A trace id stored in the context is written first.
var Stdout Logger = func(ctx context.Context, msg string, args ...any) {
	log.Println(Format(ctx, msg, args...))
}

// Format renders a message and its key/value pairs into a single line.
func Format(ctx context.Context, msg string, args ...any) string {
	s := fmt.Sprintf("msg: %s", msg)
	if traceID := TraceID(ctx); traceID != "" {
		s = fmt.Sprintf("traceID: %s, %s", traceID, s)
	}

	for i := 0; i < len(args); i = i + 2 {
		switch {
		case i+1 < len(args):
			s = s + fmt.Sprintf(", %v: %v", args[i], args[i+1])
		default:
			s = s + fmt.Sprintf(", %v: MISSING", args[i])
		}
	}

	return s
}

// =============================================================================

type ctxKey int

const traceKey ctxKey = 1

// WithTraceID returns a new context carrying a freshly generated trace id.
func WithTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, traceKey, uuid.NewString())
}

// TraceID returns the trace id stored in the context, if any.
func TraceID(ctx context.Context) string {
	v, ok := ctx.Value(traceKey).(string)
	if !ok {
		return ""
	}

	return v
}
