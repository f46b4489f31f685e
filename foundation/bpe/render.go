package bpe

import (
	"fmt"
	"strings"
	"unicode"
)

// RenderToken returns a printable form of the token bytes. Invalid UTF-8 is
// shown as the replacement character and control characters are escaped.
// The result is for display only and cannot be decoded back.
func RenderToken(b []byte) string {
	var sb strings.Builder

	for _, r := range string(b) {
		if unicode.IsControl(r) {
			fmt.Fprintf(&sb, "\\u%04x", r)
			continue
		}
		sb.WriteRune(r)
	}

	return sb.String()
}
