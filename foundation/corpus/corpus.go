// Package corpus loads training text from disk. PDF, DOCX and HTML files are
// converted to plain text, anything else is read as is.
package corpus

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv/v2"
)

// Load returns the text held in the file at path.
func Load(path string) (string, error) {
	var convert func(r io.Reader) (string, map[string]string, error)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		convert = docconv.ConvertPDF

	case ".docx":
		convert = docconv.ConvertDocx

	case ".html", ".htm":
		convert = func(r io.Reader) (string, map[string]string, error) {
			return docconv.ConvertHTML(r, false)
		}

	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read file: %w", err)
		}
		return string(data), nil
	}

	input, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer input.Close()

	doc, _, err := convert(input)
	if err != nil {
		return "", fmt.Errorf("convert %s: %w", filepath.Base(path), err)
	}

	return doc, nil
}

// Chunks breaks text into pieces of at most max words. Words inside a chunk
// are joined by a single space.
func Chunks(text string, max int) []string {
	words := strings.Fields(text)
	if max <= 0 {
		max = len(words)
	}

	var chunks []string
	for idx := 0; idx < len(words); idx += max {
		end := min(idx+max, len(words))
		chunks = append(chunks, strings.Join(words[idx:end], " "))
	}

	return chunks
}
