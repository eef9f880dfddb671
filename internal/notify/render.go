package notify

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
)

// RenderHTML converts a Markdown body to HTML. Raw HTML in the input is
// dropped.
func RenderHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}
