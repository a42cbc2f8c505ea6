// Package render turns Markdown into an HTML document that a rich-text
// codec can encode.
package render

import (
	"fmt"
	"strings"
)

const (
	ModeSubset     = "subset"
	ModeCommonMark = "commonmark"
)

// Renderer converts Markdown to a complete HTML document. Implementations
// never fail: syntax they do not understand is emitted as text.
type Renderer interface {
	Render(markdown string) string
}

const documentStyle = `body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Helvetica, Arial, sans-serif; font-size: 14px; line-height: 1.4; }
p { margin: 0 0 8px 0; }
ul, ol { margin: 0 0 8px 0; padding-left: 24px; }
li { margin: 0 0 4px 0; }`

// Document wraps body in a minimal UTF-8 HTML document.
func Document(body string) string {
	var sb strings.Builder
	sb.Grow(len(body) + len(documentStyle) + 128)
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<style>\n")
	sb.WriteString(documentStyle)
	sb.WriteString("\n</style>\n</head>\n<body>\n")
	sb.WriteString(body)
	sb.WriteString("\n</body>\n</html>\n")
	return sb.String()
}

// New returns the renderer for mode. An empty mode selects the subset renderer.
func New(mode string) (Renderer, error) {
	switch mode {
	case "", ModeSubset:
		return Subset{}, nil
	case ModeCommonMark:
		return NewCommonMark(), nil
	default:
		return nil, fmt.Errorf("unknown render mode %q (want %s or %s)", mode, ModeSubset, ModeCommonMark)
	}
}

// Modes lists the accepted render modes.
func Modes() []string {
	return []string{ModeSubset, ModeCommonMark}
}
