package render

import (
	"bytes"

	"mdclip/pkg/logger"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// CommonMark renders full CommonMark (plus strikethrough and autolinks)
// with goldmark, for users who paste richer Markdown than the subset.
// Raw HTML in the source is omitted.
type CommonMark struct {
	md goldmark.Markdown
}

func NewCommonMark() *CommonMark {
	return &CommonMark{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.Strikethrough,
				extension.Linkify,
			),
			goldmark.WithRendererOptions(
				gmhtml.WithXHTML(),
			),
		),
	}
}

func (c *CommonMark) Render(markdown string) string {
	var buf bytes.Buffer
	if err := c.md.Convert([]byte(markdown), &buf); err != nil {
		logger.Warn().Err(err).Msg("commonmark render failed, using subset renderer")
		return Subset{}.Render(markdown)
	}
	return Document(buf.String())
}
