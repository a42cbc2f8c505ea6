package render

import (
	"regexp"
	"strings"
)

var (
	heading3Pattern = regexp.MustCompile(`(?m)^### (.*)$`)
	heading2Pattern = regexp.MustCompile(`(?m)^## (.*)$`)
	heading1Pattern = regexp.MustCompile(`(?m)^# (.*)$`)
	boldPattern     = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicPattern   = regexp.MustCompile(`\*(.+?)\*`)
	linkPattern     = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)

	orderedItemPattern = regexp.MustCompile(`^\d+\. `)
)

// textEscaper neutralises markup already present in the source so that
// every tag in the output comes from a rendering rule.
var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// inline rules, in application order. Each later rule must not re-match
// the output of an earlier one: headings first, most specific first, then
// bold before italic so "**x**" is never read as two italics.
var inlineRules = []struct {
	pattern     *regexp.Regexp
	replacement string
}{
	{heading3Pattern, "<h3>$1</h3>\n"},
	{heading2Pattern, "<h2>$1</h2>\n"},
	{heading1Pattern, "<h1>$1</h1>\n"},
	{boldPattern, "<strong>$1</strong>"},
	{italicPattern, "<em>$1</em>"},
	{linkPattern, `<a href="$2">$1</a>`},
}

// blankParagraph keeps an empty source line visible in rich text.
const blankParagraph = "<p>&nbsp;</p>"

type listState int

const (
	listNone listState = iota
	listUnordered
	listOrdered
)

func (s listState) openTag() string {
	switch s {
	case listUnordered:
		return "<ul>"
	case listOrdered:
		return "<ol>"
	}
	return ""
}

func (s listState) closeTag() string {
	switch s {
	case listUnordered:
		return "</ul>"
	case listOrdered:
		return "</ol>"
	}
	return ""
}

// Subset renders the small Markdown dialect mdclip supports: ATX headings
// of levels 1 to 3, bold, italic, links, flat ordered and unordered lists,
// and paragraphs. Anything else is kept as literal text.
type Subset struct{}

// Render returns a complete HTML document for markdown.
func (Subset) Render(markdown string) string {
	return Document(Body(markdown))
}

// Body renders markdown to the HTML that goes inside <body>.
func Body(markdown string) string {
	text := textEscaper.Replace(normalizeNewlines(markdown))
	for _, rule := range inlineRules {
		text = rule.pattern.ReplaceAllString(text, rule.replacement)
	}
	return blocks(text)
}

// blocks assembles list and paragraph structure line by line.
func blocks(text string) string {
	// Every empty line, including the one after a final newline or after a
	// heading's own newline, becomes a blank paragraph.
	lines := strings.Split(text, "\n")

	var sb strings.Builder
	state := listNone

	enter := func(next listState) {
		if state == next {
			return
		}
		sb.WriteString(state.closeTag())
		sb.WriteString(next.openTag())
		state = next
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "- "):
			enter(listUnordered)
			sb.WriteString("<li>")
			sb.WriteString(trimmed[2:])
			sb.WriteString("</li>")

		case orderedItemPattern.MatchString(trimmed):
			marker := orderedItemPattern.FindString(trimmed)
			enter(listOrdered)
			sb.WriteString("<li>")
			sb.WriteString(trimmed[len(marker):])
			sb.WriteString("</li>")

		case trimmed == "":
			enter(listNone)
			sb.WriteString(blankParagraph)

		default:
			enter(listNone)
			if strings.HasPrefix(trimmed, "<") {
				sb.WriteString(trimmed)
			} else {
				sb.WriteString("<p>")
				sb.WriteString(trimmed)
				sb.WriteString("</p>")
			}
		}
	}
	enter(listNone)

	return sb.String()
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
