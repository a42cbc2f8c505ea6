// Package sanitize removes markup that must never reach the Markdown
// engine: comments, script and style blocks, and meta tags.
//
// It works on raw text with regular expressions rather than a DOM, so it
// accepts any input, including fragments and unbalanced markup, without
// failing.
package sanitize

import "regexp"

var (
	commentPattern = regexp.MustCompile(`(?s)<!--.*?-->`)
	scriptPattern  = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	stylePattern   = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style\s*>`)
	metaPattern    = regexp.MustCompile(`(?i)<meta\b[^>]*>`)
)

// rules run in this order on every pass.
var rules = []*regexp.Regexp{
	commentPattern,
	scriptPattern,
	stylePattern,
	metaPattern,
}

// HTML returns html without comments, script/style blocks and meta tags.
//
// Removal repeats until nothing changes, so markup re-formed by an earlier
// removal (for example "<scr<script></script>ipt>") is removed as well and
// HTML(HTML(x)) == HTML(x). Every pass strictly shortens the text, which
// bounds the loop.
func HTML(html string) string {
	for {
		out := html
		for _, re := range rules {
			out = re.ReplaceAllLiteralString(out, "")
		}
		if out == html {
			return out
		}
		html = out
	}
}
