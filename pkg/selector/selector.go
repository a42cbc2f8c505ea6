// Package selector picks the most useful clipboard representation to
// convert.
package selector

import (
	"context"
	"strings"

	"mdclip/pkg/clipboard"
	"mdclip/pkg/errors"
	"mdclip/pkg/logger"
	"mdclip/pkg/richtext"
)

// Selection is the content chosen for conversion.
type Selection struct {
	Source  clipboard.Format
	Content string
}

// HTMLLike reports whether Content is HTML that needs the engine.
// RTF is decoded to HTML before it is selected.
func (s Selection) HTMLLike() bool {
	return s.Source == clipboard.FormatHTML || s.Source == clipboard.FormatRTF
}

// Select applies the priority HTML, then RTF decoded to HTML, then plain
// text. An RTF payload that cannot be decoded is skipped silently.
func Select(ctx context.Context, snap clipboard.Snapshot, codec richtext.Codec) (Selection, error) {
	log := logger.With("selector")

	if r, ok := snap.First(clipboard.FormatHTML); ok && strings.TrimSpace(r.Text()) != "" {
		return Selection{Source: clipboard.FormatHTML, Content: r.Text()}, nil
	}

	if r, ok := snap.First(clipboard.FormatRTF); ok && len(r.Data) > 0 && codec != nil {
		html, err := codec.ToHTML(ctx, r.Data)
		switch {
		case err != nil:
			log.Debug().Err(err).Str("codec", codec.Name()).Msg("rtf decode failed, falling back")
		case strings.TrimSpace(html) == "":
			log.Debug().Str("codec", codec.Name()).Msg("rtf decoded to nothing, falling back")
		default:
			return Selection{Source: clipboard.FormatRTF, Content: html}, nil
		}
	}

	if r, ok := snap.First(clipboard.FormatPlainText); ok && strings.TrimSpace(r.Text()) != "" {
		return Selection{Source: clipboard.FormatPlainText, Content: r.Text()}, nil
	}

	return Selection{}, errors.NoSupportedContent()
}
