// Package clipboard models the system clipboard as a set of typed
// representations and provides multi-format read and write access.
//
// On Linux/Wayland, writes daemonize a clipboard owner that serves every
// representation at once (HTML, RTF, Markdown and plain text), so a paste
// target picks the richest format it understands. Elsewhere the richest
// format the host tools can carry is written.
package clipboard

import (
	"context"
	"strings"
)

// ServeCommand is the hidden subcommand the Wayland owner process runs as.
const ServeCommand = "__clipboard-serve"

// Format identifies the kind of payload a representation carries.
type Format int

const (
	FormatOther Format = iota
	FormatHTML
	FormatRTF
	FormatPlainText
	FormatMarkdown
)

func (f Format) String() string {
	switch f {
	case FormatHTML:
		return "html"
	case FormatRTF:
		return "rtf"
	case FormatPlainText:
		return "plain-text"
	case FormatMarkdown:
		return "markdown"
	default:
		return "other"
	}
}

// mimeTypes lists the MIME types (and platform aliases) for each format.
// The first entry is the canonical type.
var mimeTypes = map[Format][]string{
	FormatHTML:      {"text/html"},
	FormatRTF:       {"text/rtf", "application/rtf", "text/richtext"},
	FormatPlainText: {"text/plain;charset=utf-8", "text/plain", "UTF8_STRING", "STRING", "TEXT"},
	FormatMarkdown:  {"text/markdown", "text/x-markdown", "net.daringfireball.markdown"},
}

// MIMETypes returns every MIME type a format is offered under.
func MIMETypes(f Format) []string {
	return append([]string(nil), mimeTypes[f]...)
}

// FormatForType maps a MIME type or X11 target name to a Format.
func FormatForType(mime string) Format {
	normalized := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(mime), " ", ""))
	for f, types := range mimeTypes {
		for _, t := range types {
			if strings.ToLower(t) == normalized {
				return f
			}
		}
	}
	if strings.HasPrefix(normalized, "text/plain") {
		return FormatPlainText
	}
	if strings.HasPrefix(normalized, "text/html") {
		return FormatHTML
	}
	return FormatOther
}

// Representation is one typed payload on the clipboard.
type Representation struct {
	Format Format
	// Type is the MIME type the payload was read under. Empty means the
	// canonical type for Format.
	Type string
	Data []byte
}

func (r Representation) Text() string {
	return string(r.Data)
}

// MIMEType returns Type, or the canonical MIME type for the format.
func (r Representation) MIMEType() string {
	if r.Type != "" {
		return r.Type
	}
	if types := mimeTypes[r.Format]; len(types) > 0 {
		return types[0]
	}
	return "application/octet-stream"
}

func HTML(s string) Representation {
	return Representation{Format: FormatHTML, Data: []byte(s)}
}

func RTF(b []byte) Representation {
	return Representation{Format: FormatRTF, Data: append([]byte(nil), b...)}
}

func PlainText(s string) Representation {
	return Representation{Format: FormatPlainText, Data: []byte(s)}
}

func Markdown(s string) Representation {
	return Representation{Format: FormatMarkdown, Data: []byte(s)}
}

// Snapshot is an immutable, ordered view of the clipboard taken at one
// instant. Take a fresh snapshot for every operation.
type Snapshot struct {
	reps []Representation
}

func NewSnapshot(reps ...Representation) Snapshot {
	return Snapshot{reps: cloneAll(reps)}
}

// Representations returns a copy of the snapshot's representations.
func (s Snapshot) Representations() []Representation {
	return cloneAll(s.reps)
}

// First returns the first representation of format f.
func (s Snapshot) First(f Format) (Representation, bool) {
	for _, r := range s.reps {
		if r.Format == f {
			return clone(r), true
		}
	}
	return Representation{}, false
}

func (s Snapshot) Len() int {
	return len(s.reps)
}

func (s Snapshot) Formats() []string {
	names := make([]string, 0, len(s.reps))
	for _, r := range s.reps {
		names = append(names, r.Format.String())
	}
	return names
}

func clone(r Representation) Representation {
	r.Data = append([]byte(nil), r.Data...)
	return r
}

func cloneAll(reps []Representation) []Representation {
	out := make([]Representation, len(reps))
	for i, r := range reps {
		out[i] = clone(r)
	}
	return out
}

// Clipboard reads and replaces clipboard content.
type Clipboard interface {
	// Read takes a snapshot of every supported representation.
	Read(ctx context.Context) (Snapshot, error)
	// Write clears the clipboard and publishes reps together.
	Write(ctx context.Context, reps ...Representation) error
}
