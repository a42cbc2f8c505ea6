package clipboard

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"mdclip/pkg/hostcmd"
	"mdclip/pkg/logger"

	atotto "github.com/atotto/clipboard"
)

// rtfHeader starts every RTF document.
var rtfHeader = []byte(`{\rtf`)

// System is the host clipboard. It prefers the richest reader available:
// wl-paste on Wayland, xclip on X11, pbpaste on macOS, and finally plain
// text through atotto/clipboard.
type System struct {
	runner hostcmd.Runner
	getenv func(string) string
	// spawn starts a detached Wayland clipboard owner. Replaced in tests.
	spawn func(offers []Offer) error
}

func NewSystem() *System {
	return &System{
		runner: hostcmd.Exec{},
		getenv: os.Getenv,
		spawn:  spawnOwner,
	}
}

// NewSystemWithRunner is used by tests to script the host tools.
func NewSystemWithRunner(runner hostcmd.Runner, getenv func(string) string, spawn func([]Offer) error) *System {
	return &System{runner: runner, getenv: getenv, spawn: spawn}
}

func (s *System) wayland() bool {
	return s.getenv("WAYLAND_DISPLAY") != "" && hostcmd.Available(s.runner, "wl-paste")
}

func (s *System) x11() bool {
	return s.getenv("DISPLAY") != "" && hostcmd.Available(s.runner, "xclip")
}

func (s *System) Read(ctx context.Context) (Snapshot, error) {
	switch {
	case s.wayland():
		return s.readTargets(ctx,
			[]string{"wl-paste", "--list-types"},
			func(t string) []string { return []string{"wl-paste", "--no-newline", "--type", t} })
	case s.x11():
		return s.readTargets(ctx,
			[]string{"xclip", "-selection", "clipboard", "-t", "TARGETS", "-o"},
			func(t string) []string { return []string{"xclip", "-selection", "clipboard", "-t", t, "-o"} })
	case hostcmd.Available(s.runner, "pbpaste"):
		return s.readPasteboard(ctx)
	}

	text, err := atotto.ReadAll()
	if err != nil {
		return Snapshot{}, fmt.Errorf("read clipboard: %w", err)
	}
	return NewSnapshot(PlainText(text)), nil
}

// readTargets lists the offered types and fetches the first type of each
// known format, keeping the order the owner offered them in.
func (s *System) readTargets(ctx context.Context, list []string, fetch func(string) []string) (Snapshot, error) {
	out, err := s.runner.Run(ctx, nil, list[0], list[1:]...)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list clipboard types: %w", err)
	}

	seen := make(map[Format]bool)
	var reps []Representation
	for _, line := range strings.Split(string(out), "\n") {
		mime := strings.TrimSpace(line)
		if mime == "" {
			continue
		}
		f := FormatForType(mime)
		if f == FormatOther || seen[f] {
			continue
		}

		args := fetch(mime)
		data, err := s.runner.Run(ctx, nil, args[0], args[1:]...)
		if err != nil {
			logger.Debug().Err(err).Str("type", mime).Msg("skipping unreadable clipboard type")
			continue
		}
		seen[f] = true
		reps = append(reps, Representation{Format: f, Type: mime, Data: data})
	}

	logger.Debug().Int("representations", len(reps)).Msg("clipboard read")
	return NewSnapshot(reps...), nil
}

// readPasteboard reads macOS RTF and plain text. pbpaste falls back to
// text when no RTF is present, so the RTF header is checked.
func (s *System) readPasteboard(ctx context.Context) (Snapshot, error) {
	var reps []Representation

	if data, err := s.runner.Run(ctx, nil, "pbpaste", "-Prefer", "rtf"); err == nil && bytes.HasPrefix(data, rtfHeader) {
		reps = append(reps, Representation{Format: FormatRTF, Data: data})
	}

	text, err := s.runner.Run(ctx, nil, "pbpaste", "-Prefer", "txt")
	if err != nil {
		if len(reps) == 0 {
			return Snapshot{}, fmt.Errorf("read pasteboard: %w", err)
		}
	} else {
		reps = append(reps, Representation{Format: FormatPlainText, Data: text})
	}

	return NewSnapshot(reps...), nil
}

func (s *System) Write(ctx context.Context, reps ...Representation) error {
	if len(reps) == 0 {
		return fmt.Errorf("write clipboard: nothing to write")
	}

	if s.getenv("WAYLAND_DISPLAY") != "" && s.spawn != nil {
		err := s.spawn(Offers(reps...))
		if err == nil {
			return nil
		}
		logger.Warn().Err(err).Msg("wayland clipboard owner unavailable, falling back")
	}

	if hostcmd.Available(s.runner, "pbcopy") {
		// pbcopy stores input beginning with an RTF header as RTF.
		payload := preferred(reps, FormatRTF, FormatPlainText, FormatMarkdown)
		_, err := s.runner.Run(ctx, payload.Data, "pbcopy")
		return err
	}

	if s.x11() {
		// An xclip process owns exactly one target, so HTML is published
		// without a plain-text sibling.
		payload := preferred(reps, FormatHTML, FormatPlainText, FormatMarkdown)
		_, err := s.runner.Run(ctx, payload.Data, "xclip", "-selection", "clipboard", "-t", payload.MIMEType(), "-i")
		return err
	}

	return atotto.WriteAll(preferred(reps, FormatPlainText, FormatMarkdown).Text())
}

// preferred returns the first representation matching the formats in
// order, or the first representation when none match.
func preferred(reps []Representation, formats ...Format) Representation {
	for _, f := range formats {
		for _, r := range reps {
			if r.Format == f {
				return r
			}
		}
	}
	return reps[0]
}

// Offer is one MIME type served by the clipboard owner.
type Offer struct {
	MIME string `json:"mime"`
	Data []byte `json:"data"`
}

// Offers expands representations into every MIME alias they are served
// under. Earlier representations win when two share a type.
func Offers(reps ...Representation) []Offer {
	seen := make(map[string]bool)
	var offers []Offer
	add := func(mime string, data []byte) {
		if seen[mime] {
			return
		}
		seen[mime] = true
		offers = append(offers, Offer{MIME: mime, Data: data})
	}

	for _, r := range reps {
		if r.Type != "" {
			add(r.Type, r.Data)
		}
		for _, mime := range mimeTypes[r.Format] {
			add(mime, r.Data)
		}
	}
	return offers
}
