// Package richtext converts between RTF and HTML using the host's
// document tools: textutil on macOS, pandoc elsewhere.
package richtext

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mdclip/pkg/hostcmd"
)

const (
	ModeAuto     = "auto"
	ModeTextutil = "textutil"
	ModePandoc   = "pandoc"
	ModeNone     = "none"
)

// ErrUnsupported is returned by codecs that cannot produce or read RTF.
var ErrUnsupported = errors.New("rtf conversion is not available on this host")

// Codec converts rich text. Every method may fail; callers treat failures
// as a reason to fall back to a simpler format.
type Codec interface {
	Name() string
	ToHTML(ctx context.Context, rtf []byte) (string, error)
	FromHTML(ctx context.Context, html string) ([]byte, error)
	ToPlainText(ctx context.Context, rtf []byte) (string, error)
}

// Detect returns the codec for mode. ModeAuto picks textutil, then
// pandoc, then the HTML-only codec.
func Detect(mode string, runner hostcmd.Runner) (Codec, error) {
	switch mode {
	case "", ModeAuto:
		if hostcmd.Available(runner, "textutil") {
			return &Textutil{runner: runner}, nil
		}
		if hostcmd.Available(runner, "pandoc") {
			return &Pandoc{runner: runner}, nil
		}
		return HTMLOnly{}, nil
	case ModeTextutil:
		if !hostcmd.Available(runner, "textutil") {
			return nil, fmt.Errorf("codec %q requested but textutil is not installed", mode)
		}
		return &Textutil{runner: runner}, nil
	case ModePandoc:
		if !hostcmd.Available(runner, "pandoc") {
			return nil, fmt.Errorf("codec %q requested but pandoc is not installed", mode)
		}
		return &Pandoc{runner: runner}, nil
	case ModeNone:
		return HTMLOnly{}, nil
	default:
		return nil, fmt.Errorf("unknown codec %q (want auto, textutil, pandoc or none)", mode)
	}
}

// Modes lists the accepted codec modes.
func Modes() []string {
	return []string{ModeAuto, ModeTextutil, ModePandoc, ModeNone}
}

// Textutil drives macOS textutil through stdin/stdout.
type Textutil struct {
	runner hostcmd.Runner
}

func NewTextutil(runner hostcmd.Runner) *Textutil {
	return &Textutil{runner: runner}
}

func (t *Textutil) Name() string { return ModeTextutil }

func (t *Textutil) ToHTML(ctx context.Context, rtf []byte) (string, error) {
	out, err := t.runner.Run(ctx, rtf, "textutil", "-stdin", "-stdout", "-format", "rtf", "-convert", "html")
	return nonEmpty(out, err, "rtf to html")
}

func (t *Textutil) FromHTML(ctx context.Context, html string) ([]byte, error) {
	out, err := t.runner.Run(ctx, []byte(html), "textutil", "-stdin", "-stdout", "-format", "html", "-inputencoding", "UTF-8", "-convert", "rtf")
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("textutil: html to rtf produced no output")
	}
	return out, nil
}

func (t *Textutil) ToPlainText(ctx context.Context, rtf []byte) (string, error) {
	out, err := t.runner.Run(ctx, rtf, "textutil", "-stdin", "-stdout", "-format", "rtf", "-convert", "txt")
	return nonEmpty(out, err, "rtf to text")
}

// Pandoc uses pandoc's RTF reader (pandoc 3+) and writer.
type Pandoc struct {
	runner hostcmd.Runner
}

func NewPandoc(runner hostcmd.Runner) *Pandoc {
	return &Pandoc{runner: runner}
}

func (p *Pandoc) Name() string { return ModePandoc }

func (p *Pandoc) ToHTML(ctx context.Context, rtf []byte) (string, error) {
	out, err := p.runner.Run(ctx, rtf, "pandoc", "-f", "rtf", "-t", "html")
	return nonEmpty(out, err, "rtf to html")
}

func (p *Pandoc) FromHTML(ctx context.Context, html string) ([]byte, error) {
	out, err := p.runner.Run(ctx, []byte(html), "pandoc", "-f", "html", "-t", "rtf", "--standalone")
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("pandoc: html to rtf produced no output")
	}
	return out, nil
}

func (p *Pandoc) ToPlainText(ctx context.Context, rtf []byte) (string, error) {
	out, err := p.runner.Run(ctx, rtf, "pandoc", "-f", "rtf", "-t", "plain", "--wrap=none")
	return nonEmpty(out, err, "rtf to text")
}

// HTMLOnly is used when no RTF tool is installed. Rich output is then
// published as HTML only.
type HTMLOnly struct{}

func (HTMLOnly) Name() string { return ModeNone }

func (HTMLOnly) ToHTML(context.Context, []byte) (string, error) {
	return "", ErrUnsupported
}

func (HTMLOnly) FromHTML(context.Context, string) ([]byte, error) {
	return nil, ErrUnsupported
}

func (HTMLOnly) ToPlainText(context.Context, []byte) (string, error) {
	return "", ErrUnsupported
}

func nonEmpty(out []byte, err error, what string) (string, error) {
	if err != nil {
		return "", err
	}
	s := string(out)
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%s produced no output", what)
	}
	return s, nil
}
