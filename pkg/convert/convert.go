// Package convert runs one clipboard conversion at a time, in either
// direction: rich clipboard content to Markdown, or Markdown to rich text.
package convert

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"

	"mdclip/pkg/clipboard"
	"mdclip/pkg/engine"
	"mdclip/pkg/errors"
	"mdclip/pkg/history"
	"mdclip/pkg/logger"
	"mdclip/pkg/render"
	"mdclip/pkg/richtext"
	"mdclip/pkg/sanitize"
	"mdclip/pkg/selector"

	"github.com/rs/zerolog"
)

type State string

const (
	StateIdle             State = "idle"
	StateSelectingContent State = "selecting-content"
	StateSanitizing       State = "sanitizing"
	StateConverting       State = "converting"
	StatePassThrough      State = "pass-through"
	StateReadingPlainText State = "reading-plain-text"
	StateRendering        State = "rendering"
	StateEncodingRichText State = "encoding-rich-text"
	StateWritingClipboard State = "writing-clipboard"
	StateDone             State = "done"
	StateFailed           State = "failed"
)

// Recorder receives one entry per finished conversion.
type Recorder interface {
	Record(e history.Entry) error
}

// Result describes what a conversion wrote to the clipboard.
type Result struct {
	Direction string
	Source    clipboard.Format
	Output    string
	Written   []clipboard.Representation
}

// Formats lists the formats written, in write order.
func (r Result) Formats() []string {
	names := make([]string, 0, len(r.Written))
	for _, rep := range r.Written {
		names = append(names, rep.Format.String())
	}
	return names
}

type Orchestrator struct {
	clip     clipboard.Clipboard
	engine   engine.MarkdownEngine
	renderer render.Renderer
	codec    richtext.Codec
	recorder Recorder

	mu    sync.Mutex
	state State
	log   zerolog.Logger
}

type Option func(*Orchestrator)

func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) {
		o.recorder = r
	}
}

func New(clip clipboard.Clipboard, eng engine.MarkdownEngine, renderer render.Renderer, codec richtext.Codec, opts ...Option) *Orchestrator {
	if renderer == nil {
		renderer = render.Subset{}
	}
	if codec == nil {
		codec = richtext.HTMLOnly{}
	}
	o := &Orchestrator{
		clip:     clip,
		engine:   eng,
		renderer: renderer,
		codec:    codec,
		state:    StateIdle,
		log:      logger.With("convert"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the state the last operation ended in.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// ToMarkdown replaces the clipboard's best representation with Markdown,
// published as plain text and Markdown.
func (o *Orchestrator) ToMarkdown(ctx context.Context) (Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	res := Result{Direction: history.DirectionToMarkdown}
	o.state = StateIdle

	var input string
	err := func() error {
		o.transition(StateSelectingContent)
		snap, err := o.clip.Read(ctx)
		if err != nil {
			return errors.ClipboardReadFailure(err)
		}

		sel, err := selector.Select(ctx, snap, o.codec)
		if err != nil {
			return err
		}
		res.Source = sel.Source
		input = sel.Content

		markdown := sel.Content
		if sel.HTMLLike() {
			if o.engine == nil || !o.engine.Ready() {
				return errors.EngineNotReady("still starting")
			}

			o.transition(StateSanitizing)
			clean := sanitize.HTML(sel.Content)

			o.transition(StateConverting)
			markdown, err = o.engine.Convert(ctx, clean)
			if err != nil {
				return asConversionError(err)
			}
			if strings.TrimSpace(markdown) == "" {
				return errors.ConversionFailed("the content has no text")
			}
		} else {
			o.transition(StatePassThrough)
		}

		reps := []clipboard.Representation{
			clipboard.PlainText(markdown),
			clipboard.Markdown(markdown),
		}
		o.transition(StateWritingClipboard)
		if err := o.clip.Write(ctx, reps...); err != nil {
			return errors.ClipboardWriteFailure(err)
		}

		res.Output = markdown
		res.Written = reps
		return nil
	}()

	o.finish(res, input, err)
	if err != nil {
		return Result{Direction: res.Direction, Source: res.Source}, err
	}
	return res, nil
}

// ToRichText renders the clipboard's Markdown and publishes it as RTF,
// HTML and plain text. Without an RTF codec only HTML and plain text are
// written.
func (o *Orchestrator) ToRichText(ctx context.Context) (Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	res := Result{Direction: history.DirectionToRich}
	o.state = StateIdle

	var input string
	err := func() error {
		o.transition(StateReadingPlainText)
		snap, err := o.clip.Read(ctx)
		if err != nil {
			return errors.ClipboardReadFailure(err)
		}

		markdown, source, ok := markdownSource(snap)
		if !ok {
			return errors.NoSupportedContent()
		}
		res.Source = source
		input = markdown

		o.transition(StateRendering)
		html := o.renderer.Render(markdown)

		o.transition(StateEncodingRichText)
		var reps []clipboard.Representation
		rtf, err := o.codec.FromHTML(ctx, html)
		switch {
		case err == nil:
			reps = []clipboard.Representation{
				clipboard.RTF(rtf),
				clipboard.HTML(html),
				clipboard.PlainText(o.plainText(ctx, rtf, markdown)),
			}
		case stderrors.Is(err, richtext.ErrUnsupported):
			o.log.Debug().Str("codec", o.codec.Name()).Msg("no rtf codec, writing html only")
			reps = []clipboard.Representation{
				clipboard.HTML(html),
				clipboard.PlainText(markdown),
			}
		default:
			return errors.ConversionFailedWithError(err)
		}

		o.transition(StateWritingClipboard)
		if err := o.clip.Write(ctx, reps...); err != nil {
			return errors.ClipboardWriteFailure(err)
		}

		res.Output = html
		res.Written = reps
		return nil
	}()

	o.finish(res, input, err)
	if err != nil {
		return Result{Direction: res.Direction, Source: res.Source}, err
	}
	return res, nil
}

// markdownSource prefers plain text and falls back to a Markdown
// representation.
func markdownSource(snap clipboard.Snapshot) (string, clipboard.Format, bool) {
	for _, f := range []clipboard.Format{clipboard.FormatPlainText, clipboard.FormatMarkdown} {
		if r, ok := snap.First(f); ok && strings.TrimSpace(r.Text()) != "" {
			return r.Text(), f, true
		}
	}
	return "", clipboard.FormatOther, false
}

// plainText extracts text from the generated RTF, falling back to the
// Markdown source.
func (o *Orchestrator) plainText(ctx context.Context, rtf []byte, markdown string) string {
	text, err := o.codec.ToPlainText(ctx, rtf)
	if err != nil || strings.TrimSpace(text) == "" {
		o.log.Debug().Err(err).Msg("rtf text extraction failed, using markdown source")
		return markdown
	}
	return text
}

func (o *Orchestrator) transition(next State) {
	o.log.Debug().Str("from", string(o.state)).Str("to", string(next)).Msg("state change")
	o.state = next
}

func (o *Orchestrator) finish(res Result, input string, err error) {
	entry := history.Entry{
		Direction:  res.Direction,
		InputBytes: len(input),
	}
	if res.Source != clipboard.FormatOther {
		entry.Source = res.Source.String()
	}

	if err != nil {
		o.log.Debug().Err(err).Str("state", string(o.state)).Msg("conversion failed")
		o.transition(StateFailed)
		entry.Status = history.StatusFailed
		entry.ErrorKind = errors.Title(err)
	} else {
		o.transition(StateDone)
		entry.Status = history.StatusOK
		entry.OutputBytes = len(res.Output)
		entry.Preview = history.Preview(res.Output)
	}

	if o.recorder != nil {
		if rerr := o.recorder.Record(entry); rerr != nil {
			o.log.Warn().Err(rerr).Msg("failed to record history")
		}
	}
}

// asConversionError keeps typed engine errors and wraps anything else.
func asConversionError(err error) error {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return err
	}
	return errors.ConversionFailedWithError(err)
}
