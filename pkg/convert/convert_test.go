package convert

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"mdclip/pkg/clipboard"
	"mdclip/pkg/engine"
	"mdclip/pkg/errors"
	"mdclip/pkg/history"
	"mdclip/pkg/render"
	"mdclip/pkg/richtext"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEngine struct {
	ready bool
	out   string
	err   error
	seen  []string
}

func (s *stubEngine) Ready() bool { return s.ready }

func (s *stubEngine) Convert(_ context.Context, html string) (string, error) {
	s.seen = append(s.seen, html)
	return s.out, s.err
}

type recorder struct {
	entries []history.Entry
}

func (r *recorder) Record(e history.Entry) error {
	r.entries = append(r.entries, e)
	return nil
}

// stubCodec is an RTF codec with canned results.
type stubCodec struct {
	toHTML    string
	toHTMLErr error
	rtf       []byte
	rtfErr    error
	text      string
	textErr   error
}

func (s *stubCodec) Name() string { return "stub" }

func (s *stubCodec) ToHTML(context.Context, []byte) (string, error) {
	return s.toHTML, s.toHTMLErr
}

func (s *stubCodec) FromHTML(context.Context, string) ([]byte, error) {
	return s.rtf, s.rtfErr
}

func (s *stubCodec) ToPlainText(context.Context, []byte) (string, error) {
	return s.text, s.textErr
}

func text(t *testing.T, snap clipboard.Snapshot, f clipboard.Format) string {
	t.Helper()
	r, ok := snap.First(f)
	require.True(t, ok, "missing %s", f)
	return r.Text()
}

func TestToMarkdownEndToEnd(t *testing.T) {
	h := engine.NewHandle(engine.NewSandbox(), engine.RetryPolicy{Attempts: 1})
	require.NoError(t, h.Initialize(context.Background()))
	defer h.Close()

	clip := clipboard.NewMemory(
		clipboard.HTML("<p>Hello <strong>world</strong></p>"),
		clipboard.PlainText("Hello world"),
	)
	rec := &recorder{}
	o := New(clip, h, render.Subset{}, richtext.HTMLOnly{}, WithRecorder(rec))

	res, err := o.ToMarkdown(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Hello **world**", res.Output)
	assert.Equal(t, clipboard.FormatHTML, res.Source)
	assert.Equal(t, StateDone, o.State())

	snap := clip.Contents()
	assert.Equal(t, []string{"plain-text", "markdown"}, snap.Formats())
	assert.Equal(t, "Hello **world**", text(t, snap, clipboard.FormatPlainText))
	assert.Equal(t, "Hello **world**", text(t, snap, clipboard.FormatMarkdown))

	require.Len(t, rec.entries, 1)
	assert.Equal(t, history.StatusOK, rec.entries[0].Status)
	assert.Equal(t, "html", rec.entries[0].Source)
}

func TestToMarkdownSanitizesBeforeConverting(t *testing.T) {
	eng := &stubEngine{ready: true, out: "x"}
	clip := clipboard.NewMemory(clipboard.HTML(`<meta charset="utf-8"><!-- c --><p>x</p><script>alert(1)</script>`))
	o := New(clip, eng, nil, nil)

	_, err := o.ToMarkdown(context.Background())
	require.NoError(t, err)
	require.Len(t, eng.seen, 1)
	assert.Equal(t, "<p>x</p>", eng.seen[0])
}

func TestToMarkdownPassThrough(t *testing.T) {
	eng := &stubEngine{ready: false}
	clip := clipboard.NewMemory(clipboard.PlainText("just *text*"))
	o := New(clip, eng, nil, nil)

	res, err := o.ToMarkdown(context.Background())
	require.NoError(t, err, "plain text does not need the engine")
	assert.Equal(t, clipboard.FormatPlainText, res.Source)
	assert.Empty(t, eng.seen)

	snap := clip.Contents()
	assert.Equal(t, "just *text*", text(t, snap, clipboard.FormatPlainText))
	assert.Equal(t, "just *text*", text(t, snap, clipboard.FormatMarkdown))
}

func TestToMarkdownEngineNotReady(t *testing.T) {
	eng := &stubEngine{ready: false}
	clip := clipboard.NewMemory(clipboard.HTML("<p>x</p>"), clipboard.PlainText("x"))
	rec := &recorder{}
	o := New(clip, eng, nil, nil, WithRecorder(rec))

	_, err := o.ToMarkdown(context.Background())
	assert.True(t, errors.IsKind(err, errors.ExitCodeEngineNotReady))
	assert.Empty(t, eng.seen)
	assert.Equal(t, 0, clip.Writes())
	assert.Equal(t, []string{"html", "plain-text"}, clip.Contents().Formats())
	assert.Equal(t, StateFailed, o.State())

	require.Len(t, rec.entries, 1)
	assert.Equal(t, history.StatusFailed, rec.entries[0].Status)
	assert.Equal(t, "Engine Not Ready", rec.entries[0].ErrorKind)
}

func TestToMarkdownRTF(t *testing.T) {
	eng := &stubEngine{ready: true, out: "**r**"}
	codec := &stubCodec{toHTML: "<p><b>r</b></p>"}
	clip := clipboard.NewMemory(clipboard.RTF([]byte(`{\rtf1 r}`)), clipboard.PlainText("r"))
	o := New(clip, eng, nil, codec)

	res, err := o.ToMarkdown(context.Background())
	require.NoError(t, err)
	assert.Equal(t, clipboard.FormatRTF, res.Source)
	assert.Equal(t, []string{"<p><b>r</b></p>"}, eng.seen)
}

func TestToMarkdownFailures(t *testing.T) {
	tests := []struct {
		name string
		clip *clipboard.Memory
		eng  *stubEngine
		kind errors.ExitCode
	}{
		{
			name: "read failure",
			clip: &clipboard.Memory{ReadErr: stderrors.New("denied")},
			eng:  &stubEngine{ready: true},
			kind: errors.ExitCodeClipboardRead,
		},
		{
			name: "nothing to convert",
			clip: clipboard.NewMemory(),
			eng:  &stubEngine{ready: true},
			kind: errors.ExitCodeNoSupportedContent,
		},
		{
			name: "engine error",
			clip: clipboard.NewMemory(clipboard.HTML("<p>x</p>")),
			eng:  &stubEngine{ready: true, err: errors.ConversionFailed("bad")},
			kind: errors.ExitCodeConversionFailed,
		},
		{
			name: "untyped engine error",
			clip: clipboard.NewMemory(clipboard.HTML("<p>x</p>")),
			eng:  &stubEngine{ready: true, err: stderrors.New("bad")},
			kind: errors.ExitCodeConversionFailed,
		},
		{
			name: "empty markdown",
			clip: clipboard.NewMemory(clipboard.HTML("<p>x</p>")),
			eng:  &stubEngine{ready: true, out: " \n"},
			kind: errors.ExitCodeConversionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := New(tt.clip, tt.eng, nil, nil)
			_, err := o.ToMarkdown(context.Background())
			require.Error(t, err)
			assert.Equal(t, tt.kind, errors.KindOf(err))
			assert.Equal(t, StateFailed, o.State())
		})
	}
}

func TestToMarkdownWriteFailure(t *testing.T) {
	clip := clipboard.NewMemory(clipboard.PlainText("x"))
	clip.WriteErr = stderrors.New("denied")
	o := New(clip, &stubEngine{ready: true}, nil, nil)

	_, err := o.ToMarkdown(context.Background())
	assert.True(t, errors.IsKind(err, errors.ExitCodeClipboardWriteFailure))
}

func TestToRichText(t *testing.T) {
	rtf := []byte(`{\rtf1 Title}`)
	codec := &stubCodec{rtf: rtf, text: "Title\n"}
	clip := clipboard.NewMemory(clipboard.PlainText("# Title"))
	o := New(clip, nil, render.Subset{}, codec)

	res, err := o.ToRichText(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"rtf", "html", "plain-text"}, res.Formats())

	snap := clip.Contents()
	got, _ := snap.First(clipboard.FormatRTF)
	assert.Equal(t, rtf, got.Data)
	assert.Contains(t, text(t, snap, clipboard.FormatHTML), "<h1>Title</h1>")
	assert.True(t, strings.HasPrefix(text(t, snap, clipboard.FormatHTML), "<!DOCTYPE html>"))
	assert.Equal(t, "Title\n", text(t, snap, clipboard.FormatPlainText))
	assert.Equal(t, StateDone, o.State())
}

func TestToRichTextPlainTextFallsBackToMarkdown(t *testing.T) {
	codec := &stubCodec{rtf: []byte(`{\rtf1 x}`), textErr: stderrors.New("no text")}
	clip := clipboard.NewMemory(clipboard.PlainText("**x**"))
	o := New(clip, nil, nil, codec)

	_, err := o.ToRichText(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "**x**", text(t, clip.Contents(), clipboard.FormatPlainText))
}

func TestToRichTextWithoutCodec(t *testing.T) {
	clip := clipboard.NewMemory(clipboard.PlainText("- a\n- b"))
	o := New(clip, nil, nil, richtext.HTMLOnly{})

	res, err := o.ToRichText(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"html", "plain-text"}, res.Formats())
	assert.Contains(t, text(t, clip.Contents(), clipboard.FormatHTML), "<ul><li>a</li><li>b</li></ul>")
	assert.Equal(t, "- a\n- b", text(t, clip.Contents(), clipboard.FormatPlainText))
}

func TestToRichTextReadsMarkdownRepresentation(t *testing.T) {
	clip := clipboard.NewMemory(clipboard.Markdown("*x*"))
	o := New(clip, nil, nil, nil)

	res, err := o.ToRichText(context.Background())
	require.NoError(t, err)
	assert.Equal(t, clipboard.FormatMarkdown, res.Source)
	assert.Contains(t, res.Output, "<em>x</em>")
}

func TestToRichTextFailures(t *testing.T) {
	t.Run("codec error", func(t *testing.T) {
		clip := clipboard.NewMemory(clipboard.PlainText("x"))
		o := New(clip, nil, nil, &stubCodec{rtfErr: stderrors.New("pandoc crashed")})

		_, err := o.ToRichText(context.Background())
		assert.True(t, errors.IsKind(err, errors.ExitCodeConversionFailed))
		assert.Equal(t, 0, clip.Writes())
	})

	t.Run("no text", func(t *testing.T) {
		clip := clipboard.NewMemory(clipboard.HTML("<p>x</p>"))
		o := New(clip, nil, nil, nil)

		_, err := o.ToRichText(context.Background())
		assert.True(t, errors.IsKind(err, errors.ExitCodeNoSupportedContent))
	})

	t.Run("read failure", func(t *testing.T) {
		clip := &clipboard.Memory{ReadErr: stderrors.New("denied")}
		o := New(clip, nil, nil, nil)

		_, err := o.ToRichText(context.Background())
		assert.True(t, errors.IsKind(err, errors.ExitCodeClipboardRead))
	})
}

func TestRecordsIntoHistoryStore(t *testing.T) {
	store, err := history.Open(t.TempDir()+"/history.db", time.Hour)
	require.NoError(t, err)
	defer store.Close()

	clip := clipboard.NewMemory(clipboard.PlainText("# T"))
	o := New(clip, nil, nil, nil, WithRecorder(store))

	_, err = o.ToRichText(context.Background())
	require.NoError(t, err)

	entries, err := store.List(0, "")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, history.DirectionToRich, entries[0].Direction)
	assert.Equal(t, "plain-text", entries[0].Source)
}
