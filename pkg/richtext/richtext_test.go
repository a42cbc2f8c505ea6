package richtext

import (
	"context"
	"errors"
	"testing"

	"mdclip/pkg/hostcmd"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name      string
		mode      string
		installed []string
		want      string
		wantErr   bool
	}{
		{name: "auto prefers textutil", mode: ModeAuto, installed: []string{"textutil", "pandoc"}, want: ModeTextutil},
		{name: "auto falls back to pandoc", mode: "", installed: []string{"pandoc"}, want: ModePandoc},
		{name: "auto without tools", mode: ModeAuto, want: ModeNone},
		{name: "explicit pandoc", mode: ModePandoc, installed: []string{"pandoc"}, want: ModePandoc},
		{name: "explicit pandoc missing", mode: ModePandoc, wantErr: true},
		{name: "explicit textutil missing", mode: ModeTextutil, installed: []string{"pandoc"}, wantErr: true},
		{name: "none", mode: ModeNone, installed: []string{"textutil"}, want: ModeNone},
		{name: "unknown", mode: "word", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec, err := Detect(tt.mode, hostcmd.NewFake(tt.installed...))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, codec.Name())
		})
	}
}

func TestTextutil(t *testing.T) {
	ctx := context.Background()
	f := hostcmd.NewFake("textutil")
	f.Outputs[hostcmd.Key("textutil", "-stdin", "-stdout", "-format", "rtf", "-convert", "html")] = []byte("<p>x</p>")
	f.Outputs[hostcmd.Key("textutil", "-stdin", "-stdout", "-format", "html", "-inputencoding", "UTF-8", "-convert", "rtf")] = []byte(`{\rtf1 x}`)
	f.Outputs[hostcmd.Key("textutil", "-stdin", "-stdout", "-format", "rtf", "-convert", "txt")] = []byte("x\n")

	codec := NewTextutil(f)

	html, err := codec.ToHTML(ctx, []byte(`{\rtf1 x}`))
	require.NoError(t, err)
	assert.Equal(t, "<p>x</p>", html)

	rtf, err := codec.FromHTML(ctx, "<p>x</p>")
	require.NoError(t, err)
	assert.Equal(t, `{\rtf1 x}`, string(rtf))

	text, err := codec.ToPlainText(ctx, rtf)
	require.NoError(t, err)
	assert.Equal(t, "x\n", text)
}

func TestPandocErrors(t *testing.T) {
	ctx := context.Background()
	f := hostcmd.NewFake("pandoc")
	f.Errors[hostcmd.Key("pandoc", "-f", "rtf", "-t", "html")] = errors.New("unknown reader: rtf")
	f.Outputs[hostcmd.Key("pandoc", "-f", "html", "-t", "rtf", "--standalone")] = nil
	f.Outputs[hostcmd.Key("pandoc", "-f", "rtf", "-t", "plain", "--wrap=none")] = []byte("  \n")

	codec := NewPandoc(f)

	_, err := codec.ToHTML(ctx, []byte(`{\rtf1}`))
	assert.Error(t, err)

	_, err = codec.FromHTML(ctx, "<p>x</p>")
	assert.Error(t, err, "empty output is a failure")

	_, err = codec.ToPlainText(ctx, []byte(`{\rtf1}`))
	assert.Error(t, err, "blank output is a failure")
}

func TestHTMLOnly(t *testing.T) {
	ctx := context.Background()
	var codec Codec = HTMLOnly{}

	_, err := codec.ToHTML(ctx, nil)
	assert.ErrorIs(t, err, ErrUnsupported)
	_, err = codec.FromHTML(ctx, "")
	assert.ErrorIs(t, err, ErrUnsupported)
	_, err = codec.ToPlainText(ctx, nil)
	assert.ErrorIs(t, err, ErrUnsupported)
}
