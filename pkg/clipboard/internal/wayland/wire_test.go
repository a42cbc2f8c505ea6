//go:build linux

package wayland

import (
	"bytes"
	"testing"
)

func TestMessageString(t *testing.T) {
	tests := []struct {
		in   string
		want []byte
	}{
		{"", []byte{1, 0, 0, 0, 0, 0, 0, 0}},
		{"abc", []byte{4, 0, 0, 0, 'a', 'b', 'c', 0}},
		{"abcd", []byte{5, 0, 0, 0, 'a', 'b', 'c', 'd', 0, 0, 0, 0}},
	}

	for _, tt := range tests {
		got := args().putString(tt.in).bytes()
		if !bytes.Equal(got, tt.want) {
			t.Errorf("string(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if len(got)%4 != 0 {
			t.Errorf("string(%q) length %d not 4-byte aligned", tt.in, len(got))
		}
	}
}

func TestDecodeStringRoundTrip(t *testing.T) {
	for _, s := range []string{"", "text/html", "text/plain;charset=utf-8", "wl_seat"} {
		encoded := args().putString(s).putUint32(7).bytes()
		got, rest, err := decodeString(encoded)
		if err != nil {
			t.Fatalf("decodeString(%q) error = %v", s, err)
		}
		if got != s {
			t.Errorf("decodeString() = %q, want %q", got, s)
		}
		if len(rest) != 4 || le.Uint32(rest) != 7 {
			t.Errorf("decodeString(%q) rest = %v, want trailing uint32 7", s, rest)
		}
	}

	if _, _, err := decodeString([]byte{9, 0}); err == nil {
		t.Error("decodeString() expected error for short length field")
	}
	if _, _, err := decodeString([]byte{9, 0, 0, 0, 'a'}); err == nil {
		t.Error("decodeString() expected error for short data")
	}
}

func TestHeader(t *testing.T) {
	h := header(idSource, 3, 12)
	if le.Uint32(h[0:4]) != idSource {
		t.Errorf("object id = %d, want %d", le.Uint32(h[0:4]), idSource)
	}
	word := le.Uint32(h[4:8])
	if word&0xffff != 3 || word>>16 != 20 {
		t.Errorf("opcode/size word = %#x, want opcode 3 size 20", word)
	}
}

func TestConnParse(t *testing.T) {
	payload := args().putString("text/html").bytes()
	raw := append(header(idSource, 0, len(payload)), payload...)

	c := &conn{in: raw[:6], pendingFDs: []int{42}}
	if _, ok := c.parse(); ok {
		t.Fatal("parse() returned an event from a partial header")
	}

	c.in = append(raw, 0xff)
	ev, ok := c.parse()
	if !ok {
		t.Fatal("parse() found no event")
	}
	if ev.objectID != idSource || ev.opcode != 0 || ev.fd != 42 {
		t.Errorf("parse() = %+v", ev)
	}
	mime, _, err := decodeString(ev.payload)
	if err != nil || mime != "text/html" {
		t.Errorf("payload mime = %q, %v", mime, err)
	}
	if len(c.in) != 1 {
		t.Errorf("remaining buffer = %d bytes, want 1", len(c.in))
	}
}
