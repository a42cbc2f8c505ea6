//go:build linux

// Package wayland implements the few wlr-data-control requests needed to
// own the clipboard and serve several MIME types from one process.
package wayland

import (
	"encoding/binary"
	"fmt"
	"syscall"
)

var le = binary.LittleEndian

// message builds the argument section of a Wayland request.
type message struct {
	buf []byte
}

func (m *message) putUint32(v uint32) *message {
	m.buf = le.AppendUint32(m.buf, v)
	return m
}

// putString appends a Wayland string: length including the NUL terminator,
// the bytes, then padding to a 4-byte boundary.
func (m *message) putString(s string) *message {
	n := len(s) + 1
	m.buf = le.AppendUint32(m.buf, uint32(n))
	m.buf = append(m.buf, s...)
	for pad := (n+3)&^3 - len(s); pad > 0; pad-- {
		m.buf = append(m.buf, 0)
	}
	return m
}

func (m *message) bytes() []byte {
	return m.buf
}

func args() *message {
	return &message{}
}

// header packs object id, opcode and total size.
func header(objectID uint32, opcode uint16, argLen int) []byte {
	size := uint32(8 + argLen)
	h := make([]byte, 8)
	le.PutUint32(h[0:], objectID)
	le.PutUint32(h[4:], uint32(opcode)|size<<16)
	return h
}

// decodeString reads a Wayland string and returns the remaining payload.
func decodeString(data []byte) (string, []byte, error) {
	if len(data) < 4 {
		return "", data, fmt.Errorf("wayland: short string length field")
	}
	n := int(le.Uint32(data[:4]))
	data = data[4:]
	if n == 0 {
		return "", data, nil
	}
	padded := (n + 3) &^ 3
	if len(data) < padded {
		return "", data, fmt.Errorf("wayland: short string data")
	}
	return string(data[:n-1]), data[padded:], nil
}

type event struct {
	objectID uint32
	opcode   uint16
	payload  []byte
	// fd is a descriptor passed with the event via SCM_RIGHTS, or -1.
	fd int
}

func (e event) closeFD() {
	if e.fd >= 0 {
		syscall.Close(e.fd) //nolint:errcheck
	}
}

// conn is a buffered client connection to the compositor socket.
type conn struct {
	fd         int
	in         []byte
	pendingFDs []int
}

func dial(path string) (*conn, error) {
	fd, err := syscall.Socket(syscall.AF_UNIX, syscall.SOCK_STREAM, 0)
	if err != nil {
		return nil, err
	}
	if err := syscall.Connect(fd, &syscall.SockaddrUnix{Name: path}); err != nil {
		syscall.Close(fd) //nolint:errcheck
		return nil, err
	}
	return &conn{fd: fd}, nil
}

func (c *conn) close() {
	syscall.Close(c.fd) //nolint:errcheck
}

func (c *conn) send(objectID uint32, opcode uint16, a *message) error {
	body := a.bytes()
	_, err := syscall.Write(c.fd, append(header(objectID, opcode, len(body)), body...))
	return err
}

// next returns the next complete event, reading from the socket as needed.
func (c *conn) next() (event, error) {
	for {
		if ev, ok := c.parse(); ok {
			return ev, nil
		}

		buf := make([]byte, 4096)
		oob := make([]byte, syscall.CmsgSpace(4*8))
		n, oobn, _, _, err := syscall.Recvmsg(c.fd, buf, oob, 0)
		if err != nil {
			return event{fd: -1}, err
		}
		if n == 0 {
			return event{fd: -1}, fmt.Errorf("wayland: connection closed")
		}
		c.in = append(c.in, buf[:n]...)
		c.collectFDs(oob[:oobn])
	}
}

// parse pops one buffered event if a complete one is available.
func (c *conn) parse() (event, bool) {
	if len(c.in) < 8 {
		return event{}, false
	}
	word := le.Uint32(c.in[4:8])
	size := int(word >> 16)
	if size < 8 || len(c.in) < size {
		return event{}, false
	}

	ev := event{
		objectID: le.Uint32(c.in[0:4]),
		opcode:   uint16(word & 0xffff),
		payload:  append([]byte(nil), c.in[8:size]...),
		fd:       -1,
	}
	c.in = c.in[size:]
	if len(c.pendingFDs) > 0 {
		ev.fd = c.pendingFDs[0]
		c.pendingFDs = c.pendingFDs[1:]
	}
	return ev, true
}

func (c *conn) collectFDs(oob []byte) {
	if len(oob) == 0 {
		return
	}
	msgs, err := syscall.ParseSocketControlMessage(oob)
	if err != nil {
		return
	}
	for i := range msgs {
		if fds, err := syscall.ParseUnixRights(&msgs[i]); err == nil {
			c.pendingFDs = append(c.pendingFDs, fds...)
		}
	}
}
