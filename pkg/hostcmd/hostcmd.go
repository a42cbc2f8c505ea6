// Package hostcmd runs the host tools mdclip talks to (wl-paste, xclip,
// textutil, pandoc) behind an interface that tests can replace.
package hostcmd

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes external commands.
type Runner interface {
	// Run executes name with args, feeding stdin when non-nil, and returns
	// stdout. A non-zero exit is an error that includes stderr.
	Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error)
	// LookPath reports whether name is installed.
	LookPath(name string) (string, error)
}

// Exec implements Runner with os/exec.
type Exec struct{}

func (Exec) Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return stdout.Bytes(), nil
}

func (Exec) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Available reports whether every named tool is on PATH.
func Available(r Runner, names ...string) bool {
	for _, name := range names {
		if _, err := r.LookPath(name); err != nil {
			return false
		}
	}
	return true
}
