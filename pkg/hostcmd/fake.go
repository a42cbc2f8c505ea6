package hostcmd

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// Fake is a scripted Runner for tests. Responses are keyed by the command
// line ("name arg1 arg2").
type Fake struct {
	mu        sync.Mutex
	Installed map[string]bool
	Outputs   map[string][]byte
	Errors    map[string]error
	Calls     []string
	Stdin     map[string][]byte
}

func NewFake(installed ...string) *Fake {
	f := &Fake{
		Installed: make(map[string]bool),
		Outputs:   make(map[string][]byte),
		Errors:    make(map[string]error),
		Stdin:     make(map[string][]byte),
	}
	for _, name := range installed {
		f.Installed[name] = true
	}
	return f
}

func Key(name string, args ...string) string {
	return strings.Join(append([]string{name}, args...), " ")
}

func (f *Fake) Run(_ context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	key := Key(name, args...)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls = append(f.Calls, key)
	if stdin != nil {
		f.Stdin[key] = append([]byte(nil), stdin...)
	}
	if err, ok := f.Errors[key]; ok {
		return nil, err
	}
	if out, ok := f.Outputs[key]; ok {
		return out, nil
	}
	return nil, fmt.Errorf("%s: no scripted output", key)
}

func (f *Fake) LookPath(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Installed[name] {
		return "/usr/bin/" + name, nil
	}
	return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
}
