package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"sync"

	"mdclip/pkg/errors"
	"mdclip/pkg/logger"
)

type request struct {
	payload string
	reply   chan string
}

// Sandbox hosts the converter on its own goroutine. It only accepts
// escaped text and only answers with JSON, one request at a time.
type Sandbox struct {
	assets    fs.FS
	rulesPath string

	mu       sync.Mutex
	requests chan request
	quit     chan struct{}
	wg       sync.WaitGroup
}

// NewSandbox returns a sandbox that loads the embedded rule asset.
func NewSandbox() *Sandbox {
	return NewSandboxFS(Assets, RulesPath)
}

// NewSandboxFS returns a sandbox that loads its rules from fsys.
func NewSandboxFS(fsys fs.FS, rulesPath string) *Sandbox {
	return &Sandbox{assets: fsys, rulesPath: rulesPath}
}

// Start loads the rules and launches the serving goroutine. Calling Start
// on a running sandbox is a no-op.
func (s *Sandbox) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.requests != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	rules, err := LoadRules(s.assets, s.rulesPath)
	if err != nil {
		return err
	}
	t := newTranslator(rules)

	s.requests = make(chan request)
	s.quit = make(chan struct{})
	s.wg.Add(1)
	go s.serve(t, s.requests, s.quit)

	log := logger.With("sandbox")
	log.Debug().Str("rules", s.rulesPath).Msg("sandbox started")
	return nil
}

func (s *Sandbox) serve(t *translator, requests <-chan request, quit <-chan struct{}) {
	defer s.wg.Done()
	for {
		select {
		case req := <-requests:
			req.reply <- answer(t, req.payload)
		case <-quit:
			return
		}
	}
}

// answer converts one payload and encodes the outcome. A panic inside the
// converter becomes an error reply.
func answer(t *translator, payload string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = encode("error", fmt.Sprintf("converter panicked: %v", r))
		}
	}()

	markdown, err := t.translate(UnescapeTransport(payload))
	if err != nil {
		return encode("error", err.Error())
	}
	return encode("success", markdown)
}

func encode(key, value string) string {
	data, err := json.Marshal(map[string]string{key: value})
	if err != nil {
		return `{"error":"failed to encode reply"}`
	}
	return string(data)
}

// Call sends one escaped payload and waits for the JSON reply.
func (s *Sandbox) Call(ctx context.Context, payload string) (string, error) {
	s.mu.Lock()
	requests, quit := s.requests, s.quit
	s.mu.Unlock()

	if requests == nil {
		return "", errors.EngineNotReady("sandbox is not running")
	}

	req := request{payload: payload, reply: make(chan string, 1)}
	select {
	case requests <- req:
	case <-quit:
		return "", errors.EngineNotReady("sandbox stopped")
	case <-ctx.Done():
		return "", fmt.Errorf("sandbox transport: %w", ctx.Err())
	}

	select {
	case out := <-req.reply:
		return out, nil
	case <-ctx.Done():
		return "", fmt.Errorf("sandbox transport: %w", ctx.Err())
	}
}

// Close stops the serving goroutine and waits for it to exit.
func (s *Sandbox) Close() error {
	s.mu.Lock()
	if s.requests == nil {
		s.mu.Unlock()
		return nil
	}
	close(s.quit)
	s.requests = nil
	s.quit = nil
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}
