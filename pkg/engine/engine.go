// Package engine converts HTML to Markdown through an engine host that is
// started asynchronously and reached through an escaped text transport.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"mdclip/pkg/errors"
	"mdclip/pkg/logger"
)

const (
	ModeSandbox = "sandbox"
	ModeNative  = "native"
)

// MarkdownEngine is what the conversion orchestrator depends on.
type MarkdownEngine interface {
	Ready() bool
	Convert(ctx context.Context, html string) (string, error)
}

// Host runs the actual converter. Call takes an escaped payload and
// returns the raw JSON reply.
type Host interface {
	Start(ctx context.Context) error
	Call(ctx context.Context, payload string) (string, error)
	Close() error
}

// RetryPolicy bounds engine initialisation.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

var DefaultRetryPolicy = RetryPolicy{Attempts: 3, Delay: time.Second}

// Handle owns a Host and its readiness state.
type Handle struct {
	host   Host
	policy RetryPolicy

	mu        sync.Mutex
	ready     bool
	abandoned bool
	attempts  int
	lastErr   error

	done     chan struct{}
	doneOnce sync.Once
}

func NewHandle(host Host, policy RetryPolicy) *Handle {
	if policy.Attempts < 1 {
		policy.Attempts = 1
	}
	if policy.Delay < 0 {
		policy.Delay = 0
	}
	return &Handle{
		host:   host,
		policy: policy,
		done:   make(chan struct{}),
	}
}

// Initialize starts the host, retrying per the policy. MissingResource
// errors abort immediately. On failure the handle is abandoned.
func (h *Handle) Initialize(ctx context.Context) error {
	log := logger.With("engine")

	h.mu.Lock()
	if h.ready {
		h.mu.Unlock()
		return nil
	}
	if h.abandoned {
		h.mu.Unlock()
		return h.notReady()
	}
	h.mu.Unlock()

	for attempt := 1; attempt <= h.policy.Attempts; attempt++ {
		err := h.host.Start(ctx)

		h.mu.Lock()
		h.attempts = attempt
		if err == nil {
			h.ready = true
			h.lastErr = nil
			h.mu.Unlock()
			h.finish()
			log.Debug().Int("attempt", attempt).Msg("engine ready")
			return nil
		}
		h.lastErr = err
		h.mu.Unlock()

		log.Debug().Err(err).Int("attempt", attempt).Int("max_attempts", h.policy.Attempts).Msg("engine start failed")

		if errors.IsKind(err, errors.ExitCodeMissingResource) {
			h.abandon()
			return err
		}

		if attempt == h.policy.Attempts {
			break
		}

		select {
		case <-ctx.Done():
			h.abandon()
			return errors.NewWithError(errors.ExitCodeEngineNotReady, errors.ErrMsgEngineNotReady+" (initialisation cancelled)", ctx.Err())
		case <-time.After(h.policy.Delay):
		}
	}

	h.abandon()
	log.Warn().Err(h.lastError()).Int("attempts", h.policy.Attempts).Msg("engine abandoned")
	return h.notReady()
}

// StartAsync runs Initialize in the background.
func (h *Handle) StartAsync(ctx context.Context) {
	go func() {
		_ = h.Initialize(ctx)
	}()
}

// Wait blocks until the handle is ready or abandoned, or ctx is done.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
	case <-ctx.Done():
		return errors.NewWithError(errors.ExitCodeEngineNotReady, errors.ErrMsgEngineNotReady+" (timed out waiting)", ctx.Err())
	}
	if h.Ready() {
		return nil
	}
	return h.notReady()
}

func (h *Handle) Ready() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ready
}

func (h *Handle) Abandoned() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.abandoned
}

// Attempts reports how many start attempts have been made.
func (h *Handle) Attempts() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.attempts
}

// Convert sends html to the host and interprets its reply.
func (h *Handle) Convert(ctx context.Context, html string) (string, error) {
	if !h.Ready() {
		return "", h.notReady()
	}

	reply, err := h.host.Call(ctx, EscapeForTransport(html))
	if err != nil {
		if errors.IsKind(err, errors.ExitCodeEngineNotReady) {
			return "", err
		}
		return "", errors.ConversionFailedWithError(err)
	}
	return parseReply(reply)
}

// Close tears the host down. The handle is not ready afterwards.
func (h *Handle) Close() error {
	h.mu.Lock()
	h.ready = false
	h.mu.Unlock()
	return h.host.Close()
}

func (h *Handle) abandon() {
	h.mu.Lock()
	h.abandoned = true
	h.mu.Unlock()
	h.finish()
}

func (h *Handle) finish() {
	h.doneOnce.Do(func() { close(h.done) })
}

func (h *Handle) lastError() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastErr
}

func (h *Handle) notReady() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch {
	case h.abandoned && h.lastErr != nil:
		return errors.NewWithError(errors.ExitCodeEngineNotReady,
			fmt.Sprintf("%s (failed to start after %d attempt(s))", errors.ErrMsgEngineNotReady, h.attempts), h.lastErr)
	case h.abandoned:
		return errors.EngineNotReady("engine was abandoned")
	default:
		return errors.EngineNotReady("engine is still starting")
	}
}

// reply is the JSON shape the host answers with.
type reply struct {
	Success *string `json:"success"`
	Error   *string `json:"error"`
}

func parseReply(raw string) (string, error) {
	var r reply
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return "", errors.ConversionFailed("unreadable engine response")
	}
	switch {
	case r.Success != nil:
		return *r.Success, nil
	case r.Error != nil:
		return "", errors.ConversionFailed(*r.Error)
	default:
		return "", errors.ConversionFailed("unexpected engine response")
	}
}

// Engine is a MarkdownEngine with a lifecycle, as built by New.
type Engine interface {
	MarkdownEngine
	Wait(ctx context.Context) error
	Close() error
}

// New builds the engine for mode. Sandbox engines start asynchronously;
// callers Wait before relying on Ready.
func New(ctx context.Context, mode string, policy RetryPolicy) (Engine, error) {
	switch mode {
	case "", ModeSandbox:
		h := NewHandle(NewSandbox(), policy)
		h.StartAsync(ctx)
		return h, nil
	case ModeNative:
		n, err := NewNative()
		if err != nil {
			return nil, err
		}
		return n, nil
	default:
		return nil, errors.ConfigError(fmt.Sprintf("unknown engine mode %q (want sandbox or native)", mode))
	}
}

// Modes lists the accepted engine modes.
func Modes() []string {
	return []string{ModeSandbox, ModeNative}
}
