package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Spinner draws a one-line activity indicator until stopped. Nothing is
// drawn before Delay elapses, so short waits stay silent.
type Spinner struct {
	mu         sync.Mutex
	writer     io.Writer
	frames     []string
	frameIndex int
	message    string
	running    bool
	drawn      bool
	stopChan   chan struct{}
	wg         sync.WaitGroup

	Delay    time.Duration
	Interval time.Duration
}

// NewSpinner creates a spinner that writes to stderr.
func NewSpinner(message string) *Spinner {
	return &Spinner{
		writer:   os.Stderr,
		frames:   []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		message:  message,
		Delay:    300 * time.Millisecond,
		Interval: 100 * time.Millisecond,
	}
}

func (s *Spinner) SetWriter(w io.Writer) {
	s.writer = w
}

func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

func (s *Spinner) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	s.wg.Add(1)
	go s.animate()
}

// Stop halts the animation and clears the line if anything was drawn.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopChan)
	s.mu.Unlock()

	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drawn {
		fmt.Fprint(s.writer, "\r\033[K")
		s.drawn = false
	}
}

func (s *Spinner) animate() {
	defer s.wg.Done()

	select {
	case <-s.stopChan:
		return
	case <-time.After(s.Delay):
	}

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	cyan := color.New(color.FgCyan)
	for {
		s.mu.Lock()
		frame := s.frames[s.frameIndex%len(s.frames)]
		s.frameIndex++
		fmt.Fprintf(s.writer, "\r%s %s", cyan.Sprint(frame), s.message)
		s.drawn = true
		s.mu.Unlock()

		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
		}
	}
}

// Interactive reports whether w is a terminal.
func Interactive(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// WithSpinner runs fn while a spinner is shown on stderr. The spinner is
// skipped when stderr is not a terminal.
func WithSpinner(message string, fn func() error) error {
	if !Interactive(os.Stderr) {
		return fn()
	}
	spinner := NewSpinner(message)
	spinner.Start()
	defer spinner.Stop()
	return fn()
}
