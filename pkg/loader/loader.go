// Package loader reports the progress of long running operations to the user.
package loader

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
)

// UpdateProps replace the text shown by a loader. Empty fields are left unchanged.
type UpdateProps struct {
	Text       string
	SuffixText string
}

// ⏳ Loader is a progress sink
type Loader interface {
	Start(text string)
	Update(props UpdateProps)
	Succeed(text string)
	Warn(text string)
	Fail(text string)
	Stop()
}

// 🏭 New returns a spinner when w is a terminal and a Stub otherwise
func New(w *os.File) Loader {
	if w != nil && (isatty.IsTerminal(w.Fd()) || isatty.IsCygwinTerminal(w.Fd())) {
		return NewSpinner(w)
	}
	return Stub{}
}

// 🌀 Spinner renders progress with a pterm spinner
type Spinner struct {
	mu      sync.Mutex
	writer  io.Writer
	spinner *pterm.SpinnerPrinter
	text    string
	suffix  string
}

var _ Loader = (*Spinner)(nil)

// NewSpinner creates a spinner that writes to w.
func NewSpinner(w io.Writer) *Spinner {
	return &Spinner{writer: w}
}

func (s *Spinner) Start(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.text = text
	s.suffix = ""

	if s.spinner != nil {
		s.spinner.UpdateText(s.render())
		return
	}

	sp, err := pterm.DefaultSpinner.WithWriter(s.writer).WithRemoveWhenDone(false).Start(s.render())
	if err != nil {
		// spinner output is best effort
		return
	}
	s.spinner = sp
}

func (s *Spinner) Update(props UpdateProps) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if props.Text != "" {
		s.text = props.Text
	}
	if props.SuffixText != "" {
		s.suffix = props.SuffixText
	}
	if s.spinner != nil {
		s.spinner.UpdateText(s.render())
	}
}

func (s *Spinner) Succeed(text string) {
	s.finish(func(sp *pterm.SpinnerPrinter) { sp.Success(text) })
}

func (s *Spinner) Warn(text string) {
	s.finish(func(sp *pterm.SpinnerPrinter) { sp.Warning(text) })
}

func (s *Spinner) Fail(text string) {
	s.finish(func(sp *pterm.SpinnerPrinter) { sp.Fail(text) })
}

func (s *Spinner) Stop() {
	s.finish(func(sp *pterm.SpinnerPrinter) { _ = sp.Stop() })
}

func (s *Spinner) finish(fn func(*pterm.SpinnerPrinter)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.spinner == nil {
		return
	}
	fn(s.spinner)
	s.spinner = nil
}

func (s *Spinner) render() string {
	if s.suffix == "" {
		return s.text
	}
	return s.text + " " + s.suffix
}

// 🔇 Stub discards everything
type Stub struct{}

var _ Loader = Stub{}

func (Stub) Start(string)       {}
func (Stub) Update(UpdateProps) {}
func (Stub) Succeed(string)     {}
func (Stub) Warn(string)        {}
func (Stub) Fail(string)        {}
func (Stub) Stop()              {}

// 📊 FormatProgress formats a progress counter with a percentage
func FormatProgress(current, total int) string {
	var percentage float64
	if total == 0 {
		if current > 0 {
			percentage = 100
		}
	} else {
		percentage = float64(current) / float64(total) * 100
	}

	if current >= total {
		return fmt.Sprintf("✅ %d/%d (%.0f%%)", current, total, percentage)
	}
	return fmt.Sprintf("⏳ %d/%d (%.0f%%)", current, total, percentage)
}

// Recorder keeps every message it receives. It is safe for concurrent use.
type Recorder struct {
	mu       sync.Mutex
	Messages []string
}

var _ Loader = (*Recorder)(nil)

func (r *Recorder) add(kind, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Messages = append(r.Messages, strings.TrimSpace(kind+" "+text))
}

func (r *Recorder) Start(text string) { r.add("start", text) }
func (r *Recorder) Update(props UpdateProps) {
	r.add("update", strings.TrimSpace(props.Text+" "+props.SuffixText))
}
func (r *Recorder) Succeed(text string) { r.add("succeed", text) }
func (r *Recorder) Warn(text string)    { r.add("warn", text) }
func (r *Recorder) Fail(text string)    { r.add("fail", text) }
func (r *Recorder) Stop()               { r.add("stop", "") }

// Snapshot returns a copy of the recorded messages.
func (r *Recorder) Snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.Messages...)
}
