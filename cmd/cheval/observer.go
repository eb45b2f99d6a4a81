package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/bnema/cheval/internal/domain"
)

// terminal prints log lines to out and keeps one rewritten progress line on
// status. Done is delivered once on the done channel.
type terminal struct {
	mu       sync.Mutex
	out      io.Writer
	status   io.Writer
	quiet    bool
	progress bool
	done     chan domain.Result
}

func newTerminal(out, status io.Writer, quiet bool) *terminal {
	return &terminal{out: out, status: status, quiet: quiet, done: make(chan domain.Result, 1)}
}

func (t *terminal) Progress(percent float64) {
	if t.quiet {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = fmt.Fprintf(t.status, "\r%5.1f%%", percent)
	t.progress = true
}

func (t *terminal) Log(line string) {
	if t.quiet {
		return
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.endProgress()
	_, _ = fmt.Fprintln(t.out, line)
}

func (t *terminal) Done(res domain.Result) {
	t.mu.Lock()
	t.endProgress()
	t.mu.Unlock()
	t.done <- res
}

func (t *terminal) endProgress() {
	if t.progress {
		_, _ = fmt.Fprintln(t.status)
		t.progress = false
	}
}
