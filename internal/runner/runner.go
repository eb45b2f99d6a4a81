// Package runner executes one transcoder or downloader job at a time,
// streaming its merged output to an observer as log lines and percentages.
package runner

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/bnema/cheval/internal/domain"
	"github.com/bnema/cheval/internal/infrastructure/logger"
	"github.com/bnema/cheval/internal/port"
)

// CommandFactory builds the command for a binary; tests swap it out.
type CommandFactory func(name string, args ...string) *exec.Cmd

type Option func(*Runner)

func WithCommandFactory(f CommandFactory) Option {
	return func(r *Runner) {
		r.newCommand = f
	}
}

// DefaultBinaries resolves each program through PATH.
func DefaultBinaries() map[domain.Program]string {
	return map[domain.Program]string{
		domain.ProgramTranscoder: "ffmpeg",
		domain.ProgramDownloader: "yt-dlp",
	}
}

type Runner struct {
	mu              sync.Mutex
	status          domain.RunStatus
	proc            *os.Process
	cancelRequested bool

	binaries   map[domain.Program]string
	newCommand CommandFactory
}

func New(binaries map[domain.Program]string, opts ...Option) *Runner {
	bins := DefaultBinaries()
	for p, bin := range binaries {
		if strings.TrimSpace(bin) != "" {
			bins[p] = bin
		}
	}
	r := &Runner{
		status:     domain.RunStatusIdle,
		binaries:   bins,
		newCommand: exec.Command,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start launches job in the background. It fails with domain.ErrBusy while
// another job is running or being cancelled; nothing is spawned in that case.
func (r *Runner) Start(job domain.Job, obs port.Observer) error {
	return r.start(job, nil, obs)
}

// StartThen runs job and, once it succeeds, the job returned by next without
// returning to idle in between. Only the final job's completion reaches obs;
// a failure, a cancel or an error from next ends the chain early.
func (r *Runner) StartThen(job domain.Job, next func() (domain.Job, error), obs port.Observer) error {
	return r.start(job, next, obs)
}

func (r *Runner) start(job domain.Job, next func() (domain.Job, error), obs port.Observer) error {
	bin, err := r.binary(job.Program)
	if err != nil {
		return err
	}
	if obs == nil {
		obs = port.ObserverFuncs{}
	}

	r.mu.Lock()
	if r.status.IsActive() {
		r.mu.Unlock()
		return domain.ErrBusy
	}
	r.status = domain.RunStatusRunning
	r.cancelRequested = false
	r.proc = nil
	r.mu.Unlock()

	go r.run(bin, job, next, obs)
	return nil
}

func (r *Runner) binary(p domain.Program) (string, error) {
	bin, ok := r.binaries[p]
	if !ok {
		return "", domain.NewValidationError("program", "unknown program %q", p)
	}
	return bin, nil
}

// Cancel asks the running process to stop. The job still ends through the
// normal exit path with a cancelled result. Without an active job it does
// nothing.
func (r *Runner) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.status.IsActive() {
		return
	}
	r.status = domain.RunStatusCancelling
	r.cancelRequested = true
	if r.proc == nil {
		// Not spawned yet; exec signals right after the spawn.
		return
	}
	if err := terminate(r.proc); err != nil {
		logger.Warn.Printf("runner: failed to signal pid %d: %v", r.proc.Pid, err)
	}
}

func (r *Runner) Status() domain.RunStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *Runner) run(bin string, job domain.Job, next func() (domain.Job, error), obs port.Observer) {
	res := r.exec(bin, job, obs)

	if res.Success && next != nil {
		res = r.runNext(next, obs)
	}
	r.finish(res, obs)
}

func (r *Runner) runNext(next func() (domain.Job, error), obs port.Observer) domain.Result {
	if r.cancelPending() {
		return cancelledResult(-1)
	}
	job, err := next()
	if err != nil {
		return domain.Result{ExitCode: -1, Message: fmt.Sprintf("Could not prepare next step: %v", err)}
	}
	bin, err := r.binary(job.Program)
	if err != nil {
		return domain.Result{ExitCode: -1, Message: err.Error()}
	}
	if r.cancelPending() {
		return cancelledResult(-1)
	}
	return r.exec(bin, job, obs)
}

// exec runs one process to completion. It never reports 100% or Done; the
// caller decides which completion is final.
func (r *Runner) exec(bin string, job domain.Job, obs port.Observer) domain.Result {
	obs.Log(commandLine(bin, job.Args))

	pr, pw, err := os.Pipe()
	if err != nil {
		return domain.Result{ExitCode: -1, Message: fmt.Sprintf("Failed to start %s: %v", bin, err)}
	}

	cmd := r.newCommand(bin, job.Args...)
	detach(cmd)
	cmd.Stdout = pw
	cmd.Stderr = pw
	if err := cmd.Start(); err != nil {
		_ = pw.Close()
		_ = pr.Close()
		logger.Error.Printf("runner: failed to start %s: %v", bin, err)
		return domain.Result{ExitCode: -1, Message: fmt.Sprintf("Failed to start %s: %v", bin, err)}
	}
	// The child holds its own copy of the write end; EOF arrives when it exits.
	_ = pw.Close()

	r.mu.Lock()
	r.proc = cmd.Process
	if r.cancelRequested {
		if err := terminate(cmd.Process); err != nil {
			logger.Warn.Printf("runner: failed to signal pid %d: %v", cmd.Process.Pid, err)
		}
	}
	r.mu.Unlock()
	logger.Debug.Printf("runner: started %s (pid %d)", bin, cmd.Process.Pid)

	progress := progressFor(job)
	if err := scanLines(pr, func(line string) {
		obs.Log(line)
		if pct, ok := progress(line); ok {
			obs.Progress(pct)
		}
	}); err != nil {
		logger.Warn.Printf("runner: reading %s output: %v", bin, err)
	}
	_ = pr.Close()

	waitErr := cmd.Wait()

	r.mu.Lock()
	r.proc = nil
	cancelled := r.cancelRequested
	r.mu.Unlock()

	if waitErr == nil {
		return domain.Result{Success: true, Message: "Done"}
	}
	code := -1
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		code = exitErr.ExitCode()
	}
	if cancelled {
		return cancelledResult(code)
	}
	return domain.Result{ExitCode: code, Message: fmt.Sprintf("Exited with code %d", code)}
}

// finish publishes the terminal state before notifying, so Done handlers
// may start the next job.
func (r *Runner) finish(res domain.Result, obs port.Observer) {
	if res.Success {
		obs.Progress(100)
	}

	r.mu.Lock()
	r.status = res.Status()
	r.proc = nil
	r.cancelRequested = false
	r.mu.Unlock()

	obs.Done(res)
}

func (r *Runner) cancelPending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancelRequested
}

func cancelledResult(code int) domain.Result {
	return domain.Result{ExitCode: code, Message: "Cancelled", Cancelled: true}
}

func commandLine(bin string, args []string) string {
	if len(args) == 0 {
		return "$ " + bin
	}
	return "$ " + bin + " " + strings.Join(args, " ")
}

var _ port.ProcessRunner = (*Runner)(nil)
