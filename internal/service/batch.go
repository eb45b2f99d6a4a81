package service

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/bnema/cheval/internal/domain"
	"github.com/bnema/cheval/internal/infrastructure/logger"
	"github.com/bnema/cheval/internal/port"
	"github.com/bnema/cheval/internal/synth"
)

// BatchStatus is a snapshot of the sequencer.
type BatchStatus struct {
	ID        string `json:"id,omitempty"`
	Active    bool   `json:"active"`
	Stopping  bool   `json:"stopping,omitempty"`
	Total     int    `json:"total"`
	Processed int    `json:"processed"`
	Failed    int    `json:"failed"`
	Current   string `json:"current,omitempty"`
}

// Batch applies one template to a list of files, one job at a time. The
// next file starts from the previous job's Done.
type Batch struct {
	runner  port.ProcessRunner
	prober  port.Prober
	history *History
	events  *EventBus

	mu        sync.Mutex
	id        string
	files     []string
	template  synth.BatchTemplate
	obs       port.Observer
	index     int
	processed int
	failed    int
	current   string
	stopping  bool
	active    bool
}

// NewBatch wires the sequencer. history and events may be nil; events, when
// set, receive the whole batch under its ID.
func NewBatch(runner port.ProcessRunner, prober port.Prober, history *History, events *EventBus) *Batch {
	if history == nil {
		history = NewHistory(nil)
	}
	return &Batch{runner: runner, prober: prober, history: history, events: events}
}

// Start validates the template and begins processing files in order. It
// returns the batch ID; obs receives every job's log and progress plus one
// Done carrying the summary.
func (b *Batch) Start(files []string, tmpl synth.BatchTemplate, obs port.Observer) (string, error) {
	if len(files) == 0 {
		return "", domain.NewValidationError("files", "no files to process")
	}
	if err := tmpl.Validate(); err != nil {
		return "", err
	}
	id, err := NewID()
	if err != nil {
		return "", err
	}
	switch {
	case obs != nil && b.events != nil:
		obs = port.MultiObserver{obs, b.events.Observer(id)}
	case b.events != nil:
		obs = b.events.Observer(id)
	case obs == nil:
		obs = port.ObserverFuncs{}
	}

	b.mu.Lock()
	if b.active {
		b.mu.Unlock()
		return "", domain.ErrBusy
	}
	b.id = id
	b.files = append([]string(nil), files...)
	b.template = tmpl
	b.obs = obs
	b.index = 0
	b.processed = 0
	b.failed = 0
	b.current = ""
	b.stopping = false
	b.active = true
	b.mu.Unlock()

	logger.Info.Printf("batch %s: %d file(s), operation %s", id, len(files), tmpl.Operation)
	go b.advance()
	return id, nil
}

// Stop lets the current job finish and then ends the batch.
func (b *Batch) Stop() error {
	b.mu.Lock()
	if !b.active {
		b.mu.Unlock()
		return domain.ErrNotRunning
	}
	first := !b.stopping
	b.stopping = true
	obs := b.obs
	b.mu.Unlock()

	if first {
		obs.Log("Will stop after the current file finishes.")
	}
	return nil
}

func (b *Batch) Status() BatchStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BatchStatus{
		ID:        b.id,
		Active:    b.active,
		Stopping:  b.stopping,
		Total:     len(b.files),
		Processed: b.processed,
		Failed:    b.failed,
		Current:   b.current,
	}
}

// advance starts the next file that synthesizes cleanly, or finishes the
// batch when none is left.
func (b *Batch) advance() {
	for {
		b.mu.Lock()
		if b.stopping || b.index >= len(b.files) {
			b.finishLocked()
			return
		}
		i, total := b.index, len(b.files)
		file := b.files[i]
		b.index++
		b.current = file
		id, tmpl, obs := b.id, b.template, b.obs
		b.mu.Unlock()

		name := filepath.Base(file)
		job, err := tmpl.Build(file, b.duration(file))
		if err != nil {
			obs.Log(fmt.Sprintf("Skipped %s: %v", name, err))
			b.record(false)
			continue
		}

		obs.Log(fmt.Sprintf("--- [%d/%d] %s ---", i+1, total, name))
		fileObs := port.ObserverFuncs{
			OnProgress: obs.Progress,
			OnLog:      obs.Log,
			OnDone:     b.onDone,
		}
		start := func(o port.Observer) error { return b.runner.Start(job, o) }
		meta := RunMeta{Operation: "batch:" + string(tmpl.Operation), BatchID: id}
		if _, err := b.history.Start(context.Background(), meta, job, start, fileObs); err != nil {
			obs.Log(fmt.Sprintf("Could not start %s: %v", name, err))
			b.record(false)
			continue
		}
		return
	}
}

func (b *Batch) onDone(res domain.Result) {
	if !res.Success {
		b.obs.Log("Failed: " + res.Message)
	}
	b.record(res.Success)
	b.advance()
}

func (b *Batch) record(ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.processed++
	if !ok {
		b.failed++
	}
}

// duration probes a file for the progress hint; failures degrade to 0.
func (b *Batch) duration(file string) float64 {
	if b.prober == nil {
		return 0
	}
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	probe, err := b.prober.Probe(ctx, file)
	if err != nil {
		logger.Warn.Printf("batch: probe %s: %v", file, err)
		return 0
	}
	return probe.DurationSeconds()
}

func (b *Batch) finishLocked() {
	summary := domain.BatchSummary{
		ID:        b.id,
		Total:     len(b.files),
		Processed: b.processed,
		Failed:    b.failed,
		Stopped:   b.stopping,
	}
	res := domain.Result{
		Success:   summary.Failed == 0 && !summary.Stopped,
		Message:   summary.Message(),
		Cancelled: summary.Stopped,
	}
	if !res.Success {
		res.ExitCode = 1
	}
	obs := b.obs
	b.active = false
	b.current = ""
	b.mu.Unlock()

	logger.Info.Printf("batch %s: %s (%d failed)", summary.ID, res.Message, summary.Failed)
	obs.Log("=== Batch complete ===")
	obs.Log(res.Message)
	obs.Done(res)
}

// ExpandInputs turns files and folders into the batch's file list. Folders
// are walked recursively for video files and contribute them sorted;
// duplicates are dropped.
func ExpandInputs(paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(p string) {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			add(p)
			continue
		}

		var found []string
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && domain.IsVideoFile(path) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", p, err)
		}
		slices.Sort(found)
		for _, f := range found {
			add(f)
		}
	}
	return files, nil
}
