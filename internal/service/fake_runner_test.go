package service

import (
	"slices"
	"sync"

	"github.com/bnema/cheval/internal/domain"
	"github.com/bnema/cheval/internal/port"
)

// fakeRunner completes every job asynchronously, like the real runner,
// with the lines and result its hooks choose.
type fakeRunner struct {
	mu     sync.Mutex
	active bool
	jobs   []domain.Job

	lines  func(job domain.Job) []string
	result func(job domain.Job) domain.Result
}

func (f *fakeRunner) Start(job domain.Job, obs port.Observer) error {
	return f.StartThen(job, nil, obs)
}

func (f *fakeRunner) StartThen(job domain.Job, next func() (domain.Job, error), obs port.Observer) error {
	f.mu.Lock()
	if f.active {
		f.mu.Unlock()
		return domain.ErrBusy
	}
	f.active = true
	f.mu.Unlock()

	go func() {
		res := f.exec(job, obs)
		if res.Success && next != nil {
			nj, err := next()
			if err != nil {
				res = domain.Result{ExitCode: -1, Message: err.Error()}
			} else {
				res = f.exec(nj, obs)
			}
		}
		if res.Success {
			obs.Progress(100)
		}
		f.mu.Lock()
		f.active = false
		f.mu.Unlock()
		obs.Done(res)
	}()
	return nil
}

func (f *fakeRunner) exec(job domain.Job, obs port.Observer) domain.Result {
	f.mu.Lock()
	f.jobs = append(f.jobs, job)
	f.mu.Unlock()

	if f.lines != nil {
		for _, l := range f.lines(job) {
			obs.Log(l)
		}
	}
	if f.result != nil {
		return f.result(job)
	}
	return domain.Result{Success: true, Message: "Done"}
}

func (f *fakeRunner) Cancel() {}

func (f *fakeRunner) Status() domain.RunStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.active {
		return domain.RunStatusRunning
	}
	return domain.RunStatusIdle
}

func (f *fakeRunner) Jobs() []domain.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.jobs)
}

// collector records observer calls and closes done on the terminal event.
type collector struct {
	mu     sync.Mutex
	logs   []string
	result domain.Result
	done   chan struct{}
}

func newCollector() *collector {
	return &collector{done: make(chan struct{})}
}

func (c *collector) Progress(float64) {}

func (c *collector) Log(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logs = append(c.logs, line)
}

func (c *collector) Done(res domain.Result) {
	c.mu.Lock()
	c.result = res
	c.mu.Unlock()
	close(c.done)
}

func (c *collector) Logs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.logs)
}

func (c *collector) Result() domain.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

func jobInput(job domain.Job) string {
	for i, a := range job.Args {
		if a == "-i" && i+1 < len(job.Args) {
			return job.Args[i+1]
		}
	}
	return ""
}
