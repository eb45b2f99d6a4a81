package domain

import "time"

type RunStatus string

const (
	RunStatusIdle       RunStatus = "idle"
	RunStatusRunning    RunStatus = "running"
	RunStatusCancelling RunStatus = "cancelling"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusFailed     RunStatus = "failed"
)

// IsActive reports whether a process is attached to the status.
func (s RunStatus) IsActive() bool {
	return s == RunStatusRunning || s == RunStatusCancelling
}

func (s RunStatus) IsTerminal() bool {
	return s == RunStatusCompleted || s == RunStatusFailed
}

// Result is the terminal event of a job.
type Result struct {
	Success   bool   `json:"success"`
	ExitCode  int    `json:"exit_code"`
	Message   string `json:"message"`
	Cancelled bool   `json:"cancelled,omitempty"`
}

func (r Result) Status() RunStatus {
	if r.Success {
		return RunStatusCompleted
	}
	return RunStatusFailed
}

// Run is the persisted history record of one job execution.
type Run struct {
	ID         string     `json:"id"`
	BatchID    string     `json:"batch_id,omitempty"`
	Operation  string     `json:"operation"`
	Program    Program    `json:"program"`
	Args       []string   `json:"args"`
	Output     string     `json:"output,omitempty"`
	Status     RunStatus  `json:"status"`
	ExitCode   int        `json:"exit_code"`
	Message    string     `json:"message"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

func (r *Run) Finish(res Result, at time.Time) {
	r.Status = res.Status()
	r.ExitCode = res.ExitCode
	r.Message = res.Message
	r.FinishedAt = &at
}

func (r *Run) Elapsed() time.Duration {
	if r.FinishedAt == nil {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
