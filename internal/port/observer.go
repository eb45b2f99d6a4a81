package port

import "github.com/bnema/cheval/internal/domain"

// Observer receives the events of one job. Calls for a job arrive from a
// single goroutine, in order, and Done is always the last call.
type Observer interface {
	Progress(percent float64)
	Log(line string)
	Done(result domain.Result)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	OnProgress func(percent float64)
	OnLog      func(line string)
	OnDone     func(result domain.Result)
}

func (o ObserverFuncs) Progress(percent float64) {
	if o.OnProgress != nil {
		o.OnProgress(percent)
	}
}

func (o ObserverFuncs) Log(line string) {
	if o.OnLog != nil {
		o.OnLog(line)
	}
}

func (o ObserverFuncs) Done(result domain.Result) {
	if o.OnDone != nil {
		o.OnDone(result)
	}
}

// MultiObserver fans every event out to each observer in order.
type MultiObserver []Observer

func (m MultiObserver) Progress(percent float64) {
	for _, o := range m {
		o.Progress(percent)
	}
}

func (m MultiObserver) Log(line string) {
	for _, o := range m {
		o.Log(line)
	}
}

func (m MultiObserver) Done(result domain.Result) {
	for _, o := range m {
		o.Done(result)
	}
}
