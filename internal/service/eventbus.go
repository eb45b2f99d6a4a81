package service

import (
	"sync"
	"time"

	"github.com/bnema/cheval/internal/domain"
	"github.com/bnema/cheval/internal/port"
)

const (
	EventProgress = "progress"
	EventLog      = "log"
	EventDone     = "done"
)

// Event is one observer call, addressed to a run or batch topic.
type Event struct {
	Type    string         `json:"type"`
	Percent float64        `json:"percent,omitempty"`
	Line    string         `json:"line,omitempty"`
	Result  *domain.Result `json:"result,omitempty"`
}

type EventBus struct {
	subscribers map[string][]chan Event
	// finished keeps the terminal event of recent topics for late subscribers.
	finished map[string]Event
	order    []string
	mu       sync.RWMutex
}

const (
	finishedTopics  = 64
	doneSendTimeout = time.Second
)

func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[string][]chan Event),
		finished:    make(map[string]Event),
	}
}

func (eb *EventBus) Subscribe(topic string) chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	ch := make(chan Event, 64)
	eb.subscribers[topic] = append(eb.subscribers[topic], ch)
	return ch
}

func (eb *EventBus) Unsubscribe(topic string, ch chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	subs := eb.subscribers[topic]
	for i, sub := range subs {
		if sub == ch {
			eb.subscribers[topic] = append(subs[:i], subs[i+1:]...)
			close(ch)
			break
		}
	}

	if len(eb.subscribers[topic]) == 0 {
		delete(eb.subscribers, topic)
	}
}

// Finished returns the done event of a topic that already ended.
func (eb *EventBus) Finished(topic string) (Event, bool) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	ev, ok := eb.finished[topic]
	return ev, ok
}

func (eb *EventBus) Publish(topic string, event Event) {
	if event.Type == EventDone {
		eb.remember(topic, event)
	}

	eb.mu.RLock()
	defer eb.mu.RUnlock()

	for _, ch := range eb.subscribers[topic] {
		if event.Type == EventDone {
			// Wait briefly rather than lose the terminal event.
			select {
			case ch <- event:
			case <-time.After(doneSendTimeout):
			}
			continue
		}
		select {
		case ch <- event:
		default:
			// Drop progress and log lines for slow subscribers
		}
	}
}

func (eb *EventBus) remember(topic string, event Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if _, ok := eb.finished[topic]; !ok {
		eb.order = append(eb.order, topic)
	}
	eb.finished[topic] = event
	for len(eb.order) > finishedTopics {
		delete(eb.finished, eb.order[0])
		eb.order = eb.order[1:]
	}
}

// Observer publishes every call it receives on topic.
func (eb *EventBus) Observer(topic string) port.Observer {
	return port.ObserverFuncs{
		OnProgress: func(p float64) {
			eb.Publish(topic, Event{Type: EventProgress, Percent: p})
		},
		OnLog: func(line string) {
			eb.Publish(topic, Event{Type: EventLog, Line: line})
		},
		OnDone: func(res domain.Result) {
			eb.Publish(topic, Event{Type: EventDone, Result: &res})
		},
	}
}
