package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/cheval/internal/domain"
)

func TestEventBus_ObserverPublishes(t *testing.T) {
	eb := NewEventBus()
	ch := eb.Subscribe("run-1")
	defer eb.Unsubscribe("run-1", ch)

	obs := eb.Observer("run-1")
	obs.Log("frame=1")
	obs.Progress(50)
	obs.Done(domain.Result{Success: true, Message: "Done"})

	assert.Equal(t, Event{Type: EventLog, Line: "frame=1"}, <-ch)
	assert.Equal(t, Event{Type: EventProgress, Percent: 50}, <-ch)
	done := <-ch
	assert.Equal(t, EventDone, done.Type)
	require.NotNil(t, done.Result)
	assert.Equal(t, "Done", done.Result.Message)
}

func TestEventBus_TopicsAreIsolated(t *testing.T) {
	eb := NewEventBus()
	a := eb.Subscribe("a")
	b := eb.Subscribe("b")

	eb.Publish("a", Event{Type: EventLog, Line: "x"})
	assert.Len(t, a, 1)
	assert.Len(t, b, 0)

	eb.Unsubscribe("a", a)
	buffered, open := <-a
	assert.True(t, open)
	assert.Equal(t, "x", buffered.Line)
	_, open = <-a
	assert.False(t, open)
}

func TestEventBus_FinishedKeepsRecentTopics(t *testing.T) {
	eb := NewEventBus()
	_, ok := eb.Finished("run-0")
	assert.False(t, ok)

	for i := range finishedTopics + 1 {
		eb.Publish(string(rune('A'+i)), Event{Type: EventDone, Result: &domain.Result{Success: true}})
	}
	_, ok = eb.Finished("A")
	assert.False(t, ok, "oldest topic should be evicted")
	ev, ok := eb.Finished(string(rune('A' + finishedTopics)))
	assert.True(t, ok)
	assert.Equal(t, EventDone, ev.Type)
}

func TestEventBus_DropsLogsForSlowSubscriber(t *testing.T) {
	eb := NewEventBus()
	ch := eb.Subscribe("run")
	for range cap(ch) + 10 {
		eb.Publish("run", Event{Type: EventLog, Line: "x"})
	}
	assert.Len(t, ch, cap(ch))
}
