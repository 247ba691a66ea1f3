package events

import (
	"context"
	"sync"

	"github.com/textchan-dev/textchan/backend/internal/metrics"
	"github.com/textchan-dev/textchan/shared/api"
	"github.com/textchan-dev/textchan/shared/logger"
)

type Memory struct {
	bufferSize int

	mu     sync.Mutex
	nextId int
	subs   map[int]chan api.ThreadEvent
	closed bool
}

func NewMemory(bufferSize int) *Memory {
	return &Memory{
		bufferSize: bufferSize,
		subs:       make(map[int]chan api.ThreadEvent),
	}
}

func (m *Memory) Publish(_ context.Context, event api.ThreadEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, ch := range m.subs {
		select {
		case ch <- event:
		default:
			metrics.EventsDropped.Inc()
			logger.Log.Warn("dropping event for slow subscriber",
				"component", "events",
				"subscriber", id,
				"type", event.Type,
				"thread_id", event.Thread.Id)
		}
	}
	return nil
}

func (m *Memory) Subscribe() (<-chan api.ThreadEvent, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan api.ThreadEvent, m.bufferSize)
	if m.closed {
		close(ch)
		return ch, func() {}
	}

	id := m.nextId
	m.nextId++
	m.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() { m.unsubscribe(id) })
	}
}

func (m *Memory) unsubscribe(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ch, ok := m.subs[id]; ok {
		delete(m.subs, id)
		close(ch)
	}
}

// Subscribers reports the number of live subscriptions.
func (m *Memory) Subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	for id, ch := range m.subs {
		delete(m.subs, id)
		close(ch)
	}
	return nil
}
