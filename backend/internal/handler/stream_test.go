package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/textchan-dev/textchan/backend/internal/events"
	"github.com/textchan-dev/textchan/shared/api"
	"github.com/textchan-dev/textchan/shared/domain"
)

type sseEvent struct {
	name string
	data string
}

// readEvent returns the next named event, skipping comments.
func readEvent(t *testing.T, r *bufio.Reader) sseEvent {
	t.Helper()
	var ev sseEvent
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			if ev.name != "" {
				return ev
			}
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event: "):
			ev.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			ev.data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func openStream(t *testing.T, h *Handler) (*bufio.Reader, context.CancelFunc) {
	t.Helper()
	server := httptest.NewServer(setupRouter(h))
	t.Cleanup(server.Close)

	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/threads/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	return bufio.NewReader(resp.Body), cancel
}

func TestStreamThreads(t *testing.T) {
	broker := events.NewMemory(8)
	thread := &MockThreadService{
		MockGetAll: func(context.Context) ([]domain.Thread, error) {
			return []domain.Thread{{Id: 2, Body: "newer"}, {Id: 1, Body: "older"}}, nil
		},
	}
	h := New(thread, &MockReplyService{}, &MockStatusService{}, broker, &MockHealthChecker{}, time.Hour)

	r, cancel := openStream(t, h)
	defer cancel()

	// snapshot, newest first
	for _, want := range []domain.ThreadId{2, 1} {
		ev := readEvent(t, r)
		assert.Equal(t, api.EventThreadAdded, ev.name)
		var got domain.Thread
		require.NoError(t, json.Unmarshal([]byte(ev.data), &got))
		assert.Equal(t, want, got.Id)
	}

	// live event
	require.Eventually(t, func() bool { return broker.Subscribers() == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, broker.Publish(context.Background(), api.ThreadEvent{
		Type:   api.EventThreadModified,
		Thread: domain.Thread{Id: 1, ReplyCount: 1},
	}))
	ev := readEvent(t, r)
	assert.Equal(t, api.EventThreadModified, ev.name)
	assert.Contains(t, ev.data, `"replyCount":1`)

	// disconnect releases the subscription
	cancel()
	assert.Eventually(t, func() bool { return broker.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestStreamThreads_Heartbeat(t *testing.T) {
	broker := events.NewMemory(8)
	h := New(&MockThreadService{}, &MockReplyService{}, &MockStatusService{}, broker, &MockHealthChecker{}, 20*time.Millisecond)

	r, cancel := openStream(t, h)
	defer cancel()

	line, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, ": heartbeat\n", line)
}
