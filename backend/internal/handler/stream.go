package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/textchan-dev/textchan/backend/internal/metrics"
	"github.com/textchan-dev/textchan/shared/api"
	"github.com/textchan-dev/textchan/shared/logger"
	mw "github.com/textchan-dev/textchan/shared/middleware"
	"github.com/textchan-dev/textchan/shared/utils"
)

// StreamThreads sends every existing thread as thread-added, newest first,
// then relays live changes until the client goes away. There is no replay:
// a reconnecting client gets a fresh snapshot.
func (h *Handler) StreamThreads(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.WriteError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}
	ctx := r.Context()

	// subscribe first so nothing posted during the snapshot query is lost
	events, release := h.events.Subscribe()
	defer release()

	threads, err := h.thread.GetAll(ctx)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err, "Failed to fetch threads")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	for _, thread := range threads {
		if err := writeEvent(w, api.ThreadEvent{Type: api.EventThreadAdded, Thread: thread}); err != nil {
			return
		}
	}
	flusher.Flush()

	metrics.StreamSubscribers.Inc()
	defer metrics.StreamSubscribers.Dec()
	log := logger.Log.With("component", "stream", "request_id", mw.GetRequestId(r))
	log.Debug("stream opened", "snapshot", len(threads))
	defer log.Debug("stream closed")

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := io.WriteString(w, ": heartbeat\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(w, event); err != nil {
				log.Debug("stream write failed", "error", err)
				return
			}
			flusher.Flush()
		}
	}
}

// writeEvent writes one named SSE event whose data is the thread as JSON.
func writeEvent(w io.Writer, event api.ThreadEvent) error {
	data, err := json.Marshal(event.Thread)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
	return err
}
