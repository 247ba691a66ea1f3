// Package watch keeps a live view of the forum: status, the thread list and
// the replies of threads the user has opened.
package watch

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/textchan-dev/textchan/frontend/internal/render"
	"github.com/textchan-dev/textchan/shared/api"
	"github.com/textchan-dev/textchan/shared/domain"
	"github.com/textchan-dev/textchan/shared/logger"
)

const (
	DefaultStatusInterval  = 30 * time.Second
	DefaultThreadsInterval = 15 * time.Second
	reconnectDelay         = 5 * time.Second
)

type Client interface {
	GetStatus(ctx context.Context) (domain.Status, error)
	GetThreads(ctx context.Context) ([]domain.Thread, error)
	GetReplies(ctx context.Context, threadId domain.ThreadId) (api.ThreadRepliesResponse, error)
	Stream(ctx context.Context, onEvent func(api.ThreadEvent)) error
}

type Watcher struct {
	client Client
	out    *render.Renderer

	StatusInterval  time.Duration
	ThreadsInterval time.Duration

	mu      sync.Mutex
	status  *domain.Status
	threads []domain.Thread
	open    map[domain.ThreadId]bool
	// replies holds fetched replies of open threads; a missing entry means stale
	replies map[domain.ThreadId][]domain.Reply
}

func New(client Client, out *render.Renderer, open ...domain.ThreadId) *Watcher {
	w := &Watcher{
		client:          client,
		out:             out,
		StatusInterval:  DefaultStatusInterval,
		ThreadsInterval: DefaultThreadsInterval,
		open:            make(map[domain.ThreadId]bool),
		replies:         make(map[domain.ThreadId][]domain.Reply),
	}
	for _, id := range open {
		w.open[id] = true
	}
	return w
}

// Open marks a thread as expanded. Its replies are fetched on the next refresh.
func (w *Watcher) Open(id domain.ThreadId) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.open[id] = true
}

func (w *Watcher) Close(id domain.ThreadId) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.open, id)
	delete(w.replies, id)
}

func (w *Watcher) IsOpen(id domain.ThreadId) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.open[id]
}

func (w *Watcher) Threads() []domain.Thread {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]domain.Thread(nil), w.threads...)
}

func (w *Watcher) RefreshStatus(ctx context.Context) error {
	status, err := w.client.GetStatus(ctx)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.status = &status
	w.mu.Unlock()
	return nil
}

// RefreshThreads replaces the thread list. The open set survives the refresh
// and every open thread's replies are marked stale.
func (w *Watcher) RefreshThreads(ctx context.Context) error {
	threads, err := w.client.GetThreads(ctx)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.threads = threads
	w.replies = make(map[domain.ThreadId][]domain.Reply)
	w.mu.Unlock()
	return nil
}

// FetchOpenReplies loads replies for open threads that have none cached.
func (w *Watcher) FetchOpenReplies(ctx context.Context) error {
	w.mu.Lock()
	var stale []domain.ThreadId
	for id := range w.open {
		if _, ok := w.replies[id]; !ok {
			stale = append(stale, id)
		}
	}
	w.mu.Unlock()

	for _, id := range stale {
		resp, err := w.client.GetReplies(ctx, id)
		if err != nil {
			return err
		}
		w.mu.Lock()
		if w.open[id] {
			w.replies[id] = resp.Replies
		}
		w.mu.Unlock()
	}
	return nil
}

// Apply merges one stream event into the view.
func (w *Watcher) Apply(event api.ThreadEvent) {
	w.mu.Lock()
	defer w.mu.Unlock()

	idx := -1
	for i, t := range w.threads {
		if t.Id == event.Thread.Id {
			idx = i
			break
		}
	}

	switch event.Type {
	case api.EventThreadAdded:
		if idx >= 0 {
			return
		}
		w.threads = append(w.threads, event.Thread)
		sortThreads(w.threads)
	case api.EventThreadModified:
		if idx < 0 {
			w.threads = append(w.threads, event.Thread)
			sortThreads(w.threads)
		} else {
			w.threads[idx] = event.Thread
		}
		delete(w.replies, event.Thread.Id)
	case api.EventThreadRemoved:
		if idx >= 0 {
			w.threads = append(w.threads[:idx], w.threads[idx+1:]...)
		}
		delete(w.open, event.Thread.Id)
		delete(w.replies, event.Thread.Id)
	}
}

// Render draws the whole view.
func (w *Watcher) Render() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.status != nil {
		w.out.Status(*w.status)
	}
	w.out.Threads(w.threads, w.open)
	for _, t := range w.threads {
		if replies, ok := w.replies[t.Id]; ok && w.open[t.Id] {
			w.out.Thread(t, replies)
		}
	}
}

// Run polls status and, unless stream is set, the thread list, redrawing
// after every change. With stream set, thread updates come from the event
// stream and the connection is re-established when it drops. Failures print
// a retry notice and never end the loop; Run returns when ctx is done.
func (w *Watcher) Run(ctx context.Context, stream bool) error {
	w.refresh(ctx, true, !stream)

	statusTicker := time.NewTicker(w.StatusInterval)
	defer statusTicker.Stop()

	var threadsTick <-chan time.Time
	events := make(chan api.ThreadEvent, 16)
	streamErrs := make(chan error, 1)
	if stream {
		go w.streamLoop(ctx, events, streamErrs)
	} else {
		threadsTicker := time.NewTicker(w.ThreadsInterval)
		defer threadsTicker.Stop()
		threadsTick = threadsTicker.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-statusTicker.C:
			w.refresh(ctx, true, false)
		case <-threadsTick:
			w.refresh(ctx, false, true)
		case event := <-events:
			w.Apply(event)
			w.refresh(ctx, false, false)
		case err := <-streamErrs:
			w.retrying(ctx, err)
		}
	}
}

func (w *Watcher) refresh(ctx context.Context, status, threads bool) {
	if status {
		if err := w.RefreshStatus(ctx); err != nil {
			w.retrying(ctx, err)
		}
	}
	if threads {
		if err := w.RefreshThreads(ctx); err != nil {
			w.retrying(ctx, err)
		}
	}
	if err := w.FetchOpenReplies(ctx); err != nil {
		w.retrying(ctx, err)
	}
	if ctx.Err() == nil {
		w.Render()
	}
}

func (w *Watcher) retrying(ctx context.Context, err error) {
	if ctx.Err() != nil {
		return
	}
	logger.Log.Debug("refresh failed", "error", err)
	w.out.Warn("Retrying… (%v)", err)
}

// streamLoop reconnects until ctx is done. Output stays on the Run goroutine.
func (w *Watcher) streamLoop(ctx context.Context, events chan<- api.ThreadEvent, errs chan<- error) {
	for {
		err := w.client.Stream(ctx, func(e api.ThreadEvent) {
			select {
			case events <- e:
			case <-ctx.Done():
			}
		})
		if ctx.Err() != nil {
			return
		}
		select {
		case errs <- err:
		default:
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func sortThreads(threads []domain.Thread) {
	sort.SliceStable(threads, func(i, j int) bool {
		if !threads[i].CreatedAt.Equal(threads[j].CreatedAt) {
			return threads[i].CreatedAt.After(threads[j].CreatedAt)
		}
		return threads[i].Id > threads[j].Id
	})
}
