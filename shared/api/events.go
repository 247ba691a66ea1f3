package api

import "github.com/textchan-dev/textchan/shared/domain"

// Event names on /api/threads/stream
const (
	EventThreadAdded    = "thread-added"
	EventThreadModified = "thread-modified"
	EventThreadRemoved  = "thread-removed"
)

// ThreadEvent is one change notification. Data for thread-removed carries
// only the id.
type ThreadEvent struct {
	Type   string        `json:"type"`
	Thread domain.Thread `json:"thread"`
}
