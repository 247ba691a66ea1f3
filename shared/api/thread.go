package api

import (
	"github.com/textchan-dev/textchan/shared/domain"
)

// ThreadRepliesResponse is the body of GET /api/threads/{id}/replies
type ThreadRepliesResponse struct {
	Thread  domain.Thread  `json:"thread"`
	Replies []domain.Reply `json:"replies"`
}
