package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/textchan-dev/textchan/shared/api"
	"github.com/textchan-dev/textchan/shared/domain"
)

func (c *APIClient) GetThreads(ctx context.Context) ([]domain.Thread, error) {
	var threads []domain.Thread
	resp, err := c.do(ctx, http.MethodGet, "/api/threads", nil)
	if err != nil {
		return nil, err
	}
	if err := decode(resp, http.StatusOK, &threads); err != nil {
		return nil, err
	}
	return threads, nil
}

func (c *APIClient) GetReplies(ctx context.Context, threadId domain.ThreadId) (api.ThreadRepliesResponse, error) {
	var out api.ThreadRepliesResponse
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/threads/%d/replies", threadId), nil)
	if err != nil {
		return out, err
	}
	err = decode(resp, http.StatusOK, &out)
	return out, err
}

func (c *APIClient) CreateThread(ctx context.Context, body string, userId domain.UserId) (domain.Thread, error) {
	var thread domain.Thread
	resp, err := c.do(ctx, http.MethodPost, "/api/threads", api.CreatePostRequest{Body: body, UserId: userId})
	if err != nil {
		return thread, err
	}
	err = decode(resp, http.StatusCreated, &thread)
	return thread, err
}

func (c *APIClient) CreateReply(ctx context.Context, threadId domain.ThreadId, body string, userId domain.UserId) (domain.Reply, error) {
	var reply domain.Reply
	resp, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/threads/%d/replies", threadId), api.CreatePostRequest{Body: body, UserId: userId})
	if err != nil {
		return reply, err
	}
	err = decode(resp, http.StatusCreated, &reply)
	return reply, err
}
