package service

import (
	"context"

	"github.com/textchan-dev/textchan/backend/internal/metrics"
	"github.com/textchan-dev/textchan/shared/api"
	"github.com/textchan-dev/textchan/shared/domain"
	"github.com/textchan-dev/textchan/shared/logger"
)

type ReplyService interface {
	CheckPostingWindow() error
	Create(ctx context.Context, threadId domain.ThreadId, body, userId string) (domain.Reply, error)
}

type Reply struct {
	storage   ReplyStorage
	guard     writeGuard
	publisher Publisher
}

type ReplyStorage interface {
	CreateReply(ctx context.Context, creationData domain.ReplyCreationData) (domain.Reply, error)
	GetThreadById(ctx context.Context, id domain.ThreadId) (domain.Thread, error)
}

func NewReply(storage ReplyStorage, gate PostingGate, capacity CapacityChecker, publisher Publisher) ReplyService {
	return &Reply{
		storage:   storage,
		guard:     writeGuard{gate: gate, capacity: capacity},
		publisher: publisher,
	}
}

func (r *Reply) CheckPostingWindow() error {
	return r.guard.checkWindow(metrics.KindReply)
}

func (r *Reply) Create(ctx context.Context, threadId domain.ThreadId, body, userId string) (domain.Reply, error) {
	body, userId, err := r.guard.check(ctx, metrics.KindReply, body, userId)
	if err != nil {
		return domain.Reply{}, err
	}

	reply, err := r.storage.CreateReply(ctx, domain.ReplyCreationData{
		ThreadId:  threadId,
		Body:      body,
		UserId:    userId,
		CreatedAt: r.guard.gate.Now().UTC(),
	})
	if err != nil {
		return domain.Reply{}, err
	}
	r.guard.written(metrics.KindReply)

	// re-read for the new replyCount
	thread, err := r.storage.GetThreadById(ctx, threadId)
	if err != nil {
		logger.Log.Error("failed to load thread after reply",
			"component", "service",
			"thread_id", threadId,
			"error", err)
		return reply, nil
	}
	publish(ctx, r.publisher, api.EventThreadModified, thread)
	return reply, nil
}
