package service

import (
	"context"

	"github.com/textchan-dev/textchan/backend/internal/metrics"
	"github.com/textchan-dev/textchan/shared/api"
	"github.com/textchan-dev/textchan/shared/domain"
)

type ThreadService interface {
	CheckPostingWindow() error
	Create(ctx context.Context, body, userId string) (domain.Thread, error)
	GetAll(ctx context.Context) ([]domain.Thread, error)
	GetWithReplies(ctx context.Context, id domain.ThreadId) (domain.Thread, []domain.Reply, error)
}

type Thread struct {
	storage   ThreadStorage
	guard     writeGuard
	publisher Publisher
}

type ThreadStorage interface {
	CreateThread(ctx context.Context, creationData domain.ThreadCreationData) (domain.Thread, error)
	GetAllThreads(ctx context.Context) ([]domain.Thread, error)
	GetThreadById(ctx context.Context, id domain.ThreadId) (domain.Thread, error)
	GetRepliesByThreadId(ctx context.Context, id domain.ThreadId) ([]domain.Reply, error)
}

func NewThread(storage ThreadStorage, gate PostingGate, capacity CapacityChecker, publisher Publisher) ThreadService {
	return &Thread{
		storage:   storage,
		guard:     writeGuard{gate: gate, capacity: capacity},
		publisher: publisher,
	}
}

// CheckPostingWindow lets the API refuse a post before reading its body.
func (t *Thread) CheckPostingWindow() error {
	return t.guard.checkWindow(metrics.KindThread)
}

func (t *Thread) Create(ctx context.Context, body, userId string) (domain.Thread, error) {
	body, userId, err := t.guard.check(ctx, metrics.KindThread, body, userId)
	if err != nil {
		return domain.Thread{}, err
	}

	thread, err := t.storage.CreateThread(ctx, domain.ThreadCreationData{
		Body:      body,
		UserId:    userId,
		CreatedAt: t.guard.gate.Now().UTC(),
	})
	if err != nil {
		return domain.Thread{}, err
	}
	t.guard.written(metrics.KindThread)

	publish(ctx, t.publisher, api.EventThreadAdded, thread)
	return thread, nil
}

func (t *Thread) GetAll(ctx context.Context) ([]domain.Thread, error) {
	return t.storage.GetAllThreads(ctx)
}

func (t *Thread) GetWithReplies(ctx context.Context, id domain.ThreadId) (domain.Thread, []domain.Reply, error) {
	thread, err := t.storage.GetThreadById(ctx, id)
	if err != nil {
		return domain.Thread{}, nil, err
	}
	replies, err := t.storage.GetRepliesByThreadId(ctx, id)
	if err != nil {
		return domain.Thread{}, nil, err
	}
	return thread, replies, nil
}
