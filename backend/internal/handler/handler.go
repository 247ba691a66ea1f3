package handler

import (
	"context"
	"time"

	"github.com/textchan-dev/textchan/backend/internal/service"
	"github.com/textchan-dev/textchan/shared/api"
)

type Subscriber interface {
	Subscribe() (<-chan api.ThreadEvent, func())
}

// HealthChecker reports whether the store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	thread    service.ThreadService
	reply     service.ReplyService
	status    service.StatusService
	events    Subscriber
	health    HealthChecker
	heartbeat time.Duration
}

func New(thread service.ThreadService, reply service.ReplyService, status service.StatusService, events Subscriber, health HealthChecker, heartbeat time.Duration) *Handler {
	return &Handler{
		thread:    thread,
		reply:     reply,
		status:    status,
		events:    events,
		health:    health,
		heartbeat: heartbeat,
	}
}
