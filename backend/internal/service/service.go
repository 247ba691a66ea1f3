package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/textchan-dev/textchan/backend/internal/metrics"
	"github.com/textchan-dev/textchan/shared/api"
	"github.com/textchan-dev/textchan/shared/domain"
	internal_errors "github.com/textchan-dev/textchan/shared/errors"
	"github.com/textchan-dev/textchan/shared/logger"
)

// PostingGate decides whether writes are accepted right now.
type PostingGate interface {
	Now() time.Time
	IsPostingAllowed() bool
	NextChange() time.Time
}

type CapacityChecker interface {
	Check(ctx context.Context) domain.StorageStatus
	// Invalidate forces the next Check to measure the store again.
	Invalidate()
}

type Publisher interface {
	Publish(ctx context.Context, event api.ThreadEvent) error
}

// Rejection reasons used in metrics
const (
	reasonPolicy     = "policy"
	reasonValidation = "validation"
	reasonCapacity   = "capacity"
)

var validate = validator.New()

var (
	msgBodyRequired   = "Body is required"
	msgUserIdRequired = "User ID is required"
	msgBodyTooLong    = fmt.Sprintf("Body too long (max %d characters)", domain.MaxBodyLength)
	msgUserIdTooLong  = fmt.Sprintf("User ID too long (max %d characters)", domain.MaxUserIdLength)
)

// writeGuard runs the checks shared by every write in the order the API
// promises: posting window, then field validation, then capacity.
type writeGuard struct {
	gate     PostingGate
	capacity CapacityChecker
}

func (g writeGuard) check(ctx context.Context, kind, body, userId string) (domain.Body, domain.UserId, error) {
	if err := g.checkWindow(kind); err != nil {
		return "", "", err
	}

	body, userId, err := validatePost(body, userId)
	if err != nil {
		metrics.PostsRejected.WithLabelValues(kind, reasonValidation).Inc()
		return "", "", err
	}

	if g.capacity.Check(ctx).LimitReached {
		metrics.PostsRejected.WithLabelValues(kind, reasonCapacity).Inc()
		logger.Log.Warn("rejecting post, storage limit reached", "component", "service", "kind", kind)
		return "", "", internal_errors.CapacityExceeded()
	}
	return body, userId, nil
}

// written is called after every stored post so the next write sees its size.
func (g writeGuard) written(kind string) {
	metrics.PostsCreated.WithLabelValues(kind).Inc()
	g.capacity.Invalidate()
}

// checkWindow fails with 403 outside the posting window, whatever the request
// carries.
func (g writeGuard) checkWindow(kind string) error {
	if !g.gate.IsPostingAllowed() {
		metrics.PostsRejected.WithLabelValues(kind, reasonPolicy).Inc()
		return internal_errors.PolicyViolation()
	}
	return nil
}

// validatePost trims both fields and enforces their presence and length in runes.
func validatePost(body, userId string) (domain.Body, domain.UserId, error) {
	body = strings.TrimSpace(body)
	userId = strings.TrimSpace(userId)

	if err := validate.Var(body, "required"); err != nil {
		return "", "", internal_errors.Validation(msgBodyRequired)
	}
	if err := validate.Var(userId, "required"); err != nil {
		return "", "", internal_errors.Validation(msgUserIdRequired)
	}
	if err := validate.Var(body, fmt.Sprintf("max=%d", domain.MaxBodyLength)); err != nil {
		return "", "", internal_errors.Validation(msgBodyTooLong)
	}
	if err := validate.Var(userId, fmt.Sprintf("max=%d", domain.MaxUserIdLength)); err != nil {
		return "", "", internal_errors.Validation(msgUserIdTooLong)
	}
	return body, userId, nil
}

func publish(ctx context.Context, p Publisher, eventType string, thread domain.Thread) {
	if err := p.Publish(ctx, api.ThreadEvent{Type: eventType, Thread: thread}); err != nil {
		// the write already succeeded
		logger.Log.Error("failed to publish event",
			"component", "service",
			"type", eventType,
			"thread_id", thread.Id,
			"error", err)
	}
}
