// Package capacity implements the storage quota check that gates writes.
package capacity

import (
	"context"
	"sync"
	"time"

	"github.com/textchan-dev/textchan/backend/internal/metrics"
	"github.com/textchan-dev/textchan/shared/domain"
	"github.com/textchan-dev/textchan/shared/logger"
)

// UsageReporter is implemented by every storage backend.
type UsageReporter interface {
	Usage(ctx context.Context) (int64, error)
}

type Checker struct {
	reporter  UsageReporter
	limit     int64
	threshold float64
	ttl       time.Duration
	now       func() time.Time

	mu       sync.Mutex
	cached   domain.StorageStatus
	cachedAt time.Time
	hasCache bool
}

// New creates a checker reporting limitReached once usage reaches
// limit*threshold. Results are reused for ttl; ttl 0 queries every time.
func New(reporter UsageReporter, limit int64, threshold float64, ttl time.Duration) *Checker {
	return &Checker{
		reporter:  reporter,
		limit:     limit,
		threshold: threshold,
		ttl:       ttl,
		now:       time.Now,
	}
}

// Check never fails: when usage cannot be measured it logs and returns the
// neutral status, so a broken usage query blocks neither status nor writes.
func (c *Checker) Check(ctx context.Context) domain.StorageStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.hasCache && c.ttl > 0 && now.Sub(c.cachedAt) < c.ttl {
		return c.cached
	}

	used, err := c.reporter.Usage(ctx)
	if err != nil {
		logger.Log.Error("error checking storage limit", "component", "capacity", "error", err)
		return c.neutral()
	}

	status := domain.StorageStatus{
		LimitReached: float64(used) >= float64(c.limit)*c.threshold,
		CurrentSize:  used,
		MaxSize:      c.limit,
		UsagePercent: float64(used) / float64(c.limit) * 100,
	}
	metrics.StorageUsageBytes.Set(float64(used))
	logger.Log.Debug("storage usage",
		"component", "capacity",
		"bytes", used,
		"percent", status.UsagePercent)

	c.cached = status
	c.cachedAt = now
	c.hasCache = true
	return status
}

// Invalidate drops the cached result.
func (c *Checker) Invalidate() {
	c.mu.Lock()
	c.hasCache = false
	c.mu.Unlock()
}

func (c *Checker) neutral() domain.StorageStatus {
	return domain.StorageStatus{MaxSize: c.limit}
}
