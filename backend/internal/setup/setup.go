package setup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/textchan-dev/textchan/backend/internal/capacity"
	"github.com/textchan-dev/textchan/backend/internal/events"
	"github.com/textchan-dev/textchan/backend/internal/handler"
	"github.com/textchan-dev/textchan/backend/internal/policy"
	"github.com/textchan-dev/textchan/backend/internal/service"
	"github.com/textchan-dev/textchan/backend/internal/storage"
	"github.com/textchan-dev/textchan/shared/config"
	"github.com/textchan-dev/textchan/shared/logger"
)

const defaultRedisURL = "redis://localhost:6379/0"

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Config  *config.Config
	Storage storage.Storage
	Broker  events.Broker
	Redis   *redis.Client // nil unless a redis driver is configured
	Handler *handler.Handler
}

type options struct {
	now func() time.Time
}

type Option func(*options)

// WithClock replaces the wall clock used by the posting gate.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(ctx context.Context, cfg *config.Config, opts ...Option) (*Dependencies, error) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	deps := &Dependencies{Config: cfg}

	if cfg.Public.Storage.Driver == config.DriverRedis || cfg.Public.Events.Driver == config.EventsRedis {
		rdb, err := newRedisClient(ctx, cfg.Private.RedisURL)
		if err != nil {
			return nil, err
		}
		deps.Redis = rdb
	}

	store, err := storage.Open(ctx, cfg, deps.Redis)
	if err != nil {
		deps.Close()
		return nil, err
	}
	deps.Storage = store

	broker, err := newBroker(ctx, cfg, deps.Redis)
	if err != nil {
		deps.Close()
		return nil, err
	}
	deps.Broker = broker

	gate := policy.New(cfg.Public.AllowWeekdayPosting).WithClock(o.now)
	checker := capacity.New(store, cfg.Public.Storage.LimitBytes, cfg.Public.Storage.Threshold, cfg.Public.Storage.UsageCacheTTL)

	thread := service.NewThread(store, gate, checker, broker)
	reply := service.NewReply(store, gate, checker, broker)
	status := service.NewStatus(gate, checker)

	deps.Handler = handler.New(thread, reply, status, broker, store, cfg.Public.HeartbeatInterval)

	logger.Log.Info("dependencies initialized",
		"storage", cfg.Public.Storage.Driver,
		"events", cfg.Public.Events.Driver,
		"allow_weekday_posting", cfg.Public.AllowWeekdayPosting)
	return deps, nil
}

// Close releases everything SetupDependencies opened, in reverse order.
func (d *Dependencies) Close() error {
	var errs []error
	if d.Broker != nil {
		errs = append(errs, d.Broker.Close())
	}
	if d.Storage != nil {
		errs = append(errs, d.Storage.Close())
	}
	if d.Redis != nil {
		errs = append(errs, d.Redis.Close())
	}
	return errors.Join(errs...)
}

func newBroker(ctx context.Context, cfg *config.Config, rdb *redis.Client) (events.Broker, error) {
	switch cfg.Public.Events.Driver {
	case config.EventsMemory:
		return events.NewMemory(cfg.Public.Events.BufferSize), nil
	case config.EventsRedis:
		return events.NewRedis(ctx, rdb, cfg.Public.Events.Channel, cfg.Public.Events.BufferSize)
	default:
		return nil, fmt.Errorf("unknown events driver %q", cfg.Public.Events.Driver)
	}
}

func newRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		url = defaultRedisURL
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		// plain host:port
		opts = &redis.Options{Addr: url}
	}
	opts.MaxRetries = 3
	opts.MinRetryBackoff = 100 * time.Millisecond
	opts.MaxRetryBackoff = 500 * time.Millisecond

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}
	logger.Log.Info("redis connected", "addr", opts.Addr, "db", opts.DB)
	return rdb, nil
}
