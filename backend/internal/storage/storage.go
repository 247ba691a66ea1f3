// Package storage defines the persistence contract shared by every backend
// and opens the configured one.
package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/textchan-dev/textchan/backend/internal/storage/pg"
	"github.com/textchan-dev/textchan/backend/internal/storage/redisdoc"
	"github.com/textchan-dev/textchan/backend/internal/storage/sqlite"
	"github.com/textchan-dev/textchan/shared/config"
	"github.com/textchan-dev/textchan/shared/domain"
)

// Storage is implemented by sqlite, pg and redisdoc.
// Missing threads are reported as errors carrying 404.
type Storage interface {
	CreateThread(ctx context.Context, creationData domain.ThreadCreationData) (domain.Thread, error)
	GetAllThreads(ctx context.Context) ([]domain.Thread, error)
	GetThreadById(ctx context.Context, id domain.ThreadId) (domain.Thread, error)
	GetRepliesByThreadId(ctx context.Context, id domain.ThreadId) ([]domain.Reply, error)
	CreateReply(ctx context.Context, creationData domain.ReplyCreationData) (domain.Reply, error)

	// Usage returns the bytes currently used by the store.
	Usage(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Storage = (*sqlite.Storage)(nil)
	_ Storage = (*pg.Storage)(nil)
	_ Storage = (*redisdoc.Storage)(nil)
)

// Open connects to the backend selected by cfg. rdb is only used by the
// redis driver and may be nil otherwise.
func Open(ctx context.Context, cfg *config.Config, rdb *redis.Client) (Storage, error) {
	switch cfg.Public.Storage.Driver {
	case config.DriverSQLite:
		return sqlite.New(ctx, cfg.Public.Storage.SqlitePath)
	case config.DriverPostgres:
		return pg.New(ctx, cfg.Private.Pg.DSN())
	case config.DriverRedis:
		if rdb == nil {
			return nil, fmt.Errorf("redis storage requires a redis client")
		}
		return redisdoc.New(ctx, rdb, cfg.Public.Storage.RedisPrefix)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Public.Storage.Driver)
	}
}
