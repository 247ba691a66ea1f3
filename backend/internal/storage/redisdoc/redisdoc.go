// Package redisdoc keeps threads and replies as Redis hashes indexed by sorted sets.
//
// Key layout, relative to the configured prefix:
//
//	{prefix}:threads                          zset of thread ids scored by createdAt (unix ms)
//	{prefix}:threads:{id}                     hash body, user_id, created_at
//	{prefix}:threads:{id}:replies             zset of reply ids scored by createdAt
//	{prefix}:threads:{id}:replies:{rid}       hash body, user_id, created_at
//	{prefix}:seq:threads, {prefix}:seq:replies id counters
package redisdoc

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/textchan-dev/textchan/shared/domain"
	"github.com/textchan-dev/textchan/shared/logger"
)

const scanBatch = 500

type Storage struct {
	rdb    *redis.Client
	prefix string
}

// New does not take ownership of rdb; the caller closes it.
func New(ctx context.Context, rdb *redis.Client, prefix string) (*Storage, error) {
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	logger.Log.Info("using redis storage", "prefix", prefix)
	return &Storage{rdb: rdb, prefix: prefix}, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Storage) Close() error {
	return nil
}

// Usage sums MEMORY USAGE over every key under the prefix.
func (s *Storage) Usage(ctx context.Context) (int64, error) {
	var (
		total  int64
		cursor uint64
	)
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, s.prefix+":*", scanBatch).Result()
		if err != nil {
			return 0, fmt.Errorf("failed to scan keys: %w", err)
		}
		if len(keys) > 0 {
			cmds, err := s.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
				for _, key := range keys {
					p.MemoryUsage(ctx, key)
				}
				return nil
			})
			if err != nil && err != redis.Nil {
				return 0, fmt.Errorf("failed to query memory usage: %w", err)
			}
			for _, cmd := range cmds {
				// keys may vanish between SCAN and MEMORY USAGE
				if n, err := cmd.(*redis.IntCmd).Result(); err == nil {
					total += n
				}
			}
		}
		cursor = next
		if cursor == 0 {
			return total, nil
		}
	}
}

func (s *Storage) threadsKey() string {
	return s.prefix + ":threads"
}

func (s *Storage) threadKey(id domain.ThreadId) string {
	return fmt.Sprintf("%s:threads:%d", s.prefix, id)
}

func (s *Storage) repliesKey(id domain.ThreadId) string {
	return s.threadKey(id) + ":replies"
}

func (s *Storage) replyKey(threadId domain.ThreadId, id domain.ReplyId) string {
	return fmt.Sprintf("%s:%d", s.repliesKey(threadId), id)
}

func (s *Storage) seqKey(name string) string {
	return s.prefix + ":seq:" + name
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms string) (time.Time, error) {
	n, err := strconv.ParseInt(ms, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed created_at %q: %w", ms, err)
	}
	return time.UnixMilli(n).UTC(), nil
}
