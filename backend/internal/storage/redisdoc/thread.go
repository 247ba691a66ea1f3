package redisdoc

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/textchan-dev/textchan/shared/domain"
	internal_errors "github.com/textchan-dev/textchan/shared/errors"
)

func (s *Storage) CreateThread(ctx context.Context, creationData domain.ThreadCreationData) (domain.Thread, error) {
	id, err := s.rdb.Incr(ctx, s.seqKey("threads")).Result()
	if err != nil {
		return domain.Thread{}, fmt.Errorf("failed to allocate thread id: %w", err)
	}
	thread := domain.Thread{
		Id:        id,
		Body:      creationData.Body,
		UserId:    creationData.UserId,
		CreatedAt: creationData.CreatedAt.UTC().Truncate(time.Millisecond),
	}
	ms := toMillis(thread.CreatedAt)

	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, s.threadKey(id), "body", thread.Body, "user_id", thread.UserId, "created_at", ms)
		p.ZAdd(ctx, s.threadsKey(), redis.Z{Score: float64(ms), Member: id})
		return nil
	})
	if err != nil {
		return domain.Thread{}, fmt.Errorf("failed to store thread: %w", err)
	}
	return thread, nil
}

func (s *Storage) GetAllThreads(ctx context.Context) ([]domain.Thread, error) {
	members, err := s.rdb.ZRange(ctx, s.threadsKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch thread index: %w", err)
	}

	ids := make([]domain.ThreadId, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed thread id %q: %w", m, err)
		}
		ids = append(ids, id)
	}

	threads, err := s.loadThreads(ctx, ids)
	if err != nil {
		return nil, err
	}
	sort.Slice(threads, func(i, j int) bool {
		if !threads[i].CreatedAt.Equal(threads[j].CreatedAt) {
			return threads[i].CreatedAt.After(threads[j].CreatedAt)
		}
		return threads[i].Id > threads[j].Id
	})
	return threads, nil
}

func (s *Storage) GetThreadById(ctx context.Context, id domain.ThreadId) (domain.Thread, error) {
	threads, err := s.loadThreads(ctx, []domain.ThreadId{id})
	if err != nil {
		return domain.Thread{}, err
	}
	if len(threads) == 0 {
		return domain.Thread{}, internal_errors.ThreadNotFound()
	}
	return threads[0], nil
}

// loadThreads skips ids whose hash is missing.
func (s *Storage) loadThreads(ctx context.Context, ids []domain.ThreadId) ([]domain.Thread, error) {
	threads := []domain.Thread{}
	if len(ids) == 0 {
		return threads, nil
	}

	hashes := make([]*redis.MapStringStringCmd, len(ids))
	counts := make([]*redis.IntCmd, len(ids))
	_, err := s.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		for i, id := range ids {
			hashes[i] = p.HGetAll(ctx, s.threadKey(id))
			counts[i] = p.ZCard(ctx, s.repliesKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch threads: %w", err)
	}

	for i, id := range ids {
		fields := hashes[i].Val()
		if len(fields) == 0 {
			continue
		}
		createdAt, err := fromMillis(fields["created_at"])
		if err != nil {
			return nil, err
		}
		threads = append(threads, domain.Thread{
			Id:         id,
			Body:       fields["body"],
			UserId:     fields["user_id"],
			CreatedAt:  createdAt,
			ReplyCount: int(counts[i].Val()),
		})
	}
	return threads, nil
}
