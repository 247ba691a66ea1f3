package redisdoc

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/textchan-dev/textchan/shared/domain"
	internal_errors "github.com/textchan-dev/textchan/shared/errors"
)

func (s *Storage) CreateReply(ctx context.Context, creationData domain.ReplyCreationData) (domain.Reply, error) {
	exists, err := s.rdb.Exists(ctx, s.threadKey(creationData.ThreadId)).Result()
	if err != nil {
		return domain.Reply{}, fmt.Errorf("failed to check thread: %w", err)
	}
	if exists == 0 {
		return domain.Reply{}, internal_errors.ThreadNotFound()
	}

	id, err := s.rdb.Incr(ctx, s.seqKey("replies")).Result()
	if err != nil {
		return domain.Reply{}, fmt.Errorf("failed to allocate reply id: %w", err)
	}
	reply := domain.Reply{
		Id:        id,
		ThreadId:  creationData.ThreadId,
		Body:      creationData.Body,
		UserId:    creationData.UserId,
		CreatedAt: creationData.CreatedAt.UTC().Truncate(time.Millisecond),
	}
	ms := toMillis(reply.CreatedAt)

	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, s.replyKey(reply.ThreadId, id), "body", reply.Body, "user_id", reply.UserId, "created_at", ms)
		p.ZAdd(ctx, s.repliesKey(reply.ThreadId), redis.Z{Score: float64(ms), Member: id})
		return nil
	})
	if err != nil {
		return domain.Reply{}, fmt.Errorf("failed to store reply: %w", err)
	}
	return reply, nil
}

func (s *Storage) GetRepliesByThreadId(ctx context.Context, threadId domain.ThreadId) ([]domain.Reply, error) {
	members, err := s.rdb.ZRange(ctx, s.repliesKey(threadId), 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to fetch reply index: %w", err)
	}

	replies := []domain.Reply{}
	if len(members) == 0 {
		return replies, nil
	}

	ids := make([]domain.ReplyId, len(members))
	hashes := make([]*redis.MapStringStringCmd, len(members))
	_, err = s.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		for i, m := range members {
			id, err := strconv.ParseInt(m, 10, 64)
			if err != nil {
				return fmt.Errorf("malformed reply id %q: %w", m, err)
			}
			ids[i] = id
			hashes[i] = p.HGetAll(ctx, s.replyKey(threadId, id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch replies: %w", err)
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
		replies = append(replies, domain.Reply{
			Id:        id,
			ThreadId:  threadId,
			Body:      fields["body"],
			UserId:    fields["user_id"],
			CreatedAt: createdAt,
		})
	}
	sort.Slice(replies, func(i, j int) bool {
		if !replies[i].CreatedAt.Equal(replies[j].CreatedAt) {
			return replies[i].CreatedAt.Before(replies[j].CreatedAt)
		}
		return replies[i].Id < replies[j].Id
	})
	return replies, nil
}
