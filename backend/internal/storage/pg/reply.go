package pg

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/textchan-dev/textchan/shared/domain"
	"github.com/textchan-dev/textchan/shared/storage/sqldb"
)

// CreateReply holds a share lock on the thread row while inserting.
func (s *Storage) CreateReply(ctx context.Context, creationData domain.ReplyCreationData) (domain.Reply, error) {
	reply := domain.Reply{
		ThreadId:  creationData.ThreadId,
		Body:      creationData.Body,
		UserId:    creationData.UserId,
		CreatedAt: normalizeTime(creationData.CreatedAt),
	}
	err := sqldb.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := getThread(ctx, tx, reply.ThreadId, "FOR SHARE"); err != nil {
			return err
		}
		err := tx.QueryRowContext(ctx, `
            INSERT INTO replies (thread_id, body, user_id, created_at)
            VALUES ($1, $2, $3, $4)
            RETURNING id`,
			reply.ThreadId, reply.Body, reply.UserId, reply.CreatedAt,
		).Scan(&reply.Id)
		if err != nil {
			return fmt.Errorf("failed to insert reply: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Reply{}, err
	}
	return reply, nil
}

func (s *Storage) GetRepliesByThreadId(ctx context.Context, id domain.ThreadId) ([]domain.Reply, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, thread_id, body, user_id, created_at
        FROM replies
        WHERE thread_id = $1
        ORDER BY created_at ASC, id ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch replies: %w", err)
	}
	defer rows.Close()

	replies := []domain.Reply{}
	for rows.Next() {
		var reply domain.Reply
		if err := rows.Scan(&reply.Id, &reply.ThreadId, &reply.Body, &reply.UserId, &reply.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reply: %w", err)
		}
		reply.CreatedAt = reply.CreatedAt.UTC()
		replies = append(replies, reply)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return replies, nil
}
