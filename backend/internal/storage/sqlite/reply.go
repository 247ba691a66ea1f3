package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/textchan-dev/textchan/shared/domain"
	"github.com/textchan-dev/textchan/shared/storage/sqldb"
)

// CreateReply checks the thread and inserts in one transaction.
func (s *Storage) CreateReply(ctx context.Context, creationData domain.ReplyCreationData) (domain.Reply, error) {
	createdAt := formatTime(creationData.CreatedAt)
	var id int64
	err := sqldb.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := getThread(ctx, tx, creationData.ThreadId); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			"INSERT INTO replies (thread_id, body, user_id, created_at) VALUES (?, ?, ?, ?)",
			creationData.ThreadId, creationData.Body, creationData.UserId, createdAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert reply: %w", err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("failed to read reply id: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Reply{}, err
	}

	created, err := parseTime(createdAt)
	if err != nil {
		return domain.Reply{}, err
	}
	return domain.Reply{
		Id:        id,
		ThreadId:  creationData.ThreadId,
		Body:      creationData.Body,
		UserId:    creationData.UserId,
		CreatedAt: created,
	}, nil
}

func (s *Storage) GetRepliesByThreadId(ctx context.Context, id domain.ThreadId) ([]domain.Reply, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, thread_id, body, user_id, created_at
		FROM replies
		WHERE thread_id = ?
		ORDER BY created_at ASC, id ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch replies: %w", err)
	}
	defer rows.Close()

	replies := []domain.Reply{}
	for rows.Next() {
		var reply domain.Reply
		var createdAt string
		if err := rows.Scan(&reply.Id, &reply.ThreadId, &reply.Body, &reply.UserId, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan reply: %w", err)
		}
		if reply.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		replies = append(replies, reply)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return replies, nil
}
