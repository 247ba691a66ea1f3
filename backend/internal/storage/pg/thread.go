package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/textchan-dev/textchan/shared/domain"
	internal_errors "github.com/textchan-dev/textchan/shared/errors"
	"github.com/textchan-dev/textchan/shared/storage/sqldb"
)

const threadColumns = `
    t.id, t.body, t.user_id, t.created_at,
    (SELECT COUNT(*) FROM replies r WHERE r.thread_id = t.id)`

func (s *Storage) CreateThread(ctx context.Context, creationData domain.ThreadCreationData) (domain.Thread, error) {
	thread := domain.Thread{
		Body:      creationData.Body,
		UserId:    creationData.UserId,
		CreatedAt: normalizeTime(creationData.CreatedAt),
	}
	err := s.db.QueryRowContext(ctx, `
        INSERT INTO threads (body, user_id, created_at)
        VALUES ($1, $2, $3)
        RETURNING id`,
		thread.Body, thread.UserId, thread.CreatedAt,
	).Scan(&thread.Id)
	if err != nil {
		return domain.Thread{}, fmt.Errorf("failed to insert thread: %w", err)
	}
	return thread, nil
}

func (s *Storage) GetAllThreads(ctx context.Context) ([]domain.Thread, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+threadColumns+" FROM threads t ORDER BY t.created_at DESC, t.id DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch threads: %w", err)
	}
	defer rows.Close()

	threads := []domain.Thread{}
	for rows.Next() {
		thread, err := scanThread(rows)
		if err != nil {
			return nil, err
		}
		threads = append(threads, thread)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return threads, nil
}

func (s *Storage) GetThreadById(ctx context.Context, id domain.ThreadId) (domain.Thread, error) {
	return getThread(ctx, s.db, id, "")
}

// lock is appended to the query, e.g. "FOR SHARE" inside a transaction.
func getThread(ctx context.Context, q sqldb.Querier, id domain.ThreadId, lock string) (domain.Thread, error) {
	row := q.QueryRowContext(ctx, "SELECT "+threadColumns+" FROM threads t WHERE t.id = $1 "+lock, id)
	thread, err := scanThread(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Thread{}, internal_errors.ThreadNotFound()
	}
	return thread, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanThread(row scanner) (domain.Thread, error) {
	var thread domain.Thread
	if err := row.Scan(&thread.Id, &thread.Body, &thread.UserId, &thread.CreatedAt, &thread.ReplyCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Thread{}, err
		}
		return domain.Thread{}, fmt.Errorf("failed to scan thread: %w", err)
	}
	thread.CreatedAt = thread.CreatedAt.UTC()
	return thread, nil
}
