package sqlite

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
	createdAt := formatTime(creationData.CreatedAt)
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO threads (body, user_id, created_at) VALUES (?, ?, ?)",
		creationData.Body, creationData.UserId, createdAt,
	)
	if err != nil {
		return domain.Thread{}, fmt.Errorf("failed to insert thread: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Thread{}, fmt.Errorf("failed to read thread id: %w", err)
	}

	created, err := parseTime(createdAt)
	if err != nil {
		return domain.Thread{}, err
	}
	return domain.Thread{
		Id:        id,
		Body:      creationData.Body,
		UserId:    creationData.UserId,
		CreatedAt: created,
	}, nil
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
	return getThread(ctx, s.db, id)
}

func getThread(ctx context.Context, q sqldb.Querier, id domain.ThreadId) (domain.Thread, error) {
	row := q.QueryRowContext(ctx, "SELECT "+threadColumns+" FROM threads t WHERE t.id = ?", id)
	thread, err := scanThread(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Thread{}, internal_errors.ThreadNotFound()
		}
		return domain.Thread{}, err
	}
	return thread, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanThread(row scanner) (domain.Thread, error) {
	var thread domain.Thread
	var createdAt string
	if err := row.Scan(&thread.Id, &thread.Body, &thread.UserId, &createdAt, &thread.ReplyCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Thread{}, err
		}
		return domain.Thread{}, fmt.Errorf("failed to scan thread: %w", err)
	}
	var err error
	if thread.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.Thread{}, err
	}
	return thread, nil
}
