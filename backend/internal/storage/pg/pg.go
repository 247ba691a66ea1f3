package pg

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/textchan-dev/textchan/shared/logger"
	"github.com/textchan-dev/textchan/shared/storage/sqldb"
)

//go:embed migrations/init.sql
var schema string

type Storage struct {
	db *sql.DB
}

func New(ctx context.Context, dsn string) (*Storage, error) {
	logger.Log.Info("connecting to postgres")
	db, err := sqldb.Open(ctx, "postgres", dsn, sqldb.DefaultConnectionConfig())
	if err != nil {
		return nil, err
	}
	logger.Log.Info("successfully connected to postgres")

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Storage{db: db}, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// Usage reports the on-disk size of the current database.
func (s *Storage) Usage(ctx context.Context) (int64, error) {
	var size int64
	if err := s.db.QueryRowContext(ctx, "SELECT pg_database_size(current_database())").Scan(&size); err != nil {
		return 0, fmt.Errorf("failed to query database size: %w", err)
	}
	return size, nil
}

// normalizeTime matches what the column returns on read.
func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
