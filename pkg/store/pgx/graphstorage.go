package pgx

import (
	"context"
	"sync"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
	Begin(ctx context.Context) (pgxv5.Tx, error)
}

// GraphDBStorage implements the GraphStorage interface using PostgreSQL with
// pgvector for name similarity search. Snapshots are written in one
// transaction per phase with COPY; writes are serialized with a mutex.
//
// The connection must have the pgvector types registered, e.g. through
// pgxpool's AfterConnect hook calling pgxvec.RegisterTypes.
type GraphDBStorage struct {
	conn      pgxIConn
	chunkSize int
	dbLock    sync.Mutex
}

type GraphDBStorageOption func(*GraphDBStorage)

// WithChunkSize sets the number of rows sent per COPY statement.
func WithChunkSize(size int) GraphDBStorageOption {
	return func(s *GraphDBStorage) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// NewGraphDBStorageWithConnection creates a new GraphDBStorage using an
// existing database connection or pool.
func NewGraphDBStorageWithConnection(conn pgxIConn, opts ...GraphDBStorageOption) *GraphDBStorage {
	s := &GraphDBStorage{
		conn:      conn,
		chunkSize: 5000,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}
