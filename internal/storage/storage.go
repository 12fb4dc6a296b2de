package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/stephenafamo/bob"

	"github.com/carson-networks/ledger-server/internal/config"
	"github.com/carson-networks/ledger-server/internal/storage/sqlconfig"
)

type Storage struct {
	DB     *sql.DB
	Reader *Reader
	bobDB  bob.DB
}

// NewStorage opens the postgres pool described by env.
func NewStorage(env *config.Config) (*Storage, error) {
	db, err := sql.Open("postgres", sqlconfig.ConnectionString(env))
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	return NewStorageFromDB(db), nil
}

// NewStorageFromDB wraps an already opened pool.
func NewStorageFromDB(db *sql.DB) *Storage {
	bobDB := bob.NewDB(db)
	return &Storage{
		DB:     db,
		Reader: NewReader(bobDB),
		bobDB:  bobDB,
	}
}

// Write begins a transaction and returns a Writer bound to it. The caller must
// Commit or Rollback.
func (s *Storage) Write(ctx context.Context) (*Writer, error) {
	tx, err := s.bobDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return NewWriter(tx), nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func (s *Storage) Close() error {
	return s.DB.Close()
}
