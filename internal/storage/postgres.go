package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of *pgxpool.Pool used by the Postgres adapter.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const createStateTable = `
	CREATE TABLE IF NOT EXISTS store_state (
		key        TEXT PRIMARY KEY,
		data       JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`

type postgresStorage struct {
	db DB
}

func NewPostgresStorage(db DB) Storage {
	return &postgresStorage{
		db: db,
	}
}

// EnsureSchema creates the store_state table if it does not exist.
func EnsureSchema(ctx context.Context, db DB) error {
	if _, err := db.Exec(ctx, createStateTable); err != nil {
		return fmt.Errorf("failed to create store_state table: %w", err)
	}
	return nil
}

func (s *postgresStorage) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRow(ctx, `SELECT data FROM store_state WHERE key = $1`, key).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}
	return data, nil
}

func (s *postgresStorage) Set(ctx context.Context, key string, value []byte) error {
	query := `
	INSERT INTO store_state (key, data, updated_at)
	VALUES ($1, $2, now())
	ON CONFLICT (key)
	DO UPDATE SET data = $2, updated_at = now()`
	_, err := s.db.Exec(ctx, query, key, string(value))
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}

	return nil
}

func (s *postgresStorage) Available() bool { return true }
