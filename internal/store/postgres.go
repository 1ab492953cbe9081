package store

import (
	"context"
	"errors"

	"RentalLedger/internal/db"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres stores documents as JSONB rows. The documents table is created by
// cmd/migrate.
type Postgres struct {
	Pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{Pool: pool}
}

func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := db.Connect(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return NewPostgres(pool), nil
}

func (s *Postgres) Get(ctx context.Context, key string) ([]byte, bool, error) {
	row := s.Pool.QueryRow(ctx, "SELECT payload FROM documents WHERE key=$1", key)
	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return payload, true, nil
}

func (s *Postgres) Put(ctx context.Context, key string, payload []byte) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO documents (key, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET payload=EXCLUDED.payload, updated_at=EXCLUDED.updated_at
	`, key, payload)
	return err
}

func (s *Postgres) Close() error {
	s.Pool.Close()
	return nil
}
