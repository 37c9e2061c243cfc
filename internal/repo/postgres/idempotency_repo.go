package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IdempotencyRepo stores replayable responses in Postgres. It backs the
// idempotency middleware when Redis is not configured.
type IdempotencyRepo interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// CleanupExpired removes expired idempotency records
	CleanupExpired(ctx context.Context) (int64, error)
}

type IdempotencyRepoImpl struct {
	pool *pgxpool.Pool
}

func NewIdempotencyRepo(pool *pgxpool.Pool) *IdempotencyRepoImpl {
	return &IdempotencyRepoImpl{pool: pool}
}

var ErrIdempotencyMiss = errors.New("idempotency key not found")

// Get expects key to be hashed already.
func (r *IdempotencyRepoImpl) Get(ctx context.Context, key string) (string, error) {
	const q = `SELECT response FROM idempotency_keys WHERE key_hash=$1 AND expires_at > now()`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var response string
	err := r.pool.QueryRow(ctx, q, key).Scan(&response)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrIdempotencyMiss
	}
	return response, err
}

// Set keeps the first stored response for a key until it expires.
func (r *IdempotencyRepoImpl) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	const q = `
INSERT INTO idempotency_keys (key_hash, response, expires_at)
VALUES ($1, $2, $3)
ON CONFLICT (key_hash) DO UPDATE
  SET response = EXCLUDED.response, expires_at = EXCLUDED.expires_at
  WHERE idempotency_keys.expires_at <= now()`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, key, value, time.Now().Add(ttl))
	return err
}

func (r *IdempotencyRepoImpl) CleanupExpired(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, `DELETE FROM idempotency_keys WHERE expires_at < now()`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

var _ IdempotencyRepo = (*IdempotencyRepoImpl)(nil)
