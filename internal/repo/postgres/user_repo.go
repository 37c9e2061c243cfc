package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/devinfinitee/AI-health-companion/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const queryTimeout = 3 * time.Second

const pgUniqueViolation = "23505"

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

type UsersRepo interface {
	Create(ctx context.Context, email, hash, name string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

type UsersRepoImpl struct{ pool *pgxpool.Pool }

func NewUsersRepo(pool *pgxpool.Pool) *UsersRepoImpl { return &UsersRepoImpl{pool: pool} }

const userCols = `id::text, email, password_hash, name, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UsersRepoImpl) Create(ctx context.Context, email, hash, name string) (*domain.User, error) {
	const q = `
INSERT INTO users (id, email, password_hash, name)
VALUES ($1,$2,$3,$4)
RETURNING ` + userCols
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	u, err := scanUser(r.pool.QueryRow(ctx, q, uuid.NewString(), email, hash, name))
	if isUniqueViolation(err, "users_email_key") {
		return nil, domain.ErrDuplicateEmail
	}
	return u, err
}

func (r *UsersRepoImpl) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE email=$1`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return scanUser(r.pool.QueryRow(ctx, q, email))
}

func (r *UsersRepoImpl) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if !validUUID(id) {
		return nil, domain.ErrNotFound
	}
	const q = `SELECT ` + userCols + ` FROM users WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return scanUser(r.pool.QueryRow(ctx, q, id))
}

var _ UsersRepo = (*UsersRepoImpl)(nil)
