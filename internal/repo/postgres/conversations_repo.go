package postgres

import (
	"context"

	"github.com/devinfinitee/AI-health-companion/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ConversationsRepo interface {
	Create(ctx context.Context, userID, question, reply string) (*domain.Conversation, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.Conversation, error)
	CountByUser(ctx context.Context, userID string) (int, error)
}

type ConversationsRepoImpl struct{ pool *pgxpool.Pool }

func NewConversationsRepo(pool *pgxpool.Pool) *ConversationsRepoImpl {
	return &ConversationsRepoImpl{pool: pool}
}

const conversationCols = `id::text, user_id::text, question, reply, created_at`

func (r *ConversationsRepoImpl) Create(ctx context.Context, userID, question, reply string) (*domain.Conversation, error) {
	const q = `INSERT INTO conversations (id, user_id, question, reply)
VALUES ($1,$2,$3,$4)
RETURNING ` + conversationCols
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var c domain.Conversation
	if err := r.pool.QueryRow(ctx, q, uuid.NewString(), userID, question, reply).Scan(
		&c.ID, &c.UserID, &c.Question, &c.Reply, &c.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByUser returns the newest conversations first.
func (r *ConversationsRepoImpl) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Conversation, error) {
	out := []domain.Conversation{}
	if !validUUID(userID) {
		return out, nil
	}
	if limit <= 0 {
		limit = 50
	}
	const q = `SELECT ` + conversationCols + ` FROM conversations
WHERE user_id=$1
ORDER BY created_at DESC
LIMIT $2`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var c domain.Conversation
		if err := rows.Scan(&c.ID, &c.UserID, &c.Question, &c.Reply, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ConversationsRepoImpl) CountByUser(ctx context.Context, userID string) (int, error) {
	if !validUUID(userID) {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM conversations WHERE user_id=$1`, userID).Scan(&n)
	return n, err
}

var _ ConversationsRepo = (*ConversationsRepoImpl)(nil)
