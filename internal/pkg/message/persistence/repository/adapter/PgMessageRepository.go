package adapter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	message "go-chatline/internal/pkg/message/domain"
)

// PgMessageRepository persists messages in Postgres via a pgx pool.
type PgMessageRepository struct {
	pool *pgxpool.Pool
}

func NewPgMessageRepository(pool *pgxpool.Pool) *PgMessageRepository {
	return &PgMessageRepository{pool: pool}
}

// InitSchema creates the messages table and pair-lookup index if missing.
// Safe to call on every startup.
func (r *PgMessageRepository) InitSchema(ctx context.Context) error {
	if r == nil || r.pool == nil {
		return errors.New("PgMessageRepository: nil pool")
	}
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS messages (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			from_id TEXT NOT NULL,
			to_id TEXT NOT NULL,
			body TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_messages_pair
			ON messages (LEAST(from_id, to_id), GREATEST(from_id, to_id), created_at);
	`)
	return err
}

func (r *PgMessageRepository) SaveMessage(ctx context.Context, m message.Message) (message.Message, error) {
	if r == nil || r.pool == nil {
		return message.Message{}, errors.New("PgMessageRepository: nil pool")
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO messages (from_id, to_id, body)
		VALUES ($1, $2, $3)
		RETURNING id::text, created_at
	`, m.From, m.To, m.Text).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return message.Message{}, err
	}
	return m, nil
}

func (r *PgMessageRepository) GetMessagesBetween(ctx context.Context, userA, userB string) ([]message.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessageRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, from_id, to_id, body, created_at
		FROM messages
		WHERE (from_id = $1 AND to_id = $2) OR (from_id = $2 AND to_id = $1)
		ORDER BY created_at ASC, id ASC
	`, userA, userB)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := make([]message.Message, 0)
	for rows.Next() {
		var m message.Message
		if err := rows.Scan(&m.ID, &m.From, &m.To, &m.Text, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return msgs, nil
}
