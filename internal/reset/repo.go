package reset

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sitecrew/sitecrew/internal/shared"
)

// Store defines reset-token persistence. A digest uniquely identifies at
// most one token; consumption is a one-way transition.
type Store interface {
	Create(ctx context.Context, token *Token) error
	FindByDigest(ctx context.Context, digest string) (*Token, error)
	DeleteLiveForUser(ctx context.Context, userID int64) error
	MarkConsumed(ctx context.Context, token *Token, at time.Time) error
}

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewStore constructs a PostgreSQL store.
func NewStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// Create persists a token record.
func (s *PGStore) Create(ctx context.Context, token *Token) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO password_reset_tokens (id, user_id, digest, expires_at, request_ip, request_ua, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		token.ID, token.UserID, token.Digest, token.ExpiresAt, token.RequestIP, token.RequestUA, token.CreatedAt)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23505" {
			// Digest collision means the same secret was issued twice,
			// which random generation makes unreachable in practice.
			return fmt.Errorf("reset: digest conflict: %w", err)
		}
		return fmt.Errorf("reset: create token: %w", err)
	}
	return nil
}

// FindByDigest returns the token identified by digest.
func (s *PGStore) FindByDigest(ctx context.Context, digest string) (*Token, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, user_id, digest, expires_at, consumed_at, request_ip, request_ua, created_at
		 FROM password_reset_tokens WHERE digest = $1`, digest)

	var t Token
	err := row.Scan(&t.ID, &t.UserID, &t.Digest, &t.ExpiresAt, &t.ConsumedAt, &t.RequestIP, &t.RequestUA, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrTokenInvalid
		}
		return nil, fmt.Errorf("reset: find by digest: %w", err)
	}
	return &t, nil
}

// DeleteLiveForUser removes every unconsumed, unexpired token belonging
// to the identity.
func (s *PGStore) DeleteLiveForUser(ctx context.Context, userID int64) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM password_reset_tokens
		 WHERE user_id = $1 AND consumed_at IS NULL AND expires_at > NOW()`, userID)
	if err != nil {
		return fmt.Errorf("reset: delete live tokens: %w", err)
	}
	return nil
}

// MarkConsumed stamps the token consumed. The NULL guard makes the
// transition happen at most once under concurrent consumption.
func (s *PGStore) MarkConsumed(ctx context.Context, token *Token, at time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE password_reset_tokens SET consumed_at = $2
		 WHERE id = $1 AND consumed_at IS NULL`, token.ID, at)
	if err != nil {
		return fmt.Errorf("reset: mark consumed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrTokenUsed
	}
	token.ConsumedAt = &at
	return nil
}

var _ Store = (*PGStore)(nil)
