package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/authmodes/internal/authmodes/domain"
	"github.com/aussiebroadwan/authmodes/internal/authmodes/store"
)

type sessionsRepo struct {
	db dbtx
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO sessions (id, user_id, email, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query, s.ID, s.UserID, s.Email, s.CreatedAt, s.ExpiresAt)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return affected(res, store.ErrAlreadyExists)
}

func (r *sessionsRepo) GetSession(ctx context.Context, id string) (domain.Session, error) {
	query := `
		SELECT id, user_id, email, created_at, expires_at
		FROM sessions
		WHERE id = $1 AND expires_at > $2
	`
	var s domain.Session
	err := r.db.QueryRowContext(ctx, query, id, time.Now().UTC()).
		Scan(&s.ID, &s.UserID, &s.Email, &s.CreatedAt, &s.ExpiresAt)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	return s, nil
}

func (r *sessionsRepo) DeleteSession(ctx context.Context, id string) error {
	query := `
		DELETE FROM sessions
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return affected(res, store.ErrNotFound)
}

func (r *sessionsRepo) DeleteExpiredSessions(ctx context.Context) error {
	query := `
		DELETE FROM sessions
		WHERE expires_at <= $1
	`
	if _, err := r.db.ExecContext(ctx, query, time.Now().UTC()); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
