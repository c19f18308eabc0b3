package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/authmodes/internal/authmodes/domain"
	"github.com/aussiebroadwan/authmodes/internal/authmodes/store"
)

type sessionsRepo struct {
	db dbtx
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, email, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT DO NOTHING`,
		s.ID, s.UserID, s.Email, toMillis(s.CreatedAt), toMillis(s.ExpiresAt),
	)
	if err != nil {
		return err
	}
	return affected(res, store.ErrAlreadyExists)
}

// GetSession filters expired rows in the query, so a session past its
// lifetime is indistinguishable from a missing one.
func (r *sessionsRepo) GetSession(ctx context.Context, id string) (domain.Session, error) {
	var (
		s                    domain.Session
		createdAt, expiresAt int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, email, created_at, expires_at
		 FROM sessions WHERE id = ? AND expires_at > ?`,
		id, toMillis(time.Now()),
	).Scan(&s.ID, &s.UserID, &s.Email, &createdAt, &expiresAt)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	s.CreatedAt = fromMillis(createdAt)
	s.ExpiresAt = fromMillis(expiresAt)
	return s, nil
}

func (r *sessionsRepo) DeleteSession(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affected(res, store.ErrNotFound)
}

func (r *sessionsRepo) DeleteExpiredSessions(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, toMillis(time.Now()))
	return err
}
