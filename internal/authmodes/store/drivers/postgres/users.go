package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/authmodes/internal/authmodes/domain"
	"github.com/aussiebroadwan/authmodes/internal/authmodes/store"
)

type usersRepo struct {
	db dbtx
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	query := `
		SELECT id, email, password_hash, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	return r.scan(ctx, query, id)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	query := `
		SELECT id, email, password_hash, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	return r.scan(ctx, query, domain.NormalizeEmail(email))
}

func (r *usersRepo) scan(ctx context.Context, query string, arg string) (domain.User, error) {
	var u domain.User
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = u.CreatedAt
	}

	query := `
		INSERT INTO users (id, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query,
		u.ID, domain.NormalizeEmail(u.Email), u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return affected(res, store.ErrAlreadyExists)
}
