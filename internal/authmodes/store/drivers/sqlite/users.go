package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/authmodes/internal/authmodes/domain"
	"github.com/aussiebroadwan/authmodes/internal/authmodes/store"
)

type usersRepo struct {
	db dbtx
}

const selectUser = `SELECT id, email, password_hash, created_at, updated_at FROM users`

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, selectUser+` WHERE id = ?`, id))
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, selectUser+` WHERE email = ?`, domain.NormalizeEmail(email)))
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = u.CreatedAt
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT DO NOTHING`,
		u.ID, domain.NormalizeEmail(u.Email), u.PasswordHash,
		toMillis(u.CreatedAt), toMillis(u.UpdatedAt),
	)
	if err != nil {
		return err
	}
	return affected(res, store.ErrAlreadyExists)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u                    domain.User
		createdAt, updatedAt int64
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &createdAt, &updatedAt); err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.CreatedAt = fromMillis(createdAt)
	u.UpdatedAt = fromMillis(updatedAt)
	return u, nil
}
