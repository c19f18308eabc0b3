package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/authmodes/internal/authmodes/domain"
	"github.com/aussiebroadwan/authmodes/internal/authmodes/store"
)

type refreshRecordsRepo struct {
	db dbtx
}

func (r *refreshRecordsRepo) CreateRefreshRecord(ctx context.Context, userID, tokenHash string) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO refresh_records (user_id, token_hash, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT DO NOTHING`,
		userID, mapStringNull(tokenHash), toMillis(time.Now()),
	)
	if err != nil {
		return err
	}
	return affected(res, store.ErrAlreadyExists)
}

func (r *refreshRecordsRepo) UpdateRefreshRecord(ctx context.Context, userID, tokenHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE refresh_records SET token_hash = ?, updated_at = ? WHERE user_id = ?`,
		mapStringNull(tokenHash), toMillis(time.Now()), userID,
	)
	if err != nil {
		return err
	}
	return affected(res, store.ErrNotFound)
}

func (r *refreshRecordsRepo) GetRefreshRecord(ctx context.Context, userID string) (domain.RefreshRecord, error) {
	var (
		rec       domain.RefreshRecord
		hash      sql.NullString
		updatedAt int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, token_hash, updated_at FROM refresh_records WHERE user_id = ?`,
		userID,
	).Scan(&rec.UserID, &hash, &updatedAt)
	if err != nil {
		return domain.RefreshRecord{}, mapNotFound(err)
	}
	rec.TokenHash = mapNullString(hash)
	rec.UpdatedAt = fromMillis(updatedAt)
	return rec, nil
}

func (r *refreshRecordsRepo) ClearRefreshRecord(ctx context.Context, userID string) error {
	return r.UpdateRefreshRecord(ctx, userID, "")
}

func (r *refreshRecordsRepo) RotateRefreshRecord(ctx context.Context, userID, currentHash, nextHash string) error {
	if currentHash == "" {
		return store.ErrConflict
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE refresh_records SET token_hash = ?, updated_at = ?
		 WHERE user_id = ? AND token_hash = ?`,
		mapStringNull(nextHash), toMillis(time.Now()), userID, currentHash,
	)
	if err != nil {
		return err
	}
	return affected(res, store.ErrConflict)
}
