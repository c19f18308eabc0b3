package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aussiebroadwan/authmodes/internal/authmodes/domain"
	"github.com/aussiebroadwan/authmodes/internal/authmodes/store"
)

type refreshRecordsRepo struct {
	db dbtx
}

func (r *refreshRecordsRepo) CreateRefreshRecord(ctx context.Context, userID, tokenHash string) error {
	query := `
		INSERT INTO refresh_records (user_id, token_hash, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query, userID, nullable(tokenHash), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return affected(res, store.ErrAlreadyExists)
}

func (r *refreshRecordsRepo) UpdateRefreshRecord(ctx context.Context, userID, tokenHash string) error {
	query := `
		UPDATE refresh_records
		SET token_hash = $1, updated_at = $2
		WHERE user_id = $3
	`
	res, err := r.db.ExecContext(ctx, query, nullable(tokenHash), time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return affected(res, store.ErrNotFound)
}

func (r *refreshRecordsRepo) GetRefreshRecord(ctx context.Context, userID string) (domain.RefreshRecord, error) {
	query := `
		SELECT user_id, token_hash, updated_at
		FROM refresh_records
		WHERE user_id = $1
	`
	var (
		rec  domain.RefreshRecord
		hash sql.NullString
	)
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&rec.UserID, &hash, &rec.UpdatedAt); err != nil {
		return domain.RefreshRecord{}, mapNotFound(err)
	}
	rec.TokenHash = hash.String
	return rec, nil
}

func (r *refreshRecordsRepo) ClearRefreshRecord(ctx context.Context, userID string) error {
	return r.UpdateRefreshRecord(ctx, userID, "")
}

func (r *refreshRecordsRepo) RotateRefreshRecord(ctx context.Context, userID, currentHash, nextHash string) error {
	if currentHash == "" {
		return store.ErrConflict
	}
	query := `
		UPDATE refresh_records
		SET token_hash = $1, updated_at = $2
		WHERE user_id = $3 AND token_hash = $4
	`
	res, err := r.db.ExecContext(ctx, query, nullable(nextHash), time.Now().UTC(), userID, currentHash)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return affected(res, store.ErrConflict)
}
