package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/authmodes/internal/authmodes/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrConflict means a compare-and-swap lost: the stored value was no
	// longer the one the caller expected.
	ErrConflict = errors.New("store: conflict")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and to stop anyone from opening a transaction inside a
// transaction.
type Store interface {
	Users() Users
	RefreshRecords() RefreshRecords
	Sessions() Sessions

	ApplyMigrations(ctx context.Context) error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail looks a user up by normalized email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by the caller as a ULID).
	// Fails with ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error
}

// RefreshRecords holds one hybrid refresh token fingerprint per user.
type RefreshRecords interface {
	// CreateRefreshRecord is insert-only; ErrAlreadyExists if the user has one.
	CreateRefreshRecord(ctx context.Context, userID, tokenHash string) error

	// UpdateRefreshRecord replaces the stored value; ErrNotFound if no record.
	UpdateRefreshRecord(ctx context.Context, userID, tokenHash string) error

	// GetRefreshRecord returns the record for userID or ErrNotFound.
	GetRefreshRecord(ctx context.Context, userID string) (domain.RefreshRecord, error)

	// ClearRefreshRecord empties the stored value (logout).
	ClearRefreshRecord(ctx context.Context, userID string) error

	// RotateRefreshRecord swaps currentHash for nextHash in a single
	// statement. ErrConflict when the stored value is no longer currentHash.
	RotateRefreshRecord(ctx context.Context, userID, currentHash, nextHash string) error
}

// Sessions is implemented by the SQL drivers and by the redis driver.
type Sessions interface {
	CreateSession(ctx context.Context, s domain.Session) error

	// GetSession returns ErrNotFound for missing and for expired sessions.
	GetSession(ctx context.Context, id string) (domain.Session, error)

	// DeleteSession returns ErrNotFound when nothing was deleted.
	DeleteSession(ctx context.Context, id string) error

	// DeleteExpiredSessions is optional housekeeping.
	DeleteExpiredSessions(ctx context.Context) error
}
