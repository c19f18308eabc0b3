package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/authmodes/internal/authmodes/domain"
	"github.com/aussiebroadwan/authmodes/internal/authmodes/store"
	"github.com/aussiebroadwan/authmodes/pkg/authsdk"
	"github.com/aussiebroadwan/authmodes/pkg/cryptox"
	"github.com/aussiebroadwan/authmodes/pkg/idx"
	"github.com/aussiebroadwan/authmodes/pkg/slogx"
)

// PasswordHasher is satisfied by *cryptox.Argon2.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(password, encodedHash string) error
	DummyHash() string
}

// Accounts holds the user steps every mode shares.
type Accounts struct {
	Store  store.Store
	Hasher PasswordHasher
	Now    func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewAccounts(st store.Store, hasher PasswordHasher) *Accounts {
	return &Accounts{Store: st, Hasher: hasher, Now: time.Now}
}

// ValidateCredentials checks the register/login body fields.
func ValidateCredentials(email, password string) error {
	fields := map[string]string{}

	if msg := authsdk.ValidateEmail(email); msg != "" {
		fields[FieldEmail] = msg
	}
	if msg := authsdk.ValidatePassword(password); msg != "" {
		fields[FieldPassword] = msg
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Register validates, hashes and inserts a new user. When within is set the
// insert and within run in one transaction, so a failure in within leaves no
// user behind.
func (a *Accounts) Register(
	ctx context.Context,
	email, password string,
	within func(ctx context.Context, tx store.Tx, u domain.User) error,
) (domain.User, error) {
	if err := ValidateCredentials(email, password); err != nil {
		return domain.User{}, err
	}

	hash, err := a.Hasher.Hash(password)
	if err != nil {
		return domain.User{}, storeError("hash password", err)
	}

	now := a.now()
	u := domain.User{
		ID:           idx.New().String(),
		Email:        domain.NormalizeEmail(email),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if within == nil {
		if err := a.Store.Users().CreateUser(ctx, u); err != nil {
			return domain.User{}, createUserError(err)
		}
		return u, nil
	}

	err = a.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, u); err != nil {
			return createUserError(err)
		}
		return within(ctx, tx, u)
	})
	if err != nil {
		if !isKind(err) {
			err = storeError("register", err)
		}
		return domain.User{}, err
	}
	return u, nil
}

// Authenticate returns the user owning email if password matches. Unknown
// emails and wrong passwords are indistinguishable to the caller and cost
// the same hash comparison.
func (a *Accounts) Authenticate(ctx context.Context, email, password string) (domain.User, error) {
	if err := ValidateCredentials(email, password); err != nil {
		return domain.User{}, err
	}

	u, err := a.Store.Users().GetUserByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = a.Hasher.Compare(password, a.dummy())
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, storeError("get user", err)
	}

	if err := a.Hasher.Compare(password, u.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			slogx.FromContext(ctx).Error("stored password hash is unusable",
				slog.String("user_id", u.ID),
				slog.Any("error", err),
			)
		}
		return domain.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Lookup fetches a user for the identity endpoints. Ids that are not ULIDs
// were never issued and are not looked up.
func (a *Accounts) Lookup(ctx context.Context, userID string) (domain.User, error) {
	id, err := idx.Parse(userID)
	if err != nil {
		return domain.User{}, ErrUserNotFound
	}

	u, err := a.Store.Users().GetUserByID(ctx, id.String())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, storeError("get user", err)
	}
	return u, nil
}

func (a *Accounts) dummy() string {
	a.dummyOnce.Do(func() { a.dummyHash = a.Hasher.DummyHash() })
	return a.dummyHash
}

func (a *Accounts) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

func createUserError(err error) error {
	if errors.Is(err, store.ErrAlreadyExists) {
		return ErrEmailTaken
	}
	return storeError("create user", err)
}
