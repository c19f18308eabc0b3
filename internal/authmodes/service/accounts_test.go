package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aussiebroadwan/authmodes/internal/authmodes/domain"
	"github.com/aussiebroadwan/authmodes/internal/authmodes/service"
	"github.com/aussiebroadwan/authmodes/internal/authmodes/store"
	"github.com/aussiebroadwan/authmodes/pkg/cryptox"
	"github.com/aussiebroadwan/authmodes/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		fields   []string
	}{
		{"valid", "a@x.com", testPassword, nil},
		{"bad email", "not-an-email", testPassword, []string{service.FieldEmail}},
		{"display name rejected", "Alice <a@x.com>", testPassword, []string{service.FieldEmail}},
		{"short password", "a@x.com", "short", []string{service.FieldPassword}},
		{"multibyte password counts runes", "a@x.com", "ééééééé", []string{service.FieldPassword}},
		{"both", "", "", []string{service.FieldEmail, service.FieldPassword}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.ValidateCredentials(tt.email, tt.password)
			if tt.fields == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, service.ErrValidation)

			var verr *service.ValidationError
			require.True(t, errors.As(err, &verr))
			require.Len(t, verr.Fields, len(tt.fields))
			for _, f := range tt.fields {
				require.Contains(t, verr.Fields, f)
			}
		})
	}
}

func TestValidationErrorMessageOrder(t *testing.T) {
	err := service.ValidateCredentials("nope", "123")

	var verr *service.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, "Invalid email, Password must be at least 8 characters long", verr.Message())
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	u, err := f.accounts.Register(ctx, "  Alice@Example.com", testPassword, nil)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", u.Email)

	t.Run("success is case insensitive", func(t *testing.T) {
		got, err := f.accounts.Authenticate(ctx, "ALICE@example.com", testPassword)
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.accounts.Authenticate(ctx, "alice@example.com", "wrong-password")
		require.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("unknown email looks the same", func(t *testing.T) {
		_, err := f.accounts.Authenticate(ctx, "bob@example.com", testPassword)
		require.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("duplicate register", func(t *testing.T) {
		_, err := f.accounts.Register(ctx, "alice@example.com", testPassword, nil)
		require.ErrorIs(t, err, service.ErrEmailTaken)
	})
}

func TestRegisterWithinRollsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	boom := errors.New("boom")

	_, err := f.accounts.Register(ctx, "carol@example.com", testPassword,
		func(context.Context, store.Tx, domain.User) error { return boom },
	)
	require.ErrorIs(t, err, service.ErrStore)
	require.ErrorIs(t, err, boom)

	_, err = f.store.Users().GetUserByEmail(ctx, "carol@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestLookup(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	u, err := f.accounts.Register(ctx, "dave@example.com", testPassword, nil)
	require.NoError(t, err)

	got, err := f.accounts.Lookup(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "dave@example.com", got.Email)

	_, err = f.accounts.Lookup(ctx, "missing")
	require.ErrorIs(t, err, service.ErrUserNotFound)

	_, err = f.accounts.Lookup(ctx, idx.New().String())
	require.ErrorIs(t, err, service.ErrUserNotFound)
}

// unreachableUsers fails every user read.
type unreachableUsers struct {
	store.Store
}

func (u unreachableUsers) Users() store.Users { return brokenUsers{} }

type brokenUsers struct {
	store.Users
}

func (brokenUsers) GetUserByID(context.Context, string) (domain.User, error) {
	return domain.User{}, errors.New("connection refused")
}

func TestLookupSkipsStoreForMalformedIDs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	accounts := service.NewAccounts(unreachableUsers{Store: f.store}, cryptox.NewArgon2("test-pepper"))

	for _, id := range []string{"", "user-1", "../etc/passwd"} {
		_, err := accounts.Lookup(ctx, id)
		require.ErrorIs(t, err, service.ErrUserNotFound, id)
	}

	_, err := accounts.Lookup(ctx, idx.New().String())
	require.ErrorIs(t, err, service.ErrStore)
}

func TestAuthenticateUnknownEmailUsesDummyHash(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	hasher := &countingHasher{PasswordHasher: cryptox.NewArgon2("test-pepper")}
	accounts := service.NewAccounts(f.store, hasher)

	for range 2 {
		_, err := accounts.Authenticate(ctx, "nobody@example.com", testPassword)
		require.ErrorIs(t, err, service.ErrInvalidCredentials)
	}
	require.Equal(t, 1, hasher.dummies)
	require.Equal(t, 2, hasher.compares)
}

type countingHasher struct {
	service.PasswordHasher
	dummies, compares int
}

func (c *countingHasher) DummyHash() string {
	c.dummies++
	return c.PasswordHasher.DummyHash()
}

func (c *countingHasher) Compare(password, encodedHash string) error {
	c.compares++
	return c.PasswordHasher.Compare(password, encodedHash)
}
