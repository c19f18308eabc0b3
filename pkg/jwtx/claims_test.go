package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/authmodes/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestNewClaims(t *testing.T) {
	now := time.Now().UTC()
	c := jwtx.NewClaims("user-123", "a@x.com", time.Hour, now)

	require.Equal(t, "user-123", c.UserID())
	require.Equal(t, "a@x.com", c.Email)
	require.Equal(t, now.Add(time.Hour).Unix(), c.ExpiresAt.Unix())
	require.Equal(t, now.Unix(), c.IssuedAt.Unix())
	require.NotEmpty(t, c.ID)

	other := jwtx.NewClaims("user-123", "a@x.com", time.Hour, now)
	require.NotEqual(t, c.ID, other.ID)
}

func TestValidateSubject(t *testing.T) {
	t.Run("present", func(t *testing.T) {
		c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{Audience: []string{"u1"}}}
		require.NoError(t, c.ValidateSubject())
	})

	t.Run("missing audience", func(t *testing.T) {
		c := &jwtx.Claims{}
		require.ErrorIs(t, c.ValidateSubject(), jwtx.ErrMissingSubject)
	})

	t.Run("empty audience value", func(t *testing.T) {
		c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{Audience: []string{""}}}
		require.ErrorIs(t, c.ValidateSubject(), jwtx.ErrMissingSubject)
	})
}

func TestValidateExpiry(t *testing.T) {
	now := time.Now().UTC()

	t.Run("valid token", func(t *testing.T) {
		c := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(1 * time.Minute)),
				NotBefore: jwt.NewNumericDate(now.Add(-1 * time.Minute)),
			},
		}
		require.NoError(t, c.ValidateExpiry(now, 0))
	})

	t.Run("expired token", func(t *testing.T) {
		c := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(-1 * time.Minute)),
			},
		}
		require.ErrorIs(t, c.ValidateExpiry(now, 0), jwtx.ErrExpired)
	})

	t.Run("not yet valid", func(t *testing.T) {
		c := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				NotBefore: jwt.NewNumericDate(now.Add(1 * time.Minute)),
			},
		}
		require.ErrorIs(t, c.ValidateExpiry(now, 0), jwtx.ErrNotYetValid)
	})

	t.Run("expired within leeway", func(t *testing.T) {
		c := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(-10 * time.Second)),
			},
		}
		require.NoError(t, c.ValidateExpiry(now, 30*time.Second))
	})
}
