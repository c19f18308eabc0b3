package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/authmodes/internal/authmodes/domain"
	"github.com/aussiebroadwan/authmodes/internal/authmodes/service"
	"github.com/aussiebroadwan/authmodes/internal/authmodes/store"
	"github.com/aussiebroadwan/authmodes/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestHousekeepingPurgesExpiredSessions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	u, err := f.accounts.Register(ctx, "hk@x.com", testPassword, nil)
	require.NoError(t, err)

	now := time.Now()
	sessions := f.store.Sessions()
	require.NoError(t, sessions.CreateSession(ctx, domain.Session{
		ID: "stale", UserID: u.ID, Email: u.Email, CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour),
	}))
	require.NoError(t, sessions.CreateSession(ctx, domain.Session{
		ID: "live", UserID: u.ID, Email: u.Email, CreatedAt: now, ExpiresAt: now.Add(time.Hour),
	}))

	hk := service.NewHousekeepingService(sessions, slogx.Discard(), time.Hour)
	hk.Start()
	hk.Stop()

	require.ErrorIs(t, sessions.DeleteSession(ctx, "stale"), store.ErrNotFound)
	require.NoError(t, sessions.DeleteSession(ctx, "live"))
}

func TestHousekeepingDefaultInterval(t *testing.T) {
	hk := service.NewHousekeepingService(nil, slogx.Discard(), 0)
	require.Equal(t, time.Hour, hk.Interval)
}
