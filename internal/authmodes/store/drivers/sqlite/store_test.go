package sqlite_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/authmodes/internal/authmodes/domain"
	"github.com/aussiebroadwan/authmodes/internal/authmodes/store"
	"github.com/aussiebroadwan/authmodes/internal/authmodes/store/drivers/sqlite"
	"github.com/aussiebroadwan/authmodes/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations(context.Background()))
	return s
}

func seedUser(t *testing.T, s store.Store, email string) domain.User {
	t.Helper()

	u := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
	}
	require.NoError(t, s.Users().CreateUser(context.Background(), u))
	return u
}

func TestApplyMigrationsIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.ApplyMigrations(context.Background()))
	require.NoError(t, s.Ping(context.Background()))
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u := seedUser(t, s, "  Alice@Example.com ")

	t.Run("get by id", func(t *testing.T) {
		got, err := s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, "alice@example.com", got.Email)
		require.Equal(t, u.PasswordHash, got.PasswordHash)
		require.False(t, got.CreatedAt.IsZero())
	})

	t.Run("get by email is case insensitive", func(t *testing.T) {
		got, err := s.Users().GetUserByEmail(ctx, "ALICE@example.com")
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)
	})

	t.Run("duplicate email", func(t *testing.T) {
		err := s.Users().CreateUser(ctx, domain.User{
			ID:           idx.New().String(),
			Email:        "alice@example.com",
			PasswordHash: "x",
		})
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := s.Users().GetUserByID(ctx, "nope")
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = s.Users().GetUserByEmail(ctx, "nobody@example.com")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestRefreshRecords(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := seedUser(t, s, "bob@example.com")
	repo := s.RefreshRecords()

	_, err := repo.GetRefreshRecord(ctx, u.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.ErrorIs(t, repo.UpdateRefreshRecord(ctx, u.ID, "h0"), store.ErrNotFound)

	require.NoError(t, repo.CreateRefreshRecord(ctx, u.ID, "h1"))
	require.ErrorIs(t, repo.CreateRefreshRecord(ctx, u.ID, "h2"), store.ErrAlreadyExists)

	rec, err := repo.GetRefreshRecord(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "h1", rec.TokenHash)

	require.NoError(t, repo.UpdateRefreshRecord(ctx, u.ID, "h2"))
	rec, err = repo.GetRefreshRecord(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "h2", rec.TokenHash)

	t.Run("rotate", func(t *testing.T) {
		require.NoError(t, repo.RotateRefreshRecord(ctx, u.ID, "h2", "h3"))
		require.ErrorIs(t, repo.RotateRefreshRecord(ctx, u.ID, "h2", "h4"), store.ErrConflict)

		rec, err := repo.GetRefreshRecord(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, "h3", rec.TokenHash)
	})

	t.Run("clear", func(t *testing.T) {
		require.NoError(t, repo.ClearRefreshRecord(ctx, u.ID))

		rec, err := repo.GetRefreshRecord(ctx, u.ID)
		require.NoError(t, err)
		require.True(t, rec.Cleared())

		require.ErrorIs(t, repo.RotateRefreshRecord(ctx, u.ID, "", "h5"), store.ErrConflict)
		require.ErrorIs(t, repo.RotateRefreshRecord(ctx, u.ID, "h3", "h5"), store.ErrConflict)
	})
}

func TestRotateRefreshRecordConcurrent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := seedUser(t, s, "carol@example.com")
	require.NoError(t, s.RefreshRecords().CreateRefreshRecord(ctx, u.ID, "current"))

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := s.RefreshRecords().RotateRefreshRecord(ctx, u.ID, "current", idx.New().String())

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, store.ErrConflict):
				conflicts++
			default:
				t.Errorf("worker %d: unexpected error %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	require.Equal(t, 1, successes)
	require.Equal(t, workers-1, conflicts)
}

func TestSessions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := seedUser(t, s, "dave@example.com")
	repo := s.Sessions()
	now := time.Now()

	live := domain.Session{ID: "sid-live", UserID: u.ID, Email: u.Email, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	stale := domain.Session{ID: "sid-stale", UserID: u.ID, Email: u.Email, CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)}

	require.NoError(t, repo.CreateSession(ctx, live))
	require.NoError(t, repo.CreateSession(ctx, stale))
	require.ErrorIs(t, repo.CreateSession(ctx, live), store.ErrAlreadyExists)

	got, err := repo.GetSession(ctx, live.ID)
	require.NoError(t, err)
	require.Equal(t, u.ID, got.UserID)
	require.Equal(t, u.Email, got.Email)
	require.WithinDuration(t, live.ExpiresAt, got.ExpiresAt, time.Millisecond)

	t.Run("expired reads as missing", func(t *testing.T) {
		_, err := repo.GetSession(ctx, stale.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("housekeeping purges expired rows", func(t *testing.T) {
		require.NoError(t, repo.DeleteExpiredSessions(ctx))
		require.ErrorIs(t, repo.DeleteSession(ctx, stale.ID), store.ErrNotFound)

		_, err := repo.GetSession(ctx, live.ID)
		require.NoError(t, err)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.DeleteSession(ctx, live.ID))
		require.ErrorIs(t, repo.DeleteSession(ctx, live.ID), store.ErrNotFound)

		_, err := repo.GetSession(ctx, live.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestWithTx(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	boom := errors.New("boom")

	t.Run("rollback on error", func(t *testing.T) {
		id := idx.New().String()
		err := s.WithTx(ctx, func(tx store.Tx) error {
			if err := tx.Users().CreateUser(ctx, domain.User{ID: id, Email: "eve@example.com", PasswordHash: "x"}); err != nil {
				return err
			}
			if err := tx.RefreshRecords().CreateRefreshRecord(ctx, id, "h"); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		_, err = s.Users().GetUserByID(ctx, id)
		require.ErrorIs(t, err, store.ErrNotFound)
		_, err = s.RefreshRecords().GetRefreshRecord(ctx, id)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("commit on success", func(t *testing.T) {
		id := idx.New().String()
		err := s.WithTx(ctx, func(tx store.Tx) error {
			if err := tx.Users().CreateUser(ctx, domain.User{ID: id, Email: "frank@example.com", PasswordHash: "x"}); err != nil {
				return err
			}
			return tx.RefreshRecords().CreateRefreshRecord(ctx, id, "h")
		})
		require.NoError(t, err)

		rec, err := s.RefreshRecords().GetRefreshRecord(ctx, id)
		require.NoError(t, err)
		require.Equal(t, "h", rec.TokenHash)
	})

	t.Run("nested tx refused", func(t *testing.T) {
		err := s.WithTx(ctx, func(tx store.Tx) error {
			return tx.WithTx(ctx, func(store.Tx) error { return nil })
		})
		require.Error(t, err)
	})
}

func TestForeignKeysEnforced(t *testing.T) {
	err := newTestStore(t).RefreshRecords().CreateRefreshRecord(context.Background(), "ghost", "h")
	require.Error(t, err)
}
