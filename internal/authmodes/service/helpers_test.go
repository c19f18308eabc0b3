package service_test

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/authmodes/internal/authmodes/service"
	"github.com/aussiebroadwan/authmodes/internal/authmodes/store"
	"github.com/aussiebroadwan/authmodes/internal/authmodes/store/drivers/sqlite"
	"github.com/aussiebroadwan/authmodes/pkg/cryptox"
	"github.com/aussiebroadwan/authmodes/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const testPassword = "pw123456"

type fixture struct {
	store     *sqlite.Store
	accounts  *service.Accounts
	stateless *service.StatelessStrategy
	hybrid    *service.HybridStrategy
	session   *service.SessionStrategy
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations(context.Background()))

	accounts := service.NewAccounts(st, cryptox.NewArgon2("test-pepper"))

	hybrid := service.NewHybridStrategy(accounts, st,
		jwtx.NewSignerHS256("access-secret"),
		jwtx.NewSignerHS256("refresh-secret"),
		0, 0,
	)

	return &fixture{
		store:     st,
		accounts:  accounts,
		stateless: service.NewStatelessStrategy(accounts, jwtx.NewSignerHS256("stateless-secret"), 0),
		hybrid:    hybrid,
		session:   service.NewSQLSessionStrategy(accounts, 0),
	}
}

func (f *fixture) strategies() []service.Strategy {
	return []service.Strategy{f.stateless, f.hybrid, f.session}
}

// failingRotation lets everything through except the refresh rotation.
type failingRotation struct {
	store.Store
	err error
}

func (f failingRotation) RefreshRecords() store.RefreshRecords {
	return failingRecords{RefreshRecords: f.Store.RefreshRecords(), err: f.err}
}

type failingRecords struct {
	store.RefreshRecords
	err error
}

func (f failingRecords) RotateRefreshRecord(context.Context, string, string, string) error {
	return f.err
}
