// Package postgres is the PostgreSQL driver for the authmodes store. It uses
// pgx through database/sql and goose for embedded migrations.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/authmodes/internal/authmodes/store"
	"github.com/aussiebroadwan/authmodes/internal/authmodes/store/drivers/postgres/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

var _ store.Store = (*Store)(nil)

// dbtx is satisfied by *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
}

// NewStore opens a pgx-backed connection pool for dsn.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStoreFromDB wraps an existing handle, e.g. one created by sqlmock.
func NewStoreFromDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// ApplyMigrations sets up goose with the embedded migrations and runs them.
func (s *Store) ApplyMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, s.db, "."); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &txStore{tx: tx}, nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Users() store.Users                   { return &usersRepo{db: s.db} }
func (s *Store) RefreshRecords() store.RefreshRecords { return &refreshRecordsRepo{db: s.db} }
func (s *Store) Sessions() store.Sessions             { return &sessionsRepo{db: s.db} }

type txStore struct {
	tx *sql.Tx
}

func (t *txStore) Commit() error                             { return t.tx.Commit() }
func (t *txStore) Rollback() error                           { return t.tx.Rollback() }
func (t *txStore) Close() error                              { return nil }
func (t *txStore) Ping(ctx context.Context) error            { return nil }
func (t *txStore) ApplyMigrations(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) { return nil, sql.ErrTxDone }

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) Users() store.Users                   { return &usersRepo{db: t.tx} }
func (t *txStore) RefreshRecords() store.RefreshRecords { return &refreshRecordsRepo{db: t.tx} }
func (t *txStore) Sessions() store.Sessions             { return &sessionsRepo{db: t.tx} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return fmt.Errorf("db error: %w", err)
}

func affected(res sql.Result, none error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return none
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
