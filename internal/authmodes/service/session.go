package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/authmodes/internal/authmodes/domain"
	"github.com/aussiebroadwan/authmodes/internal/authmodes/store"
	"github.com/aussiebroadwan/authmodes/pkg/cryptox"
	"github.com/aussiebroadwan/authmodes/pkg/slogx"
)

// DefaultSessionTTL is how long a session lives without a logout.
const DefaultSessionTTL = 7 * 24 * time.Hour

// SessionStrategy keeps the login on the server and hands the client an
// opaque session id.
type SessionStrategy struct {
	Accounts *Accounts
	Sessions store.Sessions
	TTL      time.Duration
	Now      func() time.Time

	// inStore means Sessions lives in the account database, so the session
	// written at registration goes through the user's transaction.
	inStore bool
}

// NewSessionStrategy keeps sessions in a backend separate from the account
// database, such as redis. Sessions must not share a connection with
// accounts.Store: registration writes the session while the user insert is
// still open.
func NewSessionStrategy(accounts *Accounts, sessions store.Sessions, ttl time.Duration) *SessionStrategy {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStrategy{Accounts: accounts, Sessions: sessions, TTL: ttl, Now: time.Now}
}

// NewSQLSessionStrategy keeps sessions in the account database.
func NewSQLSessionStrategy(accounts *Accounts, ttl time.Duration) *SessionStrategy {
	s := NewSessionStrategy(accounts, accounts.Store.Sessions(), ttl)
	s.inStore = true
	return s
}

func (s *SessionStrategy) Mode() Mode { return ModeSession }

// Register creates the user and its first session together. If the session
// cannot be stored the user insert is rolled back and the email stays free.
func (s *SessionStrategy) Register(ctx context.Context, email, password string) (*Grant, error) {
	var grant *Grant
	_, err := s.Accounts.Register(ctx, email, password, func(ctx context.Context, tx store.Tx, u domain.User) error {
		sessions := s.Sessions
		if s.inStore {
			sessions = tx.Sessions()
		}
		g, err := s.openIn(ctx, sessions, u)
		if err != nil {
			return err
		}
		grant = g
		return nil
	})
	if err != nil {
		if grant != nil && !s.inStore {
			// The commit failed after the external session was written.
			if derr := s.Sessions.DeleteSession(ctx, grant.Credential); derr != nil && !errors.Is(derr, store.ErrNotFound) {
				slogx.FromContext(ctx).Error("failed to drop session of rolled back registration",
					slog.String("user_id", grant.UserID),
					slog.Any("error", derr),
				)
			}
		}
		return nil, err
	}
	return grant, nil
}

func (s *SessionStrategy) Login(ctx context.Context, email, password string) (*Grant, error) {
	u, err := s.Accounts.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.open(ctx, u)
}

func (s *SessionStrategy) Logout(ctx context.Context, credential string) error {
	if credential == "" {
		return ErrSessionInvalid
	}
	if err := s.Sessions.DeleteSession(ctx, credential); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrSessionInvalid
		}
		return storeError("delete session", err)
	}
	return nil
}

func (s *SessionStrategy) Refresh(context.Context, string) (*Grant, error) {
	return nil, ErrUnsupported
}

func (s *SessionStrategy) Verify(ctx context.Context, credential string) (Identity, error) {
	if credential == "" {
		return Identity{}, ErrSessionInvalid
	}
	sess, err := s.Sessions.GetSession(ctx, credential)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Identity{}, ErrSessionInvalid
		}
		return Identity{}, storeError("get session", err)
	}
	if sess.UserID == "" || sess.Expired(clock(s.Now)) {
		return Identity{}, ErrSessionInvalid
	}
	return Identity{UserID: sess.UserID, Email: sess.Email}, nil
}

func (s *SessionStrategy) open(ctx context.Context, u domain.User) (*Grant, error) {
	return s.openIn(ctx, s.Sessions, u)
}

func (s *SessionStrategy) openIn(ctx context.Context, sessions store.Sessions, u domain.User) (*Grant, error) {
	id, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, storeError("generate session id", err)
	}

	now := clock(s.Now)
	sess := domain.Session{
		ID:        id,
		UserID:    u.ID,
		Email:     u.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(s.TTL),
	}
	if err := sessions.CreateSession(ctx, sess); err != nil {
		return nil, storeError("create session", err)
	}

	return &Grant{
		Identity:      Identity{UserID: u.ID, Email: u.Email},
		Credential:    id,
		CredentialTTL: s.TTL,
	}, nil
}
