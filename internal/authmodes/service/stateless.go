package service

import (
	"context"
	"time"

	"github.com/aussiebroadwan/authmodes/internal/authmodes/domain"
	"github.com/aussiebroadwan/authmodes/pkg/jwtx"
)

// StatelessStrategy issues one long-lived signed token and keeps nothing on
// the server. Logout only clears the client cookie.
type StatelessStrategy struct {
	Accounts *Accounts
	Signer   jwtx.SignVerifier
	TTL      time.Duration
	Now      func() time.Time
}

func NewStatelessStrategy(accounts *Accounts, signer jwtx.SignVerifier, ttl time.Duration) *StatelessStrategy {
	if ttl <= 0 {
		ttl = jwtx.DefaultStatelessTokenTTL
	}
	return &StatelessStrategy{Accounts: accounts, Signer: signer, TTL: ttl, Now: time.Now}
}

func (s *StatelessStrategy) Mode() Mode { return ModeStateless }

func (s *StatelessStrategy) Register(ctx context.Context, email, password string) (*Grant, error) {
	if err := s.Signer.Validate(); err != nil {
		return nil, signError(err)
	}
	u, err := s.Accounts.Register(ctx, email, password, nil)
	if err != nil {
		return nil, err
	}
	return s.issue(u)
}

func (s *StatelessStrategy) Login(ctx context.Context, email, password string) (*Grant, error) {
	u, err := s.Accounts.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.issue(u)
}

// Logout has nothing to revoke; the token stays valid until it expires.
func (s *StatelessStrategy) Logout(context.Context, string) error { return nil }

func (s *StatelessStrategy) Refresh(context.Context, string) (*Grant, error) {
	return nil, ErrUnsupported
}

func (s *StatelessStrategy) Verify(_ context.Context, credential string) (Identity, error) {
	if credential == "" {
		return Identity{}, ErrTokenInvalid
	}
	claims, err := s.Signer.Verify(credential)
	if err != nil {
		return Identity{}, verifyError(ErrTokenInvalid, err)
	}
	return Identity{UserID: claims.UserID(), Email: claims.Email}, nil
}

func (s *StatelessStrategy) issue(u domain.User) (*Grant, error) {
	token, err := s.Signer.Sign(jwtx.NewClaims(u.ID, u.Email, s.TTL, clock(s.Now)))
	if err != nil {
		return nil, signError(err)
	}
	return &Grant{
		Identity:      Identity{UserID: u.ID, Email: u.Email},
		Credential:    token,
		CredentialTTL: s.TTL,
	}, nil
}
