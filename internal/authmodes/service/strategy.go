package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/authmodes/pkg/jwtx"
)

// Strategy is one authentication mode. Implementations are stateless apart
// from their configuration and safe for concurrent use.
type Strategy interface {
	Mode() Mode
	Register(ctx context.Context, email, password string) (*Grant, error)
	Login(ctx context.Context, email, password string) (*Grant, error)
	Logout(ctx context.Context, credential string) error
	Refresh(ctx context.Context, credential string) (*Grant, error)
	Verify(ctx context.Context, credential string) (Identity, error)
}

func signError(err error) error {
	return fmt.Errorf("%w: sign token: %w", ErrConfiguration, err)
}

// verifyError classifies a jwtx verification failure as kind, except a
// missing secret which is an operator problem.
func verifyError(kind, err error) error {
	if errors.Is(err, jwtx.ErrMissingSecret) {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return fmt.Errorf("%w: %w", kind, err)
}

func clock(now func() time.Time) time.Time {
	if now == nil {
		return time.Now()
	}
	return now()
}
