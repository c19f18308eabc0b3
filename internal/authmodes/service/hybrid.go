package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/authmodes/internal/authmodes/domain"
	"github.com/aussiebroadwan/authmodes/internal/authmodes/store"
	"github.com/aussiebroadwan/authmodes/pkg/cryptox"
	"github.com/aussiebroadwan/authmodes/pkg/jwtx"
	"github.com/aussiebroadwan/authmodes/pkg/slogx"
)

// HybridStrategy pairs a short-lived access token with a rotating refresh
// token. The server remembers the fingerprint of the one refresh token each
// user may currently redeem.
type HybridStrategy struct {
	Accounts      *Accounts
	Store         store.Store
	AccessSigner  jwtx.SignVerifier
	RefreshSigner jwtx.SignVerifier
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Now           func() time.Time
}

func NewHybridStrategy(
	accounts *Accounts,
	st store.Store,
	access, refresh jwtx.SignVerifier,
	accessTTL, refreshTTL time.Duration,
) *HybridStrategy {
	if accessTTL <= 0 {
		accessTTL = jwtx.DefaultAccessTokenTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = jwtx.DefaultRefreshTokenTTL
	}
	return &HybridStrategy{
		Accounts:      accounts,
		Store:         st,
		AccessSigner:  access,
		RefreshSigner: refresh,
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
		Now:           time.Now,
	}
}

func (h *HybridStrategy) Mode() Mode { return ModeHybrid }

// Register creates the user and its refresh record in one transaction.
func (h *HybridStrategy) Register(ctx context.Context, email, password string) (*Grant, error) {
	var grant *Grant
	_, err := h.Accounts.Register(ctx, email, password, func(ctx context.Context, tx store.Tx, u domain.User) error {
		g, err := h.issue(u.ID, u.Email)
		if err != nil {
			return err
		}
		if err := tx.RefreshRecords().CreateRefreshRecord(ctx, u.ID, cryptox.FingerprintToken(g.Credential)); err != nil {
			return storeError("create refresh record", err)
		}
		grant = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return grant, nil
}

// Login replaces whatever refresh token the user held before. Users that
// registered under another mode get their record created here.
func (h *HybridStrategy) Login(ctx context.Context, email, password string) (*Grant, error) {
	u, err := h.Accounts.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	g, err := h.issue(u.ID, u.Email)
	if err != nil {
		return nil, err
	}
	fp := cryptox.FingerprintToken(g.Credential)

	records := h.Store.RefreshRecords()
	err = records.UpdateRefreshRecord(ctx, u.ID, fp)
	if errors.Is(err, store.ErrNotFound) {
		err = records.CreateRefreshRecord(ctx, u.ID, fp)
		if errors.Is(err, store.ErrAlreadyExists) {
			// a concurrent login created it first
			err = records.UpdateRefreshRecord(ctx, u.ID, fp)
		}
	}
	if err != nil {
		return nil, storeError("save refresh record", err)
	}
	return g, nil
}

// Logout clears the stored refresh token. A token that does not verify is
// treated as already logged out: the client cookie gets cleared and nothing
// on the server changes.
func (h *HybridStrategy) Logout(ctx context.Context, credential string) error {
	l := slogx.FromContext(ctx)

	claims, err := h.RefreshSigner.Verify(credential)
	if err != nil {
		if errors.Is(err, jwtx.ErrMissingSecret) {
			return verifyError(ErrTokenInvalid, err)
		}
		l.Warn("hybrid logout with unverifiable refresh token", slog.Any("error", err))
		return nil
	}

	if err := h.Store.RefreshRecords().ClearRefreshRecord(ctx, claims.UserID()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return storeError("clear refresh record", err)
	}
	return nil
}

// Refresh redeems a refresh token for a new pair. The stored fingerprint is
// swapped before the new pair is returned; if the swap fails the presented
// token stays redeemable.
func (h *HybridStrategy) Refresh(ctx context.Context, credential string) (*Grant, error) {
	l := slogx.FromContext(ctx)
	if credential == "" {
		return nil, ErrTokenInvalid
	}

	claims, err := h.RefreshSigner.Verify(credential)
	if err != nil {
		return nil, verifyError(ErrTokenInvalid, err)
	}
	userID := claims.UserID()

	records := h.Store.RefreshRecords()
	rec, err := records.GetRefreshRecord(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, storeError("get refresh record", err)
	}

	presented := cryptox.FingerprintToken(credential)
	if !cryptox.FingerprintsEqual(rec.TokenHash, presented) {
		l.Warn("refresh token does not match stored record",
			slog.String("user_id", userID),
			slog.Bool("cleared", rec.Cleared()),
		)
		return nil, ErrTokenInvalid
	}

	g, err := h.issue(userID, claims.Email)
	if err != nil {
		return nil, err
	}

	if err := records.RotateRefreshRecord(ctx, userID, presented, cryptox.FingerprintToken(g.Credential)); err != nil {
		if errors.Is(err, store.ErrConflict) {
			l.Warn("refresh token already rotated", slog.String("user_id", userID))
			return nil, ErrTokenInvalid
		}
		return nil, storeError("rotate refresh record", err)
	}
	return g, nil
}

// Verify checks an access token.
func (h *HybridStrategy) Verify(_ context.Context, credential string) (Identity, error) {
	if credential == "" {
		return Identity{}, ErrTokenInvalid
	}
	claims, err := h.AccessSigner.Verify(credential)
	if err != nil {
		return Identity{}, verifyError(ErrTokenInvalid, err)
	}
	return Identity{UserID: claims.UserID(), Email: claims.Email}, nil
}

func (h *HybridStrategy) issue(userID, email string) (*Grant, error) {
	now := clock(h.Now)

	access, err := h.AccessSigner.Sign(jwtx.NewClaims(userID, email, h.AccessTTL, now))
	if err != nil {
		return nil, signError(err)
	}
	refresh, err := h.RefreshSigner.Sign(jwtx.NewClaims(userID, email, h.RefreshTTL, now))
	if err != nil {
		return nil, signError(err)
	}

	return &Grant{
		Identity:      Identity{UserID: userID, Email: email},
		AccessToken:   access,
		Credential:    refresh,
		CredentialTTL: h.RefreshTTL,
	}, nil
}
