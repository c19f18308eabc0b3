package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/authmodes/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "access-secret-for-tests"

func TestHS256SignAndVerify(t *testing.T) {
	signer := jwtx.NewSignerHS256(testSecret)
	require.NoError(t, signer.Validate())
	require.Equal(t, "HS256", signer.Alg())

	now := time.Now().UTC()
	claims := jwtx.NewClaims("user-123", "a@x.com", 2*time.Minute, now)

	token, err := signer.Sign(claims)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsed, err := signer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-123", parsed.UserID())
	require.Equal(t, "a@x.com", parsed.Email)
	require.Equal(t, claims.ID, parsed.ID)
}

func TestHS256TokensDifferWithinSameSecond(t *testing.T) {
	signer := jwtx.NewSignerHS256(testSecret)
	now := time.Now().UTC()

	a, err := signer.Sign(jwtx.NewClaims("user-123", "", time.Minute, now))
	require.NoError(t, err)
	b, err := signer.Sign(jwtx.NewClaims("user-123", "", time.Minute, now))
	require.NoError(t, err)

	require.NotEqual(t, a, b)
}

func TestHS256MissingSecret(t *testing.T) {
	signer := jwtx.NewSignerHS256("")

	_, err := signer.Sign(jwtx.NewClaims("user-123", "", time.Minute, time.Now()))
	require.ErrorIs(t, err, jwtx.ErrMissingSecret)

	valid, err := jwtx.NewSignerHS256(testSecret).Sign(jwtx.NewClaims("user-123", "", time.Minute, time.Now()))
	require.NoError(t, err)

	_, err = signer.Verify(valid)
	require.ErrorIs(t, err, jwtx.ErrMissingSecret)
}

func TestHS256VerifyFailures(t *testing.T) {
	now := time.Now().UTC()
	signer := jwtx.NewSignerHS256(testSecret)

	wrongKey, err := jwtx.NewSignerHS256("some-other-secret").Sign(jwtx.NewClaims("user-123", "", time.Minute, now))
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwtx.NewClaims("user-123", "", time.Minute, now)).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	hs384, err := jwt.NewWithClaims(jwt.SigningMethodHS384, jwtx.NewClaims("user-123", "", time.Minute, now)).
		SignedString([]byte(testSecret))
	require.NoError(t, err)

	noSubject, err := signer.Sign(jwtx.NewClaims("", "", time.Minute, now))
	require.NoError(t, err)

	cases := []struct {
		name  string
		token string
		want  error
	}{
		{"wrong secret", wrongKey, jwtx.ErrInvalidSig},
		{"alg none", noneAlg, jwtx.ErrInvalidSig},
		{"unexpected alg", hs384, jwtx.ErrInvalidSig},
		{"garbage", "not-a-jwt", jwtx.ErrMalformed},
		{"empty", "", jwtx.ErrMalformed},
		{"missing subject", noSubject, jwtx.ErrMissingSubject},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := signer.Verify(tc.token)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestHS256Expired(t *testing.T) {
	now := time.Now().UTC()
	issuer := jwtx.NewSignerHS256(testSecret)

	token, err := issuer.Sign(jwtx.NewClaims("user-123", "", time.Hour, now))
	require.NoError(t, err)

	later := jwtx.NewSignerHS256(testSecret, jwtx.WithClock(func() time.Time {
		return now.Add(2 * time.Hour)
	}))

	_, err = later.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrExpired)

	t.Run("signature checked before expiry", func(t *testing.T) {
		forged, err := jwtx.NewSignerHS256("attacker").Sign(jwtx.NewClaims("user-123", "", time.Hour, now))
		require.NoError(t, err)

		_, err = later.Verify(forged)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("leeway tolerates skew", func(t *testing.T) {
		skewed := jwtx.NewSignerHS256(testSecret,
			jwtx.WithLeeway(time.Minute),
			jwtx.WithClock(func() time.Time { return now.Add(time.Hour + 30*time.Second) }),
		)
		_, err := skewed.Verify(token)
		require.NoError(t, err)
	})
}

func TestDecodeUnverified(t *testing.T) {
	token, err := jwtx.NewSignerHS256("whatever").Sign(jwtx.NewClaims("user-123", "a@x.com", time.Minute, time.Now()))
	require.NoError(t, err)

	claims, err := jwtx.DecodeUnverified(token)
	require.NoError(t, err)
	require.Equal(t, "user-123", claims.UserID())
	require.Equal(t, "a@x.com", claims.Email)

	_, err = jwtx.DecodeUnverified("nope")
	require.ErrorIs(t, err, jwtx.ErrMalformed)
}
