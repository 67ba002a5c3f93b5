package token_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/chatcraft-server/internal/errors"
	"github.com/jrsteele09/chatcraft-server/token"
	"github.com/stretchr/testify/require"
)

const (
	testOrigin = "https://chatcraft.org"
	testSecret = "super-secret"
	testUser   = "octocat"
)

func fixedNow() time.Time {
	return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
}

func TestService_RoundTrip(t *testing.T) {
	svc := token.NewService(token.WithNowFunc(fixedNow))

	claims := token.Claims{
		token.ClaimUsername:  testUser,
		token.ClaimName:      "The Octocat",
		token.ClaimAvatarURL: "https://avatars.githubusercontent.com/u/583231",
	}

	raw, err := svc.CreateToken(testOrigin, testUser, claims, testSecret)
	require.NoError(t, err)
	require.Len(t, strings.Split(raw, "."), 3)

	decoded, err := svc.VerifyToken(testOrigin, raw, testSecret)
	require.NoError(t, err)
	require.Equal(t, testUser, decoded.Subject())
	require.Equal(t, testOrigin, decoded.String("iss"))
	require.Equal(t, testOrigin, decoded.String("aud"))
	require.EqualValues(t, fixedNow().Unix(), decoded["iat"])
	for k, v := range claims {
		require.Equal(t, v, decoded[k], "claim %s", k)
	}
	_, hasExp := decoded["exp"]
	require.False(t, hasExp)
}

func TestService_RegisteredClaimsWin(t *testing.T) {
	svc := token.NewService()

	raw, err := svc.CreateToken(testOrigin, testUser, token.Claims{"sub": "mallory", "iss": "https://evil.example"}, testSecret)
	require.NoError(t, err)

	decoded, err := svc.VerifyToken(testOrigin, raw, testSecret)
	require.NoError(t, err)
	require.Equal(t, testUser, decoded.Subject())
	require.Equal(t, testOrigin, decoded.String("iss"))
}

func TestService_CreateTokenErrors(t *testing.T) {
	svc := token.NewService()

	_, err := svc.CreateToken(testOrigin, testUser, nil, "")
	require.Error(t, err)
	require.ErrorIs(t, err, apperrors.ErrSigning)
}

func TestService_VerifyTokenFailures(t *testing.T) {
	svc := token.NewService()
	raw, err := svc.CreateToken(testOrigin, testUser, token.Claims{token.ClaimRole: token.RoleAPI}, testSecret)
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := svc.VerifyToken(testOrigin, raw, "another-secret")
		require.Error(t, err)
		require.Equal(t, token.ReasonBadSignature, token.ReasonOf(err))
	})

	t.Run("other origin", func(t *testing.T) {
		_, err := svc.VerifyToken("https://staging.chatcraft.org", raw, testSecret)
		require.Error(t, err)
		require.Contains(t, []token.Reason{token.ReasonIssuerMismatch, token.ReasonAudienceMismatch}, token.ReasonOf(err))
	})

	t.Run("audience only mismatch", func(t *testing.T) {
		forged, err := token.NewHMACSigner(testSecret).Sign(jwt.MapClaims{
			"iss": testOrigin,
			"aud": "https://elsewhere.example",
			"sub": testUser,
		})
		require.NoError(t, err)

		_, err = svc.VerifyToken(testOrigin, forged, testSecret)
		require.Equal(t, token.ReasonAudienceMismatch, token.ReasonOf(err))
	})

	t.Run("issuer only mismatch", func(t *testing.T) {
		forged, err := token.NewHMACSigner(testSecret).Sign(jwt.MapClaims{
			"iss": "https://elsewhere.example",
			"aud": testOrigin,
			"sub": testUser,
		})
		require.NoError(t, err)

		_, err = svc.VerifyToken(testOrigin, forged, testSecret)
		require.Equal(t, token.ReasonIssuerMismatch, token.ReasonOf(err))
	})

	t.Run("expired", func(t *testing.T) {
		forged, err := token.NewHMACSigner(testSecret).Sign(jwt.MapClaims{
			"iss": testOrigin,
			"aud": testOrigin,
			"sub": testUser,
			"exp": time.Now().Add(-time.Hour).Unix(),
		})
		require.NoError(t, err)

		_, err = svc.VerifyToken(testOrigin, forged, testSecret)
		require.Equal(t, token.ReasonExpired, token.ReasonOf(err))
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := svc.VerifyToken(testOrigin, "not-a-jwt", testSecret)
		require.Equal(t, token.ReasonMalformed, token.ReasonOf(err))
	})

	t.Run("alg none is rejected", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"iss": testOrigin,
			"aud": testOrigin,
			"sub": testUser,
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.VerifyToken(testOrigin, unsigned, testSecret)
		require.Error(t, err)
	})

	t.Run("missing secret", func(t *testing.T) {
		_, err := svc.VerifyToken(testOrigin, raw, "")
		require.Equal(t, token.ReasonMissingSecret, token.ReasonOf(err))
	})
}

func TestService_Verify(t *testing.T) {
	svc := token.NewService()
	ctx := context.Background()

	raw, err := svc.CreateToken(testOrigin, testUser, token.Claims{token.ClaimRole: token.RoleAPI}, testSecret)
	require.NoError(t, err)

	claims, ok := svc.Verify(ctx, testOrigin, raw, testSecret)
	require.True(t, ok)
	require.Equal(t, token.RoleAPI, claims.Role())

	claims, ok = svc.Verify(ctx, testOrigin, raw, "secret-b")
	require.False(t, ok)
	require.Nil(t, claims)

	_, ok = svc.Verify(ctx, testOrigin, "", testSecret)
	require.False(t, ok)
}

func TestService_RoundTripNonStringClaims(t *testing.T) {
	svc := token.NewService()

	raw, err := svc.CreateToken(testOrigin, testUser, token.Claims{
		"n":     5,
		"flag":  true,
		"ratio": 0.5,
		"tags":  []string{"a", "b"},
	}, testSecret)
	require.NoError(t, err)

	decoded, err := svc.VerifyToken(testOrigin, raw, testSecret)
	require.NoError(t, err)
	require.Equal(t, float64(5), decoded["n"])
	require.Equal(t, true, decoded["flag"])
	require.Equal(t, 0.5, decoded["ratio"])
	require.Equal(t, []any{"a", "b"}, decoded["tags"])
}

func TestService_VerifyTokenSentinels(t *testing.T) {
	svc := token.NewService()

	raw, err := svc.CreateToken(testOrigin, testUser, nil, testSecret)
	require.NoError(t, err)
	_, err = svc.VerifyToken(testOrigin, raw, "another-secret")
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)
	require.NotErrorIs(t, err, apperrors.ErrTokenExpired)

	expired, err := token.NewHMACSigner(testSecret).Sign(jwt.MapClaims{
		"iss": testOrigin,
		"aud": testOrigin,
		"sub": testUser,
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	require.NoError(t, err)
	_, err = svc.VerifyToken(testOrigin, expired, testSecret)
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)
	require.ErrorIs(t, err, apperrors.ErrTokenExpired)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)
}
