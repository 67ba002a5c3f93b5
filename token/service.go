package token

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/chatcraft-server/internal/errors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Service issues and verifies the session tokens. The secret is passed on
// every call and never held by the Service.
//
// Tokens carry no exp claim; their lifetime is bounded by the cookie Max-Age.
type Service struct {
	nowFunc   func() time.Time
	newSigner func(secret string) Signer
}

type ServiceOption func(*Service)

func WithNowFunc(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowFunc = now
	}
}

func NewService(options ...ServiceOption) *Service {
	s := &Service{
		nowFunc: time.Now,
		newSigner: func(secret string) Signer {
			return NewHMACSigner(secret)
		},
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// CreateToken signs claims for subject with iss and aud set to origin.
// Registered claims always win over custom claims of the same name.
func (s *Service) CreateToken(origin, subject string, claims Claims, secret string) (string, error) {
	if secret == "" {
		return "", errors.Wrap(apperrors.ErrSigning, "empty secret")
	}

	mc := claims.mapClaims()
	mc["iss"] = origin
	mc["aud"] = origin
	mc["sub"] = subject
	mc["iat"] = s.nowFunc().Unix()

	signed, err := s.newSigner(secret).Sign(mc)
	if err != nil {
		return "", errors.Wrapf(apperrors.ErrSigning, "%v", err)
	}
	return signed, nil
}

// VerifyToken checks the signature, issuer and audience of raw and returns
// its claims. Failures are *VerificationError values.
func (s *Service) VerifyToken(origin, raw, secret string) (Claims, error) {
	if secret == "" {
		return nil, &VerificationError{Reason: ReasonMissingSecret}
	}

	signer := s.newSigner(secret)
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{signer.GetSigningMethod().Alg()}),
		jwt.WithIssuer(origin),
		jwt.WithAudience(origin),
		jwt.WithTimeFunc(s.nowFunc),
	)

	parsed, err := parser.ParseWithClaims(raw, jwt.MapClaims{}, signer.GetVerificationKey)
	if err != nil {
		return nil, classify(err)
	}
	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, &VerificationError{Reason: ReasonMalformed}
	}

	return Claims(mc), nil
}

// Verify is the yes/no form of VerifyToken. The failure reason is logged at
// debug level and then dropped.
func (s *Service) Verify(ctx context.Context, origin, raw, secret string) (Claims, bool) {
	if raw == "" {
		return nil, false
	}
	claims, err := s.VerifyToken(origin, raw, secret)
	if err != nil {
		zerolog.Ctx(ctx).Debug().
			Str("reason", string(ReasonOf(err))).
			Err(err).
			Msg("token verification failed")
		return nil, false
	}
	return claims, true
}
