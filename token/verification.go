package token

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/chatcraft-server/internal/errors"
)

// Reason says why a token failed verification.
type Reason string

const (
	ReasonMalformed        Reason = "malformed"
	ReasonBadSignature     Reason = "bad_signature"
	ReasonExpired          Reason = "expired"
	ReasonIssuerMismatch   Reason = "issuer_mismatch"
	ReasonAudienceMismatch Reason = "audience_mismatch"
	ReasonMissingSecret    Reason = "missing_secret"
)

// VerificationError is returned by VerifyToken. Handlers normally only care
// that verification failed; the reason is kept for logs and diagnostics.
type VerificationError struct {
	Reason Reason
	Err    error
}

func (e *VerificationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("token verification failed: %s", e.Reason)
	}
	return fmt.Sprintf("token verification failed: %s: %v", e.Reason, e.Err)
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}

// Is matches apperrors.ErrInvalidToken for every failure, and
// apperrors.ErrTokenExpired for expired tokens.
func (e *VerificationError) Is(target error) bool {
	switch target {
	case apperrors.ErrInvalidToken:
		return true
	case apperrors.ErrTokenExpired:
		return e.Reason == ReasonExpired
	}
	return false
}

// ReasonOf extracts the Reason from err, or "" if err is not a VerificationError.
func ReasonOf(err error) Reason {
	var verr *VerificationError
	if errors.As(err, &verr) {
		return verr.Reason
	}
	return ""
}

func classify(err error) *VerificationError {
	reason := ReasonMalformed
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		reason = ReasonBadSignature
	case errors.Is(err, jwt.ErrTokenMalformed):
		reason = ReasonMalformed
	case errors.Is(err, jwt.ErrTokenExpired):
		reason = ReasonExpired
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		reason = ReasonIssuerMismatch
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		reason = ReasonAudienceMismatch
	}
	return &VerificationError{Reason: reason, Err: err}
}
