package firebase

import "fmt"

type Reason string

const (
	ReasonMissingHeader    Reason = "missing_header"
	ReasonMalformedHeader  Reason = "malformed_header"
	ReasonExpired          Reason = "expired"
	ReasonRevoked          Reason = "revoked"
	ReasonInvalidSignature Reason = "invalid_signature"
	ReasonInvalidClaims    Reason = "invalid_claims"
	ReasonUnavailable      Reason = "unavailable"
)

// AuthError 是令牌校验失败的唯一错误类型
type AuthError struct {
	Reason Reason
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("firebase auth %s: %v", e.Reason, e.Err)
	}
	return "firebase auth " + string(e.Reason)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Message is the client-facing text; signature and claim failures share one message.
func (e *AuthError) Message() string {
	switch e.Reason {
	case ReasonMissingHeader:
		return "Authentication credentials were not provided."
	case ReasonMalformedHeader:
		return "Invalid Authorization header format."
	case ReasonExpired:
		return "Firebase ID token has expired."
	case ReasonRevoked:
		return "Firebase ID token has been revoked."
	case ReasonUnavailable:
		return "Identity service is unavailable."
	default:
		return "Invalid Firebase ID token."
	}
}

func newAuthError(reason Reason, err error) *AuthError {
	return &AuthError{Reason: reason, Err: err}
}
