package firebase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultJWKSURL = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"
	issuerPrefix   = "https://securetoken.google.com/"
	maxUIDLength   = 128
)

var errKeysUnavailable = errors.New("signing keys unavailable")

// Identity 是校验通过的令牌中与本地用户相关的部分
type Identity struct {
	UID      string
	Email    string
	IssuedAt time.Time
}

type Config struct {
	ProjectID   string
	JWKSURL     string
	HTTPClient  *http.Client
	Revocations RevocationStore
	// Now defaults to time.Now.
	Now    func() time.Time
	Leeway time.Duration
}

type Verifier struct {
	projectID   string
	keys        *KeySet
	revocations RevocationStore
	now         func() time.Time
	parser      *jwt.Parser
}

type tokenClaims struct {
	Email    string `json:"email"`
	AuthTime int64  `json:"auth_time"`
	jwt.RegisteredClaims
}

func NewVerifier(cfg Config) (*Verifier, error) {
	if cfg.ProjectID == "" {
		return nil, errors.New("firebase project id is required")
	}
	if cfg.JWKSURL == "" {
		cfg.JWKSURL = DefaultJWKSURL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(issuerPrefix+cfg.ProjectID),
		jwt.WithAudience(cfg.ProjectID),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(cfg.Now),
		jwt.WithLeeway(cfg.Leeway),
	)

	return &Verifier{
		projectID:   cfg.ProjectID,
		keys:        NewKeySet(cfg.JWKSURL, cfg.HTTPClient, cfg.Now),
		revocations: cfg.Revocations,
		now:         cfg.Now,
		parser:      parser,
	}, nil
}

// ParseBearer 从 Authorization 头中取出令牌
func ParseBearer(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", newAuthError(ReasonMissingHeader, nil)
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", newAuthError(ReasonMalformedHeader, nil)
	}
	return parts[1], nil
}

// Verify checks signature, issuer, audience and lifetime, then consults the revocation store.
// Every failure is an *AuthError.
func (v *Verifier) Verify(ctx context.Context, raw string) (*Identity, error) {
	if raw == "" {
		return nil, newAuthError(ReasonMissingHeader, nil)
	}

	claims := &tokenClaims{}
	_, err := v.parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("missing kid header")
		}
		key, err := v.keys.Key(ctx, kid)
		if err != nil {
			if errors.Is(err, errUnknownKey) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", errKeysUnavailable, err)
		}
		return key, nil
	})
	if err != nil {
		return nil, classify(err)
	}

	if claims.Subject == "" || len(claims.Subject) > maxUIDLength {
		return nil, newAuthError(ReasonInvalidClaims, errors.New("invalid subject"))
	}
	if claims.Email == "" {
		return nil, newAuthError(ReasonInvalidClaims, errors.New("missing email"))
	}
	if claims.AuthTime != 0 && time.Unix(claims.AuthTime, 0).After(v.now()) {
		return nil, newAuthError(ReasonInvalidClaims, errors.New("auth_time in the future"))
	}

	identity := &Identity{
		UID:      claims.Subject,
		Email:    claims.Email,
		IssuedAt: claims.IssuedAt.Time,
	}

	if v.revocations != nil {
		validSince, err := v.revocations.ValidSince(ctx, identity.UID)
		if err != nil {
			return nil, newAuthError(ReasonUnavailable, err)
		}
		if !validSince.IsZero() && identity.IssuedAt.Before(validSince) {
			return nil, newAuthError(ReasonRevoked, nil)
		}
	}

	return identity, nil
}

func classify(err error) *AuthError {
	switch {
	case errors.Is(err, errKeysUnavailable):
		return newAuthError(ReasonUnavailable, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return newAuthError(ReasonExpired, err)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer),
		errors.Is(err, jwt.ErrTokenInvalidAudience),
		errors.Is(err, jwt.ErrTokenUsedBeforeIssued),
		errors.Is(err, jwt.ErrTokenNotValidYet),
		errors.Is(err, jwt.ErrTokenRequiredClaimMissing),
		errors.Is(err, jwt.ErrTokenInvalidClaims):
		return newAuthError(ReasonInvalidClaims, err)
	default:
		return newAuthError(ReasonInvalidSignature, err)
	}
}
