package firebase

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testProject = "studypulse-test"

type jwksServer struct {
	*httptest.Server
	hits   atomic.Int32
	status atomic.Int32
}

func newJWKSServer(t *testing.T, kid string, pub *rsa.PublicKey) *jwksServer {
	t.Helper()
	s := &jwksServer{}
	s.status.Store(http.StatusOK)
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		if code := int(s.status.Load()); code != http.StatusOK {
			w.WriteHeader(code)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=3600, must-revalidate")
		_ = json.NewEncoder(w).Encode(jwkSet{Keys: []jwk{{
			Kty: "RSA",
			Alg: "RS256",
			Use: "sig",
			Kid: kid,
			N:   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}}})
	}))
	t.Cleanup(s.Close)
	return s
}

func generateKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return key
}

func signToken(t *testing.T, key *rsa.PrivateKey, kid string, mutate func(c jwt.MapClaims)) string {
	t.Helper()
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":       issuerPrefix + testProject,
		"aud":       testProject,
		"sub":       "uid-123",
		"email":     "learner@example.com",
		"iat":       now.Add(-time.Minute).Unix(),
		"auth_time": now.Add(-time.Minute).Unix(),
		"exp":       now.Add(time.Hour).Unix(),
	}
	if mutate != nil {
		mutate(claims)
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	s, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func newTestVerifier(t *testing.T, url string, store RevocationStore) *Verifier {
	t.Helper()
	v, err := NewVerifier(Config{ProjectID: testProject, JWKSURL: url, Revocations: store})
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	return v
}

func reasonOf(t *testing.T, err error) Reason {
	t.Helper()
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *AuthError, got %v", err)
	}
	return authErr.Reason
}

func TestVerifyValidToken(t *testing.T) {
	key := generateKey(t)
	srv := newJWKSServer(t, "k1", &key.PublicKey)
	v := newTestVerifier(t, srv.URL, nil)

	id, err := v.Verify(context.Background(), signToken(t, key, "k1", nil))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if id.UID != "uid-123" || id.Email != "learner@example.com" {
		t.Fatalf("unexpected identity %+v", id)
	}
}

func TestVerifyFailures(t *testing.T) {
	key := generateKey(t)
	other := generateKey(t)
	srv := newJWKSServer(t, "k1", &key.PublicKey)

	cases := []struct {
		name  string
		token string
		want  Reason
	}{
		{"expired", signToken(t, key, "k1", func(c jwt.MapClaims) {
			c["exp"] = time.Now().Add(-time.Minute).Unix()
		}), ReasonExpired},
		{"wrong audience", signToken(t, key, "k1", func(c jwt.MapClaims) {
			c["aud"] = "another-project"
		}), ReasonInvalidClaims},
		{"wrong issuer", signToken(t, key, "k1", func(c jwt.MapClaims) {
			c["iss"] = "https://accounts.example.com"
		}), ReasonInvalidClaims},
		{"missing email", signToken(t, key, "k1", func(c jwt.MapClaims) {
			delete(c, "email")
		}), ReasonInvalidClaims},
		{"empty subject", signToken(t, key, "k1", func(c jwt.MapClaims) {
			c["sub"] = ""
		}), ReasonInvalidClaims},
		{"foreign signature", signToken(t, other, "k1", nil), ReasonInvalidSignature},
		{"unknown kid", signToken(t, key, "k9", nil), ReasonInvalidSignature},
		{"garbage", "not-a-jwt", ReasonInvalidSignature},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := newTestVerifier(t, srv.URL, nil)
			_, err := v.Verify(context.Background(), tc.token)
			if got := reasonOf(t, err); got != tc.want {
				t.Fatalf("reason = %s, want %s (err %v)", got, tc.want, err)
			}
		})
	}
}

func TestVerifyRevoked(t *testing.T) {
	key := generateKey(t)
	srv := newJWKSServer(t, "k1", &key.PublicKey)
	store := NewMemoryRevocationStore()
	v := newTestVerifier(t, srv.URL, store)

	token := signToken(t, key, "k1", nil)
	if _, err := v.Verify(context.Background(), token); err != nil {
		t.Fatalf("verify before revoke: %v", err)
	}

	if err := store.Revoke(context.Background(), "uid-123", time.Now()); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	_, err := v.Verify(context.Background(), token)
	if got := reasonOf(t, err); got != ReasonRevoked {
		t.Fatalf("reason = %s, want revoked", got)
	}

	fresh := signToken(t, key, "k1", func(c jwt.MapClaims) {
		c["iat"] = time.Now().Add(time.Second).Unix()
	})
	// iat 在未来会被拒绝，因此用带宽限的校验器
	lenient, _ := NewVerifier(Config{ProjectID: testProject, JWKSURL: srv.URL, Revocations: store, Leeway: 5 * time.Second})
	if _, err := lenient.Verify(context.Background(), fresh); err != nil {
		t.Fatalf("token issued after revocation should pass: %v", err)
	}
}

func TestVerifyKeysUnavailable(t *testing.T) {
	key := generateKey(t)
	srv := newJWKSServer(t, "k1", &key.PublicKey)
	srv.status.Store(http.StatusInternalServerError)
	v := newTestVerifier(t, srv.URL, nil)

	_, err := v.Verify(context.Background(), signToken(t, key, "k1", nil))
	if got := reasonOf(t, err); got != ReasonUnavailable {
		t.Fatalf("reason = %s, want unavailable", got)
	}
}

func TestKeySetCachesAndCollapsesRefresh(t *testing.T) {
	key := generateKey(t)
	srv := newJWKSServer(t, "k1", &key.PublicKey)
	v := newTestVerifier(t, srv.URL, nil)
	token := signToken(t, key, "k1", nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := v.Verify(context.Background(), token); err != nil {
				t.Errorf("verify: %v", err)
			}
		}()
	}
	wg.Wait()

	// 并发首轮最多触发少量请求，之后全部命中缓存
	before := srv.hits.Load()
	if before < 1 || before > 20 {
		t.Fatalf("unexpected jwks hits %d", before)
	}
	for i := 0; i < 5; i++ {
		if _, err := v.Verify(context.Background(), token); err != nil {
			t.Fatalf("verify: %v", err)
		}
	}
	if after := srv.hits.Load(); after != before {
		t.Fatalf("jwks fetched again while cached: %d -> %d", before, after)
	}
}

func TestParseBearer(t *testing.T) {
	cases := []struct {
		header string
		token  string
		reason Reason
	}{
		{"Bearer abc", "abc", ""},
		{"bearer abc", "abc", ""},
		{"", "", ReasonMissingHeader},
		{"Token abc", "", ReasonMalformedHeader},
		{"Bearer", "", ReasonMalformedHeader},
		{"Bearer a b", "", ReasonMalformedHeader},
	}
	for _, tc := range cases {
		got, err := ParseBearer(tc.header)
		if tc.reason == "" {
			if err != nil || got != tc.token {
				t.Fatalf("ParseBearer(%q) = %q, %v", tc.header, got, err)
			}
			continue
		}
		if r := reasonOf(t, err); r != tc.reason {
			t.Fatalf("ParseBearer(%q) reason = %s, want %s", tc.header, r, tc.reason)
		}
	}
}

func TestMaxAge(t *testing.T) {
	if got := maxAge("public, max-age=19000, must-revalidate"); got != 19000*time.Second {
		t.Fatalf("max-age = %v", got)
	}
	if got := maxAge("no-cache"); got != defaultKeyTTL {
		t.Fatalf("default ttl = %v", got)
	}
}
