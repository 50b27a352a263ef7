package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"studypulse_backend/internal/model"
	"studypulse_backend/internal/util"
	"studypulse_backend/pkg/firebase"

	"github.com/gin-gonic/gin"
)

type stubVerifier struct {
	tokens map[string]*firebase.Identity
}

func (s stubVerifier) Verify(_ context.Context, token string) (*firebase.Identity, error) {
	if id, ok := s.tokens[token]; ok {
		return id, nil
	}
	if token == "expired" {
		return nil, &firebase.AuthError{Reason: firebase.ReasonExpired}
	}
	return nil, &firebase.AuthError{Reason: firebase.ReasonInvalidSignature}
}

type stubResolver struct{}

func (stubResolver) Resolve(_ context.Context, id *firebase.Identity) (*model.User, error) {
	return &model.User{Email: id.Email, Username: id.Email, IsStaff: id.UID == "staff"}, nil
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	v := stubVerifier{tokens: map[string]*firebase.Identity{
		"good":  {UID: "u1", Email: "a@example.com"},
		"admin": {UID: "staff", Email: "admin@example.com"},
	}}
	r := gin.New()
	echo := func(c *gin.Context) {
		email := ""
		if u := util.GetUserFromContext(c); u != nil {
			email = u.Email
		}
		c.String(http.StatusOK, email)
	}
	r.GET("/private", AuthMiddleware(v, stubResolver{}), echo)
	r.GET("/optional", TryAuthMiddleware(v, stubResolver{}), echo)
	r.GET("/admin", AuthMiddleware(v, stubResolver{}), StaffMiddleware(), echo)
	return r
}

func doRequest(r *gin.Engine, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newTestRouter()

	cases := []struct {
		name, path, auth string
		status           int
		body             string
	}{
		{"valid token", "/private", "Bearer good", http.StatusOK, "a@example.com"},
		{"missing header", "/private", "", http.StatusUnauthorized, ""},
		{"malformed header", "/private", "Token good", http.StatusUnauthorized, ""},
		{"expired", "/private", "Bearer expired", http.StatusUnauthorized, ""},
		{"anonymous optional", "/optional", "", http.StatusOK, ""},
		{"authenticated optional", "/optional", "Bearer good", http.StatusOK, "a@example.com"},
		{"bad token optional", "/optional", "Bearer nope", http.StatusUnauthorized, ""},
		{"staff allowed", "/admin", "Bearer admin", http.StatusOK, "admin@example.com"},
		{"non staff forbidden", "/admin", "Bearer good", http.StatusForbidden, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(r, tc.path, tc.auth)
			if w.Code != tc.status {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tc.status, w.Body.String())
			}
			if tc.status == http.StatusOK && w.Body.String() != tc.body {
				t.Fatalf("body = %q, want %q", w.Body.String(), tc.body)
			}
		})
	}
}
