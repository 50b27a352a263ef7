package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"studypulse_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, util.GetRequestID(c)) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(util.RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Body.String() != "abc-123" || w.Header().Get(util.RequestIDHeader) != "abc-123" {
		t.Fatalf("client id not propagated: body=%q header=%q", w.Body.String(), w.Header().Get(util.RequestIDHeader))
	}

	for _, incoming := range []string{"", strings.Repeat("x", maxRequestIDLen+1)} {
		req = httptest.NewRequest(http.MethodGet, "/x", nil)
		if incoming != "" {
			req.Header.Set(util.RequestIDHeader, incoming)
		}
		w = httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if _, err := uuid.Parse(w.Body.String()); err != nil {
			t.Fatalf("generated id %q is not a uuid", w.Body.String())
		}
	}
}
