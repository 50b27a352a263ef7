package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"studypulse_backend/pkg/firebase"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func TestParseID(t *testing.T) {
	good := []interface{}{"15", " 7 ", float64(23), json.Number("4"), 3}
	for _, v := range good {
		if _, err := ParseID(v); err != nil {
			t.Fatalf("ParseID(%v): %v", v, err)
		}
	}
	bad := []interface{}{"abc", "", "0", "-1", float64(1.5), float64(-2), nil, true, []int{1}}
	for _, v := range bad {
		if _, err := ParseID(v); err == nil {
			t.Fatalf("ParseID(%v) should fail", v)
		}
	}
}

func TestHandleError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"wrapped not found", fmt.Errorf("load quiz: %w", ErrQuizNotFound), http.StatusNotFound, ErrQuizNotFound.Error()},
		{"gorm not found", gorm.ErrRecordNotFound, http.StatusNotFound, "Resource not found"},
		{"validation", ErrMissingParameters, http.StatusBadRequest, ErrMissingParameters.Error()},
		{"too large", ErrPayloadTooLarge, http.StatusRequestEntityTooLarge, ErrPayloadTooLarge.Error()},
		{"blocked", &DetailError{Err: ErrContentBlocked, Detail: "Reason: SAFETY"}, http.StatusBadRequest, ErrContentBlocked.Error() + " Reason: SAFETY"},
		{"expired", &firebase.AuthError{Reason: firebase.ReasonExpired}, http.StatusUnauthorized, "Firebase ID token has expired."},
		{"keys down", &firebase.AuthError{Reason: firebase.ReasonUnavailable}, http.StatusServiceUnavailable, "Identity service is unavailable."},
		{"external", fmt.Errorf("poll: %w", ErrExternalService), http.StatusInternalServerError, ErrExternalService.Error()},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleError(c, tc.err)

			if w.Code != tc.status {
				t.Fatalf("status = %d, want %d", w.Code, tc.status)
			}
			var body ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error != tc.msg {
				t.Fatalf("error = %q, want %q", body.Error, tc.msg)
			}
		})
	}
}

func TestHandleErrorChoices(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	HandleError(c, &ChoiceError{Err: ErrInvalidModel, Available: []string{"a", "b"}})

	var body ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if w.Code != http.StatusBadRequest || len(body.Available) != 2 {
		t.Fatalf("unexpected response %d %+v", w.Code, body)
	}
}

func TestMediaMimeType(t *testing.T) {
	if got := MediaMimeType("video/mp4", "x.bin", ""); got != "video/mp4" {
		t.Fatalf("declared type ignored: %s", got)
	}
	if got := MediaMimeType(MimeOctetStream, "talk.MP3", ""); got != MimeMP3 {
		t.Fatalf("extension lookup failed: %s", got)
	}
	if got := MediaMimeType("", "blob", ""); got != MimeOctetStream {
		t.Fatalf("fallback = %s", got)
	}
}
