package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"studypulse_backend/internal/config"
	"studypulse_backend/internal/model"
	"studypulse_backend/internal/testutil"
	"studypulse_backend/internal/util"
	"studypulse_backend/pkg/firebase"
	"studypulse_backend/pkg/genai"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type stubVerifier map[string]*firebase.Identity

func (s stubVerifier) Verify(_ context.Context, token string) (*firebase.Identity, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return nil, &firebase.AuthError{Reason: firebase.ReasonInvalidSignature}
}

type echoAI struct{}

func (echoAI) GenerateContent(_ context.Context, req *genai.Request) (*genai.Response, error) {
	last := req.Contents[len(req.Contents)-1]
	return &genai.Response{Text: "## Transcript:\nt\n## Summary:\necho " + strings.TrimSpace(last.Role)}, nil
}

func (echoAI) UploadFile(_ context.Context, _, mimeType string, r io.Reader) (*genai.File, error) {
	io.Copy(io.Discard, r)
	return &genai.File{Name: "files/1", URI: "uri", MimeType: mimeType, State: genai.FileActive}, nil
}

func (echoAI) GetFile(context.Context, string) (*genai.File, error) {
	return &genai.File{Name: "files/1", State: genai.FileActive}, nil
}

func (echoAI) DeleteFile(context.Context, string) error { return nil }

func newTestApp(t *testing.T) (*App, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.DB(t)
	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "test"},
		AI: config.AIConfig{
			Model:            "gemini-1.5-flash",
			MediaModels:      []string{"gemini-1.5-flash"},
			PollInterval:     time.Millisecond,
			MediaTimeout:     time.Second,
			TextTimeout:      time.Second,
			CaseStudyTimeout: time.Second,
			MaxUploadMB:      1,
		},
		Storage: config.StorageConfig{Type: util.StorageLocal, LocalPath: t.TempDir()},
		CORS:    config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}

	a := &App{
		Config: cfg,
		DB:     db,
		verifier: stubVerifier{
			"learner": {UID: "uid-learner", Email: "learner@example.com"},
			"admin":   {UID: "uid-admin", Email: "admin@example.com"},
		},
	}
	a.services = a.initServices(db, nil, echoAI{}, cfg)
	a.Router = a.buildRouter()
	return a, db
}

func doJSON(t *testing.T, a *App, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)

	var out map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func data(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	d, ok := body["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("response has no data object: %v", body)
	}
	return d
}

func TestTrailingSlashes(t *testing.T) {
	a, _ := newTestApp(t)
	for _, path := range []string{"/api/hello", "/api/hello/", "/api/courses", "/api/courses/", "/api/progress-tracker/"} {
		w, _ := doJSON(t, a, http.MethodGet, path, "", nil)
		if w.Code != http.StatusOK {
			t.Errorf("GET %s = %d", path, w.Code)
		}
	}
}

func TestOptionalAuthRejectsBadToken(t *testing.T) {
	a, _ := newTestApp(t)
	w, body := doJSON(t, a, http.MethodGet, "/api/courses/", "forged", nil)
	if w.Code != http.StatusUnauthorized || w.Header().Get("WWW-Authenticate") == "" {
		t.Fatalf("status = %d headers = %v", w.Code, w.Header())
	}
	if body["error"] != "Invalid Firebase ID token." {
		t.Fatalf("body = %v", body)
	}

	w, _ = doJSON(t, a, http.MethodGet, "/api/quizzes/1/", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("quiz without token = %d", w.Code)
	}
}

func TestQuizFlow(t *testing.T) {
	a, db := newTestApp(t)
	module := testutil.SeedModule(t, db, "Go")
	quiz := testutil.SeedQuiz(t, db, module.ID, 4, 70, 60)

	w, body := doJSON(t, a, http.MethodGet, fmt.Sprintf("/api/quizzes/%d/", quiz.ID), "learner", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET quiz = %d %v", w.Code, body)
	}
	if strings.Contains(w.Body.String(), "is_correct") {
		t.Fatalf("quiz view leaks correctness: %s", w.Body.String())
	}

	answers := map[string]interface{}{}
	for i, q := range quiz.Questions {
		choice := testutil.CorrectChoice(q)
		if i == 3 {
			choice = testutil.WrongChoice(q)
		}
		answers[fmt.Sprint(q.ID)] = choice
	}
	answers["not-a-number"] = 1

	w, body = doJSON(t, a, http.MethodPost, "/api/quizzes/submit/", "learner", gin.H{"quiz_id": quiz.ID, "answers": answers})
	if w.Code != http.StatusOK {
		t.Fatalf("submit = %d %v", w.Code, body)
	}
	d := data(t, body)
	if d["score"] != 75.0 || d["passed"] != true || d["correct_answers_count"] != 3.0 || d["total_questions"] != 4.0 {
		t.Fatalf("attempt = %v", d)
	}
	if skipped, _ := d["skipped"].([]interface{}); len(skipped) != 1 {
		t.Fatalf("skipped = %v", d["skipped"])
	}
	if answersOut, _ := d["answers"].([]interface{}); len(answersOut) != 4 {
		t.Fatalf("answers = %v", d["answers"])
	}

	var profile model.Profile
	db.Joins("JOIN users ON users.id = profiles.user_id").Where("users.email = ?", "learner@example.com").First(&profile)
	if profile.XP != 60 {
		t.Fatalf("xp = %d", profile.XP)
	}

	w, body = doJSON(t, a, http.MethodPost, "/api/quizzes/submit", "learner", gin.H{"quiz_id": quiz.ID})
	if w.Code != http.StatusBadRequest || body["error"] != util.ErrMissingParameters.Error() {
		t.Fatalf("missing answers = %d %v", w.Code, body)
	}

	w, body = doJSON(t, a, http.MethodPost, "/api/quizzes/submit", "learner", gin.H{"quiz_id": 9999, "answers": gin.H{}})
	if w.Code != http.StatusNotFound || body["error"] != util.ErrQuizNotFound.Error() {
		t.Fatalf("unknown quiz = %d %v", w.Code, body)
	}
}

func TestCompleteLessonEndpoint(t *testing.T) {
	a, db := newTestApp(t)
	testutil.SeedUser(t, db, "admin@example.com", true)
	learner := testutil.SeedUser(t, db, "student@example.com", false)
	module := testutil.SeedModule(t, db, "Go")
	lesson := testutil.SeedLesson(t, db, module.ID, 25)
	path := fmt.Sprintf("/api/lessons/%d/complete/", lesson.ID)

	w, _ := doJSON(t, a, http.MethodPost, path, "learner", gin.H{"user_id": learner.ID})
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-staff = %d", w.Code)
	}

	w, body := doJSON(t, a, http.MethodPost, path, "admin", gin.H{})
	if w.Code != http.StatusBadRequest || body["error"] != util.ErrMissingUserID.Error() {
		t.Fatalf("missing user_id = %d %v", w.Code, body)
	}

	w, body = doJSON(t, a, http.MethodPost, path, "admin", gin.H{"user_id": learner.ID})
	if w.Code != http.StatusCreated {
		t.Fatalf("first complete = %d %v", w.Code, body)
	}
	d := data(t, body)
	if d["message"] != `Lesson "lesson" marked as complete for user student@example.com.` || d["new_total_xp"] != 25.0 {
		t.Fatalf("first = %v", d)
	}

	w, body = doJSON(t, a, http.MethodPost, strings.TrimSuffix(path, "/"), "admin", gin.H{"user_id": fmt.Sprint(learner.ID)})
	if w.Code != http.StatusOK {
		t.Fatalf("second complete = %d %v", w.Code, body)
	}
	if d := data(t, body); d["already_completed"] != true || d["new_total_xp"] != 25.0 {
		t.Fatalf("second = %v", d)
	}

	w, body = doJSON(t, a, http.MethodPost, "/api/lessons/9999/complete/", "admin", gin.H{"user_id": learner.ID})
	if w.Code != http.StatusNotFound || body["error"] != util.ErrLessonNotFound.Error() {
		t.Fatalf("unknown lesson = %d %v", w.Code, body)
	}
}

func TestProfileEndpoints(t *testing.T) {
	a, _ := newTestApp(t)

	w, body := doJSON(t, a, http.MethodGet, "/api/profile/", "learner", nil)
	if w.Code != http.StatusOK || data(t, body)["level"] != 1.0 {
		t.Fatalf("GET profile = %d %v", w.Code, body)
	}

	w, body = doJSON(t, a, http.MethodPatch, "/api/profile", "learner", gin.H{"bio": "hi", "xp": 9000, "user": gin.H{"first_name": "Lin"}})
	if w.Code != http.StatusOK {
		t.Fatalf("PATCH profile = %d %v", w.Code, body)
	}
	d := data(t, body)
	user, _ := d["user"].(map[string]interface{})
	if d["bio"] != "hi" || d["xp"] != 0.0 || user["first_name"] != "Lin" {
		t.Fatalf("profile = %v", d)
	}
}

func TestToolsEndpoints(t *testing.T) {
	a, _ := newTestApp(t)

	w, body := doJSON(t, a, http.MethodPost, "/api/chatbot/message/", "learner", gin.H{"message": "hello world", "history": []gin.H{{"role": "user", "parts": []string{"hi"}}}})
	if w.Code != http.StatusOK || data(t, body)["reply"] == "" {
		t.Fatalf("chat = %d %v", w.Code, body)
	}

	w, body = doJSON(t, a, http.MethodPost, "/api/assignment-checker/", "learner", gin.H{"assignment_text": strings.Repeat("a", util.MaxAssignmentChars+1)})
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("long assignment = %d %v", w.Code, body)
	}

	w, body = doJSON(t, a, http.MethodPost, "/api/tools/generate-case-study", "learner", gin.H{"prompt": ""})
	if w.Code != http.StatusBadRequest || body["error"] != util.ErrEmptyPrompt.Error() {
		t.Fatalf("empty prompt = %d %v", w.Code, body)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", "talk.mp3")
	part.Write([]byte("ID3 fake audio"))
	mw.WriteField("model_name", "gemini-1.5-pro")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/tools/summarize/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer learner")
	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)
	var out map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &out)
	if rec.Code != http.StatusBadRequest || out["available"] == nil {
		t.Fatalf("disallowed model = %d %v", rec.Code, out)
	}

	a.services.ai.SetMediaModels([]string{"gemini-1.5-flash", "gemini-1.5-pro"})
	buf.Reset()
	mw = multipart.NewWriter(&buf)
	part, _ = mw.CreateFormFile("file", "talk.mp3")
	part.Write([]byte("ID3 fake audio"))
	mw.WriteField("model_name", "gemini-1.5-pro")
	mw.Close()
	req = httptest.NewRequest(http.MethodPost, "/api/tools/summarize", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer learner")
	rec = httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)
	out = nil
	json.Unmarshal(rec.Body.Bytes(), &out)
	if rec.Code != http.StatusOK {
		t.Fatalf("summarize = %d %v", rec.Code, out)
	}
	if d := data(t, out); d["model_used"] != "gemini-1.5-pro" || d["transcript"] != "t" {
		t.Fatalf("summary = %v", d)
	}
}

func TestConfigCallbacks(t *testing.T) {
	a, _ := newTestApp(t)

	next := *a.Config
	next.CORS.AllowedOrigins = []string{"https://app.example.com"}
	next.AI.MediaModels = []string{"gemini-2.0"}
	a.applyConfig(&next)

	if !a.origins.Allowed("https://app.example.com") || a.origins.Allowed("http://localhost:3000") {
		t.Fatal("CORS origins not reloaded")
	}
	if models := a.services.ai.MediaModels(); len(models) != 1 || models[0] != "gemini-2.0" {
		t.Fatalf("models = %v", models)
	}
}
