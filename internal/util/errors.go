package util

import (
	"errors"
	"net/http"
	"studypulse_backend/pkg/firebase"
	"studypulse_backend/pkg/genai"
	"studypulse_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 校验类 400
var (
	ErrMissingParameters      = errors.New("Missing quiz_id or answers.")
	ErrEmptyQuiz              = errors.New("Quiz has no questions.")
	ErrMissingUserID          = errors.New("user_id missing in request body (specify which user to update)")
	ErrNoFile                 = errors.New("No file provided. Please upload a file named 'file'.")
	ErrEmptyPrompt            = errors.New("Please provide a topic or prompt for the case study.")
	ErrEmptyMessage           = errors.New("Please provide a message.")
	ErrEmptyAssignment        = errors.New("Assignment text cannot be empty.")
	ErrInvalidModel           = errors.New("Invalid model name.")
	ErrContentBlocked         = errors.New("Content blocked by AI safety filters.")
	ErrInvalidQuestionChoices = errors.New("each question must have exactly one correct choice")
	ErrInvalidContent         = errors.New("invalid content")
	ErrUnsupportedMedia       = errors.New("Unsupported media type. Please upload an audio or video file.")
	ErrInvalidRequest         = errors.New("Invalid request body.")
)

// 不存在 404
var (
	ErrUserNotFound    = errors.New("Target user not found for provided user_id.")
	ErrProfileNotFound = errors.New("Target user does not have a profile.")
	ErrLessonNotFound  = errors.New("Lesson not found.")
	ErrCourseNotFound  = errors.New("Course not found.")
	ErrQuizNotFound    = errors.New("Quiz not found.")
)

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrPayloadTooLarge  = errors.New("Assignment text is too long (max 15,000 characters).")
	ErrFileTooLarge     = errors.New("Uploaded file is too large.")
	ErrExternalService  = errors.New("The AI service failed to process the request.")
)

// ChoiceError 带可选值列表的校验错误
type ChoiceError struct {
	Err       error
	Available []string
}

func (e *ChoiceError) Error() string { return e.Err.Error() }
func (e *ChoiceError) Unwrap() error { return e.Err }

// DetailError 对外展示 Detail，errors.Is 仍匹配 Err
type DetailError struct {
	Err    error
	Detail string
}

func (e *DetailError) Error() string {
	if e.Detail == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + " " + e.Detail
}
func (e *DetailError) Unwrap() error { return e.Err }

var (
	badRequest = []error{
		ErrMissingParameters, ErrEmptyQuiz, ErrMissingUserID, ErrNoFile, ErrEmptyPrompt,
		ErrEmptyMessage, ErrEmptyAssignment, ErrInvalidModel, ErrContentBlocked,
		ErrInvalidQuestionChoices, ErrInvalidContent, ErrUnsupportedMedia, ErrInvalidRequest,
	}
	notFound = []error{
		ErrUserNotFound, ErrProfileNotFound, ErrLessonNotFound, ErrCourseNotFound, ErrQuizNotFound,
	}
)

// classify 返回状态码与对外展示的哨兵错误，未知错误状态码为 0
func classify(err error) (int, error) {
	for _, e := range badRequest {
		if errors.Is(err, e) {
			return http.StatusBadRequest, e
		}
	}
	for _, e := range notFound {
		if errors.Is(err, e) {
			return http.StatusNotFound, e
		}
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, errors.New("Resource not found")
	case errors.Is(err, ErrPermissionDenied):
		return http.StatusForbidden, ErrPermissionDenied
	case errors.Is(err, ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, ErrPayloadTooLarge
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, ErrFileTooLarge
	case errors.Is(err, ErrExternalService), errors.Is(err, genai.ErrUnsupported):
		return http.StatusInternalServerError, ErrExternalService
	}
	return 0, nil
}

// StatusFor 返回错误对应的 HTTP 状态码，未知错误为 500
func StatusFor(err error) int {
	var authErr *firebase.AuthError
	if errors.As(err, &authErr) {
		if authErr.Reason == firebase.ReasonUnavailable {
			return http.StatusServiceUnavailable
		}
		return http.StatusUnauthorized
	}
	status, _ := classify(err)
	if status == 0 {
		return http.StatusInternalServerError
	}
	return status
}

// HandleError 在控制器边界把领域错误转换为响应
func HandleError(c *gin.Context, err error) {
	var authErr *firebase.AuthError
	if errors.As(err, &authErr) {
		c.Header("WWW-Authenticate", `Bearer realm="Firebase"`)
		Error(c, StatusFor(err), authErr.Message())
		return
	}

	status, public := classify(err)
	if status == 0 {
		LogInternalError(c, err)
		return
	}

	if status == http.StatusInternalServerError {
		logger.Log.Error("External service error",
			zap.String("path", c.FullPath()),
			zap.String("request_id", GetRequestID(c)),
			zap.Error(err),
		)
		Error(c, status, public.Error())
		return
	}

	var choiceErr *ChoiceError
	if errors.As(err, &choiceErr) {
		ErrorWithChoices(c, status, choiceErr.Error(), choiceErr.Available)
		return
	}

	var detailErr *DetailError
	if errors.As(err, &detailErr) {
		Error(c, status, detailErr.Error())
		return
	}

	Error(c, status, public.Error())
}
