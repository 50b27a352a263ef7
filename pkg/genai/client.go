// Package genai wraps the generative-AI providers behind one small interface.
package genai

import (
	"context"
	"errors"
	"io"
)

const (
	RoleUser  = "user"
	RoleModel = "model"
)

type FileState string

const (
	FileProcessing FileState = "PROCESSING"
	FileActive     FileState = "ACTIVE"
	FileFailed     FileState = "FAILED"
)

var ErrUnsupported = errors.New("operation not supported by provider")

type Part struct {
	Text     string
	FileURI  string
	MimeType string
}

func TextPart(s string) Part {
	return Part{Text: s}
}

type Message struct {
	Role  string
	Parts []Part
}

type SafetySetting struct {
	Category  string
	Threshold string
}

type Request struct {
	Model    string
	Contents []Message
	Safety   []SafetySetting
}

// Response 中 BlockReason 非空表示提示词被安全策略拦截
type Response struct {
	Text         string
	BlockReason  string
	FinishReason string
}

type File struct {
	Name     string
	URI      string
	MimeType string
	State    FileState
	Error    string
}

type Client interface {
	GenerateContent(ctx context.Context, req *Request) (*Response, error)
	UploadFile(ctx context.Context, displayName, mimeType string, r io.Reader) (*File, error)
	GetFile(ctx context.Context, name string) (*File, error)
	DeleteFile(ctx context.Context, name string) error
}

// HarmCategories 是 Gemini 支持配置阈值的类别
var HarmCategories = []string{
	"HARM_CATEGORY_HARASSMENT",
	"HARM_CATEGORY_HATE_SPEECH",
	"HARM_CATEGORY_SEXUALLY_EXPLICIT",
	"HARM_CATEGORY_DANGEROUS_CONTENT",
}

func BlockMediumAndAbove() []SafetySetting {
	settings := make([]SafetySetting, 0, len(HarmCategories))
	for _, c := range HarmCategories {
		settings = append(settings, SafetySetting{Category: c, Threshold: "BLOCK_MEDIUM_AND_ABOVE"})
	}
	return settings
}
