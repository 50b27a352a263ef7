package genai

import (
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

type GeminiClient struct {
	svc *generativelanguage.Service
}

func NewGeminiClient(ctx context.Context, apiKey string, opts ...option.ClientOption) (*GeminiClient, error) {
	if apiKey != "" {
		opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	}
	svc, err := generativelanguage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("init generativelanguage service: %w", err)
	}
	return &GeminiClient{svc: svc}, nil
}

func modelResource(model string) string {
	if strings.HasPrefix(model, "models/") {
		return model
	}
	return "models/" + model
}

func (c *GeminiClient) GenerateContent(ctx context.Context, req *Request) (*Response, error) {
	body := &generativelanguage.GenerateContentRequest{}
	for _, m := range req.Contents {
		content := &generativelanguage.Content{Role: m.Role}
		for _, p := range m.Parts {
			part := &generativelanguage.Part{Text: p.Text}
			if p.FileURI != "" {
				part.FileData = &generativelanguage.FileData{FileUri: p.FileURI, MimeType: p.MimeType}
			}
			content.Parts = append(content.Parts, part)
		}
		body.Contents = append(body.Contents, content)
	}
	for _, s := range req.Safety {
		body.SafetySettings = append(body.SafetySettings, &generativelanguage.SafetySetting{
			Category:  s.Category,
			Threshold: s.Threshold,
		})
	}

	resp, err := c.svc.Models.GenerateContent(modelResource(req.Model), body).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	out := &Response{}
	if resp.PromptFeedback != nil {
		out.BlockReason = resp.PromptFeedback.BlockReason
	}
	if len(resp.Candidates) > 0 {
		cand := resp.Candidates[0]
		out.FinishReason = cand.FinishReason
		if cand.Content != nil {
			var sb strings.Builder
			for _, p := range cand.Content.Parts {
				sb.WriteString(p.Text)
			}
			out.Text = sb.String()
		}
	}
	return out, nil
}

func (c *GeminiClient) UploadFile(ctx context.Context, displayName, mimeType string, r io.Reader) (*File, error) {
	req := &generativelanguage.CreateFileRequest{
		File: &generativelanguage.File{DisplayName: displayName, MimeType: mimeType},
	}
	resp, err := c.svc.Media.Upload(req).Media(r, googleapi.ContentType(mimeType)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("upload file: %w", err)
	}
	if resp.File == nil {
		return nil, fmt.Errorf("upload file: empty response")
	}
	return convertFile(resp.File), nil
}

func (c *GeminiClient) GetFile(ctx context.Context, name string) (*File, error) {
	f, err := c.svc.Files.Get(name).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get file %s: %w", name, err)
	}
	return convertFile(f), nil
}

func (c *GeminiClient) DeleteFile(ctx context.Context, name string) error {
	if _, err := c.svc.Files.Delete(name).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete file %s: %w", name, err)
	}
	return nil
}

func convertFile(f *generativelanguage.File) *File {
	out := &File{
		Name:     f.Name,
		URI:      f.Uri,
		MimeType: f.MimeType,
		State:    FileState(f.State),
	}
	if f.Error != nil {
		out.Error = f.Error.Message
	}
	return out
}
