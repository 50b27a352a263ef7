package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OpenAIClient speaks the chat-completions protocol; it has no file API.
type OpenAIClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewOpenAIClient(baseURL, apiKey string, httpClient *http.Client) *OpenAIClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Minute}
	}
	return &OpenAIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    httpClient,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *OpenAIClient) GenerateContent(ctx context.Context, req *Request) (*Response, error) {
	messages := make([]chatMessage, 0, len(req.Contents))
	for _, m := range req.Contents {
		role := m.Role
		if role == RoleModel {
			role = "assistant"
		}
		var sb strings.Builder
		for _, p := range m.Parts {
			if p.FileURI != "" {
				return nil, ErrUnsupported
			}
			sb.WriteString(p.Text)
		}
		messages = append(messages, chatMessage{Role: role, Content: sb.String()})
	}

	jsonData, err := json.Marshal(chatCompletionRequest{Model: req.Model, Messages: messages})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result chatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}
	if result.Error != nil {
		return nil, fmt.Errorf("AI API error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("AI returned no choices")
	}

	out := &Response{
		Text:         result.Choices[0].Message.Content,
		FinishReason: result.Choices[0].FinishReason,
	}
	// 兼容接口用 content_filter 表示被拦截
	if out.FinishReason == "content_filter" {
		out.BlockReason = "SAFETY"
	}
	return out, nil
}

func (c *OpenAIClient) UploadFile(context.Context, string, string, io.Reader) (*File, error) {
	return nil, ErrUnsupported
}

func (c *OpenAIClient) GetFile(context.Context, string) (*File, error) {
	return nil, ErrUnsupported
}

func (c *OpenAIClient) DeleteFile(context.Context, string) error {
	return ErrUnsupported
}
