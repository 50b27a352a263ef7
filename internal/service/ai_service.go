package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"studypulse_backend/internal/config"
	"studypulse_backend/internal/util"
	"studypulse_backend/pkg/genai"
	"studypulse_backend/pkg/logger"
	"studypulse_backend/pkg/monitoring"
	"studypulse_backend/pkg/tracing"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type AIService struct {
	Client  genai.Client
	Storage *StorageService
	Now     func() time.Time

	cfg    config.AIConfig
	models atomic.Pointer[[]string]

	// ffmpeg 调用，测试中替换
	probeMedia   func(path string) (*util.MediaInfo, error)
	extractAudio func(src, dst string) error
}

func NewAIService(client genai.Client, cfg config.AIConfig, storage *StorageService) *AIService {
	s := &AIService{
		Client:       client,
		Storage:      storage,
		Now:          time.Now,
		cfg:          cfg,
		probeMedia:   util.ProbeMedia,
		extractAudio: util.ExtractAudio,
	}
	s.SetMediaModels(cfg.MediaModels)
	return s
}

// SetMediaModels 配置热更新时替换可用模型列表
func (s *AIService) SetMediaModels(models []string) {
	list := append([]string(nil), models...)
	s.models.Store(&list)
}

func (s *AIService) MediaModels() []string {
	if p := s.models.Load(); p != nil {
		return *p
	}
	return nil
}

func (s *AIService) allowedModel(name string) bool {
	for _, m := range s.MediaModels() {
		if m == name {
			return true
		}
	}
	return false
}

type MediaUpload struct {
	Filename string
	MimeType string
	Reader   io.Reader
	Size     int64
}

type SummaryResult struct {
	Transcript string `json:"transcript"`
	Summary    string `json:"summary"`
	ModelUsed  string `json:"model_used"`
}

type ChatTurn struct {
	Role  string   `json:"role"`
	Parts []string `json:"parts"`
}

func externalError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", util.ErrExternalService, op, err)
}

func blockedError(reason string) error {
	return &util.DetailError{Err: util.ErrContentBlocked, Detail: fmt.Sprintf("(%s) Please revise the text.", reason)}
}

// Summarize 上传媒体、轮询处理状态并生成转录与摘要
func (s *AIService) Summarize(ctx context.Context, upload MediaUpload, prompt, model string) (result *SummaryResult, err error) {
	if upload.Reader == nil {
		return nil, util.ErrNoFile
	}
	if model == "" {
		model = s.cfg.Model
	}
	if !s.allowedModel(model) {
		return nil, &util.ChoiceError{Err: util.ErrInvalidModel, Available: s.MediaModels()}
	}

	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, "ai.summarize", attribute.String("ai.model", model))
	defer func() {
		monitoring.ObserveAI("summarize", start, err)
		tracing.EndSpan(span, err)
	}()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.MediaTimeout)
	defer cancel()

	reader, mimeType, cleanup, err := s.prepareMedia(ctx, upload)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	file, err := s.Client.UploadFile(ctx, upload.Filename, mimeType, reader)
	if err != nil {
		return nil, externalError("upload media", err)
	}
	defer s.deleteRemote(file.Name)

	if file, err = s.waitForActive(ctx, file); err != nil {
		return nil, err
	}

	if strings.TrimSpace(prompt) == "" {
		prompt = defaultSummaryPrompt(upload.Filename, s.Now())
	}
	resp, err := s.Client.GenerateContent(ctx, &genai.Request{
		Model: model,
		Contents: []genai.Message{{
			Role:  genai.RoleUser,
			Parts: []genai.Part{{FileURI: file.URI, MimeType: file.MimeType}, genai.TextPart(prompt)},
		}},
	})
	if err != nil {
		return nil, externalError("generate summary", err)
	}
	if resp.BlockReason != "" {
		return nil, blockedError(resp.BlockReason)
	}

	transcript, summary := splitSummary(resp.Text)
	return &SummaryResult{Transcript: transcript, Summary: summary, ModelUsed: model}, nil
}

// prepareMedia 需要归档或抽取音轨时先落盘到临时文件
func (s *AIService) prepareMedia(ctx context.Context, upload MediaUpload) (io.Reader, string, func(), error) {
	mimeType := upload.MimeType
	nop := func() {}
	archive := s.cfg.ArchiveUploads && s.Storage != nil
	if !archive && !s.cfg.ExtractAudio {
		return upload.Reader, mimeType, nop, nil
	}

	dir, err := os.MkdirTemp("", "studypulse-media-")
	if err != nil {
		return nil, "", nop, err
	}
	cleanup := func() { os.RemoveAll(dir) }

	src := filepath.Join(dir, "source"+strings.ToLower(filepath.Ext(upload.Filename)))
	out, err := os.Create(src)
	if err != nil {
		cleanup()
		return nil, "", nop, err
	}
	_, err = io.Copy(out, upload.Reader)
	out.Close()
	if err != nil {
		cleanup()
		return nil, "", nop, fmt.Errorf("spool upload: %w", err)
	}

	if archive {
		url, err := s.Storage.Archive(ctx, "media", upload.Filename, src, mimeType)
		if err != nil {
			logger.Log.Warn("Failed to archive media upload", zap.String("filename", upload.Filename), zap.Error(err))
		} else {
			logger.Log.Info("Archived media upload", zap.String("filename", upload.Filename), zap.String("url", url))
		}
	}

	path := src
	if s.cfg.ExtractAudio && strings.HasPrefix(mimeType, util.MimeVideo) && s.hasAudioTrack(src) {
		audio := filepath.Join(dir, "audio.mp3")
		if err := s.extractAudio(src, audio); err != nil {
			logger.Log.Warn("Audio extraction failed, uploading original media", zap.Error(err))
		} else {
			path, mimeType = audio, util.MimeMP3
		}
	}

	f, err := os.Open(path)
	if err != nil {
		cleanup()
		return nil, "", nop, err
	}
	return f, mimeType, func() { f.Close(); cleanup() }, nil
}

// hasAudioTrack 无音轨的视频原样上传，探测失败时同样保留原文件
func (s *AIService) hasAudioTrack(path string) bool {
	info, err := s.probeMedia(path)
	if err != nil {
		logger.Log.Warn("Media probe failed, uploading original media", zap.Error(err))
		return false
	}
	if !info.HasAudio {
		logger.Log.Info("Video has no audio stream, uploading original media",
			zap.Float64("duration", info.Duration),
			zap.Int64("size", info.Size),
		)
	}
	return info.HasAudio
}

// waitForActive 按 poll_interval 轮询，直到 ACTIVE、FAILED 或超时
func (s *AIService) waitForActive(ctx context.Context, file *genai.File) (*genai.File, error) {
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		switch file.State {
		case genai.FileActive:
			return file, nil
		case genai.FileFailed:
			return nil, externalError("process media", fmt.Errorf("file %s failed: %s", file.Name, file.Error))
		case genai.FileProcessing, "":
		default:
			return nil, externalError("process media", fmt.Errorf("file %s ended in unexpected state %s", file.Name, file.State))
		}

		select {
		case <-ctx.Done():
			return nil, externalError("process media", ctx.Err())
		case <-ticker.C:
		}

		next, err := s.Client.GetFile(ctx, file.Name)
		if err != nil {
			return nil, externalError("poll media", err)
		}
		file = next
	}
}

func (s *AIService) deleteRemote(name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.Client.DeleteFile(ctx, name); err != nil && !errors.Is(err, genai.ErrUnsupported) {
		logger.Log.Warn("Failed to delete uploaded media", zap.String("file", name), zap.Error(err))
	}
}

func (s *AIService) generateText(ctx context.Context, op string, timeout time.Duration, req *genai.Request) (text string, err error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, "ai."+op, attribute.String("ai.model", req.Model))
	defer func() {
		monitoring.ObserveAI(op, start, err)
		tracing.EndSpan(span, err)
	}()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := s.Client.GenerateContent(ctx, req)
	if err != nil {
		return "", externalError(op, err)
	}
	if resp.BlockReason != "" {
		return "", blockedError(resp.BlockReason)
	}
	return resp.Text, nil
}

func (s *AIService) GenerateCaseStudy(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", util.ErrEmptyPrompt
	}
	return s.generateText(ctx, "case_study", s.cfg.CaseStudyTimeout, &genai.Request{
		Model:    s.cfg.Model,
		Contents: []genai.Message{{Role: genai.RoleUser, Parts: []genai.Part{genai.TextPart(caseStudyPrompt(prompt))}}},
	})
}

// Chat 历史中的 assistant 角色按 model 处理
func (s *AIService) Chat(ctx context.Context, message string, history []ChatTurn) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", util.ErrEmptyMessage
	}

	contents := make([]genai.Message, 0, len(history)+1)
	for _, turn := range history {
		role := turn.Role
		switch role {
		case genai.RoleUser, genai.RoleModel:
		case "assistant":
			role = genai.RoleModel
		default:
			return "", &util.DetailError{Err: util.ErrInvalidContent, Detail: fmt.Sprintf("unsupported history role %q", turn.Role)}
		}
		msg := genai.Message{Role: role}
		for _, p := range turn.Parts {
			msg.Parts = append(msg.Parts, genai.TextPart(p))
		}
		if len(msg.Parts) > 0 {
			contents = append(contents, msg)
		}
	}
	contents = append(contents, genai.Message{Role: genai.RoleUser, Parts: []genai.Part{genai.TextPart(message)}})

	reply, err := s.generateText(ctx, "chat", s.cfg.TextTimeout, &genai.Request{Model: s.cfg.Model, Contents: contents})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

func (s *AIService) CheckAssignment(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", util.ErrEmptyAssignment
	}
	if utf8.RuneCountInString(text) > util.MaxAssignmentChars {
		return "", util.ErrPayloadTooLarge
	}

	feedback, err := s.generateText(ctx, "assignment_check", s.cfg.TextTimeout, &genai.Request{
		Model:    s.cfg.Model,
		Contents: []genai.Message{{Role: genai.RoleUser, Parts: []genai.Part{genai.TextPart(assignmentPrompt(text))}}},
		Safety:   genai.BlockMediumAndAbove(),
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(feedback) + util.AssignmentDisclaimer, nil
}
