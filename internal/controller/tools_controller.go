package controller

import (
	"studypulse_backend/internal/service"
	"studypulse_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ToolsController struct {
	AIService *service.AIService
	// MaxUploadBytes 为 0 时不限制
	MaxUploadBytes int64
}

func NewToolsController(aiService *service.AIService, maxUploadMB int64) *ToolsController {
	return &ToolsController{AIService: aiService, MaxUploadBytes: maxUploadMB << 20}
}

// @Summary 音视频转录与摘要
// @Description 上传音视频文件，返回转录文本与摘要
// @Tags AI工具
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "音视频文件"
// @Param prompt formData string false "自定义提示词"
// @Param model_name formData string false "模型名称"
// @Success 200 {object} util.Response{data=service.SummaryResult}
// @Failure 400 {object} util.ErrorResponse
// @Failure 413 {object} util.ErrorResponse
// @Failure 500 {object} util.ErrorResponse
// @Router /api/tools/summarize/ [post]
func (c *ToolsController) Summarize(ctx *gin.Context) {
	header, err := ctx.FormFile("file")
	if err != nil {
		util.HandleError(ctx, util.ErrNoFile)
		return
	}
	if c.MaxUploadBytes > 0 && header.Size > c.MaxUploadBytes {
		util.HandleError(ctx, util.ErrFileTooLarge)
		return
	}

	file, err := header.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	sniffed, reader, err := util.SniffMimeType(file)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	mimeType := util.MediaMimeType(header.Header.Get("Content-Type"), header.Filename, sniffed)
	if !util.IsMedia(mimeType) && !util.AllowedMediaExtension(header.Filename) {
		util.HandleError(ctx, util.ErrUnsupportedMedia)
		return
	}

	result, err := c.AIService.Summarize(ctx.Request.Context(), service.MediaUpload{
		Filename: header.Filename,
		MimeType: mimeType,
		Reader:   reader,
		Size:     header.Size,
	}, ctx.PostForm("prompt"), ctx.PostForm("model_name"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

type CaseStudyRequest struct {
	Prompt string `json:"prompt"`
}

// @Summary 生成案例分析
// @Tags AI工具
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CaseStudyRequest true "主题"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.ErrorResponse
// @Router /api/tools/generate-case-study/ [post]
func (c *ToolsController) GenerateCaseStudy(ctx *gin.Context) {
	var req CaseStudyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.HandleError(ctx, util.ErrEmptyPrompt)
		return
	}

	text, err := c.AIService.GenerateCaseStudy(ctx.Request.Context(), req.Prompt)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"case_study_text": text})
}

type ChatRequest struct {
	Message string             `json:"message"`
	History []service.ChatTurn `json:"history"`
}

// @Summary 学习助手对话
// @Description history 形如 [{"role":"user","parts":["..."]}]
// @Tags AI工具
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChatRequest true "消息与历史"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.ErrorResponse
// @Router /api/chatbot/message/ [post]
func (c *ToolsController) Chat(ctx *gin.Context) {
	var req ChatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.HandleError(ctx, util.ErrInvalidRequest)
		return
	}

	reply, err := c.AIService.Chat(ctx.Request.Context(), req.Message, req.History)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"reply": reply})
}

type AssignmentRequest struct {
	AssignmentText string `json:"assignment_text"`
}

// @Summary 作业检查
// @Tags AI工具
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AssignmentRequest true "作业文本"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.ErrorResponse
// @Failure 413 {object} util.ErrorResponse
// @Router /api/assignment-checker/ [post]
func (c *ToolsController) CheckAssignment(ctx *gin.Context) {
	var req AssignmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.HandleError(ctx, util.ErrEmptyAssignment)
		return
	}

	feedback, err := c.AIService.CheckAssignment(ctx.Request.Context(), req.AssignmentText)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"feedback": feedback})
}
