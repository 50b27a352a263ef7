package controller

import (
	"strconv"
	"studypulse_backend/internal/service"
	"studypulse_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// SubmitQuizRequest answers 为 {"题目ID": 选项ID}
type SubmitQuizRequest struct {
	QuizID  interface{}            `json:"quiz_id"`
	Answers map[string]interface{} `json:"answers"`
}

// @Summary 获取测验
// @Description 返回题目与选项，不包含正确答案
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param id path int true "测验ID"
// @Success 200 {object} util.Response{data=service.QuizView}
// @Failure 404 {object} util.ErrorResponse
// @Router /api/quizzes/{id}/ [get]
func (c *QuizController) GetQuiz(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.NotFound(ctx, util.ErrQuizNotFound.Error())
		return
	}

	quiz, err := c.QuizService.GetQuiz(ctx.Request.Context(), uint(id))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// @Summary 提交测验
// @Description 评分、记录答题并在通过时发放经验值
// @Tags 测验
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SubmitQuizRequest true "答案"
// @Success 200 {object} util.Response{data=service.GradedAttempt}
// @Failure 400 {object} util.ErrorResponse
// @Failure 404 {object} util.ErrorResponse
// @Router /api/quizzes/submit/ [post]
func (c *QuizController) SubmitQuiz(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx, "")
		return
	}
	if user.Profile == nil {
		util.HandleError(ctx, util.ErrProfileNotFound)
		return
	}

	var req SubmitQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.HandleError(ctx, util.ErrMissingParameters)
		return
	}
	grade, err := service.ParseSubmission(req.QuizID, req.Answers)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	attempt, err := c.QuizService.Grade(ctx.Request.Context(), user.Profile.ID, *grade)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}
