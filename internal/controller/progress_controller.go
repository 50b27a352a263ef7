package controller

import (
	"fmt"
	"strconv"
	"studypulse_backend/internal/service"
	"studypulse_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

type CompleteLessonRequest struct {
	UserID interface{} `json:"user_id"`
}

// @Summary 标记课时完成
// @Description 管理员为指定用户标记课时完成并发放经验值，重复标记不再发放
// @Tags 学习进度
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "课时ID"
// @Param request body CompleteLessonRequest true "目标用户"
// @Success 201 {object} util.Response{data=service.CompletionResult}
// @Success 200 {object} util.Response{data=service.CompletionResult}
// @Failure 400 {object} util.ErrorResponse
// @Failure 403 {object} util.ErrorResponse
// @Failure 404 {object} util.ErrorResponse
// @Router /api/lessons/{id}/complete/ [post]
func (c *ProgressController) CompleteLesson(ctx *gin.Context) {
	lessonID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.NotFound(ctx, util.ErrLessonNotFound.Error())
		return
	}

	var req CompleteLessonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || req.UserID == nil {
		util.HandleError(ctx, util.ErrMissingUserID)
		return
	}
	userID, err := util.ParseID(req.UserID)
	if err != nil {
		util.HandleError(ctx, util.ErrUserNotFound)
		return
	}

	result, err := c.ProgressService.CompleteLesson(ctx.Request.Context(), userID, uint(lessonID))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	if result.AlreadyCompleted {
		util.Success(ctx, gin.H{
			"message":           fmt.Sprintf("Lesson already marked as complete for user %s.", result.Username),
			"already_completed": true,
			"xp_awarded":        0,
			"new_total_xp":      result.NewTotalXP,
		})
		return
	}
	util.Created(ctx, gin.H{
		"message":           fmt.Sprintf("Lesson \"%s\" marked as complete for user %s.", result.LessonTitle, result.Username),
		"already_completed": false,
		"xp_awarded":        result.XPAwarded,
		"new_total_xp":      result.NewTotalXP,
	})
}

// @Summary 学习进度面板
// @Description 排行榜、徽章、主题表现与活跃度图表；未登录时返回全站数据
// @Tags 学习进度
// @Produce json
// @Success 200 {object} util.Response{data=service.TrackerData}
// @Router /api/progress-tracker/ [get]
func (c *ProgressController) GetTracker(ctx *gin.Context) {
	var profileID uint
	if user := util.GetUserFromContext(ctx); user != nil && user.Profile != nil {
		profileID = user.Profile.ID
	}

	data, err := c.ProgressService.Tracker(ctx.Request.Context(), profileID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, data)
}
