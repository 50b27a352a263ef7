package controller

import (
	"studypulse_backend/internal/service"
	"studypulse_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProfileController struct {
	ProfileService *service.ProfileService
}

func NewProfileController(profileService *service.ProfileService) *ProfileController {
	return &ProfileController{ProfileService: profileService}
}

// @Summary 当前用户档案
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.Profile}
// @Router /api/profile/ [get]
func (c *ProfileController) GetProfile(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx, "")
		return
	}

	profile, err := c.ProfileService.Get(ctx.Request.Context(), user.ID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, profile)
}

// @Summary 更新档案
// @Description 仅 bio、first_name、last_name 可修改，PUT 与 PATCH 语义相同
// @Tags 用户
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.ProfileUpdate true "修改内容"
// @Success 200 {object} util.Response{data=model.Profile}
// @Failure 400 {object} util.ErrorResponse
// @Router /api/profile/ [put]
// @Router /api/profile/ [patch]
func (c *ProfileController) UpdateProfile(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx, "")
		return
	}

	var req service.ProfileUpdate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.HandleError(ctx, util.ErrInvalidRequest)
		return
	}

	profile, err := c.ProfileService.Update(ctx.Request.Context(), user.ID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, profile)
}
