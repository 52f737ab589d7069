package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/api/middleware"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/model/dto"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/response"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/service"
)

// UserHandler /account 下的账户接口
type UserHandler struct {
	userService    *service.UserService
	billingService *service.BillingService
}

func NewUserHandler(userService *service.UserService, billingService *service.BillingService) *UserHandler {
	return &UserHandler{
		userService:    userService,
		billingService: billingService,
	}
}

// GetProfile 获取当前用户信息（含套餐与实例）
// GET /api/v1/account/me
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	profile, err := h.userService.GetProfile(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, profile)
}

// UpdateProfile 更新用户信息
// PATCH /api/v1/account/me
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	profile, err := h.userService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidLanguage), errors.Is(err, service.ErrInvalidTimezone):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "更新成功", profile)
}

// DeleteAccount 注销账号
// DELETE /api/v1/account/me
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	if err := h.userService.DeleteAccount(c.Request.Context(), userID); err != nil {
		switch {
		case errors.Is(err, service.ErrAccountInUse):
			response.ConflictError(c, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "账号已注销", nil)
}

// UpdatePassword 修改登录密码
// PATCH /api/v1/account/password
func (h *UserHandler) UpdatePassword(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.userService.UpdatePassword(c.Request.Context(), userID, &req); err != nil {
		switch {
		case errors.Is(err, service.ErrWrongPassword):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "密码已更新", nil)
}

// UploadAvatar 上传头像
// POST /api/v1/account/avatar
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.ParamError(c, "请选择文件")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.ServerError(c, "文件读取失败")
		return
	}
	defer f.Close()

	avatarURL, err := h.userService.UploadAvatar(c.Request.Context(), userID, f, file.Size,
		file.Filename, file.Header.Get("Content-Type"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFileTooLarge), errors.Is(err, service.ErrInvalidFileType):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrStorageDisabled):
			response.ServerError(c, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.UpstreamError(c, "上传失败")
		}
		return
	}

	response.SuccessWithMessage(c, "上传成功", dto.AvatarResponse{AvatarURL: avatarURL})
}

// SelectPlan 选择套餐，返回 Stripe Checkout 地址
// POST /api/v1/account/select-plan
func (h *UserHandler) SelectPlan(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.SelectPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.billingService.SelectPlan(c.Request.Context(), userID, &req)
	if err != nil {
		writeBillingError(c, err)
		return
	}

	response.Success(c, resp)
}
