package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/api/middleware"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/model/dto"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/response"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/validation"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/service"
)

type InstallationHandler struct {
	installationService *service.InstallationService
	defaultPageSize     int
}

func NewInstallationHandler(installationService *service.InstallationService, defaultPageSize int) *InstallationHandler {
	validation.RegisterGinValidators()
	return &InstallationHandler{
		installationService: installationService,
		defaultPageSize:     defaultPageSize,
	}
}

// Create 开通租户实例
// POST /api/v1/installations
func (h *InstallationHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CreateInstallationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	installation, err := h.installationService.CreateInstallation(c.Request.Context(), userID, &req)
	if err != nil {
		writeInstallationError(c, err)
		return
	}

	response.SuccessWithMessage(c, "实例已创建", installation)
}

// GetMine 当前用户的实例
// GET /api/v1/installations/me
func (h *InstallationHandler) GetMine(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	installation, err := h.installationService.GetMine(userID)
	if err != nil {
		writeInstallationError(c, err)
		return
	}

	response.Success(c, installation)
}

// List 管理员分页查询
// GET /api/v1/installations
func (h *InstallationHandler) List(c *gin.Context) {
	var query dto.ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ParamError(c, err.Error())
		return
	}
	page, pageSize := normalizePage(query.Page, query.PageSize, h.defaultPageSize)

	items, total, err := h.installationService.List(page, pageSize, query.Status)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, items)
}

// Update 管理员修改实例
// PATCH /api/v1/installations/:id
func (h *InstallationHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的实例ID")
		return
	}

	var req dto.UpdateInstallationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	installation, err := h.installationService.Update(id, &req)
	if err != nil {
		writeInstallationError(c, err)
		return
	}

	response.SuccessWithMessage(c, "更新成功", installation)
}

// Delete 管理员删除实例记录
// DELETE /api/v1/installations/:id
func (h *InstallationHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的实例ID")
		return
	}

	if err := h.installationService.Delete(id); err != nil {
		writeInstallationError(c, err)
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}

func writeInstallationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDatabaseName),
		errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrInvalidEdition),
		errors.Is(err, service.ErrUnsupportedVersion),
		errors.Is(err, service.ErrInvalidInstallationStatus):
		response.ParamError(c, err.Error())
	case errors.Is(err, service.ErrNotSubscribed):
		response.NotSubscribedError(c, err.Error())
	case errors.Is(err, service.ErrDomainTaken),
		errors.Is(err, service.ErrInstallationAlreadyExists):
		response.ConflictError(c, err.Error())
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrInstallationNotFound):
		response.NotFoundError(c, err.Error())
	case errors.Is(err, service.ErrProvisioningFailed):
		response.UpstreamError(c, service.ErrProvisioningFailed.Error())
	default:
		response.ServerError(c, "")
	}
}
