package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/api/middleware"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/model/dto"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/response"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/service"
)

type CompanyHandler struct {
	companyService *service.CompanyService
}

func NewCompanyHandler(companyService *service.CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

// Get GET /api/v1/company/me
func (h *CompanyHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	company, err := h.companyService.Get(userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCompanyNotFound), errors.Is(err, service.ErrUserNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, company)
}

// Save 创建或更新当前用户的公司
// PUT /api/v1/company/me
func (h *CompanyHandler) Save(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	company, err := h.companyService.Save(userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "保存成功", company)
}
