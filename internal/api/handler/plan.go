package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/response"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/service"
)

type PlanHandler struct {
	planService *service.PlanService
}

func NewPlanHandler(planService *service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// List 获取可订阅的套餐
// GET /api/v1/plans
func (h *PlanHandler) List(c *gin.Context) {
	plans, err := h.planService.ListActive()
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, plans)
}
