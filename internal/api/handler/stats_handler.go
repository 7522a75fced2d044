package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Logiciel-Prince/device-management/internal/service"
	"github.com/Logiciel-Prince/device-management/pkg/response"
)

// StatsHandler 统计模块 HTTP 处理器
type StatsHandler struct {
	statsSvc service.StatsService
}

// NewStatsHandler 创建 StatsHandler
func NewStatsHandler(statsSvc service.StatsService) *StatsHandler {
	return &StatsHandler{statsSvc: statsSvc}
}

// Dashboard 仪表盘统计
// GET /api/v1/stats
func (h *StatsHandler) Dashboard(c *gin.Context) {
	result, err := h.statsSvc.Dashboard(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// Integrations 外部集成状态
// GET /api/v1/integrations/status
func (h *StatsHandler) Integrations(c *gin.Context) {
	result, err := h.statsSvc.Integrations(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}
