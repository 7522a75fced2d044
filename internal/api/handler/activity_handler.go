package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Logiciel-Prince/device-management/internal/dto"
	"github.com/Logiciel-Prince/device-management/internal/service"
	"github.com/Logiciel-Prince/device-management/pkg/response"
)

// ActivityHandler 设备动态模块 HTTP 处理器
type ActivityHandler struct {
	activitySvc service.ActivityService
}

// NewActivityHandler 创建 ActivityHandler
func NewActivityHandler(activitySvc service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activitySvc: activitySvc}
}

// Ingest 上报设备动态
// POST /api/v1/devices/:id/activity
func (h *ActivityHandler) Ingest(c *gin.Context) {
	var req dto.CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	req.DeviceID = c.Param("id")

	result, err := h.activitySvc.Ingest(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrDeviceNotFound) {
			response.NotFound(c, 13001, "设备不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.Created(c, result)
}

// ListByDevice 某台设备的动态
// GET /api/v1/devices/:id/activity
func (h *ActivityHandler) ListByDevice(c *gin.Context) {
	h.list(c, dto.ActivityListRequest{DeviceID: c.Param("id")})
}

// ListByUser 某位用户的动态
// GET /api/v1/users/:id/activity
func (h *ActivityHandler) ListByUser(c *gin.Context) {
	h.list(c, dto.ActivityListRequest{UserID: c.Param("id")})
}

func (h *ActivityHandler) list(c *gin.Context, req dto.ActivityListRequest) {
	var query dto.ActivityListRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	req.Limit = query.Limit

	list, err := h.activitySvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, list)
}
