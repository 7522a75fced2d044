package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Logiciel-Prince/device-management/internal/dto"
	"github.com/Logiciel-Prince/device-management/internal/service"
	apperrors "github.com/Logiciel-Prince/device-management/pkg/errors"
	"github.com/Logiciel-Prince/device-management/pkg/response"
)

// DeviceHandler 设备模块 HTTP 处理器
type DeviceHandler struct {
	deviceSvc service.DeviceService
}

// NewDeviceHandler 创建 DeviceHandler
func NewDeviceHandler(deviceSvc service.DeviceService) *DeviceHandler {
	return &DeviceHandler{deviceSvc: deviceSvc}
}

// Create 设备入库
// POST /api/v1/devices
func (h *DeviceHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.deviceSvc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrSerialTaken) {
			response.Conflict(c, 13002, "序列号已存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.Created(c, result)
}

// List 设备列表
// GET /api/v1/devices
func (h *DeviceHandler) List(c *gin.Context) {
	var req dto.DeviceListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.deviceSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// ListAvailable 可指派设备列表（审批时选择）
// GET /api/v1/devices/available
func (h *DeviceHandler) ListAvailable(c *gin.Context) {
	list, err := h.deviceSvc.ListAvailable(c.Request.Context(), c.Query("type"))
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, list)
}

// GetByID 设备详情
// GET /api/v1/devices/:id
func (h *DeviceHandler) GetByID(c *gin.Context) {
	result, err := h.deviceSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrDeviceNotFound) {
			response.NotFound(c, 13001, "设备不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// Update 更新设备
// PUT /api/v1/devices/:id
func (h *DeviceHandler) Update(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.deviceSvc.Update(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDeviceNotFound):
			response.NotFound(c, 13001, "设备不存在")
		case errors.Is(err, service.ErrSerialTaken):
			response.Conflict(c, 13002, "序列号已存在")
		case errors.Is(err, service.ErrAssigneeRequired):
			response.BadRequest(c, 13006, "借用状态必须指定借用人")
		case errors.Is(err, apperrors.ErrOptimisticLock):
			response.Conflict(c, 13005, "设备已被其他操作修改，请刷新后重试")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}

// Delete 删除设备
// DELETE /api/v1/devices/:id
func (h *DeviceHandler) Delete(c *gin.Context) {
	if err := h.deviceSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		switch {
		case errors.Is(err, service.ErrDeviceNotFound):
			response.NotFound(c, 13001, "设备不存在")
		case errors.Is(err, service.ErrDeviceAssigned):
			response.Conflict(c, 13004, "设备正被借用，不能删除")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, nil)
}

// Logs 设备审计日志
// GET /api/v1/devices/:id/logs
func (h *DeviceHandler) Logs(c *gin.Context) {
	list, err := h.deviceSvc.Logs(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrDeviceNotFound) {
			response.NotFound(c, 13001, "设备不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, list)
}

// Return 归还设备
// POST /api/v1/devices/:id/return
func (h *DeviceHandler) Return(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	result, err := h.deviceSvc.Return(c.Request.Context(), userID, role, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDeviceNotFound):
			response.NotFound(c, 13001, "设备不存在")
		case errors.Is(err, service.ErrDeviceNotAssigned):
			response.Conflict(c, 13003, "设备当前未被借用")
		case errors.Is(err, service.ErrForbidden):
			response.Forbidden(c, 10003, "只有管理员或借用人可以归还设备")
		case errors.Is(err, apperrors.ErrOptimisticLock):
			response.Conflict(c, 13005, "设备已被其他操作修改，请刷新后重试")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}
