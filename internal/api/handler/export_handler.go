package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/Logiciel-Prince/device-management/internal/service"
	"github.com/Logiciel-Prince/device-management/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportDevices 导出设备台账
// GET /api/v1/export/devices
func (h *ExportHandler) ExportDevices(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportDevices(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExportNoDevices):
			response.NotFound(c, 15001, "暂无设备可导出")
		default:
			response.InternalError(c)
		}
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
