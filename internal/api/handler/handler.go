package handler

import "github.com/Logiciel-Prince/device-management/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth     *AuthHandler
	User     *UserHandler
	Device   *DeviceHandler
	Request  *RequestHandler
	Activity *ActivityHandler
	Stats    *StatsHandler
	Export   *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:     NewAuthHandler(svc.Auth),
		User:     NewUserHandler(svc.User),
		Device:   NewDeviceHandler(svc.Device),
		Request:  NewRequestHandler(svc.Request),
		Activity: NewActivityHandler(svc.Activity),
		Stats:    NewStatsHandler(svc.Stats),
		Export:   NewExportHandler(svc.Export),
	}
}
