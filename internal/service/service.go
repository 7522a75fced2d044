package service

import (
	"go.uber.org/zap"

	"github.com/Logiciel-Prince/device-management/config"
	"github.com/Logiciel-Prince/device-management/internal/repository"
	"github.com/Logiciel-Prince/device-management/pkg/jwt"
	"github.com/Logiciel-Prince/device-management/pkg/notify"
	"github.com/Logiciel-Prince/device-management/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth     AuthService
	User     UserService
	Device   DeviceService
	Request  RequestService
	Activity ActivityService
	Stats    StatsService
	Export   ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	notifier notify.Notifier,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:     NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		User:     NewUserService(repo, logger),
		Device:   NewDeviceService(repo, notifier, logger),
		Request:  NewRequestService(repo, notifier, logger),
		Activity: NewActivityService(repo, logger),
		Stats:    NewStatsService(cfg, repo, notifier, logger),
		Export:   NewExportService(repo, logger),
	}
}
