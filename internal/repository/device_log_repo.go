package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Logiciel-Prince/device-management/internal/model"
)

// DeviceLogRepository 设备审计日志数据访问接口（只追加，不支持修改和删除）
type DeviceLogRepository interface {
	Create(ctx context.Context, log *model.DeviceLog) error
	ListByDevice(ctx context.Context, deviceID string) ([]model.DeviceLog, error)
}

type deviceLogRepo struct {
	db *gorm.DB
}

// NewDeviceLogRepo 创建 DeviceLogRepository 实例
func NewDeviceLogRepo(db *gorm.DB) DeviceLogRepository {
	return &deviceLogRepo{db: db}
}

func (r *deviceLogRepo) Create(ctx context.Context, log *model.DeviceLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *deviceLogRepo) ListByDevice(ctx context.Context, deviceID string) ([]model.DeviceLog, error) {
	var logs []model.DeviceLog
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("device_id = ?", deviceID).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}
