package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Logiciel-Prince/device-management/internal/model"
)

// DeviceActivityRepository 设备动态流数据访问接口
type DeviceActivityRepository interface {
	Create(ctx context.Context, activity *model.DeviceActivity) error
	ListRecent(ctx context.Context, limit int) ([]model.DeviceActivity, error)
	ListByDevice(ctx context.Context, deviceID string, limit int) ([]model.DeviceActivity, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]model.DeviceActivity, error)
}

type deviceActivityRepo struct {
	db *gorm.DB
}

// NewDeviceActivityRepo 创建 DeviceActivityRepository 实例
func NewDeviceActivityRepo(db *gorm.DB) DeviceActivityRepository {
	return &deviceActivityRepo{db: db}
}

func (r *deviceActivityRepo) Create(ctx context.Context, activity *model.DeviceActivity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *deviceActivityRepo) ListRecent(ctx context.Context, limit int) ([]model.DeviceActivity, error) {
	var activities []model.DeviceActivity
	err := r.db.WithContext(ctx).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&activities).Error
	return activities, err
}

func (r *deviceActivityRepo) ListByDevice(ctx context.Context, deviceID string, limit int) ([]model.DeviceActivity, error) {
	var activities []model.DeviceActivity
	err := r.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&activities).Error
	return activities, err
}

func (r *deviceActivityRepo) ListByUser(ctx context.Context, userID string, limit int) ([]model.DeviceActivity, error) {
	var activities []model.DeviceActivity
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&activities).Error
	return activities, err
}
