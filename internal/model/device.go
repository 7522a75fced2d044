package model

import "time"

// ── 设备状态 ──

const (
	DeviceStatusAvailable   = "available"
	DeviceStatusAssigned    = "assigned"
	DeviceStatusMaintenance = "maintenance"
)

// ── 设备类型 ──

const (
	DeviceTypeSmartphone = "smartphone"
	DeviceTypeTablet     = "tablet"
	DeviceTypeLaptop     = "laptop"
)

// Device 设备资产表 — 对应 devices
// 不变量：status=assigned ⇔ assigned_to 非空（Service 层在写入时维护）
type Device struct {
	DeviceID     string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"device_id"`
	Name         string     `gorm:"type:varchar(200);not null"                     json:"name"`
	Type         string     `gorm:"type:varchar(20);not null"                      json:"type"` // smartphone | tablet | laptop
	Model        string     `gorm:"type:varchar(200);not null"                     json:"model"`
	SerialNumber string     `gorm:"type:varchar(100);not null;uniqueIndex"         json:"serial_number"`
	Status       string     `gorm:"type:varchar(20);not null;default:'available'"  json:"status"` // available | assigned | maintenance
	AssignedTo   *string    `gorm:"type:uuid"                                      json:"assigned_to,omitempty"`
	PurchaseDate *time.Time `json:"purchase_date,omitempty"`
	LastActivity time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"last_activity"`
	Version      int        `gorm:"not null;default:1"                             json:"version"`
	BaseModel

	// 关联
	AssignedUser *User `gorm:"foreignKey:AssignedTo;references:UserID" json:"assigned_user,omitempty"`
}

// TableName 指定表名
func (Device) TableName() string { return "devices" }
