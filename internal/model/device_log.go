package model

import "time"

// ── 设备日志动作 ──

const (
	LogActionCreated     = "created"
	LogActionUpdated     = "updated"
	LogActionAssigned    = "assigned"
	LogActionReturned    = "returned"
	LogActionMaintenance = "maintenance"
)

// DeviceLog 设备审计日志表 — 对应 device_logs（仅追加，创建后不可变更）
type DeviceLog struct {
	LogID     string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"log_id"`
	DeviceID  string    `gorm:"type:uuid;not null"                             json:"device_id"`
	UserID    *string   `gorm:"type:uuid"                                      json:"user_id,omitempty"`
	Action    string    `gorm:"type:varchar(20);not null"                      json:"action"` // created | updated | assigned | returned | maintenance
	Notes     string    `gorm:"type:varchar(500)"                              json:"notes,omitempty"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (DeviceLog) TableName() string { return "device_logs" }
