package model

import "time"

// ── 活动类型 ──

const (
	ActivityAppUsage     = "app_usage"
	ActivityWebsiteVisit = "website_visit"
	ActivityCall         = "call"
	ActivityMessage      = "message"
	ActivityLocation     = "location"
)

// DeviceActivity 设备活动记录表 — 对应 device_activities
// 仅追加的事实记录，供监控视图消费；Data 为附加细节的自由 JSON 文本
type DeviceActivity struct {
	ActivityID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"activity_id"`
	DeviceID     string    `gorm:"type:uuid;not null"                             json:"device_id"`
	UserID       *string   `gorm:"type:uuid"                                      json:"user_id,omitempty"`
	ActivityType string    `gorm:"type:varchar(30);not null"                      json:"activity_type"` // app_usage | website_visit | call | message | location
	AppName      string    `gorm:"type:varchar(200)"                              json:"app_name,omitempty"`
	Website      string    `gorm:"type:varchar(500)"                              json:"website,omitempty"`
	Duration     string    `gorm:"type:varchar(20)"                               json:"duration,omitempty"` // 分钟数（文本，与旧系统一致）
	Data         string    `gorm:"type:text"                                      json:"data,omitempty"`
	OccurredAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"occurred_at"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (DeviceActivity) TableName() string { return "device_activities" }
