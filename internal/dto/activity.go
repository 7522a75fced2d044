package dto

// ── 设备动态模块 DTO ──

// CreateActivityRequest 上报设备动态请求
type CreateActivityRequest struct {
	DeviceID     string `json:"-"`
	UserID       string `json:"user_id"       binding:"omitempty,uuid"`
	ActivityType string `json:"activity_type" binding:"required,oneof=app_usage website_visit call message location"`
	AppName      string `json:"app_name"      binding:"omitempty,max=200"`
	Website      string `json:"website"       binding:"omitempty,max=500"`
	Duration     string `json:"duration"      binding:"omitempty,max=20"`
	Data         string `json:"data"          binding:"omitempty"`
}

// ActivityListRequest 动态列表查询参数
type ActivityListRequest struct {
	Limit    int    `form:"limit"     binding:"omitempty,min=1,max=100"`
	DeviceID string `form:"device_id" binding:"omitempty,uuid"`
	UserID   string `form:"user_id"   binding:"omitempty,uuid"`
}

// GetLimit 获取条数（含默认值）
func (r *ActivityListRequest) GetLimit() int {
	if r.Limit <= 0 {
		return 20
	}
	return r.Limit
}

// ActivityResponse 设备动态响应
type ActivityResponse struct {
	ID           string `json:"id"`
	DeviceID     string `json:"device_id"`
	UserID       string `json:"user_id,omitempty"`
	ActivityType string `json:"activity_type"`
	AppName      string `json:"app_name,omitempty"`
	Website      string `json:"website,omitempty"`
	Duration     string `json:"duration,omitempty"`
	Data         string `json:"data,omitempty"`
	OccurredAt   string `json:"occurred_at"`
}
