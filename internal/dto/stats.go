package dto

// ── 统计模块 DTO ──

// StatsResponse 仪表盘统计响应
type StatsResponse struct {
	TotalDevices       int64 `json:"total_devices"`
	AvailableDevices   int64 `json:"available_devices"`
	AssignedDevices    int64 `json:"assigned_devices"`
	MaintenanceDevices int64 `json:"maintenance_devices"`
	PendingRequests    int64 `json:"pending_requests"`
	ApprovedRequests   int64 `json:"approved_requests"`
	RejectedRequests   int64 `json:"rejected_requests"`
	TotalUsers         int64 `json:"total_users"`
	AdminUsers         int64 `json:"admin_users"`
}

// IntegrationStatusResponse 外部集成状态响应
type IntegrationStatusResponse struct {
	Slack IntegrationItem `json:"slack"`
}

// IntegrationItem 单个集成的状态
type IntegrationItem struct {
	Configured bool   `json:"configured"`
	Channel    string `json:"channel,omitempty"`
}
