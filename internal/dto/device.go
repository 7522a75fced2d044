package dto

// ── 设备模块 DTO ──

// CreateDeviceRequest 创建设备请求
type CreateDeviceRequest struct {
	Name         string `json:"name"          binding:"required,min=1,max=100"`
	Type         string `json:"type"          binding:"required,oneof=smartphone tablet laptop"`
	Model        string `json:"model"         binding:"required,min=1,max=100"`
	SerialNumber string `json:"serial_number" binding:"required,min=1,max=100"`
	PurchaseDate string `json:"purchase_date" binding:"omitempty,datetime=2006-01-02"`
}

// UpdateDeviceRequest 更新设备请求
type UpdateDeviceRequest struct {
	Name         *string `json:"name"          binding:"omitempty,min=1,max=100"`
	Model        *string `json:"model"         binding:"omitempty,min=1,max=100"`
	SerialNumber *string `json:"serial_number" binding:"omitempty,min=1,max=100"`
	Status       *string `json:"status"        binding:"omitempty,oneof=available assigned maintenance"`
	AssignedTo   *string `json:"assigned_to"`
}

// DeviceListRequest 设备列表查询参数
type DeviceListRequest struct {
	PaginationRequest
	Type   string `form:"type"   binding:"omitempty,oneof=smartphone tablet laptop"`
	Status string `form:"status" binding:"omitempty,oneof=available assigned maintenance"`
}

// DeviceResponse 设备信息响应
type DeviceResponse struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Type         string        `json:"type"`
	Model        string        `json:"model"`
	SerialNumber string        `json:"serial_number"`
	Status       string        `json:"status"`
	AssignedTo   *string       `json:"assigned_to,omitempty"`
	AssignedUser *UserResponse `json:"assigned_user,omitempty"`
	PurchaseDate string        `json:"purchase_date,omitempty"`
	LastActivity string        `json:"last_activity,omitempty"`
	CreatedAt    string        `json:"created_at"`
	UpdatedAt    string        `json:"updated_at"`
}

// DeviceLogResponse 设备审计日志响应
type DeviceLogResponse struct {
	ID        string        `json:"id"`
	DeviceID  string        `json:"device_id"`
	Action    string        `json:"action"`
	Detail    string        `json:"detail,omitempty"`
	User      *UserResponse `json:"user,omitempty"`
	CreatedAt string        `json:"created_at"`
}
