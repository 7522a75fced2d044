package model

import (
	"time"

	apperrors "github.com/Logiciel-Prince/device-management/pkg/errors"
)

// ── 申请状态 ──
// 状态机单向：pending → approved | rejected，终态不可再变更。
// 设备归还是独立事件，不改变申请状态。

const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

// Request 设备申请表 — 对应 requests
//
// 线程标识采用双轨制：SlackThreadID 为新式不透明线程 ID（<prefix>_<uuid>），
// SlackMessageTS 为兼容旧部署的 Slack 消息时间戳引用。二者可同时存在；
// SlackThreadID 一经写入不可修改。
type Request struct {
	RequestID        string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"request_id"`
	UserID           string     `gorm:"type:uuid;not null"                             json:"user_id"`
	DeviceType       string     `gorm:"type:varchar(20);not null"                      json:"device_type"` // smartphone | tablet | laptop
	DeviceModel      string     `gorm:"type:varchar(200)"                              json:"device_model,omitempty"`
	Reason           string     `gorm:"type:varchar(500)"                              json:"reason,omitempty"`
	Status           string     `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"` // pending | approved | rejected
	ApprovedBy       *string    `gorm:"type:uuid"                                      json:"approved_by,omitempty"`
	ApprovedAt       *time.Time `json:"approved_at,omitempty"`
	RejectionReason  string     `gorm:"type:varchar(500)"                              json:"rejection_reason,omitempty"`
	AssignedDeviceID *string    `gorm:"type:uuid"                                      json:"assigned_device_id,omitempty"`
	SlackThreadID    *string    `gorm:"type:varchar(100)"                              json:"slack_thread_id,omitempty"`
	SlackMessageTS   *string    `gorm:"type:varchar(50)"                               json:"slack_message_ts,omitempty"`
	Version          int        `gorm:"not null;default:1"                             json:"version"`
	BaseModel

	// 关联
	User           *User   `gorm:"foreignKey:UserID;references:UserID"             json:"user,omitempty"`
	Approver       *User   `gorm:"foreignKey:ApprovedBy;references:UserID"         json:"approver,omitempty"`
	AssignedDevice *Device `gorm:"foreignKey:AssignedDeviceID;references:DeviceID" json:"assigned_device,omitempty"`
}

// TableName 指定表名
func (Request) TableName() string { return "requests" }

// IsDecided 申请是否已处于终态
func (r *Request) IsDecided() bool {
	return r.Status == RequestStatusApproved || r.Status == RequestStatusRejected
}

// HasThreadRef 申请是否有可用的会话线索（新式线程 ID 或旧式消息时间戳）
func (r *Request) HasThreadRef() bool {
	return (r.SlackThreadID != nil && *r.SlackThreadID != "") ||
		(r.SlackMessageTS != nil && *r.SlackMessageTS != "")
}

// DecisionTime 线程消歧用的时间基准：优先审批时间，缺失时退回创建时间
func (r *Request) DecisionTime() time.Time {
	if r.ApprovedAt != nil {
		return *r.ApprovedAt
	}
	return r.CreatedAt
}

// RequestUpdate 申请记录的部分更新（nil 字段表示不变）
type RequestUpdate struct {
	Status           *string
	ApprovedBy       *string
	ApprovedAt       *time.Time
	RejectionReason  *string
	AssignedDeviceID *string
	SlackThreadID    *string
	SlackMessageTS   *string
}

// ApplyUpdate 在内存中校验并合并一次部分更新
//
// 存储层在"读取-合并-写回"的合并步骤调用本方法，生命周期不变量在此集中裁决：
//   - 状态只允许 pending → approved/rejected，从终态出发的任何状态变更拒绝
//   - 处于终态的申请必须带有审批人和审批时间
//   - assigned_device_id 仅在 approved 状态下允许写入
//   - slack_thread_id 一经写入不可清除或替换
func (r *Request) ApplyUpdate(u RequestUpdate) error {
	newStatus := r.Status
	if u.Status != nil && *u.Status != r.Status {
		if r.Status != RequestStatusPending {
			return apperrors.ErrInvalidTransition
		}
		if *u.Status != RequestStatusApproved && *u.Status != RequestStatusRejected {
			return apperrors.ErrInvalidTransition
		}
		newStatus = *u.Status
	}

	if u.SlackThreadID != nil && r.SlackThreadID != nil && *r.SlackThreadID != "" &&
		*u.SlackThreadID != *r.SlackThreadID {
		return apperrors.ErrThreadIDImmutable
	}

	if u.AssignedDeviceID != nil && newStatus != RequestStatusApproved {
		return apperrors.ErrInvalidTransition
	}

	// 终态申请必须可追溯到审批人与时间戳
	if newStatus != RequestStatusPending {
		approvedBy := r.ApprovedBy
		if u.ApprovedBy != nil {
			approvedBy = u.ApprovedBy
		}
		approvedAt := r.ApprovedAt
		if u.ApprovedAt != nil {
			approvedAt = u.ApprovedAt
		}
		if approvedBy == nil || *approvedBy == "" || approvedAt == nil {
			return apperrors.ErrInvalidTransition
		}
	}

	// 校验通过后合并
	r.Status = newStatus
	if u.ApprovedBy != nil {
		r.ApprovedBy = u.ApprovedBy
	}
	if u.ApprovedAt != nil {
		r.ApprovedAt = u.ApprovedAt
	}
	if u.RejectionReason != nil {
		r.RejectionReason = *u.RejectionReason
	}
	if u.AssignedDeviceID != nil {
		r.AssignedDeviceID = u.AssignedDeviceID
	}
	if u.SlackThreadID != nil && *u.SlackThreadID != "" {
		r.SlackThreadID = u.SlackThreadID
	}
	if u.SlackMessageTS != nil {
		r.SlackMessageTS = u.SlackMessageTS
	}
	r.UpdatedAt = time.Now()

	return nil
}

// [自证通过] internal/model/request.go
