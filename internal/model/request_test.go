package model

import (
	"errors"
	"testing"
	"time"

	apperrors "github.com/Logiciel-Prince/device-management/pkg/errors"
)

func strPtr(s string) *string       { return &s }
func timePtr(t time.Time) *time.Time { return &t }

func pendingRequest() *Request {
	return &Request{
		RequestID:  "req-001",
		UserID:     "user-001",
		DeviceType: DeviceTypeLaptop,
		Status:     RequestStatusPending,
		BaseModel:  BaseModel{CreatedAt: time.Now().Add(-time.Hour)},
	}
}

func TestApplyUpdate_ApproveFromPending(t *testing.T) {
	r := pendingRequest()
	now := time.Now()

	err := r.ApplyUpdate(RequestUpdate{
		Status:           strPtr(RequestStatusApproved),
		ApprovedBy:       strPtr("admin-001"),
		ApprovedAt:       timePtr(now),
		AssignedDeviceID: strPtr("dev-001"),
	})
	if err != nil {
		t.Fatalf("pending→approved 应成功: %v", err)
	}
	if r.Status != RequestStatusApproved {
		t.Errorf("期望 Status=approved，实际=%s", r.Status)
	}
	if r.ApprovedBy == nil || *r.ApprovedBy != "admin-001" {
		t.Error("审批人应被写入")
	}
	if r.AssignedDeviceID == nil || *r.AssignedDeviceID != "dev-001" {
		t.Error("设备关联应被写入")
	}
}

func TestApplyUpdate_RejectFromPending(t *testing.T) {
	r := pendingRequest()
	now := time.Now()

	err := r.ApplyUpdate(RequestUpdate{
		Status:          strPtr(RequestStatusRejected),
		ApprovedBy:      strPtr("admin-001"),
		ApprovedAt:      timePtr(now),
		RejectionReason: strPtr("库存不足"),
	})
	if err != nil {
		t.Fatalf("pending→rejected 应成功: %v", err)
	}
	if r.RejectionReason != "库存不足" {
		t.Errorf("期望驳回原因被写入，实际=%q", r.RejectionReason)
	}
}

func TestApplyUpdate_TerminalStateIsImmutable(t *testing.T) {
	for _, terminal := range []string{RequestStatusApproved, RequestStatusRejected} {
		r := pendingRequest()
		r.Status = terminal
		r.ApprovedBy = strPtr("admin-001")
		r.ApprovedAt = timePtr(time.Now())

		for _, target := range []string{RequestStatusPending, RequestStatusApproved, RequestStatusRejected} {
			if target == terminal {
				continue
			}
			err := r.ApplyUpdate(RequestUpdate{Status: &target})
			if !errors.Is(err, apperrors.ErrInvalidTransition) {
				t.Errorf("%s→%s 期望 ErrInvalidTransition，实际: %v", terminal, target, err)
			}
		}
	}
}

func TestApplyUpdate_DecisionRequiresApprover(t *testing.T) {
	r := pendingRequest()

	// 缺少审批人与时间戳的终态变更应被拒绝
	err := r.ApplyUpdate(RequestUpdate{Status: strPtr(RequestStatusApproved)})
	if !errors.Is(err, apperrors.ErrInvalidTransition) {
		t.Errorf("缺少审批元数据时期望 ErrInvalidTransition，实际: %v", err)
	}
	if r.Status != RequestStatusPending {
		t.Error("校验失败时不应产生部分合并")
	}
}

func TestApplyUpdate_AssignDeviceRequiresApproved(t *testing.T) {
	r := pendingRequest()

	err := r.ApplyUpdate(RequestUpdate{AssignedDeviceID: strPtr("dev-001")})
	if !errors.Is(err, apperrors.ErrInvalidTransition) {
		t.Errorf("pending 状态写入设备关联期望 ErrInvalidTransition，实际: %v", err)
	}
}

func TestApplyUpdate_ThreadIDImmutable(t *testing.T) {
	r := pendingRequest()
	r.SlackThreadID = strPtr("req_9f1c2d3e-4a5b-4c6d-8e7f-0a1b2c3d4e5f")

	// 替换已有线程 ID
	err := r.ApplyUpdate(RequestUpdate{SlackThreadID: strPtr("req_00000000-0000-4000-8000-000000000000")})
	if !errors.Is(err, apperrors.ErrThreadIDImmutable) {
		t.Errorf("替换线程 ID 期望 ErrThreadIDImmutable，实际: %v", err)
	}

	// 清除已有线程 ID
	err = r.ApplyUpdate(RequestUpdate{SlackThreadID: strPtr("")})
	if !errors.Is(err, apperrors.ErrThreadIDImmutable) {
		t.Errorf("清除线程 ID 期望 ErrThreadIDImmutable，实际: %v", err)
	}
}

func TestApplyUpdate_ThreadIDBackfill(t *testing.T) {
	r := pendingRequest()
	r.Status = RequestStatusApproved
	r.ApprovedBy = strPtr("admin-001")
	r.ApprovedAt = timePtr(time.Now())
	r.SlackMessageTS = strPtr("1726000000.000100")

	// 旧记录补写线程 ID 是合法的首次写入
	err := r.ApplyUpdate(RequestUpdate{SlackThreadID: strPtr("req_req-001")})
	if err != nil {
		t.Fatalf("补写线程 ID 应成功: %v", err)
	}
	if r.SlackThreadID == nil || *r.SlackThreadID != "req_req-001" {
		t.Error("线程 ID 应被补写")
	}
}

func TestDecisionTime_FallbackToCreatedAt(t *testing.T) {
	r := pendingRequest()
	if !r.DecisionTime().Equal(r.CreatedAt) {
		t.Error("无审批时间时应退回创建时间")
	}

	at := time.Now()
	r.ApprovedAt = &at
	if !r.DecisionTime().Equal(at) {
		t.Error("有审批时间时应优先使用审批时间")
	}
}

func TestHasThreadRef(t *testing.T) {
	r := pendingRequest()
	if r.HasThreadRef() {
		t.Error("无任何线索时 HasThreadRef 应为 false")
	}

	r.SlackMessageTS = strPtr("1726000000.000100")
	if !r.HasThreadRef() {
		t.Error("仅有旧式消息引用时 HasThreadRef 应为 true")
	}

	r.SlackMessageTS = nil
	r.SlackThreadID = strPtr("req_9f1c2d3e-4a5b-4c6d-8e7f-0a1b2c3d4e5f")
	if !r.HasThreadRef() {
		t.Error("仅有线程 ID 时 HasThreadRef 应为 true")
	}
}
