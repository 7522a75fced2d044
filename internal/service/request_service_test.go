package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Logiciel-Prince/device-management/internal/dto"
	"github.com/Logiciel-Prince/device-management/internal/model"
	"github.com/Logiciel-Prince/device-management/internal/thread"
	apperrors "github.com/Logiciel-Prince/device-management/pkg/errors"
)

// ── 测试装配 ──

type requestFixture struct {
	svc      RequestService
	users    *mockUserRepo
	devices  *mockDeviceRepo
	requests *mockRequestRepo
	logs     *mockDeviceLogRepo
	notifier *fakeNotifier
}

func newRequestFixture(configured bool, nextRef string) *requestFixture {
	repo, users, devices, requests, logs, _ := newTestRepository()
	notifier := &fakeNotifier{configured: configured, nextRef: nextRef}
	logger := zap.NewNop()
	return &requestFixture{
		svc:      NewRequestService(repo, notifier, logger),
		users:    users,
		devices:  devices,
		requests: requests,
		logs:     logs,
		notifier: notifier,
	}
}

func seedUser(users *mockUserRepo, id, role string) *model.User {
	u := &model.User{
		UserID:    id,
		Email:     id + "@example.com",
		FirstName: "测试",
		LastName:  "用户",
		Role:      role,
	}
	users.users[id] = u
	return u
}

func seedDevice(devices *mockDeviceRepo, id, deviceType, status string) *model.Device {
	d := &model.Device{
		DeviceID:     id,
		Name:         "Device " + id,
		Type:         deviceType,
		Model:        "Test Model",
		SerialNumber: "SN-" + id,
		Status:       status,
		LastActivity: time.Now(),
		Version:      1,
	}
	devices.devices[id] = d
	return d
}

// ── Submit ──

func TestSubmit_GatewayUnconfigured(t *testing.T) {
	f := newRequestFixture(false, "") // nextRef 为空模拟发送失败
	seedUser(f.users, "u1", model.RoleEmployee)

	resp, err := f.svc.Submit(context.Background(), "u1", &dto.CreateRequestRequest{
		DeviceType: model.DeviceTypeLaptop,
		Reason:     "开发用机",
	})
	if err != nil {
		t.Fatalf("Submit 失败: %v", err)
	}
	if resp.Status != model.RequestStatusPending {
		t.Errorf("期望状态 pending，实际=%s", resp.Status)
	}

	stored, _ := f.requests.GetByID(context.Background(), resp.ID)
	if stored.SlackThreadID == nil {
		t.Fatal("提交后应分配线程 ID")
	}
	if !thread.IsValidThreadID(*stored.SlackThreadID) {
		t.Errorf("线程 ID 格式非法: %s", *stored.SlackThreadID)
	}
	if p, _ := thread.Prefix(*stored.SlackThreadID); p != "req" {
		t.Errorf("期望前缀 req，实际=%s", p)
	}
	if stored.SlackMessageTS != nil {
		t.Errorf("通道不可用时不应回填消息时间戳，实际=%v", *stored.SlackMessageTS)
	}
}

func TestSubmit_StoresMessageTS(t *testing.T) {
	f := newRequestFixture(true, "1724000000.000100")
	seedUser(f.users, "u1", model.RoleEmployee)

	resp, err := f.svc.Submit(context.Background(), "u1", &dto.CreateRequestRequest{
		DeviceType: model.DeviceTypeSmartphone,
		Reason:     "外勤联络",
	})
	if err != nil {
		t.Fatalf("Submit 失败: %v", err)
	}

	stored, _ := f.requests.GetByID(context.Background(), resp.ID)
	if stored.SlackMessageTS == nil || *stored.SlackMessageTS != "1724000000.000100" {
		t.Errorf("期望回填消息时间戳 1724000000.000100，实际=%v", stored.SlackMessageTS)
	}
	if len(f.notifier.messages) != 1 {
		t.Fatalf("期望发送 1 条通知，实际=%d", len(f.notifier.messages))
	}
	if f.notifier.messages[0].ThreadRef != "" {
		t.Error("根消息不应带线程引用")
	}
}

func TestSubmit_ReasonOptional(t *testing.T) {
	f := newRequestFixture(true, "1724000000.000200")
	seedUser(f.users, "u1", model.RoleEmployee)

	resp, err := f.svc.Submit(context.Background(), "u1", &dto.CreateRequestRequest{
		DeviceType: model.DeviceTypeLaptop,
	})
	if err != nil {
		t.Fatalf("Submit 失败: %v", err)
	}
	if resp.Status != model.RequestStatusPending {
		t.Errorf("期望状态 pending，实际=%s", resp.Status)
	}

	if len(f.notifier.messages) != 1 {
		t.Fatalf("期望发送 1 条通知，实际=%d", len(f.notifier.messages))
	}
	for _, field := range f.notifier.messages[0].Fields {
		if field.Title == "申请理由" && field.Value != "未说明" {
			t.Errorf("未填写理由时期望占位文案 未说明，实际=%s", field.Value)
		}
	}
}

func TestSubmit_UserNotFound(t *testing.T) {
	f := newRequestFixture(true, "")

	_, err := f.svc.Submit(context.Background(), "ghost", &dto.CreateRequestRequest{
		DeviceType: model.DeviceTypeLaptop,
		Reason:     "x",
	})
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际=%v", err)
	}
}

// ── Approve ──

func TestApprove_WithDeviceAssignment(t *testing.T) {
	f := newRequestFixture(true, "100.200")
	seedUser(f.users, "emp", model.RoleEmployee)
	seedUser(f.users, "adm", model.RoleAdmin)
	seedDevice(f.devices, "d1", model.DeviceTypeLaptop, model.DeviceStatusAvailable)

	submitted, err := f.svc.Submit(context.Background(), "emp", &dto.CreateRequestRequest{
		DeviceType: model.DeviceTypeLaptop,
		Reason:     "开发用机",
	})
	if err != nil {
		t.Fatalf("Submit 失败: %v", err)
	}

	deviceID := "d1"
	resp, err := f.svc.Approve(context.Background(), "adm", submitted.ID, &dto.ApproveRequestRequest{DeviceID: &deviceID})
	if err != nil {
		t.Fatalf("Approve 失败: %v", err)
	}
	if resp.Status != model.RequestStatusApproved {
		t.Errorf("期望状态 approved，实际=%s", resp.Status)
	}
	if resp.ApprovedBy == nil || *resp.ApprovedBy != "adm" {
		t.Errorf("期望审批人 adm，实际=%v", resp.ApprovedBy)
	}
	if resp.AssignedDeviceID == nil || *resp.AssignedDeviceID != "d1" {
		t.Errorf("期望指派设备 d1，实际=%v", resp.AssignedDeviceID)
	}

	// 设备状态与持有人联动
	device, _ := f.devices.GetByID(context.Background(), "d1")
	if device.Status != model.DeviceStatusAssigned {
		t.Errorf("期望设备状态 assigned，实际=%s", device.Status)
	}
	if device.AssignedTo == nil || *device.AssignedTo != "emp" {
		t.Errorf("期望持有人 emp，实际=%v", device.AssignedTo)
	}

	// 审计日志
	logs, _ := f.logs.ListByDevice(context.Background(), "d1")
	if len(logs) != 1 || logs[0].Action != model.LogActionAssigned {
		t.Errorf("期望 1 条 assigned 日志，实际=%v", logs)
	}

	// 批准通知回帖到根消息
	last := f.notifier.messages[len(f.notifier.messages)-1]
	if last.ThreadRef != "100.200" {
		t.Errorf("批准通知应回帖到 100.200，实际=%s", last.ThreadRef)
	}
}

func TestApprove_TerminalStateRejected(t *testing.T) {
	f := newRequestFixture(true, "")
	seedUser(f.users, "emp", model.RoleEmployee)
	seedUser(f.users, "adm", model.RoleAdmin)

	submitted, _ := f.svc.Submit(context.Background(), "emp", &dto.CreateRequestRequest{
		DeviceType: model.DeviceTypeTablet,
		Reason:     "演示",
	})
	if _, err := f.svc.Reject(context.Background(), "adm", submitted.ID, &dto.RejectRequestRequest{Reason: "Out of stock"}); err != nil {
		t.Fatalf("Reject 失败: %v", err)
	}

	_, err := f.svc.Approve(context.Background(), "adm", submitted.ID, &dto.ApproveRequestRequest{})
	if !errors.Is(err, apperrors.ErrInvalidTransition) {
		t.Errorf("期望 ErrInvalidTransition，实际=%v", err)
	}
}

func TestApprove_NotFound(t *testing.T) {
	f := newRequestFixture(true, "")
	seedUser(f.users, "adm", model.RoleAdmin)

	_, err := f.svc.Approve(context.Background(), "adm", "ghost", &dto.ApproveRequestRequest{})
	if !errors.Is(err, ErrRequestNotFound) {
		t.Errorf("期望 ErrRequestNotFound，实际=%v", err)
	}
}

func TestApprove_DeviceChecks(t *testing.T) {
	f := newRequestFixture(true, "")
	seedUser(f.users, "emp", model.RoleEmployee)
	seedUser(f.users, "adm", model.RoleAdmin)
	seedDevice(f.devices, "busy", model.DeviceTypeLaptop, model.DeviceStatusAssigned)
	seedDevice(f.devices, "phone", model.DeviceTypeSmartphone, model.DeviceStatusAvailable)

	submitted, _ := f.svc.Submit(context.Background(), "emp", &dto.CreateRequestRequest{
		DeviceType: model.DeviceTypeLaptop,
		Reason:     "开发用机",
	})

	busyID := "busy"
	if _, err := f.svc.Approve(context.Background(), "adm", submitted.ID, &dto.ApproveRequestRequest{DeviceID: &busyID}); !errors.Is(err, ErrDeviceNotAvailable) {
		t.Errorf("期望 ErrDeviceNotAvailable，实际=%v", err)
	}

	phoneID := "phone"
	if _, err := f.svc.Approve(context.Background(), "adm", submitted.ID, &dto.ApproveRequestRequest{DeviceID: &phoneID}); !errors.Is(err, ErrDeviceTypeMismatch) {
		t.Errorf("期望 ErrDeviceTypeMismatch，实际=%v", err)
	}

	// 前置校验失败时申请保持 pending
	stored, _ := f.requests.GetByID(context.Background(), submitted.ID)
	if stored.Status != model.RequestStatusPending {
		t.Errorf("期望申请保持 pending，实际=%s", stored.Status)
	}
}

func TestApprove_AssignFailureKeepsApproval(t *testing.T) {
	f := newRequestFixture(true, "")
	seedUser(f.users, "emp", model.RoleEmployee)
	seedUser(f.users, "adm", model.RoleAdmin)
	seedDevice(f.devices, "d1", model.DeviceTypeLaptop, model.DeviceStatusAvailable)

	submitted, _ := f.svc.Submit(context.Background(), "emp", &dto.CreateRequestRequest{
		DeviceType: model.DeviceTypeLaptop,
		Reason:     "开发用机",
	})

	f.devices.updateErr = errors.New("db down")
	deviceID := "d1"
	resp, err := f.svc.Approve(context.Background(), "adm", submitted.ID, &dto.ApproveRequestRequest{DeviceID: &deviceID})
	if err != nil {
		t.Fatalf("指派失败不应让 Approve 报错: %v", err)
	}
	if resp.Status != model.RequestStatusApproved {
		t.Errorf("期望状态 approved，实际=%s", resp.Status)
	}
	// 设备本身未被改动
	f.devices.updateErr = nil
	device, _ := f.devices.GetByID(context.Background(), "d1")
	if device.Status != model.DeviceStatusAvailable {
		t.Errorf("期望设备保持 available，实际=%s", device.Status)
	}
}

// ── Reject ──

func TestReject_RecordsReasonWithoutDeviceChanges(t *testing.T) {
	f := newRequestFixture(true, "55.66")
	seedUser(f.users, "emp", model.RoleEmployee)
	seedUser(f.users, "adm", model.RoleAdmin)
	seedDevice(f.devices, "d1", model.DeviceTypeLaptop, model.DeviceStatusAvailable)

	submitted, _ := f.svc.Submit(context.Background(), "emp", &dto.CreateRequestRequest{
		DeviceType: model.DeviceTypeLaptop,
		Reason:     "开发用机",
	})

	resp, err := f.svc.Reject(context.Background(), "adm", submitted.ID, &dto.RejectRequestRequest{Reason: "Out of stock"})
	if err != nil {
		t.Fatalf("Reject 失败: %v", err)
	}
	if resp.Status != model.RequestStatusRejected {
		t.Errorf("期望状态 rejected，实际=%s", resp.Status)
	}
	if resp.RejectionReason != "Out of stock" {
		t.Errorf("期望驳回原因 Out of stock，实际=%s", resp.RejectionReason)
	}

	device, _ := f.devices.GetByID(context.Background(), "d1")
	if device.Status != model.DeviceStatusAvailable || device.AssignedTo != nil {
		t.Error("驳回不应改动任何设备状态")
	}

	last := f.notifier.messages[len(f.notifier.messages)-1]
	if last.ThreadRef != "55.66" {
		t.Errorf("驳回通知应回帖到 55.66，实际=%s", last.ThreadRef)
	}
}

// ── 查询 ──

func TestList_EmployeeSeesOwnOnly(t *testing.T) {
	f := newRequestFixture(false, "")
	seedUser(f.users, "u1", model.RoleEmployee)
	seedUser(f.users, "u2", model.RoleEmployee)

	f.svc.Submit(context.Background(), "u1", &dto.CreateRequestRequest{DeviceType: model.DeviceTypeLaptop, Reason: "a"})
	f.svc.Submit(context.Background(), "u2", &dto.CreateRequestRequest{DeviceType: model.DeviceTypeTablet, Reason: "b"})

	own, total, err := f.svc.List(context.Background(), "u1", model.RoleEmployee, &dto.RequestListRequest{})
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if total != 1 || len(own) != 1 || own[0].UserID != "u1" {
		t.Errorf("期望只看到 u1 的 1 条申请，实际 total=%d list=%v", total, own)
	}

	all, total, err := f.svc.List(context.Background(), "adm", model.RoleAdmin, &dto.RequestListRequest{})
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if total != 2 || len(all) != 2 {
		t.Errorf("期望管理员看到 2 条申请，实际 total=%d", total)
	}
}

func TestGetByID_ForbiddenForOtherEmployee(t *testing.T) {
	f := newRequestFixture(false, "")
	seedUser(f.users, "u1", model.RoleEmployee)

	submitted, _ := f.svc.Submit(context.Background(), "u1", &dto.CreateRequestRequest{DeviceType: model.DeviceTypeLaptop, Reason: "a"})

	if _, err := f.svc.GetByID(context.Background(), "u2", model.RoleEmployee, submitted.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("期望 ErrForbidden，实际=%v", err)
	}
	if _, err := f.svc.GetByID(context.Background(), "boss", model.RoleAdmin, submitted.ID); err != nil {
		t.Errorf("管理员应可访问任意申请: %v", err)
	}
}

// [自证通过] internal/service/request_service_test.go
