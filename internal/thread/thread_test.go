package thread

import (
	"strings"
	"testing"
	"time"

	"github.com/Logiciel-Prince/device-management/internal/model"
)

func strPtr(s string) *string        { return &s }
func timePtr(t time.Time) *time.Time { return &t }

// ── GenerateThreadID / IsValidThreadID ──

func TestGenerateThreadID_Format(t *testing.T) {
	id := GenerateThreadID("req")

	if !strings.HasPrefix(id, "req_") {
		t.Errorf("期望前缀 req_，实际=%s", id)
	}
	if !IsValidThreadID(id) {
		t.Errorf("生成的线程 ID 应通过格式校验: %s", id)
	}
}

func TestGenerateThreadID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := GenerateThreadID("req")
		if seen[id] {
			t.Fatalf("线程 ID 出现重复: %s", id)
		}
		seen[id] = true
	}
}

func TestIsValidThreadID(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  bool
	}{
		{"标准格式", "req_9f1c2d3e-4a5b-4c6d-8e7f-0a1b2c3d4e5f", true},
		{"其他前缀", "thread_9f1c2d3e-4a5b-4c6d-8e7f-0a1b2c3d4e5f", true},
		{"空字符串", "", false},
		{"缺少下划线", "req9f1c2d3e-4a5b-4c6d-8e7f-0a1b2c3d4e5f", false},
		{"缺少前缀", "_9f1c2d3e-4a5b-4c6d-8e7f-0a1b2c3d4e5f", false},
		{"UUID 段损坏", "req_9f1c2d3e-4a5b-4c6d-8e7f", false},
		{"UUID 大写", "req_9F1C2D3E-4A5B-4C6D-8E7F-0A1B2C3D4E5F", false},
		{"前缀含数字", "req1_9f1c2d3e-4a5b-4c6d-8e7f-0a1b2c3d4e5f", false},
		{"纯 UUID", "9f1c2d3e-4a5b-4c6d-8e7f-0a1b2c3d4e5f", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsValidThreadID(tc.input); got != tc.want {
				t.Errorf("IsValidThreadID(%q)=%v，期望=%v", tc.input, got, tc.want)
			}
		})
	}
}

func TestPrefix(t *testing.T) {
	p, ok := Prefix("req_9f1c2d3e-4a5b-4c6d-8e7f-0a1b2c3d4e5f")
	if !ok || p != "req" {
		t.Errorf("期望前缀 req，实际=%q ok=%v", p, ok)
	}

	if _, ok := Prefix("not-a-thread-id"); ok {
		t.Error("非法线程 ID 不应解析出前缀")
	}
}

// ── ResolveReturnThread ──

// approvedRequest 构造一条已审批、指派了设备且带线程 ID 的申请
func approvedRequest(id, deviceID string, approvedAt time.Time) model.Request {
	return model.Request{
		RequestID:        id,
		UserID:           "user-001",
		DeviceType:       model.DeviceTypeLaptop,
		Status:           model.RequestStatusApproved,
		ApprovedBy:       strPtr("admin-001"),
		ApprovedAt:       timePtr(approvedAt),
		AssignedDeviceID: strPtr(deviceID),
		SlackThreadID:    strPtr(GenerateThreadID("req")),
		BaseModel:        model.BaseModel{CreatedAt: approvedAt.Add(-time.Hour)},
	}
}

func TestResolveReturnThread_PicksLatestApproval(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	requests := []model.Request{
		approvedRequest("req-1", "dev-1", base),
		approvedRequest("req-3", "dev-1", base.Add(48*time.Hour)),
		approvedRequest("req-2", "dev-1", base.Add(24*time.Hour)),
	}

	got := ResolveReturnThread(requests, "dev-1")
	if got == nil {
		t.Fatal("期望解析出申请，实际为 nil")
	}
	if got.RequestID != "req-3" {
		t.Errorf("期望最近审批的 req-3，实际=%s", got.RequestID)
	}
}

func TestResolveReturnThread_NoMatch(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	requests := []model.Request{
		approvedRequest("req-1", "dev-other", base),
	}

	if got := ResolveReturnThread(requests, "dev-1"); got != nil {
		t.Errorf("无匹配申请时应返回 nil，实际=%s", got.RequestID)
	}
	if got := ResolveReturnThread(nil, "dev-1"); got != nil {
		t.Error("空申请列表应返回 nil")
	}
}

func TestResolveReturnThread_SkipsNonApproved(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	pending := approvedRequest("req-1", "dev-1", base)
	pending.Status = model.RequestStatusPending
	pending.ApprovedAt = nil
	pending.ApprovedBy = nil

	rejected := approvedRequest("req-2", "dev-1", base)
	rejected.Status = model.RequestStatusRejected

	requests := []model.Request{pending, rejected}
	if got := ResolveReturnThread(requests, "dev-1"); got != nil {
		t.Errorf("非 approved 申请不应成为候选，实际=%s", got.RequestID)
	}
}

func TestResolveReturnThread_SkipsWithoutThreadRef(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	noRef := approvedRequest("req-1", "dev-1", base)
	noRef.SlackThreadID = nil
	noRef.SlackMessageTS = nil

	if got := ResolveReturnThread([]model.Request{noRef}, "dev-1"); got != nil {
		t.Errorf("无会话线索的申请不应成为候选，实际=%s", got.RequestID)
	}
}

func TestResolveReturnThread_LegacyRefOnly(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	// 旧部署的申请只有消息时间戳，没有线程 ID
	legacy := approvedRequest("req-1", "dev-1", base)
	legacy.SlackThreadID = nil
	legacy.SlackMessageTS = strPtr("1726000000.000100")

	got := ResolveReturnThread([]model.Request{legacy}, "dev-1")
	if got == nil || got.RequestID != "req-1" {
		t.Fatal("仅持有旧式消息引用的申请应可被解析")
	}
}

func TestResolveReturnThread_FallbackToCreatedAt(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	older := approvedRequest("req-1", "dev-1", base)
	older.ApprovedAt = nil
	older.CreatedAt = base

	newer := approvedRequest("req-2", "dev-1", base)
	newer.ApprovedAt = nil
	newer.CreatedAt = base.Add(2 * time.Hour)

	got := ResolveReturnThread([]model.Request{older, newer}, "dev-1")
	if got == nil || got.RequestID != "req-2" {
		t.Fatal("审批时间缺失时应按创建时间取最近一条")
	}
}

func TestResolveReturnThread_DeterministicTieBreak(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	// 审批时间与创建时间完全相同：按申请 ID 字典序取定
	a := approvedRequest("req-a", "dev-1", base)
	b := approvedRequest("req-b", "dev-1", base)
	a.CreatedAt = base.Add(-time.Hour)
	b.CreatedAt = base.Add(-time.Hour)

	got1 := ResolveReturnThread([]model.Request{a, b}, "dev-1")
	got2 := ResolveReturnThread([]model.Request{b, a}, "dev-1")
	if got1 == nil || got2 == nil {
		t.Fatal("期望解析出申请")
	}
	if got1.RequestID != got2.RequestID {
		t.Errorf("时间戳冲突时结果应与输入顺序无关: %s vs %s", got1.RequestID, got2.RequestID)
	}
	if got1.RequestID != "req-a" {
		t.Errorf("期望按申请 ID 字典序取 req-a，实际=%s", got1.RequestID)
	}
}

func TestBackfillThreadID(t *testing.T) {
	if got := BackfillThreadID("abc-123"); got != "req_abc-123" {
		t.Errorf("期望 req_abc-123，实际=%s", got)
	}
}
