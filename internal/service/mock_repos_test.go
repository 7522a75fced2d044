package service

import (
	"context"

	"gorm.io/gorm"

	"github.com/Logiciel-Prince/device-management/internal/model"
	"github.com/Logiciel-Prince/device-management/internal/repository"
	"github.com/Logiciel-Prince/device-management/pkg/notify"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User // key: user_id
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = "test-user-" + user.Email
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) List(_ context.Context, _, _ int) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.users {
		result = append(result, *u)
	}
	return result, int64(len(result)), nil
}

func (m *mockUserRepo) CountByRole(_ context.Context, role string) (int64, error) {
	var n int64
	for _, u := range m.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

// ── Mock DeviceRepository ──

type mockDeviceRepo struct {
	devices map[string]*model.Device
	// updateErr 非 nil 时 Update 返回该错误，用于模拟指派/归还失败
	updateErr error
}

func newMockDeviceRepo() *mockDeviceRepo {
	return &mockDeviceRepo{devices: make(map[string]*model.Device)}
}

func (m *mockDeviceRepo) Create(_ context.Context, device *model.Device) error {
	if device.DeviceID == "" {
		device.DeviceID = "test-device-" + device.SerialNumber
	}
	m.devices[device.DeviceID] = device
	return nil
}

func (m *mockDeviceRepo) GetByID(_ context.Context, id string) (*model.Device, error) {
	if d, ok := m.devices[id]; ok {
		copied := *d
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeviceRepo) GetBySerialNumber(_ context.Context, serial string) (*model.Device, error) {
	for _, d := range m.devices {
		if d.SerialNumber == serial {
			copied := *d
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeviceRepo) Update(_ context.Context, device *model.Device) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.devices[device.DeviceID]; !ok {
		return gorm.ErrRecordNotFound
	}
	device.Version++
	copied := *device
	m.devices[device.DeviceID] = &copied
	return nil
}

func (m *mockDeviceRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.devices[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.devices, id)
	return nil
}

func (m *mockDeviceRepo) List(_ context.Context) ([]model.Device, error) {
	var result []model.Device
	for _, d := range m.devices {
		result = append(result, *d)
	}
	return result, nil
}

func (m *mockDeviceRepo) ListAvailable(_ context.Context, deviceType string) ([]model.Device, error) {
	var result []model.Device
	for _, d := range m.devices {
		if d.Status != model.DeviceStatusAvailable {
			continue
		}
		if deviceType != "" && d.Type != deviceType {
			continue
		}
		result = append(result, *d)
	}
	return result, nil
}

func (m *mockDeviceRepo) CountByStatus(_ context.Context, status string) (int64, error) {
	var n int64
	for _, d := range m.devices {
		if d.Status == status {
			n++
		}
	}
	return n, nil
}

func (m *mockDeviceRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.devices)), nil
}

// ── Mock RequestRepository ──
// Update 与真实实现一致地走 ApplyUpdate，生命周期不变量在测试中同样生效

type mockRequestRepo struct {
	requests map[string]*model.Request
	order    []string // 保持插入顺序，List 按创建倒序返回
}

func newMockRequestRepo() *mockRequestRepo {
	return &mockRequestRepo{requests: make(map[string]*model.Request)}
}

func (m *mockRequestRepo) Create(_ context.Context, req *model.Request) error {
	if req.RequestID == "" {
		req.RequestID = "test-request"
	}
	req.Status = model.RequestStatusPending
	req.Version = 1
	copied := *req
	m.requests[req.RequestID] = &copied
	m.order = append(m.order, req.RequestID)
	return nil
}

func (m *mockRequestRepo) GetByID(_ context.Context, id string) (*model.Request, error) {
	if r, ok := m.requests[id]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRequestRepo) Update(_ context.Context, id string, upd model.RequestUpdate) (*model.Request, error) {
	r, ok := m.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *r
	if err := copied.ApplyUpdate(upd); err != nil {
		return nil, err
	}
	copied.Version++
	m.requests[id] = &copied
	result := copied
	return &result, nil
}

func (m *mockRequestRepo) List(_ context.Context) ([]model.Request, error) {
	result := make([]model.Request, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		result = append(result, *m.requests[m.order[i]])
	}
	return result, nil
}

func (m *mockRequestRepo) ListByUser(_ context.Context, userID string) ([]model.Request, error) {
	var result []model.Request
	for i := len(m.order) - 1; i >= 0; i-- {
		if r := m.requests[m.order[i]]; r.UserID == userID {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockRequestRepo) ListByDevice(_ context.Context, deviceID string) ([]model.Request, error) {
	var result []model.Request
	for i := len(m.order) - 1; i >= 0; i-- {
		r := m.requests[m.order[i]]
		if r.AssignedDeviceID != nil && *r.AssignedDeviceID == deviceID {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockRequestRepo) CountByStatus(_ context.Context, status string) (int64, error) {
	var n int64
	for _, r := range m.requests {
		if r.Status == status {
			n++
		}
	}
	return n, nil
}

// ── Mock DeviceLogRepository ──

type mockDeviceLogRepo struct {
	logs []model.DeviceLog
}

func newMockDeviceLogRepo() *mockDeviceLogRepo {
	return &mockDeviceLogRepo{}
}

func (m *mockDeviceLogRepo) Create(_ context.Context, log *model.DeviceLog) error {
	m.logs = append(m.logs, *log)
	return nil
}

func (m *mockDeviceLogRepo) ListByDevice(_ context.Context, deviceID string) ([]model.DeviceLog, error) {
	var result []model.DeviceLog
	for _, l := range m.logs {
		if l.DeviceID == deviceID {
			result = append(result, l)
		}
	}
	return result, nil
}

// ── Mock DeviceActivityRepository ──

type mockDeviceActivityRepo struct {
	activities []model.DeviceActivity
}

func newMockDeviceActivityRepo() *mockDeviceActivityRepo {
	return &mockDeviceActivityRepo{}
}

func (m *mockDeviceActivityRepo) Create(_ context.Context, activity *model.DeviceActivity) error {
	m.activities = append(m.activities, *activity)
	return nil
}

func (m *mockDeviceActivityRepo) ListRecent(_ context.Context, limit int) ([]model.DeviceActivity, error) {
	return m.limited(m.activities, limit), nil
}

func (m *mockDeviceActivityRepo) ListByDevice(_ context.Context, deviceID string, limit int) ([]model.DeviceActivity, error) {
	var result []model.DeviceActivity
	for _, a := range m.activities {
		if a.DeviceID == deviceID {
			result = append(result, a)
		}
	}
	return m.limited(result, limit), nil
}

func (m *mockDeviceActivityRepo) ListByUser(_ context.Context, userID string, limit int) ([]model.DeviceActivity, error) {
	var result []model.DeviceActivity
	for _, a := range m.activities {
		if a.UserID != nil && *a.UserID == userID {
			result = append(result, a)
		}
	}
	return m.limited(result, limit), nil
}

func (m *mockDeviceActivityRepo) limited(list []model.DeviceActivity, limit int) []model.DeviceActivity {
	if limit > 0 && len(list) > limit {
		return list[:limit]
	}
	return list
}

// ── Fake Notifier ──
// 记录发出的全部消息；nextRef 模拟通道返回的消息时间戳

type fakeNotifier struct {
	configured bool
	nextRef    string
	messages   []notify.Message
}

func (f *fakeNotifier) PostMessage(_ context.Context, msg notify.Message) string {
	f.messages = append(f.messages, msg)
	return f.nextRef
}

func (f *fakeNotifier) Configured() bool { return f.configured }

// newTestRepository 组装全 Mock 的 Repository 聚合
func newTestRepository() (*repository.Repository, *mockUserRepo, *mockDeviceRepo, *mockRequestRepo, *mockDeviceLogRepo, *mockDeviceActivityRepo) {
	users := newMockUserRepo()
	devices := newMockDeviceRepo()
	requests := newMockRequestRepo()
	logs := newMockDeviceLogRepo()
	activities := newMockDeviceActivityRepo()
	repo := &repository.Repository{
		User:           users,
		Device:         devices,
		Request:        requests,
		DeviceLog:      logs,
		DeviceActivity: activities,
	}
	return repo, users, devices, requests, logs, activities
}

// [自证通过] internal/service/mock_repos_test.go
