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
)

// ActivityService 设备动态业务接口
// 动态是仅追加的事实记录，上报时会顺带刷新设备的 last_activity
type ActivityService interface {
	Ingest(ctx context.Context, req *dto.CreateActivityRequest) (*dto.ActivityResponse, error)
	List(ctx context.Context, req *dto.ActivityListRequest) ([]dto.ActivityResponse, error)
}

type activityService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewActivityService 创建 ActivityService 实例
func NewActivityService(repo *repository.Repository, logger *zap.Logger) ActivityService {
	return &activityService{repo: repo, logger: logger}
}

func (s *activityService) Ingest(ctx context.Context, req *dto.CreateActivityRequest) (*dto.ActivityResponse, error) {
	device, err := s.repo.Device.GetByID(ctx, req.DeviceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeviceNotFound
		}
		return nil, err
	}

	var userID *string
	if req.UserID != "" {
		userID = &req.UserID
	}

	activity := &model.DeviceActivity{
		ActivityID:   uuid.New().String(),
		DeviceID:     req.DeviceID,
		UserID:       userID,
		ActivityType: req.ActivityType,
		AppName:      req.AppName,
		Website:      req.Website,
		Duration:     req.Duration,
		Data:         req.Data,
		OccurredAt:   time.Now(),
		CreatedAt:    time.Now(),
	}
	if err := s.repo.DeviceActivity.Create(ctx, activity); err != nil {
		s.logger.Error("记录设备动态失败", zap.Error(err))
		return nil, err
	}

	// 刷新设备活跃时间；失败不影响动态本身
	device.LastActivity = activity.OccurredAt
	if err := s.repo.Device.Update(ctx, device); err != nil {
		s.logger.Warn("刷新设备活跃时间失败",
			zap.String("device_id", device.DeviceID), zap.Error(err))
	}

	resp := toActivityResponse(activity)
	return &resp, nil
}

func (s *activityService) List(ctx context.Context, req *dto.ActivityListRequest) ([]dto.ActivityResponse, error) {
	var (
		activities []model.DeviceActivity
		err        error
	)
	switch {
	case req.DeviceID != "":
		activities, err = s.repo.DeviceActivity.ListByDevice(ctx, req.DeviceID, req.GetLimit())
	case req.UserID != "":
		activities, err = s.repo.DeviceActivity.ListByUser(ctx, req.UserID, req.GetLimit())
	default:
		activities, err = s.repo.DeviceActivity.ListRecent(ctx, req.GetLimit())
	}
	if err != nil {
		s.logger.Error("查询设备动态失败", zap.Error(err))
		return nil, err
	}

	resp := make([]dto.ActivityResponse, 0, len(activities))
	for i := range activities {
		resp = append(resp, toActivityResponse(&activities[i]))
	}
	return resp, nil
}

func toActivityResponse(a *model.DeviceActivity) dto.ActivityResponse {
	resp := dto.ActivityResponse{
		ID:           a.ActivityID,
		DeviceID:     a.DeviceID,
		ActivityType: a.ActivityType,
		AppName:      a.AppName,
		Website:      a.Website,
		Duration:     a.Duration,
		Data:         a.Data,
		OccurredAt:   a.OccurredAt.Format(time.RFC3339),
	}
	if a.UserID != nil {
		resp.UserID = *a.UserID
	}
	return resp
}
