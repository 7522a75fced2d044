package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/Logiciel-Prince/device-management/config"
	"github.com/Logiciel-Prince/device-management/internal/dto"
	"github.com/Logiciel-Prince/device-management/internal/model"
	"github.com/Logiciel-Prince/device-management/internal/repository"
	"github.com/Logiciel-Prince/device-management/pkg/notify"
)

// StatsService 仪表盘统计与集成状态业务接口
type StatsService interface {
	Dashboard(ctx context.Context) (*dto.StatsResponse, error)
	Integrations(ctx context.Context) (*dto.IntegrationStatusResponse, error)
}

type statsService struct {
	cfg      *config.Config
	repo     *repository.Repository
	notifier notify.Notifier
	logger   *zap.Logger
}

// NewStatsService 创建 StatsService 实例
func NewStatsService(
	cfg *config.Config,
	repo *repository.Repository,
	notifier notify.Notifier,
	logger *zap.Logger,
) StatsService {
	return &statsService{
		cfg:      cfg,
		repo:     repo,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *statsService) Dashboard(ctx context.Context) (*dto.StatsResponse, error) {
	resp := &dto.StatsResponse{}

	var err error
	if resp.TotalDevices, err = s.repo.Device.Count(ctx); err != nil {
		return nil, err
	}
	if resp.AvailableDevices, err = s.repo.Device.CountByStatus(ctx, model.DeviceStatusAvailable); err != nil {
		return nil, err
	}
	if resp.AssignedDevices, err = s.repo.Device.CountByStatus(ctx, model.DeviceStatusAssigned); err != nil {
		return nil, err
	}
	if resp.MaintenanceDevices, err = s.repo.Device.CountByStatus(ctx, model.DeviceStatusMaintenance); err != nil {
		return nil, err
	}
	if resp.PendingRequests, err = s.repo.Request.CountByStatus(ctx, model.RequestStatusPending); err != nil {
		return nil, err
	}
	if resp.ApprovedRequests, err = s.repo.Request.CountByStatus(ctx, model.RequestStatusApproved); err != nil {
		return nil, err
	}
	if resp.RejectedRequests, err = s.repo.Request.CountByStatus(ctx, model.RequestStatusRejected); err != nil {
		return nil, err
	}
	if resp.AdminUsers, err = s.repo.User.CountByRole(ctx, model.RoleAdmin); err != nil {
		return nil, err
	}
	var employees int64
	if employees, err = s.repo.User.CountByRole(ctx, model.RoleEmployee); err != nil {
		return nil, err
	}
	resp.TotalUsers = resp.AdminUsers + employees

	return resp, nil
}

func (s *statsService) Integrations(ctx context.Context) (*dto.IntegrationStatusResponse, error) {
	item := dto.IntegrationItem{Configured: s.notifier.Configured()}
	if item.Configured {
		item.Channel = s.cfg.Slack.ChannelID
	}
	return &dto.IntegrationStatusResponse{Slack: item}, nil
}
