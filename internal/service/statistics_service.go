package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tertcoder/garbage-app-backend/internal/dto"
	"github.com/tertcoder/garbage-app-backend/internal/model"
	"github.com/tertcoder/garbage-app-backend/internal/repository"
)

// upcomingWindow 「近期收运」统计窗口
const upcomingWindow = 7 * 24 * time.Hour

// StatisticsService 仪表盘统计接口
type StatisticsService interface {
	AdminStats(ctx context.Context, caller Caller) (*dto.AdminStatsResponse, error)
	UserStats(ctx context.Context, caller Caller) (*dto.UserStatsResponse, error)
}

type statisticsService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewStatisticsService 创建 StatisticsService 实例
func NewStatisticsService(repo *repository.Repository, logger *zap.Logger) StatisticsService {
	return &statisticsService{repo: repo, logger: logger, now: time.Now}
}

// AdminStats 全量统计；requests_by_zone 跳过区域已删除的申请
func (s *statisticsService) AdminStats(ctx context.Context, caller Caller) (*dto.AdminStatsResponse, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}

	resp := &dto.AdminStatsResponse{
		RequestsByStatus: make(map[string]int64),
		RequestsByZone:   make(map[string]int64),
	}
	var err error

	if resp.TotalUsers, err = s.repo.User.Count(ctx); err != nil {
		s.logger.Error("统计用户数失败", zap.Error(err))
		return nil, err
	}
	if resp.TotalAreas, err = s.repo.Area.Count(ctx); err != nil {
		s.logger.Error("统计区域数失败", zap.Error(err))
		return nil, err
	}
	if resp.TotalRequests, err = s.repo.SpecialRequest.Count(ctx, repository.RequestQuery{}); err != nil {
		s.logger.Error("统计申请数失败", zap.Error(err))
		return nil, err
	}
	if resp.UpcomingCollections, err = s.countUpcoming(ctx); err != nil {
		return nil, err
	}

	byStatus, err := s.repo.SpecialRequest.CountByStatus(ctx)
	if err != nil {
		s.logger.Error("按状态统计申请失败", zap.Error(err))
		return nil, err
	}
	for _, row := range byStatus {
		resp.RequestsByStatus[string(row.Status)] = row.Count
	}
	resp.PendingRequests = resp.RequestsByStatus[string(model.RequestStatusPending)]

	// 按片区统计：逐条关联区域
	areas, err := s.repo.Area.ListAll(ctx)
	if err != nil {
		s.logger.Error("查询区域失败", zap.Error(err))
		return nil, err
	}
	zoneOf := make(map[string]string, len(areas))
	for _, a := range areas {
		zoneOf[a.AreaID] = a.Zone
	}

	reqs, err := s.repo.SpecialRequest.ListAll(ctx)
	if err != nil {
		s.logger.Error("查询申请失败", zap.Error(err))
		return nil, err
	}
	for _, r := range reqs {
		zone, ok := zoneOf[r.AreaID]
		if !ok {
			continue
		}
		resp.RequestsByZone[zone]++
	}

	return resp, nil
}

// UserStats 近期收运数为全局数量，不按调用方所在区域过滤
func (s *statisticsService) UserStats(ctx context.Context, caller Caller) (*dto.UserStatsResponse, error) {
	if err := caller.RequireAuthenticated(); err != nil {
		return nil, err
	}

	pending, err := s.repo.SpecialRequest.Count(ctx, repository.RequestQuery{
		UserID: caller.UserID,
		Status: model.RequestStatusPending,
	})
	if err != nil {
		s.logger.Error("统计待处理申请失败", zap.String("user_id", caller.UserID), zap.Error(err))
		return nil, err
	}

	upcoming, err := s.countUpcoming(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.UserStatsResponse{
		PendingRequests:     pending,
		UpcomingCollections: upcoming,
	}, nil
}

func (s *statisticsService) countUpcoming(ctx context.Context) (int64, error) {
	now := s.now().UTC()
	n, err := s.repo.Schedule.CountBetween(ctx, now, now.Add(upcomingWindow))
	if err != nil {
		s.logger.Error("统计近期收运失败", zap.Error(err))
		return 0, err
	}
	return n, nil
}
