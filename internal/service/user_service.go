package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tertcoder/garbage-app-backend/internal/dto"
	"github.com/tertcoder/garbage-app-backend/internal/model"
	"github.com/tertcoder/garbage-app-backend/internal/repository"
	apperrors "github.com/tertcoder/garbage-app-backend/pkg/errors"
)

// ── 用户模块业务错误 ──

var (
	ErrUserNotFound     = apperrors.New(apperrors.KindNotFound, 12001, "用户不存在")
	ErrInvalidRole      = apperrors.New(apperrors.KindBadRequest, 12002, "角色无效")
	ErrCannotModifySelf = apperrors.New(apperrors.KindBadRequest, 12003, "不能停用自己或撤销自己的管理员角色")
)

// UserService 用户业务接口
type UserService interface {
	// Me 当前登录用户
	Me(ctx context.Context, caller Caller) (*dto.UserResponse, error)
	GetByID(ctx context.Context, caller Caller, id string) (*dto.UserResponse, error)
	List(ctx context.Context, caller Caller, page *dto.PaginationRequest) (*dto.PageResponse[dto.UserResponse], error)
	// UpdateRoles 整体替换角色集合
	UpdateRoles(ctx context.Context, caller Caller, id string, req *dto.UpdateRolesRequest) (*dto.UserResponse, error)
	SetActive(ctx context.Context, caller Caller, id string, active bool) (*dto.UserResponse, error)
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

func (s *userService) Me(ctx context.Context, caller Caller) (*dto.UserResponse, error) {
	if err := caller.RequireAuthenticated(); err != nil {
		return nil, err
	}
	user, err := s.getUser(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) GetByID(ctx context.Context, caller Caller, id string) (*dto.UserResponse, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) List(ctx context.Context, caller Caller, page *dto.PaginationRequest) (*dto.PageResponse[dto.UserResponse], error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}

	users, total, err := s.repo.User.List(ctx, page.GetOffset(), page.GetSize())
	if err != nil {
		s.logger.Error("查询用户列表失败", zap.Error(err))
		return nil, err
	}

	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, toUserResponse(&users[i]))
	}
	return dto.NewPageResponse(items, page.GetPage(), page.GetSize(), total), nil
}

func (s *userService) UpdateRoles(ctx context.Context, caller Caller, id string, req *dto.UpdateRolesRequest) (*dto.UserResponse, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}

	roles := make(model.StringArray, 0, len(req.Roles))
	for _, r := range uniqueStrings(req.Roles) {
		if !model.Role(r).Valid() {
			return nil, ErrInvalidRole
		}
		roles = append(roles, r)
	}
	if len(roles) == 0 {
		return nil, ErrInvalidRole
	}
	if id == caller.UserID && !roles.Contains(string(model.RoleAdmin)) {
		return nil, ErrCannotModifySelf
	}

	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Roles = roles
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新用户角色失败", zap.String("user_id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("用户角色已更新", zap.String("user_id", id), zap.Strings("roles", roles), zap.String("by", caller.UserID))
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) SetActive(ctx context.Context, caller Caller, id string, active bool) (*dto.UserResponse, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	if id == caller.UserID && !active {
		return nil, ErrCannotModifySelf
	}

	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Active = active
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新用户状态失败", zap.String("user_id", id), zap.Error(err))
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// ── 内部方法 ──

func (s *userService) getUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("user_id", id), zap.Error(err))
		return nil, err
	}
	return user, nil
}

func toUserResponse(user *model.User) dto.UserResponse {
	roles := []string(user.Roles)
	if roles == nil {
		roles = []string{}
	}
	return dto.UserResponse{
		UserID:      user.UserID,
		FullName:    user.FullName,
		Email:       user.Email,
		PhoneNumber: user.PhoneNumber,
		Roles:       roles,
		Active:      user.Active,
		CreatedAt:   formatTime(user.CreatedAt),
		UpdatedAt:   formatTime(user.UpdatedAt),
	}
}
