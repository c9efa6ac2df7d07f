package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/tertcoder/garbage-app-backend/config"
	"github.com/tertcoder/garbage-app-backend/internal/dto"
	"github.com/tertcoder/garbage-app-backend/internal/model"
	"github.com/tertcoder/garbage-app-backend/pkg/jwt"
)

// ── Mock TokenBlacklist ──

type mockBlacklist struct {
	tokens map[string]time.Duration
}

func newMockBlacklist() *mockBlacklist {
	return &mockBlacklist{tokens: make(map[string]time.Duration)}
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	m.tokens[jti] = ttl
	return nil
}

func (m *mockBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	_, ok := m.tokens[jti]
	return ok, nil
}

// ── 测试辅助 ──

func setupTestAuthService() (AuthService, *testRepos, *mockBlacklist, *jwt.Manager) {
	tr := newTestRepos()
	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret-key-for-unit-testing-2026",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 7 * 24 * time.Hour,
		},
	}
	jwtMgr := jwt.NewManager(&cfg.Auth)
	bl := newMockBlacklist()
	return NewAuthService(cfg, tr.repo, jwtMgr, bl, zap.NewNop()), tr, bl, jwtMgr
}

func seedLoginUser(tr *testRepos, email, password string, active bool) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	u := &model.User{
		FullName:     "Alice",
		Email:        email,
		PasswordHash: string(hash),
		PhoneNumber:  "0700000001",
		Roles:        model.StringArray{"USER"},
		Active:       active,
	}
	_ = tr.users.Create(context.Background(), u)
	return u
}

// ── Register 测试 ──

func TestAuthService_Register_Success(t *testing.T) {
	svc, tr, _, jwtMgr := setupTestAuthService()

	resp, err := svc.Register(context.Background(), &dto.RegisterRequest{
		FullName:    "Alice",
		Email:       "alice@example.com",
		Password:    "secret123",
		PhoneNumber: "0700000001",
	})
	if err != nil {
		t.Fatalf("Register 应成功: %v", err)
	}
	if resp.TokenType != "Bearer" || resp.ExpiresIn != 900 {
		t.Errorf("Token 元信息不正确: %s / %d", resp.TokenType, resp.ExpiresIn)
	}
	if len(resp.User.Roles) != 1 || resp.User.Roles[0] != "USER" {
		t.Errorf("新用户默认角色应为 USER，实际 %v", resp.User.Roles)
	}

	stored := tr.users.users[resp.User.UserID]
	if stored == nil || stored.PasswordHash == "secret123" {
		t.Fatal("密码应以哈希形式存储")
	}

	claims, err := jwtMgr.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("AccessToken 应可解析: %v", err)
	}
	if claims.UserID != resp.User.UserID || claims.TokenType != jwt.TokenTypeAccess {
		t.Errorf("AccessToken 声明不正确: %+v", claims)
	}
}

func TestAuthService_Register_Duplicates(t *testing.T) {
	svc, tr, _, _ := setupTestAuthService()
	seedLoginUser(tr, "alice@example.com", "secret123", true)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		FullName: "Alice 2", Email: "alice@example.com", Password: "secret123", PhoneNumber: "0799999999",
	})
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("期望 ErrEmailExists，实际: %v", err)
	}

	_, err = svc.Register(context.Background(), &dto.RegisterRequest{
		FullName: "Alice 3", Email: "other@example.com", Password: "secret123", PhoneNumber: "0700000001",
	})
	if !errors.Is(err, ErrPhoneExists) {
		t.Errorf("期望 ErrPhoneExists，实际: %v", err)
	}
}

func TestAuthService_Register_ConcurrentDuplicate(t *testing.T) {
	tests := []struct {
		name    string
		winner  *model.User
		wantErr error
	}{
		{"手机号冲突", &model.User{UserID: "racer", Email: "racer@example.com", PhoneNumber: "0700000009"}, ErrPhoneExists},
		{"邮箱冲突", &model.User{UserID: "racer", Email: "new@example.com", PhoneNumber: "0700000042"}, ErrEmailExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, tr, _, _ := setupTestAuthService()
			tr.users.conflict = tt.winner

			_, err := svc.Register(context.Background(), &dto.RegisterRequest{
				FullName: "New", Email: "New@Example.com", Password: "secret123", PhoneNumber: "0700000009",
			})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("期望 %v，实际: %v", tt.wantErr, err)
			}
		})
	}
}

// ── Login 测试 ──

func TestAuthService_Login(t *testing.T) {
	svc, tr, _, _ := setupTestAuthService()
	seedLoginUser(tr, "alice@example.com", "secret123", true)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "alice@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("应返回 Token 对")
	}

	if _, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "alice@example.com", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("错误密码期望 ErrInvalidCredentials，实际: %v", err)
	}
	if _, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "nobody@example.com", Password: "secret123"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("未知邮箱期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestAuthService_Login_EmailCaseInsensitive(t *testing.T) {
	svc, _, _, _ := setupTestAuthService()

	if _, err := svc.Register(context.Background(), &dto.RegisterRequest{
		FullName:    "Bob",
		Email:       "  Bob@Example.COM ",
		Password:    "secret123",
		PhoneNumber: "0700000009",
	}); err != nil {
		t.Fatalf("Register 应成功: %v", err)
	}

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "bob@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("小写邮箱登录应成功: %v", err)
	}
	if resp.User.Email != "bob@example.com" {
		t.Errorf("邮箱应以小写存储，实际=%s", resp.User.Email)
	}

	if _, err := svc.Register(context.Background(), &dto.RegisterRequest{
		FullName:    "Bob2",
		Email:       "BOB@example.com",
		Password:    "secret123",
		PhoneNumber: "0700000010",
	}); !errors.Is(err, ErrEmailExists) {
		t.Errorf("大小写不同的重复邮箱期望 ErrEmailExists，实际: %v", err)
	}
}

func TestAuthService_Login_Inactive(t *testing.T) {
	svc, tr, _, _ := setupTestAuthService()
	seedLoginUser(tr, "alice@example.com", "secret123", false)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "alice@example.com", Password: "secret123"})
	if !errors.Is(err, ErrUserInactive) {
		t.Errorf("期望 ErrUserInactive，实际: %v", err)
	}
}

// ── Refresh / Logout 测试 ──

func TestAuthService_Refresh_Rotation(t *testing.T) {
	svc, tr, bl, jwtMgr := setupTestAuthService()
	seedLoginUser(tr, "alice@example.com", "secret123", true)

	login, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "alice@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}

	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh 应成功: %v", err)
	}
	if refreshed.RefreshToken == login.RefreshToken {
		t.Error("应签发新的 RefreshToken")
	}

	old, _ := jwtMgr.ParseToken(login.RefreshToken)
	if _, ok := bl.tokens[old.ID]; !ok {
		t.Error("旧 RefreshToken 应进入黑名单")
	}

	if _, err := svc.Refresh(context.Background(), login.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Errorf("旧 RefreshToken 重放期望 ErrInvalidRefreshToken，实际: %v", err)
	}
}

func TestAuthService_Refresh_RejectsAccessToken(t *testing.T) {
	svc, tr, _, _ := setupTestAuthService()
	seedLoginUser(tr, "alice@example.com", "secret123", true)

	login, _ := svc.Login(context.Background(), &dto.LoginRequest{Email: "alice@example.com", Password: "secret123"})

	if _, err := svc.Refresh(context.Background(), login.AccessToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Errorf("期望 ErrInvalidRefreshToken，实际: %v", err)
	}
	if _, err := svc.Refresh(context.Background(), "garbage"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Errorf("期望 ErrInvalidRefreshToken，实际: %v", err)
	}
}

func TestAuthService_Refresh_DeactivatedUser(t *testing.T) {
	svc, tr, _, _ := setupTestAuthService()
	u := seedLoginUser(tr, "alice@example.com", "secret123", true)

	login, _ := svc.Login(context.Background(), &dto.LoginRequest{Email: "alice@example.com", Password: "secret123"})
	u.Active = false

	if _, err := svc.Refresh(context.Background(), login.RefreshToken); !errors.Is(err, ErrUserInactive) {
		t.Errorf("期望 ErrUserInactive，实际: %v", err)
	}
}

// ── ResolveCaller 测试 ──

func TestAuthService_ResolveCaller(t *testing.T) {
	svc, tr, _, _ := setupTestAuthService()
	u := seedLoginUser(tr, "alice@example.com", "secret123", true)
	u.Roles = model.StringArray{"USER", "ADMIN"}

	caller, err := svc.ResolveCaller(context.Background(), u.UserID)
	if err != nil {
		t.Fatalf("ResolveCaller 应成功: %v", err)
	}
	if caller.UserID != u.UserID || !caller.IsAdmin() {
		t.Errorf("调用方应携带库中角色: %+v", caller)
	}

	// 降级后立即生效
	u.Roles = model.StringArray{"USER"}
	caller, _ = svc.ResolveCaller(context.Background(), u.UserID)
	if caller.IsAdmin() {
		t.Error("角色被收回后不应仍为管理员")
	}

	u.Active = false
	if _, err := svc.ResolveCaller(context.Background(), u.UserID); !errors.Is(err, ErrUserInactive) {
		t.Errorf("停用用户期望 ErrUserInactive，实际: %v", err)
	}
	if _, err := svc.ResolveCaller(context.Background(), "ghost"); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("用户不存在期望 ErrUnauthenticated，实际: %v", err)
	}
}

func TestAuthService_Logout(t *testing.T) {
	svc, tr, bl, jwtMgr := setupTestAuthService()
	seedLoginUser(tr, "alice@example.com", "secret123", true)

	login, _ := svc.Login(context.Background(), &dto.LoginRequest{Email: "alice@example.com", Password: "secret123"})
	access, _ := jwtMgr.ParseToken(login.AccessToken)

	if err := svc.Logout(context.Background(), access.ID, access.ExpiresAt.Time, login.RefreshToken); err != nil {
		t.Fatalf("Logout 应成功: %v", err)
	}
	if len(bl.tokens) != 2 {
		t.Errorf("期望 2 个 jti 进入黑名单，实际 %d", len(bl.tokens))
	}
	if _, err := svc.Refresh(context.Background(), login.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Errorf("登出后 RefreshToken 应失效，实际: %v", err)
	}
}

func TestAuthService_NilBlacklist(t *testing.T) {
	tr := newTestRepos()
	cfg := &config.Config{Auth: config.AuthConfig{
		JWTSecret:       "test-secret-key-for-unit-testing-2026",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
	}}
	svc := NewAuthService(cfg, tr.repo, jwt.NewManager(&cfg.Auth), nil, zap.NewNop())
	seedLoginUser(tr, "alice@example.com", "secret123", true)

	login, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "alice@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}
	if _, err := svc.Refresh(context.Background(), login.RefreshToken); err != nil {
		t.Errorf("无黑名单时 Refresh 应成功: %v", err)
	}
	if err := svc.Logout(context.Background(), "jti", time.Now().Add(time.Minute), login.RefreshToken); err != nil {
		t.Errorf("无黑名单时 Logout 应成功: %v", err)
	}
}
