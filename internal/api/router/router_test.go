package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tertcoder/garbage-app-backend/config"
	"github.com/tertcoder/garbage-app-backend/internal/api/handler"
	"github.com/tertcoder/garbage-app-backend/internal/model"
	"github.com/tertcoder/garbage-app-backend/internal/repository"
	"github.com/tertcoder/garbage-app-backend/internal/service"
	"github.com/tertcoder/garbage-app-backend/pkg/jwt"
	"github.com/tertcoder/garbage-app-backend/pkg/redis"
)

// ═══════════════════════════════════════════════════════════
// Test Setup：sqlite + miniredis 组装完整路由
// ═══════════════════════════════════════════════════════════

type testServer struct {
	t      *testing.T
	engine http.Handler
	db     *gorm.DB
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(&model.User{}, &model.Area{}, &model.Schedule{}, &model.SpecialRequest{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	mr := miniredis.RunT(t)
	rdb, err := redis.NewClient(&config.RedisConfig{Addr: mr.Addr()}, zap.NewNop())
	if err != nil {
		t.Fatalf("redis: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret-key-for-unit-testing-2026",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: time.Hour,
		},
		RateLimit: config.RateLimitConfig{AuthLimit: 100, AuthWindow: time.Minute},
		Feature:   config.FeatureConfig{CalendarHorizonDays: 60},
	}

	logger := zap.NewNop()
	jwtMgr := jwt.NewManager(&cfg.Auth)
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, rdb, logger)
	h := handler.NewHandler(cfg, svc)

	return &testServer{t: t, engine: Setup(cfg, h, jwtMgr, rdb, db, logger), db: db}
}

// seedAdmin 直接落库一个管理员账号
func (s *testServer) seedAdmin(email, password string) {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	admin := &model.User{
		FullName:     "Admin",
		Email:        email,
		PasswordHash: string(hash),
		PhoneNumber:  "0799000000",
		Roles:        model.StringArray{"USER", "ADMIN"},
		Active:       true,
	}
	if err := s.db.Create(admin).Error; err != nil {
		s.t.Fatalf("seed admin: %v", err)
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (s *testServer) do(method, path, token string, body interface{}) (int, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w.Code, env
}

func (s *testServer) login(email, password string) string {
	s.t.Helper()
	code, env := s.do("POST", "/api/v1/auth/login", "", map[string]string{"email": email, "password": password})
	if code != http.StatusOK {
		s.t.Fatalf("login %s: expected 200, got %d (%s)", email, code, env.Message)
	}
	var tok struct {
		AccessToken string `json:"access_token"`
	}
	_ = json.Unmarshal(env.Data, &tok)
	return tok.AccessToken
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

// ═══════════════════════════════════════════════════════════
// Tests
// ═══════════════════════════════════════════════════════════

func TestHealth(t *testing.T) {
	s := setupTestServer(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestRoutes_RequireAuth(t *testing.T) {
	s := setupTestServer(t)

	for _, path := range []string{"/api/v1/areas", "/api/v1/schedules", "/api/v1/users/me", "/api/v1/dashboard/user/stats"} {
		if code, _ := s.do("GET", path, "", nil); code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", path, code)
		}
	}
}

func TestSpecialRequestLifecycle(t *testing.T) {
	s := setupTestServer(t)
	s.seedAdmin("admin@example.com", "admin-pass")

	// 1. 普通用户注册
	code, env := s.do("POST", "/api/v1/auth/register", "", map[string]string{
		"full_name":    "Alice",
		"email":        "alice@example.com",
		"password":     "secret123",
		"phone_number": "0700000001",
	})
	if code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d (%s)", code, env.Message)
	}
	alice := decode[struct {
		AccessToken string `json:"access_token"`
	}](t, env.Data).AccessToken
	adminToken := s.login("admin@example.com", "admin-pass")

	// 2. 普通用户不能创建区域
	areaBody := map[string]interface{}{"name": "Downtown", "zone": "North", "pickup_days": []string{"MON", "THU"}}
	if code, _ := s.do("POST", "/api/v1/areas", alice, areaBody); code != http.StatusForbidden {
		t.Errorf("user create area: expected 403, got %d", code)
	}

	// 3. 管理员创建区域与计划
	code, env = s.do("POST", "/api/v1/areas", adminToken, areaBody)
	if code != http.StatusCreated {
		t.Fatalf("admin create area: expected 201, got %d (%s)", code, env.Message)
	}
	areaID := decode[struct {
		AreaID string `json:"area_id"`
	}](t, env.Data).AreaID

	pickup := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)
	code, env = s.do("POST", "/api/v1/schedules", adminToken, map[string]interface{}{
		"area_id":     areaID,
		"pickup_date": pickup.Format(time.RFC3339),
		"type":        "REGULAR",
	})
	if code != http.StatusCreated {
		t.Fatalf("create schedule: expected 201, got %d (%s)", code, env.Message)
	}

	// 4. 用户提交申请
	requestDate := time.Now().UTC().AddDate(0, 0, 3).Format("2006-01-02")
	code, env = s.do("POST", "/api/v1/special-requests", alice, map[string]string{
		"area_id":      areaID,
		"request_date": requestDate,
		"description":  "old sofa and two mattresses",
	})
	if code != http.StatusCreated {
		t.Fatalf("create request: expected 201, got %d (%s)", code, env.Message)
	}
	created := decode[struct {
		RequestID string `json:"request_id"`
		Status    string `json:"status"`
		AreaName  string `json:"area_name"`
		UserName  string `json:"user_name"`
	}](t, env.Data)
	if created.Status != "PENDING" || created.AreaName != "Downtown" || created.UserName != "Alice" {
		t.Errorf("unexpected created request: %+v", created)
	}

	// 5. 用户统计
	code, env = s.do("GET", "/api/v1/dashboard/user/stats", alice, nil)
	if code != http.StatusOK {
		t.Fatalf("user stats: expected 200, got %d", code)
	}
	stats := decode[struct {
		PendingRequests     int64 `json:"pending_requests"`
		UpcomingCollections int64 `json:"upcoming_collections"`
	}](t, env.Data)
	if stats.PendingRequests != 1 || stats.UpcomingCollections != 1 {
		t.Errorf("unexpected user stats: %+v", stats)
	}

	// 6. 管理员审批，重复审批被拒绝
	statusPath := "/api/v1/special-requests/" + created.RequestID + "/status"
	if code, env := s.do("PATCH", statusPath, adminToken, map[string]string{"status": "APPROVED", "admin_note": "truck on Friday"}); code != http.StatusOK {
		t.Fatalf("approve: expected 200, got %d (%s)", code, env.Message)
	}
	if code, env := s.do("PATCH", statusPath, adminToken, map[string]string{"status": "REJECTED"}); code != http.StatusBadRequest || env.Code != 15002 {
		t.Errorf("second transition: expected 400/15002, got %d/%d", code, env.Code)
	}

	// 7. 已审批的申请不能取消
	if code, _ := s.do("PATCH", "/api/v1/special-requests/"+created.RequestID+"/cancel", alice, nil); code != http.StatusBadRequest {
		t.Errorf("cancel approved: expected 400, got %d", code)
	}

	// 8. 管理员统计
	code, env = s.do("GET", "/api/v1/dashboard/admin/stats", adminToken, nil)
	if code != http.StatusOK {
		t.Fatalf("admin stats: expected 200, got %d", code)
	}
	admin := decode[struct {
		TotalUsers       int64            `json:"total_users"`
		RequestsByStatus map[string]int64 `json:"requests_by_status"`
		RequestsByZone   map[string]int64 `json:"requests_by_zone"`
	}](t, env.Data)
	if admin.TotalUsers != 2 || admin.RequestsByStatus["APPROVED"] != 1 || admin.RequestsByZone["North"] != 1 {
		t.Errorf("unexpected admin stats: %+v", admin)
	}
}

func TestLogout_RevokesAccessToken(t *testing.T) {
	s := setupTestServer(t)
	s.seedAdmin("admin@example.com", "admin-pass")
	token := s.login("admin@example.com", "admin-pass")

	if code, _ := s.do("GET", "/api/v1/users/me", token, nil); code != http.StatusOK {
		t.Fatalf("me before logout: expected 200, got %d", code)
	}
	if code, _ := s.do("POST", "/api/v1/auth/logout", token, nil); code != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", code)
	}
	if code, _ := s.do("GET", "/api/v1/users/me", token, nil); code != http.StatusUnauthorized {
		t.Errorf("me after logout: expected 401, got %d", code)
	}
}

func TestScheduleFilter_AndCalendar(t *testing.T) {
	s := setupTestServer(t)
	s.seedAdmin("admin@example.com", "admin-pass")
	token := s.login("admin@example.com", "admin-pass")

	_, env := s.do("POST", "/api/v1/areas", token, map[string]interface{}{"name": "Harbour", "zone": "South", "pickup_days": []string{"FRI"}})
	areaID := decode[struct {
		AreaID string `json:"area_id"`
	}](t, env.Data).AreaID

	for i, typ := range []string{"REGULAR", "SPECIAL", "REGULAR", "SPECIAL", "SPECIAL"} {
		pickup := time.Now().UTC().AddDate(0, 0, i+1).Truncate(time.Second)
		if code, env := s.do("POST", "/api/v1/schedules", token, map[string]interface{}{
			"area_id": areaID, "pickup_date": pickup.Format(time.RFC3339), "type": typ,
		}); code != http.StatusCreated {
			t.Fatalf("create schedule %d: %d (%s)", i, code, env.Message)
		}
	}

	code, env := s.do("POST", "/api/v1/schedules/filter", token, map[string]interface{}{
		"area_id": areaID, "type": "SPECIAL", "page": 0, "size": 2,
	})
	if code != http.StatusOK {
		t.Fatalf("filter: expected 200, got %d (%s)", code, env.Message)
	}
	page := decode[struct {
		TotalElements int64 `json:"total_elements"`
		TotalPages    int   `json:"total_pages"`
		Last          bool  `json:"last"`
	}](t, env.Data)
	if page.TotalElements != 3 || page.TotalPages != 2 || page.Last {
		t.Errorf("unexpected filter page: %+v", page)
	}

	req := httptest.NewRequest("GET", "/api/v1/schedules/area/"+areaID+"/calendar.ics", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("calendar: expected 200, got %d", w.Code)
	}
	if n := bytes.Count(w.Body.Bytes(), []byte("BEGIN:VEVENT")); n != 5 {
		t.Errorf("expected 5 events, got %d", n)
	}
}

func TestMalformedIDs(t *testing.T) {
	s := setupTestServer(t)
	s.seedAdmin("admin@example.com", "admin-pass")
	token := s.login("admin@example.com", "admin-pass")

	paths := []struct {
		method string
		path   string
		code   int
	}{
		{"GET", "/api/v1/areas/abc", 13001},
		{"DELETE", "/api/v1/areas/abc", 13001},
		{"GET", "/api/v1/schedules/42", 14001},
		{"GET", "/api/v1/schedules/area/nope/calendar.ics", 13001},
		{"GET", "/api/v1/special-requests/xyz", 15001},
		{"GET", "/api/v1/users/u-1", 12001},
	}
	for _, p := range paths {
		if code, env := s.do(p.method, p.path, token, nil); code != http.StatusNotFound || env.Code != p.code {
			t.Errorf("%s %s: expected 404/%d, got %d/%d", p.method, p.path, p.code, code, env.Code)
		}
	}

	code, env := s.do("POST", "/api/v1/special-requests", token, map[string]string{
		"area_id": "x", "request_date": "2099-01-01", "description": "old sofa and two mattresses",
	})
	if code != http.StatusBadRequest || env.Code != 10001 {
		t.Errorf("malformed area_id: expected 400/10001, got %d/%d", code, env.Code)
	}
}

func TestStoredUserStateOverridesToken(t *testing.T) {
	s := setupTestServer(t)
	s.seedAdmin("admin@example.com", "admin-pass")
	adminToken := s.login("admin@example.com", "admin-pass")

	register := func(name, email, phone string) string {
		code, env := s.do("POST", "/api/v1/auth/register", "", map[string]string{
			"full_name": name, "email": email, "password": "secret123", "phone_number": phone,
		})
		if code != http.StatusCreated {
			t.Fatalf("register %s: expected 201, got %d (%s)", email, code, env.Message)
		}
		return decode[struct {
			User struct {
				UserID string `json:"user_id"`
			} `json:"user"`
		}](t, env.Data).User.UserID
	}
	aliceID := register("Alice", "alice@example.com", "0700000001")
	bobID := register("Bob", "bob@example.com", "0700000002")

	// 停用后旧 Token 立即失效
	alice := s.login("alice@example.com", "secret123")
	if code, _ := s.do("PATCH", "/api/v1/users/"+aliceID+"/active?active=false", adminToken, nil); code != http.StatusOK {
		t.Fatalf("deactivate: expected 200, got %d", code)
	}
	if code, env := s.do("GET", "/api/v1/users/me", alice, nil); code != http.StatusForbidden || env.Code != 11002 {
		t.Errorf("deactivated user: expected 403/11002, got %d/%d", code, env.Code)
	}

	// 提升为管理员后登录，再收回角色，旧 Token 中的 ADMIN 不再生效
	if code, _ := s.do("PATCH", "/api/v1/users/"+bobID+"/roles", adminToken, map[string][]string{"roles": {"USER", "ADMIN"}}); code != http.StatusOK {
		t.Fatalf("promote: expected 200, got %d", code)
	}
	bob := s.login("bob@example.com", "secret123")
	areaBody := map[string]interface{}{"name": "Downtown", "zone": "North", "pickup_days": []string{"MON"}}
	if code, _ := s.do("GET", "/api/v1/dashboard/admin/stats", bob, nil); code != http.StatusOK {
		t.Fatalf("promoted admin stats: expected 200, got %d", code)
	}
	if code, _ := s.do("PATCH", "/api/v1/users/"+bobID+"/roles", adminToken, map[string][]string{"roles": {"USER"}}); code != http.StatusOK {
		t.Fatalf("demote: expected 200, got %d", code)
	}
	if code, _ := s.do("POST", "/api/v1/areas", bob, areaBody); code != http.StatusForbidden {
		t.Errorf("demoted admin create area: expected 403, got %d", code)
	}
	if code, _ := s.do("GET", "/api/v1/dashboard/admin/stats", bob, nil); code != http.StatusForbidden {
		t.Errorf("demoted admin stats: expected 403, got %d", code)
	}
}
