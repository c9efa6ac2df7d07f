package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/tertcoder/garbage-app-backend/internal/model"
	"github.com/tertcoder/garbage-app-backend/internal/repository"
)

// fixedNow 测试用固定时钟
var fixedNow = time.Date(2030, 6, 15, 10, 0, 0, 0, time.UTC)

// testRepos 聚合所有 mock，便于测试直接操作底层数据
type testRepos struct {
	repo      *repository.Repository
	users     *mockUserRepo
	areas     *mockAreaRepo
	schedules *mockScheduleRepo
	requests  *mockRequestRepo
}

func newTestRepos() *testRepos {
	tr := &testRepos{
		users:     newMockUserRepo(),
		areas:     newMockAreaRepo(),
		schedules: newMockScheduleRepo(),
		requests:  newMockRequestRepo(),
	}
	tr.repo = &repository.Repository{
		User:           tr.users,
		Area:           tr.areas,
		Schedule:       tr.schedules,
		SpecialRequest: tr.requests,
	}
	return tr
}

// bounds 计算分页切片区间
func bounds(n, offset, limit int) (int, int) {
	if offset > n {
		offset = n
	}
	end := offset + limit
	if end > n {
		end = n
	}
	return offset, end
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
	seq   int

	// conflict 非空时模拟并发注册：下一次 Create 先写入该记录再返回唯一索引冲突
	conflict *model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if m.conflict != nil {
		m.users[m.conflict.UserID] = m.conflict
		m.conflict = nil
		return gorm.ErrDuplicatedKey
	}
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("user-%d", m.seq)
	}
	user.CreatedAt = fixedNow
	user.UpdatedAt = fixedNow
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) ExistsByPhone(_ context.Context, phone string) (bool, error) {
	for _, u := range m.users {
		if u.PhoneNumber == phone {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) List(_ context.Context, offset, limit int) ([]model.User, int64, error) {
	var all []model.User
	for _, u := range m.users {
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].FullName < all[j].FullName })
	from, to := bounds(len(all), offset, limit)
	return all[from:to], int64(len(all)), nil
}

func (m *mockUserRepo) ListByIDs(_ context.Context, ids []string) ([]model.User, error) {
	var result []model.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (m *mockUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.users)), nil
}

// ── Mock AreaRepository ──

type mockAreaRepo struct {
	areas map[string]*model.Area
	seq   int
}

func newMockAreaRepo() *mockAreaRepo {
	return &mockAreaRepo{areas: make(map[string]*model.Area)}
}

func (m *mockAreaRepo) Create(_ context.Context, area *model.Area) error {
	if area.AreaID == "" {
		m.seq++
		area.AreaID = fmt.Sprintf("area-%d", m.seq)
	}
	area.CreatedAt = fixedNow
	area.UpdatedAt = fixedNow
	m.areas[area.AreaID] = area
	return nil
}

func (m *mockAreaRepo) GetByID(_ context.Context, id string) (*model.Area, error) {
	if a, ok := m.areas[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAreaRepo) ExistsByName(_ context.Context, name string) (bool, error) {
	for _, a := range m.areas {
		if a.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAreaRepo) Update(_ context.Context, area *model.Area) error {
	cp := *area
	m.areas[area.AreaID] = &cp
	return nil
}

func (m *mockAreaRepo) Delete(_ context.Context, id string) error {
	delete(m.areas, id)
	return nil
}

func (m *mockAreaRepo) sorted() []model.Area {
	var all []model.Area
	for _, a := range m.areas {
		all = append(all, *a)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all
}

func (m *mockAreaRepo) List(_ context.Context, offset, limit int) ([]model.Area, int64, error) {
	all := m.sorted()
	from, to := bounds(len(all), offset, limit)
	return all[from:to], int64(len(all)), nil
}

func (m *mockAreaRepo) ListAll(_ context.Context) ([]model.Area, error) {
	return m.sorted(), nil
}

func (m *mockAreaRepo) ListByZone(_ context.Context, zone string) ([]model.Area, error) {
	var result []model.Area
	for _, a := range m.sorted() {
		if a.Zone == zone {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *mockAreaRepo) ListByIDs(_ context.Context, ids []string) ([]model.Area, error) {
	var result []model.Area
	for _, id := range ids {
		if a, ok := m.areas[id]; ok {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (m *mockAreaRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.areas)), nil
}

// ── Mock ScheduleRepository ──

type mockScheduleRepo struct {
	schedules map[string]*model.Schedule
	seq       int
}

func newMockScheduleRepo() *mockScheduleRepo {
	return &mockScheduleRepo{schedules: make(map[string]*model.Schedule)}
}

func (m *mockScheduleRepo) Create(_ context.Context, schedule *model.Schedule) error {
	if schedule.ScheduleID == "" {
		m.seq++
		schedule.ScheduleID = fmt.Sprintf("sch-%d", m.seq)
	}
	schedule.CreatedAt = fixedNow
	schedule.UpdatedAt = fixedNow
	m.schedules[schedule.ScheduleID] = schedule
	return nil
}

func (m *mockScheduleRepo) GetByID(_ context.Context, id string) (*model.Schedule, error) {
	if s, ok := m.schedules[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScheduleRepo) Update(_ context.Context, schedule *model.Schedule) error {
	cp := *schedule
	m.schedules[schedule.ScheduleID] = &cp
	return nil
}

func (m *mockScheduleRepo) Delete(_ context.Context, id string) error {
	delete(m.schedules, id)
	return nil
}

func (m *mockScheduleRepo) List(ctx context.Context, offset, limit int) ([]model.Schedule, int64, error) {
	return m.Find(ctx, repository.ScheduleQuery{}, offset, limit)
}

func (m *mockScheduleRepo) ListByArea(ctx context.Context, areaID string, offset, limit int) ([]model.Schedule, int64, error) {
	return m.Find(ctx, repository.ScheduleQuery{AreaID: areaID}, offset, limit)
}

func (m *mockScheduleRepo) ListByDateRange(ctx context.Context, from, to time.Time) ([]model.Schedule, error) {
	list, _, err := m.Find(ctx, repository.ScheduleQuery{From: &from, To: &to}, 0, len(m.schedules))
	return list, err
}

func (m *mockScheduleRepo) Find(_ context.Context, q repository.ScheduleQuery, offset, limit int) ([]model.Schedule, int64, error) {
	var all []model.Schedule
	for _, s := range m.schedules {
		if q.AreaID != "" && s.AreaID != q.AreaID {
			continue
		}
		if q.Type != "" && s.Type != q.Type {
			continue
		}
		if q.From != nil && s.PickupDate.Before(*q.From) {
			continue
		}
		if q.To != nil && s.PickupDate.After(*q.To) {
			continue
		}
		all = append(all, *s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].PickupDate.Before(all[j].PickupDate) })
	from, to := bounds(len(all), offset, limit)
	return all[from:to], int64(len(all)), nil
}

func (m *mockScheduleRepo) CountBetween(_ context.Context, from, to time.Time) (int64, error) {
	var n int64
	for _, s := range m.schedules {
		if !s.PickupDate.Before(from) && !s.PickupDate.After(to) {
			n++
		}
	}
	return n, nil
}

// ── Mock SpecialRequestRepository ──

type mockRequestRepo struct {
	requests map[string]*model.SpecialRequest
	seq      int
}

func newMockRequestRepo() *mockRequestRepo {
	return &mockRequestRepo{requests: make(map[string]*model.SpecialRequest)}
}

func (m *mockRequestRepo) Create(_ context.Context, req *model.SpecialRequest) error {
	if req.RequestID == "" {
		m.seq++
		req.RequestID = fmt.Sprintf("req-%d", m.seq)
	}
	req.CreatedAt = fixedNow
	req.UpdatedAt = fixedNow
	m.requests[req.RequestID] = req
	return nil
}

func (m *mockRequestRepo) GetByID(_ context.Context, id string) (*model.SpecialRequest, error) {
	if r, ok := m.requests[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRequestRepo) Update(_ context.Context, req *model.SpecialRequest) error {
	cp := *req
	m.requests[req.RequestID] = &cp
	return nil
}

func (m *mockRequestRepo) Delete(_ context.Context, id string) error {
	delete(m.requests, id)
	return nil
}

func (m *mockRequestRepo) match(q repository.RequestQuery) []model.SpecialRequest {
	var all []model.SpecialRequest
	for _, r := range m.requests {
		if q.UserID != "" && r.UserID != q.UserID {
			continue
		}
		if q.AreaID != "" && r.AreaID != q.AreaID {
			continue
		}
		if q.Status != "" && r.Status != q.Status {
			continue
		}
		if q.From != nil && r.RequestDate.Before(*q.From) {
			continue
		}
		if q.To != nil && r.RequestDate.After(*q.To) {
			continue
		}
		all = append(all, *r)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].RequestDate.Equal(all[j].RequestDate) {
			return all[i].RequestDate.After(all[j].RequestDate)
		}
		return all[i].RequestID < all[j].RequestID
	})
	return all
}

func (m *mockRequestRepo) Find(_ context.Context, q repository.RequestQuery, offset, limit int) ([]model.SpecialRequest, int64, error) {
	all := m.match(q)
	from, to := bounds(len(all), offset, limit)
	return all[from:to], int64(len(all)), nil
}

func (m *mockRequestRepo) ListAll(_ context.Context) ([]model.SpecialRequest, error) {
	return m.match(repository.RequestQuery{}), nil
}

func (m *mockRequestRepo) Count(_ context.Context, q repository.RequestQuery) (int64, error) {
	return int64(len(m.match(q))), nil
}

func (m *mockRequestRepo) CountByStatus(_ context.Context) ([]repository.StatusCount, error) {
	counts := make(map[model.RequestStatus]int64)
	for _, r := range m.requests {
		counts[r.Status]++
	}
	var rows []repository.StatusCount
	for status, n := range counts {
		rows = append(rows, repository.StatusCount{Status: status, Count: n})
	}
	return rows, nil
}

// ── 测试数据辅助 ──

var (
	adminCaller = Caller{UserID: "admin-1", Roles: []string{"USER", "ADMIN"}}
	aliceCaller = Caller{UserID: "alice", Roles: []string{"USER"}}
	bobCaller   = Caller{UserID: "bob", Roles: []string{"USER"}}
)

// seedUsers 预置 admin-1 / alice / bob 三个用户
func (tr *testRepos) seedUsers() {
	ctx := context.Background()
	_ = tr.users.Create(ctx, &model.User{UserID: "admin-1", FullName: "Admin", Email: "admin@example.com", PhoneNumber: "1", Roles: model.StringArray{"USER", "ADMIN"}, Active: true})
	_ = tr.users.Create(ctx, &model.User{UserID: "alice", FullName: "Alice", Email: "alice@example.com", PhoneNumber: "2", Roles: model.StringArray{"USER"}, Active: true})
	_ = tr.users.Create(ctx, &model.User{UserID: "bob", FullName: "Bob", Email: "bob@example.com", PhoneNumber: "3", Roles: model.StringArray{"USER"}, Active: true})
}

func (tr *testRepos) seedArea(id, name, zone string) *model.Area {
	a := &model.Area{AreaID: id, Name: name, Zone: zone, PickupDays: model.StringArray{"MON"}}
	_ = tr.areas.Create(context.Background(), a)
	return a
}

func (tr *testRepos) seedRequest(id, userID, areaID string, date time.Time, status model.RequestStatus) *model.SpecialRequest {
	r := &model.SpecialRequest{
		RequestID:   id,
		UserID:      userID,
		AreaID:      areaID,
		RequestDate: date,
		Status:      status,
		Description: "please collect the bulky items",
	}
	_ = tr.requests.Create(context.Background(), r)
	return r
}
