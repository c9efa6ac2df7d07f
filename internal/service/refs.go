package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tertcoder/garbage-app-backend/internal/repository"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04:05Z07:00"
)

// ref 弱引用解析结果；Found=false 表示引用目标已不存在
type ref struct {
	Name  string
	Found bool
}

// display 引用缺失时返回空串，响应中对应字段被省略
func (r ref) display() string {
	if !r.Found {
		return ""
	}
	return r.Name
}

// refResolver 在读取时解析 area_id / user_id 的显示名称。
// 查询失败与记录缺失同样降级为缺失，不影响主流程。
type refResolver struct {
	repo   *repository.Repository
	logger *zap.Logger
}

func (r refResolver) resolveArea(ctx context.Context, id string) ref {
	area, err := r.repo.Area.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.Warn("解析区域名称失败", zap.String("area_id", id), zap.Error(err))
		}
		return ref{}
	}
	return ref{Name: area.Name, Found: true}
}

func (r refResolver) resolveUser(ctx context.Context, id string) ref {
	user, err := r.repo.User.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.Warn("解析用户名称失败", zap.String("user_id", id), zap.Error(err))
		}
		return ref{}
	}
	return ref{Name: user.FullName, Found: true}
}

// areas 批量解析，避免列表响应逐条查询
func (r refResolver) areas(ctx context.Context, ids []string) map[string]ref {
	result := make(map[string]ref, len(ids))
	areas, err := r.repo.Area.ListByIDs(ctx, uniqueStrings(ids))
	if err != nil {
		r.logger.Warn("批量解析区域名称失败", zap.Error(err))
		return result
	}
	for _, a := range areas {
		result[a.AreaID] = ref{Name: a.Name, Found: true}
	}
	return result
}

func (r refResolver) users(ctx context.Context, ids []string) map[string]ref {
	result := make(map[string]ref, len(ids))
	users, err := r.repo.User.ListByIDs(ctx, uniqueStrings(ids))
	if err != nil {
		r.logger.Warn("批量解析用户名称失败", zap.Error(err))
		return result
	}
	for _, u := range users {
		result[u.UserID] = ref{Name: u.FullName, Found: true}
	}
	return result
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// ── 日期工具 ──

// parseDate 解析 YYYY-MM-DD，按 UTC 零点
func parseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).Add(24*time.Hour - time.Nanosecond)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(dateTimeLayout)
}
