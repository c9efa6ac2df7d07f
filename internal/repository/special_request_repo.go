package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tertcoder/garbage-app-backend/internal/model"
)

// RequestQuery 特殊清运申请查询条件；零值字段不参与过滤，日期区间为闭区间
type RequestQuery struct {
	UserID string
	AreaID string
	Status model.RequestStatus
	From   *time.Time
	To     *time.Time
}

// StatusCount 按状态分组计数
type StatusCount struct {
	Status model.RequestStatus
	Count  int64
}

// SpecialRequestRepository 特殊清运申请数据访问接口
type SpecialRequestRepository interface {
	Create(ctx context.Context, req *model.SpecialRequest) error
	GetByID(ctx context.Context, id string) (*model.SpecialRequest, error)
	Update(ctx context.Context, req *model.SpecialRequest) error
	Delete(ctx context.Context, id string) error
	// Find 按 request_date 倒序分页
	Find(ctx context.Context, q RequestQuery, offset, limit int) ([]model.SpecialRequest, int64, error)
	// ListAll 全量读取，供统计与导出使用
	ListAll(ctx context.Context) ([]model.SpecialRequest, error)
	Count(ctx context.Context, q RequestQuery) (int64, error)
	CountByStatus(ctx context.Context) ([]StatusCount, error)
}

type specialRequestRepo struct {
	db *gorm.DB
}

// NewSpecialRequestRepo 创建 SpecialRequestRepository 实例
func NewSpecialRequestRepo(db *gorm.DB) SpecialRequestRepository {
	return &specialRequestRepo{db: db}
}

func (r *specialRequestRepo) Create(ctx context.Context, req *model.SpecialRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *specialRequestRepo) GetByID(ctx context.Context, id string) (*model.SpecialRequest, error) {
	var req model.SpecialRequest
	err := r.db.WithContext(ctx).
		Where("request_id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *specialRequestRepo) Update(ctx context.Context, req *model.SpecialRequest) error {
	return r.db.WithContext(ctx).Save(req).Error
}

func (r *specialRequestRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("request_id = ?", id).
		Delete(&model.SpecialRequest{}).Error
}

func (r *specialRequestRepo) Find(ctx context.Context, q RequestQuery, offset, limit int) ([]model.SpecialRequest, int64, error) {
	var reqs []model.SpecialRequest
	var total int64

	db := r.applyQuery(r.db.WithContext(ctx).Model(&model.SpecialRequest{}), q)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("request_date DESC").
		Order("created_at DESC").
		Find(&reqs).Error; err != nil {
		return nil, 0, err
	}

	return reqs, total, nil
}

func (r *specialRequestRepo) ListAll(ctx context.Context) ([]model.SpecialRequest, error) {
	var reqs []model.SpecialRequest
	err := r.db.WithContext(ctx).
		Order("request_date DESC").
		Find(&reqs).Error
	return reqs, err
}

func (r *specialRequestRepo) Count(ctx context.Context, q RequestQuery) (int64, error) {
	var count int64
	err := r.applyQuery(r.db.WithContext(ctx).Model(&model.SpecialRequest{}), q).
		Count(&count).Error
	return count, err
}

func (r *specialRequestRepo) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.db.WithContext(ctx).
		Model(&model.SpecialRequest{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	return rows, err
}

func (r *specialRequestRepo) applyQuery(db *gorm.DB, q RequestQuery) *gorm.DB {
	if q.UserID != "" {
		db = db.Where("user_id = ?", q.UserID)
	}
	if q.AreaID != "" {
		db = db.Where("area_id = ?", q.AreaID)
	}
	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}
	if q.From != nil {
		db = db.Where("request_date >= ?", *q.From)
	}
	if q.To != nil {
		db = db.Where("request_date <= ?", *q.To)
	}
	return db
}
