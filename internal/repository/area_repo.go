package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/tertcoder/garbage-app-backend/internal/model"
)

// AreaRepository 区域数据访问接口
type AreaRepository interface {
	Create(ctx context.Context, area *model.Area) error
	GetByID(ctx context.Context, id string) (*model.Area, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Update(ctx context.Context, area *model.Area) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, offset, limit int) ([]model.Area, int64, error)
	ListAll(ctx context.Context) ([]model.Area, error)
	ListByZone(ctx context.Context, zone string) ([]model.Area, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.Area, error)
	Count(ctx context.Context) (int64, error)
}

type areaRepo struct {
	db *gorm.DB
}

// NewAreaRepo 创建 AreaRepository 实例
func NewAreaRepo(db *gorm.DB) AreaRepository {
	return &areaRepo{db: db}
}

func (r *areaRepo) Create(ctx context.Context, area *model.Area) error {
	return r.db.WithContext(ctx).Create(area).Error
}

func (r *areaRepo) GetByID(ctx context.Context, id string) (*model.Area, error) {
	var area model.Area
	err := r.db.WithContext(ctx).
		Where("area_id = ?", id).
		First(&area).Error
	if err != nil {
		return nil, err
	}
	return &area, nil
}

func (r *areaRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Area{}).
		Where("name = ?", name).
		Count(&count).Error
	return count > 0, err
}

func (r *areaRepo) Update(ctx context.Context, area *model.Area) error {
	return r.db.WithContext(ctx).Save(area).Error
}

func (r *areaRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("area_id = ?", id).
		Delete(&model.Area{}).Error
}

func (r *areaRepo) List(ctx context.Context, offset, limit int) ([]model.Area, int64, error) {
	var areas []model.Area
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Area{})

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("name ASC").
		Find(&areas).Error; err != nil {
		return nil, 0, err
	}

	return areas, total, nil
}

func (r *areaRepo) ListAll(ctx context.Context) ([]model.Area, error) {
	var areas []model.Area
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&areas).Error
	return areas, err
}

func (r *areaRepo) ListByZone(ctx context.Context, zone string) ([]model.Area, error) {
	var areas []model.Area
	err := r.db.WithContext(ctx).
		Where("zone = ?", zone).
		Find(&areas).Error
	return areas, err
}

func (r *areaRepo) ListByIDs(ctx context.Context, ids []string) ([]model.Area, error) {
	var areas []model.Area
	if len(ids) == 0 {
		return areas, nil
	}
	err := r.db.WithContext(ctx).
		Where("area_id IN ?", ids).
		Find(&areas).Error
	return areas, err
}

func (r *areaRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Area{}).Count(&count).Error
	return count, err
}
