package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 主键在应用侧生成，避免依赖数据库的 gen_random_uuid()

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.UserID == "" {
		u.UserID = uuid.NewString()
	}
	return nil
}

func (a *Area) BeforeCreate(*gorm.DB) error {
	if a.AreaID == "" {
		a.AreaID = uuid.NewString()
	}
	return nil
}

func (s *Schedule) BeforeCreate(*gorm.DB) error {
	if s.ScheduleID == "" {
		s.ScheduleID = uuid.NewString()
	}
	return nil
}

func (r *SpecialRequest) BeforeCreate(*gorm.DB) error {
	if r.RequestID == "" {
		r.RequestID = uuid.NewString()
	}
	return nil
}
