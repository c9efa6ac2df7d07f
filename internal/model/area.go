package model

// Area 清运区域表，对应 areas
type Area struct {
	AreaID     string      `gorm:"type:uuid;primaryKey"                               json:"area_id"`
	Name       string      `gorm:"type:varchar(100);not null;uniqueIndex"             json:"name"`
	Zone       string      `gorm:"type:varchar(100);not null;index"                   json:"zone"`
	PickupDays StringArray `gorm:"type:jsonb;not null"                                json:"pickup_days"`
	BaseModel
}

// TableName 指定表名
func (Area) TableName() string { return "areas" }
