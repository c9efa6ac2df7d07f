package dto

// ── 区域模块 DTO ──

// CreateAreaRequest 创建区域请求
type CreateAreaRequest struct {
	Name       string   `json:"name"        binding:"required,min=2,max=100"`
	Zone       string   `json:"zone"        binding:"required,min=1,max=100"`
	PickupDays []string `json:"pickup_days" binding:"required,min=1,max=7,dive,pickupday"`
}

// UpdateAreaRequest 更新区域请求，仅修改传入的字段
type UpdateAreaRequest struct {
	Name       *string  `json:"name"        binding:"omitempty,min=2,max=100"`
	Zone       *string  `json:"zone"        binding:"omitempty,min=1,max=100"`
	PickupDays []string `json:"pickup_days" binding:"omitempty,min=1,max=7,dive,pickupday"`
}

// AreaResponse 区域响应
type AreaResponse struct {
	AreaID     string   `json:"area_id"`
	Name       string   `json:"name"`
	Zone       string   `json:"zone"`
	PickupDays []string `json:"pickup_days"`
	CreatedAt  string   `json:"created_at"`
	UpdatedAt  string   `json:"updated_at"`
}
