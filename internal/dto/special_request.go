package dto

// ── 特殊清运申请 DTO ──

// CreateSpecialRequestRequest 创建申请；状态一律为 PENDING，不接受客户端传入
type CreateSpecialRequestRequest struct {
	AreaID      string `json:"area_id"      binding:"required,uuid"`
	RequestDate string `json:"request_date" binding:"required,datetime=2006-01-02"`
	Description string `json:"description"  binding:"required,min=10,max=500"`
}

// UpdateRequestStatusRequest 管理员审批请求
type UpdateRequestStatusRequest struct {
	Status    string `json:"status"     binding:"required,oneof=APPROVED REJECTED"`
	AdminNote string `json:"admin_note" binding:"omitempty,max=500"`
}

// SpecialRequestFilterRequest 申请筛选条件；日期区间需同时给出起止才生效
type SpecialRequestFilterRequest struct {
	UserID    string `json:"user_id"    binding:"omitempty,uuid"`
	AreaID    string `json:"area_id"    binding:"omitempty,uuid"`
	Status    string `json:"status"     binding:"omitempty,oneof=PENDING APPROVED REJECTED"`
	StartDate string `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate   string `json:"end_date"   binding:"omitempty,datetime=2006-01-02"`
	PaginationRequest
}

// SpecialRequestResponse 申请响应；引用缺失时不返回 area_name / user_name
type SpecialRequestResponse struct {
	RequestID   string `json:"request_id"`
	UserID      string `json:"user_id"`
	UserName    string `json:"user_name,omitempty"`
	AreaID      string `json:"area_id"`
	AreaName    string `json:"area_name,omitempty"`
	RequestDate string `json:"request_date"`
	Status      string `json:"status"`
	Description string `json:"description"`
	AdminNote   string `json:"admin_note,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}
