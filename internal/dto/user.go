package dto

// ── 用户模块 DTO ──

// UpdateRolesRequest 替换角色集合请求
type UpdateRolesRequest struct {
	Roles []string `json:"roles" binding:"required,min=1,dive,oneof=USER ADMIN"`
}

// UpdateActiveRequest 启用/停用用户
type UpdateActiveRequest struct {
	Active *bool `form:"active" binding:"required"`
}

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	UserID      string   `json:"user_id"`
	FullName    string   `json:"full_name"`
	Email       string   `json:"email"`
	PhoneNumber string   `json:"phone_number"`
	Roles       []string `json:"roles"`
	Active      bool     `json:"active"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}
